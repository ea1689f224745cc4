package journal

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	entriesSheet = "Journal"
	moodsSheet   = "Moods"
)

// Export writes the member's entries and mood check-ins to an XLSX workbook.
func (s *JournalService) Export(userID uuid.UUID) (*bytes.Buffer, error) {
	entries, err := s.allEntries(userID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.ListSessions(userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", entriesSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(moodsSheet); err != nil {
		return nil, err
	}

	entryRows := [][]interface{}{{"Date", "Mood", "Title", "Content", "Created"}}
	for _, e := range entries {
		entryRows = append(entryRows, []interface{}{e.EntryDate, e.Mood, e.Title, e.Content, e.CreatedAt.UTC().Format("2006-01-02 15:04:05")})
	}
	if err := writeRows(f, entriesSheet, entryRows); err != nil {
		return nil, err
	}

	moodRows := [][]interface{}{{"Recorded", "Mood", "Note"}}
	for _, ms := range sessions {
		moodRows = append(moodRows, []interface{}{ms.CreatedAt.UTC().Format("2006-01-02 15:04:05"), ms.Mood, ms.Note})
	}
	if err := writeRows(f, moodsSheet, moodRows); err != nil {
		return nil, err
	}

	f.SetColWidth(entriesSheet, "D", "D", 80)
	f.SetColWidth(moodsSheet, "C", "C", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, r+1, err)
		}
	}
	return nil
}
