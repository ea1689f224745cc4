package handlers

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReports struct {
	mock.Mock
}

func (m *mockReports) CreateReport(reporterID uuid.UUID, req *dto.CreateReportRequest) (*models.Report, error) {
	args := m.Called(reporterID, req.ContentType, req.ContentID)
	r, _ := args.Get(0).(*models.Report)
	return r, args.Error(1)
}

func (m *mockReports) PendingReports(contentType, contentID string) (int64, error) {
	args := m.Called(contentType, contentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReports) ListReports(status, contentType string, limit, offset int) ([]models.Report, int64, error) {
	args := m.Called(status, contentType, limit, offset)
	return args.Get(0).([]models.Report), args.Get(1).(int64), args.Error(2)
}

func (m *mockReports) ActionReport(reportID uuid.UUID, req *dto.ActionReportRequest) (*models.Report, error) {
	args := m.Called(reportID, req.Status)
	r, _ := args.Get(0).(*models.Report)
	return r, args.Error(1)
}

func (m *mockReports) BlockUser(blockerID, blockedID uuid.UUID) error {
	return m.Called(blockerID, blockedID).Error(0)
}

func (m *mockReports) UnblockUser(blockerID, blockedID uuid.UUID) error {
	return m.Called(blockerID, blockedID).Error(0)
}

func (m *mockReports) BlockedBy(userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(userID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type flaggedPosts struct {
	ids     []uuid.UUID
	reasons []string
}

func (f *flaggedPosts) FlagReported(postID uuid.UUID, reason string) error {
	f.ids = append(f.ids, postID)
	f.reasons = append(f.reasons, reason)
	return nil
}

func moderationApp(h *ModerationHandler, userID uuid.UUID) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{"sub": userID.String()}})
		return c.Next()
	})
	app.Post("/reports", h.CreateReport)
	app.Put("/reports/:id", h.ActionReport)
	app.Post("/blocks", h.BlockUser)
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body string) int {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestCreateReport_ThirdPostReportFlagsPost(t *testing.T) {
	reporter, postID := uuid.New(), uuid.New()
	reports := new(mockReports)
	posts := &flaggedPosts{}
	reports.On("CreateReport", reporter, "post", postID.String()).
		Return(&models.Report{ID: uuid.New(), ContentType: models.ReportPost, ContentID: postID.String(), Status: models.ReportPending}, nil)
	reports.On("PendingReports", models.ReportPost, postID.String()).Return(int64(ReportFlagThreshold), nil).Once()

	app := moderationApp(NewModerationHandler(reports, posts), reporter)
	body := fmt.Sprintf(`{"content_type":"post","content_id":%q,"reason":"harassment"}`, postID)

	assert.Equal(t, fiber.StatusCreated, send(t, app, "POST", "/reports", body))
	assert.Equal(t, []uuid.UUID{postID}, posts.ids)
	reports.AssertExpectations(t)
}

func TestCreateReport_BelowThresholdOnlyRecords(t *testing.T) {
	reporter, postID := uuid.New(), uuid.New()
	reports := new(mockReports)
	posts := &flaggedPosts{}
	reports.On("CreateReport", reporter, "post", postID.String()).
		Return(&models.Report{ContentType: models.ReportPost, ContentID: postID.String()}, nil)
	reports.On("PendingReports", models.ReportPost, postID.String()).Return(int64(1), nil)

	app := moderationApp(NewModerationHandler(reports, posts), reporter)
	body := fmt.Sprintf(`{"content_type":"post","content_id":%q,"reason":"spam"}`, postID)

	assert.Equal(t, fiber.StatusCreated, send(t, app, "POST", "/reports", body))
	assert.Empty(t, posts.ids)
}

func TestCreateReport_MemberReportSkipsPostCount(t *testing.T) {
	reporter, member := uuid.New(), uuid.New()
	reports := new(mockReports)
	reports.On("CreateReport", reporter, "user", member.String()).
		Return(&models.Report{ContentType: models.ReportUser, ContentID: member.String()}, nil)

	app := moderationApp(NewModerationHandler(reports, &flaggedPosts{}), reporter)
	body := fmt.Sprintf(`{"content_type":"user","content_id":%q,"reason":"rude"}`, member)

	assert.Equal(t, fiber.StatusCreated, send(t, app, "POST", "/reports", body))
	reports.AssertNotCalled(t, "PendingReports", mock.Anything, mock.Anything)
}

func TestCreateReport_InvalidIsBadRequest(t *testing.T) {
	reporter := uuid.New()
	reports := new(mockReports)
	reports.On("CreateReport", reporter, "poll", "x").
		Return(nil, fmt.Errorf("%w: content_type", services.ErrInvalidReport))

	app := moderationApp(NewModerationHandler(reports, nil), reporter)

	assert.Equal(t, fiber.StatusBadRequest, send(t, app, "POST", "/reports", `{"content_type":"poll","content_id":"x","reason":"?"}`))
}

func TestActionReport_ActionedPostIsFlagged(t *testing.T) {
	reportID, postID := uuid.New(), uuid.New()
	reports := new(mockReports)
	posts := &flaggedPosts{}
	reports.On("ActionReport", reportID, models.ReportActioned).
		Return(&models.Report{ID: reportID, ContentType: models.ReportPost, ContentID: postID.String(), Status: models.ReportActioned}, nil)

	app := moderationApp(NewModerationHandler(reports, posts), uuid.New())

	status := send(t, app, "PUT", "/reports/"+reportID.String(), `{"status":"actioned","admin_note":"Targeted harassment"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []uuid.UUID{postID}, posts.ids)
	assert.Equal(t, []string{"Targeted harassment"}, posts.reasons)
}

func TestActionReport_Errors(t *testing.T) {
	missing, bad := uuid.New(), uuid.New()
	reports := new(mockReports)
	reports.On("ActionReport", missing, "dismissed").Return(nil, services.ErrReportNotFound)
	reports.On("ActionReport", bad, "closed").Return(nil, fmt.Errorf("%w: status", services.ErrInvalidReport))

	app := moderationApp(NewModerationHandler(reports, nil), uuid.New())

	assert.Equal(t, fiber.StatusNotFound, send(t, app, "PUT", "/reports/"+missing.String(), `{"status":"dismissed"}`))
	assert.Equal(t, fiber.StatusBadRequest, send(t, app, "PUT", "/reports/"+bad.String(), `{"status":"closed"}`))
	assert.Equal(t, fiber.StatusBadRequest, send(t, app, "PUT", "/reports/not-a-uuid", `{"status":"dismissed"}`))
}

func TestBlockUser_Conflicts(t *testing.T) {
	me := uuid.New()
	reports := new(mockReports)
	reports.On("BlockUser", me, me).Return(services.ErrSelfBlock)

	app := moderationApp(NewModerationHandler(reports, nil), me)
	body := fmt.Sprintf(`{"blocked_id":%q}`, me)

	assert.Equal(t, fiber.StatusConflict, send(t, app, "POST", "/blocks", body))
}
