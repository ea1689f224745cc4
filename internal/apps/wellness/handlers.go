package wellness

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/breathing"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/session"
	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/stream"
	"github.com/gofiber/fiber/v2"
)

type WellnessHandler struct {
	breathing *BreathingService
	sched     breathing.Scheduler
	fallback  *time.Location
}

func NewWellnessHandler(svc *BreathingService, sched breathing.Scheduler, fallback *time.Location) *WellnessHandler {
	return &WellnessHandler{breathing: svc, sched: sched, fallback: fallback}
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": true, "message": msg})
}

func exerciseError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, breathing.ErrUnknownExercise):
		return fail(c, fiber.StatusNotFound, "Unknown exercise")
	case errors.Is(err, ErrInvalidCycles), errors.Is(err, breathing.ErrZeroCycle), errors.Is(err, breathing.ErrNegativeDuration):
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	return fail(c, fiber.StatusInternalServerError, "Something went wrong")
}

func (h *WellnessHandler) Exercises(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"exercises": breathing.Catalog()})
}

func (h *WellnessHandler) Exercise(c *fiber.Ctx) error {
	ex, err := breathing.Lookup(c.Params("id"))
	if err != nil {
		return exerciseError(c, err)
	}
	return c.JSON(ex)
}

func (h *WellnessHandler) Timeline(c *fiber.Ctx) error {
	cycles, err := strconv.Atoi(c.Query("cycles", "4"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "cycles must be a number")
	}
	resp, err := Timeline(c.Params("id"), cycles)
	if err != nil {
		return exerciseError(c, err)
	}
	return c.JSON(resp)
}

// Live runs the exercise on the server clock and streams every phase change
// as a "phase" event, then a "done" event once the requested cycles finish.
// The session stops when the client disconnects.
func (h *WellnessHandler) Live(c *fiber.Ctx) error {
	ex, err := breathing.Lookup(c.Params("id"))
	if err != nil {
		return exerciseError(c, err)
	}
	if err := ex.Pattern.Validate(); err != nil {
		return exerciseError(c, err)
	}
	cycles, err := strconv.Atoi(c.Query("cycles", "4"))
	if err != nil || cycles < 1 || cycles > MaxCycles {
		return exerciseError(c, ErrInvalidCycles)
	}

	return stream.Serve(c, stream.DefaultKeepAlive, func(ctx context.Context, emit stream.Emit) {
		runLive(ctx, h.sched, ex, cycles, emit)
	})
}

func runLive(ctx context.Context, sched breathing.Scheduler, ex breathing.Exercise, cycles int, emit stream.Emit) {
	states := make(chan breathing.State, 8)
	sess := breathing.NewSession(sched, func(st breathing.State) {
		select {
		case states <- st:
		default:
		}
	})
	if err := sess.Start(ex); err != nil {
		emit(stream.Event{Name: "error", Data: fiber.Map{"message": err.Error()}})
		return
	}
	defer sess.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case st := <-states:
			if st.CyclesCompleted >= cycles {
				final := sess.Stop()
				emit(stream.Event{Name: "done", Data: final})
				return
			}
			if !emit(stream.Event{Name: "phase", Data: st}) {
				return
			}
		}
	}
}

func (h *WellnessHandler) Log(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	var req LogRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	entry, err := h.breathing.Log(userID, req)
	if err != nil {
		return exerciseError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *WellnessHandler) History(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	resp, err := h.breathing.History(userID, limit, offset)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to fetch history")
	}
	return c.JSON(resp)
}

func (h *WellnessHandler) Overview(c *fiber.Ctx) error {
	userID, err := session.UserID(c)
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, "Invalid user")
	}

	resp, err := h.breathing.Overview(userID, session.Location(c, h.fallback))
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "Failed to compute overview")
	}
	return c.JSON(resp)
}
