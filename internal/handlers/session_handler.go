package handlers

import (
	"bufio"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"hotspot-service/internal/models"
	"hotspot-service/internal/services"
)

// sseHeartbeat is how often an idle event stream sends a comment line so
// that dead clients are noticed.
const sseHeartbeat = 15 * time.Second

// SessionHandler exposes the placement workflow to the rendering surface and
// the editing panel.
type SessionHandler struct {
	Service          *services.SessionService
	subscriberBuffer int
	logger           zerolog.Logger
}

func NewSessionHandler(service *services.SessionService, subscriberBuffer int, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		Service:          service,
		subscriberBuffer: subscriberBuffer,
		logger:           logger.With().Str("component", "session_handler").Logger(),
	}
}

func sessionError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": true, "message": "session unavailable", "details": err.Error(),
	})
}

// GetSession handles GET /session.
// @Summary Current session snapshot
// @Tags session
// @Produce json
// @Success 200 {object} models.Snapshot
// @Router /session [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	snap, err := h.Service.Snapshot(c.UserContext())
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(snap)
}

// StartPlacement handles POST /session/placement.
// @Summary Enter placement mode
// @Description The next click reported on the model becomes a hotspot. Ignored while already placing.
// @Tags session
// @Produce json
// @Success 200 {object} models.Snapshot
// @Router /session/placement [post]
func (h *SessionHandler) StartPlacement(c *fiber.Ctx) error {
	snap, err := h.Service.StartPlacing(c.UserContext())
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(snap)
}

// CancelPlacement handles DELETE /session/placement.
// @Summary Leave placement mode without adding a hotspot
// @Tags session
// @Produce json
// @Success 200 {object} models.Snapshot
// @Router /session/placement [delete]
func (h *SessionHandler) CancelPlacement(c *fiber.Ctx) error {
	snap, err := h.Service.CancelPlacing(c.UserContext())
	if err != nil {
		return sessionError(c, err)
	}
	return c.JSON(snap)
}

// ReportRay handles POST /session/ray.
// @Summary Report a click ray result
// @Description Sent by the rendering surface after a click while placing. A hit creates a hotspot at the point; a miss keeps placement mode active.
// @Tags session
// @Accept json
// @Produce json
// @Param report body models.RayReport true "Ray result"
// @Success 200 {object} map[string]interface{} "placed, hotspot (null when none was created) and session"
// @Failure 400 {object} map[string]interface{} "Invalid ray report"
// @Router /session/ray [post]
func (h *SessionHandler) ReportRay(c *fiber.Ctx) error {
	var report models.RayReport
	if err := c.BodyParser(&report); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "Invalid request format", "details": err.Error(),
		})
	}
	hotspot, snap, err := h.Service.ReportRay(c.UserContext(), report)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRay) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": true, "message": "Invalid ray report", "details": err.Error(),
			})
		}
		return sessionError(c, err)
	}
	return c.JSON(fiber.Map{"placed": hotspot != nil, "hotspot": hotspot, "session": snap})
}

// Events handles GET /session/events as a server-sent event stream. Each
// state change is sent as an event named "snapshot".
// @Summary Stream session snapshots
// @Tags session
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /session/events [get]
func (h *SessionHandler) Events(c *fiber.Ctx) error {
	initial, err := h.Service.Snapshot(c.UserContext())
	if err != nil {
		return sessionError(c, err)
	}
	updates, unsubscribe := h.Service.Subscribe(h.subscriberBuffer)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	logger := h.logger.With().Str("ip", c.IP()).Logger()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()
		logger.Debug().Msg("Event stream opened")

		events := &snapshotEvents{w: w}
		if err := events.write(initial); err != nil {
			return
		}
		heartbeat := time.NewTicker(sseHeartbeat)
		defer heartbeat.Stop()
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					logger.Debug().Msg("Event stream closed by session")
					return
				}
				if err := events.write(snap); err != nil {
					logger.Debug().Err(err).Msg("Event stream client went away")
					return
				}
			case <-heartbeat.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
	return nil
}

// snapshotEvents writes snapshots as SSE events. Event ids count up from 1
// per stream.
type snapshotEvents struct {
	w   *bufio.Writer
	seq uint64
}

func (e *snapshotEvents) write(snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	e.seq++
	if _, err := fmt.Fprintf(e.w, "event: snapshot\nid: %d\ndata: %s\n\n", e.seq, data); err != nil {
		return err
	}
	return e.w.Flush()
}
