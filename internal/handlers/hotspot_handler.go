package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"hotspot-service/internal/models"
	"hotspot-service/internal/services"
)

const HotspotNotFoundError = "hotspot not found"

// HotspotHandler serves the hotspot operations of the editing panel for
// the current session.
type HotspotHandler struct {
	Service *services.SessionService
	logger  zerolog.Logger
}

func NewHotspotHandler(service *services.SessionService, logger zerolog.Logger) *HotspotHandler {
	return &HotspotHandler{
		Service: service,
		logger:  logger.With().Str("component", "hotspot_handler").Logger(),
	}
}

// ListHotspots handles GET /hotspots.
// @Summary List hotspots in creation order
// @Tags hotspots
// @Produce json
// @Success 200 {array} models.Hotspot
// @Router /hotspots [get]
func (h *HotspotHandler) ListHotspots(c *fiber.Ctx) error {
	list, err := h.Service.ListHotspots(c.UserContext())
	if err != nil {
		return sessionError(c, err)
	}
	if list == nil {
		list = []models.Hotspot{}
	}
	return c.JSON(list)
}

// GetHotspot handles GET /hotspots/:id.
// @Summary Get a hotspot
// @Tags hotspots
// @Produce json
// @Param id path string true "Hotspot ID"
// @Success 200 {object} models.Hotspot
// @Failure 404 {object} map[string]interface{} "Hotspot not found"
// @Router /hotspots/{id} [get]
func (h *HotspotHandler) GetHotspot(c *fiber.Ctx) error {
	hotspot, ok, err := h.Service.GetHotspot(c.UserContext(), c.Params("id"))
	if err != nil {
		return sessionError(c, err)
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": true, "message": HotspotNotFoundError,
		})
	}
	return c.JSON(hotspot)
}

// UpdateHotspot handles PATCH /hotspots/:id.
// @Summary Edit a hotspot's label or description
// @Description Unknown ids are ignored; updated reports whether anything was edited.
// @Tags hotspots
// @Accept json
// @Produce json
// @Param id path string true "Hotspot ID"
// @Param patch body models.HotspotPatch true "Fields to change"
// @Success 200 {object} map[string]interface{} "whether it applied and the hotspot list"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Router /hotspots/{id} [patch]
func (h *HotspotHandler) UpdateHotspot(c *fiber.Ctx) error {
	var patch models.HotspotPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "Invalid request format", "details": err.Error(),
		})
	}
	id := c.Params("id")
	found, list, err := h.Service.UpdateHotspot(c.UserContext(), id, patch)
	if err != nil {
		return sessionError(c, err)
	}
	if !found {
		h.logger.Debug().Str("id", id).Msg("Update for unknown hotspot ignored")
	}
	return c.JSON(fiber.Map{"updated": found, "hotspots": nonNil(list)})
}

// DeleteHotspot handles DELETE /hotspots/:id.
// @Summary Delete a hotspot
// @Description Unknown ids are ignored; deleted reports whether anything was removed.
// @Tags hotspots
// @Produce json
// @Param id path string true "Hotspot ID"
// @Success 200 {object} map[string]interface{} "whether it applied and the hotspot list"
// @Router /hotspots/{id} [delete]
func (h *HotspotHandler) DeleteHotspot(c *fiber.Ctx) error {
	id := c.Params("id")
	found, list, err := h.Service.DeleteHotspot(c.UserContext(), id)
	if err != nil {
		return sessionError(c, err)
	}
	if !found {
		h.logger.Debug().Str("id", id).Msg("Delete for unknown hotspot ignored")
	}
	return c.JSON(fiber.Map{"deleted": found, "hotspots": nonNil(list)})
}

func nonNil(list []models.Hotspot) []models.Hotspot {
	if list == nil {
		return []models.Hotspot{}
	}
	return list
}
