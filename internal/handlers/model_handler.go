package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"hotspot-service/internal/metrics"
	"hotspot-service/internal/models"
	"hotspot-service/internal/services"
)

const InvalidUuidError = "invalid UUID"
const ModelNotFoundError = "model not found"

// ModelHandler defines handlers for importing and serving GLB models.
type ModelHandler struct {
	Service *services.ModelService
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewModelHandler creates a new ModelHandler with the given ModelService.
func NewModelHandler(service *services.ModelService, m *metrics.Metrics, logger zerolog.Logger) *ModelHandler {
	return &ModelHandler{
		Service: service,
		metrics: m,
		logger:  logger.With().Str("component", "model_handler").Logger(),
	}
}

// parseID reads the :id parameter. When ok is false the 400 response has
// already been written and err is the result of writing it.
func (h *ModelHandler) parseID(c *fiber.Ctx) (id uuid.UUID, ok bool, err error) {
	idStr := c.Params("id")
	id, perr := uuid.Parse(idStr)
	if perr != nil {
		h.logger.Warn().Str("id", idStr).Err(perr).Msg("Invalid UUID format")
		return uuid.Nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	return id, true, nil
}

func (h *ModelHandler) modelError(c *fiber.Ctx, id uuid.UUID, err error) error {
	if errors.Is(err, services.ErrModelNotFound) {
		h.logger.Info().Str("id", id.String()).Msg("Model not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": true, "message": ModelNotFoundError,
		})
	}
	h.logger.Error().Str("id", id.String()).Err(err).Msg("Model request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": true, "message": err.Error(),
	})
}

// ImportModel handles POST /models.
// @Summary Import a GLB model
// @Description Upload a .glb file, or a .zip holding exactly one .glb. The model replaces the one in the viewer and clears all hotspots.
// @Tags models
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "GLB file or zip archive"
// @Success 201 {object} models.Model "Model imported and loaded"
// @Failure 400 {object} map[string]interface{} "Not a GLB file"
// @Failure 507 {object} map[string]interface{} "Model storage is full"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /models [post]
func (h *ModelHandler) ImportModel(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to read upload")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": services.InvalidImportMessage, "details": err.Error(),
		})
	}
	h.logger.Info().Str("filename", fileHeader.Filename).Int64("size", fileHeader.Size).Msg("Processing model upload")

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": "failed to open upload: " + err.Error(),
		})
	}
	defer f.Close()

	model, err := h.Service.Import(c.UserContext(), fileHeader.Filename, f)
	if err != nil {
		if errors.Is(err, services.ErrInvalidImport) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": true, "message": services.InvalidImportMessage, "details": err.Error(),
			})
		}
		if errors.Is(err, services.ErrStorageFull) {
			return c.Status(fiber.StatusInsufficientStorage).JSON(fiber.Map{
				"error": true, "message": "model storage is full", "details": err.Error(),
			})
		}
		h.logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Model import failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(model)
}

// ListModels handles GET /models.
// @Summary List imported models
// @Tags models
// @Produce json
// @Success 200 {array} models.Model "Imported models, newest first"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /models [get]
func (h *ModelHandler) ListModels(c *fiber.Ctx) error {
	list, err := h.Service.List()
	if err != nil {
		h.logger.Error().Err(err).Msg("Error listing models")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": true, "message": err.Error(),
		})
	}
	if list == nil {
		list = []models.Model{}
	}
	return c.JSON(list)
}

// GetModel handles GET /models/:id.
// @Summary Get model metadata
// @Tags models
// @Produce json
// @Param id path string true "Model ID" Format(uuid)
// @Success 200 {object} models.Model "Model found"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 404 {object} map[string]interface{} "Model not found"
// @Router /models/{id} [get]
func (h *ModelHandler) GetModel(c *fiber.Ctx) error {
	id, ok, err := h.parseID(c)
	if !ok {
		return err
	}
	model, err := h.Service.Get(id)
	if err != nil {
		return h.modelError(c, id, err)
	}
	return c.JSON(model)
}

// DownloadModel handles GET /models/:id/download and streams the GLB bytes
// to the rendering surface.
// @Summary Download model bytes
// @Tags models
// @Produce application/octet-stream
// @Param id path string true "Model ID" Format(uuid)
// @Success 200 {file} file "GLB file"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 404 {object} map[string]interface{} "Model not found"
// @Router /models/{id}/download [get]
func (h *ModelHandler) DownloadModel(c *fiber.Ctx) error {
	start := time.Now()
	id, ok, err := h.parseID(c)
	if !ok {
		return err
	}
	model, data, err := h.Service.Open(c.UserContext(), id)
	if err != nil {
		return h.modelError(c, id, err)
	}

	c.Set(fiber.HeaderContentType, model.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", model.OriginalFilename))
	c.Set(fiber.HeaderCacheControl, "private, max-age=3600")
	h.metrics.RecordDownloadLatency(float64(time.Since(start).Microseconds()) / 1000)
	h.logger.Debug().Str("id", id.String()).Int("bytes", len(data)).Msg("Model downloaded")
	return c.Send(data)
}

// DeleteModel handles DELETE /models/:id.
// @Summary Delete an imported model
// @Description Removes the model. If it is the one being viewed, the viewer is emptied.
// @Tags models
// @Param id path string true "Model ID" Format(uuid)
// @Success 204 "Deleted"
// @Failure 400 {object} map[string]interface{} "Invalid UUID"
// @Failure 404 {object} map[string]interface{} "Model not found"
// @Router /models/{id} [delete]
func (h *ModelHandler) DeleteModel(c *fiber.Ctx) error {
	id, ok, err := h.parseID(c)
	if !ok {
		return err
	}
	if err := h.Service.Delete(c.UserContext(), id); err != nil {
		return h.modelError(c, id, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LoadModel handles POST /session/model and shows a previously imported model.
// @Summary Load an imported model into the viewer
// @Description Replaces the viewed model and clears all hotspots.
// @Tags session
// @Accept json
// @Produce json
// @Param request body models.LoadModelRequest true "Model to load"
// @Success 200 {object} models.Snapshot "Session after the load"
// @Failure 400 {object} map[string]interface{} "Bad request"
// @Failure 404 {object} map[string]interface{} "Model not found"
// @Router /session/model [post]
func (h *ModelHandler) LoadModel(c *fiber.Ctx) error {
	var req models.LoadModelRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": "Invalid request format", "details": err.Error(),
		})
	}
	id, err := uuid.Parse(req.ModelID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": true, "message": InvalidUuidError,
		})
	}
	snap, err := h.Service.Load(c.UserContext(), id)
	if err != nil {
		return h.modelError(c, id, err)
	}
	return c.JSON(snap)
}

// GetStorageStats handles GET /storage/stats.
// @Summary Blob storage statistics
// @Description Object count, size and hit rate of the backend holding model bytes
// @Tags models
// @Produce json
// @Success 200 {object} storage.BlobStats
// @Router /storage/stats [get]
func (h *ModelHandler) GetStorageStats(c *fiber.Ctx) error {
	return c.JSON(h.Service.StorageStats())
}
