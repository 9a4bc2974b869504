package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Register mounts the viewer API on r.
func Register(r fiber.Router, mh *ModelHandler, sess *SessionHandler, hotspots *HotspotHandler) {
	r.Get("/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	r.Post("/models", mh.ImportModel)
	r.Get("/models", mh.ListModels)
	r.Get("/models/:id", mh.GetModel)
	r.Delete("/models/:id", mh.DeleteModel)
	r.Get("/models/:id/download", mh.DownloadModel)
	r.Get("/storage/stats", mh.GetStorageStats)

	r.Get("/session", sess.GetSession)
	r.Post("/session/model", mh.LoadModel)
	r.Post("/session/placement", sess.StartPlacement)
	r.Delete("/session/placement", sess.CancelPlacement)
	r.Post("/session/ray", sess.ReportRay)
	r.Get("/session/events", sess.Events)

	r.Get("/hotspots", hotspots.ListHotspots)
	r.Get("/hotspots/:id", hotspots.GetHotspot)
	r.Patch("/hotspots/:id", hotspots.UpdateHotspot)
	r.Delete("/hotspots/:id", hotspots.DeleteHotspot)
}
