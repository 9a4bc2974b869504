package workflow

import (
	"github.com/google/uuid"

	"hotspot-service/internal/models"
)

// Command is a discrete user or rendering-surface event consumed by the Workflow.
type Command interface {
	Name() string
}

// StartPlacing asks for the next ray hit to create a hotspot.
type StartPlacing struct{}

// CancelPlacing leaves placement mode without creating anything.
type CancelPlacing struct{}

// HotspotPlaced carries a world-space point hit by a placement click.
type HotspotPlaced struct {
	Point models.Vec3
	// Generation of the model the hit was computed on; zero skips the check.
	Generation uint64
}

// RayMissed reports a placement click that landed off the model.
type RayMissed struct{}

// UpdateHotspot edits label and/or description of a hotspot.
type UpdateHotspot struct {
	ID    string
	Patch models.HotspotPatch
}

// DeleteHotspot removes a single hotspot.
type DeleteHotspot struct {
	ID string
}

// ModelLoaded replaces the current model.
type ModelLoaded struct {
	Model models.Model
}

// ModelUnloaded drops the current model if it matches ModelID.
type ModelUnloaded struct {
	ModelID uuid.UUID
}

func (StartPlacing) Name() string  { return "start_placing" }
func (CancelPlacing) Name() string { return "cancel_placing" }
func (HotspotPlaced) Name() string { return "hotspot_placed" }
func (RayMissed) Name() string     { return "ray_missed" }
func (UpdateHotspot) Name() string { return "update_hotspot" }
func (DeleteHotspot) Name() string { return "delete_hotspot" }
func (ModelLoaded) Name() string   { return "model_loaded" }
func (ModelUnloaded) Name() string { return "model_unloaded" }
