package models

import "github.com/go-gl/mathgl/mgl64"

// Vec3 is a point in the model's world space. It marshals as [x, y, z].
type Vec3 = mgl64.Vec3

// Hotspot is a labeled annotation anchored to a fixed point on the loaded model.
type Hotspot struct {
	ID          string `json:"id"`
	Position    Vec3   `json:"position"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// HotspotPatch carries a partial edit. Nil fields are left unchanged.
type HotspotPatch struct {
	Label       *string `json:"label,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p HotspotPatch) Empty() bool {
	return p.Label == nil && p.Description == nil
}

// Apply copies the set fields onto h. ID and Position are never touched.
func (p HotspotPatch) Apply(h *Hotspot) {
	if p.Label != nil {
		h.Label = *p.Label
	}
	if p.Description != nil {
		h.Description = *p.Description
	}
}
