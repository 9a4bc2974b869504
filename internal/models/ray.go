package models

// RayReport is posted by the rendering surface after a click in placement mode.
type RayReport struct {
	Hit bool `json:"hit"`
	// Point is the hit in world space. It is decoded as a slice so that a
	// point without exactly three components can be rejected.
	Point []float64 `json:"point,omitempty"`
	// Generation of the model the ray was cast against; zero means unknown.
	Generation uint64 `json:"generation,omitempty"`
}

// LoadModelRequest selects a previously imported model for viewing.
type LoadModelRequest struct {
	ModelID string `json:"modelId"`
}
