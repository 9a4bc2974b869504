package models

// Snapshot is the read-only view of the annotation session shared by the
// hotspot panel and the marker renderer.
type Snapshot struct {
	State      string    `json:"state"`
	Placing    bool      `json:"placing"`
	Model      *Model    `json:"model,omitempty"`
	Generation uint64    `json:"generation"`
	Hotspots   []Hotspot `json:"hotspots"`
}
