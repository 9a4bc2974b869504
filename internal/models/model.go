package models

import (
	"time"

	"github.com/google/uuid"
)

// GLBContentType is the media type of every stored model.
const GLBContentType = "model/gltf-binary"

// Model represents the metadata of an imported GLB asset. Its ID is the
// opaque resource handle the rendering surface uses to fetch the bytes.
type Model struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	Size             int64     `json:"size"`
	UploadedAt       time.Time `json:"uploaded_at"`
	StorageKey       string    `json:"storage_key"`
}
