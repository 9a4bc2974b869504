package services

import (
	"encoding/binary"
	"fmt"
)

const (
	glbMagic      = 0x46546C67 // "glTF" little-endian
	glbVersion    = 2
	glbHeaderSize = 12
)

// ValidateGLBHeader checks the 12-byte binary glTF header: magic, container
// version and declared length. The chunks themselves are left to the renderer.
func ValidateGLBHeader(data []byte) error {
	if len(data) < glbHeaderSize {
		return fmt.Errorf("file too small for a GLB header (%d bytes)", len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != glbMagic {
		return fmt.Errorf("not a GLB file (magic %#08x)", magic)
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != glbVersion {
		return fmt.Errorf("unsupported GLB version %d", version)
	}
	if length := binary.LittleEndian.Uint32(data[8:12]); int64(length) != int64(len(data)) {
		return fmt.Errorf("GLB header declares %d bytes, file has %d", length, len(data))
	}
	return nil
}
