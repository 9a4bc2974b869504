package services

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

// makeGLB returns a minimal well-formed GLB container of the given total size.
func makeGLB(size int) []byte {
	if size < glbHeaderSize {
		size = glbHeaderSize
	}
	data := make([]byte, size)
	binary.LittleEndian.PutUint32(data[0:4], glbMagic)
	binary.LittleEndian.PutUint32(data[4:8], glbVersion)
	binary.LittleEndian.PutUint32(data[8:12], uint32(size))
	return data
}

func TestValidateGLBHeader(t *testing.T) {
	assert.NoError(t, ValidateGLBHeader(makeGLB(64)))
	assert.Equal(t, "glTF", string(makeGLB(12)[:4]))

	assert.ErrorContains(t, ValidateGLBHeader([]byte("glTF")), "too small")

	bad := makeGLB(64)
	copy(bad, "GLTF")
	assert.ErrorContains(t, ValidateGLBHeader(bad), "not a GLB")

	v1 := makeGLB(64)
	binary.LittleEndian.PutUint32(v1[4:8], 1)
	assert.ErrorContains(t, ValidateGLBHeader(v1), "version 1")

	truncated := makeGLB(64)[:40]
	assert.ErrorContains(t, ValidateGLBHeader(truncated), "declares 64 bytes")
}
