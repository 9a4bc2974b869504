package services

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotspot-service/internal/models"
	"hotspot-service/internal/workflow"
)

func strPtr(s string) *string { return &s }

func TestSessionService_PlacementFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.models.Import(ctx, "a.glb", bytes.NewReader(makeGLB(64)))
	require.NoError(t, err)

	snap, err := f.session.StartPlacing(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Placing)

	h, snap, err := f.session.ReportRay(ctx, models.RayReport{Hit: false})
	require.NoError(t, err)
	assert.Nil(t, h)
	assert.True(t, snap.Placing)

	p := models.Vec3{1, 2, 3}
	h, snap, err = f.session.ReportRay(ctx, models.RayReport{Hit: true, Point: p[:], Generation: snap.Generation})
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, p, h.Position)
	assert.Equal(t, "Hotspot 1", h.Label)
	assert.Equal(t, workflow.DefaultDescription, h.Description)
	assert.False(t, snap.Placing)
}

func TestSessionService_CancelThenLateHit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.models.Import(ctx, "a.glb", bytes.NewReader(makeGLB(64)))
	require.NoError(t, err)

	_, err = f.session.StartPlacing(ctx)
	require.NoError(t, err)
	snap, err := f.session.CancelPlacing(ctx)
	require.NoError(t, err)
	assert.Equal(t, "idle", snap.State)

	p := models.Vec3{1, 2, 3}
	h, snap, err := f.session.ReportRay(ctx, models.RayReport{Hit: true, Point: p[:]})
	require.NoError(t, err)
	assert.Nil(t, h)
	assert.Empty(t, snap.Hotspots)
}

func TestSessionService_InvalidRay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.session.ReportRay(ctx, models.RayReport{Hit: true})
	assert.ErrorIs(t, err, ErrInvalidRay)

	p := models.Vec3{math.NaN(), 0, 0}
	_, _, err = f.session.ReportRay(ctx, models.RayReport{Hit: true, Point: p[:]})
	assert.ErrorIs(t, err, ErrInvalidRay)

	p = models.Vec3{0, math.Inf(1), 0}
	_, _, err = f.session.ReportRay(ctx, models.RayReport{Hit: true, Point: p[:]})
	assert.ErrorIs(t, err, ErrInvalidRay)
}

func TestSessionService_RayPointNeedsThreeComponents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.models.Import(ctx, "a.glb", bytes.NewReader(makeGLB(64)))
	require.NoError(t, err)
	_, err = f.session.StartPlacing(ctx)
	require.NoError(t, err)

	for _, point := range [][]float64{{}, {1, 2}, {1, 2, 3, 4}} {
		h, _, err := f.session.ReportRay(ctx, models.RayReport{Hit: true, Point: point})
		assert.ErrorIs(t, err, ErrInvalidRay, "point %v", point)
		assert.Nil(t, h)
	}

	// Nothing was placed and placement mode is still active.
	snap, err := f.session.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Placing)
	assert.Empty(t, snap.Hotspots)
}

func TestSessionService_UpdateAbsentIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.models.Import(ctx, "a.glb", bytes.NewReader(makeGLB(64)))
	require.NoError(t, err)
	h := placeOne(t, f, models.Vec3{1, 2, 3})

	found, list, err := f.session.UpdateHotspot(ctx, h.ID, models.HotspotPatch{Label: strPtr("Foo")})
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, list, 1)
	assert.Equal(t, "Foo", list[0].Label)

	found, list, err = f.session.UpdateHotspot(ctx, "b", models.HotspotPatch{Label: strPtr("Bar")})
	require.NoError(t, err)
	assert.False(t, found)
	require.Len(t, list, 1)
	assert.Equal(t, "Foo", list[0].Label)
	assert.Equal(t, h.ID, list[0].ID)
}

func TestSessionService_DeleteTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.models.Import(ctx, "a.glb", bytes.NewReader(makeGLB(64)))
	require.NoError(t, err)
	h := placeOne(t, f, models.Vec3{1, 2, 3})

	found, list, err := f.session.DeleteHotspot(ctx, h.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, list)

	found, _, err = f.session.DeleteHotspot(ctx, h.ID)
	require.NoError(t, err)
	assert.False(t, found)

	found, _, err = f.session.UpdateHotspot(ctx, h.ID, models.HotspotPatch{Label: strPtr("x")})
	require.NoError(t, err)
	assert.False(t, found)

	_, ok, err := f.session.GetHotspot(ctx, h.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
