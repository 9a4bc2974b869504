package services

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotspot-service/internal/metrics"
	"hotspot-service/internal/models"
	"hotspot-service/internal/repository"
	"hotspot-service/internal/session"
	"hotspot-service/internal/storage"
	"hotspot-service/internal/workflow"
)

type fixture struct {
	models  *ModelService
	session *SessionService
	ctrl    *session.Controller
	blobs   *storage.MemoryBlobStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithCapacity(t, 1<<20)
}

// newFixtureWithCapacity builds a fixture whose memory blob store holds at
// most capacity bytes.
func newFixtureWithCapacity(t *testing.T, capacity int64) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	repo := repository.NewModelRepository(db)
	require.NoError(t, repo.Migrate())

	m := metrics.NewMetrics(prometheus.NewRegistry())
	ctrl := session.NewController(workflow.New(nil), 8, zerolog.Nop(), m)
	ctx, cancel := context.WithCancel(context.Background())
	go ctrl.Run(ctx)
	t.Cleanup(cancel)

	blobs := storage.NewMemoryBlobStore(capacity, zerolog.Nop())
	return &fixture{
		models:  NewModelService(repo, blobs, ctrl, 4096, m, zerolog.Nop()),
		session: NewSessionService(ctrl),
		ctrl:    ctrl,
		blobs:   blobs,
	}
}

func zipOf(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func placeOne(t *testing.T, f *fixture, p models.Vec3) *models.Hotspot {
	t.Helper()
	ctx := context.Background()
	_, err := f.session.StartPlacing(ctx)
	require.NoError(t, err)
	h, _, err := f.session.ReportRay(ctx, models.RayReport{Hit: true, Point: p[:]})
	require.NoError(t, err)
	require.NotNil(t, h)
	return h
}

func TestModelService_ImportGLB(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	model, err := f.models.Import(ctx, "Duck.GLB", bytes.NewReader(makeGLB(100)))
	require.NoError(t, err)
	assert.Equal(t, "Duck.GLB", model.OriginalFilename)
	assert.Equal(t, models.GLBContentType, model.ContentType)
	assert.Equal(t, int64(100), model.Size)
	assert.Equal(t, model.ID.String()+".glb", model.StorageKey)

	snap, err := f.session.Snapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.Model)
	assert.Equal(t, model.ID, snap.Model.ID)

	got, data, err := f.models.Open(ctx, model.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ID, got.ID)
	assert.Len(t, data, 100)
}

func TestModelService_ImportRejectsWrongType(t *testing.T) {
	f := newFixture(t)
	_, err := f.models.Import(context.Background(), "scene.fbx", strings.NewReader("whatever"))
	assert.ErrorIs(t, err, ErrInvalidImport)

	list, err := f.models.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestModelService_ImportRejectsBadHeader(t *testing.T) {
	f := newFixture(t)
	_, err := f.models.Import(context.Background(), "fake.glb", strings.NewReader("this is not binary gltf"))
	assert.ErrorIs(t, err, ErrInvalidImport)
	assert.Zero(t, f.blobs.Stats().Objects)
}

func TestModelService_ImportRejectsOversized(t *testing.T) {
	f := newFixture(t)
	_, err := f.models.Import(context.Background(), "big.glb", bytes.NewReader(makeGLB(5000)))
	assert.ErrorIs(t, err, ErrInvalidImport)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestModelService_ImportRejectionKeepsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.models.Import(ctx, "duck.glb", bytes.NewReader(makeGLB(64)))
	require.NoError(t, err)
	placeOne(t, f, models.Vec3{1, 2, 3})

	_, err = f.models.Import(ctx, "notes.txt", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrInvalidImport)

	hotspots, err := f.session.ListHotspots(ctx)
	require.NoError(t, err)
	assert.Len(t, hotspots, 1)
}

func TestModelService_ImportZip(t *testing.T) {
	f := newFixture(t)
	archive := zipOf(t, map[string][]byte{
		"assets/helmet.glb":   makeGLB(80),
		"assets/._helmet.glb": []byte("resource fork"),
		"assets/texture.png":  []byte("png"),
	})

	model, err := f.models.Import(context.Background(), "helmet.zip", bytes.NewReader(archive))
	require.NoError(t, err)
	assert.Equal(t, "helmet.glb", model.OriginalFilename)
	assert.Equal(t, int64(80), model.Size)
}

func TestModelService_ImportZipWithoutModel(t *testing.T) {
	f := newFixture(t)
	archive := zipOf(t, map[string][]byte{"readme.txt": []byte("hi")})

	_, err := f.models.Import(context.Background(), "empty.zip", bytes.NewReader(archive))
	assert.ErrorIs(t, err, ErrInvalidImport)
}

func TestModelService_ImportZipWithTwoModels(t *testing.T) {
	f := newFixture(t)
	archive := zipOf(t, map[string][]byte{"a.glb": makeGLB(20), "b.glb": makeGLB(20)})

	_, err := f.models.Import(context.Background(), "two.zip", bytes.NewReader(archive))
	assert.ErrorIs(t, err, ErrInvalidImport)
}

func TestModelService_NewImportClearsHotspots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.models.Import(ctx, "a.glb", bytes.NewReader(makeGLB(64)))
	require.NoError(t, err)
	placeOne(t, f, models.Vec3{1, 2, 3})
	_, err = f.session.StartPlacing(ctx)
	require.NoError(t, err)

	_, err = f.models.Import(ctx, "b.glb", bytes.NewReader(makeGLB(64)))
	require.NoError(t, err)

	snap, err := f.session.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Hotspots)
	assert.False(t, snap.Placing)
	assert.Equal(t, "b.glb", snap.Model.OriginalFilename)
}

func TestModelService_LoadExisting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.models.Import(ctx, "a.glb", bytes.NewReader(makeGLB(64)))
	require.NoError(t, err)
	_, err = f.models.Import(ctx, "b.glb", bytes.NewReader(makeGLB(64)))
	require.NoError(t, err)
	placeOne(t, f, models.Vec3{0, 0, 0})

	snap, err := f.models.Load(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, snap.Model.ID)
	assert.Empty(t, snap.Hotspots)

	_, err = f.models.Load(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestModelService_DeleteCurrentUnloads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	model, err := f.models.Import(ctx, "a.glb", bytes.NewReader(makeGLB(64)))
	require.NoError(t, err)
	placeOne(t, f, models.Vec3{1, 1, 1})

	require.NoError(t, f.models.Delete(ctx, model.ID))

	snap, err := f.session.Snapshot(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap.Model)
	assert.Empty(t, snap.Hotspots)

	_, err = f.models.Get(model.ID)
	assert.ErrorIs(t, err, ErrModelNotFound)
	_, _, err = f.models.Open(ctx, model.ID)
	assert.ErrorIs(t, err, ErrModelNotFound)
	assert.ErrorIs(t, f.models.Delete(ctx, model.ID), ErrModelNotFound)
}

func TestModelService_OpenMissingBlob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	model, err := f.models.Import(ctx, "a.glb", bytes.NewReader(makeGLB(64)))
	require.NoError(t, err)

	require.NoError(t, f.blobs.Delete(ctx, model.StorageKey))
	_, _, err = f.models.Open(ctx, model.ID)
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestModelService_ImportWhenStorageFull(t *testing.T) {
	f := newFixtureWithCapacity(t, 1000)
	ctx := context.Background()

	first, err := f.models.Import(ctx, "first.glb", bytes.NewReader(makeGLB(600)))
	require.NoError(t, err)
	placeOne(t, f, models.Vec3{1, 2, 3})

	_, err = f.models.Import(ctx, "second.glb", bytes.NewReader(makeGLB(600)))
	require.ErrorIs(t, err, ErrStorageFull)

	// Every listed model can still be opened.
	list, err := f.models.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)
	for _, m := range list {
		_, data, err := f.models.Open(ctx, m.ID)
		require.NoError(t, err)
		assert.Len(t, data, int(m.Size))
	}

	// The session keeps the first model and its hotspot.
	snap, err := f.session.Snapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.Model)
	assert.Equal(t, first.ID, snap.Model.ID)
	assert.Len(t, snap.Hotspots, 1)

	require.NoError(t, f.models.Delete(ctx, first.ID))
	_, err = f.models.Import(ctx, "second.glb", bytes.NewReader(makeGLB(600)))
	assert.NoError(t, err)
}

func TestModelService_ImportRolledBackWhenSessionClosed(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Close()

	_, err := f.models.Import(context.Background(), "a.glb", bytes.NewReader(makeGLB(64)))
	require.ErrorIs(t, err, session.ErrClosed)
	assert.Contains(t, err.Error(), "rolled back")

	list, err := f.models.List()
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, f.blobs.Stats().Objects)
}
