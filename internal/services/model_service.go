package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"hotspot-service/internal/extraction"
	"hotspot-service/internal/metrics"
	"hotspot-service/internal/models"
	"hotspot-service/internal/repository"
	"hotspot-service/internal/session"
	"hotspot-service/internal/storage"
	"hotspot-service/internal/workflow"
)

var (
	// ErrInvalidImport marks uploads that are not an acceptable GLB model.
	ErrInvalidImport = errors.New("invalid import")
	// ErrModelNotFound is returned for unknown model ids.
	ErrModelNotFound = errors.New("model not found")
	// ErrStorageFull is returned when the blob backend has no room for an
	// upload. Nothing is stored in that case.
	ErrStorageFull = errors.New("model storage is full")
)

// InvalidImportMessage is shown to the user for every rejected upload.
const InvalidImportMessage = "Please upload a GLB file"

func invalidImport(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidImport, fmt.Sprintf(format, args...))
}

// Dispatcher feeds commands to the annotation session.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd workflow.Command) (session.Result, error)
}

// ModelService imports GLB models and turns them into resource handles for
// the rendering surface.
type ModelService struct {
	repo      repository.ModelRepository
	blobs     storage.BlobStore
	session   Dispatcher
	maxUpload int64
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewModelService creates a ModelService. maxUpload bounds the size of an
// accepted upload, archive or model.
func NewModelService(repo repository.ModelRepository, blobs storage.BlobStore, sess Dispatcher,
	maxUpload int64, m *metrics.Metrics, logger zerolog.Logger) *ModelService {
	return &ModelService{
		repo:      repo,
		blobs:     blobs,
		session:   sess,
		maxUpload: maxUpload,
		metrics:   m,
		logger:    logger.With().Str("component", "models").Logger(),
	}
}

// Import validates an upload, stores it and makes it the current model,
// which discards all hotspots of the previous one.
func (s *ModelService) Import(ctx context.Context, filename string, r io.Reader) (*models.Model, error) {
	model, err := s.importModel(ctx, filename, r)
	if err != nil {
		if errors.Is(err, ErrInvalidImport) {
			s.metrics.RecordImport("rejected", 0)
			s.logger.Warn().Err(err).Str("filename", filename).Msg("Import rejected")
		} else {
			s.metrics.RecordImport("failed", 0)
			s.logger.Error().Err(err).Str("filename", filename).Msg("Import failed")
		}
		return nil, err
	}
	s.metrics.RecordImport("accepted", model.Size)

	if _, err := s.session.Dispatch(ctx, workflow.ModelLoaded{Model: *model}); err != nil {
		// The import only counts once it is on screen.
		s.discard(model)
		return nil, pkgerrors.Wrap(err, "failed to load model into session, import rolled back")
	}
	s.logger.Info().Str("model_id", model.ID.String()).Str("filename", model.OriginalFilename).
		Int64("bytes", model.Size).Msg("Model imported")
	return model, nil
}

func (s *ModelService) importModel(ctx context.Context, filename string, r io.Reader) (*models.Model, error) {
	var (
		data     []byte
		origName = filepath.Base(filename)
		err      error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".glb":
		data, err = s.readLimited(r)
	case ".zip":
		data, origName, err = s.readFromArchive(ctx, r)
	default:
		return nil, invalidImport("unsupported file type %q", filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}
	if err := ValidateGLBHeader(data); err != nil {
		return nil, invalidImport("%v", err)
	}

	id := uuid.New()
	model := &models.Model{
		ID:               id,
		OriginalFilename: origName,
		ContentType:      models.GLBContentType,
		Size:             int64(len(data)),
		UploadedAt:       time.Now(),
		StorageKey:       id.String() + ".glb",
	}
	if err := s.blobs.Put(ctx, model.StorageKey, data, model.ContentType); err != nil {
		if errors.Is(err, storage.ErrStoreFull) {
			return nil, fmt.Errorf("%w: %v", ErrStorageFull, err)
		}
		return nil, pkgerrors.Wrap(err, "failed to store model")
	}
	if err := s.repo.CreateModel(model); err != nil {
		// avoid an orphaned blob
		_ = s.blobs.Delete(ctx, model.StorageKey)
		return nil, pkgerrors.Wrap(err, "failed to save metadata to database")
	}
	return model, nil
}

// discard removes a model that was stored but never made current. It runs
// on a fresh context because the request context may be what failed.
func (s *ModelService) discard(model *models.Model) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.DeleteModel(model.ID); err != nil {
		s.logger.Error().Err(err).Str("model_id", model.ID.String()).Msg("Failed to roll back model metadata")
	}
	if err := s.blobs.Delete(ctx, model.StorageKey); err != nil {
		s.logger.Error().Err(err).Str("key", model.StorageKey).Msg("Failed to roll back model blob")
	}
}

func (s *ModelService) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxUpload+1))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read upload")
	}
	if int64(len(data)) > s.maxUpload {
		return nil, invalidImport("file exceeds %d bytes", s.maxUpload)
	}
	return data, nil
}

func (s *ModelService) readFromArchive(ctx context.Context, r io.Reader) ([]byte, string, error) {
	raw, err := s.readLimited(r)
	if err != nil {
		return nil, "", err
	}
	tmp, err := os.CreateTemp("", "upload-*.zip")
	if err != nil {
		return nil, "", pkgerrors.Wrap(err, "could not create temporary file for archive")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	_, err = io.Copy(tmp, bytes.NewReader(raw))
	tmp.Close()
	if err != nil {
		return nil, "", pkgerrors.Wrap(err, "failed to write uploaded archive")
	}

	files, destDir, err := extraction.ExtractArchive(ctx, tmpPath)
	if err != nil {
		return nil, "", invalidImport("unreadable archive: %v", err)
	}
	defer os.RemoveAll(destDir)

	glbPath, err := extraction.SingleGLB(files)
	if err != nil {
		return nil, "", invalidImport("%v", err)
	}
	f, err := os.Open(glbPath)
	if err != nil {
		return nil, "", pkgerrors.Wrap(err, "could not open extracted model")
	}
	defer f.Close()
	data, err := s.readLimited(f)
	if err != nil {
		return nil, "", err
	}
	return data, filepath.Base(glbPath), nil
}

// Get returns the metadata of an imported model.
func (s *ModelService) Get(id uuid.UUID) (*models.Model, error) {
	model, err := s.repo.GetModel(id)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return model, nil
}

// List returns all imported models.
func (s *ModelService) List() ([]models.Model, error) {
	return s.repo.ListModels()
}

// Open returns the model metadata together with its GLB bytes.
func (s *ModelService) Open(ctx context.Context, id uuid.UUID) (*models.Model, []byte, error) {
	model, err := s.Get(id)
	if err != nil {
		return nil, nil, err
	}
	data, err := s.blobs.Get(ctx, model.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, nil, fmt.Errorf("%w: blob %s missing", ErrModelNotFound, model.StorageKey)
		}
		return nil, nil, err
	}
	return model, data, nil
}

// Load makes a previously imported model the current one. Hotspots of the
// previous model are discarded.
func (s *ModelService) Load(ctx context.Context, id uuid.UUID) (models.Snapshot, error) {
	model, err := s.Get(id)
	if err != nil {
		return models.Snapshot{}, err
	}
	ok, err := s.blobs.Exists(ctx, model.StorageKey)
	if err != nil {
		return models.Snapshot{}, err
	}
	if !ok {
		return models.Snapshot{}, fmt.Errorf("%w: blob %s missing", ErrModelNotFound, model.StorageKey)
	}
	res, err := s.session.Dispatch(ctx, workflow.ModelLoaded{Model: *model})
	if err != nil {
		return models.Snapshot{}, err
	}
	return res.Snapshot, nil
}

// Delete removes an imported model. If it is the current model the session
// is left without one.
func (s *ModelService) Delete(ctx context.Context, id uuid.UUID) error {
	model, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, model.StorageKey); err != nil {
		s.logger.Warn().Err(err).Str("key", model.StorageKey).Msg("Failed to remove blob")
	}
	if err := s.repo.DeleteModel(id); err != nil {
		return translateRepoErr(err)
	}
	if _, err := s.session.Dispatch(ctx, workflow.ModelUnloaded{ModelID: id}); err != nil {
		return err
	}
	s.logger.Info().Str("model_id", id.String()).Msg("Model deleted")
	return nil
}

func translateRepoErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrModelNotFound
	}
	return err
}

// StorageStats reports usage of the blob backend holding model bytes.
func (s *ModelService) StorageStats() storage.BlobStats {
	return s.blobs.Stats()
}
