package services

import (
	"context"
	"errors"
	"math"

	pkgerrors "github.com/pkg/errors"

	"hotspot-service/internal/models"
	"hotspot-service/internal/session"
	"hotspot-service/internal/workflow"
)

// ErrInvalidRay is returned for ray reports that cannot describe a hit.
var ErrInvalidRay = errors.New("invalid ray report")

// SessionController is the part of session.Controller used by the services.
type SessionController interface {
	Dispatcher
	Snapshot(ctx context.Context) (models.Snapshot, error)
	Hotspot(ctx context.Context, id string) (models.Hotspot, bool, error)
	Subscribe(buffer int) (<-chan models.Snapshot, func())
}

// SessionService translates editing-panel and rendering-surface requests
// into workflow commands.
type SessionService struct {
	ctrl SessionController
}

func NewSessionService(ctrl SessionController) *SessionService {
	return &SessionService{ctrl: ctrl}
}

func (s *SessionService) Snapshot(ctx context.Context) (models.Snapshot, error) {
	return s.ctrl.Snapshot(ctx)
}

func (s *SessionService) StartPlacing(ctx context.Context) (models.Snapshot, error) {
	res, err := s.ctrl.Dispatch(ctx, workflow.StartPlacing{})
	return res.Snapshot, err
}

func (s *SessionService) CancelPlacing(ctx context.Context) (models.Snapshot, error) {
	res, err := s.ctrl.Dispatch(ctx, workflow.CancelPlacing{})
	return res.Snapshot, err
}

// ReportRay feeds a click result from the rendering surface. It returns the
// created hotspot, or nil when the report was a miss or was dropped.
func (s *SessionService) ReportRay(ctx context.Context, report models.RayReport) (*models.Hotspot, models.Snapshot, error) {
	var cmd workflow.Command = workflow.RayMissed{}
	if report.Hit {
		point, err := rayPoint(report.Point)
		if err != nil {
			return nil, models.Snapshot{}, err
		}
		cmd = workflow.HotspotPlaced{Point: point, Generation: report.Generation}
	}
	res, err := s.ctrl.Dispatch(ctx, cmd)
	if err != nil {
		return nil, models.Snapshot{}, err
	}
	return res.Outcome.Hotspot, res.Snapshot, nil
}

// rayPoint checks that a reported hit is a finite 3-component point.
func rayPoint(p []float64) (models.Vec3, error) {
	if p == nil {
		return models.Vec3{}, pkgerrors.Wrap(ErrInvalidRay, "hit without point")
	}
	if len(p) != 3 {
		return models.Vec3{}, pkgerrors.Wrapf(ErrInvalidRay, "point has %d components, want 3", len(p))
	}
	var v models.Vec3
	for i, c := range p {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return models.Vec3{}, pkgerrors.Wrap(ErrInvalidRay, "point is not finite")
		}
		v[i] = c
	}
	return v, nil
}

func (s *SessionService) ListHotspots(ctx context.Context) ([]models.Hotspot, error) {
	snap, err := s.ctrl.Snapshot(ctx)
	return snap.Hotspots, err
}

func (s *SessionService) GetHotspot(ctx context.Context, id string) (models.Hotspot, bool, error) {
	return s.ctrl.Hotspot(ctx, id)
}

// UpdateHotspot applies patch. found is false if the id is unknown, which is not an error.
func (s *SessionService) UpdateHotspot(ctx context.Context, id string, patch models.HotspotPatch) (found bool, hotspots []models.Hotspot, err error) {
	res, err := s.ctrl.Dispatch(ctx, workflow.UpdateHotspot{ID: id, Patch: patch})
	if err != nil {
		return false, nil, err
	}
	return res.Outcome.Found, res.Snapshot.Hotspots, nil
}

// DeleteHotspot removes a hotspot. found is false if the id is unknown, which is not an error.
func (s *SessionService) DeleteHotspot(ctx context.Context, id string) (found bool, hotspots []models.Hotspot, err error) {
	res, err := s.ctrl.Dispatch(ctx, workflow.DeleteHotspot{ID: id})
	if err != nil {
		return false, nil, err
	}
	return res.Outcome.Found, res.Snapshot.Hotspots, nil
}

func (s *SessionService) Subscribe(buffer int) (<-chan models.Snapshot, func()) {
	return s.ctrl.Subscribe(buffer)
}

var _ SessionController = (*session.Controller)(nil)
