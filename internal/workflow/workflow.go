// Package workflow implements the hotspot placement state machine on top of
// the hotspot store.
package workflow

import (
	"fmt"

	"github.com/google/uuid"

	"hotspot-service/internal/hotspot"
	"hotspot-service/internal/models"
)

// State of the placement state machine.
type State int

const (
	Idle State = iota
	Placing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Placing:
		return "placing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefaultDescription is the placeholder given to new hotspots.
const DefaultDescription = "Click to edit description"

// IDGenerator returns collision-free hotspot identifiers.
type IDGenerator func() string

// NewUUID is the default IDGenerator.
func NewUUID() string {
	return uuid.NewString()
}

// Outcome describes the effect of a command.
type Outcome struct {
	// Changed is true when the store, state or model changed.
	Changed bool
	// Found is false when an update/delete targeted an absent id.
	Found bool
	// Hotspot is the created or updated hotspot, if any.
	Hotspot *models.Hotspot
}

// Workflow owns the placement flag, the current model and the hotspot store.
// Like the store, it is driven from a single goroutine.
type Workflow struct {
	state      State
	model      *models.Model
	generation uint64
	store      *hotspot.Store
	newID      IDGenerator
}

// New creates an idle workflow with an empty store. A nil idgen selects NewUUID.
func New(idgen IDGenerator) *Workflow {
	if idgen == nil {
		idgen = NewUUID
	}
	return &Workflow{
		state: Idle,
		store: hotspot.NewStore(),
		newID: idgen,
	}
}

// State returns the current placement state.
func (w *Workflow) State() State { return w.state }

// Model returns the currently loaded model, or nil.
func (w *Workflow) Model() *models.Model { return w.model }

// Generation increases every time the model is replaced or dropped.
func (w *Workflow) Generation() uint64 { return w.generation }

// Hotspots returns a copy of the collection in display order.
func (w *Workflow) Hotspots() []models.Hotspot { return w.store.List() }

// Hotspot returns one hotspot by id.
func (w *Workflow) Hotspot(id string) (models.Hotspot, bool) { return w.store.Get(id) }

// Apply runs one command. Unknown command types return an error and change nothing.
func (w *Workflow) Apply(cmd Command) (Outcome, error) {
	switch c := cmd.(type) {
	case StartPlacing:
		if w.state == Placing {
			return Outcome{}, nil
		}
		w.state = Placing
		return Outcome{Changed: true}, nil

	case CancelPlacing:
		if w.state == Idle {
			return Outcome{}, nil
		}
		w.state = Idle
		return Outcome{Changed: true}, nil

	case HotspotPlaced:
		return w.place(c), nil

	case RayMissed:
		return Outcome{}, nil

	case UpdateHotspot:
		h, ok := w.store.Update(c.ID, c.Patch)
		if !ok {
			return Outcome{}, nil
		}
		return Outcome{Changed: !c.Patch.Empty(), Found: true, Hotspot: &h}, nil

	case DeleteHotspot:
		if !w.store.Remove(c.ID) {
			return Outcome{}, nil
		}
		return Outcome{Changed: true, Found: true}, nil

	case ModelLoaded:
		m := c.Model
		w.replaceModel(&m)
		return Outcome{Changed: true}, nil

	case ModelUnloaded:
		if w.model == nil || w.model.ID != c.ModelID {
			return Outcome{}, nil
		}
		w.replaceModel(nil)
		return Outcome{Changed: true}, nil

	default:
		return Outcome{}, fmt.Errorf("unknown command %T", cmd)
	}
}

// place materializes a hit into a hotspot. Hits outside placement mode, with
// no model, or computed against an older model generation are dropped.
func (w *Workflow) place(c HotspotPlaced) Outcome {
	if w.state != Placing || w.model == nil {
		return Outcome{}
	}
	if c.Generation != 0 && c.Generation != w.generation {
		return Outcome{}
	}
	h := models.Hotspot{
		ID:          w.newID(),
		Position:    c.Point,
		Label:       fmt.Sprintf("Hotspot %d", w.store.Len()+1),
		Description: DefaultDescription,
	}
	w.store.Add(h)
	w.state = Idle
	return Outcome{Changed: true, Found: true, Hotspot: &h}
}

func (w *Workflow) replaceModel(m *models.Model) {
	w.store.Reset()
	w.state = Idle
	w.model = m
	w.generation++
}

// Snapshot returns the shared read-only view.
func (w *Workflow) Snapshot() models.Snapshot {
	var m *models.Model
	if w.model != nil {
		cp := *w.model
		m = &cp
	}
	return models.Snapshot{
		State:      w.state.String(),
		Placing:    w.state == Placing,
		Model:      m,
		Generation: w.generation,
		Hotspots:   w.store.List(),
	}
}
