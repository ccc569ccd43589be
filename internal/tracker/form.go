package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/service"
)

type FormState int

const (
	FormIdle FormState = iota
	FormOpen
	FormSubmitting
)

func (s FormState) String() string {
	switch s {
	case FormIdle:
		return "idle"
	case FormOpen:
		return "open"
	case FormSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("FormState(%d)", int(s))
	}
}

var ErrFormBusy = errors.New("form is submitting")

// Form is the observation entry flow: idle -> open -> submitting -> idle.
// A failed submit keeps the draft and returns to open.
type Form struct {
	tracker *Tracker

	mu    sync.Mutex
	state FormState
	draft service.ObservationRequest
	err   error
}

func NewForm(tr *Tracker) *Form {
	return &Form{tracker: tr}
}

func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) Draft() service.ObservationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Err is the error of the last failed submit, or nil.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *Form) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormIdle {
		f.state = FormOpen
	}
}

// Cancel discards the draft.
func (f *Form) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		return ErrFormBusy
	}
	f.state = FormIdle
	f.draft = service.ObservationRequest{}
	f.err = nil
	return nil
}

// Set assigns one draft field by its JSON name, opening the form if needed.
func (f *Form) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		return ErrFormBusy
	}
	d := &f.draft
	switch field {
	case "name":
		d.Name = value
	case "date":
		d.Date = value
	case "time":
		d.Time = value
	case "coordinates":
		d.Coordinates = value
	case "ra":
		d.RA = value
	case "dec":
		d.Dec = value
	case "location":
		d.Location = value
	case "notes":
		d.Notes = value
	case "object_type":
		d.ObjectType = value
	case "equipment":
		d.Equipment = value
	case "conditions":
		d.Conditions = value
	case "seeing":
		d.Seeing = value
	case "image_url":
		d.ImageURL = value
	default:
		return fmt.Errorf("%w: unknown field %q", internal.ErrValidation, field)
	}
	f.state = FormOpen
	return nil
}

// Submit validates locally and writes through the tracker. Signed out, it
// fails with ErrNotSignedIn without attempting the write.
func (f *Form) Submit(ctx context.Context) (*internal.Observation, error) {
	f.mu.Lock()
	switch f.state {
	case FormSubmitting:
		f.mu.Unlock()
		return nil, ErrFormBusy
	case FormIdle:
		f.state = FormOpen
	}
	if f.tracker.Identity() == nil {
		f.err = internal.ErrNotSignedIn
		f.mu.Unlock()
		return nil, internal.ErrNotSignedIn
	}
	req := f.draft
	if err := service.ValidateObservationRequest(&req); err != nil {
		f.err = err
		f.mu.Unlock()
		return nil, err
	}
	f.state = FormSubmitting
	f.mu.Unlock()

	obs, err := f.tracker.Add(ctx, *req.Observation(""))

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = FormOpen
		f.err = err
		return nil, err
	}
	f.state = FormIdle
	f.draft = service.ObservationRequest{}
	f.err = nil
	return obs, nil
}
