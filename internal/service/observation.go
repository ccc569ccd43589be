package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal/storage"
)

var validate = validator.New()

// ObservationRequest is the draft of an observation as entered by the user.
type ObservationRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Coordinates string `json:"coordinates,omitempty" validate:"max=100"`
	RA          string `json:"ra,omitempty" validate:"max=50"`
	Dec         string `json:"dec,omitempty" validate:"max=50"`
	Location    string `json:"location,omitempty" validate:"max=200"`
	Notes       string `json:"notes,omitempty" validate:"max=5000"`
	ObjectType  string `json:"object_type,omitempty" validate:"max=50"`
	Equipment   string `json:"equipment,omitempty" validate:"max=200"`
	Conditions  string `json:"conditions,omitempty" validate:"max=200"`
	Seeing      string `json:"seeing,omitempty" validate:"max=50"`
	ImageURL    string `json:"image_url,omitempty" validate:"max=500"`
}

// ValidateObservationRequest trims the draft in place and checks it. It never
// touches the network.
func ValidateObservationRequest(req *ObservationRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", internal.ErrValidation, err)
	}
	return nil
}

func (r *ObservationRequest) Observation(ownerID string) *internal.Observation {
	return &internal.Observation{
		OwnerID:     ownerID,
		Name:        r.Name,
		Date:        r.Date,
		Time:        r.Time,
		Coordinates: r.Coordinates,
		RA:          r.RA,
		Dec:         r.Dec,
		Location:    r.Location,
		Notes:       r.Notes,
		ObjectType:  r.ObjectType,
		Equipment:   r.Equipment,
		Conditions:  r.Conditions,
		Seeing:      r.Seeing,
		ImageURL:    r.ImageURL,
	}
}

func CreateObservation(ctx context.Context, repo storage.ObservationRepository, user *internal.User, req *ObservationRequest) (*internal.Observation, error) {
	if user == nil {
		return nil, internal.ErrNotSignedIn
	}
	if err := ValidateObservationRequest(req); err != nil {
		return nil, err
	}
	obs := req.Observation(user.ID)
	if err := repo.AddObservation(ctx, obs); err != nil {
		return nil, fmt.Errorf("%w: %v", internal.ErrStorage, err)
	}
	return obs, nil
}

func DeleteObservation(ctx context.Context, repo storage.ObservationRepository, user *internal.User, id string) error {
	if user == nil {
		return internal.ErrNotSignedIn
	}
	if err := repo.DeleteObservation(ctx, user.ID, id); err != nil {
		return fmt.Errorf("%w: %w", internal.ErrStorage, err)
	}
	return nil
}
