package storage

import (
	"context"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

// ObservationRepository is the document store boundary. Every method is
// scoped to a single owner.
type ObservationRepository interface {
	// AddObservation assigns ID (when empty) and CreatedAt before persisting.
	AddObservation(ctx context.Context, obs *internal.Observation) error
	DeleteObservation(ctx context.Context, ownerID, id string) error
	// ListObservations returns the owner's records, newest first.
	ListObservations(ctx context.Context, ownerID string) ([]internal.Observation, error)
	// WatchObservations delivers the owner's full list on subscribe and
	// after every change. The channel is closed when ctx is done.
	WatchObservations(ctx context.Context, ownerID string) (<-chan []internal.Observation, error)
}

type UserRepository interface {
	CreateCredential(ctx context.Context, cred *internal.Credential) error
	GetCredentialByEmail(ctx context.Context, email string) (*internal.Credential, error)
	GetUser(ctx context.Context, id string) (*internal.User, error)
	// UpsertFederatedUser finds or creates the account for a federated subject.
	UpsertFederatedUser(ctx context.Context, cred *internal.Credential) (*internal.User, error)
}

// Store is implemented by every backend.
type Store interface {
	ObservationRepository
	UserRepository
	Close() error
}
