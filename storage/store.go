// Package storage holds the persistence backends for the roster and the
// published snapshot.
package storage

import (
	"context"
	"errors"

	"league-night-system/models"
)

// ErrNotFound is returned when a player id or the snapshot row is missing.
var ErrNotFound = errors.New("record not found")

// PlayerStore persists the roster.
type PlayerStore interface {
	ListPlayers(ctx context.Context) ([]models.Player, error)
	InsertPlayer(ctx context.Context, p *models.Player) error
	UpdatePlayer(ctx context.Context, p *models.Player) error
	DeletePlayer(ctx context.Context, id string) error
	SetPresence(ctx context.Context, id string, present bool) error
	ResetAllPresence(ctx context.Context) error
}

// SnapshotStore persists the singleton published snapshot.
type SnapshotStore interface {
	UpsertSnapshot(ctx context.Context, s *models.PublishedSnapshot) error
	GetLatestSnapshot(ctx context.Context) (*models.PublishedSnapshot, error)
}

// Store is a backend that can hold both.
type Store interface {
	PlayerStore
	SnapshotStore
	Close() error
}
