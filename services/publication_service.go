package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"league-night-system/models"
	"league-night-system/storage"
)

// SnapshotMirror copies the published snapshot somewhere the public view can
// read it without reaching the store, returning the public URL.
type SnapshotMirror interface {
	MirrorSnapshot(ctx context.Context, data []byte) (string, error)
}

// SnapshotBroadcaster announces a new snapshot to subscribers.
type SnapshotBroadcaster interface {
	BroadcastSnapshot(ctx context.Context, data []byte) error
}

// PublishRequest is what the commissioner publishes. Zero values fall back
// to the publish defaults.
type PublishRequest struct {
	Teams       []models.Team
	Mode        models.GameMode
	Schedule    []models.Match
	ActiveRule  *models.RuleText
	PointsToWin int
}

// PublishAck confirms a stored snapshot. Warnings list mirror or broadcast
// failures that happened after the store write succeeded.
type PublishAck struct {
	Format      string    `json:"format"`
	PublishedAt time.Time `json:"published_at"`
	MirrorURL   string    `json:"mirror_url,omitempty"`
	Warnings    []string  `json:"warnings,omitempty"`
}

type PublicationService struct {
	store       storage.SnapshotStore
	clock       clockwork.Clock
	mirror      SnapshotMirror
	broadcaster SnapshotBroadcaster
}

func NewPublicationService(store storage.SnapshotStore, clock clockwork.Clock) *PublicationService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PublicationService{store: store, clock: clock}
}

func (s *PublicationService) SetMirror(m SnapshotMirror) {
	s.mirror = m
}

func (s *PublicationService) SetBroadcaster(b SnapshotBroadcaster) {
	s.broadcaster = b
}

// Publish overwrites the live snapshot. Last write wins.
func (s *PublicationService) Publish(ctx context.Context, req PublishRequest) (*PublishAck, error) {
	snap := models.Snapshot{
		Teams:       req.Teams,
		Mode:        req.Mode,
		Schedule:    req.Schedule,
		ActiveRule:  req.ActiveRule,
		PointsToWin: req.PointsToWin,
		PublishedAt: s.clock.Now().UTC(),
	}
	if snap.Teams == nil {
		snap.Teams = []models.Team{}
	}
	if snap.Mode.Format == "" {
		snap.Mode.Format = models.FormatKingOfTheCourt
	}
	if snap.Mode.Variant == "" {
		snap.Mode.Variant = models.VariantStandard
	}
	if snap.Schedule == nil {
		snap.Schedule = []models.Match{}
	}
	if snap.PointsToWin <= 0 {
		snap.PointsToWin = models.DefaultPointsToWin
	}

	rec, err := snap.ToRecord()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.store.UpsertSnapshot(ctx, rec); err != nil {
		log.Error().Err(err).Str("component", "publication").Msg("snapshot upsert failed")
		return nil, fmt.Errorf("%w: publish snapshot: %v", ErrStoreFailure, err)
	}

	ack := &PublishAck{Format: rec.Format, PublishedAt: snap.PublishedAt}
	log.Info().
		Str("component", "publication").
		Str("format", rec.Format).
		Int("teams", len(snap.Teams)).
		Int("matches", len(snap.Schedule)).
		Msg("snapshot published")

	if s.mirror == nil && s.broadcaster == nil {
		return ack, nil
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		ack.Warnings = append(ack.Warnings, fmt.Sprintf("encode snapshot: %v", err))
		return ack, nil
	}
	if s.mirror != nil {
		url, err := s.mirror.MirrorSnapshot(ctx, payload)
		if err != nil {
			log.Warn().Err(err).Str("component", "publication").Msg("snapshot mirror failed")
			ack.Warnings = append(ack.Warnings, fmt.Sprintf("mirror snapshot: %v", err))
		} else {
			ack.MirrorURL = url
		}
	}
	if s.broadcaster != nil {
		if err := s.broadcaster.BroadcastSnapshot(ctx, payload); err != nil {
			log.Warn().Err(err).Str("component", "publication").Msg("snapshot broadcast failed")
			ack.Warnings = append(ack.Warnings, fmt.Sprintf("broadcast snapshot: %v", err))
		}
	}
	return ack, nil
}

// FetchLatest returns the live snapshot, or the default snapshot when
// nothing has been published. An empty store is not an error.
func (s *PublicationService) FetchLatest(ctx context.Context) (*models.Snapshot, error) {
	rec, err := s.store.GetLatestSnapshot(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			def := models.DefaultSnapshot()
			return &def, nil
		}
		return nil, fmt.Errorf("%w: fetch snapshot: %v", ErrStoreFailure, err)
	}

	snap, err := rec.ToSnapshot()
	if err != nil {
		return nil, fmt.Errorf("%w: decode snapshot: %v", ErrStoreFailure, err)
	}
	return snap, nil
}
