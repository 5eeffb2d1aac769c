package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"league-night-system/models"
	"league-night-system/storage"
	"league-night-system/utils"
)

// RosterService is the player pool: roster CRUD and check-in against the
// player store.
type RosterService struct {
	store storage.PlayerStore
}

func NewRosterService(store storage.PlayerStore) *RosterService {
	return &RosterService{store: store}
}

// ImportResult reports how a bulk import went.
type ImportResult struct {
	Imported []models.Player   `json:"imported"`
	Rejected []ImportRejection `json:"rejected"`
	Failed   []string          `json:"failed,omitempty"`
}

// List returns the roster filtered by a folded name query and, optionally,
// to present players only.
func (s *RosterService) List(ctx context.Context, query string, presentOnly bool) ([]models.Player, error) {
	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, storeErr("list players", err)
	}

	filtered := make([]models.Player, 0, len(players))
	for _, p := range players {
		if presentOnly && !p.Present {
			continue
		}
		if !utils.MatchesQuery(p.Name, query) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered, nil
}

// Add creates a new, not-yet-present player.
func (s *RosterService) Add(ctx context.Context, name string, gender models.Gender, skill int) (*models.Player, error) {
	p := &models.Player{
		ID:     uuid.NewString(),
		Name:   utils.NormalizeName(name),
		Gender: gender,
		Skill:  skill,
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.store.InsertPlayer(ctx, p); err != nil {
		return nil, storeErr("insert player", err)
	}
	log.Info().Str("component", "roster").Str("player_id", p.ID).Str("name", p.Name).Msg("player added")
	return p, nil
}

// Update replaces the editable attributes of an existing player.
func (s *RosterService) Update(ctx context.Context, p models.Player) (*models.Player, error) {
	p.Name = utils.NormalizeName(p.Name)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.store.UpdatePlayer(ctx, &p); err != nil {
		return nil, storeErr("update player", err)
	}
	return &p, nil
}

func (s *RosterService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeletePlayer(ctx, id); err != nil {
		return storeErr("delete player", err)
	}
	log.Info().Str("component", "roster").Str("player_id", id).Msg("player deleted")
	return nil
}

// SetPresence applies a check-in toggle to the local roster first, confirms
// it with the store, and rolls the local copy back if the store refuses.
func (s *RosterService) SetPresence(ctx context.Context, roster []models.Player, id string, present bool) error {
	idx := -1
	for i := range roster {
		if roster[i].ID == id {
			idx = i
			break
		}
	}
	if idx >= 0 {
		previous := roster[idx].Present
		roster[idx].Present = present
		if err := s.store.SetPresence(ctx, id, present); err != nil {
			roster[idx].Present = previous
			log.Warn().Err(err).Str("component", "roster").Str("player_id", id).Msg("presence toggle rolled back")
			return storeErr("set presence", err)
		}
		return nil
	}

	if err := s.store.SetPresence(ctx, id, present); err != nil {
		return storeErr("set presence", err)
	}
	return nil
}

// ResetAllPresence checks everyone out, as at the start of a session.
func (s *RosterService) ResetAllPresence(ctx context.Context, roster []models.Player) error {
	if err := s.store.ResetAllPresence(ctx); err != nil {
		return storeErr("reset presence", err)
	}
	for i := range roster {
		roster[i].Present = false
	}
	log.Info().Str("component", "roster").Msg("presence reset for all players")
	return nil
}

// Import inserts every valid record. Store failures on individual rows are
// reported in Failed and do not stop the import.
func (s *RosterService) Import(ctx context.Context, records []ImportRecord, rejected []ImportRejection) (*ImportResult, error) {
	result := &ImportResult{Imported: []models.Player{}, Rejected: rejected}
	if result.Rejected == nil {
		result.Rejected = []ImportRejection{}
	}
	for _, rec := range records {
		p, err := s.Add(ctx, rec.Name, rec.Gender, rec.Skill)
		if err != nil {
			result.Failed = append(result.Failed, fmt.Sprintf("%s: %v", rec.Name, err))
			continue
		}
		result.Imported = append(result.Imported, *p)
	}
	if len(result.Imported) == 0 && len(records) > 0 {
		return result, fmt.Errorf("%w: no players imported", ErrStoreFailure)
	}
	log.Info().
		Str("component", "roster").
		Int("imported", len(result.Imported)).
		Int("rejected", len(result.Rejected)).
		Msg("roster import finished")
	return result, nil
}

func storeErr(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, op)
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreFailure, op, err)
}
