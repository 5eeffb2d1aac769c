package workers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"league-night-system/services"
	"league-night-system/utils"
)

const DefaultFeedInterval = 5 * time.Minute

// RosterFeedWorker pulls a published sign-up sheet (CSV, name,gender,skill)
// and adds players the roster does not have yet. Existing players are never
// modified; the roster stays the source of truth for attributes.
type RosterFeedWorker struct {
	league     *services.LeagueService
	holder     *services.SessionHolder
	feedURL    string
	token      string
	interval   time.Duration
	httpClient *http.Client
}

func NewRosterFeedWorker(league *services.LeagueService, holder *services.SessionHolder, feedURL, token string, interval time.Duration) *RosterFeedWorker {
	if interval <= 0 {
		interval = DefaultFeedInterval
	}
	return &RosterFeedWorker{
		league:     league,
		holder:     holder,
		feedURL:    feedURL,
		token:      token,
		interval:   interval,
		httpClient: utils.NewHTTPClient(30 * time.Second),
	}
}

func (w *RosterFeedWorker) Start(ctx context.Context) {
	log.Info().Str("component", "roster-feed").Str("url", w.feedURL).Dur("interval", w.interval).Msg("starting roster feed worker")
	go w.run(ctx)
}

func (w *RosterFeedWorker) run(ctx context.Context) {
	if _, err := w.SyncOnce(ctx); err != nil {
		log.Warn().Err(err).Str("component", "roster-feed").Msg("initial feed sync failed")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.SyncOnce(ctx); err != nil {
				log.Error().Err(err).Str("component", "roster-feed").Msg("feed sync failed")
			}
		case <-ctx.Done():
			log.Info().Str("component", "roster-feed").Msg("roster feed worker stopped")
			return
		}
	}
}

// SyncOnce fetches the feed and imports the names not already on the
// roster, matching on folded names. It returns how many players were added.
func (w *RosterFeedWorker) SyncOnce(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.feedURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create feed request: %w", err)
	}
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("feed request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("feed returned status %d: %s", resp.StatusCode, string(body))
	}

	records, rejected, err := services.ParseRosterCSV(resp.Body)
	if err != nil {
		return 0, err
	}
	for _, r := range rejected {
		log.Debug().Str("component", "roster-feed").Int("line", r.Line).Str("reason", r.Reason).Msg("feed row rejected")
	}

	existing, err := w.league.Roster.List(ctx, "", false)
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(existing))
	for _, p := range existing {
		known[utils.FoldName(p.Name)] = true
	}

	var fresh []services.ImportRecord
	for _, rec := range records {
		key := utils.FoldName(rec.Name)
		if known[key] {
			continue
		}
		known[key] = true
		fresh = append(fresh, rec)
	}
	if len(fresh) == 0 {
		log.Debug().Str("component", "roster-feed").Msg("no new players in feed")
		return 0, nil
	}

	result, err := w.league.Roster.Import(ctx, fresh, rejected)
	if err != nil {
		return 0, err
	}

	if err := w.holder.With(func(s *services.Session) error {
		return w.league.LoadRoster(ctx, s)
	}); err != nil {
		log.Warn().Err(err).Str("component", "roster-feed").Msg("session roster reload failed")
	}

	log.Info().Str("component", "roster-feed").Int("added", len(result.Imported)).Msg("feed sync imported players")
	return len(result.Imported), nil
}
