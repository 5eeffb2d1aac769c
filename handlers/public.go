package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"league-night-system/models"
	"league-night-system/services"
)

// DefaultStreamInterval is how often the public stream polls for a new snapshot.
const DefaultStreamInterval = 2 * time.Second

// PublicHandler serves the read-only public view.
type PublicHandler struct {
	publication *services.PublicationService
	interval    time.Duration
	timeout     time.Duration
}

func NewPublicHandler(publication *services.PublicationService, interval, timeout time.Duration) *PublicHandler {
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PublicHandler{publication: publication, interval: interval, timeout: timeout}
}

func SetupPublicRoutes(app *fiber.App, h *PublicHandler) {
	app.Get("/health", h.Health)
	app.Get("/public/snapshot", h.GetSnapshot)
	app.Get("/public/stream", h.StreamSnapshots)
}

func (h *PublicHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// GetSnapshot returns the live snapshot, or the default one before the
// first publish.
func (h *PublicHandler) GetSnapshot(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	snap, err := h.publication.FetchLatest(ctx)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderCacheControl, "no-cache")
	return c.JSON(snap)
}

// StreamSnapshots pushes the snapshot as a server-sent event whenever its
// publish time changes.
func (h *PublicHandler) StreamSnapshots(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	done := c.Context().Done()
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		h.streamSnapshots(done, w)
	})
	return nil
}

// streamSnapshots returns once a write fails. Idle ticks send a comment line
// so a closed client surfaces as a write error instead of polling forever.
func (h *PublicHandler) streamSnapshots(done <-chan struct{}, w *bufio.Writer) {
	var last time.Time
	first := true

	send := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		snap, err := h.publication.FetchLatest(ctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("component", "stream").Msg("snapshot poll failed")
			return writeKeepalive(w)
		}
		if !first && snap.PublishedAt.Equal(last) {
			return writeKeepalive(w)
		}
		first = false
		last = snap.PublishedAt
		return writeSnapshotEvent(w, snap)
	}

	if err := send(); err != nil {
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := send(); err != nil {
				log.Debug().Err(err).Str("component", "stream").Msg("stream client gone")
				return
			}
		case <-done:
			return
		}
	}
}

func writeKeepalive(w *bufio.Writer) error {
	if _, err := w.WriteString(":\n\n"); err != nil {
		return err
	}
	return w.Flush()
}

// writeSnapshotEvent fails once the client has gone away.
func writeSnapshotEvent(w *bufio.Writer, snap *models.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}
