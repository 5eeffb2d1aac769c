package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// DefaultSnapshotSubject is where snapshot updates are announced.
const DefaultSnapshotSubject = "league.snapshot.published"

// NATSBroadcaster publishes snapshot payloads on a NATS subject.
type NATSBroadcaster struct {
	conn    *nats.Conn
	subject string
}

func NewNATSBroadcaster(url, subject string) (*NATSBroadcaster, error) {
	if subject == "" {
		subject = DefaultSnapshotSubject
	}
	conn, err := nats.Connect(url,
		nats.Name("league-night-system"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Str("component", "broadcast").Msg("nats disconnected")
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSBroadcaster{conn: conn, subject: subject}, nil
}

func (b *NATSBroadcaster) BroadcastSnapshot(ctx context.Context, data []byte) error {
	if err := b.conn.Publish(b.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", b.subject, err)
	}
	if _, ok := ctx.Deadline(); !ok {
		return b.conn.FlushTimeout(5 * time.Second)
	}
	return b.conn.FlushWithContext(ctx)
}

func (b *NATSBroadcaster) Close() {
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}
