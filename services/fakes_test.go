package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"league-night-system/models"
	"league-night-system/storage"
)

var errStoreDown = errors.New("connection refused")

func newBoltStore(t *testing.T) *storage.BoltStore {
	t.Helper()
	store, err := storage.NewBoltStore(filepath.Join(t.TempDir(), "league.db"))
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// failingStore wraps a real store and fails the operations named in fail.
type failingStore struct {
	storage.Store
	fail map[string]bool
}

func (f *failingStore) SetPresence(ctx context.Context, id string, present bool) error {
	if f.fail["SetPresence"] {
		return errStoreDown
	}
	return f.Store.SetPresence(ctx, id, present)
}

func (f *failingStore) InsertPlayer(ctx context.Context, p *models.Player) error {
	if f.fail["InsertPlayer"] {
		return errStoreDown
	}
	return f.Store.InsertPlayer(ctx, p)
}

func (f *failingStore) UpsertSnapshot(ctx context.Context, s *models.PublishedSnapshot) error {
	if f.fail["UpsertSnapshot"] {
		return errStoreDown
	}
	return f.Store.UpsertSnapshot(ctx, s)
}

func (f *failingStore) GetLatestSnapshot(ctx context.Context) (*models.PublishedSnapshot, error) {
	if f.fail["GetLatestSnapshot"] {
		return nil, errStoreDown
	}
	return f.Store.GetLatestSnapshot(ctx)
}

type recordingMirror struct {
	mu   sync.Mutex
	data [][]byte
	err  error
}

func (m *recordingMirror) MirrorSnapshot(ctx context.Context, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.data = append(m.data, data)
	return "https://cdn.example.com/league/snapshot.json", nil
}

type recordingBroadcaster struct {
	count int
	err   error
}

func (b *recordingBroadcaster) BroadcastSnapshot(ctx context.Context, data []byte) error {
	if b.err != nil {
		return b.err
	}
	b.count++
	return nil
}

type stubRules struct {
	suggestions []models.RuleText
	err         error
	kinds       []models.RuleKind
}

func (s *stubRules) Generate(ctx context.Context, kind models.RuleKind, hint string) ([]models.RuleText, error) {
	s.kinds = append(s.kinds, kind)
	return s.suggestions, s.err
}
