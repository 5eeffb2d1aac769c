package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"league-night-system/models"
)

const (
	bucketPlayers   = "players"
	bucketSnapshots = "snapshots"
)

// BoltStore is the embedded single-file backend.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(dbPath string) (*BoltStore, error) {
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketPlayers, bucketSnapshots} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("creating %s bucket: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) ListPlayers(ctx context.Context) ([]models.Player, error) {
	players := []models.Player{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketPlayers)).ForEach(func(k, v []byte) error {
			var p models.Player
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("unmarshaling player %s: %w", k, err)
			}
			players = append(players, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Name < players[j].Name
	})
	return players, nil
}

func (s *BoltStore) InsertPlayer(ctx context.Context, p *models.Player) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketPlayers))
		if b.Get([]byte(p.ID)) != nil {
			return fmt.Errorf("player %s already exists", p.ID)
		}
		return putJSON(b, p.ID, p)
	})
}

func (s *BoltStore) UpdatePlayer(ctx context.Context, p *models.Player) error {
	return s.updatePlayer(p.ID, func(stored *models.Player) {
		stored.Name = p.Name
		stored.Gender = p.Gender
		stored.Skill = p.Skill
		stored.Present = p.Present
	})
}

func (s *BoltStore) DeletePlayer(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketPlayers))
		if b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}

func (s *BoltStore) SetPresence(ctx context.Context, id string, present bool) error {
	return s.updatePlayer(id, func(stored *models.Player) {
		stored.Present = present
	})
}

func (s *BoltStore) ResetAllPresence(ctx context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketPlayers))
		c := b.Cursor()
		updates := map[string]models.Player{}
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var p models.Player
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("unmarshaling player %s: %w", k, err)
			}
			if p.Present {
				p.Present = false
				p.UpdatedAt = time.Now()
				updates[string(k)] = p
			}
		}
		for id, p := range updates {
			if err := putJSON(b, id, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) updatePlayer(id string, apply func(*models.Player)) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketPlayers))
		data := b.Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		var p models.Player
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("unmarshaling player %s: %w", id, err)
		}
		apply(&p)
		p.UpdatedAt = time.Now()
		return putJSON(b, id, p)
	})
}

// UpsertSnapshot overwrites the singleton key.
func (s *BoltStore) UpsertSnapshot(ctx context.Context, snap *models.PublishedSnapshot) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSnapshots))
		if existing := b.Get([]byte(snap.ID)); existing != nil {
			var prev models.PublishedSnapshot
			if err := json.Unmarshal(existing, &prev); err == nil && !prev.CreatedAt.IsZero() {
				snap.CreatedAt = prev.CreatedAt
			}
		}
		return putJSON(b, snap.ID, snap)
	})
}

func (s *BoltStore) GetLatestSnapshot(ctx context.Context) (*models.PublishedSnapshot, error) {
	var snap *models.PublishedSnapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketSnapshots)).Get([]byte(models.SnapshotID))
		if data == nil {
			return nil
		}
		snap = &models.PublishedSnapshot{}
		return json.Unmarshal(data, snap)
	})
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrNotFound
	}
	return snap, nil
}

func putJSON(b *bolt.Bucket, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	return b.Put([]byte(key), data)
}
