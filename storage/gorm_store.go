package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"league-night-system/models"
)

// GormStore keeps players and the snapshot in Postgres.
type GormStore struct {
	DB *gorm.DB
}

// OpenPostgres connects and migrates the schema.
func OpenPostgres(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewGormStore(db)
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&models.Player{}, &models.PublishedSnapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &GormStore{DB: db}, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) ListPlayers(ctx context.Context) ([]models.Player, error) {
	var players []models.Player
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&players).Error; err != nil {
		return nil, err
	}
	return players, nil
}

func (s *GormStore) InsertPlayer(ctx context.Context, p *models.Player) error {
	return s.DB.WithContext(ctx).Create(p).Error
}

func (s *GormStore) UpdatePlayer(ctx context.Context, p *models.Player) error {
	res := s.DB.WithContext(ctx).Model(&models.Player{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"name":    p.Name,
			"gender":  p.Gender,
			"skill":   p.Skill,
			"present": p.Present,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeletePlayer(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Delete(&models.Player{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) SetPresence(ctx context.Context, id string, present bool) error {
	res := s.DB.WithContext(ctx).Model(&models.Player{}).
		Where("id = ?", id).
		Update("present", present)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ResetAllPresence(ctx context.Context) error {
	return s.DB.WithContext(ctx).Model(&models.Player{}).
		Where("present = ?", true).
		Update("present", false).Error
}

// snapshotUpsertColumns is every snapshot column except the key and created_at.
var snapshotUpsertColumns = []string{"format", "teams_json", "schedule_json", "active_rule_json", "points_to_win", "updated_at"}

// UpsertSnapshot overwrites the singleton row.
func (s *GormStore) UpsertSnapshot(ctx context.Context, snap *models.PublishedSnapshot) error {
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(snapshotUpsertColumns),
	}).Create(snap).Error
}

func (s *GormStore) GetLatestSnapshot(ctx context.Context) (*models.PublishedSnapshot, error) {
	var snap models.PublishedSnapshot
	if err := s.DB.WithContext(ctx).Order("updated_at DESC").First(&snap).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &snap, nil
}
