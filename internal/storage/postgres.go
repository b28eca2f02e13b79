package storage

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"questforge/server/internal/config"
	"questforge/server/internal/models"
)

type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(cfg config.PostgresConfig) (*PostgresStore, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.AutoMigrate(
		&models.Adventure{},
		&models.AdventureScene{},
		&models.AdventureNPC{},
		&models.Frame{},
		&models.Adversary{},
		&models.Item{},
	); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *PostgresStore) GetDB() *gorm.DB {
	return s.db
}

// Transaction helper
func (s *PostgresStore) WithTx(fn func(*gorm.DB) error) error {
	return s.db.Transaction(fn)
}

// Adventure persistence

func (s *PostgresStore) SaveAdventure(adv *models.Adventure) error {
	return s.db.Save(adv).Error
}

func (s *PostgresStore) GetAdventure(id string) (*models.Adventure, error) {
	var adv models.Adventure
	if err := s.db.First(&adv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &adv, nil
}

func (s *PostgresStore) GetAdventureBySession(sessionID string) (*models.Adventure, error) {
	var adv models.Adventure
	if err := s.db.First(&adv, "session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &adv, nil
}

func (s *PostgresStore) ListAdventures(limit int) ([]models.Adventure, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var advs []models.Adventure
	if err := s.db.Order("updated_at desc").Limit(limit).Find(&advs).Error; err != nil {
		return nil, err
	}
	return advs, nil
}

func (s *PostgresStore) SaveScene(scene *models.AdventureScene) error {
	return s.db.Save(scene).Error
}

func (s *PostgresStore) SaveNPC(npc *models.AdventureNPC) error {
	return s.db.Save(npc).Error
}

// Content lookups

func (s *PostgresStore) FindFrames(tier string) ([]models.Frame, error) {
	var frames []models.Frame
	q := s.db.Order("name asc")
	if tier != "" {
		q = q.Where("tier = ?", tier)
	}
	if err := q.Find(&frames).Error; err != nil {
		return nil, err
	}
	return frames, nil
}

func (s *PostgresStore) FindAdversaries(tier, role string) ([]models.Adversary, error) {
	var advs []models.Adversary
	q := s.db.Order("name asc")
	if tier != "" {
		q = q.Where("tier = ?", tier)
	}
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Find(&advs).Error; err != nil {
		return nil, err
	}
	return advs, nil
}

func (s *PostgresStore) FindItems(rarity string) ([]models.Item, error) {
	var items []models.Item
	q := s.db.Order("name asc")
	if rarity != "" {
		q = q.Where("rarity = ?", rarity)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
