package config

import (
	"fmt"
	"log"
	"time"

	"smartlocker/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders (development only)
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedLockerRegisters(); err != nil {
		log.Printf("⚠️ Locker seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedLockerRegisters seeds an initial register row per locker so status
// reads in a fresh dev database return "closed" instead of "unknown".
// Production registers are written by the embedded units themselves.
func (s *Seeder) seedLockerRegisters() error {
	var count int64
	if err := s.db.Model(&models.LockerState{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil // Registers already present
	}

	now := time.Now()
	for i := 1; i <= 8; i++ {
		state := &models.LockerState{
			LockerID:   fmt.Sprintf("locker-%02d", i),
			Status:     "closed",
			LastUpdate: now,
		}
		if err := s.db.Create(state).Error; err != nil {
			return err
		}
	}

	log.Println("✅ Seeded 8 locker registers")
	return nil
}
