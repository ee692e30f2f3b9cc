package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"eventbook/internal/events"
	"eventbook/internal/shared/config"
	"eventbook/internal/shared/database"
	"eventbook/internal/users"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const seedPassword = "qwerty"

type Seeder struct {
	db  *gorm.DB
	now time.Time
}

func main() {
	fmt.Println("🌱 Starting EventBook database seeder...")

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.InitDB(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db.PostgreSQL, now: time.Now().UTC()}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	// Cached profiles and revoked tokens refer to the old rows.
	if err := db.Redis.FlushDB(context.Background()).Err(); err != nil {
		log.Printf("Warning: Failed to clear Redis: %v", err)
	}

	fmt.Println("\n🎉 Seeding completed! Log in with any seeded email and password", seedPassword)
}

// CleanDatabase empties every table, children first.
func (s *Seeder) CleanDatabase() error {
	tables := []string{"bookings", "seat_locks", "events", "users"}
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

func (s *Seeder) SeedAll() error {
	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	if _, err := s.SeedEvents(userIDs["admin"]); err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}
	return nil
}

// SeedUsers creates one admin and two regular users sharing seedPassword.
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key   string
		name  string
		email string
		role  users.Role
	}{
		{"admin", "Admin User", "admin@eventbook.local", users.RoleAdmin},
		{"user1", "Priya Nair", "priya@eventbook.local", users.RoleUser},
		{"user2", "Tomás Ruiz", "tomas@eventbook.local", users.RoleUser},
	}

	userIDs := make(map[string]uuid.UUID, len(usersData))
	for _, u := range usersData {
		user := users.User{
			Name:     u.name,
			Email:    u.email,
			Password: string(hashedPassword),
			Role:     u.role,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", u.email, err)
		}
		userIDs[u.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedEvents creates a spread of upcoming events, including one nearly sold
// out so contention can be tried by hand.
func (s *Seeder) SeedEvents(adminID uuid.UUID) ([]uuid.UUID, error) {
	fmt.Println("  🎫 Seeding events...")

	eventsData := []struct {
		title     string
		location  string
		inDays    int
		total     int
		available int
		price     float64
	}{
		{"Go Systems Conference", "Bengaluru", 14, 300, 300, 49.0},
		{"Symphony Under the Stars", "Mumbai", 21, 120, 120, 35.5},
		{"Indie Film Night", "Pune", 7, 40, 3, 12.0},
		{"Startup Pitch Day", "Delhi", 30, 80, 80, 0},
	}

	var ids []uuid.UUID
	for _, e := range eventsData {
		event := events.Event{
			Title:          e.title,
			Description:    e.title + " - seeded for local development",
			Location:       e.location,
			Date:           s.now.AddDate(0, 0, e.inDays).Truncate(time.Hour),
			TotalSeats:     e.total,
			AvailableSeats: e.available,
			Price:          e.price,
			CreatedBy:      adminID,
		}
		if err := s.db.Create(&event).Error; err != nil {
			return nil, fmt.Errorf("failed to create event %s: %w", e.title, err)
		}
		ids = append(ids, event.ID)
		fmt.Printf("    ✅ Created event: %s (%d/%d seats)\n", event.Title, event.AvailableSeats, event.TotalSeats)
	}

	return ids, nil
}
