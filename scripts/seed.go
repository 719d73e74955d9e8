package main

import (
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/infrastructure/database"
	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/pkg/config"
)

func main() {
	log.Println("🚀 Seeding plans and admin user...")

	// Load configuration from .env
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	plans := []entities.Plan{
		{ID: uuid.New(), Code: "essencial", Name: "Essencial", MonthlyCredits: 10, PriceCents: 9900, IsActive: true},
		{ID: uuid.New(), Code: "profissional", Name: "Profissional", MonthlyCredits: 50, PriceCents: 24900, IsActive: true},
		{ID: uuid.New(), Code: "premium", Name: "Premium", MonthlyCredits: 200, PriceCents: 59900, IsActive: true},
	}

	for _, plan := range plans {
		var existing entities.Plan
		if err := db.Where("code = ?", plan.Code).First(&existing).Error; err == nil {
			log.Printf("⏭️  Plan %s already exists, skipping", plan.Code)
			continue
		}
		if err := db.Create(&plan).Error; err != nil {
			log.Fatalf("Failed to create plan %s: %v", plan.Code, err)
		}
		log.Printf("✅ Created plan %s (%d credits/month)", plan.Code, plan.MonthlyCredits)
	}

	adminEmail := "admin@w1.local"
	var existingUser entities.User
	if err := db.Where("email = ?", adminEmail).First(&existingUser).Error; err == nil {
		log.Printf("⏭️  Admin user already exists, skipping")
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin-change-me"), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash admin password: %v", err)
		}

		admin := entities.NewUser(adminEmail, "Administrador", string(hash))
		admin.Role = entities.RoleAdmin

		if err := db.Create(admin).Error; err != nil {
			log.Fatalf("Failed to create admin user: %v", err)
		}
		log.Printf("✅ Created admin user %s", adminEmail)
	}

	log.Println("✅ Seed finished")
}
