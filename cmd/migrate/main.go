package main

import (
	"context"
	"log"
	"os"

	"ai-fitcoach-be/internal/entity"
	"ai-fitcoach-be/internal/model"
	"ai-fitcoach-be/internal/repository/specification"
	"ai-fitcoach-be/internal/repository/unitofwork"
	"ai-fitcoach-be/pkg/database"

	"github.com/joho/godotenv"
)

var seedPlans = []*entity.SubscriptionPlan{
	{
		Name:             "Free",
		Slug:             entity.PlanSlugFree,
		Tagline:          "Try the coach",
		Price:            0,
		BillingPeriod:    entity.BillingPeriodMonthly,
		AiChatDailyLimit: 10,
		Features:         []string{"10 coach messages per day", "Exercise library"},
		IsActive:         true,
		SortOrder:        0,
	},
	{
		Name:             "Pro",
		Slug:             entity.PlanSlugPro,
		Tagline:          "Unlimited coaching",
		Price:            99000,
		TaxRate:          0.11,
		BillingPeriod:    entity.BillingPeriodMonthly,
		AiChatDailyLimit: -1,
		Features:         []string{"Unlimited coach messages", "Photo form checks", "Knowledge base uploads"},
		IsMostPopular:    true,
		IsActive:         true,
		SortOrder:        1,
	},
}

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. AutoMigrate All Models
	models := model.All()
	log.Printf("Step 1: Running AutoMigrate for %d tables...", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatal("Error: AutoMigrate failed:", err)
	}

	// 4. Seed plans (idempotent by slug)
	log.Println("Step 2: Seeding subscription plans...")
	ctx := context.Background()
	repo := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx).SubscriptionRepository()
	for _, plan := range seedPlans {
		existing, err := repo.FindOnePlan(ctx, specification.BySlug{Slug: plan.Slug})
		if err != nil {
			log.Fatalf("Error: lookup plan %s: %v", plan.Slug, err)
		}
		if existing != nil {
			log.Printf("  - %s already present, skipped", plan.Slug)
			continue
		}
		if err := repo.CreatePlan(ctx, plan); err != nil {
			log.Fatalf("Error: create plan %s: %v", plan.Slug, err)
		}
		log.Printf("  - %s created", plan.Slug)
	}

	log.Println("Migration completed successfully")
}
