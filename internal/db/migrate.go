package db

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/config"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/util"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.CollectorProfile{},
		&model.Masterpiece{},
		&model.OwnershipRecord{},
		&model.WaitlistEntry{},
		&model.Reservation{},
		&model.AtelierMoment{},
		&model.PurchaseWorkflow{},
		&model.Payment{},
		&model.Contract{},
		&model.EscrowTransaction{},
		&model.Certificate{},
		&model.Auction{},
		&model.Bid{},
		&model.ResaleListing{},
		&model.NegotiationMessage{},
		&model.FractionalShare{},
		&model.FractionalTransfer{},
		&model.RevenueEntry{},
		&model.ProvenanceEvent{},
		&model.ServiceRecord{},
		&model.AuditLog{},
		&model.Notification{},
		&model.ProductionUpdate{},
		&model.DeliveryDetail{},
		&model.ShippingOrder{},
		&model.InsurancePolicy{},
		&model.ConciergeRequest{},
		&model.ConciergeMessage{},
		&model.CRMInteraction{},
		&model.UserApplication{},
		&model.InvestorRequest{},
		&model.PrivateEvent{},
		&model.EventRSVP{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// SeedAdmin creates the atelier admin account if it does not exist.
func SeedAdmin(cfg *config.AtelierConfig) error {
	var existing model.User
	err := DB.Where("email = ?", cfg.AdminEmail).First(&existing).Error
	if err == nil {
		logger.Info("Admin account already exists, skipping seed", map[string]interface{}{
			"email": cfg.AdminEmail,
		})
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := util.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := model.User{
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Name:         cfg.Director,
		Role:         model.RoleAdmin,
		VIPSince:     &now,
	}
	if err := DB.Create(&admin).Error; err != nil {
		logger.Error("Failed to seed admin account", err)
		return err
	}

	logger.Info("Admin account seeded", map[string]interface{}{
		"email": cfg.AdminEmail,
	})
	return nil
}
