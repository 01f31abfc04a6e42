package db

import (
	"fmt"
	"log"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
)

var testDBSeq uint64

// SetupTestDB creates an in-memory SQLite database for testing. The
// DSN uses a distinct shared-cache name per call and the pool is
// pinned to one connection, so transactions opened through the pool
// see the migrated schema instead of a fresh empty database.
func SetupTestDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddUint64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get test database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
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
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return db, nil
}

// CleanupTestDB cleans up the test database
func CleanupTestDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Failed to get DB instance: %v", err)
		return
	}
	sqlDB.Close()
}
