package service

import (
	"time"

	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
)

// Dashboard is the admin overview of the platform.
type Dashboard struct {
	TotalMasterpieces   int64   `json:"total_masterpieces"`
	AvailablePieces     int64   `json:"available_pieces"`
	ActiveWorkflows     int64   `json:"active_workflows"`
	CompletedSales      int64   `json:"completed_sales"`
	HeldEscrowAmount    float64 `json:"held_escrow_amount"`
	ActiveAuctions      int64   `json:"active_auctions"`
	OpenResaleListings  int64   `json:"open_resale_listings"`
	TotalRevenue        float64 `json:"total_revenue"`
	VIPClients          int64   `json:"vip_clients"`
	PendingApplications int64   `json:"pending_applications"`
}

// RevenueBreakdown splits revenue by source over a period.
type RevenueBreakdown struct {
	Source string  `json:"source"`
	Total  float64 `json:"total"`
	Count  int64   `json:"count"`
}

type AnalyticsService interface {
	GetDashboard() (*Dashboard, error)
	GetRevenueBreakdown(since time.Time) ([]RevenueBreakdown, error)
	GetRecentActivity(limit int) ([]model.AuditLog, error)
	GetInvestorSummary() (map[string]interface{}, error)
}

type analyticsService struct {
	db             *gorm.DB
	fractionalRepo repository.FractionalRepository
	provenanceRepo repository.ProvenanceRepository
}

func NewAnalyticsService(db *gorm.DB, fractionalRepo repository.FractionalRepository, provenanceRepo repository.ProvenanceRepository) AnalyticsService {
	return &analyticsService{
		db:             db,
		fractionalRepo: fractionalRepo,
		provenanceRepo: provenanceRepo,
	}
}

func (s *analyticsService) GetDashboard() (*Dashboard, error) {
	var d Dashboard

	if err := s.db.Model(&model.Masterpiece{}).Count(&d.TotalMasterpieces).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.Masterpiece{}).
		Where("status = ?", model.MasterpieceAvailable).
		Count(&d.AvailablePieces).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.PurchaseWorkflow{}).
		Where("status NOT IN ?", []model.WorkflowStatus{
			model.WorkflowCompleted, model.WorkflowCancelled,
		}).
		Count(&d.ActiveWorkflows).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.PurchaseWorkflow{}).
		Where("status = ?", model.WorkflowCompleted).
		Count(&d.CompletedSales).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.EscrowTransaction{}).
		Where("status = ?", model.EscrowHeld).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&d.HeldEscrowAmount).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.Auction{}).
		Where("status = ?", model.AuctionActive).
		Count(&d.ActiveAuctions).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.ResaleListing{}).
		Where("status IN ?", []model.ResaleStatus{model.ResaleRequested, model.ResaleApproved, model.ResaleAccepted}).
		Count(&d.OpenResaleListings).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.User{}).
		Where("role = ?", model.RoleVIP).
		Count(&d.VIPClients).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.UserApplication{}).
		Where("status = ?", model.ApplicationPending).
		Count(&d.PendingApplications).Error; err != nil {
		return nil, err
	}

	total, err := s.fractionalRepo.SumRevenue()
	if err != nil {
		return nil, err
	}
	d.TotalRevenue = total
	return &d, nil
}

func (s *analyticsService) GetRevenueBreakdown(since time.Time) ([]RevenueBreakdown, error) {
	var rows []RevenueBreakdown
	query := s.db.Model(&model.RevenueEntry{}).
		Select("source, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("source")
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *analyticsService) GetRecentActivity(limit int) ([]model.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.provenanceRepo.ListAuditLogs("", limit)
}

// GetInvestorSummary is the restricted view served to investors. It
// exposes aggregate figures only, never per-client data.
func (s *analyticsService) GetInvestorSummary() (map[string]interface{}, error) {
	total, err := s.fractionalRepo.SumRevenue()
	if err != nil {
		return nil, err
	}

	var sales int64
	if err := s.db.Model(&model.PurchaseWorkflow{}).
		Where("status = ?", model.WorkflowCompleted).
		Count(&sales).Error; err != nil {
		return nil, err
	}

	var avgPrice float64
	if err := s.db.Model(&model.PurchaseWorkflow{}).
		Where("status = ?", model.WorkflowCompleted).
		Select("COALESCE(AVG(total_price), 0)").
		Scan(&avgPrice).Error; err != nil {
		return nil, err
	}

	breakdown, err := s.GetRevenueBreakdown(time.Time{})
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"total_revenue":      total,
		"completed_sales":    sales,
		"average_sale_price": avgPrice,
		"revenue_by_source":  breakdown,
	}, nil
}
