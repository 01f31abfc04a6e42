package repository

import (
	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
)

type CRMRepository interface {
	CreateConciergeRequest(request *model.ConciergeRequest) error
	FindConciergeRequest(id uint) (*model.ConciergeRequest, error)
	FindConciergeRequestsByUser(userID uint) ([]model.ConciergeRequest, error)
	ListConciergeRequests(status string) ([]model.ConciergeRequest, error)
	UpdateConciergeRequest(request *model.ConciergeRequest) error
	CreateConciergeMessage(message *model.ConciergeMessage) error

	CreateInteraction(interaction *model.CRMInteraction) error
	FindInteractionsByUser(userID uint) ([]model.CRMInteraction, error)

	CreateApplication(application *model.UserApplication) error
	FindApplication(id uint) (*model.UserApplication, error)
	ListApplications(status string) ([]model.UserApplication, error)
	UpdateApplication(application *model.UserApplication) error

	CreateInvestorRequest(request *model.InvestorRequest) error
	FindInvestorRequest(id uint) (*model.InvestorRequest, error)
	ListInvestorRequests(status string) ([]model.InvestorRequest, error)
	UpdateInvestorRequest(request *model.InvestorRequest) error

	CreateEvent(event *model.PrivateEvent) error
	FindEvent(id uint) (*model.PrivateEvent, error)
	ListEvents(includeVIP bool) ([]model.PrivateEvent, error)
	CountConfirmedRSVPs(eventID uint) (int64, error)
	CreateRSVP(rsvp *model.EventRSVP) error
	FindRSVP(eventID, userID uint) (*model.EventRSVP, error)
	UpdateRSVP(rsvp *model.EventRSVP) error
}

type crmRepository struct {
	db *gorm.DB
}

func NewCRMRepository(db *gorm.DB) CRMRepository {
	return &crmRepository{db: db}
}

func (r *crmRepository) CreateConciergeRequest(request *model.ConciergeRequest) error {
	return r.db.Create(request).Error
}

func (r *crmRepository) FindConciergeRequest(id uint) (*model.ConciergeRequest, error) {
	var request model.ConciergeRequest
	err := r.db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(&request, id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *crmRepository) FindConciergeRequestsByUser(userID uint) ([]model.ConciergeRequest, error) {
	var requests []model.ConciergeRequest
	err := r.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *crmRepository) ListConciergeRequests(status string) ([]model.ConciergeRequest, error) {
	var requests []model.ConciergeRequest
	query := r.db.Order("updated_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *crmRepository) UpdateConciergeRequest(request *model.ConciergeRequest) error {
	return r.db.Save(request).Error
}

func (r *crmRepository) CreateConciergeMessage(message *model.ConciergeMessage) error {
	return r.db.Create(message).Error
}

func (r *crmRepository) CreateInteraction(interaction *model.CRMInteraction) error {
	return r.db.Create(interaction).Error
}

func (r *crmRepository) FindInteractionsByUser(userID uint) ([]model.CRMInteraction, error) {
	var interactions []model.CRMInteraction
	err := r.db.Where("user_id = ?", userID).
		Order("occurred_at DESC").
		Find(&interactions).Error
	if err != nil {
		return nil, err
	}
	return interactions, nil
}

func (r *crmRepository) CreateApplication(application *model.UserApplication) error {
	return r.db.Create(application).Error
}

func (r *crmRepository) FindApplication(id uint) (*model.UserApplication, error) {
	var application model.UserApplication
	if err := r.db.First(&application, id).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *crmRepository) ListApplications(status string) ([]model.UserApplication, error) {
	var applications []model.UserApplication
	query := r.db.Order("created_at ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&applications).Error; err != nil {
		return nil, err
	}
	return applications, nil
}

func (r *crmRepository) UpdateApplication(application *model.UserApplication) error {
	return r.db.Save(application).Error
}

func (r *crmRepository) CreateInvestorRequest(request *model.InvestorRequest) error {
	return r.db.Create(request).Error
}

func (r *crmRepository) FindInvestorRequest(id uint) (*model.InvestorRequest, error) {
	var request model.InvestorRequest
	if err := r.db.First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *crmRepository) ListInvestorRequests(status string) ([]model.InvestorRequest, error) {
	var requests []model.InvestorRequest
	query := r.db.Order("created_at ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *crmRepository) UpdateInvestorRequest(request *model.InvestorRequest) error {
	return r.db.Save(request).Error
}

func (r *crmRepository) CreateEvent(event *model.PrivateEvent) error {
	return r.db.Create(event).Error
}

func (r *crmRepository) FindEvent(id uint) (*model.PrivateEvent, error) {
	var event model.PrivateEvent
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *crmRepository) ListEvents(includeVIP bool) ([]model.PrivateEvent, error) {
	var events []model.PrivateEvent
	query := r.db.Order("starts_at ASC")
	if !includeVIP {
		query = query.Where("vip_only = ?", false)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *crmRepository) CountConfirmedRSVPs(eventID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.EventRSVP{}).
		Where("event_id = ? AND status = ?", eventID, model.RSVPConfirmed).
		Count(&count).Error
	return count, err
}

func (r *crmRepository) CreateRSVP(rsvp *model.EventRSVP) error {
	return r.db.Create(rsvp).Error
}

func (r *crmRepository) FindRSVP(eventID, userID uint) (*model.EventRSVP, error) {
	var rsvp model.EventRSVP
	err := r.db.Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&rsvp).Error
	if err != nil {
		return nil, err
	}
	return &rsvp, nil
}

func (r *crmRepository) UpdateRSVP(rsvp *model.EventRSVP) error {
	return r.db.Save(rsvp).Error
}
