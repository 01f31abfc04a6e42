package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/util"
)

var (
	ErrConciergeNotFound   = errors.New("concierge request not found")
	ErrConciergeClosed     = errors.New("concierge request is closed")
	ErrApplicationNotFound = errors.New("application not found")
	ErrApplicationDecided  = errors.New("application has already been decided")
	ErrEventNotFound       = errors.New("event not found")
	ErrEventOver           = errors.New("event has already ended")
)

type ApplicationInput struct {
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name" binding:"required"`
	Motivation string `json:"motivation"`
	ReferredBy string `json:"referred_by"`
}

type CRMService interface {
	OpenConciergeRequest(userID uint, topic, firstMessage string) (*model.ConciergeRequest, error)
	GetConciergeRequest(requestID, viewerID uint, isStaff bool) (*model.ConciergeRequest, error)
	ListConciergeRequests(userID uint, isStaff bool, status string) ([]model.ConciergeRequest, error)
	ReplyToConciergeRequest(requestID, senderID uint, isStaff bool, body string) (*model.ConciergeMessage, error)
	CloseConciergeRequest(requestID, staffID uint) error

	RecordInteraction(userID, staffID uint, channel, note string, occurredAt time.Time) (*model.CRMInteraction, error)
	GetInteractions(userID uint) ([]model.CRMInteraction, error)

	SubmitApplication(input ApplicationInput) (*model.UserApplication, error)
	ListApplications(status string) ([]model.UserApplication, error)
	ReviewApplication(applicationID, adminID uint, approve bool, note string) (*model.UserApplication, string, error)

	SubmitInvestorRequest(userID uint, organization, message string) (*model.InvestorRequest, error)
	ListInvestorRequests(status string) ([]model.InvestorRequest, error)
	ReviewInvestorRequest(requestID, adminID uint, approve bool) (*model.InvestorRequest, error)

	CreateEvent(event *model.PrivateEvent) error
	ListEvents(viewerRole model.UserRole) ([]model.PrivateEvent, error)
	RSVP(eventID, userID uint, viewerRole model.UserRole, attending bool) (*model.EventRSVP, error)
}

type crmService struct {
	crmRepo       repository.CRMRepository
	userRepo      repository.UserRepository
	notifications NotificationService
}

func NewCRMService(crmRepo repository.CRMRepository, userRepo repository.UserRepository, notifications NotificationService) CRMService {
	return &crmService{
		crmRepo:       crmRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

func (s *crmService) OpenConciergeRequest(userID uint, topic, firstMessage string) (*model.ConciergeRequest, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	request := &model.ConciergeRequest{
		UserID: userID,
		Topic:  topic,
		Status: model.ConciergeOpen,
	}
	if err := s.crmRepo.CreateConciergeRequest(request); err != nil {
		return nil, err
	}

	if firstMessage != "" {
		message := &model.ConciergeMessage{
			RequestID: request.ID,
			SenderID:  userID,
			Body:      firstMessage,
		}
		if err := s.crmRepo.CreateConciergeMessage(message); err != nil {
			logger.Error("Failed to store opening concierge message", err, map[string]interface{}{
				"request_id": request.ID,
			})
		}
	}
	return request, nil
}

func (s *crmService) GetConciergeRequest(requestID, viewerID uint, isStaff bool) (*model.ConciergeRequest, error) {
	request, err := s.crmRepo.FindConciergeRequest(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConciergeNotFound
		}
		return nil, err
	}
	if !isStaff && request.UserID != viewerID {
		return nil, ErrConciergeNotFound
	}
	return request, nil
}

func (s *crmService) ListConciergeRequests(userID uint, isStaff bool, status string) ([]model.ConciergeRequest, error) {
	if isStaff {
		return s.crmRepo.ListConciergeRequests(status)
	}
	return s.crmRepo.FindConciergeRequestsByUser(userID)
}

func (s *crmService) ReplyToConciergeRequest(requestID, senderID uint, isStaff bool, body string) (*model.ConciergeMessage, error) {
	request, err := s.GetConciergeRequest(requestID, senderID, isStaff)
	if err != nil {
		return nil, err
	}
	if request.Status == model.ConciergeClosed {
		return nil, ErrConciergeClosed
	}

	message := &model.ConciergeMessage{
		RequestID: requestID,
		SenderID:  senderID,
		Body:      body,
	}
	if err := s.crmRepo.CreateConciergeMessage(message); err != nil {
		return nil, err
	}

	if isStaff {
		if request.Status == model.ConciergeOpen {
			request.Status = model.ConciergeInProgress
			request.AssignedToID = &senderID
			if err := s.crmRepo.UpdateConciergeRequest(request); err != nil {
				logger.Error("Failed to assign concierge request", err, nil)
			}
		}
		s.notifications.Notify(request.UserID, model.NotifyConciergeReply,
			"Your concierge replied",
			"There is a new reply in your concierge request.",
			fmt.Sprintf("/concierge/%d", request.ID))
	}
	return message, nil
}

func (s *crmService) CloseConciergeRequest(requestID, staffID uint) error {
	request, err := s.crmRepo.FindConciergeRequest(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConciergeNotFound
		}
		return err
	}
	request.Status = model.ConciergeClosed
	request.AssignedToID = &staffID
	return s.crmRepo.UpdateConciergeRequest(request)
}

func (s *crmService) RecordInteraction(userID, staffID uint, channel, note string, occurredAt time.Time) (*model.CRMInteraction, error) {
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	interaction := &model.CRMInteraction{
		UserID:     userID,
		StaffID:    staffID,
		Channel:    channel,
		Note:       note,
		OccurredAt: occurredAt,
	}
	if err := s.crmRepo.CreateInteraction(interaction); err != nil {
		return nil, err
	}
	return interaction, nil
}

func (s *crmService) GetInteractions(userID uint) ([]model.CRMInteraction, error) {
	return s.crmRepo.FindInteractionsByUser(userID)
}

func (s *crmService) SubmitApplication(input ApplicationInput) (*model.UserApplication, error) {
	if _, err := s.userRepo.FindByEmail(input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	application := &model.UserApplication{
		Email:      input.Email,
		Name:       input.Name,
		Motivation: input.Motivation,
		ReferredBy: input.ReferredBy,
		Status:     model.ApplicationPending,
	}
	if err := s.crmRepo.CreateApplication(application); err != nil {
		return nil, err
	}
	return application, nil
}

func (s *crmService) ListApplications(status string) ([]model.UserApplication, error) {
	return s.crmRepo.ListApplications(status)
}

// ReviewApplication decides a membership application. Approval creates
// the collector account with a temporary password, returned to the
// reviewing admin for handover.
func (s *crmService) ReviewApplication(applicationID, adminID uint, approve bool, note string) (*model.UserApplication, string, error) {
	application, err := s.crmRepo.FindApplication(applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrApplicationNotFound
		}
		return nil, "", err
	}
	if application.Status != model.ApplicationPending {
		return nil, "", ErrApplicationDecided
	}

	application.ReviewedByID = &adminID
	application.ReviewNote = note

	if !approve {
		application.Status = model.ApplicationRejected
		if err := s.crmRepo.UpdateApplication(application); err != nil {
			return nil, "", err
		}
		return application, "", nil
	}

	tempPassword := uuid.NewString()[:12]
	hash, err := util.HashPassword(tempPassword)
	if err != nil {
		return nil, "", err
	}
	user := &model.User{
		Email:        application.Email,
		PasswordHash: hash,
		Name:         application.Name,
		Role:         model.RoleCollector,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, "", err
	}

	application.Status = model.ApplicationApproved
	if err := s.crmRepo.UpdateApplication(application); err != nil {
		return nil, "", err
	}

	logger.Info("Membership application approved", map[string]interface{}{
		"application_id": application.ID,
		"user_id":        user.ID,
	})
	return application, tempPassword, nil
}

func (s *crmService) SubmitInvestorRequest(userID uint, organization, message string) (*model.InvestorRequest, error) {
	request := &model.InvestorRequest{
		UserID:       userID,
		Organization: organization,
		Message:      message,
		Status:       model.ApplicationPending,
	}
	if err := s.crmRepo.CreateInvestorRequest(request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *crmService) ListInvestorRequests(status string) ([]model.InvestorRequest, error) {
	return s.crmRepo.ListInvestorRequests(status)
}

// ReviewInvestorRequest grants or denies access to revenue figures.
// Approval switches the requester's role to investor.
func (s *crmService) ReviewInvestorRequest(requestID, adminID uint, approve bool) (*model.InvestorRequest, error) {
	request, err := s.crmRepo.FindInvestorRequest(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if request.Status != model.ApplicationPending {
		return nil, ErrApplicationDecided
	}

	request.ReviewedByID = &adminID
	if approve {
		request.Status = model.ApplicationApproved
		user, err := s.userRepo.FindByID(request.UserID)
		if err != nil {
			return nil, err
		}
		user.Role = model.RoleInvestor
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
	} else {
		request.Status = model.ApplicationRejected
	}
	if err := s.crmRepo.UpdateInvestorRequest(request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *crmService) CreateEvent(event *model.PrivateEvent) error {
	return s.crmRepo.CreateEvent(event)
}

func (s *crmService) ListEvents(viewerRole model.UserRole) ([]model.PrivateEvent, error) {
	return s.crmRepo.ListEvents(canSeeVIP(viewerRole))
}

// RSVP confirms or declines attendance. Once an event reaches
// capacity, further confirmations are waitlisted.
func (s *crmService) RSVP(eventID, userID uint, viewerRole model.UserRole, attending bool) (*model.EventRSVP, error) {
	event, err := s.crmRepo.FindEvent(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.VIPOnly && !canSeeVIP(viewerRole) {
		return nil, ErrEventNotFound
	}
	if time.Now().After(event.EndsAt) {
		return nil, ErrEventOver
	}

	status := model.RSVPDeclined
	if attending {
		status = model.RSVPConfirmed
		if event.Capacity > 0 {
			confirmed, err := s.crmRepo.CountConfirmedRSVPs(eventID)
			if err != nil {
				return nil, err
			}
			if confirmed >= int64(event.Capacity) {
				status = model.RSVPWaitlisted
			}
		}
	}

	existing, err := s.crmRepo.FindRSVP(eventID, userID)
	switch {
	case err == nil:
		existing.Status = status
		if err := s.crmRepo.UpdateRSVP(existing); err != nil {
			return nil, err
		}
		return existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		rsvp := &model.EventRSVP{
			EventID: eventID,
			UserID:  userID,
			Status:  status,
		}
		if err := s.crmRepo.CreateRSVP(rsvp); err != nil {
			return nil, err
		}
		return rsvp, nil
	default:
		return nil, err
	}
}
