package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/websocket"
)

var (
	ErrDeliveryNotFound = errors.New("delivery detail not found")
	ErrShippingNotFound = errors.New("shipping order not found")
)

type ProductionUpdateInput struct {
	Stage           string `json:"stage" binding:"required"`
	Note            string `json:"note"`
	PercentComplete int    `json:"percent_complete" binding:"min=0,max=100"`
	MediaURL        string `json:"media_url"`
}

type DeliveryDetailInput struct {
	Method        model.DeliveryMethod `json:"method" binding:"required"`
	Address       string               `json:"address" binding:"required"`
	RecipientName string               `json:"recipient_name" binding:"required"`
	ScheduledAt   *time.Time           `json:"scheduled_at"`
}

type LogisticsService interface {
	PostProductionUpdate(workflowID uint, input ProductionUpdateInput) (*model.ProductionUpdate, error)
	GetProductionUpdates(workflowID uint) ([]model.ProductionUpdate, error)
	SetDeliveryDetail(workflowID, actorID uint, input DeliveryDetailInput) (*model.DeliveryDetail, error)
	GetDeliveryDetail(workflowID uint) (*model.DeliveryDetail, error)
	CreateShippingOrder(workflowID uint, carrier, trackingNumber string) (*model.ShippingOrder, error)
	GetShippingOrder(workflowID uint) (*model.ShippingOrder, error)
	AppendCustody(workflowID uint, entry string) (*model.ShippingOrder, error)
	MarkShipped(workflowID uint) (*model.ShippingOrder, error)
	MarkDelivered(workflowID uint) (*model.ShippingOrder, error)
	CreateInsurancePolicy(policy *model.InsurancePolicy) error
	GetInsurancePolicies(masterpieceID uint) ([]model.InsurancePolicy, error)
}

type logisticsService struct {
	logisticsRepo repository.LogisticsRepository
	workflowRepo  repository.WorkflowRepository
	notifications NotificationService
	hub           *websocket.Hub
}

func NewLogisticsService(logisticsRepo repository.LogisticsRepository, workflowRepo repository.WorkflowRepository, notifications NotificationService, hub *websocket.Hub) LogisticsService {
	return &logisticsService{
		logisticsRepo: logisticsRepo,
		workflowRepo:  workflowRepo,
		notifications: notifications,
		hub:           hub,
	}
}

// PostProductionUpdate publishes atelier progress. The buyer sees
// these live on their workflow page.
func (s *logisticsService) PostProductionUpdate(workflowID uint, input ProductionUpdateInput) (*model.ProductionUpdate, error) {
	workflow, err := s.workflowRepo.FindByID(workflowID)
	if err != nil {
		return nil, ErrWorkflowNotFound
	}

	update := &model.ProductionUpdate{
		WorkflowID:      workflowID,
		Stage:           input.Stage,
		Note:            input.Note,
		PercentComplete: input.PercentComplete,
		MediaURL:        input.MediaURL,
	}
	if err := s.logisticsRepo.CreateProductionUpdate(update); err != nil {
		return nil, err
	}

	s.notifications.Notify(workflow.BuyerID, model.NotifyProductionUpdate,
		"Production update",
		fmt.Sprintf("Your piece has reached the %s stage (%d%%).", input.Stage, input.PercentComplete),
		fmt.Sprintf("/workflows/%d", workflowID))
	if s.hub != nil {
		s.hub.SendToUser(workflow.BuyerID, websocket.EventProductionUpdated, update)
	}
	return update, nil
}

func (s *logisticsService) GetProductionUpdates(workflowID uint) ([]model.ProductionUpdate, error) {
	return s.logisticsRepo.FindProductionUpdates(workflowID)
}

func (s *logisticsService) SetDeliveryDetail(workflowID, actorID uint, input DeliveryDetailInput) (*model.DeliveryDetail, error) {
	workflow, err := s.workflowRepo.FindByID(workflowID)
	if err != nil {
		return nil, ErrWorkflowNotFound
	}
	// Only the buyer sets their own delivery details
	if workflow.BuyerID != actorID {
		return nil, ErrNotWorkflowBuyer
	}

	detail := &model.DeliveryDetail{
		WorkflowID:    workflowID,
		Method:        input.Method,
		Address:       input.Address,
		RecipientName: input.RecipientName,
		ScheduledAt:   input.ScheduledAt,
	}
	if err := s.logisticsRepo.UpsertDeliveryDetail(detail); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *logisticsService) GetDeliveryDetail(workflowID uint) (*model.DeliveryDetail, error) {
	detail, err := s.logisticsRepo.FindDeliveryDetail(workflowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeliveryNotFound
		}
		return nil, err
	}
	return detail, nil
}

func (s *logisticsService) CreateShippingOrder(workflowID uint, carrier, trackingNumber string) (*model.ShippingOrder, error) {
	if _, err := s.workflowRepo.FindByID(workflowID); err != nil {
		return nil, ErrWorkflowNotFound
	}

	order := &model.ShippingOrder{
		WorkflowID:     workflowID,
		Carrier:        carrier,
		TrackingNumber: trackingNumber,
		Status:         model.ShippingPreparing,
		CustodyLog:     []string{custodyEntry("atelier vault")},
	}
	if err := s.logisticsRepo.CreateShippingOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *logisticsService) GetShippingOrder(workflowID uint) (*model.ShippingOrder, error) {
	order, err := s.logisticsRepo.FindShippingOrder(workflowID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShippingNotFound
		}
		return nil, err
	}
	return order, nil
}

// AppendCustody adds a chain-of-custody entry to the shipping order.
func (s *logisticsService) AppendCustody(workflowID uint, entry string) (*model.ShippingOrder, error) {
	order, err := s.GetShippingOrder(workflowID)
	if err != nil {
		return nil, err
	}
	order.CustodyLog = append(order.CustodyLog, custodyEntry(entry))
	if err := s.logisticsRepo.UpdateShippingOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *logisticsService) MarkShipped(workflowID uint) (*model.ShippingOrder, error) {
	order, err := s.GetShippingOrder(workflowID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	order.Status = model.ShippingInTransit
	order.ShippedAt = &now
	order.CustodyLog = append(order.CustodyLog, custodyEntry("handed to "+order.Carrier))
	if err := s.logisticsRepo.UpdateShippingOrder(order); err != nil {
		return nil, err
	}
	s.notifyDelivery(workflowID, "Your piece is on its way",
		fmt.Sprintf("Shipped via %s, tracking %s.", order.Carrier, order.TrackingNumber))
	return order, nil
}

func (s *logisticsService) MarkDelivered(workflowID uint) (*model.ShippingOrder, error) {
	order, err := s.GetShippingOrder(workflowID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	order.Status = model.ShippingDelivered
	order.DeliveredAt = &now
	order.CustodyLog = append(order.CustodyLog, custodyEntry("delivered to recipient"))
	if err := s.logisticsRepo.UpdateShippingOrder(order); err != nil {
		return nil, err
	}

	if detail, err := s.logisticsRepo.FindDeliveryDetail(workflowID); err == nil {
		detail.DeliveredAt = &now
		_ = s.logisticsRepo.UpdateDeliveryDetail(detail)
	}

	s.notifyDelivery(workflowID, "Your piece has arrived",
		"Delivery is confirmed. Please inspect your piece and confirm completion.")
	return order, nil
}

func (s *logisticsService) CreateInsurancePolicy(policy *model.InsurancePolicy) error {
	return s.logisticsRepo.CreateInsurancePolicy(policy)
}

func (s *logisticsService) GetInsurancePolicies(masterpieceID uint) ([]model.InsurancePolicy, error) {
	return s.logisticsRepo.FindInsurancePolicies(masterpieceID)
}

func (s *logisticsService) notifyDelivery(workflowID uint, title, message string) {
	workflow, err := s.workflowRepo.FindByID(workflowID)
	if err != nil {
		return
	}
	s.notifications.Notify(workflow.BuyerID, model.NotifyDeliveryUpdate, title, message,
		fmt.Sprintf("/workflows/%d", workflowID))
	if s.hub != nil {
		s.hub.SendToUser(workflow.BuyerID, websocket.EventDeliveryUpdated, map[string]interface{}{
			"workflow_id": workflowID,
			"title":       title,
		})
	}
}

func custodyEntry(note string) string {
	return fmt.Sprintf("%s | %s", time.Now().Format(time.RFC3339), note)
}
