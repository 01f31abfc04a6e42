package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/service"
	apperrors "github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/errors"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/middleware"
)

type LogisticsController struct {
	logisticsService service.LogisticsService
}

func NewLogisticsController(logisticsService service.LogisticsService) *LogisticsController {
	return &LogisticsController{
		logisticsService: logisticsService,
	}
}

type ShippingOrderRequest struct {
	Carrier        string `json:"carrier" binding:"required"`
	TrackingNumber string `json:"tracking_number"`
}

type CustodyRequest struct {
	Entry string `json:"entry" binding:"required"`
}

// PostProductionUpdate publishes atelier progress
// POST /api/v1/admin/workflows/:id/production
func (ctrl *LogisticsController) PostProductionUpdate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input service.ProductionUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	update, err := ctrl.logisticsService.PostProductionUpdate(id, input)
	if err != nil {
		if errors.Is(err, service.ErrWorkflowNotFound) {
			apperrors.NotFound(c, apperrors.WorkflowNotFound, "Workflow not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"update": update,
	})
}

// GetProductionUpdates lists atelier progress for a workflow
// GET /api/v1/workflows/:id/production
func (ctrl *LogisticsController) GetProductionUpdates(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	updates, err := ctrl.logisticsService.GetProductionUpdates(id)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"updates": updates,
	})
}

// SetDeliveryDetail stores the buyer's delivery preferences
// PUT /api/v1/workflows/:id/delivery
func (ctrl *LogisticsController) SetDeliveryDetail(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var input service.DeliveryDetailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	detail, err := ctrl.logisticsService.SetDeliveryDetail(id, userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWorkflowNotFound):
			apperrors.NotFound(c, apperrors.WorkflowNotFound, "Workflow not found")
		case errors.Is(err, service.ErrNotWorkflowBuyer):
			apperrors.Forbidden(c, "Only the buyer may set delivery details")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"delivery": detail,
	})
}

// GetDeliveryDetail returns the delivery preferences for a workflow
// GET /api/v1/workflows/:id/delivery
func (ctrl *LogisticsController) GetDeliveryDetail(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	detail, err := ctrl.logisticsService.GetDeliveryDetail(id)
	if err != nil {
		if errors.Is(err, service.ErrDeliveryNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "No delivery details recorded")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"delivery": detail,
	})
}

// CreateShippingOrder opens a shipment for a workflow
// POST /api/v1/admin/workflows/:id/shipping
func (ctrl *LogisticsController) CreateShippingOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ShippingOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	order, err := ctrl.logisticsService.CreateShippingOrder(id, req.Carrier, req.TrackingNumber)
	if err != nil {
		if errors.Is(err, service.ErrWorkflowNotFound) {
			apperrors.NotFound(c, apperrors.WorkflowNotFound, "Workflow not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"shipping_order": order,
	})
}

// GetShippingOrder returns the shipment for a workflow
// GET /api/v1/workflows/:id/shipping
func (ctrl *LogisticsController) GetShippingOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := ctrl.logisticsService.GetShippingOrder(id)
	if err != nil {
		if errors.Is(err, service.ErrShippingNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "No shipping order found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"shipping_order": order,
	})
}

// AppendCustody appends a chain-of-custody entry
// POST /api/v1/admin/workflows/:id/shipping/custody
func (ctrl *LogisticsController) AppendCustody(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req CustodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	order, err := ctrl.logisticsService.AppendCustody(id, req.Entry)
	if err != nil {
		if errors.Is(err, service.ErrShippingNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "No shipping order found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"shipping_order": order,
	})
}

// MarkShipped moves the shipment into transit
// POST /api/v1/admin/workflows/:id/shipping/shipped
func (ctrl *LogisticsController) MarkShipped(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := ctrl.logisticsService.MarkShipped(id)
	if err != nil {
		if errors.Is(err, service.ErrShippingNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "No shipping order found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"shipping_order": order,
	})
}

// MarkDelivered confirms physical delivery
// POST /api/v1/admin/workflows/:id/shipping/delivered
func (ctrl *LogisticsController) MarkDelivered(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := ctrl.logisticsService.MarkDelivered(id)
	if err != nil {
		if errors.Is(err, service.ErrShippingNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "No shipping order found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"shipping_order": order,
	})
}

// CreateInsurancePolicy records coverage for a piece
// POST /api/v1/admin/masterpieces/:id/insurance
func (ctrl *LogisticsController) CreateInsurancePolicy(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var policy model.InsurancePolicy
	if err := c.ShouldBindJSON(&policy); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}
	policy.MasterpieceID = id

	if err := ctrl.logisticsService.CreateInsurancePolicy(&policy); err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"policy": policy,
	})
}

// GetInsurancePolicies lists coverage for a piece
// GET /api/v1/masterpieces/:id/insurance
func (ctrl *LogisticsController) GetInsurancePolicies(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	policies, err := ctrl.logisticsService.GetInsurancePolicies(id)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"policies": policies,
	})
}
