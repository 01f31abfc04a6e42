package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/service"
	apperrors "github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/errors"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/middleware"
)

type CRMController struct {
	crmService service.CRMService
}

func NewCRMController(crmService service.CRMService) *CRMController {
	return &CRMController{
		crmService: crmService,
	}
}

type OpenConciergeRequest struct {
	Topic   string `json:"topic" binding:"required"`
	Message string `json:"message"`
}

type ConciergeReplyRequest struct {
	Body string `json:"body" binding:"required"`
}

type InteractionRequest struct {
	UserID     uint      `json:"user_id" binding:"required"`
	Channel    string    `json:"channel" binding:"required"`
	Note       string    `json:"note"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ReviewApplicationRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

type InvestorRequestInput struct {
	Organization string `json:"organization"`
	Message      string `json:"message"`
}

type RSVPRequest struct {
	Attending bool `json:"attending"`
}

func isStaff(c *gin.Context) bool {
	return viewerRole(c) == model.RoleAdmin
}

// OpenConcierge opens a concierge thread
// POST /api/v1/concierge
func (ctrl *CRMController) OpenConcierge(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req OpenConciergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	request, err := ctrl.crmService.OpenConciergeRequest(userID, req.Topic, req.Message)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"request": request,
	})
}

// GetConcierge returns one thread
// GET /api/v1/concierge/:id
func (ctrl *CRMController) GetConcierge(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	request, err := ctrl.crmService.GetConciergeRequest(id, userID, isStaff(c))
	if err != nil {
		if errors.Is(err, service.ErrConciergeNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Concierge request not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"request": request,
	})
}

// ListConcierge lists the caller's threads, or all for staff
// GET /api/v1/concierge
func (ctrl *CRMController) ListConcierge(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	requests, err := ctrl.crmService.ListConciergeRequests(userID, isStaff(c), c.Query("status"))
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}

// ReplyConcierge posts into a thread
// POST /api/v1/concierge/:id/messages
func (ctrl *CRMController) ReplyConcierge(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ConciergeReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	message, err := ctrl.crmService.ReplyToConciergeRequest(id, userID, isStaff(c), req.Body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConciergeNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Concierge request not found")
		case errors.Is(err, service.ErrConciergeClosed):
			apperrors.Conflict(c, apperrors.ResourceConflict, "Concierge request is closed")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": message,
	})
}

// CloseConcierge closes a thread
// POST /api/v1/admin/concierge/:id/close
func (ctrl *CRMController) CloseConcierge(c *gin.Context) {
	staffID, _ := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := ctrl.crmService.CloseConciergeRequest(id, staffID); err != nil {
		if errors.Is(err, service.ErrConciergeNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Concierge request not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Concierge request closed",
	})
}

// RecordInteraction logs client contact
// POST /api/v1/admin/crm/interactions
func (ctrl *CRMController) RecordInteraction(c *gin.Context) {
	staffID, _ := middleware.GetUserID(c)

	var req InteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	interaction, err := ctrl.crmService.RecordInteraction(req.UserID, staffID, req.Channel, req.Note, req.OccurredAt)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"interaction": interaction,
	})
}

// GetInteractions lists contact history for a client
// GET /api/v1/admin/crm/interactions/:id
func (ctrl *CRMController) GetInteractions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	interactions, err := ctrl.crmService.GetInteractions(id)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"interactions": interactions,
	})
}

// SubmitApplication takes a membership application, no auth required
// POST /api/v1/applications
func (ctrl *CRMController) SubmitApplication(c *gin.Context) {
	var input service.ApplicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	application, err := ctrl.crmService.SubmitApplication(input)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "This email is already registered")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"application": application,
	})
}

// ListApplications returns applications by status
// GET /api/v1/admin/applications
func (ctrl *CRMController) ListApplications(c *gin.Context) {
	applications, err := ctrl.crmService.ListApplications(c.Query("status"))
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"applications": applications,
		"count":        len(applications),
	})
}

// ReviewApplication decides an application
// POST /api/v1/admin/applications/:id/review
func (ctrl *CRMController) ReviewApplication(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	adminID, _ := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ReviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	application, tempPassword, err := ctrl.crmService.ReviewApplication(id, adminID, req.Approve, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrApplicationNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Application not found")
		case errors.Is(err, service.ErrApplicationDecided):
			apperrors.Conflict(c, apperrors.ResourceConflict, "Application has already been decided")
		default:
			log.Error("Failed to review application", err, map[string]interface{}{
				"application_id": id,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	resp := gin.H{"application": application}
	if tempPassword != "" {
		resp["temporary_password"] = tempPassword
	}
	c.JSON(http.StatusOK, resp)
}

// SubmitInvestorRequest asks for access to revenue figures
// POST /api/v1/investor/requests
func (ctrl *CRMController) SubmitInvestorRequest(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var input InvestorRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	request, err := ctrl.crmService.SubmitInvestorRequest(userID, input.Organization, input.Message)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"request": request,
	})
}

// ListInvestorRequests returns pending investor requests
// GET /api/v1/admin/investor-requests
func (ctrl *CRMController) ListInvestorRequests(c *gin.Context) {
	requests, err := ctrl.crmService.ListInvestorRequests(c.Query("status"))
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
	})
}

// ReviewInvestorRequest grants or denies investor access
// POST /api/v1/admin/investor-requests/:id/review
func (ctrl *CRMController) ReviewInvestorRequest(c *gin.Context) {
	adminID, _ := middleware.GetUserID(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ReviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	request, err := ctrl.crmService.ReviewInvestorRequest(id, adminID, req.Approve)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrApplicationNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Request not found")
		case errors.Is(err, service.ErrApplicationDecided):
			apperrors.Conflict(c, apperrors.ResourceConflict, "Request has already been decided")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"request": request,
	})
}

// CreateEvent schedules a private event
// POST /api/v1/admin/events
func (ctrl *CRMController) CreateEvent(c *gin.Context) {
	var event model.PrivateEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}
	if err := ctrl.crmService.CreateEvent(&event); err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"event": event,
	})
}

// ListEvents returns events visible to the caller
// GET /api/v1/events
func (ctrl *CRMController) ListEvents(c *gin.Context) {
	events, err := ctrl.crmService.ListEvents(viewerRole(c))
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"events": events,
	})
}

// RSVP confirms or declines attendance
// POST /api/v1/events/:id/rsvp
func (ctrl *CRMController) RSVP(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req RSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	rsvp, err := ctrl.crmService.RSVP(id, userID, viewerRole(c), req.Attending)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Event not found")
		case errors.Is(err, service.ErrEventOver):
			apperrors.Conflict(c, apperrors.ResourceConflict, "Event has already ended")
		default:
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rsvp": rsvp,
	})
}
