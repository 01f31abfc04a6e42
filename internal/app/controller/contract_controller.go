package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/service"
	apperrors "github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/errors"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/middleware"
)

type ContractController struct {
	contractService service.ContractService
}

func NewContractController(contractService service.ContractService) *ContractController {
	return &ContractController{
		contractService: contractService,
	}
}

type SignContractRequest struct {
	SignatureName string `json:"signature_name" binding:"required"`
}

// ListMine returns the caller's contracts
// GET /api/v1/contracts
func (ctrl *ContractController) ListMine(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	contracts, err := ctrl.contractService.ListByBuyer(userID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"contracts": contracts,
		"count":     len(contracts),
	})
}

// Get returns one contract, buyer or admin only
// GET /api/v1/contracts/:id
func (ctrl *ContractController) Get(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	contract, err := ctrl.contractService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrContractNotFound) {
			apperrors.NotFound(c, apperrors.ContractNotFound, "Contract not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	if role := viewerRole(c); role != "admin" && contract.BuyerID != userID {
		apperrors.NotFound(c, apperrors.ContractNotFound, "Contract not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"contract": contract,
	})
}

// ListByWorkflow returns a workflow's paper trail, deposit first
// GET /api/v1/workflows/:id/contracts
func (ctrl *ContractController) ListByWorkflow(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	contracts, err := ctrl.contractService.ListByWorkflow(id)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"contracts": contracts,
		"count":     len(contracts),
	})
}

// Sign records the buyer's typed signature
// POST /api/v1/contracts/:id/sign
func (ctrl *ContractController) Sign(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req SignContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	contract, err := ctrl.contractService.Sign(id, userID, req.SignatureName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrContractNotFound):
			apperrors.NotFound(c, apperrors.ContractNotFound, "Contract not found")
		case errors.Is(err, service.ErrNotContractBuyer):
			apperrors.Forbidden(c, "Only the buyer may sign this contract")
		case errors.Is(err, service.ErrContractAlreadySigned):
			apperrors.Conflict(c, apperrors.ContractAlreadySigned, "Contract has already been signed")
		case errors.Is(err, service.ErrEmptySignature):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Signature name is required")
		default:
			log.Error("Failed to sign contract", err, map[string]interface{}{
				"contract_id": id,
			})
			apperrors.InternalError(c, "")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"contract": contract,
	})
}
