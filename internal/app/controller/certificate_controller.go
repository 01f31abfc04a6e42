package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/service"
	apperrors "github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/errors"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/middleware"
)

type CertificateController struct {
	certificateService service.CertificateService
}

func NewCertificateController(certificateService service.CertificateService) *CertificateController {
	return &CertificateController{
		certificateService: certificateService,
	}
}

// ListMine returns the caller's certificates
// GET /api/v1/certificates
func (ctrl *CertificateController) ListMine(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	certs, err := ctrl.certificateService.ListByOwner(userID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"certificates": certs,
		"count":        len(certs),
	})
}

// Get returns one certificate
// GET /api/v1/certificates/:id
func (ctrl *CertificateController) Get(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	cert, err := ctrl.certificateService.Get(id, userID, viewerRole(c) == "admin")
	if err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			apperrors.NotFound(c, apperrors.CertificateNotFound, "Certificate not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"certificate": cert,
	})
}

// Verify is the public authenticity lookup
// GET /api/v1/verify/:token
func (ctrl *CertificateController) Verify(c *gin.Context) {
	result, err := ctrl.certificateService.Verify(c.Param("token"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidVerification) {
			apperrors.NotFound(c, apperrors.CertificateTokenInvalid, "Verification token is not valid")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"verification": result,
	})
}
