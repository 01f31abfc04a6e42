package router

import (
	"github.com/gin-gonic/gin"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/config"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/controller"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/middleware"
)

type Router struct {
	authController         *controller.AuthController
	masterpieceController  *controller.MasterpieceController
	workflowController     *controller.WorkflowController
	escrowController       *controller.EscrowController
	contractController     *controller.ContractController
	certificateController  *controller.CertificateController
	auctionController      *controller.AuctionController
	resaleController       *controller.ResaleController
	fractionalController   *controller.FractionalController
	notificationController *controller.NotificationController
	logisticsController    *controller.LogisticsController
	crmController          *controller.CRMController
	analyticsController    *controller.AnalyticsController
	wsController           *controller.WebSocketController
	authMiddleware         *middleware.AuthMiddleware
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	masterpieceController *controller.MasterpieceController,
	workflowController *controller.WorkflowController,
	escrowController *controller.EscrowController,
	contractController *controller.ContractController,
	certificateController *controller.CertificateController,
	auctionController *controller.AuctionController,
	resaleController *controller.ResaleController,
	fractionalController *controller.FractionalController,
	notificationController *controller.NotificationController,
	logisticsController *controller.LogisticsController,
	crmController *controller.CRMController,
	analyticsController *controller.AnalyticsController,
	wsController *controller.WebSocketController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		masterpieceController:  masterpieceController,
		workflowController:     workflowController,
		escrowController:       escrowController,
		contractController:     contractController,
		certificateController:  certificateController,
		auctionController:      auctionController,
		resaleController:       resaleController,
		fractionalController:   fractionalController,
		notificationController: notificationController,
		logisticsController:    logisticsController,
		crmController:          crmController,
		analyticsController:    analyticsController,
		wsController:           wsController,
		authMiddleware:         authMiddleware,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Antonio Bellaova platform API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.Refresh)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateProfile)
		}

		// Public certificate verification, token in the path
		v1.GET("/verify/:token", r.certificateController.Verify)

		// Public membership application intake
		v1.POST("/applications", r.crmController.SubmitApplication)

		masterpieces := v1.Group("/masterpieces")
		{
			masterpieces.GET("", r.authMiddleware.OptionalAuthenticate(), r.masterpieceController.List)
			masterpieces.GET("/:id", r.authMiddleware.OptionalAuthenticate(), r.masterpieceController.Get)
			masterpieces.GET("/:id/valuation", r.authMiddleware.OptionalAuthenticate(), r.masterpieceController.GetValuation)
			masterpieces.GET("/:id/moments", r.authMiddleware.OptionalAuthenticate(), r.masterpieceController.ListMoments)
			masterpieces.GET("/:id/provenance", r.authMiddleware.OptionalAuthenticate(), r.masterpieceController.GetProvenance)

			masterpieces.GET("/vault", r.authMiddleware.Authenticate(), r.masterpieceController.GetVault)
			masterpieces.POST("/:id/reserve", r.authMiddleware.Authenticate(), r.masterpieceController.Reserve)
			masterpieces.POST("/:id/waitlist", r.authMiddleware.Authenticate(), r.masterpieceController.JoinWaitlist)
			masterpieces.DELETE("/:id/waitlist", r.authMiddleware.Authenticate(), r.masterpieceController.LeaveWaitlist)

			admin := masterpieces.Group("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
			)
			{
				admin.POST("", r.masterpieceController.Create)
				admin.PUT("/:id", r.masterpieceController.Update)
				admin.DELETE("/:id", r.masterpieceController.Delete)
				admin.GET("/:id/ownership", r.masterpieceController.GetOwnershipHistory)
				admin.GET("/:id/waitlist", r.masterpieceController.GetWaitlist)
				admin.POST("/:id/service-records", r.masterpieceController.AddServiceRecord)
				admin.GET("/:id/service-records", r.masterpieceController.GetServiceHistory)
				admin.POST("/:id/provenance", r.masterpieceController.AddProvenanceEvent)
				admin.POST("/:id/assign", r.masterpieceController.Assign)
				admin.POST("/:id/purchase/approve", r.workflowController.Approve)
				admin.POST("/:id/purchase/reject", r.workflowController.Reject)
			}
		}

		moments := v1.Group("/moments")
		{
			moments.GET("", r.authMiddleware.OptionalAuthenticate(), r.masterpieceController.ListFeed)
			moments.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.masterpieceController.PostMoment,
			)
		}

		workflows := v1.Group("/workflows", r.authMiddleware.Authenticate())
		{
			workflows.POST("", r.workflowController.RequestPurchase)
			workflows.GET("/mine", r.workflowController.ListMine)
			workflows.GET("/:id", r.workflowController.Get)
			workflows.POST("/:id/cancel", r.workflowController.Cancel)

			workflows.GET("/:id/payments", r.workflowController.ListPayments)
			workflows.GET("/:id/production", r.logisticsController.GetProductionUpdates)
			workflows.PUT("/:id/delivery", r.logisticsController.SetDeliveryDetail)
			workflows.GET("/:id/delivery", r.logisticsController.GetDeliveryDetail)

			admin := workflows.Group("", r.authMiddleware.RequireRole("admin"))
			{
				admin.GET("", r.workflowController.ListAll)
				admin.GET("/:id/contracts", r.contractController.ListByWorkflow)
				admin.POST("/:id/steps", r.workflowController.AdvanceStep)
				admin.POST("/:id/production", r.logisticsController.PostProductionUpdate)
			}
		}

		escrows := v1.Group("/escrows", r.authMiddleware.Authenticate())
		{
			escrows.GET("/:id", r.escrowController.Get)
			escrows.POST("/:id/dispute", r.escrowController.Dispute)

			admin := escrows.Group("", r.authMiddleware.RequireRole("admin"))
			{
				admin.GET("", r.escrowController.List)
				admin.POST("/:id/resolve", r.escrowController.Resolve)
			}
		}

		contracts := v1.Group("/contracts", r.authMiddleware.Authenticate())
		{
			contracts.GET("", r.contractController.ListMine)
			contracts.GET("/:id", r.contractController.Get)
			contracts.POST("/:id/sign", r.contractController.Sign)
		}

		certificates := v1.Group("/certificates", r.authMiddleware.Authenticate())
		{
			certificates.GET("", r.certificateController.ListMine)
			certificates.GET("/:id", r.certificateController.Get)
		}

		auctions := v1.Group("/auctions")
		{
			auctions.GET("", r.authMiddleware.OptionalAuthenticate(), r.auctionController.List)
			auctions.GET("/:id", r.authMiddleware.OptionalAuthenticate(), r.auctionController.Get)
			auctions.GET("/:id/bids", r.authMiddleware.OptionalAuthenticate(), r.auctionController.ListBids)
			auctions.POST("/:id/bids", r.authMiddleware.Authenticate(), r.auctionController.PlaceBid)

			admin := auctions.Group("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
			)
			{
				admin.POST("", r.auctionController.Create)
				admin.POST("/:id/settle", r.auctionController.Settle)
			}
		}

		resales := v1.Group("/resales", r.authMiddleware.Authenticate())
		{
			resales.POST("", r.resaleController.Request)
			resales.GET("", r.resaleController.List)
			resales.GET("/mine", r.resaleController.ListMine)
			resales.GET("/:id", r.resaleController.Get)
			resales.POST("/:id/withdraw", r.resaleController.Withdraw)
			resales.POST("/:id/messages", r.resaleController.SendMessage)
			resales.GET("/:id/messages", r.resaleController.GetMessages)
			resales.POST("/:id/accept", r.resaleController.AcceptOffer)

			admin := resales.Group("", r.authMiddleware.RequireRole("admin"))
			{
				admin.POST("/:id/review", r.resaleController.Review)
				admin.POST("/:id/complete", r.resaleController.Complete)
			}
		}

		shares := v1.Group("/shares", r.authMiddleware.Authenticate())
		{
			shares.GET("/mine", r.fractionalController.GetHoldings)
			shares.GET("/transfers", r.fractionalController.GetTransfers)
			shares.POST("/transfer", r.fractionalController.Transfer)

			shares.POST("/issue",
				r.authMiddleware.RequireRole("admin"),
				r.fractionalController.IssueShares,
			)
		}

		v1.GET("/payments/mine", r.authMiddleware.Authenticate(), r.workflowController.ListMyPayments)

		notifications := v1.Group("/notifications", r.authMiddleware.Authenticate())
		{
			notifications.GET("", r.notificationController.List)
			notifications.POST("/:id/read", r.notificationController.MarkRead)
			notifications.POST("/read-all", r.notificationController.MarkAllRead)
		}

		shipping := v1.Group("/shipping", r.authMiddleware.Authenticate())
		{
			shipping.GET("/:id", r.logisticsController.GetShippingOrder)
			shipping.GET("/:id/insurance", r.logisticsController.GetInsurancePolicies)

			admin := shipping.Group("", r.authMiddleware.RequireRole("admin"))
			{
				admin.POST("", r.logisticsController.CreateShippingOrder)
				admin.POST("/:id/custody", r.logisticsController.AppendCustody)
				admin.POST("/:id/shipped", r.logisticsController.MarkShipped)
				admin.POST("/:id/delivered", r.logisticsController.MarkDelivered)
				admin.POST("/:id/insurance", r.logisticsController.CreateInsurancePolicy)
			}
		}

		concierge := v1.Group("/concierge", r.authMiddleware.Authenticate())
		{
			concierge.POST("", r.crmController.OpenConcierge)
			concierge.GET("", r.crmController.ListConcierge)
			concierge.GET("/:id", r.crmController.GetConcierge)
			concierge.POST("/:id/messages", r.crmController.ReplyConcierge)
		}

		events := v1.Group("/events", r.authMiddleware.Authenticate())
		{
			events.GET("", r.crmController.ListEvents)
			events.POST("/:id/rsvp", r.crmController.RSVP)
		}

		investor := v1.Group("/investor", r.authMiddleware.Authenticate())
		{
			investor.POST("/requests", r.crmController.SubmitInvestorRequest)

			access := investor.Group("", r.authMiddleware.RequireRole("investor", "admin"))
			{
				access.GET("/summary", r.analyticsController.GetInvestorSummary)
				access.GET("/revenue", r.fractionalController.Revenue)
			}
		}

		admin := v1.Group("/admin",
			r.authMiddleware.Authenticate(),
			r.authMiddleware.RequireRole("admin"),
		)
		{
			admin.POST("/concierge/:id/close", r.crmController.CloseConcierge)
			admin.POST("/crm/interactions", r.crmController.RecordInteraction)
			admin.GET("/crm/interactions/:id", r.crmController.GetInteractions)

			admin.GET("/applications", r.crmController.ListApplications)
			admin.POST("/applications/:id/review", r.crmController.ReviewApplication)
			admin.GET("/investor-requests", r.crmController.ListInvestorRequests)
			admin.POST("/investor-requests/:id/review", r.crmController.ReviewInvestorRequest)

			admin.POST("/events", r.crmController.CreateEvent)

			admin.GET("/analytics/dashboard", r.analyticsController.GetDashboard)
			admin.GET("/analytics/revenue", r.analyticsController.GetRevenueBreakdown)
			admin.GET("/analytics/activity", r.analyticsController.GetRecentActivity)
		}

		// Live event feed. The token rides in a query parameter because
		// browsers cannot set headers on WebSocket upgrades.
		v1.GET("/ws", r.authMiddleware.Authenticate(), r.wsController.Connect)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
