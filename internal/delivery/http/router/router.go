// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"bizhub/internal/delivery/http/middleware"
	"bizhub/internal/delivery/http/router/handler"
	"bizhub/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler         *handler.AuthHandler
	BusinessHandler     *handler.BusinessHandler
	InvitationHandler   *handler.InvitationHandler
	NotificationHandler *handler.NotificationHandler
	BillingHandler      *handler.BillingHandler
	CatalogHandler      *handler.CatalogHandler
	CacheHandler        *handler.CacheHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	params RouterParams
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{params: params}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	p := r.params

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Cache inspection endpoint for operators
	cacheGroup := e.Group("/cache")
	cacheGroup.Use(p.AuthMiddleware.Authenticate)
	cacheGroup.GET("/status", p.CacheHandler.Status)

	// Scoped auth entry points. The route fixes which account types may
	// sign in; the payload cannot widen it.
	businessAuth := e.Group("/auth/business")
	{
		businessAuth.POST("/signup", p.AuthHandler.SignUp)
		businessAuth.POST("/signin", p.AuthHandler.SignInBusiness)
	}
	individualAuth := e.Group("/auth/individual")
	{
		individualAuth.POST("/signup", p.AuthHandler.SignUp)
		individualAuth.POST("/signin", p.AuthHandler.SignInIndividual)
	}

	// Scope-independent auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/signout", p.AuthHandler.SignOut)
		authGroup.POST("/refresh", p.AuthHandler.RefreshToken)
		authGroup.POST("/verify-email", p.AuthHandler.VerifyEmail)
		authGroup.POST("/password-reset/request", p.AuthHandler.RequestPasswordReset)
		authGroup.POST("/password-reset/confirm", p.AuthHandler.ResetPassword)
	}

	// Routes scoped to the signed-in user
	meGroup := e.Group("/me")
	meGroup.Use(p.AuthMiddleware.Authenticate)
	{
		meGroup.GET("/profile", p.AuthHandler.GetProfile)
		meGroup.PATCH("/profile", p.AuthHandler.UpdateProfile)
		meGroup.POST("/password", p.AuthHandler.ChangePassword)
		meGroup.POST("/email-verification", p.AuthHandler.RequestEmailVerification)
		meGroup.GET("/sessions", p.AuthHandler.ListSessions)
		meGroup.DELETE("/sessions/:sessionID", p.AuthHandler.RevokeSession)

		meGroup.GET("/invitations", p.InvitationHandler.ListMyInvitations)
		meGroup.POST("/invitations/:invitationID/accept", p.InvitationHandler.AcceptInvitation)
		meGroup.POST("/invitations/:invitationID/decline", p.InvitationHandler.DeclineInvitation)
	}

	// Notification inbox and push devices
	notificationGroup := e.Group("/notifications")
	notificationGroup.Use(p.AuthMiddleware.Authenticate)
	{
		notificationGroup.GET("", p.NotificationHandler.ListNotifications)
		notificationGroup.GET("/unread-count", p.NotificationHandler.UnreadCount)
		notificationGroup.POST("/:notificationID/read", p.NotificationHandler.MarkRead)
		notificationGroup.POST("/read-all", p.NotificationHandler.MarkAllRead)
	}
	deviceGroup := e.Group("/devices")
	deviceGroup.Use(p.AuthMiddleware.Authenticate)
	{
		deviceGroup.POST("", p.NotificationHandler.RegisterDevice)
	}

	// Billing: coupons, transfers and review
	billingGroup := e.Group("/billing")
	billingGroup.Use(p.AuthMiddleware.Authenticate)
	{
		billingGroup.POST("/coupons/redeem", p.BillingHandler.RedeemCoupon)
		billingGroup.POST("/transfers", p.BillingHandler.SubmitTransfer)
		billingGroup.GET("/payments", p.BillingHandler.ListMyPayments)
		billingGroup.POST("/payments/:paymentID/review", p.BillingHandler.ReviewPayment)
		billingGroup.GET("/payments/:paymentID/proof-url", p.BillingHandler.PaymentProofURL)
	}

	// Business management. Creating a business requires a business account;
	// membership operations are authorized per grant inside the use cases.
	businessGroup := e.Group("/businesses")
	businessGroup.Use(p.AuthMiddleware.Authenticate)
	{
		businessGroup.POST("", p.BusinessHandler.CreateBusiness,
			p.AuthMiddleware.RequireAccountType(entity.ScopeBusiness))
		businessGroup.GET("", p.BusinessHandler.ListMyBusinesses)
		businessGroup.GET("/:businessID", p.BusinessHandler.GetBusiness)
		businessGroup.PATCH("/:businessID", p.BusinessHandler.UpdateBusiness)
		businessGroup.GET("/:businessID/members", p.BusinessHandler.ListMembers)
		businessGroup.DELETE("/:businessID/members/:memberID", p.BusinessHandler.RevokeAccess)
		businessGroup.GET("/:businessID/pages/:page", p.BusinessHandler.CanAccessPage)

		businessGroup.POST("/:businessID/invitations", p.InvitationHandler.SendInvitation)
		businessGroup.GET("/:businessID/invitations", p.InvitationHandler.ListBusinessInvitations)
		businessGroup.GET("/invitations/:invitationID/qr", p.InvitationHandler.InvitationQR)

		businessGroup.POST("/:businessID/products", p.CatalogHandler.CreateProduct)
		businessGroup.GET("/:businessID/products", p.CatalogHandler.ListProducts)
		businessGroup.GET("/:businessID/products/:productID", p.CatalogHandler.GetProduct)
		businessGroup.PATCH("/:businessID/products/:productID", p.CatalogHandler.UpdateProduct)
		businessGroup.DELETE("/:businessID/products/:productID", p.CatalogHandler.DeleteProduct)
		businessGroup.POST("/:businessID/products/:productID/image", p.CatalogHandler.UploadProductImage)

		businessGroup.POST("/:businessID/sales", p.CatalogHandler.CreateSale)
		businessGroup.GET("/:businessID/sales", p.CatalogHandler.ListSales)
		businessGroup.GET("/:businessID/sales/:saleID", p.CatalogHandler.GetSale)
	}
}
