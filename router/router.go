package router

import (
	"log"

	"factura/config"
	"factura/controllers"
	"factura/middleware"

	"github.com/gin-gonic/gin"
)

// Initialize wires all routes and middlewares.
// Three tiers: public (register/login/recovery), authenticated (valid
// session token), verified (session + confirmed email).
func Initialize(r *gin.Engine, cfg config.Configuration) {
	_ = cfg

	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")

	// Public (no auth). The verification endpoints carry their own
	// short-lived session token in the body.
	api.POST("/register", Logger(), controllers.Register)
	api.POST("/login", Logger(), controllers.Login)
	api.POST("/verify-code", Logger(), controllers.VerifyCode)
	api.POST("/resend-code", Logger(), controllers.ResendCode)
	api.POST("/verify-session", Logger(), controllers.VerifySession)
	api.POST("/forgot-password", Logger(), controllers.ForgotPassword)
	api.POST("/validate-reset-token", Logger(), controllers.ValidateResetToken)
	api.POST("/reset-password", Logger(), controllers.ResetPassword)

	// Authenticated routes (session token required)
	auth := api.Group("")
	auth.Use(controllers.AuthRequired())
	auth.GET("/me", Logger(), controllers.Me)

	// Verified routes (session + confirmed email)
	verified := auth.Group("")
	verified.Use(Authorizer())

	// Clients
	verified.GET("/clients", Logger(), controllers.GetClients)
	verified.GET("/clients/:id", Logger(), controllers.GetClientByID)
	verified.POST("/clients", Logger(), controllers.CreateClient)
	verified.PUT("/clients/:id", Logger(), controllers.UpdateClient)
	verified.DELETE("/clients/:id", Logger(), controllers.DeleteClient)

	// Invoices
	verified.GET("/invoices", Logger(), controllers.GetInvoices)
	verified.GET("/invoices/:id", Logger(), controllers.GetInvoiceByID)
	verified.POST("/invoices", Logger(), controllers.CreateInvoice)
	verified.PUT("/invoices/:id/status", Logger(), controllers.UpdateInvoiceStatus)
	verified.DELETE("/invoices/:id", Logger(), controllers.DeleteInvoice)

	// Dashboard
	verified.GET("/dashboard/summary", Logger(), controllers.GetDashboardSummary)

	log.Printf("Routes initialized")
}
