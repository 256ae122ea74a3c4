package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"coursehub-backend/internal/shared/middleware"
	"coursehub-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupCourseRoutes(v1, c)
		setupCartRoutes(v1, c)
		setupOrderRoutes(v1, c)
		setupPaymentRoutes(v1, c)
		setupEnrollmentRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

// ========================================
// COURSE ROUTES (public catalog)
// ========================================
func setupCourseRoutes(v1 *gin.RouterGroup, c *container.Container) {
	courses := v1.Group("/courses")
	{
		courses.GET("", c.CourseHandler.List)
		courses.GET("/:id", c.CourseHandler.GetByID)
	}
}

// ========================================
// CART ROUTES
// ========================================
func setupCartRoutes(v1 *gin.RouterGroup, c *container.Container) {
	cart := v1.Group("/cart")
	cart.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		cart.GET("", c.CartHandler.Get)
		cart.DELETE("", c.CartHandler.Clear)
		cart.POST("/items", c.CartHandler.AddItem)
		cart.DELETE("/items/:courseId", c.CartHandler.RemoveItem)
		cart.POST("/checkout", c.CartHandler.Checkout)
	}
}

// ========================================
// ORDER ROUTES
// ========================================
func setupOrderRoutes(v1 *gin.RouterGroup, c *container.Container) {
	orders := v1.Group("/orders")
	orders.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		orders.GET("", c.OrderHandler.ListMine)
		orders.GET("/:id", c.OrderHandler.Get)
	}
}

// ========================================
// PAYMENT ROUTES (student side)
// ========================================
func setupPaymentRoutes(v1 *gin.RouterGroup, c *container.Container) {
	payments := v1.Group("/payments")
	payments.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		payments.POST("", c.PaymentHandler.Create)
		payments.GET("", c.PaymentHandler.ListMine)
		payments.GET("/:id", c.PaymentHandler.Get)
		payments.POST("/:id/receipt", c.PaymentHandler.UploadReceipt)
	}
}

// ========================================
// ENROLLMENT ROUTES (student side)
// ========================================
func setupEnrollmentRoutes(v1 *gin.RouterGroup, c *container.Container) {
	enrollments := v1.Group("/enrollments")
	enrollments.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		enrollments.GET("", c.EnrollmentHandler.ListMine)
		enrollments.GET("/:id", c.EnrollmentHandler.Get)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(c.JWTManager), middleware.AdminMiddleware())
	{
		admin.POST("/courses", c.CourseHandler.Create)
		admin.PATCH("/courses/:id", c.CourseHandler.Update)
		admin.DELETE("/courses/:id", c.CourseHandler.Delete)

		admin.GET("/payments/pending", c.PaymentHandler.ListPending)
		admin.POST("/payments/:id/approve", c.PaymentHandler.Approve)
		admin.POST("/payments/:id/reject", c.PaymentHandler.Reject)

		admin.POST("/enrollments/:id/payments", c.EnrollmentHandler.RecordPayment)
		admin.POST("/enrollments/:id/installments", c.EnrollmentHandler.CreateInstallmentPlan)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "up"
		if err := c.DB.Ping(checkCtx); err != nil {
			dbStatus = "down"
		}

		cacheStatus := "up"
		if err := c.Cache.Ping(checkCtx); err != nil {
			cacheStatus = "down"
		}

		status := http.StatusOK
		if dbStatus == "down" {
			status = http.StatusServiceUnavailable
		}

		ctx.JSON(status, gin.H{
			"status":   "ok",
			"database": dbStatus,
			"cache":    cacheStatus,
			"time":     time.Now().UTC(),
		})
	}
}
