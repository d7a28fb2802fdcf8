package httpserver

import (
	"errors"
	"io"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/partition"
)

// api carries what every handler needs.
type api struct {
	deps   Deps
	logger *log.Logger
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) (*gin.Engine, error) {
	if deps.Accounts == nil {
		return nil, errors.New("httpserver: account service is required")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	a := &api{deps: deps, logger: logger}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	if len(corsOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     corsOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", signatureHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.Use(a.authenticate, a.partitionGuard)

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	router.POST("/register", a.register)
	router.POST("/login", a.login(false))
	router.POST("/logout", a.logout)
	router.POST("/admin/register", a.registerStaff)
	router.POST("/admin/login", a.login(true))
	router.POST("/admin/logout", a.logout)

	router.GET("/products", a.listProducts)
	router.GET("/products/:slug", a.productBySlug)
	router.GET("/track", a.publicTrack)
	router.POST("/contact", a.submitContact)
	router.POST(partition.WebhookPath, a.paymentWebhook)

	customer := router.Group("/", a.requireCustomer)
	customer.GET("/account", a.account)
	customer.GET("/cart", a.getCart)
	customer.POST("/cart/items", a.addCartItem)
	customer.PATCH("/cart/items/:id", a.updateCartItem)
	customer.DELETE("/cart/items/:id", a.removeCartItem)
	customer.POST("/checkout", a.checkout)
	customer.POST("/buy-now", a.buyNow)
	customer.GET("/orders", a.orderHistory)
	customer.GET("/orders/:ref", a.orderByRef)
	customer.GET("/orders/:ref/track", a.trackOwnOrder)
	customer.GET("/payments/:id", a.paymentStatus)
	customer.GET("/payments/:id/:outcome", a.paymentReturn)
	customer.GET("/support/tickets", a.myTickets)
	customer.POST("/support/tickets", a.createTicket)
	customer.GET("/support/tickets/:number", a.viewTicket)
	customer.POST("/support/tickets/:number/messages", a.replyTicket)
	customer.GET("/feedback", a.myFeedback)
	customer.POST("/feedback", a.submitFeedback)

	signedIn := router.Group("/contact/messages", a.requireUser)
	signedIn.GET("", a.myContactMessages)
	signedIn.GET("/:id", a.contactThread)
	signedIn.POST("/:id/replies", a.replyContact)

	admin := router.Group("/admin", a.requireStaff)
	admin.GET("/me", a.account)
	admin.GET("/dashboard", a.dashboard)
	admin.GET("/orders", a.adminOrders)
	admin.GET("/orders/:id", a.adminOrderDetail)
	admin.POST("/orders/:id/status", a.adminAdvanceOrder)
	admin.POST("/orders/:id/cancel", a.adminCancelOrder)
	admin.GET("/products", a.adminProducts)
	admin.POST("/products", a.adminCreateProduct)
	admin.GET("/products/:id", a.adminProductDetail)
	admin.PUT("/products/:id", a.adminUpdateProduct)
	admin.POST("/products/:id/stock", a.adminSetStock)
	admin.GET("/customers", a.adminCustomers)
	admin.GET("/customers/:id", a.adminCustomerDetail)
	admin.PATCH("/customers/:id", a.adminUpdateCustomer)
	admin.GET("/staff", a.adminStaff)
	admin.POST("/staff", a.adminCreateStaff)
	admin.GET("/support", a.adminTickets)
	admin.GET("/support/:number", a.adminTicketDetail)
	admin.POST("/support/:number/messages", a.adminReplyTicket)
	admin.PATCH("/support/:number", a.adminUpdateTicket)
	admin.GET("/feedback", a.adminFeedback)
	admin.POST("/feedback/:id/respond", a.adminRespondFeedback)
	admin.GET("/contact", a.adminInbox)
	admin.GET("/contact/:id", a.adminContactThread)
	admin.POST("/contact/:id/replies", a.adminReplyContact)
	admin.POST("/contact/:id/read", a.adminMarkContactRead)

	return router, nil
}
