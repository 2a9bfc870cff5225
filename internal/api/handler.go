package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"team-portal/internal/models"
	"team-portal/internal/service"
)

// Handler wires HTTP routes to the portal services.
type Handler struct {
	users     *service.UserService
	entries   *service.TimeEntryService
	status    *service.StatusService
	orders    *service.ServiceOrderService
	documents *service.DocumentService
	tokens    *service.TokenService
	logger    *logrus.Logger
	now       func() time.Time
}

type Services struct {
	Users     *service.UserService
	Entries   *service.TimeEntryService
	Status    *service.StatusService
	Orders    *service.ServiceOrderService
	Documents *service.DocumentService
	Tokens    *service.TokenService
}

func NewHandler(svc Services, logger *logrus.Logger) *Handler {
	return &Handler{
		users:     svc.Users,
		entries:   svc.Entries,
		status:    svc.Status,
		orders:    svc.Orders,
		documents: svc.Documents,
		tokens:    svc.Tokens,
		logger:    logger,
		now:       time.Now,
	}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(h.logger))
	router.Use(metricsMiddleware())

	h.RegisterRoutes(router)
	return router
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)

		api.GET("/ponto/status", h.teamStatus)
		api.GET("/ponto/occurrences", h.listOccurrences)
	}

	authed := api.Group("")
	authed.Use(h.authRequired())
	{
		authed.GET("/me", h.me)
		authed.PUT("/me/schedule", h.updateSchedule)

		authed.POST("/ponto/clock-in", h.clockIn)
		authed.POST("/ponto/clock-out", h.clockOut)
		authed.POST("/ponto/occurrences", h.registerOccurrence)
		authed.GET("/ponto/entries", h.listEntries)

		authed.GET("/orders", h.listOrders)
		authed.POST("/orders", h.createOrder)
		authed.GET("/orders/:id", h.getOrder)
		authed.PATCH("/orders/:id/status", h.changeOrderStatus)

		authed.GET("/docs", h.listDocuments)
		authed.POST("/docs", h.createDocument)
		authed.GET("/docs/:id", h.getDocument)
		authed.PUT("/docs/:id", h.updateDocument)
	}

	admin := authed.Group("/admin")
	admin.Use(requireRole(models.RoleManagement))
	{
		admin.GET("/users", h.listUsers)
		admin.GET("/pending", h.listPending)
		admin.POST("/users/:id/approve", h.approveUser)
		admin.PUT("/users/:id/role-sector", h.updateRoleSector)
		admin.POST("/users/:id/toggle-active", h.toggleActive)
	}
}
