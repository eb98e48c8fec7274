package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inventaris/internal/auth"
	"inventaris/internal/domain"
	"inventaris/internal/logging"
	"inventaris/internal/service"
)

const defaultPageSize = 10

// Options параметры HTTP-сервера
type Options struct {
	PageSize int
	Logger   *slog.Logger
	// Registry реестр метрик; nil: отдельный реестр на сервер
	Registry *prometheus.Registry
}

type Server struct {
	engine   *gin.Engine
	services *service.Services
	auth     *auth.Service
	pageSize int
	log      *slog.Logger
	metrics  *metrics
	registry *prometheus.Registry
}

func NewServer(services *service.Services, authSvc *auth.Service, opts Options) *Server {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = logging.New("http")
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
		opts.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	r := gin.New()
	s := &Server{
		engine:   r,
		services: services,
		auth:     authSvc,
		pageSize: opts.PageSize,
		log:      opts.Logger,
		metrics:  newMetrics(opts.Registry),
		registry: opts.Registry,
	}
	r.Use(gin.Recovery(), s.metrics.middleware(), requestLogger(s.log))
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := s.engine.Group("/api")
	{
		api.POST("/token/", s.issueToken)
		api.POST("/token/refresh/", s.refreshToken)
		api.POST("/auth/register/", s.register)
	}

	secured := api.Group("", s.authRequired())
	{
		secured.GET("/auth/profile/", s.profile)

		mountCRUD(secured, "/supplier/", crudHandler[domain.Supplier]{svc: s.services.Suppliers, pageSize: s.pageSize})
		mountCRUD(secured, "/kategori/", crudHandler[domain.Category]{svc: s.services.Categories, pageSize: s.pageSize})
		mountCRUD(secured, "/customer/", crudHandler[domain.Customer]{svc: s.services.Customers, pageSize: s.pageSize})
		mountCRUD(secured, "/produk/", crudHandler[domain.Product]{svc: s.services.Products, pageSize: s.pageSize})

		tx := secured.Group("/transaksi")
		tx.GET("/", s.listTransactions)
		tx.POST("/", s.createTransaction)
		tx.GET("/:id/", s.getTransaction)
		tx.DELETE("/:id/", s.deleteTransaction)
	}
}
