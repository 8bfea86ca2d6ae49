package router

import (
	"github.com/erp/posgateway/internal/infrastructure/logger"
	"github.com/erp/posgateway/internal/interfaces/http/handler"
	"github.com/erp/posgateway/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithGroupMiddleware adds middleware that only runs for the versioned API group
func WithGroupMiddleware(handlers ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.middleware = append(r.middleware, handlers...)
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	if len(r.middleware) > 0 {
		api.Use(r.middleware...)
	}

	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// Dependencies holds everything the HTTP surface needs
type Dependencies struct {
	Logger      *zap.Logger
	ServiceName string
	APIKey      string
	MaxBodySize int64
	CORS        middleware.CORSConfig
	// IPLimiter is optional. When nil no per-address limit is applied.
	IPLimiter      *middleware.IPRateLimiter
	TrustedProxies []string
	Sales          handler.SaleService
	Database       handler.Pinger
}

// New builds the gin engine with the middleware chain and every route
func New(deps Dependencies) (*gin.Engine, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(logger.Recovery(deps.Logger))
	engine.Use(middleware.RequestID())
	if deps.ServiceName != "" {
		engine.Use(otelgin.Middleware(deps.ServiceName))
	}
	engine.Use(logger.GinMiddleware(deps.Logger))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(deps.CORS))
	if deps.IPLimiter != nil {
		engine.Use(deps.IPLimiter.Middleware())
	}
	if deps.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(deps.MaxBodySize))
	}

	engine.GET("/health", handler.NewHealthHandler(deps.Database).Check)

	r := NewRouter(engine,
		WithAPIVersion("v1"),
		WithGroupMiddleware(middleware.APIKey(deps.APIKey)),
	)
	r.Register(handler.NewPOSSaleHandler(deps.Sales))
	r.Setup()

	return engine, nil
}
