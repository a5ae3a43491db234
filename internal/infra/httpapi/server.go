// Package httpapi is the gin service surface. Handlers are thin plumbing
// over the usecase layer; approval endpoints additionally sit behind the
// fixed-window rate limiter.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sealreg/internal/domain"
	"sealreg/internal/usecase"
)

// ProofStore covers the record operations handlers reach past the usecases
// for: the one-shot access list binding.
type ProofStore interface {
	GetByID(ctx context.Context, id string) (*domain.ProofRecord, error)
	AttachAccessList(ctx context.Context, id, accessListID string) error
}

type ListStore interface {
	Get(ctx context.Context, id string) (*domain.AccessList, error)
	GetCapability(ctx context.Context, capID string) (*domain.AdminCapability, error)
}

// AttesterStore backs the admin endpoint that enrolls attester keys.
type AttesterStore interface {
	Register(ctx context.Context, cfg domain.AttesterConfig) error
}

type Server struct {
	r   *gin.Engine
	log *slog.Logger

	register *usecase.RegisterProof
	access   *usecase.AccessControl
	approval *usecase.Approval
	settle   *usecase.Settlement

	proofs    ProofStore
	lists     ListStore
	attesters AttesterStore

	adminToken string

	rateLimiter     domain.RateLimiter
	rateLimit       int
	rateLimitWindow time.Duration

	healthCheck func(ctx context.Context) error
}

type ServerDeps struct {
	Register *usecase.RegisterProof
	Access   *usecase.AccessControl
	Approval *usecase.Approval
	Settle   *usecase.Settlement

	Proofs    ProofStore
	Lists     ListStore
	Attesters AttesterStore

	AdminToken string

	RateLimiter     domain.RateLimiter
	RateLimit       int
	RateLimitWindow time.Duration

	Logger      *slog.Logger
	HealthCheck func(ctx context.Context) error
}

func NewServer(deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		r:               r,
		log:             log,
		register:        deps.Register,
		access:          deps.Access,
		approval:        deps.Approval,
		settle:          deps.Settle,
		proofs:          deps.Proofs,
		lists:           deps.Lists,
		attesters:       deps.Attesters,
		adminToken:      deps.AdminToken,
		rateLimiter:     deps.RateLimiter,
		rateLimit:       deps.RateLimit,
		rateLimitWindow: deps.RateLimitWindow,
		healthCheck:     deps.HealthCheck,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.r.GET("/healthz", s.handleHealthz)
	s.r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.r.Group("/v1")
	{
		v1.POST("/proofs", s.handleRegisterProof)
		v1.GET("/proofs/:id", s.handleGetProof)
		v1.POST("/proofs/:id/transfer", s.handleTransferProof)
		v1.POST("/proofs/:id/acl", s.handleAttachACL)

		v1.POST("/acls", s.handleCreateACL)
		v1.POST("/acls/:id/members", s.handleAddMember)
		v1.DELETE("/acls/:id/members/:principal", s.handleRemoveMember)
		v1.POST("/acls/:id/attachments", s.handleAttachKey)

		v1.POST("/approve/acl", s.handleApproveACL)
		v1.POST("/approve/subscription", s.handleApproveSubscription)

		v1.POST("/listings", s.handleCreateListing)
		v1.PATCH("/listings/:id/price", s.handleUpdatePrice)
		v1.PATCH("/listings/:id/status", s.handleUpdateStatus)
		v1.POST("/listings/:id/purchase", s.handlePurchase)

		v1.POST("/platform/withdraw", s.handleWithdraw)
		v1.POST("/attesters", s.handleRegisterAttester)
	}

	s.r.NoRoute(func(c *gin.Context) {
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
}

func (s *Server) handleHealthz(c *gin.Context) {
	if s.healthCheck != nil {
		if err := s.healthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Run(addr string) error {
	return s.r.Run(addr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.r
}
