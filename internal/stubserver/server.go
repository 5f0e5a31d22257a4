// Package stubserver is an in-memory stand-in for the agency backend. It
// implements the session, partial and catalogue endpoints the client
// talks to, for local development and tests.
package stubserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/eshaffer321/agencia-go/internal/partials"
	"github.com/eshaffer321/agencia-go/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookie is the name of the session cookie
const SessionCookie = "JSESSIONID"

// Seed is an account created at startup
type Seed struct {
	Nome     string
	Email    string
	Password string
	Role     string
}

// DefaultSeeds returns one admin and one regular seller
func DefaultSeeds() []Seed {
	return []Seed{
		{Nome: "Admin", Email: "admin@agencia.dev", Password: "admin123", Role: "ADMIN"},
		{Nome: "Ana", Email: "ana@agencia.dev", Password: "ana123", Role: "USER"},
	}
}

// Options configures the stub server
type Options struct {
	Logger zerolog.Logger
	Seeds  []Seed

	// BcryptCost defaults to bcrypt.DefaultCost
	BcryptCost int
}

type account struct {
	user         types.User
	passwordHash []byte
}

// Server is the stub backend
type Server struct {
	router   *gin.Engine
	logger   zerolog.Logger
	partials *partials.Loader
	servable map[string]bool

	mu       sync.Mutex
	accounts map[string]*account
	sessions map[string]string
	pacotes  map[int64]*Pacote
	nextID   int64
}

// New creates a stub server with the seeded accounts
func New(opts Options) (*Server, error) {
	if opts.Seeds == nil {
		opts.Seeds = DefaultSeeds()
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}

	s := &Server{
		logger:   opts.Logger,
		partials: partials.NewLoader(),
		accounts: make(map[string]*account),
		sessions: make(map[string]string),
		pacotes:  make(map[int64]*Pacote),
	}

	names, err := s.partials.List()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list partials")
	}
	s.servable = make(map[string]bool, len(names))
	for _, name := range names {
		s.servable[name] = true
	}

	for i, seed := range opts.Seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), opts.BcryptCost)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to hash password for %s", seed.Email)
		}
		s.accounts[seed.Email] = &account{
			user: types.User{
				ID:    int64(i + 1),
				Nome:  seed.Nome,
				Email: seed.Email,
				Role:  seed.Role,
			},
			passwordHash: hash,
		}
	}

	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()

	return s, nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Stub server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info().Msg("Shutting down stub server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) setupRoutes() {
	s.router.GET("/login.html", s.servePage(partials.Login))
	for _, page := range []string{"/", "/index.html", "/pacotes.html", "/vendedores.html"} {
		s.router.GET(page, s.servePage(partials.Page))
	}
	s.router.GET("/partials/:name", s.servePartial)

	api := s.router.Group("/api")
	api.POST("/login", s.login)
	api.POST("/logout", s.logout)

	authed := api.Group("", s.requireSession())
	authed.GET("/auth/me", s.me)

	authed.GET("/pacotes", s.listPacotes)
	authed.GET("/pacotes/:id", s.getPacote)
	authed.POST("/pacotes", s.createPacote)
	authed.PUT("/pacotes/:id", s.updatePacote)
	authed.DELETE("/pacotes/:id", s.deletePacote)
	authed.POST("/pacotes/:id/imagem", s.uploadImagem)

	admin := authed.Group("/vendedores", s.requireRole("ADMIN"))
	admin.GET("", s.listVendedores)
}

func (s *Server) servePage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		content, err := s.partials.Load(name)
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(content))
	}
}

// servePartial only answers for the embedded HTML assets
func (s *Server) servePartial(c *gin.Context) {
	name := c.Param("name")
	if !s.servable[name] {
		c.String(http.StatusNotFound, "not found")
		return
	}
	content, err := s.partials.Load(name)
	if err != nil {
		c.String(http.StatusNotFound, "not found")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(content))
}

// requestLogger logs every request with zerolog
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request")
	}
}

// newSession stores a session for email and returns its id
func (s *Server) newSession(email string) string {
	id := uuid.New().String()
	s.mu.Lock()
	s.sessions[id] = email
	s.mu.Unlock()
	return id
}

func (s *Server) sessionUser(c *gin.Context) (*types.User, bool) {
	id, err := c.Cookie(SessionCookie)
	if err != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	acc, ok := s.accounts[email]
	if !ok {
		return nil, false
	}
	user := acc.user
	return &user, true
}
