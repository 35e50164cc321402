package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rmacdonaldsmith/dynchan-go/internal/facade"
	"github.com/rmacdonaldsmith/dynchan-go/pkg/linklayer"
)

const (
	servicesPath = "/api/v1/services"
	// DefaultKeepAlive is the SSE ping interval
	DefaultKeepAlive = 15 * time.Second
)

// Server represents the HTTP API server
type Server struct {
	jwtAuth    *JWTAuth
	handlers   *Handlers
	middleware *Middleware
	server     *http.Server
	logger     *zap.Logger

	// cancelStreams ends open packet streams on Shutdown
	cancelStreams context.CancelFunc
}

// Config holds server configuration
type Config struct {
	Listen       string        // listen address, e.g. ":8081"
	SecretKey    string        // HS256 signing key
	NoAuth       bool          // development mode: skip token checks
	TokenTTL     time.Duration // issued token lifetime
	AdminClients []string      // client IDs granted admin tokens at login
	KeepAlive    time.Duration // SSE ping interval
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.SecretKey == "" && !c.NoAuth {
		return errors.New("secret key is required unless auth is disabled")
	}
	if c.TokenTTL < 0 {
		return errors.New("token TTL cannot be negative")
	}
	if c.KeepAlive < 0 {
		return errors.New("keepalive cannot be negative")
	}
	return nil
}

// SetDefaults fills unset fields
func (c *Config) SetDefaults() {
	if c.Listen == "" {
		c.Listen = ":8081"
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = DefaultTokenTTL
	}
	if c.KeepAlive == 0 {
		c.KeepAlive = DefaultKeepAlive
	}
	if len(c.AdminClients) == 0 {
		c.AdminClients = []string{"admin"}
	}
}

// NewServer creates a new HTTP API server over svc
func NewServer(svc *facade.Service, config Config, logger *zap.Logger) (*Server, error) {
	if svc == nil {
		return nil, errors.New("service is required")
	}
	config.SetDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	jwtAuth := NewJWTAuth(config.SecretKey, config.TokenTTL)
	server := &Server{
		jwtAuth:    jwtAuth,
		handlers:   NewHandlers(svc, jwtAuth, config, logger),
		middleware: NewMiddleware(jwtAuth, config.NoAuth, logger),
		logger:     logger,
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	server.cancelStreams = cancel

	// No WriteTimeout: packet streams are long lived
	server.server = &http.Server{
		Addr:              config.Listen,
		Handler:           server.Handler(),
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return server, nil
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Serve accepts connections on lis until Shutdown
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("http server listening", zap.String("addr", lis.Addr().String()))
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe serves on the configured address until ctx is done
func (s *Server) ListenAndServe(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()
	return s.Serve(lis)
}

// Shutdown ends packet streams and gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancelStreams()
	return s.server.Shutdown(ctx)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	withMiddleware := func(handler http.HandlerFunc) http.Handler {
		return s.middleware.Recovery(
			s.middleware.Logging(
				s.middleware.CORS(
					s.middleware.ContentType(handler))))
	}

	mux.Handle("/api/v1/auth/login", withMiddleware(s.methods(map[string]http.HandlerFunc{
		http.MethodPost: s.handlers.Login,
	})))

	mux.Handle(servicesPath, withMiddleware(s.methods(map[string]http.HandlerFunc{
		http.MethodGet:  s.middleware.AuthRequired(s.handlers.ListServices),
		http.MethodPost: s.middleware.AdminRequired(s.handlers.EnableService),
	})))
	mux.Handle(servicesPath+"/", withMiddleware(s.handleServiceByKey))

	mux.Handle("/api/v1/packets/stream", withMiddleware(s.methods(map[string]http.HandlerFunc{
		http.MethodGet: s.middleware.AuthRequired(s.handlers.StreamPackets),
	})))

	mux.Handle("/api/v1/health", withMiddleware(s.handlers.Health))
	mux.Handle("/", withMiddleware(s.handleRoot))

	return mux
}

// methods dispatches on the HTTP method
func (s *Server) methods(byMethod map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handler, ok := byMethod[r.Method]
		if !ok {
			writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}

// handleServiceByKey routes /api/v1/services/{key}[/action]
func (s *Server) handleServiceByKey(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, servicesPath+"/")
	keyPart, action, _ := strings.Cut(rest, "/")
	if keyPart == "" {
		writeError(w, "Service key required", http.StatusBadRequest)
		return
	}
	key, err := linklayer.ParseServiceKey(keyPart)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	r = r.WithContext(context.WithValue(r.Context(), ServiceKeyKey, key))

	var handler http.HandlerFunc
	switch action {
	case "":
		handler = s.methods(map[string]http.HandlerFunc{
			http.MethodDelete: s.middleware.AdminRequired(s.handlers.DisableService),
		})
	case "connect":
		handler = s.methods(map[string]http.HandlerFunc{
			http.MethodPost: s.middleware.AuthRequired(s.handlers.Connect),
		})
	case "close":
		handler = s.methods(map[string]http.HandlerFunc{
			http.MethodPost: s.middleware.AuthRequired(s.handlers.Close),
		})
	case "packets":
		handler = s.methods(map[string]http.HandlerFunc{
			http.MethodPost: s.middleware.AuthRequired(s.handlers.SendPacket),
		})
	default:
		writeError(w, "Not found", http.StatusNotFound)
		return
	}
	handler(w, r)
}

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, "Not found", http.StatusNotFound)
		return
	}

	info := map[string]interface{}{
		"service":     "dynchan HTTP API",
		"version":     "1.0.0",
		"description": "Control surface for dynamic credit-based channels",
		"endpoints": map[string]interface{}{
			"auth": map[string]string{
				"login": "POST /api/v1/auth/login",
			},
			"services": map[string]string{
				"list":    "GET /api/v1/services",
				"enable":  "POST /api/v1/services",
				"disable": "DELETE /api/v1/services/{key}",
				"connect": "POST /api/v1/services/{key}/connect",
				"close":   "POST /api/v1/services/{key}/close",
				"send":    "POST /api/v1/services/{key}/packets",
			},
			"packets": map[string]string{
				"stream": "GET /api/v1/packets/stream",
			},
			"health": "GET /api/v1/health",
		},
		"authentication": "Bearer JWT token required for most endpoints",
	}
	writeJSON(w, info, http.StatusOK)
}
