// Package api serves the API browser, the voucher desk and the
// operational endpoints over HTTP.
package api

import (
	"context"
	"errors"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"grimm.is/wingwifi/internal/auth"
	"grimm.is/wingwifi/internal/clock"
	"grimm.is/wingwifi/internal/config"
	"grimm.is/wingwifi/internal/i18n"
	"grimm.is/wingwifi/internal/logging"
	"grimm.is/wingwifi/internal/metrics"
	"grimm.is/wingwifi/internal/navigation"
	"grimm.is/wingwifi/internal/render"
	"grimm.is/wingwifi/internal/session"
	"grimm.is/wingwifi/internal/unifi"
	"grimm.is/wingwifi/internal/voucher"
)

// ServerConfig holds HTTP server timeouts and limits.
type ServerConfig struct {
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64
}

// DefaultServerConfig returns the default server limits. WriteTimeout
// leaves room for a slow controller behind the API browser.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
		MaxBodyBytes:      1 << 20,
	}
}

// ServerOptions holds dependencies for the server.
type ServerOptions struct {
	Config *config.Config
	// ConfigErr, when set, makes every page render the configuration error.
	ConfigErr error
	Sessions  *session.Manager
	Desk      *voucher.Service
	Gate      *auth.Gate
	Metrics   *metrics.Registry
	Clock     clock.Clock
	Logger    *logging.Logger
	// ClientOptions are appended to every controller client.
	ClientOptions []unifi.Option
}

// Server handles HTTP requests.
type Server struct {
	cfg       *config.Config
	cfgErr    error
	sessions  *session.Manager
	desk      *voucher.Service
	gate      *auth.Gate
	metrics   *metrics.Registry
	clock     clock.Clock
	logger    *logging.Logger
	resolver  *navigation.Resolver
	templates *template.Template
	clientOps []unifi.Option
	limits    *ServerConfig

	// deskCookie is the controller session shared by voucher desk requests.
	deskMu     sync.Mutex
	deskCookie string

	mux *http.ServeMux
}

// NewServer creates a server. Config and Sessions are required unless
// ConfigErr is set.
func NewServer(opts ServerOptions) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.WithComponent("api")
	}
	if opts.ConfigErr == nil {
		if opts.Config == nil {
			return nil, errors.New("api: config is required")
		}
		if opts.Sessions == nil {
			return nil, errors.New("api: session manager is required")
		}
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:       opts.Config,
		cfgErr:    opts.ConfigErr,
		sessions:  opts.Sessions,
		desk:      opts.Desk,
		gate:      opts.Gate,
		metrics:   opts.Metrics,
		clock:     clock.OrDefault(opts.Clock),
		logger:    logger,
		templates: tmpl,
		clientOps: opts.ClientOptions,
		limits:    DefaultServerConfig(),
	}
	if s.cfg != nil {
		s.resolver = navigation.NewResolver(navigation.Options{
			Controllers:   s.cfg.Controllers,
			Default:       navigation.SessionController(s.cfg.DefaultController()),
			OutputFormats: render.Names(),
			DefaultFormat: string(render.Default),
		})
		if s.gate == nil {
			s.gate = auth.NewGate(s.cfg.AdminUsername, s.cfg.AdminPassword, nil, s.metrics)
		}
		if s.desk == nil {
			s.desk = voucher.NewService(voucher.Options{
				PrinterAddr:    s.cfg.PrinterIP,
				PrinterTimeout: s.cfg.PrinterDialTimeout(),
				SSID:           s.cfg.WirelessName,
				Clock:          s.clock,
				Metrics:        s.metrics,
			})
		}
	}

	s.initRoutes()
	return s, nil
}

func (s *Server) initRoutes() {
	mux := http.NewServeMux()
	s.mux = mux

	// Operational endpoints
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	if s.cfgErr != nil {
		mux.HandleFunc("/", s.handleConfigError)
		return
	}

	// API browser
	mux.HandleFunc("GET /admin", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin/", http.StatusMovedPermanently)
	})
	mux.HandleFunc("GET /admin/{$}", s.handleBrowser)
	mux.HandleFunc("POST /admin/{$}", s.handleBrowser)
	mux.HandleFunc("GET /admin/login", s.handleAdminLoginPage)
	mux.HandleFunc("POST /admin/login", s.handleAdminLogin)
	mux.HandleFunc("POST /admin/logout", s.handleAdminLogout)

	// Voucher desk
	mux.HandleFunc("GET /{$}", s.handleDesk)
	mux.HandleFunc("POST /{$}", s.handleDeskAjax)
}

// Handler returns the HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	// Chain: AccessLog -> body limit -> i18n -> Mux
	return s.accessLogger(s.limitBody(i18n.Middleware(s.mux)))
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.limits.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	cfg := s.limits
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newClient builds a controller client for one request.
func (s *Server) newClient(ctl session.Controller, site string) (*unifi.Client, error) {
	opts := []unifi.Option{
		unifi.WithSite(site),
		unifi.WithTimeout(s.cfg.ControllerRequestTimeout()),
		unifi.WithVerifyTLS(s.cfg.VerifyTLS),
		unifi.WithClock(s.clock),
		unifi.WithLogger(logging.WithComponent("unifi")),
	}
	opts = append(opts, s.clientOps...)
	return unifi.NewClient(ctl.URL, ctl.User, ctl.Password, opts...)
}
