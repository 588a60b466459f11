package server

import (
	"context"
	"net/http"
	"time"

	config "example.com/miniter/internal/init"
	"example.com/miniter/internal/logger"
	"example.com/miniter/internal/middleware"
	"example.com/miniter/internal/service"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	users  *service.UserService
	tweets *service.TweetService
}

var logg = logger.New()

func New(users *service.UserService, tweets *service.TweetService) *Server {
	return &Server{users: users, tweets: tweets}
}

// Handler builds the router with CORS, metrics and token-protected routes.
func (s *Server) Handler(corsOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Metrics)

	r.HandleFunc("/ping", s.pingHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Public endpoints
	r.HandleFunc("/sign-up", s.signUpHandler).Methods(http.MethodPost)
	r.HandleFunc("/login", s.loginHandler).Methods(http.MethodPost)
	r.HandleFunc("/timeline/{userId:[0-9]+}", s.userTimelineHandler).Methods(http.MethodGet)

	// Endpoints that require an access token
	authed := middleware.Auth(s.users)
	r.Handle("/tweet", authed(http.HandlerFunc(s.tweetHandler))).Methods(http.MethodPost)
	r.Handle("/follow", authed(http.HandlerFunc(s.followHandler))).Methods(http.MethodPost)
	r.Handle("/follow", authed(http.HandlerFunc(s.followListHandler))).Methods(http.MethodGet)
	r.Handle("/unfollow", authed(http.HandlerFunc(s.unfollowHandler))).Methods(http.MethodPost)
	r.Handle("/timeline", authed(http.HandlerFunc(s.timelineHandler))).Methods(http.MethodGet)

	return handlers.CORS(
		handlers.AllowedOrigins(corsOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
// TLS is used when both a certificate and a key are configured.
func Run(ctx context.Context, s *Server, cfg *config.Config) {
	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      s.Handler(cfg.CORSOrigins),
		ReadTimeout:  10 * time.Second, // prevent slowloris attacks
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		var err error
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			logg.Info("server", "Starting HTTPS server on "+cfg.ServerAddr)
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			logg.Info("server", "Starting HTTP server on "+cfg.ServerAddr)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logg.Error("server", "Server stopped unexpectedly", err)
		}
	}()

	<-ctx.Done()
	logg.Info("server", "Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("server", "Error during server shutdown", err)
	} else {
		logg.Info("server", "Server stopped gracefully")
	}
}
