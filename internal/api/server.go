// Package api is the HTTP surface: REST endpoints wrapped in the uniform
// response envelope, plus the websocket endpoint for live sessions.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"spokd/internal/config"
	"spokd/internal/core"
	"spokd/internal/graph"
	"spokd/internal/groups"
	"spokd/internal/identity"
	"spokd/internal/messaging"
	"spokd/internal/search"
	"spokd/internal/sessions"
	"spokd/internal/spok"
)

type Server struct {
	server *http.Server

	Logger *slog.Logger
	Config *config.Config

	Tokens    *identity.Tokens
	Identity  *identity.Service
	Engine    *spok.Engine
	Graph     *graph.Service
	Groups    *groups.Service
	Messaging *messaging.Service
	Search    *search.Service

	Accounts      core.AccountRepository
	Spoks         core.SpokRepository
	Comments      core.CommentRepository
	Polls         core.PollRepository
	Notifications core.NotificationRepository

	Hub      *sessions.Hub
	Presence core.Presence
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) Init(context.Context) error {
	s.Logger = s.Logger.With("component", "api.Server")

	r := chi.NewMux()

	logger := func(ctx context.Context) *slog.Logger {
		return ctx.Value(loggerContextKey).(*slog.Logger)
	}

	r.Use(
		// json content type
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				next.ServeHTTP(w, r)
			})
		},

		// Request logger in context
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				logger := s.Logger.With("method", r.Method, "path", r.URL.Path)
				ctx := context.WithValue(r.Context(), loggerContextKey, logger)
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		},

		// Logging
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				start := time.Now()
				sw := &statusWriter{ResponseWriter: w}

				next.ServeHTTP(sw, r)

				duration := time.Since(start)
				logger(r.Context()).Info("request", "duration", duration, "status", sw.status)
			})
		},

		// Recovering panics and logging
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if err := recover(); err != nil {
						logger(r.Context()).Error("panic recovered", "error", err)
						http.Error(w, `{"message": "Internal Server Error"}`, http.StatusInternalServerError)
					}
				}()
				next.ServeHTTP(w, r)
			})
		},
	)

	s.routes(r)

	s.server = &http.Server{
		Handler:           r,
		Addr:              s.Config.ListenAddr,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return nil
}

func (s *Server) routes(r chi.Router) {
	// Registration and authentication run without a token.
	r.Post("/register/phone", s.handleRegisterPhone)
	r.Post("/register/confirm", s.handleConfirmCode)
	r.Post("/register/complete", s.handleCompleteRegistration)
	r.Post("/login", s.handleRequestLogin)
	r.Post("/authenticate", s.handleAuthenticate)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/me", func(r chi.Router) {
			r.Get("/", s.handleMe)
			r.Delete("/", s.handleUnregister)
			r.Put("/profile", s.handleUpdateProfile)
			r.Put("/settings", s.handleUpdateSettings)
			r.Post("/phone", s.handleRequestPhoneUpdate)
			r.Put("/phone", s.handleConfirmPhoneUpdate)
			r.Get("/stack", s.handleStack)
			r.Get("/notifications", s.handleNotifications)
			r.Put("/notifications/read", s.handleMarkNotificationsRead)
			r.Delete("/notifications/{id}", s.handleRemoveNotification)
		})

		r.Post("/support", s.handleSupport)

		r.Route("/spoks", func(r chi.Router) {
			r.Post("/", s.handleCreateSpok)
			r.Get("/last", s.handleLastSpoks)
			r.Get("/trendy", s.handleTrendySpoks)
			r.Get("/popular", s.handlePopularSpoks)
			r.Get("/friends", s.handleFriendsSpoks)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSpok)
				r.Delete("/", s.handleDisableSpok)
				r.Post("/respoke", s.handleRespoke)
				r.Post("/unspoke", s.handleUnspoke)
				r.Post("/subscribe", s.handleSubscribeSwitch)
				r.Get("/respokers", s.handleRespokers)
				r.Get("/scoped", s.handleScoped)
				r.Get("/comments", s.handleComments)
				r.Post("/comments", s.handleAddComment)
				r.Get("/poll", s.handlePoll)
			})
		})

		r.Delete("/instances/{id}", s.handleRemoveInstance)
		r.Put("/comments/{id}", s.handleUpdateComment)
		r.Delete("/comments/{id}", s.handleRemoveComment)
		r.Post("/questions/{id}/answer", s.handleAnswerPoll)

		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetUser)
			r.Get("/wall", s.handleWall)
			r.Post("/follow", s.handleFollow)
			r.Delete("/follow", s.handleUnfollow)
			r.Get("/followers", s.handleFollowers)
			r.Get("/followings", s.handleFollowings)
			r.Post("/messages", s.handleSendMessage)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", s.handleListGroups)
			r.Post("/", s.handleCreateGroup)
			r.Put("/{id}", s.handleRenameGroup)
			r.Delete("/{id}", s.handleDeleteGroup)
			r.Get("/{id}/members", s.handleGroupMembers)
			r.Post("/{id}/members", s.handleAddGroupMembers)
			r.Delete("/{id}/members", s.handleRemoveGroupMembers)
		})

		r.Route("/talks", func(r chi.Router) {
			r.Get("/", s.handleListTalks)
			r.Get("/{id}/messages", s.handleMessages)
			r.Delete("/{id}", s.handleDeleteTalk)
		})
		r.Delete("/messages/{id}", s.handleRemoveMessage)

		r.Get("/search/spoks", s.handleSearchSpoks)
		r.Get("/search/autocomplete", s.handleAutocomplete)

		r.Get("/ws", s.handleWS)
	})
}

func (s *Server) Run(ctx context.Context) error {
	s.Logger.Info("Starting API server", "addr", s.server.Addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
