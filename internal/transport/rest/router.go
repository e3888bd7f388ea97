package rest

import (
	"accioncsat/internal/docs"
	"accioncsat/internal/service"
	"accioncsat/internal/transport/rest/handler"
	"accioncsat/internal/transport/rest/middleware"
	"accioncsat/internal/transport/ws"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Container holds all dependencies for the router
type Container struct {
	FormService    *service.FormService
	Tokens         *service.TokenService
	WSHub          *ws.Hub
	Logger         *zap.Logger
	AllowedOrigins string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Initialize handlers
	surveyHandler := handler.NewSurveyHandler(c.FormService)
	formHandler := handler.NewFormHandler(c.FormService)
	wsHandler := ws.NewHandler(c.WSHub, c.Tokens, c.FormService, logger)

	// Initialize middleware
	sessionMW := middleware.NewSessionMiddleware(c.Tokens)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))
	r.Use(middleware.RequestLogger(logger))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/survey", surveyHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions", surveyHandler.StartSession).Methods("POST", "OPTIONS")
	v1.HandleFunc("/docs/openapi.json", docs.Handler).Methods("GET")

	// WebSocket route (public with token in query param)
	v1.HandleFunc("/ws/form", wsHandler.FormWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Form routes (require a session token)
	formRoutes := v1.NewRoute().Subrouter()
	formRoutes.Use(sessionMW.RequireSession)

	formRoutes.HandleFunc("/form", formHandler.Get).Methods("GET", "OPTIONS")
	formRoutes.HandleFunc("/form", formHandler.End).Methods("DELETE", "OPTIONS")
	formRoutes.HandleFunc("/form/answers/{key}", formHandler.UpdateAnswer).Methods("PUT", "OPTIONS")
	formRoutes.HandleFunc("/form/answers/{key}/options", formHandler.ToggleOption).Methods("POST", "OPTIONS")
	formRoutes.HandleFunc("/form/ratings/{key}", formHandler.SelectRating).Methods("POST", "OPTIONS")
	formRoutes.HandleFunc("/form/ratings/{key}/edit", formHandler.EditLowRating).Methods("POST", "OPTIONS")
	formRoutes.HandleFunc("/form/prompt", formHandler.SubmitJustification).Methods("POST", "OPTIONS")
	formRoutes.HandleFunc("/form/prompt", formHandler.CancelPrompt).Methods("DELETE", "OPTIONS")
	formRoutes.HandleFunc("/form/submit", formHandler.Submit).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
