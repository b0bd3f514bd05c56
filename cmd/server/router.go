package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/mnemo-api/internal/api"
	apiMiddleware "github.com/phrazzld/mnemo-api/internal/api/middleware"
	"github.com/phrazzld/mnemo-api/internal/api/shared"
)

// appVersion is reported by the health endpoints.
const appVersion = "1.0.0"

// setupRouter creates and configures the application router with all routes and middleware.
// It accepts the application dependencies to create handlers and register routes.
// Returns the configured router.
func (app *application) setupRouter() http.Handler {
	// Create a router
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware) // Add trace IDs for improved error handling

	// Cross-origin access is opt-in: no configured origins, no CORS headers
	if origins := splitOrigins(app.config.Server.AllowedOrigins); len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Create API handlers using the application's services
	authHandler := api.NewAuthHandler(
		app.userService,
		app.jwtService,
		time.Duration(app.config.Auth.TokenLifetimeMinutes)*time.Minute,
	)
	profileHandler := api.NewProfileHandler(app.userService)
	deckHandler := api.NewDeckHandler(app.deckService)
	topicHandler := api.NewTopicHandler(app.topicService, app.logger)
	reviewHandler := api.NewReviewHandler(app.reviewService, app.logger)
	generationHandler := api.NewGenerationHandler(app.generationService, app.logger)
	adminHandler := api.NewAdminHandler(app.userService, app.logger)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	roleMiddleware := apiMiddleware.NewRoleMiddleware(app.userStore)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Profile endpoints
			r.Get("/profile", profileHandler.GetProfile)
			r.Put("/profile", profileHandler.UpdateProfile)

			// Deck endpoints
			r.Post("/decks", deckHandler.CreateDeck)
			r.Get("/decks", deckHandler.ListDecks)
			r.Get("/decks/{deckID}", deckHandler.GetDeck)
			r.Put("/decks/{deckID}", deckHandler.UpdateDeck)
			r.Delete("/decks/{deckID}", deckHandler.DeleteDeck)

			// Topic endpoints; /topics/due is static so chi matches it
			// before the {topicID} routes
			r.Post("/decks/{deckID}/topics", topicHandler.CreateTopic)
			r.Get("/decks/{deckID}/topics", topicHandler.ListDeckTopics)
			r.Get("/topics/due", topicHandler.ListDueTopics)
			r.Get("/topics/{topicID}", topicHandler.GetTopic)
			r.Put("/topics/{topicID}", topicHandler.RenameTopic)
			r.Delete("/topics/{topicID}", topicHandler.DeleteTopic)

			// Card endpoints (cards are addressed by index within a topic)
			r.Post("/topics/{topicID}/cards", topicHandler.AddCard)
			r.Get("/topics/{topicID}/cards/{cardIndex}", topicHandler.GetCard)
			r.Patch("/topics/{topicID}/cards/{cardIndex}/weight", topicHandler.UpdateCardWeight)
			r.Delete("/topics/{topicID}/cards/{cardIndex}", topicHandler.RemoveCard)

			// Review endpoints
			r.Get("/topics/{topicID}/review-card", reviewHandler.GetReviewCard)
			r.Post("/topics/{topicID}/review", reviewHandler.SubmitReview)

			// AI generation endpoints
			r.Get("/ai/providers", generationHandler.ListProviders)
			r.Post("/ai/generate-cards", generationHandler.GenerateCards)
			r.Post("/topics/{topicID}/generate", generationHandler.GenerateTopicCards)

			// Admin endpoints; the role check reads the user's current role
			// from storage, not the token claim
			r.Group(func(r chi.Router) {
				r.Use(roleMiddleware.RequireAdmin)
				r.Get("/admin/users", adminHandler.ListUsers)
				r.Put("/admin/users/{userID}/role", adminHandler.UpdateUserRole)
			})
		})
	})

	// Health check endpoints
	r.Get("/", app.handleHealthCheck)
	r.Get("/health", app.handleHealthCheck)

	return r
}

// handleHealthCheck reports service liveness and the running version.
func (app *application) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": appVersion,
	})
}

// splitOrigins turns the comma-separated allowed-origins setting into a
// slice, dropping empty entries.
func splitOrigins(origins string) []string {
	var out []string
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}
