package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/bookfinder-be/internal/api/handlers"
	"github.com/isdelr/bookfinder-be/internal/auth"
	"github.com/isdelr/bookfinder-be/internal/models"
	"github.com/isdelr/bookfinder-be/internal/services"
	"github.com/isdelr/bookfinder-be/internal/websocket"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Hub            *websocket.Hub
	Guard          *auth.Guard
	AuthService    services.AuthServiceProvider
	BookService    services.BookServiceProvider
	EventService   services.EventServiceProvider
	AllowedOrigins []string
	SecureCookies  bool
	StartedAt      time.Time
	// Now is the clock for websocket session expiry; nil means time.Now.
	Now func() time.Time
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.StartedAt)
	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.SecureCookies)
	bookHandler := handlers.NewBookHandler(deps.BookService)
	eventHandler := handlers.NewEventHandler(deps.EventService)

	r.Get("/health", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.With(deps.Guard.RequireRole(models.RoleAny)).Get("/me", authHandler.Me)
	})

	r.Route("/api", func(r chi.Router) {
		// Every route below needs an authenticated identity.
		r.Use(deps.Guard.RequireRole(models.RoleAny))

		if deps.Hub != nil {
			wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.AllowedOrigins, deps.Now)
			r.Get("/ws", wsHandler.Serve)
		}

		r.Route("/books", func(r chi.Router) {
			r.Get("/", bookHandler.GetAll)
			r.Get("/{id}", bookHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(deps.Guard.RequireRole(models.RoleRecommender))
				r.Post("/", bookHandler.Create)
				r.Put("/{id}", bookHandler.Update)
				r.Delete("/{id}", bookHandler.Delete)
			})
		})

		r.With(deps.Guard.RequireRole(models.RoleRecommender)).Get("/events", eventHandler.GetRecent)
	})

	return r
}
