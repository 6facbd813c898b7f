package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fournil/api/internal/config"
	"github.com/fournil/api/internal/database"
	"github.com/fournil/api/internal/enum"
	"github.com/fournil/api/internal/handler"
	mw "github.com/fournil/api/internal/middleware"
	"github.com/fournil/api/internal/service"
	"github.com/fournil/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Public catalog routes come first, then the authenticated client surface,
// then the staff-only surface behind a role check.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, mailer handler.ResetMailer) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // SPA dev server
			cfg.FrontendURL,
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Services
	orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	})
	balanceService := service.NewBalanceService(queries)

	// Handlers
	authHandler := handler.NewAuthHandler(queries, mailer, cfg.JWTSecret, cfg.FrontendURL)
	productHandler := handler.NewProductHandler(queries)
	toppingHandler := handler.NewToppingHandler(queries)
	closedDayHandler := handler.NewClosedDayHandler(queries)
	contactHandler := handler.NewContactHandler(queries)
	orderHandler := handler.NewOrderHandler(orderService, queries, hub)
	userHandler := handler.NewUserHandler(queries)
	favoriteHandler := handler.NewFavoriteHandler(queries)
	complaintHandler := handler.NewComplaintHandler(queries)
	clientHandler := handler.NewClientHandler(queries, balanceService)

	// Public routes
	authHandler.RegisterRoutes(r)
	productHandler.RegisterPublicRoutes(r)
	toppingHandler.RegisterPublicRoutes(r)
	closedDayHandler.RegisterPublicRoutes(r)
	contactHandler.RegisterRoutes(r)

	// Product images
	fileServer := http.FileServer(http.Dir(cfg.UploadsDir))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		authHandler.RegisterProtectedRoutes(r)
		userHandler.RegisterRoutes(r)
		orderHandler.RegisterRoutes(r)
		favoriteHandler.RegisterRoutes(r)
		complaintHandler.RegisterRoutes(r)

		// Staff-only routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.UserRoleBaker))

			orderHandler.RegisterStaffRoutes(r)
			productHandler.RegisterStaffRoutes(r)
			toppingHandler.RegisterStaffRoutes(r)
			closedDayHandler.RegisterStaffRoutes(r)
			clientHandler.RegisterStaffRoutes(r)
			contactHandler.RegisterStaffRoutes(r)
			complaintHandler.RegisterStaffRoutes(r)
		})
	})

	return r
}
