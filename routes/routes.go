package routes

import (
	"github.com/Khyle1o1/student-management-system-sub000/handlers"
	"github.com/Khyle1o1/student-management-system-sub000/middleware"
	"github.com/Khyle1o1/student-management-system-sub000/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes wires every handler onto the router. Reads are public; all
// bracket and tournament mutations require a staff token.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	teamHandler *handlers.TeamHandler,
	tournamentHandler *handlers.TournamentHandler,
	bracketHandler *handlers.BracketHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	staffOnly := func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.Authorize(string(models.StaffRoleAdmin), string(models.StaffRoleOrganizer)))
	}

	router.Post("/auth/login", authHandler.Login)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.Authorize(string(models.StaffRoleAdmin)))
		r.Post("/auth/register", authHandler.Register)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", teamHandler.List)
		r.Get("/{id}", teamHandler.GetByID)

		r.Group(func(r chi.Router) {
			staffOnly(r)
			r.Post("/", teamHandler.Create)
			r.Put("/{id}", teamHandler.Update)
			r.Delete("/{id}", teamHandler.Delete)
			r.Post("/{id}/logo", teamHandler.UploadLogo)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{id}", tournamentHandler.GetByID)
		r.Get("/{id}/bracket", bracketHandler.Get)
		r.Get("/{id}/matches", matchHandler.ListByTournament)

		r.Group(func(r chi.Router) {
			staffOnly(r)
			r.Post("/", tournamentHandler.Create)
			r.Put("/{id}", tournamentHandler.Update)
			r.Post("/{id}/cancel", tournamentHandler.Cancel)
			r.Delete("/{id}", tournamentHandler.Delete)
			r.Post("/{id}/logo", tournamentHandler.UploadLogo)

			r.Post("/{id}/teams/{teamID}", tournamentHandler.RegisterTeam)
			r.Delete("/{id}/teams/{teamID}", tournamentHandler.UnregisterTeam)

			r.Post("/{id}/bracket", bracketHandler.Create)
			r.Post("/{id}/bracket/randomize", bracketHandler.Randomize)
			r.Post("/{id}/bracket/lock", bracketHandler.Lock)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{id}", matchHandler.GetByID)

		r.Group(func(r chi.Router) {
			staffOnly(r)
			r.Post("/{id}/result", matchHandler.RecordResult)
		})
	})

	router.Get("/ws/tournaments/{id}", webSocketHandler.ServeWs)
}
