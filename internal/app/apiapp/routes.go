package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Vijayapardhu/risbow-backend-sub001/internal/config"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/services/adminauth"
	discsvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/discipline"
	flagsvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/flags"
	modsvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/moderation"
	strikesvc "github.com/Vijayapardhu/risbow-backend-sub001/internal/services/strikes"
	"github.com/Vijayapardhu/risbow-backend-sub001/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService       *adminauth.Service
	FlagService       *flagsvc.Service
	ModerationService *modsvc.Service
	StrikeService     *strikesvc.Service
	DisciplineService *discsvc.Service
	Logger            *zap.Logger
	Config            config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	flagsHandler := handlers.NewFlagsHandler(deps.FlagService)
	moderationHandler := handlers.NewModerationHandler(deps.ModerationService)
	strikesHandler := handlers.NewStrikesHandler(deps.StrikeService)
	disciplineHandler := handlers.NewDisciplineHandler(deps.DisciplineService)

	authMW := AuthMiddleware(deps.AuthService, deps.Logger)
	moderatorMW := RequireRole(adminauth.RoleAdmin, adminauth.RoleModerator)
	adminMW := RequireRole(adminauth.RoleAdmin)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMW)

		// Any authenticated staff or vendor can report content.
		r.Post("/flags", flagsHandler.Create)

		r.With(moderatorMW).Get("/moderation/queue", flagsHandler.Queue)
		r.With(moderatorMW).Get("/moderation/stats", flagsHandler.Stats)
		r.With(moderatorMW).Get("/moderation/performance", flagsHandler.ModeratorPerformance)
		r.With(moderatorMW).Post("/flags/{flagID}/assign", flagsHandler.Assign)
		r.With(moderatorMW).Post("/moderation/flags/{flagID}/moderate", moderationHandler.Moderate)
		r.With(moderatorMW).Post("/moderation/bulk", moderationHandler.BulkModerate)
		r.With(moderatorMW).Post("/moderation/scan", flagsHandler.Scan)

		r.With(adminMW).Post("/strikes", strikesHandler.Issue)
		r.With(adminMW).Post("/strikes/{strikeID}/resolve", strikesHandler.Resolve)
		r.With(adminMW).Post("/disciplines", disciplineHandler.Apply)
		r.With(adminMW).Post("/disciplines/{disciplineID}/lift", disciplineHandler.Lift)
		r.With(adminMW).Post("/disciplines/sweep", disciplineHandler.Sweep)

		r.With(moderatorMW).Get("/strikes/{strikeID}", strikesHandler.Get)
		r.With(moderatorMW).Get("/vendors/{vendorID}/strikes", strikesHandler.VendorStrikes)
		r.With(moderatorMW).Get("/vendors/{vendorID}/disciplines", disciplineHandler.VendorHistory)

		// Vendors appeal their own strikes; ownership is checked in the service.
		r.Post("/strikes/{strikeID}/appeal", strikesHandler.Appeal)
	})
}
