package http

import (
	"net/http"

	"cmms/internal/auth"
	"cmms/internal/config"
	"cmms/internal/equipment"
	"cmms/internal/http/handler"
	mw "cmms/internal/http/middleware"
	"cmms/internal/maintenance"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, poker handler.Poker) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	me := &handler.MeHandler{DB: db}
	r.With(auth.RequireAuth(jwtSvc)).Get("/me", me.Me)

	fh := &handler.FacilityHandler{DB: db}
	eqSvc := &equipment.Service{DB: db}
	eh := &handler.EquipmentHandler{Svc: eqSvc, DB: db}
	gh := &handler.GroupHandler{DB: db}
	ph := &handler.PartHandler{DB: db}
	mSvc := &maintenance.Service{DB: db}
	mh := &handler.MaintenanceHandler{Svc: mSvc, DB: db, Poker: poker}
	ih := &handler.InterventionHandler{Svc: mSvc, DB: db, Poker: poker}
	nh := &handler.NotificationHandler{DB: db, Poker: poker}

	write := auth.RequireRole(auth.RoleTechnician)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Route("/buildings", func(r chi.Router) {
			r.Get("/", fh.ListBuildings)
			r.With(write).Post("/", fh.CreateBuilding)
			r.With(write).Put("/{id}", fh.UpdateBuilding)
			r.With(write).Delete("/{id}", fh.DeleteBuilding)
		})

		r.Route("/services", func(r chi.Router) {
			r.Get("/", fh.ListServices)
			r.With(write).Post("/", fh.CreateService)
			r.With(write).Delete("/{id}", fh.DeleteService)
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", fh.ListLocations)
			r.With(write).Post("/", fh.CreateLocation)
			r.With(write).Delete("/{id}", fh.DeleteLocation)
		})

		r.Route("/equipment", func(r chi.Router) {
			r.Get("/", eh.List)
			r.Get("/{id}", eh.Get)
			r.Get("/{id}/parts", eh.ListParts)
			r.With(write).Post("/", eh.Create)
			r.With(write).Put("/{id}", eh.Update)
			r.With(write).Delete("/{id}", eh.Delete)
			r.With(write).Put("/{id}/groups", eh.SetGroups)
			r.With(write).Put("/{id}/parts", eh.SetParts)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", gh.List)
			r.With(write).Post("/", gh.Create)
			r.With(write).Delete("/{id}", gh.Delete)
		})

		r.Route("/parts", func(r chi.Router) {
			r.Get("/", ph.List)
			r.Get("/low-stock", ph.LowStock)
			r.Get("/{id}", ph.Get)
			r.With(write).Post("/", ph.Create)
			r.With(write).Put("/{id}", ph.Update)
			r.With(write).Delete("/{id}", ph.Delete)
		})

		r.Route("/maintenance", func(r chi.Router) {
			r.Get("/", mh.List)
			r.Get("/{id}", mh.Get)
			r.With(write).Post("/", mh.Create)
			r.With(write).Put("/{id}", mh.Update)
			r.With(write).Post("/{id}/complete", mh.Complete)
			r.With(write).Delete("/{id}", mh.Delete)
		})

		r.Route("/interventions", func(r chi.Router) {
			r.Get("/", ih.List)
			r.Get("/{id}", ih.Get)
			r.With(write).Post("/", ih.Create)
			r.With(write).Put("/{id}", ih.Update)
			r.With(write).Post("/{id}/complete", ih.Complete)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", nh.List)
			r.Post("/", nh.Create)
			r.Post("/{id}/complete", nh.Complete)
			r.Delete("/{id}", nh.Delete)
		})
	})

	return r
}
