package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/shop-admin/internal/appointments"
	"github.com/ukydev/shop-admin/internal/auth"
	"github.com/ukydev/shop-admin/internal/db"
	"github.com/ukydev/shop-admin/internal/images"
	"github.com/ukydev/shop-admin/internal/middleware"
	"github.com/ukydev/shop-admin/internal/models"
	"github.com/ukydev/shop-admin/internal/tracking"
)

// Deps are the services the router exposes.
type Deps struct {
	Auth         *auth.Service
	Users        db.UserCollection
	Appointments *appointments.Service
	Registry     *tracking.Registry
	Images       *images.Service
	ImageConfig  images.Config
	Records      RecordSource
	Logger       logrus.FieldLogger

	StorageBackend string
	CORSOrigins    []string
	RateLimiter    *middleware.RateLimiter
}

// NewRouter builds the admin API.
func NewRouter(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	authMW := middleware.NewAuthMiddleware(d.Auth)
	authH := NewAuthHandler(d.Auth, d.Users, log)
	apptH := NewAppointmentHandler(d.Appointments, log)
	trackH := NewTrackingHandler(d.Registry, d.Appointments, log)
	analyticsH := NewAnalyticsHandler(d.Records, log)
	imageH := NewImageHandler(d.Images, d.ImageConfig, log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.Handler)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":         "ok",
			"storage":        d.StorageBackend,
			"tracking_codes": d.Registry.Len(),
			"time":           time.Now().UTC(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(authMW.Authenticate)

		r.Post("/auth/login", authH.Login)
		r.Post("/auth/register", authH.Register)
		r.Get("/auth/profile", authH.GetProfile)
		r.Put("/auth/profile", authH.UpdateProfile)
		r.Post("/auth/password", authH.ChangePassword)

		r.Route("/appointments", func(r chi.Router) {
			r.With(authMW.RequirePermission(models.ActionViewAppointments)).Get("/", apptH.List)
			r.With(authMW.RequirePermission(models.ActionViewAppointments)).Get("/{id}", apptH.Get)
			r.With(authMW.RequirePermission(models.ActionUpdateStatus)).Post("/{id}/status", apptH.ChangeStatus)
			r.With(authMW.RequirePermission(models.ActionUpdateNotes)).Put("/{id}/notes", apptH.SaveWorkNotes)
			r.With(authMW.RequirePermission(models.ActionUpdateCosts)).Put("/{id}/costs", apptH.SaveCosts)
		})

		r.Route("/tracking", func(r chi.Router) {
			r.With(authMW.RequirePermission(models.ActionViewTracking)).Get("/", trackH.List)
			r.With(authMW.RequirePermission(models.ActionViewTracking)).Get("/stats", trackH.Stats)
			r.With(authMW.RequirePermission(models.ActionManageTracking)).Get("/export", trackH.Export)
			r.With(authMW.RequirePermission(models.ActionImportTracking)).Post("/import", trackH.Import)
			r.With(authMW.RequirePermission(models.ActionManageTracking)).Post("/", trackH.Register)
			// Customer-facing lookup, public.
			r.Get("/{code}", trackH.Lookup)
			r.With(authMW.RequirePermission(models.ActionManageTracking)).Put("/{code}/status", trackH.UpdateStatus)
		})

		r.With(authMW.RequirePermission(models.ActionViewAnalytics)).Get("/analytics/services", analyticsH.Services)

		r.Route("/services/{serviceID}/images", func(r chi.Router) {
			r.With(authMW.RequirePermission(models.ActionViewAppointments)).Get("/", imageH.List)
			r.With(authMW.RequirePermission(models.ActionViewAppointments)).Get("/{imageID}", imageH.Data)
			r.Group(func(r chi.Router) {
				r.Use(authMW.RequirePermission(models.ActionManageImages))
				r.Post("/", imageH.Upload)
				r.Put("/order", imageH.Move)
				r.Delete("/{imageID}", imageH.Remove)
				r.Put("/{imageID}/primary", imageH.SetPrimary)
				r.Put("/{imageID}/alt", imageH.UpdateAltText)
			})
		})
	})

	return r
}
