package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/fireguard/internal/config"
	httpmiddleware "github.com/gestaozabele/fireguard/internal/http/middleware"
	"github.com/gestaozabele/fireguard/internal/monitor"
	"github.com/gestaozabele/fireguard/internal/service"
)

// Services agrupa as dependências montadas em cmd/api.
type Services struct {
	Auth        *service.AuthService
	Users       *service.UserService
	Fleet       *service.FleetService
	Inspections *service.InspectionService
	Catalog     *service.CatalogService
	System      *service.SystemService
	// Monitor é opcional.
	Monitor *monitor.Service
}

type Handler struct {
	cfg          *config.Config
	auth         *service.AuthService
	users        *service.UserService
	fleet        *service.FleetService
	inspections  *service.InspectionService
	catalog      *service.CatalogService
	system       *service.SystemService
	monitor      *monitor.Service
	loginLimiter *httpmiddleware.RateLimiter
	userLimiter  *httpmiddleware.RateLimiter
}

// NewRouter devolve o roteador com todas as rotas da API.
func NewRouter(cfg *config.Config, svc Services) http.Handler {
	h := &Handler{
		cfg:          cfg,
		auth:         svc.Auth,
		users:        svc.Users,
		fleet:        svc.Fleet,
		inspections:  svc.Inspections,
		catalog:      svc.Catalog,
		system:       svc.System,
		monitor:      svc.Monitor,
		loginLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		userLimiter:  httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging(log.With().Str("component", "http").Logger()))
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Get("/health", h.Health)
	r.Get("/status", h.Status)
	r.Get("/branding", h.Branding)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.loginLimiter))
		public.Post("/auth/login", h.Login)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(h.auth.JWT()))
		private.Use(httpmiddleware.UserRateLimit(h.userLimiter))

		private.Get("/me", h.Me)
		private.Get("/extinguishers", h.ListExtinguishers)
		private.Get("/extinguishers/{id}", h.GetExtinguisher)
		private.Get("/inspections", h.ListInspections)
		private.Post("/inspections", h.SubmitInspection)
		private.Post("/inspections/analyze", h.AnalyzeInspection)
		private.Get("/history", h.History)
		private.Get("/checklist", h.ListChecklist)
		private.Get("/types", h.ListTypes)

		private.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.RequireAdmin)

			admin.Post("/extinguishers", h.CreateExtinguisher)
			admin.Put("/extinguishers/{id}", h.UpdateExtinguisher)
			admin.Get("/dashboard", h.Dashboard)
			admin.Get("/alerts", h.ListAlerts)

			admin.Route("/users", func(u chi.Router) {
				u.Get("/", h.ListUsers)
				u.Post("/", h.CreateUser)
				u.Delete("/{id}", h.DeleteUser)
			})

			admin.Put("/checklist", h.ReplaceChecklist)
			admin.Put("/types", h.ReplaceTypes)

			admin.Route("/system", func(s chi.Router) {
				s.Get("/config", h.GetSystemConfig)
				s.Put("/config", h.UpdateSystemConfig)
				s.Post("/config/reset", h.ResetSystemConfig)
				s.Get("/connection", h.GetConnection)
				s.Put("/connection", h.UpdateConnection)
				s.Delete("/connection", h.ClearConnection)
				s.Post("/connection/test", h.TestConnection)
				s.Get("/sync", h.PendingSync)
				s.Post("/sync", h.Resync)
			})
		})
	})

	return r
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status sonda o banco remoto e informa online, offline ou local.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.system.Status(r.Context()))
}

// Branding devolve nome e logotipo para a tela de login.
func (h *Handler) Branding(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.system.Config(r.Context()))
}
