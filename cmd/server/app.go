package main

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/diewo77/go-chantiers/auth"
	"github.com/diewo77/go-chantiers/gate"
	"github.com/diewo77/go-chantiers/httpx"
	"github.com/diewo77/go-chantiers/internal/config"
	"github.com/diewo77/go-chantiers/internal/geocode"
	"github.com/diewo77/go-chantiers/internal/handlers"
	"github.com/diewo77/go-chantiers/internal/mailer"
	"github.com/diewo77/go-chantiers/internal/metrics"
	"github.com/diewo77/go-chantiers/internal/middleware"
	"github.com/diewo77/go-chantiers/internal/pdf"
	"github.com/diewo77/go-chantiers/internal/policy"
	"github.com/diewo77/go-chantiers/internal/services"
)

// profileCacheTTL bounds how long a role or activation change takes to apply.
const profileCacheTTL = 30 * time.Second

// Outbound holds the external collaborators. Zero fields are built from config.
type Outbound struct {
	Geocoder geocode.Geocoder
	Mailer   mailer.Sender
	Images   pdf.ImageFetcher
}

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	handler http.Handler
	tokens  *auth.Tokens
	gate    *policy.AuthGate
	login   *middleware.RateLimiter
}

// NewApp creates the application with all routes configured.
func NewApp(cfg *config.Config, conn *gorm.DB, log *logrus.Logger, out Outbound) *App {
	if out.Geocoder == nil {
		out.Geocoder = geocode.New(cfg.Geocoding)
	}
	if out.Mailer == nil {
		out.Mailer = mailer.New(cfg.Email)
	}
	if out.Images == nil {
		out.Images = pdf.NewHTTPImageFetcher(cfg.PDF.ImageTimeout)
	}

	a := &App{
		mux:    http.NewServeMux(),
		tokens: auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		gate:   policy.NewAuthGate(conn, profileCacheTTL),
		login:  middleware.NewRateLimiter(cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateBurst),
	}
	a.routes(conn, out)
	a.handler = middleware.Chain(a.mux,
		middleware.Logging(log),
		middleware.Recover,
		middleware.NewCORS(cfg.Server.CORSOrigins).Handler,
		middleware.Prefs,
		a.tokens.Middleware,
		metrics.InstrumentHandler,
	)
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) routes(conn *gorm.DB, out Outbound) {
	sites := services.NewChantierService(conn, out.Geocoder)
	materiels := services.NewMaterielService(conn, nil)
	records := services.NewRecordService(conn, nil)
	tasks := services.NewTaskService(conn)
	duerps := services.NewDUERPService(conn, nil)
	users := services.NewUserService(conn)
	companies := services.NewCompanyService(conn, nil)
	dashboard := services.NewDashboardService(conn, nil)
	export := services.NewExportService(records, pdf.NewGenerator(out.Images), out.Mailer)

	ah := handlers.NewAuthHandler(users, a.tokens)
	uh := handlers.NewUserHandler(a.gate, users)
	coh := handlers.NewCompanyHandler(a.gate, companies)
	ch := handlers.NewChantierHandler(a.gate, sites, materiels, companies, export)
	rh := handlers.NewRecordHandler(a.gate, sites, records, users, export)
	th := handlers.NewTaskHandler(a.gate, sites, tasks)
	mh := handlers.NewMaterielHandler(a.gate, materiels)
	dh := handlers.NewDUERPHandler(a.gate, duerps, companies, export)
	dbh := handlers.NewDashboardHandler(a.gate, dashboard)
	health := handlers.NewHealth(conn)

	// Public
	a.mux.Handle("POST /token", a.login.Handler(http.HandlerFunc(ah.Token)))
	a.mux.HandleFunc("POST /register", ah.Register)
	a.mux.HandleFunc("GET /health", health.Live)
	a.mux.HandleFunc("GET /healthz", health.Ready)
	a.mux.Handle("GET /metrics", metrics.Handler())

	// Accounts
	a.handle("GET /users/me", ah.Me)
	a.mux.Handle("GET /users", a.admin(uh.List))
	a.mux.Handle("POST /users", a.admin(uh.Create))
	a.handle("PUT /users/{id}", uh.Update)
	a.mux.Handle("DELETE /users/{id}", a.admin(uh.Delete))
	a.handle("GET /companies/me", coh.Get)
	a.mux.Handle("PUT /companies/me",
		auth.RequireAuth(a.gate.RequirePermission(policy.ResCompany, gate.ActionUpdate)(http.HandlerFunc(coh.Update))))
	a.handle("GET /companies/me/documents", coh.Documents)
	a.handle("POST /companies/me/documents", coh.CreateDocument)
	a.handle("DELETE /companies/me/documents/{id}", coh.DeleteDocument)

	// Sites
	a.handle("GET /chantiers", ch.List)
	a.handle("POST /chantiers", ch.Create)
	a.handle("GET /chantiers/{id}", ch.Get)
	a.handle("PUT /chantiers/{id}", ch.Update)
	a.handle("DELETE /chantiers/{id}", ch.Delete)
	a.handle("GET /chantiers/{id}/materiels", ch.Materiels)
	a.handle("POST /chantiers/{id}/send-email", ch.SendEmail)

	a.handle("GET /chantiers/{id}/rapports", rh.Rapports())
	a.handle("POST /chantiers/{id}/rapports", rh.CreateRapport())
	a.handle("PUT /rapports/{id}", rh.UpdateRapport)
	a.handle("DELETE /rapports/{id}", rh.DeleteRapport)
	a.handle("GET /chantiers/{id}/inspections", rh.Inspections())
	a.handle("POST /chantiers/{id}/inspections", rh.CreateInspection())
	a.handle("DELETE /inspections/{id}", rh.DeleteInspection)
	a.handle("GET /chantiers/{id}/docs", rh.Documents())
	a.handle("POST /chantiers/{id}/docs", rh.CreateDocument())
	a.handle("DELETE /docs/{id}", rh.DeleteDocument)
	a.handle("GET /chantiers/{id}/pic", rh.PIC)
	a.handle("PUT /chantiers/{id}/pic", rh.SavePIC)
	a.handle("GET /chantiers/{id}/permis-feu", rh.PermisFeux())
	a.handle("POST /chantiers/{id}/permis-feu", rh.CreatePermisFeu())
	a.handle("GET /chantiers/{id}/plans-prevention", rh.PlansPrevention())
	a.handle("POST /chantiers/{id}/plans-prevention", rh.CreatePlanPrevention())
	a.handle("GET /chantiers/{id}/ppsps", rh.PPSPSList())
	a.handle("POST /chantiers/{id}/ppsps", rh.CreatePPSPS())
	a.handle("GET /chantiers/{id}/tasks", th.List)
	a.handle("POST /chantiers/{id}/tasks", th.Create)

	// Documents, also reachable with ?token= from a plain link
	a.document("GET /chantiers/{id}/pdf", ch.PDF)
	a.document("GET /chantiers/{id}/pic/pdf", ch.PICPDF)
	a.document("GET /ppsps/{id}/pdf", rh.PPSPSPDF)
	a.document("GET /plans-prevention/{id}/pdf", rh.PlanPreventionPDF)
	a.document("GET /permis-feu/{id}/pdf", rh.PermisFeuPDF)
	a.document("GET /duerp/{annee}/pdf", dh.PDF)

	// Equipment
	a.handle("GET /materiels", mh.List)
	a.handle("POST /materiels", mh.Create)
	a.handle("POST /materiels/import", mh.Import)
	a.handle("GET /materiels/{id}", mh.Get)
	a.handle("PUT /materiels/{id}", mh.Update)
	a.handle("DELETE /materiels/{id}", mh.Delete)
	a.handle("PUT /materiels/{id}/transfert", mh.Transfer)

	// Risk register, tasks, dashboard
	a.handle("GET /duerp", dh.List)
	a.handle("POST /duerp", dh.Save)
	a.handle("GET /duerp/{annee}", dh.Get)
	a.handle("GET /tasks", th.Company)
	a.handle("PUT /tasks/{id}", th.Update)
	a.handle("DELETE /tasks/{id}", th.Delete)
	a.handle("GET /dashboard/stats", dbh.Stats)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusNotFound, "not_found", nil)
	})
}

// handle registers an authenticated route. Permissions are checked by the handler
// against the loaded record.
func (a *App) handle(pattern string, h http.HandlerFunc) {
	a.mux.Handle(pattern, auth.RequireAuth(h))
}

func (a *App) document(pattern string, h http.HandlerFunc) {
	a.mux.Handle(pattern, a.tokens.QueryTokenMiddleware(auth.RequireAuth(h)))
}

func (a *App) admin(h http.HandlerFunc) http.Handler {
	return auth.RequireAuth(a.gate.RequireAdmin()(h))
}
