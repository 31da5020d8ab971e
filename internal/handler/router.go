package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/facturaja/facturaja-bff/internal/domain"
	"github.com/facturaja/facturaja-bff/internal/infra/observability"
	"github.com/facturaja/facturaja-bff/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/secure"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// HealthCheck checks one dependency for /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Options tunes the HTTP surface.
type Options struct {
	AllowedOrigins []string
	// AuthRateLimit is the number of login/cadastro attempts allowed per IP per minute.
	AuthRateLimit  int
	RequestTimeout time.Duration
	// Production enables HSTS and the HTTPS redirect.
	Production bool
}

// Services are the application services behind the routes.
type Services struct {
	Screens   *service.Screens
	Invoices  *service.InvoiceService
	Payments  *service.PaymentService
	Directory *service.DirectoryService
	Reports   *service.ReportService
	Relay     *service.RelayService
	Auth      *service.AuthService
}

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract of the FacturaJá frontend.
func NewRouter(svc Services, opts Options, checks []HealthCheck, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        opts.Production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		STSSeconds:         stsSeconds(opts.Production),
		IsDevelopment:      !opts.Production,
	})

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(secureMiddleware.Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(checks))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(middleware.Timeout(opts.RequestTimeout))
		}

		// =============================================
		// 0. Login and cadastro (no session, rate limited)
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(authRateLimiter(opts.AuthRateLimit))
			r.Post("/auth/login", authLoginHandler(svc.Auth, logger))
			r.Post("/auth/cadastro", authRegisterHandler(svc.Auth, logger))
		})

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(svc.Auth, logger))

			// =============================================
			// 1. Faturas
			// =============================================
			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", listHandler(svc.Screens.Invoices, invoiceCategories, logger))
				r.Get("/export", exportHandler(svc.Screens.Invoices, invoiceCategories, logger))
				r.Post("/", createInvoiceHandler(svc.Invoices, logger))
				r.Post("/totals", invoiceTotalsHandler(svc.Invoices, logger))
				r.Get("/{id}", getHandler(svc.Screens.Invoices, logger))
				r.Put("/{id}", updateInvoiceHandler(svc.Invoices, logger))
				r.Post("/{id}/pay", payInvoiceHandler(svc.Invoices, logger))
				r.Post("/{id}/cancel", cancelInvoiceHandler(svc.Invoices, logger))
			})

			// =============================================
			// 2. Pagamentos
			// =============================================
			r.Route("/payments", func(r chi.Router) {
				r.Get("/", listHandler(svc.Screens.Payments, paymentCategories, logger))
				r.Get("/export", exportHandler(svc.Screens.Payments, paymentCategories, logger))
				r.Post("/", registerPaymentHandler(svc.Payments, logger))
				r.Get("/{id}", getHandler(svc.Screens.Payments, logger))
				r.Post("/{id}/reconcile", reconcilePaymentHandler(svc.Payments, logger))
				r.Delete("/{id}", deletePaymentHandler(svc.Payments, logger))
			})

			// =============================================
			// 3. Auditoria (read only)
			// =============================================
			r.Route("/audit-logs", func(r chi.Router) {
				r.Get("/", listHandler(svc.Screens.AuditLogs, auditCategories, logger))
				r.Get("/export", exportHandler(svc.Screens.AuditLogs, auditCategories, logger))
			})

			// =============================================
			// 4. Empresas, Utilizadores, Produtos
			// =============================================
			r.Route("/companies", func(r chi.Router) {
				r.Get("/", listHandler(svc.Screens.Companies, companyCategories, logger))
				r.Get("/export", exportHandler(svc.Screens.Companies, companyCategories, logger))
				r.Get("/{id}", getHandler(svc.Screens.Companies, logger))
				r.Post("/", createRecordHandler("/api/companies", svc.Directory.CreateCompany, logger))
				r.Put("/{id}", updateRecordHandler("/api/companies", svc.Directory.UpdateCompany, logger))
				r.Delete("/{id}", deactivateRecordHandler("/api/companies", svc.Directory.DeactivateCompany, logger))
			})
			r.Route("/users", func(r chi.Router) {
				r.Get("/", listHandler(svc.Screens.Users, userCategories, logger))
				r.Get("/export", exportHandler(svc.Screens.Users, userCategories, logger))
				r.Get("/{id}", getHandler(svc.Screens.Users, logger))
				r.Post("/", createRecordHandler("/api/users", svc.Directory.CreateUser, logger))
				r.Put("/{id}", updateRecordHandler("/api/users", svc.Directory.UpdateUser, logger))
				r.Delete("/{id}", deactivateRecordHandler("/api/users", svc.Directory.DeactivateUser, logger))
			})
			r.Route("/products", func(r chi.Router) {
				r.Get("/", listHandler(svc.Screens.Products, productCategories, logger))
				r.Get("/export", exportHandler(svc.Screens.Products, productCategories, logger))
				r.Get("/{id}", getHandler(svc.Screens.Products, logger))
				r.Post("/", createRecordHandler("/api/products", svc.Directory.CreateProduct, logger))
				r.Put("/{id}", updateRecordHandler("/api/products", svc.Directory.UpdateProduct, logger))
				r.Delete("/{id}", deactivateRecordHandler("/api/products", svc.Directory.DeactivateProduct, logger))
			})

			// =============================================
			// 5. Relatórios
			// =============================================
			r.Get("/reports/summary", reportSummaryHandler(svc.Reports, logger))

			// =============================================
			// 6. Autenticação
			// =============================================
			r.Group(func(r chi.Router) {
				r.Use(RequireSession)
				r.Post("/auth/logout", authLogoutHandler(svc.Auth, logger))
				r.Get("/auth/me", authMeHandler(svc.Auth))
				r.Put("/auth/preferences", authPreferencesHandler(svc.Auth, logger))
			})

			// =============================================
			// 7. Relay to the billing backend
			// =============================================
			r.HandleFunc("/relay", relayHandler(svc.Relay, logger))

			// =============================================
			// 8. Ops (admin)
			// =============================================
			r.With(RequireRole(domain.RoleAdmin)).Get("/ops/stats", opsStatsHandler(metrics))
		})
	})

	return r
}

func authRateLimiter(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		perMinute = 10
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTooManyRequests, "Demasiadas tentativas. Tente novamente dentro de um minuto.")
		}),
	)
}

func stsSeconds(production bool) int64 {
	if production {
		return 31536000
	}
	return 0
}

// ============================================================
// Health
// ============================================================

func healthzHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: observability.ServiceName, Status: "healthy", LatencyMs: 0, LastChecked: now},
		}
		for _, c := range checks {
			start := time.Now()
			err := c.Check(ctx)
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: c.Name, Status: status,
				LatencyMs: time.Since(start).Milliseconds(), LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
