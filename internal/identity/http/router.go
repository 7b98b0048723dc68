package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/caitlynl22/homeward-tails/internal/identity/service"
	"github.com/caitlynl22/homeward-tails/internal/identity/store"
	"github.com/caitlynl22/homeward-tails/pkg/httpx"
	"github.com/caitlynl22/homeward-tails/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AccountService *service.AccountService
	InviteService  *service.InviteService
	StaffService   *service.StaffService
	AdminService   *service.AdminService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain. Tenant binding runs inside the logging
	// middleware so the organization is part of the request context for
	// every handler and dies with it.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		TenantMiddleware(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerInvites()
	r.registerStaff()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccounts() {
	register := &RegisterHandler{AccountService: r.AccountService}
	accounts := &AccountHandler{AccountService: r.AccountService}
	activation := &ActivationHandler{AccountService: r.AccountService}

	// POST /v1/accounts - strict limit (unauthenticated sign-up)
	r.Mux.Handle("POST /v1/accounts",
		httpx.Chain(register, httpx.RateLimitByIP(httpx.StrictLimit)),
	)
	r.Mux.Handle("GET /v1/accounts/{id}",
		httpx.Chain(http.HandlerFunc(accounts.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/accounts/{id}",
		httpx.Chain(http.HandlerFunc(accounts.HandleUpdate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/accounts/{id}/deactivate",
		httpx.Chain(http.HandlerFunc(activation.HandleDeactivate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/accounts/{id}/activate",
		httpx.Chain(http.HandlerFunc(activation.HandleActivate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerInvites() {
	invites := &InviteHandler{InviteService: r.InviteService}

	r.Mux.Handle("POST /v1/invites",
		httpx.Chain(http.HandlerFunc(invites.HandleMint),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/invites/accept",
		httpx.Chain(http.HandlerFunc(invites.HandleAccept),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerStaff() {
	staff := &StaffHandler{StaffService: r.StaffService}

	r.Mux.Handle("GET /v1/staff",
		httpx.Chain(staff, httpx.RateLimitByIP(httpx.LenientLimit)),
	)
}

func (r *Router) registerAdmin() {
	admin := &AdminHandler{AdminService: r.AdminService}

	r.Mux.Handle("POST /v1/organizations",
		httpx.Chain(http.HandlerFunc(admin.HandleCreateOrganization),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/accounts/{id}/roles",
		httpx.Chain(http.HandlerFunc(admin.HandleAssignRole),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
