package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/arolux/auth-service/internal/auth/domain"
	"github.com/arolux/auth-service/internal/auth/service"
	"github.com/arolux/auth-service/internal/auth/store"
	"github.com/arolux/auth-service/pkg/cryptox"
	"github.com/arolux/auth-service/pkg/httpx"
	"github.com/arolux/auth-service/pkg/jwtx"
	"github.com/arolux/auth-service/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	guard        *guard
	decryptor    *cryptox.BodyDecryptor
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	UserService  *service.UserService
	AdminService *service.AdminService
	OTPService   *service.OTPService
	AuditService *service.AuditService
}

// NewRouter builds a Router with the global middleware chain (request
// logging plus the per-IP global rate limit).
func NewRouter(
	codec *jwtx.Codec,
	st store.Store,
	decryptor *cryptox.BodyDecryptor,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		guard:        &guard{codec: codec, store: st},
		decryptor:    decryptor,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		middlewares: []httpx.Middleware{
			slogx.HTTPMiddleware(logger),
			httpx.RateLimitByIP(httpx.GlobalLimit),
		},
	}
}

func (r *Router) ApplyRoutes() {
	// Unexpected failures anywhere on the surface land in the error log.
	r.guard.errorSink = errorSink{audit: r.AuditService}

	r.registerUsers()
	r.registerAdmins()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.middlewares...)(r.Mux).ServeHTTP(w, req)
}

func (r *Router) registerUsers() {
	h := &UserHandler{Users: r.UserService, OTP: r.OTPService, errorSink: r.guard.errorSink}

	// Credential endpoints carry the strict per-IP limit on top of the
	// global one.
	strict := httpx.RateLimitByIP(httpx.StrictLimit)

	r.Mux.Handle("POST /api/v1/user/send-login-verification",
		httpx.Wrap(h.SendLoginVerification, strict))
	r.Mux.Handle("POST /api/v1/user/verify-login-verification",
		httpx.Wrap(h.VerifyLoginVerification, strict))
	r.Mux.Handle("POST /api/v1/user/sign-up",
		httpx.Wrap(h.PhoneSignup, strict))
	r.Mux.Handle("POST /api/v1/user/signup",
		httpx.Wrap(h.EmailSignup, strict))
	r.Mux.Handle("POST /api/v1/user/login",
		httpx.Wrap(h.Login, strict))
	r.Mux.Handle("POST /api/v1/user/forgot-password",
		httpx.Wrap(h.ForgotPassword, strict))
	r.Mux.Handle("POST /api/v1/user/reset-password",
		httpx.Wrap(h.ResetPassword, strict))
	// Verification links may be followed with or without a live session.
	r.Mux.Handle("POST /api/v1/user/verify-email",
		httpx.Wrap(h.VerifyEmail, r.guard.OptionalUserAuth(), strict))
	r.Mux.Handle("POST /api/v1/user/token",
		httpx.Wrap(h.Token, httpx.RateLimitByIP(httpx.ModerateLimit)))

	userAuth := r.guard.UserAuth()
	moderate := httpx.RateLimitByUser(httpx.ModerateLimit)

	r.Mux.Handle("POST /api/v1/user/logout",
		httpx.Wrap(h.Logout, userAuth, moderate))

	// Admins driving an impersonated session must still hold the
	// super-admin role at the time of the request.
	r.Mux.Handle("GET /api/v1/user/profile",
		httpx.Wrap(h.Profile, userAuth,
			r.guard.RequireImpersonatorRoles(domain.RoleSuperAdmin), moderate))
	r.Mux.Handle("POST /api/v1/user/send-email-verification",
		httpx.Wrap(h.SendEmailVerification, userAuth, moderate))

	// Only the account owner changes their own password; an admin riding an
	// impersonated session is turned away.
	r.Mux.Handle("PUT /api/v1/user/password",
		httpx.Wrap(h.ChangePassword, userAuth, NoImpersonation(), moderate))
}

func (r *Router) registerAdmins() {
	h := &AdminHandler{Admins: r.AdminService, errorSink: r.guard.errorSink}

	r.Mux.Handle("POST /api/v1/admin/login",
		httpx.Wrap(h.Login,
			httpx.RateLimitByIP(httpx.StrictLimit),
			DecryptBody(r.decryptor),
		))

	adminAuth := r.guard.AdminAuth()
	superOnly := RequireRoles(domain.RoleSuperAdmin)
	moderate := httpx.RateLimitByUser(httpx.ModerateLimit)

	r.Mux.Handle("POST /api/v1/admin/logout",
		httpx.Wrap(h.Logout, adminAuth, moderate))
	r.Mux.Handle("GET /api/v1/admin/profile",
		httpx.Wrap(h.Profile, adminAuth, moderate))

	// Account management is super-admin territory.
	r.Mux.Handle("POST /api/v1/admin/account",
		httpx.Wrap(h.CreateAccount, adminAuth, superOnly, moderate))
	r.Mux.Handle("GET /api/v1/admin/accounts",
		httpx.Wrap(h.ListAccounts, adminAuth, superOnly, moderate))
	r.Mux.Handle("GET /api/v1/admin/{adminId}/account",
		httpx.Wrap(h.GetAccount, adminAuth, superOnly, moderate))
	r.Mux.Handle("PUT /api/v1/admin/{adminId}/account/password",
		httpx.Wrap(h.UpdatePassword, adminAuth, superOnly, moderate))
	r.Mux.Handle("PUT /api/v1/admin/{adminId}/account/status",
		httpx.Wrap(h.UpdateStatus, adminAuth, superOnly, moderate))

	r.Mux.Handle("GET /api/v1/admin/users/{userId}/login-token",
		httpx.Wrap(h.UserLoginToken, adminAuth, superOnly, moderate))
	r.Mux.Handle("PUT /api/v1/admin/users/{userId}/configs",
		httpx.Wrap(h.UpdateUserStatus, adminAuth, superOnly, moderate))
}

func (r *Router) registerSystem() {
	// Token introspection for either principal kind.
	r.Mux.Handle("GET /api/v1/session",
		httpx.Wrap(SessionHandler, r.guard.CommonAuth(),
			httpx.RateLimitByUser(httpx.ModerateLimit)))

	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
