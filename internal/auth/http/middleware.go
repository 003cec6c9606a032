package http

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/arolux/auth-service/internal/auth/domain"
	"github.com/arolux/auth-service/internal/auth/store"
	"github.com/arolux/auth-service/pkg/httpx"
	"github.com/arolux/auth-service/pkg/jwtx"
	"github.com/arolux/auth-service/pkg/slogx"
)

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	ID    string
	Email string
	Name  string

	// Kind is "user" or "admin", matching the collection the session
	// resolved against.
	Kind string

	// Role is set for admin principals.
	Role domain.AdminRole

	// LoginAs is "admin" when an admin is driving a user session, otherwise
	// "user". Only meaningful for user principals.
	LoginAs string

	// AdminID is the impersonating admin's id when LoginAs is "admin".
	AdminID string
}

type principalKey struct{}

func withPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = context.WithValue(ctx, principalKey{}, p)
	// Feed the per-user rate limiter too.
	return context.WithValue(ctx, httpx.CtxKeyUserID, p.ID)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// guard builds the authentication middlewares. Every variant re-resolves the
// token's id+email pair against the database so revoked or deactivated
// accounts lose access without waiting for token expiry.
type guard struct {
	codec *jwtx.Codec
	store store.Store

	errorSink
}

func unauthorized(w http.ResponseWriter) {
	httpx.Fail(w, http.StatusUnauthorized, "Authentication required")
}

// UserAuth admits user sessions only, including admin-impersonated ones.
func (g *guard) UserAuth() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := g.resolveUser(w, r)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
		})
	}
}

// OptionalUserAuth attaches a principal when a valid token is present and
// lets the request through anonymously otherwise.
func (g *guard) OptionalUserAuth() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := g.codec.VerifyAccess(r.Header.Get("Authorization"))
			if err != nil || id.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			user, err := g.store.Users().GetUserByIDAndEmail(r.Context(), id.ID, id.Email)
			if err != nil || !user.Active() {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), userPrincipal(user, id))))
		})
	}
}

// AdminAuth admits admin sessions only.
func (g *guard) AdminAuth() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := g.resolveAdmin(w, r)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
		})
	}
}

// CommonAuth admits either kind of session, dispatching on the token type.
func (g *guard) CommonAuth() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := g.codec.VerifyAccess(r.Header.Get("Authorization"))
			if err != nil {
				unauthorized(w)
				return
			}

			var p Principal
			var ok bool
			if id.IsAdmin() {
				p, ok = g.loadAdmin(w, r, id)
			} else {
				p, ok = g.loadUser(w, r, id)
			}
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
		})
	}
}

// RequireRoles allows only admin principals whose role is in the list.
// Stack after AdminAuth.
func RequireRoles(roles ...domain.AdminRole) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok || p.Kind != "admin" {
				unauthorized(w)
				return
			}
			if !slices.Contains(roles, p.Role) {
				httpx.Fail(w, http.StatusForbidden, "Not authorized.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NoImpersonation blocks admin-driven user sessions. Stack after UserAuth on
// operations the account owner must perform themselves.
func NoImpersonation() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				unauthorized(w)
				return
			}
			if p.LoginAs == "admin" {
				httpx.Fail(w, http.StatusForbidden, "Not authorized.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireImpersonatorRoles gates what an admin may do through a user
// session. Genuine user sessions pass untouched; impersonated ones re-fetch
// the driving admin so a role change or deactivation since token issuance is
// honoured. Stack after UserAuth.
func (g *guard) RequireImpersonatorRoles(roles ...domain.AdminRole) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				unauthorized(w)
				return
			}

			if p.LoginAs != "admin" {
				next.ServeHTTP(w, r)
				return
			}

			admin, err := g.store.Admins().GetAdminByID(r.Context(), p.AdminID)
			if err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					g.recordError(r, err)
				}
				httpx.Fail(w, http.StatusForbidden, "Not authorized.")
				return
			}
			if !admin.IsActive || !slices.Contains(roles, admin.Role) {
				httpx.Fail(w, http.StatusForbidden, "Not authorized.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *guard) resolveUser(w http.ResponseWriter, r *http.Request) (Principal, bool) {
	id, err := g.codec.VerifyAccess(r.Header.Get("Authorization"))
	if err != nil || id.IsAdmin() {
		unauthorized(w)
		return Principal{}, false
	}
	return g.loadUser(w, r, id)
}

func (g *guard) loadUser(w http.ResponseWriter, r *http.Request, id jwtx.Identity) (Principal, bool) {
	user, err := g.store.Users().GetUserByIDAndEmail(r.Context(), id.ID, id.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(r.Context()).Error("failed to resolve user session", "error", err)
			g.recordError(r, err)
		}
		unauthorized(w)
		return Principal{}, false
	}
	if !user.Active() {
		httpx.Fail(w, http.StatusUnauthorized, "Account is deactivated")
		return Principal{}, false
	}
	return userPrincipal(user, id), true
}

func (g *guard) resolveAdmin(w http.ResponseWriter, r *http.Request) (Principal, bool) {
	id, err := g.codec.VerifyAccess(r.Header.Get("Authorization"))
	if err != nil || !id.IsAdmin() {
		unauthorized(w)
		return Principal{}, false
	}
	return g.loadAdmin(w, r, id)
}

func (g *guard) loadAdmin(w http.ResponseWriter, r *http.Request, id jwtx.Identity) (Principal, bool) {
	admin, err := g.store.Admins().GetAdminByIDAndEmail(r.Context(), id.ID, id.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(r.Context()).Error("failed to resolve admin session", "error", err)
			g.recordError(r, err)
		}
		unauthorized(w)
		return Principal{}, false
	}
	if !admin.IsActive {
		httpx.Fail(w, http.StatusUnauthorized, "Account is deactivated")
		return Principal{}, false
	}

	return Principal{
		ID:    admin.ID,
		Email: admin.Email,
		Name:  admin.Name,
		Kind:  "admin",
		Role:  admin.Role,
	}, true
}

func userPrincipal(user domain.User, id jwtx.Identity) Principal {
	loginAs := "user"
	if id.Impersonated() {
		loginAs = "admin"
	}
	return Principal{
		ID:      user.ID,
		Email:   user.Email,
		Name:    user.FirstName + " " + user.LastName,
		Kind:    "user",
		LoginAs: loginAs,
		AdminID: id.AdminID,
	}
}
