package access

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/unrolled/secure"

	"github.com/taskdeck/taskdeck/internal/shared"
)

// RoleResolver is satisfied by *Resolver.
type RoleResolver interface {
	Resolve(ctx context.Context, sess *shared.Session) Role
}

// GateMetrics counts gate outcomes. Optional.
type GateMetrics interface {
	ObserveGateDecision(category, decision string)
}

// Gate intercepts every request before its route handler runs and decides
// allow, redirect-to-login or redirect-forbidden. Public routes bypass the
// gate entirely.
type Gate struct {
	resolver RoleResolver
	logger   *slog.Logger
	headers  *secure.Secure
	metrics  GateMetrics
}

// NewGate constructs the route gate. HSTS is attached in production only.
func NewGate(resolver RoleResolver, logger *slog.Logger, production bool) *Gate {
	opts := secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		PermissionsPolicy:  "camera=(), microphone=(), geolocation=()",
	}
	if production {
		opts.STSSeconds = 63072000
		opts.STSIncludeSubdomains = true
		opts.STSPreload = true
		opts.ForceSTSHeader = true
	}
	return &Gate{
		resolver: resolver,
		logger:   logger,
		headers:  secure.New(opts),
	}
}

// WithMetrics attaches a decision counter to the gate.
func (g *Gate) WithMetrics(metrics GateMetrics) *Gate {
	g.metrics = metrics
	return g
}

// Categorize maps a request path to its route category. Anything outside the
// three guarded prefixes is public and never reaches the gate logic.
func Categorize(path string) Category {
	switch {
	case path == "/auth" || strings.HasPrefix(path, "/auth/"):
		return CategoryAuthOnly
	case path == "/tasks" || strings.HasPrefix(path, "/tasks/"):
		return CategoryUserArea
	case path == "/admin" || strings.HasPrefix(path, "/admin/"):
		return CategoryAdminArea
	}
	return CategoryPublic
}

// Middleware runs the per-request authorization state machine. A session that
// failed to load upstream arrives here as nil and is treated as absent, so a
// broken identity provider degrades to the most restrictive branch.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		category := Categorize(r.URL.Path)
		if category == CategoryPublic {
			next.ServeHTTP(w, r)
			return
		}

		sess := shared.SessionFromContext(r.Context())
		authenticated := sess != nil && sess.User() != ""

		switch category {
		case CategoryAuthOnly:
			// Sign-out must stay reachable for the sessions it ends.
			if authenticated && r.URL.Path != LogoutPath {
				g.observe(category, "redirect_landing")
				http.Redirect(w, r, UserLandingPath, http.StatusSeeOther)
				return
			}
		case CategoryUserArea, CategoryAdminArea:
			if !authenticated {
				g.observe(category, "redirect_login")
				target := LoginPath + "?redirect=" + url.QueryEscape(r.URL.Path)
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			if category == CategoryAdminArea {
				if role := g.resolver.Resolve(r.Context(), sess); role != RoleAdmin {
					g.observe(category, "redirect_forbidden")
					http.Redirect(w, r, UserLandingPath+"?forbidden=1", http.StatusSeeOther)
					return
				}
			}
		}
		g.observe(category, "allow")

		if err := g.headers.Process(w, r); err != nil {
			if g.logger != nil {
				g.logger.Warn("secure headers blocked request", slog.Any("error", err))
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) observe(category Category, decision string) {
	if g.metrics == nil {
		return
	}
	g.metrics.ObserveGateDecision(category.String(), decision)
}
