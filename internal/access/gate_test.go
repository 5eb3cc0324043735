package access_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskdeck/taskdeck/internal/access"
	"github.com/taskdeck/taskdeck/internal/shared"
	_ "github.com/taskdeck/taskdeck/testing"
)

type stubResolver struct {
	role  access.Role
	calls int
}

func (s *stubResolver) Resolve(ctx context.Context, sess *shared.Session) access.Role {
	s.calls++
	if sess == nil || sess.User() == "" {
		return access.RoleNone
	}
	return s.role
}

func sessionFor(userID string) *shared.Session {
	sess := &shared.Session{ID: "test-session"}
	if userID != "" {
		sess.SetUser(userID)
	}
	return sess
}

func serveGated(t *testing.T, gate *access.Gate, path string, sess *shared.Session) *httptest.ResponseRecorder {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sess != nil {
		req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	}
	res := httptest.NewRecorder()
	gate.Middleware(next).ServeHTTP(res, req)
	return res
}

func TestCategorize(t *testing.T) {
	cases := []struct {
		path string
		want access.Category
	}{
		{"/", access.CategoryPublic},
		{"/healthz", access.CategoryPublic},
		{"/metrics", access.CategoryPublic},
		{"/auth/login", access.CategoryAuthOnly},
		{"/auth", access.CategoryAuthOnly},
		{"/tasks", access.CategoryUserArea},
		{"/tasks/abc/toggle", access.CategoryUserArea},
		{"/admin", access.CategoryAdminArea},
		{"/admin/users", access.CategoryAdminArea},
		{"/authx", access.CategoryPublic},
		{"/tasksx", access.CategoryPublic},
	}
	for _, tc := range cases {
		if got := access.Categorize(tc.path); got != tc.want {
			t.Fatalf("categorize %s: got %v want %v", tc.path, got, tc.want)
		}
	}
}

func TestGateRedirectsAnonymousToLogin(t *testing.T) {
	gate := access.NewGate(&stubResolver{}, nil, false)

	for _, path := range []string{"/tasks", "/admin/users"} {
		res := serveGated(t, gate, path, nil)
		if res.Code != http.StatusSeeOther {
			t.Fatalf("%s: expected 303, got %d", path, res.Code)
		}
		want := "/auth/login?redirect=" + escaped(path)
		if got := res.Header().Get("Location"); got != want {
			t.Fatalf("%s: expected redirect to %s, got %s", path, want, got)
		}
	}
}

func escaped(path string) string {
	// Only the slash needs escaping in the paths exercised here.
	out := ""
	for _, r := range path {
		if r == '/' {
			out += "%2F"
			continue
		}
		out += string(r)
	}
	return out
}

func TestGateRedirectsAuthenticatedOffAuthArea(t *testing.T) {
	gate := access.NewGate(&stubResolver{role: access.RoleUser}, nil, false)

	res := serveGated(t, gate, "/auth/login", sessionFor("u1"))
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.Code)
	}
	if got := res.Header().Get("Location"); got != "/tasks" {
		t.Fatalf("expected redirect to /tasks, got %s", got)
	}
}

func TestGateKeepsLogoutReachable(t *testing.T) {
	gate := access.NewGate(&stubResolver{role: access.RoleUser}, nil, false)

	res := serveGated(t, gate, "/auth/logout", sessionFor("u1"))
	if res.Code != http.StatusOK {
		t.Fatalf("authenticated logout must reach its handler, got %d", res.Code)
	}
	if got := res.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("logout keeps the security headers, got %q", got)
	}

	// Anonymous logout passes like any other auth route.
	res = serveGated(t, gate, "/auth/logout", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("anonymous logout: expected 200, got %d", res.Code)
	}
}

func TestGateForbidsNonAdminOnAdminArea(t *testing.T) {
	gate := access.NewGate(&stubResolver{role: access.RoleUser}, nil, false)

	res := serveGated(t, gate, "/admin/users", sessionFor("u1"))
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.Code)
	}
	if got := res.Header().Get("Location"); got != "/tasks?forbidden=1" {
		t.Fatalf("expected forbidden redirect, got %s", got)
	}
}

func TestGateAllowsUserOnUserArea(t *testing.T) {
	resolver := &stubResolver{role: access.RoleUser}
	gate := access.NewGate(resolver, nil, false)

	res := serveGated(t, gate, "/tasks", sessionFor("u1"))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	headers := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"Permissions-Policy":     "camera=(), microphone=(), geolocation=()",
	}
	for name, want := range headers {
		if got := res.Header().Get(name); got != want {
			t.Fatalf("header %s: expected %q, got %q", name, want, got)
		}
	}
	if got := res.Header().Get("Strict-Transport-Security"); got != "" {
		t.Fatalf("expected no HSTS outside production, got %q", got)
	}
	// User area does not need a role; the resolver is only consulted for
	// admin routes.
	if resolver.calls != 0 {
		t.Fatalf("expected no role resolution for user area, got %d", resolver.calls)
	}
}

func TestGateAllowsAdminEverywhere(t *testing.T) {
	gate := access.NewGate(&stubResolver{role: access.RoleAdmin}, nil, false)

	for _, path := range []string{"/tasks", "/admin/users", "/admin/logs"} {
		res := serveGated(t, gate, path, sessionFor("admin-1"))
		if res.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, res.Code)
		}
	}
}

func TestGateBypassesPublicRoutes(t *testing.T) {
	gate := access.NewGate(&stubResolver{}, nil, false)

	res := serveGated(t, gate, "/healthz", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got := res.Header().Get("X-Frame-Options"); got != "" {
		t.Fatalf("public route should bypass the gate headers, got %q", got)
	}
}

func TestGateSetsHSTSInProduction(t *testing.T) {
	gate := access.NewGate(&stubResolver{role: access.RoleUser}, nil, true)

	res := serveGated(t, gate, "/tasks", sessionFor("u1"))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	want := "max-age=63072000; includeSubDomains; preload"
	if got := res.Header().Get("Strict-Transport-Security"); got != want {
		t.Fatalf("expected HSTS %q, got %q", want, got)
	}
}

func TestGateFailsClosedWithoutSession(t *testing.T) {
	// A session that could not be loaded reaches the gate as nil and must
	// land in the most restrictive branch.
	gate := access.NewGate(&stubResolver{role: access.RoleAdmin}, nil, false)

	res := serveGated(t, gate, "/admin/users", nil)
	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", res.Code)
	}
}
