package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestClassify(t *testing.T) {
	gate := NewGate(nil, nil, nil, nil)

	tests := []struct {
		path string
		want Access
	}{
		{"/", AccessPublic},
		{"", AccessPublic},
		{"/sign-in", AccessPublic},
		{"/sign-in/", AccessPublic},
		{"/status", AccessPublic},
		{"/status/acme", AccessPublic},
		{"/statusx", AccessProtected},
		{"/api/auth/signin", AccessPublic},
		{"/api/authx", AccessProtected},
		{"/api/health", AccessPublic},
		{"/api/public/status/acme", AccessPublic},
		{"/_next/static/chunk.js", AccessPublic},
		{"/favicon.ico", AccessPublic},
		{"/dashboard", AccessProtected},
		{"/dashboard/incidents", AccessProtected},
		{"/status/../dashboard", AccessProtected},
		{"/api/incidents", AccessProtected},
		{"/logo.png", AccessProtected},
		{"/API/HEALTH", AccessPublic},
		{"/Status/Acme", AccessPublic},
		{"/DASHBOARD", AccessProtected},
		{"/Api/Incidents", AccessProtected},
	}

	for _, test := range tests {
		if got := gate.Classify(test.path); got != test.want {
			t.Fatalf("Classify(%q) = %s, want %s", test.path, got, test.want)
		}
		if again := gate.Classify(test.path); again != test.want {
			t.Fatalf("Classify(%q) not stable", test.path)
		}
	}
}

func TestClassifyCustomPublicPaths(t *testing.T) {
	gate := NewGate(nil, nil, []string{"/open/"}, nil)

	if gate.Classify("/open/things") != AccessPublic {
		t.Fatalf("sub-path of custom entry should be public")
	}
	if gate.Classify("/") != AccessProtected {
		t.Fatalf("root is public only when listed")
	}
}

func newGateApp(t *testing.T) (*fiber.App, *TokenCodec) {
	t.Helper()
	codec, _ := newTestCodec(t)
	cookies := NewSessionCookies(false)
	gate := NewGate(codec, cookies, nil, nil)

	app := fiber.New()
	app.Use(gate.Handle)
	echo := func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return c.SendString("anonymous")
		}
		return c.SendString(identity.SubjectID)
	}
	app.Get("/status", echo)
	app.Get("/dashboard", echo)
	app.Get("/api/incidents", echo)
	return app, codec
}

func TestGateRedirectsPagesWithoutSession(t *testing.T) {
	app, _ := newGateApp(t)

	for _, cookie := range []string{"", "garbage", "a.b.c"} {
		req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookie})
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != http.StatusFound {
			t.Fatalf("cookie %q: expected 302, got %d", cookie, resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/sign-in?redirect_url=%2Fdashboard" {
			t.Fatalf("cookie %q: unexpected location %q", cookie, loc)
		}
	}
}

func TestGateAnswersAPIWithUnauthorized(t *testing.T) {
	app, _ := newGateApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/incidents", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"error":"unauthorized"}` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestGateLetsPublicPathsThrough(t *testing.T) {
	app, _ := newGateApp(t)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "anonymous" {
		t.Fatalf("public path must not attach an identity, got %q", body)
	}
}

func TestGateFollowsCaseInsensitiveRouting(t *testing.T) {
	app, _ := newGateApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/STATUS", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upper-case public path: expected 200, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/Dashboard", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("mixed-case protected path: expected 302, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/API/incidents", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("upper-case API path: expected 401, got %d", resp.StatusCode)
	}
}

func TestGateForwardsIdentity(t *testing.T) {
	app, codec := newGateApp(t)

	for _, subject := range []string{"u-1", "demo-user-2"} {
		token, _, err := codec.Issue(Identity{SubjectID: subject, Email: "a@b.co"})
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}

		byCookie := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		byCookie.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
		byHeader := httptest.NewRequest(http.MethodGet, "/api/incidents", nil)
		byHeader.Header.Set("Authorization", "Bearer "+token)

		for _, req := range []*http.Request{byCookie, byHeader} {
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("%s %s: expected 200, got %d", subject, req.URL.Path, resp.StatusCode)
			}
			body, _ := io.ReadAll(resp.Body)
			if string(body) != subject {
				t.Fatalf("expected identity %q, got %q", subject, body)
			}
		}
	}
}

func TestSignInRedirect(t *testing.T) {
	if got := SignInRedirect("/dashboard/incidents?tab=open"); got != "/sign-in?redirect_url=%2Fdashboard%2Fincidents%3Ftab%3Dopen" {
		t.Fatalf("unexpected redirect %q", got)
	}
}
