package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"equiptrack/internal/repos"
)

func TestPasswordsSeededAreHashed(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	var hashes []string
	if err := db.Select(&hashes, `SELECT password_hash FROM users`); err != nil {
		t.Fatalf("select hashes: %v", err)
	}
	if len(hashes) == 0 {
		t.Fatal("no users seeded")
	}
	for _, h := range hashes {
		if strings.Contains(h, seedPassword) {
			t.Fatalf("hash contains plaintext password")
		}
		if !strings.HasPrefix(h, "$2") {
			t.Fatalf("unexpected hash format: %s", h)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(h), []byte(seedPassword)); err != nil {
			t.Fatalf("seed hash does not validate known password: %v", err)
		}
	}
}

func TestLoginSuccessFailInactiveAndThrottle(t *testing.T) {
	ta := newTestApp(t)
	cl := ta.client()

	attempt := func(email, pw string) *http.Response {
		return cl.post("/login", url.Values{"email": {email}, "password": {pw}})
	}

	var bad, inactive *http.Response
	entries := captureLogs(t, func() {
		bad = attempt("alice@equiptrack.test", "wrongpass!")
		inactive = attempt("bob@equiptrack.test", seedPassword)
	})
	if bad.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad creds, got %d", bad.StatusCode)
	}
	if b := body(bad); !strings.Contains(b, "Invalid email or password") {
		t.Fatalf("bad creds page missing message: %s", b)
	}
	if inactive.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for inactive account, got %d", inactive.StatusCode)
	}
	if b := body(inactive); !strings.Contains(b, "This account is deactivated") {
		t.Fatalf("inactive page missing message: %s", b)
	}
	fail := findLog(entries, "auth.login.fail")
	if fail == nil || fail.Category != "security" || fail.Level != "warn" {
		t.Fatalf("expected security log for failed login, got %+v", entries)
	}
	for _, e := range entries {
		if _, ok := e.Fields["password"]; ok {
			t.Fatalf("password leaked into logs: %+v", e)
		}
	}

	good := attempt("alice@equiptrack.test", seedPassword)
	if good.StatusCode != http.StatusFound || good.Header.Get("Location") != "/" {
		t.Fatalf("expected redirect to / on success, got %d %q", good.StatusCode, good.Header.Get("Location"))
	}
	if home := cl.get("/"); home.StatusCode != http.StatusOK {
		t.Fatalf("dashboard after login: got %d", home.StatusCode)
	}

	// five attempts per window; this is the fourth and fifth
	attempt("alice@equiptrack.test", "wrongpass!")
	attempt("alice@equiptrack.test", "wrongpass!")
	if sixth := attempt("alice@equiptrack.test", seedPassword); sixth.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after throttle, got %d", sixth.StatusCode)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	ta := newTestApp(t)
	cl := ta.client()
	cl.login("alice@equiptrack.test")
	sid := cl.jar["sid"]

	resp := cl.post("/logout", nil)
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/login" {
		t.Fatalf("logout: got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if n := ta.count(`SELECT COUNT(*) FROM sessions WHERE id=? AND user_id IS NOT NULL`, sid); n != 0 {
		t.Fatalf("session still bound to a user")
	}
	cl.jar["sid"] = sid
	if r := cl.get("/equipment"); r.StatusCode != http.StatusFound || r.Header.Get("Location") != "/login" {
		t.Fatalf("old sid still accepted: %d", r.StatusCode)
	}
}

func TestPagesRequireLogin(t *testing.T) {
	ta := newTestApp(t)
	cl := ta.client()
	for _, p := range []string{"/", "/equipment", "/store/1", "/assignment/new", "/user"} {
		resp := cl.get(p)
		if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/login" {
			t.Fatalf("GET %s anonymously: got %d %q", p, resp.StatusCode, resp.Header.Get("Location"))
		}
	}
}
