package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"equiptrack/internal/config"
	"equiptrack/internal/http/handlers"
	applog "equiptrack/internal/log"
	"equiptrack/internal/metrics"
	"equiptrack/internal/repos"
)

const seedPassword = repos.SeedPassword

func testConfig() config.Config {
	return config.Config{
		TemplatesDir: "../../web/templates",
		StaticDir:    "../../web/static",
		LowStock:     5,
		PageSize:     10,
		SessionTTL:   time.Hour,
	}
}

type testApp struct {
	t   *testing.T
	app *fiber.App
	db  *sqlx.DB
	m   *metrics.Metrics
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	m := metrics.New()
	return &testApp{t: t, app: handlers.NewApp(db, testConfig(), m), db: db, m: m}
}

// client is a browser stand-in: it keeps cookies between requests and adds
// the CSRF token to every form it posts.
type client struct {
	ta  *testApp
	jar map[string]string
}

func (ta *testApp) client() *client {
	cl := &client{ta: ta, jar: map[string]string{}}
	cl.get("/login")
	if cl.jar["csrf_"] == "" {
		ta.t.Fatal("csrf cookie missing after GET /login")
	}
	return cl
}

func (cl *client) send(req *http.Request) *http.Response {
	cl.ta.t.Helper()
	for k, v := range cl.jar {
		req.AddCookie(&http.Cookie{Name: k, Value: v})
	}
	resp, err := cl.ta.app.Test(req, -1)
	if err != nil {
		cl.ta.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	for _, c := range resp.Cookies() {
		if c.Value == "" || (!c.Expires.IsZero() && c.Expires.Before(time.Now())) {
			delete(cl.jar, c.Name)
			continue
		}
		cl.jar[c.Name] = c.Value
	}
	return resp
}

func (cl *client) get(path string) *http.Response {
	return cl.send(httptest.NewRequest(http.MethodGet, path, nil))
}

func (cl *client) post(path string, form url.Values) *http.Response {
	if form == nil {
		form = url.Values{}
	}
	if form.Get("csrf") == "" {
		form.Set("csrf", cl.jar["csrf_"])
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.send(req)
}

func (cl *client) login(email string) {
	cl.ta.t.Helper()
	resp := cl.post("/login", url.Values{"email": {email}, "password": {seedPassword}})
	if resp.StatusCode != http.StatusFound {
		cl.ta.t.Fatalf("login %s: expected 302, got %d", email, resp.StatusCode)
	}
	if cl.jar["sid"] == "" {
		cl.ta.t.Fatalf("login %s: no sid cookie", email)
	}
}

// follow posts a form, expects a 303 and returns the page it redirects to.
func (cl *client) follow(path string, form url.Values) (string, string) {
	cl.ta.t.Helper()
	resp := cl.post(path, form)
	if resp.StatusCode != http.StatusSeeOther {
		cl.ta.t.Fatalf("POST %s: expected 303, got %d: %s", path, resp.StatusCode, body(resp))
	}
	loc := resp.Header.Get("Location")
	page := cl.get(loc)
	return loc, body(page)
}

func body(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func (ta *testApp) count(query string, args ...any) int {
	ta.t.Helper()
	var n int
	if err := ta.db.Get(&n, query, args...); err != nil {
		ta.t.Fatalf("%s: %v", query, err)
	}
	return n
}

type logEntry struct {
	Level    string         `json:"level"`
	Category string         `json:"category"`
	Action   string         `json:"action"`
	Fields   map[string]any `json:"fields"`
}

type lockedWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

// captureLogs redirects the application logger while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	w := &lockedWriter{}
	applog.SetOutput(w)
	defer applog.SetOutput(os.Stdout)

	fn()

	w.mu.Lock()
	defer w.mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(w.buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) *logEntry {
	for i := range entries {
		if entries[i].Action == action {
			return &entries[i]
		}
	}
	return nil
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
