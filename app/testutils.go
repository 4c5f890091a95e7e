package main

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mirabelledev/inkwell/internal/blogservice"
	"github.com/mirabelledev/inkwell/internal/common"
	"github.com/mirabelledev/inkwell/internal/userservice"
)

// mockProducer records published messages instead of talking to a broker.
type mockProducer struct {
	mu        sync.Mutex
	published [][]byte
}

func (p *mockProducer) Publish(ctx context.Context, msg []byte, key common.BindingKey, exchange common.Exchange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, msg)
	return nil
}

func (p *mockProducer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

func newTestApplication(t *testing.T) (*application, *sql.DB, *mockProducer) {
	db := common.TestDB(t)

	templates, err := newTemplateCache()
	assert.NoError(t, err)

	cfg := &Config{
		Environment:   "testing",
		SessionSecret: "test-session-secret-not-for-production",
		DBDSN:         "postgres://unused",
	}

	producer := &mockProducer{}

	app := &application{
		config:      cfg,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		userService: userservice.NewUserService(db, common.NewCache(5*time.Minute, 10*time.Minute)),
		blogService: blogservice.NewBlogService(db),
		producer:    producer,
		templates:   templates,
	}

	return app, db, producer
}

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

// client returns a fresh HTTP client with its own cookie jar that does not
// follow redirects, so tests can assert on redirect responses directly.
func (ts *testServer) client(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}

	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func readBody(t *testing.T, res *http.Response) string {
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	return string(body)
}

func (ts *testServer) get(t *testing.T, c *http.Client, path string) (int, http.Header, string) {
	res, err := c.Get(ts.URL + path)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, readBody(t, res)
}

func (ts *testServer) postForm(t *testing.T, c *http.Client, path string, form url.Values) (int, http.Header, string) {
	res, err := c.Post(ts.URL+path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, readBody(t, res)
}

// registerUser signs up a user through the registration form, leaving the
// client logged in. The first user registered gets the admin id.
func (ts *testServer) registerUser(t *testing.T, c *http.Client, name, email, password string) {
	code, _, _ := ts.postForm(t, c, "/register", url.Values{
		"name":             {name},
		"email":            {email},
		"password":         {password},
		"confirm_password": {password},
	})

	assert.Equal(t, http.StatusSeeOther, code)
}

// createPost submits the new-post form; the client must be logged in as the
// admin.
func (ts *testServer) createPost(t *testing.T, c *http.Client, title string) {
	code, _, _ := ts.postForm(t, c, "/new-post", url.Values{
		"title":    {title},
		"subtitle": {"a subtitle"},
		"body":     {"<p>some body</p>"},
		"img_url":  {"https://example.com/cover.jpg"},
	})

	assert.Equal(t, http.StatusSeeOther, code)
}
