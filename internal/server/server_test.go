package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blogsmith/internal/config"
	"blogsmith/internal/core"
	"blogsmith/internal/email"
	"blogsmith/internal/llm"
	"blogsmith/internal/store"
)

const modelResponse = `{
	"title": "Understanding Myopia in Children",
	"slug": "Understanding Myopia In Children!!",
	"excerpt": "Why nearsightedness is rising in kids and what parents can do.",
	"metaDescription": "Learn why childhood myopia is increasing and the treatments that slow it down.",
	"content": "## A Growing Concern\n\nMyopia now affects a large share of school-age children.",
	"bibliography": "AAO. \"Myopia in Children.\" 2024.",
	"instagramCaption": "Is your child squinting at the board?",
	"instagramCarouselSlides": ["Slide one", "Slide two", "Slide three"],
	"featuredImageSuggestion": "Child at an eye exam"
}`

// mockClient stands in for the model provider.
type mockClient struct {
	response string
	err      error
	model    string
}

func (m *mockClient) GenerateText(ctx context.Context, system, user string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockClient) Info() core.ModelInfo {
	model := m.model
	if model == "" {
		model = "mock-model"
	}
	return core.ModelInfo{Provider: "mock", Model: model}
}

// captureNotifier records the last draft notification.
type captureNotifier struct {
	last *email.Notification
	err  error
}

func (c *captureNotifier) SendDraftNotification(ctx context.Context, n email.Notification) error {
	if c.err != nil {
		return c.err
	}
	c.last = &n
	return nil
}

func testConfig(authMode, secret string) *config.Config {
	return &config.Config{
		AI: config.AI{Provider: "zai"},
		Server: config.Server{
			Host:           "127.0.0.1",
			Port:           0,
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   60 * time.Second,
			RequestTimeout: 60 * time.Second,
			AuthMode:       authMode,
			APISecret:      secret,
		},
		Site: config.Site{
			BaseURL:   "https://www.thenycoptometrist.com",
			AdminPath: "/admin/collections/blog-posts",
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, sender Notifier) (*Server, *store.Store) {
	t.Helper()

	st, err := store.NewStore(t.TempDir(), 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	s := New(st, sender, cfg)
	s.newClient = func(aiCfg config.AI) (llm.Client, error) {
		return &mockClient{response: modelResponse, model: aiCfg.Model}, nil
	}
	return s, st
}

func doJSON(t *testing.T, s *Server, req *http.Request, want int) map[string]any {
	t.Helper()

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != want {
		t.Fatalf("%s %s = %d, want %d; body: %s", req.Method, req.URL.Path, rec.Code, want, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Response is not JSON: %v", err)
	}
	return body
}

func TestGenerateRequiresAuth(t *testing.T) {
	s, _ := newTestServer(t, testConfig(config.AuthModeToken, "s3cret"), nil)

	req := httptest.NewRequest("POST", "/api/blog/generate", strings.NewReader("{}"))
	doJSON(t, s, req, http.StatusUnauthorized)

	req = httptest.NewRequest("POST", "/api/blog/generate", strings.NewReader("{}"))
	req.Header.Set("Authorization", "Bearer wrong")
	doJSON(t, s, req, http.StatusUnauthorized)

	req = httptest.NewRequest("POST", "/api/blog/generate", strings.NewReader("{}"))
	req.Header.Set("Authorization", "Bearer s3cret")
	body := doJSON(t, s, req, http.StatusOK)
	if body["success"] != true {
		t.Errorf("Authorized request should succeed: %v", body)
	}
}

func TestGenerateSuccess(t *testing.T) {
	s, st := newTestServer(t, testConfig(config.AuthModeOpen, ""), nil)

	req := httptest.NewRequest("POST", "/api/blog/generate", strings.NewReader(`{"topic": "Myopia Management"}`))
	body := doJSON(t, s, req, http.StatusOK)

	if body["success"] != true {
		t.Fatalf("Response not successful: %v", body)
	}
	if !strings.HasPrefix(body["requestId"].(string), "blog-gen-") {
		t.Errorf("requestId = %v", body["requestId"])
	}
	if body["emailSent"] != false {
		t.Error("emailSent should be false without a configured sender")
	}

	draft := body["draft"].(map[string]any)
	if draft["slug"] != "understanding-myopia-in-children" {
		t.Errorf("Slug not normalized: %v", draft["slug"])
	}
	if draft["topicCategory"] != "Myopia Management" {
		t.Errorf("topicCategory = %v", draft["topicCategory"])
	}
	if !strings.Contains(draft["adminUrl"].(string), draft["id"].(string)) {
		t.Errorf("adminUrl should point at the draft: %v", draft["adminUrl"])
	}

	// The draft exists in the store.
	post, err := st.GetPost(draft["id"].(string))
	if err != nil {
		t.Fatalf("Stored draft not found: %v", err)
	}
	if post.Status != core.StatusDraft {
		t.Errorf("Stored status = %q", post.Status)
	}
}

func TestGenerateUnknownTopic(t *testing.T) {
	s, _ := newTestServer(t, testConfig(config.AuthModeOpen, ""), nil)

	req := httptest.NewRequest("POST", "/api/blog/generate", strings.NewReader(`{"topic": "Astrology"}`))
	body := doJSON(t, s, req, http.StatusBadRequest)

	if body["success"] != false {
		t.Errorf("Response should report failure: %v", body)
	}
	if !strings.Contains(body["error"].(string), "Myopia Management") {
		t.Errorf("Error should list valid categories: %v", body["error"])
	}
}

func TestGenerateMalformedBody(t *testing.T) {
	s, _ := newTestServer(t, testConfig(config.AuthModeOpen, ""), nil)

	req := httptest.NewRequest("POST", "/api/blog/generate", strings.NewReader("{not json"))
	doJSON(t, s, req, http.StatusBadRequest)

	// An empty body generates on a random topic.
	req = httptest.NewRequest("POST", "/api/blog/generate", strings.NewReader(""))
	doJSON(t, s, req, http.StatusOK)
}

func TestGenerateSendsEmail(t *testing.T) {
	notifier := &captureNotifier{}
	s, _ := newTestServer(t, testConfig(config.AuthModeOpen, ""), notifier)

	req := httptest.NewRequest("POST", "/api/blog/generate", strings.NewReader(`{"topic": "dry eyes"}`))
	body := doJSON(t, s, req, http.StatusOK)

	if body["emailSent"] != true {
		t.Errorf("emailSent = %v", body["emailSent"])
	}
	if notifier.last == nil {
		t.Fatal("Notification was not sent")
	}
	if !strings.Contains(notifier.last.PublishURL, "/api/blog/publish?id=") {
		t.Errorf("PublishURL = %q", notifier.last.PublishURL)
	}
	if !strings.Contains(notifier.last.PublishURL, "token=") {
		t.Error("PublishURL should carry the publish token")
	}
}

func TestGenerateEmailFailureStillSucceeds(t *testing.T) {
	notifier := &captureNotifier{err: context.DeadlineExceeded}
	s, _ := newTestServer(t, testConfig(config.AuthModeOpen, ""), notifier)

	req := httptest.NewRequest("POST", "/api/blog/generate", nil)
	body := doJSON(t, s, req, http.StatusOK)

	if body["success"] != true {
		t.Errorf("Generation should succeed even when email fails: %v", body)
	}
	if body["emailSent"] != false {
		t.Errorf("emailSent = %v", body["emailSent"])
	}
}

func TestGenerateSkipEmail(t *testing.T) {
	notifier := &captureNotifier{}
	s, _ := newTestServer(t, testConfig(config.AuthModeOpen, ""), notifier)

	req := httptest.NewRequest("POST", "/api/blog/generate", strings.NewReader(`{"sendEmail": false}`))
	body := doJSON(t, s, req, http.StatusOK)

	if body["emailSent"] != false {
		t.Errorf("emailSent = %v", body["emailSent"])
	}
	if notifier.last != nil {
		t.Error("Notifier should not have been called")
	}
}

func TestPublishFlow(t *testing.T) {
	s, st := newTestServer(t, testConfig(config.AuthModeOpen, ""), nil)

	draft, err := st.CreateDraft(core.BlogPost{Title: "Publish Me", Slug: "publish-me"})
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET",
		"/api/blog/publish?id="+draft.ID+"&token="+draft.PublishToken, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Publish = %d; body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Blog Post Published!") {
		t.Error("Success page missing confirmation")
	}
	if !strings.Contains(rec.Body.String(), "/blog/publish-me") {
		t.Error("Success page should link to the published post")
	}

	// The link is single-use.
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET",
		"/api/blog/publish?id="+draft.ID+"&token="+draft.PublishToken, nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Replay = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already been published") {
		t.Errorf("Replay page: %s", rec.Body.String())
	}
}

func TestPublishMissingParams(t *testing.T) {
	s, _ := newTestServer(t, testConfig(config.AuthModeOpen, ""), nil)

	for _, path := range []string{
		"/api/blog/publish",
		"/api/blog/publish?id=abc",
		"/api/blog/publish?token=def",
	} {
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s = %d, want 400", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Missing required parameters") {
			t.Errorf("GET %s body: %s", path, rec.Body.String())
		}
	}
}

func TestPublishUnknownPost(t *testing.T) {
	s, _ := newTestServer(t, testConfig(config.AuthModeOpen, ""), nil)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/blog/publish?id=nope&token=tok", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Unknown post = %d, want 404", rec.Code)
	}
}

func TestListPostsHidesTokens(t *testing.T) {
	s, st := newTestServer(t, testConfig(config.AuthModeOpen, ""), nil)

	draft, err := st.CreateDraft(core.BlogPost{Title: "Secret Draft", Slug: "secret-draft"})
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/blog/posts", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("List = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), draft.PublishToken) {
		t.Error("Publish token must not appear in API responses")
	}

	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/blog/posts/"+draft.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Get = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), draft.PublishToken) {
		t.Error("Publish token must not appear in API responses")
	}
}

func TestGetPostNotFound(t *testing.T) {
	s, _ := newTestServer(t, testConfig(config.AuthModeOpen, ""), nil)

	req := httptest.NewRequest("GET", "/api/blog/posts/missing", nil)
	doJSON(t, s, req, http.StatusNotFound)
}

func TestGenerateDocs(t *testing.T) {
	s, _ := newTestServer(t, testConfig(config.AuthModeToken, "s3cret"), nil)

	// Docs are readable without auth.
	req := httptest.NewRequest("GET", "/api/blog/generate", nil)
	body := doJSON(t, s, req, http.StatusOK)

	topicsList, ok := body["availableTopics"].([]any)
	if !ok || len(topicsList) != 9 {
		t.Errorf("availableTopics = %v", body["availableTopics"])
	}
}

func TestHealthAndStatus(t *testing.T) {
	s, st := newTestServer(t, testConfig(config.AuthModeOpen, ""), nil)

	req := httptest.NewRequest("GET", "/health", nil)
	body := doJSON(t, s, req, http.StatusOK)
	if body["status"] != "ok" {
		t.Errorf("Health status = %v", body["status"])
	}

	if _, err := st.CreateDraft(core.BlogPost{Title: "T", Slug: "t"}); err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}

	req = httptest.NewRequest("GET", "/api/status", nil)
	body = doJSON(t, s, req, http.StatusOK)
	if body["drafts"].(float64) != 1 {
		t.Errorf("Status drafts = %v", body["drafts"])
	}
}
