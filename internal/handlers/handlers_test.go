package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/unera/backend/internal/auth"
	"github.com/unera/backend/internal/countries"
	"github.com/unera/backend/internal/graph"
	"github.com/unera/backend/internal/guard"
	"github.com/unera/backend/internal/media"
	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/music"
	"github.com/unera/backend/internal/social"
	"github.com/unera/backend/internal/store"
)

type denyLimiter struct{}

func (denyLimiter) Allow(string) bool { return false }

type countryStub struct {
	list []countries.Country
	err  error
}

func (c countryStub) List(context.Context) ([]countries.Country, error) {
	return c.list, c.err
}

type testServer struct {
	handler  http.Handler
	service  *social.Service
	sessions *auth.InMemorySessionStore
}

func newTestServer(t *testing.T, mutate func(*Dependencies)) *testServer {
	t.Helper()

	st := store.New(store.State{})
	svc := social.New(social.Deps{
		Store:        st,
		Media:        media.NewMemoryStorage("https://cdn.unera.test"),
		PasswordCost: bcrypt.MinCost,
		Now:          func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) },
	})
	sessions := auth.NewInMemorySessionStore()
	manager := auth.NewManager([]byte("test-secret"), time.Minute, time.Hour, sessions)

	deps := Dependencies{
		Logger:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Accounts:    svc,
		Posts:       svc,
		Reels:       svc,
		Groups:      svc,
		Events:      svc,
		Marketplace: svc,
		Messages:    svc,
		Sessions:    manager,
		Tokens:      manager,
		Countries:   countryStub{list: []countries.Country{{Name: "Kenya", Flag: "🇰🇪"}}},
	}
	if mutate != nil {
		mutate(&deps)
	}
	return &testServer{handler: NewRouter(deps), service: svc, sessions: sessions}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, first, email string) authResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", "", models.RegisterRequest{
		FirstName: first,
		LastName:  "Test",
		Email:     email,
		Password:  "123456",
		Location:  "Dar es Salaam, Tanzania",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201 got %d: %s", email, rec.Code, rec.Body.String())
	}
	return decode[authResponse](t, rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHealthHandlerHandle(t *testing.T) {
	handler := HealthHandler{}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected json content type got %s", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/healthz", nil)
	rec = httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected method not allowed got %d", rec.Code)
	}
}

func TestHealthHandlerReportsFailingChecks(t *testing.T) {
	handler := HealthHandler{Checks: map[string]HealthCheck{
		"state": func(context.Context) error { return nil },
		"media": func(context.Context) error { return errors.New("bucket unreachable") },
	}}

	rec := httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
	out := decode[healthResponse](t, rec)
	if out.Status != "degraded" || out.Checks["state"] != "ok" || out.Checks["media"] != "bucket unreachable" {
		t.Fatalf("unexpected health %+v", out)
	}
}

func TestRegisterLoginAndMe(t *testing.T) {
	srv := newTestServer(t, nil)
	registered := srv.register(t, "Amani", "amani@example.com")

	if registered.User == nil || registered.User.PasswordHash != "" {
		t.Fatalf("expected public user in response, got %+v", registered.User)
	}
	if registered.Tokens.AccessToken == "" || registered.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens to be issued, got %+v", registered.Tokens)
	}

	rec := srv.do(t, http.MethodPost, "/api/v1/auth/login", "", loginRequest{Email: " AMANI@example.com ", Password: "123456"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login 200 got %d: %s", rec.Code, rec.Body.String())
	}
	login := decode[authResponse](t, rec)

	rec = srv.do(t, http.MethodGet, "/api/v1/me", login.Tokens.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected me 200 got %d", rec.Code)
	}
	me := decode[models.User](t, rec)
	if me.ID != registered.User.ID || me.FirstName != "Amani" {
		t.Fatalf("unexpected me %+v", me)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.register(t, "Amani", "amani@example.com")

	rec := srv.do(t, http.MethodPost, "/api/v1/auth/login", "", loginRequest{Email: "amani@example.com", Password: "654321"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestRegisterValidationAndDuplicates(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/v1/auth/register", "", models.RegisterRequest{
		FirstName: "Amani", LastName: "Juma", Email: "amani@example.com", Password: "abc",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if resp := decode[errorResponse](t, rec); resp.Field != "password" {
		t.Fatalf("expected password field error, got %+v", resp)
	}

	srv.register(t, "Amani", "amani@example.com")
	rec = srv.do(t, http.MethodPost, "/api/v1/auth/register", "", models.RegisterRequest{
		FirstName: "Other", LastName: "Person", Email: "Amani@Example.com", Password: "123456",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email got %d", rec.Code)
	}
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	srv := newTestServer(t, nil)
	tokens := srv.register(t, "Amani", "amani@example.com").Tokens

	rec := srv.do(t, http.MethodPost, "/api/v1/auth/refresh", "", refreshRequest{RefreshToken: tokens.RefreshToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected refresh 200 got %d", rec.Code)
	}
	rotated := decode[authResponse](t, rec).Tokens
	if srv.sessions.Has(tokens.RefreshToken) {
		t.Fatal("expected old refresh token to be rotated out")
	}

	rec = srv.do(t, http.MethodPost, "/api/v1/auth/logout", "", refreshRequest{RefreshToken: rotated.RefreshToken})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected logout 204 got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, "/api/v1/auth/refresh", "", refreshRequest{RefreshToken: rotated.RefreshToken})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked token to be rejected, got %d", rec.Code)
	}
}

func TestWritesRequireSignIn(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/v1/posts", "", models.CreatePostRequest{Content: "hello"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/feed/home", "forged", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected forged token to be rejected, got %d", rec.Code)
	}
}

func TestPostLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)
	author := srv.register(t, "Amani", "amani@example.com")
	reader := srv.register(t, "Baraka", "baraka@example.com")

	rec := srv.do(t, http.MethodPost, "/api/v1/posts", author.Tokens.AccessToken, models.CreatePostRequest{Content: "Habari za asubuhi"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	post := decode[models.Post](t, rec)

	rec = srv.do(t, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/reactions", post.ID), reader.Tokens.AccessToken, reactRequest{Type: models.ReactionLove})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected react 200 got %d", rec.Code)
	}
	if got := decode[reactResponse](t, rec).Outcome; got != "added" {
		t.Fatalf("expected added outcome got %q", got)
	}

	rec = srv.do(t, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/reactions", post.ID), reader.Tokens.AccessToken, reactRequest{Type: "meh"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected invalid reaction 400 got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/comments", post.ID), reader.Tokens.AccessToken, commentRequest{Text: "Nzuri sana"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected comment 201 got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/posts/%d", post.ID), reader.Tokens.AccessToken, editPostRequest{Content: "hijacked"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected non-author edit 403 got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/feed/home", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected feed 200 got %d", rec.Code)
	}
	feedResp := decode[struct {
		Items []struct {
			ID       int64             `json:"id"`
			Comments []models.Comment  `json:"comments"`
			Reacts   []models.Reaction `json:"reactions"`
			Author   models.User       `json:"author"`
		} `json:"items"`
	}](t, rec)
	if len(feedResp.Items) != 1 || feedResp.Items[0].ID != post.ID {
		t.Fatalf("unexpected feed %+v", feedResp.Items)
	}
	if len(feedResp.Items[0].Comments) != 1 || len(feedResp.Items[0].Reacts) != 1 || feedResp.Items[0].Author.FirstName != "Amani" {
		t.Fatalf("unexpected feed item %+v", feedResp.Items[0])
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/notifications", author.Tokens.AccessToken, nil)
	notes := decode[notificationsResponse](t, rec)
	if notes.Unread != 2 || len(notes.Items) != 2 {
		t.Fatalf("expected reaction and comment notifications, got %+v", notes)
	}

	rec = srv.do(t, http.MethodPost, "/api/v1/notifications/read", author.Tokens.AccessToken, nil)
	if got := decode[markedResponse](t, rec).Marked; got != 2 {
		t.Fatalf("expected 2 marked got %d", got)
	}

	rec = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", post.ID), author.Tokens.AccessToken, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected delete 204 got %d", rec.Code)
	}
	rec = srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", post.ID), "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected deleted post 404 got %d", rec.Code)
	}
}

func TestFollowAndMessages(t *testing.T) {
	srv := newTestServer(t, nil)
	a := srv.register(t, "Amani", "amani@example.com")
	b := srv.register(t, "Baraka", "baraka@example.com")

	rec := srv.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/follow", b.User.ID), a.Tokens.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected follow 200 got %d: %s", rec.Code, rec.Body.String())
	}
	rec = srv.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/follow", a.User.ID), a.Tokens.AccessToken, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected self follow 400 got %d", rec.Code)
	}
	rec = srv.do(t, http.MethodPost, "/api/v1/users/999/follow", a.Tokens.AccessToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected unknown user 404 got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/me/contacts", a.Tokens.AccessToken, nil)
	contacts := decode[listResponse[models.User]](t, rec)
	if len(contacts.Items) != 1 || contacts.Items[0].ID != b.User.ID {
		t.Fatalf("unexpected contacts %+v", contacts.Items)
	}

	path := fmt.Sprintf("/api/v1/messages/%d", b.User.ID)
	for _, text := range []string{"Mambo?", "Uko wapi?"} {
		rec = srv.do(t, http.MethodPost, path, a.Tokens.AccessToken, sendMessageRequest{Text: text})
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected message 201 got %d", rec.Code)
		}
	}
	rec = srv.do(t, http.MethodPost, path, a.Tokens.AccessToken, sendMessageRequest{Text: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected empty message 400 got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/messages/%d", a.User.ID), b.Tokens.AccessToken, nil)
	convo := decode[listResponse[models.Message]](t, rec)
	if len(convo.Items) != 2 || convo.Items[0].Text != "Mambo?" {
		t.Fatalf("unexpected conversation %+v", convo.Items)
	}
}

func TestMarketplaceEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	seller := srv.register(t, "Amani", "amani@example.com")
	buyer := srv.register(t, "Baraka", "baraka@example.com")

	req := models.CreateProductRequest{
		Title:       "Mountain bike",
		Category:    "vehicles",
		Description: "Barely used",
		Country:     "tz",
		Address:     "Mikocheni",
		MainPrice:   350000,
		Quantity:    1,
		PhoneNumber: "+255700000000",
		Images:      []string{"https://cdn.unera.test/bike.jpg"},
	}
	rec := srv.do(t, http.MethodPost, "/api/v1/products", seller.Tokens.AccessToken, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	product := decode[models.Product](t, rec)

	req.Country = "ZZ"
	rec = srv.do(t, http.MethodPost, "/api/v1/products", seller.Tokens.AccessToken, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected unknown country 400 got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, fmt.Sprintf("/api/v1/products/%d/ratings", product.ID), seller.Tokens.AccessToken, rateRequest{Rating: 5})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected self rating 403 got %d", rec.Code)
	}
	rec = srv.do(t, http.MethodPost, fmt.Sprintf("/api/v1/products/%d/ratings", product.ID), buyer.Tokens.AccessToken, rateRequest{Rating: 9})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected out of range rating 400 got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/products?country=TZ&category=vehicles&q=BIKE", "", nil)
	listed := decode[listResponse[struct {
		ID     int64       `json:"id"`
		Seller models.User `json:"seller"`
	}]](t, rec)
	if len(listed.Items) != 1 || listed.Items[0].ID != product.ID || listed.Items[0].Seller.ID != seller.User.ID {
		t.Fatalf("unexpected listing %+v", listed.Items)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/products?country=KE", "", nil)
	if got := decode[listResponse[models.Product]](t, rec); len(got.Items) != 0 {
		t.Fatalf("expected empty listing, got %+v", got.Items)
	}
}

func TestCreateReelUploadsVideo(t *testing.T) {
	srv := newTestServer(t, nil)
	user := srv.register(t, "Amani", "amani@example.com")

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("caption", "Sunset at Coco beach"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	part, err := form.CreateFormFile("video", "sunset.MP4")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("fake-video-bytes")); err != nil {
		t.Fatalf("write video: %v", err)
	}
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reels", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+user.Tokens.AccessToken)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	reel := decode[models.Reel](t, rec)
	if reel.AssetStatus != models.AssetStatusReady || !strings.HasSuffix(reel.VideoURL, ".mp4") {
		t.Fatalf("unexpected reel %+v", reel)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/reels?limit=5", "", nil)
	if got := decode[listResponse[models.Reel]](t, rec); len(got.Items) != 1 {
		t.Fatalf("expected ready reel in feed, got %d", len(got.Items))
	}
}

func TestSubmitEndpointsAreThrottled(t *testing.T) {
	srv := newTestServer(t, func(d *Dependencies) { d.Limiter = denyLimiter{} })

	rec := srv.do(t, http.MethodPost, "/api/v1/auth/login", "", loginRequest{Email: "a@example.com", Password: "123456"})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/groups", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected reads to bypass the limiter, got %d", rec.Code)
	}
}

func TestCountriesEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := srv.do(t, http.MethodGet, "/api/v1/countries", "", nil)
	if got := decode[listResponse[countries.Country]](t, rec); len(got.Items) != 1 || got.Items[0].Name != "Kenya" {
		t.Fatalf("unexpected countries %+v", got.Items)
	}

	failing := newTestServer(t, func(d *Dependencies) { d.Countries = countryStub{err: errors.New("down")} })
	rec = failing.do(t, http.MethodGet, "/api/v1/countries", "", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/marketplace/catalog", "", nil)
	catalog := decode[catalogResponse](t, rec)
	if len(catalog.Countries) != 13 || len(catalog.Categories) == 0 {
		t.Fatalf("unexpected catalog %+v", catalog)
	}
}

func TestGroupAndEventEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	admin := srv.register(t, "Amani", "amani@example.com")
	member := srv.register(t, "Baraka", "baraka@example.com")

	rec := srv.do(t, http.MethodPost, "/api/v1/groups", admin.Tokens.AccessToken, models.CreateGroupRequest{Name: "Dar Runners"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	group := decode[models.Group](t, rec)
	groupPath := fmt.Sprintf("/api/v1/groups/%d", group.ID)

	rec = srv.do(t, http.MethodPost, groupPath+"/posts", member.Tokens.AccessToken, groupPostRequest{Content: "hello"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected non-member post 403 got %d", rec.Code)
	}
	rec = srv.do(t, http.MethodPost, groupPath+"/members", member.Tokens.AccessToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected join 200 got %d", rec.Code)
	}
	rec = srv.do(t, http.MethodPost, groupPath+"/posts", member.Tokens.AccessToken, groupPostRequest{Content: "Saturday 6am?"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected group post 201 got %d", rec.Code)
	}
	gp := decode[models.GroupPost](t, rec)

	rec = srv.do(t, http.MethodPost, fmt.Sprintf("%s/posts/%d/like", groupPath, gp.ID), admin.Tokens.AccessToken, nil)
	if got := decode[likeResponse](t, rec); !got.Liked {
		t.Fatalf("expected like, got %+v", got)
	}

	rec = srv.do(t, http.MethodGet, groupPath, "", nil)
	detail := decode[groupResponse](t, rec)
	if len(detail.Feed) != 1 || detail.Feed[0].Author.ID != member.User.ID {
		t.Fatalf("unexpected group feed %+v", detail.Feed)
	}

	rec = srv.do(t, http.MethodDelete, groupPath+"/members", admin.Tokens.AccessToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected admin leave 403 got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, "/api/v1/events", admin.Tokens.AccessToken, models.CreateEventRequest{
		Title: "Beach cleanup", Date: "2026-11-01", Time: "08:00", Location: "Coco beach",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected event 201 got %d: %s", rec.Code, rec.Body.String())
	}
	event := decode[models.Event](t, rec)

	rec = srv.do(t, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/attendees", event.ID), member.Tokens.AccessToken, nil)
	joined := decode[joinEventResponse](t, rec)
	if !joined.Joined || len(joined.Event.Attendees) != 2 {
		t.Fatalf("unexpected join %+v", joined)
	}
}

func TestRespondErrorMapsServiceErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{&models.ValidationError{Field: "title", Message: "is required"}, http.StatusBadRequest},
		{fmt.Errorf("comment post: %w", social.ErrPostNotFound), http.StatusNotFound},
		{social.ErrForbidden, http.StatusForbidden},
		{guard.ErrInFlight, http.StatusConflict},
		{social.ErrInvalidCredentials, http.StatusUnauthorized},
		{media.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		respondError(context.Background(), rec, tc.err)
		if rec.Code != tc.status {
			t.Fatalf("%v: expected %d got %d", tc.err, tc.status, rec.Code)
		}
	}
}

func TestProfilePostsListsAuthorPosts(t *testing.T) {
	srv := newTestServer(t, nil)
	author := srv.register(t, "Amani", "amani@example.com")

	rec := srv.do(t, http.MethodPost, "/api/v1/posts", author.Tokens.AccessToken, models.CreatePostRequest{Content: "Habari"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	post := decode[models.Post](t, rec)

	rec = srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d/posts", author.User.ID), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected profile posts 200 got %d: %s", rec.Code, rec.Body.String())
	}
	items := decode[listResponse[models.Post]](t, rec).Items
	if len(items) != 1 || items[0].ID != post.ID || items[0].Content != "Habari" {
		t.Fatalf("unexpected profile posts %+v", items)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/users/999/posts", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected unknown profile 404 got %d", rec.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	amani := srv.register(t, "Amani", "amani@example.com")
	srv.register(t, "Baraka", "baraka@example.com")

	rec := srv.do(t, http.MethodGet, "/api/v1/search?q=BARAKA", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected search 200 got %d", rec.Code)
	}
	results := decode[listResponse[graph.SearchResult]](t, rec).Items
	if len(results) != 1 || results[0].User.FirstName != "Baraka" || results[0].Score != graph.SearchWeightName {
		t.Fatalf("unexpected search results %+v", results)
	}
	if results[0].User.PasswordHash != "" {
		t.Fatal("expected search to return public profiles")
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/search?q=test", amani.Tokens.AccessToken, nil)
	results = decode[listResponse[graph.SearchResult]](t, rec).Items
	if len(results) != 1 || results[0].User.FirstName != "Baraka" {
		t.Fatalf("expected the viewer to be left out, got %+v", results)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/search", "", nil)
	if got := decode[listResponse[graph.SearchResult]](t, rec).Items; len(got) != 0 {
		t.Fatalf("expected empty query to match nobody, got %+v", got)
	}
}

func TestMusicEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/v1/music/songs", "", nil)
	songs := decode[listResponse[music.Song]](t, rec).Items
	if len(songs) != 5 || songs[0].ID != "s2" {
		t.Fatalf("expected songs by plays, got %+v", songs)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/music/albums/a1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected album 200 got %d", rec.Code)
	}
	if album := decode[music.AlbumView](t, rec); len(album.Songs) != 2 || album.Songs[1].ID != "s5" {
		t.Fatalf("unexpected album %+v", album)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/tracks/e2", "", nil)
	track := decode[models.AudioTrack](t, rec)
	if track.Kind != models.TrackPodcast || track.Artist != "Rob Dial" {
		t.Fatalf("unexpected episode track %+v", track)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/podcasts/p9", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected unknown podcast 404 got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodGet, "/api/v1/music/songs?q=weeknd", "", nil)
	found := decode[musicSearchResponse](t, rec)
	if len(found.Songs) != 2 || len(found.Podcasts) != 0 {
		t.Fatalf("unexpected music search %+v", found)
	}
}
