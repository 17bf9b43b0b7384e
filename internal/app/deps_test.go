package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/unera/backend/internal/config"
	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/persist"
	"github.com/unera/backend/internal/social"
)

const testSeed = `[
  {"id": 1, "firstName": "Ada", "lastName": "Admin", "email": "Admin@Unera.app ", "password": "123456", "role": "admin"},
  {"id": 2, "name": "Bo", "email": "bo@unera.app", "password": "654321", "follows": [1]},
  {"id": 3, "name": "Cy", "follows": [1, 2]}
]`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSeed(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func TestParseSeedHashesPasswordsAndLinksFollows(t *testing.T) {
	users, err := parseSeed(strings.NewReader(testSeed), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("parse seed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users got %d", len(users))
	}

	admin := users[0]
	if admin.Email != "admin@unera.app" || admin.Name != "Ada Admin" || admin.Role != "admin" {
		t.Fatalf("unexpected admin %+v", admin)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("123456")); err != nil {
		t.Fatalf("expected hashed password: %v", err)
	}
	if users[2].PasswordHash != "" {
		t.Fatal("expected no hash for user without password")
	}
	if users[2].Role != "user" || users[2].ProfileImage == "" {
		t.Fatalf("expected defaults, got %+v", users[2])
	}

	if !slices.Equal(admin.Followers, []int64{2, 3}) {
		t.Fatalf("unexpected admin followers %v", admin.Followers)
	}
	if !slices.Equal(users[1].Following, []int64{1}) || !slices.Equal(users[1].Followers, []int64{3}) {
		t.Fatalf("unexpected edges for user 2: %+v", users[1])
	}
	if !slices.Equal(users[2].Following, []int64{1, 2}) || len(users[2].Followers) != 0 {
		t.Fatalf("unexpected edges for user 3: %+v", users[2])
	}
}

func TestParseSeedRejectsInvalidRosters(t *testing.T) {
	cases := map[string]string{
		"duplicateID":    `[{"id": 1, "name": "a"}, {"id": 1, "name": "b"}]`,
		"duplicateEmail": `[{"id": 1, "email": "x@unera.app"}, {"id": 2, "email": "X@unera.app"}]`,
		"zeroID":         `[{"id": 0, "name": "a"}]`,
		"badPassword":    `[{"id": 1, "password": "abc"}]`,
		"selfFollow":     `[{"id": 1, "follows": [1]}]`,
		"unknownFollow":  `[{"id": 1, "follows": [9]}]`,
		"notJSON":        `{`,
	}
	for name, seed := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parseSeed(strings.NewReader(seed), bcrypt.MinCost); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadRosterPrefersPersistedState(t *testing.T) {
	ctx := context.Background()
	kv := persist.NewMemoryKV()
	state := persist.NewLocalState(kv)
	if err := state.SaveUsers(ctx, nil); err != nil {
		t.Fatalf("save users: %v", err)
	}

	users, err := loadRoster(ctx, state, writeSeed(t, testSeed), discardLogger())
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("expected persisted empty roster, got %d users", len(users))
	}
}

func TestLoadRosterFallsBackToSeed(t *testing.T) {
	ctx := context.Background()
	kv := persist.NewMemoryKV()
	if err := kv.Set(ctx, persist.UsersKey, []byte("not json")); err != nil {
		t.Fatalf("set: %v", err)
	}
	state := persist.NewLocalState(kv)

	users, err := loadRoster(ctx, state, writeSeed(t, `[{"id": 7, "name": "Seeded"}]`), discardLogger())
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}
	if len(users) != 1 || users[0].ID != 7 {
		t.Fatalf("unexpected roster %+v", users)
	}

	stored, err := state.Users(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(stored) != 1 || stored[0].Name != "Seeded" {
		t.Fatalf("expected seed roster to be persisted, got %+v", stored)
	}
}

func TestLoadRosterWithoutSeedFile(t *testing.T) {
	state := persist.NewLocalState(persist.NewMemoryKV())
	users, err := loadRoster(context.Background(), state, filepath.Join(t.TempDir(), "missing.json"), discardLogger())
	if err != nil {
		t.Fatalf("load roster: %v", err)
	}
	if users != nil {
		t.Fatalf("expected empty roster, got %+v", users)
	}
}

type failingKV struct{ persist.KV }

func (failingKV) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func TestLoadRosterPropagatesBackendErrors(t *testing.T) {
	state := persist.NewLocalState(failingKV{})
	if _, err := loadRoster(context.Background(), state, "", discardLogger()); err == nil {
		t.Fatal("expected backend error")
	}
}

func TestBuildDependenciesWithMemoryBackend(t *testing.T) {
	cfg := config.Config{
		StateBackend:     config.BackendMemory,
		SeedFile:         writeSeed(t, `[{"id": 1, "name": "Ada", "email": "ada@unera.app"}]`),
		ContentSeedFile:  writeSeed(t, `{"posts": [{"id": 5, "authorId": 1, "content": "seeded", "timestamp": "1h"}]}`),
		CountriesURL:     "http://127.0.0.1:0/countries",
		CountriesTimeout: time.Second,
		CountriesTTL:     time.Minute,
		TokenSecret:      "test-secret",
		AccessTTL:        time.Minute,
		RefreshTTL:       time.Hour,
		IngestWorkers:    1,
		IngestQueue:      1,
		StoryTTL:         time.Hour,
		SubmitRate:       10,
		SubmitBurst:      10,
		AllowedOrigins:   []string{"*"},
	}

	rt, err := buildDependencies(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("build dependencies: %v", err)
	}
	if rt.handler == nil || rt.service == nil || rt.ingestor == nil || rt.loader == nil {
		t.Fatalf("expected wired runtime, got %+v", rt)
	}
	if _, ok := rt.service.User(1); !ok {
		t.Fatal("expected seeded user to be loaded")
	}

	rec := httptest.NewRecorder()
	rt.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/posts/5", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "seeded") {
		t.Fatalf("expected seeded post to be served, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	rt.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected health ok, got %d", rec.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rt.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestStateCheck(t *testing.T) {
	ctx := context.Background()
	if err := stateCheck(persist.NewMemoryKV())(ctx); err != nil {
		t.Fatalf("expected empty state to be healthy: %v", err)
	}
	if err := stateCheck(failingKV{})(ctx); err == nil {
		t.Fatal("expected failing backend to be unhealthy")
	}
}

func TestBuildDependenciesRejectsUnreachableNATS(t *testing.T) {
	cfg := config.Config{
		StateBackend: config.BackendMemory,
		NATSURL:      "nats://127.0.0.1:1",
	}
	if _, err := buildDependencies(context.Background(), cfg, discardLogger()); err == nil {
		t.Fatal("expected nats connection error")
	}
}

func TestMigrationHelpers(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.sql", "0001_a.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "seeds"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := migrationFiles(dir)
	if err != nil {
		t.Fatalf("migration files: %v", err)
	}
	if !slices.Equal(files, []string{"0001_a.sql", "0002_b.sql"}) {
		t.Fatalf("unexpected files %v", files)
	}

	pending := pendingMigrations(files, map[string]struct{}{"0001_a.sql": {}})
	if !slices.Equal(pending, []string{"0002_b.sql"}) {
		t.Fatalf("unexpected pending %v", pending)
	}

	if migrationBackoff(0) != 0 || migrationBackoff(1) != migrationBaseBackoff || migrationBackoff(2) != 2*migrationBaseBackoff {
		t.Fatal("unexpected backoff progression")
	}
	if migrationBackoff(20) != migrationMaxBackoff {
		t.Fatalf("expected backoff cap, got %v", migrationBackoff(20))
	}
}

func TestShouldRetryMigration(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "serialization", err: fmt.Errorf("apply: %w", &pgconn.PgError{Code: "40001"}), want: true},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, want: true},
		{name: "syntax", err: &pgconn.PgError{Code: "42601"}, want: false},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "txClosed", err: pgx.ErrTxClosed, want: true},
		{name: "other", err: errors.New("boom"), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldRetryMigration(tc.err); got != tc.want {
				t.Fatalf("shouldRetryMigration(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestParseContentResolvesAgesAndDerivedFields(t *testing.T) {
	users, err := parseSeed(strings.NewReader(testSeed), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("parse seed: %v", err)
	}
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	content := `{
	  "posts": [{"id": 4, "authorId": 2, "content": "hi", "timestamp": "2h",
	    "reactions": [{"userId": 3, "type": "love"}],
	    "comments": [{"id": 1, "userId": 3, "text": "nice", "timestamp": "1w", "likes": 9, "likedBy": [1, 2]}]}],
	  "stories": [{"id": 1, "userId": 3, "image": "s.jpg", "age": "30m"}],
	  "reels": [{"id": 2, "userId": 2, "videoUrl": "r.mp4", "age": "1d"}],
	  "events": [{"id": 1, "organizerId": 2, "title": "Meetup", "inDays": 2, "attendees": [3]}],
	  "groups": [{"id": 1, "name": "Tech", "adminId": 3, "members": [2]}]
	}`

	st, err := parseContent(strings.NewReader(content), users, now)
	if err != nil {
		t.Fatalf("parse content: %v", err)
	}

	post := st.Posts[0]
	if !post.CreatedAt.Equal(now.Add(-2*time.Hour)) || post.Label != "2h" || post.Visibility != "Public" {
		t.Fatalf("unexpected post %+v", post)
	}
	comment := post.Comments[0]
	if comment.Likes != 2 || !comment.CreatedAt.Equal(now.Add(-7*24*time.Hour)) {
		t.Fatalf("expected like count from likers and a week-old comment, got %+v", comment)
	}
	if !st.Stories[0].CreatedAt.Equal(now.Add(-30 * time.Minute)) {
		t.Fatalf("unexpected story time %v", st.Stories[0].CreatedAt)
	}
	reel := st.Reels[0]
	if reel.AssetStatus != "ready" || reel.Views != social.ReelViews(2) || reel.Reactions == nil {
		t.Fatalf("unexpected reel %+v", reel)
	}
	event := st.Events[0]
	if event.Date != "2026-10-21" || !slices.Equal(event.Attendees, []int64{2, 3}) {
		t.Fatalf("unexpected event %+v", event)
	}
	group := st.Groups[0]
	if !slices.Equal(group.Members, []int64{3, 2}) || group.Type != "public" || group.Posts == nil {
		t.Fatalf("unexpected group %+v", group)
	}
}

func TestParseContentRejectsInvalidContent(t *testing.T) {
	users := []models.User{{ID: 1}, {ID: 2}}
	cases := map[string]string{
		"unknownAuthor":   `{"posts": [{"id": 1, "authorId": 9}]}`,
		"unknownReactor":  `{"reels": [{"id": 1, "userId": 1, "reactions": [{"userId": 7, "type": "like"}]}]}`,
		"badReaction":     `{"posts": [{"id": 1, "authorId": 1, "reactions": [{"userId": 2, "type": "meh"}]}]}`,
		"duplicatePost":   `{"posts": [{"id": 1, "authorId": 1}, {"id": 1, "authorId": 2}]}`,
		"zeroStory":       `{"stories": [{"id": 0, "userId": 1}]}`,
		"badAge":          `{"stories": [{"id": 1, "userId": 1, "age": "2y"}]}`,
		"unknownLiker":    `{"posts": [{"id": 1, "authorId": 1, "comments": [{"id": 1, "userId": 2, "likedBy": [5]}]}]}`,
		"unknownAttendee": `{"events": [{"id": 1, "organizerId": 1, "attendees": [3]}]}`,
		"unknownMember":   `{"groups": [{"id": 1, "adminId": 1, "members": [4]}]}`,
		"badVisibility":   `{"posts": [{"id": 1, "authorId": 1, "visibility": "Everyone"}]}`,
		"notJSON":         `[`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parseContent(strings.NewReader(content), users, time.Now()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseAge(t *testing.T) {
	cases := map[string]time.Duration{
		"":         0,
		"Just now": 0,
		"45s":      45 * time.Second,
		"30m":      30 * time.Minute,
		"5h":       5 * time.Hour,
		"1d":       24 * time.Hour,
		"2w":       14 * 24 * time.Hour,
	}
	for label, want := range cases {
		got, err := parseAge(label)
		if err != nil || got != want {
			t.Fatalf("parseAge(%q) = %v, %v; want %v", label, got, err, want)
		}
	}
	for _, label := range []string{"h", "-1h", "3y", "abc"} {
		if _, err := parseAge(label); err == nil {
			t.Fatalf("parseAge(%q): expected error", label)
		}
	}
}

func TestShippedContentSeedMatchesShippedRoster(t *testing.T) {
	f, err := os.Open(filepath.Join("..", "..", "migrations", "seeds", "users.json"))
	if err != nil {
		t.Fatalf("open roster: %v", err)
	}
	defer f.Close()
	users, err := parseSeed(f, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("parse roster: %v", err)
	}

	st, err := loadContent(filepath.Join("..", "..", "migrations", "seeds", "content.json"), users, time.Now())
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	if len(st.Posts) != 4 || len(st.Stories) != 4 || len(st.Reels) != 3 || len(st.Events) != 2 || len(st.Groups) != 2 {
		t.Fatalf("unexpected shipped content sizes %d/%d/%d/%d/%d", len(st.Posts), len(st.Stories), len(st.Reels), len(st.Events), len(st.Groups))
	}

	missing, err := loadContent(filepath.Join(t.TempDir(), "none.json"), users, time.Now())
	if err != nil || len(missing.Posts) != 0 {
		t.Fatalf("expected missing content file to yield nothing, got %+v, %v", missing, err)
	}
}
