package social

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/unera/backend/internal/engagement"
	"github.com/unera/backend/internal/feed"
	"github.com/unera/backend/internal/graph"
	"github.com/unera/backend/internal/guard"
	"github.com/unera/backend/internal/media"
	"github.com/unera/backend/internal/messaging"
	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/notify"
	"github.com/unera/backend/internal/session"
	"github.com/unera/backend/internal/store"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type publisherRecorder struct {
	mu       sync.Mutex
	subjects []string
}

func (p *publisherRecorder) Publish(_ context.Context, subject string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *publisherRecorder) count(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.subjects {
		if s == subject {
			n++
		}
	}
	return n
}

type rosterRecorder struct {
	saves int
	last  []models.User
}

func (r *rosterRecorder) SaveUsers(_ context.Context, users []models.User) error {
	r.saves++
	r.last = users
	return nil
}

type ingestorStub struct {
	jobs []media.Job
}

func (i *ingestorStub) Enqueue(_ context.Context, job media.Job) error {
	i.jobs = append(i.jobs, job)
	return nil
}

type fixture struct {
	svc     *Service
	store   *store.Store
	events  *publisherRecorder
	roster  *rosterRecorder
	storage *media.MemoryStorage
	guard   *guard.Guard
}

func seedUsers() []models.User {
	return []models.User{
		{ID: 1, Name: "Amani Juma", Location: "Dar es Salaam, Tanzania", Role: models.RoleUser, Followers: []int64{}, Following: []int64{}},
		{ID: 2, Name: "Baraka Otieno", Location: "Nairobi, Kenya", Role: models.RoleUser, Followers: []int64{}, Following: []int64{}},
		{ID: 3, Name: "Chausiku Mwita", Location: "Dar es Salaam, Tanzania", Role: models.RoleAdmin, Followers: []int64{}, Following: []int64{}},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   store.New(store.State{Users: seedUsers()}),
		events:  &publisherRecorder{},
		roster:  &rosterRecorder{},
		storage: media.NewMemoryStorage("https://cdn.unera.test"),
		guard:   guard.New(),
	}
	f.svc = New(Deps{
		Store:        f.store,
		Roster:       f.roster,
		Media:        f.storage,
		Publisher:    f.events,
		Guard:        f.guard,
		Now:          func() time.Time { return testNow },
		PasswordCost: bcrypt.MinCost,
	})
	return f
}

func (f *fixture) actor(t *testing.T, id int64) session.Authenticated {
	t.Helper()
	u, ok := f.store.User(id)
	require.True(t, ok, "user %d", id)
	return session.Authenticated{User: u}
}

func (f *fixture) notificationsFor(userID int64) []models.Notification {
	return notify.ForUser(f.store.Notifications(), userID)
}

func (f *fixture) post(t *testing.T, authorID int64, visibility models.Visibility) models.Post {
	t.Helper()
	p, err := f.svc.CreatePost(context.Background(), f.actor(t, authorID), models.CreatePostRequest{
		Content:    "Habari from the coast",
		Visibility: visibility,
	})
	require.NoError(t, err)
	return p
}

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, models.RegisterRequest{
		FirstName: "Neema",
		LastName:  "Kato",
		Email:     "  Neema@Example.com ",
		Password:  "123456",
		BirthDate: "1998-03-14",
		Location:  "Arusha, Tanzania",
	})
	require.NoError(t, err)
	assert.Equal(t, "Neema Kato", user.Name)
	assert.Equal(t, "neema@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)
	assert.Equal(t, models.RoleUser, user.Role)

	stored, ok := f.store.User(user.ID)
	require.True(t, ok)
	assert.NotEqual(t, "123456", stored.PasswordHash)
	assert.Equal(t, 1, f.roster.saves)
	assert.Len(t, f.roster.last, 4)

	got, err := f.svc.Authenticate(ctx, "NEEMA@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.svc.Authenticate(ctx, "neema@example.com", "654321")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Authenticate(ctx, "nobody@example.com", "123456")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Register(ctx, models.RegisterRequest{FirstName: "N", LastName: "K", Email: "neema@example.com", Password: "123456"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = f.svc.Register(ctx, models.RegisterRequest{FirstName: "N", LastName: "K", Email: "x@example.com", Password: "abcdef"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
}

func TestFollowIsSymmetricAndNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	me, err := f.svc.Follow(ctx, f.actor(t, 1), 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, me.Following)

	target, _ := f.store.User(2)
	assert.Equal(t, []int64{1}, target.Followers)

	_, err = f.svc.Follow(ctx, f.actor(t, 1), 2)
	require.NoError(t, err)

	notes := f.notificationsFor(2)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationFollow, notes[0].Type)
	assert.Equal(t, int64(1), notes[0].SenderID)
	assert.Equal(t, 1, f.events.count(messaging.SubjectUserFollowed))
	assert.Equal(t, 1, f.roster.saves)

	_, err = f.svc.Follow(ctx, f.actor(t, 1), 1)
	assert.ErrorIs(t, err, graph.ErrSelfFollow)
	_, err = f.svc.Follow(ctx, f.actor(t, 1), 99)
	assert.True(t, IsNotFound(err))

	me, err = f.svc.Unfollow(ctx, f.actor(t, 1), 2)
	require.NoError(t, err)
	assert.Empty(t, me.Following)
	target, _ = f.store.User(2)
	assert.Empty(t, target.Followers)
	assert.Equal(t, 2, f.roster.saves)
}

func TestSuggestionsAndContacts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	suggestions, err := f.svc.Suggestions(f.actor(t, 1))
	require.NoError(t, err)
	assert.Empty(t, suggestions, "the admin account is never suggested")

	city := "Dar es Salaam"
	_, err = f.svc.UpdateProfile(ctx, f.actor(t, 2), models.ProfileUpdate{Location: &city})
	require.NoError(t, err)
	suggestions, err = f.svc.Suggestions(f.actor(t, 1))
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, int64(2), suggestions[0].User.ID, "same city ranks first")

	_, err = f.svc.Follow(ctx, f.actor(t, 2), 1)
	require.NoError(t, err)
	contacts, err := f.svc.Contacts(f.actor(t, 1))
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, int64(2), contacts[0].ID)
}

func TestSearchCreditsSharedFollowers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Follow(ctx, f.actor(t, 2), 1)
	require.NoError(t, err)
	_, err = f.svc.Follow(ctx, f.actor(t, 2), 3)
	require.NoError(t, err)

	results := f.svc.Search(f.actor(t, 1), "A")
	require.Len(t, results, 2)
	assert.Equal(t, int64(3), results[0].User.ID)
	assert.Equal(t, graph.SearchWeightName+graph.SearchWeightMutual, results[0].Score)
	assert.Equal(t, int64(2), results[1].User.ID)

	results = f.svc.Search(session.Anonymous{}, "a")
	assert.Len(t, results, 3, "anonymous searches include everyone")
	assert.Empty(t, f.svc.Search(session.Anonymous{}, "   "))
}

func TestBirthdaysOfConnections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	date := "2000-10-19"
	_, err := f.svc.UpdateProfile(ctx, f.actor(t, 2), models.ProfileUpdate{BirthDate: &date})
	require.NoError(t, err)

	birthdays, err := f.svc.Birthdays(f.actor(t, 1))
	require.NoError(t, err)
	assert.Empty(t, birthdays, "strangers are not listed")

	_, err = f.svc.Follow(ctx, f.actor(t, 1), 2)
	require.NoError(t, err)
	birthdays, err = f.svc.Birthdays(f.actor(t, 1))
	require.NoError(t, err)
	require.Len(t, birthdays, 1)
	assert.Equal(t, int64(2), birthdays[0].ID)
}

func TestUpdateProfileAndImages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bio := "  Runner and reader  "
	user, err := f.svc.UpdateProfile(ctx, f.actor(t, 1), models.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Runner and reader", user.Bio)

	empty := " "
	_, err = f.svc.UpdateProfile(ctx, f.actor(t, 1), models.ProfileUpdate{Name: &empty})
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)

	user, err = f.svc.UpdateProfileImage(ctx, f.actor(t, 1), "me.png", strings.NewReader("avatar"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.ProfileImage, "https://cdn.unera.test/avatars/"))

	user, err = f.svc.UpdateCoverImage(ctx, f.actor(t, 1), "cover.jpg", strings.NewReader("cover"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.CoverImage, "https://cdn.unera.test/covers/"))
	assert.Equal(t, 2, f.storage.Len())
	assert.Equal(t, 3, f.roster.saves)
}

func TestCreatePostPrependsAndPublishes(t *testing.T) {
	f := newFixture(t)
	first := f.post(t, 1, models.VisibilityPublic)
	second := f.post(t, 2, "")

	posts := f.store.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, models.VisibilityPublic, second.Visibility)
	assert.Equal(t, models.JustNow, first.Label)
	assert.Equal(t, 2, f.events.count(messaging.SubjectPostCreated))

	home := f.svc.HomeFeed(session.Anonymous{})
	require.Len(t, home, 2)
	assert.Equal(t, "Baraka Otieno", home[0].Author.Name)

	_, err := f.svc.CreatePost(context.Background(), f.actor(t, 1), models.CreatePostRequest{EventID: 404})
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreatePostRejectsDuplicateSubmit(t *testing.T) {
	f := newFixture(t)
	release, err := f.guard.Acquire("1:create_post")
	require.NoError(t, err)

	_, err = f.svc.CreatePost(context.Background(), f.actor(t, 1), models.CreatePostRequest{Content: "twice"})
	assert.ErrorIs(t, err, guard.ErrInFlight)
	assert.Empty(t, f.store.Posts())

	release()
	_, err = f.svc.CreatePost(context.Background(), f.actor(t, 1), models.CreatePostRequest{Content: "once"})
	assert.NoError(t, err)
}

func TestReactionsNotifyOthersOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, 1, models.VisibilityPublic)

	_, outcome, err := f.svc.ReactToPost(ctx, f.actor(t, 1), p.ID, models.ReactionLove)
	require.NoError(t, err)
	assert.Equal(t, engagement.Added, outcome)
	assert.Empty(t, f.notificationsFor(1), "own reactions never notify")

	_, outcome, err = f.svc.ReactToPost(ctx, f.actor(t, 2), p.ID, models.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, engagement.Added, outcome)
	notes := f.notificationsFor(1)
	require.Len(t, notes, 1)
	assert.Equal(t, "reacted like to your post", notes[0].Content)
	assert.Equal(t, p.ID, notes[0].PostID)

	updated, outcome, err := f.svc.ReactToPost(ctx, f.actor(t, 2), p.ID, models.ReactionWow)
	require.NoError(t, err)
	assert.Equal(t, engagement.Replaced, outcome)
	assert.Len(t, updated.Reactions, 2)
	assert.Len(t, f.notificationsFor(1), 1)

	updated, outcome, err = f.svc.ReactToPost(ctx, f.actor(t, 2), p.ID, models.ReactionWow)
	require.NoError(t, err)
	assert.Equal(t, engagement.Removed, outcome)
	assert.Len(t, updated.Reactions, 1)

	_, _, err = f.svc.ReactToPost(ctx, f.actor(t, 2), p.ID, "meh")
	assert.ErrorIs(t, err, engagement.ErrInvalidReaction)
	assert.Equal(t, 4, f.events.count(messaging.SubjectPostReacted))
}

func TestCommentsAndCommentLikes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, 1, models.VisibilityPublic)

	_, err := f.svc.CommentOnPost(ctx, f.actor(t, 1), p.ID, "my own", nil)
	require.NoError(t, err)
	assert.Empty(t, f.notificationsFor(1))

	c, err := f.svc.CommentOnPost(ctx, f.actor(t, 2), p.ID, "  Karibu!  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "Karibu!", c.Text)
	require.Len(t, f.notificationsFor(1), 1)

	_, err = f.svc.CommentOnPost(ctx, f.actor(t, 2), p.ID, "   ", nil)
	assert.ErrorIs(t, err, engagement.ErrEmptyComment)

	stored, _ := f.store.Post(p.ID)
	require.Len(t, stored.Comments, 2)
	assert.Equal(t, "my own", stored.Comments[0].Text)

	liked, ok, err := f.svc.LikePostComment(ctx, f.actor(t, 1), p.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, liked.Likes)
	assert.Len(t, f.notificationsFor(2), 1)

	liked, ok, err = f.svc.LikePostComment(ctx, f.actor(t, 1), p.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, liked.Likes)

	_, _, err = f.svc.LikePostComment(ctx, f.actor(t, 1), p.ID, 12345)
	assert.ErrorIs(t, err, engagement.ErrCommentNotFound)
}

func TestVisibilityHidesPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	private := f.post(t, 1, models.VisibilityOnlyMe)
	friends := f.post(t, 1, models.VisibilityFriends)

	assert.Len(t, f.svc.HomeFeed(f.actor(t, 1)), 2)
	assert.Empty(t, f.svc.HomeFeed(f.actor(t, 2)))
	assert.Empty(t, f.svc.HomeFeed(session.Anonymous{}))

	_, _, err := f.svc.ReactToPost(ctx, f.actor(t, 2), private.ID, models.ReactionLike)
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = f.svc.Follow(ctx, f.actor(t, 2), 1)
	require.NoError(t, err)
	home := f.svc.HomeFeed(f.actor(t, 2))
	require.Len(t, home, 1)
	assert.Equal(t, friends.ID, home[0].ID)

	_, err = f.svc.Post(f.actor(t, 2), private.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
	view, err := f.svc.Post(f.actor(t, 1), private.ID)
	require.NoError(t, err)
	assert.Equal(t, private.ID, view.ID)

	profile, err := f.svc.ProfileFeed(session.Anonymous{}, 1)
	require.NoError(t, err)
	assert.Empty(t, profile)
	_, err = f.svc.ProfileFeed(session.Anonymous{}, 77)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSharePostReferencesOriginal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	original := f.post(t, 1, models.VisibilityPublic)

	share, err := f.svc.SharePost(ctx, f.actor(t, 2), original.ID, "look at this", "")
	require.NoError(t, err)
	assert.Equal(t, original.ID, share.SharedPostID)

	reshare, err := f.svc.SharePost(ctx, f.actor(t, 3), share.ID, "", models.VisibilityPublic)
	require.NoError(t, err)
	assert.Equal(t, original.ID, reshare.SharedPostID)

	stored, _ := f.store.Post(original.ID)
	assert.Equal(t, 2, stored.Shares)
	assert.Len(t, f.notificationsFor(1), 2)

	home := f.svc.HomeFeed(session.Anonymous{})
	require.Len(t, home, 3)
	require.NotNil(t, home[0].Shared)
	assert.Equal(t, original.ID, home[0].Shared.ID)
}

func TestEditAndDeletePermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, 1, models.VisibilityPublic)

	_, err := f.svc.EditPost(ctx, f.actor(t, 2), p.ID, "hijack", "")
	assert.ErrorIs(t, err, ErrForbidden)

	edited, err := f.svc.EditPost(ctx, f.actor(t, 1), p.ID, " edited ", models.VisibilityFriends)
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Content)
	assert.Equal(t, models.VisibilityFriends, edited.Visibility)

	_, err = f.svc.EditPost(ctx, f.actor(t, 1), p.ID, "", "")
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)

	assert.ErrorIs(t, f.svc.DeletePost(ctx, f.actor(t, 2), p.ID), ErrForbidden)
	require.NoError(t, f.svc.DeletePost(ctx, f.actor(t, 3), p.ID), "admins moderate any post")
	assert.ErrorIs(t, f.svc.DeletePost(ctx, f.actor(t, 1), p.ID), ErrPostNotFound)
}

func TestCreateReelStoresSynchronouslyWithoutIngestor(t *testing.T) {
	f := newFixture(t)
	reel, err := f.svc.CreateReel(context.Background(), f.actor(t, 1), models.CreateReelRequest{
		Caption:  "sunset",
		FileName: "sunset.mp4",
	}, strings.NewReader("frames"))
	require.NoError(t, err)
	assert.Equal(t, models.AssetStatusReady, reel.AssetStatus)
	assert.Equal(t, "Original audio", reel.SongName)
	assert.True(t, strings.HasSuffix(reel.VideoURL, ".mp4"))
	assert.Equal(t, engagement.DerivedStat(reel.ID, "reel-views", reelViewsCeiling), reel.Views)

	reels := f.svc.ReelsFeed(0, 10)
	require.Len(t, reels, 1)
	assert.Equal(t, reel.ID, reels[0].ID)
	assert.Equal(t, 1, f.events.count(messaging.SubjectReelReady))
}

func TestCreateReelThroughIngestor(t *testing.T) {
	f := newFixture(t)
	ingestor := &ingestorStub{}
	f.svc.UseIngestor(ingestor)
	ctx := context.Background()

	reel, err := f.svc.CreateReel(ctx, f.actor(t, 1), models.CreateReelRequest{FileName: "clip.mp4"}, strings.NewReader("frames"))
	require.NoError(t, err)
	assert.Equal(t, models.AssetStatusPending, reel.AssetStatus)
	require.Len(t, ingestor.jobs, 1)
	assert.Equal(t, reel.ID, ingestor.jobs[0].ReelID)
	assert.Empty(t, f.svc.ReelsFeed(0, 10), "pending reels stay hidden")

	require.NoError(t, f.svc.MarkReelReady(ctx, reel.ID, "https://cdn.unera.test/reels/clip.mp4"))
	reels := f.svc.ReelsFeed(0, 10)
	require.Len(t, reels, 1)
	assert.Equal(t, "https://cdn.unera.test/reels/clip.mp4", reels[0].VideoURL)

	assert.ErrorIs(t, f.svc.MarkReelFailed(ctx, 999), ErrReelNotFound)

	_, err = f.svc.CreateReel(ctx, f.actor(t, 1), models.CreateReelRequest{FileName: "clip.mp4"}, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUploadRequired)
}

func TestReelEngagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reel, err := f.svc.CreateReel(ctx, f.actor(t, 1), models.CreateReelRequest{FileName: "a.mp4"}, strings.NewReader("x"))
	require.NoError(t, err)

	_, outcome, err := f.svc.ReactToReel(ctx, f.actor(t, 2), reel.ID, models.ReactionHaha)
	require.NoError(t, err)
	assert.Equal(t, engagement.Added, outcome)

	_, err = f.svc.CommentOnReel(ctx, f.actor(t, 2), reel.ID, "wow", nil)
	require.NoError(t, err)

	shared, err := f.svc.ShareReel(ctx, f.actor(t, 3), reel.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, shared.Shares)

	notes := f.notificationsFor(1)
	require.Len(t, notes, 3)
	for _, n := range notes {
		assert.Equal(t, reel.ID, n.ReelID)
	}

	view, err := f.svc.Reel(reel.ID)
	require.NoError(t, err)
	assert.Len(t, view.Comments, 1)
}

func TestStoriesExpire(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateStory(ctx, f.actor(t, 1), "https://cdn.unera.test/story.jpg")
	require.NoError(t, err)
	_, err = f.svc.CreateStory(ctx, f.actor(t, 1), " ")
	assert.Error(t, err)

	f.store.ReplaceStories(append(f.store.Stories(), models.Story{ID: 5, UserID: 2, Image: "old.jpg", CreatedAt: testNow.Add(-25 * time.Hour)}))
	stories := f.svc.Stories()
	require.Len(t, stories, 1)
	assert.Equal(t, int64(1), stories[0].UserID)
}

func TestGroupLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	group, err := f.svc.CreateGroup(ctx, f.actor(t, 1), models.CreateGroupRequest{Name: "Runners of Dar"})
	require.NoError(t, err)
	assert.Equal(t, models.GroupPublic, group.Type)
	assert.True(t, group.HasMember(1))

	home := f.svc.HomeFeed(session.Anonymous{})
	require.Len(t, home, 1)
	assert.Equal(t, "I created a new group: Runners of Dar", home[0].Content)

	_, err = f.svc.PostToGroup(ctx, f.actor(t, 2), group.ID, "hi", "")
	assert.ErrorIs(t, err, ErrForbidden)

	group, err = f.svc.JoinGroup(ctx, f.actor(t, 2), group.ID)
	require.NoError(t, err)
	group, err = f.svc.JoinGroup(ctx, f.actor(t, 2), group.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, group.Members)

	gp, err := f.svc.PostToGroup(ctx, f.actor(t, 2), group.ID, "Morning run at 6?", "")
	require.NoError(t, err)

	liked, ok, err := f.svc.LikeGroupPost(ctx, f.actor(t, 1), group.ID, gp.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int64{1}, liked.Likes)
	liked, ok, err = f.svc.LikeGroupPost(ctx, f.actor(t, 1), group.ID, gp.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, liked.Likes)

	_, err = f.svc.CommentOnGroupPost(ctx, f.actor(t, 1), group.ID, gp.ID, "count me in", nil)
	require.NoError(t, err)
	assert.Len(t, f.notificationsFor(2), 2)

	posts, err := f.svc.GroupFeed(group.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Len(t, posts[0].Comments, 1)
	assert.Equal(t, "Baraka Otieno", posts[0].Author.Name)

	_, err = f.svc.LeaveGroup(ctx, f.actor(t, 1), group.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	group, err = f.svc.LeaveGroup(ctx, f.actor(t, 2), group.ID)
	require.NoError(t, err)
	assert.False(t, group.HasMember(2))

	_, err = f.svc.JoinGroup(ctx, f.actor(t, 2), 404)
	assert.ErrorIs(t, err, ErrGroupNotFound)
	assert.Len(t, f.svc.Groups(), 1)
}

func TestEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	event, err := f.svc.CreateEvent(ctx, f.actor(t, 1), models.CreateEventRequest{
		Title:    "Beach cleanup",
		Date:     "2026-11-01",
		Time:     "08:00",
		Location: "Coco Beach",
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, event.Attendees)

	home := f.svc.HomeFeed(session.Anonymous{})
	require.Len(t, home, 1)
	assert.Equal(t, models.PostEvent, home[0].Type)
	assert.Equal(t, event.ID, home[0].EventID)

	_, joined, err := f.svc.JoinEvent(ctx, f.actor(t, 1), event.ID)
	require.NoError(t, err)
	assert.False(t, joined, "organizer already attends")

	updated, joined, err := f.svc.JoinEvent(ctx, f.actor(t, 2), event.ID)
	require.NoError(t, err)
	assert.True(t, joined)
	assert.Equal(t, []int64{1, 2}, updated.Attendees)
	require.Len(t, f.notificationsFor(1), 1)
	assert.Equal(t, models.NotificationEvent, f.notificationsFor(1)[0].Type)

	_, err = f.svc.CreateEvent(ctx, f.actor(t, 1), models.CreateEventRequest{Title: "x", Date: "tomorrow", Location: "y"})
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)

	events := f.svc.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "Amani Juma", events[0].Organizer.Name)
}

func productRequest() models.CreateProductRequest {
	return models.CreateProductRequest{
		Title:       "Mountain bike",
		Category:    "sports",
		Description: "Barely used",
		Country:     "tz",
		Address:     "Mikocheni",
		MainPrice:   450000,
		Quantity:    1,
		PhoneNumber: "+255700000000",
		Images:      []string{"https://cdn.unera.test/bike.jpg"},
	}
}

func TestMarketplace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.CreateProduct(ctx, f.actor(t, 1), productRequest())
	require.NoError(t, err)
	assert.Equal(t, "TZ", product.Country)
	assert.Equal(t, models.ProductActive, product.Status)
	assert.NotEmpty(t, product.ShareID)
	assert.Equal(t, engagement.DerivedStat(product.ID, "product-views", productViewsCeiling), product.Views)
	assert.Less(t, product.Sold, productSoldCeiling)

	bad := productRequest()
	bad.Country = "FR"
	_, err = f.svc.CreateProduct(ctx, f.actor(t, 1), bad)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "country", verr.Field)

	_, err = f.svc.SetProductStatus(ctx, f.actor(t, 2), product.ID, models.ProductSold)
	assert.ErrorIs(t, err, ErrForbidden)
	sold, err := f.svc.SetProductStatus(ctx, f.actor(t, 1), product.ID, models.ProductSold)
	require.NoError(t, err)
	assert.Equal(t, models.ProductSold, sold.Status)

	_, err = f.svc.RateProduct(ctx, f.actor(t, 2), product.ID, 6)
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = f.svc.RateProduct(ctx, f.actor(t, 1), product.ID, 5)
	assert.ErrorIs(t, err, ErrForbidden)
	rated, err := f.svc.RateProduct(ctx, f.actor(t, 2), product.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{4}, rated.Ratings)

	_, err = f.svc.CommentOnProduct(ctx, f.actor(t, 2), product.ID, "Is it still available?")
	require.NoError(t, err)
	assert.Len(t, f.notificationsFor(1), 1)

	assert.Len(t, f.svc.Marketplace(feed.Filter{Country: "TZ", Category: "all"}), 1)
	assert.Empty(t, f.svc.Marketplace(feed.Filter{Country: "KE"}))
	assert.Len(t, f.svc.Marketplace(feed.Filter{Query: "BIKE"}), 1)

	view, err := f.svc.Product(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Amani Juma", view.Seller.Name)
}

func TestMessagesAndConversation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product, err := f.svc.CreateProduct(ctx, f.actor(t, 1), productRequest())
	require.NoError(t, err)

	_, err = f.svc.SendMessage(ctx, f.actor(t, 2), 1, "Is the bike available?", product.ID)
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, f.actor(t, 1), 2, "Yes", 0)
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, f.actor(t, 3), 1, "unrelated", 0)
	require.NoError(t, err)

	conv := f.svc.Conversation(f.actor(t, 1), 2)
	require.Len(t, conv, 2)
	assert.Equal(t, "Mountain bike", conv[0].ProductTitle)
	assert.Equal(t, "Yes", conv[1].Text)

	_, err = f.svc.SendMessage(ctx, f.actor(t, 1), 1, "hi me", 0)
	assert.ErrorIs(t, err, ErrMessageSelf)
	_, err = f.svc.SendMessage(ctx, f.actor(t, 1), 2, "  ", 0)
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = f.svc.SendMessage(ctx, f.actor(t, 1), 42, "hello?", 0)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, 3, f.events.count(messaging.SubjectMessageSent))
}

func TestNotificationReadState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Follow(ctx, f.actor(t, 2), 1)
	require.NoError(t, err)
	_, err = f.svc.Follow(ctx, f.actor(t, 3), 1)
	require.NoError(t, err)

	notes := f.svc.Notifications(f.actor(t, 1))
	require.Len(t, notes, 2)
	assert.Equal(t, int64(3), notes[0].SenderID, "newest first")
	assert.Equal(t, 2, f.svc.UnreadCount(f.actor(t, 1)))

	require.NoError(t, f.svc.MarkNotificationRead(ctx, f.actor(t, 1), notes[1].ID))
	assert.Equal(t, 1, f.svc.UnreadCount(f.actor(t, 1)))
	assert.ErrorIs(t, f.svc.MarkNotificationRead(ctx, f.actor(t, 2), notes[0].ID), notify.ErrNotRecipient)

	assert.Equal(t, 1, f.svc.MarkAllRead(ctx, f.actor(t, 1)))
	assert.Equal(t, 0, f.svc.UnreadCount(f.actor(t, 1)))
	assert.Equal(t, 2, f.events.count(messaging.SubjectNotificationCreated))
}

func TestUploadMediaRequiresStorage(t *testing.T) {
	f := newFixture(t)
	url, err := f.svc.UploadMedia(context.Background(), f.actor(t, 1), "photo.jpg", strings.NewReader("img"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.unera.test/uploads/1/"))

	bare := New(Deps{Store: store.New(store.State{Users: seedUsers()})})
	_, err = bare.UploadMedia(context.Background(), f.actor(t, 1), "photo.jpg", strings.NewReader("img"))
	assert.True(t, errors.Is(err, media.ErrStorageUnavailable))
}

type blockingRoster struct {
	mu      sync.Mutex
	release chan struct{}
	entered chan struct{}
	calls   int
	last    []models.User
}

func (r *blockingRoster) SaveUsers(_ context.Context, users []models.User) error {
	r.mu.Lock()
	r.calls++
	first := r.calls == 1
	r.mu.Unlock()
	if first {
		close(r.entered)
		<-r.release
	}
	r.mu.Lock()
	r.last = users
	r.mu.Unlock()
	return nil
}

func (r *blockingRoster) persisted() []models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func TestConcurrentRosterSavesKeepLatestState(t *testing.T) {
	st := store.New(store.State{Users: seedUsers()})
	roster := &blockingRoster{release: make(chan struct{}), entered: make(chan struct{})}
	svc := New(Deps{Store: st, Roster: roster, Now: func() time.Time { return testNow }, PasswordCost: bcrypt.MinCost})
	ctx := context.Background()
	actor := func(id int64) session.Authenticated {
		u, _ := st.User(id)
		return session.Authenticated{User: u}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.Follow(ctx, actor(1), 3)
		assert.NoError(t, err)
	}()
	<-roster.entered

	go func() {
		defer wg.Done()
		_, err := svc.Follow(ctx, actor(2), 3)
		assert.NoError(t, err)
	}()
	require.Eventually(t, func() bool {
		u, _ := st.User(3)
		return len(u.Followers) == 2
	}, time.Second, time.Millisecond)

	close(roster.release)
	wg.Wait()

	persisted, ok := store.Find(roster.persisted(), 3, store.UserKey)
	require.True(t, ok)
	live, _ := st.User(3)
	assert.ElementsMatch(t, live.Followers, persisted.Followers)
	assert.ElementsMatch(t, []int64{1, 2}, persisted.Followers)
}
