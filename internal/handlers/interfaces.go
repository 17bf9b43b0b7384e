package handlers

import (
	"context"
	"io"

	"github.com/unera/backend/internal/countries"
	"github.com/unera/backend/internal/engagement"
	"github.com/unera/backend/internal/feed"
	"github.com/unera/backend/internal/graph"
	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/session"
)

// Roster resolves the signed-in user of a request.
type Roster interface {
	User(id int64) (models.User, bool)
}

// AccountService captures the account and relationship operations behind the user endpoints.
type AccountService interface {
	Roster
	Register(ctx context.Context, req models.RegisterRequest) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	Users() []models.User
	Search(sess session.Session, query string) []graph.SearchResult
	Follow(ctx context.Context, actor session.Authenticated, targetID int64) (models.User, error)
	Unfollow(ctx context.Context, actor session.Authenticated, targetID int64) (models.User, error)
	Suggestions(actor session.Authenticated) ([]graph.Suggestion, error)
	Birthdays(actor session.Authenticated) ([]models.User, error)
	Contacts(actor session.Authenticated) ([]models.User, error)
	UpdateProfile(ctx context.Context, actor session.Authenticated, update models.ProfileUpdate) (models.User, error)
	UpdateProfileImage(ctx context.Context, actor session.Authenticated, name string, r io.Reader) (models.User, error)
	UpdateCoverImage(ctx context.Context, actor session.Authenticated, name string, r io.Reader) (models.User, error)
}

// SessionManager issues, refreshes and revokes authentication tokens for users.
type SessionManager interface {
	Issue(ctx context.Context, userID int64) (models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, refreshToken string)
}

// PostService captures the home feed operations.
type PostService interface {
	UploadMedia(ctx context.Context, actor session.Authenticated, name string, r io.Reader) (string, error)
	CreatePost(ctx context.Context, actor session.Authenticated, req models.CreatePostRequest) (models.Post, error)
	EditPost(ctx context.Context, actor session.Authenticated, postID int64, content string, visibility models.Visibility) (models.Post, error)
	DeletePost(ctx context.Context, actor session.Authenticated, postID int64) error
	SharePost(ctx context.Context, actor session.Authenticated, postID int64, content string, visibility models.Visibility) (models.Post, error)
	ReactToPost(ctx context.Context, actor session.Authenticated, postID int64, reaction models.ReactionType) (models.Post, engagement.Outcome, error)
	CommentOnPost(ctx context.Context, actor session.Authenticated, postID int64, text string, attachment *models.Attachment) (models.Comment, error)
	LikePostComment(ctx context.Context, actor session.Authenticated, postID, commentID int64) (models.Comment, bool, error)
	Post(sess session.Session, postID int64) (feed.PostView, error)
	HomeFeed(sess session.Session) []feed.PostView
	ProfileFeed(sess session.Session, ownerID int64) ([]feed.PostView, error)
	CreateStory(ctx context.Context, actor session.Authenticated, image string) (models.Story, error)
	Stories() []feed.StoryView
}

// ReelService captures the short video operations.
type ReelService interface {
	CreateReel(ctx context.Context, actor session.Authenticated, req models.CreateReelRequest, video io.Reader) (models.Reel, error)
	ReactToReel(ctx context.Context, actor session.Authenticated, reelID int64, reaction models.ReactionType) (models.Reel, engagement.Outcome, error)
	CommentOnReel(ctx context.Context, actor session.Authenticated, reelID int64, text string, attachment *models.Attachment) (models.Comment, error)
	ShareReel(ctx context.Context, actor session.Authenticated, reelID int64) (models.Reel, error)
	Reel(reelID int64) (feed.ReelView, error)
	ReelsFeed(offset, limit int) []feed.ReelView
}

// GroupService captures the group operations.
type GroupService interface {
	CreateGroup(ctx context.Context, actor session.Authenticated, req models.CreateGroupRequest) (models.Group, error)
	JoinGroup(ctx context.Context, actor session.Authenticated, groupID int64) (models.Group, error)
	LeaveGroup(ctx context.Context, actor session.Authenticated, groupID int64) (models.Group, error)
	PostToGroup(ctx context.Context, actor session.Authenticated, groupID int64, content, image string) (models.GroupPost, error)
	LikeGroupPost(ctx context.Context, actor session.Authenticated, groupID, postID int64) (models.GroupPost, bool, error)
	CommentOnGroupPost(ctx context.Context, actor session.Authenticated, groupID, postID int64, text string, attachment *models.Attachment) (models.Comment, error)
	Groups() []models.Group
	Group(groupID int64) (models.Group, error)
	GroupFeed(groupID int64) ([]feed.GroupPostView, error)
}

// EventService captures the event operations.
type EventService interface {
	CreateEvent(ctx context.Context, actor session.Authenticated, req models.CreateEventRequest) (models.Event, error)
	JoinEvent(ctx context.Context, actor session.Authenticated, eventID int64) (models.Event, bool, error)
	Events() []feed.EventView
}

// MarketplaceService captures the marketplace operations.
type MarketplaceService interface {
	CreateProduct(ctx context.Context, actor session.Authenticated, req models.CreateProductRequest) (models.Product, error)
	SetProductStatus(ctx context.Context, actor session.Authenticated, productID int64, status models.ProductStatus) (models.Product, error)
	RateProduct(ctx context.Context, actor session.Authenticated, productID int64, rating int) (models.Product, error)
	CommentOnProduct(ctx context.Context, actor session.Authenticated, productID int64, text string) (models.Comment, error)
	Product(productID int64) (feed.ProductView, error)
	Marketplace(f feed.Filter) []feed.ProductView
}

// MessageService captures direct messages and notifications.
type MessageService interface {
	SendMessage(ctx context.Context, actor session.Authenticated, receiverID int64, text string, productID int64) (models.Message, error)
	Conversation(actor session.Authenticated, otherID int64) []models.Message
	Notifications(actor session.Authenticated) []models.Notification
	UnreadCount(actor session.Authenticated) int
	MarkAllRead(ctx context.Context, actor session.Authenticated) int
	MarkNotificationRead(ctx context.Context, actor session.Authenticated, id int64) error
}

// CountryProvider lists countries for the registration form.
type CountryProvider interface {
	List(ctx context.Context) ([]countries.Country, error)
}
