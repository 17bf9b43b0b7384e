package models

import "time"

// Role describes the moderation privileges attached to an account.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// User represents an account within the unera network.
type User struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	FirstName       string  `json:"firstName,omitempty"`
	LastName        string  `json:"lastName,omitempty"`
	ProfileImage    string  `json:"profileImage"`
	CoverImage      string  `json:"coverImage,omitempty"`
	Bio             string  `json:"bio,omitempty"`
	Work            string  `json:"work,omitempty"`
	Education       string  `json:"education,omitempty"`
	Location        string  `json:"location,omitempty"`
	Website         string  `json:"website,omitempty"`
	IsOnline        bool    `json:"isOnline"`
	Followers       []int64 `json:"followers"`
	Following       []int64 `json:"following"`
	Email           string  `json:"email,omitempty"`
	PasswordHash    string  `json:"passwordHash,omitempty"`
	BirthDate       string  `json:"birthDate,omitempty"`
	Gender          string  `json:"gender,omitempty"`
	Nationality     string  `json:"nationality,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	Role            Role    `json:"role"`
	IsVerified      bool    `json:"isVerified"`
	IsRestricted    bool    `json:"isRestricted,omitempty"`
	RestrictedUntil int64   `json:"restrictedUntil,omitempty"`
}

// Public returns a copy of the user without credential material.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// ReactionType enumerates the typed like-equivalents a user can attach to a post or reel.
type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionLove  ReactionType = "love"
	ReactionHaha  ReactionType = "haha"
	ReactionWow   ReactionType = "wow"
	ReactionSad   ReactionType = "sad"
	ReactionAngry ReactionType = "angry"
)

// Valid reports whether t is one of the supported reaction types.
func (t ReactionType) Valid() bool {
	switch t {
	case ReactionLike, ReactionLove, ReactionHaha, ReactionWow, ReactionSad, ReactionAngry:
		return true
	}
	return false
}

// Reaction is the single reaction a user holds on a target.
type Reaction struct {
	UserID int64        `json:"userId"`
	Type   ReactionType `json:"type"`
}

// AttachmentType classifies comment attachments.
type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentGIF   AttachmentType = "gif"
	AttachmentFile  AttachmentType = "file"
)

// Attachment is an optional payload carried by a comment.
type Attachment struct {
	Type     AttachmentType `json:"type"`
	URL      string         `json:"url"`
	FileName string         `json:"fileName,omitempty"`
}

// Comment is an entry in the append-only comment list of a post, reel, group post or product.
type Comment struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"userId"`
	Text       string      `json:"text"`
	Label      string      `json:"timestamp"`
	CreatedAt  time.Time   `json:"createdAt"`
	Likes      int         `json:"likes"`
	LikedBy    []int64     `json:"likedBy,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Visibility controls who may see a post.
type Visibility string

const (
	VisibilityPublic  Visibility = "Public"
	VisibilityFriends Visibility = "Friends"
	VisibilityOnlyMe  Visibility = "Only Me"
)

// Valid reports whether v is a known visibility.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityFriends || v == VisibilityOnlyMe
}

// PostType classifies the primary payload of a post.
type PostType string

const (
	PostText    PostType = "text"
	PostImage   PostType = "image"
	PostVideo   PostType = "video"
	PostEvent   PostType = "event"
	PostProduct PostType = "product"
)

// LinkPreview describes an unfurled URL embedded in a post.
type LinkPreview struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Domain      string `json:"domain"`
}

// Post is an entry of the home feed.
type Post struct {
	ID           int64        `json:"id"`
	AuthorID     int64        `json:"authorId"`
	Content      string       `json:"content,omitempty"`
	Image        string       `json:"image,omitempty"`
	Video        string       `json:"video,omitempty"`
	Label        string       `json:"timestamp"`
	CreatedAt    time.Time    `json:"createdAt"`
	Reactions    []Reaction   `json:"reactions"`
	Comments     []Comment    `json:"comments"`
	Shares       int          `json:"shares"`
	Type         PostType     `json:"type"`
	Visibility   Visibility   `json:"visibility"`
	Location     string       `json:"location,omitempty"`
	Feeling      string       `json:"feeling,omitempty"`
	TaggedUsers  []int64      `json:"taggedUsers,omitempty"`
	Background   string       `json:"background,omitempty"`
	EventID      int64        `json:"eventId,omitempty"`
	ProductID    int64        `json:"productId,omitempty"`
	SharedPostID int64        `json:"sharedPostId,omitempty"`
	LinkPreview  *LinkPreview `json:"linkPreview,omitempty"`
}

// Story is a time-boxed image shared by a user.
type Story struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	AssetStatusPending = "pending"
	AssetStatusReady   = "ready"
	AssetStatusFailed  = "failed"
)

// Reel is a short-form vertical video with its own engagement model.
type Reel struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	VideoURL    string     `json:"videoUrl"`
	Caption     string     `json:"caption"`
	SongName    string     `json:"songName"`
	EffectName  string     `json:"effectName,omitempty"`
	Reactions   []Reaction `json:"reactions"`
	Comments    []Comment  `json:"comments"`
	Shares      int        `json:"shares"`
	Views       int        `json:"views"`
	AssetStatus string     `json:"assetStatus"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// GroupType marks whether a group is discoverable.
type GroupType string

const (
	GroupPublic  GroupType = "public"
	GroupPrivate GroupType = "private"
)

// GroupPost is a post scoped to a single group.
type GroupPost struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"authorId"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Likes     []int64   `json:"likes"`
	Comments  []Comment `json:"comments"`
}

// Group is a named community with its own membership and posts.
type Group struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Type        GroupType   `json:"type"`
	Image       string      `json:"image"`
	CoverImage  string      `json:"coverImage"`
	AdminID     int64       `json:"adminId"`
	Members     []int64     `json:"members"`
	Posts       []GroupPost `json:"posts"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// HasMember reports whether userID belongs to the group. The admin is always a member.
func (g Group) HasMember(userID int64) bool {
	if g.AdminID == userID {
		return true
	}
	for _, id := range g.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// ProductStatus tracks the lifecycle of a marketplace listing.
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductSold     ProductStatus = "sold"
	ProductInactive ProductStatus = "inactive"
)

// Valid reports whether s is a known product status.
func (s ProductStatus) Valid() bool {
	return s == ProductActive || s == ProductSold || s == ProductInactive
}

// MaxProductImages bounds the gallery of a marketplace listing.
const MaxProductImages = 4

// Product is a marketplace listing.
type Product struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	Category      string        `json:"category"`
	Description   string        `json:"description"`
	Country       string        `json:"country"`
	Address       string        `json:"address"`
	MainPrice     float64       `json:"mainPrice"`
	DiscountPrice *float64      `json:"discountPrice,omitempty"`
	Quantity      int           `json:"quantity"`
	PhoneNumber   string        `json:"phoneNumber"`
	Images        []string      `json:"images"`
	SellerID      int64         `json:"sellerId"`
	CreatedAt     time.Time     `json:"createdAt"`
	Status        ProductStatus `json:"status"`
	ShareID       string        `json:"shareId"`
	Views         int           `json:"views"`
	Sold          int           `json:"sold"`
	Ratings       []int         `json:"ratings"`
	Comments      []Comment     `json:"comments"`
}

// Event is a scheduled gathering with an attendee set.
type Event struct {
	ID          int64   `json:"id"`
	OrganizerID int64   `json:"organizerId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Location    string  `json:"location"`
	Image       string  `json:"image"`
	Attendees   []int64 `json:"attendees"`
}

// NotificationType classifies notifications.
type NotificationType string

const (
	NotificationLike     NotificationType = "like"
	NotificationComment  NotificationType = "comment"
	NotificationFollow   NotificationType = "follow"
	NotificationShare    NotificationType = "share"
	NotificationBirthday NotificationType = "birthday"
	NotificationReaction NotificationType = "reaction"
	NotificationEvent    NotificationType = "event"
	NotificationSystem   NotificationType = "system"
)

// Notification informs a recipient about another user's action.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"userId"`
	SenderID  int64            `json:"senderId"`
	Type      NotificationType `json:"type"`
	Content   string           `json:"content"`
	PostID    int64            `json:"postId,omitempty"`
	ReelID    int64            `json:"reelId,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	Read      bool             `json:"read"`
}

// Message is a direct message between two users.
type Message struct {
	ID           int64     `json:"id"`
	SenderID     int64     `json:"senderId"`
	ReceiverID   int64     `json:"receiverId"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"createdAt"`
	ProductID    int64     `json:"productId,omitempty"`
	ProductTitle string    `json:"productTitle,omitempty"`
}

// TrackKind distinguishes music from podcast audio.
type TrackKind string

const (
	TrackMusic   TrackKind = "music"
	TrackPodcast TrackKind = "podcast"
)

// AudioTrack is the unit handed to the global audio player.
type AudioTrack struct {
	ID     string    `json:"id"`
	URL    string    `json:"url"`
	Title  string    `json:"title"`
	Artist string    `json:"artist"`
	Cover  string    `json:"cover"`
	Kind   TrackKind `json:"type"`
}

// JustNow is the display label attached to freshly created posts and comments.
const JustNow = "Just now"

// SessionTokens is the credential pair handed to a signed-in client.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
