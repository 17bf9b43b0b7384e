package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"
)

// ValidationError reports a creation request rejected before it reached the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// MinPasswordLength is the shortest accepted registration password.
const MinPasswordLength = 6

// RegisterRequest carries the registration form.
type RegisterRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	BirthDate   string `json:"birthDate"`
	Gender      string `json:"gender"`
	Nationality string `json:"nationality"`
	Location    string `json:"location"`
	Phone       string `json:"phone"`
}

// Normalize trims whitespace and lower-cases the email address.
func (r *RegisterRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	r.Location = strings.TrimSpace(r.Location)
}

// Validate checks the registration form.
func (r RegisterRequest) Validate() error {
	if r.FirstName == "" {
		return invalid("firstName", "is required")
	}
	if r.LastName == "" {
		return invalid("lastName", "is required")
	}
	if r.Email == "" {
		return invalid("email", "is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return invalid("email", "is not a valid address")
	}
	if err := ValidatePassword(r.Password); err != nil {
		return err
	}
	if r.BirthDate != "" {
		if _, err := time.Parse("2006-01-02", r.BirthDate); err != nil {
			return invalid("birthDate", "must be formatted YYYY-MM-DD")
		}
	}
	return nil
}

// ValidatePassword enforces the numeric password format of the registration form.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return invalid("password", fmt.Sprintf("must be at least %d digits", MinPasswordLength))
	}
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return invalid("password", "must contain digits only")
		}
	}
	return nil
}

// MediaKind selects the single media slot of a post.
type MediaKind string

const (
	MediaNone  MediaKind = ""
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// CreatePostRequest carries a new home-feed post.
type CreatePostRequest struct {
	Content     string       `json:"content"`
	MediaURL    string       `json:"mediaUrl"`
	MediaKind   MediaKind    `json:"mediaKind"`
	Visibility  Visibility   `json:"visibility"`
	Location    string       `json:"location"`
	Feeling     string       `json:"feeling"`
	TaggedUsers []int64      `json:"taggedUsers"`
	Background  string       `json:"background"`
	LinkPreview *LinkPreview `json:"linkPreview"`
	EventID     int64        `json:"eventId"`
	ProductID   int64        `json:"productId"`
}

// Validate checks the post payload. An empty visibility defaults to Public.
func (r *CreatePostRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	if r.Visibility == "" {
		r.Visibility = VisibilityPublic
	}
	if !r.Visibility.Valid() {
		return invalid("visibility", "must be Public, Friends or Only Me")
	}
	switch r.MediaKind {
	case MediaNone:
		if r.MediaURL != "" {
			return invalid("mediaKind", "is required when media is attached")
		}
	case MediaImage, MediaVideo:
		if strings.TrimSpace(r.MediaURL) == "" {
			return invalid("mediaUrl", "is required for media posts")
		}
	default:
		return invalid("mediaKind", "must be image or video")
	}
	if r.Content == "" && r.MediaURL == "" && r.LinkPreview == nil && r.EventID == 0 && r.ProductID == 0 {
		return invalid("content", "post must not be empty")
	}
	return nil
}

// Type derives the post type from the request payload.
func (r CreatePostRequest) Type() PostType {
	switch {
	case r.EventID != 0:
		return PostEvent
	case r.ProductID != 0:
		return PostProduct
	case r.MediaKind == MediaImage:
		return PostImage
	case r.MediaKind == MediaVideo:
		return PostVideo
	}
	return PostText
}

// CreateReelRequest carries a new reel. The video itself is ingested asynchronously.
type CreateReelRequest struct {
	Caption    string `json:"caption"`
	SongName   string `json:"songName"`
	EffectName string `json:"effectName"`
	FileName   string `json:"fileName"`
}

// Validate checks the reel payload.
func (r *CreateReelRequest) Validate() error {
	r.Caption = strings.TrimSpace(r.Caption)
	if strings.TrimSpace(r.FileName) == "" {
		return invalid("fileName", "a video file is required")
	}
	if r.SongName == "" {
		r.SongName = "Original audio"
	}
	return nil
}

// CreateEventRequest carries a new event.
type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Image       string `json:"image"`
}

// Validate checks the event payload.
func (r *CreateEventRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return invalid("title", "is required")
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return invalid("date", "must be formatted YYYY-MM-DD")
	}
	if r.Time != "" {
		if _, err := time.Parse("15:04", r.Time); err != nil {
			return invalid("time", "must be formatted HH:MM")
		}
	}
	if strings.TrimSpace(r.Location) == "" {
		return invalid("location", "is required")
	}
	return nil
}

// CreateGroupRequest carries a new group.
type CreateGroupRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        GroupType `json:"type"`
	Image       string    `json:"image"`
	CoverImage  string    `json:"coverImage"`
}

// Validate checks the group payload. An empty type defaults to public.
func (r *CreateGroupRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return invalid("name", "is required")
	}
	if r.Type == "" {
		r.Type = GroupPublic
	}
	if r.Type != GroupPublic && r.Type != GroupPrivate {
		return invalid("type", "must be public or private")
	}
	return nil
}

// CreateProductRequest carries a new marketplace listing.
type CreateProductRequest struct {
	Title         string   `json:"title"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	Country       string   `json:"country"`
	Address       string   `json:"address"`
	MainPrice     float64  `json:"mainPrice"`
	DiscountPrice *float64 `json:"discountPrice"`
	Quantity      int      `json:"quantity"`
	PhoneNumber   string   `json:"phoneNumber"`
	Images        []string `json:"images"`
}

// Validate checks the listing. Every field of the listing form is required.
func (r *CreateProductRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Country = strings.ToUpper(strings.TrimSpace(r.Country))
	switch {
	case r.Title == "":
		return invalid("title", "is required")
	case r.Category == "" || r.Category == "all":
		return invalid("category", "is required")
	case strings.TrimSpace(r.Description) == "":
		return invalid("description", "is required")
	case r.Country == "" || r.Country == "ALL":
		return invalid("country", "is required")
	case strings.TrimSpace(r.Address) == "":
		return invalid("address", "is required")
	case r.MainPrice <= 0:
		return invalid("mainPrice", "must be positive")
	case r.Quantity <= 0:
		return invalid("quantity", "must be positive")
	case strings.TrimSpace(r.PhoneNumber) == "":
		return invalid("phoneNumber", "is required")
	case len(r.Images) == 0:
		return invalid("images", "at least one image is required")
	case len(r.Images) > MaxProductImages:
		return invalid("images", fmt.Sprintf("at most %d images are allowed", MaxProductImages))
	}
	if r.DiscountPrice != nil {
		if *r.DiscountPrice <= 0 {
			return invalid("discountPrice", "must be positive")
		}
		if *r.DiscountPrice > r.MainPrice {
			return invalid("discountPrice", "must not exceed the main price")
		}
	}
	return nil
}

// ProfileUpdate carries editable profile details. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	Work      *string `json:"work"`
	Education *string `json:"education"`
	Location  *string `json:"location"`
	Website   *string `json:"website"`
	BirthDate *string `json:"birthDate"`
	Phone     *string `json:"phone"`
}

// Validate checks the profile update.
func (u ProfileUpdate) Validate() error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if u.BirthDate != nil && *u.BirthDate != "" {
		if _, err := time.Parse("2006-01-02", *u.BirthDate); err != nil {
			return invalid("birthDate", "must be formatted YYYY-MM-DD")
		}
	}
	return nil
}

// Apply returns a copy of user with the update's non-nil fields set.
func (u ProfileUpdate) Apply(user User) User {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&user.Name, u.Name)
	set(&user.Bio, u.Bio)
	set(&user.Work, u.Work)
	set(&user.Education, u.Education)
	set(&user.Location, u.Location)
	set(&user.Website, u.Website)
	set(&user.BirthDate, u.BirthDate)
	set(&user.Phone, u.Phone)
	return user
}
