package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/unera/backend/internal/middleware"
	"github.com/unera/backend/internal/music"
)

// Dependencies aggregates collaborators required by HTTP handlers. The service fields are
// usually the same social service seen through narrower interfaces.
type Dependencies struct {
	Logger         *slog.Logger
	Accounts       AccountService
	Posts          PostService
	Reels          ReelService
	Groups         GroupService
	Events         EventService
	Marketplace    MarketplaceService
	Messages       MessageService
	Sessions       SessionManager
	Tokens         middleware.TokenVerifier
	Countries      CountryProvider
	Music          *music.Catalog
	Limiter        middleware.RateLimiter
	AllowedOrigins []string
	HealthChecks   map[string]HealthCheck
}

// NewRouter wires HTTP handlers into a chi router.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	health := HealthHandler{Checks: deps.HealthChecks}
	authH := AuthHandler{Accounts: deps.Accounts, Sessions: deps.Sessions}
	users := UserHandler{Accounts: deps.Accounts, Posts: deps.Posts}
	posts := PostHandler{Roster: deps.Accounts, Posts: deps.Posts}
	reels := ReelHandler{Roster: deps.Accounts, Reels: deps.Reels}
	groups := GroupHandler{Roster: deps.Accounts, Groups: deps.Groups}
	events := EventHandler{Roster: deps.Accounts, Events: deps.Events}
	products := ProductHandler{Roster: deps.Accounts, Marketplace: deps.Marketplace}
	messages := MessageHandler{Roster: deps.Accounts, Messages: deps.Messages}
	countryH := CountryHandler{Countries: deps.Countries}
	musicH := MusicHandler{Catalog: deps.Music}

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", health.Handle)
	r.Head("/healthz", health.Handle)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(deps.Tokens))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Throttle(deps.Limiter, "auth"))
			r.Post("/auth/register", authH.Register)
			r.Post("/auth/login", authH.Login)
			r.Post("/auth/refresh", authH.Refresh)
			r.Post("/auth/logout", authH.Logout)
		})

		r.Get("/countries", countryH.List)
		r.Get("/marketplace/catalog", countryH.Catalog)
		r.Get("/feed/home", posts.Home)
		r.Get("/posts/{postID}", posts.Get)
		r.Get("/stories", posts.Stories)
		r.Get("/search", users.Search)
		r.Get("/users", users.List)
		r.Get("/users/{userID}", users.Get)
		r.Get("/users/{userID}/posts", users.ProfilePosts)
		r.Get("/reels", reels.Feed)
		r.Get("/reels/{reelID}", reels.Get)
		r.Get("/groups", groups.List)
		r.Get("/groups/{groupID}", groups.Get)
		r.Get("/events", events.List)
		r.Get("/products", products.List)
		r.Get("/products/{productID}", products.Get)
		r.Get("/music/songs", musicH.Songs)
		r.Get("/music/albums", musicH.Albums)
		r.Get("/music/albums/{albumID}", musicH.Album)
		r.Get("/podcasts", musicH.Podcasts)
		r.Get("/podcasts/{podcastID}", musicH.Podcast)
		r.Get("/tracks/{trackID}", musicH.Track)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Get("/me", users.Me)
			r.Get("/me/suggestions", users.Suggestions)
			r.Get("/me/birthdays", users.Birthdays)
			r.Get("/me/contacts", users.Contacts)
			r.Get("/messages/{userID}", messages.Conversation)
			r.Get("/notifications", messages.Notifications)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Throttle(deps.Limiter, "submit"))

				r.Patch("/me", users.UpdateProfile)
				r.Put("/me/avatar", users.UpdateAvatar)
				r.Put("/me/cover", users.UpdateCover)
				r.Post("/users/{userID}/follow", users.Follow)
				r.Delete("/users/{userID}/follow", users.Unfollow)

				r.Post("/media", posts.Upload)
				r.Post("/posts", posts.Create)
				r.Patch("/posts/{postID}", posts.Edit)
				r.Delete("/posts/{postID}", posts.Delete)
				r.Post("/posts/{postID}/share", posts.Share)
				r.Post("/posts/{postID}/reactions", posts.React)
				r.Post("/posts/{postID}/comments", posts.Comment)
				r.Post("/posts/{postID}/comments/{commentID}/like", posts.LikeComment)
				r.Post("/stories", posts.CreateStory)

				r.Post("/reels", reels.Create)
				r.Post("/reels/{reelID}/reactions", reels.React)
				r.Post("/reels/{reelID}/comments", reels.Comment)
				r.Post("/reels/{reelID}/share", reels.Share)

				r.Post("/groups", groups.Create)
				r.Post("/groups/{groupID}/members", groups.Join)
				r.Delete("/groups/{groupID}/members", groups.Leave)
				r.Post("/groups/{groupID}/posts", groups.Post)
				r.Post("/groups/{groupID}/posts/{postID}/like", groups.Like)
				r.Post("/groups/{groupID}/posts/{postID}/comments", groups.Comment)

				r.Post("/events", events.Create)
				r.Post("/events/{eventID}/attendees", events.Join)

				r.Post("/products", products.Create)
				r.Put("/products/{productID}/status", products.SetStatus)
				r.Post("/products/{productID}/ratings", products.Rate)
				r.Post("/products/{productID}/comments", products.Comment)

				r.Post("/messages/{userID}", messages.Send)
				r.Post("/notifications/read", messages.MarkAllRead)
				r.Post("/notifications/{notificationID}/read", messages.MarkRead)
			})
		})
	})

	return r
}
