package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/unera/backend/internal/graph"
	"github.com/unera/backend/internal/models"
	"github.com/unera/backend/internal/persist"
)

// seedUser is a roster entry of the seed file. Passwords are given in clear text and follow
// edges are listed one way; both are normalized before the roster is stored.
type seedUser struct {
	models.User
	Password string  `json:"password"`
	Follows  []int64 `json:"follows"`
}

// parseSeed reads a JSON seed roster, hashes its passwords and builds symmetric follow edges.
func parseSeed(r io.Reader, cost int) ([]models.User, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	var entries []seedUser
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode seed roster: %w", err)
	}

	users := make([]models.User, 0, len(entries))
	ids := make(map[int64]struct{}, len(entries))
	emails := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		u := e.User
		if u.ID <= 0 {
			return nil, fmt.Errorf("seed user %q: id must be positive", u.Name)
		}
		if _, dup := ids[u.ID]; dup {
			return nil, fmt.Errorf("seed user %d: duplicate id", u.ID)
		}
		ids[u.ID] = struct{}{}

		u.Email = strings.ToLower(strings.TrimSpace(u.Email))
		if u.Email != "" {
			if _, dup := emails[u.Email]; dup {
				return nil, fmt.Errorf("seed user %d: duplicate email %s", u.ID, u.Email)
			}
			emails[u.Email] = struct{}{}
		}
		if e.Password != "" {
			if err := models.ValidatePassword(e.Password); err != nil {
				return nil, fmt.Errorf("seed user %d: %w", u.ID, err)
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(e.Password), cost)
			if err != nil {
				return nil, fmt.Errorf("seed user %d: hash password: %w", u.ID, err)
			}
			u.PasswordHash = string(hash)
		}
		if u.Name == "" {
			u.Name = strings.TrimSpace(u.FirstName + " " + u.LastName)
		}
		if u.ProfileImage == "" {
			u.ProfileImage = fmt.Sprintf("https://i.pravatar.cc/150?u=%d", u.ID)
		}
		if u.Role == "" {
			u.Role = models.RoleUser
		}
		u.Followers, u.Following = []int64{}, []int64{}
		users = append(users, u)
	}

	for _, e := range entries {
		for _, target := range e.Follows {
			next, _, err := graph.Follow(users, e.ID, target)
			if err != nil {
				return nil, fmt.Errorf("seed user %d follows %d: %w", e.ID, target, err)
			}
			users = next
		}
	}
	return users, nil
}

func runSeed(ctx context.Context, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	seedFile := cfg.SeedFile
	if len(args) > 0 {
		seedFile = args[0]
	}
	f, err := os.Open(seedFile)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	users, err := parseSeed(f, 0)
	if err != nil {
		return err
	}

	backend, err := openStateBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open state backend: %w", err)
	}
	defer func() {
		for _, closeFn := range backend.closers {
			_ = closeFn(ctx)
		}
	}()

	if err := persist.NewLocalState(backend.kv).SaveUsers(ctx, users); err != nil {
		return fmt.Errorf("save seed roster: %w", err)
	}
	logger.Info("applied seed roster", "file", seedFile, "users", len(users), "backend", cfg.StateBackend)
	return nil
}
