package playback

import "sync"

// VisibilityThreshold is the fraction of a reel that must be on screen before it plays.
const VisibilityThreshold = 0.6

// Player controls a single reel's media element.
type Player interface {
	Play(reelID int64) error
	Pause(reelID int64)
}

// ReelCoordinator keeps at most one reel playing. Activating a reel pauses the previous one
// before the next starts, so two reels are never audible together.
type ReelCoordinator struct {
	mu        sync.Mutex
	player    Player
	active    int64
	playing   bool
	suspended bool
}

// NewReelCoordinator constructs a coordinator driving player.
func NewReelCoordinator(player Player) *ReelCoordinator {
	return &ReelCoordinator{player: player}
}

// Activate makes reelID the playing reel.
func (c *ReelCoordinator) Activate(reelID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == reelID && (c.playing || c.suspended) {
		return nil
	}
	if c.playing {
		c.player.Pause(c.active)
		c.playing = false
	}
	c.active = reelID
	if c.suspended {
		return nil
	}
	if err := c.player.Play(reelID); err != nil {
		return err
	}
	c.playing = true
	return nil
}

// Observe reports the visible ratio of reelID. Crossing the threshold activates it; a playing
// reel that scrolls out of view is paused.
func (c *ReelCoordinator) Observe(reelID int64, ratio float64) error {
	if ratio >= VisibilityThreshold {
		return c.Activate(reelID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == reelID && c.playing {
		c.player.Pause(reelID)
		c.playing = false
	}
	return nil
}

// Suspend pauses playback while an overlay such as the comments sheet is open.
func (c *ReelCoordinator) Suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.suspended = true
	if c.playing {
		c.player.Pause(c.active)
		c.playing = false
	}
}

// Resume restarts the active reel after Suspend.
func (c *ReelCoordinator) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.suspended {
		return nil
	}
	c.suspended = false
	if c.active == 0 || c.playing {
		return nil
	}
	if err := c.player.Play(c.active); err != nil {
		return err
	}
	c.playing = true
	return nil
}

// Stop pauses the active reel and forgets it.
func (c *ReelCoordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.playing {
		c.player.Pause(c.active)
	}
	c.active = 0
	c.playing = false
}

// Playing returns the reel currently playing, if any.
func (c *ReelCoordinator) Playing() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active, c.playing
}
