package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ReelAssetUpdater records the outcome of a reel upload.
type ReelAssetUpdater interface {
	MarkReelReady(ctx context.Context, reelID int64, videoURL string) error
	MarkReelFailed(ctx context.Context, reelID int64) error
}

// IngestorConfig controls the concurrency characteristics of the ingestor.
type IngestorConfig struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
}

// Job is a reel video waiting to be stored.
type Job struct {
	ReelID   int64
	FileName string
	Content  []byte
}

// Ingestor stores reel videos in the background and reports the result to an updater.
type Ingestor struct {
	storage Storage
	updater ReelAssetUpdater
	logger  *slog.Logger
	timeout time.Duration

	jobs   chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// ErrIngestorClosed is returned by Enqueue after Shutdown.
var ErrIngestorClosed = errors.New("media ingestor closed")

// NewIngestor starts the worker pool.
func NewIngestor(storage Storage, updater ReelAssetUpdater, cfg IngestorConfig, logger *slog.Logger) *Ingestor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	ing := &Ingestor{
		storage: storage,
		updater: updater,
		logger:  logger,
		timeout: cfg.Timeout,
		jobs:    make(chan Job, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	ing.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go ing.worker()
	}

	return ing
}

// Enqueue schedules storage of a reel video.
func (i *Ingestor) Enqueue(ctx context.Context, job Job) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-i.ctx.Done():
		return ErrIngestorClosed
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-i.ctx.Done():
		return ErrIngestorClosed
	case i.jobs <- job:
		return nil
	}
}

// Shutdown stops accepting jobs and waits for the workers to exit.
func (i *Ingestor) Shutdown(ctx context.Context) error {
	i.once.Do(func() {
		i.cancel()
		close(i.jobs)
	})

	done := make(chan struct{})
	go func() {
		i.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (i *Ingestor) worker() {
	defer i.wg.Done()

	for {
		select {
		case <-i.ctx.Done():
			return
		case job, ok := <-i.jobs:
			if !ok {
				return
			}
			i.handleJob(job)
		}
	}
}

func (i *Ingestor) handleJob(job Job) {
	if i.storage == nil || i.updater == nil {
		i.logger.Error("media ingestor missing dependencies", "hasStorage", i.storage != nil, "hasUpdater", i.updater != nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), i.timeout)
	defer cancel()

	if len(job.Content) == 0 {
		i.logger.Error("reel upload is empty", "reelId", job.ReelID, "file", job.FileName)
		i.recordFailure(job.ReelID)
		return
	}

	url, err := Upload(ctx, i.storage, fmt.Sprintf("reels/%d", job.ReelID), job.FileName, bytes.NewReader(job.Content))
	if err != nil {
		i.logger.Error("reel ingestion failed", "reelId", job.ReelID, "file", job.FileName, "error", err)
		i.recordFailure(job.ReelID)
		return
	}

	if err := i.recordSuccess(job.ReelID, url); err != nil {
		i.logger.Error("mark reel ready", "reelId", job.ReelID, "error", err)
		i.recordFailure(job.ReelID)
	}
}

func (i *Ingestor) recordFailure(reelID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := i.updater.MarkReelFailed(ctx, reelID); err != nil {
		i.logger.Error("record reel failure", "reelId", reelID, "error", err)
	}
}

func (i *Ingestor) recordSuccess(reelID int64, url string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return i.updater.MarkReelReady(ctx, reelID, url)
}
