package usecase

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atvirokodosprendimai/labstore/internal/core/ports"
)

const DefaultAuditRetention = 90 * 24 * time.Hour

// AuditArchiver periodically moves audit records older than the retention
// window into the archive partition. It runs outside the write path: the
// pipeline never waits on it, and a stopped archiver only delays retention,
// never correctness.
type AuditArchiver struct {
	repo      ports.AuditTrailRepository
	interval  time.Duration
	retention time.Duration
	batchSize int

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	archivedTotal atomic.Int64
	runFailures   atomic.Int64
}

type AuditArchiverMetrics struct {
	ArchivedTotal int64
	RunFailures   int64
}

func NewAuditArchiver(repo ports.AuditTrailRepository, interval, retention time.Duration, batchSize int) *AuditArchiver {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = DefaultAuditRetention
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &AuditArchiver{repo: repo, interval: interval, retention: retention, batchSize: batchSize}
}

func (a *AuditArchiver) Start(parent context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(parent)
	a.cancel = cancel
	a.wg.Add(1)
	go a.loop(ctx)
}

func (a *AuditArchiver) Close() error {
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	a.wg.Wait()
	return nil
}

func (a *AuditArchiver) loop(ctx context.Context) {
	defer a.wg.Done()
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		if err := a.RunOnce(ctx); err != nil {
			a.runFailures.Add(1)
			log.Printf("audit archive run error: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce drains everything past the retention cutoff in batches.
func (a *AuditArchiver) RunOnce(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-a.retention)
	for {
		moved, err := a.repo.ArchiveBefore(ctx, cutoff, a.batchSize)
		if err != nil {
			return err
		}
		a.archivedTotal.Add(int64(moved))
		if moved < a.batchSize {
			return nil
		}
	}
}

func (a *AuditArchiver) Metrics() AuditArchiverMetrics {
	return AuditArchiverMetrics{
		ArchivedTotal: a.archivedTotal.Load(),
		RunFailures:   a.runFailures.Load(),
	}
}
