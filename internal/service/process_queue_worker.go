package service

import (
	"context"
	"log"
	"sync"
	"time"

	"invosplit/internal/domain"
	"invosplit/internal/port"
)

// ProcessQueueConfig holds settings for the batch processing worker.
type ProcessQueueConfig struct {
	PollInterval time.Duration
	Concurrency  int
}

// ProcessQueueWorker polls for batches whose split has been validated and
// dispatches them for extraction. One batch is processed by one goroutine;
// the per-batch pipeline itself stays sequential.
type ProcessQueueWorker struct {
	repo    port.BatchRepository
	service BatchService
	cfg     ProcessQueueConfig
	wg      sync.WaitGroup

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewProcessQueueWorker creates a new ProcessQueueWorker.
func NewProcessQueueWorker(repo port.BatchRepository, service BatchService, cfg ProcessQueueConfig) *ProcessQueueWorker {
	return &ProcessQueueWorker{
		repo:     repo,
		service:  service,
		cfg:      cfg,
		inFlight: make(map[string]struct{}),
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight extractions have finished.
func (w *ProcessQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("processQueueWorker: started (poll=%s, concurrency=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency)

	for {
		select {
		case <-ctx.Done():
			log.Printf("processQueueWorker: shutting down, waiting for in-flight extractions...")
			w.wg.Wait()
			log.Printf("processQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			batches, err := w.repo.ListByState(ctx, domain.BatchStateSplitValidated, available)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("processQueueWorker: ListByState error: %v", err)
				continue
			}

			for i := range batches {
				batch := batches[i]
				if !w.claim(batch.ID.String()) {
					continue
				}

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release
					defer w.release(batch.ID.String())

					// Fresh context independent of the poll context so
					// in-flight extractions complete even during shutdown.
					extractCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
					defer cancel()

					log.Printf("processQueueWorker: dispatching batch %s", batch.ID)
					if _, err := w.service.ExtractData(extractCtx, batch.ID); err != nil {
						log.Printf("processQueueWorker: batch %s extraction error: %v", batch.ID, err)
					}
				}()
			}
		}
	}
}

// claim marks a batch as in flight so overlapping polls cannot dispatch it
// twice before its state change lands.
func (w *ProcessQueueWorker) claim(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, taken := w.inFlight[id]; taken {
		return false
	}
	w.inFlight[id] = struct{}{}
	return true
}

func (w *ProcessQueueWorker) release(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, id)
}
