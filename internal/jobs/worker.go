package jobs

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"cmms/internal/alert"
)

// ShownChecker answers whether a composite key was already surfaced by the
// in-process scheduler. Keeps the durable path from double-alerting.
type ShownChecker interface {
	Shown(key string) bool
}

type Worker struct {
	ID    string
	Repo  *Repo
	Sink  alert.Sink
	Shown ShownChecker
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(800 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(w.ID)
			if err != nil {
				log.Error().Err(err).Msg("worker claim error")
				continue
			}
			if job == nil {
				continue
			}
			w.handle(ctx, job)
		}
	}
}

func (w *Worker) handle(ctx context.Context, job *DispatchJob) {
	// Already shown by a live timer: nothing to deliver.
	if w.Shown != nil && w.Shown.Shown(job.Key) {
		_ = w.Repo.MarkDone(job.ID)
		return
	}

	if err := w.Sink.Show(ctx, job.Recipient, job.Title, job.Body); err != nil {
		w.retry(job, err.Error())
		return
	}

	log.Info().
		Str("key", job.Key).
		Str("recipient", job.Recipient).
		Msg("dispatched")
	_ = w.Repo.MarkDone(job.ID)
}

func (w *Worker) retry(job *DispatchJob, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Repo.RetryLater(job.ID, attempts, next, errMsg)
}
