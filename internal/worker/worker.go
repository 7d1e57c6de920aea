package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/internal/services/queue"
	queuePkg "github.com/jwebster45206/quest-engine/pkg/queue"
)

const (
	workerTimeout = 5 * time.Second

	// maxRequeues bounds how often a request waits on a locked game before it fails.
	maxRequeues = 100
)

// Worker applies queued actions one at a time.
type Worker struct {
	id        string
	queue     *queue.ActionQueue
	processor *Processor
	locker    *Locker
	log       *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a new worker instance
func New(q *queue.ActionQueue, processor *Processor, locker *Locker, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:        workerID,
		queue:     q,
		processor: processor,
		locker:    locker,
		log:       log.With("worker_id", workerID),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (w *Worker) ID() string {
	return w.id
}

// Start processes requests until Stop is called.
func (w *Worker) Start() error {
	w.log.Info("Worker starting")

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down")
			return nil
		default:
			if _, err := w.processNextRequest(); err != nil {
				w.log.Error("Error processing request", "error", err)
				select {
				case <-w.ctx.Done():
				case <-time.After(time.Second):
				}
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested")
	w.cancel()
}

// processNextRequest handles at most one request. It reports whether one was taken
// off the queue. Rejected actions are not errors: they are published and dropped.
func (w *Worker) processNextRequest() (bool, error) {
	req, err := w.queue.BlockingDequeueRequest(w.ctx, workerTimeout)
	if err != nil {
		return false, fmt.Errorf("failed to dequeue request: %w", err)
	}
	if req == nil {
		return false, nil
	}

	w.log.Debug("Received request from queue",
		"request_id", req.RequestID,
		"action", req.Action.Type,
		"game_id", req.GameStateID,
	)

	release, err := w.locker.TryLock(w.ctx, req.GameStateID)
	if err != nil {
		if requeueErr := w.queue.Requeue(w.ctx, req); requeueErr != nil {
			w.log.Error("Failed to re-queue request", "error", requeueErr, "request_id", req.RequestID)
		}
		return true, err
	}
	if release == nil {
		return true, w.requeue(req)
	}
	defer release()

	isNext, err := w.queue.IsNext(w.ctx, req)
	if err != nil {
		if requeueErr := w.queue.Requeue(w.ctx, req); requeueErr != nil {
			w.log.Error("Failed to re-queue request", "error", requeueErr, "request_id", req.RequestID)
		}
		return true, err
	}
	if !isNext {
		return true, w.wait(req)
	}

	if err := w.processor.broadcaster.PublishRequestProcessing(w.ctx, req.GameStateID, req.RequestID, req.Action.Type); err != nil {
		w.log.Error("Failed to publish processing event", "error", err)
	}
	_, _ = w.processor.ApplyLocked(w.ctx, req.GameStateID, req.RequestID, req.Action)
	if err := w.queue.Finish(w.ctx, req); err != nil {
		w.log.Error("Failed to finish request", "error", err, "request_id", req.RequestID)
	}
	return true, nil
}

// requeue puts a request for a locked game at the back of the queue.
func (w *Worker) requeue(req *queuePkg.Request) error {
	req.Attempts++
	if req.Attempts > maxRequeues {
		w.log.Warn("Game stayed locked, dropping request", "request_id", req.RequestID, "game_id", req.GameStateID)
		if err := w.queue.Finish(w.ctx, req); err != nil {
			w.log.Error("Failed to finish request", "error", err, "request_id", req.RequestID)
		}
		return w.processor.broadcaster.PublishRequestFailed(w.ctx, req.GameStateID, req.RequestID, req.Action.Type, ErrGameBusy.Error())
	}
	w.log.Debug("Game already locked, re-queueing request",
		"request_id", req.RequestID,
		"game_id", req.GameStateID,
		"attempts", req.Attempts,
	)
	return w.queue.Requeue(w.ctx, req)
}

// wait puts back a request that an earlier one for the same game must precede. An
// earlier request that never shows up within maxRequeues rounds is skipped.
func (w *Worker) wait(req *queuePkg.Request) error {
	req.Attempts++
	if req.Attempts > maxRequeues {
		skipped, err := w.queue.SkipOldest(w.ctx, req.GameStateID)
		if err != nil {
			return err
		}
		w.log.Warn("Earlier request never arrived, skipping it",
			"skipped_request_id", skipped,
			"request_id", req.RequestID,
			"game_id", req.GameStateID)
		req.Attempts = 0
	}
	w.log.Debug("Earlier request pending, re-queueing request",
		"request_id", req.RequestID,
		"game_id", req.GameStateID,
		"attempts", req.Attempts,
	)
	return w.queue.Requeue(w.ctx, req)
}
