package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BerylCAtieno/processos-api/internal/extractor"
	"github.com/BerylCAtieno/processos-api/internal/models"
	"github.com/BerylCAtieno/processos-api/internal/queue"
	"github.com/BerylCAtieno/processos-api/internal/repository"
	"github.com/BerylCAtieno/processos-api/internal/storage"
	"github.com/BerylCAtieno/processos-api/internal/utils"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Concurrency int
	Timeout     time.Duration
}

// Worker drives documents through RUNNING to DONE or FAILED as extraction
// messages arrive.
type Worker struct {
	docs       repository.DocumentRepository
	storage    storage.Storage
	extractors *extractor.Registry
	consumer   queue.Consumer
	opts       Options
	logger     *utils.Logger
}

func New(
	docs repository.DocumentRepository,
	store storage.Storage,
	extractors *extractor.Registry,
	consumer queue.Consumer,
	opts Options,
	logger *utils.Logger,
) *Worker {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Worker{
		docs:       docs,
		storage:    store,
		extractors: extractors,
		consumer:   consumer,
		opts:       opts,
		logger:     logger,
	}
}

// Run consumes until ctx is cancelled or a consumer fails.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.opts.Concurrency; i++ {
		slot := i
		g.Go(func() error {
			w.logger.Info("Extraction consumer started", "slot", slot)
			if err := w.consumer.Consume(ctx, w.Handle); err != nil {
				return fmt.Errorf("consumer %d: %w", slot, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Handle processes one extraction message. A nil return acknowledges it; an
// error leaves it for redelivery.
func (w *Worker) Handle(ctx context.Context, msg queue.Message) error {
	log := w.logger.With("document_id", msg.DocumentID)

	doc, err := w.docs.GetByID(ctx, msg.DocumentID)
	if err != nil {
		log.Error("Failed to load document", "error", err)
		return err
	}
	if doc == nil {
		log.Warn("Document not found, dropping message")
		return nil
	}
	if doc.Status.Terminal() {
		log.Info("Document already processed, skipping", "status", doc.Status)
		return nil
	}

	ok, err := w.docs.Transition(ctx, doc.ID, models.StatusRunning, nil)
	if err != nil {
		log.Error("Failed to mark document running", "error", err)
		return err
	}
	if !ok {
		log.Info("Document moved on before extraction started, skipping")
		return nil
	}

	path := msg.Path
	if path == "" {
		path = doc.Path
	}

	started := time.Now()
	text, err := w.extract(ctx, path)
	if err != nil {
		log.Warn("Extraction failed", "error", err, "path", path, "duration", time.Since(started))
		return w.finish(ctx, log, doc.ID, models.StatusFailed, nil)
	}

	log.Info("Extraction finished", "path", path, "chars", len(text), "duration", time.Since(started))

	if err := w.finish(ctx, log, doc.ID, models.StatusDone, &text); err != nil {
		return w.finish(ctx, log, doc.ID, models.StatusFailed, nil)
	}
	return nil
}

func (w *Worker) finish(ctx context.Context, log *utils.Logger, id int64, status models.ExtractionStatus, text *string) error {
	ok, err := w.docs.Transition(ctx, id, status, text)
	if err != nil {
		log.Error("Failed to record extraction result", "error", err, "status", status)
		return err
	}
	if !ok {
		log.Info("Extraction result already recorded", "status", status)
	}
	return nil
}

func (w *Worker) extract(ctx context.Context, path string) (text string, err error) {
	if w.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.opts.Timeout)
		defer cancel()
	}

	data, err := w.storage.Download(ctx, path)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", path, err)
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	ext := w.extractors.ForPath(path)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("extractor panic: %v", r)}
			}
		}()
		t, err := ext.ExtractText(ctx, data)
		done <- result{text: t, err: err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", errors.Join(errors.New("extraction timed out"), ctx.Err())
	}
}
