package workers

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/keystroke-engine/internal/core/domain"
)

// SessionSink receives finished sessions in batches, e.g. an analytics store.
type SessionSink interface {
	WriteSessions(ctx context.Context, sessions []*domain.PracticeSession) error
}

// ExportWorker buffers submitted sessions and ships them to a SessionSink when the
// batch is full or the flush interval elapses.
type ExportWorker struct {
	sink          SessionSink
	jobs          chan *domain.PracticeSession
	batchSize     int
	flushInterval time.Duration
	done          chan struct{}
}

func NewExportWorker(sink SessionSink, batchSize int, flushInterval time.Duration) *ExportWorker {
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	return &ExportWorker{
		sink:          sink,
		jobs:          make(chan *domain.PracticeSession, batchSize*4),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		done:          make(chan struct{}),
	}
}

func (w *ExportWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		log.Println("Export Worker started in background...")

		ticker := time.NewTicker(w.flushInterval)
		defer ticker.Stop()

		batch := make([]*domain.PracticeSession, 0, w.batchSize)
		for {
			select {
			case s := <-w.jobs:
				batch = append(batch, s)
				if len(batch) >= w.batchSize {
					batch = w.flush(ctx, batch)
				}
			case <-ticker.C:
				batch = w.flush(ctx, batch)
			case <-ctx.Done():
				batch = w.drain(batch)
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				w.flush(flushCtx, batch)
				cancel()
				log.Println("Export Worker shutting down...")
				return
			}
		}
	}()
}

// Done is closed once the worker has flushed its last batch after shutdown.
func (w *ExportWorker) Done() <-chan struct{} {
	return w.done
}

func (w *ExportWorker) Export(session *domain.PracticeSession) {
	select {
	case w.jobs <- session:
	default:
		log.Printf("Export Worker queue full! Dropping session %s", session.ID)
	}
}

func (w *ExportWorker) drain(batch []*domain.PracticeSession) []*domain.PracticeSession {
	for {
		select {
		case s := <-w.jobs:
			batch = append(batch, s)
		default:
			return batch
		}
	}
}

func (w *ExportWorker) flush(ctx context.Context, batch []*domain.PracticeSession) []*domain.PracticeSession {
	if len(batch) == 0 {
		return batch
	}
	if err := w.sink.WriteSessions(ctx, batch); err != nil {
		log.Printf("Export Worker failed to write %d sessions: %v", len(batch), err)
	}
	return make([]*domain.PracticeSession, 0, w.batchSize)
}
