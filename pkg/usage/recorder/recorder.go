package recorder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/w93163red/LivCap-Translate/pkg/usage"
)

// Config tunes the usage recorder.
type Config struct {
	// Enabled turns recording on. A disabled recorder accepts and
	// discards records, so callers never need their own guard.
	Enabled bool

	// QueueSize is the capacity of the hand-off queue between the
	// request path and the storage writer. Zero means 1000.
	QueueSize int

	// WriteTimeout bounds a single storage write. Zero means 5 seconds.
	WriteTimeout time.Duration
}

func (c *Config) normalize() Config {
	out := Config{Enabled: true, QueueSize: 1000, WriteTimeout: 5 * time.Second}
	if c == nil {
		return out
	}
	out.Enabled = c.Enabled
	if c.QueueSize > 0 {
		out.QueueSize = c.QueueSize
	}
	if c.WriteTimeout > 0 {
		out.WriteTimeout = c.WriteTimeout
	}
	return out
}

// Recorder accepts usage records from the request path and writes them to
// storage from a background goroutine. Record never blocks: when the queue
// is full the record is dropped and counted instead.
type Recorder struct {
	store   usage.Storage
	cfg     Config
	queue   chan *usage.Record
	quit    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Int64
	logger  *slog.Logger
}

// NewRecorder creates a usage recorder backed by store and starts its
// writer goroutine. A nil cfg enables recording with default sizing.
func NewRecorder(store usage.Storage, cfg *Config) *Recorder {
	conf := cfg.normalize()

	r := &Recorder{
		store:  store,
		cfg:    conf,
		queue:  make(chan *usage.Record, conf.QueueSize),
		quit:   make(chan struct{}),
		logger: slog.Default().With("component", "usage.recorder"),
	}

	r.wg.Add(1)
	go r.pump()

	r.logger.Info("usage recorder started",
		"enabled", conf.Enabled,
		"queue_size", conf.QueueSize,
	)
	return r
}

// Record enqueues a usage record for async writing and returns immediately.
// Missing ID and CreatedAt fields are filled in on the way.
func (r *Recorder) Record(record *usage.Record) {
	if !r.cfg.Enabled {
		return
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	select {
	case <-r.quit:
		r.logger.Warn("recorder closed, usage record lost", "request_id", record.RequestID)
		return
	default:
	}

	select {
	case r.queue <- record:
	default:
		n := r.dropped.Add(1)
		r.logger.Error("usage queue full, dropping record",
			"error", &usage.DroppedError{RequestID: record.RequestID},
			"dropped_total", n,
		)
	}
}

// Dropped returns how many records were discarded because the queue was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops the recorder after flushing every queued record to storage.
// It is idempotent.
func (r *Recorder) Close() error {
	r.once.Do(func() {
		close(r.quit)
		r.wg.Wait()
		r.logger.Info("usage recorder stopped", "dropped_total", r.dropped.Load())
	})
	return nil
}

// pump moves records from the queue into storage until Close, then drains
// whatever is left.
func (r *Recorder) pump() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.queue:
			r.flush(record)
		case <-r.quit:
			for {
				select {
				case record := <-r.queue:
					r.flush(record)
				default:
					return
				}
			}
		}
	}
}

// flush writes one record, logging rather than propagating failures since
// nothing upstream can act on them.
func (r *Recorder) flush(record *usage.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.WriteTimeout)
	defer cancel()

	began := time.Now()
	if err := r.store.Store(ctx, record); err != nil {
		r.logger.Error("usage write failed",
			"request_id", record.RequestID,
			"error", err,
		)
		return
	}

	elapsed := time.Since(began)
	r.logger.Debug("usage recorded",
		"request_id", record.RequestID,
		"model", record.Model,
		"status", record.Status,
		"write_ms", elapsed.Milliseconds(),
	)
	if elapsed > r.cfg.WriteTimeout/2 {
		r.logger.Warn("slow usage write", "write_ms", elapsed.Milliseconds())
	}
}
