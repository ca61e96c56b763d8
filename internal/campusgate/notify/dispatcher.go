package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jjayakar/campusgate/internal/campusgate/imagestore"
)

// Job is one queued security alert.  Jobs are ephemeral: they live only
// in the dispatch queue and are gone once delivery finishes, succeed or
// exhaust their retries.
type Job struct {
	AttemptID int64
	ImageRef  string // opaque imagestore reference, empty if no still
	Timestamp time.Time
}

// Config tunes the dispatcher.  Zero values pick the defaults.
type Config struct {
	QueueSize   int           // buffered queue capacity (default 256)
	MaxAttempts int           // delivery tries per job (default 3)
	Backoff     time.Duration // base delay between tries, grows linearly (default 10s)
	SendTimeout time.Duration // per-try transport timeout (default 30s)
}

// Dispatcher owns the notification queue and the single worker that
// drains it.  Enqueue never blocks the caller's decision path; delivery
// happens on the worker goroutine with bounded retries.  The captured
// still is deleted only after the final delivery attempt, so a reviewer
// link never outlives its image silently.
type Dispatcher struct {
	jobs     chan Job
	notifier Notifier
	images   imagestore.Store
	cfg      Config
	logger   *log.Logger
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewDispatcher(n Notifier, images imagestore.Store, cfg Config, logger *log.Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 10 * time.Second
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}

	return &Dispatcher{
		jobs:     make(chan Job, cfg.QueueSize),
		notifier: n,
		images:   images,
		cfg:      cfg,
		logger:   logger,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (d *Dispatcher) Start() {
	go d.loop()
}

// Stop closes the queue and waits for the worker to drain it.  The job
// in flight (and anything still queued) finishes before Stop returns,
// but remaining retry delays are skipped so shutdown stays bounded by
// tries, not backoff.  Producers must be stopped first; the HTTP server
// shuts down before the dispatcher does.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.quit)
		close(d.jobs)
	})
	<-d.done
}

// Enqueue offers a job to the queue without blocking.  It reports false
// if the queue is full; the caller decides how to surface the loss.
func (d *Dispatcher) Enqueue(job Job) bool {
	select {
	case d.jobs <- job:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) loop() {
	defer close(d.done)

	for job := range d.jobs {
		d.deliver(job)
	}
}

func (d *Dispatcher) deliver(job Job) {
	n := Notification{
		AttemptID: job.AttemptID,
		Timestamp: job.Timestamp,
	}
	if job.ImageRef != "" {
		n.ImagePath = d.images.Path(job.ImageRef)
	}

	var err error
	for try := 1; try <= d.cfg.MaxAttempts; try++ {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
		err = d.notifier.Send(ctx, n)
		cancel()

		if err == nil {
			d.logger.Printf("security alert sent for attempt %d", job.AttemptID)
			break
		}
		d.logger.Printf("security alert for attempt %d failed (try %d/%d): %v",
			job.AttemptID, try, d.cfg.MaxAttempts, err)
		if try < d.cfg.MaxAttempts {
			d.pause(time.Duration(try) * d.cfg.Backoff)
		}
	}
	if err != nil {
		d.logger.Printf("security alert for attempt %d abandoned after %d tries",
			job.AttemptID, d.cfg.MaxAttempts)
	}

	// The image is only removed after delivery has had its chance,
	// success or not.
	if job.ImageRef != "" {
		if derr := d.images.Delete(job.ImageRef); derr != nil {
			d.logger.Printf("delete captured image %q: %v", job.ImageRef, derr)
		}
	}
}

// pause waits out a retry backoff.  During shutdown the wait is cut
// short so the remaining tries run back to back instead of holding Stop
// for the full schedule.
func (d *Dispatcher) pause(delay time.Duration) {
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-d.quit:
	}
}
