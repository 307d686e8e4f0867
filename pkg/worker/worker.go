package worker

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/clock"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/shishobooks/circulation/pkg/metrics"
)

var processID = randStringBytes(8)

// Expirer moves lapsed memberships to expired and reports how many changed.
type Expirer interface {
	ExpireLapsed(ctx context.Context) (int, error)
}

// Worker runs the membership expiry sweep on a fixed interval. The first
// sweep runs as soon as the worker starts.
type Worker struct {
	interval time.Duration
	log      logger.Logger
	clock    clock.Clock
	metrics  *metrics.SweepMetrics

	expirer Expirer

	shutdown chan struct{}
	done     chan struct{}
}

func New(cfg *config.Config, clk clock.Clock, expirer Expirer, m *metrics.SweepMetrics) *Worker {
	return &Worker{
		interval: cfg.ExpirySweepInterval,
		log:      logger.New(),
		clock:    clk,
		metrics:  m,

		expirer: expirer,

		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (w *Worker) Start() {
	go w.run()
}

func (w *Worker) run() {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-w.shutdown:
			w.done <- struct{}{}
			return
		case <-timer.C:
			// Errors are logged and counted by Sweep; the next tick retries.
			_, _ = w.Sweep(context.Background())
			timer.Reset(w.interval)
		}
	}
}

// Sweep runs one expiry pass and returns how many patrons were expired.
func (w *Worker) Sweep(ctx context.Context) (int, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		w.log.Err(err).Error("new uuid error")
		return 0, err
	}
	log := w.log.ID(id.String()).Root(logger.Data{"process_id": processID})
	ctx = log.WithContext(ctx)

	start := time.Now()
	expired, err := w.expirer.ExpireLapsed(ctx)
	w.metrics.ObserveRun(w.clock.Now(), time.Since(start), expired, err)
	if err != nil {
		log.Err(err).Error("expiry sweep error")
		return 0, err
	}

	if expired > 0 {
		log.Info("expired lapsed memberships", logger.Data{"expired": expired})
	} else {
		log.Debug("no lapsed memberships")
	}
	return expired, nil
}

func (w *Worker) Shutdown() {
	close(w.shutdown)
	<-w.done
}

const letterBytes = "abcdef0123456789"

func randStringBytes(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.Intn(len(letterBytes))]
	}
	return string(b)
}
