package watcher

import (
	"context"
	"sync"
	"time"

	"evmwallet/pkg/logging"
	"evmwallet/pkg/models"
)

// DefaultInterval is the polling period when none is configured.
const DefaultInterval = 30 * time.Second

// Source is what the watcher polls. *wallet.Wallet implements it.
type Source interface {
	RefreshActive(ctx context.Context) (models.BalanceReport, bool, error)
	Reconcile(ctx context.Context) ([]models.TransactionRecord, error)
}

// Options configure a Watcher.
type Options struct {
	Interval  time.Duration
	Reconcile bool
}

// Watcher refreshes the active account on a timer and broadcasts results.
type Watcher struct {
	source    Source
	interval  time.Duration
	reconcile bool

	latest  *models.BalanceReport
	lastErr error

	subscribers []Subscriber
	mu          sync.RWMutex
	trigger     chan struct{}
	stopChan    chan struct{}
	stopOnce    sync.Once
}

// NewWatcher creates a new Watcher instance.
func NewWatcher(source Source, opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Watcher{
		source:    source,
		interval:  opts.Interval,
		reconcile: opts.Reconcile,
		trigger:   make(chan struct{}, 1),
		stopChan:  make(chan struct{}),
	}
}

// Subscribe adds a new subscriber and returns a channel to receive events.
func (w *Watcher) Subscribe() Subscriber {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(Subscriber, 100)
	w.subscribers = append(w.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber.
func (w *Watcher) Unsubscribe(ch Subscriber) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, sub := range w.subscribers {
		if sub == ch {
			w.subscribers = append(w.subscribers[:i], w.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Notify broadcasts event to every subscriber. Slow subscribers miss it.
func (w *Watcher) Notify(event Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, sub := range w.subscribers {
		select {
		case sub <- event:
		default:
			logging.Debugf("subscriber full, dropping %s", event.Type)
		}
	}
}

// Trigger requests an immediate poll. Requests made while one is queued are
// merged.
func (w *Watcher) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Start begins the monitoring loop.
func (w *Watcher) Start(ctx context.Context) {
	go w.pollingLoop(ctx)
}

// Stop stops the monitoring loop. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
}

func (w *Watcher) pollingLoop(ctx context.Context) {
	// Initial fetch
	w.Poll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Poll(ctx)
		case <-w.trigger:
			w.Poll(ctx)
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Poll runs one refresh and, when enabled, one reconciliation pass
// concurrently.
func (w *Watcher) Poll(ctx context.Context) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		report, applied, err := w.source.RefreshActive(ctx)
		w.mu.Lock()
		w.lastErr = err
		if err == nil && applied {
			w.latest = &report
		}
		w.mu.Unlock()

		switch {
		case err != nil:
			logging.Warnf("balance refresh failed: %v", err)
			w.Notify(Event{Type: EventRefreshFailed, Data: err.Error()})
		case applied:
			w.Notify(Event{Type: EventBalancesUpdated, Data: report})
		}
	}()

	if w.reconcile {
		wg.Add(1)
		go func() {
			defer wg.Done()
			changed, err := w.source.Reconcile(ctx)
			if err != nil {
				logging.Warnf("reconcile: %v", err)
			}
			if len(changed) > 0 {
				w.Notify(Event{Type: EventTransactionsUpdated, Data: changed})
			}
		}()
	}

	wg.Wait()
}

// Latest returns the most recent applied report and the last refresh error.
func (w *Watcher) Latest() (*models.BalanceReport, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest, w.lastErr
}
