package upload

import (
	"context"
	"io"
	"math"

	"github.com/nikbrunner/imgpick/internal/objstore"
)

// Result is the terminal outcome of a Transfer.
type Result struct {
	URL string
	Err error
}

// Transfer is one running object upload. Progress yields percentages in
// non-decreasing order and is closed before Wait returns.
type Transfer struct {
	Progress <-chan float64

	result chan Result
	cancel context.CancelFunc
}

// StartTransfer begins putting r under key and returns immediately.
// Progress starts at 0 and ends at 100 when the put succeeds.
func StartTransfer(ctx context.Context, store objstore.Store, key string, r io.Reader, size int64) *Transfer {
	ctx, cancel := context.WithCancel(ctx)
	progress := make(chan float64)
	t := &Transfer{
		Progress: progress,
		result:   make(chan Result, 1),
		cancel:   cancel,
	}

	go func() {
		defer cancel()

		last := -1.0
		emit := func(pct float64) {
			if pct <= last {
				return
			}
			last = pct
			select {
			case progress <- pct:
			case <-ctx.Done():
			}
		}

		emit(0)
		url, err := store.Put(ctx, key, r, size, func(transferred, total int64) {
			if total <= 0 {
				return
			}
			// Whole percents; 100 is held back until the put returns
			emit(math.Min(99, math.Floor(float64(transferred)*100/float64(total))))
		})
		if err == nil {
			emit(100)
		}

		close(progress)
		t.result <- Result{URL: url, Err: err}
	}()

	return t
}

// Wait blocks until the transfer finishes. Progress must be drained first.
func (t *Transfer) Wait() Result {
	return <-t.result
}

// Cancel aborts the transfer. Wait still returns its result.
func (t *Transfer) Cancel() {
	t.cancel()
}
