// Package lazy runs process-wide setup exactly once, allowing a retry
// after a failed attempt.
package lazy

import (
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Init guards a setup function. Callers arriving while an attempt is in
// flight block and observe that attempt's outcome. A successful attempt is
// final; a failed one is reported to everyone who waited on it and the next
// caller starts a fresh attempt.
//
// The zero value is ready to use.
type Init struct {
	done   atomic.Bool
	passes atomic.Int64
	group  singleflight.Group
}

// Do runs fn unless a previous call already succeeded.
func (i *Init) Do(fn func() error) error {
	if i.done.Load() {
		return nil
	}
	_, err, _ := i.group.Do("init", func() (interface{}, error) {
		// A caller can queue behind an attempt that has just succeeded.
		if i.done.Load() {
			return nil, nil
		}
		i.passes.Add(1)
		if err := fn(); err != nil {
			return nil, err
		}
		i.done.Store(true)
		return nil, nil
	})
	return err
}

// Done reports whether an attempt has succeeded.
func (i *Init) Done() bool { return i.done.Load() }

// Passes returns how many times the setup function has been invoked.
func (i *Init) Passes() int64 { return i.passes.Load() }
