package main

import (
	"fmt"

	"github.com/gofrs/flock"
)

// acquireInstanceLock takes an exclusive, non-blocking lock on path. It fails
// when another process already holds it.
func acquireInstanceLock(path string) (*flock.Flock, error) {
	lock := flock.New(path)

	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("another retrotracker instance holds %s", path)
	}
	return lock, nil
}
