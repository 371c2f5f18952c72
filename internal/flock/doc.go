// Package flock provides cross-platform file locking utilities.
//
// The ledger store uses these primitives to serialize appends through a
// companion lock file. Locks are exclusive and non-blocking; callers retry
// with their own deadline.
//
// Usage:
//
//	file, _ := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
//	if err := flock.Exclusive(file.Fd()); err != nil {
//	    // Lock not acquired - file is in use
//	}
//	defer flock.Unlock(file.Fd())
package flock
