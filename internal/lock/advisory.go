// Package lock provides MySQL advisory locks that keep two lppminer
// processes from running the same mining job at once.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrLockTimeout is returned when lock acquisition times out because
// another instance is holding the lock.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// Timeout values for lock acquisition, in seconds.
const (
	// TimeoutImmediate returns at once if the lock is taken.
	TimeoutImmediate = 0
	// TimeoutShort is used for fast-failing duplicate job detection.
	TimeoutShort = 1
	// TimeoutInfinite waits until the lock is acquired. MySQL treats
	// negative values as infinite.
	TimeoutInfinite = -1
)

// maxLockNameLen is MySQL's limit on GET_LOCK names.
const maxLockNameLen = 64

// AdvisoryLock is a named MySQL GET_LOCK lock.
//
// MySQL ties the lock to the session that took it, so the lock pins one
// connection out of the pool from acquisition until release. The lock also
// goes away if that connection drops.
type AdvisoryLock struct {
	db       *sql.DB
	conn     *sql.Conn
	lockName string
}

// NewAdvisoryLock creates a new advisory lock with the given name.
// The lock is not acquired until AcquireLock is called.
func NewAdvisoryLock(db *sql.DB, lockName string) *AdvisoryLock {
	return &AdvisoryLock{
		db:       db,
		lockName: lockName,
	}
}

// AcquireLock attempts to acquire the lock, waiting up to timeoutSeconds.
// It returns false without error when the wait ran out.
//
// MySQL GET_LOCK() return values:
//   - 1: Lock was obtained successfully
//   - 0: Timeout was reached without obtaining the lock
//   - NULL: An error occurred (e.g., out of memory, thread killed)
func (a *AdvisoryLock) AcquireLock(ctx context.Context, timeoutSeconds int) (bool, error) {
	if a.conn != nil {
		return true, nil
	}

	conn, err := a.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to reserve connection for lock %q: %w", a.lockName, err)
	}

	var result sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", a.lockName, timeoutSeconds).Scan(&result); err != nil {
		conn.Close()
		return false, fmt.Errorf("failed to execute GET_LOCK: %w", err)
	}

	if !result.Valid {
		conn.Close()
		return false, fmt.Errorf("GET_LOCK returned NULL for lock %q (possible database error)", a.lockName)
	}

	switch result.Int64 {
	case 1:
		a.conn = conn
		return true, nil
	case 0:
		conn.Close()
		return false, nil
	default:
		conn.Close()
		return false, fmt.Errorf("unexpected GET_LOCK return value: %d", result.Int64)
	}
}

// ReleaseLock releases the lock and returns its connection to the pool.
// It reports false when the lock was not held.
//
// MySQL RELEASE_LOCK() return values:
//   - 1: Lock was released successfully
//   - 0: Lock was not established by this session
//   - NULL: Named lock did not exist
func (a *AdvisoryLock) ReleaseLock(ctx context.Context) (bool, error) {
	if a.conn == nil {
		return false, nil
	}
	conn := a.conn
	a.conn = nil
	defer conn.Close()

	var result sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", a.lockName).Scan(&result); err != nil {
		return false, fmt.Errorf("failed to execute RELEASE_LOCK: %w", err)
	}

	if !result.Valid {
		return false, fmt.Errorf("RELEASE_LOCK returned NULL for lock %q (lock did not exist)", a.lockName)
	}
	return result.Int64 == 1, nil
}

// IsHeld returns true if this lock is currently held by this instance.
func (a *AdvisoryLock) IsHeld() bool {
	return a.conn != nil
}

// LockName returns the name of the advisory lock.
func (a *AdvisoryLock) LockName() string {
	return a.lockName
}

// TryAcquire attempts to acquire the lock without waiting.
func (a *AdvisoryLock) TryAcquire(ctx context.Context) (bool, error) {
	return a.AcquireLock(ctx, TimeoutImmediate)
}

// AcquireOrFail acquires the lock with TimeoutShort and returns
// ErrLockTimeout if another instance holds it.
func (a *AdvisoryLock) AcquireOrFail(ctx context.Context) error {
	acquired, err := a.AcquireLock(ctx, TimeoutShort)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another instance", ErrLockTimeout, a.lockName)
	}
	return nil
}

// GenerateJobLockName returns the lock name for a mining job,
// "lppminer:job:{jobName}", with unsafe characters replaced by underscores
// and cut to MySQL's 64-character limit.
func GenerateJobLockName(jobName string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, jobName)

	name := "lppminer:job:" + sanitized
	if len(name) > maxLockNameLen {
		name = name[:maxLockNameLen]
	}
	return name
}

// NewJobLock creates the advisory lock for a mining job.
func NewJobLock(db *sql.DB, jobName string) *AdvisoryLock {
	return NewAdvisoryLock(db, GenerateJobLockName(jobName))
}

// IsJobRunning reports whether another instance holds the job's lock. The
// check takes and immediately releases the lock, so it is advisory only.
func IsJobRunning(ctx context.Context, db *sql.DB, jobName string) (bool, error) {
	lock := NewJobLock(db, jobName)

	acquired, err := lock.TryAcquire(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check if job %q is running: %w", jobName, err)
	}
	if acquired {
		// Closing the connection drops the lock even if this fails.
		_, _ = lock.ReleaseLock(ctx)
		return false, nil
	}
	return true, nil
}

// WithLock runs fn while holding the lock and releases it afterwards, also
// when fn panics.
func (a *AdvisoryLock) WithLock(ctx context.Context, timeoutSeconds int, fn func() error) error {
	acquired, err := a.AcquireLock(ctx, timeoutSeconds)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another instance", ErrLockTimeout, a.lockName)
	}

	defer func() {
		// ctx may already be cancelled; release on a fresh deadline.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = a.ReleaseLock(releaseCtx)
	}()

	return fn()
}

// WithJobLock runs fn under the job's advisory lock, failing fast with
// ErrLockTimeout when another instance is mining the same job.
func WithJobLock(ctx context.Context, db *sql.DB, jobName string, fn func() error) error {
	return NewJobLock(db, jobName).WithLock(ctx, TimeoutShort, fn)
}
