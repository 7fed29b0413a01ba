// Package lock serialises mutating vault operations across processes with
// an advisory lock file.
package lock

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/keshon/kvc/internal/errs"
)

// ErrHeld is returned by a single non-blocking attempt when another holder
// owns the lock.
var ErrHeld = errors.New("lock held by another process")

// Holder describes who owns the lock, as written into the lock file.
type Holder struct {
	PID   int
	Host  string
	Token string
	Since time.Time
}

func (h Holder) String() string {
	if h.PID == 0 {
		return "unknown holder"
	}
	return fmt.Sprintf("pid %d on %s since %s", h.PID, h.Host, h.Since.Format(time.RFC3339))
}

// FileLock is an exclusive advisory lock on one file.
type FileLock struct {
	path  string
	file  *os.File
	token string
	log   *zap.Logger
}

// New returns an unlocked FileLock for path.
func New(path string, log *zap.Logger) *FileLock {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileLock{path: path, log: log}
}

// Path returns the lock file path.
func (l *FileLock) Path() string { return l.path }

// TryAcquire makes one non-blocking attempt. It returns ErrHeld when the
// lock is owned elsewhere.
func (l *FileLock) TryAcquire() error {
	if l.file != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}
	f, err := tryLock(l.path)
	if err != nil {
		return err
	}

	l.token = uuid.NewString()
	host, _ := os.Hostname()
	body := fmt.Sprintf("pid=%d\nhost=%s\ntoken=%s\ntime=%s\n",
		os.Getpid(), host, l.token, time.Now().UTC().Format(time.RFC3339))
	// best effort: the lock is the flock, not the content
	if err := f.Truncate(0); err == nil {
		_, _ = f.WriteAt([]byte(body), 0)
	}

	l.file = f
	return nil
}

// Acquire retries TryAcquire with exponential backoff until timeout, then
// fails with errs.ErrVaultLocked.
func (l *FileLock) Acquire(ctx context.Context, timeout time.Duration) error {
	start := time.Now()
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := l.TryAcquire()
		if err == nil || errors.Is(err, ErrHeld) {
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(timeout))

	if err != nil {
		if errors.Is(err, ErrHeld) || errors.Is(err, context.DeadlineExceeded) {
			return errs.E(errs.ErrVaultLocked, "acquire lock", l.path,
				fmt.Errorf("held by %s, gave up after %s", l.Holder(), time.Since(start).Round(time.Millisecond)))
		}
		return fmt.Errorf("acquire lock %q: %w", l.path, err)
	}

	l.log.Debug("lock acquired", zap.String("path", l.path), zap.Duration("waited", time.Since(start)))
	return nil
}

// Release drops the lock. The file itself is kept so that concurrent waiters
// keep contending on the same inode.
func (l *FileLock) Release() error {
	if l.file == nil {
		return nil
	}
	_ = l.file.Truncate(0)
	err := unlock(l.file)
	if cerr := l.file.Close(); err == nil {
		err = cerr
	}
	l.file = nil
	l.log.Debug("lock released", zap.String("path", l.path))
	return err
}

// Held reports whether this FileLock currently owns the lock.
func (l *FileLock) Held() bool { return l.file != nil }

// Holder parses the lock file. Fields are zero when nothing is recorded.
func (l *FileLock) Holder() Holder {
	f, err := os.Open(l.path)
	if err != nil {
		return Holder{}
	}
	defer f.Close()

	var h Holder
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), "=")
		if !ok {
			continue
		}
		switch k {
		case "pid":
			h.PID, _ = strconv.Atoi(v)
		case "host":
			h.Host = v
		case "token":
			h.Token = v
		case "time":
			h.Since, _ = time.Parse(time.RFC3339, v)
		}
	}
	return h
}
