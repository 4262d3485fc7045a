// Package lock implements an advisory lock file guarding the check-then-write
// sequence of certificate issuance against concurrent invocations.
package lock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/r2dtools/certman/internal/logger"
	"github.com/shirou/gopsutil/process"
	"github.com/unknwon/com"
)

const (
	FileSuffix = ".lock"
	filePerm   = 0600

	// a lock file without a pid is held for this long before it counts as abandoned
	unwrittenLockGracePeriod = 10 * time.Second
)

var (
	// ErrLocked is returned when another live process holds the lock.
	ErrLocked = errors.New("locked by another process")

	// ErrNotOwner is returned when releasing a lock file that was taken over or rewritten.
	ErrNotOwner = errors.New("lock is not owned by this process")
)

var (
	processPidExists = process.PidExists
	pidExists        = processPidExists
)

type FileLock struct {
	path   string
	token  string
	logger logger.Logger
}

// Acquire creates the lock file. A lock left by a process that no longer exists is reclaimed.
func Acquire(path string, logger logger.Logger) (*FileLock, error) {
	lock := &FileLock{path: path, token: uuid.NewString(), logger: logger}
	err := lock.create()

	if err == nil {
		return lock, nil
	}

	if !errors.Is(err, fs.ErrExist) {
		return nil, err
	}

	stale, err := isStale(path)

	if err != nil {
		return nil, err
	}

	if !stale {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}

	logger.Warning("removing stale lock '%s'", path)

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	if err := lock.create(); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}

		return nil, err
	}

	return lock, nil
}

func (l *FileLock) Path() string {
	return l.path
}

// Release removes the lock file if it still carries this lock's token.
func (l *FileLock) Release() error {
	if !com.IsFile(l.path) {
		return nil
	}

	_, token, err := readLockFile(l.path)

	if err != nil {
		return err
	}

	if token != l.token {
		return fmt.Errorf("%w: %s", ErrNotOwner, l.path)
	}

	if err := os.Remove(l.path); err != nil {
		return err
	}

	l.logger.Debug("released lock '%s'", l.path)

	return nil
}

func (l *FileLock) create() error {
	file, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)

	if err != nil {
		return err
	}

	content := fmt.Sprintf("%d\n%s\n", os.Getpid(), l.token)

	if _, err := file.WriteString(content); err != nil {
		file.Close()
		os.Remove(l.path)

		return err
	}

	if err := file.Close(); err != nil {
		return err
	}

	l.logger.Debug("acquired lock '%s'", l.path)

	return nil
}

func isStale(path string) (bool, error) {
	pid, _, err := readLockFile(path)

	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}

	if err != nil {
		return false, err
	}

	// the owner may not have written its pid yet
	if pid <= 0 {
		stat, err := os.Stat(path)

		if errors.Is(err, fs.ErrNotExist) {
			return true, nil
		}

		if err != nil {
			return false, err
		}

		return time.Since(stat.ModTime()) > unwrittenLockGracePeriod, nil
	}

	exists, err := pidExists(pid)

	if err != nil {
		return false, fmt.Errorf("could not check lock owner %d: %v", pid, err)
	}

	return !exists, nil
}

func readLockFile(path string) (int32, string, error) {
	content, err := os.ReadFile(path)

	if err != nil {
		return 0, "", err
	}

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	pid, err := strconv.ParseInt(strings.TrimSpace(lines[0]), 10, 32)

	if err != nil {
		return 0, "", nil
	}

	token := ""

	if len(lines) > 1 {
		token = strings.TrimSpace(lines[1])
	}

	return int32(pid), token, nil
}
