// Package tempfiles keeps track of transient files created during one command
// so they can be removed on every exit path.
package tempfiles

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/r2dtools/certman/internal/logger"
	"github.com/unknwon/com"
)

const (
	dirName    = "certman"
	filePrefix = "certman-"
	dirPerm    = 0700
	filePerm   = 0600
)

type cleanupError struct {
	errs []error
}

func (ce *cleanupError) Error() string {
	return fmt.Sprintf("cleanup failed: %v", errors.Join(ce.errs...))
}

func (ce *cleanupError) Unwrap() []error {
	return ce.errs
}

type Cleaner struct {
	dir           string
	filesToDelete []string
	logger        logger.Logger
}

// CreateFile writes content into a new owner-only temporary file scheduled for deletion.
func (c *Cleaner) CreateFile(content string, suffix string) (string, error) {
	filePath := filepath.Join(c.dir, filePrefix+uuid.NewString()+suffix)
	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)

	if err != nil {
		return "", fmt.Errorf("could not create temporary file: %v", err)
	}

	c.AddFileToDeletion(filePath)

	if _, err = file.WriteString(content); err != nil {
		file.Close()

		return "", fmt.Errorf("could not write temporary file '%s': %v", filePath, err)
	}

	if err = file.Close(); err != nil {
		return "", fmt.Errorf("could not write temporary file '%s': %v", filePath, err)
	}

	c.logger.Debug("created temporary file '%s'", filePath)

	return filePath, nil
}

func (c *Cleaner) AddFileToDeletion(filePath string) {
	c.filesToDelete = append(c.filesToDelete, filePath)
}

func (c *Cleaner) Files() []string {
	return append([]string{}, c.filesToDelete...)
}

// Cleanup removes every registered file. Files that are already gone are skipped.
func (c *Cleaner) Cleanup() error {
	var errs []error

	for _, fileToDelete := range c.filesToDelete {
		if !com.IsExist(fileToDelete) {
			c.logger.Debug("file '%s' does not exist, skip deletion", fileToDelete)
			continue
		}

		if err := os.Remove(fileToDelete); err != nil {
			errs = append(errs, err)
			continue
		}

		c.logger.Debug("removed temporary file '%s'", fileToDelete)
	}

	c.filesToDelete = nil

	if len(errs) > 0 {
		return &cleanupError{errs}
	}

	return nil
}

// CreateCleaner picks a private temporary directory, preferring the per-user runtime directory.
func CreateCleaner(logger logger.Logger) (*Cleaner, error) {
	candidates := []string{
		filepath.Join("/run/user", fmt.Sprint(os.Getuid())),
		os.TempDir(),
	}

	for _, parentDir := range candidates {
		if dir, ok := tryDir(parentDir); ok {
			return &Cleaner{dir: dir, logger: logger}, nil
		}
	}

	return nil, errors.New("no suitable temporary directory found")
}

// CreateCleanerInDir is used when the caller owns the directory, e.g. in tests.
func CreateCleanerInDir(dir string, logger logger.Logger) (*Cleaner, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, err
	}

	return &Cleaner{dir: dir, logger: logger}, nil
}

func tryDir(parentDir string) (string, bool) {
	if !com.IsDir(parentDir) {
		return "", false
	}

	dir := filepath.Join(parentDir, dirName)

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", false
	}

	// probe write access, MkdirAll succeeds on an existing foreign directory
	probe, err := os.CreateTemp(dir, filePrefix)

	if err != nil {
		return "", false
	}

	probe.Close()
	os.Remove(probe.Name())

	return dir, true
}
