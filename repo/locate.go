// Package repo finds the repository a path belongs to and loads the
// repository's per-path configuration.
package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/rindex/rindex/internal/util"
)

// SentinelName is the configuration file marking a repository root
const SentinelName = "rindex.toml"

var (
	// ErrRepoNotFound is returned when no ancestor contains the sentinel
	ErrRepoNotFound = errors.New("repository root not found")

	// ErrSentinelNotFile is returned when the sentinel path exists but is
	// not a regular file
	ErrSentinelNotFile = errors.New("repository sentinel is not a regular file")
)

// Location is a discovered repository root together with the path
// components that lead from it back to the starting directory
type Location struct {
	Root     string
	Segments []string
}

// Rel returns the descended segments as a slash-separated relative path,
// "." when the start was the root itself
func (l Location) Rel() string {
	if len(l.Segments) == 0 {
		return "."
	}
	return path.Join(l.Segments...)
}

// Target re-applies the descended segments under the root
func (l Location) Target() string {
	return filepath.Join(append([]string{l.Root}, l.Segments...)...)
}

// SentinelPath returns the path of the repository's sentinel file
func (l Location) SentinelPath(name string) string {
	return filepath.Join(l.Root, name)
}

// Locate searches start and its parents for the default sentinel
func Locate(start string) (Location, error) {
	return LocateSentinel(start, SentinelName)
}

// LocateSentinel searches start and each of its parents for a file called
// name. The start path is made absolute but symlinks are not resolved.
func LocateSentinel(start, name string) (Location, error) {
	logger := util.GetLogger("Locate")

	cur, err := filepath.Abs(start)
	if err != nil {
		return Location{}, err
	}
	var descended []string
	for {
		candidate := filepath.Join(cur, name)
		info, err := os.Stat(candidate)
		switch {
		case err == nil:
			if !info.Mode().IsRegular() {
				return Location{}, fmt.Errorf("%w: %s", ErrSentinelNotFile, candidate)
			}
			slices.Reverse(descended)
			logger.Debug().Str("root", cur).Strs("segments", descended).Msg("Found repository root")
			return Location{Root: cur, Segments: descended}, nil
		case !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, syscall.ENOTDIR):
			// ENOTDIR: start names a file, keep searching from its directory
			return Location{}, err
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return Location{}, fmt.Errorf("%w: no %s above %s", ErrRepoNotFound, name, start)
		}
		descended = append(descended, filepath.Base(cur))
		cur = parent
	}
}
