// Package files resolves the display metadata of files chosen for sending.
package files

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"nearshare/internal/domain"
)

// UnknownSize is shown for files whose backing resource cannot be read
const UnknownSize int64 = -1

// ErrResourceUnavailable is returned when a file cannot be opened or stat'ed
var ErrResourceUnavailable = errors.New("resource unavailable")

// ErrNotRegular is returned for paths that are not regular files
var ErrNotRegular = errors.New("not a regular file")

// Size stats the file behind ref. It is deliberately not cached:
// every call reflects the file as it is now.
func Size(fs afero.Fs, ref domain.FileRef) (int64, error) {
	info, err := fs.Stat(ref.Path())
	if err != nil {
		return UnknownSize, fmt.Errorf("%w: %s: %v", ErrResourceUnavailable, ref.Path(), err)
	}
	if !info.Mode().IsRegular() {
		return UnknownSize, fmt.Errorf("%w: %s", ErrNotRegular, ref.Path())
	}
	return info.Size(), nil
}

// DisplaySize is Size with failures folded into UnknownSize
func DisplaySize(fs afero.Fs, ref domain.FileRef) int64 {
	size, err := Size(fs, ref)
	if err != nil {
		return UnknownSize
	}
	return size
}

// Name returns the last path element of ref
func Name(ref domain.FileRef) string {
	return filepath.Base(ref.Path())
}

// HumanSize formats a byte count the way rows show it
func HumanSize(size int64) string {
	if size < 0 {
		return "? B"
	}
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

// Expand turns command line arguments into file handles.
// Paths are made absolute; directories and missing files are rejected.
func Expand(fs afero.Fs, args []string) ([]domain.FileRef, error) {
	refs := make([]domain.FileRef, 0, len(args))
	var problems []string
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		abs, err := filepath.Abs(arg)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", arg, err))
			continue
		}
		ref := domain.FileRef(abs)
		if _, err := Size(fs, ref); err != nil {
			problems = append(problems, err.Error())
			continue
		}
		refs = append(refs, ref)
	}
	if len(problems) > 0 {
		return refs, fmt.Errorf("cannot send: %s", strings.Join(problems, "; "))
	}
	return refs, nil
}
