// Package download saves binary payloads received from the backend as
// files in the user's download directory.
package download

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/therapyassist/dashboard-go/internal/model"
)

const (
	tempPattern     = ".download-*"
	fallbackName    = "download"
	maxNameAttempts = 1000
)

type Saver struct {
	dir       string
	onRelease func(path string)
}

type Option func(*Saver)

// WithReleaseHook observes every released temporary reference.
func WithReleaseHook(fn func(path string)) Option {
	return func(s *Saver) {
		s.onRelease = fn
	}
}

func NewSaver(dir string, opts ...Option) *Saver {
	if dir == "" {
		dir = "."
	}
	s := &Saver{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Saver) Dir() string {
	return s.dir
}

// reference is a temporary file holding the payload until it is saved.
type reference struct {
	path      string
	once      sync.Once
	onRelease func(string)
}

func (r *reference) release() {
	r.once.Do(func() {
		if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn().Err(err).Str("path", r.path).Msg("failed to remove temporary download")
		}
		if r.onRelease != nil {
			r.onRelease(r.path)
		}
	})
}

// Save writes blob under filename in the download directory and returns
// the final path. An existing file is never overwritten: a numbered name
// is chosen instead. The temporary reference is released exactly once on
// every path out of Save.
func (s *Saver) Save(blob *model.Blob, filename string) (string, error) {
	if blob.Size() == 0 {
		return "", fmt.Errorf("save %s: empty payload", filename)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	ref, err := s.stage(blob.Data)
	if err != nil {
		return "", err
	}
	defer ref.release()

	target, err := s.place(ref.path, SanitizeFilename(filename))
	if err != nil {
		return "", err
	}
	ref.release()

	log.Debug().Str("path", target).Int("bytes", blob.Size()).Msg("download saved")
	return target, nil
}

func (s *Saver) stage(data []byte) (*reference, error) {
	f, err := os.CreateTemp(s.dir, tempPattern)
	if err != nil {
		return nil, fmt.Errorf("create temporary download: %w", err)
	}
	ref := &reference{path: f.Name(), onRelease: s.onRelease}

	if _, err := f.Write(data); err != nil {
		f.Close()
		ref.release()
		return nil, fmt.Errorf("write temporary download: %w", err)
	}
	if err := f.Close(); err != nil {
		ref.release()
		return nil, fmt.Errorf("close temporary download: %w", err)
	}
	return ref, nil
}

// place hard-links src to the first free name derived from name.
func (s *Saver) place(src, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for n := 0; n < maxNameAttempts; n++ {
		candidate := name
		if n > 0 {
			candidate = fmt.Sprintf("%s (%d)%s", stem, n, ext)
		}
		target := filepath.Join(s.dir, candidate)

		err := os.Link(src, target)
		if err == nil {
			return target, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("save download: %w", err)
		}
	}
	return "", fmt.Errorf("save download: no free name for %s", name)
}

// SanitizeFilename keeps only the final path element of name.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.FromSlash(name))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return fallbackName
	}
	return name
}
