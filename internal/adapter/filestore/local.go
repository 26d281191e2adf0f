package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidRef = errors.New("invalid file reference")

const prefix = "loan_documents"

// Local stores uploads on disk under Root, in date-partitioned folders.
// References are slash-separated paths relative to Root.
type Local struct {
	Root string
	now  func() time.Time
}

func NewLocal(root string) (*Local, error) {
	if root == "" {
		return nil, errors.New("filestore: empty root")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create root: %w", err)
	}
	return &Local{Root: abs, now: time.Now}, nil
}

// Save copies r to a new uniquely named file keeping the extension of originalName.
func (l *Local) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(originalName, "\\", "/")))
	ref := path.Join(prefix, l.now().UTC().Format("2006/01/02"), uuid.NewString()+ext)

	full, err := l.LocalPath(ref)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return "", err
	}
	return ref, nil
}

func (l *Local) Open(ref string) (io.ReadCloser, error) {
	full, err := l.LocalPath(ref)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Delete removes the file; a missing file is not an error.
func (l *Local) Delete(_ context.Context, ref string) error {
	full, err := l.LocalPath(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// LocalPath resolves ref to an absolute path inside Root.
func (l *Local) LocalPath(ref string) (string, error) {
	clean := path.Clean("/" + ref)
	if ref == "" || clean == "/" || clean != "/"+ref {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return filepath.Join(l.Root, filepath.FromSlash(clean[1:])), nil
}
