package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FSStore keeps snapshots on the local filesystem under a base directory.
// Files are written to a temporary name and renamed into place, so a reader
// never sees a partial image.
type FSStore struct {
	dir string
}

func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve snapshot dir: %w", err)
	}
	return &FSStore{dir: abs}, nil
}

func (s *FSStore) Save(ctx context.Context, key string, data []byte, _ string) (string, error) {
	path, err := s.resolve(filepath.Join(s.dir, filepath.FromSlash(key)))
	if err != nil {
		return "", err
	}

	return runBounded(ctx, func() (string, error) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", fmt.Errorf("create snapshot dir: %w", err)
		}

		tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
		if err != nil {
			return "", fmt.Errorf("create temp snapshot: %w", err)
		}
		defer func() { _ = os.Remove(tmp.Name()) }()

		if _, err := tmp.Write(data); err != nil {
			_ = tmp.Close()
			return "", fmt.Errorf("write snapshot: %w", err)
		}
		if err := tmp.Sync(); err != nil {
			_ = tmp.Close()
			return "", fmt.Errorf("sync snapshot: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return "", fmt.Errorf("close snapshot: %w", err)
		}
		if err := os.Rename(tmp.Name(), path); err != nil {
			return "", fmt.Errorf("publish snapshot: %w", err)
		}
		return path, nil
	})
}

func (s *FSStore) Delete(ctx context.Context, path string) error {
	path, err := s.resolve(path)
	if err != nil {
		return err
	}

	_, err = runBounded(ctx, func() (string, error) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("delete snapshot: %w", err)
		}
		return "", nil
	})
	return err
}

// resolve keeps every path inside the base directory
func (s *FSStore) resolve(path string) (string, error) {
	clean := filepath.Clean(path)
	if clean != s.dir && !strings.HasPrefix(clean, s.dir+string(filepath.Separator)) {
		return "", fmt.Errorf("snapshot path %q escapes %q", path, s.dir)
	}
	return clean, nil
}

// runBounded returns when fn finishes or ctx is done, whichever comes first.
func runBounded(ctx context.Context, fn func() (string, error)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		path string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		path, err := fn()
		done <- result{path, err}
	}()

	select {
	case r := <-done:
		return r.path, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("snapshot io: %w", ctx.Err())
	}
}
