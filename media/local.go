package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps files in a directory served by the web server under
// BaseURL.
type LocalStore struct {
	Dir     string
	BaseURL string
}

// NewLocalStore returns a store rooted at dir whose files are reachable at
// baseURL (for example "/public/uploads").
func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("media: invalid key %q", key)
	}
	return filepath.Join(s.Dir, clean), nil
}

func (s *LocalStore) url(key string) string {
	return s.BaseURL + "/" + key
}

func (s *LocalStore) Upload(ctx context.Context, u Upload) (Item, error) {
	dst, err := s.path(u.Key)
	if err != nil {
		return Item{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Item{}, fmt.Errorf("create media dir: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return Item{}, err
	}
	n, err := io.Copy(out, u.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return Item{}, fmt.Errorf("write media: %w", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		return Item{}, err
	}
	return itemFor(u.Key, s.url(u.Key), n, info.ModTime()), nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *LocalStore) List(ctx context.Context, prefix string) ([]Item, error) {
	root, err := s.path(prefix)
	if err != nil {
		return nil, err
	}
	var items []Item
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.Dir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		items = append(items, itemFor(key, s.url(key), info.Size(), info.ModTime()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *LocalStore) KeyFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.BaseURL+"/")
	if !ok || key == "" {
		return "", false
	}
	if _, err := s.path(key); err != nil {
		return "", false
	}
	return key, true
}
