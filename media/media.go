// Package media stores the images and documents that article blocks point at.
//
// A Store is a flat key space: "images/..." holds pictures used by image
// blocks and the article cover, "documents/..." holds presentations and PDFs.
// Library adds validation, image processing and key naming on top of a Store.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eringen/culturegen/slug"
)

const (
	ImagePrefix    = "images/"
	DocumentPrefix = "documents/"

	MaxImageSize    = 10 << 20 // 10MB
	MaxDocumentSize = 50 << 20 // 50MB
)

var (
	ErrUnsupportedType = errors.New("media: unsupported file type")
	ErrTooLarge        = errors.New("media: file too large")
	ErrNotFound        = errors.New("media: not found")
)

// Item describes one stored file.
type Item struct {
	Key        string    `json:"key"`
	URL        string    `json:"url"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Upload is a file ready to be written under Key.
type Upload struct {
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
}

// Store is a backend able to hold media files.
type Store interface {
	Upload(ctx context.Context, u Upload) (Item, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Item, error)
	// KeyFromURL reverses the public URL of an item to its key. It reports
	// false for URLs that do not belong to the store.
	KeyFromURL(url string) (string, bool)
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

var documentTypes = map[string]string{
	".pdf":  "application/pdf",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// Library validates uploads and names keys before handing them to a Store.
type Library struct {
	Store Store
	// MaxImageWidth bounds the width of re-encoded raster images.
	MaxImageWidth int
	// NewSuffix returns the random part of generated keys.
	NewSuffix func() string
}

// NewLibrary returns a Library over s with default limits.
func NewLibrary(s Store) *Library {
	return &Library{Store: s, MaxImageWidth: DefaultMaxWidth}
}

func (l *Library) suffix() string {
	if l.NewSuffix != nil {
		return l.NewSuffix()
	}
	return uuid.NewString()[:8]
}

// Key builds "{prefix}{slug}-{random}{ext}" from an uploaded file name.
func (l *Library) Key(prefix, filename, ext string) string {
	base := slug.Make(strings.TrimSuffix(path.Base(filename), path.Ext(filename)))
	if base == "" {
		base = "file"
	}
	return prefix + base + "-" + l.suffix() + ext
}

// UploadImage stores a picture. Raster formats are resized and re-encoded as
// JPEG; GIF and SVG are stored untouched.
func (l *Library) UploadImage(ctx context.Context, filename string, r io.Reader, size int64) (Item, error) {
	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := imageTypes[ext]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	if size > MaxImageSize {
		return Item{}, fmt.Errorf("%w (max 10MB)", ErrTooLarge)
	}
	switch ext {
	case ".gif", ".svg":
		return l.Store.Upload(ctx, Upload{
			Key:         l.Key(ImagePrefix, filename, ext),
			Body:        r,
			Size:        size,
			ContentType: contentType,
		})
	}
	data, err := ProcessImage(r, l.MaxImageWidth)
	if err != nil {
		return Item{}, err
	}
	return l.Store.Upload(ctx, Upload{
		Key:         l.Key(ImagePrefix, filename, ".jpg"),
		Body:        bytes.NewReader(data),
		Size:        int64(len(data)),
		ContentType: "image/jpeg",
	})
}

// UploadDocument stores a presentation or PDF as-is.
func (l *Library) UploadDocument(ctx context.Context, filename string, r io.Reader, size int64) (Item, error) {
	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := documentTypes[ext]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	if size > MaxDocumentSize {
		return Item{}, fmt.Errorf("%w (max 50MB)", ErrTooLarge)
	}
	return l.Store.Upload(ctx, Upload{
		Key:         l.Key(DocumentPrefix, filename, ext),
		Body:        r,
		Size:        size,
		ContentType: contentType,
	})
}

// Delete removes the item published at url.
func (l *Library) Delete(ctx context.Context, url string) error {
	key, ok := l.Store.KeyFromURL(url)
	if !ok {
		return ErrNotFound
	}
	return l.Store.Delete(ctx, key)
}

// Images lists stored pictures, newest first.
func (l *Library) Images(ctx context.Context) ([]Item, error) {
	return l.list(ctx, ImagePrefix)
}

// Documents lists stored presentations and PDFs, newest first.
func (l *Library) Documents(ctx context.Context) ([]Item, error) {
	return l.list(ctx, DocumentPrefix)
}

func (l *Library) list(ctx context.Context, prefix string) ([]Item, error) {
	items, err := l.Store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].UploadedAt.After(items[j].UploadedAt)
	})
	return items, nil
}

func itemFor(key, url string, size int64, uploaded time.Time) Item {
	return Item{
		Key:        key,
		URL:        url,
		Filename:   path.Base(key),
		Size:       size,
		UploadedAt: uploaded.UTC(),
	}
}
