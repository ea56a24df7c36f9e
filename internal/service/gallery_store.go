package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// DefaultGalleryStorageKey 与浏览器版本使用的 localStorage 键保持一致。
const DefaultGalleryStorageKey = "portfolio_images_v2"

var namePolicy = bluemonday.StrictPolicy()

// ErrDuplicateImageID is returned when a sequence repeats a record id.
var ErrDuplicateImageID = errors.New("duplicate image id")

// ImageRecord is one gallery entry. Its JSON shape matches the values the
// browser gallery kept under the same storage key.
type ImageRecord struct {
	ID      string `json:"id"`
	DataURL string `json:"dataUrl"`
	Name    string `json:"name"`
}

// UploadFile is one file accepted at the upload boundary.
type UploadFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// ImageEncoder turns raw upload bytes into a thumbnail.
type ImageEncoder interface {
	Create(r io.Reader) (Thumbnail, error)
}

// GalleryStore owns the ordered image sequence and keeps it identical to the
// value persisted under its key. All operations are serialized by mu.
type GalleryStore struct {
	mu      sync.Mutex
	kv      KeyValueStore
	encoder ImageEncoder
	key     string
	logger  *zap.Logger
	newID   func() string
	items   []ImageRecord
}

// GalleryOption customizes a GalleryStore.
type GalleryOption func(*GalleryStore)

// WithStorageKey overrides the key the gallery is persisted under.
func WithStorageKey(key string) GalleryOption {
	return func(s *GalleryStore) {
		if key = strings.TrimSpace(key); key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger used for recoverable storage problems.
func WithLogger(logger *zap.Logger) GalleryOption {
	return func(s *GalleryStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator replaces the uuid based id source, mainly for tests.
func WithIDGenerator(fn func() string) GalleryOption {
	return func(s *GalleryStore) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewGalleryStore creates an empty store. Call Load to read the persisted value.
func NewGalleryStore(kv KeyValueStore, encoder ImageEncoder, opts ...GalleryOption) *GalleryStore {
	s := &GalleryStore{
		kv:      kv,
		encoder: encoder,
		key:     DefaultGalleryStorageKey,
		logger:  zap.NewNop(),
		newID:   func() string { return uuid.NewString() },
		items:   []ImageRecord{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key of the gallery.
func (s *GalleryStore) Key() string {
	return s.key
}

// Load 读取持久化的序列；缺失或无法解析时返回空图库，不视为错误。
// 只有存储本身读取失败才返回 error，此时内存中的序列保持不变。
func (s *GalleryStore) Load(ctx context.Context) ([]ImageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return s.snapshot(), fmt.Errorf("load gallery: %w", err)
	}

	s.items = s.decode(raw, found)
	return s.snapshot(), nil
}

func (s *GalleryStore) decode(raw string, found bool) []ImageRecord {
	if !found || strings.TrimSpace(raw) == "" {
		return []ImageRecord{}
	}

	var items []ImageRecord
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Warn("discarding unparseable gallery value",
			zap.String("key", s.key),
			zap.Int("bytes", len(raw)),
			zap.Error(err))
		return []ImageRecord{}
	}
	if items == nil {
		items = []ImageRecord{}
	}

	seen := make(map[string]struct{}, len(items))
	dropped := 0
	items = slices.DeleteFunc(items, func(item ImageRecord) bool {
		if _, ok := seen[item.ID]; ok {
			dropped++
			return true
		}
		seen[item.ID] = struct{}{}
		return false
	})
	if dropped > 0 {
		s.logger.Warn("dropping gallery records with duplicate ids",
			zap.String("key", s.key),
			zap.Int("dropped", dropped))
	}
	return items
}

func duplicateID(items []ImageRecord) (string, bool) {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			return item.ID, true
		}
		seen[item.ID] = struct{}{}
	}
	return "", false
}

// Persist 序列化完整序列并覆盖持久化值，成功后内存序列与之保持一致。
// 序列中 id 重复时返回 ErrDuplicateImageID，不写入。
func (s *GalleryStore) Persist(ctx context.Context, items []ImageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, slices.Clone(items))
}

// commit writes next and adopts it as the in-memory sequence. On failure the
// in-memory sequence keeps the last persisted value. Callers hold mu.
func (s *GalleryStore) commit(ctx context.Context, next []ImageRecord) error {
	if next == nil {
		next = []ImageRecord{}
	}
	if id, dup := duplicateID(next); dup {
		return fmt.Errorf("%w: %q", ErrDuplicateImageID, id)
	}

	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode gallery: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(payload)); err != nil {
		return fmt.Errorf("persist gallery: %w", err)
	}

	s.items = next
	return nil
}

// Items returns a copy of the current sequence.
func (s *GalleryStore) Items() []ImageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

// Get returns the record with the given id.
func (s *GalleryStore) Get(id string) (ImageRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ImageRecord{}, false
	}
	return s.items[idx], true
}

// AddImages thumbnails each file in order, appends it and persists after every
// file. A failure stops the batch; records persisted before it are kept and
// returned together with the error.
func (s *GalleryStore) AddImages(ctx context.Context, files []UploadFile) ([]ImageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return s.snapshot(), err
		}

		thumb, err := s.thumbnail(file)
		if err != nil {
			return s.snapshot(), fmt.Errorf("thumbnail %q: %w", file.Name, err)
		}

		next := append(slices.Clone(s.items), ImageRecord{
			ID:      s.newID(),
			DataURL: thumb.DataURL,
			Name:    NormalizeImageName(file.Name),
		})
		if err := s.commit(ctx, next); err != nil {
			return s.snapshot(), err
		}
	}

	return s.snapshot(), nil
}

func (s *GalleryStore) thumbnail(file UploadFile) (Thumbnail, error) {
	if file.Open == nil {
		return Thumbnail{}, ErrUnsupportedImage
	}
	rc, err := file.Open()
	if err != nil {
		return Thumbnail{}, fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	return s.encoder.Create(rc)
}

// RemoveImage deletes the record with the given id. Unknown ids are a no-op.
func (s *GalleryStore) RemoveImage(ctx context.Context, id string) ([]ImageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(s.items), func(item ImageRecord) bool {
		return item.ID == id
	})
	if err := s.commit(ctx, next); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

// ClearAll empties the gallery unconditionally.
func (s *GalleryStore) ClearAll(ctx context.Context) ([]ImageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit(ctx, []ImageRecord{}); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

// MoveImage places the record id immediately before beforeID. An empty
// beforeID moves the record to the end. Unknown ids and id == beforeID leave
// the sequence unchanged.
func (s *GalleryStore) MoveImage(ctx context.Context, id, beforeID string) ([]ImageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, moved := moveBefore(s.items, id, beforeID)
	if !moved {
		return s.snapshot(), nil
	}
	if err := s.commit(ctx, next); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

func moveBefore(items []ImageRecord, id, beforeID string) ([]ImageRecord, bool) {
	if id == "" || id == beforeID {
		return items, false
	}

	from := slices.IndexFunc(items, func(item ImageRecord) bool { return item.ID == id })
	if from < 0 {
		return items, false
	}
	if beforeID != "" && !slices.ContainsFunc(items, func(item ImageRecord) bool { return item.ID == beforeID }) {
		return items, false
	}

	moved := items[from]
	rest := slices.Delete(slices.Clone(items), from, from+1)
	if beforeID == "" {
		return append(rest, moved), true
	}

	to := slices.IndexFunc(rest, func(item ImageRecord) bool { return item.ID == beforeID })
	return slices.Insert(rest, to, moved), true
}

func (s *GalleryStore) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(item ImageRecord) bool { return item.ID == id })
}

func (s *GalleryStore) snapshot() []ImageRecord {
	out := slices.Clone(s.items)
	if out == nil {
		out = []ImageRecord{}
	}
	return out
}

// NormalizeImageName 取文件基础名并去除其中的标记，用作展示标签。
func NormalizeImageName(name string) string {
	name = html.UnescapeString(namePolicy.Sanitize(name))
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSpace(base)
}

// DownloadName returns the file name used when saving a record to disk.
func DownloadName(item ImageRecord) string {
	if name := strings.TrimSpace(item.Name); name != "" {
		return name
	}
	return "image.jpg"
}
