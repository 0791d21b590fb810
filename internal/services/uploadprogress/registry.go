package uploadprogress

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edumart/edumart-server-go/pkg/cache"
)

// Terminal entries linger briefly so clients polling for the final state
// still see it, then expire.
const terminalTTL = 5 * time.Minute

// Status values a tracked upload can report.
const (
	StatusUploading  = "uploading"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Entry is a point-in-time snapshot of one upload's progress.
type Entry struct {
	UploadID  string    `json:"uploadId"`
	Filename  string    `json:"filename"`
	Progress  int       `json:"progress"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func terminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// Registry tracks in-flight upload progress per user.
type Registry interface {
	Set(ctx context.Context, userID uuid.UUID, entry Entry) error
	Get(ctx context.Context, userID uuid.UUID, uploadID string) (Entry, bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]Entry, error)
	Clear(ctx context.Context, userID uuid.UUID, uploadID string) error
}

type memoryEntry struct {
	entry     Entry
	expiresAt *time.Time
}

// MemoryRegistry is the default single-instance backend.
type MemoryRegistry struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryRegistry builds an in-memory registry using the wall clock.
func NewMemoryRegistry() *MemoryRegistry {
	return NewMemoryRegistryWithClock(time.Now)
}

// NewMemoryRegistryWithClock builds a registry with an injectable clock.
func NewMemoryRegistryWithClock(now func() time.Time) *MemoryRegistry {
	return &MemoryRegistry{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

func key(userID uuid.UUID, uploadID string) string {
	return userID.String() + ":" + uploadID
}

// Set records the latest snapshot for an upload. Terminal statuses start
// the expiry countdown.
func (r *MemoryRegistry) Set(_ context.Context, userID uuid.UUID, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.UpdatedAt = r.now()

	var expiresAt *time.Time
	if terminal(entry.Status) {
		t := entry.UpdatedAt.Add(terminalTTL)
		expiresAt = &t
	}

	r.entries[key(userID, entry.UploadID)] = memoryEntry{entry: entry, expiresAt: expiresAt}
	return nil
}

// Get returns the snapshot for one upload, if present and not expired.
// Expired entries are deleted on the way out so the map does not grow
// unbounded between restarts.
func (r *MemoryRegistry) Get(_ context.Context, userID uuid.UUID, uploadID string) (Entry, bool, error) {
	k := key(userID, uploadID)

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.entries[k]
	if !ok {
		return Entry{}, false, nil
	}
	if r.expired(stored) {
		delete(r.entries, k)
		return Entry{}, false, nil
	}

	return stored.entry, true, nil
}

// ListForUser returns all live snapshots belonging to a user, pruning any
// expired entries it walks past.
func (r *MemoryRegistry) ListForUser(_ context.Context, userID uuid.UUID) ([]Entry, error) {
	prefix := userID.String() + ":"

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Entry
	for k, stored := range r.entries {
		if r.expired(stored) {
			delete(r.entries, k)
			continue
		}
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		out = append(out, stored.entry)
	}

	return out, nil
}

// Clear removes an upload's snapshot.
func (r *MemoryRegistry) Clear(_ context.Context, userID uuid.UUID, uploadID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, key(userID, uploadID))
	return nil
}

func (r *MemoryRegistry) expired(stored memoryEntry) bool {
	return stored.expiresAt != nil && !r.now().Before(*stored.expiresAt)
}

// RedisRegistry stores snapshots in Redis so progress survives restarts and
// is visible across instances.
type RedisRegistry struct {
	client cache.Client
}

// NewRedisRegistry builds a Redis-backed registry.
func NewRedisRegistry(client cache.Client) *RedisRegistry {
	return &RedisRegistry{client: client}
}

func redisKey(userID uuid.UUID, uploadID string) string {
	return fmt.Sprintf("upload_progress:%s:%s", userID, uploadID)
}

// Set records the latest snapshot. Terminal statuses get a short TTL, live
// ones are kept for a day in case an upload stalls.
func (r *RedisRegistry) Set(ctx context.Context, userID uuid.UUID, entry Entry) error {
	entry.UpdatedAt = time.Now().UTC()

	ttl := 24 * time.Hour
	if terminal(entry.Status) {
		ttl = terminalTTL
	}

	return cache.SetJSON(ctx, r.client, redisKey(userID, entry.UploadID), entry, ttl)
}

// Get returns the snapshot for one upload, if present.
func (r *RedisRegistry) Get(ctx context.Context, userID uuid.UUID, uploadID string) (Entry, bool, error) {
	var entry Entry
	found, err := cache.GetJSON(ctx, r.client, redisKey(userID, uploadID), &entry)
	if err != nil || !found {
		return Entry{}, false, err
	}
	return entry, true, nil
}

// ListForUser returns all live snapshots belonging to a user.
func (r *RedisRegistry) ListForUser(ctx context.Context, userID uuid.UUID) ([]Entry, error) {
	keys, err := r.client.Keys(ctx, fmt.Sprintf("upload_progress:%s:*", userID))
	if err != nil {
		return nil, err
	}

	var out []Entry
	for _, k := range keys {
		var entry Entry
		found, err := cache.GetJSON(ctx, r.client, k, &entry)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, entry)
		}
	}

	return out, nil
}

// Clear removes an upload's snapshot.
func (r *RedisRegistry) Clear(ctx context.Context, userID uuid.UUID, uploadID string) error {
	return r.client.Delete(ctx, redisKey(userID, uploadID))
}
