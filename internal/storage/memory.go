package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	body         []byte
	tags         map[string]string
	lastModified time.Time
}

// MemoryStore is an in-process BlobStore used in tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string]memoryObject
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithNow(time.Now)
}

func NewMemoryStoreWithNow(now func() time.Time) *MemoryStore {
	return &MemoryStore{buckets: make(map[string]map[string]memoryObject), now: now}
}

func (s *MemoryStore) List(ctx context.Context, bucket string, opts ListOptions) ([]Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects := make([]Object, 0)
	for key, obj := range s.buckets[bucket] {
		if opts.Prefix != "" && !strings.HasPrefix(key, opts.Prefix) {
			continue
		}
		if opts.Suffix != "" && !strings.HasSuffix(key, opts.Suffix) {
			continue
		}
		if !opts.ModifiedAfter.IsZero() && obj.lastModified.Before(opts.ModifiedAfter) {
			continue
		}
		objects = append(objects, Object{Key: key, Size: int64(len(obj.body)), LastModified: obj.lastModified})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

func (s *MemoryStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.buckets[bucket][key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	body := make([]byte, len(obj.body))
	copy(body, obj.body)
	return body, nil
}

func (s *MemoryStore) Head(ctx context.Context, bucket, key string) (Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.buckets[bucket][key]
	if !ok {
		return Object{}, ErrObjectNotFound
	}
	return Object{Key: key, Size: int64(len(obj.body)), LastModified: obj.lastModified}, nil
}

func (s *MemoryStore) Put(ctx context.Context, bucket, key string, body []byte, tags map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets[bucket] == nil {
		s.buckets[bucket] = make(map[string]memoryObject)
	}
	stored := make([]byte, len(body))
	copy(stored, body)
	s.buckets[bucket][key] = memoryObject{body: stored, tags: tags, lastModified: s.now()}
	return nil
}

func (s *MemoryStore) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.buckets[srcBucket][srcKey]
	if !ok {
		return ErrObjectNotFound
	}
	if s.buckets[dstBucket] == nil {
		s.buckets[dstBucket] = make(map[string]memoryObject)
	}
	s.buckets[dstBucket][dstKey] = memoryObject{body: obj.body, tags: obj.tags, lastModified: s.now()}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets[bucket], key)
	return nil
}

// Tags returns the tags stored with an object. Test helper.
func (s *MemoryStore) Tags(bucket, key string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buckets[bucket][key].tags
}
