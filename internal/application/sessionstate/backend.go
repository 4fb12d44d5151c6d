package sessionstate

import "sync"

// Backend holds session entries. Entries are compared by pointer identity
// so that an eviction never removes an entry written after the expired
// one was observed.
type Backend interface {
	Load(userID string) (*Entry, bool)
	Store(userID string, entry *Entry)
	CompareAndDelete(userID string, old *Entry) bool
	Delete(userID string)
	Range(f func(userID string, entry *Entry) bool)
}

type memoryBackend struct {
	entries sync.Map
}

func NewMemoryBackend() Backend {
	return &memoryBackend{}
}

func (b *memoryBackend) Load(userID string) (*Entry, bool) {
	v, ok := b.entries.Load(userID)
	if !ok {
		return nil, false
	}
	return v.(*Entry), true
}

func (b *memoryBackend) Store(userID string, entry *Entry) {
	b.entries.Store(userID, entry)
}

func (b *memoryBackend) CompareAndDelete(userID string, old *Entry) bool {
	return b.entries.CompareAndDelete(userID, old)
}

func (b *memoryBackend) Delete(userID string) {
	b.entries.Delete(userID)
}

func (b *memoryBackend) Range(f func(userID string, entry *Entry) bool) {
	b.entries.Range(func(key, value any) bool {
		return f(key.(string), value.(*Entry))
	})
}
