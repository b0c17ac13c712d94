package draft

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/danh0999/Hokori-Learning-sub002/internal/quizimport"
)

var ErrNotFound = errors.New("draft not found")

// Store is the key-value store that keeps drafts between edits.
type Store interface {
	Put(ctx context.Context, key string, r Record) error
	Get(ctx context.Context, key string) (Record, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Entry, error)
}

// Record is a stored draft together with the row options of the import it
// came from, so later edits are checked under the same rules.
type Record struct {
	Draft               quizimport.Draft `json:"draft"`
	Mode                string           `json:"mode,omitempty"`
	DefaultQuestionType string           `json:"defaultQuestionType,omitempty"`
}

type Entry struct {
	Key string `json:"key"`
	Record
	UpdatedAt time.Time `json:"updated_at"`
}

type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Entry
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Entry), now: time.Now}
}

func (s *MemoryStore) Put(_ context.Context, key string, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Draft = cloneDraft(r.Draft)
	s.items[key] = Entry{Key: key, Record: r, UpdatedAt: s.now().UTC()}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	r := e.Record
	r.Draft = cloneDraft(r.Draft)
	return r, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[key]; !ok {
		return ErrNotFound
	}
	delete(s.items, key)
	return nil
}

func (s *MemoryStore) List(_ context.Context, prefix string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0)
	for k, e := range s.items {
		if strings.HasPrefix(k, prefix) {
			e.Draft = cloneDraft(e.Draft)
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// cloneDraft copies the slices a caller could mutate after Put.
func cloneDraft(d quizimport.Draft) quizimport.Draft {
	if d.Options != nil {
		d.Options = append([]quizimport.DraftOption(nil), d.Options...)
	}
	if d.CorrectIndex != nil {
		idx := *d.CorrectIndex
		d.CorrectIndex = &idx
	}
	return d
}
