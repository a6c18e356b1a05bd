// Package memory holds map-backed implementations of the store contracts.
// They serve unit tests and the STORAGE=memory runtime mode. Values are
// deep-copied on the way in and out so callers never alias store state.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	bookrepo "bookloans/repository/book"
	memberrepo "bookloans/repository/member"

	"bookloans/model"
)

type BookStore struct {
	mu    sync.RWMutex
	books map[string]*model.Book
}

var _ bookrepo.Repo = (*BookStore)(nil)

func NewBookStore() *BookStore {
	return &BookStore{books: make(map[string]*model.Book)}
}

func (s *BookStore) FindByID(_ context.Context, id string) (*model.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[id]
	if !ok {
		return nil, nil
	}
	return b.Clone(), nil
}

func (s *BookStore) FindAll(_ context.Context) ([]model.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*model.Book) bool { return true }), nil
}

func (s *BookStore) Save(_ context.Context, b *model.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.books[b.ID]; ok && cur.Version != b.Version {
		return bookrepo.ErrVersionConflict
	}
	b.Version++
	s.books[b.ID] = b.Clone()
	return nil
}

func (s *BookStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.books, id)
	return nil
}

func (s *BookStore) ExistsByID(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.books[id]
	return ok, nil
}

func (s *BookStore) CountByLoanedTo(_ context.Context, memberID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, b := range s.books {
		if b.IsLoanedTo(memberID) {
			n++
		}
	}
	return n, nil
}

func (s *BookStore) FindByLoanedTo(_ context.Context, memberID string) ([]model.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(b *model.Book) bool { return b.IsLoanedTo(memberID) }), nil
}

func (s *BookStore) FindByQueueContaining(_ context.Context, memberID string) ([]model.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(b *model.Book) bool { return b.QueueContains(memberID) }), nil
}

func (s *BookStore) FindByDueDateBefore(_ context.Context, day time.Time) ([]model.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(b *model.Book) bool {
		return b.DueDate != nil && b.DueDate.Before(day)
	}), nil
}

func (s *BookStore) ExistsByLoanedTo(_ context.Context, memberID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if b.IsLoanedTo(memberID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *BookStore) FindByTitleContaining(_ context.Context, substr string) ([]model.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(substr)
	return s.collect(func(b *model.Book) bool {
		return strings.Contains(strings.ToLower(b.Title), needle)
	}), nil
}

func (s *BookStore) FindAvailable(_ context.Context) ([]model.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(b *model.Book) bool { return !b.IsLoaned() }), nil
}

func (s *BookStore) RemoveFromAllQueues(_ context.Context, memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.books {
		b.RemoveFromQueue(memberID)
	}
	return nil
}

// collect snapshots matching books sorted by id; callers hold the lock.
func (s *BookStore) collect(match func(*model.Book) bool) []model.Book {
	var out []model.Book
	for _, b := range s.books {
		if match(b) {
			out = append(out, *b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type MemberStore struct {
	mu      sync.RWMutex
	members map[string]model.Member
}

var _ memberrepo.Repo = (*MemberStore)(nil)

func NewMemberStore() *MemberStore {
	return &MemberStore{members: make(map[string]model.Member)}
}

func (s *MemberStore) FindByID(_ context.Context, id string) (*model.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *MemberStore) FindAll(_ context.Context) ([]model.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemberStore) Save(_ context.Context, m *model.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.ID] = *m
	return nil
}

func (s *MemberStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, id)
	return nil
}

func (s *MemberStore) ExistsByID(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.members[id]
	return ok, nil
}
