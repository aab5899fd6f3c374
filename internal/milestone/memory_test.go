package milestone

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tunga-io/tunga/internal/errs"
	"github.com/tunga-io/tunga/internal/model"
)

type memoryStore struct {
	mu     sync.Mutex
	nextID uint
	now    func() time.Time
	rows   map[string]*model.Milestone
}

func newMemoryStore(now func() time.Time) *memoryStore {
	return &memoryStore{now: now, rows: map[string]*model.Milestone{}}
}

func key(taskID uint, title string, order int16) string {
	return fmt.Sprintf("%d/%s/%d", taskID, title, order)
}

func (s *memoryStore) Ensure(ctx context.Context, m *model.Milestone, refresh ...string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(m.TaskID, m.Title, m.Order)
	if existing, ok := s.rows[k]; ok {
		for _, col := range refresh {
			switch col {
			case "due_date":
				existing.DueDate = m.DueDate
			case "description":
				existing.Description = m.Description
			}
		}
		*m = *existing
		return false, nil
	}
	s.nextID++
	m.ID = s.nextID
	m.Created = s.now()
	row := *m
	s.rows[k] = &row
	return true, nil
}

func (s *memoryStore) Find(ctx context.Context, taskID uint, title string, order int16) (*model.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.rows[key(taskID, title, order)]; ok {
		row := *m
		return &row, nil
	}
	return nil, errs.ObjectNotFound
}

func (s *memoryStore) byTitle(title string) []model.Milestone {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []model.Milestone
	for _, m := range s.rows {
		if m.Title == title {
			res = append(res, *m)
		}
	}
	return res
}
