// Package repositorytest provides an in-memory implementation of the
// repository interfaces for tests.
package repositorytest

import (
	"context"
	"sort"
	"sync"
	"time"

	"hrtime.service/internal/core/model"
	"hrtime.service/internal/ports/repository"
)

// MemoryStore keeps employees, check-ins and worklogs in memory. It satisfies
// the employee and check-in repository interfaces; Worklogs returns the
// worklog view.
type MemoryStore struct {
	mu        sync.RWMutex
	employees []model.Employee
	checkins  []model.CheckinEvent
	worklogs  []model.Worklog

	// Err, when set, is returned by every call.
	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) AddEmployee(e model.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = append(m.employees, e)
}

func (m *MemoryStore) GetByUser(_ context.Context, userID string) (*model.Employee, error) {
	return m.findEmployee(func(e model.Employee) bool { return e.UserID == userID })
}

func (m *MemoryStore) GetByID(_ context.Context, id string) (*model.Employee, error) {
	return m.findEmployee(func(e model.Employee) bool { return e.ID == id })
}

func (m *MemoryStore) findEmployee(match func(model.Employee) bool) (*model.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, e := range m.employees {
		if match(e) {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) GetAll(_ context.Context) ([]model.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := append([]model.Employee(nil), m.employees...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Checkins returns a copy of every stored check-in event.
func (m *MemoryStore) Checkins() []model.CheckinEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.CheckinEvent(nil), m.checkins...)
}

func (m *MemoryStore) GetBetween(_ context.Context, employeeID string, from, to time.Time) (model.CheckinList, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return model.CheckinList{}, m.Err
	}
	var list model.CheckinList
	for _, c := range m.checkins {
		if c.EmployeeID == employeeID && within(c.Time, from, to) {
			list.Events = append(list.Events, c)
		}
	}
	sort.SliceStable(list.Events, func(i, j int) bool { return list.Events[i].Time.Before(list.Events[j].Time) })
	return list, nil
}

func (m *MemoryStore) Create(_ context.Context, event model.CheckinEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.checkins = append(m.checkins, event)
	return nil
}

// Worklogs is the WorklogRepository view of the store.
func (m *MemoryStore) Worklogs() repository.WorklogRepository {
	return memoryWorklogs{m}
}

type memoryWorklogs struct {
	m *MemoryStore
}

func (w memoryWorklogs) CountBetween(ctx context.Context, employeeID string, from, to time.Time) (int, error) {
	list, err := w.ListBetween(ctx, employeeID, from, to)
	return len(list), err
}

func (w memoryWorklogs) ListBetween(_ context.Context, employeeID string, from, to time.Time) ([]model.Worklog, error) {
	w.m.mu.RLock()
	defer w.m.mu.RUnlock()
	if w.m.Err != nil {
		return nil, w.m.Err
	}
	var out []model.Worklog
	for _, l := range w.m.worklogs {
		if l.EmployeeID == employeeID && within(l.LogTime, from, to) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (w memoryWorklogs) Create(_ context.Context, worklog model.Worklog) error {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	if w.m.Err != nil {
		return w.m.Err
	}
	w.m.worklogs = append(w.m.worklogs, worklog)
	return nil
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

var (
	_ repository.EmployeeRepository = (*MemoryStore)(nil)
	_ repository.CheckinRepository  = (*MemoryStore)(nil)
)
