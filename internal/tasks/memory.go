package tasks

import (
	"context"
	"sync"
)

// MemoryQueue records submitted tasks in order. Used by tests and by
// dry-run tooling that wants to inspect what a run would emit.
type MemoryQueue struct {
	mu    sync.Mutex
	tasks []Task
	seen  map[string]struct{}
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{seen: make(map[string]struct{})}
}

func (q *MemoryQueue) Submit(_ context.Context, task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if task.DedupeKey != "" {
		key := task.Queue + "/" + task.DedupeKey
		if _, ok := q.seen[key]; ok {
			return nil
		}
		q.seen[key] = struct{}{}
	}
	q.tasks = append(q.tasks, task)
	return nil
}

// Tasks returns a copy of everything submitted so far.
func (q *MemoryQueue) Tasks() []Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Task, len(q.tasks))
	copy(out, q.tasks)
	return out
}

// ByName filters submitted tasks by task name.
func (q *MemoryQueue) ByName(name string) []Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []Task
	for _, t := range q.tasks {
		if t.Name == name {
			out = append(out, t)
		}
	}
	return out
}
