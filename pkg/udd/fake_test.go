package udd

import (
	"context"
	"sync"
)

// fakeDB answers queries from a fixed table keyed by query text. Queries
// without an entry return no rows.
type fakeDB struct {
	mu     sync.Mutex
	rows   map[string][]string
	errs   map[string]error
	calls  []string
	args   [][]any
	closed bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{rows: map[string][]string{}, errs: map[string]error{}}
}

func (f *fakeDB) QueryVersions(_ context.Context, query string, args ...any) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, query)
	f.args = append(f.args, args)
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.rows[query], nil
}

func (f *fakeDB) Close() error {
	f.closed = true
	return nil
}

func (f *fakeDB) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
