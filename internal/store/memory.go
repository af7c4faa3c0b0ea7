package store

import (
	"context"
	"maps"
	"slices"
	"sync"
)

type memRow struct {
	owner string
	body  []byte
}

// memBackend holds entities in maps. The entity map and owner index are kept
// separate and updated in a fixed order: the map first on insert and on
// remove, then the index.
type memBackend struct {
	mu       sync.RWMutex
	entities map[string]map[string]memRow
	index    map[string]map[string]map[string]struct{}
	balances map[string]uint32
	history  map[string][]uint64
}

func newMemBackend() *memBackend {
	return &memBackend{
		entities: map[string]map[string]memRow{},
		index:    map[string]map[string]map[string]struct{}{},
		balances: map[string]uint32{},
		history:  map[string][]uint64{},
	}
}

func (m *memBackend) get(_ context.Context, kind, id string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.entities[kind][id]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(row.body), true, nil
}

func (m *memBackend) put(_ context.Context, kind, id, owner string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.entities[kind]
	if rows == nil {
		rows = map[string]memRow{}
		m.entities[kind] = rows
	}
	prev, existed := rows[id]
	rows[id] = memRow{owner: owner, body: slices.Clone(body)}

	if existed && prev.owner != owner {
		m.unindex(kind, prev.owner, id)
	}
	owners := m.index[kind]
	if owners == nil {
		owners = map[string]map[string]struct{}{}
		m.index[kind] = owners
	}
	ids := owners[owner]
	if ids == nil {
		ids = map[string]struct{}{}
		owners[owner] = ids
	}
	ids[id] = struct{}{}
	return nil
}

func (m *memBackend) del(_ context.Context, kind, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.entities[kind][id]
	if !ok {
		return false, nil
	}
	delete(m.entities[kind], id)
	m.unindex(kind, row.owner, id)
	return true, nil
}

func (m *memBackend) unindex(kind, owner, id string) {
	ids := m.index[kind][owner]
	delete(ids, id)
	if len(ids) == 0 {
		delete(m.index[kind], owner)
	}
}

func (m *memBackend) ownerIDs(_ context.Context, kind, owner string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := slices.Collect(maps.Keys(m.index[kind][owner]))
	slices.Sort(ids)
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (m *memBackend) list(_ context.Context, kind string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.entities[kind]
	ids := slices.Sorted(maps.Keys(rows))
	out := make([][]byte, 0, len(ids))
	for _, id := range ids {
		out = append(out, slices.Clone(rows[id].body))
	}
	return out, nil
}

func (m *memBackend) balance(_ context.Context, owner string) (uint32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[owner], nil
}

func (m *memBackend) setBalance(_ context.Context, owner string, points uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[owner] = points
	return nil
}

func (m *memBackend) appendCompletion(_ context.Context, taskID string, at uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[taskID] = append(m.history[taskID], at)
	return nil
}

func (m *memBackend) completions(_ context.Context, taskID string) ([]uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Clone(m.history[taskID])
	if out == nil {
		out = []uint64{}
	}
	return out, nil
}

// snapshot returns a deep copy. Bodies are immutable once stored, so they
// are shared rather than copied.
func (m *memBackend) snapshot() *memBackend {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c := newMemBackend()
	for kind, rows := range m.entities {
		c.entities[kind] = maps.Clone(rows)
	}
	for kind, owners := range m.index {
		co := make(map[string]map[string]struct{}, len(owners))
		for owner, ids := range owners {
			co[owner] = maps.Clone(ids)
		}
		c.index[kind] = co
	}
	maps.Copy(c.balances, m.balances)
	for id, ats := range m.history {
		c.history[id] = slices.Clone(ats)
	}
	return c
}

// restore adopts the contents of a snapshot.
func (m *memBackend) restore(from *memBackend) {
	from.mu.RLock()
	defer from.mu.RUnlock()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities = from.entities
	m.index = from.index
	m.balances = from.balances
	m.history = from.history
}
