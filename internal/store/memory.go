package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/drukmotors/dealership-backend/internal/registry"
	"github.com/drukmotors/dealership-backend/pkg/logger"
)

// Memory emulates filter/sort/paginate/relate semantics against in-process
// collections so the rest of the system stays backend-agnostic when no
// relational database is configured. Constructed explicitly and injected,
// never module state; Reset is the only way to a fresh state outside the
// constructor.
type Memory struct {
	mu          sync.RWMutex
	reg         *registry.Registry
	collections map[string][]Record
	nextID      map[string]int64
}

// NewMemory builds an empty store over the registry's resource set.
func NewMemory(reg *registry.Registry) *Memory {
	m := &Memory{reg: reg}
	m.initLocked()
	return m
}

func (m *Memory) initLocked() {
	m.collections = make(map[string][]Record)
	m.nextID = make(map[string]int64)
	for _, name := range m.reg.Names() {
		m.collections[name] = nil
		m.nextID[name] = 1
	}
}

// Reset restores a fresh, empty store. Test hook.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initLocked()
}

func (m *Memory) List(ctx context.Context, resource string, q Query) ([]Record, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked(resource, q)
}

func (m *Memory) Get(ctx context.Context, resource string, id interface{}) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getLocked(resource, id)
}

func (m *Memory) Insert(ctx context.Context, resource string, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(resource, rec)
}

func (m *Memory) Update(ctx context.Context, resource string, id interface{}, fields Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateLocked(resource, id, fields)
}

func (m *Memory) Delete(ctx context.Context, resource string, id interface{}) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteLocked(resource, id)
}

func (m *Memory) Count(ctx context.Context, resource string, where Predicate) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.countLocked(resource, where)
}

func (m *Memory) UpdateWhere(ctx context.Context, resource string, fields Record, where Predicate) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateWhereLocked(resource, fields, where)
}

// Transact holds the write lock for the duration of fn, so the enclosed
// writes land as one atomic unit from any reader's perspective. fn receives
// a view that must not escape the callback.
func (m *Memory) Transact(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memoryTx{m: m})
}

// memoryTx dispatches to the unlocked internals; the enclosing Transact call
// already holds the write lock.
type memoryTx struct {
	m *Memory
}

func (t *memoryTx) List(ctx context.Context, resource string, q Query) ([]Record, int64, error) {
	return t.m.listLocked(resource, q)
}

func (t *memoryTx) Get(ctx context.Context, resource string, id interface{}) (Record, error) {
	return t.m.getLocked(resource, id)
}

func (t *memoryTx) Insert(ctx context.Context, resource string, rec Record) (Record, error) {
	return t.m.insertLocked(resource, rec)
}

func (t *memoryTx) Update(ctx context.Context, resource string, id interface{}, fields Record) (Record, error) {
	return t.m.updateLocked(resource, id, fields)
}

func (t *memoryTx) Delete(ctx context.Context, resource string, id interface{}) (Record, error) {
	return t.m.deleteLocked(resource, id)
}

func (t *memoryTx) Count(ctx context.Context, resource string, where Predicate) (int64, error) {
	return t.m.countLocked(resource, where)
}

func (t *memoryTx) UpdateWhere(ctx context.Context, resource string, fields Record, where Predicate) (int64, error) {
	return t.m.updateWhereLocked(resource, fields, where)
}

func (t *memoryTx) Transact(ctx context.Context, fn func(Store) error) error {
	return fn(t)
}

func (m *Memory) resource(name string) (registry.Resource, error) {
	res, ok := m.reg.Lookup(name)
	if !ok {
		return registry.Resource{}, fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}
	return res, nil
}

// eval applies a predicate to one record. Unsupported shapes are an explicit
// error, never silently ignored, so the pagination contract stays truthful.
func (m *Memory) eval(res registry.Resource, rec Record, where Predicate) (bool, error) {
	switch p := where.(type) {
	case nil:
		return true, nil
	case Cond:
		if !res.HasField(p.Field) {
			return false, fmt.Errorf("%w: unknown field %q on %s", ErrUnsupportedPredicate, p.Field, res.Name)
		}
		switch p.Op {
		case OpEq:
			return equalValues(rec[p.Field], p.Value), nil
		case OpLt:
			return compareValues(rec[p.Field], p.Value) < 0, nil
		default:
			return false, fmt.Errorf("%w: operator %q", ErrUnsupportedPredicate, p.Op)
		}
	case And:
		for _, child := range p {
			ok, err := m.eval(res, rec, child)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case Or:
		for _, child := range p {
			ok, err := m.eval(res, rec, child)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("%w: %T", ErrUnsupportedPredicate, where)
	}
}

func (m *Memory) matchLocked(res registry.Resource, where Predicate) ([]Record, error) {
	var matched []Record
	for _, rec := range m.collections[res.Name] {
		ok, err := m.eval(res, rec, where)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, rec)
		}
	}
	return matched, nil
}

func (m *Memory) listLocked(resource string, q Query) ([]Record, int64, error) {
	res, err := m.resource(resource)
	if err != nil {
		return nil, 0, err
	}

	matched, err := m.matchLocked(res, q.Where)
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(matched))

	if q.Sort.Field != "" {
		if !res.HasField(q.Sort.Field) {
			return nil, 0, fmt.Errorf("%w: sort field %q on %s", ErrUnsupportedPredicate, q.Sort.Field, resource)
		}
		field, desc := q.Sort.Field, q.Sort.Desc
		// DESC inverts the comparison outcome, not the final slice, so ties
		// keep insertion order exactly like a stable ORDER BY.
		sort.SliceStable(matched, func(i, j int) bool {
			c := compareValues(matched[i][field], matched[j][field])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[q.Offset:]
		}
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	out := make([]Record, 0, len(matched))
	for _, rec := range matched {
		out = append(out, m.attachLocked(res, rec))
	}
	return out, total, nil
}

func (m *Memory) getLocked(resource string, id interface{}) (Record, error) {
	res, err := m.resource(resource)
	if err != nil {
		return nil, err
	}
	idx := m.indexOfLocked(resource, id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	return m.attachLocked(res, m.collections[resource][idx]), nil
}

func (m *Memory) indexOfLocked(resource string, id interface{}) int {
	for i, rec := range m.collections[resource] {
		if equalValues(rec["id"], id) {
			return i
		}
	}
	return -1
}

// attachLocked joins the registry-declared relations into a copy of rec.
// Related records come in bare (one level only).
func (m *Memory) attachLocked(res registry.Resource, rec Record) Record {
	out := rec.Clone()
	for _, rel := range res.Relations {
		fk, ok := rec[rel.FK]
		if !ok || fk == nil {
			continue
		}
		idx := m.indexOfLocked(rel.Resource, fk)
		if idx < 0 {
			continue
		}
		out[rel.Name] = m.collections[rel.Resource][idx].Clone()
	}
	return out
}

func (m *Memory) insertLocked(resource string, rec Record) (Record, error) {
	res, err := m.resource(resource)
	if err != nil {
		return nil, err
	}

	rec = rec.Clone()
	if res.StringPK {
		if _, ok := rec["id"].(string); !ok {
			return nil, fmt.Errorf("insert %s: string primary key missing", resource)
		}
	} else {
		if id, ok := asFloat(rec["id"]); ok && id > 0 {
			if next := int64(id) + 1; next > m.nextID[resource] {
				m.nextID[resource] = next
			}
		} else {
			rec["id"] = m.nextID[resource]
			m.nextID[resource]++
		}
	}

	if m.indexOfLocked(resource, rec["id"]) >= 0 {
		return nil, fmt.Errorf("insert %s: duplicate id %v", resource, rec["id"])
	}

	m.collections[resource] = append(m.collections[resource], rec)

	logger.Debug("Record inserted into memory store", map[string]interface{}{
		"resource": resource,
		"id":       rec["id"],
	})
	return rec.Clone(), nil
}

func (m *Memory) updateLocked(resource string, id interface{}, fields Record) (Record, error) {
	res, err := m.resource(resource)
	if err != nil {
		return nil, err
	}
	idx := m.indexOfLocked(resource, id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	rec := m.collections[resource][idx]
	for k, v := range fields.Clone() {
		if !res.HasField(k) {
			continue
		}
		rec[k] = v
	}
	return rec.Clone(), nil
}

func (m *Memory) deleteLocked(resource string, id interface{}) (Record, error) {
	if _, err := m.resource(resource); err != nil {
		return nil, err
	}
	idx := m.indexOfLocked(resource, id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	rec := m.collections[resource][idx]
	m.collections[resource] = append(m.collections[resource][:idx], m.collections[resource][idx+1:]...)

	if err := m.cascadeLocked(resource, rec["id"]); err != nil {
		return nil, err
	}

	logger.Debug("Record deleted from memory store", map[string]interface{}{
		"resource": resource,
		"id":       rec["id"],
	})
	return rec.Clone(), nil
}

// cascadeLocked applies the registry's on-delete behavior to dependents of a
// removed parent, the way database constraints would.
func (m *Memory) cascadeLocked(parent string, parentID interface{}) error {
	for _, name := range m.reg.Names() {
		child, _ := m.reg.Lookup(name)
		for _, fk := range child.ForeignKeys {
			if fk.Resource != parent {
				continue
			}
			switch fk.OnDelete {
			case registry.Cascade:
				var victims []interface{}
				for _, rec := range m.collections[name] {
					if equalValues(rec[fk.Field], parentID) {
						victims = append(victims, rec["id"])
					}
				}
				for _, id := range victims {
					if _, err := m.deleteLocked(name, id); err != nil {
						return err
					}
				}
			case registry.SetNull:
				for _, rec := range m.collections[name] {
					if equalValues(rec[fk.Field], parentID) {
						rec[fk.Field] = nil
					}
				}
			}
		}
	}
	return nil
}

func (m *Memory) countLocked(resource string, where Predicate) (int64, error) {
	res, err := m.resource(resource)
	if err != nil {
		return 0, err
	}
	matched, err := m.matchLocked(res, where)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (m *Memory) updateWhereLocked(resource string, fields Record, where Predicate) (int64, error) {
	res, err := m.resource(resource)
	if err != nil {
		return 0, err
	}

	var changed int64
	for _, rec := range m.collections[resource] {
		ok, err := m.eval(res, rec, where)
		if err != nil {
			return 0, err
		}
		if !ok {
			continue
		}
		for k, v := range fields.Clone() {
			if !res.HasField(k) {
				continue
			}
			rec[k] = v
		}
		changed++
	}
	return changed, nil
}
