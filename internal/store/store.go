package store

import (
	"context"
	"errors"
	"strconv"
)

var (
	// ErrNotFound is returned when no record matches the given id.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownResource is returned for resource names outside the registry.
	ErrUnknownResource = errors.New("unknown resource")
	// ErrUnsupportedPredicate is returned by a backend that cannot apply a
	// predicate shape. Backends never silently drop predicates: the total
	// count and the sliced rows always reflect exactly the filters applied.
	ErrUnsupportedPredicate = errors.New("unsupported predicate")
)

// Record is one row of a resource, keyed by JSON field names.
type Record map[string]interface{}

// Clone returns a shallow copy one level deep: nested relation records are
// copied as well so callers can mutate results without aliasing the store.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		if nested, ok := v.(Record); ok {
			out[k] = nested.Clone()
			continue
		}
		if nested, ok := v.(map[string]interface{}); ok {
			out[k] = Record(nested).Clone()
			continue
		}
		out[k] = v
	}
	return out
}

// Op is a comparison operator in a filter condition.
type Op string

const (
	OpEq Op = "="
	OpLt Op = "<"
)

// Predicate is the tagged filter representation passed between the dispatcher
// and the store: plain conditions composed with AND/OR, never inferred from
// stringified expressions.
type Predicate interface {
	isPredicate()
}

// Cond is a single field/operator/value comparison.
type Cond struct {
	Field string
	Op    Op
	Value interface{}
}

// And matches when every child predicate matches.
type And []Predicate

// Or matches when any child predicate matches.
type Or []Predicate

func (Cond) isPredicate() {}
func (And) isPredicate()  {}
func (Or) isPredicate()   {}

// Eq builds an equality condition.
func Eq(field string, value interface{}) Cond {
	return Cond{Field: field, Op: OpEq, Value: value}
}

// Lt builds a less-than condition.
func Lt(field string, value interface{}) Cond {
	return Cond{Field: field, Op: OpLt, Value: value}
}

// Sort names the field and direction of an ordered read.
type Sort struct {
	Field string
	Desc  bool
}

// Query describes a filtered, sorted, paginated list read. Limit <= 0 means
// no limit; an offset beyond the collection yields an empty result.
type Query struct {
	Where  Predicate
	Sort   Sort
	Offset int
	Limit  int
}

// Store is the backend-agnostic collection contract. Both the relational
// backend and the in-memory simulator implement it; swapping backends must
// not change caller-visible behavior.
type Store interface {
	// List returns the sorted, filtered slice of a resource plus the
	// post-filter total, with registry relations attached.
	List(ctx context.Context, resource string, q Query) ([]Record, int64, error)
	// Get returns the record whose primary key equals id, relations attached.
	Get(ctx context.Context, resource string, id interface{}) (Record, error)
	// Insert stores a new record and returns it including generated fields.
	Insert(ctx context.Context, resource string, rec Record) (Record, error)
	// Update applies a partial field map by primary key and returns the
	// updated record.
	Update(ctx context.Context, resource string, id interface{}, fields Record) (Record, error)
	// Delete removes the record by primary key and returns it. Cascades
	// declared in the registry are the backend's responsibility.
	Delete(ctx context.Context, resource string, id interface{}) (Record, error)
	// Count returns the number of records matching where (nil = all).
	Count(ctx context.Context, resource string, where Predicate) (int64, error)
	// UpdateWhere applies fields to every matching record and returns the
	// number of records changed.
	UpdateWhere(ctx context.Context, resource string, fields Record, where Predicate) (int64, error)
	// Transact runs fn atomically: readers never observe an intermediate
	// state of the enclosed writes.
	Transact(ctx context.Context, fn func(Store) error) error
}

// CoerceID converts a path id into its lookup value: numeric strings become
// numbers before lookup, anything else stays an opaque string.
func CoerceID(id string) interface{} {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}
