package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/drukmotors/dealership-backend/internal/registry"
	"github.com/drukmotors/dealership-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm is the relational Store backend. The same predicate/sort/range
// representation the simulator interprets is translated to SQL here, so the
// dispatcher cannot tell the backends apart.
type Gorm struct {
	db  *gorm.DB
	reg *registry.Registry
}

func NewGorm(db *gorm.DB, reg *registry.Registry) *Gorm {
	return &Gorm{db: db, reg: reg}
}

func (g *Gorm) resource(name string) (registry.Resource, error) {
	res, ok := g.reg.Lookup(name)
	if !ok {
		return registry.Resource{}, fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}
	return res, nil
}

// toColumn maps a JSON field name to its column name (camelCase to
// snake_case, matching the gorm naming strategy used by the models).
func toColumn(field string) string {
	var b strings.Builder
	for _, r := range field {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// predicateSQL renders the tagged predicate tree into a WHERE fragment.
// Field names are checked against the registry before interpolation.
func predicateSQL(res registry.Resource, where Predicate) (string, []interface{}, error) {
	switch p := where.(type) {
	case nil:
		return "", nil, nil
	case Cond:
		if !res.HasField(p.Field) {
			return "", nil, fmt.Errorf("%w: unknown field %q on %s", ErrUnsupportedPredicate, p.Field, res.Name)
		}
		switch p.Op {
		case OpEq, OpLt:
			return fmt.Sprintf("%s %s ?", toColumn(p.Field), p.Op), []interface{}{p.Value}, nil
		default:
			return "", nil, fmt.Errorf("%w: operator %q", ErrUnsupportedPredicate, p.Op)
		}
	case And:
		return joinPredicates(res, p, " AND ")
	case Or:
		return joinPredicates(res, p, " OR ")
	default:
		return "", nil, fmt.Errorf("%w: %T", ErrUnsupportedPredicate, where)
	}
}

func joinPredicates(res registry.Resource, children []Predicate, sep string) (string, []interface{}, error) {
	if len(children) == 0 {
		return "", nil, nil
	}
	var parts []string
	var args []interface{}
	for _, child := range children {
		sql, childArgs, err := predicateSQL(res, child)
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			continue
		}
		parts = append(parts, sql)
		args = append(args, childArgs...)
	}
	if len(parts) == 0 {
		return "", nil, nil
	}
	return "(" + strings.Join(parts, sep) + ")", args, nil
}

func (g *Gorm) scoped(ctx context.Context, res registry.Resource, where Predicate) (*gorm.DB, error) {
	tx := g.db.WithContext(ctx).Model(newModel(res))
	sql, args, err := predicateSQL(res, where)
	if err != nil {
		return nil, err
	}
	if sql != "" {
		tx = tx.Where(sql, args...)
	}
	return tx, nil
}

// newModel returns a fresh instance of the resource's model type.
func newModel(res registry.Resource) interface{} {
	return reflect.New(reflect.TypeOf(res.Model).Elem()).Interface()
}

// newSlice returns a pointer to an empty slice of the resource's model type.
func newSlice(res registry.Resource) interface{} {
	t := reflect.TypeOf(res.Model).Elem()
	return reflect.New(reflect.SliceOf(t)).Interface()
}

// toRecord converts a model instance to the map shape the dispatcher speaks,
// via its JSON encoding so field names stay consistent everywhere.
func toRecord(v interface{}) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func decodeRecord(rec Record, target interface{}) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

func (g *Gorm) List(ctx context.Context, resource string, q Query) ([]Record, int64, error) {
	res, err := g.resource(resource)
	if err != nil {
		return nil, 0, err
	}

	counter, err := g.scoped(ctx, res, q.Where)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := counter.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", resource, err)
	}

	tx, err := g.scoped(ctx, res, q.Where)
	if err != nil {
		return nil, 0, err
	}
	for _, rel := range res.Relations {
		tx = tx.Preload(rel.Assoc)
	}
	if q.Sort.Field != "" {
		if !res.HasField(q.Sort.Field) {
			return nil, 0, fmt.Errorf("%w: sort field %q on %s", ErrUnsupportedPredicate, q.Sort.Field, resource)
		}
		dir := "ASC"
		if q.Sort.Desc {
			dir = "DESC"
		}
		tx = tx.Order(toColumn(q.Sort.Field) + " " + dir)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	slice := newSlice(res)
	if err := tx.Find(slice).Error; err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", resource, err)
	}

	items := reflect.ValueOf(slice).Elem()
	records := make([]Record, 0, items.Len())
	for i := 0; i < items.Len(); i++ {
		rec, err := toRecord(items.Index(i).Addr().Interface())
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, nil
}

func (g *Gorm) first(ctx context.Context, res registry.Resource, id interface{}, preload bool) (Record, error) {
	tx := g.db.WithContext(ctx)
	if preload {
		for _, rel := range res.Relations {
			tx = tx.Preload(rel.Assoc)
		}
	}

	inst := newModel(res)
	err := tx.Where("id = ?", id).First(inst).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", res.Name, err)
	}
	return toRecord(inst)
}

func (g *Gorm) Get(ctx context.Context, resource string, id interface{}) (Record, error) {
	res, err := g.resource(resource)
	if err != nil {
		return nil, err
	}
	return g.first(ctx, res, id, true)
}

func (g *Gorm) Insert(ctx context.Context, resource string, rec Record) (Record, error) {
	res, err := g.resource(resource)
	if err != nil {
		return nil, err
	}

	inst := newModel(res)
	if err := decodeRecord(rec, inst); err != nil {
		return nil, fmt.Errorf("insert %s: %w", resource, err)
	}

	// Associations never ride along on a create; only scalar columns land.
	if err := g.db.WithContext(ctx).Omit(clause.Associations).Create(inst).Error; err != nil {
		logger.Error("Failed to insert record", err, map[string]interface{}{
			"resource": resource,
		})
		return nil, fmt.Errorf("insert %s: %w", resource, err)
	}
	return toRecord(inst)
}

func (g *Gorm) Update(ctx context.Context, resource string, id interface{}, fields Record) (Record, error) {
	res, err := g.resource(resource)
	if err != nil {
		return nil, err
	}

	colmap := make(map[string]interface{}, len(fields))
	for field, v := range fields {
		if !res.HasField(field) {
			continue
		}
		colmap[toColumn(field)] = v
	}

	if len(colmap) > 0 {
		result := g.db.WithContext(ctx).Model(newModel(res)).Where("id = ?", id).Updates(colmap)
		if result.Error != nil {
			return nil, fmt.Errorf("update %s: %w", resource, result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return g.first(ctx, res, id, false)
}

func (g *Gorm) Delete(ctx context.Context, resource string, id interface{}) (Record, error) {
	res, err := g.resource(resource)
	if err != nil {
		return nil, err
	}

	rec, err := g.first(ctx, res, id, false)
	if err != nil {
		return nil, err
	}

	if err := g.db.WithContext(ctx).Where("id = ?", id).Delete(newModel(res)).Error; err != nil {
		return nil, fmt.Errorf("delete %s: %w", resource, err)
	}
	return rec, nil
}

func (g *Gorm) Count(ctx context.Context, resource string, where Predicate) (int64, error) {
	res, err := g.resource(resource)
	if err != nil {
		return 0, err
	}
	tx, err := g.scoped(ctx, res, where)
	if err != nil {
		return 0, err
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", resource, err)
	}
	return total, nil
}

func (g *Gorm) UpdateWhere(ctx context.Context, resource string, fields Record, where Predicate) (int64, error) {
	res, err := g.resource(resource)
	if err != nil {
		return 0, err
	}

	colmap := make(map[string]interface{}, len(fields))
	for field, v := range fields {
		if !res.HasField(field) {
			continue
		}
		colmap[toColumn(field)] = v
	}
	if len(colmap) == 0 {
		return 0, nil
	}

	tx, err := g.scoped(ctx, res, where)
	if err != nil {
		return 0, err
	}
	result := tx.Updates(colmap)
	if result.Error != nil {
		return 0, fmt.Errorf("update %s: %w", resource, result.Error)
	}
	return result.RowsAffected, nil
}

func (g *Gorm) Transact(ctx context.Context, fn func(Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gorm{db: tx, reg: g.reg})
	})
}
