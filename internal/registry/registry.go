package registry

import (
	"github.com/drukmotors/dealership-backend/internal/app/model"
)

// Relation declares a related record that is eagerly attached when reading a
// resource: the JSON field it is attached under, the resource it points at,
// the local foreign-key field holding the reference, and the struct field the
// relational backend preloads.
type Relation struct {
	Name     string // attached JSON field, e.g. "category"
	Resource string // target resource, e.g. "categories"
	FK       string // local JSON field holding the reference, e.g. "categoryId"
	Assoc    string // gorm association name, e.g. "Category"
}

// OnDelete behaviors for foreign keys, mirrored by the in-memory backend.
const (
	Cascade = "cascade"
	SetNull = "set_null"
)

// ForeignKey declares a reference from this resource to a parent resource,
// with the behavior applied to this record when the parent is deleted.
type ForeignKey struct {
	Field    string // local JSON field, e.g. "categoryId"
	Resource string // parent resource, e.g. "categories"
	OnDelete string // Cascade or SetNull
}

// Resource is one entry of the closed, addressable resource set.
type Resource struct {
	Name        string
	Model       interface{} // model prototype for the relational backend
	Table       string
	StringPK    bool // primary key is an opaque string (generated when absent)
	HasUpdated  bool // schema defines updatedAt, re-stamped on writes
	Fields      []string
	Hidden      []string // scrubbed from every API response
	Relations   []Relation
	ForeignKeys []ForeignKey

	fieldSet map[string]struct{}
}

// HasField reports whether the JSON field name is addressable for sorting and
// filtering on this resource.
func (r Resource) HasField(field string) bool {
	_, ok := r.fieldSet[field]
	return ok
}

// Registry is the static resource map, built once at startup.
type Registry struct {
	resources map[string]Resource
	names     []string
}

// New builds the registry for the dealership schema.
func New() *Registry {
	reg := &Registry{resources: make(map[string]Resource)}

	reg.add(Resource{
		Name:       "users",
		Model:      &model.User{},
		Table:      "users",
		StringPK:   true,
		HasUpdated: false,
		Fields:     []string{"id", "username", "email", "password", "role", "phone", "address", "profileImage", "createdAt"},
		Hidden:     []string{"password"},
	})

	reg.add(Resource{
		Name:   "categories",
		Model:  &model.Category{},
		Table:  "categories",
		Fields: []string{"id", "name", "description"},
	})

	reg.add(Resource{
		Name:       "parts",
		Model:      &model.Part{},
		Table:      "parts",
		HasUpdated: true,
		Fields:     []string{"id", "name", "description", "price", "stock", "image", "categoryId", "addedBy", "createdAt", "updatedAt"},
		Relations: []Relation{
			{Name: "category", Resource: "categories", FK: "categoryId", Assoc: "Category"},
		},
		ForeignKeys: []ForeignKey{
			{Field: "categoryId", Resource: "categories", OnDelete: Cascade},
			{Field: "addedBy", Resource: "users", OnDelete: SetNull},
		},
	})

	reg.add(Resource{
		Name:   "serviceTypes",
		Model:  &model.ServiceType{},
		Table:  "service_types",
		Fields: []string{"id", "name", "description", "estimatedDuration", "basePrice"},
	})

	reg.add(Resource{
		Name:   "appointments",
		Model:  &model.Appointment{},
		Table:  "appointments",
		Fields: []string{"id", "userId", "serviceTypeId", "date", "time", "status", "notes", "createdAt"},
		Relations: []Relation{
			{Name: "user", Resource: "users", FK: "userId", Assoc: "User"},
			{Name: "serviceType", Resource: "serviceTypes", FK: "serviceTypeId", Assoc: "ServiceType"},
		},
		ForeignKeys: []ForeignKey{
			{Field: "userId", Resource: "users", OnDelete: Cascade},
			{Field: "serviceTypeId", Resource: "serviceTypes", OnDelete: Cascade},
		},
	})

	reg.add(Resource{
		Name:       "announcements",
		Model:      &model.Announcement{},
		Table:      "announcements",
		HasUpdated: true,
		Fields:     []string{"id", "text", "active", "createdAt", "updatedAt"},
	})

	reg.add(Resource{
		Name:       "successStories",
		Model:      &model.SuccessStory{},
		Table:      "success_stories",
		HasUpdated: true,
		Fields:     []string{"id", "title", "description", "image", "createdAt", "updatedAt"},
	})

	reg.add(Resource{
		Name:       "employees",
		Model:      &model.Employee{},
		Table:      "employees",
		HasUpdated: true,
		Fields:     []string{"id", "name", "role", "image", "bio", "createdAt", "updatedAt"},
	})

	return reg
}

func (r *Registry) add(res Resource) {
	res.fieldSet = make(map[string]struct{}, len(res.Fields))
	for _, f := range res.Fields {
		res.fieldSet[f] = struct{}{}
	}
	r.resources[res.Name] = res
	r.names = append(r.names, res.Name)
}

// Lookup resolves a resource by name. Unknown names report exists=false and
// must map to a not-found outcome, never a crash.
func (r *Registry) Lookup(name string) (Resource, bool) {
	res, ok := r.resources[name]
	return res, ok
}

// Names returns the addressable resource names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Models returns the model prototypes for migration.
func (r *Registry) Models() []interface{} {
	models := make([]interface{}, 0, len(r.names))
	for _, name := range r.names {
		models = append(models, r.resources[name].Model)
	}
	return models
}
