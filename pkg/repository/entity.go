package repository

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entity is the minimal contract for persisted catalog records.
type Entity interface {
	// TableName returns the database table name for this entity
	TableName() string

	// GetPrimaryKeyValue returns the current primary key value; zero means
	// the entity has not been stored yet.
	GetPrimaryKeyValue() any
}

// Persistable is implemented by entities embedding Model.
type Persistable interface {
	IsPersisted() bool
}

// Model is embedded by every catalog entity.
type Model struct {
	ID        uint      `gorm:"primaryKey;column:id" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPersisted reports whether the entity already has a row.
func (m Model) IsPersisted() bool {
	return m.ID != 0
}

func (m Model) GetPrimaryKeyValue() any {
	return m.ID
}

// Save inserts entity when it has no identifier and otherwise writes every
// column. The row is read back afterwards so generated values (id,
// timestamps, column defaults) are visible on entity. Associations are
// never written through.
func Save(ctx context.Context, gdb *gorm.DB, entity Entity) error {
	if err := checkEntity(entity); err != nil {
		return err
	}
	session := gdb.WithContext(ctx).Omit(clause.Associations)

	var err error
	if isPersisted(entity) {
		err = session.Save(entity).Error
	} else {
		err = session.Create(entity).Error
	}
	if err != nil {
		return MapError(err)
	}

	if err := gdb.WithContext(ctx).First(entity, entity.GetPrimaryKeyValue()).Error; err != nil {
		return MapError(err)
	}
	return nil
}

// Delete removes the entity's row. ErrNotFound is returned when nothing
// was deleted.
func Delete(ctx context.Context, gdb *gorm.DB, entity Entity) error {
	if err := checkEntity(entity); err != nil {
		return err
	}
	if !isPersisted(entity) {
		return fmt.Errorf("%w: %s has no identifier", ErrNotFound, entity.TableName())
	}

	res := gdb.WithContext(ctx).Delete(entity)
	if res.Error != nil {
		return MapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s %v", ErrNotFound, entity.TableName(), entity.GetPrimaryKeyValue())
	}
	return nil
}

// ToMap returns every column value keyed by column name, excluding the
// primary key. Columns are resolved through the GORM schema so renamed
// columns and embedded structs are handled.
func ToMap(gdb *gorm.DB, entity Entity) (map[string]any, error) {
	if err := checkEntity(entity); err != nil {
		return nil, err
	}
	stmt := &gorm.Statement{DB: gdb}
	if err := stmt.Parse(entity); err != nil {
		return nil, fmt.Errorf("parse schema for %s: %w", entity.TableName(), err)
	}

	rv := reflect.ValueOf(entity)
	out := make(map[string]any, len(stmt.Schema.DBNames))
	for _, name := range stmt.Schema.DBNames {
		field := stmt.Schema.LookUpField(name)
		if field == nil || field.PrimaryKey {
			continue
		}
		value, _ := field.ValueOf(context.Background(), rv)
		out[name] = value
	}
	return out, nil
}

// LoadRelationships eagerly fetches the named associations into entity.
func LoadRelationships(ctx context.Context, gdb *gorm.DB, entity Entity, names ...string) error {
	if err := checkEntity(entity); err != nil {
		return err
	}
	if !isPersisted(entity) || len(names) == 0 {
		return nil
	}

	q := gdb.WithContext(ctx)
	for _, name := range names {
		q = q.Preload(name)
	}
	if err := q.First(entity, entity.GetPrimaryKeyValue()).Error; err != nil {
		return MapError(err)
	}
	return nil
}

func checkEntity(entity Entity) error {
	if entity == nil {
		return fmt.Errorf("entity cannot be nil")
	}
	rv := reflect.ValueOf(entity)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("entity %T must be a non-nil pointer", entity)
	}
	return nil
}

func isPersisted(entity Entity) bool {
	if p, ok := entity.(Persistable); ok {
		return p.IsPersisted()
	}
	return !reflect.ValueOf(entity.GetPrimaryKeyValue()).IsZero()
}
