package schema

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Capabilities is a snapshot of which tables and columns exist, taken
// once per dispatch cycle. Tenant databases can lag behind migrations,
// so query builders consult this instead of assuming the full schema.
type Capabilities struct {
	tables map[string]map[string]struct{}
}

func (c Capabilities) TableExists(name string) bool {
	_, ok := c.tables[name]
	return ok
}

func (c Capabilities) Has(table, column string) bool {
	cols, ok := c.tables[table]
	if !ok {
		return false
	}
	_, ok = cols[column]
	return ok
}

func (c Capabilities) Columns(table string) []string {
	cols, ok := c.tables[table]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(cols))
	for name := range cols {
		out = append(out, name)
	}
	return out
}

type Catalog struct {
	DB *gorm.DB
}

// Snapshot reads information_schema for the given tables. A lookup
// failure degrades to "nothing exists": the claim path then reports
// not-installed instead of crashing on a half-migrated deployment.
func (c *Catalog) Snapshot(ctx context.Context, tables ...string) Capabilities {
	caps := Capabilities{tables: map[string]map[string]struct{}{}}

	var rows []struct {
		TableName  string `gorm:"column:table_name"`
		ColumnName string `gorm:"column:column_name"`
	}
	err := c.DB.WithContext(ctx).Raw(`
		select table_name, column_name
		from information_schema.columns
		where table_schema = current_schema()
		  and table_name in ?
	`, tables).Scan(&rows).Error
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("schema catalog lookup failed, treating tables as absent")
		return caps
	}

	for _, r := range rows {
		cols, ok := caps.tables[r.TableName]
		if !ok {
			cols = map[string]struct{}{}
			caps.tables[r.TableName] = cols
		}
		cols[r.ColumnName] = struct{}{}
	}
	return caps
}

// CapabilitiesFor builds a snapshot value directly from a table->columns
// map. Exists for tests and for callers that already know the layout.
func CapabilitiesFor(tables map[string][]string) Capabilities {
	caps := Capabilities{tables: map[string]map[string]struct{}{}}
	for table, cols := range tables {
		set := make(map[string]struct{}, len(cols))
		for _, col := range cols {
			set[col] = struct{}{}
		}
		caps.tables[table] = set
	}
	return caps
}
