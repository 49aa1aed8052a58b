package store

import (
	"strings"
)

const schema = `
CREATE TABLE IF NOT EXISTS ore (
	ore_id      TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	mass        REAL NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS ore_name ON ore (name COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS component (
	component_id    TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	materials       TEXT NOT NULL DEFAULT '{}',
	fabricator_type TEXT NOT NULL DEFAULT '',
	crafting_time   REAL NOT NULL DEFAULT 0,
	mass            REAL NOT NULL DEFAULT 0,
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS component_name ON component (name COLLATE NOCASE);

CREATE TABLE IF NOT EXISTS block (
	block_id         TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	mass             REAL NOT NULL,
	components       TEXT NOT NULL DEFAULT '{}',
	health           REAL NOT NULL,
	pcu              INTEGER NOT NULL,
	snap_size        REAL NOT NULL,
	input_mass       INTEGER,
	output_mass      INTEGER,
	consumer_type    TEXT NOT NULL DEFAULT '',
	consumer_rate    REAL NOT NULL DEFAULT 0,
	producer_type    TEXT NOT NULL DEFAULT '',
	producer_rate    REAL NOT NULL DEFAULT 0,
	storage_capacity REAL NOT NULL DEFAULT 0,
	created_at       TIMESTAMP NOT NULL,
	updated_at       TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS block_name ON block (name COLLATE NOCASE);
`

type table struct {
	name     string
	id       string
	columns  []string // without id
	sortable []string // first one is the default
}

var tables = map[Kind]*table{
	Ores: {
		name:     "ore",
		id:       "ore_id",
		columns:  []string{"name", "description", "mass", "created_at", "updated_at"},
		sortable: []string{"name", "mass", "created_at", "updated_at"},
	},
	Components: {
		name: "component",
		id:   "component_id",
		columns: []string{"name", "description", "materials", "fabricator_type",
			"crafting_time", "mass", "created_at", "updated_at"},
		sortable: []string{"name", "mass", "crafting_time", "created_at", "updated_at"},
	},
	Blocks: {
		name: "block",
		id:   "block_id",
		columns: []string{"name", "description", "mass", "components", "health",
			"pcu", "snap_size", "input_mass", "output_mass",
			"consumer_type", "consumer_rate", "producer_type", "producer_rate",
			"storage_capacity", "created_at", "updated_at"},
		sortable: []string{"name", "mass", "health", "pcu", "created_at", "updated_at"},
	},
}

// SortColumns lists the columns a listing of this kind can be sorted by.
func SortColumns(kind Kind) []string {
	if t := tables[kind]; t != nil {
		return t.sortable
	}
	return nil
}

func (t *table) selectSQL() string {
	return "SELECT " + t.id + ", " + strings.Join(t.columns, ", ") + " FROM " + t.name
}

func (t *table) findSQL() string {
	return t.selectSQL() + " WHERE " + t.id + "=?"
}

func (t *table) insertSQL() string {
	all := append([]string{t.id}, t.columns...)
	return "INSERT INTO " + t.name + " (" + strings.Join(all, ", ") + ")" +
		" VALUES (:" + strings.Join(all, ", :") + ")"
}

// Everything but id and created_at is updated.
func (t *table) updateSQL() string {
	var set []string
	for _, c := range t.columns {
		if c != "created_at" {
			set = append(set, c+"=:"+c)
		}
	}
	return "UPDATE " + t.name + " SET " + strings.Join(set, ", ") +
		" WHERE " + t.id + "=:" + t.id
}

func (t *table) sortColumn(requested string) string {
	for _, c := range t.sortable {
		if c == requested {
			return c
		}
	}
	return t.sortable[0]
}

func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

func (t *table) whereSQL(term string) (string, []interface{}) {
	if term == "" {
		return "", nil
	}
	p := likePattern(term)
	return ` WHERE (name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`, []interface{}{p, p}
}

func (t *table) listSQL(q ListQuery) (string, []interface{}) {
	where, args := t.whereSQL(q.Term)
	order := " ASC"
	if q.Desc {
		order = " DESC"
	}
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	query := t.selectSQL() + where +
		" ORDER BY " + t.sortColumn(q.Sort) + order + ", name COLLATE NOCASE ASC" +
		" LIMIT ? OFFSET ?"
	return query, append(args, limit, offset)
}

func (t *table) countSQL(term string) (string, []interface{}) {
	where, args := t.whereSQL(term)
	return "SELECT COUNT(*) FROM " + t.name + where, args
}
