package store

import (
	"database/sql"
	"net/http"
	"reflect"
	"time"

	"github.com/ansel1/merry"
	"github.com/jmoiron/sqlx"
	"github.com/powerman/structlog"

	"github.com/hzeller/se2calc/internal/catalog"
)

var ErrNotFound = merry.New("record not found").WithHTTPCode(http.StatusNotFound)

var log = structlog.New(structlog.KeyUnit, "store")

type statements struct {
	find   *sqlx.Stmt
	insert *sqlx.NamedStmt
	update *sqlx.NamedStmt
	remove *sqlx.Stmt
}

// SqlStore keeps records in an SQLite database accessed through sqlx.
type SqlStore struct {
	db    *sqlx.DB
	stmts map[Kind]*statements
	now   func() time.Time
}

func NewSqlStore(db *sqlx.DB, createTables bool) (*SqlStore, error) {
	if createTables {
		if _, err := db.Exec(schema); err != nil {
			return nil, merry.Prepend(err, "create tables")
		}
	}
	s := &SqlStore{
		db:    db,
		stmts: make(map[Kind]*statements),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for kind, t := range tables {
		var st statements
		var err error
		if st.find, err = db.Preparex(t.findSQL()); err != nil {
			return nil, merry.Prependf(err, "prepare find %s", kind)
		}
		if st.insert, err = db.PrepareNamed(t.insertSQL()); err != nil {
			return nil, merry.Prependf(err, "prepare insert %s", kind)
		}
		if st.update, err = db.PrepareNamed(t.updateSQL()); err != nil {
			return nil, merry.Prependf(err, "prepare update %s", kind)
		}
		if st.remove, err = db.Preparex("DELETE FROM " + t.name + " WHERE " + t.id + "=?"); err != nil {
			return nil, merry.Prependf(err, "prepare delete %s", kind)
		}
		s.stmts[kind] = &st
	}
	return s, nil
}

func (s *SqlStore) find(kind Kind, id string, dest interface{}) bool {
	err := s.stmts[kind].find.Get(dest, id)
	switch {
	case err == sql.ErrNoRows:
		return false
	case err != nil:
		log.PrintErr(merry.Prependf(err, "find %s", kind), "id", id)
		return false
	}
	return true
}

func (s *SqlStore) FindOre(id string) *catalog.Ore {
	var result catalog.Ore
	if !s.find(Ores, id, &result) {
		return nil
	}
	return &result
}

func (s *SqlStore) FindComponent(id string) *catalog.Component {
	var result catalog.Component
	if !s.find(Components, id, &result) {
		return nil
	}
	return &result
}

func (s *SqlStore) FindBlock(id string) *catalog.Block {
	var result catalog.Block
	if !s.find(Blocks, id, &result) {
		return nil
	}
	return &result
}

// write stamps the store managed timestamps and inserts or updates rec.
func (s *SqlStore) write(kind Kind, insert bool, rec interface{}, created, updated *time.Time) (bool, string) {
	now := s.now()
	*updated = now
	st := s.stmts[kind].update
	if insert {
		*created = now
		st = s.stmts[kind].insert
	}
	if _, err := st.Exec(rec); err != nil {
		log.PrintErr(merry.Prependf(err, "store %s", kind))
		return false, err.Error()
	}
	return true, ""
}

func (s *SqlStore) EditOre(id string, update ModifyOre) (bool, string) {
	needsInsert := false
	rec := s.FindOre(id)
	if rec == nil {
		needsInsert = true
		rec = &catalog.Ore{ID: id}
	}
	before := *rec
	if !update(rec) {
		return true, ""
	}
	if rec.ID != id {
		return false, "ID was modified"
	}
	rec.Created, rec.Updated = before.Created, before.Updated
	if !needsInsert && *rec == before {
		log.Debug("no change", "kind", Ores, "id", id)
		return true, "No change"
	}
	return s.write(Ores, needsInsert, rec, &rec.Created, &rec.Updated)
}

func (s *SqlStore) EditComponent(id string, update ModifyComponent) (bool, string) {
	needsInsert := false
	rec := s.FindComponent(id)
	if rec == nil {
		needsInsert = true
		rec = &catalog.Component{ID: id}
	}
	before := *rec
	before.Materials = rec.Materials.Clone()
	if !update(rec) {
		return true, ""
	}
	if rec.ID != id {
		return false, "ID was modified"
	}
	rec.Created, rec.Updated = before.Created, before.Updated
	if !needsInsert && reflect.DeepEqual(*rec, before) {
		log.Debug("no change", "kind", Components, "id", id)
		return true, "No change"
	}
	return s.write(Components, needsInsert, rec, &rec.Created, &rec.Updated)
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (s *SqlStore) EditBlock(id string, update ModifyBlock) (bool, string) {
	needsInsert := false
	rec := s.FindBlock(id)
	if rec == nil {
		needsInsert = true
		rec = &catalog.Block{ID: id}
	}
	before := *rec
	before.Components = rec.Components.Clone()
	before.InputMass = cloneInt(rec.InputMass)
	before.OutputMass = cloneInt(rec.OutputMass)
	if !update(rec) {
		return true, ""
	}
	if rec.ID != id {
		return false, "ID was modified"
	}
	rec.Created, rec.Updated = before.Created, before.Updated
	if !needsInsert && reflect.DeepEqual(*rec, before) {
		log.Debug("no change", "kind", Blocks, "id", id)
		return true, "No change"
	}
	return s.write(Blocks, needsInsert, rec, &rec.Created, &rec.Updated)
}

func (s *SqlStore) Delete(kind Kind, id string) error {
	st, ok := s.stmts[kind]
	if !ok {
		return merry.Errorf("unknown kind %q", kind)
	}
	res, err := st.remove.Exec(id)
	if err != nil {
		return merry.Prependf(err, "delete %s %s", kind, id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return merry.Appendf(ErrNotFound, "%s %s", kind, id)
	}
	return nil
}

func (s *SqlStore) list(kind Kind, q ListQuery, dest interface{}) error {
	query, args := tables[kind].listSQL(q)
	if err := s.db.Select(dest, query, args...); err != nil {
		err = merry.Prependf(err, "list %s", kind)
		log.PrintErr(err, "term", q.Term)
		return err
	}
	return nil
}

func (s *SqlStore) ListOres(q ListQuery) ([]*catalog.Ore, error) {
	var result []*catalog.Ore
	err := s.list(Ores, q, &result)
	return result, err
}

func (s *SqlStore) ListComponents(q ListQuery) ([]*catalog.Component, error) {
	var result []*catalog.Component
	err := s.list(Components, q, &result)
	return result, err
}

func (s *SqlStore) ListBlocks(q ListQuery) ([]*catalog.Block, error) {
	var result []*catalog.Block
	err := s.list(Blocks, q, &result)
	return result, err
}

func (s *SqlStore) Count(kind Kind, term string) int {
	t, ok := tables[kind]
	if !ok {
		return 0
	}
	query, args := t.countSQL(term)
	var n int
	if err := s.db.Get(&n, query, args...); err != nil {
		log.PrintErr(merry.Prependf(err, "count %s", kind))
		return 0
	}
	return n
}

func (s *SqlStore) NameTaken(kind Kind, name string, exceptID string) bool {
	t, ok := tables[kind]
	if !ok {
		return false
	}
	var n int
	err := s.db.Get(&n, "SELECT COUNT(*) FROM "+t.name+
		" WHERE name = ? COLLATE NOCASE AND "+t.id+" != ?", name, exceptID)
	if err != nil {
		log.PrintErr(merry.Prependf(err, "name check %s", kind))
		return false
	}
	return n > 0
}
