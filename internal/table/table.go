// Package table is the storage engine's facade: it owns a Pager rooted at
// a single page-0 B+-tree and dispatches prepared statements to the btree
// package. This is the "Engine API" surface from SPEC_FULL.md §6: db_open,
// execute, free_table.
package table

import (
	"github.com/spf13/afero"

	"rowstore/internal/btree"
	"rowstore/internal/page"
	"rowstore/internal/pager"
	"rowstore/internal/rowcodec"
)

// Table is an open database: a Pager plus the fixed root page number.
type Table struct {
	pgr *pager.Pager
}

// Open opens (or creates) the database file at path on fs. A brand-new file
// is initialized with page 0 as an empty leaf marked root.
func Open(fs afero.Fs, path string) (*Table, error) {
	pgr, err := pager.Open(fs, path)
	if err != nil {
		return nil, err
	}

	t := &Table{pgr: pgr}
	if pgr.NumPages() == 0 {
		root, err := pgr.GetPage(btree.RootPageNum)
		if err != nil {
			return nil, err
		}
		page.InitializeLeafNode(root)
		root.SetIsRoot(true)
	}

	return t, nil
}

// Close flushes all dirty pages and releases the underlying file. This is
// the engine's free_table: there is no separate in-memory teardown beyond
// what the Pager itself owns.
func (t *Table) Close() error {
	return t.pgr.Close()
}

// StatementType distinguishes the two statements the engine accepts.
type StatementType int

const (
	StatementInsert StatementType = iota
	StatementSelect
)

// Statement is a prepared, already-validated engine operation.
type Statement struct {
	Type        StatementType
	RowToInsert rowcodec.Row
}

// ExecuteResult is the user-level outcome of running a Statement.
type ExecuteResult int

const (
	ExecuteSuccess ExecuteResult = iota
	ExecuteDuplicateKey
	ExecuteTableFull
)

// Execute runs stmt against the table. SELECT results are streamed to
// visit, one row at a time, in ascending key order.
func (t *Table) Execute(stmt Statement, visit func(rowcodec.Row) error) (ExecuteResult, error) {
	switch stmt.Type {
	case StatementInsert:
		return t.executeInsert(stmt.RowToInsert)
	case StatementSelect:
		return t.executeSelect(visit)
	default:
		return ExecuteTableFull, nil
	}
}

func (t *Table) executeInsert(row rowcodec.Row) (ExecuteResult, error) {
	result, err := btree.Insert(t.pgr, row)
	if err != nil {
		return ExecuteTableFull, err
	}

	switch result {
	case btree.InsertDuplicateKey:
		return ExecuteDuplicateKey, nil
	case btree.InsertTableFull:
		return ExecuteTableFull, nil
	default:
		return ExecuteSuccess, nil
	}
}

func (t *Table) executeSelect(visit func(rowcodec.Row) error) (ExecuteResult, error) {
	cursor, err := btree.TableStart(t.pgr)
	if err != nil {
		return ExecuteTableFull, err
	}

	for !cursor.EndOfTable {
		raw, err := cursor.Value()
		if err != nil {
			return ExecuteTableFull, err
		}
		row, err := rowcodec.Deserialize(raw)
		if err != nil {
			return ExecuteTableFull, err
		}
		if visit != nil {
			if err := visit(row); err != nil {
				return ExecuteTableFull, err
			}
		}
		if err := cursor.Advance(); err != nil {
			return ExecuteTableFull, err
		}
	}

	return ExecuteSuccess, nil
}

// Pager exposes the underlying Pager for ambient tooling (.btree rendering)
// that needs to inspect raw page contents without duplicating
// the engine's own page-access path.
func (t *Table) Pager() *pager.Pager {
	return t.pgr
}
