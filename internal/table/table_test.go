package table

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"rowstore/internal/rowcodec"
)

func insertRow(t *testing.T, tbl *Table, id uint32) ExecuteResult {
	t.Helper()
	result, err := tbl.Execute(Statement{
		Type: StatementInsert,
		RowToInsert: rowcodec.Row{
			ID:       id,
			Username: fmt.Sprintf("user%d", id),
			Email:    fmt.Sprintf("user%d@example.com", id),
		},
	}, nil)
	require.NoError(t, err)
	return result
}

func selectAll(t *testing.T, tbl *Table) []rowcodec.Row {
	t.Helper()
	var rows []rowcodec.Row
	result, err := tbl.Execute(Statement{Type: StatementSelect}, func(r rowcodec.Row) error {
		rows = append(rows, r)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, ExecuteSuccess, result)
	return rows
}

// TestInsertAndSelectRoundTrip is spec.md §8 scenario 1.
func TestInsertAndSelectRoundTrip(t *testing.T) {
	tbl, err := Open(afero.NewMemMapFs(), "test.db")
	require.NoError(t, err)
	defer tbl.Close()

	require.Equal(t, ExecuteSuccess, insertRow(t, tbl, 1))

	rows := selectAll(t, tbl)
	require.Len(t, rows, 1)
	require.EqualValues(t, 1, rows[0].ID)
}

// TestDuplicateKeyIsRejected is spec.md §8 scenario 2.
func TestDuplicateKeyIsRejected(t *testing.T) {
	tbl, err := Open(afero.NewMemMapFs(), "test.db")
	require.NoError(t, err)
	defer tbl.Close()

	require.Equal(t, ExecuteSuccess, insertRow(t, tbl, 1))
	require.Equal(t, ExecuteDuplicateKey, insertRow(t, tbl, 1))

	rows := selectAll(t, tbl)
	require.Len(t, rows, 1)
}

// TestCloseAndReopenPersistsData is spec.md §8 scenario 3: a closed and
// reopened database retains every previously inserted row.
func TestCloseAndReopenPersistsData(t *testing.T) {
	fs := afero.NewMemMapFs()

	tbl, err := Open(fs, "test.db")
	require.NoError(t, err)
	for id := uint32(1); id <= 5; id++ {
		require.Equal(t, ExecuteSuccess, insertRow(t, tbl, id))
	}
	require.NoError(t, tbl.Close())

	reopened, err := Open(fs, "test.db")
	require.NoError(t, err)
	defer reopened.Close()

	rows := selectAll(t, reopened)
	require.Len(t, rows, 5)
	for i, row := range rows {
		require.EqualValues(t, i+1, row.ID)
	}
}

// TestTableFullAfterExhaustingInternalRootScope is spec.md §8 scenario 5,
// adapted to this spec's bounded tree height: once the root has split, an
// insert into a full leaf child of the single internal root would require a
// second split and reports ExecuteTableFull rather than growing the tree
// further.
func TestTableFullAfterExhaustingInternalRootScope(t *testing.T) {
	tbl, err := Open(afero.NewMemMapFs(), "test.db")
	require.NoError(t, err)
	defer tbl.Close()

	sawTableFull := false
	for id := uint32(1); id <= 200; id++ {
		result := insertRow(t, tbl, id)
		if result == ExecuteTableFull {
			sawTableFull = true
			break
		}
		require.Equal(t, ExecuteSuccess, result)
	}

	require.True(t, sawTableFull, "expected ExecuteTableFull once the bounded tree's capacity is exhausted")
}

// TestMaxLengthStringsRoundTrip is spec.md §8 scenario 4.
func TestMaxLengthStringsRoundTrip(t *testing.T) {
	tbl, err := Open(afero.NewMemMapFs(), "test.db")
	require.NoError(t, err)
	defer tbl.Close()

	username := make([]byte, rowcodec.MaxUsernameLen)
	for i := range username {
		username[i] = 'u'
	}
	email := make([]byte, rowcodec.MaxEmailLen)
	for i := range email {
		email[i] = 'e'
	}

	result, err := tbl.Execute(Statement{
		Type: StatementInsert,
		RowToInsert: rowcodec.Row{
			ID:       1,
			Username: string(username),
			Email:    string(email),
		},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, ExecuteSuccess, result)

	rows := selectAll(t, tbl)
	require.Len(t, rows, 1)
	require.Equal(t, string(username), rows[0].Username)
	require.Equal(t, string(email), rows[0].Email)
}
