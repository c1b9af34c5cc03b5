package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novarel/internal/algebra"
	"github.com/tuannm99/novarel/internal/qerr"
	"github.com/tuannm99/novarel/internal/record"
	"github.com/tuannm99/novarel/internal/table"
)

func employees(t *testing.T) *table.Table {
	t.Helper()
	tbl := table.New(record.Header{
		{Name: "name", Kind: record.KindText},
		{Name: "dept", Kind: record.KindText},
	})
	require.NoError(t, tbl.InsertRow(record.Row{record.Text("Ann"), record.Text("IT")}))
	require.NoError(t, tbl.InsertRow(record.Row{record.Text("Bo"), record.Text("QA")}))
	return tbl
}

func TestNew_UppercasesName(t *testing.T) {
	db := New("company")
	assert.Equal(t, "COMPANY", db.Name())
}

func TestInsertTable(t *testing.T) {
	db := New("t")
	require.NoError(t, db.InsertTable("Employees", employees(t)))

	require.True(t, db.TableExists("Employees"))
	require.False(t, db.QueryExists("Employees"))
	require.True(t, db.NameTaken("Employees"))
	require.NotNil(t, db.GetTable("Employees"))
	require.Nil(t, db.GetTableQ("Employees"))
}

func TestInsert_NameCollision(t *testing.T) {
	db := New("t")
	require.NoError(t, db.InsertTable("Employees", employees(t)))

	err := db.InsertTable("Employees", employees(t))
	require.ErrorIs(t, err, ErrNameTaken)

	q := algebra.New(&algebra.Projection{Source: algebra.Ref("Employees"), Columns: []string{"name"}})
	err = db.InsertQuery("Employees", q)
	require.ErrorIs(t, err, ErrNameTaken)
	require.Equal(t, qerr.CategoryResolution, qerr.CategoryOf(err))
	require.False(t, db.QueryExists("Employees"))
}

func TestInsertQuery_ArchivesName(t *testing.T) {
	db := New("t")
	require.NoError(t, db.InsertTable("Employees", employees(t)))

	q := algebra.New(&algebra.Projection{Source: algebra.Ref("Employees"), Columns: []string{"name"}})
	require.NoError(t, db.InsertQuery("Names", q))
	require.Equal(t, "Names", q.Name())
	require.Same(t, q, db.GetTableQ("Names"))

	// the catalog is the resolver for stored queries
	require.NoError(t, q.Evaluate(db))
	require.Equal(t, 2, q.GetQueryResult().RowCount())
}

func TestValidateIdent(t *testing.T) {
	for _, ok := range []string{"A", "_x", "Q1", "émployés"} {
		assert.NoError(t, ValidateIdent(ok), ok)
	}
	for _, bad := range []string{"", "1Q", "a-b", "a b", "~sub"} {
		err := ValidateIdent(bad)
		assert.ErrorIs(t, err, ErrInvalidName, bad)
		assert.Equal(t, qerr.CategorySyntax, qerr.CategoryOf(err))
	}
}

func TestNamesSorted(t *testing.T) {
	db := New("t")
	require.NoError(t, db.InsertTable("Zeta", employees(t)))
	require.NoError(t, db.InsertTable("Alpha", employees(t)))
	require.NoError(t, db.InsertQuery("Q2", algebra.New(&algebra.Union{Left: algebra.Ref("Zeta"), Right: algebra.Ref("Alpha")})))
	require.NoError(t, db.InsertQuery("Q1", algebra.New(&algebra.Minus{Left: algebra.Ref("Zeta"), Right: algebra.Ref("Alpha")})))

	require.Equal(t, []string{"Alpha", "Zeta"}, db.TableNames())
	require.Equal(t, []string{"Q1", "Q2"}, db.QueryNames())
}

func TestClose(t *testing.T) {
	db := New("t")
	require.NoError(t, db.InsertTable("Employees", employees(t)))
	require.NoError(t, db.Close())

	require.Empty(t, db.TableNames())
	require.ErrorIs(t, db.InsertTable("Other", employees(t)), ErrClosed)
	require.ErrorIs(t, db.Close(), ErrClosed)
}

func TestExportQueries(t *testing.T) {
	db := New("shop")
	require.NoError(t, db.InsertTable("Employees", employees(t)))

	q := algebra.New(&algebra.Projection{Source: algebra.Ref("Employees"), Columns: []string{"name"}})
	require.NoError(t, q.Evaluate(db))
	require.NoError(t, db.InsertQuery("Names", q))
	require.NoError(t, db.InsertQuery("Later", algebra.New(&algebra.Alias{Source: algebra.Ref("Names")})))

	var buf bytes.Buffer
	require.NoError(t, db.ExportQueries(&buf))
	out := buf.String()
	require.Contains(t, out, "database: SHOP")
	require.Contains(t, out, "name: Names")
	require.Contains(t, out, "sql: PROJECTION(Employees) COLUMNS name")

	f, err := DecodeQueries(strings.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, "SHOP", f.Database)
	require.Equal(t, []QueryDef{
		{Name: "Later", SQL: "ALIAS(Names)"},
		{Name: "Names", SQL: "PROJECTION(Employees) COLUMNS name", Resolved: true},
	}, f.Queries)
}

func TestDecodeQueries_Empty(t *testing.T) {
	f, err := DecodeQueries(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, f.Queries)
}
