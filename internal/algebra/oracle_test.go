package algebra

import (
	"database/sql"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/tuannm99/novarel/internal/record"
	"github.com/tuannm99/novarel/internal/table"
)

// The set operators are checked against SQLite's UNION / INTERSECT /
// EXCEPT, which share the distinct-rows semantics.

func randomTable(rng *rand.Rand, n int) *table.Table {
	tbl := table.New(record.Header{
		{Name: "name", Kind: record.KindText},
		{Name: "n", Kind: record.KindInt},
	})
	names := []string{"Ann", "Bo", "Cy", "Di"}
	for i := 0; i < n; i++ {
		_ = tbl.InsertRow(record.Row{
			record.Text(names[rng.Intn(len(names))]),
			record.Int(int64(rng.Intn(4))),
		})
	}
	return tbl
}

func loadSQLite(t *testing.T, db *sql.DB, name string, tbl *table.Table) {
	t.Helper()
	_, err := db.Exec(fmt.Sprintf("CREATE TABLE %s (name TEXT, n INTEGER)", name))
	require.NoError(t, err)
	err = tbl.Scan(func(_ int, row record.Row) error {
		_, err := db.Exec(fmt.Sprintf("INSERT INTO %s VALUES (?, ?)", name), row[0].AsText(), row[1].AsInt())
		return err
	})
	require.NoError(t, err)
}

func sqliteRows(t *testing.T, db *sql.DB, query string) []string {
	t.Helper()
	rows, err := db.Query(query)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var (
			n    int64
			name string
		)
		require.NoError(t, rows.Scan(&n, &name))
		out = append(out, record.Row{record.Int(n), record.Text(name)}.String())
	}
	require.NoError(t, rows.Err())
	return out
}

func TestSetOps_MatchSQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(1)

	rng := rand.New(rand.NewSource(7))
	c := newFakeCatalog()
	c.tables["A"] = randomTable(rng, 12)
	c.tables["B"] = randomTable(rng, 9)
	loadSQLite(t, db, "A", c.tables["A"])
	loadSQLite(t, db, "B", c.tables["B"])

	tests := []struct {
		name   string
		op     Operator
		sqlite string
	}{
		{"union", &Union{Left: Ref("A"), Right: Ref("B")}, "UNION"},
		{"intersect", &Intersect{Left: Ref("A"), Right: Ref("B")}, "INTERSECT"},
		{"minus", &Minus{Left: Ref("A"), Right: Ref("B")}, "EXCEPT"},
		{"minus reversed", &Minus{Left: Ref("B"), Right: Ref("A")}, "EXCEPT"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, r := "A", "B"
			if tc.name == "minus reversed" {
				l, r = "B", "A"
			}
			want := sqliteRows(t, db, fmt.Sprintf(
				"SELECT n, name FROM %s %s SELECT n, name FROM %s ORDER BY n, name", l, tc.sqlite, r))

			q := New(tc.op)
			err := q.Evaluate(c)
			if len(want) == 0 {
				require.ErrorIs(t, err, ErrEmptyResult)
				return
			}
			require.NoError(t, err)
			require.Equal(t, []string{"n", "name"}, q.GetQueryResult().ColumnNames())
			require.Equal(t, want, rowSet(q.GetQueryResult()))
		})
	}
}
