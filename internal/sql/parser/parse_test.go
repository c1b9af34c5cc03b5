package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novarel/internal/algebra"
	"github.com/tuannm99/novarel/internal/catalog"
	"github.com/tuannm99/novarel/internal/qerr"
	"github.com/tuannm99/novarel/internal/record"
)

func parseQuery(t *testing.T, sql string) *QueryStmt {
	t.Helper()
	stmt, err := Parse(sql)
	require.NoError(t, err)
	q, ok := stmt.(*QueryStmt)
	require.True(t, ok, "want *QueryStmt, got %T", stmt)
	return q
}

func TestParse_RequireSemicolon(t *testing.T) {
	_, err := Parse("UNION(A, B)")
	require.ErrorIs(t, err, ErrBadStatement)
	require.Contains(t, err.Error(), "missing ';'")

	_, err = Parse("   ;")
	require.ErrorIs(t, err, ErrBadStatement)
}

func TestParse_NamedSelection(t *testing.T) {
	q := parseQuery(t, `Q1 = SELECTION(Employees) WHERE dept = "QA";`)
	require.Equal(t, "Q1", q.Name)
	require.Equal(t, algebra.KeywordSelection, q.Expr.Op)
	require.Equal(t, []Operand{{Name: "Employees"}}, q.Expr.Operands)
	require.Equal(t, []algebra.Condition{
		{Column: "dept", Rel: algebra.RelEq, Right: algebra.Term{Literal: `"QA"`}},
	}, q.Expr.Where)
}

func TestParse_WhereInsideParentheses(t *testing.T) {
	q := parseQuery(t, `Q = SELECTION(Employees WHERE dept = 'QA' AND name != Boss);`)
	require.Equal(t, []algebra.Condition{
		{Column: "dept", Rel: algebra.RelEq, Right: algebra.Term{Literal: `'QA'`}},
		{Column: "name", Rel: algebra.RelNe, Right: algebra.Term{Column: "Boss"}},
	}, q.Expr.Where)
}

func TestParse_Unnamed(t *testing.T) {
	q := parseQuery(t, "natural_join(Employees, Depts);")
	require.Empty(t, q.Name)
	require.Equal(t, algebra.KeywordNaturalJoin, q.Expr.Op)
	require.Len(t, q.Expr.Operands, 2)
}

func TestParse_SaveAs(t *testing.T) {
	q := parseQuery(t, "UNION(A, B) SAVE AS Both;")
	require.Equal(t, "Both", q.Name)
	require.Equal(t, algebra.KeywordUnion, q.Expr.Op)
}

func TestParse_OperatorAliases(t *testing.T) {
	tests := map[string]string{
		"CARTESIAN(A, B);":         algebra.KeywordCartesian,
		"CartesianProduct(A, B);":  algebra.KeywordCartesian,
		"CARTESIAN_PRODUCT(A, B);": algebra.KeywordCartesian,
		"NATURALJOIN(A, B);":       algebra.KeywordNaturalJoin,
		"rename(A);":               algebra.KeywordAlias,
		"minus(A, B);":             algebra.KeywordMinus,
	}
	for sql, want := range tests {
		t.Run(sql, func(t *testing.T) {
			q := parseQuery(t, sql)
			assert.Equal(t, want, q.Expr.Op)
		})
	}
}

func TestParse_NestedOperands(t *testing.T) {
	q := parseQuery(t, `Q = UNION((SELECTION(Employees) WHERE dept = "a(b)"), (PROJECTION(Staff) COLUMNS name, dept));`)
	require.Len(t, q.Expr.Operands, 2)

	left := q.Expr.Operands[0].Sub
	require.NotNil(t, left)
	require.Equal(t, algebra.KeywordSelection, left.Op)
	require.Equal(t, `"a(b)"`, left.Where[0].Right.Literal)

	right := q.Expr.Operands[1].Sub
	require.NotNil(t, right)
	require.Equal(t, []string{"name", "dept"}, right.Columns)
}

func TestParse_BareNestedOperand(t *testing.T) {
	// a top-level clause after a bare nested operand belongs to the outer operator
	q := parseQuery(t, "ALIAS(RENAME(Employees) RENAME name AS who);")
	require.Equal(t, algebra.KeywordAlias, q.Expr.Op)
	require.Equal(t, []algebra.Rename{{From: "name", To: "who"}}, q.Expr.Renames)

	sub := q.Expr.Operands[0].Sub
	require.NotNil(t, sub)
	require.Equal(t, algebra.KeywordAlias, sub.Op)
	require.Empty(t, sub.Renames)
}

func TestParse_ParenthesizedNestedClause(t *testing.T) {
	q := parseQuery(t, "Q = UNION((SELECTION(E) WHERE age > 30), Staff);")
	require.Len(t, q.Expr.Operands, 2)
	require.NotNil(t, q.Expr.Operands[0].Sub)
	require.Len(t, q.Expr.Operands[0].Sub.Where, 1)
	require.Equal(t, "Staff", q.Expr.Operands[1].Name)
}

func TestParse_Projection(t *testing.T) {
	q := parseQuery(t, "P = PROJECTION(Employees) COLUMNS name, dept;")
	require.Equal(t, []string{"name", "dept"}, q.Expr.Columns)
}

func TestParse_Alias(t *testing.T) {
	q := parseQuery(t, "A = ALIAS(Employees) RENAME name AS who, dept AS unit;")
	require.Equal(t, []algebra.Rename{{From: "name", To: "who"}, {From: "dept", To: "unit"}}, q.Expr.Renames)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want error
	}{
		{"unknown relation", `BadQ = SELECTION(Employees) WHERE dept ~~ "QA";`, algebra.ErrUnknownRelation},
		{"missing relation", `Q = SELECTION(Employees) WHERE dept "QA";`, ErrMissingRelation},
		{"missing right operand", `Q = SELECTION(Employees) WHERE dept =;`, ErrMissingOperand},
		{"missing left operand", `Q = SELECTION(Employees) WHERE = "QA";`, ErrMissingOperand},
		{"unterminated literal", `Q = SELECTION(Employees) WHERE dept = "QA;`, record.ErrBadConstant},
		{"bad constant", `Q = SELECTION(Employees) WHERE age = 12abc;`, record.ErrBadConstant},
		{"unbalanced", `Q = UNION(A, (MINUS(B, C));`, ErrUnbalancedParens},
		{"stray paren", `Q = UNION(A, B));`, ErrUnbalancedParens},
		{"unknown operator", `Q = DIVIDE(A, B);`, ErrUnknownOperator},
		{"missing operand", `Q = UNION(A);`, ErrMissingOperand},
		{"empty operand", `Q = UNION(A, );`, ErrMissingOperand},
		{"too many operands", `Q = SELECTION(A, B) WHERE x = 1;`, ErrBadStatement},
		{"selection without where", `Q = SELECTION(A);`, ErrBadStatement},
		{"projection without columns", `Q = PROJECTION(A);`, ErrBadStatement},
		{"clause on wrong operator", `Q = UNION(A, B) WHERE x = 1;`, ErrBadStatement},
		{"two clauses", `Q = SELECTION(A WHERE x = 1) WHERE y = 2;`, ErrBadStatement},
		{"bad query name", `1Q = UNION(A, B);`, catalog.ErrInvalidName},
		{"no parentheses", `Q = Employees;`, ErrBadStatement},
		{"trailing junk", `Q = UNION(A, B) please;`, ErrBadStatement},
		{"bare nested with clause", `Q = UNION(SELECTION(E) WHERE age > 30, Staff);`, ErrBareNested},
		{"bare nested join", `Q = JOIN(SELECTION(E) WHERE age > 30, Staff) WHERE a = b;`, ErrBareNested},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.sql)
			require.ErrorIs(t, err, tc.want)
			require.Equal(t, qerr.CategorySyntax, qerr.CategoryOf(err))
		})
	}
}

func TestReadQuerySave(t *testing.T) {
	name, rest, err := ReadQuerySave(`Q1 = SELECTION(E) WHERE a = "x = y"`)
	require.NoError(t, err)
	assert.Equal(t, "Q1", name)
	assert.Equal(t, `SELECTION(E) WHERE a = "x = y"`, rest)

	name, rest, err = ReadQuerySave("UNION(A, B)")
	require.NoError(t, err)
	assert.Empty(t, name)
	assert.Equal(t, "UNION(A, B)", rest)

	_, _, err = ReadQuerySave("my query = UNION(A, B)")
	require.ErrorIs(t, err, ErrBadStatement)
}

func TestReadQueryName(t *testing.T) {
	op, open, err := ReadQueryName("  intersect (A, B)")
	require.NoError(t, err)
	assert.Equal(t, algebra.KeywordIntersect, op)
	assert.Equal(t, 12, open)

	_, _, err = ReadQueryName("(A, B)")
	require.ErrorIs(t, err, ErrUnknownOperator)
}

func TestReadQueryParenthesis(t *testing.T) {
	s := `UNION((SELECTION(A) WHERE x = ")("), B) tail`
	end, err := ReadQueryParenthesis(s, 5)
	require.NoError(t, err)
	assert.Equal(t, len(s)-len(" tail")-1, end)

	end, err = ReadQueryParenthesis(s, 6)
	require.NoError(t, err)
	assert.Equal(t, byte(')'), s[end])
	assert.Equal(t, `(SELECTION(A) WHERE x = ")(")`, s[6:end+1])

	_, err = ReadQueryParenthesis("((a)", 0)
	require.ErrorIs(t, err, ErrUnbalancedParens)

	_, err = ReadQueryParenthesis("abc", 0)
	require.ErrorIs(t, err, ErrBadStatement)
}

func TestValidateConditionSyntax(t *testing.T) {
	conds, err := ValidateConditionSyntax(`age>=30 and name <> 'O''Neil' AND score < -1.5`)
	require.ErrorIs(t, err, ErrBadStatement)
	require.Nil(t, conds)

	conds, err = ValidateConditionSyntax(`age>=30 and name <> "and" AND score < -1.5`)
	require.NoError(t, err)
	require.Equal(t, []algebra.Condition{
		{Column: "age", Rel: algebra.RelGe, Right: algebra.Term{Literal: "30"}},
		{Column: "name", Rel: algebra.RelNe, Right: algebra.Term{Literal: `"and"`}},
		{Column: "score", Rel: algebra.RelLt, Right: algebra.Term{Literal: "-1.5"}},
	}, conds)
}

func TestParse_Meta(t *testing.T) {
	tests := []struct {
		sql  string
		want Statement
	}{
		{"TABLES;", &ListTablesStmt{}},
		{"queries;", &ListQueriesStmt{}},
		{"HELP;", &HelpStmt{}},
		{"PRINT Q1;", &PrintStmt{Name: "Q1"}},
		{"sql Q1;", &ShowSQLStmt{Name: "Q1"}},
		{"IMPORT 'data/Employees.csv';", &ImportStmt{Path: "data/Employees.csv"}},
		{`EXPORT "out dir/q.yaml";`, &ExportStmt{Path: "out dir/q.yaml"}},
		{"LOAD q.yaml;", &LoadStmt{Path: "q.yaml"}},
	}
	for _, tc := range tests {
		t.Run(tc.sql, func(t *testing.T) {
			stmt, err := Parse(tc.sql)
			require.NoError(t, err)
			require.Equal(t, tc.want, stmt)
		})
	}

	_, err := Parse("TABLES now;")
	require.ErrorIs(t, err, ErrBadStatement)

	_, err = Parse("IMPORT;")
	require.ErrorIs(t, err, ErrMissingOperand)

	// a query may be named like a meta command
	q := parseQuery(t, "TABLES = UNION(A, B);")
	require.Equal(t, "TABLES", q.Name)
}

func TestSplitScript(t *testing.T) {
	script := `-- seed
IMPORT 'Employees.csv';
Q1 = SELECTION(Employees)
     WHERE dept = "a;b";
;
PRINT Q1;
UNION(A, B)`
	require.Equal(t, []string{
		"IMPORT 'Employees.csv';",
		"Q1 = SELECTION(Employees)\n     WHERE dept = \"a;b\";",
		"PRINT Q1;",
		"UNION(A, B)",
	}, SplitScript(script))
}
