package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tuannm99/novarel/internal/algebra"
	"github.com/tuannm99/novarel/internal/catalog"
	"github.com/tuannm99/novarel/internal/qerr"
	"github.com/tuannm99/novarel/internal/record"
)

var (
	ErrUnbalancedParens = qerr.New(qerr.ErrSyntax, "unbalanced parentheses")
	ErrUnknownOperator  = qerr.New(qerr.ErrSyntax, "unknown operator")
	ErrMissingOperand   = qerr.New(qerr.ErrSyntax, "missing operand")
	ErrMissingRelation  = qerr.New(qerr.ErrSyntax, "missing comparison operator")
	ErrBadStatement     = qerr.New(qerr.ErrSyntax, "malformed statement")
	ErrBareNested       = qerr.New(qerr.ErrSyntax, "nested queries with a clause must be parenthesized")
)

// operatorKeywords maps every accepted spelling to its canonical keyword.
var operatorKeywords = map[string]string{
	"SELECTION":         algebra.KeywordSelection,
	"PROJECTION":        algebra.KeywordProjection,
	"JOIN":              algebra.KeywordJoin,
	"NATURALJOIN":       algebra.KeywordNaturalJoin,
	"NATURAL_JOIN":      algebra.KeywordNaturalJoin,
	"UNION":             algebra.KeywordUnion,
	"INTERSECT":         algebra.KeywordIntersect,
	"MINUS":             algebra.KeywordMinus,
	"CARTESIAN":         algebra.KeywordCartesian,
	"CARTESIANPRODUCT":  algebra.KeywordCartesian,
	"CARTESIAN_PRODUCT": algebra.KeywordCartesian,
	"ALIAS":             algebra.KeywordAlias,
	"RENAME":            algebra.KeywordAlias,
}

const (
	clauseWhere   = "WHERE"
	clauseColumns = "COLUMNS"
	clauseRename  = "RENAME"
)

func arity(op string) int {
	switch op {
	case algebra.KeywordSelection, algebra.KeywordProjection, algebra.KeywordAlias:
		return 1
	default:
		return 2
	}
}

// parseIdent validates an identifier (table/query/column name).
// Rules:
//   - must be exactly one token (no spaces)
//   - first char: letter or '_'
//   - rest: letter/digit/'_'
func parseIdent(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: missing identifier", ErrMissingOperand)
	}
	if parts := strings.Fields(s); len(parts) != 1 {
		return "", fmt.Errorf("%w: invalid identifier %q", ErrBadStatement, s)
	}
	if err := catalog.ValidateIdent(s); err != nil {
		return "", err
	}
	return s, nil
}

// Parse parses a single statement into an AST.
// Policy: statement MUST end with ';'
func Parse(sql string) (Statement, error) {
	s := strings.TrimSpace(sql)
	if s == "" {
		return nil, fmt.Errorf("%w: empty statement", ErrBadStatement)
	}
	if !strings.HasSuffix(s, ";") {
		return nil, fmt.Errorf("%w: missing ';' terminator", ErrBadStatement)
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	if s == "" {
		return nil, fmt.Errorf("%w: empty statement", ErrBadStatement)
	}

	if stmt, ok, err := parseMeta(s); ok {
		return stmt, err
	}

	name, rest, err := ReadQuerySave(s)
	if err != nil {
		return nil, err
	}
	expr, err := ParseExpr(rest)
	if err != nil {
		if name != "" {
			return nil, fmt.Errorf("query %q: %w", name, err)
		}
		return nil, err
	}
	return &QueryStmt{Name: name, Expr: expr}, nil
}

// ReadQuerySave splits a statement into the name it is saved under and the
// expression text. Both "name = expr" and "expr SAVE AS name" are
// accepted. An unnamed statement yields an empty name.
func ReadQuerySave(stmt string) (name, rest string, err error) {
	s := strings.TrimSpace(stmt)

	head := s
	if open := strings.IndexByte(s, '('); open >= 0 {
		head = s[:open]
	}
	if eq := strings.IndexByte(head, '='); eq >= 0 {
		name, err := parseIdent(head[:eq])
		if err != nil {
			return "", "", fmt.Errorf("query name: %w", err)
		}
		return name, strings.TrimSpace(s[eq+1:]), nil
	}

	if i := indexKeyword(s, "SAVE"); i >= 0 {
		after := strings.TrimSpace(s[i+len("SAVE"):])
		if !hasWordAt(after, 0, "AS") {
			return "", "", fmt.Errorf("%w: expected SAVE AS <name>", ErrBadStatement)
		}
		name, err := parseIdent(after[len("AS"):])
		if err != nil {
			return "", "", fmt.Errorf("query name: %w", err)
		}
		return name, strings.TrimSpace(s[:i]), nil
	}
	return "", s, nil
}

// ReadQueryName returns the canonical operator keyword of expr and the
// offset of its opening parenthesis.
func ReadQueryName(expr string) (string, int, error) {
	open := strings.IndexByte(expr, '(')
	if open < 0 {
		return "", -1, fmt.Errorf("%w: expected OPERATOR(...) in %q", ErrBadStatement, expr)
	}
	word := strings.ToUpper(strings.TrimSpace(expr[:open]))
	if word == "" {
		return "", -1, fmt.Errorf("%w: missing operator keyword", ErrUnknownOperator)
	}
	op, ok := operatorKeywords[word]
	if !ok {
		return "", -1, fmt.Errorf("%w: %q", ErrUnknownOperator, word)
	}
	return op, open, nil
}

// ReadQueryParenthesis returns the offset of the ')' matching the '(' at
// s[pos]. Parentheses inside quoted literals are ignored.
func ReadQueryParenthesis(s string, pos int) (int, error) {
	if pos < 0 || pos >= len(s) || s[pos] != '(' {
		return -1, fmt.Errorf("%w: expected '(' at offset %d", ErrBadStatement, pos)
	}
	depth := 0
	for i := pos; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'':
			end := closingQuote(s, i)
			if end < 0 {
				return -1, fmt.Errorf("%w: unterminated literal at offset %d", record.ErrBadConstant, i)
			}
			i = end
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("%w: no ')' for '(' at offset %d", ErrUnbalancedParens, pos)
}

// ParseExpr parses one operator expression without terminator.
func ParseExpr(s string) (*OpExpr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrMissingOperand)
	}
	if s[0] == '(' {
		end, err := ReadQueryParenthesis(s, 0)
		if err != nil {
			return nil, err
		}
		if end != len(s)-1 {
			return nil, fmt.Errorf("%w: unexpected %q", ErrBadStatement, s[end+1:])
		}
		return ParseExpr(s[1:end])
	}

	op, open, err := ReadQueryName(s)
	if err != nil {
		return nil, err
	}
	end, err := ReadQueryParenthesis(s, open)
	if err != nil {
		return nil, err
	}
	inner := s[open+1 : end]
	tail := strings.TrimSpace(s[end+1:])
	if strings.HasPrefix(tail, ")") {
		return nil, fmt.Errorf("%w: stray ')' after %s(...)", ErrUnbalancedParens, op)
	}

	e := &OpExpr{Op: op}
	operands, clause := inner, ""
	if i := indexClause(inner); i >= 0 {
		operands, clause = inner[:i], strings.TrimSpace(inner[i:])
	}
	if clause != "" && bareNestedBefore(op, operands) {
		return nil, fmt.Errorf("%w: wrap the operand of %s in ( )", ErrBareNested, op)
	}
	if err := e.parseOperands(operands); err != nil {
		return nil, err
	}
	if tail != "" {
		if clause != "" {
			return nil, fmt.Errorf("%w: %s takes a single clause", ErrBadStatement, op)
		}
		clause = tail
	}
	if clause != "" {
		if err := e.parseClause(clause); err != nil {
			return nil, err
		}
	}
	if err := e.checkClause(); err != nil {
		return nil, err
	}
	return e, nil
}

// bareNestedBefore reports whether a clause inside op's parentheses cuts
// the operand list short right after an unparenthesized operator call,
// as in UNION(SELECTION(E) WHERE x = 1, F).
func bareNestedBefore(op, operands string) bool {
	parts := splitTopLevel(operands)
	if len(parts) >= arity(op) {
		return false
	}
	last := strings.TrimSpace(parts[len(parts)-1])
	return last != "" && last[0] != '(' && strings.IndexByte(last, '(') > 0
}

func (e *OpExpr) parseOperands(text string) error {
	var parts []string
	if strings.TrimSpace(text) != "" {
		parts = splitTopLevel(text)
	}
	want := arity(e.Op)
	if len(parts) < want {
		return fmt.Errorf("%w: %s takes %d operand(s), got %d", ErrMissingOperand, e.Op, want, len(parts))
	}
	if len(parts) > want {
		return fmt.Errorf("%w: %s takes %d operand(s), got %d", ErrBadStatement, e.Op, want, len(parts))
	}

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return fmt.Errorf("%w: empty operand in %s", ErrMissingOperand, e.Op)
		}
		if strings.IndexByte(p, '(') >= 0 {
			sub, err := ParseExpr(p)
			if err != nil {
				return err
			}
			e.Operands = append(e.Operands, Operand{Sub: sub})
			continue
		}
		name, err := parseIdent(p)
		if err != nil {
			return err
		}
		e.Operands = append(e.Operands, Operand{Name: name})
	}
	return nil
}

func (e *OpExpr) parseClause(text string) error {
	word, rest := cutWord(text)
	switch kw := strings.ToUpper(word); kw {
	case clauseWhere:
		if e.Op != algebra.KeywordSelection && e.Op != algebra.KeywordJoin {
			return fmt.Errorf("%w: WHERE is not valid for %s", ErrBadStatement, e.Op)
		}
		conds, err := ValidateConditionSyntax(rest)
		if err != nil {
			return err
		}
		e.Where = conds

	case clauseColumns:
		if e.Op != algebra.KeywordProjection {
			return fmt.Errorf("%w: COLUMNS is not valid for %s", ErrBadStatement, e.Op)
		}
		if strings.TrimSpace(rest) == "" {
			return fmt.Errorf("%w: empty column list", ErrMissingOperand)
		}
		for _, p := range splitTopLevel(rest) {
			col, err := parseIdent(p)
			if err != nil {
				return err
			}
			e.Columns = append(e.Columns, col)
		}

	case clauseRename:
		if e.Op != algebra.KeywordAlias {
			return fmt.Errorf("%w: RENAME is not valid for %s", ErrBadStatement, e.Op)
		}
		if strings.TrimSpace(rest) == "" {
			return fmt.Errorf("%w: empty rename list", ErrMissingOperand)
		}
		for _, p := range splitTopLevel(rest) {
			i := indexKeyword(p, "AS")
			if i < 0 {
				return fmt.Errorf("%w: expected <column> AS <name>, got %q", ErrBadStatement, strings.TrimSpace(p))
			}
			from, err := parseIdent(p[:i])
			if err != nil {
				return err
			}
			to, err := parseIdent(p[i+len("AS"):])
			if err != nil {
				return err
			}
			e.Renames = append(e.Renames, algebra.Rename{From: from, To: to})
		}

	default:
		return fmt.Errorf("%w: unexpected %q after %s(...)", ErrBadStatement, text, e.Op)
	}
	return nil
}

func (e *OpExpr) checkClause() error {
	switch e.Op {
	case algebra.KeywordSelection, algebra.KeywordJoin:
		if len(e.Where) == 0 {
			return fmt.Errorf("%w: %s requires a WHERE clause", ErrBadStatement, e.Op)
		}
	case algebra.KeywordProjection:
		if len(e.Columns) == 0 {
			return fmt.Errorf("%w: PROJECTION requires a COLUMNS clause", ErrBadStatement)
		}
	}
	return nil
}

// ValidateConditionSyntax parses "col rel (col | literal) {AND ...}" into
// condition triples. Literals are kept verbatim; converting them to the
// column kind needs the operand header and happens at evaluation.
func ValidateConditionSyntax(text string) ([]algebra.Condition, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty condition", ErrMissingOperand)
	}
	var conds []algebra.Condition
	for _, part := range splitOnKeyword(text, "AND") {
		c, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return conds, nil
}

func parseCondition(s string) (algebra.Condition, error) {
	var c algebra.Condition
	s = strings.TrimSpace(s)
	if s == "" {
		return c, fmt.Errorf("%w: empty condition", ErrMissingOperand)
	}

	i := identEnd(s, 0)
	if i == 0 {
		if algebra.IsRelationChar(s[0]) {
			return c, fmt.Errorf("%w: no column before %q", ErrMissingOperand, s)
		}
		return c, fmt.Errorf("%w: condition must start with a column, got %q", ErrBadStatement, s)
	}
	if err := catalog.ValidateIdent(s[:i]); err != nil {
		return c, err
	}
	c.Column = s[:i]

	rest := strings.TrimSpace(s[i:])
	j := 0
	for j < len(rest) && algebra.IsRelationChar(rest[j]) {
		j++
	}
	if j == 0 {
		if rest == "" {
			return c, fmt.Errorf("%w: %q is not compared with anything", ErrMissingRelation, c.Column)
		}
		return c, fmt.Errorf("%w: expected a comparison after %q, got %q", ErrMissingRelation, c.Column, rest)
	}
	rel, err := algebra.ParseRelation(rest[:j])
	if err != nil {
		return c, err
	}
	c.Rel = rel

	right := strings.TrimSpace(rest[j:])
	if right == "" {
		return c, fmt.Errorf("%w: nothing to compare %q with", ErrMissingOperand, c.Column)
	}
	term, err := parseTerm(right)
	if err != nil {
		return c, err
	}
	c.Right = term
	return c, nil
}

func parseTerm(s string) (algebra.Term, error) {
	if s[0] == '"' || s[0] == '\'' {
		end := closingQuote(s, 0)
		if end < 0 {
			return algebra.Term{}, fmt.Errorf("%w: unterminated literal %s", record.ErrBadConstant, s)
		}
		if end != len(s)-1 {
			return algebra.Term{}, fmt.Errorf("%w: unexpected %q after literal", ErrBadStatement, s[end+1:])
		}
		return algebra.Term{Literal: s}, nil
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return algebra.Term{}, fmt.Errorf("%w: unexpected %q", ErrBadStatement, s)
	}
	if identEnd(s, 0) == len(s) && !isDigit(s[0]) {
		return algebra.Term{Column: s}, nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return algebra.Term{}, fmt.Errorf("%w: %q is not a literal", record.ErrBadConstant, s)
	}
	return algebra.Term{Literal: s}, nil
}

func parseMeta(s string) (Statement, bool, error) {
	word, rest := cutWord(s)
	if strings.HasPrefix(rest, "=") {
		return nil, false, nil
	}

	noArgs := func(st Statement) (Statement, bool, error) {
		if rest != "" {
			return nil, true, fmt.Errorf("%w: %s takes no arguments", ErrBadStatement, strings.ToUpper(word))
		}
		return st, true, nil
	}

	switch strings.ToUpper(word) {
	case "TABLES":
		return noArgs(&ListTablesStmt{})
	case "QUERIES":
		return noArgs(&ListQueriesStmt{})
	case "HELP":
		return noArgs(&HelpStmt{})
	case "PRINT":
		name, err := parseIdent(rest)
		return &PrintStmt{Name: name}, true, err
	case "SQL":
		name, err := parseIdent(rest)
		return &ShowSQLStmt{Name: name}, true, err
	case "IMPORT":
		path, err := parsePath(rest)
		return &ImportStmt{Path: path}, true, err
	case "EXPORT":
		path, err := parsePath(rest)
		return &ExportStmt{Path: path}, true, err
	case "LOAD":
		path, err := parsePath(rest)
		return &LoadStmt{Path: path}, true, err
	default:
		return nil, false, nil
	}
}

func parsePath(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: missing file path", ErrMissingOperand)
	}
	if s[0] == '"' || s[0] == '\'' {
		if closingQuote(s, 0) != len(s)-1 {
			return "", fmt.Errorf("%w: bad file path %s", ErrBadStatement, s)
		}
		if s[0] == '"' {
			if u, err := strconv.Unquote(s); err == nil {
				return u, nil
			}
		}
		return s[1 : len(s)-1], nil
	}
	if strings.ContainsAny(s, " \t") {
		return "", fmt.Errorf("%w: quote file paths that contain spaces", ErrBadStatement)
	}
	return s, nil
}
