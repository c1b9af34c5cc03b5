package algebra

import "strings"

// SQL renders the node in the query language. Named operands are
// rendered by name and nested sub-queries inline, so parsing the text
// against the same catalog rebuilds an equivalent tree.
func (q *Query) SQL() string {
	return render(q, nil, nil)
}

// ExpandedSQL is like SQL but also inlines every stored query reachable
// through named operands, so the text only mentions base tables. A cyclic
// reference is left as a name.
func (q *Query) ExpandedSQL(r Resolver) string {
	return render(q, r, map[*Query]struct{}{q: {}})
}

func render(q *Query, r Resolver, expanding map[*Query]struct{}) string {
	if q == nil || q.op == nil {
		return ""
	}

	operand := func(o Operand) string {
		if o.Sub != nil {
			return "(" + render(o.Sub, r, expanding) + ")"
		}
		if r == nil || r.GetTable(o.Name) != nil {
			return o.Name
		}
		sq := r.GetTableQ(o.Name)
		if sq == nil {
			return o.Name
		}
		if _, busy := expanding[sq]; busy {
			return o.Name
		}
		expanding[sq] = struct{}{}
		defer delete(expanding, sq)
		return "(" + render(sq, r, expanding) + ")"
	}

	var b strings.Builder
	b.WriteString(q.op.Keyword())
	b.WriteByte('(')
	for i, o := range q.op.Operands() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(operand(o))
	}
	b.WriteByte(')')

	switch o := q.op.(type) {
	case *Selection:
		b.WriteString(" WHERE ")
		b.WriteString(renderConditions(o.Where))
	case *Join:
		b.WriteString(" WHERE ")
		b.WriteString(renderConditions(o.On))
	case *Projection:
		b.WriteString(" COLUMNS ")
		b.WriteString(strings.Join(o.Columns, ", "))
	case *Alias:
		if len(o.Renames) > 0 {
			parts := make([]string, len(o.Renames))
			for i, rn := range o.Renames {
				parts[i] = rn.From + " AS " + rn.To
			}
			b.WriteString(" RENAME ")
			b.WriteString(strings.Join(parts, ", "))
		}
	}
	return b.String()
}
