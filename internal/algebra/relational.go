package algebra

import (
	"fmt"

	"github.com/tuannm99/novarel/internal/record"
	"github.com/tuannm99/novarel/internal/table"
)

func selection(src *table.Table, where []Condition) (*table.Table, error) {
	preds, err := bindConditions(where, src, src, 0)
	if err != nil {
		return nil, err
	}

	out := table.New(src.Header())
	err = src.Scan(func(_ int, row record.Row) error {
		ok, err := matchAll(preds, row)
		if err != nil || !ok {
			return err
		}
		return out.InsertRow(row)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func projection(src *table.Table, columns []string) (*table.Table, error) {
	seen := make(map[string]struct{}, len(columns))
	positions := make([]int, len(columns))
	header := make(record.Header, len(columns))
	full := src.Header()

	for i, name := range columns {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q listed twice", table.ErrDuplicateColumn, name)
		}
		seen[name] = struct{}{}

		pos, err := src.ColumnIndex(name)
		if err != nil {
			return nil, err
		}
		positions[i] = pos
		header[i] = full[pos]
	}

	out := table.New(header)
	err := src.Scan(func(_ int, row record.Row) error {
		proj := make(record.Row, len(positions))
		for i, pos := range positions {
			proj[i] = row[pos]
		}
		return out.InsertRow(proj)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func alias(src *table.Table, renames []Rename) (*table.Table, error) {
	out := src.Clone()
	for _, rn := range renames {
		if err := out.Rename(rn.From, rn.To); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// join builds the cartesian product of left and right, keeping only the
// combined rows that satisfy every condition. Column names may collide.
func join(left, right *table.Table, on []Condition) (*table.Table, error) {
	preds, err := bindConditions(on, left, right, left.ColumnCount())
	if err != nil {
		return nil, err
	}

	header := append(left.Header(), right.Header()...)
	out := table.New(header)
	lrows, rrows := left.Transform(), right.Transform()

	for _, l := range lrows {
		for _, r := range rrows {
			combined := make(record.Row, 0, len(l)+len(r))
			combined = append(combined, l...)
			combined = append(combined, r...)

			ok, err := matchAll(preds, combined)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if err := out.InsertRow(combined); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// naturalJoin joins on equality of every column name the operands share.
// Shared columns appear once, in the left operand's position.
func naturalJoin(left, right *table.Table) (*table.Table, error) {
	if left.HasDuplicateColumns() || right.HasDuplicateColumns() {
		return nil, table.ErrDuplicateColumn
	}

	type pair struct{ l, r int }
	var shared []pair
	rightShared := make(map[int]struct{})
	lh, rh := left.Header(), right.Header()

	for li, lc := range lh {
		ri, err := right.ColumnIndex(lc.Name)
		if err != nil {
			continue
		}
		if rh[ri].Kind != lc.Kind {
			return nil, fmt.Errorf("%w: shared column %q is %s and %s",
				record.ErrKindMismatch, lc.Name, lc.Kind, rh[ri].Kind)
		}
		shared = append(shared, pair{l: li, r: ri})
		rightShared[ri] = struct{}{}
	}
	if len(shared) == 0 {
		return nil, ErrNoCommonColumns
	}

	var rest []int
	header := lh
	for ri, rc := range rh {
		if _, ok := rightShared[ri]; ok {
			continue
		}
		rest = append(rest, ri)
		header = append(header, rc)
	}

	out := table.New(header)
	lrows, rrows := left.Transform(), right.Transform()
	for _, l := range lrows {
	next:
		for _, r := range rrows {
			for _, p := range shared {
				if !record.Equal(l[p.l], r[p.r]) {
					continue next
				}
			}
			row := make(record.Row, 0, len(header))
			row = append(row, l...)
			for _, ri := range rest {
				row = append(row, r[ri])
			}
			if err := out.InsertRow(row); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
