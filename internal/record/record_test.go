package record

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novarel/internal/qerr"
)

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"string": KindText, "TEXT": KindText,
		"int": KindInt, "Integer": KindInt,
		"double": KindDouble, " float ": KindDouble,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKind("bool")
	require.ErrorIs(t, err, ErrUnknownKind)
	require.ErrorIs(t, err, qerr.ErrSyntax)
}

func TestCompare(t *testing.T) {
	c, err := Compare(Int(1), Int(2))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare(Double(2.5), Double(2.5))
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	c, err = Compare(Text("b"), Text("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	_, err = Compare(Int(1), Double(1))
	require.ErrorIs(t, err, ErrKindMismatch)
	assert.False(t, Equal(Int(1), Double(1)))
}

func TestParseCell(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		c, err := ParseCell(KindText, `"R&D"`)
		require.NoError(t, err)
		assert.Equal(t, Text("R&D"), c)

		c, err = ParseCell(KindText, `'QA'`)
		require.NoError(t, err)
		assert.Equal(t, Text("QA"), c)
	})

	t.Run("int", func(t *testing.T) {
		c, err := ParseCell(KindInt, " 42 ")
		require.NoError(t, err)
		assert.Equal(t, Int(42), c)

		_, err = ParseCell(KindInt, "4.2")
		require.ErrorIs(t, err, ErrBadConstant)
	})

	t.Run("double", func(t *testing.T) {
		c, err := ParseCell(KindDouble, "3")
		require.NoError(t, err)
		assert.Equal(t, Double(3), c)

		_, err = ParseCell(KindDouble, "NaN")
		require.ErrorIs(t, err, ErrBadConstant)

		_, err = ParseCell(KindDouble, "abc")
		require.ErrorIs(t, err, qerr.ErrSyntax)
	})
}

func TestLiteral_RoundTrip(t *testing.T) {
	cells := []Cell{
		Text(`say "hi"`),
		Text("plain"),
		Int(-7),
		Double(2),
		Double(1e300),
		Double(math.SmallestNonzeroFloat64),
	}
	for _, c := range cells {
		got, err := ParseCell(c.Kind(), c.Literal())
		require.NoError(t, err, c.Literal())
		assert.Equal(t, c, got)
	}
	assert.Equal(t, "2.0", Double(2).Literal())
}

func TestCompareRows(t *testing.T) {
	a := Row{Text("Ann"), Int(1)}
	b := Row{Text("Ann"), Int(2)}
	c := Row{Text("Bo"), Int(0)}

	assert.Equal(t, -1, CompareRows(a, b))
	assert.Equal(t, 1, CompareRows(c, b))
	assert.Equal(t, 0, CompareRows(a, a.Clone()))
	assert.Equal(t, -1, CompareRows(a[:1], a))
}

func TestHeader(t *testing.T) {
	h := Header{{Name: "name", Kind: KindText}, {Name: "age", Kind: KindInt}}
	assert.Equal(t, []string{"name", "age"}, h.Names())
	assert.Equal(t, "(name:string, age:int)", h.String())

	cp := h.Clone()
	cp[0].Name = "x"
	assert.Equal(t, "name", h[0].Name)
}
