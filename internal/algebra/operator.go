package algebra

// Operand names the input of an operator: either a reference to a catalog
// entry (table or stored query) or a nested sub-query owned by the parent.
type Operand struct {
	Name string
	Sub  *Query
}

func Ref(name string) Operand { return Operand{Name: name} }
func Nested(q *Query) Operand { return Operand{Sub: q} }

func (o Operand) IsNested() bool { return o.Sub != nil }

// Operator is the closed set of relational-algebra steps. The concrete
// types below are the only implementations.
type Operator interface {
	opNode()
	Keyword() string
	Operands() []Operand
}

// Selection keeps the rows of Source that satisfy every condition.
type Selection struct {
	Source Operand
	Where  []Condition
}

// Projection keeps Columns of Source, in the given order.
type Projection struct {
	Source  Operand
	Columns []string
}

// Join is a cartesian product filtered by On. Left-hand column names are
// looked up in Left, right-hand column names in Right.
type Join struct {
	Left, Right Operand
	On          []Condition
}

type NaturalJoin struct{ Left, Right Operand }
type Union struct{ Left, Right Operand }
type Intersect struct{ Left, Right Operand }
type Minus struct{ Left, Right Operand }
type CartesianProduct struct{ Left, Right Operand }

// Rename maps column From to To.
type Rename struct {
	From, To string
}

// Alias passes Source through under a new identity, optionally renaming
// columns.
type Alias struct {
	Source  Operand
	Renames []Rename
}

func (*Selection) opNode()        {}
func (*Projection) opNode()       {}
func (*Join) opNode()             {}
func (*NaturalJoin) opNode()      {}
func (*Union) opNode()            {}
func (*Intersect) opNode()        {}
func (*Minus) opNode()            {}
func (*CartesianProduct) opNode() {}
func (*Alias) opNode()            {}

const (
	KeywordSelection   = "SELECTION"
	KeywordProjection  = "PROJECTION"
	KeywordJoin        = "JOIN"
	KeywordNaturalJoin = "NATURALJOIN"
	KeywordUnion       = "UNION"
	KeywordIntersect   = "INTERSECT"
	KeywordMinus       = "MINUS"
	KeywordCartesian   = "CARTESIAN"
	KeywordAlias       = "ALIAS"
)

func (*Selection) Keyword() string        { return KeywordSelection }
func (*Projection) Keyword() string       { return KeywordProjection }
func (*Join) Keyword() string             { return KeywordJoin }
func (*NaturalJoin) Keyword() string      { return KeywordNaturalJoin }
func (*Union) Keyword() string            { return KeywordUnion }
func (*Intersect) Keyword() string        { return KeywordIntersect }
func (*Minus) Keyword() string            { return KeywordMinus }
func (*CartesianProduct) Keyword() string { return KeywordCartesian }
func (*Alias) Keyword() string            { return KeywordAlias }

func (o *Selection) Operands() []Operand        { return []Operand{o.Source} }
func (o *Projection) Operands() []Operand       { return []Operand{o.Source} }
func (o *Join) Operands() []Operand             { return []Operand{o.Left, o.Right} }
func (o *NaturalJoin) Operands() []Operand      { return []Operand{o.Left, o.Right} }
func (o *Union) Operands() []Operand            { return []Operand{o.Left, o.Right} }
func (o *Intersect) Operands() []Operand        { return []Operand{o.Left, o.Right} }
func (o *Minus) Operands() []Operand            { return []Operand{o.Left, o.Right} }
func (o *CartesianProduct) Operands() []Operand { return []Operand{o.Left, o.Right} }
func (o *Alias) Operands() []Operand            { return []Operand{o.Source} }
