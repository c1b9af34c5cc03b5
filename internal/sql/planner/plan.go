package planner

import "github.com/tuannm99/novarel/internal/algebra"

// Plan is the interface for executable plans.
type Plan interface {
	planNode()
}

// ----- Plan nodes -----

// QueryPlan evaluates Query and, when Name is set, archives it.
type QueryPlan struct {
	Name  string
	Query *algebra.Query
}

func (*QueryPlan) planNode() {}

type ListTablesPlan struct{}

func (*ListTablesPlan) planNode() {}

type ListQueriesPlan struct{}

func (*ListQueriesPlan) planNode() {}

type PrintPlan struct {
	Name string
}

func (*PrintPlan) planNode() {}

type ShowSQLPlan struct {
	Name string
}

func (*ShowSQLPlan) planNode() {}

type ImportPlan struct {
	Path string
}

func (*ImportPlan) planNode() {}

type ExportPlan struct {
	Path string
}

func (*ExportPlan) planNode() {}

type LoadPlan struct {
	Path string
}

func (*LoadPlan) planNode() {}

type HelpPlan struct{}

func (*HelpPlan) planNode() {}
