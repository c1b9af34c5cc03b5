package novarelwire

import "github.com/tuannm99/novarel/internal/sql/executor"

// ExecuteRequest is a single statement request.
type ExecuteRequest struct {
	ID  uint64 `json:"id"`
	SQL string `json:"sql"`
}

// ExecuteResponse is the response for a request ID. Category names the
// failure class when Error is set.
type ExecuteResponse struct {
	ID       uint64           `json:"id"`
	Result   *executor.Result `json:"result,omitempty"`
	Error    string           `json:"error,omitempty"`
	Category string           `json:"category,omitempty"`
}
