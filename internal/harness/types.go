package harness

// Response is the outcome of one request.
type Response struct {
	Request string `json:"request"`
	Entity  string `json:"entity"`

	// Count is the number of items, or the result of a count request.
	Count *int64 `json:"count,omitempty"`
	Items []any  `json:"items,omitempty"`

	Error *ResponseError `json:"error,omitempty"`

	// IDs are the identity values of Items, in order.
	IDs []any `json:"-"`
}

// ResponseError is a failed request.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation matched.
	Pass bool `json:"pass"`

	// Responses holds one entry per request, in order.
	Responses []Response `json:"responses"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Responses: []Response{},
		Errors:    []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
