package agent

import "fmt"

// UpstreamError reports a failed or malformed response from the social graph
// or the search/LLM APIs. It is recovered where it occurs and collapsed to a
// string in the report's errors list; it never escapes a request.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream request failed (%s): %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// InsufficientDataError reports that a request produced zero usable items,
// such as no casts or no followers. Like UpstreamError it is recovered into
// the errors list, never thrown.
type InsufficientDataError struct {
	What string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s", e.What)
}

// stageStatus threads the outcome of a pipeline stage explicitly instead of
// inferring it from the text it produced.
type stageStatus int

const (
	stageOK stageStatus = iota
	stageFailed
)

// stageOutput is the tagged result of one pipeline stage: either usable text
// or a literal explanatory error string destined for the report.
type stageOutput struct {
	text   string
	status stageStatus
}

func stageSuccess(text string) stageOutput {
	return stageOutput{text: text, status: stageOK}
}

func stageFailure(text string) stageOutput {
	return stageOutput{text: text, status: stageFailed}
}
