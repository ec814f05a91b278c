package domain

import "fmt"

// ErrorKind classifies failures raised while building or running a report.
type ErrorKind string

const (
	KindInvalidFacetValue ErrorKind = "invalid_facet_value"
	KindUnknownAlias      ErrorKind = "unknown_alias"
	KindCyclicDependency  ErrorKind = "cyclic_dependency"
	KindFanoutJoin        ErrorKind = "fanout_join"
	KindParamCollision    ErrorKind = "param_collision"
	KindInvalidDateRange  ErrorKind = "invalid_date_range"
	KindInvalidReport     ErrorKind = "invalid_report"
	KindMissingTenant     ErrorKind = "missing_tenant"
	KindQueryFailed       ErrorKind = "query_failed"
)

// ReportError carries a kind so callers can branch with errors.Is against the sentinels below.
type ReportError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ReportError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ReportError) Unwrap() error { return e.Err }

// Is matches any ReportError of the same kind.
func (e *ReportError) Is(target error) bool {
	t, ok := target.(*ReportError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInvalidFacetValue = &ReportError{Kind: KindInvalidFacetValue}
	ErrUnknownAlias      = &ReportError{Kind: KindUnknownAlias}
	ErrCyclicDependency  = &ReportError{Kind: KindCyclicDependency}
	ErrFanoutJoin        = &ReportError{Kind: KindFanoutJoin}
	ErrParamCollision    = &ReportError{Kind: KindParamCollision}
	ErrInvalidDateRange  = &ReportError{Kind: KindInvalidDateRange}
	ErrInvalidReport     = &ReportError{Kind: KindInvalidReport}
	ErrMissingTenant     = &ReportError{Kind: KindMissingTenant}
	ErrQueryFailed       = &ReportError{Kind: KindQueryFailed}
)

// NewError creates a ReportError with a formatted message.
func NewError(kind ErrorKind, format string, args ...interface{}) *ReportError {
	return &ReportError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// QueryFailed wraps a database failure. The message stays generic; the cause is only
// reachable through Unwrap for internal logging.
func QueryFailed(query string, err error) *ReportError {
	return &ReportError{Kind: KindQueryFailed, Message: "report query " + query + " failed", Err: err}
}
