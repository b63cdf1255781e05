// Package result carries component outcomes that may have degraded.
//
// Search and extraction never fail a request. They return a Result whose
// Degraded field explains why the value is empty, and the caller logs it and
// moves on.
package result

import "fmt"

// Reason classifies why a component degraded.
type Reason string

const (
	ReasonNotConfigured Reason = "not_configured"
	ReasonTransport     Reason = "transport"
	ReasonStatus        Reason = "status"
	ReasonDecode        Reason = "decode"
	ReasonParse         Reason = "parse"
	ReasonEmpty         Reason = "empty"
)

// Degraded describes a swallowed failure.
type Degraded struct {
	Reason Reason
	Err    error
}

func (d *Degraded) Error() string {
	if d.Err == nil {
		return string(d.Reason)
	}
	return fmt.Sprintf("%s: %v", d.Reason, d.Err)
}

func (d *Degraded) Unwrap() error {
	return d.Err
}

// Result is a value plus an optional degradation marker.
type Result[T any] struct {
	Value    T
	Degraded *Degraded
}

// OK wraps a successful value.
func OK[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

// Degrade returns the zero value marked with a reason.
func Degrade[T any](reason Reason, err error) Result[T] {
	return Result[T]{Degraded: &Degraded{Reason: reason, Err: err}}
}

func (r Result[T]) IsDegraded() bool {
	return r.Degraded != nil
}

// LogDetails renders the degradation for structured logging.
func (r Result[T]) LogDetails() map[string]interface{} {
	if r.Degraded == nil {
		return map[string]interface{}{}
	}
	details := map[string]interface{}{"reason": string(r.Degraded.Reason)}
	if r.Degraded.Err != nil {
		details["error"] = r.Degraded.Err.Error()
	}
	return details
}
