package expr

import (
	"fmt"
	"reflect"
	"strings"

	errs "github.com/matzehuels/geoexpr/pkg/errors"
)

// UnencodableValueError is returned when a value has no mapping into the
// target vocabulary. The whole encode call fails; no partial graph is
// returned.
type UnencodableValueError struct {
	Description string // Type and short rendering of the offending value
	Reason      string // Why it cannot be encoded (optional)
}

// Unencodable builds an [UnencodableValueError] describing v.
func Unencodable(v any, reason string) *UnencodableValueError {
	return &UnencodableValueError{Description: Describe(v), Reason: reason}
}

func (e *UnencodableValueError) Error() string {
	msg := "cannot encode " + e.Description
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return string(errs.ErrCodeUnencodable) + ": " + msg
}

// Unwrap exposes the error code to errors.Is(err, code) checks.
func (e *UnencodableValueError) Unwrap() error {
	return errs.New(errs.ErrCodeUnencodable, "cannot encode %s", e.Description)
}

// MalformedGraphError is returned when a table's result or one of its
// reachable references names an entry that does not exist.
type MalformedGraphError struct {
	Name     string // The missing entry
	Referrer string // The entry holding the dangling reference; empty for the result
}

func (e *MalformedGraphError) Error() string {
	if e.Referrer == "" {
		return fmt.Sprintf("%s: result %q is not in the table", errs.ErrCodeMalformedGraph, e.Name)
	}
	return fmt.Sprintf("%s: entry %q references missing entry %q", errs.ErrCodeMalformedGraph, e.Referrer, e.Name)
}

// Unwrap exposes the error code to errors.Is(err, code) checks.
func (e *MalformedGraphError) Unwrap() error {
	return errs.New(errs.ErrCodeMalformedGraph, "missing entry %q", e.Name)
}

// CycleError is returned when a node transitively contains itself.
type CycleError struct {
	Path []string // Descriptions of the nodes on the cycle, outermost first
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", errs.ErrCodeCycle, strings.Join(e.Path, " -> "))
}

// Unwrap exposes the error code to errors.Is(err, code) checks.
func (e *CycleError) Unwrap() error {
	return errs.New(errs.ErrCodeCycle, "reference cycle")
}

// Describe renders a short human-readable description of v for error
// messages. Containers are described by type and size only, so cyclic
// values are safe to describe.
func Describe(v any) string {
	const limit = 64
	if v == nil {
		return "nil"
	}
	rv := reflect.ValueOf(v)
	var s string
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Chan:
		s = fmt.Sprintf("%T(len=%d)", v, rv.Len())
	case reflect.Pointer, reflect.Struct, reflect.Interface, reflect.Func, reflect.UnsafePointer:
		s = fmt.Sprintf("%T", v)
	default:
		s = fmt.Sprintf("%T(%v)", v, v)
	}
	if len(s) > limit {
		s = s[:limit-3] + "..."
	}
	return s
}
