package serializer

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/matzehuels/geoexpr/pkg/expr"
)

// DateFunction is the algorithm a [time.Time] is encoded as a call to.
const DateFunction = "Date"

// literal normalizes a scalar child. It reports ok=false when x is not a
// scalar at all, and an error when x is a scalar with no wire form
// (NaN or an infinity).
func literal(x any) (v any, ok bool, err error) {
	if x == nil {
		return nil, true, nil
	}
	if n, isNumber := x.(json.Number); isNumber {
		norm, nerr := expr.NormalizeNumber(n)
		if nerr != nil {
			return nil, true, expr.Unencodable(x, "number out of range")
		}
		x = norm
	}
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), true, nil
	case reflect.String:
		return rv.String(), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u <= math.MaxInt64 {
			return int64(u), true, nil
		}
		return u, true, nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, true, expr.Unencodable(x, "non-finite number")
		}
		return f, true, nil
	}
	return nil, false, nil
}

// modernNumber picks the table form of a normalized literal. Integers a
// float64 cannot hold exactly travel as [expr.Integer] so they survive the
// trip through JSON numbers.
func modernNumber(v any) expr.Value {
	switch n := v.(type) {
	case int64:
		if f := float64(n); f >= -(1<<63) && f < (1<<63) && int64(f) == n {
			return expr.Constant{Value: n}
		}
		return expr.Integer{Value: strconv.FormatInt(n, 10)}
	case uint64:
		if f := float64(n); f < (1<<64) && uint64(f) == n {
			return expr.Constant{Value: n}
		}
		return expr.Integer{Value: strconv.FormatUint(n, 10)}
	}
	return expr.Constant{Value: v}
}

// millis is the date payload: milliseconds since the Unix epoch, truncated
// toward zero.
func millis(t time.Time) int64 {
	sec, nsec := t.Unix(), int64(t.Nanosecond())
	ms := sec*1000 + nsec/int64(time.Millisecond)
	if sec < 0 && nsec%int64(time.Millisecond) != 0 {
		ms++
	}
	return ms
}

// dateLegacy is the compound-value rendering of a date. Dates are passed
// through verbatim like literals and never get a scope entry.
func dateLegacy(t time.Time) expr.Legacy {
	return expr.LegacyInvocation{
		FunctionName: DateFunction,
		Arguments:    map[string]expr.Legacy{"value": expr.Literal{Value: millis(t)}},
	}
}

// collection exposes list-like and map-like children uniformly. Typed
// slices and string-keyed maps are accepted in addition to []any and
// map[string]any.
type collection struct {
	list  []any
	dict  map[string]any
	isMap bool
}

func asCollection(x any) (collection, bool, error) {
	switch c := x.(type) {
	case []any:
		return collection{list: c}, true, nil
	case map[string]any:
		return collection{dict: c, isMap: true}, true, nil
	case []byte:
		return collection{}, false, nil
	}
	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		list := make([]any, rv.Len())
		for i := range list {
			list[i] = rv.Index(i).Interface()
		}
		return collection{list: list}, true, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return collection{}, false, expr.Unencodable(x, "dictionary keys must be strings")
		}
		dict := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			dict[iter.Key().String()] = iter.Value().Interface()
		}
		return collection{dict: dict, isMap: true}, true, nil
	}
	return collection{}, false, nil
}
