package expr

import (
	"fmt"
	"math"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/matzehuels/geoexpr/pkg/digest"
)

// canonicalMode encodes with sorted map keys and shortest number forms so
// that structurally identical nodes always produce identical bytes.
var canonicalMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("expr: failed to create CBOR enc mode: %v", err))
	}
	canonicalMode = em
}

// ContentHash returns the SHA-256 digest of n's canonical encoding.
//
// Numbers are hashed by the value they serialize to, so 3 and 3.0 collide
// while -0.0 and 0 do not.
func ContentHash(n Node) (string, error) {
	data, err := canonicalMode.Marshal(canonicalNumbers(n.Wire()))
	if err != nil {
		return "", fmt.Errorf("content hash: %w", err)
	}
	return digest.Hex(data), nil
}

// canonicalNumbers rewrites every integer in a wire tree, and every float an
// int64 holds exactly, as int64. Negative zero keeps its sign.
func canonicalNumbers(w any) any {
	switch x := w.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, v := range x {
			out[k] = canonicalNumbers(v)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, v := range x {
			out[i] = canonicalNumbers(v)
		}
		return out
	case nil:
		return nil
	}
	rv := reflect.ValueOf(w)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if u := rv.Uint(); u <= math.MaxInt64 {
			return int64(u)
		}
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		if i, ok := integralFloat(rv.Float()); ok {
			return i
		}
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return w
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = canonicalNumbers(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return w
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = canonicalNumbers(iter.Value().Interface())
		}
		return out
	}
	return w
}

// integralFloat reports f as an int64 when the conversion is exact.
func integralFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f == 0 && math.Signbit(f) {
		return 0, false
	}
	if f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}
