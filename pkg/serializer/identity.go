package serializer

import (
	"reflect"

	"github.com/matzehuels/geoexpr/pkg/expr"
)

// identity names a caller object by address. Every object the builders see
// stays reachable from the root for the duration of a call, so addresses are
// stable and never reused within one call.
type identity struct {
	typ reflect.Type
	ptr uintptr
	len int
}

// identityOf returns the identity of x when x is a reference-like value
// (pointer, map or non-empty slice). Value types and zero-size pointees have
// no usable identity and are always encoded structurally.
func identityOf(x any) (identity, bool) {
	if x == nil {
		return identity{}, false
	}
	v := reflect.ValueOf(x)
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() || v.Type().Elem().Size() == 0 {
			return identity{}, false
		}
	case reflect.Map:
		if v.IsNil() {
			return identity{}, false
		}
	case reflect.Slice:
		if v.Len() == 0 {
			return identity{}, false
		}
		return identity{typ: v.Type(), ptr: v.Pointer(), len: v.Len()}, true
	default:
		return identity{}, false
	}
	return identity{typ: v.Type(), ptr: v.Pointer()}, true
}

// walk is the per-call bookkeeping shared by both builders: the identity
// side table (object -> content hash) and the visiting set that turns a
// self-containing input into a [expr.CycleError] instead of unbounded
// recursion. Caller objects are never mutated.
type walk struct {
	hashes   map[identity]string
	visiting map[identity]int
	path     []string
}

func newWalk() *walk {
	return &walk{
		hashes:   make(map[identity]string),
		visiting: make(map[identity]int),
	}
}

// enter marks x as being encoded. The returned func must be called once x
// is done.
func (w *walk) enter(x any) (func(), error) {
	w.path = append(w.path, expr.Describe(x))
	id, ok := identityOf(x)
	if !ok {
		return w.pop, nil
	}
	if at, busy := w.visiting[id]; busy {
		cycle := append([]string(nil), w.path[at:]...)
		w.pop()
		return nil, &expr.CycleError{Path: cycle}
	}
	w.visiting[id] = len(w.path) - 1
	return func() {
		delete(w.visiting, id)
		w.pop()
	}, nil
}

func (w *walk) pop() { w.path = w.path[:len(w.path)-1] }

// seen returns the content hash recorded for x earlier in this call.
func (w *walk) seen(x any) (string, bool) {
	id, ok := identityOf(x)
	if !ok {
		return "", false
	}
	h, ok := w.hashes[id]
	return h, ok
}

// remember records the content hash of x.
func (w *walk) remember(x any, hash string) {
	if id, ok := identityOf(x); ok {
		w.hashes[id] = hash
	}
}
