package serializer

import (
	"strconv"
	"time"

	"github.com/matzehuels/geoexpr/pkg/expr"
)

// legacyBuilder renders a producer tree in the compound-value vocabulary.
//
// In compound mode every list, dictionary and producer node is placed in
// the scope under a dense name ("0", "1", ...) assigned in post-order, and
// parents embed a [expr.ValueRef] to it. Structurally identical nodes share
// one entry. In nested mode the bodies are embedded directly.
type legacyBuilder struct {
	compound bool
	scope    []expr.ScopeEntry
	names    map[string]string // content hash -> scope name
	walk     *walk
}

func newLegacyBuilder(compound bool) *legacyBuilder {
	return &legacyBuilder{
		compound: compound,
		names:    make(map[string]string),
		walk:     newWalk(),
	}
}

// build encodes root and wraps the result in a compound value when the
// scope is worth having.
func (b *legacyBuilder) build(root any) (expr.Legacy, error) {
	result, err := b.encode(root)
	if err != nil {
		return nil, err
	}
	if !b.compound {
		return result, nil
	}
	if _, ok := result.(expr.ValueRef); ok && len(b.scope) == 1 {
		// A scope with a single entry buys nothing.
		return b.scope[0].Value, nil
	}
	if len(b.scope) == 0 {
		return result, nil
	}
	return expr.CompoundValue{Scope: b.scope, Value: result}, nil
}

// encode is the [expr.LegacyResolver] handed to producers.
func (b *legacyBuilder) encode(x any) (expr.Legacy, error) {
	if b.compound {
		if h, ok := b.walk.seen(x); ok {
			return expr.ValueRef{Name: b.names[h]}, nil
		}
	}

	if v, ok, err := literal(x); ok {
		if err != nil {
			return nil, err
		}
		return expr.Literal{Value: v}, nil
	}
	switch x := x.(type) {
	case time.Time:
		return dateLegacy(x), nil
	case []byte:
		return nil, expr.Unencodable(x, "byte strings have no compound-value form")
	case expr.ArgumentRef:
		return x, nil
	case expr.ValueRef:
		return x, nil
	}

	done, err := b.walk.enter(x)
	if err != nil {
		return nil, err
	}
	body, err := b.body(x)
	done()
	if err != nil {
		return nil, err
	}
	switch body.(type) {
	case expr.ArgumentRef, expr.ValueRef, expr.Literal:
		return body, nil
	}
	if !b.compound {
		return body, nil
	}
	return b.place(x, body)
}

func (b *legacyBuilder) body(x any) (expr.Legacy, error) {
	if enc, ok := x.(expr.Encodable); ok {
		return enc.EncodeLegacy(b.encode)
	}
	c, ok, err := asCollection(x)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, expr.Unencodable(x, "")
	}
	if !c.isMap {
		list := make(expr.List, len(c.list))
		for i, e := range c.list {
			if list[i], err = b.encode(e); err != nil {
				return nil, err
			}
		}
		return list, nil
	}
	dict := make(expr.LegacyDictionary, len(c.dict))
	for _, k := range expr.SortedKeys(c.dict) {
		if dict[k], err = b.encode(c.dict[k]); err != nil {
			return nil, err
		}
	}
	return dict, nil
}

// place adds body to the scope unless an identical entry exists, and
// returns a reference to it.
func (b *legacyBuilder) place(x any, body expr.Legacy) (expr.Legacy, error) {
	h, err := expr.ContentHash(body)
	if err != nil {
		return nil, err
	}
	name, ok := b.names[h]
	if !ok {
		name = strconv.Itoa(len(b.scope))
		b.names[h] = name
		b.scope = append(b.scope, expr.ScopeEntry{Name: name, Value: body})
	}
	b.walk.remember(x, h)
	return expr.ValueRef{Name: name}, nil
}
