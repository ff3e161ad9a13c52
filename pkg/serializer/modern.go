package serializer

import (
	"strconv"
	"time"

	"github.com/matzehuels/geoexpr/pkg/expr"
)

// modernBuilder flattens a producer tree into a reference table. Every node,
// literals included, becomes one entry named by a dense counter in
// post-order, so each entry only refers to entries listed before it.
// Structurally identical nodes share one entry.
type modernBuilder struct {
	table expr.Table
	names map[string]string // content hash -> entry name
	walk  *walk
}

func newModernBuilder() *modernBuilder {
	return &modernBuilder{
		names: make(map[string]string),
		walk:  newWalk(),
	}
}

// build encodes root and returns the name of its entry with the table.
func (b *modernBuilder) build(root any) (string, expr.Table, error) {
	ref, err := b.encode(root)
	if err != nil {
		return "", nil, err
	}
	return ref.Name, b.table, nil
}

// encode is the [expr.ModernResolver] handed to producers.
func (b *modernBuilder) encode(x any) (expr.Reference, error) {
	if h, ok := b.walk.seen(x); ok {
		return expr.Reference{Name: b.names[h]}, nil
	}
	if ref, ok := x.(expr.Reference); ok {
		return ref, nil
	}

	body, err := b.body(x)
	if err != nil {
		return expr.Reference{}, err
	}
	if ref, ok := body.(expr.Reference); ok {
		return ref, nil
	}
	return b.place(x, body)
}

func (b *modernBuilder) body(x any) (expr.Value, error) {
	if v, ok, err := literal(x); ok {
		if err != nil {
			return nil, err
		}
		return modernNumber(v), nil
	}
	switch x := x.(type) {
	case []byte:
		return expr.Bytes{Value: x}, nil
	case time.Time:
		ms, err := b.encode(millis(x))
		if err != nil {
			return nil, err
		}
		return expr.Invocation{
			FunctionName: DateFunction,
			Arguments:    map[string]expr.Value{"value": ms},
		}, nil
	case expr.ArgumentReference:
		return x, nil
	}

	done, err := b.walk.enter(x)
	if err != nil {
		return nil, err
	}
	defer done()

	if enc, ok := x.(expr.Encodable); ok {
		return enc.EncodeModern(b.encode)
	}
	c, ok, err := asCollection(x)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, expr.Unencodable(x, "")
	}
	if !c.isMap {
		values := make([]expr.Value, len(c.list))
		for i, e := range c.list {
			ref, err := b.encode(e)
			if err != nil {
				return nil, err
			}
			values[i] = ref
		}
		return expr.Array{Values: values}, nil
	}
	values := make(map[string]expr.Value, len(c.dict))
	for _, k := range expr.SortedKeys(c.dict) {
		ref, err := b.encode(c.dict[k])
		if err != nil {
			return nil, err
		}
		values[k] = ref
	}
	return expr.Dictionary{Values: values}, nil
}

func (b *modernBuilder) place(x any, body expr.Value) (expr.Reference, error) {
	h, err := expr.ContentHash(body)
	if err != nil {
		return expr.Reference{}, err
	}
	name, ok := b.names[h]
	if !ok {
		name = strconv.Itoa(len(b.table))
		b.names[h] = name
		b.table = append(b.table, expr.Entry{Name: name, Value: body})
	}
	b.walk.remember(x, h)
	return expr.Reference{Name: name}, nil
}
