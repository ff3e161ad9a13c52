package render

import (
	"strconv"

	"github.com/xlab/treeprint"

	"github.com/matzehuels/geoexpr/pkg/expr"
)

// Tree prints e expanded from its result. Every reference is followed, so a
// shared entry appears under each of its users. Branches are tagged with
// the key that holds them and references with the entry name ($name).
//
// Missing entries and cycles end their branch with a marker instead of
// failing.
func Tree(e expr.Expression) string {
	p := &treePrinter{idx: e.Values.Index(), visiting: make(map[string]bool)}
	root, ok := p.idx[e.Result]
	if !ok {
		return treeprint.NewWithRoot("$" + e.Result + " (missing)").String()
	}
	t := treeprint.NewWithRoot("$" + e.Result + " = " + summary(root))
	p.visiting[e.Result] = true
	p.members(t, root)
	return t.String()
}

type treePrinter struct {
	idx      map[string]expr.Value
	visiting map[string]bool
}

func (p *treePrinter) value(parent treeprint.Tree, key string, v expr.Value) {
	switch v := v.(type) {
	case expr.Reference:
		p.ref(parent, key, v.Name)
	case expr.Array, expr.Dictionary, expr.Invocation, expr.Definition:
		p.members(parent.AddMetaBranch(key, summary(v)), v)
	default:
		parent.AddMetaNode(key, summary(v))
	}
}

func (p *treePrinter) members(b treeprint.Tree, v expr.Value) {
	switch v := v.(type) {
	case expr.Array:
		for i, e := range v.Values {
			p.value(b, strconv.Itoa(i), e)
		}
	case expr.Dictionary:
		for _, k := range expr.SortedKeys(v.Values) {
			p.value(b, k, v.Values[k])
		}
	case expr.Invocation:
		if v.ByReference() {
			p.ref(b, "function", v.FunctionReference)
		}
		for _, k := range expr.SortedKeys(v.Arguments) {
			p.value(b, k, v.Arguments[k])
		}
	case expr.Definition:
		p.ref(b, "body", v.Body)
	}
}

func (p *treePrinter) ref(parent treeprint.Tree, key, name string) {
	target, ok := p.idx[name]
	switch {
	case !ok:
		parent.AddMetaNode(key, "$"+name+" (missing)")
	case p.visiting[name]:
		parent.AddMetaNode(key, "$"+name+" (cycle)")
	default:
		p.visiting[name] = true
		p.members(parent.AddMetaBranch(key, "$"+name+" = "+summary(target)), target)
		delete(p.visiting, name)
	}
}
