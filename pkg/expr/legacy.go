package expr

// Legacy is a node in the compound-value vocabulary.
//
// The variants are [Literal], [List], [LegacyDictionary], [LegacyInvocation],
// [LegacyFunction], [ArgumentRef], [ValueRef] and [CompoundValue].
type Legacy interface {
	Node
	isLegacy()
}

// Literal is a scalar passed through verbatim: nil, a bool, a number or a
// string.
type Literal struct {
	Value any
}

// List is a JSON array of legacy nodes.
type List []Legacy

// LegacyDictionary is a dictionary of legacy nodes.
type LegacyDictionary map[string]Legacy

// LegacyInvocation calls a named algorithm (FunctionName) or a function
// value (Function). Exactly one of the two is set.
type LegacyInvocation struct {
	FunctionName string
	Function     Legacy
	Arguments    map[string]Legacy
}

// LegacyFunction is a custom function definition.
type LegacyFunction struct {
	ArgumentNames []string
	Body          Legacy
}

// ArgumentRef refers to a parameter of the enclosing function.
type ArgumentRef struct {
	Name string
}

// ValueRef refers to an entry of the enclosing scope.
type ValueRef struct {
	Name string
}

// ScopeEntry is one named entry of a compound value's scope.
type ScopeEntry struct {
	Name  string
	Value Legacy
}

// CompoundValue pairs a scope with the node that uses it.
type CompoundValue struct {
	Scope []ScopeEntry
	Value Legacy
}

func (Literal) isLegacy()          {}
func (List) isLegacy()             {}
func (LegacyDictionary) isLegacy() {}
func (LegacyInvocation) isLegacy() {}
func (LegacyFunction) isLegacy()   {}
func (ArgumentRef) isLegacy()      {}
func (ValueRef) isLegacy()         {}
func (CompoundValue) isLegacy()    {}

func (l Literal) Wire() any { return l.Value }

func (l List) Wire() any {
	out := make([]any, len(l))
	for i, e := range l {
		out[i] = e.Wire()
	}
	return out
}

func (l LegacyDictionary) Wire() any {
	return map[string]any{"type": "Dictionary", "value": wireLegacyMap(l)}
}

func (l LegacyInvocation) Wire() any {
	out := map[string]any{"type": "Invocation", "arguments": wireLegacyMap(l.Arguments)}
	if l.Function != nil {
		out["function"] = l.Function.Wire()
	} else {
		out["functionName"] = l.FunctionName
	}
	return out
}

func (l LegacyFunction) Wire() any {
	names := make([]any, len(l.ArgumentNames))
	for i, n := range l.ArgumentNames {
		names[i] = n
	}
	return map[string]any{"type": "Function", "argumentNames": names, "body": l.Body.Wire()}
}

func (l ArgumentRef) Wire() any { return map[string]any{"type": "ArgumentRef", "value": l.Name} }

func (l ValueRef) Wire() any { return map[string]any{"type": "ValueRef", "value": l.Name} }

func (l CompoundValue) Wire() any {
	scope := make([]any, len(l.Scope))
	for i, e := range l.Scope {
		scope[i] = []any{e.Name, e.Value.Wire()}
	}
	return map[string]any{"type": "CompoundValue", "scope": scope, "value": l.Value.Wire()}
}

func wireLegacyMap(m map[string]Legacy) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Wire()
	}
	return out
}

// LegacyReferences returns the scope names referenced by l, without
// descending into nested compound values.
func LegacyReferences(l Legacy) []string {
	var out []string
	var walk func(Legacy)
	walk = func(l Legacy) {
		switch l := l.(type) {
		case ValueRef:
			out = append(out, l.Name)
		case List:
			for _, e := range l {
				walk(e)
			}
		case LegacyDictionary:
			for _, k := range SortedKeys(l) {
				walk(l[k])
			}
		case LegacyInvocation:
			if l.Function != nil {
				walk(l.Function)
			}
			for _, k := range SortedKeys(l.Arguments) {
				walk(l.Arguments[k])
			}
		case LegacyFunction:
			walk(l.Body)
		}
	}
	walk(l)
	return out
}
