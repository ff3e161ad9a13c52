package expr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/hashicorp/go-multierror"

	errs "github.com/matzehuels/geoexpr/pkg/errors"
)

// Entry is one named node of a [Table].
type Entry struct {
	Name  string
	Value Value
}

// Table is an ordered sequence of named entries.
type Table []Entry

// Index returns a name → value map of the table.
func (t Table) Index() map[string]Value {
	idx := make(map[string]Value, len(t))
	for _, e := range t {
		idx[e.Name] = e.Value
	}
	return idx
}

// Lookup returns the value stored under name.
func (t Table) Lookup(name string) (Value, bool) {
	for _, e := range t {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// Names returns the entry names in table order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, e := range t {
		names[i] = e.Name
	}
	return names
}

// Expression is a result name together with the table it is resolved in.
// It marshals to {"result": name, "values": {name: node, ...}}.
type Expression struct {
	Result string
	Values Table
}

// Wire returns the JSON-compatible tree of the expression.
func (e Expression) Wire() any {
	values := make(map[string]any, len(e.Values))
	for _, entry := range e.Values {
		values[entry.Name] = entry.Value.Wire()
	}
	return map[string]any{"result": e.Result, "values": values}
}

// MarshalJSON implements json.Marshaler.
func (e Expression) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Wire())
}

// UnmarshalJSON implements json.Unmarshaler. Entries are ordered by name,
// numeric names first in numeric order.
func (e *Expression) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc struct {
		Result string         `json:"result"`
		Values map[string]any `json:"values"`
	}
	if err := dec.Decode(&doc); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode expression")
	}
	if doc.Result == "" {
		return errs.New(errs.ErrCodeInvalidFormat, "expression has no result")
	}

	names := SortedKeys(doc.Values)
	sort.SliceStable(names, func(i, j int) bool { return nameLess(names[i], names[j]) })

	table := make(Table, 0, len(names))
	for _, name := range names {
		v, err := FromWire(doc.Values[name])
		if err != nil {
			return fmt.Errorf("entry %q: %w", name, err)
		}
		table = append(table, Entry{Name: name, Value: v})
	}
	e.Result = doc.Result
	e.Values = table
	return nil
}

func nameLess(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	return a < b
}

// Validate checks that the result and every reference held by a table entry
// name an existing entry, and that no entry reaches itself through its
// references. All problems are reported together.
func Validate(e Expression) error {
	var result *multierror.Error
	idx := e.Values.Index()

	if _, ok := idx[e.Result]; !ok {
		result = multierror.Append(result, &MalformedGraphError{Name: e.Result})
	}
	for _, entry := range e.Values {
		if err := errs.ValidateName(entry.Name); err != nil {
			result = multierror.Append(result, fmt.Errorf("entry %q: %w", entry.Name, err))
		}
		for _, ref := range References(entry.Value) {
			if _, ok := idx[ref]; !ok {
				result = multierror.Append(result, &MalformedGraphError{Name: ref, Referrer: entry.Name})
			}
		}
	}
	if err := findCycle(e.Values, idx); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func findCycle(t Table, idx map[string]Value) error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(t))
	var stack []string

	var dfs func(name string) error
	dfs = func(name string) error {
		color[name] = gray
		stack = append(stack, name)
		for _, ref := range References(idx[name]) {
			if _, ok := idx[ref]; !ok {
				continue
			}
			switch color[ref] {
			case white:
				if err := dfs(ref); err != nil {
					return err
				}
			case gray:
				start := 0
				for i, n := range stack {
					if n == ref {
						start = i
						break
					}
				}
				path := append(append([]string(nil), stack[start:]...), ref)
				return &CycleError{Path: path}
			}
		}
		stack = stack[:len(stack)-1]
		color[name] = black
		return nil
	}

	for _, entry := range t {
		if color[entry.Name] == white {
			if err := dfs(entry.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// CheckTopological verifies that every entry only references entries that
// precede it in the table.
func CheckTopological(t Table) error {
	var result *multierror.Error
	pos := make(map[string]int, len(t))
	for i, entry := range t {
		pos[entry.Name] = i
	}
	for i, entry := range t {
		for _, ref := range References(entry.Value) {
			j, ok := pos[ref]
			if !ok {
				result = multierror.Append(result, &MalformedGraphError{Name: ref, Referrer: entry.Name})
				continue
			}
			if j >= i {
				result = multierror.Append(result, errs.New(errs.ErrCodeMalformedGraph,
					"entry %q at %d references %q at %d", entry.Name, i, ref, j))
			}
		}
	}
	return result.ErrorOrNil()
}

// CheckScopeOrder is [CheckTopological] for a legacy scope.
func CheckScopeOrder(scope []ScopeEntry) error {
	var result *multierror.Error
	pos := make(map[string]int, len(scope))
	for i, entry := range scope {
		pos[entry.Name] = i
	}
	for i, entry := range scope {
		for _, ref := range LegacyReferences(entry.Value) {
			j, ok := pos[ref]
			if !ok {
				result = multierror.Append(result, &MalformedGraphError{Name: ref, Referrer: entry.Name})
				continue
			}
			if j >= i {
				result = multierror.Append(result, errs.New(errs.ErrCodeMalformedGraph,
					"scope entry %q at %d references %q at %d", entry.Name, i, ref, j))
			}
		}
	}
	return result.ErrorOrNil()
}
