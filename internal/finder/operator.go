package finder

import (
	"reflect"
)

// Operator is one of the closed set of comparison operators a Condition may use.
type Operator string

const (
	OpEq        Operator = "$eq"        // strict equality
	OpNe        Operator = "$ne"        // strict inequality
	OpIn        Operator = "$in"        // value is a member of the supplied list
	OpNin       Operator = "$nin"       // value is not a member of the supplied list
	OpGte       Operator = "$gte"       // numeric >=
	OpLte       Operator = "$lte"       // numeric <=
	OpContains  Operator = "$contains"  // stored list holds the supplied scalar
	OpNcontains Operator = "$ncontains" // stored list does not hold the supplied scalar
)

// Operators lists every supported operator in declaration order.
var Operators = []Operator{OpEq, OpNe, OpIn, OpNin, OpGte, OpLte, OpContains, OpNcontains}

// Valid reports whether op belongs to the supported operator set.
func (op Operator) Valid() bool {
	return op.bit() != 0
}

func (op Operator) bit() OperatorSet {
	for i, known := range Operators {
		if op == known {
			return 1 << i
		}
	}
	return 0
}

// OperatorSet is a bitmask of allowed operators for one query field.
type OperatorSet uint16

// Ops builds an OperatorSet. Unknown operators are ignored.
func Ops(ops ...Operator) OperatorSet {
	var set OperatorSet
	for _, op := range ops {
		set |= op.bit()
	}
	return set
}

// AllOps allows every operator.
var AllOps = Ops(Operators...)

// IdentityOps covers scalar identity fields such as id, key and type.
var IdentityOps = Ops(OpEq, OpNe, OpIn, OpNin)

// NumericOps adds range comparison to IdentityOps.
var NumericOps = Ops(OpEq, OpNe, OpIn, OpNin, OpGte, OpLte)

// Has reports whether op is allowed by the set.
func (s OperatorSet) Has(op Operator) bool {
	bit := op.bit()
	return bit != 0 && s&bit != 0
}

// apply evaluates a single operator against the stored value and the query argument.
func apply(op Operator, value, arg any) bool {
	switch op {
	case OpEq:
		return strictEqual(value, arg)
	case OpNe:
		return !strictEqual(value, arg)
	case OpIn:
		list, ok := asSlice(arg)
		if !ok {
			return false
		}
		return containsValue(list, value)
	case OpNin:
		list, ok := asSlice(arg)
		if !ok {
			return false
		}
		return !containsValue(list, value)
	case OpGte, OpLte:
		a, okA := toNumber(value)
		b, okB := toNumber(arg)
		if !okA || !okB {
			return false
		}
		if op == OpGte {
			return a >= b
		}
		return a <= b
	case OpContains:
		list, ok := asSlice(value)
		if !ok {
			return false
		}
		return containsValue(list, arg)
	case OpNcontains:
		// A stored scalar holds nothing, so it never contains arg.
		list, ok := asSlice(value)
		if !ok {
			return true
		}
		return !containsValue(list, arg)
	}
	return false
}

func containsValue(list []any, v any) bool {
	for _, candidate := range list {
		if strictEqual(candidate, v) {
			return true
		}
	}
	return false
}

// strictEqual compares without cross-type coercion. Numbers of any Go kind compare
// by value; lists and maps never compare equal.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if na, ok := toNumber(a); ok {
		nb, ok := toNumber(b)
		return ok && na == nb
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if list, ok := v.([]any); ok {
		return list, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	list := make([]any, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list, true
}

func asMap(v any) (map[string]any, bool) {
	if v == nil {
		return nil, false
	}
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}
