package finder

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/cardkit/internal/log"
)

// Field names a queryable property of an item.
type Field string

// Criterion is the right-hand side of one query field: a Condition for scalar
// fields, a Nested mapping for object-search fields.
type Criterion interface {
	criterion()
}

// Condition maps operators to their arguments. All operators must match.
type Condition map[Operator]any

func (Condition) criterion() {}

// And returns a new Condition holding the operators of c and other.
// Operators present in both take the value from other.
func (c Condition) And(other Condition) Condition {
	merged := make(Condition, len(c)+len(other))
	for op, v := range c {
		merged[op] = v
	}
	for op, v := range other {
		merged[op] = v
	}
	return merged
}

// Nested maps sub-field names of an object-search field to their Conditions.
type Nested map[string]Condition

func (Nested) criterion() {}

// Query maps fields to criteria. Fields are combined with AND.
type Query map[Field]Criterion

// Eq matches values strictly equal to v.
func Eq(v any) Condition { return Condition{OpEq: v} }

// Ne matches values not strictly equal to v.
func Ne(v any) Condition { return Condition{OpNe: v} }

// In matches values contained in vs.
func In(vs ...any) Condition { return Condition{OpIn: vs} }

// Nin matches values absent from vs.
func Nin(vs ...any) Condition { return Condition{OpNin: vs} }

// Gte matches numeric values >= v.
func Gte(v any) Condition { return Condition{OpGte: v} }

// Lte matches numeric values <= v.
func Lte(v any) Condition { return Condition{OpLte: v} }

// Contains matches list values holding v.
func Contains(v any) Condition { return Condition{OpContains: v} }

// NotContains matches values that do not hold v.
func NotContains(v any) Condition { return Condition{OpNcontains: v} }

// Parse decodes a query document. Both JSON and YAML are accepted:
//
//	{"key": {"$eq": "ace"}, "meta": {"rank": {"$gte": 10}}}
//
// A field whose mapping keys all start with "$" is a Condition; otherwise every
// key is a sub-field and every value must itself be an operator mapping.
func Parse(text string) (Query, error) {
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parsing query: %w", err)
	}

	query := make(Query, len(raw))
	for name, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: expected an operator mapping, got %T", name, v)
		}
		crit, err := parseCriterion(name, m)
		if err != nil {
			return nil, err
		}
		query[Field(name)] = crit
	}
	return query, nil
}

func parseCriterion(field string, m map[string]any) (Criterion, error) {
	operators, subfields := 0, 0
	for k := range m {
		if strings.HasPrefix(k, "$") {
			operators++
		} else {
			subfields++
		}
	}

	switch {
	case subfields == 0:
		return parseCondition(m), nil
	case operators == 0:
		nested := make(Nested, len(m))
		for sub, v := range m {
			inner, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("field %q.%s: expected an operator mapping, got %T", field, sub, v)
			}
			for k := range inner {
				if !strings.HasPrefix(k, "$") {
					return nil, fmt.Errorf("field %q.%s: %q is not an operator", field, sub, k)
				}
			}
			nested[sub] = parseCondition(inner)
		}
		return nested, nil
	default:
		return nil, fmt.Errorf("field %q: cannot mix operators and sub-fields", field)
	}
}

// parseCondition keeps unknown operators so they evaluate as a non-match.
func parseCondition(m map[string]any) Condition {
	cond := make(Condition, len(m))
	for k, v := range m {
		op := Operator(k)
		if !op.Valid() {
			log.Debug(log.CatFinder, "Unknown operator never matches", "operator", k)
		}
		cond[op] = v
	}
	return cond
}
