// Package filter evaluates the textual predicates rulesets use to select
// units and cities.
//
// A compound filter combines single filters:
//
//	{Melee} {Land}    both must match
//	non-[Wounded]     must not match
//
// The two forms nest, e.g. "{Military} {non-[Embarked]}".
package filter

import "strings"

// All matches every unit and every city.
const All = "All"

const (
	andPrefix    = "{"
	andSeparator = "} {"
	andSuffix    = "}"
	notPrefix    = "non-["
	notSuffix    = "]"
)

// Matches evaluates the compound filter input, delegating every single
// filter to single.
//
// Precondition: single must not be nil.
func Matches(input string, single func(string) bool) bool {
	if isAnd(input) {
		inner := strings.TrimSuffix(strings.TrimPrefix(input, andPrefix), andSuffix)
		for _, part := range strings.Split(inner, andSeparator) {
			if !Matches(part, single) {
				return false
			}
		}
		return true
	}
	if isNot(input) {
		inner := strings.TrimSuffix(strings.TrimPrefix(input, notPrefix), notSuffix)
		return !Matches(inner, single)
	}
	return single(input)
}

// SingleFilters returns every single filter named inside input, in order,
// with the compound syntax stripped.
func SingleFilters(input string) []string {
	var out []string
	var collect func(string)
	collect = func(s string) {
		switch {
		case isAnd(s):
			inner := strings.TrimSuffix(strings.TrimPrefix(s, andPrefix), andSuffix)
			for _, part := range strings.Split(inner, andSeparator) {
				collect(part)
			}
		case isNot(s):
			collect(strings.TrimSuffix(strings.TrimPrefix(s, notPrefix), notSuffix))
		default:
			out = append(out, s)
		}
	}
	collect(input)
	return out
}

func isAnd(s string) bool {
	return strings.HasPrefix(s, andPrefix) && strings.HasSuffix(s, andSuffix) && strings.Contains(s, andSeparator)
}

func isNot(s string) bool {
	return strings.HasPrefix(s, notPrefix) && strings.HasSuffix(s, notSuffix)
}
