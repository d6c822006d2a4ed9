package filter

import (
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// Compare evaluates one filter term operator against a resolved attribute
// value. present reports whether the attribute path resolved at all; a nil
// attrValue is treated the same as an absent one.
//
// The null handling is intentionally asymmetric: an absent attribute never
// satisfies "=" against a concrete value but always satisfies "!=", and a
// wildcard pattern that fails to compile yields no match for "=" but a
// match for "!=". Callers depend on this leniency.
func Compare(attrValue any, present bool, filterValue string, op Operator) bool {
	absent := !present || attrValue == nil

	switch op {
	case OpExists:
		return !absent
	case OpEquals:
		return compareEquals(attrValue, absent, filterValue)
	case OpNotEquals, OpNotEqualsAlt:
		return compareNotEquals(attrValue, absent, filterValue)
	case OpLess, OpLessOrEqual, OpGreater, OpGreaterOrEqual:
		return compareRelational(attrValue, absent, filterValue, op)
	default:
		return false
	}
}

func compareEquals(attrValue any, absent bool, filterValue string) bool {
	if filterValue == NullLiteral {
		return absent
	}
	if absent {
		return false
	}
	if filterValue == Wildcard {
		// A lone wildcard only asserts presence.
		return true
	}
	if strings.Contains(filterValue, Wildcard) {
		re, err := compileWildcard(filterValue)
		if err != nil {
			return false
		}
		return re.MatchString(cast.ToString(attrValue))
	}
	return strings.EqualFold(cast.ToString(attrValue), filterValue)
}

func compareNotEquals(attrValue any, absent bool, filterValue string) bool {
	if filterValue == NullLiteral {
		return !absent
	}
	if absent {
		// An absent attribute is "not equal" to any concrete value.
		return true
	}
	if filterValue == Wildcard {
		// The attribute exists, so it is not "not any value".
		return false
	}
	if strings.Contains(filterValue, Wildcard) {
		re, err := compileWildcard(filterValue)
		if err != nil {
			return true
		}
		return !re.MatchString(cast.ToString(attrValue))
	}
	return !strings.EqualFold(cast.ToString(attrValue), filterValue)
}

func compareRelational(attrValue any, absent bool, filterValue string, op Operator) bool {
	if absent || filterValue == NullLiteral {
		return false
	}

	attrNum, attrErr := cast.ToFloat64E(attrValue)
	filterNum, filterErr := cast.ToFloat64E(filterValue)
	if attrErr == nil && filterErr == nil {
		switch {
		case attrNum < filterNum:
			return op == OpLess || op == OpLessOrEqual
		case attrNum > filterNum:
			return op == OpGreater || op == OpGreaterOrEqual
		default:
			return op == OpLessOrEqual || op == OpGreaterOrEqual
		}
	}

	cmp := strings.Compare(
		strings.ToLower(cast.ToString(attrValue)),
		strings.ToLower(filterValue),
	)
	switch op {
	case OpLess:
		return cmp < 0
	case OpLessOrEqual:
		return cmp <= 0
	case OpGreater:
		return cmp > 0
	case OpGreaterOrEqual:
		return cmp >= 0
	default:
		return false
	}
}

// compileWildcard turns a wildcard pattern into an anchored, case
// insensitive regular expression: every regex metacharacter except the
// wildcard is escaped and each "*" maps to a non-greedy ".*?".
func compileWildcard(pattern string) (*regexp.Regexp, error) {
	parts := strings.Split(pattern, Wildcard)
	escaped := make([]string, len(parts))
	for i, part := range parts {
		escaped[i] = regexp.QuoteMeta(part)
	}
	return regexp.Compile("(?i)^" + strings.Join(escaped, ".*?") + "$")
}
