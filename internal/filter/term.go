package filter

import "strings"

// Operator identifies one comparison operator in a filter term.
type Operator string

// Operators recognized by the filter expression grammar.
const (
	OpExists         Operator = "exists"
	OpEquals         Operator = "="
	OpNotEquals      Operator = "!="
	OpNotEqualsAlt   Operator = "<>"
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
)

// NullLiteral is the filter value that addresses absent attributes.
const NullLiteral = "null"

// Wildcard is the character that turns a filter value into a pattern.
const Wildcard = "*"

// operatorScanOrder lists operators most specific first so that "!=" is
// never parsed as "=" and ">=" never as ">".
var operatorScanOrder = []Operator{
	OpNotEquals,
	OpNotEqualsAlt,
	OpGreaterOrEqual,
	OpLessOrEqual,
	OpEquals,
	OpLess,
	OpGreater,
}

// Term is one attribute comparison parsed from a filter expression.
type Term struct {
	Attribute string
	Operator  Operator
	Value     string
}

// IsNegation reports whether the term uses one of the two not-equal forms.
func (t Term) IsNegation() bool {
	return t.Operator == OpNotEquals || t.Operator == OpNotEqualsAlt
}

// Group is the AND-ed list of terms parsed from one filter query
// parameter. The overall filter is the OR of all groups supplied.
type Group []Term

// Partition splits the group into the terms addressing the given name
// attribute and everything else.
func (g Group) Partition(nameAttribute string) (nameTerms, otherTerms Group) {
	for _, t := range g {
		if t.Attribute == nameAttribute {
			nameTerms = append(nameTerms, t)
		} else {
			otherTerms = append(otherTerms, t)
		}
	}
	return nameTerms, otherTerms
}

// Parse splits a raw filter expression into comparison terms. Parsing is
// deliberately lenient and never fails: a term with no recognized operator
// degrades to an existence check on the whole term string.
func Parse(raw string) Group {
	var terms Group
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		terms = append(terms, parseTerm(part))
	}
	return terms
}

func parseTerm(s string) Term {
	for _, op := range operatorScanOrder {
		idx := strings.Index(s, string(op))
		if idx <= 0 {
			// Not found, or the operator leads the term leaving no
			// attribute; either way this operator does not apply.
			continue
		}
		return Term{
			Attribute: strings.TrimSpace(s[:idx]),
			Operator:  op,
			Value:     strings.TrimSpace(s[idx+len(op):]),
		}
	}
	return Term{Attribute: s, Operator: OpExists}
}

// SortSpec describes the requested ordering of a result set.
type SortSpec struct {
	Attribute  string
	Descending bool
}

// ParseSort parses the "attribute" or "attribute=asc|desc" query forms.
// Unknown directions fall back to ascending.
func ParseSort(raw string) SortSpec {
	attribute, direction, found := strings.Cut(raw, "=")
	spec := SortSpec{Attribute: strings.TrimSpace(attribute)}
	if found {
		spec.Descending = strings.EqualFold(strings.TrimSpace(direction), "desc")
	}
	return spec
}
