package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareExists(t *testing.T) {
	t.Parallel()

	assert.True(t, Compare("foo", true, "", OpExists))
	assert.True(t, Compare(0, true, "", OpExists))
	assert.False(t, Compare(nil, true, "", OpExists))
	assert.False(t, Compare(nil, false, "", OpExists))
}

func TestCompareEquals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		attrValue   any
		present     bool
		filterValue string
		expected    bool
	}{
		{
			name:        "case insensitive match",
			attrValue:   "MIT",
			present:     true,
			filterValue: "mit",
			expected:    true,
		},
		{
			name:        "mismatch",
			attrValue:   "MIT",
			present:     true,
			filterValue: "Apache-2.0",
			expected:    false,
		},
		{
			name:        "lone wildcard asserts presence",
			attrValue:   "foo",
			present:     true,
			filterValue: "*",
			expected:    true,
		},
		{
			name:        "lone wildcard against absent value",
			attrValue:   nil,
			present:     false,
			filterValue: "*",
			expected:    false,
		},
		{
			name:        "wildcard in the middle",
			attrValue:   "abcXdef",
			present:     true,
			filterValue: "abc*def",
			expected:    true,
		},
		{
			name:        "wildcard requires surrounding literals",
			attrValue:   "zzz",
			present:     true,
			filterValue: "abc*def",
			expected:    false,
		},
		{
			name:        "wildcard is anchored",
			attrValue:   "xxabcdefxx",
			present:     true,
			filterValue: "abc*def",
			expected:    false,
		},
		{
			name:        "regex metacharacters are literal",
			attrValue:   "a.c",
			present:     true,
			filterValue: "a.c",
			expected:    true,
		},
		{
			name:        "dot does not act as regex any",
			attrValue:   "abc",
			present:     true,
			filterValue: "a.c",
			expected:    false,
		},
		{
			name:        "null literal matches absent value",
			attrValue:   nil,
			present:     false,
			filterValue: "null",
			expected:    true,
		},
		{
			name:        "null literal matches nil value",
			attrValue:   nil,
			present:     true,
			filterValue: "null",
			expected:    true,
		},
		{
			name:        "null literal against present value",
			attrValue:   "foo",
			present:     true,
			filterValue: "null",
			expected:    false,
		},
		{
			name:        "absent value never equals a concrete one",
			attrValue:   nil,
			present:     false,
			filterValue: "foo",
			expected:    false,
		},
		{
			name:        "numeric value compared as string",
			attrValue:   42,
			present:     true,
			filterValue: "42",
			expected:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, Compare(tt.attrValue, tt.present, tt.filterValue, OpEquals))
		})
	}
}

func TestCompareNotEquals(t *testing.T) {
	t.Parallel()

	for _, op := range []Operator{OpNotEquals, OpNotEqualsAlt} {
		t.Run(string(op), func(t *testing.T) {
			t.Parallel()

			// Absent values are "not equal" to anything concrete.
			assert.True(t, Compare(nil, false, "anything", op))
			assert.True(t, Compare(nil, true, "anything", op))

			// A present value is not "not any value".
			assert.False(t, Compare("foo", true, "*", op))

			// Null literal mirrors "=" negated.
			assert.True(t, Compare("foo", true, "null", op))
			assert.False(t, Compare(nil, false, "null", op))

			// Plain and wildcard negation.
			assert.False(t, Compare("MIT", true, "mit", op))
			assert.True(t, Compare("MIT", true, "Apache-2.0", op))
			assert.False(t, Compare("abcXdef", true, "abc*def", op))
			assert.True(t, Compare("zzz", true, "abc*def", op))
		})
	}
}

func TestCompareRelational(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		attrValue   any
		present     bool
		filterValue string
		op          Operator
		expected    bool
	}{
		{
			name:        "numeric less than",
			attrValue:   5,
			present:     true,
			filterValue: "10",
			op:          OpLess,
			expected:    true,
		},
		{
			name:        "numeric string coerced not lexicographic",
			attrValue:   "9",
			present:     true,
			filterValue: "10",
			op:          OpLess,
			expected:    true,
		},
		{
			name:        "numeric greater or equal on equality",
			attrValue:   10,
			present:     true,
			filterValue: "10",
			op:          OpGreaterOrEqual,
			expected:    true,
		},
		{
			name:        "numeric less or equal on equality",
			attrValue:   10,
			present:     true,
			filterValue: "10",
			op:          OpLessOrEqual,
			expected:    true,
		},
		{
			name:        "strict less fails on equality",
			attrValue:   10,
			present:     true,
			filterValue: "10",
			op:          OpLess,
			expected:    false,
		},
		{
			name:        "lexicographic fallback",
			attrValue:   "apple",
			present:     true,
			filterValue: "banana",
			op:          OpLess,
			expected:    true,
		},
		{
			name:        "lexicographic fallback is case insensitive",
			attrValue:   "Apple",
			present:     true,
			filterValue: "apple",
			op:          OpGreaterOrEqual,
			expected:    true,
		},
		{
			name:        "absent value never compares",
			attrValue:   nil,
			present:     false,
			filterValue: "10",
			op:          OpLess,
			expected:    false,
		},
		{
			name:        "null filter value never compares",
			attrValue:   5,
			present:     true,
			filterValue: "null",
			op:          OpGreater,
			expected:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, Compare(tt.attrValue, tt.present, tt.filterValue, tt.op))
		})
	}
}

func TestCompileWildcard(t *testing.T) {
	t.Parallel()

	re, err := compileWildcard("abc*def")
	assert.NoError(t, err)
	assert.True(t, re.MatchString("ABCxxxDEF"))
	assert.False(t, re.MatchString("abcdefg"))

	// Metacharacters other than the wildcard are escaped.
	re, err = compileWildcard("a+b*c")
	assert.NoError(t, err)
	assert.True(t, re.MatchString("a+bXXc"))
	assert.False(t, re.MatchString("aab_c"))
}
