package pattern

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_Logic(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		positive []string
		negative [][]string
	}{
		{"single term", "alpha", []string{"alpha"}, nil},
		{"conjunction", "a&b", []string{"a", "b"}, nil},
		{"trimmed", "  a &  b ", []string{"a", "b"}, nil},
		{"inner spaces kept", "new york&city", []string{"new york", "city"}, nil},
		{"one negative group", "a~b&c", []string{"a"}, [][]string{{"b", "c"}}},
		{"two negative groups", "a~b~c", []string{"a"}, [][]string{{"b"}, {"c"}}},
		{"blank terms dropped", "a&&b&", []string{"a", "b"}, nil},
		{"empty negative dropped", "a~~b", []string{"a"}, [][]string{{"b"}}},
		{"blank negative dropped", "a~ & ~b", []string{"a"}, [][]string{{"b"}}},
		{"trailing separator", "a~", []string{"a"}, nil},
		{"order preserved", "x&y~q&r~p", []string{"x", "y"}, [][]string{{"q", "r"}, {"p"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.raw, true)
			require.NoError(t, err)
			assert.Equal(t, tt.raw, p.Raw)
			assert.Equal(t, tt.positive, p.Positive)
			assert.Equal(t, tt.negative, p.Negative)
		})
	}
}

func TestCompile_LogicErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "", ErrEmptyPattern},
		{"only negative", "~b", ErrMissingPositiveTerm},
		{"blank positive", "  & ~b", ErrMissingPositiveTerm},
		{"only separators", "&&", ErrMissingPositiveTerm},
		{"whitespace", "   ", ErrMissingPositiveTerm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.raw, true)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCompile_Plain(t *testing.T) {
	for _, raw := range []string{"a~b&c", "  spaced  ", "~", "plain"} {
		p, err := Compile(raw, false)
		require.NoError(t, err)
		assert.Equal(t, []string{raw}, p.Positive)
		assert.Nil(t, p.Negative)
	}

	_, err := Compile("", false)
	assert.ErrorIs(t, err, ErrEmptyPattern)
}

func TestPattern_Terms(t *testing.T) {
	p, err := Compile("a&b~c&a~d", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "a", "d"}, p.Terms())
}

func TestCompileAll_PreservesOrder(t *testing.T) {
	raws := make([]string, 200)
	for i := range raws {
		raws[i] = fmt.Sprintf("t%d&u%d~v%d", i, i, i)
	}

	pats, err := CompileAll(raws, true, 8)
	require.NoError(t, err)
	require.Len(t, pats, len(raws))
	for i, p := range pats {
		assert.Equal(t, raws[i], p.Raw)
		assert.Equal(t, []string{fmt.Sprintf("t%d", i), fmt.Sprintf("u%d", i)}, p.Positive)
	}
}

func TestCompileAll_FirstErrorWins(t *testing.T) {
	raws := []string{"ok", "also&ok", "~bad", "", "fine"}
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			pats, err := CompileAll(raws, true, workers)
			assert.Nil(t, pats)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingPositiveTerm)
			assert.Contains(t, err.Error(), `"~bad"`)
		})
	}
}

func TestCompileAll_Empty(t *testing.T) {
	pats, err := CompileAll(nil, true, 4)
	require.NoError(t, err)
	assert.Empty(t, pats)
}

func TestCompileAll_PlainMode(t *testing.T) {
	pats, err := CompileAll([]string{"~x", "a&b"}, false, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"~x"}, pats[0].Positive)
	assert.Equal(t, []string{"a&b"}, pats[1].Positive)
}
