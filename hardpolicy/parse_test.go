package hardpolicy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsg-ethz/snowcap/fwstate"
	"github.com/nsg-ethz/snowcap/hardpolicy"
)

// fakeNamer resolves router names "r0".."rN" to their index and treats every
// router as originating a prefix equal to its own index, enough to exercise
// Parse without depending on netsim/pkg/config.
type fakeNamer map[string]fwstate.RouterId

func (n fakeNamer) RouterID(name string) (fwstate.RouterId, bool) {
	id, ok := n[name]
	return id, ok
}

func (n fakeNamer) PrefixOf(name string) (fwstate.Prefix, bool) {
	id, ok := n[name]
	if !ok {
		return 0, false
	}
	return fwstate.Prefix(id), true
}

func namer() fakeNamer {
	return fakeNamer{"r0": 0, "r1": 1, "r2": 2}
}

func TestParse_Atoms(t *testing.T) {
	cases := map[string]string{
		"reach(r0,r1)":            "reach(r0,r1)",
		"noloop(r0,r1)":           "noloop(r0,r1)",
		`path(r0,r1,'0\.1')`:      "path(r0,r1,0\\.1)",
		"!reach(r0,r1)":           "!reach(r0,r1)",
		"reach(r0,r1) && reach(r1,r2)": "(reach(r0,r1) && reach(r1,r2))",
		"reach(r0,r1) || reach(r1,r2)": "(reach(r0,r1) || reach(r1,r2))",
		"reach(r0,r1) -> reach(r1,r2)": "(reach(r0,r1) -> reach(r1,r2))",
		"G reach(r0,r1)":           "G reach(r0,r1)",
		"F reach(r0,r1)":           "F reach(r0,r1)",
		"X reach(r0,r1)":           "X reach(r0,r1)",
		"reach(r0,r1) U reach(r1,r2)": "(reach(r0,r1) U reach(r1,r2))",
	}
	for src, want := range cases {
		src, want := src, want
		t.Run(src, func(t *testing.T) {
			t.Parallel()
			f, err := hardpolicy.Parse(src, namer())
			require.NoError(t, err)
			assert.Equal(t, want, f.String())
		})
	}
}

func TestParse_OperatorPrecedence(t *testing.T) {
	// '->' < '||' < '&&' < 'U', so "a && b U c" should parse as
	// "a && (b U c)".
	f, err := hardpolicy.Parse("reach(r0,r1) && reach(r1,r2) U reach(r0,r2)", namer())
	require.NoError(t, err)
	assert.Equal(t, "(reach(r0,r1) && (reach(r1,r2) U reach(r0,r2)))", f.String())
}

func TestParse_Parentheses(t *testing.T) {
	f, err := hardpolicy.Parse("G (reach(r0,r1) || reach(r1,r2))", namer())
	require.NoError(t, err)
	assert.Equal(t, "G (reach(r0,r1) || reach(r1,r2))", f.String())
}

func TestParse_UnknownRouterErrors(t *testing.T) {
	_, err := hardpolicy.Parse("reach(r0,rX)", namer())
	require.Error(t, err)
	assert.True(t, errors.Is(err, hardpolicy.ErrParse))
}

func TestParse_MalformedSyntaxErrors(t *testing.T) {
	cases := []string{
		"reach(r0,r1",
		"reach(r0 r1)",
		"&& reach(r0,r1)",
		"reach(r0,r1) &&",
		"bogus(r0,r1)",
		"reach(r0,r1) extra",
	}
	for _, src := range cases {
		src := src
		t.Run(src, func(t *testing.T) {
			t.Parallel()
			_, err := hardpolicy.Parse(src, namer())
			require.Error(t, err)
			assert.True(t, errors.Is(err, hardpolicy.ErrParse))
		})
	}
}

func TestParse_InvalidRegexErrors(t *testing.T) {
	_, err := hardpolicy.Parse(`path(r0,r1,'[')`, namer())
	require.Error(t, err)
}
