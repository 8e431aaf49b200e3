package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeFrequency_Synonyms(t *testing.T) {
	assert.Equal(t, NormalizeFrequency("twice daily"), NormalizeFrequency("BID"))
	assert.Equal(t, "2x/day", NormalizeFrequency("twice daily"))
	assert.Equal(t, "1x/day", NormalizeFrequency("once a day"))
	assert.Equal(t, "3x/day", NormalizeFrequency("TID"))
	assert.Equal(t, "4x/day", NormalizeFrequency("four times daily"))
}

func TestNormalizeDose_Synonyms(t *testing.T) {
	a := NormalizeDose("500 mg")
	b := NormalizeDose("500mg")
	c := NormalizeDose("500 milligrams")
	assert.Equal(t, a, b)
	assert.Equal(t, b, c)
}

func TestParseDoseToMg_UnitConversions(t *testing.T) {
	g1, ok1 := ParseDoseToMg("1g")
	require := assert.New(t)
	require.True(ok1)
	g2, ok2 := ParseDoseToMg("1000mg")
	require.True(ok2)
	require.Equal(g1, g2)
	require.Equal(1000.0, g1)

	mcg, ok3 := ParseDoseToMg("250 micrograms")
	require.True(ok3)
	require.Equal(0.25, mcg)
}

func TestParseDoseToMg_BareNumberIsMg(t *testing.T) {
	v, ok := ParseDoseToMg("100")
	assert.True(t, ok)
	assert.Equal(t, 100.0, v)
}

func TestParseDoseToMg_Unparseable(t *testing.T) {
	_, ok := ParseDoseToMg("a handful")
	assert.False(t, ok)
}

func TestDosesEqual(t *testing.T) {
	assert.True(t, DosesEqual("500 mg", "500mg"))
	assert.False(t, DosesEqual("500 mg", "600 mg"))
}

func TestResolveGeneric_PrefersExplicitField(t *testing.T) {
	got := ResolveGeneric("Atorvastatin", "Lipitor", func(string) (string, bool) {
		t.Fatal("lookup should not be called when explicit generic is present")
		return "", false
	})
	assert.Equal(t, "atorvastatin", got)
}

func TestResolveGeneric_FallsBackToAliasLookup(t *testing.T) {
	got := ResolveGeneric("", "Lipitor", func(brand string) (string, bool) {
		if brand == "Lipitor" {
			return "Atorvastatin", true
		}
		return "", false
	})
	assert.Equal(t, "atorvastatin", got)
}

func TestResolveGeneric_UnresolvedReturnsEmpty(t *testing.T) {
	got := ResolveGeneric("", "Unknown Brand", func(string) (string, bool) { return "", false })
	assert.Empty(t, got)
}
