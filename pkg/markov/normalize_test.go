package markov

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeCollapsesLineBreaks(t *testing.T) {
	require.Equal(t, "a b c d", Normalize("a\r\nb\nc\rd", 100))
}

func TestNormalizeUnderBudgetUnchanged(t *testing.T) {
	require.Equal(t, "short text", Normalize("short text", 100))
	require.Equal(t, "exact", Normalize("exact", 5))
}

func TestNormalizeCutsAtWordBoundary(t *testing.T) {
	// budget lands mid-word; the cut happens at the next whitespace
	out := Normalize("aaaa bbbb cccc dddd", 6)
	require.Equal(t, "aaaa bbbb", out)

	// budget lands exactly on whitespace
	out = Normalize("aaaa bbbb cccc", 4)
	require.Equal(t, "aaaa", out)
}

func TestNormalizeNoLaterBoundaryReturnsWhole(t *testing.T) {
	s := "leading " + strings.Repeat("x", 40)
	require.Equal(t, s, Normalize(s, 20))
}

func TestNormalizeTabIsBoundary(t *testing.T) {
	require.Equal(t, "aaaa\tbbbb", Normalize("aaaa\tbbbb\tcccc", 6))
}
