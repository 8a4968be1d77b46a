package grammar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTableSortsByBiasThenPrecedence(t *testing.T) {
	low := &Rule{Name: "low-prec", Precedence: 1}
	high := &Rule{Name: "high-prec", Precedence: 9}
	biased := &Rule{Name: "biased", Precedence: 5, HasPrecBias: true, PrecBias: 7}

	table := NewTable([]*Rule{low, high, biased})

	require.Equal(t, "biased", table.Rules[0].Name) // highest bias sorts first
	require.Equal(t, "high-prec", table.Rules[1].Name)
	require.Equal(t, "low-prec", table.Rules[2].Name)
}

func TestNewTableStableOnTies(t *testing.T) {
	a := &Rule{Name: "a", Precedence: 3}
	b := &Rule{Name: "b", Precedence: 3}
	table := NewTable([]*Rule{a, b})
	require.Equal(t, "a", table.Rules[0].Name)
	require.Equal(t, "b", table.Rules[1].Name)
}
