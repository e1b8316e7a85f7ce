package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateAmount(t *testing.T) {
	cases := []struct {
		expr string
		want int
	}{
		{"5k+300-1k", 4300},
		{"2k", 2000},
		{"12345", 12345},
		{"12 345", 12345},
		{"", 0},
		{"   ", 0},
		{"k", 0},
		{"abc", 0},
		{"5k+abc", 5000},
		{"-500", -500},
		{"1k-2k", -1000},
		{"5+-3", 2},
		{"1K + 2k", 3000},
		{"10k7", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, EvaluateAmount(c.expr), "EvaluateAmount(%q)", c.expr)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"2k", "2k"},
		{"12345", "12 345"},
		{"1234567", "1 234 567"},
		{"5k+300-1k", "5k+300-1k"},
		{"12345k", "12 345k"},
		{"", ""},
		{"  ", ""},
		{"-500", "-500"},
		{"12 345", "12 345"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatAmount(c.expr), "FormatAmount(%q)", c.expr)
	}
}

func TestFormatAmount_PreservesTotal(t *testing.T) {
	exprs := []string{"5k+300-1k", "12345", "2k", "1k-2k", "999+1", "12 345k"}
	for _, expr := range exprs {
		assert.Equal(t, EvaluateAmount(expr), EvaluateAmount(FormatAmount(expr)), "expr %q", expr)
	}
}

func TestCollapseAmount(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"2k", "2 000"},
		{"5k+300-1k", "4 300"},
		{"12345", "12 345"},
		{"", ""},
		{"1k-2k", "-1 000"},
		{"42", "42"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CollapseAmount(c.expr), "CollapseAmount(%q)", c.expr)
	}
}
