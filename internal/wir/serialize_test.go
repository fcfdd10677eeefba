package wir

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDeclarationString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		decl     Declaration
		expected string
	}{
		{
			name:     "wires only",
			decl:     Declaration{Name: "cnot", Kind: DeclGate, Wires: Wires{WireIndex(0), WireIndex(1)}},
			expected: "gate cnot[0, 1]",
		},
		{
			name:     "params and wires",
			decl:     Declaration{Name: "Sgate", Kind: DeclGate, Params: []any{"a", "b"}, Wires: Wires{WireIndex(0)}},
			expected: "gate Sgate(a, b)[0]",
		},
		{
			name:     "func without wires",
			decl:     Declaration{Name: "sin", Kind: DeclFunc, Params: []any{"x"}},
			expected: "func sin(x)",
		},
		{
			name:     "output",
			decl:     Declaration{Name: "Sample", Kind: DeclOut, Wires: Wires{WireIndex(0), WireIndex(1)}},
			expected: "out Sample[0, 1]",
		},
		{
			name:     "named wires",
			decl:     Declaration{Name: "flip", Kind: DeclObs, Wires: Wires{WireName("a"), WireName("b")}},
			expected: "obs flip[a, b]",
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, testCase.decl.String())
		})
	}
}

func TestStatementString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		stmt     Statement
		expected string
	}{
		{
			name:     "bare",
			stmt:     Statement{Name: "cnot", Wires: Wires{WireIndex(0), WireIndex(1)}},
			expected: "cnot | [0, 1]",
		},
		{
			name:     "params",
			stmt:     Statement{Name: "rx", Params: []any{float64(0.2)}, Wires: Wires{WireIndex(0)}},
			expected: "rx(0.2) | [0]",
		},
		{
			name: "named params",
			stmt: Statement{
				Name:        "rx",
				NamedParams: []NamedParam{{Name: "theta", Value: float64(0.5)}},
				Wires:       Wires{WireIndex(0)},
			},
			expected: "rx(theta: 0.5) | [0]",
		},
		{
			name: "control and inverse",
			stmt: Statement{
				Name:      "h",
				Params:    []any{float64(0.2)},
				Wires:     Wires{WireIndex(0), WireIndex(1), WireIndex(2)},
				Inverse:   true,
				CtrlWires: Wires{WireIndex(3)},
			},
			expected: "ctrl[3] inv h(0.2) | [0, 1, 2]",
		},
		{
			name:     "symbolic param",
			stmt:     Statement{Name: "rx", Params: []any{"(a + 2)"}, Wires: Wires{WireName("w")}},
			expected: "rx((a + 2)) | [w]",
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, testCase.stmt.String())
		})
	}
}

func TestObservableStmtString(t *testing.T) {
	t.Parallel()

	stmt := ObservableStmt{
		Pref: float64(3.4),
		Factors: []ObservableFactor{
			{Name: "X", Wires: Wires{WireIndex(0)}},
			{Name: "Y", Wires: Wires{WireName("a")}},
		},
	}
	require.Equal(t, "3.4, X[0] @ Y[a]", stmt.String())

	noPref := ObservableStmt{Factors: []ObservableFactor{{Name: "Z", Wires: Wires{WireIndex(1)}}}}
	require.Equal(t, "Z[1]", noPref.String())
}

func TestProgramString(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	p.AddInclude("<xstd>")
	p.AddOption("cutoff", int64(21))
	p.AddConstant("alpha", float64(0.4))
	p.AddDeclaration(&Declaration{Name: "H", Kind: DeclGate, Params: []any{"a"}, Wires: Wires{WireIndex(0), WireIndex(1)}})
	p.AddDeclaration(&Declaration{Name: "Sample", Kind: DeclOut, Wires: Wires{WireIndex(0), WireIndex(1)}})
	p.AddGate("flip", []any{}, Wires{WireIndex(0)}, []*Statement{
		{Name: "H", Params: []any{float64(0.1)}, Wires: Wires{WireIndex(0)}},
	})
	p.AddObservable("spin", []any{}, Wires{WireIndex(0)}, []*ObservableStmt{
		{Pref: int64(2), Factors: []ObservableFactor{{Name: "Z", Wires: Wires{WireIndex(0)}}}},
	})
	p.AddStatement(&Statement{Name: "H", Params: []any{float64(0.2)}, Wires: Wires{WireIndex(0), WireIndex(1)}})
	p.AddStatement(&Statement{Name: "Sample", Wires: Wires{WireIndex(0), WireIndex(1)}})

	expected := strings.Join([]string{
		"use <xstd>;",
		"options:",
		"    cutoff: 21;",
		"end;",
		"constants:",
		"    alpha: 0.4;",
		"end;",
		"gate H(a)[0, 1];",
		"out Sample[0, 1];",
		"gate flip[0]:",
		"    H(0.1) | [0];",
		"end;",
		"obs spin[0]:",
		"    2, Z[0];",
		"end;",
		"H(0.2) | [0, 1];",
		"Sample | [0, 1];",
	}, "\n")

	if diff := cmp.Diff(expected, p.String()); diff != "" {
		t.Fatalf("unexpected serialization (-want +got):\n%s", diff)
	}
}

func TestProgramEqual(t *testing.T) {
	t.Parallel()

	a := NewProgram()
	a.AddStatement(&Statement{Name: "h", Wires: Wires{WireIndex(0)}})
	b := NewProgram()
	b.AddStatement(&Statement{Name: "h", Wires: Wires{WireIndex(0)}})

	require.True(t, a.Equal(b))
	b.AddOption("cutoff", int64(2))
	require.False(t, a.Equal(b))

	var missing *Program
	require.False(t, a.Equal(missing))
	require.True(t, missing.Equal(nil))
}
