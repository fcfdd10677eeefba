package wir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgramDefaults(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	require.Equal(t, "0.1.0", p.Version())
	require.True(t, p.UseFloats())
	require.Empty(t, p.Warnings())

	p = NewProgram(WithVersion("1.2.3"), WithUseFloats(false))
	require.Equal(t, "1.2.3", p.Version())
	require.False(t, p.UseFloats())
}

func TestAddDeclarationDuplicateWarns(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	p.AddDeclaration(&Declaration{Name: "h", Kind: DeclGate, Wires: Wires{WireIndex(0)}})
	p.AddDeclaration(&Declaration{Name: "h", Kind: DeclGate, Wires: Wires{WireIndex(0), WireIndex(1)}})

	require.Equal(t, []string{"Gate 'h' already declared."}, p.Warnings())
	require.Len(t, p.Declarations(DeclGate), 2)
	// lookups resolve to the latest declaration
	require.Len(t, p.Declaration(DeclGate, "h").Wires, 2)
}

func TestAddGateRedefinition(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	p.AddGate("psi", []any{}, Wires{WireIndex(0)}, []*Statement{{Name: "x", Wires: Wires{WireIndex(0)}}})
	p.AddGate("psi", []any{"a"}, Wires{WireIndex(0)}, []*Statement{{Name: "y", Wires: Wires{WireIndex(0)}}})

	require.Equal(t, []string{"Gate 'psi' already defined."}, p.Warnings())
	require.Len(t, p.Declarations(DeclGate), 1)
	require.Equal(t, []any{"a"}, p.Declaration(DeclGate, "psi").Params)

	body, ok := p.Gate("psi")
	require.True(t, ok)
	require.Len(t, body, 1)
	require.Equal(t, "y", body[0].Name)
	require.Equal(t, []string{"psi"}, p.GateNames())
}

func TestAddObservableRedefinition(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	p.AddObservable("op", []any{}, Wires{WireIndex(0)}, []*ObservableStmt{{Pref: int64(1)}})
	p.AddObservable("op", []any{}, Wires{WireIndex(0)}, []*ObservableStmt{{Pref: int64(2)}})

	require.Equal(t, []string{"Observable 'op' already defined."}, p.Warnings())
	require.Len(t, p.Declarations(DeclObs), 1)
	body, ok := p.Observable("op")
	require.True(t, ok)
	require.Equal(t, int64(2), body[0].Pref)
}

func TestAddIncludeDuplicateWarns(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	p.AddInclude("<xstd>")
	p.AddInclude("<xstd>")

	require.Equal(t, []string{"Module '<xstd>' is already included."}, p.Warnings())
	require.Equal(t, []string{"<xstd>", "<xstd>"}, p.Includes())

	p.ClearIncludes()
	require.Empty(t, p.Includes())
}

func TestAddOptionAndConstantOverwrite(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	p.AddOption("cutoff", int64(21))
	p.AddOption("shots", int64(100))
	p.AddOption("cutoff", int64(7))

	require.Equal(t, []string{"Option 'cutoff' already set. Replacing old value with new value."}, p.Warnings())
	require.Equal(t, []string{"cutoff", "shots"}, p.OptionNames())
	v, ok := p.Option("cutoff")
	require.True(t, ok)
	require.Equal(t, int64(7), v)

	p.AddConstant("alpha", float64(0.5))
	p.AddConstant("alpha", float64(0.7))
	require.Contains(t, p.Warnings(), "Constant 'alpha' already set. Replacing old value with new value.")
	c, ok := p.Constant("alpha")
	require.True(t, ok)
	require.Equal(t, float64(0.7), c)
}

func TestVariablesAndCalledFunctions(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	p.AddVariable("b")
	p.AddVariable("a")
	p.AddVariable("b")
	p.AddCalledFunction("sin")
	p.AddCalledFunction("cos")

	require.Equal(t, []string{"a", "b"}, p.Variables())
	require.Equal(t, []string{"cos", "sin"}, p.CalledFunctions())
	require.True(t, p.HasVariable("a"))
	require.False(t, p.HasVariable("z"))
	require.True(t, p.HasCalledFunction("sin"))
	require.False(t, p.HasCalledFunction("tan"))
}

func TestSearch(t *testing.T) {
	t.Parallel()

	p := NewProgram()
	p.AddDeclaration(&Declaration{
		Name:   "Sgate",
		Kind:   DeclGate,
		Params: []any{"a", "b"},
		Wires:  Wires{WireIndex(0)},
	})

	wires, err := p.Search("gate", "wires", "Sgate")
	require.NoError(t, err)
	require.Equal(t, Wires{WireIndex(0)}, wires)

	params, err := p.Search("gate", "params", "Sgate")
	require.NoError(t, err)
	require.Equal(t, []any{"a", "b"}, params)

	_, err = p.Search("circuit", "wires", "Sgate")
	require.EqualError(t, err, "Declaration type 'circuit' must be one of {'gate', 'func', 'out', 'obs'}")

	_, err = p.Search("gate", "name", "Sgate")
	require.EqualError(t, err, "Attribute type 'name' must be one of {'wires', 'params'}")

	_, err = p.Search("obs", "wires", "Sgate")
	require.EqualError(t, err, "No obs declarations with the name 'Sgate' were found")
}

func TestMerge(t *testing.T) {
	t.Parallel()

	_, err := Merge()
	require.EqualError(t, err, "Merging requires at least one wirelang program")

	a := NewProgram()
	b := NewProgram(WithVersion("0.2.0"))
	_, err = Merge(a, b)
	require.EqualError(t, err, "wirelang programs with different versions cannot be merged")
}

func TestMergeFloatSettingsWarn(t *testing.T) {
	t.Parallel()

	a := NewProgram(WithUseFloats(true))
	b := NewProgram(WithUseFloats(false))
	merged, err := Merge(a, b)
	require.NoError(t, err)
	require.True(t, merged.UseFloats())
	require.Equal(t, []string{"wirelang programs with different float settings are being merged. Using the first encountered float setting."}, merged.Warnings())
}

func TestMergeCombines(t *testing.T) {
	t.Parallel()

	a := NewProgram()
	a.AddDeclaration(&Declaration{Name: "h", Kind: DeclGate, Wires: Wires{WireIndex(0)}})
	a.AddOption("cutoff", int64(21))
	a.AddGate("phase", []any{}, Wires{WireIndex(0)}, []*Statement{{Name: "h", Wires: Wires{WireIndex(0)}}})

	b := NewProgram()
	b.AddOption("cutoff", int64(7))
	b.AddOption("shots", int64(50))
	b.AddStatement(&Statement{Name: "h", Wires: Wires{WireIndex(0)}})
	b.AddInclude("<xstd>")

	merged, err := Merge(a, b)
	require.NoError(t, err)
	require.Len(t, merged.Declarations(DeclGate), 2)
	require.Equal(t, []string{"phase"}, merged.GateNames())
	require.Equal(t, []string{"cutoff", "shots"}, merged.OptionNames())
	v, _ := merged.Option("cutoff")
	require.Equal(t, int64(7), v)
	require.Len(t, merged.Statements(), 1)
	require.Equal(t, []string{"<xstd>"}, merged.Includes())
}

func TestIncludeKey(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		include  string
		expected string
	}{
		{include: "<qubit>", expected: "qubit"},
		{include: "qubit", expected: "qubit"},
		{include: "<foo/bar>", expected: "bar"},
		{include: "/abs/path/lib.wir", expected: "lib"},
		{include: "C:/foo", expected: "foo"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.include, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, IncludeKey(testCase.include))
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	lib := NewProgram()
	lib.AddDeclaration(&Declaration{Name: "h", Kind: DeclGate, Wires: Wires{WireIndex(0)}})

	root := NewProgram()
	root.AddInclude("<lib>")
	root.AddStatement(&Statement{Name: "h", Wires: Wires{WireIndex(0)}})

	resolved, err := Resolve(map[string]*Program{"root": root, "lib": lib}, "root")
	require.NoError(t, err)
	require.Empty(t, resolved.Includes())
	require.NotNil(t, resolved.Declaration(DeclGate, "h"))
	require.Len(t, resolved.Statements(), 1)
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()

	missing := NewProgram()
	missing.AddInclude("<nowhere>")
	_, err := Resolve(map[string]*Program{"root": missing}, "root")
	require.EqualError(t, err, "wirelang program 'nowhere' cannot be found")

	looped := NewProgram()
	looped.AddInclude("<root>")
	_, err = Resolve(map[string]*Program{"root": looped}, "root")
	require.EqualError(t, err, "wirelang program 'root' has a circular dependency")

	withStmt := NewProgram()
	withStmt.AddStatement(&Statement{Name: "h", Wires: Wires{WireIndex(0)}})
	root := NewProgram()
	root.AddInclude("<lib>")
	_, err = Resolve(map[string]*Program{"root": root, "lib": withStmt}, "root")
	require.EqualError(t, err, "wirelang program 'lib' contains a statement")
}

func TestValidateVersion(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateVersion("0.1.0"))
	require.EqualError(t, ValidateVersion(42), "Version '42' must be a string")
	require.EqualError(t, ValidateVersion("4.0"), "Version '4.0' must be a semantic version")
	require.EqualError(t, ValidateVersion("abc"), "Version 'abc' must be a semantic version")
}
