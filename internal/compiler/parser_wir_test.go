package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParserWirRejects(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		script string
	}{
		{name: "unknown modifier", script: "adjective name(a, b)[0];"},
		{name: "empty wire list", script: "gate name(a, b)[];"},
		{name: "named params in declaration", script: "gate name(a: 3, b: 2)[0, 1];"},
		{name: "include path with spaces", script: "use Path With Spaces;"},
		{name: "unclosed angle bracket", script: "use <NoAngleR;"},
		{name: "unopened angle bracket", script: "use NoAngleL>;"},
		{name: "glob include", script: "use *;"},
		{name: "missing semicolon", script: "gate h[0]"},
		{name: "definition body on func", script: "func f(x): end;"},
		{name: "definition body on out", script: "out Sample[0]: end;"},
		{name: "statement without wires", script: "h | ;"},
		{name: "unterminated block", script: "options: cutoff: 21;"},
		{name: "bad wire element", script: "h | [0.5];"},
		{name: "range missing end", script: "h | [0..];"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseScript(context.Background(), testCase.script)
			require.Error(t, err)
		})
	}
}

func TestParserWirIncludes(t *testing.T) {
	t.Parallel()

	program, err := ParseScript(context.Background(), "use <xstd>;\nuse C:/foo;\nuse lib/qubit;\n")
	require.NoError(t, err)
	require.Equal(t, []string{"<xstd>", "C:/foo", "lib/qubit"}, program.Includes())
}

func TestParserWirTopLevel(t *testing.T) {
	t.Parallel()

	script := `
use <xstd>;

options:
    cutoff: 21;
end;

constants:
    alpha: 0.4;
end;

gate H(a)[0, 1];
out Sample[0, 1];

H(0.2) | [0, 1];
Sample | [0, 1];
`
	program, err := ParseScript(context.Background(), script)
	require.NoError(t, err)
	require.Equal(t, []string{"<xstd>"}, program.Includes())
	require.Equal(t, []string{"cutoff"}, program.OptionNames())
	require.Equal(t, []string{"alpha"}, program.ConstantNames())
	require.Len(t, program.Statements(), 2)
	require.NotNil(t, program.Declaration("gate", "H"))
	require.NotNil(t, program.Declaration("out", "Sample"))
}

func TestParserWirCommentsIgnored(t *testing.T) {
	t.Parallel()

	script := "// header comment\ngate h[0]; // trailing comment\nh | [0];\n"
	program, err := ParseScript(context.Background(), script)
	require.NoError(t, err)
	require.Len(t, program.Statements(), 1)
}

func TestParserWirBlockBoolKeys(t *testing.T) {
	t.Parallel()

	program, err := ParseScript(context.Background(), "options:\n    true: 1;\n    false: 0;\nend;\n")
	require.NoError(t, err)
	require.Equal(t, []string{"true", "false"}, program.OptionNames())
}
