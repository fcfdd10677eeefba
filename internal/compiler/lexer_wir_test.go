// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.wirelang.org/wirec/internal/exc"
	"gopkg.wirelang.org/wirec/internal/fs"
	"gopkg.wirelang.org/wirec/internal/wir"
)

type expectedToken struct {
	kind  wir.TokenType
	value string
}

func TestLexerWir(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected []expectedToken
	}{
		{
			name:     "empty file",
			input:    "",
			expected: []expectedToken{},
		},
		{
			name:  "declaration",
			input: "gate h(a)[0, 1];",
			expected: []expectedToken{
				{wir.TokenTypeKeywordGate, "gate"},
				{wir.TokenTypeIdentifier, "h"},
				{wir.TokenTypeParenOpen, "("},
				{wir.TokenTypeIdentifier, "a"},
				{wir.TokenTypeParenClose, ")"},
				{wir.TokenTypeSquareOpen, "["},
				{wir.TokenTypeInteger, "0"},
				{wir.TokenTypeComma, ","},
				{wir.TokenTypeInteger, "1"},
				{wir.TokenTypeSquareClose, "]"},
				{wir.TokenTypeSemicolon, ";"},
			},
		},
		{
			name:  "wire range",
			input: "0..3",
			expected: []expectedToken{
				{wir.TokenTypeInteger, "0"},
				{wir.TokenTypeDotDot, ".."},
				{wir.TokenTypeInteger, "3"},
			},
		},
		{
			name:  "numbers",
			input: "2.5 1e-5 3j 2.5j 42",
			expected: []expectedToken{
				{wir.TokenTypeFloat, "2.5"},
				{wir.TokenTypeFloat, "1e-5"},
				{wir.TokenTypeImaginary, "3j"},
				{wir.TokenTypeImaginary, "2.5j"},
				{wir.TokenTypeInteger, "42"},
			},
		},
		{
			name:  "comment line",
			input: "// a comment\nx",
			expected: []expectedToken{
				{wir.TokenTypeComment, " a comment"},
				{wir.TokenTypeNewline, "\n"},
				{wir.TokenTypeIdentifier, "x"},
			},
		},
		{
			name:  "slash is division",
			input: "a / b",
			expected: []expectedToken{
				{wir.TokenTypeIdentifier, "a"},
				{wir.TokenTypeSlash, "/"},
				{wir.TokenTypeIdentifier, "b"},
			},
		},
		{
			name:  "include paths",
			input: "use <qubit>; use C:/foo;",
			expected: []expectedToken{
				{wir.TokenTypeKeywordUse, "use"},
				{wir.TokenTypePath, "<qubit>"},
				{wir.TokenTypeSemicolon, ";"},
				{wir.TokenTypeKeywordUse, "use"},
				{wir.TokenTypePath, "C:/foo"},
				{wir.TokenTypeSemicolon, ";"},
			},
		},
		{
			name:  "pi keyword both spellings",
			input: "pi PI",
			expected: []expectedToken{
				{wir.TokenTypeKeywordPi, "pi"},
				{wir.TokenTypeKeywordPi, "PI"},
			},
		},
		{
			name:  "modifiers",
			input: "ctrl[0] inv h | [1];",
			expected: []expectedToken{
				{wir.TokenTypeKeywordCtrl, "ctrl"},
				{wir.TokenTypeSquareOpen, "["},
				{wir.TokenTypeInteger, "0"},
				{wir.TokenTypeSquareClose, "]"},
				{wir.TokenTypeKeywordInv, "inv"},
				{wir.TokenTypeIdentifier, "h"},
				{wir.TokenTypePipe, "|"},
				{wir.TokenTypeSquareOpen, "["},
				{wir.TokenTypeInteger, "1"},
				{wir.TokenTypeSquareClose, "]"},
				{wir.TokenTypeSemicolon, ";"},
			},
		},
		{
			name:  "block keywords",
			input: "options: cutoff: 21; end;",
			expected: []expectedToken{
				{wir.TokenTypeKeywordOptions, "options"},
				{wir.TokenTypeColon, ":"},
				{wir.TokenTypeIdentifier, "cutoff"},
				{wir.TokenTypeColon, ":"},
				{wir.TokenTypeInteger, "21"},
				{wir.TokenTypeSemicolon, ";"},
				{wir.TokenTypeKeywordEnd, "end"},
				{wir.TokenTypeSemicolon, ";"},
			},
		},
		{
			name:  "expression operators",
			input: "(a + 2) * -0.5 @",
			expected: []expectedToken{
				{wir.TokenTypeParenOpen, "("},
				{wir.TokenTypeIdentifier, "a"},
				{wir.TokenTypePlus, "+"},
				{wir.TokenTypeInteger, "2"},
				{wir.TokenTypeParenClose, ")"},
				{wir.TokenTypeStar, "*"},
				{wir.TokenTypeMinus, "-"},
				{wir.TokenTypeFloat, "0.5"},
				{wir.TokenTypeAt, "@"},
			},
		},
		{
			name:  "identifier with underscore and digits",
			input: "my_gate2 _x",
			expected: []expectedToken{
				{wir.TokenTypeIdentifier, "my_gate2"},
				{wir.TokenTypeIdentifier, "_x"},
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			input := fs.NewFileString("/test.wir", testCase.input, wir.FileKindWirelang)
			rep := exc.NewReporter(nil)
			lexer := NewLexerWir(rep)
			lexerFile, err := lexer.Lex(ctx, input)
			require.NoError(t, err)
			stream, err := lexerFile.Tokens(ctx)
			require.NoError(t, err)

			actual := []expectedToken{}
			for tok := stream.Next(ctx); tok.IsPresent(); tok = stream.Next(ctx) {
				actual = append(actual, expectedToken{tok.Value().Type, tok.Value().Value})
			}
			require.NoError(t, stream.Close(ctx))
			require.Empty(t, rep.Reported())
			require.Equal(t, testCase.expected, actual)
		})
	}
}

func TestLexerWirColumnsCountRunes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	input := fs.NewFileString("/test.wir", "θθ x", wir.FileKindWirelang)
	rep := exc.NewReporter(nil)
	lexer := NewLexerWir(rep)
	lexerFile, err := lexer.Lex(ctx, input)
	require.NoError(t, err)
	stream, err := lexerFile.Tokens(ctx)
	require.NoError(t, err)

	tokens := []*wir.Token{}
	for tok := stream.Next(ctx); tok.IsPresent(); tok = stream.Next(ctx) {
		tokens = append(tokens, tok.Value())
	}
	require.NoError(t, stream.Close(ctx))
	require.Len(t, tokens, 2)

	// the two-byte letters widen the identifier by two columns, not four
	require.Equal(t, "θθ", tokens[0].Value)
	require.Equal(t, int32(0), tokens[0].Span.Start.Column)
	require.Equal(t, int32(2), tokens[0].Span.End.Column)
	require.Equal(t, "x", tokens[1].Value)
	require.Equal(t, int32(3), tokens[1].Span.Start.Column)
	require.Equal(t, int32(4), tokens[1].Span.End.Column)
}

func TestLexerWirKeepsRangeAfterNumber(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	input := fs.NewFileString("/test.wir", "h | [10..12];", wir.FileKindWirelang)
	rep := exc.NewReporter(nil)
	lexer := NewLexerWir(rep)
	lexerFile, err := lexer.Lex(ctx, input)
	require.NoError(t, err)
	stream, err := lexerFile.Tokens(ctx)
	require.NoError(t, err)

	kinds := []wir.TokenType{}
	for tok := stream.Next(ctx); tok.IsPresent(); tok = stream.Next(ctx) {
		kinds = append(kinds, tok.Value().Type)
	}
	require.Equal(t, []wir.TokenType{
		wir.TokenTypeIdentifier,
		wir.TokenTypePipe,
		wir.TokenTypeSquareOpen,
		wir.TokenTypeInteger,
		wir.TokenTypeDotDot,
		wir.TokenTypeInteger,
		wir.TokenTypeSquareClose,
		wir.TokenTypeSemicolon,
	}, kinds)
}
