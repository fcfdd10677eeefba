package compiler

import (
	"context"
	"fmt"
	"io"

	"gopkg.wirelang.org/wirec/internal/exc"
	"gopkg.wirelang.org/wirec/internal/fs"
	"gopkg.wirelang.org/wirec/internal/wir"
)

type parseConfig struct {
	useFloats bool
	evalPi    bool
}

type ParseOption func(*parseConfig)

func WithUseFloats(v bool) ParseOption {
	return func(c *parseConfig) { c.useFloats = v }
}

func WithEvalPi(v bool) ParseOption {
	return func(c *parseConfig) { c.evalPi = v }
}

// ParseScript compiles a single in-memory script into a program. Includes
// are recorded but not resolved; use a full compiler for that.
func ParseScript(ctx context.Context, script string, opts ...ParseOption) (*wir.Program, error) {
	config := parseConfig{useFloats: true}
	for _, opt := range opts {
		opt(&config)
	}

	reporter := exc.NewReporter(nil)
	file := fs.NewFileString("/script"+fs.FileExt, script, wir.FileKindWirelang)

	lexer := NewLexerWir(reporter)
	lexed, err := lexer.Lex(ctx, file)
	if err != nil {
		return nil, err
	}
	parser := NewParserWir(reporter)
	parsed, err := parser.PrepareParse(ctx, lexed)
	if err != nil {
		return nil, err
	}
	var program *wir.Program
	if script := parsed.parse(); script != nil {
		t := &transformer{
			reporter:  reporter,
			uri:       file.Path(ctx),
			useFloats: config.useFloats,
			evalPi:    config.evalPi,
		}
		program = t.transform(script)
	}
	if caught := reporter.Reported(); len(caught) > 0 {
		return nil, MultiException(caught)
	}
	return program, nil
}

func dumpTokens(ctx context.Context, out io.Writer, lexed wir.LexerFile) error {
	tokens, err := lexed.Tokens(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tokens.Close(ctx)
	}()
	for t := tokens.Next(ctx); t.IsPresent(); t = tokens.Next(ctx) {
		token := t.Value()
		if _, err := fmt.Fprintf(out, "%d:%d %s %q\n", token.Span.Start.Line, token.Span.Start.Column, token.Type, token.Value); err != nil {
			return err
		}
	}
	return nil
}
