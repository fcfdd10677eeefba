// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.wirelang.org/wirec/internal/exc"
	"gopkg.wirelang.org/wirec/internal/iter"
	"gopkg.wirelang.org/wirec/internal/optional"
	"gopkg.wirelang.org/wirec/internal/wir"
)

const (
	lexerWirLookahead = 8
)

// wirKeywords maps identifier spellings to their keyword token types. Built
// once; the lexer consults it after reading every identifier.
var wirKeywords = map[string]wir.TokenType{
	"gate":      wir.TokenTypeKeywordGate,
	"obs":       wir.TokenTypeKeywordObs,
	"out":       wir.TokenTypeKeywordOut,
	"func":      wir.TokenTypeKeywordFunc,
	"use":       wir.TokenTypeKeywordUse,
	"options":   wir.TokenTypeKeywordOptions,
	"constants": wir.TokenTypeKeywordConstants,
	"end":       wir.TokenTypeKeywordEnd,
	"inv":       wir.TokenTypeKeywordInv,
	"ctrl":      wir.TokenTypeKeywordCtrl,
	"true":      wir.TokenTypeKeywordTrue,
	"false":     wir.TokenTypeKeywordFalse,
	"pi":        wir.TokenTypeKeywordPi,
	"PI":        wir.TokenTypeKeywordPi,
}

// LexerWir implements a tokenizer for the wirelang syntax.
type LexerWir struct {
	reporter exc.Reporter
}

func NewLexerWir(reporter exc.Reporter) *LexerWir {
	return &LexerWir{reporter: reporter}
}

func (self *LexerWir) Lex(ctx context.Context, f wir.File) (wir.LexerFile, error) {
	return &lexerFileWir{
		File:     f,
		reporter: self.reporter,
	}, nil
}

type lexerFileWir struct {
	wir.File
	reporter exc.Reporter
}

func (self *lexerFileWir) Tokens(ctx context.Context) (wir.Iterator[*wir.Token], error) {
	b, err := self.File.Body(ctx)
	if err != nil {
		return nil, err
	}
	points := iter.NewLookahead(iter.NewUnicodeFileBodyCtx(ctx, b), lexerWirLookahead)
	return &lexerFileWirTokens{
		uri:      self.File.Path(ctx),
		body:     points,
		reporter: self.reporter,
		line:     1,
		col:      0,
		offset:   -1,
	}, nil
}

type lexerFileWirTokens struct {
	uri      string
	body     wir.Lookahead[wir.CodePoint]
	reporter exc.Reporter
	line     int32
	col      int32
	offset   int64
	hasBOM   bool
	// pathPending is set after a `use` keyword so the next word is lexed as
	// an include path rather than as identifiers and punctuation.
	pathPending bool
}

func (self *lexerFileWirTokens) Next(ctx context.Context) optional.Optional[*wir.Token] {
	for point := self.next(ctx); point.IsPresent(); point = self.next(ctx) {
		r := rune(point.Value())
		if r == 0xEFBBBF {
			if self.offset != 0 {
				e := self.exc(exc.CodeUnsupportedFileFormat, "invalid UTF-8 BOM location")
				_ = self.reporter.Report(e)
				return optional.None[*wir.Token]()
			}
			if self.hasBOM {
				e := self.exc(exc.CodeUnsupportedFileFormat, "duplicate UTF-8 BOM location")
				_ = self.reporter.Report(e)
				return optional.None[*wir.Token]()
			}
			self.hasBOM = true
			self.offset = -1
			self.col = 0
			continue
		}
		if self.pathPending && r != 0x0009 && r != 0x0020 && r != '\n' && r != '\r' && r != 0x00 {
			self.pathPending = false
			if r != ';' {
				return self.readPath(ctx, string(r))
			}
		}
		switch r {
		case 0x00:
			return optional.None[*wir.Token]() // Treat null byte as EOF as it's not allowed.
		case 0x0009, 0x0020:
			continue // Generally ignore space and tab.
		case '\n':
			return self.newLineToken("\n", 1)
		case '\r':
			if n := self.body.Lookahead(ctx, 1); n.IsPresent() && n.Value() == '\n' {
				_ = self.next(ctx)
				return self.newLineToken("\r\n", 2)
			}
			return self.newLineToken("\r", 1)
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			return self.readNumber(ctx, string(r))
		case '.':
			n := self.body.Lookahead(ctx, 1)
			if n.IsPresent() && n.Value() == '.' {
				_ = self.next(ctx)
				t := newTokenLineSpan(self.line, self.col, self.offset, wir.TokenTypeDotDot, "..")
				return optional.Some(t)
			}
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, wir.TokenTypeUnknown, ".")
			return optional.Some(t)
		case '/':
			n := self.body.Lookahead(ctx, 1)
			if n.IsPresent() && n.Value() == '/' {
				_ = self.next(ctx)
				return self.readCommentLine(ctx)
			}
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, wir.TokenTypeSlash, "/")
			return optional.Some(t)
		case '[':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, wir.TokenTypeSquareOpen, "[")
			return optional.Some(t)
		case ']':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, wir.TokenTypeSquareClose, "]")
			return optional.Some(t)
		case '(':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, wir.TokenTypeParenOpen, "(")
			return optional.Some(t)
		case ')':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, wir.TokenTypeParenClose, ")")
			return optional.Some(t)
		case '+':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, wir.TokenTypePlus, "+")
			return optional.Some(t)
		case '-':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, wir.TokenTypeMinus, "-")
			return optional.Some(t)
		case '*':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, wir.TokenTypeStar, "*")
			return optional.Some(t)
		case ',':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, wir.TokenTypeComma, ",")
			return optional.Some(t)
		case ':':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, wir.TokenTypeColon, ":")
			return optional.Some(t)
		case ';':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, wir.TokenTypeSemicolon, ";")
			return optional.Some(t)
		case '|':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, wir.TokenTypePipe, "|")
			return optional.Some(t)
		case '@':
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, wir.TokenTypeAt, "@")
			return optional.Some(t)
		case '_':
			return self.readIdentifier(ctx, string(r))
		default:
			if unicode.IsLetter(r) {
				tok := self.readIdentifier(ctx, string(r))
				if !tok.IsPresent() {
					return optional.None[*wir.Token]()
				}
				t := tok.Value()
				if kw, ok := wirKeywords[t.Value]; ok {
					t.Type = kw
					if kw == wir.TokenTypeKeywordUse {
						self.pathPending = true
					}
				}
				return optional.Some(t)
			}
			t := newToken(self.line, self.col-1, self.offset, self.line, self.col, self.offset+1, wir.TokenTypeUnknown, string(r))
			return optional.Some(t)
		}
	}
	return optional.None[*wir.Token]()
}

func (self *lexerFileWirTokens) readIdentifier(ctx context.Context, prefix string) optional.Optional[*wir.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString(prefix)
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			t := newTokenLineSpan(self.line, self.col, self.offset, wir.TokenTypeIdentifier, builder.String())
			return optional.Some(t)
		}
		if unicode.IsLetter(rune(n.Value())) || unicode.IsDigit(rune(n.Value())) || n.Value() == '_' {
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			continue
		}
		t := newTokenLineSpan(self.line, self.col, self.offset, wir.TokenTypeIdentifier, builder.String())
		return optional.Some(t)
	}
}

// readPath consumes an include path: everything up to the next whitespace,
// semicolon, or EOF. Path validity is the parser's concern.
func (self *lexerFileWirTokens) readPath(ctx context.Context, prefix string) optional.Optional[*wir.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString(prefix)
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			break
		}
		switch n.Value() {
		case 0x0009, 0x0020, '\n', '\r', ';', 0x00:
			t := newTokenLineSpan(self.line, self.col, self.offset, wir.TokenTypePath, builder.String())
			return optional.Some(t)
		default:
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		}
	}
	t := newTokenLineSpan(self.line, self.col, self.offset, wir.TokenTypePath, builder.String())
	return optional.Some(t)
}

func (self *lexerFileWirTokens) readCommentLine(ctx context.Context) optional.Optional[*wir.Token] {
	var builder strings.Builder
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			t := newTokenLineSpan(self.line, self.col, self.offset, wir.TokenTypeComment, builder.String())
			return optional.Some(t)
		}
		switch n.Value() {
		case '\r':
			t := newTokenLineSpan(self.line, self.col, self.offset, wir.TokenTypeComment, builder.String())
			return optional.Some(t)
		case '\n':
			t := newTokenLineSpan(self.line, self.col, self.offset, wir.TokenTypeComment, builder.String())
			return optional.Some(t)
		default:
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		}
	}
}

// readNumber consumes an integer, float, or imaginary literal. A dot is only
// part of the number when it is not the start of a range operator.
func (self *lexerFileWirTokens) readNumber(ctx context.Context, prefix string) optional.Optional[*wir.Token] {
	var builder strings.Builder
	_, _ = builder.WriteString(prefix)
	tokType := wir.TokenTypeInteger
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			t := newTokenLineSpan(self.line, self.col, self.offset, tokType, builder.String())
			return optional.Some(t)
		}
		switch n.Value() {
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		case '.':
			if nn := self.body.Lookahead(ctx, 2); nn.IsPresent() && nn.Value() == '.' {
				t := newTokenLineSpan(self.line, self.col, self.offset, tokType, builder.String())
				return optional.Some(t)
			}
			if tokType != wir.TokenTypeInteger {
				_ = self.reporter.Report(self.exc(exc.CodeInvalidNumber, "unexpected '.' in numeric literal"))
				return optional.None[*wir.Token]()
			}
			tokType = wir.TokenTypeFloat
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
		case 'e', 'E':
			tokType = wir.TokenTypeFloat
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			expTok := self.readExponent(ctx)
			if !expTok.IsPresent() {
				_ = self.reporter.Report(self.exc(exc.CodeInvalidNumber, "invalid exponent in float literal"))
				return optional.None[*wir.Token]()
			}
			_, _ = builder.WriteString(expTok.Value().Value)
		case 'j':
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			t := newTokenLineSpan(self.line, self.col, self.offset, wir.TokenTypeImaginary, builder.String())
			return optional.Some(t)
		default:
			t := newTokenLineSpan(self.line, self.col, self.offset, tokType, builder.String())
			return optional.Some(t)
		}
	}
}

func (self *lexerFileWirTokens) readExponent(ctx context.Context) optional.Optional[*wir.Token] {
	var builder strings.Builder
	n := self.body.Lookahead(ctx, 1)
	if !n.IsPresent() {
		_ = self.reporter.Report(self.exc(exc.CodeUnexpectedEOF, "EOF while reading exponent of float literal"))
		return optional.None[*wir.Token]()
	}
	switch n.Value() {
	case '+', '-':
		_ = self.next(ctx)
		_, _ = builder.WriteRune(rune(n.Value()))
	}
	sawDigit := false
	for {
		n := self.body.Lookahead(ctx, 1)
		if !n.IsPresent() {
			break
		}
		switch n.Value() {
		case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			sawDigit = true
			_ = self.next(ctx)
			_, _ = builder.WriteRune(rune(n.Value()))
			continue
		}
		break
	}
	if !sawDigit {
		return optional.None[*wir.Token]()
	}
	t := newTokenLineSpan(self.line, self.col, self.offset, wir.TokenTypeInteger, builder.String())
	return optional.Some(t)
}

func (self *lexerFileWirTokens) next(ctx context.Context) optional.Optional[wir.CodePoint] {
	n := self.body.Next(ctx)
	if n.IsPresent() {
		self.addCol(rune(n.Value()))
	}
	return n
}

func (self *lexerFileWirTokens) exc(code string, message string) exc.Exception {
	return exc.New(exc.Location{URI: self.uri, Location: wir.Location{Line: self.line, Column: self.col, Offset: self.offset}}, code, message)
}

func (self *lexerFileWirTokens) newLine() {
	self.line = self.line + 1
	self.col = 0
	self.offset = self.offset + 1
}

func (self *lexerFileWirTokens) newLineToken(v string, size int) optional.Optional[*wir.Token] {
	t := newToken(self.line, self.col-int32(size-1), self.offset-int64(size), self.line+1, 1, self.offset, wir.TokenTypeNewline, v)
	self.newLine()
	return optional.Some(t)
}

func (self *lexerFileWirTokens) addCol(r rune) {
	self.col = self.col + 1
	self.offset = self.offset + int64(len(string(r)))
}

func (self *lexerFileWirTokens) Close(ctx context.Context) error {
	return self.body.Close(ctx)
}

// newTokenLineSpan builds a token ending at the given position. Columns count
// runes while offsets count bytes, so the two widths differ for multi-byte
// values.
func newTokenLineSpan(line int32, col int32, offset int64, kind wir.TokenType, value string) *wir.Token {
	return &wir.Token{
		Span: wir.Span{
			Start: wir.Location{
				Line:   line,
				Column: col - int32(utf8.RuneCountInString(value)),
				Offset: offset - int64(len(value)),
			},
			End: wir.Location{
				Line:   line,
				Column: col,
				Offset: offset,
			},
		},
		Type:  kind,
		Value: value,
	}
}

func newToken(startLine int32, startCol int32, startOffset int64, endLine int32, endCol int32, endOffset int64, kind wir.TokenType, value string) *wir.Token {
	return &wir.Token{
		Span: wir.Span{
			Start: wir.Location{
				Line:   startLine,
				Column: startCol,
				Offset: startOffset,
			},
			End: wir.Location{
				Line:   endLine,
				Column: endCol,
				Offset: endOffset,
			},
		},
		Type:  kind,
		Value: value,
	}
}
