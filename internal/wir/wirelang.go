package wir

import (
	"context"
	"fmt"

	"gopkg.wirelang.org/wirec/internal/optional"
)

type Closer interface {
	Close(ctx context.Context) error
}

type CodePoint uint32

type Iterator[T any] interface {
	Next(ctx context.Context) optional.Optional[T]
	Closer
}

type Lookahead[T any] interface {
	Iterator[T]
	Lookahead(ctx context.Context, n uint8) optional.Optional[T]
}

type Filter[T any] interface {
	Keep(ctx context.Context, v T) bool
}

type Reader interface {
	Read(ctx context.Context, size int32) ([]byte, error)
}

type FileBody interface {
	Reader
	Closer
}

type FileKind uint32

const (
	FileKindNone FileKind = iota
	FileKindWirelang
)

func (k FileKind) String() string {
	switch k {
	case FileKindWirelang:
		return "wirelang"
	case FileKindNone:
		return "none"
	default:
		return fmt.Sprintf("unkown-%d", k)
	}
}

type File interface {
	Path(ctx context.Context) string
	Kind(ctx context.Context) FileKind
	Body(ctx context.Context) (FileBody, error)
}

type FileSystem interface {
	Open(ctx context.Context, uri string) ([]File, error)
	Write(ctx context.Context, uri string, content string) error
}

type Compiler interface {
	Compile(ctx context.Context, req *CompileRequest) (*CompileResponse, error)
}

type CompileRequest struct {
	Files      []string
	UseFloats  bool
	EvalPi     bool
	Validate   bool
	DumpTokens bool
}

type CompileResponse struct {
	Programs []*Program
}

type LexerFile interface {
	File
	Tokens(ctx context.Context) (Iterator[*Token], error)
}

type Lexer interface {
	Lex(ctx context.Context, f File) (LexerFile, error)
}

type Location struct {
	Line   int32
	Column int32
	Offset int64
}

type Span struct {
	Start Location
	End   Location
}

type Token struct {
	Span  Span
	Type  TokenType
	Value string
}

type TokenType uint16

const (
	TokenTypeUnknown          TokenType = 0
	TokenTypeIdentifier       TokenType = 1
	TokenTypeInteger          TokenType = 2
	TokenTypeFloat            TokenType = 3
	TokenTypeImaginary        TokenType = 4
	TokenTypeComment          TokenType = 5
	TokenTypePath             TokenType = 6
	TokenTypeSquareOpen       TokenType = 7
	TokenTypeSquareClose      TokenType = 8
	TokenTypeParenOpen        TokenType = 9
	TokenTypeParenClose       TokenType = 10
	TokenTypePlus             TokenType = 11
	TokenTypeMinus            TokenType = 12
	TokenTypeStar             TokenType = 13
	TokenTypeSlash            TokenType = 14
	TokenTypeComma            TokenType = 15
	TokenTypeColon            TokenType = 16
	TokenTypeSemicolon        TokenType = 17
	TokenTypePipe             TokenType = 18
	TokenTypeAt               TokenType = 19
	TokenTypeDotDot           TokenType = 20
	TokenTypeKeywordGate      TokenType = 21
	TokenTypeKeywordObs       TokenType = 22
	TokenTypeKeywordOut       TokenType = 23
	TokenTypeKeywordFunc      TokenType = 24
	TokenTypeKeywordUse       TokenType = 25
	TokenTypeKeywordOptions   TokenType = 26
	TokenTypeKeywordConstants TokenType = 27
	TokenTypeKeywordEnd       TokenType = 28
	TokenTypeKeywordInv       TokenType = 29
	TokenTypeKeywordCtrl      TokenType = 30
	TokenTypeKeywordTrue      TokenType = 31
	TokenTypeKeywordFalse     TokenType = 32
	TokenTypeKeywordPi        TokenType = 33
	TokenTypeWhitespace       TokenType = 34
	TokenTypeNewline          TokenType = 35
	TokenTypeEOF              TokenType = 36
)

func (t TokenType) String() string {
	name, ok := tokenTypeNames[t]
	if !ok {
		return fmt.Sprintf("token-%d", uint16(t))
	}
	return name
}

var tokenTypeNames = map[TokenType]string{
	TokenTypeUnknown:          "unknown",
	TokenTypeIdentifier:       "identifier",
	TokenTypeInteger:          "integer",
	TokenTypeFloat:            "float",
	TokenTypeImaginary:        "imaginary",
	TokenTypeComment:          "comment",
	TokenTypePath:             "path",
	TokenTypeSquareOpen:       "'['",
	TokenTypeSquareClose:      "']'",
	TokenTypeParenOpen:        "'('",
	TokenTypeParenClose:       "')'",
	TokenTypePlus:             "'+'",
	TokenTypeMinus:            "'-'",
	TokenTypeStar:             "'*'",
	TokenTypeSlash:            "'/'",
	TokenTypeComma:            "','",
	TokenTypeColon:            "':'",
	TokenTypeSemicolon:        "';'",
	TokenTypePipe:             "'|'",
	TokenTypeAt:               "'@'",
	TokenTypeDotDot:           "'..'",
	TokenTypeKeywordGate:      "'gate'",
	TokenTypeKeywordObs:       "'obs'",
	TokenTypeKeywordOut:       "'out'",
	TokenTypeKeywordFunc:      "'func'",
	TokenTypeKeywordUse:       "'use'",
	TokenTypeKeywordOptions:   "'options'",
	TokenTypeKeywordConstants: "'constants'",
	TokenTypeKeywordEnd:       "'end'",
	TokenTypeKeywordInv:       "'inv'",
	TokenTypeKeywordCtrl:      "'ctrl'",
	TokenTypeKeywordTrue:      "'true'",
	TokenTypeKeywordFalse:     "'false'",
	TokenTypeKeywordPi:        "'pi'",
	TokenTypeWhitespace:       "whitespace",
	TokenTypeNewline:          "newline",
	TokenTypeEOF:              "EOF",
}
