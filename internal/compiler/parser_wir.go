package compiler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gopkg.wirelang.org/wirec/internal/exc"
	"gopkg.wirelang.org/wirec/internal/iter"
	"gopkg.wirelang.org/wirec/internal/wir"
)

type ParserWir struct {
	reporter exc.Reporter
}

func NewParserWir(reporter exc.Reporter) *ParserWir {
	return &ParserWir{reporter: reporter}
}

func (self *ParserWir) PrepareParse(ctx context.Context, f wir.LexerFile) (*parserWirTokens, error) {
	ft, err := f.Tokens(ctx)
	if err != nil {
		return nil, err
	}

	// comments and newlines carry no meaning in wirelang scripts; semicolons
	// do, so they stay in the stream.
	filtered_tokens := iter.NewIteratorFilter(ft, wir.Filter[*wir.Token](iter.FilterFunc[*wir.Token](func(ctx context.Context, t *wir.Token) bool {
		switch t.Type {
		case wir.TokenTypeNewline, wir.TokenTypeComment:
			return false
		default:
			return true
		}
	})))

	tokens := iter.NewLookahead(filtered_tokens, 8)

	return &parserWirTokens{
		reporter: self.reporter,
		ctx:      ctx,
		tokens:   tokens,
		uri:      f.Path(ctx),
	}, nil
}

type parserWirTokens struct {
	reporter exc.Reporter
	ctx      context.Context
	uri      string
	// this is the .Span.End of the last successfully parsed token; we keep track of it
	// so that we can give a meaningful location to "unexpected EOF" errors.
	loc    wir.Location
	tokens wir.Lookahead[*wir.Token]
}

func (p *parserWirTokens) report(code string, message string) {
	p.reporter.Report(exc.New(exc.Location{
		URI:      p.uri,
		Location: p.loc,
	}, code, message))
}

func (p *parserWirTokens) advance() {
	maybe_token := p.tokens.Lookahead(p.ctx, 0)
	if maybe_token.IsPresent() {
		p.loc = maybe_token.Value().Span.End
	}
	_ = p.tokens.Next(p.ctx)
}

func (p *parserWirTokens) peek() *wir.Token {
	maybe_token := p.tokens.Lookahead(p.ctx, 0)
	if !maybe_token.IsPresent() {
		return nil
	}
	return maybe_token.Value()
}

func (p *parserWirTokens) peekN(n uint8) *wir.Token {
	maybe_token := p.tokens.Lookahead(p.ctx, n)
	if !maybe_token.IsPresent() {
		return nil
	}
	return maybe_token.Value()
}

// reports an error if there is no current token, or the current token isn't of the expected type
// advances on success
func (p *parserWirTokens) expectOne(expectedType wir.TokenType) *wir.Token {
	return p.expectOneOf([]wir.TokenType{expectedType})
}

// reports an error if current token isn't one of the given expected types.
// advances on success
func (p *parserWirTokens) expectOneOf(expectedTypes []wir.TokenType) *wir.Token {
	maybe_token := p.peek()
	if maybe_token == nil {
		p.report(exc.CodeUnexpectedEOF, fmt.Sprintf("unexpected EOF (expecting %v)", expectedTypes))
		return nil
	}
	for _, expectedType := range expectedTypes {
		if maybe_token.Type == expectedType {
			p.advance()
			return maybe_token
		}
	}
	p.report(exc.CodeUnexpectedToken, fmt.Sprintf("unexpected '%s' (expecting %v)", maybe_token.Value, expectedTypes))
	return nil
}

var declKeywords = map[wir.TokenType]wir.DeclKind{
	wir.TokenTypeKeywordGate: wir.DeclGate,
	wir.TokenTypeKeywordObs:  wir.DeclObs,
	wir.TokenTypeKeywordOut:  wir.DeclOut,
	wir.TokenTypeKeywordFunc: wir.DeclFunc,
}

// script = { include | block | declaration | definition | statement }
func (p *parserWirTokens) parse() *astScript {
	script := astScript{}
	for {
		maybe_token := p.peek()
		if maybe_token == nil {
			return &script
		}
		var parsed topLevel
		switch maybe_token.Type {
		case wir.TokenTypeKeywordUse:
			include := p.parseInclude()
			if include == nil {
				return nil
			}
			parsed = include
		case wir.TokenTypeKeywordOptions, wir.TokenTypeKeywordConstants:
			block := p.parseBlock()
			if block == nil {
				return nil
			}
			parsed = block
		case wir.TokenTypeKeywordGate, wir.TokenTypeKeywordObs, wir.TokenTypeKeywordOut, wir.TokenTypeKeywordFunc:
			declaration := p.parseDeclaration()
			if declaration == nil {
				return nil
			}
			parsed = declaration
		case wir.TokenTypeIdentifier, wir.TokenTypeKeywordInv, wir.TokenTypeKeywordCtrl:
			statement := p.parseStatement()
			if statement == nil {
				return nil
			}
			parsed = statement
		default:
			p.report(exc.CodeUnexpectedToken, fmt.Sprintf("unexpected '%s' at top level of script", maybe_token.Value))
			return nil
		}
		script.nodes = append(script.nodes, parsed)
	}
}

// include = 'use' PATH ';'
func (p *parserWirTokens) parseInclude() *astInclude {
	if p.expectOne(wir.TokenTypeKeywordUse) == nil {
		return nil
	}
	path := p.expectOne(wir.TokenTypePath)
	if path == nil {
		return nil
	}
	if !validIncludePath(path.Value) {
		p.report(exc.CodeInvalidInclude, fmt.Sprintf("invalid include path '%s'", path.Value))
		return nil
	}
	if p.expectOne(wir.TokenTypeSemicolon) == nil {
		return nil
	}
	return &astInclude{
		astNode: astNode{loc: path.Span.Start},
		path:    *path,
	}
}

// include paths are plain or angle-bracketed; the brackets must pair up and
// the path itself must not contain glob or quoting characters.
func validIncludePath(path string) bool {
	open := strings.HasPrefix(path, "<")
	closed := strings.HasSuffix(path, ">")
	if open != closed {
		return false
	}
	if open {
		path = path[1 : len(path)-1]
	}
	if path == "" {
		return false
	}
	return !strings.ContainsAny(path, "*?<>\"'`")
}

// block      = ('options' | 'constants') ':' { blockEntry } 'end' ';'
// blockEntry = (IDENTIFIER | 'true' | 'false') ':' expression ';'
func (p *parserWirTokens) parseBlock() *astBlock {
	keyword := p.expectOneOf([]wir.TokenType{wir.TokenTypeKeywordOptions, wir.TokenTypeKeywordConstants})
	if keyword == nil {
		return nil
	}
	if p.expectOne(wir.TokenTypeColon) == nil {
		return nil
	}
	block := astBlock{
		astNode: astNode{loc: keyword.Span.Start},
		keyword: *keyword,
	}
	for {
		maybe_token := p.peek()
		if maybe_token == nil {
			p.report(exc.CodeUnexpectedEOF, fmt.Sprintf("unexpected EOF in '%s' block", keyword.Value))
			return nil
		}
		if maybe_token.Type == wir.TokenTypeKeywordEnd {
			break
		}
		name := p.expectOneOf([]wir.TokenType{wir.TokenTypeIdentifier, wir.TokenTypeKeywordTrue, wir.TokenTypeKeywordFalse})
		if name == nil {
			return nil
		}
		if p.expectOne(wir.TokenTypeColon) == nil {
			return nil
		}
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		if p.expectOne(wir.TokenTypeSemicolon) == nil {
			return nil
		}
		block.entries = append(block.entries, astBlockEntry{name: *name, value: value})
	}
	if p.expectOne(wir.TokenTypeKeywordEnd) == nil {
		return nil
	}
	if p.expectOne(wir.TokenTypeSemicolon) == nil {
		return nil
	}
	return &block
}

// declaration = declKeyword IDENTIFIER [declParams] [wireList] (';' | definitionBody)
// declParams  = '(' [IDENTIFIER {',' IDENTIFIER}] ')'
// wireList    = '[' wire {',' wire} ']'
func (p *parserWirTokens) parseDeclaration() topLevel {
	keyword := p.expectOneOf([]wir.TokenType{wir.TokenTypeKeywordGate, wir.TokenTypeKeywordObs, wir.TokenTypeKeywordOut, wir.TokenTypeKeywordFunc})
	if keyword == nil {
		return nil
	}
	kind := declKeywords[keyword.Type]
	name := p.expectOne(wir.TokenTypeIdentifier)
	if name == nil {
		return nil
	}

	hasParams := false
	var params []wir.Token
	if maybe_token := p.peek(); maybe_token != nil && maybe_token.Type == wir.TokenTypeParenOpen {
		hasParams = true
		p.advance()
		for {
			maybe_token = p.peek()
			if maybe_token != nil && maybe_token.Type == wir.TokenTypeParenClose && len(params) == 0 {
				break
			}
			// numeric parameters are accepted here and rejected by the
			// validator, which can phrase the problem better
			param := p.expectOneOf([]wir.TokenType{wir.TokenTypeIdentifier, wir.TokenTypeInteger, wir.TokenTypeFloat})
			if param == nil {
				return nil
			}
			params = append(params, *param)
			maybe_token = p.peek()
			if maybe_token == nil || maybe_token.Type != wir.TokenTypeComma {
				break
			}
			p.advance()
		}
		if p.expectOne(wir.TokenTypeParenClose) == nil {
			return nil
		}
	}

	hasWires := false
	var wires []wireElement
	if maybe_token := p.peek(); maybe_token != nil && maybe_token.Type == wir.TokenTypeSquareOpen {
		hasWires = true
		wires = p.parseWireList()
		if wires == nil {
			return nil
		}
	}

	terminator := p.expectOneOf([]wir.TokenType{wir.TokenTypeSemicolon, wir.TokenTypeColon})
	if terminator == nil {
		return nil
	}
	if terminator.Type == wir.TokenTypeSemicolon {
		return &astDeclaration{
			astNode: astNode{loc: name.Span.Start},
			kind:    kind,
			name:    *name,
			params:  params,
			wires:   wires,
		}
	}

	switch kind {
	case wir.DeclGate:
		body := p.parseGateBody()
		if body == nil {
			return nil
		}
		return &astGateDef{
			astNode:   astNode{loc: name.Span.Start},
			name:      *name,
			params:    params,
			wires:     wires,
			hasParams: hasParams,
			hasWires:  hasWires,
			body:      body,
		}
	case wir.DeclObs:
		body := p.parseObsBody()
		if body == nil {
			return nil
		}
		return &astObsDef{
			astNode:   astNode{loc: name.Span.Start},
			name:      *name,
			params:    params,
			wires:     wires,
			hasParams: hasParams,
			hasWires:  hasWires,
			body:      body,
		}
	default:
		p.report(exc.CodeUnexpectedToken, fmt.Sprintf("'%s' declarations can not have a definition body", kind))
		return nil
	}
}

// gateBody = { statement } 'end' ';'
func (p *parserWirTokens) parseGateBody() []*astStatement {
	body := []*astStatement{}
	for {
		maybe_token := p.peek()
		if maybe_token == nil {
			p.report(exc.CodeUnexpectedEOF, "unexpected EOF in gate definition")
			return nil
		}
		if maybe_token.Type == wir.TokenTypeKeywordEnd {
			break
		}
		statement := p.parseStatement()
		if statement == nil {
			return nil
		}
		body = append(body, statement)
	}
	if p.expectOne(wir.TokenTypeKeywordEnd) == nil {
		return nil
	}
	if p.expectOne(wir.TokenTypeSemicolon) == nil {
		return nil
	}
	return body
}

// obsBody = { obsStatement } 'end' ';'
func (p *parserWirTokens) parseObsBody() []*astObsStmt {
	body := []*astObsStmt{}
	for {
		maybe_token := p.peek()
		if maybe_token == nil {
			p.report(exc.CodeUnexpectedEOF, "unexpected EOF in obs definition")
			return nil
		}
		if maybe_token.Type == wir.TokenTypeKeywordEnd {
			break
		}
		statement := p.parseObsStmt()
		if statement == nil {
			return nil
		}
		body = append(body, statement)
	}
	if p.expectOne(wir.TokenTypeKeywordEnd) == nil {
		return nil
	}
	if p.expectOne(wir.TokenTypeSemicolon) == nil {
		return nil
	}
	return body
}

// statement = { 'inv' | 'ctrl' wireList } IDENTIFIER [applyParams] '|' wireList ';'
func (p *parserWirTokens) parseStatement() *astStatement {
	statement := astStatement{}
	for {
		maybe_token := p.peek()
		if maybe_token == nil {
			p.report(exc.CodeUnexpectedEOF, "unexpected EOF in statement")
			return nil
		}
		if maybe_token.Type == wir.TokenTypeKeywordInv {
			p.advance()
			statement.invCount = statement.invCount + 1
			continue
		}
		if maybe_token.Type == wir.TokenTypeKeywordCtrl {
			p.advance()
			wires := p.parseWireList()
			if wires == nil {
				return nil
			}
			statement.ctrlWires = append(statement.ctrlWires, wires...)
			continue
		}
		break
	}

	name := p.expectOne(wir.TokenTypeIdentifier)
	if name == nil {
		return nil
	}
	statement.astNode = astNode{loc: name.Span.Start}
	statement.name = *name

	if maybe_token := p.peek(); maybe_token != nil && maybe_token.Type == wir.TokenTypeParenOpen {
		if !p.parseApplyParams(&statement) {
			return nil
		}
	}

	if p.expectOne(wir.TokenTypePipe) == nil {
		return nil
	}
	wires := p.parseWireList()
	if wires == nil {
		return nil
	}
	statement.wires = wires
	if p.expectOne(wir.TokenTypeSemicolon) == nil {
		return nil
	}
	return &statement
}

// applyParams = '(' [expression {',' expression}] ')'
//             | '(' IDENTIFIER ':' expression {',' IDENTIFIER ':' expression} ')'
func (p *parserWirTokens) parseApplyParams(statement *astStatement) bool {
	if p.expectOne(wir.TokenTypeParenOpen) == nil {
		return false
	}
	if maybe_token := p.peek(); maybe_token != nil && maybe_token.Type == wir.TokenTypeParenClose {
		p.advance()
		return true
	}

	// an identifier followed by a colon means the whole list is named
	first := p.peek()
	next := p.peekN(1)
	named := first != nil && first.Type == wir.TokenTypeIdentifier && next != nil && next.Type == wir.TokenTypeColon

	for {
		if named {
			name := p.expectOne(wir.TokenTypeIdentifier)
			if name == nil {
				return false
			}
			if p.expectOne(wir.TokenTypeColon) == nil {
				return false
			}
			value := p.parseExpression()
			if value == nil {
				return false
			}
			statement.named = append(statement.named, astNamedParam{name: *name, value: value})
		} else {
			value := p.parseExpression()
			if value == nil {
				return false
			}
			statement.params = append(statement.params, value)
		}
		maybe_token := p.peek()
		if maybe_token == nil || maybe_token.Type != wir.TokenTypeComma {
			break
		}
		p.advance()
	}
	return p.expectOne(wir.TokenTypeParenClose) != nil
}

// obsStatement = expression ',' obsFactor {'@' obsFactor} ';'
func (p *parserWirTokens) parseObsStmt() *astObsStmt {
	pref := p.parseExpression()
	if pref == nil {
		return nil
	}
	statement := astObsStmt{pref: pref}
	if p.expectOne(wir.TokenTypeComma) == nil {
		return nil
	}
	for {
		factor := p.parseObsFactor()
		if factor == nil {
			return nil
		}
		statement.factors = append(statement.factors, *factor)
		maybe_token := p.peek()
		if maybe_token == nil || maybe_token.Type != wir.TokenTypeAt {
			break
		}
		p.advance()
	}
	if p.expectOne(wir.TokenTypeSemicolon) == nil {
		return nil
	}
	return &statement
}

// obsFactor = IDENTIFIER wireList
func (p *parserWirTokens) parseObsFactor() *astObsFactor {
	name := p.expectOne(wir.TokenTypeIdentifier)
	if name == nil {
		return nil
	}
	wires := p.parseWireList()
	if wires == nil {
		return nil
	}
	return &astObsFactor{
		name:  *name,
		wires: wires,
	}
}

// wireList = '[' wire {',' wire} ']'
// wire     = INTEGER ['..' INTEGER] | IDENTIFIER
func (p *parserWirTokens) parseWireList() []wireElement {
	if p.expectOne(wir.TokenTypeSquareOpen) == nil {
		return nil
	}
	wires := []wireElement{}
	for {
		maybe_token := p.expectOneOf([]wir.TokenType{wir.TokenTypeInteger, wir.TokenTypeIdentifier})
		if maybe_token == nil {
			return nil
		}
		if maybe_token.Type == wir.TokenTypeIdentifier {
			wires = append(wires, astWireName{name: maybe_token.Value})
		} else {
			start, err := strconv.ParseInt(maybe_token.Value, 10, 64)
			if err != nil {
				p.report(exc.CodeInvalidNumber, fmt.Sprintf("invalid wire index '%s'", maybe_token.Value))
				return nil
			}
			if next := p.peek(); next != nil && next.Type == wir.TokenTypeDotDot {
				p.advance()
				endToken := p.expectOne(wir.TokenTypeInteger)
				if endToken == nil {
					return nil
				}
				end, err := strconv.ParseInt(endToken.Value, 10, 64)
				if err != nil {
					p.report(exc.CodeInvalidNumber, fmt.Sprintf("invalid wire index '%s'", endToken.Value))
					return nil
				}
				wires = append(wires, astWireRange{start: start, end: end})
			} else {
				wires = append(wires, astWireInteger{value: start})
			}
		}
		maybe_token = p.peek()
		if maybe_token == nil || maybe_token.Type != wir.TokenTypeComma {
			break
		}
		p.advance()
	}
	if p.expectOne(wir.TokenTypeSquareClose) == nil {
		return nil
	}
	return wires
}

// expression = term {('+' | '-') term}
func (p *parserWirTokens) parseExpression() expression {
	lhs := p.parseTerm()
	if lhs == nil {
		return nil
	}
	for {
		maybe_token := p.peek()
		if maybe_token == nil {
			return lhs
		}
		switch maybe_token.Type {
		case wir.TokenTypePlus, wir.TokenTypeMinus:
			p.advance()
			rhs := p.parseTerm()
			if rhs == nil {
				return nil
			}
			lhs = astExpressionBinary{op: *maybe_token, lhs: lhs, rhs: rhs}
		default:
			return lhs
		}
	}
}

// term = unary {('*' | '/') unary}
func (p *parserWirTokens) parseTerm() expression {
	lhs := p.parseUnary()
	if lhs == nil {
		return nil
	}
	for {
		maybe_token := p.peek()
		if maybe_token == nil {
			return lhs
		}
		switch maybe_token.Type {
		case wir.TokenTypeStar, wir.TokenTypeSlash:
			p.advance()
			rhs := p.parseUnary()
			if rhs == nil {
				return nil
			}
			lhs = astExpressionBinary{op: *maybe_token, lhs: lhs, rhs: rhs}
		default:
			return lhs
		}
	}
}

// unary = ['-'] atom
func (p *parserWirTokens) parseUnary() expression {
	maybe_token := p.peek()
	if maybe_token != nil && maybe_token.Type == wir.TokenTypeMinus {
		p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return astExpressionUnary{op: *maybe_token, operand: operand}
	}
	return p.parseAtom()
}

// atom = INTEGER | FLOAT | IMAGINARY | 'true' | 'false' | 'PI'
//      | IDENTIFIER ['(' expression ')']
//      | '(' expression ')'
//      | '[' [expression {',' expression}] ']'
func (p *parserWirTokens) parseAtom() expression {
	maybe_token := p.peek()
	if maybe_token == nil {
		p.report(exc.CodeUnexpectedEOF, "unexpected EOF in expression")
		return nil
	}
	switch maybe_token.Type {
	case wir.TokenTypeInteger, wir.TokenTypeFloat, wir.TokenTypeImaginary, wir.TokenTypeKeywordTrue, wir.TokenTypeKeywordFalse, wir.TokenTypeKeywordPi:
		p.advance()
		return astExpressionLiteral{token: *maybe_token}
	case wir.TokenTypeIdentifier:
		p.advance()
		if next := p.peek(); next != nil && next.Type == wir.TokenTypeParenOpen {
			p.advance()
			arg := p.parseExpression()
			if arg == nil {
				return nil
			}
			if p.expectOne(wir.TokenTypeParenClose) == nil {
				return nil
			}
			return astExpressionCall{name: *maybe_token, arg: arg}
		}
		return astExpressionName{name: *maybe_token}
	case wir.TokenTypeParenOpen:
		p.advance()
		inner := p.parseExpression()
		if inner == nil {
			return nil
		}
		if p.expectOne(wir.TokenTypeParenClose) == nil {
			return nil
		}
		return inner
	case wir.TokenTypeSquareOpen:
		p.advance()
		array := astExpressionArray{}
		if next := p.peek(); next != nil && next.Type == wir.TokenTypeSquareClose {
			p.advance()
			return array
		}
		for {
			element := p.parseExpression()
			if element == nil {
				return nil
			}
			array.elements = append(array.elements, element)
			next := p.peek()
			if next == nil || next.Type != wir.TokenTypeComma {
				break
			}
			p.advance()
		}
		if p.expectOne(wir.TokenTypeSquareClose) == nil {
			return nil
		}
		return array
	default:
		p.report(exc.CodeUnexpectedToken, fmt.Sprintf("unexpected '%s' in expression", maybe_token.Value))
		return nil
	}
}
