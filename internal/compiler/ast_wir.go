package compiler

import (
	"gopkg.wirelang.org/wirec/internal/wir"
)

type astNode struct {
	loc wir.Location
}

// node is the closed set of wirelang AST types.
type node interface {
	node()
}

// topLevel is the closed set of nodes that may appear directly in a script.
type topLevel interface {
	node
	topLevel()
}

// expression is the closed set of value-producing nodes.
type expression interface {
	node
	expression()
}

// wireElement is one entry of a wire list: an integer label, a named label,
// or an integer range.
type wireElement interface {
	node
	wireElement()
}

type astScript struct {
	astNode
	nodes []topLevel
}

func (astScript) node() {}

// astInclude is a single `use path;` entry. The path keeps its source form,
// including the angle brackets of the library form.
type astInclude struct {
	astNode
	path wir.Token
}

func (astInclude) node()     {}
func (astInclude) topLevel() {}

// astBlock is an options: or constants: block.
type astBlock struct {
	astNode
	keyword wir.Token
	entries []astBlockEntry
}

type astBlockEntry struct {
	astNode
	name  wir.Token
	value expression
}

func (astBlock) node()      {}
func (astBlock) topLevel()  {}
func (astBlockEntry) node() {}

type astDeclaration struct {
	astNode
	kind   wir.DeclKind
	name   wir.Token
	params []wir.Token
	wires  []wireElement
}

func (astDeclaration) node()     {}
func (astDeclaration) topLevel() {}

type astGateDef struct {
	astNode
	name      wir.Token
	params    []wir.Token
	wires     []wireElement
	hasWires  bool
	hasParams bool
	body      []*astStatement
}

func (astGateDef) node()     {}
func (astGateDef) topLevel() {}

type astObsDef struct {
	astNode
	name      wir.Token
	params    []wir.Token
	wires     []wireElement
	hasWires  bool
	hasParams bool
	body      []*astObsStmt
}

func (astObsDef) node()     {}
func (astObsDef) topLevel() {}

// astStatement is a gate or output application, optionally prefixed with
// inv and ctrl modifiers.
type astStatement struct {
	astNode
	invCount  int
	ctrlWires []wireElement
	name      wir.Token
	params    []expression
	named     []astNamedParam
	wires     []wireElement
}

func (astStatement) node()     {}
func (astStatement) topLevel() {}

type astNamedParam struct {
	astNode
	name  wir.Token
	value expression
}

func (astNamedParam) node() {}

// astObsStmt is one term of an observable definition body.
type astObsStmt struct {
	astNode
	pref    expression
	factors []astObsFactor
}

func (astObsStmt) node() {}

type astObsFactor struct {
	astNode
	name  wir.Token
	wires []wireElement
}

func (astObsFactor) node() {}

type astWireInteger struct {
	astNode
	value int64
}

func (astWireInteger) node()        {}
func (astWireInteger) wireElement() {}

type astWireName struct {
	astNode
	name string
}

func (astWireName) node()        {}
func (astWireName) wireElement() {}

// astWireRange is the end exclusive a..b form.
type astWireRange struct {
	astNode
	start int64
	end   int64
}

func (astWireRange) node()        {}
func (astWireRange) wireElement() {}

type astExpressionLiteral struct {
	astNode
	token wir.Token
}

func (astExpressionLiteral) node()       {}
func (astExpressionLiteral) expression() {}

type astExpressionName struct {
	astNode
	name wir.Token
}

func (astExpressionName) node()       {}
func (astExpressionName) expression() {}

type astExpressionBinary struct {
	astNode
	op  wir.Token
	lhs expression
	rhs expression
}

func (astExpressionBinary) node()       {}
func (astExpressionBinary) expression() {}

type astExpressionUnary struct {
	astNode
	op      wir.Token
	operand expression
}

func (astExpressionUnary) node()       {}
func (astExpressionUnary) expression() {}

// astExpressionCall is a single-argument function application.
type astExpressionCall struct {
	astNode
	name wir.Token
	arg  expression
}

func (astExpressionCall) node()       {}
func (astExpressionCall) expression() {}

// astExpressionArray is a possibly nested value list, allowed in option and
// constant values and in named parameter values.
type astExpressionArray struct {
	astNode
	elements []expression
}

func (astExpressionArray) node()       {}
func (astExpressionArray) expression() {}
