package wir

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// DeclKind is the kind of a wirelang declaration.
type DeclKind string

const (
	DeclGate DeclKind = "gate"
	DeclObs  DeclKind = "obs"
	DeclOut  DeclKind = "out"
	DeclFunc DeclKind = "func"
)

// DeclKinds lists every declaration kind in canonical order.
var DeclKinds = []DeclKind{DeclGate, DeclFunc, DeclOut, DeclObs}

// Title returns the kind with its first letter capitalized, as used in
// diagnostics.
func (k DeclKind) Title() string {
	if len(k) == 0 {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Wire is a single wire label, either an integer index or a name.
type Wire struct {
	Name  string
	Index int64
	Named bool
}

func WireIndex(i int64) Wire {
	return Wire{Index: i}
}

func WireName(n string) Wire {
	return Wire{Name: n, Named: true}
}

func (w Wire) String() string {
	if w.Named {
		return w.Name
	}
	return fmt.Sprintf("%d", w.Index)
}

// Wires is a list of wire labels.
type Wires []Wire

func (ws Wires) String() string {
	elems := make([]string, len(ws))
	for i, w := range ws {
		elems[i] = w.String()
	}
	return strings.Join(elems, ", ")
}

// Contains reports whether w appears in the list.
func (ws Wires) Contains(w Wire) bool {
	for _, o := range ws {
		if o == w {
			return true
		}
	}
	return false
}

// NamedParam is a single key: value entry of a named parameter list.
type NamedParam struct {
	Name  string
	Value any
}

// Declaration names a gate, observable, output, or function along with its
// parameter names and wire labels.
type Declaration struct {
	Name   string
	Kind   DeclKind
	Params []any
	Wires  Wires
}

// Statement applies a named gate or output to a list of wires, optionally
// with parameters and with inverse and control modifiers.
type Statement struct {
	Name        string
	Params      []any
	NamedParams []NamedParam
	Wires       Wires
	Inverse     bool
	CtrlWires   Wires
}

// ObservableFactor is one factor of an observable product, such as X[0].
type ObservableFactor struct {
	Name   string
	Params []any
	Wires  Wires
}

/// ObservableStmt is one term of an observable definition body: a prefactor
// and a product of factors.
type ObservableStmt struct {
	Pref    any
	Factors []ObservableFactor
}

// AppliedWires returns every wire the factors of the term are applied to,
// in order, including duplicates.
func (s *ObservableStmt) AppliedWires() Wires {
	var out Wires
	for _, f := range s.Factors {
		out = append(out, f.Wires...)
	}
	return out
}

// Program is the mutable accumulation model for a single wirelang script.
// Zero values are not usable; construct with NewProgram.
type Program struct {
	version   string
	useFloats bool

	calledFunctions map[string]struct{}
	declarations    map[DeclKind][]*Declaration
	gates           map[string][]*Statement
	gateOrder       []string
	observables     map[string][]*ObservableStmt
	obsOrder        []string
	includes        []string
	options         map[string]any
	optionOrder     []string
	constants       map[string]any
	constantOrder   []string
	statements      []*Statement
	variables       map[string]struct{}

	warnings []string
}

// ProgramOption configures a Program at construction time.
type ProgramOption func(*Program)

// WithVersion sets the program version. The value is not checked here; use
// ValidateVersion before trusting external input.
func WithVersion(v string) ProgramOption {
	return func(p *Program) {
		p.version = v
	}
}

// WithUseFloats controls whether numeric results surface as machine floats
// rather than exact decimals. On by default.
func WithUseFloats(v bool) ProgramOption {
	return func(p *Program) {
		p.useFloats = v
	}
}

func NewProgram(opts ...ProgramOption) *Program {
	p := &Program{
		version:         "0.1.0",
		useFloats:       true,
		calledFunctions: map[string]struct{}{},
		declarations: map[DeclKind][]*Declaration{
			DeclGate: {},
			DeclFunc: {},
			DeclOut:  {},
			DeclObs:  {},
		},
		gates:       map[string][]*Statement{},
		observables: map[string][]*ObservableStmt{},
		options:     map[string]any{},
		constants:   map[string]any{},
		variables:   map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Program) Version() string {
	return p.version
}

func (p *Program) UseFloats() bool {
	return p.useFloats
}

// Warnings returns the diagnostics accumulated by non-fatal operations, in
// the order they were raised.
func (p *Program) Warnings() []string {
	return p.warnings
}

func (p *Program) warn(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

// Declarations returns the declarations of the given kind in script order.
func (p *Program) Declarations(kind DeclKind) []*Declaration {
	return p.declarations[kind]
}

// Declaration returns the most recent declaration with the given name and
// kind, or nil.
func (p *Program) Declaration(kind DeclKind, name string) *Declaration {
	decls := p.declarations[kind]
	for i := len(decls) - 1; i >= 0; i-- {
		if decls[i].Name == name {
			return decls[i]
		}
	}
	return nil
}

// AddDeclaration appends a declaration. A repeated name within a kind warns
// but both declarations are kept; lookups resolve to the latest one.
func (p *Program) AddDeclaration(decl *Declaration) {
	if p.Declaration(decl.Kind, decl.Name) != nil {
		p.warn("%s '%s' already declared.", decl.Kind.Title(), decl.Name)
	}
	p.declarations[decl.Kind] = append(p.declarations[decl.Kind], decl)
}

// AddGate registers a gate definition along with its derived declaration.
// Redefining a gate warns and replaces both the body and the declaration in
// place.
func (p *Program) AddGate(name string, params []any, wires Wires, body []*Statement) {
	decl := &Declaration{Name: name, Kind: DeclGate, Params: params, Wires: wires}
	if _, ok := p.gates[name]; ok {
		p.warn("Gate '%s' already defined.", name)
		p.replaceDeclaration(decl)
		p.gates[name] = body
		return
	}
	p.declarations[DeclGate] = append(p.declarations[DeclGate], decl)
	p.gates[name] = body
	p.gateOrder = append(p.gateOrder, name)
}

// AddObservable registers an observable definition along with its derived
// declaration, with the same replacement behavior as AddGate.
func (p *Program) AddObservable(name string, params []any, wires Wires, body []*ObservableStmt) {
	decl := &Declaration{Name: name, Kind: DeclObs, Params: params, Wires: wires}
	if _, ok := p.observables[name]; ok {
		p.warn("Observable '%s' already defined.", name)
		p.replaceDeclaration(decl)
		p.observables[name] = body
		return
	}
	p.declarations[DeclObs] = append(p.declarations[DeclObs], decl)
	p.observables[name] = body
	p.obsOrder = append(p.obsOrder, name)
}

func (p *Program) replaceDeclaration(decl *Declaration) {
	decls := p.declarations[decl.Kind]
	for i := len(decls) - 1; i >= 0; i-- {
		if decls[i].Name == decl.Name {
			decls[i] = decl
			return
		}
	}
	p.declarations[decl.Kind] = append(decls, decl)
}

// GateNames returns the defined gate names in definition order.
func (p *Program) GateNames() []string {
	return p.gateOrder
}

// Gate returns the body of the named gate definition.
func (p *Program) Gate(name string) ([]*Statement, bool) {
	body, ok := p.gates[name]
	return body, ok
}

// ObservableNames returns the defined observable names in definition order.
func (p *Program) ObservableNames() []string {
	return p.obsOrder
}

// Observable returns the body of the named observable definition.
func (p *Program) Observable(name string) ([]*ObservableStmt, bool) {
	body, ok := p.observables[name]
	return body, ok
}

// AddInclude appends an include. Duplicates warn but are kept.
func (p *Program) AddInclude(include string) {
	for _, inc := range p.includes {
		if inc == include {
			p.warn("Module '%s' is already included.", include)
			break
		}
	}
	p.includes = append(p.includes, include)
}

func (p *Program) Includes() []string {
	return p.includes
}

// ClearIncludes removes every include from the program.
func (p *Program) ClearIncludes() {
	p.includes = nil
}

// AddOption sets a script option. Setting the same key again warns and
// overwrites the value while keeping the key's original position.
func (p *Program) AddOption(name string, value any) {
	if _, ok := p.options[name]; ok {
		p.warn("Option '%s' already set. Replacing old value with new value.", name)
	} else {
		p.optionOrder = append(p.optionOrder, name)
	}
	p.options[name] = value
}

func (p *Program) OptionNames() []string {
	return p.optionOrder
}

func (p *Program) Option(name string) (any, bool) {
	v, ok := p.options[name]
	return v, ok
}

// AddConstant sets a script constant with the same replacement behavior as
// AddOption.
func (p *Program) AddConstant(name string, value any) {
	if _, ok := p.constants[name]; ok {
		p.warn("Constant '%s' already set. Replacing old value with new value.", name)
	} else {
		p.constantOrder = append(p.constantOrder, name)
	}
	p.constants[name] = value
}

func (p *Program) ConstantNames() []string {
	return p.constantOrder
}

func (p *Program) Constant(name string) (any, bool) {
	v, ok := p.constants[name]
	return v, ok
}

func (p *Program) AddStatement(stmt *Statement) {
	p.statements = append(p.statements, stmt)
}

func (p *Program) Statements() []*Statement {
	return p.statements
}

func (p *Program) AddVariable(name string) {
	p.variables[name] = struct{}{}
}

func (p *Program) HasVariable(name string) bool {
	_, ok := p.variables[name]
	return ok
}

func (p *Program) Variables() []string {
	out := make([]string, 0, len(p.variables))
	for name := range p.variables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (p *Program) AddCalledFunction(name string) {
	p.calledFunctions[name] = struct{}{}
}

func (p *Program) HasCalledFunction(name string) bool {
	_, ok := p.calledFunctions[name]
	return ok
}

func (p *Program) CalledFunctions() []string {
	out := make([]string, 0, len(p.calledFunctions))
	for name := range p.calledFunctions {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Search returns the wires or params attribute of the most recent
// declaration with the given kind and name.
func (p *Program) Search(declType string, attrType string, name string) (any, error) {
	kind := DeclKind(declType)
	if _, ok := p.declarations[kind]; !ok {
		return nil, errors.Errorf("Declaration type '%s' must be one of {'gate', 'func', 'out', 'obs'}", declType)
	}
	if attrType != "wires" && attrType != "params" {
		return nil, errors.Errorf("Attribute type '%s' must be one of {'wires', 'params'}", attrType)
	}
	decl := p.Declaration(kind, name)
	if decl == nil {
		return nil, errors.Errorf("No %s declarations with the name '%s' were found", declType, name)
	}
	if attrType == "wires" {
		return decl.Wires, nil
	}
	return decl.Params, nil
}

// Merge combines one or more programs into a new one. All inputs must share
// a version. Declarations, statements, and includes are concatenated in
// input order while definitions, options, and constants from later programs
// overwrite earlier ones.
func Merge(programs ...*Program) (*Program, error) {
	if len(programs) == 0 {
		return nil, errors.New("Merging requires at least one wirelang program")
	}
	version := programs[0].version
	useFloats := programs[0].useFloats
	floatsDiffer := false
	for _, prog := range programs[1:] {
		if prog.version != version {
			return nil, errors.New("wirelang programs with different versions cannot be merged")
		}
		if prog.useFloats != useFloats {
			floatsDiffer = true
		}
	}

	result := NewProgram(WithVersion(version), WithUseFloats(useFloats))
	if floatsDiffer {
		result.warn("wirelang programs with different float settings are being merged. Using the first encountered float setting.")
	}
	for _, prog := range programs {
		for name := range prog.calledFunctions {
			result.calledFunctions[name] = struct{}{}
		}
		for _, kind := range DeclKinds {
			result.declarations[kind] = append(result.declarations[kind], prog.declarations[kind]...)
		}
		for _, name := range prog.gateOrder {
			if _, ok := result.gates[name]; !ok {
				result.gateOrder = append(result.gateOrder, name)
			}
			result.gates[name] = prog.gates[name]
		}
		for _, name := range prog.obsOrder {
			if _, ok := result.observables[name]; !ok {
				result.obsOrder = append(result.obsOrder, name)
			}
			result.observables[name] = prog.observables[name]
		}
		result.includes = append(result.includes, prog.includes...)
		for _, name := range prog.optionOrder {
			if _, ok := result.options[name]; !ok {
				result.optionOrder = append(result.optionOrder, name)
			}
			result.options[name] = prog.options[name]
		}
		for _, name := range prog.constantOrder {
			if _, ok := result.constants[name]; !ok {
				result.constantOrder = append(result.constantOrder, name)
			}
			result.constants[name] = prog.constants[name]
		}
		result.statements = append(result.statements, prog.statements...)
		for name := range prog.variables {
			result.variables[name] = struct{}{}
		}
	}
	return result, nil
}

// IncludeKey normalizes an include path into its library name: the angle
// bracket form <name> and any directory prefix or .wir extension are
// stripped.
func IncludeKey(include string) string {
	key := strings.TrimSuffix(strings.TrimPrefix(include, "<"), ">")
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		key = key[i+1:]
	}
	return strings.TrimSuffix(key, ".wir")
}

// Resolve flattens the include hierarchy rooted at the named program. Every
// reachable program is merged exactly once in depth-first post-order, with
// the root last, and the result carries no includes. Included programs must
// not contain statements.
func Resolve(library map[string]*Program, name string) (*Program, error) {
	var ordered []*Program
	resolved := map[string]bool{}
	path := map[string]bool{}

	var visit func(key string, root bool) error
	visit = func(key string, root bool) error {
		if path[key] {
			return errors.Errorf("wirelang program '%s' has a circular dependency", key)
		}
		if resolved[key] {
			return nil
		}
		prog, ok := library[key]
		if !ok {
			return errors.Errorf("wirelang program '%s' cannot be found", key)
		}
		if !root && len(prog.statements) > 0 {
			return errors.Errorf("wirelang program '%s' contains a statement", key)
		}
		path[key] = true
		for _, include := range prog.includes {
			if err := visit(IncludeKey(include), false); err != nil {
				return err
			}
		}
		delete(path, key)
		resolved[key] = true
		ordered = append(ordered, prog)
		return nil
	}

	if err := visit(IncludeKey(name), true); err != nil {
		return nil, err
	}
	result, err := Merge(ordered...)
	if err != nil {
		return nil, err
	}
	result.ClearIncludes()
	return result, nil
}

var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ValidateVersion checks that a version value is a strict major.minor.patch
// string.
func ValidateVersion(version any) error {
	s, ok := version.(string)
	if !ok {
		return errors.Errorf("Version '%v' must be a string", version)
	}
	if !versionPattern.MatchString(s) {
		return errors.Errorf("Version '%s' must be a semantic version", s)
	}
	return nil
}
