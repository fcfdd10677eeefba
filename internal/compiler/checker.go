package compiler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"gopkg.wirelang.org/wirec/internal/wir"
)

// Validator checks a wirelang program for semantic problems that the parser
// can not see. Every problem found in a run is collected and reported at
// once rather than stopping at the first one.
type Validator struct {
	program *wir.Program
	issues  []string
}

func NewValidator(program *wir.Program) *Validator {
	return &Validator{program: program}
}

type runChecks struct {
	declarations bool
	statements   bool
	dependencies bool
	definitions  bool
}

type RunOption func(*runChecks)

func WithDeclarationChecks(enabled bool) RunOption {
	return func(c *runChecks) { c.declarations = enabled }
}

func WithStatementChecks(enabled bool) RunOption {
	return func(c *runChecks) { c.statements = enabled }
}

func WithDependencyChecks(enabled bool) RunOption {
	return func(c *runChecks) { c.dependencies = enabled }
}

func WithDefinitionChecks(enabled bool) RunOption {
	return func(c *runChecks) { c.definitions = enabled }
}

// Run applies every enabled check and returns nil when the program is valid.
// Issues do not carry over between runs.
func (v *Validator) Run(opts ...RunOption) error {
	checks := runChecks{
		declarations: true,
		statements:   true,
		dependencies: true,
		definitions:  true,
	}
	for _, opt := range opts {
		opt(&checks)
	}

	v.issues = v.issues[:0]
	if checks.declarations {
		v.checkDeclarations()
	}
	if checks.statements {
		v.checkStatements()
	}
	if checks.dependencies {
		v.checkDependencies()
	}
	if checks.definitions {
		v.checkDefinitions()
	}

	if len(v.issues) == 0 {
		return nil
	}
	result := &multierror.Error{ErrorFormat: validationErrorFormat}
	for _, issue := range v.issues {
		result = multierror.Append(result, errors.New(issue))
	}
	return result
}

func validationErrorFormat(errs []error) string {
	var b strings.Builder
	_, _ = b.WriteString("wirelang program is invalid: the following issues have been detected:")
	for _, err := range errs {
		_, _ = b.WriteString("\n\t-> ")
		_, _ = b.WriteString(err.Error())
	}
	return b.String()
}

func (v *Validator) issue(format string, args ...any) {
	v.issues = append(v.issues, fmt.Sprintf(format, args...))
}

func (v *Validator) checkDeclarations() {
	for _, kind := range wir.DeclKinds {
		for _, decl := range v.program.Declarations(kind) {
			if hasDuplicateWires(decl.Wires) {
				v.issue("Declaration '%s' has duplicate wires labels.", decl)
			}
			seenParams := map[string]struct{}{}
			duplicate := false
			nonString := false
			for _, param := range decl.Params {
				name, ok := param.(string)
				if !ok {
					nonString = true
					continue
				}
				if _, ok := seenParams[name]; ok {
					duplicate = true
				}
				seenParams[name] = struct{}{}
			}
			if duplicate {
				v.issue("Declaration '%s' has duplicate parameter names.", decl)
			}
			if nonString {
				v.issue("Declaration '%s' has parameters which are not strings.", decl)
			}
		}
	}
}

func (v *Validator) checkStatements() {
	for _, statement := range v.program.Statements() {
		v.checkStatement(statement, true)
	}
}

// checkStatement validates one applied statement against its declaration.
// Statements inside gate definitions may use named wires, so the named wire
// restriction only applies at script level.
func (v *Validator) checkStatement(statement *wir.Statement, scriptLevel bool) {
	decl := v.program.Declaration(wir.DeclGate, statement.Name)
	if decl == nil {
		decl = v.program.Declaration(wir.DeclOut, statement.Name)
	}
	if decl == nil {
		// a declaration of any other kind satisfies the name, and the
		// declaration may live in an unresolved include
		declared := v.program.Declaration(wir.DeclObs, statement.Name) != nil ||
			v.program.Declaration(wir.DeclFunc, statement.Name) != nil
		if !declared && len(v.program.Includes()) == 0 {
			v.issue("Name '%s' has not been declared.", statement.Name)
		}
		return
	}

	if decl.Kind == wir.DeclOut && (statement.Inverse || len(statement.CtrlWires) > 0) {
		v.issue("Statement '%s' is an output statement but has 'ctrl' or 'inv' modifiers.", statement)
	}

	if len(statement.NamedParams) > 0 {
		if !namedParamsMatch(statement.NamedParams, decl.Params) {
			v.issue("Statement '%s' passes the wrong parameters. Expected '%s'.", statement, wir.FormatValues(decl.Params))
		}
	} else if len(statement.Params) != len(decl.Params) {
		v.issue("Statement '%s' has %d parameter(s). Expected %d.", statement, len(statement.Params), len(decl.Params))
	}

	// a declaration without wires accepts any number of them
	if len(decl.Wires) > 0 && len(statement.Wires) != len(decl.Wires) {
		v.issue("Statement '%s' has %d wire(s). Expected %d.", statement, len(statement.Wires), len(decl.Wires))
	}

	if hasDuplicateWires(statement.Wires) {
		v.issue("Statement '%s' is applied to duplicate wires.", statement)
	}

	if scriptLevel {
		for _, w := range statement.Wires {
			if w.Named {
				v.issue("Statement '%s' is applied to named wires. Only integer wire labels are allowed at a script level.", statement)
				break
			}
		}
	}

	if len(statement.CtrlWires) > 0 {
		applied := map[wir.Wire]struct{}{}
		for _, w := range statement.Wires {
			applied[w] = struct{}{}
		}
		overlap := wir.Wires{}
		for _, w := range statement.CtrlWires {
			if _, ok := applied[w]; ok {
				overlap = append(overlap, w)
			}
		}
		if len(overlap) > 0 {
			v.issue("Statement '%s' has control wires %s which are also applied.", statement, formatWireSet(overlap))
		}
	}
}

func namedParamsMatch(named []wir.NamedParam, declared []any) bool {
	expected := map[string]struct{}{}
	for _, param := range declared {
		if name, ok := param.(string); ok {
			expected[name] = struct{}{}
		}
	}
	passed := map[string]struct{}{}
	for _, param := range named {
		if _, ok := expected[param.Name]; !ok {
			return false
		}
		passed[param.Name] = struct{}{}
	}
	return len(passed) == len(expected)
}

func hasDuplicateWires(wires wir.Wires) bool {
	seen := map[wir.Wire]struct{}{}
	for _, w := range wires {
		if _, ok := seen[w]; ok {
			return true
		}
		seen[w] = struct{}{}
	}
	return false
}

// formatWireSet renders a wire set as {0, 1, 'a'} with integer wires sorted
// ahead of quoted named wires.
func formatWireSet(wires wir.Wires) string {
	sorted := sortWires(dedupeWires(wires))
	parts := make([]string, 0, len(sorted))
	for _, w := range sorted {
		if w.Named {
			parts = append(parts, "'"+w.Name+"'")
		} else {
			parts = append(parts, strconv.FormatInt(w.Index, 10))
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (v *Validator) checkDependencies() {
	for _, name := range v.program.GateNames() {
		if v.partOfGateCycle(name, name, map[string]struct{}{}) {
			v.issue("Gate definition '%s' has a circular dependency.", name)
		}
	}
	for _, name := range v.program.ObservableNames() {
		if v.partOfObsCycle(name, name, map[string]struct{}{}) {
			v.issue("Observable definition '%s' has a circular dependency.", name)
		}
	}
}

// partOfGateCycle reports whether root is reachable from name through gate
// definition bodies.
func (v *Validator) partOfGateCycle(root string, name string, visited map[string]struct{}) bool {
	body, ok := v.program.Gate(name)
	if !ok {
		return false
	}
	for _, statement := range body {
		if statement.Name == root {
			return true
		}
		if _, seen := visited[statement.Name]; seen {
			continue
		}
		visited[statement.Name] = struct{}{}
		if v.partOfGateCycle(root, statement.Name, visited) {
			return true
		}
	}
	return false
}

// partOfObsCycle is the observable analog, following factor names.
func (v *Validator) partOfObsCycle(root string, name string, visited map[string]struct{}) bool {
	body, ok := v.program.Observable(name)
	if !ok {
		return false
	}
	for _, statement := range body {
		for _, factor := range statement.Factors {
			if factor.Name == root {
				return true
			}
			if _, seen := visited[factor.Name]; seen {
				continue
			}
			visited[factor.Name] = struct{}{}
			if v.partOfObsCycle(root, factor.Name, visited) {
				return true
			}
		}
	}
	return false
}

func (v *Validator) checkDefinitions() {
	for _, name := range v.program.GateNames() {
		v.checkGateDefinition(name)
	}
	for _, name := range v.program.ObservableNames() {
		v.checkObsDefinition(name)
	}
}

func (v *Validator) checkGateDefinition(name string) {
	decl := v.program.Declaration(wir.DeclGate, name)
	body, ok := v.program.Gate(name)
	if decl == nil || !ok {
		return
	}

	applied := wir.Wires{}
	for _, statement := range body {
		applied = append(applied, statement.Wires...)
	}
	v.checkDefinitionWires(name, decl, applied)

	for _, statement := range body {
		v.checkStatement(statement, false)
	}
}

func (v *Validator) checkObsDefinition(name string) {
	decl := v.program.Declaration(wir.DeclObs, name)
	body, ok := v.program.Observable(name)
	if decl == nil || !ok {
		return
	}

	applied := wir.Wires{}
	for _, statement := range body {
		applied = append(applied, statement.AppliedWires()...)
	}
	v.checkDefinitionWires(name, decl, applied)

	for _, statement := range body {
		v.checkObsStmt(decl, statement)
	}
}

// checkDefinitionWires compares the wires a definition body uses against the
// wires its declaration carries. The comparison ignores order and repeats.
func (v *Validator) checkDefinitionWires(name string, decl *wir.Declaration, applied wir.Wires) {
	for _, param := range decl.Params {
		paramName, ok := param.(string)
		if !ok {
			continue
		}
		if decl.Wires.Contains(wir.WireName(paramName)) {
			v.issue("Definition '%s' is invalid. Wire and parameter names must differ.", name)
			break
		}
	}

	declaredNamed := false
	for _, w := range decl.Wires {
		if w.Named {
			declaredNamed = true
			break
		}
	}
	if declaredNamed {
		for _, w := range applied {
			if !w.Named {
				v.issue("Definition '%s' is invalid. Only named wires can be applied when declaring named wires.", name)
				break
			}
		}
	}

	appliedSet := dedupeWires(applied)
	if !sameWireSet(appliedSet, decl.Wires) {
		v.issue("Definition '%s' is invalid. Applied wires [%s] differ from declared wires [%s].", name, appliedSet, decl.Wires)
	}
}

func sameWireSet(a wir.Wires, b wir.Wires) bool {
	as := map[wir.Wire]struct{}{}
	for _, w := range a {
		as[w] = struct{}{}
	}
	bs := map[wir.Wire]struct{}{}
	for _, w := range b {
		bs[w] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for w := range as {
		if _, ok := bs[w]; !ok {
			return false
		}
	}
	return true
}

func (v *Validator) checkObsStmt(decl *wir.Declaration, statement *wir.ObservableStmt) {
	if pref, ok := statement.Pref.(string); ok {
		name := stem(pref)
		if !v.validPrefactor(decl, name) && len(v.program.Includes()) == 0 {
			v.issue("Statement '%s' has an undeclared prefactor variable '%s'.", statement, name)
		}
	}

	undeclared := []string{}
	seen := map[string]struct{}{}
	for _, factor := range statement.Factors {
		if _, ok := seen[factor.Name]; ok {
			continue
		}
		seen[factor.Name] = struct{}{}
		if v.program.Declaration(wir.DeclObs, factor.Name) == nil {
			undeclared = append(undeclared, factor.Name)
		}
	}
	if len(undeclared) > 0 && len(v.program.Includes()) == 0 {
		v.issue("Observable statement '%s' is invalid. Observable(s) %s have not been declared.", statement, formatNameList(undeclared))
	}

	if hasDuplicateWires(statement.AppliedWires()) {
		v.issue("Observable statement '%s' is invalid. Products of observables cannot be applied to the same wires.", statement)
	}
}

func (v *Validator) validPrefactor(decl *wir.Declaration, name string) bool {
	if name == "PI" {
		return true
	}
	for _, param := range decl.Params {
		if paramName, ok := param.(string); ok && paramName == name {
			return true
		}
	}
	if _, ok := v.program.Constant(name); ok {
		return true
	}
	return v.program.Declaration(wir.DeclFunc, name) != nil
}

// stem reduces a function call spelling to the bare function name.
func stem(s string) string {
	if i := strings.Index(s, "("); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// formatNameList renders names as ['a', 'b'].
func formatNameList(names []string) string {
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		quoted = append(quoted, "'"+name+"'")
	}
	sort.Strings(quoted)
	return "[" + strings.Join(quoted, ", ") + "]"
}
