package compiler

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"gopkg.wirelang.org/wirec/internal/exc"
	"gopkg.wirelang.org/wirec/internal/wir"
)

// transformer converts a parsed script into a wirelang program, folding
// parameter expressions along the way.
type transformer struct {
	reporter  exc.Reporter
	uri       string
	useFloats bool
	evalPi    bool
}

func (self *transformer) transform(script *astScript) *wir.Program {
	program := wir.NewProgram(wir.WithUseFloats(self.useFloats))
	eval := &evaluator{
		reporter: self.reporter,
		uri:      self.uri,
		program:  program,
		evalPi:   self.evalPi,
	}
	for _, topLevel := range script.nodes {
		switch node := topLevel.(type) {
		case *astInclude:
			program.AddInclude(node.path.Value)
		case *astBlock:
			if !self.transformBlock(eval, program, node) {
				return nil
			}
		case *astDeclaration:
			program.AddDeclaration(&wir.Declaration{
				Name:   node.name.Value,
				Kind:   node.kind,
				Params: paramNames(node.params),
				Wires:  expandWires(node.wires),
			})
		case *astGateDef:
			body := []*wir.Statement{}
			for _, bodyStmt := range node.body {
				statement := self.transformStatement(eval, bodyStmt)
				if statement == nil {
					return nil
				}
				body = append(body, statement)
			}
			program.AddGate(node.name.Value, paramNames(node.params), gateWires(node, body), body)
		case *astObsDef:
			body := []*wir.ObservableStmt{}
			for _, bodyStmt := range node.body {
				statement := self.transformObsStmt(eval, bodyStmt)
				if statement == nil {
					return nil
				}
				body = append(body, statement)
			}
			program.AddObservable(node.name.Value, paramNames(node.params), obsWires(node, body), body)
		case *astStatement:
			statement := self.transformStatement(eval, node)
			if statement == nil {
				return nil
			}
			program.AddStatement(statement)
		}
	}
	return program
}

func (self *transformer) transformBlock(eval *evaluator, program *wir.Program, block *astBlock) bool {
	for _, entry := range block.entries {
		value := eval.eval(entry.value)
		if value == nil {
			return false
		}
		if self.useFloats {
			value = wir.ConvertToFloats(value)
		}
		if block.keyword.Type == wir.TokenTypeKeywordOptions {
			program.AddOption(entry.name.Value, value)
		} else {
			program.AddConstant(entry.name.Value, value)
		}
	}
	return true
}

func (self *transformer) transformStatement(eval *evaluator, node *astStatement) *wir.Statement {
	statement := &wir.Statement{
		Name:    node.name.Value,
		Inverse: node.invCount%2 == 1,
		Wires:   expandWires(node.wires),
	}
	for _, param := range node.params {
		value := eval.eval(param)
		if value == nil {
			return nil
		}
		if self.useFloats {
			value = wir.ConvertToFloats(value)
		}
		statement.Params = append(statement.Params, value)
	}
	for _, param := range node.named {
		value := eval.eval(param.value)
		if value == nil {
			return nil
		}
		if self.useFloats {
			value = wir.ConvertToFloats(value)
		}
		statement.NamedParams = append(statement.NamedParams, wir.NamedParam{Name: param.name.Value, Value: value})
	}
	if len(node.ctrlWires) > 0 {
		statement.CtrlWires = sortWires(dedupeWires(expandWires(node.ctrlWires)))
	}
	return statement
}

func (self *transformer) transformObsStmt(eval *evaluator, node *astObsStmt) *wir.ObservableStmt {
	pref := eval.eval(node.pref)
	if pref == nil {
		return nil
	}
	if self.useFloats {
		pref = wir.ConvertToFloats(pref)
	}
	statement := &wir.ObservableStmt{Pref: pref}
	for _, factor := range node.factors {
		statement.Factors = append(statement.Factors, wir.ObservableFactor{
			Name:  factor.name.Value,
			Wires: expandWires(factor.wires),
		})
	}
	return statement
}

func paramNames(tokens []wir.Token) []any {
	params := []any{}
	for _, t := range tokens {
		switch t.Type {
		case wir.TokenTypeInteger:
			if v, err := strconv.ParseInt(t.Value, 10, 64); err == nil {
				params = append(params, v)
				continue
			}
			params = append(params, t.Value)
		case wir.TokenTypeFloat:
			if v, err := decimal.NewFromString(t.Value); err == nil {
				params = append(params, v)
				continue
			}
			params = append(params, t.Value)
		default:
			params = append(params, t.Value)
		}
	}
	return params
}

// expandWires flattens a wire list, turning ranges into their individual
// indices. Duplicates are kept.
func expandWires(elements []wireElement) wir.Wires {
	wires := wir.Wires{}
	for _, element := range elements {
		switch element := element.(type) {
		case astWireInteger:
			wires = append(wires, wir.WireIndex(element.value))
		case astWireName:
			wires = append(wires, wir.WireName(element.name))
		case astWireRange:
			for i := element.start; i < element.end; i++ {
				wires = append(wires, wir.WireIndex(i))
			}
		}
	}
	return wires
}

func dedupeWires(wires wir.Wires) wir.Wires {
	seen := map[wir.Wire]struct{}{}
	out := wir.Wires{}
	for _, w := range wires {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// sortWires orders integer wires ascending ahead of named wires, which sort
// lexicographically.
func sortWires(wires wir.Wires) wir.Wires {
	sort.SliceStable(wires, func(i int, j int) bool {
		a := wires[i]
		b := wires[j]
		if a.Named != b.Named {
			return !a.Named
		}
		if a.Named {
			return a.Name < b.Name
		}
		return a.Index < b.Index
	})
	return wires
}

// gateWires picks the wire labels for a gate definition: the declared wires
// when the header has them, otherwise indices up to the highest integer wire
// the body applies statements to. Control wires do not count.
func gateWires(node *astGateDef, body []*wir.Statement) wir.Wires {
	if node.hasWires {
		return dedupeWires(expandWires(node.wires))
	}
	if len(body) == 0 {
		return wir.Wires{}
	}
	max := int64(0)
	for _, statement := range body {
		for _, w := range statement.Wires {
			if !w.Named && w.Index > max {
				max = w.Index
			}
		}
	}
	wires := wir.Wires{}
	for i := int64(0); i <= max; i++ {
		wires = append(wires, wir.WireIndex(i))
	}
	return wires
}

func obsWires(node *astObsDef, body []*wir.ObservableStmt) wir.Wires {
	if node.hasWires {
		return dedupeWires(expandWires(node.wires))
	}
	if len(body) == 0 {
		return wir.Wires{}
	}
	max := int64(0)
	for _, statement := range body {
		for _, w := range statement.AppliedWires() {
			if !w.Named && w.Index > max {
				max = w.Index
			}
		}
	}
	wires := wir.Wires{}
	for i := int64(0); i <= max; i++ {
		wires = append(wires, wir.WireIndex(i))
	}
	return wires
}
