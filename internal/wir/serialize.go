package wir

import (
	"strings"
)

const bodyIndent = "    "

func (d *Declaration) String() string {
	var b strings.Builder
	b.WriteString(string(d.Kind))
	b.WriteString(" ")
	b.WriteString(d.Name)
	if len(d.Params) > 0 {
		b.WriteString("(")
		b.WriteString(FormatValues(d.Params))
		b.WriteString(")")
	}
	if len(d.Wires) > 0 {
		b.WriteString("[")
		b.WriteString(d.Wires.String())
		b.WriteString("]")
	}
	return b.String()
}

func (s *Statement) String() string {
	var b strings.Builder
	if len(s.CtrlWires) > 0 {
		b.WriteString("ctrl[")
		b.WriteString(s.CtrlWires.String())
		b.WriteString("] ")
	}
	if s.Inverse {
		b.WriteString("inv ")
	}
	b.WriteString(s.Name)
	if len(s.Params) > 0 {
		b.WriteString("(")
		b.WriteString(FormatValues(s.Params))
		b.WriteString(")")
	} else if len(s.NamedParams) > 0 {
		elems := make([]string, len(s.NamedParams))
		for i, np := range s.NamedParams {
			elems[i] = np.Name + ": " + FormatValue(np.Value)
		}
		b.WriteString("(")
		b.WriteString(strings.Join(elems, ", "))
		b.WriteString(")")
	}
	b.WriteString(" | [")
	b.WriteString(s.Wires.String())
	b.WriteString("]")
	return b.String()
}

func (f ObservableFactor) String() string {
	var b strings.Builder
	b.WriteString(f.Name)
	if len(f.Params) > 0 {
		b.WriteString("(")
		b.WriteString(FormatValues(f.Params))
		b.WriteString(")")
	}
	if len(f.Wires) > 0 {
		b.WriteString("[")
		b.WriteString(f.Wires.String())
		b.WriteString("]")
	}
	return b.String()
}

func (s *ObservableStmt) String() string {
	factors := make([]string, len(s.Factors))
	for i, f := range s.Factors {
		factors[i] = f.String()
	}
	product := strings.Join(factors, " @ ")
	if s.Pref == nil {
		return product
	}
	return FormatValue(s.Pref) + ", " + product
}

// String renders the program as canonical wirelang text. Parsing the output
// yields a semantically equal program. Declarations derived from gate and
// observable definitions are folded into the definition blocks.
func (p *Program) String() string {
	var lines []string

	for _, include := range p.includes {
		lines = append(lines, "use "+include+";")
	}
	if len(p.optionOrder) > 0 {
		lines = append(lines, "options:")
		for _, name := range p.optionOrder {
			lines = append(lines, bodyIndent+name+": "+FormatValue(p.options[name])+";")
		}
		lines = append(lines, "end;")
	}
	if len(p.constantOrder) > 0 {
		lines = append(lines, "constants:")
		for _, name := range p.constantOrder {
			lines = append(lines, bodyIndent+name+": "+FormatValue(p.constants[name])+";")
		}
		lines = append(lines, "end;")
	}

	for _, kind := range DeclKinds {
		for _, decl := range p.declarations[kind] {
			if kind == DeclGate {
				if _, ok := p.gates[decl.Name]; ok {
					continue
				}
			}
			if kind == DeclObs {
				if _, ok := p.observables[decl.Name]; ok {
					continue
				}
			}
			lines = append(lines, decl.String()+";")
		}
	}

	for _, name := range p.gateOrder {
		decl := p.Declaration(DeclGate, name)
		lines = append(lines, definitionHeader("gate", name, decl))
		for _, stmt := range p.gates[name] {
			lines = append(lines, bodyIndent+stmt.String()+";")
		}
		lines = append(lines, "end;")
	}
	for _, name := range p.obsOrder {
		decl := p.Declaration(DeclObs, name)
		lines = append(lines, definitionHeader("obs", name, decl))
		for _, stmt := range p.observables[name] {
			lines = append(lines, bodyIndent+stmt.String()+";")
		}
		lines = append(lines, "end;")
	}

	for _, stmt := range p.statements {
		lines = append(lines, stmt.String()+";")
	}

	return strings.Join(lines, "\n")
}

func definitionHeader(keyword string, name string, decl *Declaration) string {
	var b strings.Builder
	b.WriteString(keyword)
	b.WriteString(" ")
	b.WriteString(name)
	if decl != nil && len(decl.Params) > 0 {
		b.WriteString("(")
		b.WriteString(FormatValues(decl.Params))
		b.WriteString(")")
	}
	if decl != nil && len(decl.Wires) > 0 {
		b.WriteString("[")
		b.WriteString(decl.Wires.String())
		b.WriteString("]")
	}
	b.WriteString(":")
	return b.String()
}

// Equal reports whether two programs have the same canonical serialization.
func (p *Program) Equal(o *Program) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.String() == o.String()
}
