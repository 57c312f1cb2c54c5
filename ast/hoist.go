package ast

// Declarations lists the var names and function declarations of a code body,
// in source order, without descending into nested functions.
type Declarations struct {
	Vars      []string
	Functions []*FunctionLiteral
}

// Hoist collects the declarations that are instantiated on entry to body.
func Hoist(body []Statement) *Declarations {
	d := &Declarations{}
	seen := make(map[string]bool)
	for _, st := range body {
		d.statement(st, seen)
	}
	return d
}

func (d *Declarations) addVar(name string, seen map[string]bool) {
	if !seen[name] {
		seen[name] = true
		d.Vars = append(d.Vars, name)
	}
}

func (d *Declarations) statement(st Statement, seen map[string]bool) {
	switch st := st.(type) {
	case *VariableStatement:
		for _, b := range st.List {
			d.addVar(b.Name, seen)
		}
	case *FunctionDeclaration:
		d.Functions = append(d.Functions, st.Function)
	case *BlockStatement:
		for _, s := range st.List {
			d.statement(s, seen)
		}
	case *IfStatement:
		d.statement(st.Consequent, seen)
		if st.Alternate != nil {
			d.statement(st.Alternate, seen)
		}
	case *WhileStatement:
		d.statement(st.Body, seen)
	case *DoWhileStatement:
		d.statement(st.Body, seen)
	case *ForStatement:
		if v, ok := st.Initializer.(*VariableStatement); ok {
			d.statement(v, seen)
		}
		d.statement(st.Body, seen)
	case *ForInStatement:
		if v, ok := st.Into.(*VariableStatement); ok {
			d.statement(v, seen)
		}
		d.statement(st.Body, seen)
	case *LabelledStatement:
		d.statement(st.Statement, seen)
	case *SwitchStatement:
		for _, c := range st.Body {
			for _, s := range c.Consequent {
				d.statement(s, seen)
			}
		}
	case *TryStatement:
		d.statement(st.Body, seen)
		if st.Catch != nil {
			d.statement(st.Catch.Body, seen)
		}
		if st.Finally != nil {
			d.statement(st.Finally, seen)
		}
	}
}
