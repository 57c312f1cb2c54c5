package escore

import (
	"math"
	"strings"
	"unicode/utf16"

	"github.com/jsconform/escore/ast"
)

type completionType int

const (
	completionNormal completionType = iota
	completionReturn
	completionBreak
	completionContinue
)

// completion is the result of a statement (ES5 8.9). A nil value is empty.
type completion struct {
	kind  completionType
	value Value
	label string
}

func nilSafe(v Value) Value {
	if v != nil {
		return v
	}
	return _undefined
}

// reference is the result of evaluating an identifier or a property accessor.
type reference interface {
	get() Value
	set(v Value)
	delete() bool
}

type envRef struct {
	r      *Runtime
	env    *Environment
	name   string
	strict bool
}

func (ref *envRef) get() Value {
	return ref.env.getBindingValue(ref.r, ref.name, ref.strict)
}

func (ref *envRef) set(v Value) {
	ref.env.setMutableBinding(ref.r, ref.name, v, ref.strict)
}

func (ref *envRef) delete() bool {
	return ref.env.deleteBinding(ref.name)
}

type unresolvedRef struct {
	r      *Runtime
	name   string
	strict bool
}

func (ref *unresolvedRef) get() Value {
	panic(ref.r.referenceError("%s is not defined", ref.name))
}

func (ref *unresolvedRef) set(v Value) {
	if ref.strict {
		panic(ref.r.referenceError("%s is not defined", ref.name))
	}
	ref.r.globalObject.setStr(ref.name, v, false)
}

func (ref *unresolvedRef) delete() bool {
	return true
}

type propRef struct {
	r      *Runtime
	base   Value
	name   string
	strict bool
}

func (ref *propRef) get() Value {
	return ref.r.getV(ref.base, ref.name)
}

func (ref *propRef) set(v Value) {
	ref.r.putV(ref.base, ref.name, v, ref.strict)
}

func (ref *propRef) delete() bool {
	return ref.r.toObject(ref.base).self.deleteStr(ref.name, ref.strict)
}

func (r *Runtime) frame() *CallFrame {
	return r.stack.top
}

func (r *Runtime) resolveIdentifier(name string) reference {
	frame := r.frame()
	if env := frame.lexEnv.lookup(name); env != nil {
		return &envRef{r: r, env: env, name: name, strict: frame.isStrict}
	}
	return &unresolvedRef{r: r, name: name, strict: frame.isStrict}
}

// getV implements GetValue for a property reference, including primitive bases.
func (r *Runtime) getV(base Value, name string) Value {
	switch b := base.(type) {
	case *Object:
		return nilSafe(b.getStr(name, nil))
	case valueString:
		if name == stringLength {
			return intToValue(int64(b.length()))
		}
		if idx, ok := strToIdx(name); ok {
			units := b.utf16()
			if int(idx) < len(units) {
				return newStringValue(string(utf16.Decode(units[idx : idx+1])))
			}
			return _undefined
		}
	case valueUndefined, valueNull:
		panic(r.typeError("Cannot read property '%s' of %s", name, base.String()))
	}
	return nilSafe(base.baseObject(r).getStr(name, base))
}

// putV implements PutValue for a property reference (ES5 8.7.2).
func (r *Runtime) putV(base Value, name string, v Value, strict bool) {
	switch b := base.(type) {
	case *Object:
		b.setStr(name, v, strict)
		return
	case valueUndefined, valueNull:
		panic(r.typeError("Cannot set property '%s' of %s", name, base.String()))
	}
	if prop := base.baseObject(r).lookup(name); prop != nil && prop.accessor && prop.setterFunc != nil {
		prop.set(base, v)
		return
	}
	r.typeErrorResult(strict, "Cannot create property '%s' on %s '%s'", name, typeOf(base), base.String())
}

func (r *Runtime) hoist(lit *ast.FunctionLiteral) *ast.Declarations {
	if d, ok := r.hoisted[lit]; ok {
		return d
	}
	d := ast.Hoist(lit.Body)
	if r.hoisted == nil {
		r.hoisted = make(map[*ast.FunctionLiteral]*ast.Declarations)
	}
	r.hoisted[lit] = d
	return d
}

// instantiate performs declaration binding instantiation (ES5 10.5):
// function declarations first, then vars.
func (r *Runtime) instantiate(decls *ast.Declarations, frame *CallFrame, deletable bool) {
	for _, fn := range decls.Functions {
		frame.varEnv.declareFunction(fn.Name, r.newFunction(fn, frame.lexEnv, frame.isStrict), deletable)
	}
	for _, name := range decls.Vars {
		frame.varEnv.declareVar(name, deletable)
	}
}

func (r *Runtime) runScript(p *ast.Program) Value {
	frame := &CallFrame{
		isStrict: p.Strict,
		name:     p.Name,
		this:     r.globalObject,
		lexEnv:   r.globalEnv,
		varEnv:   r.globalEnv,
	}
	r.enter(frame)
	defer r.stack.pop()
	r.instantiate(ast.Hoist(p.Body), frame, false)
	return nilSafe(r.execList(p.Body).value)
}

func (r *Runtime) callFunction(f *funcObject, this Value, args []Value) Value {
	if !f.strict {
		if isNullish(this) {
			this = r.globalObject
		} else if _, ok := this.(*Object); !ok {
			this = r.toObject(this)
		}
	} else if this == nil {
		this = _undefined
	}
	lit := f.lit
	env := newEnvironment(envFunction, f.scope, f.strict)
	frame := &CallFrame{
		fn:       f.val,
		isStrict: f.strict,
		name:     lit.Name,
		this:     this,
		lexEnv:   env,
		varEnv:   env,
	}
	r.enter(frame)
	defer r.stack.pop()

	for i, name := range lit.ParameterList {
		v := _undefined
		if i < len(args) {
			v = args[i]
		}
		env.createBinding(name, v, true)
	}
	decls := r.hoist(lit)
	if env.bindings["arguments"] == nil && !declaresFunction(decls, "arguments") {
		env.createBinding("arguments", r.newArguments(f, args), !f.strict)
	}
	r.instantiate(decls, frame, false)

	c := r.execList(lit.Body)
	if c.kind == completionReturn {
		return c.value
	}
	return _undefined
}

func declaresFunction(decls *ast.Declarations, name string) bool {
	for _, fn := range decls.Functions {
		if fn.Name == name {
			return true
		}
	}
	return false
}

// newArguments creates the arguments object of ES5 10.6. Parameters are not
// mapped to its elements.
func (r *Runtime) newArguments(f *funcObject, args []Value) *Object {
	o := r.newBaseObject(r.global.ObjectPrototype, classArguments)
	for i, a := range args {
		o._putProp(idxToStr(uint32(i)), a, true, true, true)
	}
	o._putProp(stringLength, intToValue(int64(len(args))), true, false, true)
	if f.strict {
		o._putAccessor("callee", r.global.thrower, r.global.thrower, false, false)
		o._putAccessor("caller", r.global.thrower, r.global.thrower, false, false)
	} else {
		o._putProp("callee", f.val, true, false, true)
	}
	return o.val
}

// evalCode runs the string x as eval code. direct selects the calling
// frame's scope and this, otherwise the global ones are used.
func (r *Runtime) evalCode(x Value, direct bool) Value {
	src, ok := x.(valueString)
	if !ok {
		return x
	}
	if r.opts.parser == nil {
		panic(r.syntaxError("eval requires a front-end parser"))
	}
	prg, err := r.opts.parser(stringEval, string(src))
	if err != nil {
		panic(r.syntaxError("%s", err))
	}
	caller := r.frame()
	strict := prg.Strict || direct && caller.isStrict
	outer, varEnv, this := r.globalEnv, r.globalEnv, Value(r.globalObject)
	if direct {
		outer, varEnv, this = caller.lexEnv, caller.varEnv, caller.this
	}
	env := newEnvironment(envEval, outer, strict)
	if strict {
		varEnv = env
	}
	frame := &CallFrame{
		isStrict: strict,
		name:     stringEval,
		this:     this,
		lexEnv:   env,
		varEnv:   varEnv,
	}
	r.enter(frame)
	defer r.stack.pop()
	r.instantiate(ast.Hoist(prg.Body), frame, true)
	return nilSafe(r.execList(prg.Body).value)
}

func (r *Runtime) execList(list []ast.Statement) completion {
	var last Value
	for _, st := range list {
		c := r.execStatement(st)
		if c.value != nil {
			last = c.value
		}
		if c.kind != completionNormal {
			c.value = last
			return c
		}
	}
	return completion{value: last}
}

func (r *Runtime) execStatement(st ast.Statement) completion {
	return r.execLabelled(st, nil)
}

func inLabelSet(label string, labels []string) bool {
	if label == "" {
		return true
	}
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// loopResult decides whether a loop stops after its body completed with c.
// v is the loop's value so far.
func loopResult(c completion, v Value, labels []string) (completion, bool) {
	switch c.kind {
	case completionNormal:
		return completion{}, false
	case completionContinue:
		if inLabelSet(c.label, labels) {
			return completion{}, false
		}
	case completionBreak:
		if inLabelSet(c.label, labels) {
			return completion{value: v}, true
		}
	}
	c.value = v
	return c, true
}

func (r *Runtime) execLabelled(st ast.Statement, labels []string) completion {
	switch st := st.(type) {
	case *ast.LabelledStatement:
		c := r.execLabelled(st.Statement, append(labels, st.Label))
		if c.kind == completionBreak && c.label == st.Label {
			return completion{value: c.value}
		}
		return c
	case *ast.WhileStatement:
		var v Value
		for r.eval(st.Test).ToBoolean() {
			c := r.execStatement(st.Body)
			if c.value != nil {
				v = c.value
			}
			if res, done := loopResult(c, v, labels); done {
				return res
			}
		}
		return completion{value: v}
	case *ast.DoWhileStatement:
		var v Value
		for {
			c := r.execStatement(st.Body)
			if c.value != nil {
				v = c.value
			}
			if res, done := loopResult(c, v, labels); done {
				return res
			}
			if !r.eval(st.Test).ToBoolean() {
				break
			}
		}
		return completion{value: v}
	case *ast.ForStatement:
		switch init := st.Initializer.(type) {
		case *ast.VariableStatement:
			r.execStatement(init)
		case ast.Expression:
			r.eval(init)
		}
		var v Value
		for st.Test == nil || r.eval(st.Test).ToBoolean() {
			c := r.execStatement(st.Body)
			if c.value != nil {
				v = c.value
			}
			if res, done := loopResult(c, v, labels); done {
				return res
			}
			if st.Update != nil {
				r.eval(st.Update)
			}
		}
		return completion{value: v}
	case *ast.ForInStatement:
		return r.execForIn(st, labels)
	case *ast.SwitchStatement:
		c := r.execSwitch(st)
		if c.kind == completionBreak && c.label == "" {
			return completion{value: c.value}
		}
		return c
	}
	return r.exec(st)
}

func (r *Runtime) execForIn(st *ast.ForInStatement, labels []string) completion {
	var target func() reference
	switch into := st.Into.(type) {
	case *ast.VariableStatement:
		b := into.List[0]
		if b.Initializer != nil {
			r.resolveIdentifier(b.Name).set(r.eval(b.Initializer))
		}
		target = func() reference {
			return r.resolveIdentifier(b.Name)
		}
	case ast.Expression:
		target = func() reference {
			return r.evalRef(into)
		}
	}
	src := r.eval(st.Source)
	if isNullish(src) {
		return completion{}
	}
	obj := r.toObject(src)
	var v Value
	for _, key := range r.enumerableKeys(obj) {
		// properties deleted during the iteration are not visited
		if !obj.hasPropertyStr(key) {
			continue
		}
		target().set(newStringValue(key))
		c := r.execStatement(st.Body)
		if c.value != nil {
			v = c.value
		}
		if res, done := loopResult(c, v, labels); done {
			return res
		}
	}
	return completion{value: v}
}

// execSwitch implements ES5 12.11. Case tests are evaluated in source order
// and the default clause is taken only when none of them matches.
func (r *Runtime) execSwitch(st *ast.SwitchStatement) completion {
	v := r.eval(st.Discriminant)
	start, def := -1, -1
	for i, cs := range st.Body {
		if cs.Test == nil {
			def = i
			continue
		}
		if v.StrictEquals(r.eval(cs.Test)) {
			start = i
			break
		}
	}
	if start < 0 {
		start = def
	}
	if start < 0 {
		return completion{}
	}
	var last Value
	for _, cs := range st.Body[start:] {
		c := r.execList(cs.Consequent)
		if c.value != nil {
			last = c.value
		}
		if c.kind != completionNormal {
			c.value = last
			return c
		}
	}
	return completion{value: last}
}

// enumerableKeys lists the keys a for-in loop over o visits: own keys first,
// then inherited ones not shadowed by an earlier object.
func (r *Runtime) enumerableKeys(o *Object) []string {
	seen := make(map[string]bool)
	var keys []string
	depth := 0
	for obj := o; obj != nil && depth <= r.opts.maxPrototypeChain; obj = obj.self.proto() {
		for _, name := range obj.self.ownKeys(true, nil) {
			if seen[name] {
				continue
			}
			seen[name] = true
			if p := obj.self.getOwnPropStr(name); p != nil && p.enumerable {
				keys = append(keys, name)
			}
		}
		depth++
	}
	return keys
}

func (r *Runtime) exec(st ast.Statement) completion {
	switch st := st.(type) {
	case *ast.ExpressionStatement:
		return completion{value: r.eval(st.Expression)}
	case *ast.VariableStatement:
		for _, b := range st.List {
			if b.Initializer != nil {
				ref := r.resolveIdentifier(b.Name)
				ref.set(r.eval(b.Initializer))
			}
		}
		return completion{}
	case *ast.BlockStatement:
		return r.execList(st.List)
	case *ast.FunctionDeclaration, *ast.EmptyStatement:
		return completion{}
	case *ast.IfStatement:
		if r.eval(st.Test).ToBoolean() {
			return r.execStatement(st.Consequent)
		}
		if st.Alternate != nil {
			return r.execStatement(st.Alternate)
		}
		return completion{}
	case *ast.ReturnStatement:
		v := _undefined
		if st.Argument != nil {
			v = r.eval(st.Argument)
		}
		return completion{kind: completionReturn, value: v}
	case *ast.BranchStatement:
		if st.Token == "continue" {
			return completion{kind: completionContinue, label: st.Label}
		}
		return completion{kind: completionBreak, label: st.Label}
	case *ast.ThrowStatement:
		panic(r.newException(r.eval(st.Argument)))
	case *ast.TryStatement:
		return r.execTry(st)
	}
	panic(r.syntaxError("Unsupported statement %T", st))
}

// catchException runs f and recovers a script exception escaping from it.
// Harness assertion failures are not recovered.
func (r *Runtime) catchException(f func() completion) (c completion, ex *Exception) {
	frame := r.frame()
	lexEnv := frame.lexEnv
	defer func() {
		if x := recover(); x != nil {
			if e, ok := x.(*Exception); ok {
				frame.lexEnv = lexEnv
				ex = e
				return
			}
			panic(x)
		}
	}()
	return f(), nil
}

func (r *Runtime) execTry(st *ast.TryStatement) completion {
	c, ex := r.catchException(func() completion {
		return r.execList(st.Body.List)
	})
	if ex != nil && st.Catch != nil {
		thrown := ex.val
		c, ex = r.catchException(func() completion {
			return r.execCatch(st.Catch, thrown)
		})
	}
	if st.Finally != nil {
		f := r.execList(st.Finally.List)
		if f.kind != completionNormal {
			return f
		}
	}
	if ex != nil {
		panic(ex)
	}
	return c
}

func (r *Runtime) execCatch(st *ast.CatchStatement, thrown Value) completion {
	frame := r.frame()
	saved := frame.lexEnv
	env := newEnvironment(envCatch, saved, frame.isStrict)
	env.createBinding(st.Parameter, thrown, true)
	frame.lexEnv = env
	defer func() {
		frame.lexEnv = saved
	}()
	return r.execList(st.Body.List)
}

func (r *Runtime) evalRef(e ast.Expression) reference {
	switch e := e.(type) {
	case *ast.Identifier:
		return r.resolveIdentifier(e.Name)
	case *ast.DotExpression:
		return &propRef{
			r:      r,
			base:   r.eval(e.Left),
			name:   e.Identifier,
			strict: r.frame().isStrict,
		}
	case *ast.BracketExpression:
		base := r.eval(e.Left)
		key := r.eval(e.Member)
		if isNullish(base) {
			panic(r.typeError("Cannot read property '%s' of %s", key.String(), base.String()))
		}
		return &propRef{
			r:      r,
			base:   base,
			name:   r.toPropertyKey(key),
			strict: r.frame().isStrict,
		}
	}
	panic(r.referenceError("Invalid left-hand side in assignment"))
}

func (r *Runtime) eval(e ast.Expression) Value {
	switch e := e.(type) {
	case *ast.Identifier, *ast.DotExpression, *ast.BracketExpression:
		return r.evalRef(e).get()
	case *ast.NumberLiteral:
		return floatToValue(e.Value)
	case *ast.StringLiteral:
		return newStringValue(e.Value)
	case *ast.BooleanLiteral:
		return valueBool(e.Value)
	case *ast.NullLiteral:
		return _null
	case *ast.ThisExpression:
		return r.frame().this
	case *ast.ArrayLiteral:
		values := make([]Value, len(e.Value))
		for i, el := range e.Value {
			if el != nil {
				values[i] = r.eval(el)
			}
		}
		return r.newArrayValues(values)
	case *ast.ObjectLiteral:
		return r.evalObjectLiteral(e)
	case *ast.FunctionLiteral:
		return r.evalFunctionLiteral(e)
	case *ast.CallExpression:
		return r.evalCall(e)
	case *ast.NewExpression:
		return r.evalNew(e)
	case *ast.AssignExpression:
		return r.evalAssign(e)
	case *ast.BinaryExpression:
		left := r.eval(e.Left)
		return r.binary(e.Operator, left, r.eval(e.Right))
	case *ast.LogicalExpression:
		left := r.eval(e.Left)
		if left.ToBoolean() == (e.Operator == "||") {
			return left
		}
		return r.eval(e.Right)
	case *ast.ConditionalExpression:
		if r.eval(e.Test).ToBoolean() {
			return r.eval(e.Consequent)
		}
		return r.eval(e.Alternate)
	case *ast.SequenceExpression:
		var v Value = _undefined
		for _, ex := range e.Sequence {
			v = r.eval(ex)
		}
		return v
	case *ast.UnaryExpression:
		return r.evalUnary(e)
	case *ast.UpdateExpression:
		ref := r.evalRef(e.Operand)
		old := r.toNumberValue(ref.get())
		delta := valueInt(1)
		if e.Operator == "--" {
			delta = -1
		}
		nv := numberAdd(old, delta)
		ref.set(nv)
		if e.Prefix {
			return nv
		}
		return old
	}
	panic(r.syntaxError("Unsupported expression %T", e))
}

func (r *Runtime) evalObjectLiteral(e *ast.ObjectLiteral) Value {
	o := r.NewObject()
	for _, p := range e.Value {
		descr := PropertyDescriptor{
			Enumerable:   FLAG_TRUE,
			Configurable: FLAG_TRUE,
		}
		v := r.eval(p.Value)
		switch p.Kind {
		case ast.PropertyKindGet:
			descr.Getter = v
		case ast.PropertyKindSet:
			descr.Setter = v
		default:
			descr.Value = v
			descr.Writable = FLAG_TRUE
		}
		o.self.defineOwnPropertyStr(p.Key, descr, true)
	}
	return o
}

func (r *Runtime) evalFunctionLiteral(lit *ast.FunctionLiteral) Value {
	frame := r.frame()
	if lit.Name == "" {
		return r.newFunction(lit, frame.lexEnv, frame.isStrict)
	}
	// the name of a function expression is bound in a scope of its own
	scope := newEnvironment(envCatch, frame.lexEnv, frame.isStrict)
	fn := r.newFunction(lit, scope, frame.isStrict)
	scope.createBinding(lit.Name, fn, false)
	return fn
}

func (r *Runtime) evalArgs(list []ast.Expression) []Value {
	args := make([]Value, len(list))
	for i, a := range list {
		args[i] = r.eval(a)
	}
	return args
}

func (r *Runtime) evalCall(e *ast.CallExpression) Value {
	var fn, this Value = nil, _undefined
	directEval := false
	switch callee := e.Callee.(type) {
	case *ast.Identifier:
		fn = r.resolveIdentifier(callee.Name).get()
		directEval = callee.Name == stringEval && fn == Value(r.global.Eval)
	case *ast.DotExpression, *ast.BracketExpression:
		ref := r.evalRef(callee).(*propRef)
		fn = ref.get()
		this = ref.base
	default:
		fn = r.eval(callee)
	}
	args := r.evalArgs(e.ArgumentList)
	var call func(FunctionCall) Value
	if obj, ok := fn.(*Object); ok {
		call, _ = obj.self.assertCallable()
	}
	if call == nil {
		panic(r.typeError("%s is not a function", exprString(e.Callee)))
	}
	if directEval {
		x := _undefined
		if len(args) > 0 {
			x = args[0]
		}
		return r.evalCode(x, true)
	}
	return call(FunctionCall{
		This:      this,
		Arguments: args,
	})
}

func (r *Runtime) evalNew(e *ast.NewExpression) Value {
	fn := r.eval(e.Callee)
	args := r.evalArgs(e.ArgumentList)
	if obj, ok := fn.(*Object); ok {
		if ctor := obj.self.assertConstructor(); ctor != nil {
			return ctor(args)
		}
	}
	panic(r.typeError("%s is not a constructor", exprString(e.Callee)))
}

func (r *Runtime) evalAssign(e *ast.AssignExpression) Value {
	ref := r.evalRef(e.Left)
	var v Value
	if e.Operator == "=" {
		v = r.eval(e.Right)
	} else {
		left := ref.get()
		v = r.binary(strings.TrimSuffix(e.Operator, "="), left, r.eval(e.Right))
	}
	ref.set(v)
	return v
}

func (r *Runtime) evalUnary(e *ast.UnaryExpression) Value {
	switch e.Operator {
	case "typeof":
		if id, ok := e.Operand.(*ast.Identifier); ok {
			ref := r.resolveIdentifier(id.Name)
			if _, unresolved := ref.(*unresolvedRef); unresolved {
				return newStringValue("undefined")
			}
			return newStringValue(typeOf(ref.get()))
		}
		return newStringValue(typeOf(r.eval(e.Operand)))
	case "delete":
		switch operand := e.Operand.(type) {
		case *ast.Identifier:
			if r.frame().isStrict {
				panic(r.syntaxError("Delete of an unqualified identifier in strict mode."))
			}
			return valueBool(r.resolveIdentifier(operand.Name).delete())
		case *ast.DotExpression, *ast.BracketExpression:
			return valueBool(r.evalRef(operand).delete())
		}
		r.eval(e.Operand)
		return valueTrue
	case "void":
		r.eval(e.Operand)
		return _undefined
	case "!":
		return valueBool(!r.eval(e.Operand).ToBoolean())
	case "-":
		n := r.toNumberValue(r.eval(e.Operand))
		if i, ok := n.(valueInt); ok && i != 0 {
			return -i
		}
		return floatToValue(-n.ToFloat())
	case "+":
		return r.toNumberValue(r.eval(e.Operand))
	case "~":
		return intToValue(int64(^toInt32(r.toNumberValue(r.eval(e.Operand)))))
	}
	panic(r.syntaxError("Unsupported unary operator %s", e.Operator))
}

func (r *Runtime) toNumberValue(v Value) Value {
	return r.toPrimitive(v, hintNumber).ToNumber()
}

func numberAdd(a, b Value) Value {
	if x, ok := a.(valueInt); ok {
		if y, ok := b.(valueInt); ok {
			return intToValue(int64(x + y))
		}
	}
	return floatToValue(a.ToFloat() + b.ToFloat())
}

// lessThan implements the abstract relational comparison (ES5 11.8.5).
// undefined is set when either operand is NaN.
func (r *Runtime) lessThan(x, y Value) (less, undefined bool) {
	px := r.toPrimitive(x, hintNumber)
	py := r.toPrimitive(y, hintNumber)
	if sx, ok := px.(valueString); ok {
		if sy, ok := py.(valueString); ok {
			a, b := sx.utf16(), sy.utf16()
			for i := 0; i < len(a) && i < len(b); i++ {
				if a[i] != b[i] {
					return a[i] < b[i], false
				}
			}
			return len(a) < len(b), false
		}
	}
	nx, ny := px.ToFloat(), py.ToFloat()
	if math.IsNaN(nx) || math.IsNaN(ny) {
		return false, true
	}
	return nx < ny, false
}

func (r *Runtime) binary(op string, left, right Value) Value {
	switch op {
	case "+":
		lp := r.toPrimitive(left, hintNone)
		rp := r.toPrimitive(right, hintNone)
		_, ls := lp.(valueString)
		_, rs := rp.(valueString)
		if ls || rs {
			return newStringValue(lp.String() + rp.String())
		}
		return numberAdd(lp.ToNumber(), rp.ToNumber())
	case "-":
		return numberAdd(r.toNumberValue(left), floatToValue(-r.toNumber(right)))
	case "*":
		return floatToValue(r.toNumber(left) * r.toNumber(right))
	case "/":
		return floatToValue(r.toNumber(left) / r.toNumber(right))
	case "%":
		return floatToValue(math.Mod(r.toNumber(left), r.toNumber(right)))
	case "<":
		less, _ := r.lessThan(left, right)
		return valueBool(less)
	case ">":
		less, _ := r.lessThan(right, left)
		return valueBool(less)
	case "<=":
		less, undefined := r.lessThan(right, left)
		return valueBool(!less && !undefined)
	case ">=":
		less, undefined := r.lessThan(left, right)
		return valueBool(!less && !undefined)
	case "==":
		return valueBool(left.Equals(right))
	case "!=":
		return valueBool(!left.Equals(right))
	case "===":
		return valueBool(left.StrictEquals(right))
	case "!==":
		return valueBool(!left.StrictEquals(right))
	case "&":
		return intToValue(int64(toInt32(r.toNumberValue(left)) & toInt32(r.toNumberValue(right))))
	case "|":
		return intToValue(int64(toInt32(r.toNumberValue(left)) | toInt32(r.toNumberValue(right))))
	case "^":
		return intToValue(int64(toInt32(r.toNumberValue(left)) ^ toInt32(r.toNumberValue(right))))
	case "<<":
		return intToValue(int64(toInt32(r.toNumberValue(left)) << (toUint32(r.toNumberValue(right)) & 31)))
	case ">>":
		return intToValue(int64(toInt32(r.toNumberValue(left)) >> (toUint32(r.toNumberValue(right)) & 31)))
	case ">>>":
		return intToValue(int64(toUint32(r.toNumberValue(left)) >> (toUint32(r.toNumberValue(right)) & 31)))
	case "instanceof":
		c, ok := right.(*Object)
		if !ok {
			panic(r.typeError("Expecting a function in instanceof check, but got %s", right.String()))
		}
		return valueBool(instanceOfOperator(left, c))
	case "in":
		o, ok := right.(*Object)
		if !ok {
			panic(r.typeError("Cannot use 'in' operator to search for '%s' in %s", left.String(), right.String()))
		}
		return valueBool(o.hasPropertyStr(r.toPropertyKey(left)))
	}
	panic(r.syntaxError("Unsupported binary operator %s", op))
}

func typeOf(v Value) string {
	switch v := v.(type) {
	case valueUndefined:
		return "undefined"
	case valueNull:
		return "object"
	case valueBool:
		return "boolean"
	case valueString:
		return "string"
	case valueInt, valueFloat:
		return "number"
	case *Object:
		if _, ok := v.self.assertCallable(); ok {
			return "function"
		}
	}
	return "object"
}

// exprString names a callee for error messages.
func exprString(e ast.Expression) string {
	switch e := e.(type) {
	case *ast.Identifier:
		return e.Name
	case *ast.DotExpression:
		return exprString(e.Left) + "." + e.Identifier
	case *ast.BracketExpression:
		if s, ok := e.Member.(*ast.StringLiteral); ok {
			return exprString(e.Left) + "." + s.Value
		}
		return exprString(e.Left) + "[...]"
	case *ast.ThisExpression:
		return "this"
	case *ast.FunctionLiteral:
		return "function"
	}
	return "expression"
}
