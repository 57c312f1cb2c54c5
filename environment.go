package escore

type envKind int

const (
	envGlobal envKind = iota
	envFunction
	envEval
	envCatch
)

func (k envKind) String() string {
	switch k {
	case envGlobal:
		return "global"
	case envFunction:
		return "function"
	case envEval:
		return "eval"
	}
	return "catch"
}

type binding struct {
	value     Value
	mutable   bool
	deletable bool
}

// Environment is a scope record. The global environment keeps its bindings on
// the global object; the others keep them in a map. Every environment but the
// global one has an outer environment.
type Environment struct {
	kind     envKind
	outer    *Environment
	strict   bool
	bindings map[string]*binding
	object   *Object
}

func newGlobalEnvironment(global *Object) *Environment {
	return &Environment{
		kind:   envGlobal,
		object: global,
	}
}

func newEnvironment(kind envKind, outer *Environment, strict bool) *Environment {
	return &Environment{
		kind:     kind,
		outer:    outer,
		strict:   strict,
		bindings: make(map[string]*binding),
	}
}

// varScope returns the environment that receives var and function
// declarations made in e: the nearest function or global scope, or a strict
// eval scope.
func (e *Environment) varScope() *Environment {
	for env := e; env != nil; env = env.outer {
		switch env.kind {
		case envGlobal, envFunction:
			return env
		case envEval:
			if env.strict {
				return env
			}
		}
	}
	return nil
}

func (e *Environment) hasBinding(name string) bool {
	if e.object != nil {
		return e.object.hasPropertyStr(name)
	}
	return e.bindings[name] != nil
}

// lookup returns the nearest environment binding name, or nil when the name
// is unresolvable.
func (e *Environment) lookup(name string) *Environment {
	for env := e; env != nil; env = env.outer {
		if env.hasBinding(name) {
			return env
		}
	}
	return nil
}

// declareVar creates name in the var scope of e initialized to undefined,
// leaving an existing binding untouched. Global vars become properties of the
// global object, configurable only when deletable.
func (e *Environment) declareVar(name string, deletable bool) {
	target := e.varScope()
	if target.object != nil {
		if !target.object.self.hasOwnPropertyStr(name) {
			target.object.self.defineOwnPropertyStr(name, PropertyDescriptor{
				Value:        _undefined,
				Writable:     FLAG_TRUE,
				Enumerable:   FLAG_TRUE,
				Configurable: ToFlag(deletable),
			}, true)
		}
		return
	}
	if target.bindings[name] == nil {
		target.bindings[name] = &binding{
			value:     _undefined,
			mutable:   true,
			deletable: deletable,
		}
	}
}

// declareFunction binds a function declaration in the var scope of e,
// replacing any previous value (ES5 10.5 step 5).
func (e *Environment) declareFunction(name string, fn *Object, deletable bool) {
	target := e.varScope()
	if target.object != nil {
		g := target.object.self
		existing := g.getOwnPropStr(name)
		if existing == nil || existing.configurable {
			g.defineOwnPropertyStr(name, PropertyDescriptor{
				Value:        fn,
				Writable:     FLAG_TRUE,
				Enumerable:   FLAG_TRUE,
				Configurable: ToFlag(deletable),
			}, true)
			return
		}
		if existing.accessor || !existing.writable || !existing.enumerable {
			target.object.runtime.typeErrorResult(true, "%s", errRedefine)
		}
		target.object.setStr(name, fn, true)
		return
	}
	if b := target.bindings[name]; b != nil {
		b.value = fn
		return
	}
	target.bindings[name] = &binding{
		value:     fn,
		mutable:   true,
		deletable: deletable,
	}
}

// createBinding adds a binding directly to e, shadowing outer ones. Used for
// parameters, the arguments object and catch parameters.
func (e *Environment) createBinding(name string, v Value, mutable bool) {
	e.bindings[name] = &binding{
		value:   v,
		mutable: mutable,
	}
}

// getBindingValue reads name from e. The binding may have been deleted since
// the reference was resolved, e.g. by `delete x` inside the same expression.
func (e *Environment) getBindingValue(r *Runtime, name string, strict bool) Value {
	if e.object != nil {
		if v := e.object.getStr(name, nil); v != nil {
			return v
		}
	} else if b := e.bindings[name]; b != nil {
		return b.value
	}
	if strict {
		panic(r.referenceError("%s is not defined", name))
	}
	return _undefined
}

// setMutableBinding assigns to a binding of e. Immutable bindings ignore the
// write unless strict. A binding deleted after the reference was resolved is
// recreated in sloppy code.
func (e *Environment) setMutableBinding(r *Runtime, name string, v Value, strict bool) {
	if e.object != nil {
		e.object.setStr(name, v, strict)
		return
	}
	b := e.bindings[name]
	if b == nil {
		if strict {
			panic(r.referenceError("%s is not defined", name))
		}
		e.bindings[name] = &binding{
			value:     v,
			mutable:   true,
			deletable: true,
		}
		return
	}
	if !b.mutable {
		if strict {
			panic(r.typeError("Assignment to constant variable."))
		}
		return
	}
	b.value = v
}

func (e *Environment) deleteBinding(name string) bool {
	if e.object != nil {
		return e.object.self.deleteStr(name, false)
	}
	b := e.bindings[name]
	if b == nil {
		return true
	}
	if !b.deletable {
		return false
	}
	delete(e.bindings, name)
	return true
}
