/*
Package estree converts ESTree JSON, as printed by acorn or esprima, into the
program tree executed by escore.

Only the ES5 subset is accepted. Anything else produces an *UnsupportedError
naming the construct, so that callers can skip the test instead of failing it.
*/
package estree

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/jsconform/escore/ast"
)

// UnsupportedError reports a syntax construct outside of the ES5 subset.
type UnsupportedError struct {
	Construct string
}

func (e *UnsupportedError) Error() string {
	return "unsupported construct: " + e.Construct
}

type converter struct {
	src string

	// offsets maps UTF-16 code unit positions in src to byte positions.
	offsets []int
}

// source returns the text between the ESTree offsets start and end, which
// count UTF-16 code units.
func (c *converter) source(start, end int) (string, bool) {
	if c.src == "" {
		return "", false
	}
	if c.offsets == nil {
		c.offsets = make([]int, 0, len(c.src)+1)
		for i, r := range c.src {
			c.offsets = append(c.offsets, i)
			if r >= 0x10000 {
				c.offsets = append(c.offsets, i)
			}
		}
		c.offsets = append(c.offsets, len(c.src))
	}
	if start < 0 || start > end || end >= len(c.offsets) {
		return "", false
	}
	return c.src[c.offsets[start]:c.offsets[end]], true
}

// Parse converts an ESTree Program. src is the text the tree was produced from;
// when it is not empty, function literals carry their source slice.
func Parse(name string, data []byte, src string) (*ast.Program, error) {
	var root node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, name)
	}
	if t := root.typ(); t != "Program" {
		return nil, errors.Errorf("%s: expected Program, got %q", name, t)
	}
	if root.str("sourceType") == "module" {
		return nil, &UnsupportedError{Construct: "module"}
	}
	c := &converter{src: src}
	list, err := root.children("body")
	if err != nil {
		return nil, err
	}
	body, err := c.statements(list)
	if err != nil {
		return nil, err
	}
	return &ast.Program{
		Body:   body,
		Strict: hasUseStrict(list),
		Name:   name,
	}, nil
}

// hasUseStrict scans the directive prologue.
func hasUseStrict(list []node) bool {
	for _, n := range list {
		if n.typ() != "ExpressionStatement" {
			return false
		}
		expr, err := n.child("expression")
		if err != nil || expr == nil || expr.typ() != "Literal" {
			return false
		}
		raw := expr.str("raw")
		if n.has("directive") {
			raw = "'" + n.str("directive") + "'"
		}
		if raw == "'use strict'" || raw == `"use strict"` {
			return true
		}
		if !strings.HasPrefix(raw, "'") && !strings.HasPrefix(raw, `"`) {
			return false
		}
	}
	return false
}

func (c *converter) statements(list []node) ([]ast.Statement, error) {
	res := make([]ast.Statement, 0, len(list))
	for _, n := range list {
		st, err := c.statement(n)
		if err != nil {
			return nil, err
		}
		res = append(res, st)
	}
	return res, nil
}

func (c *converter) statementField(n node, key string) (ast.Statement, error) {
	child, err := n.child(key)
	if err != nil || child == nil {
		return nil, err
	}
	return c.statement(child)
}

func (c *converter) block(n node) (*ast.BlockStatement, error) {
	if n == nil {
		return nil, nil
	}
	list, err := n.children("body")
	if err != nil {
		return nil, err
	}
	body, err := c.statements(list)
	if err != nil {
		return nil, err
	}
	return &ast.BlockStatement{List: body}, nil
}

func (c *converter) statement(n node) (ast.Statement, error) {
	switch t := n.typ(); t {
	case "EmptyStatement":
		return &ast.EmptyStatement{}, nil
	case "DebuggerStatement":
		return &ast.EmptyStatement{}, nil
	case "ExpressionStatement":
		e, err := c.expressionField(n, "expression")
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{Expression: e}, nil
	case "BlockStatement":
		return c.block(n)
	case "VariableDeclaration":
		return c.variable(n)
	case "FunctionDeclaration":
		lit, err := c.function(n)
		if err != nil {
			return nil, err
		}
		return &ast.FunctionDeclaration{Function: lit}, nil
	case "IfStatement":
		test, err := c.expressionField(n, "test")
		if err != nil {
			return nil, err
		}
		cons, err := c.statementField(n, "consequent")
		if err != nil {
			return nil, err
		}
		alt, err := c.statementField(n, "alternate")
		if err != nil {
			return nil, err
		}
		return &ast.IfStatement{Test: test, Consequent: cons, Alternate: alt}, nil
	case "ReturnStatement":
		arg, err := c.expressionField(n, "argument")
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStatement{Argument: arg}, nil
	case "ThrowStatement":
		arg, err := c.expressionField(n, "argument")
		if err != nil {
			return nil, err
		}
		return &ast.ThrowStatement{Argument: arg}, nil
	case "BreakStatement", "ContinueStatement":
		label := ""
		if id, err := n.child("label"); err != nil {
			return nil, err
		} else if id != nil {
			label = id.str("name")
		}
		token := "break"
		if t == "ContinueStatement" {
			token = "continue"
		}
		return &ast.BranchStatement{Token: token, Label: label}, nil
	case "LabeledStatement":
		id, err := n.child("label")
		if err != nil {
			return nil, err
		}
		body, err := c.statementField(n, "body")
		if err != nil {
			return nil, err
		}
		return &ast.LabelledStatement{Label: id.str("name"), Statement: body}, nil
	case "WhileStatement", "DoWhileStatement":
		test, err := c.expressionField(n, "test")
		if err != nil {
			return nil, err
		}
		body, err := c.statementField(n, "body")
		if err != nil {
			return nil, err
		}
		if t == "WhileStatement" {
			return &ast.WhileStatement{Test: test, Body: body}, nil
		}
		return &ast.DoWhileStatement{Test: test, Body: body}, nil
	case "ForStatement":
		return c.forStatement(n)
	case "ForInStatement":
		if n.bool("each") {
			return nil, &UnsupportedError{Construct: "for each"}
		}
		return c.forIn(n)
	case "SwitchStatement":
		return c.switchStatement(n)
	case "TryStatement":
		return c.try(n)
	case "WithStatement":
		return nil, &UnsupportedError{Construct: "with"}
	case "ForOfStatement":
		return nil, &UnsupportedError{Construct: "for-of"}
	case "ClassDeclaration":
		return nil, &UnsupportedError{Construct: "class"}
	case "ImportDeclaration", "ExportNamedDeclaration", "ExportDefaultDeclaration", "ExportAllDeclaration":
		return nil, &UnsupportedError{Construct: "module"}
	default:
		return nil, &UnsupportedError{Construct: t}
	}
}

func (c *converter) variable(n node) (*ast.VariableStatement, error) {
	if kind := n.str("kind"); kind != "var" {
		return nil, &UnsupportedError{Construct: kind}
	}
	decls, err := n.children("declarations")
	if err != nil {
		return nil, err
	}
	st := &ast.VariableStatement{List: make([]*ast.Binding, 0, len(decls))}
	for _, d := range decls {
		name, err := c.identifierField(d, "id")
		if err != nil {
			return nil, err
		}
		init, err := c.expressionField(d, "init")
		if err != nil {
			return nil, err
		}
		st.List = append(st.List, &ast.Binding{Name: name, Initializer: init})
	}
	return st, nil
}

// forHead converts the init or left part of a for statement.
func (c *converter) forHead(n node) (ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	if n.typ() == "VariableDeclaration" {
		return c.variable(n)
	}
	return c.expression(n)
}

func (c *converter) forStatement(n node) (ast.Statement, error) {
	initNode, err := n.child("init")
	if err != nil {
		return nil, err
	}
	init, err := c.forHead(initNode)
	if err != nil {
		return nil, err
	}
	test, err := c.expressionField(n, "test")
	if err != nil {
		return nil, err
	}
	update, err := c.expressionField(n, "update")
	if err != nil {
		return nil, err
	}
	body, err := c.statementField(n, "body")
	if err != nil {
		return nil, err
	}
	return &ast.ForStatement{Initializer: init, Test: test, Update: update, Body: body}, nil
}

func (c *converter) forIn(n node) (ast.Statement, error) {
	left, err := n.child("left")
	if err != nil {
		return nil, err
	}
	into, err := c.forHead(left)
	if err != nil {
		return nil, err
	}
	if v, ok := into.(*ast.VariableStatement); ok && len(v.List) != 1 {
		return nil, errors.Errorf("for-in: expected a single declaration, got %d", len(v.List))
	}
	src, err := c.expressionField(n, "right")
	if err != nil {
		return nil, err
	}
	body, err := c.statementField(n, "body")
	if err != nil {
		return nil, err
	}
	return &ast.ForInStatement{Into: into, Source: src, Body: body}, nil
}

func (c *converter) switchStatement(n node) (ast.Statement, error) {
	disc, err := c.expressionField(n, "discriminant")
	if err != nil {
		return nil, err
	}
	cases, err := n.children("cases")
	if err != nil {
		return nil, err
	}
	st := &ast.SwitchStatement{Discriminant: disc}
	for _, cs := range cases {
		test, err := c.expressionField(cs, "test")
		if err != nil {
			return nil, err
		}
		list, err := cs.children("consequent")
		if err != nil {
			return nil, err
		}
		body, err := c.statements(list)
		if err != nil {
			return nil, err
		}
		st.Body = append(st.Body, &ast.CaseStatement{Test: test, Consequent: body})
	}
	return st, nil
}

func (c *converter) try(n node) (ast.Statement, error) {
	blockNode, err := n.child("block")
	if err != nil {
		return nil, err
	}
	body, err := c.block(blockNode)
	if err != nil {
		return nil, err
	}
	st := &ast.TryStatement{Body: body}
	handler, err := n.child("handler")
	if err != nil {
		return nil, err
	}
	if handler == nil {
		// esprima 1.x
		if handlers, err := n.children("handlers"); err != nil {
			return nil, err
		} else if len(handlers) > 0 {
			handler = handlers[0]
		}
	}
	if handler != nil {
		if handler.has("guard") {
			return nil, &UnsupportedError{Construct: "catch guard"}
		}
		param, err := c.identifierField(handler, "param")
		if err != nil {
			return nil, err
		}
		b, err := handler.child("body")
		if err != nil {
			return nil, err
		}
		cbody, err := c.block(b)
		if err != nil {
			return nil, err
		}
		st.Catch = &ast.CatchStatement{Parameter: param, Body: cbody}
	}
	fin, err := n.child("finalizer")
	if err != nil {
		return nil, err
	}
	if st.Finally, err = c.block(fin); err != nil {
		return nil, err
	}
	return st, nil
}

func (c *converter) identifierField(n node, key string) (string, error) {
	id, err := n.child(key)
	if err != nil {
		return "", err
	}
	if id == nil {
		return "", errors.Errorf("%s: missing %s", n.typ(), key)
	}
	if id.typ() != "Identifier" {
		return "", &UnsupportedError{Construct: "destructuring"}
	}
	return id.str("name"), nil
}

func (c *converter) function(n node) (*ast.FunctionLiteral, error) {
	if n.bool("generator") {
		return nil, &UnsupportedError{Construct: "generator"}
	}
	if n.bool("async") {
		return nil, &UnsupportedError{Construct: "async function"}
	}
	if n.bool("expression") {
		return nil, &UnsupportedError{Construct: "expression closure"}
	}
	lit := &ast.FunctionLiteral{}
	if id, err := n.child("id"); err != nil {
		return nil, err
	} else if id != nil {
		lit.Name = id.str("name")
	}
	params, err := n.children("params")
	if err != nil {
		return nil, err
	}
	for _, p := range params {
		if p.typ() != "Identifier" {
			return nil, &UnsupportedError{Construct: "destructuring"}
		}
		lit.ParameterList = append(lit.ParameterList, p.str("name"))
	}
	if defaults, _ := n.children("defaults"); len(defaults) > 0 {
		return nil, &UnsupportedError{Construct: "default parameters"}
	}
	if n.has("rest") {
		return nil, &UnsupportedError{Construct: "rest parameters"}
	}
	b, err := n.child("body")
	if err != nil {
		return nil, err
	}
	if b == nil || b.typ() != "BlockStatement" {
		return nil, &UnsupportedError{Construct: "expression closure"}
	}
	list, err := b.children("body")
	if err != nil {
		return nil, err
	}
	if lit.Body, err = c.statements(list); err != nil {
		return nil, err
	}
	lit.Strict = hasUseStrict(list)
	if start, end, ok := n.span(); ok {
		lit.Source, _ = c.source(start, end)
	}
	return lit, nil
}

func (c *converter) expressionField(n node, key string) (ast.Expression, error) {
	child, err := n.child(key)
	if err != nil || child == nil {
		return nil, err
	}
	return c.expression(child)
}

func (c *converter) expressionList(n node, key string) ([]ast.Expression, error) {
	list, err := n.children(key)
	if err != nil {
		return nil, err
	}
	res := make([]ast.Expression, len(list))
	for i, e := range list {
		if e == nil {
			continue
		}
		if e.typ() == "SpreadElement" {
			return nil, &UnsupportedError{Construct: "spread"}
		}
		if res[i], err = c.expression(e); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (c *converter) expression(n node) (ast.Expression, error) {
	switch t := n.typ(); t {
	case "Identifier":
		return &ast.Identifier{Name: n.str("name")}, nil
	case "ThisExpression":
		return &ast.ThisExpression{}, nil
	case "Literal":
		return c.literal(n)
	case "ArrayExpression":
		list, err := c.expressionList(n, "elements")
		if err != nil {
			return nil, err
		}
		return &ast.ArrayLiteral{Value: list}, nil
	case "ObjectExpression":
		return c.object(n)
	case "FunctionExpression":
		return c.function(n)
	case "SequenceExpression":
		list, err := c.expressionList(n, "expressions")
		if err != nil {
			return nil, err
		}
		return &ast.SequenceExpression{Sequence: list}, nil
	case "UnaryExpression":
		arg, err := c.expressionField(n, "argument")
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Operator: n.str("operator"), Operand: arg}, nil
	case "UpdateExpression":
		arg, err := c.expressionField(n, "argument")
		if err != nil {
			return nil, err
		}
		return &ast.UpdateExpression{Operator: n.str("operator"), Prefix: n.bool("prefix"), Operand: arg}, nil
	case "BinaryExpression", "LogicalExpression", "AssignmentExpression":
		left, err := c.expressionField(n, "left")
		if err != nil {
			return nil, err
		}
		right, err := c.expressionField(n, "right")
		if err != nil {
			return nil, err
		}
		op := n.str("operator")
		switch t {
		case "LogicalExpression":
			if op != "&&" && op != "||" {
				return nil, &UnsupportedError{Construct: op}
			}
			return &ast.LogicalExpression{Operator: op, Left: left, Right: right}, nil
		case "AssignmentExpression":
			if op == "**=" || op == "&&=" || op == "||=" || op == "??=" {
				return nil, &UnsupportedError{Construct: op}
			}
			return &ast.AssignExpression{Operator: op, Left: left, Right: right}, nil
		}
		if op == "**" {
			return nil, &UnsupportedError{Construct: op}
		}
		return &ast.BinaryExpression{Operator: op, Left: left, Right: right}, nil
	case "ConditionalExpression":
		test, err := c.expressionField(n, "test")
		if err != nil {
			return nil, err
		}
		cons, err := c.expressionField(n, "consequent")
		if err != nil {
			return nil, err
		}
		alt, err := c.expressionField(n, "alternate")
		if err != nil {
			return nil, err
		}
		return &ast.ConditionalExpression{Test: test, Consequent: cons, Alternate: alt}, nil
	case "CallExpression", "NewExpression":
		callee, err := c.expressionField(n, "callee")
		if err != nil {
			return nil, err
		}
		args, err := c.expressionList(n, "arguments")
		if err != nil {
			return nil, err
		}
		if n.bool("optional") {
			return nil, &UnsupportedError{Construct: "optional chaining"}
		}
		if t == "NewExpression" {
			return &ast.NewExpression{Callee: callee, ArgumentList: args}, nil
		}
		return &ast.CallExpression{Callee: callee, ArgumentList: args}, nil
	case "MemberExpression":
		if n.bool("optional") {
			return nil, &UnsupportedError{Construct: "optional chaining"}
		}
		left, err := c.expressionField(n, "object")
		if err != nil {
			return nil, err
		}
		prop, err := n.child("property")
		if err != nil {
			return nil, err
		}
		if !n.bool("computed") && prop.typ() == "Identifier" {
			return &ast.DotExpression{Left: left, Identifier: prop.str("name")}, nil
		}
		member, err := c.expression(prop)
		if err != nil {
			return nil, err
		}
		return &ast.BracketExpression{Left: left, Member: member}, nil
	case "ArrowFunctionExpression":
		return nil, &UnsupportedError{Construct: "arrow function"}
	case "ClassExpression":
		return nil, &UnsupportedError{Construct: "class"}
	case "TemplateLiteral", "TaggedTemplateExpression":
		return nil, &UnsupportedError{Construct: "template literal"}
	case "YieldExpression":
		return nil, &UnsupportedError{Construct: "generator"}
	case "AwaitExpression":
		return nil, &UnsupportedError{Construct: "async function"}
	case "ChainExpression":
		return nil, &UnsupportedError{Construct: "optional chaining"}
	default:
		return nil, &UnsupportedError{Construct: t}
	}
}

func (c *converter) literal(n node) (ast.Expression, error) {
	if n.has("regex") {
		return nil, &UnsupportedError{Construct: "regular expression literal"}
	}
	if n.has("bigint") {
		return nil, &UnsupportedError{Construct: "bigint"}
	}
	raw := n.str("raw")
	if v, ok := n["value"]; !ok || string(v) == "null" {
		switch {
		case strings.HasPrefix(raw, "/"):
			// acorn emits value: null for regular expressions it could not build.
			return nil, &UnsupportedError{Construct: "regular expression literal"}
		case raw != "" && raw != "null":
			// JSON.stringify turns an overflowing number literal into null.
			return &ast.NumberLiteral{Value: math.Inf(1)}, nil
		}
		return &ast.NullLiteral{}, nil
	}
	var v interface{}
	if err := json.Unmarshal(n["value"], &v); err != nil {
		return nil, errors.Wrap(err, "Literal")
	}
	switch v := v.(type) {
	case bool:
		return &ast.BooleanLiteral{Value: v}, nil
	case string:
		return &ast.StringLiteral{Value: v}, nil
	case float64:
		return &ast.NumberLiteral{Value: v}, nil
	}
	return nil, errors.Errorf("Literal: unexpected value %s", n["value"])
}

func (c *converter) object(n node) (ast.Expression, error) {
	props, err := n.children("properties")
	if err != nil {
		return nil, err
	}
	lit := &ast.ObjectLiteral{Value: make([]ast.Property, 0, len(props))}
	for _, p := range props {
		if p.typ() != "Property" {
			return nil, &UnsupportedError{Construct: "object spread"}
		}
		if p.bool("computed") {
			return nil, &UnsupportedError{Construct: "computed property name"}
		}
		if p.bool("method") || p.bool("shorthand") {
			return nil, &UnsupportedError{Construct: "shorthand property"}
		}
		keyNode, err := p.child("key")
		if err != nil {
			return nil, err
		}
		var key string
		switch keyNode.typ() {
		case "Identifier":
			key = keyNode.str("name")
		case "Literal":
			kv, err := c.literal(keyNode)
			if err != nil {
				return nil, err
			}
			switch kv := kv.(type) {
			case *ast.StringLiteral:
				key = kv.Value
			case *ast.NumberLiteral:
				key = numberKey(kv.Value)
			default:
				key = keyNode.str("raw")
			}
		default:
			return nil, &UnsupportedError{Construct: keyNode.typ()}
		}
		value, err := c.expressionField(p, "value")
		if err != nil {
			return nil, err
		}
		kind := ast.PropertyKindValue
		switch p.str("kind") {
		case "get":
			kind = ast.PropertyKindGet
		case "set":
			kind = ast.PropertyKindSet
		}
		lit.Value = append(lit.Value, ast.Property{Key: key, Kind: kind, Value: value})
	}
	return lit, nil
}

// numberKey renders a numeric property name. Integers and plain decimals
// cover the keys found in practice.
func numberKey(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
