/*
Package ast declares the pre-parsed program tree consumed by the execution core.

The core never parses source text. A front-end (see package estree) produces these
nodes and hands a *Program to the runtime.
*/
package ast

// Node is implemented by every statement and expression.
type Node interface {
	node()
}

type (
	// Expression is a node that evaluates to a value.
	Expression interface {
		Node
		_expressionNode()
	}

	// Statement is a node that produces a completion.
	Statement interface {
		Node
		_statementNode()
	}
)

// ========== //
// Expression //
// ========== //

type (
	ArrayLiteral struct {
		// A nil element is a hole.
		Value []Expression
	}

	AssignExpression struct {
		// "=" or a compound operator such as "+=".
		Operator string
		Left     Expression
		Right    Expression
	}

	BinaryExpression struct {
		Operator string
		Left     Expression
		Right    Expression
	}

	LogicalExpression struct {
		// "&&" or "||".
		Operator string
		Left     Expression
		Right    Expression
	}

	BooleanLiteral struct {
		Value bool
	}

	BracketExpression struct {
		Left   Expression
		Member Expression
	}

	CallExpression struct {
		Callee       Expression
		ArgumentList []Expression
	}

	ConditionalExpression struct {
		Test       Expression
		Consequent Expression
		Alternate  Expression
	}

	DotExpression struct {
		Left       Expression
		Identifier string
	}

	FunctionLiteral struct {
		Name          string
		ParameterList []string
		Body          []Statement
		// Strict is set when the body starts with a "use strict" directive.
		// Strictness inherited from the enclosing code is resolved at runtime.
		Strict bool
		Source string
	}

	Identifier struct {
		Name string
	}

	NewExpression struct {
		Callee       Expression
		ArgumentList []Expression
	}

	NullLiteral struct{}

	NumberLiteral struct {
		Value float64
	}

	ObjectLiteral struct {
		Value []Property
	}

	SequenceExpression struct {
		Sequence []Expression
	}

	StringLiteral struct {
		Value string
	}

	ThisExpression struct{}

	UnaryExpression struct {
		Operator string
		Operand  Expression
	}

	UpdateExpression struct {
		// "++" or "--".
		Operator string
		Prefix   bool
		Operand  Expression
	}
)

// PropertyKind distinguishes object literal entries.
type PropertyKind string

const (
	PropertyKindValue PropertyKind = "value"
	PropertyKindGet   PropertyKind = "get"
	PropertyKindSet   PropertyKind = "set"
)

type Property struct {
	Key   string
	Kind  PropertyKind
	Value Expression
}

func (*ArrayLiteral) node()          {}
func (*AssignExpression) node()      {}
func (*BinaryExpression) node()      {}
func (*LogicalExpression) node()     {}
func (*BooleanLiteral) node()        {}
func (*BracketExpression) node()     {}
func (*CallExpression) node()        {}
func (*ConditionalExpression) node() {}
func (*DotExpression) node()         {}
func (*FunctionLiteral) node()       {}
func (*Identifier) node()            {}
func (*NewExpression) node()         {}
func (*NullLiteral) node()           {}
func (*NumberLiteral) node()         {}
func (*ObjectLiteral) node()         {}
func (*SequenceExpression) node()    {}
func (*StringLiteral) node()         {}
func (*ThisExpression) node()        {}
func (*UnaryExpression) node()       {}
func (*UpdateExpression) node()      {}

func (*ArrayLiteral) _expressionNode()          {}
func (*AssignExpression) _expressionNode()      {}
func (*BinaryExpression) _expressionNode()      {}
func (*LogicalExpression) _expressionNode()     {}
func (*BooleanLiteral) _expressionNode()        {}
func (*BracketExpression) _expressionNode()     {}
func (*CallExpression) _expressionNode()        {}
func (*ConditionalExpression) _expressionNode() {}
func (*DotExpression) _expressionNode()         {}
func (*FunctionLiteral) _expressionNode()       {}
func (*Identifier) _expressionNode()            {}
func (*NewExpression) _expressionNode()         {}
func (*NullLiteral) _expressionNode()           {}
func (*NumberLiteral) _expressionNode()         {}
func (*ObjectLiteral) _expressionNode()         {}
func (*SequenceExpression) _expressionNode()    {}
func (*StringLiteral) _expressionNode()         {}
func (*ThisExpression) _expressionNode()        {}
func (*UnaryExpression) _expressionNode()       {}
func (*UpdateExpression) _expressionNode()      {}

// ========= //
// Statement //
// ========= //

type (
	BlockStatement struct {
		List []Statement
	}

	BranchStatement struct {
		// "break" or "continue".
		Token string
		Label string
	}

	CatchStatement struct {
		Parameter string
		Body      *BlockStatement
	}

	DoWhileStatement struct {
		Test Expression
		Body Statement
	}

	EmptyStatement struct{}

	ExpressionStatement struct {
		Expression Expression
	}

	ForInStatement struct {
		// Either a *VariableStatement with a single declaration or an Expression target.
		Into   Node
		Source Expression
		Body   Statement
	}

	ForStatement struct {
		// Initializer is a *VariableStatement, an Expression, or nil.
		Initializer Node
		Test        Expression
		Update      Expression
		Body        Statement
	}

	FunctionDeclaration struct {
		Function *FunctionLiteral
	}

	IfStatement struct {
		Test       Expression
		Consequent Statement
		Alternate  Statement
	}

	LabelledStatement struct {
		Label     string
		Statement Statement
	}

	ReturnStatement struct {
		Argument Expression
	}

	SwitchStatement struct {
		Discriminant Expression
		Body         []*CaseStatement
	}

	CaseStatement struct {
		// Test is nil for the default clause.
		Test       Expression
		Consequent []Statement
	}

	ThrowStatement struct {
		Argument Expression
	}

	TryStatement struct {
		Body    *BlockStatement
		Catch   *CatchStatement
		Finally *BlockStatement
	}

	VariableStatement struct {
		List []*Binding
	}

	WhileStatement struct {
		Test Expression
		Body Statement
	}
)

// Binding is one declarator of a var statement.
type Binding struct {
	Name        string
	Initializer Expression
}

func (*BlockStatement) node()      {}
func (*BranchStatement) node()     {}
func (*CatchStatement) node()      {}
func (*DoWhileStatement) node()    {}
func (*EmptyStatement) node()      {}
func (*ExpressionStatement) node() {}
func (*ForInStatement) node()      {}
func (*ForStatement) node()        {}
func (*FunctionDeclaration) node() {}
func (*IfStatement) node()         {}
func (*LabelledStatement) node()   {}
func (*ReturnStatement) node()     {}
func (*SwitchStatement) node()     {}
func (*CaseStatement) node()       {}
func (*ThrowStatement) node()      {}
func (*TryStatement) node()        {}
func (*VariableStatement) node()   {}
func (*WhileStatement) node()      {}

func (*BlockStatement) _statementNode()      {}
func (*BranchStatement) _statementNode()     {}
func (*CatchStatement) _statementNode()      {}
func (*DoWhileStatement) _statementNode()    {}
func (*EmptyStatement) _statementNode()      {}
func (*ExpressionStatement) _statementNode() {}
func (*ForInStatement) _statementNode()      {}
func (*ForStatement) _statementNode()        {}
func (*FunctionDeclaration) _statementNode() {}
func (*IfStatement) _statementNode()         {}
func (*LabelledStatement) _statementNode()   {}
func (*ReturnStatement) _statementNode()     {}
func (*SwitchStatement) _statementNode()     {}
func (*CaseStatement) _statementNode()       {}
func (*ThrowStatement) _statementNode()      {}
func (*TryStatement) _statementNode()        {}
func (*VariableStatement) _statementNode()   {}
func (*WhileStatement) _statementNode()      {}

// Program is the root of a script, eval or function body tree.
type Program struct {
	Body   []Statement
	Strict bool
	// Name identifies the script in stack traces.
	Name string
}
