// Package ast defines the Dana abstract syntax tree (spec §4.1, §6).
// Every node carries its source position for diagnostics.
package ast

import "github.com/dana-lang/dana/internal/token"

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Position
}

// Statement is any top-level or block-level statement node.
type Statement interface {
	Node
	stmtNode()
}

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

// Program is the root of a parsed source file.
type Program struct {
	Statements []Statement
	Position   token.Position
}

func (p *Program) Pos() token.Position { return p.Position }

// ---- Statements ----

// ScopedName is an optionally scope-prefixed identifier, e.g. `x` or
// `public:y` (spec §3.2).
type ScopedName struct {
	Scope    string // "", "local", "private", "public", "system"
	Name     string
	Position token.Position
}

func (s *ScopedName) Pos() token.Position { return s.Position }
func (s *ScopedName) exprNode()           {}

// Assignment targets are represented by the general expression nodes:
// *ScopedName / *Identifier for bare names, *Attribute for `target.field`,
// *Subscript for `target[expr]` (spec §4.1 grammar: target).

// Assignment is `target = expr`, optionally with a type annotation on the
// target (`x: int = reason(...)`) that is advisory everywhere except at
// reason() call sites, where it drives output-type inference (spec §4.4.3,
// §9).
type Assignment struct {
	Target     Expr
	TargetType *TypeExpr // nil if unannotated
	Value      Expr
	Position   token.Position
}

func (a *Assignment) Pos() token.Position { return a.Position }
func (a *Assignment) stmtNode()           {}

// CompoundAssignOp identifies +=, -=, *=, /=.
type CompoundAssignOp string

const (
	OpAddAssign CompoundAssignOp = "+="
	OpSubAssign CompoundAssignOp = "-="
	OpMulAssign CompoundAssignOp = "*="
	OpDivAssign CompoundAssignOp = "/="
)

// CompoundAssignment is `target op= expr`.
type CompoundAssignment struct {
	Target   Expr
	Op       CompoundAssignOp
	Value    Expr
	Position token.Position
}

func (c *CompoundAssignment) Pos() token.Position { return c.Position }
func (c *CompoundAssignment) stmtNode()           {}

// ExprStatement is a bare expression evaluated for effect.
type ExprStatement struct {
	X        Expr
	Position token.Position
}

func (e *ExprStatement) Pos() token.Position { return e.Position }
func (e *ExprStatement) stmtNode()           {}

// Block is a sequence of statements introduced by an indented block.
type Block struct {
	Statements []Statement
	Position   token.Position
}

func (b *Block) Pos() token.Position { return b.Position }

// IfStatement covers if/elif*/else.
type IfStatement struct {
	Cond     Expr
	Then     *Block
	Elifs    []ElifClause
	Else     *Block // nil if absent
	Position token.Position
}

func (i *IfStatement) Pos() token.Position { return i.Position }
func (i *IfStatement) stmtNode()           {}

// ElifClause is one `elif cond: block`.
type ElifClause struct {
	Cond Expr
	Body *Block
}

// WhileStatement is `while cond: block`.
type WhileStatement struct {
	Cond     Expr
	Body     *Block
	Position token.Position
}

func (w *WhileStatement) Pos() token.Position { return w.Position }
func (w *WhileStatement) stmtNode()           {}

// ForStatement is `for target in iterable: block`.
type ForStatement struct {
	Target   Expr
	Iter     Expr
	Body     *Block
	Position token.Position
}

func (f *ForStatement) Pos() token.Position { return f.Position }
func (f *ForStatement) stmtNode()           {}

// BreakStatement, ContinueStatement, PassStatement are the trivial control
// statements.
type BreakStatement struct{ Position token.Position }

func (b *BreakStatement) Pos() token.Position { return b.Position }
func (b *BreakStatement) stmtNode()           {}

type ContinueStatement struct{ Position token.Position }

func (c *ContinueStatement) Pos() token.Position { return c.Position }
func (c *ContinueStatement) stmtNode()           {}

type PassStatement struct{ Position token.Position }

func (p *PassStatement) Pos() token.Position { return p.Position }
func (p *PassStatement) stmtNode()           {}

// ReturnStatement is `return expr?`.
type ReturnStatement struct {
	Value    Expr // nil if bare `return`
	Position token.Position
}

func (r *ReturnStatement) Pos() token.Position { return r.Position }
func (r *ReturnStatement) stmtNode()           {}

// Param is one function parameter: name, optional type annotation, optional
// default, and a variadic flag.
type Param struct {
	Name     string
	Type     *TypeExpr // nil if untyped
	Default  Expr      // nil if no default
	Variadic bool
}

// TypeExpr is a (possibly parameterized) type annotation, e.g. `int`,
// `list[int]`, `MyStruct`.
type TypeExpr struct {
	Name     string
	Args     []*TypeExpr // e.g. list[T] -> Args=[T]
	Position token.Position
}

func (t *TypeExpr) Pos() token.Position { return t.Position }

// FuncDef is `def [(recv: Type)] name(params) [-> ret]: block`.
type FuncDef struct {
	ReceiverName string    // "" if not a method
	ReceiverType *TypeExpr // nil if not a method
	Name         string
	Params       []*Param
	ReturnType   *TypeExpr // nil if unannotated
	Body         *Block
	IsAsync      bool // always false for Dana-defined functions, per §9
	Position     token.Position
}

func (f *FuncDef) Pos() token.Position { return f.Position }
func (f *FuncDef) stmtNode()           {}

// StructField is one field declaration inside a struct def.
type StructField struct {
	Name    string
	Type    *TypeExpr
	Default Expr // nil if none
}

// StructDef is `struct Name: field: Type [= default] ...`.
type StructDef struct {
	Name     string
	Fields   []*StructField
	Position token.Position
}

func (s *StructDef) Pos() token.Position { return s.Position }
func (s *StructDef) stmtNode()           {}

// ImportStatement is `import path.to.module [as ns]`.
type ImportStatement struct {
	Path      string
	Namespace string // "" if no `as`; the interpreter's execImport picks the default
	Position  token.Position
}

func (i *ImportStatement) Pos() token.Position { return i.Position }
func (i *ImportStatement) stmtNode()           {}

// WithBinding is one `name = expr` (or bare expr) inside a with-statement.
type WithBinding struct {
	Name string // "" if unnamed (implicit binding)
	Expr Expr
}

// WithStatement is `with binding[, binding...]: block`.
type WithStatement struct {
	Bindings []WithBinding
	Body     *Block
	Position token.Position
}

func (w *WithStatement) Pos() token.Position { return w.Position }
func (w *WithStatement) stmtNode()           {}

// ExceptClause is one `except [Type [as name]]: block`.
type ExceptClause struct {
	Type string // "" matches any DanaError
	As   string // "" if unbound
	Body *Block
}

// TryStatement is try/except*/finally.
type TryStatement struct {
	Body     *Block
	Excepts  []ExceptClause
	Finally  *Block // nil if absent
	Position token.Position
}

func (t *TryStatement) Pos() token.Position { return t.Position }
func (t *TryStatement) stmtNode()           {}

// ---- Expressions ----

// Literal is an int/float/bool/string/null constant.
type Literal struct {
	Kind     LiteralKind
	IntVal   int64
	FloatVal float64
	BoolVal  bool
	StrVal   string
	Position token.Position
}

type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitBool
	LitString
	LitNull
)

func (l *Literal) Pos() token.Position { return l.Position }
func (l *Literal) exprNode()           {}

// Identifier is a bare (unscoped) name reference; resolved via the
// local->private->public->system search order unless it is the target of
// an assignment (spec §3.2).
type Identifier struct {
	Name     string
	Position token.Position
}

func (i *Identifier) Pos() token.Position { return i.Position }
func (i *Identifier) exprNode()           {}

// BinaryOp covers arithmetic, comparison, membership, and logical infix
// operators.
type BinaryOp struct {
	Op       string // "+","-","*","/","%","**","==","!=","<","<=",">",">=","and","or","in","not in"
	Left     Expr
	Right    Expr
	Position token.Position
}

func (b *BinaryOp) Pos() token.Position { return b.Position }
func (b *BinaryOp) exprNode()           {}

// UnaryOp covers `not x` and unary `-x`.
type UnaryOp struct {
	Op       string // "not", "-"
	X        Expr
	Position token.Position
}

func (u *UnaryOp) Pos() token.Position { return u.Position }
func (u *UnaryOp) exprNode()           {}

// Pipeline is `f | g` — composition when both operands are callables,
// application when the left operand is a value (spec §4.4.2).
type Pipeline struct {
	Left     Expr
	Right    Expr
	Position token.Position
}

func (p *Pipeline) Pos() token.Position { return p.Position }
func (p *Pipeline) exprNode()           {}

// CallArg is one call argument: positional (Name=="") or keyword.
type CallArg struct {
	Name  string
	Value Expr
}

// Call is `expr(args)`.
type Call struct {
	Callee   Expr
	Args     []CallArg
	Position token.Position
}

func (c *Call) Pos() token.Position { return c.Position }
func (c *Call) exprNode()           {}

// Attribute is `expr.field`.
type Attribute struct {
	X        Expr
	Field    string
	Position token.Position
}

func (a *Attribute) Pos() token.Position { return a.Position }
func (a *Attribute) exprNode()           {}

// Subscript is `expr[index]`.
type Subscript struct {
	X        Expr
	Index    Expr
	Position token.Position
}

func (s *Subscript) Pos() token.Position { return s.Position }
func (s *Subscript) exprNode()           {}

// ListLit, TupleLit, SetLit are bracketed literal collections.
type ListLit struct {
	Elems    []Expr
	Position token.Position
}

func (l *ListLit) Pos() token.Position { return l.Position }
func (l *ListLit) exprNode()           {}

type TupleLit struct {
	Elems    []Expr
	Position token.Position
}

func (t *TupleLit) Pos() token.Position { return t.Position }
func (t *TupleLit) exprNode()           {}

type SetLit struct {
	Elems    []Expr
	Position token.Position
}

func (s *SetLit) Pos() token.Position { return s.Position }
func (s *SetLit) exprNode()           {}

// DictEntry is one `key: value` pair in a dict literal.
type DictEntry struct {
	Key   Expr
	Value Expr
}

// DictLit is `{key: value, ...}`.
type DictLit struct {
	Entries  []DictEntry
	Position token.Position
}

func (d *DictLit) Pos() token.Position { return d.Position }
func (d *DictLit) exprNode()           {}

// Comprehension is `[expr for target in iter (if cond)?]`.
type Comprehension struct {
	Result   Expr
	Target   Expr
	Iter     Expr
	Cond     Expr // nil if absent
	Position token.Position
}

func (c *Comprehension) Pos() token.Position { return c.Position }
func (c *Comprehension) exprNode()           {}

// Lambda is `lambda params: expr`.
type Lambda struct {
	Params   []*Param
	Body     Expr
	Position token.Position
}

func (l *Lambda) Pos() token.Position { return l.Position }
func (l *Lambda) exprNode()           {}

// StructLit is `Name(field=value, ...)` — syntactically identical to Call
// but resolved as a struct constructor at evaluation time when Name
// matches a registered struct type.
type StructLit = Call

