package interp

import (
	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/context"
	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/values"
)

// execStmt executes one statement, returning a non-nil signal only for
// break/continue/return/error; nil means "fell through normally."
func (ip *Interpreter) execStmt(stmt ast.Statement) *signal {
	if ip.Observer != nil {
		p := stmt.Pos()
		ip.Observer.Statement(ip.File, p.Line)
	}
	switch s := stmt.(type) {
	case *ast.Assignment:
		return ip.execAssignment(s)
	case *ast.CompoundAssignment:
		return ip.execCompoundAssignment(s)
	case *ast.ExprStatement:
		_, sig := ip.evalExpr(s.X)
		return sig
	case *ast.IfStatement:
		return ip.execIf(s)
	case *ast.WhileStatement:
		return ip.execWhile(s)
	case *ast.ForStatement:
		return ip.execFor(s)
	case *ast.BreakStatement:
		return &signal{kind: sigBreak}
	case *ast.ContinueStatement:
		return &signal{kind: sigContinue}
	case *ast.PassStatement:
		return nil
	case *ast.ReturnStatement:
		return ip.execReturn(s)
	case *ast.FuncDef:
		return ip.execFuncDef(s)
	case *ast.StructDef:
		return ip.execStructDef(s)
	case *ast.ImportStatement:
		return ip.execImport(s)
	case *ast.WithStatement:
		return ip.execWith(s)
	case *ast.TryStatement:
		return ip.execTry(s)
	}
	return errSignal(danaerr.NewInternalError("unhandled statement type %T", stmt))
}

func (ip *Interpreter) execBlock(b *ast.Block) *signal {
	for _, stmt := range b.Statements {
		if sig := ip.execStmt(stmt); sig != nil {
			return sig
		}
	}
	return nil
}

// execAssignment evaluates the RHS and assigns to target (spec §4.4.1). A
// `reason(...)` RHS with an annotated target routes through the Reasoner
// with the annotation as the inferred-output-type hint (spec §4.4.3).
func (ip *Interpreter) execAssignment(s *ast.Assignment) *signal {
	var v values.Value
	var sig *signal

	if call, ok := s.Value.(*ast.Call); ok {
		if id, ok := call.Callee.(*ast.Identifier); ok && id.Name == "reason" {
			v, sig = ip.evalReasonCall(call, s.TargetType)
			if sig != nil {
				return sig
			}
			return ip.assignTo(s.Target, v)
		}
	}

	v, sig = ip.evalExpr(s.Value)
	if sig != nil {
		return sig
	}
	return ip.assignTo(s.Target, v)
}

// assignTo writes v to target: bare names write local (spec §4.4.1 "simple
// bare assignment always writes local"), scoped names write that scope, and
// attribute/subscript targets mutate the addressed container/field.
func (ip *Interpreter) assignTo(target ast.Expr, v values.Value) *signal {
	switch t := target.(type) {
	case *ast.Identifier:
		ip.Ctx.Set(context.Local, t.Name, v)
		return nil
	case *ast.ScopedName:
		scope, err := scopeOf(t.Scope)
		if err != nil {
			return errSignal(err)
		}
		ip.Ctx.Set(scope, t.Name, v)
		return nil
	case *ast.Attribute:
		obj, sig := ip.evalExpr(t.X)
		if sig != nil {
			return sig
		}
		si, ok := obj.(*values.StructInstance)
		if !ok {
			return errSignal(danaerr.NewTypeError(ip.loc(t), "cannot assign to attribute of non-struct value %s", obj.Type()))
		}
		si.Fields[t.Field] = v
		return nil
	case *ast.Subscript:
		obj, sig := ip.evalExpr(t.X)
		if sig != nil {
			return sig
		}
		idx, sig := ip.evalExpr(t.Index)
		if sig != nil {
			return sig
		}
		return ip.assignSubscript(t, obj, idx, v)
	}
	return errSignal(danaerr.NewInternalError("invalid assignment target %T", target))
}

func (ip *Interpreter) assignSubscript(t *ast.Subscript, obj, idx, v values.Value) *signal {
	switch c := obj.(type) {
	case *values.List:
		i, err := indexOf(idx, len(c.Elems))
		if err != nil {
			return errSignal(danaerr.NewTypeError(ip.loc(t), "%v", err))
		}
		c.Elems[i] = v
		return nil
	case *values.Mapping:
		c.Set(idx, v)
		return nil
	}
	return errSignal(danaerr.NewTypeError(ip.loc(t), "object of type %s does not support item assignment", obj.Type()))
}

func scopeOf(s string) (context.Scope, error) {
	if s == "" {
		return context.Local, nil
	}
	if !context.IsScope(s) {
		return "", danaerr.NewInternalError("unknown scope %q", s)
	}
	return context.Scope(s), nil
}

// execCompoundAssignment evaluates target's container/index or object exactly
// once (spec §4.4.1, §8.2, Open Question 1: "a[b] evaluated once, matching
// Python"), so e.g. `arr[next()] += 1` calls next() a single time.
func (ip *Interpreter) execCompoundAssignment(s *ast.CompoundAssignment) *signal {
	switch t := s.Target.(type) {
	case *ast.Subscript:
		obj, sig := ip.evalExpr(t.X)
		if sig != nil {
			return sig
		}
		idx, sig := ip.evalExpr(t.Index)
		if sig != nil {
			return sig
		}
		cur, sig := ip.readSubscript(t, obj, idx)
		if sig != nil {
			return sig
		}
		result, sig := ip.evalCompoundResult(s, cur)
		if sig != nil {
			return sig
		}
		return ip.assignSubscript(t, obj, idx, result)
	case *ast.Attribute:
		obj, sig := ip.evalExpr(t.X)
		if sig != nil {
			return sig
		}
		si, ok := obj.(*values.StructInstance)
		if !ok {
			return errSignal(danaerr.NewTypeError(ip.loc(t), "cannot assign to attribute of non-struct value %s", obj.Type()))
		}
		cur, ok := si.Fields[t.Field]
		if !ok {
			return errSignal(danaerr.NewTypeError(ip.loc(t), "struct %s has no field %q", si.TypeName, t.Field))
		}
		result, sig := ip.evalCompoundResult(s, cur)
		if sig != nil {
			return sig
		}
		si.Fields[t.Field] = result
		return nil
	default:
		cur, sig := ip.evalExpr(s.Target)
		if sig != nil {
			return sig
		}
		result, sig := ip.evalCompoundResult(s, cur)
		if sig != nil {
			return sig
		}
		return ip.assignTo(s.Target, result)
	}
}

func (ip *Interpreter) evalCompoundResult(s *ast.CompoundAssignment, cur values.Value) (values.Value, *signal) {
	rhs, sig := ip.evalExpr(s.Value)
	if sig != nil {
		return nil, sig
	}
	result, err := applyCompound(s.Op, cur, rhs)
	if err != nil {
		return nil, errSignal(danaerr.NewTypeError(ip.loc(s), "%v", err))
	}
	return result, nil
}

func applyCompound(op ast.CompoundAssignOp, cur, rhs values.Value) (values.Value, error) {
	switch op {
	case ast.OpAddAssign:
		return values.Add(cur, rhs)
	case ast.OpSubAssign:
		return values.Sub(cur, rhs)
	case ast.OpMulAssign:
		return values.Mul(cur, rhs)
	case ast.OpDivAssign:
		return values.Div(cur, rhs)
	}
	return nil, danaerr.NewInternalError("unknown compound operator %q", op)
}

func (ip *Interpreter) execIf(s *ast.IfStatement) *signal {
	cond, sig := ip.evalExpr(s.Cond)
	if sig != nil {
		return sig
	}
	if values.Truthy(cond) {
		return ip.execBlock(s.Then)
	}
	for _, elif := range s.Elifs {
		c, sig := ip.evalExpr(elif.Cond)
		if sig != nil {
			return sig
		}
		if values.Truthy(c) {
			return ip.execBlock(elif.Body)
		}
	}
	if s.Else != nil {
		return ip.execBlock(s.Else)
	}
	return nil
}

func (ip *Interpreter) execWhile(s *ast.WhileStatement) *signal {
	for {
		cond, sig := ip.evalExpr(s.Cond)
		if sig != nil {
			return sig
		}
		if !values.Truthy(cond) {
			return nil
		}
		if sig := ip.execBlock(s.Body); sig != nil {
			switch sig.kind {
			case sigBreak:
				return nil
			case sigContinue:
				continue
			default:
				return sig
			}
		}
	}
}

func (ip *Interpreter) execFor(s *ast.ForStatement) *signal {
	iterVal, sig := ip.evalExpr(s.Iter)
	if sig != nil {
		return sig
	}
	elems, err := iterableElems(iterVal)
	if err != nil {
		return errSignal(danaerr.NewTypeError(ip.loc(s), "%v", err))
	}
	for _, elem := range elems {
		if sig := ip.assignTo(s.Target, elem); sig != nil {
			return sig
		}
		if sig := ip.execBlock(s.Body); sig != nil {
			switch sig.kind {
			case sigBreak:
				return nil
			case sigContinue:
				continue
			default:
				return sig
			}
		}
	}
	return nil
}

// iterableElems materializes any `for`-iterable value into a slice (spec
// §4.4.1: "for accepts any iterable, including the lazy iterator produced
// by comprehensions"; this core always materializes, per §4.4.2's note that
// lazy evaluation is not required).
func iterableElems(v values.Value) ([]values.Value, error) {
	switch c := v.(type) {
	case *values.List:
		return c.Elems, nil
	case *values.Tuple:
		return c.Elems, nil
	case *values.Set:
		return c.Values(), nil
	case *values.Mapping:
		return c.Keys(), nil
	case values.Str:
		runes := []rune(string(c))
		out := make([]values.Value, len(runes))
		for i, r := range runes {
			out[i] = values.Str(string(r))
		}
		return out, nil
	}
	return nil, danaerr.NewArgumentError(danaerr.Location{}, "value of type '%s' is not iterable", v.Type())
}

func (ip *Interpreter) execReturn(s *ast.ReturnStatement) *signal {
	if s.Value == nil {
		return returnSignal(values.NullValue)
	}
	v, sig := ip.evalExpr(s.Value)
	if sig != nil {
		return sig
	}
	return returnSignal(v)
}

func (ip *Interpreter) execFuncDef(s *ast.FuncDef) *signal {
	fn := &values.Function{
		Name:       s.Name,
		Params:     s.Params,
		ReturnType: s.ReturnType,
		Body:       s.Body,
		Closure:    ip.Ctx.CurrentFrame(),
		IsAsync:    false,
	}
	if s.ReceiverType != nil {
		fn.ReceiverType = s.ReceiverType.Name
		fn.ReceiverName = s.ReceiverName
		ip.registerMethod(s.ReceiverType.Name, s.Name, fn)
		return nil
	}
	if err := ip.Registry.Register(registryDefaultNamespace, s.Name, fn, false, true); err != nil {
		return errSignal(err)
	}
	return nil
}

const registryDefaultNamespace = ""

func (ip *Interpreter) execStructDef(s *ast.StructDef) *signal {
	st := &values.StructType{Name: s.Name}
	for _, f := range s.Fields {
		var def values.Value
		if f.Default != nil {
			v, sig := ip.evalExpr(f.Default)
			if sig != nil {
				return sig
			}
			def = v
		}
		st.Fields = append(st.Fields, values.StructFieldDef{Name: f.Name, Type: f.Type.Name, Default: def})
	}
	ip.Structs.Define(st)
	return nil
}

func (ip *Interpreter) execImport(s *ast.ImportStatement) *signal {
	if ip.Importer == nil {
		return errSignal(danaerr.NewInternalError("no module loader wired in; cannot import %q", s.Path))
	}
	ns := s.Namespace
	if ns == "" {
		ns = defaultNamespaceFor(s.Path)
	}
	if err := ip.Importer.Import(ip, s.Path, ns); err != nil {
		return errSignal(err)
	}
	return nil
}

// defaultNamespaceFor derives an implicit namespace from the last segment
// of a dotted module path when no `as` clause is given.
func defaultNamespaceFor(path string) string {
	last := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			last = path[i+1:]
			break
		}
	}
	return last
}
