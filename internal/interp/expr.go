package interp

import (
	"github.com/dana-lang/dana/internal/ast"
	"github.com/dana-lang/dana/internal/danaerr"
	"github.com/dana-lang/dana/internal/values"
)

// evalExpr evaluates expr, returning a non-nil signal only on error (spec
// §4.4.2: expressions are eagerly evaluated; there is no expression-level
// break/continue/return, only error propagation).
func (ip *Interpreter) evalExpr(expr ast.Expr) (values.Value, *signal) {
	switch e := expr.(type) {
	case *ast.Literal:
		return ip.evalLiteral(e), nil
	case *ast.Identifier:
		return ip.evalIdentifier(e)
	case *ast.ScopedName:
		scope, err := scopeOf(e.Scope)
		if err != nil {
			return nil, errSignal(err)
		}
		v, err := ip.Ctx.Get(scope, e.Name)
		if err != nil {
			return nil, errSignal(err)
		}
		return v, nil
	case *ast.BinaryOp:
		return ip.evalBinaryOp(e)
	case *ast.UnaryOp:
		return ip.evalUnaryOp(e)
	case *ast.Pipeline:
		return ip.evalPipeline(e)
	case *ast.Call:
		return ip.evalCall(e)
	case *ast.Attribute:
		return ip.evalAttribute(e)
	case *ast.Subscript:
		return ip.evalSubscript(e)
	case *ast.ListLit:
		return ip.evalElemsAs(e.Elems, func(vs []values.Value) values.Value { return &values.List{Elems: vs} })
	case *ast.TupleLit:
		return ip.evalElemsAs(e.Elems, func(vs []values.Value) values.Value { return &values.Tuple{Elems: vs} })
	case *ast.SetLit:
		return ip.evalElemsAs(e.Elems, func(vs []values.Value) values.Value { return values.NewSet(vs...) })
	case *ast.DictLit:
		return ip.evalDictLit(e)
	case *ast.Comprehension:
		return ip.evalComprehension(e)
	case *ast.Lambda:
		return &values.Function{LambdaBody: e.Body, Params: e.Params, Closure: ip.Ctx.CurrentFrame()}, nil
	}
	return nil, errSignal(danaerr.NewInternalError("unhandled expression type %T", expr))
}

func (ip *Interpreter) evalLiteral(l *ast.Literal) values.Value {
	switch l.Kind {
	case ast.LitInt:
		return values.Int(l.IntVal)
	case ast.LitFloat:
		return values.Float(l.FloatVal)
	case ast.LitBool:
		return values.Bool(l.BoolVal)
	case ast.LitString:
		return values.Str(l.StrVal)
	case ast.LitNull:
		return values.NullValue
	}
	return values.NullValue
}

func (ip *Interpreter) evalIdentifier(id *ast.Identifier) (values.Value, *signal) {
	_, v, err := ip.Ctx.Resolve(id.Name)
	if err == nil {
		return v, nil
	}
	if rec, rerr := ip.Registry.Resolve(id.Name); rerr == nil {
		return rec.Func, nil
	}
	return nil, errSignal(err)
}

func (ip *Interpreter) evalUnaryOp(u *ast.UnaryOp) (values.Value, *signal) {
	x, sig := ip.evalExpr(u.X)
	if sig != nil {
		return nil, sig
	}
	switch u.Op {
	case "not":
		return values.Bool(!values.Truthy(x)), nil
	case "-":
		switch n := x.(type) {
		case values.Int:
			return -n, nil
		case values.Float:
			return -n, nil
		}
		return nil, errSignal(danaerr.NewTypeError(ip.loc(u), "bad operand type for unary -: %s", x.Type()))
	}
	return nil, errSignal(danaerr.NewInternalError("unknown unary operator %q", u.Op))
}

func (ip *Interpreter) evalBinaryOp(b *ast.BinaryOp) (values.Value, *signal) {
	if b.Op == "and" {
		left, sig := ip.evalExpr(b.Left)
		if sig != nil {
			return nil, sig
		}
		if !values.Truthy(left) {
			return left, nil
		}
		return ip.evalExpr(b.Right)
	}
	if b.Op == "or" {
		left, sig := ip.evalExpr(b.Left)
		if sig != nil {
			return nil, sig
		}
		if values.Truthy(left) {
			return left, nil
		}
		return ip.evalExpr(b.Right)
	}

	left, sig := ip.evalExpr(b.Left)
	if sig != nil {
		return nil, sig
	}
	right, sig := ip.evalExpr(b.Right)
	if sig != nil {
		return nil, sig
	}

	var result values.Value
	var err error
	switch b.Op {
	case "+":
		result, err = values.Add(left, right)
	case "-":
		result, err = values.Sub(left, right)
	case "*":
		result, err = values.Mul(left, right)
	case "/":
		result, err = values.Div(left, right)
	case "%":
		result, err = values.Mod(left, right)
	case "**":
		result, err = values.Pow(left, right)
	case "==":
		return values.Bool(values.Equal(left, right)), nil
	case "!=":
		return values.Bool(!values.Equal(left, right)), nil
	case "<", "<=", ">", ">=":
		var cmp int
		cmp, err = values.Compare(left, right)
		if err == nil {
			result = values.Bool(compareMatches(b.Op, cmp))
		}
	case "in":
		var ok bool
		ok, err = values.Contains(left, right)
		if err == nil {
			result = values.Bool(ok)
		}
	case "not in":
		var ok bool
		ok, err = values.Contains(left, right)
		if err == nil {
			result = values.Bool(!ok)
		}
	default:
		return nil, errSignal(danaerr.NewInternalError("unknown binary operator %q", b.Op))
	}
	if err != nil {
		return nil, errSignal(danaerr.NewTypeError(ip.loc(b), "%v", err))
	}
	return result, nil
}

func compareMatches(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return false
}

// evalPipeline disambiguates `|` by the runtime kind of the left operand
// (spec §4.4.2): a callable left operand composes (`lambda x: g(f(x))`); a
// plain value left operand applies (`f(x)`).
func (ip *Interpreter) evalPipeline(p *ast.Pipeline) (values.Value, *signal) {
	left, sig := ip.evalExpr(p.Left)
	if sig != nil {
		return nil, sig
	}
	rightVal, sig := ip.evalExpr(p.Right)
	if sig != nil {
		return nil, sig
	}
	rightFn, ok := rightVal.(*values.Function)
	if !ok {
		return nil, errSignal(danaerr.NewTypeError(ip.loc(p), "right operand of '|' must be callable, got %s", rightVal.Type()))
	}

	if leftFn, ok := left.(*values.Function); ok {
		return &values.Function{
			Name: "<pipeline>",
			Native: func(ctx any, args []values.Value, kwargs map[string]values.Value) (values.Value, error) {
				v, err := ip.invokeFunction(leftFn, args, kwargs, nil)
				if err != nil {
					return nil, err
				}
				return ip.invokeFunction(rightFn, []values.Value{v}, nil, nil)
			},
		}, nil
	}

	v, err := ip.invokeFunction(rightFn, []values.Value{left}, nil, nil)
	if err != nil {
		return nil, errSignal(err)
	}
	return v, nil
}

func (ip *Interpreter) evalAttribute(a *ast.Attribute) (values.Value, *signal) {
	if id, ok := a.X.(*ast.Identifier); ok {
		if _, _, err := ip.Ctx.Resolve(id.Name); err != nil {
			if rec, rerr := ip.Registry.Resolve(id.Name + "." + a.Field); rerr == nil {
				return rec.Func, nil
			}
		}
	}
	obj, sig := ip.evalExpr(a.X)
	if sig != nil {
		return nil, sig
	}
	switch v := obj.(type) {
	case *values.StructInstance:
		fv, ok := v.Fields[a.Field]
		if !ok {
			return nil, errSignal(danaerr.NewTypeError(ip.loc(a), "struct %s has no field %q", v.TypeName, a.Field))
		}
		return fv, nil
	case *values.ErrorValue:
		switch a.Field {
		case "kind":
			return values.Str(v.Kind), nil
		case "message":
			return values.Str(v.Message), nil
		case "location":
			return values.Str(v.Location), nil
		}
	}
	return nil, errSignal(danaerr.NewTypeError(ip.loc(a), "value of type %s has no attribute %q", obj.Type(), a.Field))
}

func (ip *Interpreter) evalSubscript(s *ast.Subscript) (values.Value, *signal) {
	obj, sig := ip.evalExpr(s.X)
	if sig != nil {
		return nil, sig
	}
	idx, sig := ip.evalExpr(s.Index)
	if sig != nil {
		return nil, sig
	}
	return ip.readSubscript(s, obj, idx)
}

// readSubscript reads obj[idx] given already-evaluated obj/idx, so a caller
// that needs both the current value and the container (e.g. compound
// assignment) can evaluate s.X/s.Index exactly once.
func (ip *Interpreter) readSubscript(s *ast.Subscript, obj, idx values.Value) (values.Value, *signal) {
	switch c := obj.(type) {
	case *values.List:
		i, err := indexOf(idx, len(c.Elems))
		if err != nil {
			return nil, errSignal(danaerr.NewTypeError(ip.loc(s), "%v", err))
		}
		return c.Elems[i], nil
	case *values.Tuple:
		i, err := indexOf(idx, len(c.Elems))
		if err != nil {
			return nil, errSignal(danaerr.NewTypeError(ip.loc(s), "%v", err))
		}
		return c.Elems[i], nil
	case *values.Mapping:
		v, ok := c.Get(idx)
		if !ok {
			return nil, errSignal(danaerr.NewNameNotBound(idx.String(), ip.loc(s)))
		}
		return v, nil
	case values.Str:
		runes := []rune(string(c))
		i, err := indexOf(idx, len(runes))
		if err != nil {
			return nil, errSignal(danaerr.NewTypeError(ip.loc(s), "%v", err))
		}
		return values.Str(string(runes[i])), nil
	}
	return nil, errSignal(danaerr.NewTypeError(ip.loc(s), "value of type %s is not subscriptable", obj.Type()))
}

// indexOf resolves a Dana subscript index to a Go slice index, supporting
// Python-style negative indexing from the end.
func indexOf(idx values.Value, length int) (int, error) {
	i, ok := idx.(values.Int)
	if !ok {
		return 0, danaerr.NewTypeError(danaerr.Location{}, "index must be an int, got %s", idx.Type())
	}
	n := int(i)
	if n < 0 {
		n += length
	}
	if n < 0 || n >= length {
		return 0, danaerr.NewTypeError(danaerr.Location{}, "index out of range")
	}
	return n, nil
}

func (ip *Interpreter) evalElemsAs(elems []ast.Expr, build func([]values.Value) values.Value) (values.Value, *signal) {
	vs := make([]values.Value, 0, len(elems))
	for _, e := range elems {
		v, sig := ip.evalExpr(e)
		if sig != nil {
			return nil, sig
		}
		vs = append(vs, v)
	}
	return build(vs), nil
}

func (ip *Interpreter) evalDictLit(d *ast.DictLit) (values.Value, *signal) {
	m := values.NewMapping()
	for _, entry := range d.Entries {
		k, sig := ip.evalExpr(entry.Key)
		if sig != nil {
			return nil, sig
		}
		v, sig := ip.evalExpr(entry.Value)
		if sig != nil {
			return nil, sig
		}
		m.Set(k, v)
	}
	return m, nil
}

// evalComprehension evaluates `[expr for target in iter if cond]` (spec
// §4.4.2), scoping the generator variable to a frame popped after the loop.
func (ip *Interpreter) evalComprehension(c *ast.Comprehension) (values.Value, *signal) {
	iterVal, sig := ip.evalExpr(c.Iter)
	if sig != nil {
		return nil, sig
	}
	elems, err := iterableElems(iterVal)
	if err != nil {
		return nil, errSignal(danaerr.NewTypeError(ip.loc(c), "%v", err))
	}

	ip.Ctx.PushFrame("<comprehension>", ip.Ctx.CurrentFrame())
	defer ip.Ctx.PopFrame()

	var out []values.Value
	for _, elem := range elems {
		if sig := ip.assignTo(c.Target, elem); sig != nil {
			return nil, sig
		}
		if c.Cond != nil {
			cond, sig := ip.evalExpr(c.Cond)
			if sig != nil {
				return nil, sig
			}
			if !values.Truthy(cond) {
				continue
			}
		}
		v, sig := ip.evalExpr(c.Result)
		if sig != nil {
			return nil, sig
		}
		out = append(out, v)
	}
	return &values.List{Elems: out}, nil
}
