package eval

import (
	"github.com/fabrique-build/fabrique/src/ast"
	"github.com/fabrique-build/fabrique/src/dag"
	"github.com/fabrique-build/fabrique/src/fabtype"
	"github.com/fabrique-build/fabrique/src/plugin"
)

// Evaluate dispatches on the concrete type of node and returns the Value it
// produces (§4.6). This is the "direct dispatch" type switch called for in
// the data model's Design Notes, replacing a visitor pattern: every
// concrete ast.Node variant gets one case here, and ast itself stays free of
// any Evaluate method.
func Evaluate(ctx *Context, scope *Scope, node ast.Node) (dag.Value, *dag.Error) {
	switch n := node.(type) {
	case *ast.Literal:
		return evaluateLiteral(ctx, n)
	case *ast.NameReference:
		return evaluateNameReference(ctx, scope, n)
	case *ast.BinaryOp:
		return evaluateBinaryOp(ctx, scope, n)
	case *ast.UnaryOp:
		return evaluateUnaryOp(ctx, scope, n)
	case *ast.Conditional:
		return evaluateConditional(ctx, scope, n)
	case *ast.ListExpr:
		return evaluateListExpr(ctx, scope, n)
	case *ast.RecordExpr:
		return evaluateRecordExpr(ctx, scope, n)
	case *ast.Foreach:
		return evaluateForeach(ctx, scope, n)
	case *ast.FunctionLiteral:
		return evaluateFunctionLiteral(ctx, scope, n)
	case *ast.Call:
		return evaluateCall(ctx, scope, n)
	case *ast.ActionExpr:
		return evaluateActionExpr(ctx, scope, n)
	case *ast.FilenameLiteral:
		return evaluateFilenameLiteral(ctx, scope, n)
	case *ast.FileListExpr:
		return evaluateFileListExpr(ctx, scope, n)
	case *ast.ImportExpr:
		return evaluateImportExprNode(ctx, scope, n)
	case *ast.TypeDecl:
		return evaluateTypeDeclExpr(ctx, scope, n)
	case *ast.ValueDecl:
		return evaluateValueDeclExpr(ctx, scope, n)
	case *ast.Program:
		return evaluateProgramExpr(ctx, scope, n)
	case *ast.TypeExpr:
		t, err := resolveType(ctx.Types, n.Range(), n)
		if err != nil {
			return nil, err
		}
		return dag.NewTypeReference(ctx.Types, n.Range(), t), nil
	default:
		return nil, dag.AssertionFailuref(node.Range(), "evaluator has no case for AST node %T", node)
	}
}

func evaluateLiteral(ctx *Context, n *ast.Literal) (dag.Value, *dag.Error) {
	switch {
	case n.Bool != nil:
		return dag.NewBoolean(ctx.Types, n.Range(), *n.Bool), nil
	case n.Int != nil:
		return dag.NewInteger(ctx.Types, n.Range(), *n.Int), nil
	case n.String != nil:
		return dag.NewString(ctx.Types, n.Range(), *n.String), nil
	default:
		return nil, dag.AssertionFailuref(n.Range(), "literal has no value set")
	}
}

func evaluateNameReference(ctx *Context, scope *Scope, n *ast.NameReference) (dag.Value, *dag.Error) {
	v, err := ctx.Lookup(scope, n.Range(), n.Components[0])
	if err != nil {
		return nil, err
	}
	for _, field := range n.Components[1:] {
		fv, ok := v.Field(field)
		if !ok {
			return nil, dag.Errorf(n.Range(), "%s has no field '%s'", v.Type(), field)
		}
		v = fv
	}
	return v, nil
}

func evaluateBinaryOp(ctx *Context, scope *Scope, n *ast.BinaryOp) (dag.Value, *dag.Error) {
	left, err := Evaluate(ctx, scope, n.Left)
	if err != nil {
		return nil, err
	}
	right, err := Evaluate(ctx, scope, n.Right)
	if err != nil {
		return nil, err
	}
	at := n.Range()
	switch n.Op {
	case ast.OpAdd:
		return left.Add(at, right)
	case ast.OpSubtract:
		return left.Subtract(at, right)
	case ast.OpMultiply:
		return left.MultiplyBy(at, right)
	case ast.OpDivide:
		return left.DivideBy(at, right)
	case ast.OpAnd:
		return left.And(at, right)
	case ast.OpOr:
		return left.Or(at, right)
	case ast.OpXor:
		return left.Xor(at, right)
	case ast.OpEquals:
		return left.Equals(at, right)
	case ast.OpNotEquals:
		eq, err := left.Equals(at, right)
		if err != nil {
			return nil, err
		}
		return eq.Not(at)
	case ast.OpLessThan, ast.OpGreaterThan:
		li, lok := left.(*dag.Integer)
		ri, rok := right.(*dag.Integer)
		if !lok || !rok {
			return nil, dag.Errorf(at, "comparison operators require int operands, got %s and %s", left.Type(), right.Type())
		}
		var v bool
		if n.Op == ast.OpLessThan {
			v = li.Val < ri.Val
		} else {
			v = li.Val > ri.Val
		}
		return dag.NewBoolean(ctx.Types, at, v), nil
	default:
		return nil, dag.AssertionFailuref(at, "unknown binary operator")
	}
}

func evaluateUnaryOp(ctx *Context, scope *Scope, n *ast.UnaryOp) (dag.Value, *dag.Error) {
	v, err := Evaluate(ctx, scope, n.Operand)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case ast.OpNegate:
		return v.Negate(n.Range())
	case ast.OpNot:
		return v.Not(n.Range())
	default:
		return nil, dag.AssertionFailuref(n.Range(), "unknown unary operator")
	}
}

func evaluateConditional(ctx *Context, scope *Scope, n *ast.Conditional) (dag.Value, *dag.Error) {
	cond, err := Evaluate(ctx, scope, n.Condition)
	if err != nil {
		return nil, err
	}
	if cond.IsTruthy() {
		return Evaluate(ctx, scope, n.Then)
	}
	return Evaluate(ctx, scope, n.Else)
}

func evaluateListExpr(ctx *Context, scope *Scope, n *ast.ListExpr) (dag.Value, *dag.Error) {
	vals := make([]dag.Value, len(n.Elements))
	elem := ctx.Types.Nil()
	for i, e := range n.Elements {
		v, err := Evaluate(ctx, scope, e)
		if err != nil {
			return nil, err
		}
		vals[i] = v
		elem = elem.Supertype(v.Type())
	}
	return dag.NewList(ctx.Types, n.Range(), elem, vals), nil
}

func evaluateRecordExpr(ctx *Context, scope *Scope, n *ast.RecordExpr) (dag.Value, *dag.Error) {
	guard := ctx.EnterScope("<record>", scope)
	defer guard.Exit()
	sc := ctx.CurrentScope()
	order := make([]string, len(n.Fields))
	fields := make(map[string]dag.Value, len(n.Fields))
	for i, f := range n.Fields {
		v, err := Evaluate(ctx, sc, f.Value)
		if err != nil {
			return nil, err
		}
		order[i] = f.Name
		fields[f.Name] = v
		sc.define(f.Name, v)
	}
	return dag.NewRecord(ctx.Types, n.Range(), order, fields), nil
}

func evaluateForeach(ctx *Context, scope *Scope, n *ast.Foreach) (dag.Value, *dag.Error) {
	src, err := Evaluate(ctx, scope, n.Source)
	if err != nil {
		return nil, err
	}
	list, ok := src.(*dag.List)
	if !ok {
		return nil, dag.Errorf(n.Range(), "foreach source must be a list, got %s", src.Type())
	}
	vals := make([]dag.Value, 0, list.Len())
	elem := ctx.Types.Nil()
	for i := 0; i < list.Len(); i++ {
		guard := ctx.EnterScope("<foreach>", scope)
		sc := ctx.CurrentScope()
		sc.define(n.Name, list.Item(i))
		v, err := Evaluate(ctx, sc, n.Body)
		guard.Exit()
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
		elem = elem.Supertype(v.Type())
	}
	return dag.NewList(ctx.Types, n.Range(), elem, vals), nil
}

func resolveParams(ctx *Context, scope *Scope, at ast.Range, params []ast.Param) ([]dag.Param, *dag.Error) {
	out := make([]dag.Param, len(params))
	for i, p := range params {
		t, err := resolveType(ctx.Types, at, typeExprOf(p.Type))
		if err != nil {
			return nil, err
		}
		var def dag.Value
		if p.Default != nil {
			d, derr := Evaluate(ctx, scope, p.Default)
			if derr != nil {
				return nil, derr
			}
			def = d
		}
		out[i] = dag.Param{Name: p.Name, Type: t, Default: def}
	}
	return out, nil
}

// typeExprOf narrows a Param's/ActionExpr's Type node (ast.Node, nil if
// unconstrained) down to *ast.TypeExpr, which is the only concrete type a
// parser should ever produce for that field.
func typeExprOf(n ast.Node) *ast.TypeExpr {
	if n == nil {
		return nil
	}
	te, _ := n.(*ast.TypeExpr)
	return te
}

func evaluateFunctionLiteral(ctx *Context, scope *Scope, n *ast.FunctionLiteral) (dag.Value, *dag.Error) {
	params, err := resolveParams(ctx, scope, n.Range(), n.Params)
	if err != nil {
		return nil, err
	}
	resultType, err := resolveType(ctx.Types, n.Range(), typeExprOf(n.ResultType))
	if err != nil {
		return nil, err
	}
	name := ctx.CurrentName()
	capturedScope := scope
	body := dag.BodyFunc(func(args map[string]dag.Value) (dag.Value, *dag.Error) {
		guard := ctx.EnterScope(name, capturedScope)
		defer guard.Exit()
		sc := ctx.CurrentScope()
		for k, v := range args {
			sc.define(k, v)
		}
		return Evaluate(ctx, sc, n.Body)
	})
	return dag.NewFunction(ctx.Types, n.Range(), name, params, resultType, body, n.AllowExtraArgs), nil
}

func evaluateCall(ctx *Context, scope *Scope, n *ast.Call) (dag.Value, *dag.Error) {
	target, err := Evaluate(ctx, scope, n.Target)
	if err != nil {
		return nil, err
	}
	callable, ok := target.(dag.Callable)
	if !ok {
		return nil, dag.Errorf(n.Range(), "%s is not callable", target.Type())
	}
	evaluated := make([]evaluatedArg, len(n.Args))
	for i, a := range n.Args {
		v, aerr := Evaluate(ctx, scope, a.Value)
		if aerr != nil {
			return nil, aerr
		}
		evaluated[i] = evaluatedArg{Name: a.Name, Value: v, Pos: a.Pos}
	}
	named, err := nameArguments(n.Range(), callable, evaluated)
	if err != nil {
		return nil, err
	}
	return callable.Invoke(n.Range(), named)
}

func evaluateActionExpr(ctx *Context, scope *Scope, n *ast.ActionExpr) (dag.Value, *dag.Error) {
	cmdVal, err := Evaluate(ctx, scope, n.Command)
	if err != nil {
		return nil, err
	}
	cmd, ok := cmdVal.(*dag.String)
	if !ok {
		return nil, dag.Errorf(n.Command.Range(), "action command must be a string, got %s", cmdVal.Type())
	}
	description := ""
	if n.Description != nil {
		descVal, derr := Evaluate(ctx, scope, n.Description)
		if derr != nil {
			return nil, derr
		}
		desc, ok := descVal.(*dag.String)
		if !ok {
			return nil, dag.Errorf(n.Description.Range(), "action description must be a string, got %s", descVal.Type())
		}
		description = desc.Val
	}
	params, err := resolveParams(ctx, scope, n.Range(), n.Params)
	if err != nil {
		return nil, err
	}
	for _, p := range params {
		if p.Type == nil {
			return nil, dag.Errorf(n.Range(), "action parameter '%s' requires an explicit type", p.Name)
		}
	}
	resultType, err := resolveType(ctx.Types, n.Range(), typeExprOf(n.ResultType))
	if err != nil {
		return nil, err
	}
	if resultType == nil {
		return nil, dag.Errorf(n.Range(), "action requires an explicit result type")
	}
	rule, rerr := ctx.Builder.NewRule(n.Range(), ctx.CurrentName(), cmd.Val, description, params, resultType)
	if rerr != nil {
		return nil, rerr
	}
	return rule, nil
}

func lookupSubdir(ctx *Context, scope *Scope, at ast.Range) (string, *dag.Error) {
	v, err := ctx.Lookup(scope, at, "subdir")
	if err != nil {
		return "", err
	}
	switch sv := v.(type) {
	case *dag.String:
		return sv.Val, nil
	case *dag.File:
		return sv.FullName(), nil
	default:
		return "", nil
	}
}

func evaluateFilenameLiteral(ctx *Context, scope *Scope, n *ast.FilenameLiteral) (dag.Value, *dag.Error) {
	v, err := Evaluate(ctx, scope, n.Name)
	if err != nil {
		return nil, err
	}
	s, ok := v.(*dag.String)
	if !ok {
		return nil, dag.Errorf(n.Range(), "filename must be a string, got %s", v.Type())
	}
	subdir, err := lookupSubdir(ctx, scope, n.Range())
	if err != nil {
		return nil, err
	}
	f := ctx.Builder.NewFile(n.Range(), s.Val, subdir, false, fabtype.TagNone)
	for _, a := range n.Attrs {
		if a.Name == "" {
			return nil, dag.Errorf(a.Pos, "file() attributes must be given by name")
		}
		av, aerr := Evaluate(ctx, scope, a.Value)
		if aerr != nil {
			return nil, aerr
		}
		f.SetAttribute(a.Name, av)
	}
	return f, nil
}

func evaluateFileListExpr(ctx *Context, scope *Scope, n *ast.FileListExpr) (dag.Value, *dag.Error) {
	var subdir string
	var err *dag.Error
	if n.Subdir != nil {
		sv, serr := Evaluate(ctx, scope, n.Subdir)
		if serr != nil {
			return nil, serr
		}
		s, ok := sv.(*dag.String)
		if !ok {
			return nil, dag.Errorf(n.Subdir.Range(), "subdir must be a string, got %s", sv.Type())
		}
		subdir = s.Val
	} else {
		subdir, err = lookupSubdir(ctx, scope, n.Range())
		if err != nil {
			return nil, err
		}
	}
	vals := make([]dag.Value, len(n.Files))
	for i, fe := range n.Files {
		fv, ferr := Evaluate(ctx, scope, fe)
		if ferr != nil {
			return nil, ferr
		}
		s, ok := fv.(*dag.String)
		if !ok {
			return nil, dag.Errorf(fe.Range(), "file list entries must be strings, got %s", fv.Type())
		}
		vals[i] = ctx.Builder.NewFile(fe.Range(), s.Val, subdir, false, fabtype.TagNone)
	}
	return dag.NewList(ctx.Types, n.Range(), ctx.Types.File(), vals), nil
}

func evaluateTypeDeclExpr(ctx *Context, scope *Scope, n *ast.TypeDecl) (dag.Value, *dag.Error) {
	t, err := resolveType(ctx.Types, n.Range(), n.Type)
	if err != nil {
		return nil, err
	}
	ref := dag.NewTypeReference(ctx.Types, n.Range(), t)
	if !scope.define(n.Name, ref) {
		return nil, dag.Errorf(n.Range(), "name '%s' is already defined in this scope", n.Name)
	}
	ctx.Builder.DefineVariable(ctx.QualifiedName(n.Name), ref)
	return ref, nil
}

func evaluateValueDeclExpr(ctx *Context, scope *Scope, n *ast.ValueDecl) (dag.Value, *dag.Error) {
	guard := ctx.Evaluating(n.Name)
	defer guard.Exit()
	v, err := Evaluate(ctx, scope, n.Value)
	if err != nil {
		return nil, err
	}
	if !scope.define(n.Name, v) {
		return nil, dag.Errorf(n.Range(), "name '%s' is already defined in this scope", n.Name)
	}
	// n.Name is already on the Evaluating() stack, so CurrentName is its
	// fully-qualified name.
	ctx.Builder.DefineVariable(ctx.CurrentName(), v)
	return v, nil
}

func evaluateProgramExpr(ctx *Context, scope *Scope, n *ast.Program) (dag.Value, *dag.Error) {
	if err := EvaluateProgram(ctx, scope, n, false); err != nil {
		return nil, err
	}
	return dag.NewBoolean(ctx.Types, n.Range(), true), nil
}

func evaluateImportExprNode(ctx *Context, scope *Scope, n *ast.ImportExpr) (dag.Value, *dag.Error) {
	moduleVal, err := Evaluate(ctx, scope, n.Module)
	if err != nil {
		return nil, err
	}
	name, ok := moduleVal.(*dag.String)
	if !ok {
		return nil, dag.Errorf(n.Range(), "import name must be a string, got %s", moduleVal.Type())
	}
	args := map[string]dag.Value{}
	for _, a := range n.Args {
		if a.Name == "" {
			return nil, dag.Errorf(a.Pos, "import arguments must be named")
		}
		v, aerr := Evaluate(ctx, scope, a.Value)
		if aerr != nil {
			return nil, aerr
		}
		args[a.Name] = v
	}
	if cached, ok := ctx.imported[name.Val]; ok {
		return cached, nil
	}
	if ctx.Resolver == nil {
		return nil, &dag.Error{Kind: dag.KindOS, Range: n.Range(), Message: "import() is disabled: no resolver configured"}
	}
	subdir, err := lookupSubdir(ctx, scope, n.Range())
	if err != nil {
		return nil, err
	}
	resolution, rerr := ctx.Resolver.Resolve(name.Val, subdir)
	if rerr != nil {
		return nil, &dag.Error{Kind: dag.KindOS, Range: n.Range(), Message: rerr.Error()}
	}
	cacheKey := resolution.Path
	if resolution.Kind == plugin.ResolutionPlugin {
		cacheKey = resolution.Plugin.Name()
	}
	if cached, ok := ctx.imported[cacheKey]; ok {
		return cached, nil
	}
	var result dag.Value
	switch resolution.Kind {
	case plugin.ResolutionPlugin:
		rec, perr := resolution.Plugin.Invoke(ctx.Builder, args)
		if perr != nil {
			return nil, dag.Errorf(n.Range(), "plugin %s failed: %s", resolution.Plugin.Name(), perr)
		}
		if rec == nil {
			return nil, dag.Errorf(n.Range(), "plugin %s returned no record", resolution.Plugin.Name())
		}
		result = rec
	case plugin.ResolutionModule:
		if ctx.ParseSource == nil {
			return nil, &dag.Error{Kind: dag.KindOS, Range: n.Range(), Message: "cannot import " + resolution.Path + ": no source parser configured"}
		}
		prog, perr := ctx.ParseSource(resolution.Path)
		if perr != nil {
			return nil, &dag.Error{Kind: dag.KindOS, Range: n.Range(), Message: perr.Error()}
		}
		v, merr := ctx.evaluateModule(resolution.Path, prog, args, subdir)
		if merr != nil {
			return nil, merr
		}
		result = v
	}
	ctx.imported[cacheKey] = result
	return result, nil
}
