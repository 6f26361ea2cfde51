package ast

// Substitute returns a structural copy of expr with every free occurrence
// of an identifier named in repl rewritten to the corresponding
// replacement expression. It never descends into the left-hand side of a
// local declaration or function parameter list that shadows one of the
// replaced names within that subtree — once shadowed, occurrences of the
// name in the shadowed scope are left untouched.
//
// Used by inline-function expansion (spec.md §4.2 "#inline"): the AST is a
// tree, so expansion copies the body rather than rewriting references in
// place.
func Substitute(expr Expression, repl map[string]Expression) Expression {
	if expr == nil || len(repl) == 0 {
		return expr
	}
	switch n := expr.(type) {
	case *Identifier:
		if sub, ok := repl[n.Name]; ok {
			return sub
		}
		return n
	case *UnaryExpression:
		return &UnaryExpression{Token: n.Token, Operator: n.Operator, Operand: Substitute(n.Operand, repl)}
	case *BinaryExpression:
		return &BinaryExpression{Token: n.Token, Left: Substitute(n.Left, repl), Operator: n.Operator, Right: Substitute(n.Right, repl)}
	case *PropertyAccess:
		return &PropertyAccess{Token: n.Token, Object: Substitute(n.Object, repl), Property: n.Property}
	case *IndexExpression:
		return &IndexExpression{Token: n.Token, Object: Substitute(n.Object, repl), Index: Substitute(n.Index, repl)}
	case *CallExpression:
		return &CallExpression{Token: n.Token, Callee: Substitute(n.Callee, repl), Args: substituteList(n.Args, repl)}
	case *MethodCallExpression:
		return &MethodCallExpression{Token: n.Token, Object: Substitute(n.Object, repl), Method: n.Method, Args: substituteList(n.Args, repl)}
	case *ParenExpression:
		return &ParenExpression{Token: n.Token, Inner: Substitute(n.Inner, repl)}
	case *TableConstructor:
		fields := make([]Field, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = Field{Name: f.Name, Key: Substitute(f.Key, repl), Value: Substitute(f.Value, repl)}
		}
		return &TableConstructor{Token: n.Token, Fields: fields}
	case *FunctionLiteral:
		return &FunctionLiteral{Token: n.Token, Params: n.Params, Vararg: n.Vararg, Body: SubstituteBlock(n.Body, shrink(repl, n.Params))}
	case *EvalExpr:
		return &EvalExpr{Token: n.Token, Expr: Substitute(n.Expr, repl)}
	case *LoadExpr:
		return &LoadExpr{Token: n.Token, Expr: Substitute(n.Expr, repl)}
	case *ReprExpr:
		return &ReprExpr{Token: n.Token, Expr: Substitute(n.Expr, repl)}
	case *DoExpr:
		return &DoExpr{Token: n.Token, Body: SubstituteBlock(n.Body, repl)}
	default:
		return expr
	}
}

func substituteList(exprs []Expression, repl map[string]Expression) []Expression {
	if exprs == nil {
		return nil
	}
	out := make([]Expression, len(exprs))
	for i, e := range exprs {
		out[i] = Substitute(e, repl)
	}
	return out
}

// shrink returns repl with any names in shadowed removed, without
// mutating repl.
func shrink(repl map[string]Expression, shadowed []string) map[string]Expression {
	if len(shadowed) == 0 {
		return repl
	}
	out := make(map[string]Expression, len(repl))
	for k, v := range repl {
		out[k] = v
	}
	for _, name := range shadowed {
		delete(out, name)
	}
	return out
}

// SubstituteBlock applies Substitute to every statement of a block,
// stopping the rewrite of a name as soon as a local declaration or
// assignment shadows it within that block (spec.md §4.2: "rebinding f
// deregisters the inline"; the same shadow rule governs inline-parameter
// substitution).
func SubstituteBlock(stmts []Statement, repl map[string]Expression) []Statement {
	if len(stmts) == 0 {
		return stmts
	}
	active := repl
	out := make([]Statement, len(stmts))
	for i, s := range stmts {
		out[i] = substituteStmt(s, active)
		if names := declaredNames(s); len(names) > 0 {
			active = shrink(active, names)
		}
	}
	return out
}

func declaredNames(s Statement) []string {
	switch n := s.(type) {
	case *LocalDeclStatement:
		return n.Names
	case *AssignStatement:
		var names []string
		for _, t := range n.Targets {
			if id, ok := t.(*Identifier); ok {
				names = append(names, id.Name)
			}
		}
		return names
	default:
		return nil
	}
}

func substituteStmt(s Statement, repl map[string]Expression) Statement {
	switch n := s.(type) {
	case *LocalDeclStatement:
		return &LocalDeclStatement{Token: n.Token, Names: n.Names, Values: substituteList(n.Values, repl)}
	case *AssignStatement:
		return &AssignStatement{Token: n.Token, Targets: substituteList(n.Targets, repl), Operator: n.Operator, Values: substituteList(n.Values, repl)}
	case *ExpressionStatement:
		return &ExpressionStatement{Token: n.Token, Expr: Substitute(n.Expr, repl)}
	case *IfStatement:
		clauses := make([]IfClause, len(n.Clauses))
		for i, c := range n.Clauses {
			clauses[i] = IfClause{Condition: Substitute(c.Condition, repl), Body: SubstituteBlock(c.Body, repl)}
		}
		return &IfStatement{Token: n.Token, Clauses: clauses, ElseBody: SubstituteBlock(n.ElseBody, repl)}
	case *NumericForStatement:
		return &NumericForStatement{
			Token: n.Token, Var: n.Var,
			Start: Substitute(n.Start, repl), Stop: Substitute(n.Stop, repl), Step: Substitute(n.Step, repl),
			Body: SubstituteBlock(n.Body, shrink(repl, []string{n.Var})),
		}
	case *IteratorForStatement:
		return &IteratorForStatement{
			Token: n.Token, Vars: n.Vars, Exprs: substituteList(n.Exprs, repl),
			Body: SubstituteBlock(n.Body, shrink(repl, n.Vars)),
		}
	case *WhileStatement:
		return &WhileStatement{Token: n.Token, Condition: Substitute(n.Condition, repl), Body: SubstituteBlock(n.Body, repl)}
	case *ReturnStatement:
		return &ReturnStatement{Token: n.Token, Values: substituteList(n.Values, repl)}
	case *DoStatement:
		return &DoStatement{Token: n.Token, Body: SubstituteBlock(n.Body, repl)}
	case *DeferStatement:
		return &DeferStatement{Token: n.Token, Stmt: substituteStmt(n.Stmt, repl)}
	case *EvalStatement:
		return &EvalStatement{Token: n.Token, Expr: Substitute(n.Expr, repl)}
	case *AssertStatement:
		return &AssertStatement{Token: n.Token, Expr: Substitute(n.Expr, repl)}
	default:
		return s
	}
}
