package parser

import (
	"gopkg.in/yaml.v3"

	"tortuga/internal/logic"
)

// WalkTree serializes a logic tree into nested maps. Keys carry a numeric prefix
// so the dump keeps field order once the encoder sorts them.
func WalkTree(node any) any {
	switch n := node.(type) {
	case *logic.Global:
		modules := make([]any, len(n.Modules))
		for i, m := range n.Modules {
			modules[i] = WalkTree(m)
		}
		return map[string]any{
			"0.type":    "Global",
			"1.modules": modules,
		}

	case *logic.Module:
		globals := make([]any, len(n.Globals))
		for i, g := range n.Globals {
			globals[i] = WalkTree(g)
		}
		procs := make([]any, len(n.Procedures))
		for i, p := range n.Procedures {
			procs[i] = WalkTree(p)
		}
		return map[string]any{
			"0.type":       "Module",
			"1.name":       n.Name,
			"2.globals":    globals,
			"3.procedures": procs,
		}

	case *logic.UserProc:
		return map[string]any{
			"0.type":   "Procedure",
			"1.line":   n.Line(),
			"2.name":   n.Ident,
			"3.params": n.Params,
			"4.body":   WalkTree(n.Body),
		}

	case *logic.Block:
		if n == nil {
			return nil
		}
		statements := make([]any, len(n.Statements))
		for i, s := range n.Statements {
			statements[i] = WalkTree(s)
		}
		return statements

	case *logic.VarDecl:
		return map[string]any{
			"0.type":  "VarDecl",
			"1.line":  n.Line(),
			"2.name":  n.Name,
			"3.value": walkExpr(n.Value),
		}

	case *logic.Assign:
		return map[string]any{
			"0.type":  "Assign",
			"1.line":  n.Line(),
			"2.name":  n.Name,
			"3.value": walkExpr(n.Value),
		}

	case *logic.If:
		branches := make([]any, len(n.Branches))
		for i, b := range n.Branches {
			branches[i] = map[string]any{
				"0.condition": walkExpr(b.Cond),
				"1.then":      WalkTree(b.Body),
			}
		}
		return map[string]any{
			"0.type":     "If",
			"1.line":     n.Line(),
			"2.branches": branches,
			"3.else":     WalkTree(n.Else),
		}

	case *logic.While:
		return map[string]any{
			"0.type":      "While",
			"1.line":      n.Line(),
			"2.condition": walkExpr(n.Cond),
			"3.body":      WalkTree(n.Body),
		}

	case *logic.For:
		return map[string]any{
			"0.type": "For",
			"1.line": n.Line(),
			"2.var":  n.Var,
			"3.from": walkExpr(n.From),
			"4.to":   walkExpr(n.To),
			"5.step": walkExpr(n.Step),
			"6.body": WalkTree(n.Body),
		}

	case *logic.Repeat:
		return map[string]any{
			"0.type":  "Repeat",
			"1.line":  n.Line(),
			"2.count": walkExpr(n.Count),
			"3.body":  WalkTree(n.Body),
		}

	case *logic.Return:
		return map[string]any{
			"0.type":  "Return",
			"1.line":  n.Line(),
			"2.value": walkExpr(n.Value),
		}

	case *logic.Halt:
		return map[string]any{
			"0.type": "Halt",
			"1.line": n.Line(),
		}

	case *logic.CallStmt:
		return WalkTree(n.Call)

	case *logic.Call:
		args := make([]any, len(n.Args))
		for i, a := range n.Args {
			args[i] = walkExpr(a)
		}
		return map[string]any{
			"0.type":      "Call",
			"1.line":      n.Line(),
			"2.name":      n.Name,
			"3.arguments": args,
		}

	case *logic.Binary:
		return map[string]any{
			"0.type":     "Binary",
			"1.operator": n.Op.String(),
			"2.left":     walkExpr(n.Left),
			"3.right":    walkExpr(n.Right),
		}

	case *logic.Unary:
		return map[string]any{
			"0.type":     "Unary",
			"1.operator": n.Op.String(),
			"2.operand":  walkExpr(n.Operand),
		}

	case *logic.VarRef:
		return map[string]any{
			"0.type": "Variable",
			"1.name": n.Name,
		}

	case *logic.Literal:
		return map[string]any{
			"0.type":  "Literal",
			"1.kind":  n.Value.Kind().String(),
			"2.value": n.Value.Inspect(),
		}

	case logic.Node:
		return map[string]any{
			"0.type": "Unknown: " + n.String(),
		}
	}
	return nil
}

func walkExpr(e logic.Expr) any {
	if e == nil {
		return nil
	}
	return WalkTree(e)
}

// DumpYAML renders the tree under node as YAML.
func DumpYAML(node any) ([]byte, error) {
	return yaml.Marshal(WalkTree(node))
}
