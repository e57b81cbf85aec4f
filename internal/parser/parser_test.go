package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pyrs-lang/pyrs/internal/ast"
	"github.com/pyrs-lang/pyrs/internal/lexer"
)

func parseSrc(t *testing.T, src string) *ast.File {
	t.Helper()
	l := lexer.New(string(lexer.Normalize([]byte(src))), "test.py")
	p := New(l, "test.py")
	f := p.ParseFile()
	require.Empty(t, p.Errors(), "%v", p.Errors())
	return f
}

func TestParseSimpleAssignment(t *testing.T) {
	f := parseSrc(t, "x = 1\n")
	require.Len(t, f.Body, 1)
	assign, ok := f.Body[0].(*ast.Assign)
	require.True(t, ok)
	require.Len(t, assign.Targets, 1)
	name, ok := assign.Targets[0].(*ast.Name)
	require.True(t, ok)
	require.Equal(t, "x", name.Value)
}

func TestParseFunctionDef(t *testing.T) {
	src := "def add(a: int, b: int) -> int:\n    return a + b\n"
	f := parseSrc(t, src)
	require.Len(t, f.Body, 1)
	fn, ok := f.Body[0].(*ast.FuncDecl)
	require.True(t, ok)
	require.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	require.NotNil(t, fn.ReturnType)
	require.Len(t, fn.Body, 1)
	ret, ok := fn.Body[0].(*ast.Return)
	require.True(t, ok)
	bin, ok := ret.Value.(*ast.BinOp)
	require.True(t, ok)
	require.Equal(t, "+", bin.Op)
}

func TestParseIfElif(t *testing.T) {
	src := "if a:\n    x = 1\nelif b:\n    x = 2\nelse:\n    x = 3\n"
	f := parseSrc(t, src)
	top, ok := f.Body[0].(*ast.If)
	require.True(t, ok)
	require.Len(t, top.Else, 1)
	nested, ok := top.Else[0].(*ast.If)
	require.True(t, ok)
	require.Len(t, nested.Else, 1)
}

func TestParseForWithComprehension(t *testing.T) {
	src := "squares = [x * x for x in range(10) if x % 2 == 0]\n"
	f := parseSrc(t, src)
	assign := f.Body[0].(*ast.Assign)
	comp, ok := assign.Value.(*ast.Comprehension)
	require.True(t, ok)
	require.Equal(t, ast.CompList, comp.Kind)
	require.Len(t, comp.Clauses, 1)
	require.Len(t, comp.Clauses[0].Filters, 1)
}

func TestParseClassWithDecorator(t *testing.T) {
	src := "@dataclass\nclass Point:\n    x: int\n    y: int\n"
	f := parseSrc(t, src)
	cls, ok := f.Body[0].(*ast.ClassDecl)
	require.True(t, ok)
	require.Equal(t, "Point", cls.Name)
	require.Len(t, cls.Decorators, 1)
	require.Equal(t, "dataclass", cls.Decorators[0].Name)
	require.Len(t, cls.Body, 2)
}

func TestParseTryExceptFinally(t *testing.T) {
	src := "try:\n    risky()\nexcept ValueError as e:\n    handle(e)\nfinally:\n    cleanup()\n"
	f := parseSrc(t, src)
	tr, ok := f.Body[0].(*ast.Try)
	require.True(t, ok)
	require.Len(t, tr.Handlers, 1)
	require.Equal(t, "ValueError", tr.Handlers[0].Type.Value)
	require.Equal(t, "e", tr.Handlers[0].Name)
	require.Len(t, tr.Finally, 1)
}

func TestParseChainedComparison(t *testing.T) {
	src := "ok = 0 < x < 10\n"
	f := parseSrc(t, src)
	assign := f.Body[0].(*ast.Assign)
	chain, ok := assign.Value.(*ast.CompareChain)
	require.True(t, ok)
	require.Len(t, chain.Ops, 2)
}

func TestParseWalrus(t *testing.T) {
	src := "if (n := len(data)) > 0:\n    pass\n"
	f := parseSrc(t, src)
	stmt := f.Body[0].(*ast.If)
	chain, ok := stmt.Cond.(*ast.CompareChain)
	require.True(t, ok)
	_, ok = chain.Left.(*ast.NamedExpr)
	require.True(t, ok)
}

func TestParseFString(t *testing.T) {
	src := "msg = f\"hello {name!r:>10}\"\n"
	f := parseSrc(t, src)
	assign := f.Body[0].(*ast.Assign)
	fstr, ok := assign.Value.(*ast.FString)
	require.True(t, ok)
	require.Len(t, fstr.Parts, 2)
	require.Equal(t, "hello ", fstr.Parts[0].Literal)
	require.NotNil(t, fstr.Parts[1].Expr)
	require.Equal(t, ">10", fstr.Parts[1].Format)
}

func TestParseMatchStatement(t *testing.T) {
	src := "match point:\n    case Point(x=0, y=0):\n        pass\n    case _:\n        pass\n"
	f := parseSrc(t, src)
	m, ok := f.Body[0].(*ast.Match)
	require.True(t, ok)
	require.Len(t, m.Cases, 2)
	cp, ok := m.Cases[0].Pattern.(*ast.ClassPattern)
	require.True(t, ok)
	require.Equal(t, "Point", cp.ClassName)
	_, ok = m.Cases[1].Pattern.(*ast.WildcardPattern)
	require.True(t, ok)
}

func TestParseWithStatement(t *testing.T) {
	src := "with open(path) as f:\n    read(f)\n"
	f := parseSrc(t, src)
	w, ok := f.Body[0].(*ast.With)
	require.True(t, ok)
	require.Len(t, w.Items, 1)
	require.NotNil(t, w.Items[0].Target)
}

func TestParseSemicolonChain(t *testing.T) {
	src := "x = 1; y = 2; z = 3\n"
	f := parseSrc(t, src)
	require.Len(t, f.Body, 3)
}
