package compiler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nilan/chunk"
	"nilan/value"
)

// fakeInterner is a minimal compiler.Interner for tests: it interns by
// content equality, matching the VM's real pointer-identity contract
// closely enough to exercise the compiler without needing a *vm.VM.
type fakeInterner struct {
	objs map[string]*value.Object
}

func newFakeInterner() *fakeInterner {
	return &fakeInterner{objs: map[string]*value.Object{}}
}

func (f *fakeInterner) InternString(chars []byte) *value.Object {
	if obj, ok := f.objs[string(chars)]; ok {
		return obj
	}
	obj := value.NewObjString(chars)
	f.objs[string(chars)] = obj
	return obj
}

func compileOK(t *testing.T, source string) *chunk.Chunk {
	t.Helper()
	c, err := Compile(source, newFakeInterner())
	require.NoError(t, err)
	return c
}

func compileErr(t *testing.T, source string) CompileError {
	t.Helper()
	_, err := Compile(source, newFakeInterner())
	require.Error(t, err)
	ce, ok := err.(CompileError)
	require.True(t, ok)
	return ce
}

func TestCompileExpressionStatementEmitsPopAndReturn(t *testing.T) {
	c := compileOK(t, "1 + 2;")
	assert.Equal(t, []byte{
		byte(chunk.OpConstant), 0,
		byte(chunk.OpConstant), 1,
		byte(chunk.OpAdd),
		byte(chunk.OpPop),
		byte(chunk.OpReturn),
	}, c.Code)
}

func TestCompilePrecedenceClimbing(t *testing.T) {
	// 1 + 2 * 3 must multiply before adding: constants pushed in source
	// order, OpMultiply emitted before OpAdd.
	c := compileOK(t, "print 1 + 2 * 3;")
	assert.Equal(t, []byte{
		byte(chunk.OpConstant), 0,
		byte(chunk.OpConstant), 1,
		byte(chunk.OpConstant), 2,
		byte(chunk.OpMultiply),
		byte(chunk.OpAdd),
		byte(chunk.OpPrint),
		byte(chunk.OpReturn),
	}, c.Code)
}

func TestCompileEqualityAndComparisonOperatorLowering(t *testing.T) {
	cases := map[string][]chunk.Op{
		"1 != 2;": {chunk.OpEqual, chunk.OpNot},
		"1 == 2;": {chunk.OpEqual},
		"1 >= 2;": {chunk.OpLess, chunk.OpNot},
		"1 <= 2;": {chunk.OpGreater, chunk.OpNot},
	}
	for src, wantTail := range cases {
		c := compileOK(t, src)
		// tail is everything after the two operand pushes, minus the
		// trailing OP_POP/OP_RETURN
		got := c.Code[4 : len(c.Code)-2]
		want := make([]byte, len(wantTail))
		for i, op := range wantTail {
			want[i] = byte(op)
		}
		assert.Equal(t, want, got, "source %q", src)
	}
}

func containsOp(code []byte, op chunk.Op) bool {
	for _, b := range code {
		if chunk.Op(b) == op {
			return true
		}
	}
	return false
}

func TestCompileGlobalVariables(t *testing.T) {
	c := compileOK(t, "var a = 1; a = 2; print a;")
	assert.True(t, containsOp(c.Code, chunk.OpDefineGlobal))
	assert.True(t, containsOp(c.Code, chunk.OpSetGlobal))
	assert.True(t, containsOp(c.Code, chunk.OpGetGlobal))
}

func TestCompileLocalsUseSlotOpcodes(t *testing.T) {
	c := compileOK(t, "{ var a = 1; a = 2; print a; }")
	assert.False(t, containsOp(c.Code, chunk.OpDefineGlobal))
	assert.True(t, containsOp(c.Code, chunk.OpSetLocal))
	assert.True(t, containsOp(c.Code, chunk.OpGetLocal))
}

func TestCompileBlockScopePopsLocalsOnExit(t *testing.T) {
	c := compileOK(t, "{ var a = 1; var b = 2; }")
	// two locals declared, two pops on scope exit (plus the trailing
	// OP_RETURN)
	tail := c.Code[len(c.Code)-3:]
	assert.Equal(t, []byte{byte(chunk.OpPop), byte(chunk.OpPop), byte(chunk.OpReturn)}, tail)
}

func TestCompileSelfReferenceInInitializerIsAnError(t *testing.T) {
	ce := compileErr(t, "{ var a = a; }")
	require.Len(t, ce.Diagnostics, 1)
	assert.Contains(t, ce.Diagnostics[0], "Can't read local variable in its own initializer.")
}

func TestCompileDuplicateLocalInSameScopeIsAnError(t *testing.T) {
	ce := compileErr(t, "{ var a = 1; var a = 2; }")
	require.Len(t, ce.Diagnostics, 1)
	assert.Contains(t, ce.Diagnostics[0], "Already a variable with this name in this scope.")
}

func TestCompileShadowingInNestedScopeIsFine(t *testing.T) {
	compileOK(t, "{ var a = 1; { var a = 2; print a; } print a; }")
}

func TestCompileInvalidAssignmentTarget(t *testing.T) {
	ce := compileErr(t, "1 + 2 = 3;")
	require.Len(t, ce.Diagnostics, 1)
	assert.Contains(t, ce.Diagnostics[0], "Invalid assignment target.")
}

func TestCompileReportsMultipleDiagnosticsViaSynchronize(t *testing.T) {
	ce := compileErr(t, "var ; print 1 2; var x = 1;")
	assert.Greater(t, len(ce.Diagnostics), 1)
}

func TestCompileErrorMessageFormat(t *testing.T) {
	ce := compileErr(t, "print 1")
	require.Len(t, ce.Diagnostics, 1)
	assert.Equal(t, "[line 1] Error at end: Expect ';' after value.", ce.Diagnostics[0])
}

func TestCompileUnterminatedStringReportsScannerMessage(t *testing.T) {
	ce := compileErr(t, `"unterminated`)
	require.Len(t, ce.Diagnostics, 1)
	assert.Contains(t, ce.Diagnostics[0], "Unterminated string.")
}

func TestCompileTooManyLocalsOverflows(t *testing.T) {
	src := "{\n"
	for i := 0; i < 257; i++ {
		src += fmt.Sprintf("var v%d = %d;\n", i, i)
	}
	src += "}\n"
	ce := compileErr(t, src)
	found := false
	for _, d := range ce.Diagnostics {
		if d == fmt.Sprintf("[line %d] Error at 'v256': Too many local variables in function.", 258) {
			found = true
		}
	}
	assert.True(t, found, "diagnostics: %v", ce.Diagnostics)
}

func TestCompileTooManyConstantsOverflows(t *testing.T) {
	src := ""
	for i := 0; i < 257; i++ {
		src += fmt.Sprintf("print %d;\n", i)
	}
	_, err := Compile(src, newFakeInterner())
	require.Error(t, err)
}

func TestCompileStringLiteralStripsQuotes(t *testing.T) {
	interner := newFakeInterner()
	c, err := Compile(`print "hi";`, interner)
	require.NoError(t, err)
	require.Len(t, c.Constants, 1)
	assert.Equal(t, "hi", c.Constants[0].AsString())
}
