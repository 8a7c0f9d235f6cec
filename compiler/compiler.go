// Package compiler implements the single-pass Pratt (precedence-climbing)
// compiler described in spec.md §4.2: it consumes tokens from a
// lexer.Scanner and emits a chunk.Chunk directly, resolving lexical scope
// and disambiguating assignment targets by operator precedence as it goes,
// without ever building an explicit AST.
//
// Generalized from informatter-nilan/compiler/compiler.go's original
// token-driven Compiler (precedence table, parseRule map, parsePresedence
// loop) — the half of that project's compiler the project's own comments
// mark for deletion in favor of an AST-walking compiler. This package
// takes the opposite fork and completes it to the full grammar in
// original_source/clox/compiler.c.
package compiler

import (
	"fmt"
	"strconv"

	"nilan/chunk"
	"nilan/lexer"
	"nilan/token"
	"nilan/value"
)

// Interner is the string-interning pool the compiler borrows from the VM,
// so that a string literal compiled now and the same literal string
// constructed at runtime (e.g. by concatenation) share one object
// (spec.md §3, "String interning").
type Interner interface {
	InternString(chars []byte) *value.Object
}

// Precedence levels, low to high, per spec.md §4.2.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// local records one declared-but-maybe-not-yet-initialized local slot.
// depth == -1 means "declared but not yet initialized" (spec.md §3).
type local struct {
	name  token.Token
	depth int
}

const maxLocals = 256

// Compiler holds all state for one compile pass: the token cursor, the
// chunk being built, and the local-variable/scope-depth bookkeeping.
type Compiler struct {
	scanner  *lexer.Scanner
	interner Interner
	chunk    *chunk.Chunk

	current, previous token.Token
	hadError          bool
	panicMode         bool
	diagnostics       []string

	locals     [maxLocals]local
	localCount int
	scopeDepth int
}

var rules map[token.Kind]parseRule

func init() {
	rules = map[token.Kind]parseRule{
		token.LeftParen:    {prefix: (*Compiler).grouping, precedence: PrecNone},
		token.Minus:        {prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: PrecTerm},
		token.Plus:         {infix: (*Compiler).binary, precedence: PrecTerm},
		token.Slash:        {infix: (*Compiler).binary, precedence: PrecFactor},
		token.Star:         {infix: (*Compiler).binary, precedence: PrecFactor},
		token.Bang:         {prefix: (*Compiler).unary, precedence: PrecNone},
		token.BangEqual:    {infix: (*Compiler).binary, precedence: PrecEquality},
		token.EqualEqual:   {infix: (*Compiler).binary, precedence: PrecEquality},
		token.Greater:      {infix: (*Compiler).binary, precedence: PrecComparison},
		token.GreaterEqual: {infix: (*Compiler).binary, precedence: PrecComparison},
		token.Less:         {infix: (*Compiler).binary, precedence: PrecComparison},
		token.LessEqual:    {infix: (*Compiler).binary, precedence: PrecComparison},
		token.Identifier:   {prefix: (*Compiler).variable, precedence: PrecNone},
		token.String:       {prefix: (*Compiler).stringLiteral, precedence: PrecNone},
		token.Number:       {prefix: (*Compiler).number, precedence: PrecNone},
		token.False:        {prefix: (*Compiler).literal, precedence: PrecNone},
		token.True:         {prefix: (*Compiler).literal, precedence: PrecNone},
		token.Nil:          {prefix: (*Compiler).literal, precedence: PrecNone},
	}
}

func getRule(kind token.Kind) parseRule {
	return rules[kind]
}

// Compile runs a full compile pass over source, producing a chunk.Chunk.
// Interner is consulted for every global variable name and string literal,
// so that names and literals share the VM's one interning pool (spec.md §2).
// Local variables resolve to stack slots and are not interned.
func Compile(source string, interner Interner) (*chunk.Chunk, error) {
	c := &Compiler{
		scanner:  lexer.New(source),
		interner: interner,
		chunk:    &chunk.Chunk{},
	}
	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.endCompiler()

	if c.hadError {
		return nil, CompileError{Diagnostics: c.diagnostics}
	}
	return c.chunk, nil
}

// --- token cursor -----------------------------------------------------

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.ScanToken()
		if c.current.Kind != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(kind token.Kind) bool {
	return c.current.Kind == kind
}

func (c *Compiler) match(kind token.Kind) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(kind token.Kind, message string) {
	if c.current.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

// --- diagnostics --------------------------------------------------------

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

func (c *Compiler) error(message string) {
	c.errorAt(c.previous, message)
}

// errorAt formats one diagnostic per spec.md §6: `[line N] Error at
// 'lexeme': msg`, `[line N] Error at end: msg`, or `[line N] Error: msg`
// for scanner error tokens (whose message is already self-contained).
// While panicMode is set, further errors are swallowed until synchronize
// clears it — this is what allows one compile pass to report several
// independent diagnostics instead of cascading on the first one.
func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	var where string
	switch tok.Kind {
	case token.EOF:
		where = " at end"
	case token.Error:
		where = ""
	default:
		where = fmt.Sprintf(" at '%s'", tok.Lexeme)
	}
	c.diagnostics = append(c.diagnostics, fmt.Sprintf("[line %d] Error%s: %s", tok.Line, where, message))
}

// --- bytecode emission --------------------------------------------------

func (c *Compiler) emitByte(b byte) {
	c.chunk.Write(b, c.previous.Line)
}

func (c *Compiler) emitOp(op chunk.Op) {
	c.emitByte(byte(op))
}

func (c *Compiler) emitBytes(op chunk.Op, operand byte) {
	c.emitByte(byte(op))
	c.emitByte(operand)
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitBytes(chunk.OpConstant, byte(c.makeConstant(v)))
}

// makeConstant appends v to the constant pool, reporting spec.md's
// "Too many constants in one chunk." diagnostic if the 256-entry,
// 1-byte-operand budget is exceeded.
func (c *Compiler) makeConstant(v value.Value) int {
	idx := c.chunk.AddConstant(v)
	if idx > 255 {
		c.error("Too many constants in one chunk.")
		return 0
	}
	return idx
}

func (c *Compiler) endCompiler() {
	c.emitOp(chunk.OpReturn)
}

// --- expressions ----------------------------------------------------

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

// parsePrecedence implements spec.md §4.2's core Pratt loop.
func (c *Compiler) parsePrecedence(precedence Precedence) {
	c.advance()
	prefixRule := getRule(c.previous.Kind).prefix
	if prefixRule == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := precedence <= PrecAssignment
	prefixRule(c, canAssign)

	for precedence <= getRule(c.current.Kind).precedence {
		c.advance()
		infixRule := getRule(c.previous.Kind).infix
		infixRule(c, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

func (c *Compiler) binary(_ bool) {
	operator := c.previous.Kind
	rule := getRule(operator)
	c.parsePrecedence(rule.precedence + 1)

	switch operator {
	case token.BangEqual:
		c.emitOp(chunk.OpEqual)
		c.emitOp(chunk.OpNot)
	case token.EqualEqual:
		c.emitOp(chunk.OpEqual)
	case token.Greater:
		c.emitOp(chunk.OpGreater)
	case token.GreaterEqual:
		c.emitOp(chunk.OpLess)
		c.emitOp(chunk.OpNot)
	case token.Less:
		c.emitOp(chunk.OpLess)
	case token.LessEqual:
		c.emitOp(chunk.OpGreater)
		c.emitOp(chunk.OpNot)
	case token.Plus:
		c.emitOp(chunk.OpAdd)
	case token.Minus:
		c.emitOp(chunk.OpSubtract)
	case token.Star:
		c.emitOp(chunk.OpMultiply)
	case token.Slash:
		c.emitOp(chunk.OpDivide)
	}
}

func (c *Compiler) unary(_ bool) {
	operator := c.previous.Kind
	c.parsePrecedence(PrecUnary)

	switch operator {
	case token.Bang:
		c.emitOp(chunk.OpNot)
	case token.Minus:
		c.emitOp(chunk.OpNegate)
	}
}

func (c *Compiler) number(_ bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(value.Number(n))
}

// stringLiteral strips the surrounding quotes the scanner left in place
// (spec.md §9) before interning.
func (c *Compiler) stringLiteral(_ bool) {
	lexeme := c.previous.Lexeme
	interior := lexeme[1 : len(lexeme)-1]
	obj := c.interner.InternString([]byte(interior))
	c.emitConstant(value.Obj(obj))
}

func (c *Compiler) literal(_ bool) {
	switch c.previous.Kind {
	case token.False:
		c.emitOp(chunk.OpFalse)
	case token.True:
		c.emitOp(chunk.OpTrue)
	case token.Nil:
		c.emitOp(chunk.OpNil)
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

// namedVariable resolves name to a local slot or a global constant and
// emits the matching get/set opcode. The '=' is only ever consumed here,
// and only when canAssign is true — a non-assignable context (e.g. the
// right-hand side of `a + b`) that happens to be followed by '=' must
// leave that '=' for parsePrecedence to flag as "Invalid assignment
// target." rather than silently consuming it (spec.md §9).
func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp chunk.Op
	arg := c.resolveLocal(name)
	if arg != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
	} else {
		arg = c.identifierConstant(name)
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emitBytes(setOp, byte(arg))
	} else {
		c.emitBytes(getOp, byte(arg))
	}
}

// resolveLocal walks the locals array from the top down, so a declaration
// in an inner scope shadows one of the same name in an enclosing scope.
func (c *Compiler) resolveLocal(name token.Token) int {
	for i := c.localCount - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.name.Lexeme == name.Lexeme {
			if l.depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

func (c *Compiler) identifierConstant(name token.Token) int {
	obj := c.interner.InternString([]byte(name.Lexeme))
	return c.makeConstant(value.Obj(obj))
}

// --- declarations and statements ---------------------------------------

func (c *Compiler) declaration() {
	if c.match(token.Var) {
		c.varDeclaration()
	} else {
		c.statement()
	}

	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emitOp(chunk.OpNil)
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")

	c.defineVariable(global)
}

// parseVariable consumes the identifier token, declares it (checking for
// duplicate locals in the current scope), and returns either a global
// constant index or 0 for a local (whose slot was already reserved by
// declareVariable).
func (c *Compiler) parseVariable(errorMessage string) int {
	c.consume(token.Identifier, errorMessage)

	c.declareVariable()
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

func (c *Compiler) declareVariable() {
	if c.scopeDepth == 0 {
		return
	}

	name := c.previous
	for i := c.localCount - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if name.Lexeme == l.name.Lexeme {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name token.Token) {
	if c.localCount == maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	c.locals[c.localCount] = local{name: name, depth: -1}
	c.localCount++
}

func (c *Compiler) defineVariable(global int) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(chunk.OpDefineGlobal, byte(global))
}

func (c *Compiler) markInitialized() {
	c.locals[c.localCount-1].depth = c.scopeDepth
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.LeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emitOp(chunk.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after expression.")
	c.emitOp(chunk.OpPop)
}

func (c *Compiler) block() {
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RightBrace, "Expect '}' after block.")
}

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

func (c *Compiler) endScope() {
	c.scopeDepth--
	for c.localCount > 0 && c.locals[c.localCount-1].depth > c.scopeDepth {
		c.emitOp(chunk.OpPop)
		c.localCount--
	}
}

// synchronize discards tokens after a parse error until it reaches a
// plausible statement boundary, so one compile pass can keep reporting
// further independent diagnostics instead of cascading.
func (c *Compiler) synchronize() {
	c.panicMode = false

	for c.current.Kind != token.EOF {
		if c.previous.Kind == token.Semicolon {
			return
		}
		switch c.current.Kind {
		case token.Class, token.Fun, token.Var, token.For,
			token.If, token.While, token.Print, token.Return:
			return
		}
		c.advance()
	}
}
