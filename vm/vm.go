// Package vm implements the stack-based virtual machine described in
// spec.md §4.4: it interprets a chunk.Chunk's bytecode against a
// fixed-size value stack, resolving globals and interned strings through
// value.Table, and reports the single runtime error (if any) that halts
// execution.
//
// Generalized from informatter-nilan/vm/vm.go's Run(bytecode) error entry
// point and informatter-nilan/vm/stack.go's push/pop/peek naming, from a
// single-opcode dispatch loop to the full opcode set in spec.md §4.3, and
// from a growable any-typed stack to the fixed 256-slot value.Value stack
// spec.md §3 requires.
package vm

import (
	"fmt"
	"io"

	"nilan/chunk"
	"nilan/value"
)

const maxStack = 256

// VM is the runtime environment bytecode executes in. It owns every heap
// object allocated during a run (the intrusive Next-linked list rooted at
// objects), the globals table, and the string-interning table — the
// compiler only ever borrows Interns from it (spec.md §3's ownership
// rule).
type VM struct {
	chunk    *chunk.Chunk
	ip       int
	stack    [maxStack]value.Value
	stackTop int

	globals value.Table
	strings value.Table
	objects *value.Object

	stdout io.Writer
}

// New creates a VM that writes PRINT output to stdout.
func New(stdout io.Writer) *VM {
	return &VM{stdout: stdout}
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

// InternString implements compiler.Interner: it consults the shared
// strings table first (the "take_string" contract of spec.md §4.4 — on a
// hit the caller's buffer is simply discarded, which in Go just means it
// becomes garbage instead of needing an explicit free), and on a miss
// allocates a fresh Object, links it into the object list, and records it
// in the strings table.
func (vm *VM) InternString(chars []byte) *value.Object {
	hash := value.HashBytes(chars)
	if interned := vm.strings.FindString(chars, hash); interned != nil {
		return interned
	}

	obj := &value.Object{Type: value.ObjString, Chars: chars, Hash: hash}
	obj.Next = vm.objects
	vm.objects = obj
	vm.strings.Set(obj, value.Nil)
	return obj
}

// FreeObjects tears down the VM's heap: the interning table first (it
// holds no owning references to its keys), then the intrusive object
// list (spec.md §5). Go's GC makes this observably a no-op, but it keeps
// the ownership discipline spec.md describes explicit and gives a single
// place to hook a non-GC allocator later.
func (vm *VM) FreeObjects() {
	vm.strings = value.Table{}
	vm.objects = nil
}

func (vm *VM) readByte() byte {
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	return b
}

func (vm *VM) readConstant() value.Value {
	return vm.chunk.Constants[vm.readByte()]
}

func (vm *VM) readString() *value.Object {
	return vm.readConstant().Obj
}

func (vm *VM) runtimeError(format string, args ...any) error {
	message := fmt.Sprintf(format, args...)
	line := 0
	if vm.ip-1 >= 0 && vm.ip-1 < len(vm.chunk.Lines) {
		line = vm.chunk.Lines[vm.ip-1]
	}
	vm.resetStack()
	return RuntimeError{Message: message, Line: line}
}

func (vm *VM) concatenate() {
	b := vm.pop()
	a := vm.pop()
	buf := make([]byte, 0, len(a.Obj.Chars)+len(b.Obj.Chars))
	buf = append(buf, a.Obj.Chars...)
	buf = append(buf, b.Obj.Chars...)
	vm.push(value.Obj(vm.InternString(buf)))
}

// Run dispatches c's bytecode to completion or to the first runtime
// error. It resets the VM's stack and instruction pointer, so a VM can
// run multiple chunks in sequence (as a REPL does); globals and interned
// strings persist from one run to the next.
func (vm *VM) Run(c *chunk.Chunk) error {
	vm.chunk = c
	vm.ip = 0
	vm.resetStack()

	for {
		instruction := chunk.Op(vm.readByte())

		switch instruction {
		case chunk.OpConstant:
			vm.push(vm.readConstant())

		case chunk.OpNil:
			vm.push(value.Nil)
		case chunk.OpTrue:
			vm.push(value.Bool_(true))
		case chunk.OpFalse:
			vm.push(value.Bool_(false))

		case chunk.OpPop:
			vm.pop()

		case chunk.OpGetLocal:
			slot := vm.readByte()
			vm.push(vm.stack[slot])
		case chunk.OpSetLocal:
			slot := vm.readByte()
			vm.stack[slot] = vm.peek(0)

		case chunk.OpGetGlobal:
			name := vm.readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", string(name.Chars))
			}
			vm.push(v)
		case chunk.OpDefineGlobal:
			name := vm.readString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case chunk.OpSetGlobal:
			name := vm.readString()
			if !vm.globals.Has(name) {
				return vm.runtimeError("Undefined variable '%s'.", string(name.Chars))
			}
			vm.globals.Set(name, vm.peek(0))

		case chunk.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool_(value.Equal(a, b)))
		case chunk.OpGreater:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().Number
			a := vm.pop().Number
			vm.push(value.Bool_(a > b))
		case chunk.OpLess:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().Number
			a := vm.pop().Number
			vm.push(value.Bool_(a < b))

		case chunk.OpAdd:
			switch {
			case vm.peek(0).IsString() && vm.peek(1).IsString():
				vm.concatenate()
			case vm.peek(0).IsNumber() && vm.peek(1).IsNumber():
				b := vm.pop().Number
				a := vm.pop().Number
				vm.push(value.Number(a + b))
			default:
				return vm.runtimeError("Operands must be two numbers or two strings.")
			}
		case chunk.OpSubtract:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().Number
			a := vm.pop().Number
			vm.push(value.Number(a - b))
		case chunk.OpMultiply:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().Number
			a := vm.pop().Number
			vm.push(value.Number(a * b))
		case chunk.OpDivide:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				return vm.runtimeError("Operands must be numbers.")
			}
			b := vm.pop().Number
			a := vm.pop().Number
			vm.push(value.Number(a / b))

		case chunk.OpNot:
			vm.push(value.Bool_(vm.pop().IsFalsey()))
		case chunk.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.push(value.Number(-vm.pop().Number))

		case chunk.OpPrint:
			fmt.Fprintln(vm.stdout, value.Print(vm.pop()))

		case chunk.OpReturn:
			return nil

		default:
			return vm.runtimeError("Unreachable opcode %v.", instruction)
		}
	}
}
