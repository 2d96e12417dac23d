// Package ir implements the AST-to-stack-IR lowerer: a linear, labelled
// instruction sequence (not a CFG) annotated with fresh type variables
// for later inference, grounded on original_source/src/ir.rs's
// InstructionType enum and two-pass IRBuilder, restructured into Go's
// tagged-variant-via-struct-plus-Kind idiom used by the teacher's
// internal/bytecode package (one doc comment per opcode documenting its
// stack effect).
package ir

import (
	"fmt"

	"github.com/elgin-lang/elginc/internal/token"
	"github.com/elgin-lang/elginc/internal/types"
)

// Kind tags an Instruction variant.
type Kind int

const (
	// Push pushes a literal's text. Stack: [] -> [ins.Type].
	Push Kind = iota
	// Load pushes the current value of a local or parameter.
	// Stack: [] -> [scope(Name)].
	Load
	// Store pops a value and assigns it to an existing local.
	// Stack: [t] -> [].
	Store
	// Allocate declares a new local, initialised from the stack top.
	// Stack: [t] -> [].
	Allocate
	// IndexLoad pops an index and a target, pushes the indexed element.
	// Stack: [target, index] -> [elem]. Supplemental: spec.md's IndexOp.
	IndexLoad
	// IndexStore pops a value, an index, and a target; stores into the
	// indexed element. Stack: [target, index, value] -> []. Supplemental:
	// spec.md's IndexedAssign.
	IndexStore

	// Label marks a jump target. No stack effect.
	Label
	// Jump transfers control unconditionally to a Label. No stack effect.
	Jump
	// Branch pops a bool and transfers control to Then or Else.
	// Stack: [bool] -> [].
	Branch
	// Call pops N args (left to right) and pushes the procedure's return
	// value. Stack: [a0..aN] -> [ret].
	Call
	// Return pops the returned value. Stack: [t] -> [].
	Return

	// Negate pops a value and pushes its negation. Stack: [t] -> [ins.Type].
	Negate
	// Add pops b, a and pushes a+b. Stack: [a, b] -> [ins.Type].
	Add
	// Subtract pops b, a and pushes a-b. Stack: [a, b] -> [ins.Type].
	Subtract
	// Multiply pops b, a and pushes a*b. Stack: [a, b] -> [ins.Type].
	Multiply
	// IntDivide pops b, a and pushes the truncating integer quotient a//b.
	// Stack: [a, b] -> [ins.Type].
	IntDivide
	// Divide pops b, a and pushes the quotient a/b. Stack: [a, b] -> [ins.Type].
	Divide
	// Compare pops b, a and pushes a bool comparison result.
	// Stack: [a, b] -> [bool].
	Compare
)

// CompareOp identifies which comparison a Compare instruction performs.
type CompareOp int

const (
	EQ CompareOp = iota
	NE
	LT
	GT
	LE
	GE
)

func (c CompareOp) String() string {
	return [...]string{"EQ", "NE", "LT", "GT", "LE", "GE"}[c]
}

// Instruction is one stack-IR operation. Every instruction carries its
// result Type (the top-of-stack type it leaves, or, for control/void
// instructions, a type that is never consulted) and the source Position
// of the AST node that produced it.
type Instruction struct {
	Kind Kind
	Type types.Type
	Pos  token.Position

	Text string // Push literal text
	Name string // Load/Store/Allocate/Call: variable or procedure name

	Label      uint64 // Label id, or Jump target
	Then, Else uint64 // Branch targets

	Wrap bool      // Negate/Add/Subtract/Multiply: checked vs wrapping
	Cmp  CompareOp // Compare operator
}

func (ins Instruction) String() string {
	switch ins.Kind {
	case Push:
		return fmt.Sprintf("Push(%q) :: %s", ins.Text, ins.Type)
	case Load:
		return fmt.Sprintf("Load(%s) :: %s", ins.Name, ins.Type)
	case Store:
		return fmt.Sprintf("Store(%s) :: %s", ins.Name, ins.Type)
	case Allocate:
		return fmt.Sprintf("Allocate(%s) :: %s", ins.Name, ins.Type)
	case IndexLoad:
		return fmt.Sprintf("IndexLoad :: %s", ins.Type)
	case IndexStore:
		return "IndexStore"
	case Label:
		return fmt.Sprintf("Label(%d)", ins.Label)
	case Jump:
		return fmt.Sprintf("Jump(%d)", ins.Label)
	case Branch:
		return fmt.Sprintf("Branch(%d, %d)", ins.Then, ins.Else)
	case Call:
		return fmt.Sprintf("Call(%s) :: %s", ins.Name, ins.Type)
	case Return:
		return fmt.Sprintf("Return :: %s", ins.Type)
	case Negate:
		return fmt.Sprintf("Negate(%v) :: %s", ins.Wrap, ins.Type)
	case Add:
		return fmt.Sprintf("Add(%v) :: %s", ins.Wrap, ins.Type)
	case Subtract:
		return fmt.Sprintf("Subtract(%v) :: %s", ins.Wrap, ins.Type)
	case Multiply:
		return fmt.Sprintf("Multiply(%v) :: %s", ins.Wrap, ins.Type)
	case IntDivide:
		return fmt.Sprintf("IntDivide :: %s", ins.Type)
	case Divide:
		return fmt.Sprintf("Divide :: %s", ins.Type)
	case Compare:
		return fmt.Sprintf("Compare(%s) :: %s", ins.Cmp, ins.Type)
	default:
		return "<invalid instruction>"
	}
}

// EndsInReturn reports whether the last instruction in body is a Return,
// used by the if/while lowering rules to decide whether to append a
// trailing Jump and whether a Label is reachable.
func EndsInReturn(body []Instruction) bool {
	if len(body) == 0 {
		return false
	}
	return body[len(body)-1].Kind == Return
}
