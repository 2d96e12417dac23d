// Package llvm is the "external collaborator... an LLVM-like backend
// that consumes typed instructions" spec.md §1 frames as an assumed,
// out-of-scope component. Here it is built as a genuine consumer of
// procs() (spec.md §6) using github.com/llir/llvm, a pure-Go LLVM IR
// builder, grounded on the GEP/alloca/icmp-predicate patterns of
// fuc-project-fucc's compiler/builder (other_examples) translated onto
// this project's stack IR.
//
// It walks each analyzed IRProc's instruction list with the same
// type-stack simulation style internal/infer uses to generate
// constraints, except the simulated stack here carries (llvm value, chi
// type) pairs instead of constraint operands, since every instruction
// already carries its solved concrete type by the time this package runs.
//
// Array/pointer codegen is intentionally minimal: IndexLoad/IndexStore
// lower to a best-effort GEP with no bounds checking, since optimisation
// and safety passes are an explicit Non-goal of THE CORE and this
// backend inherits that boundary (SPEC_FULL.md §3.1).
package llvm

import (
	"fmt"
	"strconv"

	llvmir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	cir "github.com/elgin-lang/elginc/internal/ir"
	ctypes "github.com/elgin-lang/elginc/internal/types"
)

// Emit lowers every analyzed procedure in unit to one *llvmir.Module.
// unit must already have been through infer.Analyze: every instruction's
// Type is expected to be a concrete primitive or compound, never a
// surviving Variable/Unknown.
func Emit(unit *cir.CompilationUnit) (*llvmir.Module, error) {
	m := llvmir.NewModule()
	e := &emitter{module: m, funcs: map[string]*llvmir.Func{}}

	// Declare every procedure's signature first so forward/mutually
	// recursive Call targets resolve regardless of declaration order.
	for _, proc := range unit.Procs {
		fn, err := e.declareFunc(proc)
		if err != nil {
			return nil, fmt.Errorf("proc %s: %w", proc.Name, err)
		}
		e.funcs[proc.Name] = fn
	}

	for _, proc := range unit.Procs {
		if len(proc.Body) == 0 {
			continue // builtin (puts) or declaration-only stub: external declaration only
		}
		if err := e.emitBody(proc); err != nil {
			return nil, fmt.Errorf("proc %s: %w", proc.Name, err)
		}
	}
	return m, nil
}

type emitter struct {
	module *llvmir.Module
	funcs  map[string]*llvmir.Func
}

func (e *emitter) declareFunc(proc *cir.IRProc) (*llvmir.Func, error) {
	retType, err := chiToLLVM(proc.RetType)
	if err != nil {
		return nil, err
	}
	params := make([]*llvmir.Param, len(proc.ArgNames))
	for i, name := range proc.ArgNames {
		pt, err := chiToLLVM(proc.ArgTypes[i])
		if err != nil {
			return nil, err
		}
		params[i] = llvmir.NewParam(name, pt)
	}
	return e.module.NewFunc(proc.Name, retType, params...), nil
}

// chiToLLVM maps a concrete types.Type to its LLVM representation.
// Signed and unsigned integers of the same width map to the same
// signless LLVM integer type; signedness is recovered from the chi type
// at each arithmetic/comparison instruction instead.
func chiToLLVM(t ctypes.Type) (lltypes.Type, error) {
	switch t.Kind {
	case ctypes.I8, ctypes.N8:
		return lltypes.NewInt(8), nil
	case ctypes.I16, ctypes.N16:
		return lltypes.NewInt(16), nil
	case ctypes.I32, ctypes.N32:
		return lltypes.NewInt(32), nil
	case ctypes.I64, ctypes.N64:
		return lltypes.NewInt(64), nil
	case ctypes.I128, ctypes.N128:
		return lltypes.NewInt(128), nil
	case ctypes.Bool:
		return lltypes.I1, nil
	case ctypes.F32:
		return lltypes.Float, nil
	case ctypes.F64:
		return lltypes.Double, nil
	case ctypes.F128:
		return lltypes.FP128, nil
	case ctypes.Undefined:
		return lltypes.Void, nil
	case ctypes.Ptr:
		elem, err := chiToLLVM(*t.Elem)
		if err != nil {
			return nil, err
		}
		return lltypes.NewPointer(elem), nil
	case ctypes.Array:
		elem, err := chiToLLVM(*t.Elem)
		if err != nil {
			return nil, err
		}
		return lltypes.NewArray(t.Size, elem), nil
	default:
		return nil, fmt.Errorf("type %s has no LLVM representation (unsolved inference variable?)", t)
	}
}

// frame is one (llvm value, chi type) stack slot. Val is nil for
// Undefined-typed slots (e.g. the result of a call to a procedure with
// no declared return value), which are pushed only to keep the
// simulated stack depth aligned with the IR's own, and are never
// actually consumed by a well-formed program.
type frame struct {
	Val value.Value
	Typ ctypes.Type
}

type local struct {
	Ptr value.Value
	Typ ctypes.Type
}

func (e *emitter) emitBody(proc *cir.IRProc) error {
	fn := e.funcs[proc.Name]
	entry := fn.NewBlock("entry")
	cur := entry

	locals := map[string]local{}
	for i, name := range proc.ArgNames {
		ptr := cur.NewAlloca(fn.Params[i].Typ)
		cur.NewStore(fn.Params[i], ptr)
		locals[name] = local{Ptr: ptr, Typ: proc.ArgTypes[i]}
	}

	blocks := map[uint64]*llvmir.Block{}
	blockFor := func(id uint64) *llvmir.Block {
		if b, ok := blocks[id]; ok {
			return b
		}
		b := fn.NewBlock(fmt.Sprintf("L%d", id))
		blocks[id] = b
		return b
	}

	var stack []frame
	pop := func() frame {
		if len(stack) == 0 {
			return frame{Typ: ctypes.UndefinedType}
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return f
	}
	push := func(f frame) { stack = append(stack, f) }

	for i := range proc.Body {
		ins := &proc.Body[i]
		switch ins.Kind {
		case cir.Label:
			cur = blockFor(ins.Label)

		case cir.Jump:
			cur.NewBr(blockFor(ins.Label))

		case cir.Branch:
			cond := pop()
			cur.NewCondBr(cond.Val, blockFor(ins.Then), blockFor(ins.Else))

		case cir.Push:
			v, err := pushConstant(ins)
			if err != nil {
				return err
			}
			push(frame{Val: v, Typ: ins.Type})

		case cir.Load:
			loc, ok := locals[ins.Name]
			if !ok {
				return fmt.Errorf("load of undeclared local %q", ins.Name)
			}
			if loc.Typ.Kind == ctypes.Array {
				// Arrays are addressed, never loaded by value.
				push(frame{Val: loc.Ptr, Typ: loc.Typ})
				continue
			}
			llType, err := chiToLLVM(loc.Typ)
			if err != nil {
				return err
			}
			push(frame{Val: cur.NewLoad(llType, loc.Ptr), Typ: loc.Typ})

		case cir.Store:
			v := pop()
			loc, ok := locals[ins.Name]
			if !ok {
				return fmt.Errorf("store to undeclared local %q", ins.Name)
			}
			cur.NewStore(v.Val, loc.Ptr)

		case cir.Allocate:
			v := pop()
			llType, err := chiToLLVM(ins.Type)
			if err != nil {
				return err
			}
			ptr := cur.NewAlloca(llType)
			if v.Val != nil {
				cur.NewStore(v.Val, ptr)
			}
			locals[ins.Name] = local{Ptr: ptr, Typ: ins.Type}

		case cir.IndexLoad:
			index := pop()
			target := pop()
			ptr, elemType, err := indexGEP(cur, target, index)
			if err != nil {
				return err
			}
			push(frame{Val: cur.NewLoad(elemType, ptr), Typ: ins.Type})

		case cir.IndexStore:
			v := pop()
			index := pop()
			target := pop()
			ptr, _, err := indexGEP(cur, target, index)
			if err != nil {
				return err
			}
			cur.NewStore(v.Val, ptr)

		case cir.Call:
			proc, ok := e.funcs[ins.Name]
			if !ok {
				return fmt.Errorf("call to undeclared procedure %q", ins.Name)
			}
			argc := len(proc.Params)
			args := make([]value.Value, argc)
			for i := argc - 1; i >= 0; i-- {
				args[i] = pop().Val
			}
			var result value.Value
			if ins.Type.Kind != ctypes.Undefined {
				result = cur.NewCall(proc, args...)
			} else {
				cur.NewCall(proc, args...)
			}
			push(frame{Val: result, Typ: ins.Type})

		case cir.Return:
			v := pop()
			if ins.Type.Kind == ctypes.Undefined {
				cur.NewRet(nil)
			} else {
				cur.NewRet(v.Val)
			}

		case cir.Negate:
			v := pop()
			neg, err := emitNegate(cur, v)
			if err != nil {
				return err
			}
			push(frame{Val: neg, Typ: ins.Type})

		case cir.Add, cir.Subtract, cir.Multiply, cir.IntDivide, cir.Divide:
			b := pop()
			a := pop()
			result, err := emitArith(cur, ins.Kind, a, b)
			if err != nil {
				return err
			}
			push(frame{Val: result, Typ: ins.Type})

		case cir.Compare:
			b := pop()
			a := pop()
			result, err := emitCompare(cur, ins.Cmp, a, b)
			if err != nil {
				return err
			}
			push(frame{Val: result, Typ: ctypes.BoolT})
		}
	}
	return nil
}

func pushConstant(ins *cir.Instruction) (value.Value, error) {
	switch ins.Type.Kind {
	case ctypes.Bool:
		if ins.Text == "true" {
			return constant.NewInt(lltypes.I1, 1), nil
		}
		return constant.NewInt(lltypes.I1, 0), nil
	case ctypes.Undefined:
		return nil, nil
	default:
		llType, err := chiToLLVM(ins.Type)
		if err != nil {
			return nil, err
		}
		if intType, ok := llType.(*lltypes.IntType); ok {
			n, err := strconv.ParseInt(ins.Text, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid integer literal %q: %w", ins.Text, err)
			}
			return constant.NewInt(intType, n), nil
		}
		if floatType, ok := llType.(*lltypes.FloatType); ok {
			n, err := strconv.ParseFloat(ins.Text, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid float literal %q: %w", ins.Text, err)
			}
			return constant.NewFloat(floatType, n), nil
		}
		return nil, fmt.Errorf("literal of unsupported type %s", ins.Type)
	}
}

func emitNegate(b *llvmir.Block, v frame) (value.Value, error) {
	if v.Typ.Kind == ctypes.Bool {
		return b.NewXor(v.Val, constant.NewInt(lltypes.I1, 1)), nil
	}
	if v.Typ.IsFloat() {
		return b.NewFNeg(v.Val), nil
	}
	llType, err := chiToLLVM(v.Typ)
	if err != nil {
		return nil, err
	}
	intType, ok := llType.(*lltypes.IntType)
	if !ok {
		return nil, fmt.Errorf("cannot negate %s", v.Typ)
	}
	return b.NewSub(constant.NewInt(intType, 0), v.Val), nil
}

func emitArith(b *llvmir.Block, kind cir.Kind, a, bv frame) (value.Value, error) {
	if a.Typ.IsFloat() {
		switch kind {
		case cir.Add:
			return b.NewFAdd(a.Val, bv.Val), nil
		case cir.Subtract:
			return b.NewFSub(a.Val, bv.Val), nil
		case cir.Multiply:
			return b.NewFMul(a.Val, bv.Val), nil
		default: // IntDivide/Divide on float operands both mean FDiv
			return b.NewFDiv(a.Val, bv.Val), nil
		}
	}
	unsigned := a.Typ.IsUnsigned()
	switch kind {
	case cir.Add:
		return b.NewAdd(a.Val, bv.Val), nil
	case cir.Subtract:
		return b.NewSub(a.Val, bv.Val), nil
	case cir.Multiply:
		return b.NewMul(a.Val, bv.Val), nil
	default: // IntDivide/Divide on integer operands: truncating quotient
		if unsigned {
			return b.NewUDiv(a.Val, bv.Val), nil
		}
		return b.NewSDiv(a.Val, bv.Val), nil
	}
}

// emitCompare resolves the Open Question in spec.md §9 about unsigned
// comparison mapping: unsigned operands use the U-prefixed icmp
// predicates (ULT/UGT/ULE/UGE), never the signed ones, eliminating the
// ambiguity the original source's LT/GT conflation left open.
func emitCompare(b *llvmir.Block, cmp cir.CompareOp, a, bv frame) (value.Value, error) {
	if a.Typ.IsFloat() {
		pred := map[cir.CompareOp]enum.FPred{
			cir.EQ: enum.FPredOEQ, cir.NE: enum.FPredONE,
			cir.LT: enum.FPredOLT, cir.GT: enum.FPredOGT,
			cir.LE: enum.FPredOLE, cir.GE: enum.FPredOGE,
		}[cmp]
		return b.NewFCmp(pred, a.Val, bv.Val), nil
	}
	var pred enum.IPred
	if a.Typ.IsUnsigned() {
		pred = map[cir.CompareOp]enum.IPred{
			cir.EQ: enum.IPredEQ, cir.NE: enum.IPredNE,
			cir.LT: enum.IPredULT, cir.GT: enum.IPredUGT,
			cir.LE: enum.IPredULE, cir.GE: enum.IPredUGE,
		}[cmp]
	} else {
		pred = map[cir.CompareOp]enum.IPred{
			cir.EQ: enum.IPredEQ, cir.NE: enum.IPredNE,
			cir.LT: enum.IPredSLT, cir.GT: enum.IPredSGT,
			cir.LE: enum.IPredSLE, cir.GE: enum.IPredSGE,
		}[cmp]
	}
	return b.NewICmp(pred, a.Val, bv.Val), nil
}

// indexGEP computes a best-effort element pointer for IndexLoad/
// IndexStore. target.Val is an Array's alloca pointer (indexed with a
// leading zero per LLVM's GEP convention) or a Ptr's already-loaded
// pointer value (indexed directly); no bounds checking is performed.
func indexGEP(b *llvmir.Block, target, index frame) (value.Value, lltypes.Type, error) {
	switch target.Typ.Kind {
	case ctypes.Array:
		elemType, err := chiToLLVM(*target.Typ.Elem)
		if err != nil {
			return nil, nil, err
		}
		zero := constant.NewInt(lltypes.I64, 0)
		ptr := b.NewGetElementPtr(lltypes.NewArray(target.Typ.Size, elemType), target.Val, zero, index.Val)
		return ptr, elemType, nil
	case ctypes.Ptr:
		elemType, err := chiToLLVM(*target.Typ.Elem)
		if err != nil {
			return nil, nil, err
		}
		ptr := b.NewGetElementPtr(elemType, target.Val, index.Val)
		return ptr, elemType, nil
	default:
		return nil, nil, fmt.Errorf("cannot index a value of type %s", target.Typ)
	}
}
