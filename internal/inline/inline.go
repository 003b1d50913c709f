// Package inline splices a callee graph into a caller at a single CALL
// site, the way a register-machine JIT's inliner rewires one function's
// body into another's without disturbing SSA form: arguments replace
// parameters, multiple returns merge through a PHI, constants dedup
// against the caller's start block, and the callee's interior blocks are
// reparented wholesale.
package inline

import (
	"ssaopt/internal/diag"
	"ssaopt/internal/ir"
)

const defaultInstrsLimit = 50

// Inliner holds the heuristics governing whether a call site is a
// candidate for splicing.
type Inliner struct {
	// InstrsLimit caps the caller's total instruction count; above it,
	// Run skips the call rather than growing the caller further.
	InstrsLimit int
	Log         *diag.Logger
}

// New returns an Inliner with the default size heuristic.
func New() *Inliner {
	return &Inliner{InstrsLimit: defaultInstrsLimit}
}

// Run splices the callee named by call's first operand into caller at
// call's site. It returns false, leaving both graphs untouched, if the
// callee is nil or the caller's instruction count is above the
// heuristic. After a successful splice the callee graph must not be used
// again as a standalone graph (§5): its interior blocks and constants now
// belong to caller.
func (in *Inliner) Run(caller *ir.Graph, call *ir.Instruction) bool {
	if call.NumInputs() == 0 {
		return false
	}
	calleeOp := call.InputAt(0)
	callee := calleeOp.Graph
	if callee == nil {
		in.Log.Printf("inline: call %d has a null callee, skipping", call.ID)
		return false
	}
	if countInstrs(caller) > in.InstrsLimit {
		in.Log.Printf("inline: caller above instruction limit %d, skipping call %d", in.InstrsLimit, call.ID)
		return false
	}

	b := call.Block
	bAfter := splitAndRehome(b, call)

	wireArguments(callee, call)

	ok := wireExits(caller, callee, call, bAfter, in.Log)
	if !ok {
		return false
	}

	mergeConstants(caller, callee)
	reparentInteriorBlocks(caller, callee)
	stitchCFG(b, bAfter, callee)

	b.RemoveInstr(call)
	return true
}

func countInstrs(g *ir.Graph) int {
	n := 0
	for _, b := range g.AllBlocks() {
		for in := b.FirstInstr; in != nil; in = in.Next {
			n++
		}
	}
	return n
}

// splitAndRehome is step 1: split b on call, strip the edge SplitOn added
// by default (b is about to be rewired to the callee's entry instead), and
// move b's pre-existing successors onto the new block via MoveSuccs, the
// same block-splitting primitive §4.3 names for this purpose.
func splitAndRehome(b *ir.BasicBlock, call *ir.Instruction) *ir.BasicBlock {
	bAfter := b.SplitOn(call)
	ir.RemoveEdge(b, bAfter)
	b.MoveSuccs(bAfter)
	return bAfter
}

// wireArguments is step 2: for each (caller argument, callee parameter)
// pair, rewrite the callee's internal references to the parameter so they
// read the caller's argument definition instead, then retire the
// parameter's own user bookkeeping.
func wireArguments(callee *ir.Graph, call *ir.Instruction) {
	params := calleeParameters(callee)
	args := call.GetInputs()
	for i, param := range params {
		if i+1 >= len(args) {
			break
		}
		argDef := args[i+1].Def
		param.ReplaceInputForUsers(argDef)
		if argDef != nil {
			argDef.RemoveUser(call)
		}
	}
}

func calleeParameters(callee *ir.Graph) []*ir.Instruction {
	var params []*ir.Instruction
	for in := callee.Root.FirstInstr; in != nil; in = in.Next {
		if in.Op == ir.OpParameter {
			params = append(params, in)
		}
	}
	return params
}

// wireExits is step 3: process every predecessor of the callee's end
// block, merging multiple RET producers through a PHI prepended to
// bAfter, forwarding a single RET's value directly, and doing nothing for
// RET_VOID/THROW. A predecessor ending in any other opcode is malformed;
// it is logged and skipped rather than aborting the whole splice.
func wireExits(caller, callee *ir.Graph, call *ir.Instruction, bAfter *ir.BasicBlock, log *diag.Logger) bool {
	preds := append([]*ir.BasicBlock(nil), callee.End.Preds...)

	nRet := 0
	for _, p := range preds {
		if p.LastInstr != nil && p.LastInstr.Op == ir.OpRet {
			nRet++
		}
	}

	var phi *ir.Instruction
	var target *ir.Instruction

	for _, p := range preds {
		e := p.LastInstr
		if e == nil {
			log.Printf("inline: callee end-predecessor %d has no last instruction, skipping exit", p.GetId())
			continue
		}
		switch {
		case e.Op == ir.OpRet && nRet > 1:
			if phi == nil {
				phi = ir.NewInstrN(caller.Arena, caller.IDs(), ir.OpPhi, call.Type, call.Dst, nil)
				bAfter.PrependInstr(phi)
			}
			rv := e.InputAt(0)
			if rv.Def != nil {
				rv.Def.RemoveUser(e)
				rv.Def.Users = append(rv.Def.Users, phi)
			}
			phi.AppendInput(rv)
			target = phi
			p.RemoveInstr(e)
		case e.Op == ir.OpRet && nRet == 1:
			rv := e.InputAt(0)
			if rv.Def != nil {
				rv.Def.RemoveUser(e)
			}
			target = rv.Def
			p.RemoveInstr(e)
		case e.Op == ir.OpRetVoid || e.Op == ir.OpThrow:
			p.RemoveInstr(e)
		default:
			log.Printf("inline: callee end-predecessor %d ends in %s, not RET/RET_VOID/THROW, skipping exit", p.GetId(), e.Op)
		}
	}

	if target != nil {
		call.ReplaceInputForUsers(target)
	}
	return true
}

// mergeConstants is step 4: dedup the callee's start-block constants
// against the caller's, rewriting users onto the caller's copy when one
// with the same type and value already exists, and otherwise appending
// the callee's constant to the caller's root.
func mergeConstants(caller, callee *ir.Graph) {
	for in := callee.Root.FirstInstr; in != nil; {
		next := in.Next
		if in.Op != ir.OpConstant {
			in = next
			continue
		}
		if match := findConstant(caller.Root, in.Type, in.Dst.Num); match != nil {
			in.ReplaceInputForUsers(match)
		} else {
			appendToBlock(caller.Root, in)
		}
		in = next
	}
}

func findConstant(root *ir.BasicBlock, typ ir.ValueType, num int64) *ir.Instruction {
	for in := root.FirstInstr; in != nil; in = in.Next {
		if in.Op == ir.OpConstant && in.Type == typ && in.Dst.Num == num {
			return in
		}
	}
	return nil
}

func appendToBlock(b *ir.BasicBlock, in *ir.Instruction) {
	if b.LastInstr == nil {
		b.PrependInstr(in)
		return
	}
	b.InsertInstrAfter(b.LastInstr, in)
}

// reparentInteriorBlocks is step 5: every callee block except its start
// and end is handed over to caller, with its id cleared so it is
// re-minted from caller's own counter on first reference.
func reparentInteriorBlocks(caller, callee *ir.Graph) {
	for _, b := range callee.AllBlocks() {
		if b == callee.Root || b == callee.End {
			continue
		}
		b.Graph = caller
		b.ClearId()
	}
}

// stitchCFG is step 6: drop the callee's root->entry edge and wire b to
// the entry directly, and redirect every predecessor of the callee's end
// block to bAfter instead.
func stitchCFG(b, bAfter *ir.BasicBlock, callee *ir.Graph) {
	entry := callee.Root.Succs[0]
	ir.RemoveEdge(callee.Root, entry)
	ir.AddEdge(b, entry)

	for _, p := range append([]*ir.BasicBlock(nil), callee.End.Preds...) {
		ir.RemoveEdge(p, callee.End)
		ir.AddEdge(p, bAfter)
	}
}
