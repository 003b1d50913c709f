// Package cfgbuild converts a flat instruction stream — already carrying
// IsTarget flags and target-variant jump operands pointing at their target
// instructions — into a Graph's control-flow structure.
package cfgbuild

import (
	"ssaopt/internal/ir"
	"ssaopt/internal/traversal"
)

// Build packs instrs into basic blocks and wires the resulting CFG into g,
// which must be empty (no root or end bound yet). It returns false without
// mutating g if g is already built or instrs is empty; use BuildEmpty for
// the trivial root-only/end-only graph.
func Build(g *ir.Graph, instrs []*ir.Instruction) bool {
	if g.Root != nil || g.End != nil {
		return false
	}
	if len(instrs) == 0 {
		return false
	}

	blocks := packBlocks(g, instrs)
	if !connectEdges(blocks) {
		return false
	}

	// Traversal needs an entry to walk from before it can compute RPO; the
	// textually-first block is the entry per §4.8. BindRootAndEnd below
	// re-derives the real root/end from the resulting RPO order.
	g.Root = blocks[0]
	rpo := traversal.Run(g, true)
	g.BindRootAndEnd(rpo[0], rpo[len(rpo)-1])
	g.ClearLabelTables()
	return true
}

// BuildEmpty constructs the trivial two-block graph (root only, end only,
// root falling through to end) used as the boundary case every pass must
// handle trivially.
func BuildEmpty(paramCount int) *ir.Graph {
	g := ir.NewGraph(paramCount)
	root := g.MakeBasicBlock(nil)
	end := g.MakeBasicBlock(nil)
	ir.AddEdge(root, end)
	g.BindRootAndEnd(root, end)
	traversal.Run(g, true)
	return g
}

// packBlocks scans instrs linearly, starting a new block whenever the
// current instruction is a jump target or the previous instruction ended
// a block (was control flow), and packs each run through MakeBasicBlock.
func packBlocks(g *ir.Graph, instrs []*ir.Instruction) []*ir.BasicBlock {
	var blocks []*ir.BasicBlock
	var current []*ir.Instruction

	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, g.MakeBasicBlock(current))
			current = nil
		}
	}

	for i, in := range instrs {
		startsNew := in.IsTarget || (i > 0 && ir.IsControlFlow(instrs[i-1].Op))
		if startsNew && len(current) > 0 {
			flush()
		}
		current = append(current, in)
	}
	flush()
	return blocks
}

// connectEdges wires each block's outgoing edges from its last
// instruction: a conditional branch gets its fall-through edge first
// (position 0) and its taken-target edge second (position 1, per the
// invariant that successor order is significant); an unconditional jump
// gets only its target edge; a return or throw ends the block with no
// successors; everything else (including a non-throwing CALL, or a block
// that simply ends because the next instruction is a jump target) falls
// through to the textually next block.
func connectEdges(blocks []*ir.BasicBlock) bool {
	for idx, b := range blocks {
		last := b.LastInstr
		if last == nil {
			return false
		}
		switch {
		case ir.IsConditionalBranch(last.Op):
			if idx+1 >= len(blocks) {
				return false
			}
			target, ok := resolveTarget(last)
			if !ok {
				return false
			}
			ir.AddEdge(b, blocks[idx+1])
			ir.AddEdge(b, target)
		case ir.IsJump(last.Op):
			target, ok := resolveTarget(last)
			if !ok {
				return false
			}
			ir.AddEdge(b, target)
		case ir.IsReturn(last.Op) || last.Op == ir.OpThrow:
			// Terminal: no successors.
		default:
			if idx+1 < len(blocks) {
				ir.AddEdge(b, blocks[idx+1])
			}
		}
	}
	return true
}

func resolveTarget(last *ir.Instruction) (*ir.BasicBlock, bool) {
	n := last.NumInputs()
	for i := 0; i < n; i++ {
		op := last.InputAt(i)
		if op.Kind == ir.OperandTarget && op.Def != nil {
			return op.Def.Block, true
		}
	}
	return nil, false
}
