// Package looptree implements the loop analyzer: back-edge detection via
// two-bit coloring, natural/irreducible loop population by reverse walks
// over predecessors, and synthesis of a root loop (with a fresh preheader
// when the entry block is itself inside a cycle).
package looptree

import "ssaopt/internal/ir"

// Run computes the loop forest for g. It requires a valid dominator tree
// (back-edge irreducibility is judged by dominance) and returns false
// without touching the loop-analysis-valid flag if the dominator tree is
// not valid.
func Run(g *ir.Graph) bool {
	if !g.IsDomTreeValid() {
		return false
	}
	if g.Root == nil {
		return false
	}

	nextID := 0
	all := g.AllBlocks()
	loops := collectBackEdges(g, all, &nextID)
	populateLoops(all, loops)
	root := synthesizeRootLoop(g, loops, &nextID)
	g.SetRootLoop(root)
	return true
}

// collectBackEdges is phase A: a grey/black color walk from root. Every
// edge pred -> succ where succ is grey is a back edge; the loop for succ
// is created on first discovery and pred is recorded as one of its
// back-edge sources. A back edge whose source is not dominated by its
// header marks the loop irreducible.
func collectBackEdges(g *ir.Graph, all []*ir.BasicBlock, nextID *int) []*ir.Loop {
	ir.ClearMarkers(all)
	var loops []*ir.Loop

	var visit func(b *ir.BasicBlock)
	visit = func(b *ir.BasicBlock) {
		b.Marker.SetGrey()
		for _, s := range b.Succs {
			switch {
			case s.Marker.IsGrey():
				loop := s.Loop
				if loop == nil {
					loop = ir.NewLoop(*nextID, s)
					*nextID++
					s.Loop = loop
					loops = append(loops, loop)
				}
				loop.AddBackEdgeSrc(b)
				if !b.IsDominatedBy(s) {
					loop.IsIrreducible = true
				}
			case s.Marker.IsWhite():
				visit(s)
			}
		}
		b.Marker.SetBlack()
	}
	visit(g.Root)
	return loops
}

// populateLoops is phase B: for each header discovered in phase A, in the
// order the blocks were enumerated, either restrict an irreducible loop's
// membership to the header plus its back-edge sources, or walk
// predecessors backward from every back-edge source to claim every block
// between it and the header.
func populateLoops(all []*ir.BasicBlock, loops []*ir.Loop) {
	ir.ClearMarkers(all)
	for _, b := range all {
		loop := b.Loop
		if loop == nil || loop.Header != b {
			continue
		}
		if loop.IsIrreducible {
			loop.AddMember(b)
			for _, src := range loop.BackEdgeSrcs {
				loop.AddMember(src)
				if src.Loop == nil {
					src.Loop = loop
				}
			}
			continue
		}

		ir.ClearMarkers(all)
		b.Marker.SetBlack()
		loop.AddMember(b)
		for _, src := range loop.BackEdgeSrcs {
			reverseWalk(src, loop)
		}
	}
}

// reverseWalk is the reducible-loop backward claim from one back-edge
// source. A block not yet claimed by any loop becomes a member of loop; a
// block already claimed by a different loop is recorded as an inner loop
// of this one (idempotently) rather than re-claimed, since a block
// belongs to exactly its innermost enclosing loop.
func reverseWalk(b *ir.BasicBlock, loop *ir.Loop) {
	alreadyWalked := b.Marker.IsBlack()
	if !alreadyWalked {
		b.Marker.SetBlack()
	}

	if b.Loop == nil {
		loop.AddMember(b)
		b.Loop = loop
	} else if b.Loop != loop {
		loop.AddInner(b.Loop)
	}

	if alreadyWalked {
		return
	}
	for _, p := range b.Preds {
		reverseWalk(p, loop)
	}
}

// synthesizeRootLoop is phase C. If the entry block is itself inside a
// cycle, a fresh empty preheader is created and installed as the graph's
// new root; the root loop is anchored there. Otherwise it is anchored at
// the existing root. Every block not yet claimed by a loop becomes a root
// loop member, and every loop with no outer loop becomes an inner loop of
// the root loop.
func synthesizeRootLoop(g *ir.Graph, loops []*ir.Loop, nextID *int) *ir.Loop {
	anchor := g.Root
	if g.Root.Loop != nil {
		preheader := g.MakeBasicBlock(nil)
		g.MoveRoot(preheader)
		anchor = preheader
	}

	root := ir.NewLoop(*nextID, anchor)
	*nextID++
	root.IsRoot = true

	for _, b := range g.AllBlocks() {
		if b.Loop == nil {
			root.AddMember(b)
			b.Loop = root
		}
	}
	for _, l := range loops {
		if l != root && l.Outer == nil {
			root.AddInner(l)
		}
	}
	return root
}
