package ir

const blockIDUnset = ^uint64(0)

// BasicBlock is a straight-line run of instructions with CFG adjacency and
// cached analysis results attached.
type BasicBlock struct {
	id    uint64
	Graph *Graph

	FirstInstr *Instruction
	LastInstr  *Instruction
	FirstPhi   *Instruction

	Preds []*BasicBlock
	Succs []*BasicBlock

	Dominators map[*BasicBlock]bool
	Idom       *BasicBlock

	Loop *Loop

	Marker Marker
}

// GetId returns the block's stable id, minting one from its owning graph's
// counter on first call if none was assigned yet (blocks built by
// MakeBasicBlock before being wired into a graph have no id until then).
func (b *BasicBlock) GetId() uint64 {
	if b.id == blockIDUnset {
		if b.Graph == nil {
			panic("ir: GetId called on a block with no owning graph")
		}
		b.id = b.Graph.nextBlockID()
	}
	return b.id
}

// SetId forces the block's id, used for root (0) and end (1), including
// when MoveRoot installs a new root.
func (b *BasicBlock) SetId(id uint64) { b.id = id }

// ClearId resets the block to the unassigned state so GetId mints a fresh
// id from its (possibly new) owning graph's counter.
func (b *BasicBlock) ClearId() { b.id = blockIDUnset }

// HasId reports whether an id has been minted or explicitly set yet.
func (b *BasicBlock) HasId() bool { return b.id != blockIDUnset }

// Instructions returns the block's instructions in list order.
func (b *BasicBlock) Instructions() []*Instruction {
	var out []*Instruction
	for in := b.FirstInstr; in != nil; in = in.Next {
		out = append(out, in)
	}
	return out
}

// Phis returns the block's PHI instructions in list order.
func (b *BasicBlock) Phis() []*Instruction {
	var out []*Instruction
	for in := b.FirstPhi; in != nil && in.Op == OpPhi; in = in.Next {
		out = append(out, in)
	}
	return out
}

// MakeBasicBlock allocates a new block in g's arena and stitches instrs
// into its doubly-linked instruction chain, setting each instruction's
// owning block and recording FirstInstr/LastInstr/FirstPhi.
func (g *Graph) MakeBasicBlock(instrs []*Instruction) *BasicBlock {
	b := g.Arena.NewBlock()
	b.Graph = g
	var prev *Instruction
	for _, in := range instrs {
		in.Block = b
		in.Prev = prev
		in.Next = nil
		if prev != nil {
			prev.Next = in
		} else {
			b.FirstInstr = in
		}
		prev = in
		if in.Op == OpPhi && b.FirstPhi == nil {
			b.FirstPhi = in
		}
	}
	b.LastInstr = prev
	return b
}

// AddEdge appends to to from's successors and from to to's predecessors,
// preserving the position significance conditional branches rely on
// (fall-through first, taken target second), and invalidates the graph's
// cached analyses.
func AddEdge(from, to *BasicBlock) {
	from.Succs = append(from.Succs, to)
	to.Preds = append(to.Preds, from)
	invalidateOwner(from, to)
}

// RemoveEdge reverses AddEdge: removes to from from's successors and from
// from to's predecessors. Used by the inliner to undo SplitOn's default
// edge and to detach the callee's root->entry and exit-predecessor->end
// edges during CFG stitching (§4.9 steps 1 and 6).
func RemoveEdge(from, to *BasicBlock) {
	for i, s := range from.Succs {
		if s == to {
			from.Succs = append(from.Succs[:i], from.Succs[i+1:]...)
			break
		}
	}
	for i, p := range to.Preds {
		if p == from {
			to.Preds = append(to.Preds[:i], to.Preds[i+1:]...)
			break
		}
	}
	invalidateOwner(from, to)
}

func invalidateOwner(blocks ...*BasicBlock) {
	for _, b := range blocks {
		if b != nil && b.Graph != nil {
			b.Graph.InvalidateRpo()
			b.Graph.InvalidateDomTree()
			b.Graph.InvalidateLoopAnalysis()
		}
	}
}

// RemoveFromSuccs removes the successor with the given id, if present.
func (b *BasicBlock) RemoveFromSuccs(id uint64) {
	for i, s := range b.Succs {
		if s.GetId() == id {
			b.Succs = append(b.Succs[:i], b.Succs[i+1:]...)
			break
		}
	}
	invalidateOwner(b)
}

// RemoveFromPreds removes the predecessor with the given id, if present.
func (b *BasicBlock) RemoveFromPreds(id uint64) {
	for i, p := range b.Preds {
		if p.GetId() == id {
			b.Preds = append(b.Preds[:i], b.Preds[i+1:]...)
			break
		}
	}
	invalidateOwner(b)
}

// MovePreds reassigns every predecessor edge pointing at b so it points at
// other instead: each predecessor's successor list is rewritten in place
// (preserving position) and other's predecessor list gains them. b ends up
// with no predecessors.
func (b *BasicBlock) MovePreds(other *BasicBlock) {
	for _, p := range b.Preds {
		for i, s := range p.Succs {
			if s == b {
				p.Succs[i] = other
			}
		}
		other.Preds = append(other.Preds, p)
	}
	b.Preds = nil
	invalidateOwner(b, other)
}

// MoveSuccs reassigns every successor edge leaving b so it leaves other
// instead: each successor's predecessor list is rewritten in place
// (preserving position) and other's successor list gains them. b ends up
// with no successors.
func (b *BasicBlock) MoveSuccs(other *BasicBlock) {
	for _, s := range b.Succs {
		for i, p := range s.Preds {
			if p == b {
				s.Preds[i] = other
			}
		}
		other.Succs = append(other.Succs, s)
	}
	b.Succs = nil
	invalidateOwner(b, other)
}

// SplitOn creates a new block holding every instruction after insn, leaves
// insn as this block's new last instruction, and wires an edge from this
// block to the new one. insn must belong to this block. Copying this
// block's old successors onto the new block is the caller's responsibility
// (the inliner does this explicitly as part of its splice, §4.9 step 1).
func (b *BasicBlock) SplitOn(insn *Instruction) *BasicBlock {
	if insn.Block != b {
		panic("ir: SplitOn called with an instruction outside the block")
	}
	after := insn.Next
	newBlock := b.Graph.Arena.NewBlock()
	newBlock.Graph = b.Graph

	if after != nil {
		after.Prev = nil
		newBlock.FirstInstr = after
		newBlock.LastInstr = b.LastInstr
		for cur := after; cur != nil; cur = cur.Next {
			cur.Block = newBlock
			if cur.Op == OpPhi && newBlock.FirstPhi == nil {
				newBlock.FirstPhi = cur
			}
		}
	}

	insn.Next = nil
	b.LastInstr = insn
	AddEdge(b, newBlock)
	return newBlock
}

// InsertInstrBefore splices newI into the block immediately before anchor.
func (b *BasicBlock) InsertInstrBefore(anchor, newI *Instruction) {
	newI.Block = b
	newI.Next = anchor
	newI.Prev = anchor.Prev
	if anchor.Prev != nil {
		anchor.Prev.Next = newI
	} else {
		b.FirstInstr = newI
	}
	anchor.Prev = newI
	if newI.Op == OpPhi && b.FirstPhi == anchor {
		b.FirstPhi = newI
	}
}

// InsertInstrAfter splices newI into the block immediately after anchor.
func (b *BasicBlock) InsertInstrAfter(anchor, newI *Instruction) {
	newI.Block = b
	newI.Prev = anchor
	newI.Next = anchor.Next
	if anchor.Next != nil {
		anchor.Next.Prev = newI
	} else {
		b.LastInstr = newI
	}
	anchor.Next = newI
}

// PrependInstr makes newI the block's first instruction.
func (b *BasicBlock) PrependInstr(newI *Instruction) {
	newI.Block = b
	newI.Prev = nil
	newI.Next = b.FirstInstr
	if b.FirstInstr != nil {
		b.FirstInstr.Prev = newI
	} else {
		b.LastInstr = newI
	}
	b.FirstInstr = newI
	if newI.Op == OpPhi {
		b.FirstPhi = newI
	}
}

// RemoveInstr unlinks in from the block's instruction list.
func (b *BasicBlock) RemoveInstr(in *Instruction) {
	if in.Prev != nil {
		in.Prev.Next = in.Next
	} else {
		b.FirstInstr = in.Next
	}
	if in.Next != nil {
		in.Next.Prev = in.Prev
	} else {
		b.LastInstr = in.Prev
	}
	if b.FirstPhi == in {
		if in.Next != nil && in.Next.Op == OpPhi {
			b.FirstPhi = in.Next
		} else {
			b.FirstPhi = nil
		}
	}
	in.Prev, in.Next = nil, nil
}

// AddDominator adds d to this block's dominator set.
func (b *BasicBlock) AddDominator(d *BasicBlock) {
	if b.Dominators == nil {
		b.Dominators = make(map[*BasicBlock]bool)
	}
	b.Dominators[d] = true
}

// IsDominatedBy reports whether other dominates this block (or is this
// block itself).
func (b *BasicBlock) IsDominatedBy(other *BasicBlock) bool {
	if b == other {
		return true
	}
	return b.Dominators[other]
}
