package ir

// Graph owns every block and instruction reachable from its root, plus the
// bookkeeping passes need: a monotonic block-id counter, an instruction id
// generator, build-time label tables, and the three analysis validity
// flags. Graph has exactly one owner at a time (§5: no concurrent access).
type Graph struct {
	Arena      *Arena
	Root       *BasicBlock
	End        *BasicBlock
	ParamCount int

	blockCounter uint64
	instrIDs     *IDGen

	labelBlocks  map[string]uint64
	labelTargets map[string]*Instruction

	rpoValid  bool
	rpoCache  []*BasicBlock
	dfsCache  []*BasicBlock

	domTreeValid bool

	loopAnalysisValid bool
	rootLoop          *Loop
}

// NewGraph creates an empty graph backed by a fresh arena.
func NewGraph(paramCount int) *Graph {
	return &Graph{
		Arena:        NewArena(),
		ParamCount:   paramCount,
		instrIDs:     NewIDGen(),
		labelBlocks:  make(map[string]uint64),
		labelTargets: make(map[string]*Instruction),
	}
}

// IDs returns the graph's instruction id generator, for factories building
// instructions destined for this graph.
func (g *Graph) IDs() *IDGen { return g.instrIDs }

// GenInstrId mints a fresh instruction id from the graph's generator.
func (g *Graph) GenInstrId() uint64 { return g.instrIDs.Next() }

func (g *Graph) nextBlockID() uint64 {
	id := g.blockCounter
	g.blockCounter++
	return id
}

// BindRootAndEnd assigns the reserved ids 0 and 1 to root and end
// respectively, and advances the block counter past them.
func (g *Graph) BindRootAndEnd(root, end *BasicBlock) {
	root.SetId(0)
	end.SetId(1)
	g.Root = root
	g.End = end
	if g.blockCounter < 2 {
		g.blockCounter = 2
	}
}

// FindBlock searches for the block with the given id by walking the graph
// depth-first from root. This is linear, which the spec accepts because
// graphs here are method-sized.
func (g *Graph) FindBlock(id uint64) *BasicBlock {
	if g.Root == nil {
		return nil
	}
	visited := make(map[*BasicBlock]bool)
	var found *BasicBlock
	var walk func(b *BasicBlock)
	walk = func(b *BasicBlock) {
		if found != nil || visited[b] {
			return
		}
		visited[b] = true
		if b.GetId() == id {
			found = b
			return
		}
		for _, s := range b.Succs {
			walk(s)
		}
	}
	walk(g.Root)
	return found
}

// RemoveBlock detaches b from every predecessor's successor list (but
// leaves b's own Preds untouched so it can be restored) and returns it.
// This supports the slow dominator algorithm's iterated-removal probe.
func (g *Graph) RemoveBlock(b *BasicBlock) *BasicBlock {
	for _, p := range b.Preds {
		for i, s := range p.Succs {
			if s == b {
				p.Succs = append(p.Succs[:i], p.Succs[i+1:]...)
				break
			}
		}
	}
	return b
}

// RestoreBlock reverses RemoveBlock: re-links b into every predecessor's
// successor list, preserving the position each edge had by appending (slow
// dominators do not depend on successor order among restored edges since
// the probe only reads reachability).
func (g *Graph) RestoreBlock(b *BasicBlock) {
	for _, p := range b.Preds {
		p.Succs = append(p.Succs, b)
	}
}

// MoveRoot introduces newRoot as the graph's root, adding an edge from
// newRoot to the old root. Used by the loop analyzer to synthesize a
// preheader for the root loop (§4.7 phase C).
func (g *Graph) MoveRoot(newRoot *BasicBlock) {
	oldRoot := g.Root
	newRoot.Graph = g
	newRoot.ClearId()
	newRoot.SetId(0)
	oldRoot.ClearId()
	oldRoot.id = g.nextBlockID()
	g.Root = newRoot
	AddEdge(newRoot, oldRoot)
}

// BindLabel records that label names block id during building.
func (g *Graph) BindLabel(label string, blockID uint64) {
	g.labelBlocks[label] = blockID
}

// BlockForLabel resolves a label to a block id, reporting whether it was found.
func (g *Graph) BlockForLabel(label string) (uint64, bool) {
	id, ok := g.labelBlocks[label]
	return id, ok
}

// BindLabelTarget records that label names target instruction instr during building.
func (g *Graph) BindLabelTarget(label string, instr *Instruction) {
	g.labelTargets[label] = instr
}

// TargetForLabel resolves a label to its target instruction, reporting
// whether it was found.
func (g *Graph) TargetForLabel(label string) (*Instruction, bool) {
	in, ok := g.labelTargets[label]
	return in, ok
}

// ClearLabelTables drops the build-time label maps; the builder calls this
// once construction completes (§4.8: "used during building only").
func (g *Graph) ClearLabelTables() {
	g.labelBlocks = make(map[string]uint64)
	g.labelTargets = make(map[string]*Instruction)
}

// Validity flags.

func (g *Graph) IsRpoValid() bool          { return g.rpoValid }
func (g *Graph) IsDomTreeValid() bool      { return g.domTreeValid }
func (g *Graph) IsLoopAnalysisValid() bool { return g.loopAnalysisValid }

func (g *Graph) MakeRpoValid()          { g.rpoValid = true }
func (g *Graph) InvalidateRpo()         { g.rpoValid = false }
func (g *Graph) MakeDomTreeValid()      { g.domTreeValid = true }
func (g *Graph) InvalidateDomTree()     { g.domTreeValid = false }
func (g *Graph) MakeLoopAnalysisValid() { g.loopAnalysisValid = true }
func (g *Graph) InvalidateLoopAnalysis() {
	g.loopAnalysisValid = false
	g.rootLoop = nil
}

// RPO/DFS caches, written by internal/traversal.

// SetTraversalCache stores the freshly computed RPO and postorder DFS
// sequences and marks RPO valid.
func (g *Graph) SetTraversalCache(rpo, dfs []*BasicBlock) {
	g.rpoCache = rpo
	g.dfsCache = dfs
	g.MakeRpoValid()
}

// CachedRPO returns the cached RPO sequence, if valid.
func (g *Graph) CachedRPO() ([]*BasicBlock, bool) {
	if !g.rpoValid {
		return nil, false
	}
	return g.rpoCache, true
}

// CachedDFS returns the cached postorder DFS sequence, if valid.
func (g *Graph) CachedDFS() ([]*BasicBlock, bool) {
	if !g.rpoValid {
		return nil, false
	}
	return g.dfsCache, true
}

// RootLoop returns the synthesized root loop recorded by the loop
// analyzer, if loop analysis is currently valid.
func (g *Graph) RootLoop() *Loop {
	if !g.loopAnalysisValid {
		return nil
	}
	return g.rootLoop
}

// SetRootLoop records the root loop and marks loop analysis valid.
func (g *Graph) SetRootLoop(l *Loop) {
	g.rootLoop = l
	g.MakeLoopAnalysisValid()
}

// AllBlocks returns every block reachable from root via a DFS walk keyed
// purely on successor edges (used by passes, like the dominator and loop
// analyses and the inliner, that need "every block" rather than a cached
// traversal order).
func (g *Graph) AllBlocks() []*BasicBlock {
	if g.Root == nil {
		return nil
	}
	visited := make(map[*BasicBlock]bool)
	var out []*BasicBlock
	var walk func(b *BasicBlock)
	walk = func(b *BasicBlock) {
		if visited[b] {
			return
		}
		visited[b] = true
		out = append(out, b)
		for _, s := range b.Succs {
			walk(s)
		}
	}
	walk(g.Root)
	return out
}
