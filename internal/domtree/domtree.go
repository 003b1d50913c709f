// Package domtree computes dominator trees via the spec's slow-but-correct
// iterated-removal algorithm: a fast path exists in the source this module
// rewrites but is left unspecified there (open question in the spec), so
// only the always-correct algorithm is implemented here.
package domtree

import "ssaopt/internal/ir"

// Run computes dominator sets and immediate dominators for every block
// reachable from g.Root, by, for each candidate block x, removing it,
// observing which blocks become unreachable, and restoring it. It returns
// false — leaving the dom-tree-valid flag untouched — if some block has no
// unique immediate dominator.
func Run(g *ir.Graph) bool {
	if g.Root == nil {
		return false
	}

	all := g.AllBlocks()
	for _, b := range all {
		b.Dominators = nil
		b.Idom = nil
		b.AddDominator(g.Root)
		b.AddDominator(b)
	}

	for _, x := range all {
		if x == g.Root {
			continue
		}
		g.RemoveBlock(x)
		after := blockSet(g.AllBlocks())
		for _, b := range all {
			if b == x {
				continue
			}
			if !after[b] {
				b.AddDominator(x)
			}
		}
		g.RestoreBlock(x)
	}

	ok := true
	for _, b := range all {
		if b == g.Root {
			b.Idom = b
			continue
		}
		idom, unique := immediateDominator(b)
		if !unique {
			ok = false
			continue
		}
		b.Idom = idom
	}

	if !ok {
		return false
	}
	g.MakeDomTreeValid()
	return true
}

// immediateDominator finds the unique strict dominator of b that is itself
// dominated by every other strict dominator of b — the dominator closest
// to b in the chain.
func immediateDominator(b *ir.BasicBlock) (*ir.BasicBlock, bool) {
	var strict []*ir.BasicBlock
	for d := range b.Dominators {
		if d != b {
			strict = append(strict, d)
		}
	}

	var idom *ir.BasicBlock
	count := 0
	for _, d := range strict {
		valid := true
		for _, e := range strict {
			if e == d {
				continue
			}
			if !d.IsDominatedBy(e) {
				valid = false
				break
			}
		}
		if valid {
			idom = d
			count++
		}
	}
	return idom, count == 1
}

func blockSet(blocks []*ir.BasicBlock) map[*ir.BasicBlock]bool {
	set := make(map[*ir.BasicBlock]bool, len(blocks))
	for _, b := range blocks {
		set[b] = true
	}
	return set
}
