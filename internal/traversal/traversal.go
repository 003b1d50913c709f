// Package traversal computes depth-first postorder and its reverse over a
// Graph, caching the result the way kanso's IR pipeline caches other
// derived analyses on the owning structure rather than recomputing per
// query.
package traversal

import "ssaopt/internal/ir"

// Run computes (or, absent force, returns the cached) RPO sequence for g.
// DFS walks each block's successors in their listed order, which is
// semantically significant: a conditional branch's first successor is the
// fall-through edge and its second is the taken target (§5).
func Run(g *ir.Graph, force bool) []*ir.BasicBlock {
	if !force {
		if rpo, ok := g.CachedRPO(); ok {
			return rpo
		}
	}
	dfs := computeDFS(g)
	rpo := reverse(dfs)
	g.SetTraversalCache(rpo, dfs)
	return rpo
}

// GetDFS returns (computing if necessary) the postorder DFS sequence.
func GetDFS(g *ir.Graph, force bool) []*ir.BasicBlock {
	if !force {
		if dfs, ok := g.CachedDFS(); ok {
			return dfs
		}
	}
	Run(g, true)
	dfs, _ := g.CachedDFS()
	return dfs
}

// GetRPO returns (computing if necessary) the RPO sequence.
func GetRPO(g *ir.Graph, force bool) []*ir.BasicBlock {
	return Run(g, force)
}

func computeDFS(g *ir.Graph) []*ir.BasicBlock {
	if g.Root == nil {
		return nil
	}
	var order []*ir.BasicBlock
	visited := make(map[*ir.BasicBlock]bool)
	var visit func(b *ir.BasicBlock)
	visit = func(b *ir.BasicBlock) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range b.Succs {
			visit(s)
		}
		order = append(order, b)
	}
	visit(g.Root)
	return order
}

func reverse(postorder []*ir.BasicBlock) []*ir.BasicBlock {
	if len(postorder) == 0 {
		return nil
	}
	out := make([]*ir.BasicBlock, len(postorder))
	n := len(postorder)
	for i, b := range postorder {
		out[n-1-i] = b
	}
	return out
}
