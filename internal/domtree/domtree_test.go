package domtree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssaopt/internal/domtree"
	"ssaopt/internal/ir"
)

// buildExampleOne wires the reference CFG: A->B; B->C,F; C->D; E->D;
// F->E,G; G->D.
func buildExampleOne() (g *ir.Graph, a, b, c, d, e, f, gg *ir.BasicBlock) {
	g = ir.NewGraph(0)
	a = g.Arena.NewBlock()
	b = g.Arena.NewBlock()
	c = g.Arena.NewBlock()
	d = g.Arena.NewBlock()
	e = g.Arena.NewBlock()
	f = g.Arena.NewBlock()
	gg = g.Arena.NewBlock()

	ir.AddEdge(a, b)
	ir.AddEdge(b, c)
	ir.AddEdge(b, f)
	ir.AddEdge(c, d)
	ir.AddEdge(e, d)
	ir.AddEdge(f, e)
	ir.AddEdge(f, gg)
	ir.AddEdge(gg, d)

	g.BindRootAndEnd(a, d)
	return
}

func domSet(blocks ...*ir.BasicBlock) map[*ir.BasicBlock]bool {
	s := make(map[*ir.BasicBlock]bool, len(blocks))
	for _, b := range blocks {
		s[b] = true
	}
	return s
}

func TestDominatorsOnExampleOne(t *testing.T) {
	g, a, b, c, d, e, f, gg := buildExampleOne()

	ok := domtree.Run(g)
	require.True(t, ok)

	assert.Equal(t, domSet(a), a.Dominators)
	assert.Equal(t, domSet(a, b), b.Dominators)
	assert.Equal(t, domSet(a, b, c), c.Dominators)
	assert.Equal(t, domSet(a, b, f), f.Dominators)
	assert.Equal(t, domSet(a, b, f, e), e.Dominators)
	assert.Equal(t, domSet(a, b, f, gg), gg.Dominators)
	assert.Equal(t, domSet(a, b, d), d.Dominators)

	assert.Equal(t, a, a.Idom)
	assert.Equal(t, a, b.Idom)
	assert.Equal(t, b, c.Idom)
	assert.Equal(t, b, f.Idom)
	assert.Equal(t, f, e.Idom)
	assert.Equal(t, f, gg.Idom)
	assert.Equal(t, b, d.Idom)
}

func TestDominatorsOnSingleBlock(t *testing.T) {
	g := ir.NewGraph(0)
	only := g.Arena.NewBlock()
	g.BindRootAndEnd(only, only)

	require.True(t, domtree.Run(g))
	assert.Equal(t, only, only.Idom)
}

func TestDominatorsRequireRoot(t *testing.T) {
	g := ir.NewGraph(0)
	assert.False(t, domtree.Run(g))
}
