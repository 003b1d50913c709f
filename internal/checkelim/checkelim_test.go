package checkelim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssaopt/internal/checkelim"
	"ssaopt/internal/domtree"
	"ssaopt/internal/ir"
	"ssaopt/internal/traversal"
)

// buildRedundantZeroCheck builds: movi v0,1; zero_check v0; addi v1,v0,5;
// zero_check v0; ret v0 in a single straight-line block between an empty
// root and end.
func buildRedundantZeroCheck(g *ir.Graph) (check1, check2, ret *ir.Instruction) {
	ids := g.IDs()
	root := g.MakeBasicBlock(nil)
	end := g.MakeBasicBlock(nil)

	movi := ir.NewInstr0(g.Arena, ids, ir.OpMovImm, ir.TypeU64, ir.VReg(0, nil))
	check1 = ir.NewInstr1(g.Arena, ids, ir.OpZeroCheck, ir.TypeU64, ir.VReg(0, nil), ir.VReg(0, movi))
	addi := ir.NewInstr2(g.Arena, ids, ir.OpAddI, ir.TypeU64, ir.VReg(1, nil), ir.VReg(0, check1), ir.Imm(5, nil))
	check2 = ir.NewInstr1(g.Arena, ids, ir.OpZeroCheck, ir.TypeU64, ir.VReg(0, nil), ir.VReg(0, movi))
	ret = ir.NewInstr1(g.Arena, ids, ir.OpRet, ir.TypeVoid, ir.Acc(), ir.VReg(0, check2))
	_ = addi

	block := g.MakeBasicBlock([]*ir.Instruction{movi, check1, addi, check2, ret})
	ir.AddEdge(root, block)
	ir.AddEdge(block, end)
	g.BindRootAndEnd(root, end)

	return check1, check2, ret
}

func TestRedundantZeroCheckBecomesNop(t *testing.T) {
	g := ir.NewGraph(0)
	check1, check2, ret := buildRedundantZeroCheck(g)

	require.True(t, domtree.Run(g))
	rpo := traversal.Run(g, true)

	require.True(t, checkelim.Run(g, rpo))

	assert.Equal(t, ir.OpNop, check2.Op)
	assert.Equal(t, check1, ret.InputAt(0).Def)
	assert.Contains(t, check1.Users, ret)
}

func TestCheckEliminationRequiresDomTree(t *testing.T) {
	g := ir.NewGraph(0)
	_, _, _ = buildRedundantZeroCheck(g)
	rpo := traversal.Run(g, true)

	assert.False(t, checkelim.Run(g, rpo))
}

// buildRedundantBoundsCheck builds two BOUNDS_CHECK instructions on the
// same (length, index) pair; the second must be eliminated, while a third
// check on the same length with a different index must survive.
func buildRedundantBoundsCheck(g *ir.Graph) (first, redundant, differentIndex *ir.Instruction) {
	ids := g.IDs()
	root := g.MakeBasicBlock(nil)
	end := g.MakeBasicBlock(nil)

	length := ir.NewInstr0(g.Arena, ids, ir.OpMovImm, ir.TypeU64, ir.VReg(0, nil))
	index := ir.NewInstr0(g.Arena, ids, ir.OpMovImm, ir.TypeU64, ir.VReg(1, nil))
	otherIndex := ir.NewInstr0(g.Arena, ids, ir.OpMovImm, ir.TypeU64, ir.VReg(2, nil))

	first = ir.NewInstr2(g.Arena, ids, ir.OpBoundsCheck, ir.TypeVoid, ir.Acc(), ir.VReg(0, length), ir.VReg(1, index))
	redundant = ir.NewInstr2(g.Arena, ids, ir.OpBoundsCheck, ir.TypeVoid, ir.Acc(), ir.VReg(0, length), ir.VReg(1, index))
	differentIndex = ir.NewInstr2(g.Arena, ids, ir.OpBoundsCheck, ir.TypeVoid, ir.Acc(), ir.VReg(0, length), ir.VReg(2, otherIndex))

	block := g.MakeBasicBlock([]*ir.Instruction{length, index, otherIndex, first, redundant, differentIndex})
	ir.AddEdge(root, block)
	ir.AddEdge(block, end)
	g.BindRootAndEnd(root, end)

	return first, redundant, differentIndex
}

func TestRedundantBoundsCheckEliminatedButDifferentIndexSurvives(t *testing.T) {
	g := ir.NewGraph(0)
	first, redundant, differentIndex := buildRedundantBoundsCheck(g)

	require.True(t, domtree.Run(g))
	rpo := traversal.Run(g, true)
	require.True(t, checkelim.Run(g, rpo))

	assert.Equal(t, ir.OpNop, redundant.Op)
	assert.Equal(t, ir.OpBoundsCheck, differentIndex.Op)
	_ = first
}
