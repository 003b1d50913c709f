package inline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssaopt/internal/inline"
	"ssaopt/internal/ir"
)

// buildCallee constructs a two-parameter function with two RET exits
// (add on one branch, mul on the other), each reading one parameter and
// one start-block constant: one constant (value 1) duplicates a constant
// already present in the caller's start block, the other (value 99) does
// not.
func buildCallee(t *testing.T) (*ir.Graph, *ir.Instruction, *ir.Instruction) {
	t.Helper()
	g := ir.NewGraph(2)
	ids := g.IDs()

	param0 := ir.NewInstr0(g.Arena, ids, ir.OpParameter, ir.TypeU64, ir.Param(0, nil))
	param1 := ir.NewInstr0(g.Arena, ids, ir.OpParameter, ir.TypeU64, ir.Param(1, nil))
	dupConst := ir.NewInstr0(g.Arena, ids, ir.OpConstant, ir.TypeU64, ir.Imm(1, nil))
	newConst := ir.NewInstr0(g.Arena, ids, ir.OpConstant, ir.TypeU64, ir.Imm(99, nil))
	root := g.MakeBasicBlock([]*ir.Instruction{param0, param1, dupConst, newConst})
	end := g.MakeBasicBlock(nil)
	g.BindRootAndEnd(root, end)

	addInstr := ir.NewInstr2(g.Arena, ids, ir.OpAdd, ir.TypeU64, ir.VReg(10, nil), ir.Param(0, param0), ir.Imm(1, dupConst))
	retA := ir.NewInstr1(g.Arena, ids, ir.OpRet, ir.TypeVoid, ir.Acc(), ir.VReg(10, addInstr))
	retABlock := g.MakeBasicBlock([]*ir.Instruction{addInstr, retA})

	mulInstr := ir.NewInstr2(g.Arena, ids, ir.OpMul, ir.TypeU64, ir.VReg(11, nil), ir.Param(1, param1), ir.Imm(99, newConst))
	retB := ir.NewInstr1(g.Arena, ids, ir.OpRet, ir.TypeVoid, ir.Acc(), ir.VReg(11, mulInstr))
	retBBlock := g.MakeBasicBlock([]*ir.Instruction{mulInstr, retB})

	cmpInstr := ir.NewInstr0(g.Arena, ids, ir.OpCmp, ir.TypeVoid, ir.Acc())
	jlInstr := ir.NewInstr1(g.Arena, ids, ir.OpJL, ir.TypeVoid, ir.Acc(), ir.Target(int64(mulInstr.ID), mulInstr))
	entryBlock := g.MakeBasicBlock([]*ir.Instruction{cmpInstr, jlInstr})

	ir.AddEdge(root, entryBlock)
	ir.AddEdge(entryBlock, retABlock)
	ir.AddEdge(entryBlock, retBBlock)
	ir.AddEdge(retABlock, end)
	ir.AddEdge(retBBlock, end)

	return g, addInstr, newConst
}

func TestInlineWithTwoReturnsAndConstantMerging(t *testing.T) {
	caller := ir.NewGraph(0)
	ids := caller.IDs()

	callerConst := ir.NewInstr0(caller.Arena, ids, ir.OpConstant, ir.TypeU64, ir.Imm(1, nil))
	root := caller.MakeBasicBlock([]*ir.Instruction{callerConst})
	end := caller.MakeBasicBlock(nil)
	caller.BindRootAndEnd(root, end)

	callee, calleeAdd, calleeNewConst := buildCallee(t)

	moviV0 := ir.NewInstr0(caller.Arena, ids, ir.OpMovImm, ir.TypeU64, ir.VReg(0, nil))
	moviV1 := ir.NewInstr0(caller.Arena, ids, ir.OpMovImm, ir.TypeU64, ir.VReg(1, nil))
	call := ir.NewInstrN(caller.Arena, ids, ir.OpCall, ir.TypeU64, ir.VReg(2, nil), []ir.Operand{
		ir.CalleeGraph(callee),
		ir.VReg(0, moviV0),
		ir.VReg(1, moviV1),
	})
	sta := ir.NewInstr1(caller.Arena, ids, ir.OpMov, ir.TypeU64, ir.VReg(3, nil), ir.VReg(2, call))
	ret := ir.NewInstr1(caller.Arena, ids, ir.OpRet, ir.TypeVoid, ir.Acc(), ir.VReg(3, sta))
	b := caller.MakeBasicBlock([]*ir.Instruction{moviV0, moviV1, call, sta, ret})
	ir.AddEdge(root, b)

	ok := inline.New().Run(caller, call)
	require.True(t, ok)

	for _, blk := range caller.AllBlocks() {
		for in := blk.FirstInstr; in != nil; in = in.Next {
			assert.NotEqual(t, ir.OpCall, in.Op)
		}
	}

	bAfter := sta.Block
	require.NotNil(t, bAfter.FirstPhi)
	phi := bAfter.FirstPhi
	assert.Equal(t, 2, phi.NumInputs())
	assert.Equal(t, sta.InputAt(0).Def, phi)

	assert.Equal(t, callerConst, calleeAdd.InputAt(1).Def)
	assert.Equal(t, root, calleeNewConst.Block)
}
