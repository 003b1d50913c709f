// Package checkelim removes null/zero/bounds checks made redundant by an
// earlier check on the same input that dominates them, converting the
// redundant check to NOP while preserving pointer identity for anything
// still iterating over it.
package checkelim

import "ssaopt/internal/ir"

// Run walks every block in RPO and eliminates, for each check
// instruction, every other check of the same kind on the same input(s)
// that it dominates. It requires a valid dominator tree and returns
// false, leaving the graph untouched, if one is not available.
func Run(g *ir.Graph, rpo []*ir.BasicBlock) bool {
	if !g.IsDomTreeValid() {
		return false
	}

	for _, b := range rpo {
		for c := b.FirstInstr; c != nil; c = c.Next {
			if !ir.IsCheck(c.Op) {
				continue
			}
			eliminateRedundant(c)
		}
	}
	return true
}

// eliminateRedundant finds every check made redundant by c and converts
// it to NOP. Bounds checks key off their length operand and additionally
// require the index operand to match; single-input checks (null/zero)
// key off their sole operand and require the same opcode.
func eliminateRedundant(c *ir.Instruction) {
	var keyDef *ir.Instruction
	var matches func(u *ir.Instruction) bool

	if ir.IsBoundsCheck(c.Op) {
		length := c.InputAt(0)
		index := c.InputAt(1)
		keyDef = length.Def
		matches = func(u *ir.Instruction) bool {
			return ir.IsBoundsCheck(u.Op) && u.InputAt(0).Equal(length) && u.InputAt(1).Equal(index)
		}
	} else {
		in0 := c.InputAt(0)
		keyDef = in0.Def
		matches = func(u *ir.Instruction) bool {
			return u.Op == c.Op
		}
	}
	if keyDef == nil {
		return
	}

	for _, u := range append([]*ir.Instruction(nil), keyDef.Users...) {
		if u == c || !matches(u) {
			continue
		}
		if !u.IsDominatedBy(c) {
			continue
		}
		u.ReplaceInputForUsers(c)
		keyDef.RemoveUser(u)
		u.MakeNop()
	}
}
