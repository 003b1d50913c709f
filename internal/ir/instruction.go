package ir

// IDGen mints instruction ids that are unique per generator. The source this module
// is modeled on used a single static counter; per the spec's resolution of
// that point (§9 design notes), each Graph owns its own generator — ids
// only need to be unique within a graph for every invariant that depends
// on them (operand target resolution, set membership during dominance).
type IDGen struct {
	next uint64
}

// NewIDGen returns a generator starting at 0.
func NewIDGen() *IDGen { return &IDGen{} }

// Next returns the next unused id.
func (g *IDGen) Next() uint64 {
	id := g.next
	g.next++
	return id
}

// Shape tags which of the four fixed arities, or the dynamic-arity
// variant, an Instruction was constructed as. Shape never changes after
// construction.
type Shape uint8

const (
	Shape0 Shape = iota
	Shape1
	Shape2
	Shape3
	ShapeDynamic
)

// Instruction is every node of the instruction stream: PHI, CALL and
// NEW_ARRAY use ShapeDynamic and store their inputs in dyn; everything else
// uses one of the fixed shapes and stores inputs in the leading N slots of
// fixed, following the argstorage technique the Go compiler's own SSA
// package uses for Value.Args — a single concrete struct with a small fixed
// array plus an overflow slice, rather than one interface type per arity.
type Instruction struct {
	ID       uint64
	Op       Opcode
	Type     ValueType
	Block    *BasicBlock
	Prev     *Instruction
	Next     *Instruction
	Users    []*Instruction
	Dst      Operand
	IsTarget bool

	shape Shape
	fixed [3]Operand
	dyn   []Operand
}

func newInstrBase(ids *IDGen, op Opcode, typ ValueType, dst Operand, shape Shape) *Instruction {
	return &Instruction{
		ID:    ids.Next(),
		Op:    op,
		Type:  typ,
		Dst:   dst,
		shape: shape,
	}
}

// NewInstr0 allocates a zero-input instruction (e.g. CONSTANT, PARAMETER,
// RET_VOID).
func NewInstr0(arena *Arena, ids *IDGen, op Opcode, typ ValueType, dst Operand) *Instruction {
	in := newInstrBase(ids, op, typ, dst, Shape0)
	arena.instrs = append(arena.instrs, in)
	return in
}

// NewInstr1 allocates a one-input instruction (e.g. CAST, THROW, checks).
func NewInstr1(arena *Arena, ids *IDGen, op Opcode, typ ValueType, dst Operand, in0 Operand) *Instruction {
	in := newInstrBase(ids, op, typ, dst, Shape1)
	in.fixed[0] = in0
	arena.instrs = append(arena.instrs, in)
	in.addUsers()
	return in
}

// NewInstr2 allocates a two-input instruction (e.g. ADD, CMP, BOUNDS_CHECK).
func NewInstr2(arena *Arena, ids *IDGen, op Opcode, typ ValueType, dst Operand, in0, in1 Operand) *Instruction {
	in := newInstrBase(ids, op, typ, dst, Shape2)
	in.fixed[0], in.fixed[1] = in0, in1
	arena.instrs = append(arena.instrs, in)
	in.addUsers()
	return in
}

// NewInstr3 allocates a three-input instruction.
func NewInstr3(arena *Arena, ids *IDGen, op Opcode, typ ValueType, dst Operand, in0, in1, in2 Operand) *Instruction {
	in := newInstrBase(ids, op, typ, dst, Shape3)
	in.fixed[0], in.fixed[1], in.fixed[2] = in0, in1, in2
	arena.instrs = append(arena.instrs, in)
	in.addUsers()
	return in
}

// NewInstrN allocates a dynamic-input instruction (PHI, CALL, NEW_ARRAY).
// inputs is copied so the caller's slice can be reused.
func NewInstrN(arena *Arena, ids *IDGen, op Opcode, typ ValueType, dst Operand, inputs []Operand) *Instruction {
	in := newInstrBase(ids, op, typ, dst, ShapeDynamic)
	in.dyn = append([]Operand(nil), inputs...)
	arena.instrs = append(arena.instrs, in)
	in.addUsers()
	return in
}

// Shape reports the instruction's arity variant.
func (in *Instruction) Shape() Shape { return in.shape }

// NumInputs returns how many input operand slots the instruction has.
func (in *Instruction) NumInputs() int {
	switch in.shape {
	case Shape0:
		return 0
	case Shape1:
		return 1
	case Shape2:
		return 2
	case Shape3:
		return 3
	default:
		return len(in.dyn)
	}
}

// InputAt returns the operand at slot i.
func (in *Instruction) InputAt(i int) Operand {
	if in.shape == ShapeDynamic {
		return in.dyn[i]
	}
	return in.fixed[i]
}

// SetInputAt overwrites the operand at slot i, preserving position.
func (in *Instruction) SetInputAt(i int, op Operand) {
	if in.shape == ShapeDynamic {
		in.dyn[i] = op
		return
	}
	in.fixed[i] = op
}

// AppendInput appends a new input; only valid for dynamic-arity
// instructions (PHI gains one input per predecessor during building and
// inlining's PHI synthesis, §4.9 step 3).
func (in *Instruction) AppendInput(op Operand) {
	if in.shape != ShapeDynamic {
		panic("ir: AppendInput on fixed-arity instruction")
	}
	in.dyn = append(in.dyn, op)
}

// GetInputs returns a snapshot of the instruction's input operands.
func (in *Instruction) GetInputs() []Operand {
	n := in.NumInputs()
	out := make([]Operand, n)
	for i := 0; i < n; i++ {
		out[i] = in.InputAt(i)
	}
	return out
}

// addUsers registers this instruction on every input def's Users list
// (invariant 4). Called once at construction time.
func (in *Instruction) addUsers() {
	n := in.NumInputs()
	for i := 0; i < n; i++ {
		if d := in.InputAt(i).Def; d != nil {
			d.Users = append(d.Users, in)
		}
	}
}

// RemoveUser removes the first occurrence of user from this instruction's
// Users list.
func (in *Instruction) RemoveUser(user *Instruction) {
	for i, u := range in.Users {
		if u == user {
			in.Users = append(in.Users[:i], in.Users[i+1:]...)
			return
		}
	}
}

// TryRemoveUser removes user from the Users list if present, reporting
// whether it was found.
func (in *Instruction) TryRemoveUser(user *Instruction) bool {
	for i, u := range in.Users {
		if u == user {
			in.Users = append(in.Users[:i], in.Users[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveUsers clears the entire Users list.
func (in *Instruction) RemoveUsers() {
	in.Users = nil
}

// RemoveInput removes every operand slot of this instruction that points
// at def d. Fixed-arity slots are nulled in place to preserve position;
// dynamic-arity slots are erased, shifting later inputs down (this is what
// PHI relies on when a predecessor edge disappears).
func (in *Instruction) RemoveInput(d *Instruction) {
	if in.shape == ShapeDynamic {
		kept := in.dyn[:0]
		for _, op := range in.dyn {
			if op.Def == d {
				continue
			}
			kept = append(kept, op)
		}
		in.dyn = kept
		return
	}
	n := in.NumInputs()
	for i := 0; i < n; i++ {
		if in.fixed[i].Def == d {
			in.fixed[i] = Operand{}
		}
	}
}

// ReplaceInputForUsers rewrites, across every current user of this
// instruction, any input operand whose Def is this instruction so that it
// instead names newDef — then migrates the Users list onto newDef and
// clears this instruction's own Users.
func (in *Instruction) ReplaceInputForUsers(newDef *Instruction) {
	for _, u := range in.Users {
		n := u.NumInputs()
		for i := 0; i < n; i++ {
			op := u.InputAt(i)
			if op.Def == in {
				op.Def = newDef
				u.SetInputAt(i, op)
				newDef.Users = append(newDef.Users, u)
			}
		}
	}
	in.Users = nil
}

// ReplaceUserForInputs replaces this instruction with newUser in the Users
// list of every def this instruction reads from — used when an
// instruction is being swapped out for another one that keeps consuming
// the same operands (the inliner's argument wiring does this in reverse:
// see internal/inline).
func (in *Instruction) ReplaceUserForInputs(newUser *Instruction) {
	n := in.NumInputs()
	for i := 0; i < n; i++ {
		if d := in.InputAt(i).Def; d != nil {
			d.RemoveUser(in)
			d.Users = append(d.Users, newUser)
		}
	}
}

// MakeNop converts the instruction to opcode NOP and detaches it from both
// sides of every use/def edge it participated in, while preserving block
// linkage (Prev/Next/Block) so iterators and surviving *Instruction
// pointers stay valid.
func (in *Instruction) MakeNop() {
	n := in.NumInputs()
	for i := 0; i < n; i++ {
		if d := in.InputAt(i).Def; d != nil {
			d.RemoveUser(in)
		}
	}
	for _, u := range append([]*Instruction(nil), in.Users...) {
		u.RemoveInput(in)
	}
	in.Users = nil
	in.fixed = [3]Operand{}
	in.dyn = nil
	in.Dst = Acc()
	in.Op = OpNop
}

// IsNextTo reports whether other and this instruction share a block and
// other appears at or before this instruction in the block's linked list.
func (in *Instruction) IsNextTo(other *Instruction) bool {
	if in.Block == nil || other.Block != in.Block {
		return false
	}
	for cur := other; cur != nil; cur = cur.Next {
		if cur == in {
			return true
		}
	}
	return false
}

// IsDominatedBy reports whether this instruction is dominated by other:
// trivially true when they are the same instruction, true within a block
// when other is at or before this instruction, and otherwise delegates to
// block-level dominance.
func (in *Instruction) IsDominatedBy(other *Instruction) bool {
	if in == other {
		return true
	}
	if in.Block == other.Block {
		return in.IsNextTo(other)
	}
	return in.Block.IsDominatedBy(other.Block)
}
