package ir

// Loop is a natural (or irreducible) loop discovered by the loop analyzer.
// It lives alongside Graph/BasicBlock in this package, even though the
// analyzer that populates it is a separate pass (internal/looptree),
// because BasicBlock.Loop needs to name the type without creating an
// import cycle between the data model and the pass that computes it.
type Loop struct {
	ID            int
	Header        *BasicBlock
	Preheader     *BasicBlock
	BackEdgeSrcs  []*BasicBlock
	Members       map[*BasicBlock]bool
	Outer         *Loop
	Inner         []*Loop
	IsRoot        bool
	IsIrreducible bool
}

// NewLoop creates an empty loop headed at header.
func NewLoop(id int, header *BasicBlock) *Loop {
	return &Loop{ID: id, Header: header, Members: make(map[*BasicBlock]bool)}
}

// AddMember adds b to the loop's member set.
func (l *Loop) AddMember(b *BasicBlock) {
	l.Members[b] = true
}

// AddBackEdgeSrc records pred as a source of a back edge into this loop's
// header, deduplicating repeated discovery of the same edge.
func (l *Loop) AddBackEdgeSrc(pred *BasicBlock) {
	for _, p := range l.BackEdgeSrcs {
		if p == pred {
			return
		}
	}
	l.BackEdgeSrcs = append(l.BackEdgeSrcs, pred)
}

// AddInner adds inner as a nested loop of this one, and sets inner's Outer
// pointer, unless it is already attached.
func (l *Loop) AddInner(inner *Loop) {
	if inner.Outer == l {
		return
	}
	inner.Outer = l
	l.Inner = append(l.Inner, inner)
}

// MemberBlocks returns the loop's member blocks; order is not significant.
func (l *Loop) MemberBlocks() []*BasicBlock {
	out := make([]*BasicBlock, 0, len(l.Members))
	for b := range l.Members {
		out = append(out, b)
	}
	return out
}
