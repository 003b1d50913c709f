// Package ir implements the core data model of a method-level optimizing
// compiler middle-end: an arena-owned control-flow graph of basic blocks
// carrying an SSA-form instruction stream.
//
// A Graph owns every node reachable from it through its Arena. Blocks and
// instructions never outlive the graph and are never individually freed.
// The structural invariants every well-formed graph satisfies outside of an
// in-progress transform:
//
//  1. Exactly one root block and one end block per graph.
//  2. Edges are bidirectional: B is in A.Succs iff A is in B.Preds.
//  3. Every instruction's Block field matches the block that lists it.
//  4. For every input operand of u naming def d, u appears in d.Users.
//  5. Every PHI has one input per predecessor of its block, in predecessor order.
//  6. Every target-variant operand's target instruction has IsTarget set.
//  7. The root block holds only CONSTANT and PARAMETER instructions.
//  8. Block IDs are unique within a graph; 0 is root, 1 is end.
//  9. Any block/edge mutation invalidates RPO, the dominator tree and loop
//     analysis until the corresponding pass re-runs.
package ir
