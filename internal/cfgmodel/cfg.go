// Package cfgmodel implements the CFG Model Surface (§4.3): the narrow set
// of operations the core uses to drive a control-flow graph, plus a minimal
// PseudoC parser so the pipeline is runnable end-to-end. Nothing in the core
// inspects instruction structure beyond this surface.
package cfgmodel

import "github.com/insanitus/scratchablock/internal/util"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// StepKind identifies one of the four script step kinds a Script may
// contain (§3).
type StepKind string

const (
	WholeCFGPass   StepKind = "whole-cfg-pass"
	PerBlockPass   StepKind = "per-block-pass"
	PerInstPass    StepKind = "per-inst-pass"
	ExternalScript StepKind = "external-script"
)

// Step is one (kind, name) entry of a Script.
type Step struct {
	Kind StepKind
	Name string
}

// Inst is one instruction inside a BasicBlock. The core never inspects Text;
// only passes and printers interpret it.
type Inst struct {
	Addr int64
	Text string
	Dead bool // set by a dead-code pass; elided by printers when requested.
}

// BasicBlock is a maximal straight-line instruction sequence with a single
// entry and single exit, identified by Label within its CFG.
type BasicBlock struct {
	Label string
	Insts []*Inst
}

// Edge is a directed control-flow edge between two blocks, named by label.
type Edge struct {
	From, To string
}

// CFG is the in-memory control-flow graph of a single function. It is
// opaque to the core: §4.3 defines the only operations the core performs on
// it.
type CFG struct {
	EntryFuncAddr int64
	EntryFuncName string

	Blocks []*BasicBlock
	Edges  []Edge

	// ParserScript is the ordered script the parser extracted from the
	// input file, if any (§3).
	ParserScript []Step

	blockIndex map[string]*BasicBlock
	postorder  map[string]int
}

// ---------------------
// ----- Functions -----
// ---------------------

// NewCFG returns an empty CFG for the given entry function.
func NewCFG(addr int64, name string) *CFG {
	return &CFG{
		EntryFuncAddr: addr,
		EntryFuncName: name,
		blockIndex:    map[string]*BasicBlock{},
	}
}

// AddBlock appends a new, empty BasicBlock with the given label and returns
// it. The first block added becomes the entry block for traversal purposes.
func (c *CFG) AddBlock(label string) *BasicBlock {
	b := &BasicBlock{Label: label}
	c.Blocks = append(c.Blocks, b)
	c.blockIndex[label] = b
	return b
}

// AddEdge records a directed edge from -> to. Both labels must already have
// been added with AddBlock.
func (c *CFG) AddEdge(from, to string) {
	c.Edges = append(c.Edges, Edge{From: from, To: to})
}

// Block looks up a block by label.
func (c *CFG) Block(label string) (*BasicBlock, bool) {
	b, ok := c.blockIndex[label]
	return b, ok
}

// ForeachBlock drives a per-block pass: f is called once per basic block, in
// the order blocks were added to the CFG.
func ForeachBlock(c *CFG, f func(*BasicBlock)) {
	for _, b := range c.Blocks {
		f(b)
	}
}

// ForeachInst drives a per-inst pass: f is called once per instruction,
// block order then in-block order.
func ForeachInst(c *CFG, f func(*Inst)) {
	for _, b := range c.Blocks {
		for _, i := range b.Insts {
			f(i)
		}
	}
}

// successors returns the labels of blocks reachable from label by one edge.
func (c *CFG) successors(label string) []string {
	var out []string
	for _, e := range c.Edges {
		if e.From == label {
			out = append(out, e.To)
		}
	}
	return out
}

// dfsFrame is one entry of the explicit NumberPostorder work stack: the block
// being visited and how many of its successors have already been pushed.
type dfsFrame struct {
	label    string
	nextSucc int
}

// NumberPostorder computes a postorder DFS numbering of the CFG's blocks,
// starting from the entry block (the first block added). It is a
// prerequisite for C-style output (§4.3, §4.5). The numbering is retrievable
// with PostorderNumber.
//
// The walk uses an explicit util.Stack rather than recursion: a recursive
// visit would put one Go stack frame per CFG depth, which is exactly the kind
// of unbounded-recursion-on-attacker-shaped-input worry this core's inputs
// (a parsed .lst file) can trigger on a long linear chain of blocks.
func (c *CFG) NumberPostorder() {
	c.postorder = map[string]int{}
	if len(c.Blocks) == 0 {
		return
	}
	visited := map[string]bool{}
	n := 0

	var work util.Stack[*dfsFrame]
	visitFrom := func(start string) {
		if visited[start] {
			return
		}
		visited[start] = true
		work.Push(&dfsFrame{label: start})
		for work.Size() > 0 {
			top, _ := work.Peek()
			succs := c.successors(top.label)
			if top.nextSucc >= len(succs) {
				c.postorder[top.label] = n
				n++
				work.Pop()
				continue
			}
			succ := succs[top.nextSucc]
			top.nextSucc++
			if !visited[succ] {
				visited[succ] = true
				work.Push(&dfsFrame{label: succ})
			}
		}
	}

	visitFrom(c.Blocks[0].Label)

	// Any block unreachable from the entry (dangling fragments in malformed
	// input) still gets a number, so printers never see a block with none.
	for _, b := range c.Blocks {
		visitFrom(b.Label)
	}
}

// PostorderNumber returns the postorder DFS number assigned to label by the
// most recent call to NumberPostorder, and whether NumberPostorder has been
// called at all.
func (c *CFG) PostorderNumber(label string) (int, bool) {
	if c.postorder == nil {
		return 0, false
	}
	n, ok := c.postorder[label]
	return n, ok
}
