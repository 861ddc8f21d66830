package cfgmodel

import "testing"

func buildDiamond() *CFG {
	c := NewCFG(0x1000, "foo")
	c.AddBlock("entry")
	c.AddBlock("left")
	c.AddBlock("right")
	c.AddBlock("join")
	c.AddEdge("entry", "left")
	c.AddEdge("entry", "right")
	c.AddEdge("left", "join")
	c.AddEdge("right", "join")
	return c
}

func TestForeachBlockOrder(t *testing.T) {
	c := buildDiamond()
	var seen []string
	ForeachBlock(c, func(b *BasicBlock) { seen = append(seen, b.Label) })
	want := []string{"entry", "left", "right", "join"}
	for i, w := range want {
		if seen[i] != w {
			t.Fatalf("ForeachBlock order = %v, want %v", seen, want)
		}
	}
}

func TestForeachInst(t *testing.T) {
	c := NewCFG(0, "f")
	b := c.AddBlock("entry")
	b.Insts = append(b.Insts, &Inst{Addr: 1, Text: "a"}, &Inst{Addr: 2, Text: "b"})
	var n int
	ForeachInst(c, func(i *Inst) { n++ })
	if n != 2 {
		t.Fatalf("expected 2 instructions visited, got %d", n)
	}
}

func TestNumberPostorderJoinBeforeEntry(t *testing.T) {
	c := buildDiamond()
	c.NumberPostorder()

	join, ok := c.PostorderNumber("join")
	if !ok {
		t.Fatal("join block has no postorder number")
	}
	entry, _ := c.PostorderNumber("entry")
	if join >= entry {
		t.Fatalf("expected join (%d) to be numbered before entry (%d) in postorder", join, entry)
	}
}

func TestNumberPostorderCoversUnreachableBlocks(t *testing.T) {
	c := buildDiamond()
	c.AddBlock("dangling")
	c.NumberPostorder()
	if _, ok := c.PostorderNumber("dangling"); !ok {
		t.Fatal("expected unreachable block to still receive a postorder number")
	}
}
