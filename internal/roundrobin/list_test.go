// SPDX-License-Identifier: MIT
package roundrobin

import "testing"

func TestEmptySizeCursorInvariant(t *testing.T) {
	l := NewList[int]()
	if !l.Empty() || l.Size() != 0 {
		t.Fatal("new list must be empty with size 0")
	}
	l.Emplace(1)
	if l.Empty() || l.Size() != 1 {
		t.Fatal("list must be non-empty with size 1 after one emplace")
	}
	l.Erase(func(v int) bool { return v == 1 })
	if !l.Empty() || l.Size() != 0 {
		t.Fatal("list must return to empty after erasing its only element")
	}
}

func TestEraseAbsentIsNoOp(t *testing.T) {
	l := NewList[int]()
	l.Emplace(1)
	l.Emplace(2)
	before := l.Size()
	got := l.Erase(func(v int) bool { return v == 999 })
	if got != before || l.Size() != before {
		t.Fatalf("erase of absent value changed size: got %d, want %d", got, before)
	}
	if l.Current() != 1 {
		t.Fatalf("cursor moved on no-op erase: got %v, want 1", l.Current())
	}
}

func TestEmplaceEraseReturnsToEmpty(t *testing.T) {
	l := NewList[int]()
	l.Emplace(42)
	l.Erase(func(v int) bool { return v == 42 })
	if !l.Empty() {
		t.Fatal("emplace then erase of the same value must empty the list")
	}
}

func TestAdvanceWrapsAfterThreeInserts(t *testing.T) {
	l := NewList[string]()
	l.Emplace("a")
	l.Emplace("b")
	l.Emplace("c")
	start := l.Current()
	l.Advance()
	l.Advance()
	l.Advance()
	if l.Current() != start {
		t.Fatalf("after 3 advances on a 3-element list, cursor = %v, want %v", l.Current(), start)
	}
}

func TestEraseCursorAdvancesToSuccessor(t *testing.T) {
	l := NewList[int]()
	l.Emplace(1)
	l.Emplace(2)
	l.Emplace(3)
	l.Advance() // cursor -> 2
	l.Erase(func(v int) bool { return v == 2 })
	if l.Current() != 3 {
		t.Fatalf("erasing the cursor node should advance to successor: got %v, want 3", l.Current())
	}
}

func TestTrueCircularity(t *testing.T) {
	l := NewList[int]()
	l.Emplace(1)
	l.Emplace(2)
	l.Emplace(3)
	head := l.Current()
	l.Prev()
	tail := l.Current()
	l.Advance()
	if l.Current() != head {
		t.Fatal("advancing from tail must wrap to head")
	}
	l.Prev()
	if l.Current() != tail {
		t.Fatal("cursor must return to tail")
	}
}
