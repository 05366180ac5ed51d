// SPDX-License-Identifier: MIT
// Package roundrobin implements the scheduling table that rotates the RX
// worker across a set of monitored frequencies: a circular doubly-linked
// list of per-frequency configs with a persistent cursor.
package roundrobin

// node is one element of a circular doubly-linked list.
type node[T any] struct {
	value T
	next  *node[T]
	prev  *node[T]
}

// List is a circular doubly-linked list with a persistent cursor, used to
// round-robin across a working set of items without reshuffling a slice
// index on every insert or delete.
type List[T any] struct {
	size    int
	begin   *node[T]
	end     *node[T]
	current *node[T]
}

// NewList returns an empty List.
func NewList[T any]() *List[T] {
	return &List[T]{}
}

// Size returns the number of elements in the list.
func (l *List[T]) Size() int {
	return l.size
}

// Empty reports whether the list has no elements.
func (l *List[T]) Empty() bool {
	return l.size == 0
}

// Emplace appends value to the list, linking it between the current end
// and begin. The cursor is set to the new node if the list was empty.
func (l *List[T]) Emplace(value T) int {
	n := &node[T]{value: value}
	if l.size == 0 {
		n.next = n
		n.prev = n
		l.begin = n
		l.end = n
		l.current = n
	} else {
		end := l.end
		begin := l.begin
		end.next = n
		n.prev = end
		n.next = begin
		begin.prev = n
		l.end = n
	}
	l.size++
	return l.size
}

// Erase removes the first node for which match returns true, if any. It is
// a no-op if no node matches: size and cursor are left unchanged. If the
// removed node was the cursor, the cursor advances to the following node.
func (l *List[T]) Erase(match func(T) bool) int {
	if l.size == 0 {
		return 0
	}
	n := l.begin
	for {
		if match(n.value) {
			if l.size == 1 {
				l.begin, l.end, l.current = nil, nil, nil
				l.size = 0
				return 0
			}
			n.prev.next = n.next
			n.next.prev = n.prev
			if n == l.begin {
				l.begin = n.next
			}
			if n == l.end {
				l.end = n.prev
			}
			if n == l.current {
				l.current = n.next
			}
			l.size--
			break
		}
		n = n.next
		if n == l.begin {
			break
		}
	}
	return l.size
}

// Reset points the cursor at the first-inserted element still present and
// returns its value. Reset panics if the list is empty.
func (l *List[T]) Reset() T {
	l.current = l.begin
	return l.current.value
}

// Advance moves the cursor to the next element and returns its value.
// Advance panics if the list is empty.
func (l *List[T]) Advance() T {
	l.current = l.current.next
	return l.current.value
}

// Prev moves the cursor to the previous element and returns its value.
// Prev panics if the list is empty.
func (l *List[T]) Prev() T {
	l.current = l.current.prev
	return l.current.value
}

// Current returns the value at the cursor. Current panics if the list is
// empty.
func (l *List[T]) Current() T {
	return l.current.value
}

// MutateCurrent applies fn to the value stored at the cursor in place, so
// callers can update per-node state (an edge tracker, a counter) without
// copying the whole value out and back in. MutateCurrent panics if the
// list is empty.
func (l *List[T]) MutateCurrent(fn func(*T)) {
	fn(&l.current.value)
}
