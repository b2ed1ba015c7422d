// Package collection provides the ordered integer collection that monty
// programs operate on. The same sequence behaves as a stack or a queue
// depending on its mode; the mode only decides where Push inserts.
//
// Cells live in an arena and are linked by handle rather than by pointer.
// No handle leaves the package, so a removed cell can never be reached
// again, and Reset releases every cell in one step.
package collection

import (
	"errors"
	"fmt"
	"iter"
)

// Mode selects where Push inserts new elements.
type Mode uint8

const (
	// Stack inserts at the front (LIFO).
	Stack Mode = iota
	// Queue inserts at the back (FIFO).
	Queue
)

// String returns the mnemonic used in programs and configuration.
func (m Mode) String() string {
	switch m {
	case Stack:
		return "stack"
	case Queue:
		return "queue"
	default:
		return fmt.Sprintf("Mode(%d)", m)
	}
}

// ParseMode converts "stack" or "queue" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "stack", "":
		return Stack, nil
	case "queue":
		return Queue, nil
	default:
		return Stack, fmt.Errorf("collection: unknown mode %q", s)
	}
}

var (
	// ErrEmpty is returned when an operation needs at least one element.
	ErrEmpty = errors.New("collection is empty")
	// ErrTooShort is returned when an operation needs at least two elements.
	ErrTooShort = errors.New("collection too short")
)

// nilHandle marks the absence of a neighbour.
const nilHandle int32 = -1

type cell struct {
	value int32
	prev  int32
	next  int32
}

// Collection is a doubly linked sequence of int32 values.
// The zero value is not ready for use; call New.
type Collection struct {
	cells []cell
	free  []int32
	head  int32
	tail  int32
	size  int
	mode  Mode
}

// New creates an empty collection in Stack mode.
func New() *Collection {
	return &Collection{head: nilHandle, tail: nilHandle}
}

// Len returns the number of elements.
func (c *Collection) Len() int {
	return c.size
}

// Mode returns the current insertion mode.
func (c *Collection) Mode() Mode {
	return c.mode
}

// SetMode switches future insertion behaviour. Existing elements keep
// their order.
func (c *Collection) SetMode(m Mode) {
	c.mode = m
}

// alloc takes a slot from the free list or grows the arena.
func (c *Collection) alloc(value int32) int32 {
	if n := len(c.free); n > 0 {
		h := c.free[n-1]
		c.free = c.free[:n-1]
		c.cells[h] = cell{value: value, prev: nilHandle, next: nilHandle}
		return h
	}
	c.cells = append(c.cells, cell{value: value, prev: nilHandle, next: nilHandle})
	return int32(len(c.cells) - 1)
}

func (c *Collection) release(h int32) {
	c.cells[h] = cell{prev: nilHandle, next: nilHandle}
	c.free = append(c.free, h)
}

// Push inserts value at the front in Stack mode and at the back in Queue
// mode.
func (c *Collection) Push(value int32) {
	if c.mode == Queue {
		c.PushBack(value)
		return
	}
	c.PushFront(value)
}

// PushFront inserts value before the current front.
func (c *Collection) PushFront(value int32) {
	h := c.alloc(value)
	if c.head == nilHandle {
		c.head, c.tail = h, h
	} else {
		c.cells[h].next = c.head
		c.cells[c.head].prev = h
		c.head = h
	}
	c.size++
}

// PushBack inserts value after the current back.
func (c *Collection) PushBack(value int32) {
	h := c.alloc(value)
	if c.tail == nilHandle {
		c.head, c.tail = h, h
	} else {
		c.cells[h].prev = c.tail
		c.cells[c.tail].next = h
		c.tail = h
	}
	c.size++
}

// PopFront removes the front element and returns its value.
func (c *Collection) PopFront() (int32, error) {
	if c.head == nilHandle {
		return 0, ErrEmpty
	}
	h := c.head
	value := c.cells[h].value
	c.head = c.cells[h].next
	if c.head == nilHandle {
		c.tail = nilHandle
	} else {
		c.cells[c.head].prev = nilHandle
	}
	c.release(h)
	c.size--
	return value, nil
}

// popBack removes the back element. Callers guarantee a non-empty
// collection.
func (c *Collection) popBack() int32 {
	h := c.tail
	value := c.cells[h].value
	c.tail = c.cells[h].prev
	if c.tail == nilHandle {
		c.head = nilHandle
	} else {
		c.cells[c.tail].next = nilHandle
	}
	c.release(h)
	c.size--
	return value
}

// Front returns the front value without removing it.
func (c *Collection) Front() (int32, error) {
	if c.head == nilHandle {
		return 0, ErrEmpty
	}
	return c.cells[c.head].value, nil
}

// Second returns the value just behind the front.
func (c *Collection) Second() (int32, error) {
	if c.size < 2 {
		return 0, ErrTooShort
	}
	return c.cells[c.cells[c.head].next].value, nil
}

// SetFront overwrites the front value in place.
func (c *Collection) SetFront(value int32) error {
	if c.head == nilHandle {
		return ErrEmpty
	}
	c.cells[c.head].value = value
	return nil
}

// SwapFront exchanges the values of the front two elements. Cells stay
// where they are; only values move.
func (c *Collection) SwapFront() error {
	if c.size < 2 {
		return ErrTooShort
	}
	first := &c.cells[c.head]
	second := &c.cells[first.next]
	first.value, second.value = second.value, first.value
	return nil
}

// RotateLeft moves the front element to the back. No-op for fewer than
// two elements.
func (c *Collection) RotateLeft() {
	if c.size < 2 {
		return
	}
	v, _ := c.PopFront()
	c.PushBack(v)
}

// RotateRight moves the back element to the front. No-op for fewer than
// two elements.
func (c *Collection) RotateRight() {
	if c.size < 2 {
		return
	}
	c.PushFront(c.popBack())
}

// All yields values front to back. Each call starts a fresh traversal.
// The collection must not be mutated while iterating.
func (c *Collection) All() iter.Seq[int32] {
	return func(yield func(int32) bool) {
		for h := c.head; h != nilHandle; h = c.cells[h].next {
			if !yield(c.cells[h].value) {
				return
			}
		}
	}
}

// Values returns a snapshot of the collection front to back.
func (c *Collection) Values() []int32 {
	out := make([]int32, 0, c.size)
	for v := range c.All() {
		out = append(out, v)
	}
	return out
}

// Reset releases every cell. The mode is kept.
func (c *Collection) Reset() {
	c.cells = nil
	c.free = nil
	c.head, c.tail = nilHandle, nilHandle
	c.size = 0
}
