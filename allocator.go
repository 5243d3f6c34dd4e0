package vks

import (
	"fmt"
	"strings"
)

// Allocation is a range of a larger memory block handed out by an Allocator.
type Allocation struct {
	Offset uint64
	Size   uint64

	// Object optionally refers back to the resource occupying this
	// allocation, so a pool can destroy its contents.
	Object Destroyable
}

func (a *Allocation) String() string {
	return fmt.Sprintf("[%d +%d]", a.Offset, a.Size)
}

// Allocator hands out non overlapping, aligned ranges of a fixed size block.
type Allocator interface {
	// Allocate returns a free range of the given size honoring align, or
	// nil if the block has no room.
	Allocate(size uint64, align uint64) *Allocation
	// Free returns a previously allocated range to the allocator.
	Free(a *Allocation)
	// DestroyContents destroys every object still occupying an allocation.
	DestroyContents()
}

func alignUp(v uint64, align uint64) uint64 {
	if align == 0 {
		return v
	}
	m := v % align
	if m == 0 {
		return v
	}
	return v - m + align
}

// LinearAllocator is a first fit allocator over a block of Size bytes. It
// keeps its allocations sorted by offset and allocates from the first gap
// large enough to hold the request.
type LinearAllocator struct {
	Size   uint64
	allocs []*Allocation
}

func (p *LinearAllocator) Allocate(size uint64, align uint64) *Allocation {
	if size == 0 || size > p.Size {
		return nil
	}

	if len(p.allocs) == 0 {
		na := &Allocation{Offset: 0, Size: size}
		p.allocs = append(p.allocs, na)
		return na
	}

	// Gap before the first allocation.
	if p.allocs[0].Offset >= size {
		na := &Allocation{Offset: 0, Size: size}
		p.allocs = append([]*Allocation{na}, p.allocs...)
		return na
	}

	// Gaps between allocations.
	for i := 0; i+1 < len(p.allocs); i++ {
		c := p.allocs[i]
		n := p.allocs[i+1]

		lo := alignUp(c.Offset+c.Size, align)
		if n.Offset >= lo && n.Offset-lo >= size {
			na := &Allocation{Offset: lo, Size: size}
			p.allocs = append(p.allocs[:i+1], append([]*Allocation{na}, p.allocs[i+1:]...)...)
			return na
		}
	}

	// Tail of the block.
	last := p.allocs[len(p.allocs)-1]
	lo := alignUp(last.Offset+last.Size, align)
	if lo <= p.Size && p.Size-lo >= size {
		na := &Allocation{Offset: lo, Size: size}
		p.allocs = append(p.allocs, na)
		return na
	}

	return nil
}

func (p *LinearAllocator) Free(fa *Allocation) {
	for i, a := range p.allocs {
		if a == fa {
			p.allocs = append(p.allocs[:i], p.allocs[i+1:]...)
			return
		}
	}
}

func (p *LinearAllocator) DestroyContents() {
	// Destroying an object frees its allocation, so iterate over a copy.
	allocs := make([]*Allocation, len(p.allocs))
	copy(allocs, p.allocs)
	for _, a := range allocs {
		if a.Object != nil {
			a.Object.Destroy()
		}
	}
	p.allocs = nil
}

// Allocated returns the total number of bytes currently handed out.
func (p *LinearAllocator) Allocated() uint64 {
	var total uint64
	for _, a := range p.allocs {
		total += a.Size
	}
	return total
}

func (p *LinearAllocator) String() string {
	var b strings.Builder
	for _, a := range p.allocs {
		b.WriteString(a.String())
	}
	return b.String()
}
