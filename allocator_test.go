package vks

import (
	"log"
	"testing"
)

func TestAlignUp(t *testing.T) {
	if alignUp(12, 3) != 12 {
		t.Fail()
	}

	if alignUp(10, 3) != 12 {
		t.Fail()
	}

	if alignUp(10, 0) != 10 {
		t.Fail()
	}
}

func TestLinearAllocator(t *testing.T) {
	a := LinearAllocator{Size: 1024}

	ra := a.Allocate(2048, 1)
	if ra != nil {
		t.Error("allocation larger than the block should fail")
	}

	log.Printf("%v", a.String())

	fa := a.Allocate(512, 1)
	if fa == nil {
		t.Error("failed 2nd allocation")
	}

	ra = a.Allocate(768, 1)
	if ra != nil {
		t.Error("3rd allocation should not fit")
	}

	k := a.Allocate(500, 1)
	if k == nil {
		t.Error("failed 4th allocation")
	}

	ra = a.Allocate(50, 1)
	if ra != nil {
		t.Error("5th allocation should not fit")
	}

	ra = a.Allocate(5, 1)
	if ra == nil {
		t.Error("failed 6th allocation")
	}

	ra = a.Allocate(20, 1)
	if ra != nil {
		t.Error("7th allocation should not fit")
	}

	a.Free(fa)

	ra = a.Allocate(512, 1)
	if ra == nil {
		t.Error("allocation after free should reuse the gap")
	}
	if ra.Offset != 0 {
		t.Errorf("expected reuse at offset 0, got %d", ra.Offset)
	}

	a.Free(k)

	ra = a.Allocate(400, 1)
	if ra == nil {
		t.Error("failed allocation in freed middle gap")
	}
}

func TestLinearAllocatorAlignment(t *testing.T) {
	a := LinearAllocator{Size: 1024}

	first := a.Allocate(10, 1)
	if first == nil {
		t.Fatal("failed first allocation")
	}

	second := a.Allocate(10, 256)
	if second == nil {
		t.Fatal("failed aligned allocation")
	}
	if second.Offset%256 != 0 {
		t.Errorf("allocation not aligned: offset %d", second.Offset)
	}
}

func TestLinearAllocatorAccounting(t *testing.T) {
	a := LinearAllocator{Size: 100}

	x := a.Allocate(30, 1)
	y := a.Allocate(30, 1)
	if a.Allocated() != 60 {
		t.Errorf("expected 60 bytes allocated, got %d", a.Allocated())
	}

	a.Free(x)
	a.Free(y)
	if a.Allocated() != 0 {
		t.Errorf("expected 0 bytes allocated, got %d", a.Allocated())
	}
}

type destroyCounter struct {
	pool  *LinearAllocator
	alloc *Allocation
	count *int
}

func (d *destroyCounter) Destroy() {
	*d.count++
	d.pool.Free(d.alloc)
}

func TestLinearAllocatorDestroyContents(t *testing.T) {
	a := LinearAllocator{Size: 100}

	count := 0
	for i := 0; i < 3; i++ {
		alloc := a.Allocate(10, 1)
		if alloc == nil {
			t.Fatal("allocation failed")
		}
		alloc.Object = &destroyCounter{pool: &a, alloc: alloc, count: &count}
	}

	a.DestroyContents()
	if count != 3 {
		t.Errorf("expected 3 objects destroyed, got %d", count)
	}
	if a.Allocated() != 0 {
		t.Errorf("expected empty allocator, got %d bytes", a.Allocated())
	}
}
