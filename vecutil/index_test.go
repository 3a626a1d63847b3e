package vecutil

import "testing"

func TestIndexRavelUnravelRoundTrip(t *testing.T) {
	ix := NewIndex([]int32{4, 3, 2})
	if ix.Size() != 24 {
		t.Fatalf("Size() = %d, want 24", ix.Size())
	}

	dst := make([]int32, 3)
	for flat := 0; flat < ix.Size(); flat++ {
		ix.Unravel(flat, dst)
		got := ix.Ravel(dst)
		if got != flat {
			t.Errorf("Ravel(Unravel(%d)) = %d, want %d (multi=%v)", flat, got, flat, dst)
		}
	}
}

func TestIndexRowMajorOrder(t *testing.T) {
	ix := NewIndex([]int32{2, 3})
	// Row-major: last axis varies fastest.
	if got := ix.Ravel([]int32{0, 0}); got != 0 {
		t.Errorf("Ravel(0,0) = %d, want 0", got)
	}
	if got := ix.Ravel([]int32{0, 1}); got != 1 {
		t.Errorf("Ravel(0,1) = %d, want 1", got)
	}
	if got := ix.Ravel([]int32{1, 0}); got != 3 {
		t.Errorf("Ravel(1,0) = %d, want 3", got)
	}
}
