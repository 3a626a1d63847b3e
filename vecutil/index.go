package vecutil

// Index is a row-major multi-index over a fixed-dimension grid with
// ravel (multi-index -> flat) and unravel (flat -> multi-index) support.
// Elements of a multi-index are signed so that neighbor offsets (cell
// adjacency in the cell list) can underflow safely before wrapping.
type Index struct {
	dims    []int32
	strides []int32
	size    int
}

// NewIndex builds an Index over the given per-axis extents.
func NewIndex(dims []int32) Index {
	d := make([]int32, len(dims))
	copy(d, dims)

	strides := make([]int32, len(d))
	n := int32(1)
	for _, x := range d {
		n *= x
	}
	size := int(n)

	if len(d) > 0 {
		strides[0] = n / d[0]
		for i := 0; i < len(d)-1; i++ {
			strides[i+1] = strides[i] / d[i+1]
		}
	}

	return Index{dims: d, strides: strides, size: size}
}

// Dims returns the per-axis extents.
func (ix Index) Dims() []int32 { return ix.dims }

// Len returns the number of axes.
func (ix Index) Len() int { return len(ix.dims) }

// Size returns the total number of cells, product of all extents.
func (ix Index) Size() int { return ix.size }

// DimAt returns the extent along axis d.
func (ix Index) DimAt(d int) int32 { return ix.dims[d] }

// Ravel maps a multi-index to a flat index.
func (ix Index) Ravel(multi []int32) int {
	flat := int32(0)
	for i, x := range multi {
		flat += ix.strides[i] * x
	}
	return int(flat)
}

// Unravel maps a flat index back to a multi-index, written into dst (must
// have length ix.Len()).
func (ix Index) Unravel(flat int, dst []int32) {
	rem := int32(flat)
	n := len(ix.dims)
	for d := 0; d < n-1; d++ {
		x := rem / ix.strides[d]
		dst[d] = x
		rem -= x * ix.strides[d]
	}
	dst[n-1] = rem
}
