package zarr

// chunkProjection maps a run of rows in one chunk onto an output buffer. It
// can be used to copy rows out of a decoded chunk, or to place rows of a
// value buffer into a chunk being written.
type chunkProjection struct {
	// Index of the chunk along the first dimension
	Chunk int
	// Rows selected from the chunk, [start, stop)
	ChunkSel [2]int
	// Rows written in the output, [start, stop)
	OutSel [2]int
}

// projectRows lists the chunks covering rows [start, stop) of an array
// chunked every chunkRows rows, in row order
func projectRows(start, stop, chunkRows int) []chunkProjection {
	var projs []chunkProjection
	for row := start; row < stop; {
		ch := row / chunkRows
		chunkEnd := (ch + 1) * chunkRows
		if chunkEnd > stop {
			chunkEnd = stop
		}
		projs = append(projs, chunkProjection{
			Chunk:    ch,
			ChunkSel: [2]int{row - ch*chunkRows, chunkEnd - ch*chunkRows},
			OutSel:   [2]int{row - start, chunkEnd - start},
		})
		row = chunkEnd
	}
	return projs
}
