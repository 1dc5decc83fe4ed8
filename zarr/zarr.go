// Package zarr reads and writes coordinate variables held in zarr v2 array
// stores, and turns them into axes for coordinate-based subsetting.
package zarr

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	axis "github.com/qri-io/axis-go"
)

// Version is the zarr storage format version this package reads and writes
const Version = 2

// Array is a numeric zarr array chunked along its first dimension. Rows are
// the slices of the array along that dimension; a one-dimensional array has
// rows of one value.
type Array struct {
	path  Path
	store Store
	meta  *ArrayMeta
	attrs Attributes
}

// Open reads the metadata of the array at path. Missing attributes are
// treated as empty.
func Open(store Store, path string) (*Array, error) {
	p, err := NewPath(path)
	if err != nil {
		return nil, err
	}

	meta := &ArrayMeta{}
	if err := readJSON(store, p.Join(string(MTArray)).String(), meta); err != nil {
		return nil, fmt.Errorf("opening array %q: %w", path, err)
	}
	attrs := Attributes{}
	if err := readJSON(store, p.Join(string(MTAttributes)).String(), &attrs); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("reading attributes of %q: %w", path, err)
	}
	return newArray(store, p, meta, attrs)
}

// OpenConsolidated opens the array at path using the hierarchy's
// consolidated .zmetadata document instead of per-array metadata keys
func OpenConsolidated(store Store, path string) (*Array, error) {
	p, err := NewPath(path)
	if err != nil {
		return nil, err
	}

	cm := &ConsolidatedMetadata{}
	if err := readJSON(store, string(MTMetadata), cm); err != nil {
		return nil, fmt.Errorf("reading consolidated metadata: %w", err)
	}
	meta, ok := cm.Array(p)
	if !ok {
		return nil, fmt.Errorf("%w: no consolidated metadata for %q", ErrNotFound, path)
	}
	return newArray(store, p, meta, cm.Attrs(p))
}

// Create writes metadata for a new array at path. Chunks are written with
// Write.
func Create(store Store, path string, meta *ArrayMeta, attrs Attributes) (*Array, error) {
	p, err := NewPath(path)
	if err != nil {
		return nil, err
	}
	if meta.ZarrFormat == 0 {
		meta.ZarrFormat = Version
	}
	if attrs == nil {
		attrs = Attributes{}
	}
	a, err := newArray(store, p, meta, attrs)
	if err != nil {
		return nil, err
	}
	if err := writeJSON(store, p.Join(string(MTArray)).String(), meta); err != nil {
		return nil, err
	}
	if err := writeJSON(store, p.Join(string(MTAttributes)).String(), attrs); err != nil {
		return nil, err
	}
	return a, nil
}

// Consolidate gathers the metadata of the arrays at paths into a root
// .zmetadata document. Without paths every array in the store is included.
func Consolidate(store Store, paths ...string) error {
	if len(paths) == 0 {
		keys, err := store.List("")
		if err != nil {
			return fmt.Errorf("listing arrays: %w", err)
		}
		for _, key := range keys {
			if mt, ok := KeyMetaType(key); ok && mt == MTArray {
				paths = append(paths, strings.TrimSuffix(key, string(MTArray)))
			}
		}
	}

	md := map[string]interface{}{
		string(MTGroup): Group{ZarrFormat: Version},
	}
	for _, path := range paths {
		a, err := Open(store, path)
		if err != nil {
			return err
		}
		md[a.path.Join(string(MTArray)).String()] = a.meta
		md[a.path.Join(string(MTAttributes)).String()] = a.attrs
	}
	return writeJSON(store, string(MTMetadata), map[string]interface{}{
		"zarr_consolidated_format": 1,
		"metadata":                 md,
	})
}

func newArray(store Store, p Path, meta *ArrayMeta, attrs Attributes) (*Array, error) {
	if err := meta.Validate(); err != nil {
		return nil, fmt.Errorf("array %q: %w", p, err)
	}
	return &Array{path: p, store: store, meta: meta, attrs: attrs}, nil
}

func (a *Array) Info() string {
	return fmt.Sprintf("<zarr.Array %q shape=%v chunks=%v dtype=%s>", a.Path(), a.meta.Shape, a.meta.Chunks, a.meta.Dtype)
}

func (a *Array) Path() string { return a.path.String() }

func (a *Array) Meta() ArrayMeta { return *a.meta }

func (a *Array) Attrs() Attributes { return a.attrs }

// Len is the number of rows
func (a *Array) Len() int { return a.meta.Shape[0] }

func (a *Array) rowWidth() int {
	w := 1
	for _, d := range a.meta.Shape[1:] {
		w *= d
	}
	return w
}

// ReadRows reads rows [start, stop) as a flat row-major slice
func (a *Array) ReadRows(start, stop int) ([]float64, error) {
	if start < 0 || stop > a.Len() || start > stop {
		return nil, fmt.Errorf("%w: rows [%d, %d) of array %q with %d rows", axis.ErrIndexOutOfRange, start, stop, a.Path(), a.Len())
	}
	w := a.rowWidth()
	out := make([]float64, (stop-start)*w)
	for _, pr := range projectRows(start, stop, a.meta.Chunks[0]) {
		chunk, err := a.readChunk(pr.Chunk)
		if err != nil {
			return nil, err
		}
		copy(out[pr.OutSel[0]*w:pr.OutSel[1]*w], chunk[pr.ChunkSel[0]*w:pr.ChunkSel[1]*w])
	}
	return out, nil
}

func (a *Array) ReadAll() ([]float64, error) {
	return a.ReadRows(0, a.Len())
}

// ReadWrapped reads the rows start:stop:step, where indices past either end
// continue from the other end as they do on a circular axis. Each contiguous
// run is fetched once and the runs are concatenated in request order.
// Requests spanning more than maxCycles runs fail with
// axis.ErrExcessiveWrapCycles before any chunk is read; maxCycles <= 0 uses
// the default axis configuration's limit.
func (a *Array) ReadWrapped(start, stop, step, maxCycles int) ([]float64, error) {
	if maxCycles <= 0 {
		maxCycles = axis.DefaultConfig().MaxWrapCycles
	}
	pieces, err := axis.SplitRange(start, stop, step, a.Len(), maxCycles)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", a.Path(), err)
	}
	w := a.rowWidth()
	var out []float64
	for _, p := range pieces {
		last := p.Start + (p.Len()-1)*p.Step
		lo, hi := p.Start, last+1
		if p.Step < 0 {
			lo, hi = last, p.Start+1
		}
		rows, err := a.ReadRows(lo, hi)
		if err != nil {
			return nil, err
		}
		for _, i := range p.Indices() {
			out = append(out, rows[(i-lo)*w:(i-lo+1)*w]...)
		}
	}
	return out, nil
}

// Write stores rows as the full contents of the array. The final chunk is
// padded with the fill value.
func (a *Array) Write(rows []float64) error {
	w := a.rowWidth()
	if len(rows) != a.Len()*w {
		return fmt.Errorf("writing %d values to array %q of shape %v", len(rows), a.Path(), a.meta.Shape)
	}
	chunkRows := a.meta.Chunks[0]
	fill := a.meta.fill()
	for _, pr := range projectRows(0, a.Len(), chunkRows) {
		chunk := make([]float64, chunkRows*w)
		for i := range chunk {
			chunk[i] = fill
		}
		copy(chunk[pr.ChunkSel[0]*w:pr.ChunkSel[1]*w], rows[pr.OutSel[0]*w:pr.OutSel[1]*w])
		if err := a.writeChunk(pr.Chunk, chunk); err != nil {
			return err
		}
	}
	return nil
}

// readChunk decodes one chunk. Chunks that were never written read as the
// fill value.
func (a *Array) readChunk(ch int) ([]float64, error) {
	count := a.meta.Chunks[0] * a.rowWidth()
	f, err := a.store.Get(a.chunkKey(ch))
	if errors.Is(err, ErrNotFound) {
		fill := a.meta.fill()
		out := make([]float64, count)
		for i := range out {
			out[i] = fill
		}
		return out, nil
	} else if err != nil {
		return nil, err
	}

	r, err := a.meta.Compressor.Decompressor(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("chunk %d of %q: %w", ch, a.Path(), err)
	}
	defer r.Close()
	vals, err := a.meta.Dtype.decode(r, count)
	if err != nil {
		return nil, fmt.Errorf("chunk %d of %q: %w", ch, a.Path(), err)
	}
	return vals, nil
}

func (a *Array) writeChunk(ch int, vals []float64) error {
	buf := &bytes.Buffer{}
	cw, err := a.meta.Compressor.Compressor(buf)
	if err != nil {
		return err
	}
	if err := a.meta.Dtype.encode(cw, vals); err != nil {
		cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return err
	}
	return a.store.Put(a.chunkKey(ch), buf)
}

// chunkKey names a chunk of rows. Trailing dimensions are never split, so
// their chunk indices are always zero.
func (a *Array) chunkKey(ch int) string {
	sep := "."
	if a.meta.DimensionSeparator == "/" {
		sep = "/"
	}
	idx := []string{strconv.Itoa(ch)}
	for range a.meta.Shape[1:] {
		idx = append(idx, "0")
	}
	return a.path.Join(strings.Join(idx, sep)).String()
}

func (m *ArrayMeta) fill() float64 {
	switch v := m.FillValue.(type) {
	case float64:
		return v
	case string:
		switch v {
		case FillValueNaN:
			return math.NaN()
		case FillValueInfinity:
			return math.Inf(1)
		case FillValueNegativeInfinity:
			return math.Inf(-1)
		}
	}
	return 0
}

func readJSON(store Store, key string, v interface{}) error {
	f, err := store.Get(key)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

func writeJSON(store Store, key string, v interface{}) error {
	d, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return store.Put(key, bytes.NewReader(d))
}

// Path is a normalized logical path within a store
type Path []string

// NewPath normalizes a posix-style logical path: backslashes become forward
// slashes, leading and trailing slashes are stripped, and runs of slashes
// collapse. "" names the store root.
func NewPath(posix string) (Path, error) {
	posix = strings.ReplaceAll(posix, `\`, "/")
	var p Path
	for _, el := range strings.Split(posix, "/") {
		switch el {
		case "":
			continue
		case ".", "..":
			return nil, fmt.Errorf("invalid path %q: relative elements are not allowed", posix)
		}
		p = append(p, el)
	}
	return p, nil
}

func (p Path) String() string {
	return strings.Join(p, "/")
}

// Name is the last path element
func (p Path) Name() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Sibling replaces the last path element with name
func (p Path) Sibling(name string) Path {
	if len(p) == 0 {
		return Path{name}
	}
	return p[:len(p)-1:len(p)-1].Join(name)
}

// Join returns a new path with elems appended. p is not modified.
func (p Path) Join(elems ...string) Path {
	out := make(Path, 0, len(p)+len(elems))
	out = append(out, p...)
	return append(out, elems...)
}
