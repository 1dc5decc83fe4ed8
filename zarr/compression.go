package zarr

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/qri-io/dataset/compression"
)

// CompressionMeta is the numcodecs configuration of a chunk compressor. A nil
// *CompressionMeta (JSON null) means chunks are stored raw.
type CompressionMeta struct {
	ID      string `json:"id"`
	Cname   string `json:"cname,omitempty"`
	Clevel  int    `json:"clevel,omitempty"`
	Shuffle int    `json:"shuffle,omitempty"`
	Level   int    `json:"level,omitempty"`
}

const codecZstd = "zstd"

// Decompressor wraps a chunk reader. zstd frames are decoded in process,
// other codecs are handed to dataset/compression.
func (m *CompressionMeta) Decompressor(r io.ReadCloser) (io.ReadCloser, error) {
	if m == nil {
		return r, nil
	}
	if m.ID == codecZstd {
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &zstdReadCloser{d: d, src: r}, nil
	}
	return compression.Decompressor(m.ID, r)
}

// Compressor wraps a chunk writer. Only raw and zstd chunks can be written.
func (m *CompressionMeta) Compressor(w io.Writer) (io.WriteCloser, error) {
	if m == nil {
		return nopWriteCloser{w}, nil
	}
	if m.ID == codecZstd {
		opts := []zstd.EOption{}
		if m.Level != 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(m.Level)))
		}
		return zstd.NewWriter(w, opts...)
	}
	return nil, fmt.Errorf("writing %q compressed chunks is not supported", m.ID)
}

type zstdReadCloser struct {
	d   *zstd.Decoder
	src io.Closer
}

func (z *zstdReadCloser) Read(p []byte) (int, error) { return z.d.Read(p) }

func (z *zstdReadCloser) Close() error {
	z.d.Close()
	return z.src.Close()
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
