// Package export persists normalized correlation histograms as a
// compact binary snapshot: a fixed little-endian header carrying the
// grid shape and separation bounds, followed by an optionally
// compressed body holding the five per-bin arrays, integrity-checked
// with a CRC32.
package export

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/quasarlab/skycorr/histogram"
)

const (
	// MagicNumber identifies skycorr snapshot files (ASCII: "SKC0").
	MagicNumber = 0x534B4330
	// Version is the current file format version (v1.0.0).
	Version = 0x00010000
)

// Compression selects the body codec.
type Compression uint8

const (
	// CompressionNone stores the body uncompressed.
	CompressionNone Compression = iota
	// CompressionLZ4 trades ratio for decode speed.
	CompressionLZ4
	// CompressionZstd is the default codec.
	CompressionZstd
)

var (
	ErrInvalidMagic       = errors.New("export: invalid magic number")
	ErrInvalidVersion     = errors.New("export: unsupported version")
	ErrInvalidCompression = errors.New("export: unknown compression codec")
	ErrInvalidDimensions  = errors.New("export: invalid histogram dimensions")
	ErrTruncatedBody      = errors.New("export: body shorter than header declares")
)

// ChecksumMismatchError is returned when checksum verification fails.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("export: checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// fileHeader is the fixed-size header at the start of every snapshot.
// The checksum covers the compressed body bytes.
type fileHeader struct {
	Magic       uint32
	Version     uint32
	Compression uint8
	_           [3]byte
	NumRP       uint32
	NumRT       uint32
	RPMin       float64
	RPMax       float64
	RTMax       float64
	BodyLen     uint64
	Checksum    uint32
	_           [4]byte
}

type options struct {
	compression Compression
}

// Option configures snapshot writing.
type Option func(*options)

// WithCompression selects the body codec. The default is zstd.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// bytesPerBin is the decompressed body size per histogram bin: four
// float64 arrays plus one int64 array.
const bytesPerBin = 5 * 8

// Write serializes res to w.
func Write(w io.Writer, res *histogram.Result, optFns ...Option) error {
	opts := options{compression: CompressionZstd}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if res.NumRP < 1 || res.NumRT < 1 || len(res.Weight) != res.NumRP*res.NumRT {
		return ErrInvalidDimensions
	}

	var raw bytes.Buffer
	raw.Grow(len(res.Weight) * bytesPerBin)
	for _, arr := range [][]float64{res.Weight, res.MeanRP, res.MeanRT, res.MeanZ} {
		if err := binary.Write(&raw, binary.LittleEndian, arr); err != nil {
			return err
		}
	}
	if err := binary.Write(&raw, binary.LittleEndian, res.Count); err != nil {
		return err
	}

	body, err := compress(raw.Bytes(), opts.compression)
	if err != nil {
		return err
	}

	h := fileHeader{
		Magic:       MagicNumber,
		Version:     Version,
		Compression: uint8(opts.compression),
		NumRP:       uint32(res.NumRP),
		NumRT:       uint32(res.NumRT),
		RPMin:       res.RPMin,
		RPMax:       res.RPMax,
		RTMax:       res.RTMax,
		BodyLen:     uint64(len(body)),
		Checksum:    crc32.ChecksumIEEE(body),
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// Read deserializes a snapshot written by Write, verifying the magic,
// version and body checksum before decoding.
func Read(r io.Reader) (*histogram.Result, error) {
	var h fileHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if h.Magic != MagicNumber {
		return nil, ErrInvalidMagic
	}
	if h.Version != Version {
		return nil, ErrInvalidVersion
	}
	if h.NumRP < 1 || h.NumRT < 1 {
		return nil, ErrInvalidDimensions
	}

	body := make([]byte, h.BodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncatedBody
		}
		return nil, err
	}
	if sum := crc32.ChecksumIEEE(body); sum != h.Checksum {
		return nil, &ChecksumMismatchError{Expected: h.Checksum, Actual: sum}
	}

	raw, err := decompress(body, Compression(h.Compression))
	if err != nil {
		return nil, err
	}
	n := int(h.NumRP) * int(h.NumRT)
	if len(raw) != n*bytesPerBin {
		return nil, ErrTruncatedBody
	}

	res := &histogram.Result{
		NumRP:  int(h.NumRP),
		NumRT:  int(h.NumRT),
		RPMin:  h.RPMin,
		RPMax:  h.RPMax,
		RTMax:  h.RTMax,
		Weight: make([]float64, n),
		MeanRP: make([]float64, n),
		MeanRT: make([]float64, n),
		MeanZ:  make([]float64, n),
		Count:  make([]int64, n),
	}
	br := bytes.NewReader(raw)
	for _, arr := range [][]float64{res.Weight, res.MeanRP, res.MeanRT, res.MeanZ} {
		if err := binary.Read(br, binary.LittleEndian, arr); err != nil {
			return nil, err
		}
	}
	if err := binary.Read(br, binary.LittleEndian, res.Count); err != nil {
		return nil, err
	}
	return res, nil
}

func compress(raw []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return raw, nil
	case CompressionLZ4:
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(raw); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		out := enc.EncodeAll(raw, nil)
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, ErrInvalidCompression
	}
}

func decompress(body []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return body, nil
	case CompressionLZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(body)))
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(body, nil)
	default:
		return nil, ErrInvalidCompression
	}
}
