package wire

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/seiftnesse/mcproxy/wire/bufpool"
)

// CompressPayload zlib-compresses payload for the wire.
func CompressPayload(payload []byte) ([]byte, error) {
	var out bytes.Buffer
	zw := zlib.NewWriter(&out)
	if _, err := zw.Write(payload); err != nil {
		return nil, fmt.Errorf("wire: zlib compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("wire: zlib compress: %w", err)
	}
	return out.Bytes(), nil
}

// DecompressPayload inflates a zlib-compressed frame payload to
// exactly uncompressedLen bytes. Decompression reads through a 16 KiB
// scratch chunk pulled from bufpool rather than via a single
// io.ReadAll, but every chunk is appended to one output slice: the
// whole frame is inflated into memory before this returns, and field
// parsing starts only after that.
func DecompressPayload(payload []byte, uncompressedLen int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("wire: zlib open: %w", err)
	}
	defer zr.Close()

	out := make([]byte, 0, uncompressedLen)
	chunk := bufpool.Get(16 * 1024)
	defer bufpool.Put(chunk)

	for len(out) < uncompressedLen {
		n, err := zr.Read(chunk)
		if n > 0 {
			out = append(out, chunk[:n]...)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("wire: zlib inflate: %w", err)
		}
	}

	if len(out) != uncompressedLen {
		return nil, fmt.Errorf("wire: inflated length %d does not match announced %d", len(out), uncompressedLen)
	}
	return out, nil
}
