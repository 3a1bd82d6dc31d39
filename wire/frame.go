package wire

import (
	"errors"
	"fmt"
)

// FrameReader pulls complete, decoded (decompressed) frame payloads
// off a RingBuffer, implementing the frame read algorithm of spec §4.1.
type FrameReader struct {
	ring                 *RingBuffer
	compressionThreshold int // negative disables compression framing
}

// NewFrameReader wraps ring with no compression negotiated.
func NewFrameReader(ring *RingBuffer) *FrameReader {
	return &FrameReader{ring: ring, compressionThreshold: -1}
}

// SetCompressionThreshold enables (threshold >= 0) or disables
// (negative) the per-frame compression sub-header. It takes effect on
// the next frame read, per spec §4.4's ordering guarantee that the
// side effect applies only once the triggering SetCompression packet
// has been fully consumed.
func (fr *FrameReader) SetCompressionThreshold(threshold int) {
	fr.compressionThreshold = threshold
}

// CompressionThreshold reports the currently negotiated threshold, or
// a negative value if compression is not active.
func (fr *FrameReader) CompressionThreshold() int {
	return fr.compressionThreshold
}

// ReadFrame attempts to read one complete frame. If the ring buffer
// does not yet hold enough bytes it returns ErrPartialFrame having
// restored the read position to where it stood on entry, so the
// caller can retry after more bytes arrive (spec §4.1 step 5).
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	checkpoint := fr.ring.ReadPos()

	length, _, err := fr.ring.ReadVarInt()
	if err != nil {
		return nil, fr.restoreOnPartial(checkpoint, err)
	}
	if length < 0 {
		return nil, fmt.Errorf("wire: negative frame length %d", length)
	}

	var uncompressedLen int32
	if fr.compressionThreshold >= 0 {
		var k int
		uncompressedLen, k, err = fr.ring.ReadVarInt()
		if err != nil {
			return nil, fr.restoreOnPartial(checkpoint, err)
		}
		length -= int32(k)
		if length < 0 {
			return nil, fmt.Errorf("wire: frame length underflows after inner varint")
		}
	}

	payload, err := fr.ring.Take(int(length))
	if err != nil {
		return nil, fr.restoreOnPartial(checkpoint, err)
	}

	if fr.compressionThreshold >= 0 && uncompressedLen > 0 {
		payload, err = DecompressPayload(payload, int(uncompressedLen))
		if err != nil {
			return nil, err
		}
	}

	return payload, nil
}

func (fr *FrameReader) restoreOnPartial(checkpoint int, err error) error {
	if errors.Is(err, ErrPartialFrame) {
		fr.ring.Restore(checkpoint)
	}
	return err
}

// EncodeFrame produces the bytes that belong on the wire for a single
// decoded packet payload (packet id + body, per spec §6), applying
// compression per the negotiated threshold. Frames shorter than the
// threshold are sent with uncompressed_length = 0, uncompressed,
// exactly as spec §6 requires.
func EncodeFrame(payload []byte, compressionThreshold int) ([]byte, error) {
	if compressionThreshold < 0 {
		out := AppendVarInt(make([]byte, 0, len(payload)+MaxVarIntLength), int32(len(payload)))
		return append(out, payload...), nil
	}

	var body []byte
	var uncompressedLen int32
	if len(payload) >= compressionThreshold {
		compressed, err := CompressPayload(payload)
		if err != nil {
			return nil, err
		}
		body = compressed
		uncompressedLen = int32(len(payload))
	} else {
		body = payload
		uncompressedLen = 0
	}

	inner := AppendVarInt(nil, uncompressedLen)
	total := int32(len(inner) + len(body))
	out := AppendVarInt(make([]byte, 0, MaxVarIntLength+len(inner)+len(body)), total)
	out = append(out, inner...)
	out = append(out, body...)
	return out, nil
}
