package meshwire

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const (
	// Start1 and Start2 open every frame
	Start1 = 0x94
	Start2 = 0xc3

	// HeaderLen is the size of the frame header
	HeaderLen = 4

	// MaxPayload is the largest protobuf payload a frame may carry
	MaxPayload = 512
)

// ErrFrameTooLarge is returned when encoding a payload over MaxPayload bytes
var ErrFrameTooLarge = errors.New("frame payload too large")

// WakeSequence is written before the first frame to wake a sleeping radio and
// resynchronise its frame parser.
var WakeSequence = bytes.Repeat([]byte{Start2}, 32)

// AppendFrame appends the framed payload to dst.
func AppendFrame(dst, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return dst, ErrFrameTooLarge
	}
	dst = append(dst, Start1, Start2, 0, 0)
	binary.BigEndian.PutUint16(dst[len(dst)-2:], uint16(len(payload)))
	return append(dst, payload...), nil
}

// FrameReader splits a byte stream into frame payloads. Bytes outside frames are
// the radio's debug console; complete console lines are passed to OnConsole.
type FrameReader struct {
	r *bufio.Reader

	// OnConsole, when set, receives each console line without its line ending
	OnConsole func(line string)

	console []byte
}

// NewFrameReader creates a FrameReader over r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReader(r)}
}

// Next returns the next frame payload. Frames announcing more than MaxPayload
// bytes are treated as line noise and skipped.
func (f *FrameReader) Next() ([]byte, error) {
	for {
		b, err := f.r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b != Start1 {
			f.consoleByte(b)
			continue
		}

		// A Start1 may be console noise; only Start1 Start2 opens a frame
		next, err := f.r.Peek(1)
		if err != nil {
			return nil, err
		}
		if next[0] != Start2 {
			f.consoleByte(b)
			continue
		}
		_, _ = f.r.ReadByte()

		var hdr [2]byte
		if _, err := io.ReadFull(f.r, hdr[:]); err != nil {
			return nil, err
		}
		size := int(binary.BigEndian.Uint16(hdr[:]))
		if size > MaxPayload {
			continue
		}

		payload := make([]byte, size)
		if _, err := io.ReadFull(f.r, payload); err != nil {
			return nil, err
		}
		return payload, nil
	}
}

func (f *FrameReader) consoleByte(b byte) {
	switch b {
	case '\n':
		if f.OnConsole != nil && len(f.console) > 0 {
			f.OnConsole(string(bytes.TrimRight(f.console, "\r")))
		}
		f.console = f.console[:0]
	default:
		if len(f.console) < 1024 {
			f.console = append(f.console, b)
		}
	}
}
