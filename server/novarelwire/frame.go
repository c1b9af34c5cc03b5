package novarelwire

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize bounds a single request or result payload.
const MaxFrameSize = 8 << 20

const headerLen = 4

var (
	ErrEmptyFrame    = errors.New("novarelwire: empty frame")
	ErrFrameTooLarge = errors.New("novarelwire: frame too large")
	ErrBadPayload    = errors.New("novarelwire: bad json payload")
)

// ReadFrame decodes one length-prefixed JSON frame into v. io.EOF is
// returned unwrapped when the peer closed between frames.
func ReadFrame(r io.Reader, v any) error {
	var hdr [headerLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return err
	}

	switch n := binary.BigEndian.Uint32(hdr[:]); {
	case n == 0:
		return ErrEmptyFrame
	case n > MaxFrameSize:
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, MaxFrameSize)
	default:
		body := make([]byte, n)
		if _, err := io.ReadFull(r, body); err != nil {
			return fmt.Errorf("novarelwire: short frame: %w", err)
		}
		if err := json.Unmarshal(body, v); err != nil {
			return fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		return nil
	}
}

// WriteFrame encodes v and writes prefix and payload in one call so
// concurrent writers on separate connections never interleave a frame.
func WriteFrame(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if len(body) > MaxFrameSize {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(body), MaxFrameSize)
	}

	frame := make([]byte, headerLen, headerLen+len(body))
	binary.BigEndian.PutUint32(frame, uint32(len(body)))
	frame = append(frame, body...)

	_, err = w.Write(frame)
	return err
}
