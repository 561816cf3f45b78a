package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/marmos91/naming-server/pkg/bufpool"
)

// MaxFrameSize bounds the 4-byte length prefix before a read is trusted,
// protecting against memory exhaustion from a corrupt or hostile peer.
const MaxFrameSize = MaxPayloadSize + (1 << 16) // payload + header overhead

// ReadMessage reads one length-prefixed frame from r and decodes it.
// The frame is [length:uint32][body:length bytes], length measured on the
// encoded body produced by Encode.
func ReadMessage(r io.Reader) (*Message, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err // EOF surfaced directly so callers can detect disconnect
	}

	length := binary.BigEndian.Uint32(lenBuf[:])
	if length > MaxFrameSize {
		return nil, fmt.Errorf("wire: frame length %d exceeds maximum %d", length, MaxFrameSize)
	}

	body := bufpool.Get(int(length))
	defer bufpool.Put(body)

	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}

	return Decode(body)
}

// WriteMessage encodes m and writes it to w as a single length-prefixed frame.
func WriteMessage(w io.Writer, m *Message) error {
	body, err := Encode(m)
	if err != nil {
		return err
	}

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))

	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("write frame length: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write frame body: %w", err)
	}
	return nil
}
