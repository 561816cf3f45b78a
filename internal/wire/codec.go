package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// MaxPayloadSize bounds the data field of a single message. This mirrors the
// fragment-size ceiling the teacher's RPC framing enforces before trusting a
// length prefix from the wire.
const MaxPayloadSize = 8 << 20 // 8MB

// maxStringLength bounds filename/username/folder/tag fields, all of which
// are user-controlled and otherwise unbounded on the wire.
const maxStringLength = 4096

// writeString encodes a length-prefixed UTF-8 string: [length:uint32][bytes].
// Unlike RFC 4506 opaque/string encoding this protocol does not 4-byte-align
// fields; every NS message is read and discarded as a unit, not composed
// into a larger XDR document, so the alignment padding the teacher's
// protocol/xdr helpers add has no purpose here.
func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > maxStringLength {
		return fmt.Errorf("wire: string field exceeds %d bytes", maxStringLength)
	}
	if err := binary.Write(buf, binary.BigEndian, uint32(len(s))); err != nil {
		return fmt.Errorf("write string length: %w", err)
	}
	if _, err := buf.WriteString(s); err != nil {
		return fmt.Errorf("write string data: %w", err)
	}
	return nil
}

func readString(r io.Reader) (string, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return "", fmt.Errorf("read string length: %w", err)
	}
	if length > maxStringLength {
		return "", fmt.Errorf("wire: string field length %d exceeds maximum %d", length, maxStringLength)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", fmt.Errorf("read string data: %w", err)
	}
	return string(data), nil
}

func writeOpaque(buf *bytes.Buffer, data []byte) error {
	if len(data) > MaxPayloadSize {
		return fmt.Errorf("wire: data field exceeds %d bytes", MaxPayloadSize)
	}
	if err := binary.Write(buf, binary.BigEndian, uint32(len(data))); err != nil {
		return fmt.Errorf("write opaque length: %w", err)
	}
	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write opaque data: %w", err)
	}
	return nil
}

func readOpaque(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, fmt.Errorf("read opaque length: %w", err)
	}
	if length > MaxPayloadSize {
		return nil, fmt.Errorf("wire: data field length %d exceeds maximum %d", length, MaxPayloadSize)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read opaque data: %w", err)
	}
	return data, nil
}

func writeUint32(buf *bytes.Buffer, v uint32) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write uint32: %w", err)
	}
	return nil
}

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read uint32: %w", err)
	}
	return v, nil
}

func writeUint64(buf *bytes.Buffer, v uint64) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write uint64: %w", err)
	}
	return nil
}

func readUint64(r io.Reader) (uint64, error) {
	var v uint64
	if err := binary.Read(r, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read uint64: %w", err)
	}
	return v, nil
}

// Encode serialises m into its fixed-layout wire body (without the length
// prefix added by WriteMessage).
func Encode(m *Message) ([]byte, error) {
	var buf bytes.Buffer

	if err := writeUint32(&buf, uint32(m.Type)); err != nil {
		return nil, err
	}
	if err := writeString(&buf, m.Filename); err != nil {
		return nil, err
	}
	if err := writeString(&buf, m.Username); err != nil {
		return nil, err
	}
	if err := writeString(&buf, m.Folder); err != nil {
		return nil, err
	}
	if err := writeString(&buf, m.CheckpointTag); err != nil {
		return nil, err
	}
	if err := writeUint64(&buf, m.RequestID); err != nil {
		return nil, err
	}
	if err := writeUint32(&buf, m.SentenceNum); err != nil {
		return nil, err
	}
	if err := writeUint32(&buf, m.Flags); err != nil {
		return nil, err
	}
	if err := writeUint32(&buf, uint32(m.ErrorCode)); err != nil {
		return nil, err
	}
	if err := writeString(&buf, m.SSIp); err != nil {
		return nil, err
	}
	if err := writeUint32(&buf, m.SSPort); err != nil {
		return nil, err
	}
	if err := writeOpaque(&buf, m.Data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a fixed-layout wire body produced by Encode.
func Decode(body []byte) (*Message, error) {
	r := bytes.NewReader(body)
	m := &Message{}

	typ, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	m.Type = MessageType(typ)

	if m.Filename, err = readString(r); err != nil {
		return nil, err
	}
	if m.Username, err = readString(r); err != nil {
		return nil, err
	}
	if m.Folder, err = readString(r); err != nil {
		return nil, err
	}
	if m.CheckpointTag, err = readString(r); err != nil {
		return nil, err
	}
	if m.RequestID, err = readUint64(r); err != nil {
		return nil, err
	}
	if m.SentenceNum, err = readUint32(r); err != nil {
		return nil, err
	}
	if m.Flags, err = readUint32(r); err != nil {
		return nil, err
	}
	errCode, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	m.ErrorCode = ErrorCode(errCode)
	if m.SSIp, err = readString(r); err != nil {
		return nil, err
	}
	if m.SSPort, err = readUint32(r); err != nil {
		return nil, err
	}
	if m.Data, err = readOpaque(r); err != nil {
		return nil, err
	}

	return m, nil
}
