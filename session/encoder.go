package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// Binary session blob layout. Strings are length-prefixed; identity fields
// use a single length byte, the token uses two because signed tokens exceed
// 255 bytes once claims grow.
const (
	formatVersionCurrent = 2
	formatVersionV1      = 1
)

var errCorruptBlob = errors.New("corrupt session blob")

func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(formatVersionCurrent)

	for _, field := range []struct {
		name  string
		value string
	}{
		{"userID", s.UserID},
		{"email", s.Email},
		{"role", s.Role},
	} {
		if len(field.value) > 255 {
			return nil, errors.New(field.name + " too long")
		}
		buf.WriteByte(byte(len(field.value)))
		buf.WriteString(field.value)
	}

	if len(s.Token) > 65535 {
		return nil, errors.New("token too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(s.Token))); err != nil {
		return nil, err
	}
	buf.WriteString(s.Token)

	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, errCorruptBlob
	}
	if version != formatVersionCurrent && version != formatVersionV1 {
		return nil, errors.New("invalid session version")
	}

	s := &Session{}

	for _, dst := range []*string{&s.UserID, &s.Email, &s.Role} {
		n, err := reader.ReadByte()
		if err != nil {
			return nil, errCorruptBlob
		}
		raw := make([]byte, n)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, errCorruptBlob
		}
		*dst = string(raw)
	}

	// v1 blobs predate token mirroring and carry no token field.
	if version == formatVersionCurrent {
		var tokenLen uint16
		if err := binary.Read(reader, binary.BigEndian, &tokenLen); err != nil {
			return nil, errCorruptBlob
		}
		raw := make([]byte, tokenLen)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, errCorruptBlob
		}
		s.Token = string(raw)
	}

	if err := binary.Read(reader, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, errCorruptBlob
	}
	if err := binary.Read(reader, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, errCorruptBlob
	}

	return s, nil
}
