package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"
)

// CurrentSchemaVersion is the first byte of every blob Encode produces.
const CurrentSchemaVersion uint8 = 1

const maxFieldLen = math.MaxUint16

// ErrCorruptState is returned by Decode for blobs that cannot be trusted.
var ErrCorruptState = errors.New("corrupt session state")

// Encode serializes s as a versioned binary blob.
//
// Layout (big endian): version u8, kind u8, hasUser u8, [id i64, name u16+bytes,
// email u16+bytes, lastLogin unix micro i64], createdAt i64, expiresAt i64.
func Encode(s *State) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil session state")
	}
	if err := checkKind(s.Kind, s.User != nil); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte(CurrentSchemaVersion)
	buf.WriteByte(byte(s.Kind))

	if s.User == nil {
		buf.WriteByte(0)
	} else {
		buf.WriteByte(1)
		if err := binary.Write(&buf, binary.BigEndian, s.User.ID); err != nil {
			return nil, err
		}
		if err := writeString(&buf, s.User.Name); err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		if err := writeString(&buf, s.User.Email); err != nil {
			return nil, fmt.Errorf("email: %w", err)
		}
		var lastLogin int64
		if !s.User.LastLogin.IsZero() {
			lastLogin = s.User.LastLogin.UnixMicro()
		}
		if err := binary.Write(&buf, binary.BigEndian, lastLogin); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a blob produced by Encode. Unknown schema versions, trailing
// bytes and kind/user disagreement are all rejected.
func Decode(data []byte) (*State, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: empty blob", ErrCorruptState)
	}
	if version != CurrentSchemaVersion {
		return nil, fmt.Errorf("%w: unsupported session schema version %d", ErrCorruptState, version)
	}

	s := &State{SchemaVersion: version}

	kind, err := reader.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	s.Kind = Kind(kind)

	hasUser, err := reader.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if hasUser > 1 {
		return nil, fmt.Errorf("%w: invalid user flag", ErrCorruptState)
	}
	if err := checkKind(s.Kind, hasUser == 1); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	if hasUser == 1 {
		u := &UserSummary{}
		if err := binary.Read(reader, binary.BigEndian, &u.ID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
		}
		if u.Name, err = readString(reader); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
		}
		if u.Email, err = readString(reader); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
		}
		var lastLogin int64
		if err := binary.Read(reader, binary.BigEndian, &lastLogin); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
		}
		if lastLogin != 0 {
			u.LastLogin = time.UnixMicro(lastLogin).UTC()
		}
		s.User = u
	}

	if err := binary.Read(reader, binary.BigEndian, &s.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if err := binary.Read(reader, binary.BigEndian, &s.ExpiresAt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	if reader.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptState, reader.Len())
	}

	return s, nil
}

func checkKind(kind Kind, hasUser bool) error {
	switch kind {
	case KindAnonymous:
		if hasUser {
			return errors.New("anonymous session carries a user")
		}
	case KindAuthenticated:
		if !hasUser {
			return errors.New("authenticated session without user")
		}
	default:
		return fmt.Errorf("unknown session kind %d", kind)
	}
	return nil
}

func writeString(buf *bytes.Buffer, v string) error {
	if len(v) > maxFieldLen {
		return errors.New("field too long")
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(v))); err != nil {
		return err
	}
	buf.WriteString(v)
	return nil
}

func readString(reader *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(reader, binary.BigEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(reader, b); err != nil {
		return "", err
	}
	return string(b), nil
}
