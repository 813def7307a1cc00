// Package rowcodec serializes and deserializes the fixed Row record that
// rowstore stores one-per-cell in a leaf page.
package rowcodec

import (
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"

	"rowstore/internal/page"
)

// Field sizes. Username and email each reserve one extra byte over their
// maximum content length (matching original_source/db.c, which sizes its
// username/email arrays as COLUMN_*_SIZE+1).
const (
	MaxUsernameLen = 32
	MaxEmailLen    = 255

	idSize       = 4
	usernameSize = MaxUsernameLen + 1
	emailSize    = MaxEmailLen + 1

	idOffset       = 0
	usernameOffset = idOffset + idSize
	emailOffset    = usernameOffset + usernameSize
)

// Size is the total encoded length of a Row; it must equal page.RowSize.
const Size = idSize + usernameSize + emailSize

func init() {
	if Size != page.RowSize {
		panic("rowcodec: Size does not match page.RowSize")
	}
}

// Row is the store's single fixed-schema record.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

// Serialize packs row into dst, which must be exactly Size bytes. It
// returns an error if either string field exceeds its maximum length —
// rowstore's engine never truncates silently. Statement preparation one
// layer up performs the same length checks to produce the user-facing
// message.
func Serialize(row Row, dst []byte) error {
	if len(dst) != Size {
		return errors.Errorf("rowcodec: dst length %d, want %d", len(dst), Size)
	}
	if len(row.Username) > MaxUsernameLen {
		return errors.Errorf("rowcodec: username %q exceeds %d bytes", row.Username, MaxUsernameLen)
	}
	if len(row.Email) > MaxEmailLen {
		return errors.Errorf("rowcodec: email %q exceeds %d bytes", row.Email, MaxEmailLen)
	}

	for i := range dst {
		dst[i] = 0
	}
	binary.LittleEndian.PutUint32(dst[idOffset:], row.ID)
	copy(dst[usernameOffset:usernameOffset+usernameSize], row.Username)
	copy(dst[emailOffset:emailOffset+emailSize], row.Email)
	return nil
}

// Deserialize is the inverse of Serialize: deserialize(serialize(r)) == r
// for any Row whose fields are within the size limits (P3).
func Deserialize(src []byte) (Row, error) {
	if len(src) != Size {
		return Row{}, errors.Errorf("rowcodec: src length %d, want %d", len(src), Size)
	}

	var row Row
	row.ID = binary.LittleEndian.Uint32(src[idOffset:])
	row.Username = trimTrailingZeros(src[usernameOffset : usernameOffset+usernameSize])
	row.Email = trimTrailingZeros(src[emailOffset : emailOffset+emailSize])
	return row, nil
}

func trimTrailingZeros(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}
