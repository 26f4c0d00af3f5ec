// Package impl holds the primitive types shared by the triplestore packages.
package impl

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
)

// cspell:words twiesing

// Label represents the label of individual triple members.
// A label is an IRI or a blank node identifier.
type Label string

// LabelAsByte encodes a label as a set of bytes.
func LabelAsByte(label Label) []byte {
	return []byte(label)
}

// ByteAsLabel returns a label from a []byte
func ByteAsLabel(label []byte) Label {
	return Label(label)
}

// Datum is a literal value attached to a node.
type Datum struct {
	Value    string
	Language string
}

// DatumAsByte encodes a datum as a set of bytes.
func DatumAsByte(datum Datum) ([]byte, error) {
	return json.Marshal(&datum)
}

// ByteAsDatum decodes a datum from a set of bytes.
func ByteAsDatum(dest *Datum, src []byte) error {
	return json.Unmarshal(src, dest)
}

// ID uniquely identifies an object within an index.
// The zero ID is not valid.
//
// IDs are handed out in increasing order, so comparing two IDs compares the order they were created in.
type ID uint64

// IDLen is the size of an encoded ID in bytes
const IDLen = 8

// Valid checks if this ID is valid
func (id ID) Valid() bool {
	return id != 0
}

// Reset resets this id to an invalid value
func (id *ID) Reset() {
	*id = 0
}

// Inc increments this ID, and then returns a copy of the new value.
// It is the equivalent of the "++" operator.
func (id *ID) Inc() ID {
	*id++
	if *id == 0 {
		// NOTE(twiesing): If this line is ever reached we should increase the size of the ID type.
		panic("ID.Inc: Overflow (not enough IDs)")
	}
	return *id
}

// Compare compares this ID to another id.
// The result will be 0 if id == other, -1 if id < other, and +1 if id > other.
func (id ID) Compare(other ID) int {
	switch {
	case id < other:
		return -1
	case id > other:
		return 1
	default:
		return 0
	}
}

// String formats this id as a string.
// It is only intended for debugging.
func (id ID) String() string {
	return fmt.Sprintf("ID(%d)", uint64(id))
}

// Encode encodes id using a big endian encoding into dest.
// dest must be of at least size [IDLen].
func (id ID) Encode(dest []byte) {
	binary.BigEndian.PutUint64(dest, uint64(id))
}

// Decode sets this id to the value decoded from src.
// src must be of at least size [IDLen], or a runtime panic occurs.
func (id *ID) Decode(src []byte) {
	*id = ID(binary.BigEndian.Uint64(src))
}

// EncodeIDs encodes IDs into a new slice of bytes.
// The big endian encoding means the result sorts like the ids themselves.
func EncodeIDs(ids ...ID) []byte {
	dest := make([]byte, len(ids)*IDLen)
	for i, id := range ids {
		id.Encode(dest[i*IDLen:])
	}
	return dest
}

// MarshalID encodes a single id.
func MarshalID(id ID) ([]byte, error) {
	return EncodeIDs(id), nil
}

var errUnmarshal = errors.New("UnmarshalID: invalid length")

// UnmarshalID behaves like [dest.Decode], but produces an error
// when there are insufficient number of bytes in src.
func UnmarshalID(dest *ID, src []byte) error {
	if len(src) < IDLen {
		return errUnmarshal
	}
	dest.Decode(src)
	return nil
}

// UnmarshalIDs is like UnmarshalID but decodes into every destination passed.
func UnmarshalIDs(src []byte, dests ...*ID) error {
	if len(src) < len(dests)*IDLen {
		return errUnmarshal
	}
	for i, dest := range dests {
		dest.Decode(src[i*IDLen:])
	}
	return nil
}
