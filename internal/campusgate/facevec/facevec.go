package facevec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Dim is the length of a face encoding vector.  The embedding collaborator
// produces 128-dimensional float64 vectors; every encoding in the system
// (enrolled, probe, or stored on an attempt) has exactly this length.
const Dim = 128

// DefaultTolerance is the maximum Euclidean distance at which two encodings
// are considered the same face.
const DefaultTolerance = 0.6

var ErrInvalidVector = errors.New("face encoding has wrong dimensionality")

// Encoding is a fixed-length face embedding vector.
type Encoding []float64

// Validate returns ErrInvalidVector unless e has exactly Dim components.
func Validate(e Encoding) error {
	if len(e) != Dim {
		return fmt.Errorf("%w: got %d components, want %d", ErrInvalidVector, len(e), Dim)
	}
	return nil
}

// Distance returns the Euclidean distance between two encodings.
// Both encodings must have the same length; Validate before calling.
func Distance(a, b Encoding) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Matches reports whether probe is within tolerance of enrolled.
func Matches(enrolled, probe Encoding, tolerance float64) bool {
	return Distance(enrolled, probe) <= tolerance
}

// Marshal serializes an encoding to the on-disk blob layout: consecutive
// little-endian IEEE-754 float64 values.  This matches the layout the
// embedding pipeline emits, so blobs round-trip between systems.
func Marshal(e Encoding) []byte {
	buf := make([]byte, 8*len(e))
	for i, v := range e {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

// Unmarshal parses a blob produced by Marshal.  It rejects blobs that are
// not a whole number of float64s or that do not decode to Dim components.
func Unmarshal(b []byte) (Encoding, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("%w: blob length %d is not a multiple of 8", ErrInvalidVector, len(b))
	}
	e := make(Encoding, len(b)/8)
	for i := range e {
		e[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	if err := Validate(e); err != nil {
		return nil, err
	}
	return e, nil
}
