package facevec_test

import (
	"errors"
	"math"
	"testing"

	"github.com/jjayakar/campusgate/internal/campusgate/facevec"
)

// enc returns a Dim-length encoding whose first component is v.  The
// Euclidean distance between enc(a) and enc(b) is exactly |a-b|, which
// makes tolerance boundaries easy to reason about in tests.
func enc(v float64) facevec.Encoding {
	e := make(facevec.Encoding, facevec.Dim)
	e[0] = v
	return e
}

func TestDistance_IdenticalIsZero(t *testing.T) {
	a := enc(0.25)
	if d := facevec.Distance(a, a); d != 0 {
		t.Errorf("expected distance 0, got %v", d)
	}
}

func TestDistance_KnownValue(t *testing.T) {
	a := make(facevec.Encoding, facevec.Dim)
	b := make(facevec.Encoding, facevec.Dim)
	a[0], a[1] = 3, 0
	b[0], b[1] = 0, 4

	if d := facevec.Distance(a, b); math.Abs(d-5) > 1e-12 {
		t.Errorf("expected distance 5, got %v", d)
	}
}

func TestMatches_ToleranceBoundary(t *testing.T) {
	if !facevec.Matches(enc(0), enc(0.6), 0.6) {
		t.Error("distance equal to tolerance should match")
	}
	if facevec.Matches(enc(0), enc(0.61), 0.6) {
		t.Error("distance beyond tolerance should not match")
	}
}

func TestValidate_WrongDim(t *testing.T) {
	err := facevec.Validate(make(facevec.Encoding, facevec.Dim-1))
	if !errors.Is(err, facevec.ErrInvalidVector) {
		t.Errorf("expected ErrInvalidVector, got %v", err)
	}
	if err := facevec.Validate(enc(0)); err != nil {
		t.Errorf("expected valid encoding, got %v", err)
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	orig := make(facevec.Encoding, facevec.Dim)
	for i := range orig {
		orig[i] = float64(i) * -0.013
	}

	got, err := facevec.Unmarshal(facevec.Marshal(orig))
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for i := range orig {
		if got[i] != orig[i] {
			t.Fatalf("component %d: got %v, want %v", i, got[i], orig[i])
		}
	}
}

func TestUnmarshal_RejectsBadBlobs(t *testing.T) {
	if _, err := facevec.Unmarshal(make([]byte, 13)); !errors.Is(err, facevec.ErrInvalidVector) {
		t.Errorf("ragged blob: expected ErrInvalidVector, got %v", err)
	}
	if _, err := facevec.Unmarshal(make([]byte, 8*(facevec.Dim+1))); !errors.Is(err, facevec.ErrInvalidVector) {
		t.Errorf("oversized blob: expected ErrInvalidVector, got %v", err)
	}
}
