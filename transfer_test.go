package ccm

import (
	"math"
	"testing"
)

func TestPQRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.001, 0.01, 0.1, 0.25, 0.5, 0.75, 0.9, 1} {
		got := PQOETF(PQEOTF(v))
		if math.Abs(got-v) > 1e-5 {
			t.Errorf("PQOETF(PQEOTF(%v)) = %v, want %v", v, got, v)
		}
	}
}

func TestPQMonotonic(t *testing.T) {
	prev := PQEOTF(0)
	for v := 0.01; v <= 1; v += 0.01 {
		cur := PQEOTF(v)
		if cur < prev {
			t.Fatalf("PQEOTF not monotonic at %v: %v < %v", v, cur, prev)
		}
		prev = cur
	}
}

func TestHLGRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.001, 1.0 / 12.0, 0.1, 0.25, 0.5, 0.75, 0.9, 1} {
		got := HLGOETF(HLGEOTF(v))
		if math.Abs(got-v) > 1e-5 {
			t.Errorf("HLGOETF(HLGEOTF(%v)) = %v, want %v", v, got, v)
		}
	}
}

func TestHLGContinuousAtBreakpoint(t *testing.T) {
	const eps = 1e-9
	below := HLGOETF(1.0/12.0 - eps)
	above := HLGOETF(1.0/12.0 + eps)
	if math.Abs(below-above) > 1e-6 {
		t.Errorf("HLGOETF discontinuous at breakpoint: %v vs %v", below, above)
	}
}

func TestGammaRoundTrip(t *testing.T) {
	for _, gamma := range []float64{1.0, 1.8, 2.2, 2.4} {
		for _, v := range []float64{0, 0.2, 0.5, 0.8, 1} {
			got := GammaInverse(Gamma(v, gamma), gamma)
			if math.Abs(got-v) > 1e-9 {
				t.Errorf("gamma=%v: GammaInverse(Gamma(%v)) = %v, want %v", gamma, v, got, v)
			}
		}
	}
}

func TestDecodeEncodeEOTFDispatch(t *testing.T) {
	cases := []struct {
		kind TransferKind
		v    float64
	}{
		{TransferNone, 0.5},
		{TransferGamma, 0.5},
		{TransferPQ, 0.5},
		{TransferHLG, 0.5},
	}
	for _, c := range cases {
		t.Run(c.kind.String(), func(t *testing.T) {
			linear := decodeEOTF(c.kind, 2.2, c.v)
			back := encodeOETF(c.kind, 1/2.2, linear)
			if math.Abs(back-c.v) > 1e-5 {
				t.Errorf("%v: decode/encode round trip = %v, want %v", c.kind, back, c.v)
			}
		})
	}
}

func TestTransferKindString(t *testing.T) {
	for _, k := range []TransferKind{TransferNone, TransferGamma, TransferPQ, TransferHLG} {
		if k.String() == "Unknown" {
			t.Errorf("TransferKind(%d).String() = Unknown, want a named value", k)
		}
	}
	if TransferKind(99).String() != "Unknown" {
		t.Error("an unrecognised TransferKind should stringify to Unknown")
	}
}
