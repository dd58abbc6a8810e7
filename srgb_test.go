package ccm

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStockProfilesDecode(t *testing.T) {
	for _, name := range ListStock() {
		t.Run(name, func(t *testing.T) {
			p, err := CreateStockProfile(name, CurveGamma, 2.2, 0)
			if err != nil {
				t.Fatalf("CreateStockProfile failed: %v", err)
			}

			if p.Class != DisplayDeviceProfile {
				t.Errorf("class = %v, want DisplayDeviceProfile", p.Class)
			}
			if p.ColorSpace != RGBSpace {
				t.Errorf("color space = %v, want RGB", p.ColorSpace)
			}
			if p.PCS != PCSXYZSpace {
				t.Errorf("PCS = %v, want PCSXYZ", p.PCS)
			}
		})
	}
}

func TestStockProfilesRoundTrip(t *testing.T) {
	for _, name := range ListStock() {
		t.Run(name, func(t *testing.T) {
			p, err := CreateStockProfile(name, CurveGamma, 2.2, 0)
			if err != nil {
				t.Fatalf("CreateStockProfile failed: %v", err)
			}

			encoded, err := p.Encode()
			if err != nil {
				t.Fatalf("encode failed: %v", err)
			}

			q, err := Decode(encoded)
			if err != nil {
				t.Fatalf("re-decode failed: %v", err)
			}

			p.CheckSum = CheckSumMissing
			q.CheckSum = CheckSumMissing

			if diff := cmp.Diff(p, q); diff != "" {
				t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestStockProfilesXYZLuminance checks the matrix EngineTransform derives
// from each stock profile via deriveXYZAndTransfer (not the profile's own
// declared primaries): black maps near the XYZ origin, and red contributes
// less luminance than green, the defining property of every RGB primary set
// in the stock table.
func TestStockProfilesXYZLuminance(t *testing.T) {
	for _, name := range ListStock() {
		t.Run(name, func(t *testing.T) {
			p, err := CreateStockProfile(name, CurveGamma, 2.2, 0)
			if err != nil {
				t.Fatalf("CreateStockProfile failed: %v", err)
			}

			toXYZ, _, _, err := deriveXYZAndTransfer(p)
			if err != nil {
				t.Fatalf("deriveXYZAndTransfer failed: %v", err)
			}

			black := mulMatVec(toXYZ, [3]float64{0, 0, 0})
			if math.Abs(black[0]) > 0.01 || math.Abs(black[1]) > 0.01 || math.Abs(black[2]) > 0.01 {
				t.Errorf("black -> XYZ = %v, want near zero", black)
			}

			red := mulMatVec(toXYZ, [3]float64{1, 0, 0})
			green := mulMatVec(toXYZ, [3]float64{0, 1, 0})
			if red[1] >= green[1] {
				t.Errorf("red luminance (%v) >= green luminance (%v)", red[1], green[1])
			}
		})
	}
}

// TestStockProfilesPrimariesRoundTrip checks that a profile built from a
// named stock primary set reports the same chromaticities back out of
// Query, within the tolerance of one Bradford-free matrix round trip.
func TestStockProfilesPrimariesRoundTrip(t *testing.T) {
	for _, name := range ListStock() {
		t.Run(name, func(t *testing.T) {
			want, _ := GetStock(name)

			p, err := CreateStockProfile(name, CurveGamma, 2.2, 0)
			if err != nil {
				t.Fatalf("CreateStockProfile failed: %v", err)
			}

			res, err := p.Query()
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}

			const eps = 1e-4
			if math.Abs(res.Primaries.Rx-want.Rx) > eps || math.Abs(res.Primaries.Ry-want.Ry) > eps ||
				math.Abs(res.Primaries.Gx-want.Gx) > eps || math.Abs(res.Primaries.Gy-want.Gy) > eps ||
				math.Abs(res.Primaries.Bx-want.Bx) > eps || math.Abs(res.Primaries.By-want.By) > eps ||
				math.Abs(res.Primaries.Wx-want.Wx) > eps || math.Abs(res.Primaries.Wy-want.Wy) > eps {
				t.Errorf("primaries = %+v, want %+v", res.Primaries, want)
			}
		})
	}
}

// TestStockProfilesDeviceRoundTrip checks that each stock profile's derived
// matrix, the one EngineTransform.Prepare composes at the heart of its pixel
// path, is invertible and round-trips linear RGB through XYZ and back.
func TestStockProfilesDeviceRoundTrip(t *testing.T) {
	for _, name := range ListStock() {
		t.Run(name, func(t *testing.T) {
			p, err := CreateStockProfile(name, CurveGamma, 2.2, 0)
			if err != nil {
				t.Fatalf("CreateStockProfile failed: %v", err)
			}

			toXYZ, _, _, err := deriveXYZAndTransfer(p)
			if err != nil {
				t.Fatalf("deriveXYZAndTransfer failed: %v", err)
			}
			toRGB, ok := invert3(toXYZ)
			if !ok {
				t.Fatalf("derived matrix for %s is singular", name)
			}

			inputs := [][3]float64{
				{0, 0, 0},
				{1, 1, 1},
				{1, 0, 0},
				{0, 1, 0},
				{0, 0, 1},
				{0.5, 0.5, 0.5},
				{0.2, 0.4, 0.8},
			}

			for _, rgb := range inputs {
				xyz := mulMatVec(toXYZ, rgb)
				back := mulMatVec(toRGB, xyz)

				for i := range rgb {
					if math.Abs(back[i]-rgb[i]) > 0.02 {
						t.Errorf("round-trip %v -> XYZ%v -> %v", rgb, xyz, back)
						break
					}
				}
			}
		})
	}
}
