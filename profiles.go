// seehuhn.de/go/ccm - colour management core for image processing
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package ccm

import "github.com/pkg/errors"

// Built-in stock profiles, synthesised at package initialisation from the primaries in
// [ListStock] rather than shipped as embedded binary assets: every field a
// profile needs (colorant matrix, TRC, white point) is already derivable
// from a named set of primaries plus a transfer curve, so there is nothing
// a prebuilt .icc file would carry that [CreateStockProfile] cannot
// reconstruct byte-for-byte on demand.
var (
	// srgb8 is a display profile using the bt709 primaries with a pure
	// 2.2-gamma curve, a common stand-in for the sRGB transfer function at
	// 8 bits per channel.
	srgb8 *Profile

	// rec2100PQ is a wide-gamut HDR display profile using the bt2020
	// primaries and the SMPTE ST.2084 (PQ) transfer curve.
	rec2100PQ *Profile

	// rec2100HLG is the same wide-gamut primaries with the ARIB STD-B67
	// (HLG) transfer curve instead of PQ.
	rec2100HLG *Profile
)

func init() {
	var err error
	srgb8, err = CreateStockProfile("bt709", CurveGamma, 2.2, 0)
	if err != nil {
		panic(errors.Wrap(err, "icc: building built-in bt709 profile"))
	}
	rec2100PQ, err = CreateStockProfile("bt2020", CurvePQ, 0, 10000)
	if err != nil {
		panic(errors.Wrap(err, "icc: building built-in Rec. 2100 PQ profile"))
	}
	rec2100HLG, err = CreateStockProfile("bt2020", CurveHLG, 0, 1000)
	if err != nil {
		panic(errors.Wrap(err, "icc: building built-in Rec. 2100 HLG profile"))
	}
}

// SRGB8Profile returns a shared profile using the bt709 primaries and a pure
// 2.2-gamma curve. Callers that need to mutate it should call
// [Profile.Clone] first.
func SRGB8Profile() *Profile { return srgb8 }

// Rec2100PQProfile returns a shared wide-gamut HDR profile using the bt2020
// primaries and the PQ transfer curve, with a 10,000 nits luminance tag.
// Callers that need to mutate it should call [Profile.Clone] first.
func Rec2100PQProfile() *Profile { return rec2100PQ }

// Rec2100HLGProfile returns a shared wide-gamut HDR profile using the
// bt2020 primaries and the HLG transfer curve, with a 1,000 nits luminance
// tag. Callers that need to mutate it should call [Profile.Clone] first.
func Rec2100HLGProfile() *Profile { return rec2100HLG }
