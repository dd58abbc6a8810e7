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

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Primaries describes an RGB colour space by the CIE xy chromaticity
// coordinates of its three colorants and its white point.
//
// A zero or negative Rx marks an unset Primaries value.
type Primaries struct {
	Rx, Ry float64
	Gx, Gy float64
	Bx, By float64
	Wx, Wy float64
}

// IsSet reports whether p has been populated with real chromaticities.
func (p Primaries) IsSet() bool {
	return p.Rx > 0
}

// D65 is the CIE standard illuminant D65 white point in xy coordinates, used
// by the BT.709, BT.2020, P3 and sRGB colour spaces.
var D65 = struct{ X, Y float64 }{0.3127, 0.3290}

// stockPrimaries is the built-in table of named RGB primary sets.
var stockPrimaries = map[string]Primaries{
	"bt709": {
		Rx: 0.64, Ry: 0.33,
		Gx: 0.30, Gy: 0.60,
		Bx: 0.15, By: 0.06,
		Wx: D65.X, Wy: D65.Y,
	},
	"bt2020": {
		Rx: 0.708, Ry: 0.292,
		Gx: 0.170, Gy: 0.797,
		Bx: 0.131, By: 0.046,
		Wx: D65.X, Wy: D65.Y,
	},
	"p3": {
		Rx: 0.680, Ry: 0.320,
		Gx: 0.265, Gy: 0.690,
		Bx: 0.150, By: 0.060,
		Wx: D65.X, Wy: D65.Y,
	},
	"adobe-rgb": {
		Rx: 0.6400, Ry: 0.3300,
		Gx: 0.2100, Gy: 0.7100,
		Bx: 0.1500, By: 0.0600,
		Wx: D65.X, Wy: D65.Y,
	},
}

// GetStock looks up a named set of stock primaries. It returns false, never
// a silent substitution, when name is not recognised.
func GetStock(name string) (Primaries, bool) {
	p, ok := stockPrimaries[name]
	return p, ok
}

// ListStock returns the names of all stock primary sets, sorted.
func ListStock() []string {
	names := maps.Keys(stockPrimaries)
	slices.Sort(names)
	return names
}

// xyToXYZ converts a CIE xy chromaticity to an XYZ tristimulus value with
// Y normalised to 1.
func xyToXYZ(x, y float64) [3]float64 {
	if y == 0 {
		return [3]float64{0, 0, 0}
	}
	return [3]float64{x / y, 1, (1 - x - y) / y}
}

// xyzToXy converts an XYZ tristimulus value to a CIE xy chromaticity.
func xyzToXy(v [3]float64) (x, y float64) {
	sum := v[0] + v[1] + v[2]
	if sum == 0 {
		return 0, 0
	}
	return v[0] / sum, v[1] / sum
}

// deriveToXYZMatrix derives the 3x3 linear-RGB-to-XYZ matrix implied by a set
// of primaries, following Hoffmann's method (Colour Space and Colour
// Representation, section 11.4):
//
//	P = [ Rx Gx Bx ; Ry Gy By ; (1-Rx-Ry) (1-Gx-Gy) (1-Bx-By) ]
//	W = (Wx, Wy, 1-Wx-Wy)
//	U = P^-1 . W
//	D = diag(Ux/Wy, Uy/Wy, Uz/Wy)
//	toXYZ = P . D
//
// P already stores each colorant's xyz triple as a column, matching
// mulMatVec's row-major convention, so the derived matrix needs no further
// transpose: mulMatVec(toXYZ, (1,0,0)) must recover the red colorant's own
// xyz triple, and mulMatVec(toXYZ, (1,1,1)) must recover the white point.
func deriveToXYZMatrix(p Primaries) ([9]float64, error) {
	P := [9]float64{
		p.Rx, p.Gx, p.Bx,
		p.Ry, p.Gy, p.By,
		1 - p.Rx - p.Ry, 1 - p.Gx - p.Gy, 1 - p.Bx - p.By,
	}
	Pinv, ok := invert3(P)
	if !ok {
		return [9]float64{}, errSingularMatrix
	}
	W := [3]float64{p.Wx, p.Wy, 1 - p.Wx - p.Wy}
	U := mulMatVec(Pinv, W)
	if p.Wy == 0 {
		return [9]float64{}, errSingularMatrix
	}
	D := [3]float64{U[0] / p.Wy, U[1] / p.Wy, U[2] / p.Wy}

	// toXYZ = P . diag(D)
	var toXYZ [9]float64
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			toXYZ[row*3+col] = P[row*3+col] * D[col]
		}
	}
	return toXYZ, nil
}

func invert3(m [9]float64) ([9]float64, bool) {
	a, b, c := m[0], m[1], m[2]
	d, e, f := m[3], m[4], m[5]
	g, h, i := m[6], m[7], m[8]

	det := a*(e*i-f*h) - b*(d*i-f*g) + c*(d*h-e*g)
	if det == 0 {
		return [9]float64{}, false
	}
	invDet := 1.0 / det

	return [9]float64{
		(e*i - f*h) * invDet, (c*h - b*i) * invDet, (b*f - c*e) * invDet,
		(f*g - d*i) * invDet, (a*i - c*g) * invDet, (c*d - a*f) * invDet,
		(d*h - e*g) * invDet, (b*g - a*h) * invDet, (a*e - b*d) * invDet,
	}, true
}

func mulMatVec(m [9]float64, v [3]float64) [3]float64 {
	return [3]float64{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

func mul3x3(a, b [9]float64) [9]float64 {
	var r [9]float64
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += a[row*3+k] * b[k*3+col]
			}
			r[row*3+col] = sum
		}
	}
	return r
}

