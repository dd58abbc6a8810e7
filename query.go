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
	"math"
	"time"

	"github.com/pkg/errors"
)

// CurveKind classifies the tone-reproduction curve reported by
// [Profile.Query].
type CurveKind int

const (
	// CurveUnknown means no usable TRC information could be recovered.
	CurveUnknown CurveKind = iota
	// CurveGamma is a pure power-law curve; Gamma holds its exponent.
	CurveGamma
	// CurveComplex is present but not a pure gamma curve; Gamma holds an
	// estimate of its effective exponent, or -1 if no TRC tag exists at all
	// and the estimate comes only from the presence of an A2B0 tag.
	CurveComplex
	// CurveHLG is the ARIB STD-B67 hybrid log-gamma curve.
	CurveHLG
	// CurvePQ is the SMPTE ST.2084 perceptual quantizer curve.
	CurvePQ
)

// QueryResult is the information [Profile.Query] recovers from a profile.
type QueryResult struct {
	Primaries Primaries
	Curve     CurveKind
	Gamma     float64

	// MatrixCurveScale is the implicit scale (a^g) applied to linear light by
	// an A2B0 matrix-curve, reported for diagnostics only; the pixel
	// converter never applies it (see the design notes on A2B0 handling).
	MatrixCurveScale float64

	// Luminance is the nits value from the lumi tag, or 0 if absent.
	Luminance int
}

// Query recovers the primaries, transfer curve and luminance that a profile
// implies, mirroring the semantics a profile built by [CreateProfile] would
// round-trip through. It follows §4.C of the colour-management design:
// colorants are read from rXYZ/gXYZ/bXYZ, falling back to an A2B0 matrix
// harvest when those are absent; a chad tag (when present and invertible) is
// used to adapt both the colorants and, for ICC v4 profiles or profiles with
// an explicit chad tag, the white point.
func (p *Profile) Query() (QueryResult, error) {
	var res QueryResult

	whiteData, ok := p.TagData[MediaWhitePoint]
	if !ok {
		return res, errNoWhitePoint
	}
	whiteXYZ, err := parseXYZ(whiteData)
	if err != nil {
		return res, errors.Wrap(err, "icc: decoding wtpt")
	}

	colorants, haveColorants := p.readColorantMatrix()
	if !haveColorants {
		return res, errNoColorants
	}

	adaptedWhite := whiteXYZ
	if chad, ok := p.readChad(); ok {
		invChad, ok := invert3(chad)
		if ok {
			colorants = mul3Cols(invChad, colorants)

			_, hasChadTag := p.TagData[ChromaticAdaptation]
			if p.Version < Version4_0_0 && !hasChadTag {
				// Old version without a chad tag: honour wtpt as-is.
				adaptedWhite = whiteXYZ
			} else {
				adaptedWhite = mulMatVec(invChad, whiteXYZ)
			}
		}
	}

	res.Primaries.Rx, res.Primaries.Ry = xyzToXy(colorants[0])
	res.Primaries.Gx, res.Primaries.Gy = xyzToXy(colorants[1])
	res.Primaries.Bx, res.Primaries.By = xyzToXy(colorants[2])
	res.Primaries.Wx, res.Primaries.Wy = xyzToXy(adaptedWhite)

	res.Curve, res.Gamma = p.queryCurve()
	res.MatrixCurveScale = p.queryMatrixCurveScale()
	res.Luminance = p.queryLuminance()

	return res, nil
}

// readColorantMatrix returns the three colorant XYZ values indexed by
// colorant: cols[0] is red's (X, Y, Z), cols[1] green's and cols[2] blue's,
// i.e. the columns of the RGB-to-XYZ matrix used by the Hoffmann derivation.
// It falls back to the A2B0 matrix harvest (§4.B) when rXYZ/gXYZ/bXYZ are
// not all present.
func (p *Profile) readColorantMatrix() (cols [3][3]float64, ok bool) {
	rData, hasR := p.TagData[RedMatrixColumn]
	gData, hasG := p.TagData[GreenMatrixColumn]
	bData, hasB := p.TagData[BlueMatrixColumn]

	if hasR && hasG && hasB {
		r, err1 := parseXYZ(rData)
		g, err2 := parseXYZ(gData)
		b, err3 := parseXYZ(bData)
		if err1 != nil || err2 != nil || err3 != nil {
			return cols, false
		}
		return [3][3]float64{r, g, b}, true
	}

	a2b0, hasA2B0 := p.TagData[AToB0]
	if !hasA2B0 {
		return cols, false
	}
	matrix, ok := harvestA2B0Matrix(a2b0)
	if !ok {
		return cols, false
	}
	return [3][3]float64{
		{matrix[0], matrix[3], matrix[6]},
		{matrix[1], matrix[4], matrix[7]},
		{matrix[2], matrix[5], matrix[8]},
	}, true
}

// harvestA2B0Matrix reads the embedded 3x3 matrix from a raw A2B0 (lutAtoB)
// tag when no colorant tags are present. The matrix offset is a big-endian
// uint32 at byte 16 of the tag data, followed by twelve s15.16 fixed-point
// entries (nine matrix coefficients, three translation terms that are
// ignored). This is a compatibility shim; implementations must not assume
// their ICC layer exposes this matrix through a typed accessor.
func harvestA2B0Matrix(data []byte) (m [9]float64, ok bool) {
	if len(data) < 20 {
		return m, false
	}
	matrixOffset := getUint32(data, 16)
	if matrixOffset == 0 {
		return m, false
	}
	start := uint64(matrixOffset)
	if start+36 > uint64(len(data)) {
		return m, false
	}
	for i := 0; i < 9; i++ {
		m[i] = getS15Fixed16(data, int(start)+i*4)
	}
	return m, true
}

// harvestA2B0MatrixCurveScale reads the A2B0 tag's matrix-curve block (the
// offset at byte 20) and, if it is a "para" curve of type 1-4, returns
// scale = a^g from the curve's g and a parameters.
func harvestA2B0MatrixCurveScale(data []byte) (scale float64, ok bool) {
	if len(data) < 24 {
		return 0, false
	}
	curveOffset := getUint32(data, 20)
	if curveOffset == 0 {
		return 0, false
	}
	start := uint64(curveOffset)
	if start+4 > uint64(len(data)) || string(data[start:start+4]) != "para" {
		return 0, false
	}
	if start+20 > uint64(len(data)) {
		return 0, false
	}
	curveType := getUint16(data, int(start)+8)
	if curveType < 1 || curveType > 4 {
		return 0, false
	}
	g := getS15Fixed16(data, int(start)+12)
	a := getS15Fixed16(data, int(start)+16)
	return math.Pow(a, g), true
}

// readChad returns the profile's chromatic-adaptation matrix, in row-major
// order, if a chad tag is present and well-formed.
func (p *Profile) readChad() (m [9]float64, ok bool) {
	data, hasChad := p.TagData[ChromaticAdaptation]
	if !hasChad || len(data) < 8+9*4 {
		return m, false
	}
	for i := 0; i < 9; i++ {
		m[i] = getS15Fixed16(data, 8+i*4)
	}
	return m, true
}

// mul3Cols multiplies a row-major 3x3 matrix by a set of three column
// vectors, returning the resulting three columns.
func mul3Cols(m [9]float64, cols [3][3]float64) [3][3]float64 {
	var out [3][3]float64
	for c := 0; c < 3; c++ {
		v := mulMatVec(m, cols[c])
		out[c] = v
	}
	return out
}

// queryCurve classifies the rTRC tag per §4.C: the private PQ and HLG
// parametric types yield PQ and HLG; parametric type 1 and a curveType
// gamma (or identity) curve are pure gamma curves; any other present curve
// is Complex with an estimated gamma; an A2B0 tag without any TRC yields
// Complex(-1); otherwise (or if rTRC cannot be decoded) Unknown.
func (p *Profile) queryCurve() (CurveKind, float64) {
	data, hasTRC := p.TagData[RedTRC]
	if !hasTRC {
		if _, hasA2B0 := p.TagData[AToB0]; hasA2B0 {
			return CurveComplex, -1
		}
		return CurveUnknown, 0
	}

	curve, err := DecodeCurve(data)
	if err != nil {
		return CurveUnknown, 0
	}

	switch curve.FuncType {
	case funcTypePQ:
		return CurvePQ, 0
	case funcTypeHLG:
		return CurveHLG, 0
	}

	if curve.Params != nil && curve.FuncType == 1 {
		return CurveGamma, curve.Params[0]
	}
	if curve.Gamma != 0 && curve.Params == nil && curve.Table == nil {
		return CurveGamma, curve.Gamma
	}
	return CurveComplex, estimateGamma(curve)
}

// estimateGamma approximates the effective power-law exponent of an
// arbitrary curve by sampling at the midpoint, the same single-point
// estimate the original colour engine performs (cmsEstimateGamma).
func estimateGamma(c *Curve) float64 {
	const x = 0.5
	y := c.Evaluate(x)
	if y <= 0 || y >= 1 {
		return 0
	}
	return math.Log(y) / math.Log(x)
}

func (p *Profile) queryMatrixCurveScale() float64 {
	data, ok := p.TagData[AToB0]
	if !ok {
		return 0
	}
	scale, ok := harvestA2B0MatrixCurveScale(data)
	if !ok {
		return 0
	}
	return scale
}

func (p *Profile) queryLuminance() int {
	data, ok := p.TagData[Luminance]
	if !ok {
		return 0
	}
	xyz, err := parseXYZ(data)
	if err != nil {
		return 0
	}
	return int(xyz[1])
}

// CreateProfile builds a display-class matrix/TRC profile from primaries, a
// transfer curve and a maximum luminance, performing the same construction
// [Profile.Query] can recover: colorant columns are derived from the
// primaries via [deriveToXYZMatrix] and written as rXYZ/gXYZ/bXYZ, the
// curve is written to rTRC (linked from gTRC/bTRC), the luminance is
// written to lumi, and the description is written to desc. The colorants
// and the wtpt tag are relative to the primaries' own white point: no
// Bradford adaptation to D50 is performed and no chad tag is written.
func CreateProfile(primaries Primaries, curve CurveKind, gamma float64, maxLuminance int, description string) (*Profile, error) {
	if !primaries.IsSet() {
		return nil, errors.New("icc: primaries not set")
	}

	toXYZ, err := deriveToXYZMatrix(primaries)
	if err != nil {
		return nil, errors.Wrap(err, "icc: deriving colour matrix")
	}

	p := &Profile{
		Version:         currentVersion,
		Class:           DisplayDeviceProfile,
		ColorSpace:      RGBSpace,
		PCS:             PCSXYZSpace,
		CreationDate:    time.Now().UTC().Truncate(time.Second),
		RenderingIntent: Perceptual,
		TagData:         make(map[TagType][]byte),
	}

	p.TagData[RedMatrixColumn] = encodeXYZ([3]float64{toXYZ[0], toXYZ[3], toXYZ[6]})
	p.TagData[GreenMatrixColumn] = encodeXYZ([3]float64{toXYZ[1], toXYZ[4], toXYZ[7]})
	p.TagData[BlueMatrixColumn] = encodeXYZ([3]float64{toXYZ[2], toXYZ[5], toXYZ[8]})
	p.TagData[MediaWhitePoint] = encodeXYZ(xyToXYZ(primaries.Wx, primaries.Wy))

	if err := p.SetGamma(curve, gamma); err != nil {
		return nil, err
	}
	p.SetLuminance(maxLuminance)
	if err := p.SetMLU(ProfileDescription, "en", "US", description); err != nil {
		return nil, err
	}

	return p, nil
}

// CreateStockProfile builds a display profile from one of the named stock
// primary sets; see [GetStock] for the available names.
func CreateStockProfile(name string, curve CurveKind, gamma float64, maxLuminance int) (*Profile, error) {
	primaries, ok := GetStock(name)
	if !ok {
		return nil, errors.Errorf("icc: unknown stock primaries %q", name)
	}
	return CreateProfile(primaries, curve, gamma, maxLuminance, name)
}

func encodeXYZ(v [3]float64) []byte {
	buf := make([]byte, 20)
	copy(buf[0:4], "XYZ ")
	putS15Fixed16(buf, 8, v[0])
	putS15Fixed16(buf, 12, v[1])
	putS15Fixed16(buf, 16, v[2])
	return buf
}

// parseXYZ decodes an XYZType tag (rXYZ/gXYZ/bXYZ/wtpt/bkpt/lumi all share
// this layout).
func parseXYZ(data []byte) ([3]float64, error) {
	if len(data) < 20 {
		return [3]float64{}, errInvalidTagData
	}
	if string(data[0:4]) != "XYZ " {
		return [3]float64{}, errUnexpectedType
	}

	x := getS15Fixed16(data, 8)
	y := getS15Fixed16(data, 12)
	z := getS15Fixed16(data, 16)

	return [3]float64{x, y, z}, nil
}

// Clone returns a deep, independent copy of p, obtained by packing and
// re-parsing the profile's binary form (so the clone shares no backing
// arrays with p).
func (p *Profile) Clone() (*Profile, error) {
	data, err := p.Encode()
	if err != nil {
		return nil, errors.Wrap(err, "icc: encoding profile for clone")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	clone, err := Decode(buf)
	if err != nil {
		return nil, errors.Wrap(err, "icc: re-parsing cloned profile")
	}
	return clone, nil
}

// Linear derives a linear-light variant of p: the same primaries, a Gamma(1)
// curve, and a description suffixed with " (Linear)".
func Linear(p *Profile) (*Profile, error) {
	res, err := p.Query()
	if err != nil {
		return nil, errors.Wrap(err, "icc: querying profile for linearisation")
	}
	desc, err := p.GetMLU(ProfileDescription, "en", "US")
	if err != nil || desc == "" {
		desc = "Unknown"
	}
	return CreateProfile(res.Primaries, CurveGamma, 1.0, res.Luminance, desc+" (Linear)")
}

// SetMLU writes an ASCII value to a multilingual tag (desc, cprt, ...) under
// the given language and country.
func (p *Profile) SetMLU(tag TagType, lang, country, value string) error {
	if len(lang) != 2 || len(country) != 2 {
		return errors.New("icc: language/country codes must be 2 characters")
	}
	buf := make([]byte, 16+12+len(value)*2)
	copy(buf[0:4], "mluc")
	putUint32(buf, 8, 1) // one record
	putUint32(buf, 12, 12)
	copy(buf[16:18], lang)
	copy(buf[18:20], country)
	putUint32(buf, 20, uint32(len(value)*2))
	putUint32(buf, 24, 28)
	for i, r := range []rune(value) {
		putUint16(buf, 28+i*2, uint16(r))
	}
	p.TagData[tag] = buf
	return nil
}

// GetMLU reads the ASCII value of a multilingual tag for the given language
// and country, falling back to the first entry in the MLU if that exact
// pair is not present.
func (p *Profile) GetMLU(tag TagType, lang, country string) (string, error) {
	data, ok := p.TagData[tag]
	if !ok {
		return "", errMissingTag
	}
	mlu, err := decodeMLUC(data)
	if err != nil {
		if err == errUnexpectedType {
			return decodeText(data)
		}
		return "", err
	}
	for _, entry := range mlu {
		if entry.Language == lang && entry.Country == country {
			return entry.Value, nil
		}
	}
	if len(mlu) > 0 {
		return mlu[0].Value, nil
	}
	return "", errInvalidTagData
}

// SetGamma writes the curve to rTRC and links gTRC and bTRC to the same
// tag data, matching how a matrix/TRC profile shares one curve across
// channels.
func (p *Profile) SetGamma(kind CurveKind, gamma float64) error {
	var curve *Curve
	switch kind {
	case CurveGamma:
		curve = &Curve{Gamma: gamma}
	case CurvePQ:
		curve = &Curve{FuncType: funcTypePQ, Params: []float64{}}
	case CurveHLG:
		curve = &Curve{FuncType: funcTypeHLG, Params: []float64{}}
	default:
		curve = &Curve{Gamma: 1.0}
	}
	data := curve.Encode()
	p.TagData[RedTRC] = data
	p.TagData[GreenTRC] = data
	p.TagData[BlueTRC] = data
	return nil
}

// SetLuminance writes the lumi tag with Y = nits.
func (p *Profile) SetLuminance(nits int) {
	p.TagData[Luminance] = encodeXYZ([3]float64{0, float64(nits), 0})
}

// Size returns the number of bytes p.Encode would produce.
func (p *Profile) Size() (int, error) {
	data, err := p.Encode()
	if err != nil {
		return 0, err
	}
	return len(data), nil
}
