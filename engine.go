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
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// PixelFormat enumerates the channel layouts the pixel converter supports.
type PixelFormat int

const (
	// FormatRGB is three channels, no alpha.
	FormatRGB PixelFormat = iota
	// FormatRGBA is three channels plus alpha.
	FormatRGBA
	// FormatXYZ is always float triples (CIE XYZ), used for the PCS.
	FormatXYZ
)

func (f PixelFormat) channels() int {
	switch f {
	case FormatRGBA:
		return 4
	default:
		return 3
	}
}

func (f PixelFormat) hasAlpha() bool {
	return f == FormatRGBA
}

// bytesPerChannel returns the byte width of one channel sample at depth:
// 8 is u8, 9-16 is u16 (host-endian, modelled here as little-endian), 32
// is float32.
func bytesPerChannel(depth int) int {
	switch {
	case depth == 32:
		return 4
	case depth == 8:
		return 1
	default:
		return 2
	}
}

// BytesPerPixel returns the pixel stride in bytes for a format/depth
// combination, per §4.H's pixel-bytes table.
func BytesPerPixel(format PixelFormat, depth int) int {
	if format == FormatXYZ {
		return 12
	}
	return format.channels() * bytesPerChannel(depth)
}

func maxValue(depth int) float64 {
	if depth == 32 {
		return 1
	}
	return float64(uint32(1)<<uint(depth) - 1)
}

// sampleKind categorises a depth for dispatch purposes.
type sampleKind int

const (
	kindU8 sampleKind = iota
	kindU16
	kindFloat
)

func kindOf(depth int) sampleKind {
	switch {
	case depth == 8:
		return kindU8
	case depth == 32:
		return kindFloat
	default:
		return kindU16
	}
}

// Engine is the external colour-management-module fallback. [EngineTransform.Run]
// calls it in place of the built-in pixel path only when an Engine has been
// installed with [EngineTransform.SetEngine] and the Context disallows the
// built-in path (via [WithCCMMAllowed](false)). Profiles that carry
// LUT-based (A2B0/B2A0) tags are not detected and are not routed to the
// Engine; they go through the built-in path like any other profile.
type Engine interface {
	DoTransform(ctx context.Context, src, dst []byte) error
}

// EngineTransform converts pixel buffers between a source and a destination
// ICC profile and pixel format. Create one with [NewEngineTransform],
// [EngineTransform.Prepare] it (or let [EngineTransform.Run] do so lazily),
// then Run it as many times as needed. Profiles are borrowed, not owned;
// they must outlive the EngineTransform.
type EngineTransform struct {
	srcProfile, dstProfile *Profile
	srcFormat, dstFormat   PixelFormat
	srcDepth, dstDepth     int

	prepared bool
	reformat bool

	matSrcToDst [9]float64
	srcKind     TransferKind
	srcGamma    float64
	dstKind     TransferKind
	dstInvGamma float64

	engine Engine
}

// NewEngineTransform builds a transform for converting pixels from
// srcProfile/srcFormat/srcDepth to dstProfile/dstFormat/dstDepth. A nil
// profile is valid and represents a pixel stream that is already in XYZ
// (linear PCS) coordinates.
func NewEngineTransform(srcProfile, dstProfile *Profile, srcFormat, dstFormat PixelFormat, srcDepth, dstDepth int) *EngineTransform {
	return &EngineTransform{
		srcProfile: srcProfile,
		dstProfile: dstProfile,
		srcFormat:  srcFormat,
		dstFormat:  dstFormat,
		srcDepth:   srcDepth,
		dstDepth:   dstDepth,
	}
}

// SetEngine installs an external engine used instead of the built-in
// pixel-math path; see the [Engine] documentation for when this applies.
func (t *EngineTransform) SetEngine(e Engine) {
	t.engine = e
}

// profilesEqual reports whether two profiles describe the same colour space
// for the purposes of choosing the Reformat path: identical pointers (or
// both nil) trivially match; otherwise their encoded byte forms are
// compared.
func profilesEqual(a, b *Profile) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	da, erra := a.Encode()
	db, errb := b.Encode()
	if erra != nil || errb != nil {
		return false
	}
	if len(da) != len(db) {
		return false
	}
	for i := range da {
		if da[i] != db[i] {
			return false
		}
	}
	return true
}

func deriveXYZAndTransfer(p *Profile) (toXYZ [9]float64, kind TransferKind, gamma float64, err error) {
	if p == nil {
		return identity3(), TransferNone, 0, nil
	}

	res, err := p.Query()
	if err != nil {
		return [9]float64{}, TransferNone, 0, errors.Wrap(err, "icc: querying profile for transform")
	}

	toXYZ, err = deriveToXYZMatrix(res.Primaries)
	if err != nil {
		return [9]float64{}, TransferNone, 0, err
	}

	switch res.Curve {
	case CurvePQ:
		return toXYZ, TransferPQ, 0, nil
	case CurveHLG:
		return toXYZ, TransferHLG, 0, nil
	default:
		return toXYZ, TransferGamma, res.Gamma, nil
	}
}

func identity3() [9]float64 {
	return [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Prepare derives the transform's internal matrix and transfer-function
// state. It is idempotent: once it has succeeded, further calls (including
// the one [EngineTransform.Run] makes) are no-ops. Prepare and profile mutation must
// not race with a Run in progress.
func (t *EngineTransform) Prepare() error {
	if t.prepared {
		return nil
	}

	if profilesEqual(t.srcProfile, t.dstProfile) {
		t.reformat = true
		t.prepared = true
		return nil
	}

	srcToXYZ, srcKind, srcGamma, err := deriveXYZAndTransfer(t.srcProfile)
	if err != nil {
		return errors.Wrap(err, "icc: preparing source transform")
	}
	dstToXYZ, dstKind, dstGamma, err := deriveXYZAndTransfer(t.dstProfile)
	if err != nil {
		return errors.Wrap(err, "icc: preparing destination transform")
	}

	dstXYZToRGB, ok := invert3(dstToXYZ)
	if !ok {
		return errSingularMatrix
	}
	// XYZ = srcToXYZ . rgbSrc ; rgbDst = dstXYZToRGB . XYZ
	t.matSrcToDst = mul3x3(dstXYZToRGB, srcToXYZ)

	t.srcKind = srcKind
	t.srcGamma = srcGamma
	t.dstKind = dstKind
	if dstKind == TransferGamma && dstGamma != 0 {
		t.dstInvGamma = 1 / dstGamma
	}

	t.prepared = true
	return nil
}

// Run converts pixelCount pixels from src to dst, splitting the work across
// cctx.Jobs worker goroutines via the task runner. It calls Prepare lazily
// if it has not already run.
func (t *EngineTransform) Run(ctx context.Context, cctx *Context, src, dst []byte, pixelCount int) error {
	if err := t.Prepare(); err != nil {
		return err
	}

	srcStride := BytesPerPixel(t.srcFormat, t.srcDepth)
	dstStride := BytesPerPixel(t.dstFormat, t.dstDepth)
	if len(src) < pixelCount*srcStride || len(dst) < pixelCount*dstStride {
		return errMismatchedDepth
	}

	log := cctx.logger()
	log.Debug("running pixel transform",
		zap.Int("pixelCount", pixelCount),
		zap.Int("jobs", cctx.jobs()),
		zap.Bool("reformat", t.reformat))

	if t.engine != nil && !cctx.ccmmAllowed() {
		return t.engine.DoTransform(ctx, src, dst)
	}

	work := func(start, count int) {
		so := start * srcStride
		do := start * dstStride
		if t.reformat {
			t.reformatRange(src[so:so+count*srcStride], dst[do:do+count*dstStride], count)
		} else {
			t.transformRange(src[so:so+count*srcStride], dst[do:do+count*dstStride], count)
		}
	}

	return runTasks(ctx, pixelCount, cctx.jobs(), work)
}

func (t *EngineTransform) reformatRange(src, dst []byte, count int) {
	srcStride := BytesPerPixel(t.srcFormat, t.srcDepth)
	dstStride := BytesPerPixel(t.dstFormat, t.dstDepth)
	srcMax := maxValue(t.srcDepth)
	dstMax := maxValue(t.dstDepth)
	srcChans := t.srcFormat.channels()
	dstChans := t.dstFormat.channels()

	for i := 0; i < count; i++ {
		sp := src[i*srcStride : (i+1)*srcStride]
		dp := dst[i*dstStride : (i+1)*dstStride]

		for c := 0; c < 3; c++ {
			v := readChannel(sp, c, t.srcDepth) / srcMax * dstMax
			writeChannel(dp, c, t.dstDepth, v, dstMax)
		}

		if dstChans == 4 {
			if srcChans == 4 {
				a := readChannel(sp, 3, t.srcDepth) / srcMax * dstMax
				writeChannel(dp, 3, t.dstDepth, a, dstMax)
			} else {
				writeChannel(dp, 3, t.dstDepth, dstMax, dstMax)
			}
		}
	}
}

func (t *EngineTransform) transformRange(src, dst []byte, count int) {
	srcStride := BytesPerPixel(t.srcFormat, t.srcDepth)
	dstStride := BytesPerPixel(t.dstFormat, t.dstDepth)
	srcMax := maxValue(t.srcDepth)
	dstMax := maxValue(t.dstDepth)
	srcChans := t.srcFormat.channels()
	dstChans := t.dstFormat.channels()

	for i := 0; i < count; i++ {
		sp := src[i*srcStride : (i+1)*srcStride]
		dp := dst[i*dstStride : (i+1)*dstStride]

		var rgb [3]float64
		for c := 0; c < 3; c++ {
			v := readChannel(sp, c, t.srcDepth) / srcMax
			rgb[c] = decodeEOTF(t.srcKind, t.srcGamma, v)
		}

		out := mulMatVec(t.matSrcToDst, rgb)

		for c := 0; c < 3; c++ {
			v := encodeOETF(t.dstKind, t.dstInvGamma, out[c])
			writeChannel(dp, c, t.dstDepth, v*dstMax, dstMax)
		}

		if dstChans == 4 {
			if srcChans == 4 {
				a := readChannel(sp, 3, t.srcDepth) / srcMax * dstMax
				writeChannel(dp, 3, t.dstDepth, a, dstMax)
			} else {
				writeChannel(dp, 3, t.dstDepth, dstMax, dstMax)
			}
		}
	}
}

// readChannel reads channel index c (0-based) from a pixel's raw bytes at
// the given depth, returning the sample's native numeric value (not yet
// divided by its max).
func readChannel(pixel []byte, c, depth int) float64 {
	stride := bytesPerChannel(depth)
	off := c * stride
	switch kindOf(depth) {
	case kindU8:
		return float64(pixel[off])
	case kindFloat:
		bits := uint32(pixel[off]) | uint32(pixel[off+1])<<8 | uint32(pixel[off+2])<<16 | uint32(pixel[off+3])<<24
		return float64(math.Float32frombits(bits))
	default:
		return float64(uint16(pixel[off]) | uint16(pixel[off+1])<<8)
	}
}

// writeChannel writes a channel value already scaled to [0, max] into a
// pixel's raw bytes, rounding to the nearest integer (ties away from zero)
// and clamping to [0, max] for integer depths so an out-of-gamut pixel
// cannot wrap around instead of saturating.
func writeChannel(pixel []byte, c, depth int, value, max float64) {
	stride := bytesPerChannel(depth)
	off := c * stride
	switch kindOf(depth) {
	case kindFloat:
		bits := math.Float32bits(float32(value))
		pixel[off] = byte(bits)
		pixel[off+1] = byte(bits >> 8)
		pixel[off+2] = byte(bits >> 16)
		pixel[off+3] = byte(bits >> 24)
	case kindU8:
		pixel[off] = byte(clampRound(value, max))
	default:
		v := uint16(clampRound(value, max))
		pixel[off] = byte(v)
		pixel[off+1] = byte(v >> 8)
	}
}

// clampRound rounds to the nearest integer, ties away from zero, and clamps
// to [0, max].
func clampRound(v, max float64) float64 {
	v = math.Floor(v + 0.5)
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
