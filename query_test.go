package ccm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProfileQueryRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		curve CurveKind
		gamma float64
	}{
		{"bt709", CurveGamma, 2.2},
		{"bt2020", CurvePQ, 0},
		{"bt2020", CurveHLG, 0},
	}

	for _, c := range cases {
		t.Run(c.name+"/"+c.curve.describe(), func(t *testing.T) {
			primaries, ok := GetStock(c.name)
			require.True(t, ok)

			p, err := CreateProfile(primaries, c.curve, c.gamma, 1000, "test profile")
			require.NoError(t, err)

			res, err := p.Query()
			require.NoError(t, err)

			assert.InDelta(t, primaries.Rx, res.Primaries.Rx, 1e-4)
			assert.InDelta(t, primaries.Ry, res.Primaries.Ry, 1e-4)
			assert.InDelta(t, primaries.Gx, res.Primaries.Gx, 1e-4)
			assert.InDelta(t, primaries.Gy, res.Primaries.Gy, 1e-4)
			assert.InDelta(t, primaries.Bx, res.Primaries.Bx, 1e-4)
			assert.InDelta(t, primaries.By, res.Primaries.By, 1e-4)
			assert.InDelta(t, primaries.Wx, res.Primaries.Wx, 1e-4)
			assert.InDelta(t, primaries.Wy, res.Primaries.Wy, 1e-4)

			assert.Equal(t, c.curve, res.Curve)
			if c.curve == CurveGamma {
				// u8Fixed8Number quantises gamma to 1/256 steps.
				assert.InDelta(t, c.gamma, res.Gamma, 1.0/256)
			}
			assert.Equal(t, 1000, res.Luminance)
		})
	}
}

// describe gives CurveKind a test-only label; it is intentionally not a
// String method on the exported type since no other part of the package
// needs CurveKind to stringify.
func (k CurveKind) describe() string {
	switch k {
	case CurveGamma:
		return "gamma"
	case CurvePQ:
		return "pq"
	case CurveHLG:
		return "hlg"
	case CurveComplex:
		return "complex"
	default:
		return "unknown"
	}
}

func TestCreateProfileRejectsUnsetPrimaries(t *testing.T) {
	_, err := CreateProfile(Primaries{}, CurveGamma, 2.2, 0, "bad")
	assert.Error(t, err)
}

func TestQueryMissingWhitePoint(t *testing.T) {
	p := &Profile{TagData: make(map[TagType][]byte)}
	_, err := p.Query()
	assert.ErrorIs(t, err, errNoWhitePoint)
}

func TestCloneIsIndependent(t *testing.T) {
	p, err := CreateStockProfile("bt709", CurveGamma, 2.2, 0)
	require.NoError(t, err)

	clone, err := p.Clone()
	require.NoError(t, err)

	clone.TagData[ProfileDescription] = nil
	assert.NotNil(t, p.TagData[ProfileDescription], "mutating the clone must not affect the original")
}

func TestLinearProducesGammaOne(t *testing.T) {
	p, err := CreateStockProfile("bt709", CurveGamma, 2.2, 500)
	require.NoError(t, err)

	lin, err := Linear(p)
	require.NoError(t, err)

	res, err := lin.Query()
	require.NoError(t, err)

	assert.Equal(t, CurveGamma, res.Curve)
	assert.InDelta(t, 1.0, res.Gamma, 1e-6)
	assert.Equal(t, 500, res.Luminance)
}

func TestSetGetMLU(t *testing.T) {
	p, err := CreateStockProfile("bt709", CurveGamma, 2.2, 0)
	require.NoError(t, err)

	err = p.SetMLU(Copyright, "en", "US", "no rights reserved")
	require.NoError(t, err)

	got, err := p.GetMLU(Copyright, "en", "US")
	require.NoError(t, err)
	assert.Equal(t, "no rights reserved", got)
}

func TestEstimateGammaOnPureGamma(t *testing.T) {
	c := &Curve{Gamma: 2.2}
	g := estimateGamma(c)
	if math.Abs(g-2.2) > 1e-6 {
		t.Errorf("estimateGamma = %v, want 2.2", g)
	}
}

func TestSizeMatchesEncode(t *testing.T) {
	p, err := CreateStockProfile("bt709", CurveGamma, 2.2, 0)
	require.NoError(t, err)

	n, err := p.Size()
	require.NoError(t, err)

	data, err := p.Encode()
	require.NoError(t, err)

	assert.Equal(t, len(data), n)
}
