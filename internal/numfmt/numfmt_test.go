package numfmt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		name          string
		value         float64
		digits        int
		allowAboveOne bool
		allowZero     bool
		want          string
	}{
		{"exact two digits", 0.05, 2, false, false, ".05"},
		{"leading zero kept", 0.23, 2, true, true, "0.23"},
		{"leading zero dropped", 0.23, 2, false, true, ".23"},
		{"negative drops zero", -0.23, 2, false, true, "-.23"},
		{"rounds half away", 0.125, 2, false, true, ".13"},
		{"pads digits", 4.3, 2, true, true, "4.30"},
		{"zero allowed", 0.001, 2, true, true, "0.00"},
		{"zero replaced", 0.001, 2, false, false, "< .01"},
		{"exact zero replaced", 0, 2, false, false, "< .01"},
		{"negative zero replaced", -0.001, 2, false, false, "> -.01"},
		{"zero replaced above one", 0.001, 2, true, false, "< 0.01"},
		{"negative zero collapses", -0.001, 2, true, true, "0.00"},
		{"above one uncapped", 1.234, 2, false, true, "1.23"},
		{"no digits", 12.6, 0, true, true, "13"},
		{"nan", math.NaN(), 2, true, true, "NA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(tt.value, tt.digits, tt.allowAboveOne, tt.allowZero))
		})
	}
}

func TestNumber_CapAtOne(t *testing.T) {
	o := Options{Digits: 3, CapAtOne: true, AllowZero: true}
	assert.Equal(t, "> .999", Number(1, o))
	assert.Equal(t, "> .999", Number(0.99971, o))
	assert.Equal(t, ".999", Number(0.9994, o))
	assert.Equal(t, "< -.999", Number(-1, o))

	o.AllowAboveOne = true
	assert.Equal(t, "1.000", Number(1, o))
}

func TestP(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{0.0003, "< .001"},
		{0.04, "= .040"},
		{0.052, "= .052"},
		{0.001, "= .001"},
		{0.0495, "= .050"},
		{0.9994, "= .999"},
		{0.9996, "> .999"},
		{1, "> .999"},
		{math.NaN(), "= NA"},
	}
	for _, tt := range tests {
		got := P(tt.p)
		assert.Equal(t, tt.want, got, "p=%v", tt.p)
		assert.True(t, HasRelator(got), "p=%v must carry a relator", tt.p)
	}
}

func TestPCell(t *testing.T) {
	assert.Equal(t, ".040", PCell(0.04))
	assert.Equal(t, "< .001", PCell(0.00001))
}

func TestCI(t *testing.T) {
	assert.Equal(t, "90% CI [.05, .25]", CI(0.05, 0.25, 0.90, false))
	assert.Equal(t, "95% CI [-0.12, 1.40]", CI(-0.12, 1.4, 0.95, true))
	assert.Equal(t, "99.5% CI [.00, .31]", CI(0, 0.31, 0.995, false))
}

func TestDF(t *testing.T) {
	assert.Equal(t, "1", DF(1))
	assert.Equal(t, "18", DF(18))
	assert.Equal(t, "1.46", DF(1.4623))
	assert.Equal(t, "26.31", DF(26.3125))
}

func TestWithRelator(t *testing.T) {
	assert.Equal(t, "ΔR² = .15", WithRelator("ΔR²", ".15"))
	assert.Equal(t, "ΔR² < .01", WithRelator("ΔR²", "< .01"))
	assert.Equal(t, "p = .040", WithRelator("p", P(0.04)))
}
