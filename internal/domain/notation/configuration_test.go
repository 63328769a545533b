package notation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
)

func TestParseConfiguration(t *testing.T) {
	tests := []struct {
		in      string
		want    Configuration
		typ     ConfigType
		ordinal int
	}{
		{"", Unknown, ConfigNone, 0},
		{"@", Anticlockwise, ConfigImplicit, 0},
		{"@@", Clockwise, ConfigImplicit, 0},
		{"@TH1", TH1, ConfigTetrahedral, 1},
		{"@TH2", TH2, ConfigTetrahedral, 2},
		{"@AL2", AL2, ConfigExtendedTetrahedral, 2},
		{"@DB1", DB1, ConfigDoubleBond, 1},
		{"@SP3", SP3, ConfigSquarePlanar, 3},
		{"@TB20", TB20, ConfigTrigonalBipyramidal, 20},
		{"@OH1", OH1, ConfigOctahedral, 1},
		{"@OH30", OH30, ConfigOctahedral, 30},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseConfiguration(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.typ, got.Type())
			assert.Equal(t, tt.ordinal, got.Ordinal())
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestParseConfiguration_Invalid(t *testing.T) {
	for _, in := range []string{"TH1", "@XX1", "@TH3", "@TH0", "@SP4", "@TB21", "@OH31", "@TH01", "@TH", "@@@"} {
		_, err := ParseConfiguration(in)
		assert.Error(t, err, in)
	}
}

func TestConfiguration_Shorthand(t *testing.T) {
	assert.Equal(t, Unknown, Unknown.Shorthand())
	assert.Equal(t, Anticlockwise, Anticlockwise.Shorthand())
	assert.Equal(t, Clockwise, Clockwise.Shorthand())
	assert.Equal(t, Anticlockwise, TH1.Shorthand())
	assert.Equal(t, Clockwise, TH2.Shorthand())
	assert.Equal(t, Anticlockwise, (TB1 + 2).Shorthand())
	assert.Equal(t, Clockwise, OH30.Shorthand())

	assert.Equal(t, molecule.Clockwise, TH2.Winding())
	assert.Equal(t, molecule.Anticlockwise, AL1.Winding())
	assert.Equal(t, molecule.Anticlockwise, Unknown.Winding())
}

func TestBondCode_Parse(t *testing.T) {
	for c, name := range bondCodeNames {
		assert.Equal(t, c, ParseBondCode(name))
		assert.Equal(t, name, c.String())
	}
	assert.Equal(t, BondCode(-1), ParseBondCode("sextuple"))
	assert.Equal(t, "bond_code(-1)", BondCode(-1).String())
}

func TestEdge_CodeFrom(t *testing.T) {
	e := Edge{U: 2, V: 5, Code: CodeUp}
	assert.Equal(t, CodeUp, e.CodeFrom(2))
	assert.Equal(t, CodeDown, e.CodeFrom(5))
	assert.Equal(t, 5, e.Other(2))
	assert.Equal(t, 2, e.Other(5))

	plain := Edge{U: 0, V: 1, Code: CodeDouble}
	assert.Equal(t, CodeDouble, plain.CodeFrom(1))
}
