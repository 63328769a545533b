package notation

import (
	"fmt"
	"strings"

	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
)

// Configuration is the local stereo-parity descriptor of a vertex, as the
// tokenizer read it: "@", "@@", "@TH1", "@AL2", "@SP3", "@TB14", "@OH30" and
// the double-bond forms "@DB1", "@DB2".
type Configuration int

const (
	Unknown Configuration = iota
	Anticlockwise
	Clockwise
	TH1
	TH2
	AL1
	AL2
	DB1
	DB2
	SP1
	SP2
	SP3
	TB1
	TB20 = TB1 + 19
	OH1  = TB20 + 1
	OH30 = OH1 + 29
)

// ConfigType is the geometry family of a Configuration.
type ConfigType int

const (
	ConfigNone ConfigType = iota
	// ConfigImplicit covers the bare "@" and "@@" forms whose geometry is
	// decided by the vertex's topology.
	ConfigImplicit
	ConfigTetrahedral
	ConfigExtendedTetrahedral
	ConfigDoubleBond
	ConfigSquarePlanar
	ConfigTrigonalBipyramidal
	ConfigOctahedral
)

func (t ConfigType) String() string {
	switch t {
	case ConfigNone:
		return "none"
	case ConfigImplicit:
		return "implicit"
	case ConfigTetrahedral:
		return "tetrahedral"
	case ConfigExtendedTetrahedral:
		return "extended_tetrahedral"
	case ConfigDoubleBond:
		return "double_bond"
	case ConfigSquarePlanar:
		return "square_planar"
	case ConfigTrigonalBipyramidal:
		return "trigonal_bipyramidal"
	case ConfigOctahedral:
		return "octahedral"
	}
	return fmt.Sprintf("config_type(%d)", int(t))
}

// Type returns the geometry family.
func (c Configuration) Type() ConfigType {
	switch {
	case c == Unknown:
		return ConfigNone
	case c == Anticlockwise || c == Clockwise:
		return ConfigImplicit
	case c == TH1 || c == TH2:
		return ConfigTetrahedral
	case c == AL1 || c == AL2:
		return ConfigExtendedTetrahedral
	case c == DB1 || c == DB2:
		return ConfigDoubleBond
	case c >= SP1 && c <= SP3:
		return ConfigSquarePlanar
	case c >= TB1 && c <= TB20:
		return ConfigTrigonalBipyramidal
	case c >= OH1 && c <= OH30:
		return ConfigOctahedral
	}
	return ConfigNone
}

// Shorthand returns the "@" / "@@" winding the descriptor abbreviates.
// Explicit forms with an odd ordinal read anticlockwise and even ones
// clockwise; Unknown maps to Unknown.
func (c Configuration) Shorthand() Configuration {
	switch c.Type() {
	case ConfigNone:
		return Unknown
	case ConfigImplicit:
		return c
	}
	if c.Ordinal()%2 == 1 {
		return Anticlockwise
	}
	return Clockwise
}

// Ordinal returns the 1-based position of c within its family, 0 for
// Unknown and the implicit forms.
func (c Configuration) Ordinal() int {
	switch c.Type() {
	case ConfigTetrahedral:
		return int(c-TH1) + 1
	case ConfigExtendedTetrahedral:
		return int(c-AL1) + 1
	case ConfigDoubleBond:
		return int(c-DB1) + 1
	case ConfigSquarePlanar:
		return int(c-SP1) + 1
	case ConfigTrigonalBipyramidal:
		return int(c-TB1) + 1
	case ConfigOctahedral:
		return int(c-OH1) + 1
	}
	return 0
}

// Winding converts the shorthand to a molecule winding.  Anything other than
// Clockwise reads as anticlockwise, matching "@" as the default sense.
func (c Configuration) Winding() molecule.Winding {
	if c.Shorthand() == Clockwise {
		return molecule.Clockwise
	}
	return molecule.Anticlockwise
}

func (c Configuration) String() string {
	switch c.Type() {
	case ConfigNone:
		return ""
	case ConfigImplicit:
		if c == Clockwise {
			return "@@"
		}
		return "@"
	case ConfigTetrahedral:
		return fmt.Sprintf("@TH%d", c.Ordinal())
	case ConfigExtendedTetrahedral:
		return fmt.Sprintf("@AL%d", c.Ordinal())
	case ConfigDoubleBond:
		return fmt.Sprintf("@DB%d", c.Ordinal())
	case ConfigSquarePlanar:
		return fmt.Sprintf("@SP%d", c.Ordinal())
	case ConfigTrigonalBipyramidal:
		return fmt.Sprintf("@TB%d", c.Ordinal())
	case ConfigOctahedral:
		return fmt.Sprintf("@OH%d", c.Ordinal())
	}
	return fmt.Sprintf("config(%d)", int(c))
}

var familyBase = map[string]struct {
	first Configuration
	count int
}{
	"TH": {TH1, 2},
	"AL": {AL1, 2},
	"DB": {DB1, 2},
	"SP": {SP1, 3},
	"TB": {TB1, 20},
	"OH": {OH1, 30},
}

// ParseConfiguration reads the textual descriptor used in input documents.
// The empty string is Unknown.
func ParseConfiguration(s string) (Configuration, error) {
	switch s {
	case "":
		return Unknown, nil
	case "@":
		return Anticlockwise, nil
	case "@@":
		return Clockwise, nil
	}
	body := strings.TrimPrefix(s, "@")
	if len(body) < 3 || body == s {
		return Unknown, fmt.Errorf("notation: unrecognised configuration %q", s)
	}
	fam, ok := familyBase[body[:2]]
	if !ok {
		return Unknown, fmt.Errorf("notation: unrecognised configuration %q", s)
	}
	var n int
	if _, err := fmt.Sscanf(body[2:], "%d", &n); err != nil || n < 1 || n > fam.count ||
		fmt.Sprint(n) != body[2:] {
		return Unknown, fmt.Errorf("notation: configuration %q out of range", s)
	}
	return fam.first + Configuration(n-1), nil
}
