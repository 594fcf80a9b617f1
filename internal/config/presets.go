package config

import (
	"sort"

	"github.com/san-kum/chladni/internal/physics"
	"github.com/san-kum/chladni/internal/plate"
)

// Presets are named plate figures. Only the fields that differ from
// DefaultConfig are set; GetPreset fills in the rest.
var Presets = map[string]*Config{
	"cross": {
		Shape: plate.Square,
		Mode:  physics.Mode{N: 1, M: 2, A: 1, B: -1},
	},
	"diamond": {
		Shape: plate.Square,
		Mode:  physics.Mode{N: 1, M: 3, A: 1, B: 1},
	},
	"lattice": {
		Shape: plate.Square,
		Mode:  physics.Mode{N: 4, M: 4, A: 1, B: 1},
	},
	"star": {
		Shape: plate.Square,
		Mode:  physics.Mode{N: 3, M: 5, A: 1, B: -1},
	},
	"web": {
		Shape: plate.Square,
		Mode:  physics.Mode{N: 2, M: 7, A: 1, B: -1},
	},
	"rings": {
		Shape: plate.Circle,
		Mode:  physics.Mode{N: 2, M: 4, A: 1, B: 1},
	},
	"petals": {
		Shape: plate.Circle,
		Mode:  physics.Mode{N: 3, M: 6, A: 1, B: -0.5},
	},
	"ribbon": {
		Shape: plate.RectangleWide,
		Mode:  physics.Mode{N: 2, M: 5, A: 1, B: -1},
	},
	"ladder": {
		Shape: plate.RectangleTall,
		Mode:  physics.Mode{N: 1, M: 6, A: 1, B: 0.5},
	},
	"honeycomb": {
		Shape: plate.Hexagon,
		Mode:  physics.Mode{N: 3, M: 4, A: 1, B: 1},
	},
}

// GetPreset returns a full configuration for the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Shape = p.Shape
	cfg.Mode = p.Mode
	if p.Aspect != (AspectConfig{}) {
		cfg.Aspect = p.Aspect
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
