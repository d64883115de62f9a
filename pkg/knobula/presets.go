package knobula

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knobula/knobula/pkg/dsp/eq"
	"github.com/knobula/knobula/pkg/framework/param"
)

// ErrUnknownPreset is returned when no factory preset has the given name.
var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a named factory setting. Values are plain parameter values
// keyed by parameter key; everything not listed is at its default.
type Preset struct {
	Name        string
	Description string
	Values      map[string]float64
}

// Processing options survive a preset change.
var presetPreserved = map[uint32]bool{
	ParamOversampling: true,
	ParamAutoGain:     true,
	ParamBypass:       true,
}

func bandValues(band int, freq, gainDB float64, curve eq.CurveType) map[string]float64 {
	v := map[string]float64{
		BandParamKey(band, 0, FieldFrequency): freq,
		BandParamKey(band, 0, FieldGain):      gainDB,
		BandParamKey(band, 0, FieldEnabled):   1,
	}
	if eq.SupportsShelf(band) {
		v[BandParamKey(band, 0, FieldCurve)] = float64(curve)
	}
	return v
}

func merge(maps ...map[string]float64) map[string]float64 {
	out := make(map[string]float64)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

var factoryPresets = []Preset{
	{
		Name:        "Flat",
		Description: "Neutral response, all bands at 0dB",
	},
	{
		Name:        "Vocal Presence",
		Description: "Upper-mid lift for vocal clarity",
		Values:      bandValues(eq.BandHMF, 3000, 3, eq.Bell),
	},
	{
		Name:        "Bass Boost",
		Description: "Low shelf lift at 80 Hz",
		Values:      bandValues(eq.BandLF, 80, 4, eq.Shelf),
	},
	{
		Name:        "Air",
		Description: "High shelf lift at 10 kHz",
		Values:      bandValues(eq.BandHF, 10000, 3, eq.Shelf),
	},
	{
		Name:        "Warmth",
		Description: "Tube and transformer color with a low-mid lift",
		Values: merge(
			map[string]float64{
				"hystEnabled":    1,
				"tubeHarmonics":  40,
				"transformerSat": 30,
			},
			bandValues(eq.BandLMF, 400, 2, eq.Bell),
		),
	},
	{
		Name:        "Clean Mastering",
		Description: "Gentle shelves at both ends",
		Values: merge(
			bandValues(eq.BandLF, 60, 1.5, eq.Shelf),
			bandValues(eq.BandHF, 12000, 1.5, eq.Shelf),
		),
	},
	{
		Name:        "High-Pass Clean",
		Description: "Removes rumble below 40 Hz",
		Values: map[string]float64{
			"hpfEnabled": 1,
			"hpfFreq":    40,
		},
	},
}

// Presets returns the factory presets in display order.
func Presets() []Preset {
	out := make([]Preset, len(factoryPresets))
	copy(out, factoryPresets)
	return out
}

// PresetNames returns the factory preset names in display order.
func PresetNames() []string {
	names := make([]string, len(factoryPresets))
	for i, p := range factoryPresets {
		names[i] = p.Name
	}
	return names
}

// FindPreset looks a preset up by name, ignoring case and surrounding space.
func FindPreset(name string) (Preset, error) {
	name = strings.TrimSpace(name)
	for _, p := range factoryPresets {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// ApplyPreset resets every parameter except the processing options
// (oversampling, auto gain, bypass) and then writes the preset's values.
func ApplyPreset(r *param.Registry, name string) error {
	preset, err := FindPreset(name)
	if err != nil {
		return err
	}

	for _, p := range r.All() {
		if !presetPreserved[p.ID] {
			p.Reset()
		}
	}
	for key, value := range preset.Values {
		if err := r.SetPlain(key, value); err != nil {
			return fmt.Errorf("preset %s: %w", preset.Name, err)
		}
	}
	return nil
}
