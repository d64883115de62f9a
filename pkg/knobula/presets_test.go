package knobula

import (
	"errors"
	"math"
	"testing"

	"github.com/knobula/knobula/pkg/dsp/eq"
)

func plain(t *testing.T, p *Processor, key string) float64 {
	t.Helper()
	prm := p.Parameters().GetByKey(key)
	if prm == nil {
		t.Fatalf("missing parameter %s", key)
	}
	return prm.GetPlainValue()
}

func TestPresetNames(t *testing.T) {
	want := []string{
		"Flat", "Vocal Presence", "Bass Boost", "Air",
		"Warmth", "Clean Mastering", "High-Pass Clean",
	}

	got := PresetNames()
	if len(got) != len(want) {
		t.Fatalf("PresetNames() returned %d names, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("preset %d = %q, want %q", i, got[i], want[i])
		}
	}

	for _, p := range Presets() {
		if p.Description == "" {
			t.Errorf("preset %q has no description", p.Name)
		}
	}
}

func TestFindPreset(t *testing.T) {
	p, err := FindPreset("  bass boost ")
	if err != nil {
		t.Fatalf("FindPreset: %v", err)
	}
	if p.Name != "Bass Boost" {
		t.Errorf("Name = %q", p.Name)
	}

	if _, err := FindPreset("Loudness War"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("error = %v, want ErrUnknownPreset", err)
	}
}

func TestApplyPresetValues(t *testing.T) {
	tests := []struct {
		preset string
		want   map[string]float64
	}{
		{"Vocal Presence", map[string]float64{
			"band2_freq_0": 3000, "band2_gain_0": 3, "band2_enabled_0": 1,
		}},
		{"Bass Boost", map[string]float64{
			"band0_freq_0": 80, "band0_gain_0": 4, "band0_curve_0": float64(eq.Shelf),
		}},
		{"Air", map[string]float64{
			"band3_freq_0": 10000, "band3_gain_0": 3, "band3_curve_0": float64(eq.Shelf),
		}},
		{"Warmth", map[string]float64{
			"hystEnabled": 1, "tubeHarmonics": 40, "transformerSat": 30,
			"band1_freq_0": 400, "band1_gain_0": 2,
		}},
		{"Clean Mastering", map[string]float64{
			"band0_freq_0": 60, "band0_gain_0": 1.5, "band0_curve_0": float64(eq.Shelf),
			"band3_freq_0": 12000, "band3_gain_0": 1.5, "band3_curve_0": float64(eq.Shelf),
		}},
		{"High-Pass Clean", map[string]float64{
			"hpfEnabled": 1, "hpfFreq": 40,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			p := newTestProcessor(t)
			if err := p.ApplyPreset(tt.preset); err != nil {
				t.Fatalf("ApplyPreset: %v", err)
			}
			for key, want := range tt.want {
				if got := plain(t, p, key); math.Abs(got-want) > 1e-9 {
					t.Errorf("%s = %g, want %g", key, got, want)
				}
			}
		})
	}
}

func TestApplyPresetResetsOtherParameters(t *testing.T) {
	p := newTestProcessor(t)
	r := p.Parameters()

	for key, value := range map[string]float64{
		"band2_gain_0": 5,
		"band1_solo_1": 1,
		"band3_mute_0": 1,
		"inputGain":    -6,
		"stereoMode":   StereoMS,
		"oversampling": 2,
		"autoGainComp": 1,
		"bypass":       1,
	} {
		if err := r.SetPlain(key, value); err != nil {
			t.Fatalf("SetPlain(%s): %v", key, err)
		}
	}

	if err := p.ApplyPreset("flat"); err != nil {
		t.Fatalf("ApplyPreset: %v", err)
	}

	for key, want := range map[string]float64{
		"band2_gain_0": 0,
		"band1_solo_1": 0,
		"band3_mute_0": 0,
		"inputGain":    0,
		"stereoMode":   StereoLR,
		"oversampling": 2,
		"autoGainComp": 1,
		"bypass":       1,
	} {
		if got := plain(t, p, key); math.Abs(got-want) > 1e-9 {
			t.Errorf("%s = %g, want %g", key, got, want)
		}
	}
}

func TestApplyPresetUnknown(t *testing.T) {
	p := newTestProcessor(t)
	if err := p.Parameters().SetPlain("band0_gain_0", 4); err != nil {
		t.Fatal(err)
	}

	if err := p.ApplyPreset("nope"); !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("error = %v, want ErrUnknownPreset", err)
	}
	if got := plain(t, p, "band0_gain_0"); math.Abs(got-4) > 1e-9 {
		t.Errorf("unknown preset changed parameters: band0_gain_0 = %g", got)
	}
}
