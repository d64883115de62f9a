package param

import (
	"math"
	"testing"
)

func TestChoice(t *testing.T) {
	options := []ChoiceOption{
		{Value: 0, Name: "1x"},
		{Value: 1, Name: "2x", Aliases: []string{"two"}},
		{Value: 2, Name: "4x", Aliases: []string{"four"}},
	}

	param := Choice(100, "Oversampling", options).Build()

	t.Run("Formatter", func(t *testing.T) {
		tests := []struct {
			value    float64
			expected string
		}{
			{0, "1x"},
			{1, "2x"},
			{2, "4x"},
		}

		for _, test := range tests {
			normalized := test.value / 2.0 // 0-2 range
			result := param.FormatValue(normalized)
			if result != test.expected {
				t.Errorf("FormatValue(%f) = %s, want %s", test.value, result, test.expected)
			}
		}
	})

	t.Run("Parser", func(t *testing.T) {
		tests := []struct {
			input         string
			expectedPlain float64
		}{
			{"1x", 0},
			{"2X", 1},
			{"two", 1},
			{"FOUR", 2},
		}

		for _, test := range tests {
			normalized, err := param.ParseValue(test.input)
			if err != nil {
				t.Errorf("ParseValue(%s) error: %v", test.input, err)
				continue
			}
			plain := param.Denormalize(normalized)
			if math.Abs(plain-test.expectedPlain) > 0.001 {
				t.Errorf("ParseValue(%s) = %f (plain), want %f", test.input, plain, test.expectedPlain)
			}
		}

		if _, err := param.ParseValue("8x"); err == nil {
			t.Error("expected error for unknown option")
		}
	})

	t.Run("Index", func(t *testing.T) {
		param.SetPlainValue(2)
		if param.Index() != 2 {
			t.Errorf("Index() = %d, want 2", param.Index())
		}
		if param.Flags&IsList == 0 {
			t.Error("choice parameter should carry the list flag")
		}
	})
}

func TestGainParameter(t *testing.T) {
	param := GainParameter(200, "Input Gain", 12).Build()

	if param.Min != -12 || param.Max != 12 {
		t.Errorf("gain range should be -12..12, got %f..%f", param.Min, param.Max)
	}
	if math.Abs(param.GetPlainValue()) > 1e-9 {
		t.Errorf("gain default should be 0 dB, got %f", param.GetPlainValue())
	}

	tests := []struct {
		plainValue float64
		expected   string
	}{
		{0, "0.0 dB"},
		{6, "6.0 dB"},
		{-6, "-6.0 dB"},
	}
	for _, test := range tests {
		result := param.FormatValue(param.Normalize(test.plainValue))
		if result != test.expected {
			t.Errorf("FormatValue(%f dB) = %s, want %s", test.plainValue, result, test.expected)
		}
	}
}

func TestPercentParameter(t *testing.T) {
	param := PercentParameter(300, "Mix", 100).Build()

	if param.Min != 0 || param.Max != 100 {
		t.Errorf("percent range should be 0-100, got %f-%f", param.Min, param.Max)
	}
	if param.DefaultValue != 1.0 {
		t.Errorf("default should be 100%% (normalized 1.0), got %f", param.DefaultValue)
	}
}

func TestFrequencyParameter(t *testing.T) {
	param := FrequencyParameter(400, "Cutoff", 20, 20000, 1000).Build()

	result := param.FormatValue(param.Normalize(1000))
	if result != "1.00 kHz" {
		t.Errorf("FormatValue(1000 Hz) = %s, want 1.00 kHz", result)
	}

	normalized, err := param.ParseValue("2.5 kHz")
	if err != nil {
		t.Fatalf("ParseValue error: %v", err)
	}
	if plain := param.Denormalize(normalized); math.Abs(plain-2500) > 0.01 {
		t.Errorf("ParseValue(2.5 kHz) = %f, want 2500", plain)
	}
}

func TestSwitchParameter(t *testing.T) {
	on := SwitchParameter(500, "Link", true).Build()
	off := SwitchParameter(501, "Solo", false).Build()

	if !on.Bool() {
		t.Error("switch defaulting on should read true")
	}
	if off.Bool() {
		t.Error("switch defaulting off should read false")
	}

	normalized, err := off.ParseValue("true")
	if err != nil {
		t.Fatalf("ParseValue error: %v", err)
	}
	off.SetValue(normalized)
	if !off.Bool() {
		t.Error("switch should be on after parsing \"true\"")
	}

	off.Reset()
	if off.Bool() {
		t.Error("Reset should restore the default")
	}
}

func TestBypassParameter(t *testing.T) {
	bypass := BypassParameter(600, "Bypass").Build()
	if bypass.Flags&IsBypass == 0 {
		t.Error("bypass flag not set")
	}
	if bypass.Bool() {
		t.Error("bypass should default to active")
	}
}
