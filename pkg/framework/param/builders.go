package param

import (
	"fmt"
	"strings"
)

// ChoiceOption represents a single choice in a list parameter
type ChoiceOption struct {
	Value   float64
	Name    string
	Aliases []string
}

// Choice creates a parameter builder for a multiple choice parameter
func Choice(id uint32, name string, options []ChoiceOption) *Builder {
	names := make([]string, len(options))
	for i, opt := range options {
		names[i] = opt.Name
	}

	formatter := func(value float64) string {
		for _, opt := range options {
			if opt.Value == value {
				return opt.Name
			}
		}
		// Fallback to index-based lookup for integer values
		index := int(value + 0.5)
		if index >= 0 && index < len(names) {
			return names[index]
		}
		return "Unknown"
	}

	parser := func(str string) (float64, error) {
		str = strings.TrimSpace(str)
		for _, opt := range options {
			if strings.EqualFold(str, opt.Name) {
				return opt.Value, nil
			}
			for _, alias := range opt.Aliases {
				if strings.EqualFold(str, alias) {
					return opt.Value, nil
				}
			}
		}

		return 0, fmt.Errorf("unknown option: %s", str)
	}

	minVal := 0.0
	maxVal := float64(len(options) - 1)
	if len(options) > 0 {
		minVal = options[0].Value
		maxVal = options[len(options)-1].Value
	}

	return New(id, name).
		Range(minVal, maxVal).
		Steps(int32(len(options) - 1)).
		Default(options[0].Value).
		Flags(CanAutomate | IsList).
		Formatter(formatter, parser)
}

// Common parameter helpers

// GainParameter creates a symmetric dB gain parameter defaulting to 0 dB
func GainParameter(id uint32, name string, rangeDB float64) *Builder {
	return New(id, name).
		Range(-rangeDB, rangeDB).
		Default(0).
		Unit("dB").
		Formatter(DecibelFormatter, DecibelParser)
}

// PercentParameter creates a 0-100% amount parameter
func PercentParameter(id uint32, name string, defaultPct float64) *Builder {
	return New(id, name).
		Range(0, 100).
		Default(defaultPct).
		Unit("%").
		Formatter(PercentFormatter, PercentParser)
}

// FrequencyParameter creates a frequency parameter in Hz
func FrequencyParameter(id uint32, name string, min, max, defaultVal float64) *Builder {
	return New(id, name).
		Range(min, max).
		Default(defaultVal).
		Unit("Hz").
		Formatter(FrequencyFormatter, FrequencyParser)
}

// SwitchParameter creates an on/off toggle
func SwitchParameter(id uint32, name string, on bool) *Builder {
	def := 0.0
	if on {
		def = 1
	}
	return Choice(id, name, []ChoiceOption{
		{Value: 0, Name: "Off", Aliases: []string{"false", "0", "no"}},
		{Value: 1, Name: "On", Aliases: []string{"true", "1", "yes"}},
	}).Default(def)
}

// BypassParameter creates a bypass on/off switch
func BypassParameter(id uint32, name string) *Builder {
	return Choice(id, name, []ChoiceOption{
		{Value: 0, Name: "Active", Aliases: []string{"off", "false", "0"}},
		{Value: 1, Name: "Bypassed", Aliases: []string{"on", "true", "1"}},
	}).Bypass()
}
