package knobula

import (
	"fmt"

	"github.com/knobula/knobula/pkg/dsp"
	"github.com/knobula/knobula/pkg/dsp/eq"
	"github.com/knobula/knobula/pkg/framework/param"
)

// Global parameter IDs
const (
	ParamInputGain uint32 = iota
	ParamOutputTrim
	ParamStereoMode
	ParamChannelLink
	ParamHPFEnabled
	ParamHPFFrequency
	ParamLPFEnabled
	ParamLPFFrequency
	ParamHysteresisEnabled
	ParamTubeHarmonics
	ParamTransformerSaturation
	ParamHysteresisMix
	ParamOversampling
	ParamAutoGain
	ParamBypass
)

// Band parameters are laid out from bandParamBase, one block of
// bandParamStride IDs per band, two IDs (one per channel) per field.
const (
	bandParamBase   uint32 = 100
	bandParamStride uint32 = 20
)

// Stereo modes
const (
	StereoLR = iota
	StereoMS
)

// Gain ranges in dB
const (
	IOGainRange   = 12.0
	BandGainRange = 10.0
	BandTrimRange = 1.0
)

// BandField selects one per-band, per-channel parameter.
type BandField int

const (
	FieldGain BandField = iota
	FieldTrim
	FieldFrequency
	FieldCurve
	FieldEnabled
	FieldSolo
	FieldMute
	numBandFields
)

var bandFieldKeys = [numBandFields]string{"gain", "trim", "freq", "curve", "enabled", "solo", "mute"}

// String returns the key fragment of the field.
func (f BandField) String() string {
	if f < 0 || f >= numBandFields {
		return "unknown"
	}
	return bandFieldKeys[f]
}

// BandParamID returns the parameter ID of a band field.
func BandParamID(band, ch int, field BandField) uint32 {
	return bandParamBase + uint32(band)*bandParamStride + uint32(field)*dsp.Stereo + uint32(ch)
}

// BandParamKey returns the string key of a band field, e.g. "band0_gain_1".
func BandParamKey(band, ch int, field BandField) string {
	return fmt.Sprintf("band%d_%s_%d", band, field, ch)
}

var channelSuffix = [dsp.Stereo]string{"L", "R"}

// registerParameters adds the full Knobula parameter layout to r.
func registerParameters(r *param.Registry) error {
	params := []*param.Parameter{
		param.GainParameter(ParamInputGain, "Input Gain", IOGainRange).Key("inputGain").Build(),
		param.GainParameter(ParamOutputTrim, "Output Trim", IOGainRange).Key("outputTrim").Build(),
		param.Choice(ParamStereoMode, "Stereo Mode", []param.ChoiceOption{
			{Value: StereoLR, Name: "L/R", Aliases: []string{"lr", "stereo"}},
			{Value: StereoMS, Name: "M/S", Aliases: []string{"ms", "midside"}},
		}).Key("stereoMode").Build(),
		param.SwitchParameter(ParamChannelLink, "Channel Link", true).Key("channelLink").Build(),
		param.SwitchParameter(ParamHPFEnabled, "HPF Enable", false).Key("hpfEnabled").Build(),
		param.FrequencyParameter(ParamHPFFrequency, "HPF Frequency", 20, 500, 30).Key("hpfFreq").Build(),
		param.SwitchParameter(ParamLPFEnabled, "LPF Enable", false).Key("lpfEnabled").Build(),
		param.FrequencyParameter(ParamLPFFrequency, "LPF Frequency", 2000, dsp.MaxFrequency, 18000).Key("lpfFreq").Build(),
	}

	for band := 0; band < eq.NumBands; band++ {
		name := eq.BandName(band)
		minFreq, maxFreq := eq.FrequencyRange(band)
		for ch, suffix := range channelSuffix {
			params = append(params,
				param.GainParameter(BandParamID(band, ch, FieldGain), fmt.Sprintf("%s Gain %s", name, suffix), BandGainRange).
					Key(BandParamKey(band, ch, FieldGain)).Build(),
				param.GainParameter(BandParamID(band, ch, FieldTrim), fmt.Sprintf("%s Trim %s", name, suffix), BandTrimRange).
					Key(BandParamKey(band, ch, FieldTrim)).Build(),
				param.FrequencyParameter(BandParamID(band, ch, FieldFrequency), fmt.Sprintf("%s Freq %s", name, suffix),
					minFreq, maxFreq, eq.DefaultFrequency(band)).
					Key(BandParamKey(band, ch, FieldFrequency)).Build(),
			)
			if eq.SupportsShelf(band) {
				params = append(params,
					param.Choice(BandParamID(band, ch, FieldCurve), fmt.Sprintf("%s Curve %s", name, suffix), []param.ChoiceOption{
						{Value: float64(eq.Bell), Name: eq.Bell.String()},
						{Value: float64(eq.Shelf), Name: eq.Shelf.String()},
					}).Key(BandParamKey(band, ch, FieldCurve)).Build(),
				)
			}
			params = append(params,
				param.SwitchParameter(BandParamID(band, ch, FieldEnabled), fmt.Sprintf("%s Enable %s", name, suffix), true).
					Key(BandParamKey(band, ch, FieldEnabled)).Build(),
				param.SwitchParameter(BandParamID(band, ch, FieldSolo), fmt.Sprintf("%s Solo %s", name, suffix), false).
					Key(BandParamKey(band, ch, FieldSolo)).Build(),
				param.SwitchParameter(BandParamID(band, ch, FieldMute), fmt.Sprintf("%s Mute %s", name, suffix), false).
					Key(BandParamKey(band, ch, FieldMute)).Build(),
			)
		}
	}

	params = append(params,
		param.SwitchParameter(ParamHysteresisEnabled, "Hysteresis Enable", false).Key("hystEnabled").Build(),
		param.PercentParameter(ParamTubeHarmonics, "Tube Harmonics", 0).Key("tubeHarmonics").Build(),
		param.PercentParameter(ParamTransformerSaturation, "Transformer Saturate", 0).Key("transformerSat").Build(),
		param.PercentParameter(ParamHysteresisMix, "Hysteresis Mix", 100).Key("hystMix").Build(),
		param.Choice(ParamOversampling, "Oversampling", []param.ChoiceOption{
			{Value: 0, Name: "1x", Aliases: []string{"1", "off"}},
			{Value: 1, Name: "2x", Aliases: []string{"2"}},
			{Value: 2, Name: "4x", Aliases: []string{"4"}},
		}).Key("oversampling").Build(),
		param.SwitchParameter(ParamAutoGain, "Auto Gain Compensation", false).Key("autoGainComp").Build(),
		param.BypassParameter(ParamBypass, "Bypass").Key("bypass").Build(),
	)

	if err := r.Add(params...); err != nil {
		return fmt.Errorf("register parameters: %w", err)
	}
	return nil
}
