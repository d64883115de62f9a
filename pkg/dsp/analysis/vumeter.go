package analysis

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/knobula/knobula/pkg/dsp"
)

// MeterMode selects the ballistics a VUMeter reports.
type MeterMode int32

const (
	ModeRMS MeterMode = iota
	ModePeak
	ModeVU
	ModeLUFS
	numModes
)

// String returns the mode label.
func (m MeterMode) String() string {
	switch m {
	case ModeRMS:
		return "RMS"
	case ModePeak:
		return "Peak"
	case ModeVU:
		return "VU"
	case ModeLUFS:
		return "LUFS"
	default:
		return "Unknown"
	}
}

// Next cycles to the following mode.
func (m MeterMode) Next() MeterMode {
	return (m + 1) % numModes
}

// ParseMeterMode parses a mode label, case-insensitive.
func ParseMeterMode(s string) (MeterMode, error) {
	for m := ModeRMS; m < numModes; m++ {
		if strings.EqualFold(strings.TrimSpace(s), m.String()) {
			return m, nil
		}
	}
	return ModeRMS, fmt.Errorf("unknown meter mode: %s", s)
}

// Meter timing constants
const (
	rmsWindowSeconds  = 0.05
	lufsWindowSeconds = 0.4
	vuTimeConstant    = 0.3
	peakAttackTime    = 0.01
	peakReleaseTime   = 1.0
	peakHoldSeconds   = 2.0
	peakDecayTime     = 0.5

	// K-weighting stand-in applied to the LUFS RMS
	lufsWeighting = 0.7079

	silenceLevel = 1e-8
	silencePeak  = 1e-10
)

// VUMeter is a single-channel multi-mode level meter. PushSamples runs on
// the audio thread; the Get methods may be called from any thread.
//
// Every mode is tracked continuously so switching modes never needs a
// reset or a fresh window.
type VUMeter struct {
	mode atomic.Int32

	sampleRate      float64
	rmsWindow       int
	rmsSubWindow    int
	vuSubWindow     int
	lufsWindow      int
	lufsSubWindow   int
	vuWindowCoeff   float64
	peakAttack      float64
	peakRelease     float64
	peakDecay       float64
	peakHoldSamples int

	rmsSum    float64
	rmsCount  int
	lufsSum   float64
	lufsCount int

	levels          [numModes]float64
	peakLevel       float64
	peakHoldCounter int

	published     [numModes]dsp.AtomicFloat32
	publishedPeak dsp.AtomicFloat32
}

// NewVUMeter creates an RMS meter prepared for 48 kHz.
func NewVUMeter() *VUMeter {
	m := &VUMeter{}
	m.Prepare(dsp.SampleRate48k)
	return m
}

// Prepare derives windows and ballistics from sampleRate and resets state.
func (m *VUMeter) Prepare(sampleRate float64) {
	m.sampleRate = sampleRate

	m.rmsWindow = max(1, int(sampleRate*rmsWindowSeconds))
	m.rmsSubWindow = max(1, m.rmsWindow/10)
	m.vuSubWindow = max(1, m.rmsWindow/20)
	m.lufsWindow = max(1, int(sampleRate*lufsWindowSeconds))
	m.lufsSubWindow = max(1, m.lufsWindow/10)

	// The VU pole is applied once per RMS window, so scale it to the window
	m.vuWindowCoeff = math.Exp(-float64(m.rmsWindow) / (sampleRate * vuTimeConstant))
	m.peakAttack = math.Exp(-1 / (sampleRate * peakAttackTime))
	m.peakRelease = math.Exp(-1 / (sampleRate * peakReleaseTime))
	m.peakDecay = math.Exp(-1 / (sampleRate * peakDecayTime))
	m.peakHoldSamples = int(sampleRate * peakHoldSeconds)

	m.Reset()
}

// Reset zeroes accumulators, levels and the peak indicator.
func (m *VUMeter) Reset() {
	m.rmsSum, m.rmsCount = 0, 0
	m.lufsSum, m.lufsCount = 0, 0
	m.levels = [numModes]float64{}
	m.peakLevel = 0
	m.peakHoldCounter = 0
	m.publish()
}

// SetMode selects the reported mode. Safe from any thread.
func (m *VUMeter) SetMode(mode MeterMode) {
	if mode < 0 || mode >= numModes {
		return
	}
	m.mode.Store(int32(mode))
}

// Mode returns the reported mode.
func (m *VUMeter) Mode() MeterMode {
	return MeterMode(m.mode.Load())
}

// PushSamples feeds a block of one channel.
func (m *VUMeter) PushSamples(samples []float32) {
	for _, s := range samples {
		x := float64(s)
		abs := math.Abs(x)
		sq := x * x

		m.updatePeakIndicator(abs)
		m.updatePeakMode(abs)
		m.updateRMSAndVU(sq)
		m.updateLUFS(sq)
	}
	m.publish()
}

func (m *VUMeter) updatePeakIndicator(abs float64) {
	if abs > m.peakLevel {
		m.peakLevel = abs
		m.peakHoldCounter = 0
		return
	}
	m.peakHoldCounter++
	if m.peakHoldCounter > m.peakHoldSamples {
		m.peakLevel *= m.peakDecay
	}
}

func (m *VUMeter) updatePeakMode(abs float64) {
	level := m.levels[ModePeak]
	coeff := m.peakRelease
	if abs > level {
		coeff = m.peakAttack
	}
	m.levels[ModePeak] = level*coeff + abs*(1-coeff)
}

func (m *VUMeter) updateRMSAndVU(sq float64) {
	m.rmsSum += sq
	m.rmsCount++

	if m.rmsCount >= m.rmsWindow {
		rms := math.Sqrt(m.rmsSum / float64(m.rmsCount))
		m.levels[ModeRMS] = rms
		m.levels[ModeVU] = m.levels[ModeVU]*m.vuWindowCoeff + rms*(1-m.vuWindowCoeff)
		m.rmsSum, m.rmsCount = 0, 0
		return
	}

	if m.rmsCount%m.rmsSubWindow == 0 {
		rms := math.Sqrt(m.rmsSum / float64(m.rmsCount))
		m.levels[ModeRMS] = m.levels[ModeRMS]*0.95 + rms*0.05
	}
	if m.rmsCount%m.vuSubWindow == 0 {
		rms := math.Sqrt(m.rmsSum / float64(m.rmsCount))
		vu := m.levels[ModeVU]
		if rms > vu {
			m.levels[ModeVU] = vu*0.9 + rms*0.1
		} else {
			m.levels[ModeVU] = vu*0.95 + rms*0.05
		}
	}
}

func (m *VUMeter) updateLUFS(sq float64) {
	m.lufsSum += sq
	m.lufsCount++

	if m.lufsCount >= m.lufsWindow {
		v := math.Sqrt(m.lufsSum/float64(m.lufsCount)) * lufsWeighting
		m.levels[ModeLUFS] = m.levels[ModeLUFS]*0.7 + v*0.3
		m.lufsSum, m.lufsCount = 0, 0
		return
	}

	if m.lufsCount%m.lufsSubWindow == 0 {
		v := math.Sqrt(m.lufsSum/float64(m.lufsCount)) * lufsWeighting
		m.levels[ModeLUFS] = m.levels[ModeLUFS]*0.8 + v*0.2
	}
}

func (m *VUMeter) publish() {
	for i, level := range m.levels {
		m.published[i].Store(float32(level))
	}
	m.publishedPeak.Store(float32(m.peakLevel))
}

// GetLevel returns the linear level of the active mode.
func (m *VUMeter) GetLevel() float32 {
	return m.published[m.Mode()].Load()
}

// GetLevelDB returns the active mode's level in dB, with the VU (+3 dB)
// and LUFS (-23 dB) reference offsets, floored at -60.
func (m *VUMeter) GetLevelDB() float64 {
	mode := m.Mode()
	level := float64(m.published[mode].Load())
	if level < silenceLevel {
		return dsp.MeterFloorDB
	}

	db := 20 * math.Log10(level)
	switch mode {
	case ModeVU:
		db += 3
	case ModeLUFS:
		db -= 23
	}
	return math.Max(dsp.MeterFloorDB, db)
}

// GetNormalizedLevel maps the active mode's dB reading onto [0, 1].
// VU puts 0 VU at 0.75 with the top quarter covering +3.
func (m *VUMeter) GetNormalizedLevel() float64 {
	db := m.GetLevelDB()

	var n float64
	switch m.Mode() {
	case ModeVU:
		switch {
		case db < -20:
			n = 0
		case db < 0:
			n = (db + 20) / 20 * 0.75
		default:
			n = 0.75 + db/3*0.25
		}
	case ModeLUFS:
		n = (db + 60) / 37
	default:
		n = (db + 60) / 60
	}
	return clamp01(n)
}

// GetPeakDB returns the held peak in dBFS, floored at -60.
func (m *VUMeter) GetPeakDB() float64 {
	peak := float64(m.publishedPeak.Load())
	if peak < silencePeak {
		return dsp.MeterFloorDB
	}
	return math.Max(dsp.MeterFloorDB, 20*math.Log10(peak))
}

// GetNormalizedPeak maps the held peak onto [0, 1] over -40..0 dBFS.
func (m *VUMeter) GetNormalizedPeak() float64 {
	return clamp01((m.GetPeakDB() + 40) / 40)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// StereoVUMeter pairs two VUMeters that share a mode.
type StereoVUMeter struct {
	meters [dsp.Stereo]*VUMeter
}

// NewStereoVUMeter creates two RMS meters.
func NewStereoVUMeter() *StereoVUMeter {
	return &StereoVUMeter{meters: [dsp.Stereo]*VUMeter{NewVUMeter(), NewVUMeter()}}
}

// Prepare readies both meters.
func (s *StereoVUMeter) Prepare(sampleRate float64) {
	for _, m := range s.meters {
		m.Prepare(sampleRate)
	}
}

// Reset clears both meters.
func (s *StereoVUMeter) Reset() {
	for _, m := range s.meters {
		m.Reset()
	}
}

// SetMode applies the mode to both meters.
func (s *StereoVUMeter) SetMode(mode MeterMode) {
	for _, m := range s.meters {
		m.SetMode(mode)
	}
}

// Mode returns the shared mode.
func (s *StereoVUMeter) Mode() MeterMode {
	return s.meters[0].Mode()
}

// PushBlock feeds up to two channel buffers; extra channels are ignored.
func (s *StereoVUMeter) PushBlock(buffers [][]float32) {
	for ch := 0; ch < len(buffers) && ch < dsp.Stereo; ch++ {
		s.meters[ch].PushSamples(buffers[ch])
	}
}

// Channel returns one meter, or nil for an invalid channel.
func (s *StereoVUMeter) Channel(ch int) *VUMeter {
	if ch < 0 || ch >= dsp.Stereo {
		return nil
	}
	return s.meters[ch]
}
