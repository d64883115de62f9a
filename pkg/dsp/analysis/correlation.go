package analysis

import (
	"math"

	"github.com/knobula/knobula/pkg/dsp"
)

// Denominators at or below this read as uncorrelated
const minCorrelationDenominator = 1e-4

// CorrelationMeter measures the phase relationship of a stereo pair, one
// Pearson coefficient per processed block.
type CorrelationMeter struct {
	correlation dsp.AtomicFloat32
}

// NewCorrelationMeter creates a correlation meter reading 0.
func NewCorrelationMeter() *CorrelationMeter {
	return &CorrelationMeter{}
}

// Reset returns the reading to 0.
func (cm *CorrelationMeter) Reset() {
	cm.correlation.Store(0)
}

// Process computes the correlation of one block. Mismatched or empty
// blocks read as 0.
func (cm *CorrelationMeter) Process(samplesL, samplesR []float32) {
	if len(samplesL) == 0 || len(samplesL) != len(samplesR) {
		cm.correlation.Store(0)
		return
	}
	cm.correlation.Store(float32(Correlation(samplesL, samplesR)))
}

// ProcessBlock reads channels 0 and 1; fewer than two channels read as 0.
func (cm *CorrelationMeter) ProcessBlock(buffers [][]float32) {
	if len(buffers) < dsp.Stereo {
		cm.correlation.Store(0)
		return
	}
	cm.Process(buffers[0], buffers[1])
}

// Correlation returns cov(L,R)/sqrt(var(L)·var(R)) over the block.
func Correlation(samplesL, samplesR []float32) float64 {
	n := min(len(samplesL), len(samplesR))
	if n == 0 {
		return 0
	}

	var sumL, sumR, sumLR, sumL2, sumR2 float64
	for i := 0; i < n; i++ {
		l := float64(samplesL[i])
		r := float64(samplesR[i])
		sumL += l
		sumR += r
		sumLR += l * r
		sumL2 += l * l
		sumR2 += r * r
	}

	count := float64(n)
	meanL := sumL / count
	meanR := sumR / count
	cov := sumLR/count - meanL*meanR
	varL := sumL2/count - meanL*meanL
	varR := sumR2/count - meanR*meanR

	denom := math.Sqrt(math.Max(0, varL*varR))
	if denom <= minCorrelationDenominator {
		return 0
	}
	return math.Max(-1, math.Min(1, cov/denom))
}

// GetCorrelation returns the latest reading (-1 to 1).
func (cm *CorrelationMeter) GetCorrelation() float64 {
	return float64(cm.correlation.Load())
}

// GetMonoCompatibility maps the correlation onto 0 (cancels) to 1 (mono-safe).
func (cm *CorrelationMeter) GetMonoCompatibility() float64 {
	return (cm.GetCorrelation() + 1) / 2
}

// GetPhaseStatus returns a qualitative phase status
func (cm *CorrelationMeter) GetPhaseStatus() PhaseStatus {
	return PhaseStatusOf(cm.GetCorrelation())
}

// PhaseStatusOf classifies a correlation value.
func PhaseStatusOf(corr float64) PhaseStatus {
	switch {
	case corr > 0.9:
		return PhaseInPhase
	case corr > 0.5:
		return PhaseMostlyInPhase
	case corr > -0.5:
		return PhasePartiallyCorrelated
	case corr > -0.9:
		return PhaseMostlyOutOfPhase
	default:
		return PhaseOutOfPhase
	}
}

// PhaseStatus represents the qualitative phase relationship
type PhaseStatus int

const (
	PhaseInPhase PhaseStatus = iota
	PhaseMostlyInPhase
	PhasePartiallyCorrelated
	PhaseMostlyOutOfPhase
	PhaseOutOfPhase
)

// String returns a string representation of the phase status
func (ps PhaseStatus) String() string {
	switch ps {
	case PhaseInPhase:
		return "In Phase"
	case PhaseMostlyInPhase:
		return "Mostly In Phase"
	case PhasePartiallyCorrelated:
		return "Partially Correlated"
	case PhaseMostlyOutOfPhase:
		return "Mostly Out of Phase"
	case PhaseOutOfPhase:
		return "Out of Phase"
	default:
		return "Unknown"
	}
}
