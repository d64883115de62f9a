package debug

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Profiler collects timing statistics for named sections.
type Profiler struct {
	mu           sync.RWMutex
	measurements map[string]*Measurement
	enabled      atomic.Bool
	maxSamples   int
}

// Measurement holds timing statistics for a profiled section.
type Measurement struct {
	name        string
	count       uint64
	totalTime   time.Duration
	minTime     time.Duration
	maxTime     time.Duration
	lastTime    time.Duration
	samples     []time.Duration
	sampleIndex int
}

// NewProfiler creates a new profiler keeping the last maxSamples timings
// of each section for percentiles.
func NewProfiler(maxSamples int) *Profiler {
	p := &Profiler{
		measurements: make(map[string]*Measurement),
		maxSamples:   max(1, maxSamples),
	}
	p.enabled.Store(true)
	return p
}

// SetEnabled enables or disables profiling.
func (p *Profiler) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// IsEnabled returns whether profiling is enabled.
func (p *Profiler) IsEnabled() bool {
	return p.enabled.Load()
}

// Start begins timing a named section and returns the stop function.
func (p *Profiler) Start(name string) func() {
	if !p.enabled.Load() {
		return func() {}
	}

	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Time measures the execution time of a function.
func (p *Profiler) Time(name string, fn func()) {
	stop := p.Start(name)
	defer stop()
	fn()
}

// Record stores a timing measurement.
func (p *Profiler) Record(name string, elapsed time.Duration) {
	if !p.enabled.Load() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	m, exists := p.measurements[name]
	if !exists {
		m = &Measurement{
			name:    name,
			minTime: elapsed,
			maxTime: elapsed,
			samples: make([]time.Duration, p.maxSamples),
		}
		p.measurements[name] = m
	}

	m.count++
	m.totalTime += elapsed
	m.lastTime = elapsed
	m.minTime = min(m.minTime, elapsed)
	m.maxTime = max(m.maxTime, elapsed)

	m.samples[m.sampleIndex] = elapsed
	m.sampleIndex = (m.sampleIndex + 1) % len(m.samples)
}

// GetMeasurement returns a snapshot of the measurement for a named section.
func (p *Profiler) GetMeasurement(name string) (Measurement, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	m, exists := p.measurements[name]
	if !exists {
		return Measurement{}, false
	}
	return m.snapshot(), true
}

// Names returns the recorded section names, sorted.
func (p *Profiler) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.measurements))
	for name := range p.measurements {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset clears all measurements.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.measurements = make(map[string]*Measurement)
}

// Report generates a performance report.
func (p *Profiler) Report() string {
	names := p.Names()
	if len(names) == 0 {
		return "No measurements recorded\n"
	}

	var sb strings.Builder
	sb.WriteString("Performance Report:\n")
	sb.WriteString("==================\n\n")

	for _, name := range names {
		m, _ := p.GetMeasurement(name)
		fmt.Fprintf(&sb, "%s:\n", name)
		fmt.Fprintf(&sb, "  Count:   %d\n", m.count)
		fmt.Fprintf(&sb, "  Total:   %v\n", m.totalTime)
		fmt.Fprintf(&sb, "  Average: %v\n", m.Average())
		fmt.Fprintf(&sb, "  Min:     %v\n", m.minTime)
		fmt.Fprintf(&sb, "  Max:     %v\n", m.maxTime)
		fmt.Fprintf(&sb, "  P99:     %v\n", m.Percentile(99))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (m *Measurement) snapshot() Measurement {
	c := *m
	c.samples = slices.Clone(m.samples)
	return c
}

// Name returns the section name.
func (m Measurement) Name() string { return m.name }

// Count returns the number of recorded timings.
func (m Measurement) Count() uint64 { return m.count }

// Total returns the summed time.
func (m Measurement) Total() time.Duration { return m.totalTime }

// Min returns the fastest timing.
func (m Measurement) Min() time.Duration { return m.minTime }

// Max returns the slowest timing.
func (m Measurement) Max() time.Duration { return m.maxTime }

// Last returns the latest timing.
func (m Measurement) Last() time.Duration { return m.lastTime }

// Average returns the average time for this measurement.
func (m Measurement) Average() time.Duration {
	if m.count == 0 {
		return 0
	}
	return m.totalTime / time.Duration(m.count)
}

// Percentile returns the p-th percentile (0-100) of the retained timings.
func (m Measurement) Percentile(p float64) time.Duration {
	n := min(int(m.count), len(m.samples))
	if n == 0 {
		return 0
	}

	sorted := slices.Clone(m.samples[:n])
	slices.Sort(sorted)

	p = max(0, min(100, p))
	return sorted[int(float64(n-1)*p/100.0)]
}

// processSection names the block timing recorded by AudioProcessProfiler.
const processSection = "ProcessAudio"

// AudioProcessProfiler times process calls against their real-time budget.
type AudioProcessProfiler struct {
	*Profiler
	sampleRate   float64
	bufferSize   int
	samplesTotal atomic.Uint64
	busyNanos    atomic.Int64
	cpuLoadMilli atomic.Uint64
	overruns     atomic.Uint64
}

// NewAudioProcessProfiler creates a profiler specialized for audio processing.
func NewAudioProcessProfiler(sampleRate float64, bufferSize int) *AudioProcessProfiler {
	return &AudioProcessProfiler{
		Profiler:   NewProfiler(1000),
		sampleRate: sampleRate,
		bufferSize: bufferSize,
	}
}

// MeasureBlock times fn as the processing of numSamples samples. A block
// that takes longer than its own duration counts as an overrun.
func (a *AudioProcessProfiler) MeasureBlock(numSamples int, fn func()) {
	if !a.IsEnabled() {
		fn()
		return
	}

	start := time.Now()
	fn()
	elapsed := time.Since(start)

	a.Record(processSection, elapsed)
	a.samplesTotal.Add(uint64(numSamples))
	a.busyNanos.Add(int64(elapsed))
	if elapsed > a.BlockDuration(numSamples) {
		a.overruns.Add(1)
	}
	a.UpdateCPULoad()
}

// BlockDuration returns the real-time duration of numSamples samples.
func (a *AudioProcessProfiler) BlockDuration(numSamples int) time.Duration {
	if a.sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(numSamples) / a.sampleRate * float64(time.Second))
}

// UpdateCPULoad recomputes the load as processing time over audio time.
func (a *AudioProcessProfiler) UpdateCPULoad() {
	audio := a.BlockDuration(int(a.samplesTotal.Load()))
	if audio <= 0 {
		return
	}
	load := float64(a.busyNanos.Load()) / float64(audio) * 100.0
	a.cpuLoadMilli.Store(uint64(load * 1000))
}

// GetCPULoad returns the CPU load percentage.
func (a *AudioProcessProfiler) GetCPULoad() float64 {
	return float64(a.cpuLoadMilli.Load()) / 1000.0
}

// GetOverruns returns the number of blocks that missed their deadline.
func (a *AudioProcessProfiler) GetOverruns() uint64 {
	return a.overruns.Load()
}

// Reset clears timings and load statistics.
func (a *AudioProcessProfiler) Reset() {
	a.Profiler.Reset()
	a.samplesTotal.Store(0)
	a.busyNanos.Store(0)
	a.cpuLoadMilli.Store(0)
	a.overruns.Store(0)
}

// AudioReport generates an audio-specific performance report.
func (a *AudioProcessProfiler) AudioReport() string {
	var sb strings.Builder
	sb.WriteString(a.Report())
	sb.WriteString("Audio Processing Stats:\n")
	fmt.Fprintf(&sb, "  Sample Rate:  %.0f Hz\n", a.sampleRate)
	fmt.Fprintf(&sb, "  Buffer Size:  %d samples\n", a.bufferSize)
	fmt.Fprintf(&sb, "  Block Budget: %v\n", a.BlockDuration(a.bufferSize))
	fmt.Fprintf(&sb, "  CPU Load:     %.2f%%\n", a.GetCPULoad())
	fmt.Fprintf(&sb, "  Overruns:     %d\n", a.GetOverruns())
	return sb.String()
}
