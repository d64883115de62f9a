// Package analysis provides the metering used by the Knobula chain.
//
// Level Metering:
//   - VUMeter with RMS, Peak, VU and LUFS-style ballistics
//   - Peak indicator with 2 s hold and 500 ms decay
//   - StereoVUMeter pairing two meters on a shared mode
//
// Stereo Field Analysis:
//   - Per-block Pearson correlation meter
//   - Mono compatibility and qualitative phase status
//
// Meters are written by the audio thread only. Readings are published
// through atomics so a UI may poll the Get methods from any goroutine.
//
// Example usage:
//
//	vu := analysis.NewStereoVUMeter()
//	vu.Prepare(48000)
//	vu.SetMode(analysis.ModeVU)
//	vu.PushBlock(buffers)
//
//	db := vu.Channel(0).GetLevelDB()
//	bar := vu.Channel(0).GetNormalizedLevel()
//
//	corr := analysis.NewCorrelationMeter()
//	corr.ProcessBlock(buffers)
//	status := corr.GetPhaseStatus()
package analysis
