package audio

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/knobula/knobula/internal/wav"
	"github.com/knobula/knobula/pkg/dsp"
)

// ErrNoChannels is returned for audio without channels.
var ErrNoChannels = errors.New("audio has no channels")

// BlockProcessor processes planar buffers in place.
type BlockProcessor interface {
	ProcessBlock(buffers [][]float32)
}

// FileSource renders a decoded file through a BlockProcessor one block at a
// time and serves the result as interleaved stereo. Mono files are
// processed as mono and duplicated to both outputs; channels beyond the
// second are ignored.
type FileSource struct {
	audio     *wav.Audio
	proc      BlockProcessor
	blockSize int

	block       [][]float32
	avail, read int

	pos      atomic.Int64 // frames handed to proc
	finished atomic.Bool
}

// NewFileSource creates a source reading a from the start. blockSize must
// not exceed the size proc was prepared for.
func NewFileSource(a *wav.Audio, proc BlockProcessor, blockSize int) (*FileSource, error) {
	if a.NumChannels() == 0 {
		return nil, ErrNoChannels
	}
	if blockSize <= 0 {
		blockSize = dsp.DefaultBufferSize
	}
	s := &FileSource{
		audio:     a,
		proc:      proc,
		blockSize: blockSize,
		block:     make([][]float32, min(a.NumChannels(), dsp.Stereo)),
	}
	for ch := range s.block {
		s.block[ch] = make([]float32, blockSize)
	}
	return s, nil
}

// Process implements SampleSource. Frames past the end of the file are
// silent.
func (s *FileSource) Process(dst []float32) {
	for i := 0; i+1 < len(dst); i += 2 {
		if s.read == s.avail && !s.fill() {
			dst[i], dst[i+1] = 0, 0
			continue
		}
		l := s.block[0][s.read]
		r := l
		if len(s.block) > 1 {
			r = s.block[1][s.read]
		}
		dst[i], dst[i+1] = l, r
		s.read++
	}
}

func (s *FileSource) fill() bool {
	start := int(s.pos.Load())
	total := s.audio.Frames()
	if start >= total {
		s.finished.Store(true)
		return false
	}

	n := min(s.blockSize, total-start)
	for ch := range s.block {
		s.block[ch] = s.block[ch][:n]
		copy(s.block[ch], s.audio.Channels[ch][start:start+n])
	}
	s.proc.ProcessBlock(s.block)

	s.avail, s.read = n, 0
	s.pos.Store(int64(start + n))
	return true
}

// Finished reports whether the whole file has been served.
func (s *FileSource) Finished() bool {
	return s.finished.Load()
}

// Progress returns the fraction of the file processed, in [0, 1].
func (s *FileSource) Progress() float64 {
	total := s.audio.Frames()
	if total == 0 {
		return 1
	}
	return float64(s.pos.Load()) / float64(total)
}

// Elapsed returns the processed duration.
func (s *FileSource) Elapsed() time.Duration {
	if s.audio.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(s.pos.Load()) / float64(s.audio.SampleRate) * float64(time.Second))
}

var _ FinishingSource = (*FileSource)(nil)
