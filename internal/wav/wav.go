// Package wav reads PCM and IEEE float WAV files into planar float32
// buffers and writes 32-bit float WAV files.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

var (
	// ErrNotRIFF is returned when the input lacks a RIFF/WAVE header.
	ErrNotRIFF = errors.New("not a RIFF/WAVE file")
	// ErrUnsupportedFormat is returned for encodings other than PCM
	// 16/24/32-bit and 32-bit float.
	ErrUnsupportedFormat = errors.New("unsupported WAV format")
)

const (
	formatPCM        = 1
	formatIEEEFloat  = 3
	formatExtensible = 0xFFFE

	headerSize = 12
	chunkHead  = 8
)

// Audio is a decoded file: one slice per channel.
type Audio struct {
	SampleRate int
	Channels   [][]float32
}

// NewAudio allocates silent planar buffers.
func NewAudio(sampleRate, channels, frames int) *Audio {
	a := &Audio{SampleRate: sampleRate, Channels: make([][]float32, channels)}
	for ch := range a.Channels {
		a.Channels[ch] = make([]float32, frames)
	}
	return a
}

// NumChannels returns the channel count.
func (a *Audio) NumChannels() int {
	return len(a.Channels)
}

// Frames returns the length of each channel.
func (a *Audio) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

// Duration returns the playing time.
func (a *Audio) Duration() time.Duration {
	if a.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(a.Frames()) / float64(a.SampleRate) * float64(time.Second))
}

type format struct {
	code          uint16
	channels      int
	sampleRate    int
	bitsPerSample int
}

func (f format) bytesPerSample() int {
	return f.bitsPerSample / 8
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) (*Audio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	a, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// Decode reads a complete WAV stream.
func Decode(r io.Reader) (*Audio, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (*Audio, error) {
	if len(data) < headerSize || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, ErrNotRIFF
	}

	var (
		f       format
		haveFmt bool
		pcm     []byte
		found   bool
	)

	pos := headerSize
	for pos+chunkHead <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4:]))
		body := data[pos+chunkHead:]
		if size > len(body) {
			// Truncated final chunk; keep what is there
			size = len(body)
		}
		body = body[:size]

		switch id {
		case "fmt ":
			parsed, err := parseFormat(body)
			if err != nil {
				return nil, err
			}
			f, haveFmt = parsed, true
		case "data":
			pcm, found = body, true
		}

		pos += chunkHead + size + size&1
	}

	if !haveFmt {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrUnsupportedFormat)
	}
	if !found {
		return nil, fmt.Errorf("%w: missing data chunk", ErrUnsupportedFormat)
	}
	return decodeSamples(f, pcm)
}

func parseFormat(body []byte) (format, error) {
	if len(body) < 16 {
		return format{}, fmt.Errorf("%w: fmt chunk too short", ErrUnsupportedFormat)
	}
	f := format{
		code:          binary.LittleEndian.Uint16(body[0:]),
		channels:      int(binary.LittleEndian.Uint16(body[2:])),
		sampleRate:    int(binary.LittleEndian.Uint32(body[4:])),
		bitsPerSample: int(binary.LittleEndian.Uint16(body[14:])),
	}
	if f.code == formatExtensible {
		if len(body) < 26 {
			return format{}, fmt.Errorf("%w: extensible fmt chunk too short", ErrUnsupportedFormat)
		}
		// The sub-format GUID starts with the plain format code
		f.code = binary.LittleEndian.Uint16(body[24:])
	}

	if f.channels < 1 || f.sampleRate < 1 {
		return format{}, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, f.channels, f.sampleRate)
	}
	switch {
	case f.code == formatPCM && (f.bitsPerSample == 16 || f.bitsPerSample == 24 || f.bitsPerSample == 32):
	case f.code == formatIEEEFloat && f.bitsPerSample == 32:
	default:
		return format{}, fmt.Errorf("%w: format %d, %d bits", ErrUnsupportedFormat, f.code, f.bitsPerSample)
	}
	return f, nil
}

func decodeSamples(f format, pcm []byte) (*Audio, error) {
	width := f.bytesPerSample()
	frameSize := width * f.channels
	frames := len(pcm) / frameSize

	a := NewAudio(f.sampleRate, f.channels, frames)
	read := sampleReader(f)
	for i := 0; i < frames; i++ {
		frame := pcm[i*frameSize:]
		for ch := 0; ch < f.channels; ch++ {
			a.Channels[ch][i] = read(frame[ch*width:])
		}
	}
	return a, nil
}

func sampleReader(f format) func([]byte) float32 {
	if f.code == formatIEEEFloat {
		return func(b []byte) float32 {
			return math.Float32frombits(binary.LittleEndian.Uint32(b))
		}
	}
	switch f.bitsPerSample {
	case 16:
		return func(b []byte) float32 {
			return float32(int16(binary.LittleEndian.Uint16(b))) / 32768
		}
	case 24:
		return func(b []byte) float32 {
			v := int32(b[0]) | int32(b[1])<<8 | int32(int8(b[2]))<<16
			return float32(v) / 8388608
		}
	default:
		return func(b []byte) float32 {
			return float32(float64(int32(binary.LittleEndian.Uint32(b))) / 2147483648)
		}
	}
}

// Encode writes a as a 32-bit IEEE float WAV file.
func Encode(w io.Writer, a *Audio) error {
	channels := a.NumChannels()
	if channels == 0 {
		return fmt.Errorf("%w: no channels", ErrUnsupportedFormat)
	}
	frames := a.Frames()
	for ch, buf := range a.Channels {
		if len(buf) != frames {
			return fmt.Errorf("channel %d has %d frames, want %d", ch, len(buf), frames)
		}
	}

	dataSize := frames * channels * 4
	blockAlign := channels * 4

	hdr := make([]byte, 44)
	copy(hdr[0:], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:], uint32(36+dataSize))
	copy(hdr[8:], "WAVE")
	copy(hdr[12:], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:], 16)
	binary.LittleEndian.PutUint16(hdr[20:], formatIEEEFloat)
	binary.LittleEndian.PutUint16(hdr[22:], uint16(channels))
	binary.LittleEndian.PutUint32(hdr[24:], uint32(a.SampleRate))
	binary.LittleEndian.PutUint32(hdr[28:], uint32(a.SampleRate*blockAlign))
	binary.LittleEndian.PutUint16(hdr[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:], 32)
	copy(hdr[36:], "data")
	binary.LittleEndian.PutUint32(hdr[40:], uint32(dataSize))
	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	body := make([]byte, dataSize)
	for i := 0; i < frames; i++ {
		for ch, buf := range a.Channels {
			binary.LittleEndian.PutUint32(body[(i*channels+ch)*4:], math.Float32bits(buf[i]))
		}
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	return nil
}

// WriteFile encodes a to path.
func WriteFile(path string, a *Audio) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, a); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
