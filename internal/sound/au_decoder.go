// Package sound decodes Sun/NeXT audio (.au) samples into beep streams.
package sound

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/gopxl/beep"
)

// AU file header structure (24 bytes minimum)
type auHeader struct {
	Magic      uint32 // 0x2e736e64 (".snd")
	DataOffset uint32 // Offset to audio data (typically 24)
	DataSize   uint32 // Size of audio data in bytes (0xFFFFFFFF if unknown)
	Encoding   uint32 // Audio encoding format
	SampleRate uint32 // Sample rate in Hz
	Channels   uint32 // Number of interleaved channels
}

const (
	auMagic         = 0x2e736e64 // ".snd" in big-endian
	auEncodingULaw  = 1          // 8-bit μ-law
	auEncodingPCM16 = 3          // 16-bit linear PCM, big-endian
	auUnknownSize   = 0xFFFFFFFF
)

// μ-law decompression table (converts μ-law byte to 16-bit PCM)
var mulawTable = [256]int16{
	-32124, -31100, -30076, -29052, -28028, -27004, -25980, -24956,
	-23932, -22908, -21884, -20860, -19836, -18812, -17788, -16764,
	-15996, -15484, -14972, -14460, -13948, -13436, -12924, -12412,
	-11900, -11388, -10876, -10364, -9852, -9340, -8828, -8316,
	-7932, -7676, -7420, -7164, -6908, -6652, -6396, -6140,
	-5884, -5628, -5372, -5116, -4860, -4604, -4348, -4092,
	-3900, -3772, -3644, -3516, -3388, -3260, -3132, -3004,
	-2876, -2748, -2620, -2492, -2364, -2236, -2108, -1980,
	-1884, -1820, -1756, -1692, -1628, -1564, -1500, -1436,
	-1372, -1308, -1244, -1180, -1116, -1052, -988, -924,
	-876, -844, -812, -780, -748, -716, -684, -652,
	-620, -588, -556, -524, -492, -460, -428, -396,
	-372, -356, -340, -324, -308, -292, -276, -260,
	-244, -228, -212, -196, -180, -164, -148, -132,
	-120, -112, -104, -96, -88, -80, -72, -64,
	-56, -48, -40, -32, -24, -16, -8, 0,
	32124, 31100, 30076, 29052, 28028, 27004, 25980, 24956,
	23932, 22908, 21884, 20860, 19836, 18812, 17788, 16764,
	15996, 15484, 14972, 14460, 13948, 13436, 12924, 12412,
	11900, 11388, 10876, 10364, 9852, 9340, 8828, 8316,
	7932, 7676, 7420, 7164, 6908, 6652, 6396, 6140,
	5884, 5628, 5372, 5116, 4860, 4604, 4348, 4092,
	3900, 3772, 3644, 3516, 3388, 3260, 3132, 3004,
	2876, 2748, 2620, 2492, 2364, 2236, 2108, 1980,
	1884, 1820, 1756, 1692, 1628, 1564, 1500, 1436,
	1372, 1308, 1244, 1180, 1116, 1052, 988, 924,
	876, 844, 812, 780, 748, 716, 684, 652,
	620, 588, 556, 524, 492, 460, 428, 396,
	372, 356, 340, 324, 308, 292, 276, 260,
	244, 228, 212, 196, 180, 164, 148, 132,
	120, 112, 104, 96, 88, 80, 72, 64,
	56, 48, 40, 32, 24, 16, 8, 0,
}

// Sample is a decoded sound held in memory as stereo frames in [-1, 1].
type Sample struct {
	Format beep.Format
	frames [][2]float64
}

// DecodeAU decodes a μ-law or 16-bit PCM .au file. Mono files are
// duplicated onto both channels.
func DecodeAU(r io.Reader) (*Sample, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read AU file: %w", err)
	}
	if len(data) < 24 {
		return nil, fmt.Errorf("AU file too short: %d bytes (minimum 24)", len(data))
	}

	var header auHeader
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read AU header: %w", err)
	}
	if header.Magic != auMagic {
		return nil, fmt.Errorf("invalid AU magic number: 0x%08x (expected 0x%08x)", header.Magic, auMagic)
	}
	if header.Channels < 1 || header.Channels > 2 {
		return nil, fmt.Errorf("unsupported channel count: %d (only 1-2 supported)", header.Channels)
	}
	if header.SampleRate == 0 {
		return nil, fmt.Errorf("invalid sample rate: 0")
	}

	offset := int(header.DataOffset)
	if offset < 24 || offset > len(data) {
		return nil, fmt.Errorf("invalid data offset: %d (file size: %d)", offset, len(data))
	}
	payload := data[offset:]
	if header.DataSize != auUnknownSize && int(header.DataSize) < len(payload) {
		payload = payload[:header.DataSize]
	}

	var values []float64
	switch header.Encoding {
	case auEncodingULaw:
		values = make([]float64, len(payload))
		for i, b := range payload {
			values[i] = float64(mulawTable[b]) / math.MaxInt16
		}
	case auEncodingPCM16:
		values = make([]float64, len(payload)/2)
		for i := range values {
			v := int16(binary.BigEndian.Uint16(payload[i*2:]))
			values[i] = float64(v) / math.MaxInt16
		}
	default:
		return nil, fmt.Errorf("unsupported AU encoding: %d (μ-law [1] and PCM16 [3] are supported)", header.Encoding)
	}

	channels := int(header.Channels)
	frames := make([][2]float64, len(values)/channels)
	for i := range frames {
		left := values[i*channels]
		right := left
		if channels == 2 {
			right = values[i*channels+1]
		}
		frames[i] = [2]float64{left, right}
	}

	precision := 1
	if header.Encoding == auEncodingPCM16 {
		precision = 2
	}
	return &Sample{
		Format: beep.Format{
			SampleRate:  beep.SampleRate(header.SampleRate),
			NumChannels: channels,
			Precision:   precision,
		},
		frames: frames,
	}, nil
}

// Len returns the number of frames.
func (s *Sample) Len() int { return len(s.frames) }

// Streamer returns a fresh stream over the sample.
func (s *Sample) Streamer() beep.StreamSeeker {
	return &sampleStreamer{frames: s.frames}
}

type sampleStreamer struct {
	frames [][2]float64
	pos    int
}

func (st *sampleStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if st.pos >= len(st.frames) {
		return 0, false
	}
	n = copy(samples, st.frames[st.pos:])
	st.pos += n
	return n, true
}

func (st *sampleStreamer) Err() error    { return nil }
func (st *sampleStreamer) Len() int      { return len(st.frames) }
func (st *sampleStreamer) Position() int { return st.pos }

func (st *sampleStreamer) Seek(p int) error {
	if p < 0 || p > len(st.frames) {
		return fmt.Errorf("seek position %d out of range [0, %d]", p, len(st.frames))
	}
	st.pos = p
	return nil
}
