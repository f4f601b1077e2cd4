package game

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// ToneSampleRate is the rate tones are synthesized at. The viewer's audio
// context must use the same rate.
const ToneSampleRate = 44100

// Every tone lasts toneLength and fades from toneGainStart to toneGainEnd
// exponentially.
const (
	toneLength    = 500 * time.Millisecond
	toneGainStart = 0.1
	toneGainEnd   = 0.01
)

// ToneProfile is an exponential frequency sweep from StartHz to EndHz over
// Sweep; after Sweep the tone holds EndHz.
type ToneProfile struct {
	StartHz float64
	EndHz   float64
	Sweep   time.Duration
}

var toneProfiles = map[string]ToneProfile{
	"fire_breath":  {StartHz: 200, EndHz: 50, Sweep: 500 * time.Millisecond},
	"water_splash": {StartHz: 800, EndHz: 200, Sweep: 300 * time.Millisecond},
}

// DefaultTone is played for unknown sound ids.
var DefaultTone = ToneProfile{StartHz: 440, EndHz: 440}

// ToneProfileFor returns the profile of soundID, or DefaultTone with
// ok=false when the id is unknown.
func ToneProfileFor(soundID string) (ToneProfile, bool) {
	p, ok := toneProfiles[soundID]
	if !ok {
		return DefaultTone, false
	}
	return p, true
}

// sweepOscillator is a sine oscillator whose frequency ramps exponentially.
type sweepOscillator struct {
	profile  ToneProfile
	phase    float64
	position int
	sweep    int
	duration int
	rate     beep.SampleRate
}

func newSweepOscillator(p ToneProfile, duration time.Duration, rate beep.SampleRate) beep.Streamer {
	return &sweepOscillator{
		profile:  p,
		sweep:    rate.N(p.Sweep),
		duration: rate.N(duration),
		rate:     rate,
	}
}

func (o *sweepOscillator) freq() float64 {
	p := o.profile
	if o.sweep <= 0 || o.position >= o.sweep || p.StartHz <= 0 || p.EndHz <= 0 {
		return p.EndHz
	}
	t := float64(o.position) / float64(o.sweep)
	return p.StartHz * math.Pow(p.EndHz/p.StartHz, t)
}

func (o *sweepOscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}
		val := math.Sin(2 * math.Pi * o.phase)
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq() / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *sweepOscillator) Err() error { return nil }

// expGain fades a stream exponentially from `from` to `to` over its length.
type expGain struct {
	streamer beep.Streamer
	from, to float64
	position int
	total    int
}

func (g *expGain) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = g.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		t := float64(g.position) / float64(g.total)
		if t > 1 {
			t = 1
		}
		gain := g.from * math.Pow(g.to/g.from, t)
		samples[i][0] *= gain
		samples[i][1] *= gain
		g.position++
	}
	return n, ok
}

func (g *expGain) Err() error { return g.streamer.Err() }

// newVolume scales a stream linearly by vol; zero or less is silence.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// SynthesizeTone builds the streamer of soundID at the given volume.
func SynthesizeTone(soundID string, volume float64, rate beep.SampleRate) beep.Streamer {
	profile, _ := ToneProfileFor(soundID)
	osc := newSweepOscillator(profile, toneLength, rate)
	shaped := &expGain{
		streamer: osc,
		from:     toneGainStart,
		to:       toneGainEnd,
		total:    rate.N(toneLength),
	}
	return newVolume(shaped, volume)
}

// RenderPCM drains s into signed 16-bit little-endian stereo PCM.
func RenderPCM(s beep.Streamer) []byte {
	var out []byte
	buf := make([][2]float64, 512)
	frame := make([]byte, 4)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			binary.LittleEndian.PutUint16(frame[0:], uint16(toInt16(buf[i][0])))
			binary.LittleEndian.PutUint16(frame[2:], uint16(toInt16(buf[i][1])))
			out = append(out, frame...)
		}
		if !ok || n == 0 {
			return out
		}
	}
}

func toInt16(v float64) int16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(v * math.MaxInt16)
}
