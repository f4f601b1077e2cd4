package game

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"go.uber.org/zap"

	"github.com/gonewx/petanim/internal/sound"
)

// resampleQuality is the beep resampler quality used for samples whose
// rate differs from ToneSampleRate.
const resampleQuality = 4

// AudioManager plays the synthesized tones of sound effects.
//
// Responsibilities:
//   - synthesize each tone once and cache its PCM
//   - prefer a loaded .au sample over the synthesized tone of the same id
//   - apply the sound settings (enabled, volume) from SettingsManager
//   - keep players alive until they finish
//
// It satisfies systems.ToneSink. Without an audio context (headless runs,
// tests) tones are synthesized but not played.
type AudioManager struct {
	context         *audio.Context
	settingsManager *SettingsManager
	logger          *zap.Logger

	pcm      map[string][]byte
	samples  map[string]*sound.Sample
	players  []*audio.Player
	lastTone string
	played   int
}

// NewAudioManager creates an audio manager.
//
// Parameters:
//   - ctx: ebiten audio context at ToneSampleRate, may be nil
//   - sm: settings source, may be nil (sound always on, full volume)
//   - logger: may be nil
func NewAudioManager(ctx *audio.Context, sm *SettingsManager, logger *zap.Logger) *AudioManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AudioManager{
		context:         ctx,
		settingsManager: sm,
		logger:          logger.Named("audio"),
		pcm:             make(map[string][]byte),
		samples:         make(map[string]*sound.Sample),
	}
}

// PlayTone plays the tone of soundID. Unknown ids play DefaultTone.
func (am *AudioManager) PlayTone(soundID string) {
	if am.Muted() {
		return
	}
	if _, ok := ToneProfileFor(soundID); !ok && am.samples[soundID] == nil {
		am.logger.Debug("unknown sound id, playing default tone", zap.String("soundId", soundID))
	}

	data := am.PCM(soundID)
	am.lastTone = soundID
	am.played++

	if am.context == nil {
		return
	}
	am.prune()
	player := am.context.NewPlayerFromBytes(data)
	player.SetVolume(am.volume())
	player.Play()
	am.players = append(am.players, player)
}

// PCM returns the cached 16-bit stereo PCM of soundID at unit volume.
// Unknown ids without a sample share the default tone's cache entry.
func (am *AudioManager) PCM(soundID string) []byte {
	key := soundID
	sample := am.samples[soundID]
	if _, ok := ToneProfileFor(soundID); !ok && sample == nil {
		key = ""
	}
	if data, ok := am.pcm[key]; ok {
		return data
	}

	var data []byte
	if sample != nil {
		var s beep.Streamer = sample.Streamer()
		if sample.Format.SampleRate != ToneSampleRate {
			s = beep.Resample(resampleQuality, sample.Format.SampleRate, ToneSampleRate, s)
		}
		data = RenderPCM(s)
	} else {
		data = RenderPCM(SynthesizeTone(key, 1, beep.SampleRate(ToneSampleRate)))
	}
	am.pcm[key] = data
	return data
}

// LoadSample decodes an .au file and plays it for soundID from now on.
func (am *AudioManager) LoadSample(soundID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open sample %s: %w", path, err)
	}
	defer f.Close()

	sample, err := sound.DecodeAU(f)
	if err != nil {
		return fmt.Errorf("failed to decode sample %s: %w", path, err)
	}
	am.samples[soundID] = sample
	delete(am.pcm, soundID)
	am.logger.Debug("sample loaded",
		zap.String("soundId", soundID),
		zap.Int("sampleRate", int(sample.Format.SampleRate)),
		zap.Int("frames", sample.Len()))
	return nil
}

// LoadSamples loads every <soundId>.au file in dir. A missing directory
// loads nothing. Files that fail to decode are logged and skipped.
func (am *AudioManager) LoadSamples(dir string) int {
	paths, err := filepath.Glob(filepath.Join(dir, "*.au"))
	if err != nil {
		return 0
	}
	loaded := 0
	for _, path := range paths {
		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := am.LoadSample(id, path); err != nil {
			am.logger.Warn("skipping sample", zap.Error(err))
			continue
		}
		loaded++
	}
	return loaded
}

// Muted reports whether sound is disabled in the settings.
func (am *AudioManager) Muted() bool {
	return am.settingsManager != nil && !am.settingsManager.Settings().SoundEnabled
}

// ToggleMute flips the sound setting and returns the new muted state.
func (am *AudioManager) ToggleMute() bool {
	if am.settingsManager == nil {
		return false
	}
	am.settingsManager.SetSoundEnabled(am.Muted())
	if am.Muted() {
		am.StopAll()
	}
	return am.Muted()
}

// LastTone returns the id of the most recently played tone.
func (am *AudioManager) LastTone() string { return am.lastTone }

// Played returns how many tones were played.
func (am *AudioManager) Played() int { return am.played }

// StopAll stops every playing tone.
func (am *AudioManager) StopAll() {
	for _, p := range am.players {
		p.Pause()
		_ = p.Close()
	}
	am.players = am.players[:0]
}

func (am *AudioManager) volume() float64 {
	if am.settingsManager == nil {
		return 1
	}
	return am.settingsManager.Settings().SoundVolume
}

// prune releases players that finished.
func (am *AudioManager) prune() {
	alive := am.players[:0]
	for _, p := range am.players {
		if p.IsPlaying() {
			alive = append(alive, p)
			continue
		}
		_ = p.Close()
	}
	am.players = alive
}
