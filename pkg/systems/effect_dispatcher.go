package systems

import (
	"image/color"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/gonewx/petanim/internal/particle"
	"github.com/gonewx/petanim/pkg/config"
	"github.com/gonewx/petanim/pkg/types"
)

// ToneSink plays a short synthesized tone. Unknown ids, including "",
// must fall back to a default tone.
type ToneSink interface {
	PlayTone(soundID string)
}

// Presenter receives screen-level effect requests. The engine only
// signals intent; drawing is the presenter's business.
type Presenter interface {
	ScreenShake(intensity float64, duration time.Duration)
	ColorFlash(c color.RGBA, duration time.Duration)
}

type nopToneSink struct{}

func (nopToneSink) PlayTone(string) {}

type nopPresenter struct{}

func (nopPresenter) ScreenShake(float64, time.Duration)   {}
func (nopPresenter) ColorFlash(color.RGBA, time.Duration) {}

// Fallbacks for screen effects declared without parameters.
const (
	defaultShakeIntensity = 5.0
	defaultShakeDuration  = 300 * time.Millisecond
	defaultFlashDuration  = 200 * time.Millisecond
)

// EffectOrigin says who fired an effect and where particles should appear.
type EffectOrigin struct {
	Source string
	X, Y   float64
}

type effectHandler func(origin EffectOrigin, params map[string]any)

// EffectDispatcher routes fired effects to the particle simulator, the
// tone sink or the presenter.
type EffectDispatcher struct {
	particles *ParticleSystem
	tones     ToneSink
	presenter Presenter
	tuning    config.ParticleTuning
	rng       *rand.Rand
	logger    *zap.Logger

	handlers map[types.EffectKind]effectHandler
}

// NewEffectDispatcher wires a dispatcher. Nil sinks become no-ops.
func NewEffectDispatcher(particles *ParticleSystem, tones ToneSink, presenter Presenter, tuning config.ParticleTuning, logger *zap.Logger) *EffectDispatcher {
	if tones == nil {
		tones = nopToneSink{}
	}
	if presenter == nil {
		presenter = nopPresenter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &EffectDispatcher{
		particles: particles,
		tones:     tones,
		presenter: presenter,
		tuning:    tuning,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:    logger.Named("effects"),
	}
	d.handlers = map[types.EffectKind]effectHandler{
		types.EffectParticle:    d.spawnParticles,
		types.EffectSound:       d.playSound,
		types.EffectScreenShake: d.screenShake,
		types.EffectColorFlash:  d.colorFlash,
	}
	return d
}

// Dispatch runs the handler of effect's kind. Effects of unknown kind are
// ignored and reported as not dispatched.
func (d *EffectDispatcher) Dispatch(origin EffectOrigin, effect config.EffectDeclaration) bool {
	kind := effect.Kind
	if kind == types.EffectUnknown {
		kind, _ = types.ParseEffectKind(effect.Type)
	}
	handler, ok := d.handlers[kind]
	if !ok {
		d.logger.Debug("ignoring effect of unknown kind",
			zap.String("source", origin.Source),
			zap.String("type", effect.Type))
		return false
	}
	handler(origin, effect.Params)
	return true
}

func (d *EffectDispatcher) spawnParticles(origin EffectOrigin, params map[string]any) {
	if d.particles == nil {
		return
	}
	count := d.tuning.DefaultCount
	if v, ok := d.number(params, "count"); ok && !math.IsNaN(v) {
		count = int(math.Round(math.Min(v, config.MaxParticleCount)))
	}
	if count > config.MaxParticleCount {
		count = config.MaxParticleCount
	}
	size := d.tuning.DefaultSize
	if v, ok := d.number(params, "size"); ok && v > 0 {
		size = math.Min(v, config.MaxParticleSize)
	}
	c := d.color(params, "color", d.defaultColor())

	d.particles.SpawnAt(origin.Source, origin.X, origin.Y, count, c, size, nil)
}

func (d *EffectDispatcher) playSound(_ EffectOrigin, params map[string]any) {
	id, _ := params["soundId"].(string)
	d.tones.PlayTone(id)
}

func (d *EffectDispatcher) screenShake(_ EffectOrigin, params map[string]any) {
	intensity := defaultShakeIntensity
	if v, ok := d.number(params, "intensity"); ok {
		intensity = v
	}
	d.presenter.ScreenShake(intensity, d.duration(params, defaultShakeDuration))
}

func (d *EffectDispatcher) colorFlash(_ EffectOrigin, params map[string]any) {
	c := d.color(params, "color", color.RGBA{R: 255, G: 255, B: 255, A: 255})
	d.presenter.ColorFlash(c, d.duration(params, defaultFlashDuration))
}

// number reads a numeric parameter. Range strings such as "[3 8]" are
// sampled.
func (d *EffectDispatcher) number(params map[string]any, key string) (float64, bool) {
	raw, ok := params[key]
	if !ok {
		return 0, false
	}
	v, ok := particle.ResolveNumber(raw, d.rng)
	if !ok {
		d.logger.Debug("unusable effect parameter", zap.String("key", key), zap.Any("value", raw))
	}
	return v, ok
}

// duration reads the "duration" parameter as milliseconds.
func (d *EffectDispatcher) duration(params map[string]any, fallback time.Duration) time.Duration {
	ms, ok := d.number(params, "duration")
	if !ok || ms <= 0 {
		return fallback
	}
	return time.Duration(ms * float64(time.Millisecond))
}

func (d *EffectDispatcher) color(params map[string]any, key string, fallback color.RGBA) color.RGBA {
	s, ok := params[key].(string)
	if !ok {
		return fallback
	}
	r, g, b, a, err := particle.ParseHexColor(s)
	if err != nil {
		d.logger.Debug("bad effect color", zap.String("value", s), zap.Error(err))
		return fallback
	}
	return color.RGBA{R: r, G: g, B: b, A: a}
}

func (d *EffectDispatcher) defaultColor() color.RGBA {
	r, g, b, a, err := particle.ParseHexColor(d.tuning.DefaultColor)
	if err != nil {
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return color.RGBA{R: r, G: g, B: b, A: a}
}
