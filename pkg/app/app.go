// Package app is the desktop pet viewer.
//
// It wires the engine to ebiten: atlases from the resource manager, tones
// through the audio manager, shake and flash through the screen effects,
// and viewer settings persisted with gdata.
package app

import (
	"context"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"

	"github.com/gonewx/petanim/pkg/config"
	"github.com/gonewx/petanim/pkg/ecs"
	"github.com/gonewx/petanim/pkg/effects"
	"github.com/gonewx/petanim/pkg/embedded"
	"github.com/gonewx/petanim/pkg/engine"
	"github.com/gonewx/petanim/pkg/game"
	"github.com/gonewx/petanim/pkg/logging"
	"github.com/gonewx/petanim/pkg/render"
)

// Logical screen size.
const (
	ScreenWidth  = 800
	ScreenHeight = 600
)

// soundsDir holds <soundId>.au samples, relative to Config.AssetsDir.
const soundsDir = "sounds"

// placeholderCell is the cell size of generated atlases.
const placeholderCell = 64

// frameStep is the fixed host frame: ebiten calls Update at 60 TPS.
const frameStep = time.Second / 60

var background = color.RGBA{R: 0x20, G: 0x22, B: 0x2A, A: 0xFF}

// Config defines the viewer start-up options.
type Config struct {
	// Verbose enables debug logging
	Verbose bool
	// CatalogPath is a catalog file on disk; empty uses the bundled catalog
	CatalogPath string
	// ConfigPath is an engine tuning file; empty uses the bundled tuning
	ConfigPath string
	// AssetsDir resolves relative atlas paths in the catalog
	AssetsDir string
	// Watch hot-reloads CatalogPath when it changes
	Watch bool
	// Pet is the pet shown first; empty uses the last one from settings
	Pet string
}

// Deps are the collaborators NewApp builds for a real window. Tests pass
// their own.
type Deps struct {
	Logger   *zap.Logger
	Catalog  *config.Catalog
	Engine   *config.EngineConfig
	Settings *game.SettingsManager
	Audio    *game.AudioManager
	Atlases  *game.ResourceManager
	Watcher  *config.CatalogWatcher
}

// App implements ebiten.Game.
type App struct {
	logger   *zap.Logger
	engine   *engine.Engine
	settings *game.SettingsManager
	audio    *game.AudioManager
	fx       *effects.ScreenEffects
	renderer *render.EbitenRenderer
	watcher  *config.CatalogWatcher

	pets   []string
	pet    int
	entity ecs.EntityID
	status string
}

// NewApp loads everything the viewer needs.
//
// embedded.Init must be called first when CatalogPath or ConfigPath is empty.
func NewApp(cfg Config) (*App, error) {
	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	catalog, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	tuning, err := loadEngineConfig(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}

	storage, err := gdata.Open(gdata.Config{AppName: "petanim"})
	if err != nil {
		// settings then live in memory only
		logger.Warn("settings storage unavailable", zap.Error(err))
		storage = nil
	}
	settings := game.NewSettingsManager(storage, logger)

	audioContext := audio.NewContext(game.ToneSampleRate)
	audioManager := game.NewAudioManager(audioContext, settings, logger)
	if n := audioManager.LoadSamples(filepath.Join(cfg.AssetsDir, soundsDir)); n > 0 {
		logger.Info("sound samples loaded", zap.Int("count", n))
	}

	deps := Deps{
		Logger:   logger,
		Catalog:  catalog,
		Engine:   tuning,
		Settings: settings,
		Audio:    audioManager,
		Atlases:  game.NewResourceManager(cfg.AssetsDir, logger),
	}

	if cfg.Watch && cfg.CatalogPath != "" {
		watcher, err := config.WatchCatalog(cfg.CatalogPath)
		if err != nil {
			logger.Warn("catalog hot reload disabled", zap.Error(err))
		} else {
			deps.Watcher = watcher
		}
	}

	return New(deps, cfg.Pet)
}

// New assembles a viewer from ready collaborators and shows pet (or the
// remembered pet, or the first one).
func New(deps Deps, pet string) (*App, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := deps.Settings
	if settings == nil {
		settings = game.NewSettingsManager(nil, logger)
	}
	audioManager := deps.Audio
	if audioManager == nil {
		audioManager = game.NewAudioManager(nil, settings, logger)
	}

	fx := effects.NewScreenEffects(nil)
	eng, err := engine.New(engine.Options{
		Catalog:   deps.Catalog,
		Config:    deps.Engine,
		Logger:    logger,
		Tones:     audioManager,
		Presenter: fx,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		logger:   logger.Named("app"),
		engine:   eng,
		settings: settings,
		audio:    audioManager,
		fx:       fx,
		renderer: render.NewEbitenRenderer(fx),
		watcher:  deps.Watcher,
	}
	a.renderer.ShakeEnabled = settings.Settings().ShakeEnabled

	if err := a.installAtlases(deps.Atlases, deps.Catalog); err != nil {
		return nil, err
	}

	a.pets = deps.Catalog.IDs()
	if len(a.pets) == 0 {
		return nil, fmt.Errorf("app: catalog has no pets")
	}
	if pet == "" {
		pet = settings.Settings().LastPet
	}
	a.pet = 0
	for i, id := range a.pets {
		if id == pet {
			a.pet = i
		}
	}
	a.showPet()
	return a, nil
}

// installAtlases loads every atlas the catalog names and generates
// placeholders for the other pets.
func (a *App) installAtlases(rm *game.ResourceManager, catalog *config.Catalog) error {
	if rm != nil {
		loaded, err := rm.LoadAtlases(context.Background(), catalog)
		if err != nil {
			return err
		}
		for id, atlas := range loaded {
			a.engine.RegisterAtlas(id, atlas)
		}
	}
	for _, id := range catalog.IDs() {
		if _, ok := a.engine.Atlas(id); ok {
			continue
		}
		pet, _ := catalog.Pet(id)
		atlas, err := game.PlaceholderAtlas(pet, placeholderCell)
		if err != nil {
			return err
		}
		a.engine.RegisterAtlas(id, atlas)
	}
	return nil
}

// showPet replaces the entity on screen with one of the selected pet and
// starts its idle animation when it has one.
func (a *App) showPet() {
	if a.entity != "" {
		a.engine.RemoveEntity(a.entity)
	}
	typeID := a.pets[a.pet]
	id, err := a.engine.AddEntity(typeID)
	if err != nil {
		a.logger.Warn("failed to add pet", zap.String("pet", typeID), zap.Error(err))
		return
	}
	a.entity = id
	a.engine.SetAnchor(id, ScreenWidth/2, ScreenHeight/2)
	a.engine.StartAnimation(id, "idle")
	a.settings.SetLastPet(typeID)
	a.status = typeID
}

// CurrentPet returns the type id on screen.
func (a *App) CurrentPet() string { return a.pets[a.pet] }

// Engine exposes the engine for tests and embedding hosts.
func (a *App) Engine() *engine.Engine { return a.engine }

// Entity returns the entity on screen.
func (a *App) Entity() ecs.EntityID { return a.entity }

// Animations returns the animation keys of the current pet, in the order
// the number keys select them.
func (a *App) Animations() []string {
	pet, ok := a.engine.Catalog().Pet(a.CurrentPet())
	if !ok {
		return nil
	}
	return pet.AnimationNames()
}

// Play starts the animation bound to number key index+1.
func (a *App) Play(index int) bool {
	names := a.Animations()
	if index < 0 || index >= len(names) {
		return false
	}
	ok := a.engine.StartAnimation(a.entity, names[index])
	if ok {
		a.status = fmt.Sprintf("%s: %s", a.CurrentPet(), names[index])
	}
	return ok
}

// SwitchPet moves delta pets forward or back, wrapping around.
func (a *App) SwitchPet(delta int) {
	n := len(a.pets)
	a.pet = ((a.pet+delta)%n + n) % n
	a.showPet()
}

// Stop stops the current animation.
func (a *App) Stop() {
	a.engine.StopAnimation(a.entity)
	a.status = a.CurrentPet() + ": stopped"
}

// ToggleMute flips the sound setting.
func (a *App) ToggleMute() bool {
	muted := a.audio.ToggleMute()
	if muted {
		a.status = "muted"
	} else {
		a.status = "sound on"
	}
	return muted
}

// ClearParticles removes every particle.
func (a *App) ClearParticles() {
	a.engine.ClearParticles()
}

// ApplyCatalog swaps in a reloaded catalog. Pets that disappeared fall
// back to the first pet.
func (a *App) ApplyCatalog(catalog *config.Catalog) error {
	if len(catalog.IDs()) == 0 {
		return fmt.Errorf("app: catalog has no pets")
	}
	a.engine.SetCatalog(catalog)
	if err := a.installAtlases(nil, catalog); err != nil {
		return err
	}

	current := a.CurrentPet()
	a.pets = catalog.IDs()
	a.pet = 0
	for i, id := range a.pets {
		if id == current {
			a.pet = i
			a.status = "catalog reloaded"
			return nil
		}
	}
	a.showPet()
	a.status = "catalog reloaded"
	return nil
}

// Step advances the world by dt without reading input.
func (a *App) Step(dt time.Duration) {
	a.pollWatcher()
	a.engine.Update(dt)
	a.fx.Update(dt)
}

func (a *App) pollWatcher() {
	if a.watcher == nil {
		return
	}
	select {
	case catalog, ok := <-a.watcher.Catalogs:
		if ok {
			if err := a.ApplyCatalog(catalog); err != nil {
				a.logger.Warn("reloaded catalog rejected", zap.Error(err))
			}
		}
	case err, ok := <-a.watcher.Errors:
		if ok {
			a.logger.Warn("catalog reload failed, keeping the previous one", zap.Error(err))
			a.status = "reload failed"
		}
	default:
	}
}

// Update implements ebiten.Game.
func (a *App) Update() error {
	a.handleInput()
	a.Step(frameStep)
	return nil
}

func (a *App) handleInput() {
	for i := 0; i < 9; i++ {
		if inpututil.IsKeyJustPressed(ebiten.Key1 + ebiten.Key(i)) {
			a.Play(i)
		}
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		a.SwitchPet(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		a.SwitchPet(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		a.Stop()
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		a.ToggleMute()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		a.ClearParticles()
	case inpututil.IsKeyJustPressed(ebiten.KeyF11):
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
}

// Draw implements ebiten.Game.
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	frame := a.engine.Render(a.entity)
	a.renderer.Draw(screen, frame, ScreenWidth/2, ScreenHeight/2, a.settings.Settings().Scale)
	ebitenutil.DebugPrint(screen, a.helpText())
}

func (a *App) helpText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", a.status)
	for i, name := range a.Animations() {
		if i >= 9 {
			break
		}
		fmt.Fprintf(&b, "%d: %s\n", i+1, name)
	}
	b.WriteString("<-/->: pet  S: stop  M: mute  R: clear particles  F11: fullscreen")
	return b.String()
}

// Layout implements ebiten.Game.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// Close saves the settings and releases the watcher and audio players.
func (a *App) Close() error {
	a.audio.StopAll()
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	if err := a.settings.Save(); err != nil {
		return err
	}
	_ = a.logger.Sync()
	return nil
}

func loadCatalog(path string) (*config.Catalog, error) {
	if path == "" {
		return embedded.DefaultCatalog()
	}
	return config.LoadCatalog(path)
}

func loadEngineConfig(path string) (*config.EngineConfig, error) {
	if path == "" {
		return embedded.DefaultEngineConfig()
	}
	return config.LoadEngineConfig(path)
}
