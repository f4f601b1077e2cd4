package termview

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/gonewx/petanim/pkg/ecs"
	"github.com/gonewx/petanim/pkg/engine"
)

// FrameInterval is the watch loop tick, about 60 FPS.
const FrameInterval = 16 * time.Millisecond

// Watch plays one animation of one entity until the user quits or ctx is
// done. The engine must already know the entity. The caller owns screen
// (Init and Fini).
//
// Keys: space or r restarts, s stops, c clears particles, q/Esc/Ctrl-C quits.
type Watch struct {
	Screen    tcell.Screen
	Engine    *engine.Engine
	Renderer  *Renderer
	Entity    ecs.EntityID
	Animation string

	// Anchor is the entity position in world pixels.
	AnchorX, AnchorY float64
}

// Run drives the loop.
func (w *Watch) Run(ctx context.Context) error {
	w.Engine.SetAnchor(w.Entity, w.AnchorX, w.AnchorY)
	w.Engine.StartAnimation(w.Entity, w.Animation)

	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := w.Screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-events:
			if !w.handleEvent(ev) {
				return nil
			}

		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			w.Step(dt)
		}
	}
}

// Step advances the engine by dt and redraws.
func (w *Watch) Step(dt time.Duration) {
	w.Engine.Update(dt)
	if w.Renderer.Effects != nil {
		w.Renderer.Effects.Update(dt)
	}
	w.Renderer.Draw(w.Engine.Render(w.Entity), w.AnchorX, w.AnchorY)
	w.Screen.Show()
}

func (w *Watch) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ', 'r':
				w.Engine.StartAnimation(w.Entity, w.Animation)
			case 's':
				w.Engine.StopAnimation(w.Entity)
			case 'c':
				w.Engine.ClearParticles()
			}
		}
	case *tcell.EventResize:
		w.Screen.Sync()
	}
	return true
}
