package main

import (
	"fmt"
	"image/color"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gonewx/petanim/pkg/config"
	"github.com/gonewx/petanim/pkg/engine"
	"github.com/gonewx/petanim/pkg/systems"
)

// maxSimulatedTicks bounds a looping animation run without --ticks.
const maxSimulatedTicks = 1000

// effectLog records tones and screen effects so they print under the
// tick that caused them.
type effectLog struct{ lines []string }

func (l *effectLog) PlayTone(soundID string) {
	l.lines = append(l.lines, "tone "+soundID)
}

func (l *effectLog) ScreenShake(intensity float64, d time.Duration) {
	l.lines = append(l.lines, fmt.Sprintf("shake %.1f for %v", intensity, d))
}

func (l *effectLog) ColorFlash(c color.RGBA, d time.Duration) {
	l.lines = append(l.lines, fmt.Sprintf("flash #%02X%02X%02X for %v", c.R, c.G, c.B, d))
}

func (l *effectLog) flush(out io.Writer) {
	for _, line := range l.lines {
		fmt.Fprintf(out, "      > %s\n", line)
	}
	l.lines = l.lines[:0]
}

func (c *cli) simulateCmd() *cobra.Command {
	var (
		dt     time.Duration
		ticks  int
		seed   int64
		dedupe bool
	)
	cmd := &cobra.Command{
		Use:   "simulate <pet> <animation>",
		Short: "Tick one animation headlessly and print every frame",
		Long: "Runs the animation with a fixed time step. Without --ticks a one-shot\n" +
			"animation runs until it completes and a looping one for one cycle.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dt <= 0 {
				return fmt.Errorf("--dt must be positive, got %v", dt)
			}
			catalog, err := c.loadCatalog()
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dedupe") {
				cfg.Effects.Dedupe = dedupe
			}

			fx := &effectLog{}
			eng, err := engine.New(engine.Options{
				Catalog:   catalog,
				Config:    cfg,
				Logger:    c.log(),
				Tones:     fx,
				Presenter: fx,
				Rand:      rand.New(rand.NewSource(seed)),
			})
			if err != nil {
				return err
			}
			return simulate(cmd.OutOrStdout(), eng, fx, args[0], args[1], dt, ticks)
		},
	}
	cmd.Flags().DurationVar(&dt, "dt", 16*time.Millisecond, "Time step per tick")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "Number of ticks (0: until completion or one loop cycle)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Particle random seed")
	cmd.Flags().BoolVar(&dedupe, "dedupe", false, "Fire each effect at most once per cycle")
	return cmd
}

func simulate(out io.Writer, eng *engine.Engine, fx *effectLog, petID, animation string, dt time.Duration, ticks int) error {
	id, err := eng.AddEntity(petID)
	if err != nil {
		return err
	}
	if !eng.StartAnimation(id, animation) {
		return fmt.Errorf("pet %q has no animation %q", petID, animation)
	}
	start, _ := eng.AnimationState(id)

	fmt.Fprintf(out, "%s/%s: %d frames of %v, loop=%v, dt=%v\n",
		petID, animation, start.TotalFrames, start.FrameTime, start.Loop, dt)
	fmt.Fprintf(out, "%4s  %5s  %8s  %-10s  %9s  %s\n", "tick", "frame", "progress", "status", "particles", "fired")

	limit := ticks
	if limit <= 0 {
		limit = maxSimulatedTicks
	}
	for tick := 1; tick <= limit; tick++ {
		res := eng.UpdateAnimation(id, dt)
		eng.UpdateParticles(dt)

		state, _ := eng.AnimationState(id)
		fmt.Fprintf(out, "%4d  %5d  %8.3f  %-10s  %9d  %s\n",
			tick, state.CurrentFrame, progress(state.CurrentFrame, state.TotalFrames),
			res.Status, eng.ParticleCount(), describeFired(res.Fired))
		fx.flush(out)

		if ticks > 0 {
			continue
		}
		if res.Status != systems.StatusContinuing || (state.Loop && state.Cycle > start.Cycle) {
			break
		}
	}
	return nil
}

func progress(frame, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(frame) / float64(total)
}

func describeFired(fired []config.EffectDeclaration) string {
	if len(fired) == 0 {
		return "-"
	}
	parts := make([]string, len(fired))
	for i, e := range fired {
		parts[i] = fmt.Sprintf("%s@%.2f", e.Type, e.Timing)
	}
	return strings.Join(parts, " ")
}
