package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/gonewx/petanim/pkg/effects"
	"github.com/gonewx/petanim/pkg/engine"
	"github.com/gonewx/petanim/pkg/termview"
)

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <pet> <animation>",
		Short: "Play an animation in the terminal (space restarts, q quits)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := c.loadCatalog()
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			fx := effects.NewScreenEffects(nil)
			eng, err := engine.New(engine.Options{
				Catalog:   catalog,
				Config:    cfg,
				Logger:    c.log(),
				Presenter: fx,
			})
			if err != nil {
				return err
			}
			id, err := eng.AddEntity(args[0])
			if err != nil {
				return err
			}
			if def, ok := catalog.AnimationDefinition(args[0], args[1]); !ok {
				return fmt.Errorf("pet %q has no animation %q", args[0], args[1])
			} else if def.Loop {
				c.log().Info("looping animation, press q to quit")
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("failed to create screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("failed to init screen: %w", err)
			}
			defer screen.Fini()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			w := &termview.Watch{
				Screen:    screen,
				Engine:    eng,
				Renderer:  termview.NewRenderer(screen, fx),
				Entity:    id,
				Animation: args[1],
			}
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}
