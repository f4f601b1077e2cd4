package main

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gonewx/petanim/pkg/config"
	"github.com/gonewx/petanim/pkg/engine"
)

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pets and their animations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := c.loadCatalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, id := range catalog.IDs() {
				pet, _ := catalog.Pet(id)
				fmt.Fprintf(out, "%s (%s, %s) %s\n", pet.ID, orDash(string(pet.Type)), orDash(string(pet.Rarity)), pet.Name)
				for _, name := range pet.AnimationNames() {
					fmt.Fprintf(out, "  %s\n", describeAnimation(name, pet.Animations[name]))
				}
			}
			return nil
		},
	}
}

func describeAnimation(key string, a config.AnimationDefinition) string {
	mode := "once"
	if a.Loop {
		mode = "loop"
	}
	var effects []string
	for _, e := range a.Effects {
		effects = append(effects, fmt.Sprintf("%s@%.2f", e.Type, e.Timing))
	}
	line := fmt.Sprintf("%-10s %5dms %2d frames %s", key, a.DurationMS, a.Frames, mode)
	if len(effects) > 0 {
		line += "  " + strings.Join(effects, " ")
	}
	return line
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the catalog and engine tuning and report problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := c.loadCatalog()
			if err != nil {
				return err
			}
			if _, err := c.loadConfig(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			unknown := catalog.UnknownEffects()
			for _, where := range unknown {
				fmt.Fprintf(out, "warning: unknown effect kind %s\n", where)
			}
			animations := 0
			for _, pet := range catalog.Pets {
				animations += len(pet.Animations)
			}
			fmt.Fprintf(out, "ok: %d pets, %d animations, %d warnings\n", len(catalog.Pets), animations, len(unknown))
			return nil
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <pet>",
		Short: "Print the animation data of one pet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := c.loadCatalog()
			if err != nil {
				return err
			}
			eng, err := engine.New(engine.Options{Catalog: catalog, Logger: c.log()})
			if err != nil {
				return err
			}
			export, ok := eng.ExportAnimationData(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", config.ErrUnknownPet, args[0])
			}

			var data []byte
			switch format {
			case "yaml":
				data, err = yaml.Marshal(export)
			case "toml":
				data, err = toml.Marshal(export)
			default:
				return fmt.Errorf("unsupported export format %q (yaml or toml)", format)
			}
			if err != nil {
				return fmt.Errorf("failed to encode export: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format: yaml or toml")
	return cmd
}
