// Command petanim-viewer opens a window showing one pet at a time.
//
// Usage:
//
//	go run . [flags]
//
// Flags:
//
//	--catalog <file>   Pet catalog (.yaml or .toml); default is the bundled catalog
//	--config <file>    Engine tuning file; default is the bundled tuning
//	--assets <dir>     Directory atlas paths and sounds/<soundId>.au samples are relative to
//	--pet <id>         Pet shown first
//	--watch            Reload the catalog when the file changes
//	--verbose          Enable debug logging
//
// Controls:
//
//	1-9          Play the n-th animation of the pet (alphabetical)
//	Left/Right   Previous/next pet
//	S            Stop the animation
//	M            Toggle sound
//	R            Clear all particles
//	F11          Toggle fullscreen
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/petanim/data"
	"github.com/gonewx/petanim/pkg/app"
	"github.com/gonewx/petanim/pkg/embedded"
)

var (
	catalogFlag = flag.String("catalog", "", "Pet catalog file (.yaml or .toml)")
	configFlag  = flag.String("config", "", "Engine tuning file")
	assetsFlag  = flag.String("assets", ".", "Directory atlas paths are relative to")
	petFlag     = flag.String("pet", "", "Pet shown first")
	watchFlag   = flag.Bool("watch", false, "Reload the catalog when the file changes")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

func main() {
	flag.Parse()

	embedded.Init(data.FS)

	viewer, err := app.NewApp(app.Config{
		Verbose:     *verboseFlag,
		CatalogPath: *catalogFlag,
		ConfigPath:  *configFlag,
		AssetsDir:   *assetsFlag,
		Watch:       *watchFlag,
		Pet:         *petFlag,
	})
	if err != nil {
		log.Fatalf("viewer initialization failed: %v", err)
	}

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("petanim")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	runErr := ebiten.RunGame(viewer)
	if err := viewer.Close(); err != nil {
		log.Printf("failed to save settings: %v", err)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
