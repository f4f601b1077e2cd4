//go:build mobile

// Package mobile is the ebitenmobile binding of the pet viewer.
//
// It is only compiled with -tags mobile:
//
//	ebitenmobile bind -target android -tags mobile -javapkg com.gonewx.petanim -o build/android/petanim.aar ./mobile
//	ebitenmobile bind -target ios -tags mobile -o build/ios/Petanim.xcframework ./mobile
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/gonewx/petanim/data"
	"github.com/gonewx/petanim/pkg/app"
	"github.com/gonewx/petanim/pkg/embedded"
)

func init() {
	embedded.Init(data.FS)

	viewer, err := app.NewApp(app.Config{Verbose: true})
	if err != nil {
		log.Fatalf("viewer initialization failed: %v", err)
	}

	mobile.SetGame(viewer)
}

// Dummy makes the package visible to ebitenmobile.
func Dummy() {}
