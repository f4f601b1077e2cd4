// Package data holds the files compiled into the petanim binaries.
//
// //go:embed only reaches files below the declaring package, so the
// declaration sits next to the data it embeds. Both the viewer and the
// CLI hand FS to embedded.Init.
package data

import "embed"

// FS is rooted at this directory: "catalog/pets.yaml", "engine.yaml".
//
//go:embed catalog engine.yaml
var FS embed.FS
