// Package scripts embeds the default rule scripts shipped with the
// binary. Users can override them with a rules directory on disk.
package scripts

import "embed"

//go:embed rules/*.risor
var FS embed.FS
