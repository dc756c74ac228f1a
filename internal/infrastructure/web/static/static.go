// Package static embeds the images served under /static.
package static

import "embed"

//go:embed *.svg
var FS embed.FS
