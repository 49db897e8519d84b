// Package web holds the page template served at "/".
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS
