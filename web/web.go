// Package web embeds the tester page templates.
package web

import "embed"

//go:embed templates/*.html
var TemplateFiles embed.FS
