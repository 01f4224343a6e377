// Package grailedadmin embeds the dashboard's templates and static files.
package grailedadmin

import "embed"

//go:embed all:frontend/static
var StaticFS embed.FS

//go:embed all:frontend/templates
var TemplateFS embed.FS
