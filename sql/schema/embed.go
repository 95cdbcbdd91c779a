// Package schema embeds the goose migrations so that binaries can migrate the database without
// access to the source tree.
package schema

import "embed"

//go:embed *.sql
var FS embed.FS
