// Package static holds the site's stylesheet, icon and scripts.
package static

import "embed"

//go:embed styles.css favicon.svg js
var FS embed.FS
