// Package public embeds the static app shell served alongside the JSON API.
package public

import "embed"

// FS holds the app shell assets.
//
//go:embed index.html app.js styles.css sw.js manifest.webmanifest
var FS embed.FS
