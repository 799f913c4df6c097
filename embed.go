package bedrock

import "embed"

// EmbeddedAssets contains static assets shipped with the site:
// placeholder.svg and site.js (search overlay and newsletter form).
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
