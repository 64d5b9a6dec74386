package culturegen

import "embed"

// EmbeddedAssets holds the scripts and styles served under /public:
// culturegen.js and culturegen.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
