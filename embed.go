package pulseboard

import "embed"

// EmbeddedAssets contains the static assets of the console page:
// console.js and console.css
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
