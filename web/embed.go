// Package web embeds the admin UI assets: page/layout/partial templates
// for the view engine, the order PDF report, and the stylesheet.
package web

import "embed"

// Templates holds every HTML template, including the Gotenberg-bound
// report under templates/reports.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds the stylesheet and any other browser-served assets.
//
//go:embed static/**/*
var Static embed.FS
