// Package tui implements the interlinear annotator, built with
// Charmbracelet's BubbleTea, Lipgloss, and Bubbles libraries.
//
// Component architecture:
//
//	model.go   root model, message routing, Init/Update
//	keys.go    key bindings and help
//	theme.go   centralized color + style definitions
//	header.go  top bar with playback clock and coverage, footer
//	panels.go  audio and source token flows, alignment list
//	helpers.go word wrapping, scrolling, truncation
package tui
