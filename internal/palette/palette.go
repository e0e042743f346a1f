// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

// Package palette supplies the color-theming seam the terminal engine
// consumes. spec.md treats terminal color theming as an external
// collaborator of the core; this package is that collaborator, built on
// lipgloss the way cmd/tui.go builds its style set.
package palette

import "github.com/charmbracelet/lipgloss"

// Palette renders pieces of an annotation with a theme's colors. The
// terminal engine only ever calls through this interface, never lipgloss
// directly, so the core stays theme-agnostic.
type Palette interface {
	Headline(direction string, s string) string
	Detail(s string) string
	Status(s string) string
	Warning(s string) string
	Error(s string) string
	Prompt(s string) string
}

type lipglossPalette struct {
	outgoing lipgloss.Style
	incoming lipgloss.Style
	detail   lipgloss.Style
	status   lipgloss.Style
	warning  lipgloss.Style
	errStyle lipgloss.Style
	prompt   lipgloss.Style
}

func (p lipglossPalette) Headline(direction, s string) string {
	if direction == "outgoing" {
		return p.outgoing.Render(s)
	}
	return p.incoming.Render(s)
}

func (p lipglossPalette) Detail(s string) string  { return p.detail.Render(s) }
func (p lipglossPalette) Status(s string) string  { return p.status.Render(s) }
func (p lipglossPalette) Warning(s string) string { return p.warning.Render(s) }
func (p lipglossPalette) Error(s string) string   { return p.errStyle.Render(s) }
func (p lipglossPalette) Prompt(s string) string  { return p.prompt.Render(s) }

// Light returns the light-terminal-background palette.
func Light() Palette {
	return lipglossPalette{
		outgoing: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("18")),
		incoming: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("22")),
		detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("94")),
		warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
		errStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("124")),
		prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color("18")),
	}
}

// Dark returns the dark-terminal-background palette.
func Dark() Palette {
	return lipglossPalette{
		outgoing: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		incoming: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		errStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		prompt:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

// ForName resolves the --theme flag value, defaulting to Light for anything
// unrecognized rather than failing the CLI over a cosmetic setting.
func ForName(name string) Palette {
	if name == "dark" {
		return Dark()
	}
	return Light()
}

// Plain is used when --plain disables the analyzer; it applies no styling
// at all.
func Plain() Palette {
	return plainPalette{}
}

type plainPalette struct{}

func (plainPalette) Headline(_ string, s string) string { return s }
func (plainPalette) Detail(s string) string             { return s }
func (plainPalette) Status(s string) string             { return s }
func (plainPalette) Warning(s string) string            { return s }
func (plainPalette) Error(s string) string              { return s }
func (plainPalette) Prompt(s string) string             { return s }
