// Package ui provides the Lip Gloss styles for NetBuddy's console
// output. It is a leaf package with no internal imports.
package ui

import "github.com/charmbracelet/lipgloss"

// Status colors.
var (
	ColorPass   = lipgloss.Color("#22c55e")
	ColorFail   = lipgloss.Color("#dc2626")
	ColorNotice = lipgloss.Color("#d97706")
	ColorDimmed = lipgloss.Color("#6b7280")
	ColorBright = lipgloss.Color("#f9fafb")
)

var (
	Pass   = lipgloss.NewStyle().Foreground(ColorPass)
	Fail   = lipgloss.NewStyle().Foreground(ColorFail)
	Notice = lipgloss.NewStyle().Foreground(ColorNotice)
	Dimmed = lipgloss.NewStyle().Foreground(ColorDimmed)
	Title  = lipgloss.NewStyle().Foreground(ColorBright).Bold(true)
)

// PassFail renders "passed" text green and "failed" text red.
func PassFail(ok bool, passText, failText string) string {
	if ok {
		return Pass.Render(passText)
	}
	return Fail.Render(failText)
}
