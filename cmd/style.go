package cmd

import (
	"charm.land/lipgloss/v2"
)

// Color palette
var (
	colorPrimary = lipgloss.Color("#8B5CF6") // Violet
	colorTutor   = lipgloss.Color("#14B8A6") // Teal
	colorTopic   = lipgloss.Color("#F97316") // Orange
	colorSuccess = lipgloss.Color("#22C55E") // Green
	colorError   = lipgloss.Color("#F43F5E") // Rose
	colorDim     = lipgloss.Color("#94A3B8") // Slate
)

var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleTutor = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTutor)

	styleTopic = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTopic)

	styleHint = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	styleCorrect = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	styleIncorrect = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)
)
