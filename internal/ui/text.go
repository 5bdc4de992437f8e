package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

// fitCell truncates or pads plain text to exactly width cells.
func fitCell(text string, width int, alignRight bool) string {
	if width <= 0 {
		return ""
	}
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		return r
	}, text)
	if runewidth.StringWidth(text) > width {
		text = runewidth.Truncate(text, width, ellipsis)
	}
	if alignRight {
		return runewidth.FillLeft(text, width)
	}
	return runewidth.FillRight(text, width)
}

// truncateLine cuts a styled line to width cells without breaking escapes.
func truncateLine(line string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(line) <= width {
		return line
	}
	return ansi.Truncate(line, width, ellipsis)
}

func padLine(line string, width int) string {
	line = truncateLine(line, width)
	if w := ansi.StringWidth(line); w < width {
		line += strings.Repeat(" ", width-w)
	}
	return line
}

func stripANSI(s string) string { return ansi.Strip(s) }
