package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167") // pins, errors
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
	colorCork   = lipgloss.Color("94")
)

// noteColors are the sticky-note colors handed out by seed.
var noteColors = []string{"#fff59d", "#ffcc80", "#a5d6a7", "#90caf9", "#f48fb1", "#ce93d8"}

var (
	// StyleTitle renders the app name in headers.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleDim renders hints, details and separators.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue renders board ids, paths and other values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleNumber renders counts and addresses.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	styleSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleLabel   = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Status lines
// =============================================================================

// stdout receives command results and status lines. Logs go to stderr.
var stdout io.Writer = os.Stdout

// statusKind picks the icon and color of a status line.
type statusKind int

const (
	statusOK statusKind = iota
	statusWarn
	statusInfo
)

var statusIcons = map[statusKind]string{
	statusOK:   lipgloss.NewStyle().Foreground(colorGreen).Render("✓"),
	statusWarn: lipgloss.NewStyle().Foreground(colorYellow).Render("!"),
	statusInfo: lipgloss.NewStyle().Foreground(colorGray).Render("›"),
}

func status(kind statusKind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if kind == statusWarn {
		msg = lipgloss.NewStyle().Foreground(colorYellow).Render(msg)
	}
	fmt.Fprintln(stdout, statusIcons[kind], msg)
}

func printSuccess(format string, args ...any) { status(statusOK, format, args...) }
func printWarning(format string, args ...any) { status(statusWarn, format, args...) }
func printInfo(format string, args ...any)    { status(statusInfo, format, args...) }

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, " ", StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path of a written file.
func printFile(path string) {
	fmt.Fprintln(stdout, " ", StyleDim.Render("→"), StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleLabel.Render(key), StyleValue.Render(value))
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":"), styleCommand.Render(cmd))
}

// boardStats summarizes a board as "n items · k corrected · s stacks",
// leaving out zero counts other than items.
func boardStats(items, corrected, stacks int) string {
	parts := []string{fmt.Sprintf("%d items", items)}
	for _, c := range []struct {
		n    int
		noun string
	}{{corrected, "corrected"}, {stacks, "stacks"}} {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.n, c.noun))
		}
	}
	return "  " + StyleDim.Render(strings.Join(parts, " · "))
}
