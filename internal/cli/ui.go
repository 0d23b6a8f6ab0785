package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/relock/pkg/relock"
)

// timeRounding keeps stage durations readable in the stats block.
const timeRounding = 10 * time.Microsecond

// =============================================================================
// Color Palette
// =============================================================================

const (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	StyleError   = lipgloss.NewStyle().Foreground(colorRed)
	StyleInfo    = lipgloss.NewStyle().Foreground(colorBlue)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleLabel   = lipgloss.NewStyle().Foreground(colorGray)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconDetail  = "›"
	iconArrow   = "→"
)

// =============================================================================
// Print Helpers
// =============================================================================

func printSuccess(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", StyleSuccess.Render(iconSuccess), msg)
}

func printError(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", StyleError.Render(iconError), msg)
}

func printWarning(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", StyleWarning.Render(iconWarning), msg)
}

func printInfo(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", StyleInfo.Render(iconArrow), msg)
}

func printDetail(msg string) {
	fmt.Fprintf(os.Stderr, "  %s %s\n", StyleDim.Render(iconDetail), msg)
}

func printFile(path string) {
	fmt.Fprintf(os.Stderr, "  %s %s\n", StyleDim.Render(iconDetail), StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintf(os.Stderr, "  %s %s\n", StyleLabel.Render(key+":"), StyleValue.Render(value))
}

func printNewline() {
	fmt.Fprintln(os.Stderr)
}

// printStats renders the pipeline statistics block after a run.
func printStats(stats relock.Stats, cached bool) {
	printNewline()
	source := "fresh"
	if cached {
		source = "cached"
	}
	printKeyValue("result", source)
	if cached {
		return
	}
	printKeyValue("previous tree", fmt.Sprintf("%d nodes", stats.PreviousNodes))
	printKeyValue("current tree", fmt.Sprintf("%d nodes", stats.CurrentNodes))
	printKeyValue("placed", fmt.Sprintf("%d packages", stats.PlacedNodes))
	if stats.Cycles > 0 {
		printKeyValue("cycles truncated", fmt.Sprintf("%d", stats.Cycles))
	}
	printKeyValue("build", stats.BuildTime.Round(timeRounding).String())
	printKeyValue("diff", stats.DiffTime.Round(timeRounding).String())
	printKeyValue("hoist", stats.HoistTime.Round(timeRounding).String())
	printKeyValue("assemble", stats.AssembleTime.Round(timeRounding).String())
}

// printDecisions prints a compact decision log to stderr.
func printDecisions(decisions []relock.Decision) {
	if len(decisions) == 0 {
		return
	}
	printNewline()
	fmt.Fprintln(os.Stderr, StyleTitle.Render("Decisions"))
	for _, d := range decisions {
		fmt.Fprintf(os.Stderr, "  %s %s %s %s\n",
			styleForAction(d.Action).Render(string(d.Action)),
			StyleValue.Render(d.Name),
			StyleDim.Render("at "+d.Location()),
			StyleLabel.Render(d.Reason))
	}
}

func styleForAction(action relock.Action) lipgloss.Style {
	switch action {
	case relock.ActionAdopt:
		return StyleWarning
	case relock.ActionRecurse:
		return StyleInfo
	default:
		return StyleSuccess
	}
}
