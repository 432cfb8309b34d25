// Package printer provides colored terminal output for the thinkex CLI:
// status messages, formatted errors with suggestions, and board rendering.
package printer

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/thinkex/thinkex/pkg/board"
)

func init() {
	// Force color output even when not connected to TTY
	// Users can disable with NO_COLOR environment variable
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)

	// clusterPalette maps board.Palette indices to terminal colors, in the
	// same order as the web client's hex palette.
	clusterPalette = []*color.Color{
		color.New(color.FgMagenta, color.Bold),
		color.New(color.FgCyan, color.Bold),
		color.New(color.FgGreen, color.Bold),
		color.New(color.FgYellow, color.Bold),
		color.New(color.FgRed, color.Bold),
		color.New(color.FgHiCyan, color.Bold),
		color.New(color.FgHiYellow, color.Bold),
		color.New(color.FgBlue, color.Bold),
		color.New(color.FgHiMagenta, color.Bold),
		color.New(color.FgHiRed, color.Bold),
	}
)

// Success prints a success message in green with a checkmark prefix.
func Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		green.Printf("✓ %s", msg)
	} else {
		green.Print(msg)
	}
}

// Info prints an informational message in the default color.
func Info(format string, a ...any) {
	fmt.Printf(format, a...)
}

// Warning prints a warning message in yellow.
func Warning(format string, a ...any) {
	yellow.Printf("⚠ %s", fmt.Sprintf(format, a...))
}

// Step prints a step message with emphasis (used in multi-step operations).
func Step(format string, a ...any) {
	cyan.Printf("→ %s", fmt.Sprintf(format, a...))
}

// Println prints a plain message (for output that doesn't need coloring).
func Println(a ...any) {
	fmt.Println(a...)
}

// Printf prints a plain formatted message (for output that doesn't need coloring).
func Printf(format string, a ...any) {
	fmt.Printf(format, a...)
}

// Error prints a formatted error with title, explanation, and suggestions
// to stderr, and returns a simple error for Cobra (not reprinted thanks to
// SilenceErrors).
func Error(title string, explanation string, suggestions []string) error {
	red.Fprintf(os.Stderr, "%s\n\n", title)
	if explanation != "" {
		fmt.Fprintf(os.Stderr, "%s\n", explanation)
	}
	printSuggestions(suggestions)
	return fmt.Errorf("%s", title)
}

// ErrorWithContext is Error with additional key/value context lines.
func ErrorWithContext(title string, explanation string, context map[string]string, suggestions []string) error {
	red.Fprintf(os.Stderr, "%s\n\n", title)
	if explanation != "" {
		fmt.Fprintf(os.Stderr, "%s\n", explanation)
	}
	if len(context) > 0 {
		fmt.Fprintf(os.Stderr, "\n")
		for key, value := range context {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", key, value)
		}
	}
	printSuggestions(suggestions)
	return fmt.Errorf("%s", title)
}

func printSuggestions(suggestions []string) {
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "\n")
	if len(suggestions) == 1 {
		fmt.Fprintf(os.Stderr, "%s\n", suggestions[0])
		return
	}
	fmt.Fprintf(os.Stderr, "Either:\n")
	for i, suggestion := range suggestions {
		fmt.Fprintf(os.Stderr, "  %d. %s\n", i+1, suggestion)
	}
}

// Board renders one cluster list: a header line, then each cluster in its
// assigned palette color with one line per card.
func Board(list *board.ClusterList) {
	fmt.Printf("%s  ", list.Title)
	faint.Printf("(%s)\n", list.ID)

	titles := make([]string, len(list.Clusters))
	for i := range list.Clusters {
		titles[i] = list.Clusters[i].Title
	}
	colors := board.ClusterColors(titles)

	for i, cluster := range list.Clusters {
		c := clusterPalette[colors[i]%len(clusterPalette)]
		fmt.Println()
		c.Printf("  %s", cluster.Title)
		faint.Printf("  (%d)\n", len(cluster.QAs))
		for _, card := range cluster.QAs {
			fmt.Printf("    %-13s %s  ", "["+string(card.Type)+"]", CardSummary(card))
			faint.Printf("%s\n", card.ID)
		}
	}
}

// Boards renders the board summary listing.
func Boards(infos []board.ClusterListInfo) {
	if len(infos) == 0 {
		fmt.Println("No boards found.")
		return
	}
	for _, info := range infos {
		fmt.Printf("  %s  ", info.Title)
		faint.Printf("%s\n", info.ID)
	}
}

// CardSummary returns a one-line description of a card, picked per variant.
func CardSummary(card board.Card) string {
	switch {
	case card.QA != nil:
		return truncate(card.QA.Question, 60)
	case card.Research != nil:
		return fmt.Sprintf("%s (+%d sub-questions)", truncate(card.Research.Question, 48), len(card.Research.SubQuestions))
	case card.SourceNote != nil:
		return truncate(card.SourceNote.SourceTitle, 60)
	case card.Flashcards != nil:
		return fmt.Sprintf("flashcard set, %d cards", len(card.Flashcards.Cards))
	}
	return card.ID
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
