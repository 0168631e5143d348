// Command flowtrace prints the guided dialogue graph, or simulates a
// path through it when choice values are passed as arguments.
//
// Usage:
//
//	flowtrace              # dump every step and its choices
//	flowtrace urgent prep  # walk the graph applying each choice in order
package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"aided-be/pkg/flow"

	"github.com/fatih/color"
)

var (
	stepColor   = color.New(color.FgCyan, color.Bold)
	choiceColor = color.New(color.FgYellow)
	textColor   = color.New(color.FgWhite)
	doneColor   = color.New(color.FgGreen, color.Bold)
	errColor    = color.New(color.FgRed, color.Bold)
)

var tagRe = regexp.MustCompile(`<[^>]+>`)

func plain(s string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(s, ""))
}

func main() {
	engine := flow.NewEngine()

	if len(os.Args) > 1 {
		simulate(engine, os.Args[1:])
		return
	}

	for _, step := range engine.Steps() {
		stepColor.Printf("[%s]", step.Id)
		if step.Terminal {
			doneColor.Print(" (terminal)")
		}
		fmt.Println()
		textColor.Printf("  %s\n", plain(step.Prompt))
		for _, c := range step.Choices {
			choiceColor.Printf("  -> %-10s %s\n", c.Value, c.Label)
		}
		fmt.Println()
	}
}

func simulate(engine *flow.Engine, choices []string) {
	var state flow.State

	turn, ok := engine.Start(&state)
	if !ok {
		errColor.Println("could not start flow")
		os.Exit(1)
	}
	printTurn(turn)

	for _, value := range choices {
		choiceColor.Printf(">> %s\n\n", value)
		turn, ok = engine.Advance(&state, value)
		if !ok {
			errColor.Printf("choice %q not available at step %s\n", value, state.Step)
			os.Exit(1)
		}
		printTurn(turn)
		if turn.Done {
			doneColor.Println("flow complete")
			return
		}
	}

	if state.Active() {
		stepColor.Printf("stopped at step %s\n", state.Step)
	}
}

func printTurn(turn flow.Turn) {
	for _, msg := range turn.Messages {
		textColor.Printf("%s\n\n", plain(msg))
	}
	for _, c := range turn.Choices {
		choiceColor.Printf("  [%s] %s\n", c.Value, c.Label)
	}
	fmt.Println()
}
