package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"invite-reviewer/internal/review"
)

const usage = `invite-reviewer reviews draft invitations with Claude and suggests improvements.

Usage:
  invite-reviewer serve [flags]
  invite-reviewer prompt [draft]

Commands:
  serve    Start the web form on GET/POST /
  prompt   Print the system prompt and the user message a draft is wrapped in

Flags:
  -h, --help  Show this help message`

// Execute runs the CLI dispatcher with the provided arguments. Informational
// output goes to out.
func Execute(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return printUsage(out)
	}

	switch args[0] {
	case "serve":
		return serve(ctx, args[1:])
	case "prompt":
		return printPrompt(out, args[1:])
	case "help", "-h", "--help":
		return printUsage(out)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
	}
}

func printUsage(out io.Writer) error {
	_, err := fmt.Fprintln(out, strings.TrimSpace(usage))
	return err
}

// printPrompt shows exactly what is sent for a draft, without calling the API.
func printPrompt(out io.Writer, args []string) error {
	draft := strings.Join(args, " ")
	if draft == "" {
		draft = "<draft invitation>"
	}
	_, err := fmt.Fprintf(out, "System:\n%s\n\nUser:\n%s\n", strings.TrimSpace(review.SystemPrompt), review.UserPrompt(draft))
	return err
}
