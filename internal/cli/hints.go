package cli

import (
	"fmt"
	"io"
)

// hintContext provides context for generating relevant next steps.
type hintContext struct {
	// action is the command that was executed (e.g. "create").
	action string

	// token is the token the command produced, if any.
	token string
}

// printNextSteps prints contextual next steps after a successful command.
func printNextSteps(out io.Writer, ctx hintContext) {
	hints := generateHints(ctx)
	if len(hints) == 0 {
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	for _, hint := range hints {
		fmt.Fprintf(out, "  %s\n", hint)
	}
}

func generateHints(ctx hintContext) []string {
	switch ctx.action {
	case "create":
		if ctx.token == "" {
			return nil
		}
		return []string{
			fmt.Sprintf("jwtlens analyze %s", ctx.token),
			fmt.Sprintf("jwtlens verify %s --secret <key>", ctx.token),
		}
	default:
		return nil
	}
}
