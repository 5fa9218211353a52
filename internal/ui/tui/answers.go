package tui

import (
	"fmt"
	"strings"

	"github.com/imamik/srxgate/api/v1alpha1"
)

// RenderAnswers renders one row per executed command, followed by its
// details or error.
func RenderAnswers(cmds []v1alpha1.Command, answers []v1alpha1.Answer) string {
	var b strings.Builder

	failed := 0
	for i, a := range answers {
		kind := ""
		if i < len(cmds) {
			kind = string(cmds[i].Kind)
		}

		if a.Success {
			fmt.Fprintf(&b, "  %s %-26s %s\n", readyStyle.Render(checkMark), kind, dimStyle.Render(a.ID))
			for _, d := range a.Details {
				fmt.Fprintf(&b, "       %s\n", d)
			}
			continue
		}

		failed++
		fmt.Fprintf(&b, "  %s %-26s %s\n", failedStyle.Render(crossMark), kind, dimStyle.Render(a.ID))
		fmt.Fprintf(&b, "       %s\n", failedStyle.Render(a.Error))
	}

	summary := readyStyle.Render(fmt.Sprintf("%d command(s) committed", len(answers)))
	if failed > 0 {
		summary = warningStyle.Render(fmt.Sprintf("%s %d of %d commands failed", warnMark, failed, len(answers)))
	}
	b.WriteString(footerStyle.Render("  " + summary))
	b.WriteString("\n")
	return b.String()
}
