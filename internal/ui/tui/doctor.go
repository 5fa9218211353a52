package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/imamik/srxgate/internal/util/async"
)

// RenderChecks renders doctor check results, one row per check.
func RenderChecks(title string, results []async.Result) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("  " + title))
	b.WriteString("\n\n")

	failed := 0
	for _, r := range results {
		mark, style := checkMark, readyStyle
		detail := dimStyle.Render(r.Duration.Round(time.Millisecond).String())
		if r.Err != nil {
			failed++
			mark, style = crossMark, failedStyle
			detail = failedStyle.Render(r.Err.Error())
		}
		fmt.Fprintf(&b, "  %s %-24s %s\n", style.Render(mark), r.Name, detail)
	}

	summary := readyStyle.Render("all checks passed")
	if failed > 0 {
		summary = warningStyle.Render(fmt.Sprintf("%s %d of %d checks failed", warnMark, failed, len(results)))
	}
	b.WriteString(footerStyle.Render("  " + summary))
	b.WriteString("\n")
	return b.String()
}
