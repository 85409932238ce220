package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/neeleshseerapu/termagent/internal/application/prompt"
	"github.com/neeleshseerapu/termagent/internal/domain"
	"github.com/neeleshseerapu/termagent/internal/ports"
)

const separatorWidth = 50

// Renderer prints session events to a terminal.
type Renderer struct {
	out          io.Writer
	animate      bool
	previewChars int
	now          func() time.Time

	title   lipgloss.Style
	label   lipgloss.Style
	command lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	caution lipgloss.Style
	subtle  lipgloss.Style
}

// NewRenderer builds a renderer for out. Colours and the spinner are only used
// when out is a terminal.
func NewRenderer(out io.Writer, previewChars int) *Renderer {
	if previewChars <= 0 {
		previewChars = domain.DefaultOutputPreviewChars
	}
	r := lipgloss.NewRenderer(out)
	animate := false
	if f, ok := out.(*os.File); ok {
		animate = term.IsTerminal(int(f.Fd()))
	}
	return &Renderer{
		out:          out,
		animate:      animate,
		previewChars: previewChars,
		now:          time.Now,
		title:        r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:        r.NewStyle().Bold(true),
		command:      r.NewStyle().Foreground(lipgloss.Color("14")),
		good:         r.NewStyle().Foreground(lipgloss.Color("10")),
		bad:          r.NewStyle().Foreground(lipgloss.Color("9")),
		caution:      r.NewStyle().Foreground(lipgloss.Color("11")),
		subtle:       r.NewStyle().Faint(true),
	}
}

func (r *Renderer) Banner(model, workingDir string) {
	fmt.Fprintln(r.out, r.title.Render("termagent"))
	fmt.Fprintf(r.out, "%s %s\n", r.label.Render("Model:"), model)
	fmt.Fprintf(r.out, "%s %s\n", r.label.Render("Working directory:"), workingDir)
	fmt.Fprintln(r.out, r.subtle.Render("Describe what you want to do in plain language."))
	fmt.Fprintln(r.out, r.subtle.Render("Type 'quit' or 'exit' to stop, 'history' to review, 'clear' to forget, 'pwd' for the current directory."))
	fmt.Fprintln(r.out)
}

func (r *Renderer) Thinking() func() {
	if r.animate {
		return StartSpinner(r.out, "Thinking...")
	}
	fmt.Fprintln(r.out, r.subtle.Render("Thinking..."))
	return func() {}
}

func (r *Renderer) Proposal(proposal domain.CommandProposal, advisory domain.Advisory) {
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "%s %s\n", r.label.Render("Generated command:"), r.command.Render(proposal.Command))
	fmt.Fprintf(r.out, "%s %s\n", r.label.Render("Explanation:"), proposal.Explanation)
	if proposal.HasWarning() {
		fmt.Fprintf(r.out, "%s %s\n", r.caution.Render("Warning:"), proposal.Warning)
	}
	if !advisory.Empty() {
		fmt.Fprintf(r.out, "%s %s\n", r.caution.Render("Advisory:"), strings.ToUpper(string(advisory.Level)))
		for _, reason := range advisory.Reasons {
			fmt.Fprintf(r.out, " - %s\n", reason)
		}
	}
}

func (r *Renderer) Refused(verdict domain.Verdict) {
	fmt.Fprintf(r.out, "%s %s\n", r.bad.Render("Command deemed unsafe, not running it:"), verdict.Reason)
}

func (r *Renderer) Skipped() {
	fmt.Fprintln(r.out, r.subtle.Render("Skipped."))
}

func (r *Renderer) Result(result domain.ExecutionResult) {
	fmt.Fprintln(r.out)
	if result.Success {
		fmt.Fprintln(r.out, r.good.Render("Command executed successfully"))
		if result.Stdout != "" {
			fmt.Fprintf(r.out, "%s\n%s", r.label.Render("Output:"), ensureNewline(result.Stdout))
		}
	} else {
		fmt.Fprintln(r.out, r.bad.Render(fmt.Sprintf("Command failed (exit code %d)", result.ExitCode)))
		if result.Stderr != "" {
			fmt.Fprintf(r.out, "%s\n%s", r.label.Render("Error:"), ensureNewline(result.Stderr))
		}
	}
	fmt.Fprintln(r.out, r.subtle.Render(fmt.Sprintf("took %s", result.Duration.Round(time.Millisecond))))
	fmt.Fprintln(r.out, strings.Repeat("-", separatorWidth))
}

func (r *Renderer) History(exchanges []domain.Exchange) {
	if len(exchanges) == 0 {
		fmt.Fprintln(r.out, "No conversation history yet.")
		return
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.title.Render(fmt.Sprintf("Conversation History (%d exchanges):", len(exchanges))))
	fmt.Fprintln(r.out, strings.Repeat("=", 60))
	for i, exchange := range exchanges {
		fmt.Fprintf(r.out, "\nExchange %d:\n", i+1)
		fmt.Fprintf(r.out, "   User: %s\n", exchange.UserInput)
		fmt.Fprintf(r.out, "   AI Command: %s\n", r.command.Render(exchange.Proposal.Command))
		if exchange.Result.Success {
			fmt.Fprintf(r.out, "   Result: %s\n", r.good.Render("Success"))
		} else {
			fmt.Fprintf(r.out, "   Result: %s\n", r.bad.Render("Failed"))
		}
		if output := strings.TrimSpace(exchange.Result.Stdout); output != "" {
			if preview := prompt.Preview(output, r.previewChars); preview != output {
				output = preview + "..."
			}
			fmt.Fprintf(r.out, "   Output: %s\n", output)
		}
		fmt.Fprintf(r.out, "   Time: %s\n", r.relative(exchange.Timestamp))
		fmt.Fprintln(r.out, strings.Repeat("-", 40))
	}
}

func (r *Renderer) HistoryCleared() {
	fmt.Fprintln(r.out, "Conversation history cleared!")
}

func (r *Renderer) WorkingDir(path string) {
	fmt.Fprintf(r.out, "%s %s\n", r.label.Render("Current working directory:"), path)
}

func (r *Renderer) Failure(err error) {
	fmt.Fprintf(r.out, "%s %v\n", r.bad.Render("Error:"), err)
}

func (r *Renderer) Goodbye() {
	fmt.Fprintln(r.out, "\nGoodbye!")
}

// Records prints archived turns, newest first.
func (r *Renderer) Records(records []domain.HistoryRecord) {
	if len(records) == 0 {
		fmt.Fprintln(r.out, "No archived history.")
		return
	}
	for _, rec := range records {
		status := r.subtle.Render(string(rec.Outcome))
		if rec.Outcome == domain.OutcomeExecuted {
			if rec.Success {
				status = r.good.Render("ok")
			} else {
				status = r.bad.Render(fmt.Sprintf("exit %d", rec.ExitCode))
			}
		}
		fmt.Fprintf(r.out, "%s | %s | %s | %s\n",
			rec.Timestamp.Local().Format(domain.TimestampFormat),
			r.relative(rec.Timestamp),
			status,
			r.command.Render(rec.Command))
		fmt.Fprintf(r.out, "    %s\n", r.subtle.Render(fmt.Sprintf("%q in %s", rec.Prompt, rec.WorkingDir)))
	}
}

// Report prints doctor checks.
func (r *Renderer) Report(report domain.HealthReport) {
	for _, check := range report.Checks {
		var badge string
		switch check.Status {
		case domain.HealthOK:
			badge = r.good.Render("[ok]   ")
		case domain.HealthWarn:
			badge = r.caution.Render("[warn] ")
		default:
			badge = r.bad.Render("[fail] ")
		}
		fmt.Fprintf(r.out, "%s %-16s %s\n", badge, check.Name, check.Details)
	}
}

// Models prints installed models, marking the configured one.
func (r *Renderer) Models(models []string, current string) {
	if len(models) == 0 {
		fmt.Fprintln(r.out, "No models installed.")
		return
	}
	for _, name := range models {
		marker := "  "
		if domain.ModelAvailable([]string{name}, current) {
			marker = r.good.Render("*") + " "
		}
		fmt.Fprintf(r.out, "%s%s\n", marker, name)
	}
}

// describeFile appends a human-readable size to path when the file exists.
func describeFile(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return path
	}
	return fmt.Sprintf("%s (%s)", path, humanize.Bytes(uint64(info.Size())))
}

func (r *Renderer) relative(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(t, r.now(), "ago", "from now")
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

var _ ports.Presenter = (*Renderer)(nil)
