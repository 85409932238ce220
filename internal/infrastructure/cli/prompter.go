package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/neeleshseerapu/termagent/internal/domain"
	"github.com/neeleshseerapu/termagent/internal/ports"
)

const confirmQuestion = "Execute this command? (y/n): "

// NewPrompter picks the confirmation style. Plain answers are read through the
// session's line reader.
func NewPrompter(style string, reader ports.LineReader) ports.ConfirmationPrompter {
	if style == domain.ConfirmStyleHuh {
		return &HuhPrompter{}
	}
	return &Prompter{reader: reader}
}

// Prompter implements ConfirmationPrompter with a y/n question.
type Prompter struct {
	reader ports.LineReader
}

// Confirm accepts "y" or "yes" in any case; anything else declines.
func (p *Prompter) Confirm(ctx context.Context, _ domain.CommandProposal, _ domain.Advisory) (bool, error) {
	line, err := p.reader.ReadLine(ctx, confirmQuestion)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, domain.ErrAborted) {
			return false, domain.ErrAborted
		}
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// HuhPrompter asks with a huh confirm form.
type HuhPrompter struct{}

func (p *HuhPrompter) Confirm(ctx context.Context, proposal domain.CommandProposal, advisory domain.Advisory) (bool, error) {
	approved := false
	description := strings.TrimSpace(proposal.Command)
	if !advisory.Empty() {
		description = fmt.Sprintf("%s\nadvisory: %s (%s)", description, strings.Join(advisory.Reasons, "; "), advisory.Level)
	}
	confirm := huh.NewConfirm().
		Title("Execute this command?").
		Description(description).
		Affirmative("Execute").
		Negative("Skip").
		Value(&approved)
	form := huh.NewForm(huh.NewGroup(confirm)).WithTheme(huh.ThemeCharm())
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) || ctx.Err() != nil {
			return false, domain.ErrAborted
		}
		return false, err
	}
	return approved, nil
}

var (
	_ ports.ConfirmationPrompter = (*Prompter)(nil)
	_ ports.ConfirmationPrompter = (*HuhPrompter)(nil)
)
