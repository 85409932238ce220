// Package session drives the interactive request, propose, confirm, execute loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/neeleshseerapu/termagent/internal/application/prompt"
	"github.com/neeleshseerapu/termagent/internal/domain"
	"github.com/neeleshseerapu/termagent/internal/ports"
)

const inputPrompt = "You: "

// Service orchestrates a session end-to-end.
type Service struct {
	Client      ports.ModelClient
	Builder     prompt.Builder
	Interpreter ports.ResponseInterpreter
	Gate        ports.SafetyGate
	Advisor     ports.CommandAdvisor
	Executor    ports.CommandExecutor
	Prompter    ports.ConfirmationPrompter
	Presenter   ports.Presenter
	Archive     ports.HistoryRepository
	Logger      ports.Logger
	Now         func() time.Time
}

// Turn reports what happened to one request.
type Turn struct {
	Meta     Meta
	Proposal domain.CommandProposal
	Advisory domain.Advisory
	Verdict  domain.Verdict
	Executed bool
	Result   domain.ExecutionResult
	Phase    Phase
}

// Run reads requests from reader until the user quits, input ends or the
// session is interrupted. Interruption is a clean exit, not an error.
func (s *Service) Run(ctx context.Context, state *State, reader ports.LineReader) error {
	if err := s.validate(); err != nil {
		return err
	}
	s.Presenter.Banner(s.Client.Model(), state.WorkingDir.Path())

	for {
		if ctx.Err() != nil {
			return s.interrupted(state)
		}
		line, err := reader.ReadLine(ctx, inputPrompt)
		if ctx.Err() != nil {
			return s.interrupted(state)
		}
		if err != nil {
			if errors.Is(err, domain.ErrAborted) || errors.Is(err, io.EOF) {
				return s.interrupted(state)
			}
			return fmt.Errorf("read input: %w", err)
		}

		turn, err := s.Handle(ctx, state, line)
		if errors.Is(err, domain.ErrAborted) {
			return s.interrupted(state)
		}
		if err != nil {
			s.Logger.Error("turn failed", err, nil)
			s.Presenter.Failure(err)
			state.Phase = PhaseIdle
			continue
		}
		if turn.Meta == MetaQuit {
			s.Presenter.Goodbye()
			return nil
		}
	}
}

// Handle processes one line of input. It returns domain.ErrAborted when the
// user interrupts confirmation or ctx is cancelled mid-turn.
func (s *Service) Handle(ctx context.Context, state *State, input string) (Turn, error) {
	if err := s.validate(); err != nil {
		return Turn{}, err
	}
	request := strings.TrimSpace(input)
	turn := Turn{Meta: ParseMeta(request)}

	switch turn.Meta {
	case MetaQuit:
		turn.Phase = PhaseIdle
		return turn, nil
	case MetaEmpty:
		turn.Phase = PhaseIdle
		return turn, nil
	case MetaHistory:
		s.Presenter.History(state.History.Entries())
		turn.Phase = PhaseIdle
		return turn, nil
	case MetaClear:
		state.History.Clear()
		s.Presenter.HistoryCleared()
		turn.Phase = PhaseIdle
		return turn, nil
	case MetaWhere:
		s.Presenter.WorkingDir(state.WorkingDir.Path())
		turn.Phase = PhaseIdle
		return turn, nil
	}

	s.transition(state, &turn, PhaseAwaitingGeneration)
	proposal, err := s.generate(ctx, state, request)
	if err != nil {
		s.transition(state, &turn, PhaseAborted)
		return turn, err
	}
	turn.Proposal = proposal

	s.transition(state, &turn, PhaseProposalReady)
	if s.Advisor != nil {
		turn.Advisory = s.Advisor.Advise(proposal.Command)
	}
	s.Presenter.Proposal(proposal, turn.Advisory)

	turn.Verdict = s.Gate.Check(proposal)
	if !turn.Verdict.Allowed {
		s.Presenter.Refused(turn.Verdict)
		s.archive(state, request, turn, domain.OutcomeUnsafe)
		s.transition(state, &turn, PhaseSkipped)
		s.transition(state, &turn, PhaseIdle)
		return turn, nil
	}

	approved, err := s.Prompter.Confirm(ctx, proposal, turn.Advisory)
	if err != nil {
		if errors.Is(err, domain.ErrAborted) || ctx.Err() != nil {
			s.transition(state, &turn, PhaseAborted)
			if !errors.Is(err, domain.ErrAborted) {
				err = fmt.Errorf("%w: %w", domain.ErrAborted, err)
			}
			return turn, err
		}
		s.transition(state, &turn, PhaseIdle)
		return turn, fmt.Errorf("confirm command: %w", err)
	}
	if !approved {
		s.Presenter.Skipped()
		s.archive(state, request, turn, domain.OutcomeDeclined)
		s.transition(state, &turn, PhaseSkipped)
		s.transition(state, &turn, PhaseIdle)
		return turn, nil
	}

	s.transition(state, &turn, PhaseConfirmed)
	result := s.Executor.Execute(ctx, state.WorkingDir, proposal.Command)
	if ctx.Err() != nil {
		s.transition(state, &turn, PhaseAborted)
		return turn, fmt.Errorf("%w: %w", domain.ErrAborted, ctx.Err())
	}
	turn.Executed = true
	turn.Result = result
	s.transition(state, &turn, PhaseExecuted)

	state.History.Append(domain.Exchange{
		UserInput: request,
		Proposal:  proposal,
		Result:    result,
		Timestamp: s.now(),
	})
	s.Presenter.Result(result)
	s.archive(state, request, turn, domain.OutcomeExecuted)

	s.transition(state, &turn, PhaseIdle)
	return turn, nil
}

func (s *Service) interrupted(state *State) error {
	state.Phase = PhaseAborted
	s.Presenter.Goodbye()
	return nil
}

func (s *Service) generate(ctx context.Context, state *State, request string) (domain.CommandProposal, error) {
	text := s.Builder.Build(request, state.WorkingDir.Path(), state.History.Entries())

	stop := s.Presenter.Thinking()
	raw, err := s.Client.Generate(ctx, text)
	stop()

	if err != nil {
		if ctx.Err() != nil {
			return domain.CommandProposal{}, fmt.Errorf("%w: %w", domain.ErrAborted, ctx.Err())
		}
		s.Logger.Warn("model request failed", map[string]interface{}{"error": err.Error()})
		return domain.BackendFailureProposal(err), nil
	}
	return s.Interpreter.Interpret(raw), nil
}

func (s *Service) archive(state *State, request string, turn Turn, outcome domain.Outcome) {
	if s.Archive == nil {
		return
	}
	record := domain.HistoryRecord{
		SessionID:       state.ID,
		Timestamp:       s.now(),
		Prompt:          request,
		Command:         turn.Proposal.Command,
		Explanation:     turn.Proposal.Explanation,
		Model:           s.Client.Model(),
		WorkingDir:      state.WorkingDir.Path(),
		Executed:        turn.Executed,
		Success:         turn.Result.Success,
		ExitCode:        turn.Result.ExitCode,
		Outcome:         outcome,
		ExecutionTimeMS: turn.Result.Duration.Milliseconds(),
	}
	if err := s.Archive.Save(record); err != nil {
		s.Logger.Warn("failed to archive turn", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Service) transition(state *State, turn *Turn, next Phase) {
	s.Logger.Debug("session transition", map[string]interface{}{
		"from": string(state.Phase),
		"to":   string(next),
	})
	state.Phase = next
	turn.Phase = next
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) validate() error {
	if s.Client == nil || s.Interpreter == nil || s.Gate == nil || s.Executor == nil ||
		s.Prompter == nil || s.Presenter == nil || s.Logger == nil {
		return errors.New("session.Service dependencies not satisfied")
	}
	return nil
}
