package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/neeleshseerapu/termagent/internal/app"
	"github.com/neeleshseerapu/termagent/internal/application/doctor"
	"github.com/neeleshseerapu/termagent/internal/domain"
	"github.com/neeleshseerapu/termagent/internal/ports"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// rootState holds the container built once flags are parsed.
type rootState struct {
	opts      app.Options
	container *app.Container
}

func (r *rootState) get() (*app.Container, error) {
	if r.container == nil {
		return nil, errors.New("container not initialised")
	}
	return r.container, nil
}

func (r *rootState) close() error {
	if r.container == nil {
		return nil
	}
	return r.container.Close()
}

// NewRootCmd wires the cobra root command. Without a subcommand it starts the
// interactive session. The returned cleanup releases the container and must be
// called after Execute, whether or not the command failed.
func NewRootCmd(opts Options) (*cobra.Command, func() error) {
	rt := &rootState{opts: app.Options{Verbose: opts.Verbose}}
	return newRootCommand(rt), rt.close
}

func newRootCommand(rt *rootState) *cobra.Command {
	root := &cobra.Command{
		Use:   "termagent",
		Short: "termagent - natural language to shell commands",
		Long:  "termagent turns plain-language requests into shell commands using a local Ollama model, and runs them after you confirm.",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			container, err := app.BuildContainer(cmd.Context(), rt.opts)
			if err != nil {
				return err
			}
			rt.container = container
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := rt.get()
			if err != nil {
				return err
			}
			return runInteractive(cmd.Context(), container, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&rt.opts.ConfigPath, "config", "", "Path to config file (default ~/.termagent/config.yaml)")
	root.PersistentFlags().StringVarP(&rt.opts.Model, "model", "m", "", "Override the configured model")
	root.PersistentFlags().BoolVarP(&rt.opts.Verbose, "verbose", "v", rt.opts.Verbose, "Enable debug logging on stderr")

	root.AddCommand(
		newAskCommand(rt),
		newHistoryCommand(rt),
		newDoctorCommand(rt),
		newModelsCommand(rt),
		newConfigCommand(rt),
	)
	return root
}

func runInteractive(ctx context.Context, container *app.Container, in io.Reader, out, errOut io.Writer) error {
	if err := preflight(ctx, container, errOut); err != nil {
		return err
	}

	reader := lineReaderFor(in, out)
	defer reader.Close()

	renderer := NewRenderer(out, container.Config.GetOutputPreviewChars())
	prompter := NewPrompter(container.Config.GetConfirmStyle(), reader)
	service := container.NewSessionService(prompter, renderer)

	state := container.NewSessionState(startDir())
	return service.Run(ctx, state, reader)
}

// preflight verifies the backend and model, printing remediation on failure.
func preflight(ctx context.Context, container *app.Container, errOut io.Writer) error {
	if _, err := container.DoctorService.Preflight(ctx); err != nil {
		fmt.Fprintln(errOut, doctor.Remediation(err, container.Client.Model()))
		return fmt.Errorf("preflight: %w", err)
	}
	return nil
}

func lineReaderFor(in io.Reader, out io.Writer) ports.LineReader {
	inFile, inOK := in.(*os.File)
	outFile, outOK := out.(*os.File)
	if inOK && outOK {
		return NewLineReader(inFile, outFile)
	}
	return NewPlainReader(in, out)
}

func startDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "/"
	}
	return dir
}

// abortedIsClean maps an interrupt to a normal exit.
func abortedIsClean(err error) error {
	if errors.Is(err, domain.ErrAborted) {
		return nil
	}
	return err
}
