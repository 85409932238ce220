package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/neeleshseerapu/termagent/internal/app"
	"github.com/neeleshseerapu/termagent/internal/domain"
)

var errArchiveDisabled = errors.New("history archive is disabled or unavailable")

func newAskCommand(rt *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <request>",
		Short: "Generate and optionally run a single command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := rt.get()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := preflight(ctx, container, cmd.ErrOrStderr()); err != nil {
				return err
			}

			reader := lineReaderFor(cmd.InOrStdin(), cmd.OutOrStdout())
			defer reader.Close()

			renderer := NewRenderer(cmd.OutOrStdout(), container.Config.GetOutputPreviewChars())
			service := container.NewSessionService(NewPrompter(container.Config.GetConfirmStyle(), reader), renderer)
			state := container.NewSessionState(startDir())

			_, err = service.Handle(ctx, state, strings.Join(args, " "))
			return abortedIsClean(err)
		},
	}
}

func newHistoryCommand(rt *rootState) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the archive of past turns",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent archived turns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRecords(cmd.OutOrStdout(), rt, limit, "")
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show")

	var searchLimit int
	searchCmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search archived prompts and commands",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listRecords(cmd.OutOrStdout(), rt, searchLimit, strings.Join(args, " "))
		},
	}
	searchCmd.Flags().IntVar(&searchLimit, "limit", domain.DefaultHistorySearchLimit, "Limit search results")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every archived turn",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := rt.get()
			if err != nil {
				return err
			}
			if container.HistoryStore == nil {
				return errArchiveDisabled
			}
			if err := container.HistoryStore.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", container.HistoryStore.Path())
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export archived turns as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := rt.get()
			if err != nil {
				return err
			}
			if container.HistoryStore == nil {
				return errArchiveDisabled
			}
			if err := container.HistoryStore.ExportJSON(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", describeFile(args[0]))
			return nil
		},
	}

	historyCmd.AddCommand(listCmd, searchCmd, clearCmd, exportCmd)
	return historyCmd
}

func listRecords(out io.Writer, rt *rootState, limit int, search string) error {
	container, err := rt.get()
	if err != nil {
		return err
	}
	if container.HistoryStore == nil {
		return errArchiveDisabled
	}
	records, err := container.HistoryStore.Records(limit, search)
	if err != nil {
		return err
	}
	NewRenderer(out, container.Config.GetOutputPreviewChars()).Records(records)
	return nil
}

func newDoctorCommand(rt *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose backend, model and local setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := rt.get()
			if err != nil {
				return err
			}
			report := container.DoctorService.Run(cmd.Context(), container.Config)
			NewRenderer(cmd.OutOrStdout(), 0).Report(report)
			if report.Failed() {
				return errors.New("doctor found problems")
			}
			return nil
		},
	}
}

func newModelsCommand(rt *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models installed on the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := rt.get()
			if err != nil {
				return err
			}
			names, err := container.Client.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			NewRenderer(cmd.OutOrStdout(), 0).Models(names, container.Client.Model())
			return nil
		},
	}
}

func newConfigCommand(rt *rootState) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect termagent configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.OutOrStdout(), rt)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.OutOrStdout(), rt)
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := rt.get()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), container.ConfigLoader.Path())
			return nil
		},
	}

	configCmd.AddCommand(showCmd, pathCmd)
	return configCmd
}

func showConfig(out io.Writer, rt *rootState) error {
	container, err := rt.get()
	if err != nil {
		return err
	}
	return writeConfig(out, container)
}

func writeConfig(out io.Writer, container *app.Container) error {
	data, err := yaml.Marshal(container.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	_, err = out.Write(data)
	return err
}
