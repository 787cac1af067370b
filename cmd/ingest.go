/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"evewatch/internal/bootstrap"
	"evewatch/internal/bootstrap/logging"
	"evewatch/internal/errs"
	"evewatch/internal/usecase/dashboard"
	"evewatch/internal/usecase/ingest"
)

// ingestCmd runs one full ingestion cycle: roster sync, then every watcher
// configured in the catalog. The cycle status is printed as JSON on stdout.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one watcher ingestion cycle",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, ingestSvc *ingest.Service, _ *dashboard.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		mappingFile, _ := cmd.Flags().GetString("mapping")
		watchersFile, _ := cmd.Flags().GetString("watchers")
		workdir, _ := cmd.Flags().GetString("workdir")

		input := ingest.CycleInput{
			MappingFile:  strings.TrimSpace(mappingFile),
			WatchersFile: strings.TrimSpace(watchersFile),
			Workdir:      strings.TrimSpace(workdir),
		}
		if input.MappingFile == "" {
			input.MappingFile = app.Config.Ingest.MappingFile
		}
		if input.WatchersFile == "" {
			input.WatchersFile = app.Config.Ingest.WatchersFile
		}
		if input.Workdir == "" {
			input.Workdir = app.Config.Ingest.Workdir
		}

		result, err := ingestSvc.RunCycle(ctx, input)
		if err != nil {
			logging.Error(ctx, "ingestion cycle failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "run ingestion cycle")
		}

		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return errs.Wrap(err, "encode cycle result")
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(encoded)); err != nil {
			return errs.Wrap(err, "write cycle result")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().String("mapping", "", "Group mapping file (overrides ingest.mapping_file)")
	ingestCmd.Flags().String("watchers", "", "Watcher catalog file (overrides ingest.watchers_file)")
	ingestCmd.Flags().String("workdir", "", "Working directory for watcher commands (overrides ingest.workdir)")
}
