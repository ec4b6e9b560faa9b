package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpfielding/dcmrmel.go/pkg/logging"
	"github.com/jpfielding/dcmrmel.go/pkg/rmel"
)

// NewRoot builds the dcmrmel command: remove selected elements from the
// DICOM file or directory named by the single positional argument.
func NewRoot(ctx context.Context, version string) *cobra.Command {
	var (
		noBackup  bool
		rmPrivate bool
		rmVR      []string
		rmGroup   []string
		rmTag     []string
	)

	cmd := &cobra.Command{
		Use:     "dcmrmel [flags] FILE-or-DIR",
		Short:   "remove element(s) from DICOM dataset(s)",
		Long: "dcmrmel strips selected data elements from DICOM files in place,\n" +
			"for de-identification or size reduction. It works on a single file\n" +
			"or recursively over a directory, backing originals up to .bak files\n" +
			"unless told otherwise.",
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logLevel, _ := cmd.Flags().GetString("log-level")

			var level slog.Level
			levelErr := level.UnmarshalText([]byte(strings.ToUpper(logLevel)))
			if levelErr != nil {
				level = slog.LevelInfo
			}
			out := io.Writer(os.Stderr)
			if logFile, _ := cmd.Flags().GetString("log-file"); logFile != "" {
				out = io.MultiWriter(out, logging.Rotating(logFile))
			}
			slog.SetDefault(logging.Logger(out, false, level))

			if levelErr != nil {
				slog.WarnContext(ctx, "Invalid log level, defaulting to INFO", "level", logLevel, "error", levelErr)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// no arguments prints help and exits cleanly
			if len(args) == 0 {
				return cmd.Help()
			}

			// resolve every selector before any file is touched
			filter := rmel.Filter{Private: rmPrivate}
			var err error
			if filter.VRs, err = rmel.ParseVRs(rmVR); err != nil {
				return err
			}
			if filter.Groups, err = rmel.ParseGroups(rmGroup); err != nil {
				return err
			}
			if filter.Tags, err = rmel.ParseTags(rmTag); err != nil {
				return err
			}

			proc := &rmel.Processor{
				Filter:   filter,
				NoBackup: noBackup,
				Progress: cmd.OutOrStdout(),
			}
			res, err := proc.Run(ctx, args[0])
			if err != nil {
				return err
			}
			slog.InfoContext(ctx, "run complete",
				"processed", res.Processed,
				"skipped", res.Skipped,
			)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&noBackup, "no-backup", false,
		"don't backup files before removing elements (DANGEROUS)")
	flags.BoolVar(&rmPrivate, "rm-private", false,
		"remove all elements with an odd group number")
	flags.StringSliceVar(&rmVR, "rm-vr", nil,
		"value-representations to remove (e.g. DA, TM, PN or UI)")
	flags.StringSliceVar(&rmGroup, "rm-group", nil,
		"groups to remove as hex strings (e.g. 0x0008 or 0x0010)")
	flags.StringSliceVar(&rmTag, "rm-tag", nil,
		"tags to remove, keywords (e.g. RepetitionTime) or combined group and element numbers (e.g. 0x00180080)")

	pf := cmd.PersistentFlags()
	pf.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	pf.String("log-file", "", "also append logs to a rotating file")
	return cmd
}
