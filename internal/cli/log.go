package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"moodwatch/internal/app"
	"moodwatch/internal/model"
)

var (
	moodNote   string
	sampleTime string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record a diary entry, a mood label or watch readings",
}

var logEntryCmd = &cobra.Command{
	Use:   "entry <text>",
	Short: "Write a diary entry; the server detects its emotion",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().LogEntry(cmd.Context(), strings.Join(args, " "))
	},
}

var logMoodCmd = &cobra.Command{
	Use:   "mood <emotion> <intensity>",
	Short: "Record how you feel right now (intensity 0..1)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		intensity, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid intensity %q: %w", args[1], err)
		}
		return getApp().LogMood(cmd.Context(), app.MoodOptions{
			Emotion:   model.Emotion(strings.TrimSpace(args[0])),
			Intensity: intensity,
			Note:      moodNote,
		})
	},
}

var logSampleCmd = &cobra.Command{
	Use:   "sample <metric=value>...",
	Short: "Upload one watch reading, e.g. heart_rate=72 hrv=41.5",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseMetricArgs(args)
		if err != nil {
			return err
		}
		at, err := parseTimeFlag(sampleTime)
		if err != nil {
			return err
		}
		return getApp().LogSample(cmd.Context(), app.SampleOptions{Values: values, Timestamp: at})
	},
}

var logSamplesCmd = &cobra.Command{
	Use:   "samples <file.csv>",
	Short: "Upload watch readings from a CSV file in one batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().LogSamples(cmd.Context(), args[0])
	},
}

func init() {
	logMoodCmd.Flags().StringVar(&moodNote, "note", "", "Optional note")
	logSampleCmd.Flags().StringVar(&sampleTime, "at", "", "Reading time (RFC 3339); defaults to server time")

	logCmd.AddCommand(logEntryCmd)
	logCmd.AddCommand(logMoodCmd)
	logCmd.AddCommand(logSampleCmd)
	logCmd.AddCommand(logSamplesCmd)
}
