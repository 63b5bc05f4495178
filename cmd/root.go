package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tempokey/tempokey/internal/log"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "tempokey",
	Short: "Streaming tempo and key analysis for audio",
	Long:  `tempokey estimates tempo (BPM) and musical key from audio, incrementally, the same way it would during live capture.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Init(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug|info|warn|error")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
