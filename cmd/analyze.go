package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tempokey/tempokey/analysis"
	"github.com/tempokey/tempokey/render"
)

var (
	clickPath     string
	clickMeasures int
)

func init() {
	analyzeCmd.Flags().StringVar(&clickPath, "click", "", "write a MIDI click track at the detected tempo to this path")
	analyzeCmd.Flags().IntVar(&clickMeasures, "measures", 8, "click track length in 4/4 measures")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.wav>",
	Short: "Analyzes a WAV file and prints the tempo/key report",
	Long:  `Analyzes a WAV file by replaying its feature frames through the streaming engine and prints the final report as JSON.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := analysis.File(args[0], analysis.DefaultOptions())
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))

		if clickPath != "" {
			f, err := os.Create(clickPath)
			if err != nil {
				return fmt.Errorf("could not create click file: %w", err)
			}
			defer f.Close()
			if err := render.WriteClickTrack(f, result.Beat.BPM, clickMeasures); err != nil {
				return err
			}
			fmt.Printf("click track written to %v (%.1f BPM)\n", clickPath, result.Beat.BPM)
		}
		return nil
	},
}
