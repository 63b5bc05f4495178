package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/tempokey/tempokey/constants"
	"github.com/tempokey/tempokey/db"
	"github.com/tempokey/tempokey/internal/log"
	"github.com/tempokey/tempokey/server"
	"github.com/tempokey/tempokey/task"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the upload/task-polling analysis API",
	Long:  `Runs the HTTP service: upload a WAV, poll the task, fetch the tempo/key report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := db.NewFromEnv()
		if err != nil {
			return err
		}
		if results != nil {
			log.Info("result persistence enabled", "endpoint", constants.GetDynamoEndpoint(), "table", constants.GetDynamoTable())
		}

		srv := server.New(task.NewStore(), results, constants.GetUploadDir())
		addr := constants.GetListenAddr()
		log.Info("listening", "addr", addr)
		return http.ListenAndServe(addr, srv.Handler())
	},
}
