package commands

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func Execute() error {
	root := &cobra.Command{
		Use:   "crosspad",
		Short: "Collaborative crossword solving server",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
				zerolog.SetGlobalLevel(lvl)
			}
		},
	}

	root.AddCommand(serveCmd(), checkCmd())
	return root.Execute()
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
