package commands

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"crosspad/internal/httpserver"
	"crosspad/internal/store"
	"crosspad/internal/vision"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the collaborative solving server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := store.Open(getEnv("DB_PATH", "data/crosspad.db"))
			if err != nil {
				return err
			}
			defer db.Close()

			st := store.New(db)
			if err := st.Load(ctx); err != nil {
				return err
			}

			var vc *vision.Client
			if project := os.Getenv("GCP_PROJECT_ID"); project != "" {
				vc, err = vision.NewClient(ctx, project, os.Getenv("GCP_REGION"))
				if err != nil {
					return err
				}
				defer vc.Close()
			} else {
				log.Info().Msg("GCP_PROJECT_ID not set, photo extraction disabled")
			}

			srv := httpserver.New(st, vc, []byte(os.Getenv("JWT_SECRET")))
			if addr == "" {
				addr = ":" + getEnv("PORT", "8080")
			}
			log.Info().Str("addr", addr).Int("puzzles", len(st.ListPuzzles())).Msg("starting crosspad")
			return srv.Start(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :$PORT or :8080)")
	return cmd
}
