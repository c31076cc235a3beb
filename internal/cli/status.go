package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubetac/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show settings and match history summary",
	Long:  `Display the effective configuration, the database location and a summary of recorded games.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "cubetac status")
	fmt.Fprintln(out, "==============")
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Rotation: %s (frame every %s)\n", cfg.RotationDuration, cfg.FrameInterval)
	fmt.Fprintf(out, "Listen:   %s\n", cfg.ListenAddr)
	fmt.Fprintf(out, "Record:   %t\n", cfg.Record)

	path, err := cfg.DatabasePath()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Database: %s\n", path)

	db, err := storage.Open(path)
	if err != nil {
		fmt.Fprintf(out, "          (unavailable: %v)\n", err)
		return nil
	}
	defer db.Close()

	version, err := db.CurrentVersion()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Schema:   v%d\n", version)

	games, err := storage.NewGameRepository(db).List(1 << 20)
	if err != nil {
		return err
	}
	wins := map[string]int{}
	for _, g := range games {
		wins[winnerLabel(g)]++
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Games: %d (X %d, O %d, unfinished %d)\n", len(games), wins["X"], wins["O"], wins["none"]+wins["-"])
	if len(games) > 0 {
		fmt.Fprintf(out, "Last game: %s\n", games[0].StartedAt.Local().Format(time.RFC3339))
	}
	return nil
}
