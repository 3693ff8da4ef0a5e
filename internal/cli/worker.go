package cli

import (
	"errors"
	"fmt"
	"sort"

	"task-tracker-api/internal/repository"
	"task-tracker-api/internal/tracker"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// CreateWorkerCmd registers a worker account from the command line.
func CreateWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-worker [username]",
		Short: "Create a worker account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			firstName, _ := cmd.Flags().GetString("first-name")
			lastName, _ := cmd.Flags().GetString("last-name")
			positionID, _ := cmd.Flags().GetUint("position")

			_, log, db, err := bootstrap(cmd)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer func() { _ = log.Sync() }()
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			in := tracker.RegisterInput{
				Username:  args[0],
				FirstName: firstName,
				LastName:  lastName,
				Password1: password,
				Password2: password,
			}
			if positionID != 0 {
				in.PositionID = &positionID
			}

			svc := tracker.NewService(repository.New(db), log)
			w, err := svc.RegisterWorker(cmd.Context(), in)
			if fe, ok := tracker.AsFieldErrors(err); ok {
				out := cmd.ErrOrStderr()
				fields := make([]string, 0, len(fe))
				for f := range fe {
					fields = append(fields, f)
				}
				sort.Strings(fields)
				for _, f := range fields {
					for _, msg := range fe[f] {
						fmt.Fprintf(out, "  %s %s: %s\n", color.New(color.FgRed).Sprint("✗"), f, msg)
					}
				}
				return errors.New("worker not created")
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s created worker %s\n",
				color.New(color.FgGreen).Sprint("✓"), color.New(color.Bold).Sprint(w.String()))
			return nil
		},
	}
	cmd.Flags().String("password", "", "Password (at least 8 characters)")
	cmd.Flags().String("first-name", "", "First name")
	cmd.Flags().String("last-name", "", "Last name")
	cmd.Flags().Uint("position", 0, "Position id")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
