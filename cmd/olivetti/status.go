package main

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"olivetti/internal/vault"
)

// statusCmd reports configuration and training state at a glance.
var statusCmd = &cobra.Command{
	Use:   "status [project]",
	Short: "Show configuration, training data, and project status",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		fmt.Println(a.cfg.Summary())

		if a.cfg.AI.APIKey != "" {
			fmt.Println("  API Key: set")
		} else {
			fmt.Println("  API Key: NOT SET (brief composition works; generation disabled)")
		}

		fmt.Printf("\nVoices: %d  Style Banks: %d\n", len(a.voices.Names()), len(a.banks.Names()))
		for _, name := range a.voices.Names() {
			fmt.Printf("  voice %-20s %s\n", name, laneCounts(a, "voice_vault", name))
		}
		for _, name := range a.banks.Names() {
			fmt.Printf("  bank  %-20s %s\n", name, laneCounts(a, "style_bank", name))
		}

		if len(args) == 1 {
			p, err := a.db.LoadProject(args[0])
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("project %q does not exist", args[0])
				}
				return err
			}
			fmt.Printf("\nProject %q (updated %s)\n", p.Name, p.UpdatedAt.Format("2006-01-02 15:04"))
			fmt.Printf("  Draft: %d chars\n", len(p.Draft))
			fmt.Printf("  Settings: %s\n", p.Settings.Summary())
			if p.Bible.IsEmpty() {
				fmt.Println("  Story Bible: empty")
			} else {
				fmt.Printf("  Story Bible: %s\n", p.Bible.Fingerprint())
			}
		}

		return nil
	},
}

// laneCounts renders per-lane counts on one line.
func laneCounts(a *app, namespace, name string) string {
	stats := a.storeFor(namespace).Stats(name)
	total := 0
	parts := make([]string, 0, len(vault.Lanes()))
	for _, lane := range vault.Lanes() {
		parts = append(parts, fmt.Sprintf("%s:%d", lane, stats[lane]))
		total += stats[lane]
	}
	return fmt.Sprintf("%d samples (%s)", total, strings.Join(parts, " "))
}
