package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"olivetti/internal/vault"
)

// newCollectionCmd builds the command tree shared by the voice vault and the
// style bank. Both namespaces have identical collection/lane/sample
// semantics; only the noun differs.
func newCollectionCmd(use, namespace, noun string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Manage %s collections", noun),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create [name]",
		Short: fmt.Sprintf("Create an empty %s collection", noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			s := a.storeFor(namespace)
			if !s.Create(args[0]) {
				return fmt.Errorf("%s %q already exists", noun, args[0])
			}
			if err := a.db.SaveVault(s); err != nil {
				return err
			}
			fmt.Printf("Created %s %q\n", noun, args[0])
			return nil
		},
	})

	addCmd := &cobra.Command{
		Use:   "add [name] [lane]",
		Short: "Add a writing sample to a lane (reads stdin or --text)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lane, err := vault.ParseLane(args[1])
			if err != nil {
				return err
			}

			text, _ := cmd.Flags().GetString("text")
			if text == "" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read sample from stdin: %w", err)
				}
				text = string(data)
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			s := a.storeFor(namespace)
			if !s.AddSample(args[0], lane, text) {
				return fmt.Errorf("sample is empty")
			}
			if err := a.db.SaveVault(s); err != nil {
				return err
			}
			fmt.Printf("Added sample to %q/%s (%d words)\n", args[0], lane, len(strings.Fields(text)))
			return nil
		},
	}
	addCmd.Flags().String("text", "", "Sample text (reads stdin when omitted)")
	cmd.AddCommand(addCmd)

	rmCmd := &cobra.Command{
		Use:   "rm [name] [lane]",
		Short: "Remove a sample from a lane, most recent first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lane, err := vault.ParseLane(args[1])
			if err != nil {
				return err
			}
			offset, _ := cmd.Flags().GetInt("offset")

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			s := a.storeFor(namespace)
			if !s.DeleteSample(args[0], lane, offset) {
				return fmt.Errorf("no sample at offset %d in %q/%s", offset, args[0], lane)
			}
			if err := a.db.SaveVault(s); err != nil {
				return err
			}
			fmt.Printf("Removed sample %d from %q/%s\n", offset, args[0], lane)
			return nil
		},
	}
	rmCmd.Flags().Int("offset", 0, "Offset from the most recent sample (0 = newest)")
	cmd.AddCommand(rmCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [name]",
		Short: fmt.Sprintf("Delete a %s collection and all its samples", noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			s := a.storeFor(namespace)
			if !s.DeleteCollection(args[0]) {
				return fmt.Errorf("%s %q does not exist", noun, args[0])
			}
			if err := a.db.SaveVault(s); err != nil {
				return err
			}
			fmt.Printf("Deleted %s %q\n", noun, args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s collections", noun),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			names := a.storeFor(namespace).Names()
			if len(names) == 0 {
				fmt.Println("(none)")
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stats [name]",
		Short: "Show per-lane sample counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			stats := a.storeFor(namespace).Stats(args[0])
			total := 0
			for _, lane := range vault.Lanes() {
				fmt.Printf("%-12s %d\n", lane, stats[lane])
				total += stats[lane]
			}
			fmt.Printf("%-12s %d\n", "total", total)
			return nil
		},
	})

	return cmd
}
