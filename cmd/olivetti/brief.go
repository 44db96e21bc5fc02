package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"olivetti/internal/brief"
	"olivetti/internal/gateway"
	"olivetti/internal/store"
	"olivetti/internal/telemetry"
	"olivetti/internal/vault"
)

var (
	briefProject string
	briefAction  string
	briefLane    string
	briefTask    string
)

// briefCmd composes and prints the brief without calling the model. Useful
// for inspecting exactly what the model would be conditioned on.
var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Compose the AI brief for a project and print it",
	Long: `Assembles the full weighted brief for the given project: writing style
and genre directives, voice lock, technical controls, style match, retrieved
voice and style exemplars, and story bible canon. Prints the result without
calling the model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		b, _, err := composeBrief(cmd.Context(), a)
		if err != nil {
			return err
		}

		fmt.Println(b.Text)
		fmt.Fprintf(os.Stderr, "\n[temperature: %.2f]\n", b.Temperature)
		return nil
	},
}

// generateCmd composes the brief and runs one model call with it.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Compose the brief and generate prose with it",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.cfg.Validate(); err != nil {
			return err
		}

		b, project, err := composeBrief(cmd.Context(), a)
		if err != nil {
			return err
		}

		client, err := gateway.NewGenAIClient(cmd.Context(), a.cfg.AI.APIKey)
		if err != nil {
			return err
		}
		gw := gateway.New(a.cfg, client)

		task := briefTask
		if task == "" {
			task = fmt.Sprintf("%s the current passage, staying in the %s lane.", briefAction, briefLane)
		}

		logger.Info("generating",
			zap.String("project", briefProject),
			zap.String("action", briefAction),
			zap.Float64("temperature", b.Temperature))

		result, err := gw.Generate(cmd.Context(), gateway.Request{
			Brief:       b.Text,
			Task:        task,
			Draft:       project.Draft,
			Temperature: b.Temperature,
		})
		if err != nil {
			return err
		}

		if a.cfg.Telemetry.Enabled {
			tracker := telemetry.NewUsageTrackerWithCap(a.cfg.Telemetry.MaxEvents)
			tracker.Track("generate", map[string]string{
				"action":     briefAction,
				"lane":       briefLane,
				"word_count": fmt.Sprintf("%d", len(strings.Fields(result))),
			})
			if out, err := tracker.Export(); err == nil {
				// Overwritten per invocation; the CLI has no long-lived session.
				_ = os.WriteFile(filepath.Join(workspace, ".olivetti", "usage.json"), []byte(out), 0644)
			}
		}

		fmt.Println(result)
		return nil
	},
}

// composeBrief loads the project and runs retrieval plus assembly.
func composeBrief(ctx context.Context, a *app) (brief.Brief, *store.Project, error) {
	lane, err := vault.ParseLane(briefLane)
	if err != nil {
		return brief.Brief{}, nil, err
	}

	project, err := a.db.LoadProject(briefProject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return brief.Brief{}, nil, fmt.Errorf("project %q does not exist (create it with 'olivetti project save')", briefProject)
		}
		return brief.Brief{}, nil, err
	}

	composer := brief.NewComposer(a.voices, a.banks)
	b, err := composer.Compose(ctx, briefAction, lane, project.Draft, project.Settings, &project.Bible)
	if err != nil {
		return brief.Brief{}, nil, err
	}
	return b, project, nil
}

// projectCmd manages persisted projects.
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage writing projects",
}

func init() {
	for _, cmd := range []*cobra.Command{briefCmd, generateCmd} {
		cmd.Flags().StringVarP(&briefProject, "project", "p", "", "Project name (required)")
		cmd.Flags().StringVarP(&briefAction, "action", "a", "Continue", "Editing action (Continue, Rewrite, Expand, Trim)")
		cmd.Flags().StringVarP(&briefLane, "lane", "l", "Narration", "Target lane (Dialogue, Narration, Interiority, Action)")
		_ = cmd.MarkFlagRequired("project")
	}
	generateCmd.Flags().StringVarP(&briefTask, "task", "t", "", "Task instruction for the model (default derived from action)")

	saveCmd := &cobra.Command{
		Use:   "save [name]",
		Short: "Create or update a project (draft from stdin or --draft-file)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			p, err := a.db.LoadProject(args[0])
			if errors.Is(err, sql.ErrNoRows) {
				p = &store.Project{Name: args[0], Settings: brief.DefaultSettings()}
			} else if err != nil {
				return err
			}

			if path, _ := cmd.Flags().GetString("draft-file"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				p.Draft = string(data)
			} else if useStdin, _ := cmd.Flags().GetBool("stdin"); useStdin {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}
				p.Draft = string(data)
			}

			if path, _ := cmd.Flags().GetString("settings-file"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				if err := yaml.Unmarshal(data, &p.Settings); err != nil {
					return fmt.Errorf("failed to parse settings: %w", err)
				}
				p.Settings.Normalize()
			}
			if path, _ := cmd.Flags().GetString("bible-file"); path != "" {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				if err := yaml.Unmarshal(data, &p.Bible); err != nil {
					return fmt.Errorf("failed to parse story bible: %w", err)
				}
			}

			if err := a.db.SaveProject(p); err != nil {
				return err
			}
			fmt.Printf("Saved project %q\n", p.Name)
			return nil
		},
	}
	saveCmd.Flags().String("draft-file", "", "Read the draft from a file")
	saveCmd.Flags().Bool("stdin", false, "Read the draft from stdin")
	saveCmd.Flags().String("settings-file", "", "Merge settings from a YAML file")
	saveCmd.Flags().String("bible-file", "", "Merge the story bible from a YAML file")
	projectCmd.AddCommand(saveCmd)

	projectCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List projects, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			names, err := a.db.ListProjects()
			if err != nil {
				return err
			}
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

	projectCmd.AddCommand(&cobra.Command{
		Use:   "bible [name]",
		Short: "Export a project's story bible as markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			p, err := a.db.LoadProject(args[0])
			if err != nil {
				return err
			}
			fmt.Print(p.Bible.Markdown(p.Name, p.CreatedAt, p.UpdatedAt))
			return nil
		},
	})

	projectCmd.AddCommand(&cobra.Command{
		Use:   "delete [name]",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			ok, err := a.db.DeleteProject(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("project %q does not exist", args[0])
			}
			fmt.Printf("Deleted project %q\n", args[0])
			return nil
		},
	})
}
