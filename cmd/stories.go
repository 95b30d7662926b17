package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zjrosen/spooky/internal/config"
	"github.com/zjrosen/spooky/internal/presentation"
	"github.com/zjrosen/spooky/internal/story"
)

var (
	storiesJSON  bool
	addID        string
	addName      string
	addDesc      string
	addPath      string
	exportOutput string
)

var storiesCmd = &cobra.Command{
	Use:   "stories",
	Short: "List, add, remove and export stories",
}

var storiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every story in jump order",
	Long: `List every story in the order the nav shows them. Custom stories from the
config are marked with '*'.

Examples:
  spooky stories list
  spooky stories list --json | jq '.[].id'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := loadStories(cmd.Context(), cfg, configFilePath())
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
		return listStories(cmd.OutOrStdout(), reg, storiesJSON)
	},
}

var storiesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register an issue JSON file as a custom story",
	Long: `Register an issue JSON file as a custom story. The entry is appended to
the config's stories list; comments elsewhere in the file are kept.

Without --path, an interactive form asks for the details.

Examples:
  spooky stories add --path stories/poltergeist.json --name "👻 Poltergeist"
  spooky stories add`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s := config.StoryConfig{ID: addID, Name: addName, Description: addDesc, Path: addPath}
		if s.Path == "" {
			if err := promptStory(&s); err != nil {
				return err
			}
		}
		saved, err := addStory(configFilePath(), s, cfg.Stories)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Added story %q (#%s) to %s\n", saved.Name, saved.ID, configFilePath())
		return err
	},
}

var storiesRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a custom story from the config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.TrimPrefix(args[0], "#")
		if err := config.RemoveStory(configFilePath(), id, cfg.Stories); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Removed story #%s\n", id)
		return err
	},
}

var storiesExportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Write stories as JSON",
	Long: `Write every story as a stories document, or one story as a single issue
in GitHub's JSON shape. Either output can be used as a fetch source.

Examples:
  spooky stories export > stories.json
  spooky stories export midnight -o midnight.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadStories(cmd.Context(), cfg, configFilePath())
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}
		data, err := exportStories(reg, fragmentArg(args))
		if err != nil {
			return err
		}
		if exportOutput == "" || exportOutput == "-" {
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		}
		return os.WriteFile(exportOutput, append(data, '\n'), 0o600)
	},
}

func init() {
	storiesListCmd.Flags().BoolVar(&storiesJSON, "json", false, "print JSON instead of a table")

	storiesAddCmd.Flags().StringVar(&addID, "id", "", "story id, used as the location fragment (default: generated)")
	storiesAddCmd.Flags().StringVar(&addName, "name", "", "nav label (default: the id)")
	storiesAddCmd.Flags().StringVar(&addDesc, "description", "", "one-line description")
	storiesAddCmd.Flags().StringVar(&addPath, "path", "", "issue JSON file, relative to the config file")

	storiesExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to a file instead of stdout")

	storiesCmd.AddCommand(storiesListCmd, storiesAddCmd, storiesRemoveCmd, storiesExportCmd)
	rootCmd.AddCommand(storiesCmd)
}

func listStories(w io.Writer, reg *story.Registry, asJSON bool) error {
	formatter := presentation.NewFormatter(w)
	dtos := presentation.FromRegistry(reg)
	if asJSON {
		return formatter.FormatStories(dtos)
	}
	return formatter.FormatStoriesTable(dtos)
}

// newStoryID generates an id for a story added without one.
func newStoryID() string {
	return "story-" + uuid.NewString()[:8]
}

// addStory fills defaults, checks the file decodes and appends the entry to
// the config file.
func addStory(configPath string, s config.StoryConfig, existing []config.StoryConfig) (config.StoryConfig, error) {
	s.ID = strings.TrimPrefix(strings.TrimSpace(s.ID), "#")
	if s.ID == "" {
		s.ID = newStoryID()
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	if _, err := story.LoadFile(config.ResolvePath(configPath, s.Path), s.ID, s.Name, s.Description); err != nil {
		return s, fmt.Errorf("checking story file: %w", err)
	}
	if err := config.AddStory(configPath, s, existing); err != nil {
		return s, err
	}
	return s, nil
}

// promptStory asks for the story fields with a form.
func promptStory(s *config.StoryConfig) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Issue JSON file").
				Description("Path relative to the config file").
				Value(&s.Path).
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return fmt.Errorf("path is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Story id").
				Description("Used as the location fragment. Leave empty to generate one.").
				Value(&s.ID).
				Validate(func(v string) error {
					v = strings.TrimPrefix(strings.TrimSpace(v), "#")
					if v == "" {
						return nil
					}
					return story.ValidateID(v)
				}),

			huh.NewInput().
				Title("Name").
				Description("Shown in the nav").
				Value(&s.Name),

			huh.NewInput().
				Title("Description (optional)").
				Value(&s.Description),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("prompt cancelled: %w", err)
	}
	return nil
}

// exportStories encodes the whole registry, or the story named id.
func exportStories(reg *story.Registry, id string) ([]byte, error) {
	if id == "" {
		return story.EncodeDocument(reg.Entries())
	}
	e, ok := reg.Get(id)
	if !ok {
		return nil, fmt.Errorf("no story %q (have %s)", id, strings.Join(reg.IDs(), ", "))
	}
	return story.EncodeIssue(e.Issue)
}
