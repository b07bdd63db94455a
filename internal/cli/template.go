package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage saved configuration templates",
}

var templateSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the effective configuration under a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := repository()
		cfg, err := resolveConfig(cmd, repo, "")
		if err != nil {
			return err
		}
		if err := repo.SaveTemplate(args[0], cfg); err != nil {
			return err
		}
		fmt.Printf("Template %q saved.\n", args[0])
		return nil
	},
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		templates, err := repository().ListTemplates()
		if err != nil {
			return err
		}
		if len(templates) == 0 {
			fmt.Println("No templates saved.")
			return nil
		}
		names := make([]string, 0, len(templates))
		for name := range templates {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cfg := templates[name]
			fmt.Printf("%-20s %s, %s, %s\n", name, cfg.CaptureMode, cfg.Direction, cfg.SessionMode)
		}
		return nil
	},
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := repository().DeleteTemplate(args[0]); err != nil {
			return err
		}
		fmt.Printf("Template %q deleted.\n", args[0])
		return nil
	},
}

func init() {
	addConfigFlags(templateSaveCmd)
	templateCmd.AddCommand(templateSaveCmd, templateListCmd, templateDeleteCmd)
	rootCmd.AddCommand(templateCmd)
}
