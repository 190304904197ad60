package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mkanban/internal/util"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects"},
	Short:   "Manage projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, newest first",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectCreate,
}

var projectRenameCmd = &cobra.Command{
	Use:   "rename <project-id> <name>",
	Short: "Rename a project",
	Args:  cobra.ExactArgs(2),
	RunE:  runProjectRename,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete a project and all of its tasks",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDelete,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectRenameCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}

func runProjectList(cmd *cobra.Command, args []string) error {
	return withApp(cmdContext(cmd), func(app *AppContext) error {
		projects, err := app.Boards.ListProjects(cmdContext(cmd))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(projects) == 0 {
			fmt.Fprintln(out, "No projects found.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCREATED")
		for _, p := range projects {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, util.Truncate(p.Name, 40), util.FormatDateTime(p.CreatedAt))
		}
		return w.Flush()
	})
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	return withApp(cmdContext(cmd), func(app *AppContext) error {
		p, err := app.Boards.CreateProject(cmdContext(cmd), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", p.Name, p.ID)
		return nil
	})
}

func runProjectRename(cmd *cobra.Command, args []string) error {
	return withApp(cmdContext(cmd), func(app *AppContext) error {
		p, err := app.Boards.RenameProject(cmdContext(cmd), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed project %s to %s\n", p.ID, p.Name)
		return nil
	})
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmdContext(cmd), func(app *AppContext) error {
		if err := app.Boards.DeleteProject(cmdContext(cmd), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", args[0])
		return nil
	})
}
