package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mkanban/internal/board"
	"github.com/emiliopalmerini/mkanban/internal/domain"
	"github.com/emiliopalmerini/mkanban/internal/util"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	Aliases: []string{"tasks"},
	Short:   "Manage the tasks of a project board",
}

var taskListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "Show a project board column by column",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskList,
}

var taskAddCmd = &cobra.Command{
	Use:   "add <project-id> <title>",
	Short: "Append a task to a project",
	Long: `Append a task to the end of a project's board.

Examples:
  mkanban task add <project-id> "Fix login redirect"
  mkanban task add <project-id> "Add dark mode" --priority high --tag ui --tag css`,
	Args: cobra.ExactArgs(2),
	RunE: runTaskAdd,
}

var taskMoveCmd = &cobra.Command{
	Use:   "move <task-id> <column>",
	Short: "Move a task to a column position",
	Long: `Move a task to a column, at --index among that column's tasks.

Columns: planning, error, in-progress, human-review, ai-review, to-verify, done.

Examples:
  mkanban task move <task-id> in-progress            # Top of In Progress
  mkanban task move <task-id> done --index 3         # Fourth in Done`,
	Args: cobra.ExactArgs(2),
	RunE: runTaskMove,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

var (
	taskDescription string
	taskPriority    string
	taskStatus      string
	taskTags        []string
	taskMoveIndex   int
)

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskMoveCmd)
	taskCmd.AddCommand(taskDeleteCmd)

	taskAddCmd.Flags().StringVarP(&taskDescription, "description", "d", "", "Task description")
	taskAddCmd.Flags().StringVar(&taskPriority, "priority", string(domain.PriorityMedium), "Priority: low, medium, high, urgent")
	taskAddCmd.Flags().StringVar(&taskStatus, "status", string(domain.ColumnPlanning), "Column to add the task to")
	taskAddCmd.Flags().StringSliceVarP(&taskTags, "tag", "t", nil, "Tag (repeatable)")

	taskMoveCmd.Flags().IntVarP(&taskMoveIndex, "index", "i", 0, "Position within the destination column")
}

func runTaskList(cmd *cobra.Command, args []string) error {
	return withApp(cmdContext(cmd), func(app *AppContext) error {
		tasks, err := app.Boards.Board(cmdContext(cmd), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}

		byColumn := make(map[domain.ColumnID][]*domain.Task)
		for _, t := range tasks {
			byColumn[t.Status] = append(byColumn[t.Status], t)
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, col := range domain.Columns {
			column := byColumn[col.ID]
			if len(column) == 0 {
				continue
			}
			fmt.Fprintf(w, "%s (%d)\n", col.Title, len(column))
			for _, t := range column {
				fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", t.ID, util.Truncate(t.Title, 50), t.Priority, strings.Join(t.Tags, ","))
			}
		}
		return w.Flush()
	})
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	priority, err := domain.ParsePriority(taskPriority)
	if err != nil {
		return err
	}
	status, err := domain.ParseColumnID(taskStatus)
	if err != nil {
		return err
	}

	return withApp(cmdContext(cmd), func(app *AppContext) error {
		t := domain.NewTask(args[0], args[1], time.Now())
		t.Description = taskDescription
		t.Priority = priority
		t.Status = status
		if len(taskTags) > 0 {
			t.Tags = taskTags
		}

		saved, err := app.Boards.AddTask(cmdContext(cmd), args[0], t)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added task %s (%s)\n", saved.Title, saved.ID)
		return nil
	})
}

func runTaskMove(cmd *cobra.Command, args []string) error {
	column, err := domain.ParseColumnID(args[1])
	if err != nil {
		return err
	}

	return withApp(cmdContext(cmd), func(app *AppContext) error {
		t, err := app.Boards.GetTask(cmdContext(cmd), args[0])
		if err != nil {
			return err
		}

		_, res, err := app.Boards.Move(cmdContext(cmd), t.ProjectID, board.Move{TaskID: t.ID, Column: column, Index: taskMoveIndex})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.Upserted == 0 {
			fmt.Fprintln(out, "Task already in place.")
			return nil
		}
		fmt.Fprintf(out, "Moved %s to %s (%d tasks updated)\n", t.Title, column, res.Upserted)
		return nil
	})
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmdContext(cmd), func(app *AppContext) error {
		if err := app.Boards.DeleteTask(cmdContext(cmd), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
		return nil
	})
}
