package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mkanban/internal/backup"
	"github.com/emiliopalmerini/mkanban/internal/util"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create, list and restore board snapshots",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Snapshot every project and task",
	Long: `Write a snapshot of every project and task to the configured blob store.

The run is skipped when nothing changed since the last snapshot, unless
--force is given. Snapshots beyond the retention limit are pruned oldest first.

Examples:
  mkanban backup create          # Snapshot if anything changed
  mkanban backup create --force  # Always write a snapshot`,
	Args: cobra.NoArgs,
	RunE: runBackupCreate,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE:  runBackupList,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <filename>",
	Short: "Upsert every record of a snapshot back into the store",
	Long: `Restore a snapshot by upserting its projects and then its tasks.

Records missing from the snapshot are left untouched. Invalid records are
skipped and counted.

Examples:
  mkanban backup restore backup-2026-02-01T08-00-00.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupRestore,
}

var backupForce bool

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)

	backupCreateCmd.Flags().BoolVar(&backupForce, "force", false, "Write a snapshot even if nothing changed")
}

func runBackupCreate(cmd *cobra.Command, args []string) error {
	return withApp(cmdContext(cmd), func(app *AppContext) error {
		meta, err := app.Backups.Create(cmdContext(cmd), backup.CreateOptions{SkipIfUnchanged: !backupForce})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if meta.Skipped {
			fmt.Fprintf(out, "Skipped: %s (%d projects, %d tasks)\n", meta.Reason, meta.ProjectCount, meta.TaskCount)
			return nil
		}
		fmt.Fprintf(out, "Created %s (%s, %d projects, %d tasks)\n",
			meta.Filename, util.FormatBytes(meta.Size), meta.ProjectCount, meta.TaskCount)
		return nil
	})
}

func runBackupList(cmd *cobra.Command, args []string) error {
	return withApp(cmdContext(cmd), func(app *AppContext) error {
		backups, err := app.Backups.List(cmdContext(cmd))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(backups) == 0 {
			fmt.Fprintln(out, "No backups found.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FILENAME\tSIZE\tCREATED")
		for _, b := range backups {
			fmt.Fprintf(w, "%s\t%s\t%s\n", b.Filename, util.FormatBytes(b.Size), util.FormatDateTime(b.CreatedAt))
		}
		return w.Flush()
	})
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	return withApp(cmdContext(cmd), func(app *AppContext) error {
		res, err := app.Backups.Restore(cmdContext(cmd), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %d projects (%d failed), %d tasks (%d failed)\n",
			res.ProjectsRestored, res.ProjectsFailed, res.TasksRestored, res.TasksFailed)
		return nil
	})
}
