package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/FMSoblaci/oblat-project-flow/internal/tracker"
)

// newListCmd creates the list command
func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `List all tasks in the current project.

Example:
  oblat list
  oblat list --status in_progress`,
		RunE: func(cmd *cobra.Command, args []string) error {
			statusFilter, _ := cmd.Flags().GetString("status")
			noColor, _ := cmd.Flags().GetBool("no-color")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			tasks, err := store.ListTasks()
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}

			if statusFilter != "" {
				filtered := tasks[:0]
				for _, t := range tasks {
					if string(t.Status) == statusFilter {
						filtered = append(filtered, t)
					}
				}
				tasks = filtered
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(tasks)
			}

			if len(tasks) == 0 {
				fmt.Println("No tasks found.")
				return nil
			}

			useColor := !noColor && isatty.IsTerminal(os.Stdout.Fd())
			now := time.Now()

			// Print tasks in table format
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tDUE\tASSIGNED\tTITLE")
			fmt.Fprintln(w, "──\t──────\t───\t────────\t─────")

			for _, t := range tasks {
				due := "-"
				if t.DueDate != nil {
					due = t.DueDate.Format("2006-01-02")
				}
				assigned := t.AssignedTo
				if assigned == "" {
					assigned = "-"
				}
				status := string(t.Status)
				if useColor {
					status = colorStatus(t.Status, t.DueDate, now)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, status, due, assigned, truncate(t.Title, 50))
			}

			w.Flush()
			return nil
		},
	}

	cmd.Flags().String("status", "", "filter by status (todo, in_progress, done)")
	cmd.Flags().Bool("no-color", false, "disable colored output")

	return cmd
}

// colorStatus renders a task status with ANSI color. Overdue open tasks
// show red regardless of status.
func colorStatus(status tracker.TaskStatus, due *time.Time, now time.Time) string {
	if status != tracker.TaskDone && due != nil && tracker.Classify(*due, now) == tracker.UrgencyOverdue {
		return "\033[31m" + string(status) + "\033[0m"
	}
	switch status {
	case tracker.TaskDone:
		return "\033[32m" + string(status) + "\033[0m"
	case tracker.TaskInProgress:
		return "\033[33m" + string(status) + "\033[0m"
	default:
		return string(status)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
