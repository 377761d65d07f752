package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/taskboard/internal/core"
	"github.com/valter-silva-au/taskboard/pkg/models"
	"gopkg.in/yaml.v3"
)

var replayFormat string

var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml|->",
	Short: "Replay a recorded script of board actions",
	Long: `Replay a YAML script of board actions against a fresh board and print
the resulting buckets.

Each step names an action (set, commit, edit, cancel_edit, move_start, move,
cancel_move, delete, tab). A commit step may label the task it produces with
"as" so later steps can refer to it. Use "-" to read the script from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if NewSession == nil {
			return fmt.Errorf("session factory not initialized")
		}
		if replayFormat != "yaml" && replayFormat != "table" {
			return fmt.Errorf("invalid --format %q: must be yaml or table", replayFormat)
		}

		data, err := readScript(cmd, args[0])
		if err != nil {
			return err
		}

		script, err := core.ParseScript(data)
		if err != nil {
			return fmt.Errorf("loading script %s: %w", args[0], err)
		}

		snap, runErr := core.RunScript(NewSession(), script)
		if err := printSnapshot(cmd.OutOrStdout(), snap, replayFormat); err != nil {
			return err
		}
		if runErr != nil {
			return fmt.Errorf("replaying %s: %w", args[0], runErr)
		}
		return nil
	},
}

func readScript(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading script from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return data, nil
}

func printSnapshot(w io.Writer, snap core.Snapshot, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encoding snapshot: %w", err)
		}
		return enc.Close()
	}

	fmt.Fprintf(w, "Active tab: %s\n", snap.ActiveTab)
	buckets := []struct {
		status models.TaskStatus
		tasks  []models.Task
	}{
		{models.StatusToday, snap.Today},
		{models.StatusPending, snap.Pending},
		{models.StatusOverdue, snap.Overdue},
	}
	for _, b := range buckets {
		fmt.Fprintf(w, "\n%s (%d)\n", statusLabel(b.status), len(b.tasks))
		if len(b.tasks) == 0 {
			continue
		}
		fmt.Fprintln(w, renderTaskTable(b.tasks))
	}
	return nil
}

func renderTaskTable(tasks []models.Task) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "PRIORITY", "DESCRIPTION")
	for _, task := range tasks {
		t.Row(task.ID, task.Title, string(task.Priority), strings.ReplaceAll(task.Description, "\n", " "))
	}
	return t.Render()
}

func init() {
	replayCmd.Flags().StringVar(&replayFormat, "format", "yaml", "Output format: yaml or table")
	rootCmd.AddCommand(replayCmd)
}
