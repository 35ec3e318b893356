package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PolarWolf314/kaitiaki/internal/audit"
	kerrors "github.com/PolarWolf314/kaitiaki/internal/errors"
	"github.com/PolarWolf314/kaitiaki/internal/ui"
	"github.com/PolarWolf314/kaitiaki/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logOperation string
	logFailed    bool
	logSince     string
	logUntil     string
	logOneline   bool
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation (comma-separated, e.g. Encrypt,Verify)")
	logCmd.Flags().BoolVar(&logFailed, "failed", false, "show only failed invocations")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logOperation = ""
	logFailed = false
	logSince = ""
	logUntil = ""
	logOneline = false
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the history of gpg invocations",
	Long: `Displays the audit log of gpg invocations made through kaitiaki.

Every run records its invocation ID, operation, exit code, status and the
files and keys involved.

Examples:
  kaitiaki log                              # View full log
  kaitiaki log -n 10                        # Last 10 entries
  kaitiaki log --reverse                    # Most recent first
  kaitiaki log --operation Encrypt,Decrypt  # Filter by operation
  kaitiaki log --failed --since 2024-01-01  # Recent failures
  kaitiaki log --json                       # JSON output`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	result, err := workflows.Log(context.Background(), workflows.LogOptions{
		Limit:      logLimit,
		Reverse:    logReverse,
		Operations: logOperation,
		FailedOnly: logFailed,
		Since:      logSince,
		Until:      logUntil,
	})
	if err != nil {
		fmt.Println(formatLogError(err))
		if isLogUnexpectedError(err) {
			return err
		}
		return nil
	}

	Logger.Debugf("Parsed %d entries from audit log", result.TotalEntriesBeforeFilter)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Println("No audit log entries found.")
		} else {
			fmt.Println("No audit log entries found matching the filters.")
		}
		return nil
	}

	switch {
	case logJSON:
		return outputLogJSON(result.Entries)
	case logOneline:
		outputLogOneline(result.Entries)
	default:
		outputLogDefault(result.Entries)
	}
	return nil
}

// formatLogError formats a log error for display to the user.
func formatLogError(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrNoAuditLog):
		return ui.Info.Sprint("ℹ") + " No audit log found. Invocations are logged once you run any gpg command."
	case errors.Is(err, kerrors.ErrInvalidDateFormat):
		return ui.Error.Sprint("✗") + " " + err.Error()
	default:
		return ui.Error.Sprint("✗") + " Failed to read audit log: " + err.Error()
	}
}

// isLogUnexpectedError returns true if the error is unexpected and should cause a non-zero exit.
func isLogUnexpectedError(err error) bool {
	return !errors.Is(err, kerrors.ErrNoAuditLog) && !errors.Is(err, kerrors.ErrInvalidDateFormat)
}

func outputLogJSON(entries []audit.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entries to JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func outputLogOneline(entries []audit.Entry) {
	for _, e := range entries {
		fmt.Printf("%s %s %s %s\n", formatLogTime(e.Timestamp, "2006-01-02"), shortID(e.InvocationID), e.Operation, formatLogDetails(e))
	}
}

func outputLogDefault(entries []audit.Entry) {
	for _, e := range entries {
		mark := ui.Success.Sprint("✓")
		if !e.Success {
			mark = ui.Error.Sprint("✗")
		}
		fmt.Printf("%-19s  %s  %-8s  %-17s  %s\n",
			formatLogTime(e.Timestamp, "2006-01-02 15:04:05"), mark, shortID(e.InvocationID), e.Operation, formatLogDetails(e))
	}
}

// formatLogTime renders an entry timestamp in local time, or returns it
// unchanged if it cannot be parsed.
func formatLogTime(ts, layout string) string {
	t, err := time.Parse(audit.TimestampFormat, ts)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, ts); err != nil {
			return ts
		}
	}
	return t.Local().Format(layout)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatLogDetails(e audit.Entry) string {
	var parts []string
	if len(e.Files) > 0 {
		parts = append(parts, strings.Join(e.Files, ", "))
	}
	if len(e.KeyIDs) > 0 {
		parts = append(parts, "keys="+strings.Join(e.KeyIDs, ","))
	}
	if e.OutputPath != "" {
		parts = append(parts, "-> "+e.OutputPath)
	}
	if !e.Success {
		parts = append(parts, fmt.Sprintf("exit=%d", e.ExitCode))
		if e.Status != "" {
			parts = append(parts, "status="+e.Status)
		}
	}
	return strings.Join(parts, " ")
}
