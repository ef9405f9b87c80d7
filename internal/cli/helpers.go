// Shared helpers for docket CLI commands.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/pkg/audit"
	"github.com/mesh-intelligence/docket/pkg/store"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// parseRecord decodes a JSON object argument.
func parseRecord(arg string) (types.Record, error) {
	var rec types.Record
	if err := json.Unmarshal([]byte(arg), &rec); err != nil {
		return nil, userError("parse JSON: %w", err)
	}
	if rec == nil {
		return nil, userError("parse JSON: %w: expected an object", types.ErrInvalidValue)
	}
	return rec, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError("marshal JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// entityFor maps a collection to the entity type its log entries use.
func entityFor(collection string) audit.EntityType {
	switch collection {
	case types.Cases, types.CaseProcessStages:
		return audit.EntityCase
	case types.Clients:
		return audit.EntityClient
	case types.CalendarEvents:
		return audit.EntityEvent
	case types.Expenses:
		return audit.EntityFinancial
	case types.Documents:
		return audit.EntityDocument
	case types.ChatMessages:
		return audit.EntityMessage
	case types.ClientCommunications:
		return audit.EntityCommunication
	}
	return audit.EntitySystem
}

// displayName picks a human label for a record.
func displayName(rec types.Record) string {
	for _, f := range []string{"title", "name", "subject", "file_name"} {
		if v := rec.String(f); v != "" {
			return v
		}
	}
	return ""
}

// resultError converts a failed shim Result into a CLI error.
func resultError(op string, res store.Result) error {
	if res.Success {
		return nil
	}
	if res.Err == nil {
		return sysError("%s: unknown failure", op)
	}
	return classify(op, res.Err)
}

// classify wraps err as a user error when the input was at fault and as a
// system error otherwise.
func classify(op string, err error) error {
	if errors.Is(err, types.ErrInvalidPath) || errors.Is(err, types.ErrInvalidKey) || errors.Is(err, types.ErrInvalidValue) {
		return userError("%s: %w", op, err)
	}
	return sysError("%s: %w", op, err)
}

// splitPath returns the collection and the last key of a slash path.
func splitPath(path string) (collection, key string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	collection = parts[0]
	if len(parts) > 1 {
		key = parts[len(parts)-1]
	}
	return collection, key
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
