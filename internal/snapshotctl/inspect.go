package snapshotctl

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/litmgmt/internal/common"
	"github.com/dmitrijs2005/litmgmt/internal/server/snapshot"
	"github.com/spf13/cobra"
)

func newInspectCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print a summary of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, errs, err := decodeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), s, errs, verbose)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "list users and collections")
	return cmd
}

func printSummary(w io.Writer, s snapshot.State, errs []error, verbose bool) {
	entries := 0
	for _, c := range s.Collections {
		entries += len(c.Entries)
	}

	if !s.WrittenOn.IsZero() {
		fmt.Fprintf(w, "written on:   %s\n", s.WrittenOn.Format(common.SnapshotTimeLayout))
	}
	fmt.Fprintf(w, "id counters:  user=%d collection=%d entry=%d\n", s.Counters[0], s.Counters[1], s.Counters[2])
	fmt.Fprintf(w, "users:        %d\n", len(s.Users))
	fmt.Fprintf(w, "collections:  %d\n", len(s.Collections))
	fmt.Fprintf(w, "entries:      %d\n", entries)
	if s.LegacyEntries > 0 {
		fmt.Fprintf(w, "legacy:       %d (ignored)\n", s.LegacyEntries)
	}
	fmt.Fprintf(w, "skipped:      %d\n", len(errs))

	if !verbose {
		return
	}

	for _, u := range s.Users {
		fmt.Fprintf(w, "user %d %s <%s> collections=%v\n", u.ID, u.Name, u.Email, u.CollectionIDs())
	}
	for _, c := range s.Collections {
		fmt.Fprintf(w, "collection %d %q entries=%d\n", c.ID, c.Name, len(c.Entries))
	}
	for _, e := range errs {
		fmt.Fprintf(w, "skipped: %v\n", e)
	}
}
