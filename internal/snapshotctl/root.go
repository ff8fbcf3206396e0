// Package snapshotctl implements an offline tool for looking into litmgmt
// snapshot files without starting the server.
package snapshotctl

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/litmgmt/internal/server/repositories/snapshots"
	"github.com/dmitrijs2005/litmgmt/internal/server/snapshot"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the snapshotctl command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "snapshotctl",
		Short:         "Inspect and validate litmgmt snapshot files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)

	root.AddCommand(newInspectCommand(), newValidateCommand())
	return root
}

// Execute runs the command tree with args and returns the first error.
func Execute(ctx context.Context, out io.Writer, args []string) error {
	root := NewRootCommand(out)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// decodeFile reads the snapshot at path the same way the server does.
func decodeFile(ctx context.Context, path string) (snapshot.State, []error, error) {
	data, err := snapshots.NewFileRepository(path).Read(ctx)
	if err != nil {
		return snapshot.State{}, nil, fmt.Errorf("read %s: %w", path, err)
	}
	s, errs := snapshot.Decode(data)
	return s, errs, nil
}
