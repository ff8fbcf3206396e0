package snapshotctl

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/litmgmt/internal/server/snapshot"
	"github.com/spf13/cobra"
)

// ErrInvalidSnapshot is returned by validate when the file has problems.
var ErrInvalidSnapshot = errors.New("snapshot has problems")

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a snapshot and exit non-zero if anything would be dropped on load",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, errs, err := decodeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			problems := make([]string, 0, len(errs))
			for _, e := range errs {
				problems = append(problems, e.Error())
			}
			problems = append(problems, Check(s)...)

			if len(problems) == 0 {
				fmt.Fprintln(w, "ok")
				return nil
			}
			for _, p := range problems {
				fmt.Fprintln(w, p)
			}
			return fmt.Errorf("%d problem(s): %w", len(problems), ErrInvalidSnapshot)
		},
	}
}

// Check reports the cross-record inconsistencies a load would repair:
// collections claimed by several users, ownership of missing collections,
// orphaned collections and negative id counters or ones lagging behind
// issued ids.
func Check(s snapshot.State) []string {
	var problems []string

	known := make(map[int]bool, len(s.Collections))
	for _, c := range s.Collections {
		known[c.ID] = true
	}

	claimedBy := make(map[int]int)
	for _, u := range s.Users {
		for _, id := range u.CollectionIDs() {
			if owner, ok := claimedBy[id]; ok {
				problems = append(problems, fmt.Sprintf("collection %d claimed by users %d and %d", id, owner, u.ID))
				continue
			}
			claimedBy[id] = u.ID
			if !known[id] {
				problems = append(problems, fmt.Sprintf("user %d owns missing collection %d", u.ID, id))
			}
		}
	}

	var orphans []int
	for id := range known {
		if _, ok := claimedBy[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	sort.Ints(orphans)
	for _, id := range orphans {
		problems = append(problems, fmt.Sprintf("collection %d has no owner", id))
	}

	u, c, e := snapshot.Floors(s)
	names := [3]string{"user", "collection", "entry"}
	for i, floor := range [3]int{u, c, e} {
		if s.Counters[i] < 0 {
			problems = append(problems, fmt.Sprintf("%s counter %d is negative", names[i], s.Counters[i]))
			continue
		}
		if s.Counters[i] < floor {
			problems = append(problems, fmt.Sprintf("%s counter %d is below next free id %d", names[i], s.Counters[i], floor))
		}
	}

	return problems
}
