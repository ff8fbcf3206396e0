package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/litmgmt/internal/snapshotctl"
)

func main() {
	if err := snapshotctl.Execute(context.Background(), os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
