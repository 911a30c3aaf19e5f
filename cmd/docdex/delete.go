package main

import (
	"fmt"

	"github.com/fwojciec/docdex"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return docdex.Errorf(docdex.EINVALID, "use --force to confirm deletion")
	}

	count, err := deps.Indexer.DeleteRootURL(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted %d records\n", count)
	return nil
}
