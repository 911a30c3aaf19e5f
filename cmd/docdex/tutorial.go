package main

import (
	"fmt"

	"github.com/fwojciec/docdex"
)

// Run executes the tutorial command.
func (c *TutorialCmd) Run(deps *Dependencies) error {
	result, err := deps.Indexer.IndexTutorial(deps.Ctx, c.URL, c.Priority)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", docdex.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Indexed %s\n", result.RootURL)
	fmt.Fprintf(deps.Stdout, "  Records: %d saved, %d swept\n", result.Saved, result.Swept)
	return nil
}
