package main

import (
	"context"
	"io"

	"github.com/fwojciec/docdex/indexer"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Indexer *indexer.Indexer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Engine string `help:"Index engine" enum:"sqlite,bleve" default:"sqlite"`

	Guide    GuideCmd    `cmd:"" help:"Index a multi-page documentation site"`
	Tutorial TutorialCmd `cmd:"" help:"Index a single-page tutorial"`
	Delete   DeleteCmd   `cmd:"" help:"Delete all records for a site"`
}

// GuideCmd is the "guide" subcommand.
type GuideCmd struct {
	URL         string `arg:"" help:"Documentation site URL"`
	Priority    int    `short:"p" default:"0" help:"Result sorting priority"`
	Concurrency int    `short:"c" default:"10" help:"Concurrent fetch limit"`
}

// TutorialCmd is the "tutorial" subcommand.
type TutorialCmd struct {
	URL      string `arg:"" help:"Tutorial page URL"`
	Priority int    `short:"p" default:"0" help:"Result sorting priority"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	URL   string `arg:"" help:"Root URL of the site to delete"`
	Force bool   `help:"Confirm deletion"`
}
