// Command rowstore is the interactive front end for the rowstore engine: it
// opens a single database file and drives a line-oriented REPL over it.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"rowstore/internal/config"
	"rowstore/internal/repl"
	"rowstore/internal/table"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	log := logrus.New()

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.WithError(err).Error("invalid configuration")
		return 1
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	tbl, err := table.Open(afero.NewOsFs(), cfg.DBPath)
	if err != nil {
		log.WithError(err).WithField("path", cfg.DBPath).Error("could not open database")
		return 1
	}
	defer func() {
		if cerr := tbl.Close(); cerr != nil {
			log.WithError(cerr).WithField("path", cfg.DBPath).Error("could not close database cleanly")
			code = 1
		}
	}()

	session, err := repl.New(tbl, cfg.Prompt, os.Stdout)
	if err != nil {
		log.WithError(err).Error("could not start REPL")
		return 1
	}
	defer session.Close()

	if err := session.Run(); err != nil {
		log.WithError(err).WithField("path", cfg.DBPath).Error("fatal storage engine error")
		return 1
	}

	return 0
}
