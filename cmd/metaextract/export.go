package main

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/FAU-CDI/metaextract"
	"github.com/FAU-CDI/metaextract/internal/exporter"
	"github.com/FAU-CDI/metaextract/internal/pipeline"
	"github.com/FAU-CDI/metaextract/internal/status"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/dustin/go-humanize"
	_ "github.com/glebarez/go-sqlite"
	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
)

// cspell:words nquads sqlite mysql

var errMultipleTargets = errors.New("at most one of --nquads, --sqlite and --mysql may be given")

func (a *app) exportCmd() *cobra.Command {
	var nquads, sqlite, mysql string

	cmd := &cobra.Command{
		Use:   "export FOLDER",
		Short: "Export all metadata graphs of FOLDER",
		Long: `Export all metadata graphs of FOLDER into n-quads or an sql database.

Every graph is stored under the name of its source.
Without a target, the graphs are only loaded and summarized.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var selected int
			for _, target := range []string{nquads, sqlite, mysql} {
				if target != "" {
					selected++
				}
			}
			if selected > 1 {
				a.st.LogFatal("parse arguments", errMultipleTargets)
			}

			var exp exporter.Exporter
			switch {
			case nquads != "":
				file, err := os.Create(nquads) // #nosec G304 -- explicit parameter
				if err != nil {
					a.st.LogFatal("create nquads", err, "path", nquads)
				}
				exp = exporter.NewNQuads(file)
			case sqlite != "":
				exp = a.openSQL("sqlite", sqlite)
			case mysql != "":
				exp = a.openSQL("mysql", mysql)
			default:
				exp = &exporter.Map{}
			}

			a.export(args[0], exp)

			if mp, ok := exp.(*exporter.Map); ok {
				for name, nodes := range mp.Data {
					a.st.Log("graph", "name", name, "nodes", humanize.Comma(int64(len(nodes))))
				}
			}
			a.st.Log("finished", "took", a.st.Diff())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&nquads, "nquads", "", "write n-quads to the given file")
	flags.StringVar(&sqlite, "sqlite", "", "export into the sqlite database at the given path")
	flags.StringVar(&mysql, "mysql", "", "export into the mysql database with the given dsn")
	return cmd
}

func (a *app) openSQL(driver, dsn string) exporter.Exporter {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		a.st.LogFatal("open sql", err, "driver", driver)
	}
	return &exporter.SQL{
		DB:          db,
		BatchSize:   exporter.SqliteBatchSize,
		MaxQueryVar: exporter.SqliteMaxQueryVar,
	}
}

// export sends every graph of folder to exp and closes it.
func (a *app) export(folder string, exp exporter.Exporter) {
	output := metaextract.OutputPaths(folder, "").Folder
	matches, err := doublestar.Glob(os.DirFS(output), "metadata_*.jsonld", doublestar.WithFilesOnly())
	if err != nil {
		a.st.LogFatal("find graphs", err, "folder", output)
	}

	for _, match := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "metadata_"), ".jsonld")

		doc, err := pipeline.LoadDocument(filepath.Join(output, match))
		if err != nil {
			a.st.LogFatal("load graph", err, "file", match)
		}

		err = a.st.DoStage(status.StageExport, func() error {
			return exporter.Export(name, doc, exp, a.st)
		})
		if err != nil {
			a.st.LogFatal("export", err, "graph", name)
		}
	}

	if err := exp.Close(); err != nil {
		a.st.LogFatal("close exporter", err)
	}
}
