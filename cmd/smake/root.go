/*
Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)

This program is free software: you can redistribute it and/or modify it
under the terms of the GNU Affero General Public License as published
by the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful, but
WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
Affero General Public License for more details.

You should have received a copy of the GNU Affero General
License along with this program. If not, see
<http://www.gnu.org/licenses/>.
*/
package main

// root.go is the external-interface boundary described in spec.md §6:
// read a manifest path, an optional instruction-set CSV override, and
// dump flags, then hand off to internal/session and internal/pipeline.
// Per spec.md §1's Non-goals, it does not grow target-selection,
// linking, or output-writing logic.

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/karbysCantCode/computer/internal/manifest"
	"github.com/karbysCantCode/computer/internal/pipeline"
	"github.com/karbysCantCode/computer/internal/session"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const dumpFileName = "_smake_build_dump_.txt"

func newRootCommand() *cobra.Command {
	var (
		isaPath string
		dump    bool
		verify  bool
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "smake <manifest>",
		Short: "Interpret a build manifest and assemble its targets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], isaPath, dump, verify, debug)
		},
	}

	cmd.Flags().StringVar(&isaPath, "isa", "", "instruction set CSV path (default: <manifest dir>/isa.csv)")
	cmd.Flags().BoolVar(&dump, "dump", false, "write "+dumpFileName+" next to the manifest")
	cmd.Flags().BoolVar(&verify, "verify", false, "run the advisory Target.verify readiness check before assembling")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable verbose trace logging")

	return cmd
}

func run(manifestPath, isaPath string, dump, verify, debug bool) error {
	level := logrus.InfoLevel
	if debug {
		level = logrus.DebugLevel
	}
	sess := session.New(filepath.Dir(manifestPath), os.Stderr, level)

	if isaPath == "" {
		isaPath = filepath.Join(filepath.Dir(manifestPath), "isa.csv")
	}
	if err := sess.LoadRegistry(isaPath); err != nil {
		return err
	}

	it, err := manifest.ParseFile(manifestPath, sess.Diags)
	if err != nil {
		return err
	}

	if verify {
		names := make([]string, 0, len(it.Targets()))
		for name := range it.Targets() {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			it.VerifyTarget(name)
		}
	}

	if dump {
		dumpPath := filepath.Join(filepath.Dir(manifestPath), dumpFileName)
		if err := os.WriteFile(dumpPath, []byte(it.Dump()), 0o644); err != nil {
			return err
		}
		sess.Log.Debugf("wrote %s", dumpPath)
	}

	pipeline.BuildAll(sess, it)

	exitCode := sess.DrainDiagnostics(os.Stdout)
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}
