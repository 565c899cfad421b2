// Copyright (C) 2024 The materialbin Authors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Command materialbin auto-detects the schema of one or more CMD
// files and re-emits each at a chosen target schema.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/mcbegamerxx954/materialbin"
)

var schemaNames = map[string]materialbin.SchemaVersion{
	"1.18.30":  materialbin.V1_18_30,
	"1.19.60":  materialbin.V1_19_60,
	"1.20.80":  materialbin.V1_20_80,
	"1.21.20":  materialbin.V1_21_20,
	"1.21.110": materialbin.V1_21_110,
	"26.0.24":  materialbin.V26_0_24,
}

func main() {
	target := flag.String("target", "1.21.20", "schema to re-emit at")
	outDir := flag.String("out", ".", "directory to write migrated files into")
	flag.Parse()

	targetSchema, ok := schemaNames[*target]
	if !ok {
		fmt.Fprintf(os.Stderr, "materialbin: unknown target schema %q\n", *target)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: materialbin [-target schema] [-out dir] file...")
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("materialbin: %s", err)
	}

	for _, arg := range args {
		if err := migrate(arg, *outDir, targetSchema); err != nil {
			fmt.Fprintf(os.Stderr, "materialbin: %s: %s\n", arg, err)
			os.Exit(1)
		}
	}
}

func migrate(path, outDir string, target materialbin.SchemaVersion) error {
	in, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	m, detected, err := materialbin.Detect(in)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	out, err := m.Encode(target)
	if err != nil {
		return fmt.Errorf("encode at %s: %w", target, err)
	}

	dst := filepath.Join(outDir, filepath.Base(path))
	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return err
	}

	log.Printf("materialbin: %s: %s -> %s (%d bytes)", path, detected, target, len(out))
	return nil
}
