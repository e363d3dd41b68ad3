package main

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/qri-io/diffx"
	"github.com/qri-io/diffx/decode"
	"github.com/spf13/cobra"
)

// runner carries everything needed to compare inputs and print the result
type runner struct {
	in       io.Reader
	out      io.Writer
	log      *slog.Logger
	settings settings
	differ   *diffx.Differ
	// format forced by configuration, empty to infer from file names
	format decode.Format
	color  bool
}

func runDiff(cmd *cobra.Command, o *options, args []string) error {
	log := newLogger(cmd, o.verbose)
	s, err := o.resolve(cmd, log)
	if err != nil {
		return err
	}
	differ, err := diffx.New(s.diffOptions()...)
	if err != nil {
		return err
	}

	r := &runner{
		in:       cmd.InOrStdin(),
		out:      cmd.OutOrStdout(),
		log:      log,
		settings: s,
		differ:   differ,
	}
	if s.Format != "" {
		if r.format, err = decode.ParseFormat(s.Format); err != nil {
			return err
		}
	}
	r.color = s.Output == outputCLI && isTerminal(r.out)

	var differs bool
	if o.recursive {
		differs, err = r.compareDirs(args[0], args[1])
	} else {
		differs, err = r.compareFiles(args[0], args[1])
	}
	if err != nil {
		return err
	}
	if differs {
		return errDifferences
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func (r *runner) compareFiles(path1, path2 string) (bool, error) {
	if path1 == "-" && path2 == "-" {
		return false, fmt.Errorf("only one input can be read from stdin")
	}
	format, err := r.formatFor(path1, path2)
	if err != nil {
		return false, err
	}
	v1, err := r.load(path1, format)
	if err != nil {
		return false, err
	}
	v2, err := r.load(path2, format)
	if err != nil {
		return false, err
	}
	return r.report(v1, v2)
}

func (r *runner) formatFor(paths ...string) (decode.Format, error) {
	if r.format != "" {
		return r.format, nil
	}
	for _, p := range paths {
		if f, ok := decode.InferFormat(p); ok {
			return f, nil
		}
	}
	return "", fmt.Errorf("could not infer format from %v, specify --format or set format in the config file", paths)
}

func (r *runner) load(path string, format decode.Format) (diffx.Value, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(r.in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return diffx.Null(), fmt.Errorf("reading %s: %w", path, err)
	}

	v, err := decode.Decode(format, data)
	if err != nil {
		return diffx.Null(), fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// report diffs two values and writes the result in the configured output
// format, returning whether any differences remain after path filtering
func (r *runner) report(v1, v2 diffx.Value) (bool, error) {
	changes := diffx.FilterPath(r.differ.Diff(v1, v2), r.settings.Path)
	r.log.Debug("compared inputs", "changes", len(changes))

	var err error
	switch r.settings.Output {
	case outputJSON:
		err = diffx.FormatJSON(r.out, changes)
	case outputYAML:
		err = diffx.FormatYAML(r.out, changes)
	case outputUnified:
		if len(changes) > 0 {
			err = diffx.FormatUnified(r.out, v1, v2)
		}
	default:
		if len(changes) == 0 {
			_, err = fmt.Fprintln(r.out, "No differences found.")
			break
		}
		err = diffx.FormatCLI(r.out, changes, r.color)
	}
	return len(changes) > 0, err
}

// compareDirs compares files sharing a relative path under dir1 & dir2, in
// sorted order, and reports files present on one side only
func (r *runner) compareDirs(dir1, dir2 string) (bool, error) {
	for _, dir := range []string{dir1, dir2} {
		info, err := os.Stat(dir)
		if err != nil {
			return false, err
		}
		if !info.IsDir() {
			return false, fmt.Errorf("both inputs must be directories for recursive comparison, %s is not", dir)
		}
	}

	files1, err := listFiles(dir1)
	if err != nil {
		return false, err
	}
	files2, err := listFiles(dir2)
	if err != nil {
		return false, err
	}

	rels := make([]string, 0, len(files1)+len(files2))
	for rel := range files1 {
		rels = append(rels, rel)
	}
	for rel := range files2 {
		if _, ok := files1[rel]; !ok {
			rels = append(rels, rel)
		}
	}
	sort.Strings(rels)

	if len(rels) == 0 {
		fmt.Fprintln(r.out, "No comparable files found in directories.")
		return false, nil
	}

	differs := false
	for _, rel := range rels {
		path1, in1 := files1[rel]
		path2, in2 := files2[rel]
		switch {
		case in1 && in2:
			format, err := r.formatFor(path1, path2)
			if err != nil {
				r.log.Warn("skipping file of unknown format", "file", rel)
				continue
			}
			fmt.Fprintf(r.out, "\n--- Comparing %s ---\n", rel)
			v1, err := r.load(path1, format)
			if err != nil {
				return differs, err
			}
			v2, err := r.load(path2, format)
			if err != nil {
				return differs, err
			}
			d, err := r.report(v1, v2)
			if err != nil {
				return differs, err
			}
			differs = differs || d
		case in1:
			fmt.Fprintf(r.out, "\n--- Only in %s: %s ---\n", dir1, rel)
			differs = true
		default:
			fmt.Fprintf(r.out, "\n--- Only in %s: %s ---\n", dir2, rel)
			differs = true
		}
	}
	return differs, nil
}

// listFiles maps slash separated paths relative to root onto file paths
func listFiles(root string) (map[string]string, error) {
	files := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = path
		return nil
	})
	return files, err
}
