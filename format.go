package diffx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"
)

// palette maps change kinds to their display colors
type palette map[ChangeKind]*color.Color

func newPalette(colorTTY bool) palette {
	p := palette{
		Added:       color.New(color.FgBlue),
		Removed:     color.New(color.FgYellow),
		Modified:    color.New(color.FgCyan),
		TypeChanged: color.New(color.FgMagenta),
	}
	for _, c := range p {
		if colorTTY {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// FormatCLIString is a convenience wrapper that outputs to a string instead of
// an io.Writer
func FormatCLIString(changes []Change, colorTTY bool) (string, error) {
	buf := &bytes.Buffer{}
	if err := FormatCLI(buf, changes, colorTTY); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FormatCLI writes one annotated line per change to w, sorted by path and
// indented by depth:
//
//	+ path: value
//	- path: value
//	~ path: old -> new
//	! path: old (Type) -> new (Type)
//
// if colorTTY is true added lines are blue, removed yellow, modified cyan and
// type changes magenta. changes itself is left untouched
func FormatCLI(w io.Writer, changes []Change, colorTTY bool) error {
	sorted := make([]Change, len(changes))
	copy(sorted, changes)
	SortByPath(sorted)

	colors := newPalette(colorTTY)
	for _, c := range sorted {
		var line string
		switch c.Kind {
		case Added:
			line = fmt.Sprintf("+ %s: %s", c.Path, c.New)
		case Removed:
			line = fmt.Sprintf("- %s: %s", c.Path, c.Old)
		case Modified:
			line = fmt.Sprintf("~ %s: %s -> %s", c.Path, c.Old, c.New)
		case TypeChanged:
			line = fmt.Sprintf("! %s: %s (%s) -> %s (%s)", c.Path, c.Old, c.Old.Kind(), c.New, c.New.Kind())
		default:
			return fmt.Errorf("unknown change kind: %d", c.Kind)
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", c.Path.Depth()), colors[c.Kind].Sprint(line)); err != nil {
			return err
		}
	}
	return nil
}

// FormatJSON writes changes as an indented JSON array
func FormatJSON(w io.Writer, changes []Change) error {
	if changes == nil {
		changes = []Change{}
	}
	data, err := json.MarshalIndent(changes, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// FormatYAML writes changes as a YAML sequence
func FormatYAML(w io.Writer, changes []Change) error {
	if changes == nil {
		changes = []Change{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(changes); err != nil {
		return err
	}
	return enc.Close()
}

// FormatUnified writes a line diff of the indented JSON forms of a & b. Every
// line is printed, prefixed with "-", "+" or " "
func FormatUnified(w io.Writer, a, b Value) error {
	text1, err := prettyJSON(a)
	if err != nil {
		return err
	}
	text2, err := prettyJSON(b)
	if err != nil {
		return err
	}

	dmp := diffmatchpatch.New()
	runes1, runes2, lines := dmp.DiffLinesToRunes(text1, text2)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(runes1, runes2, false), lines)

	for _, d := range diffs {
		sign := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			sign = "-"
		case diffmatchpatch.DiffInsert:
			sign = "+"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			if !strings.HasSuffix(line, "\n") {
				line += "\n"
			}
			if _, err := io.WriteString(w, sign+line); err != nil {
				return err
			}
		}
	}
	return nil
}

func prettyJSON(v Value) (string, error) {
	buf := &bytes.Buffer{}
	if err := json.Indent(buf, []byte(v.String()), "", "  "); err != nil {
		return "", err
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}

// FormatPrettyStats prints a string of stats info
func FormatPrettyStats(diffStat *Stats) string {
	return formatStats(diffStat, false)
}

// FormatPrettyStatsColor prints a string of stats info with ANSI colors
func FormatPrettyStatsColor(diffStat *Stats) string {
	return formatStats(diffStat, true)
}

func plural(n int, word string) string {
	if n == 1 || n == -1 {
		return word
	}
	return word + "s"
}

func formatStats(ds *Stats, colorTTY bool) string {
	if ds == nil {
		return ""
	}

	colors := newPalette(colorTTY)
	neutral := color.New(color.FgWhite)
	if colorTTY {
		neutral.EnableColor()
	} else {
		neutral.DisableColor()
	}

	buf := &bytes.Buffer{}

	change := ds.NodeChange()
	els := colors[Added]
	sign := "+"
	if change < 0 {
		els = colors[Removed]
		sign = ""
	} else if change == 0 {
		els = neutral
		sign = ""
	}
	buf.WriteString(fmt.Sprintf("%s %s.",
		els.Sprintf("%s%d", sign, change),
		neutral.Sprint(plural(change, "element")),
	))

	buf.WriteString(" " + colors[Added].Sprintf("%d %s.", ds.Added, plural(ds.Added, "addition")))
	buf.WriteString(" " + colors[Removed].Sprintf("%d %s.", ds.Removed, plural(ds.Removed, "removal")))
	buf.WriteString(" " + colors[Modified].Sprintf("%d %s.", ds.Modified, plural(ds.Modified, "modification")))
	if ds.TypeChanged > 0 {
		buf.WriteString(" " + colors[TypeChanged].Sprintf("%d %s.", ds.TypeChanged, plural(ds.TypeChanged, "type change")))
	}

	buf.WriteRune('\n')
	return buf.String()
}
