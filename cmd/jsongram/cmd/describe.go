package cmd

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reoring/jsongram"
)

var (
	describeSample string
	describeShape  string
	describeFormat string
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the inferred shape",
	Long: `Describe prints the shape inferred from a sample document or read from a
shape file. YAML and JSON output can be fed back to "compile --shape".

Formats:
  - yaml (default)
  - json
  - tree (human readable, optional members marked with ?)

Example:
  jsongram describe --sample order.json -f tree`,
	RunE: runDescribe,
}

func init() {
	describeCmd.Flags().StringVar(&describeSample, "sample", "", "Sample JSON document (- for stdin)")
	describeCmd.Flags().StringVar(&describeShape, "shape", "", "Shape file, YAML or JSON (- for stdin)")
	describeCmd.Flags().StringVarP(&describeFormat, "format", "f", "yaml", "Output format (yaml, json, tree)")
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup("describe")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	src, err := loadSource(cmd.InOrStdin(), describeSample, describeShape)
	if err != nil {
		return err
	}
	shape, err := jsongram.InferWith(src, cfg.Compile.Options(""))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch describeFormat {
	case "yaml":
		data, err := yaml.Marshal(shape)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case "json":
		data, err := json.MarshalIndent(shape, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "tree":
		return writeTree(out, shape)
	}
	return fmt.Errorf("unknown format %q (want yaml, json or tree)", describeFormat)
}

type treeLine struct {
	label string
	kind  string
}

// writeTree renders s as an indented tree with the kinds aligned in one
// column.
func writeTree(w io.Writer, s *jsongram.Shape) error {
	lines := []treeLine{{label: "$", kind: s.Kind.String()}}
	lines = appendChildren(lines, s, "")

	width := 0
	for _, l := range lines {
		if n := runewidth.StringWidth(l.label); n > width {
			width = n
		}
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%s  %s\n", runewidth.FillRight(l.label, width), l.kind); err != nil {
			return err
		}
	}
	return nil
}

func appendChildren(lines []treeLine, s *jsongram.Shape, indent string) []treeLine {
	type child struct {
		name  string
		shape *jsongram.Shape
	}
	var children []child
	switch s.Kind {
	case jsongram.KindArray:
		children = append(children, child{"[]", s.Element})
	case jsongram.KindObject:
		for i := range s.Fields {
			f := &s.Fields[i]
			name := f.Name
			if f.Optional {
				name += "?"
			}
			children = append(children, child{name, &f.Shape})
		}
	}
	for i, c := range children {
		branch, next := "├─ ", "│  "
		if i == len(children)-1 {
			branch, next = "└─ ", "   "
		}
		lines = append(lines, treeLine{label: indent + branch + c.name, kind: c.shape.Kind.String()})
		lines = appendChildren(lines, c.shape, indent+next)
	}
	return lines
}
