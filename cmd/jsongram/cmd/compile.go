package cmd

import (
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/reoring/jsongram"
)

var (
	compileSample string
	compileShape  string
	compileName   string
	compileOut    string
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a sample document or shape file into a GBNF grammar",
	Long: `Compile infers the shape of a sample JSON document or reads a shape file
and prints the GBNF grammar for it.

Non-fatal findings, such as members that could only be partially inferred,
are reported on stderr.

Example:
  jsongram compile --sample person.json --name person -o person.gbnf
  jsongram compile --shape person.yaml --keys declared`,
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().StringVar(&compileSample, "sample", "", "Sample JSON document (- for stdin)")
	compileCmd.Flags().StringVar(&compileShape, "shape", "", "Shape file, YAML or JSON (- for stdin)")
	compileCmd.Flags().StringVar(&compileName, "name", "", "Hint used for top-level rule names")
	compileCmd.Flags().StringVarP(&compileOut, "output", "o", "", "Output file (stdout when empty)")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup("compile")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	src, err := loadSource(cmd.InOrStdin(), compileSample, compileShape)
	if err != nil {
		return err
	}
	g, err := jsongram.CompileWith(src, cfg.Compile.Options(compileName))
	if err != nil {
		log.Errorw("compile failed", "error", err)
		return err
	}
	printIssues(cmd, g.Issues)
	log.Debugw("compiled", "entry", g.Entry, "rules", len(g.Rules), "issues", len(g.Issues))
	return writeOutput(cmd.OutOrStdout(), compileOut, []byte(g.Text))
}

func printIssues(cmd *cobra.Command, iss jsongram.Issues) {
	for _, it := range iss {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.Yellow.Sprint("warning:"), it.String())
	}
}
