package cmd

import (
	"errors"
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/reoring/jsongram"
	"github.com/reoring/jsongram/grammar"
	"github.com/reoring/jsongram/jsondec"
)

var (
	checkGrammar string
	checkInput   string
	checkRule    string
	checkShape   string
)

// errRejected is returned once the verdict has been printed.
var errRejected = errors.New("input rejected")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a document against a grammar or a shape",
	Long: `Check reports whether a document is accepted by a GBNF grammar, or
decodes it through a shape file and lists every issue found.

Exactly one of --grammar and --shape is required. Decoding honours the
decode section of the configuration (duplicate keys, depth and size limits).

Example:
  jsongram check --grammar person.gbnf --input out.json
  jsongram check --shape person.yaml --input out.json`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkGrammar, "grammar", "", "GBNF grammar file")
	checkCmd.Flags().StringVar(&checkShape, "shape", "", "Shape file to decode the input with")
	checkCmd.Flags().StringVar(&checkInput, "input", "-", "Document to check (- for stdin)")
	checkCmd.Flags().StringVar(&checkRule, "rule", "", "Grammar rule to start from (compile.root_rule when empty)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup("check")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if (checkGrammar == "") == (checkShape == "") {
		return errors.New("exactly one of --grammar or --shape is required")
	}
	input, err := readInput(cmd.InOrStdin(), checkInput)
	if err != nil {
		return err
	}

	if checkShape != "" {
		data, err := readInput(cmd.InOrStdin(), checkShape)
		if err != nil {
			return err
		}
		shape, err := jsongram.ParseShape(data)
		if err != nil {
			return err
		}
		if err := jsondec.Unmarshal(input, shape, cfg.Decode.Options()...); err != nil {
			iss, ok := jsongram.AsIssues(err)
			if !ok {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.Red.Sprint("rejected"))
			for _, it := range iss {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", it.String())
			}
			log.Debugw("decode failed", "issues", len(iss))
			return errRejected
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.Green.Sprint("accepted"))
		return nil
	}

	text, err := readInput(cmd.InOrStdin(), checkGrammar)
	if err != nil {
		return err
	}
	g, err := grammar.Parse(string(text))
	if err != nil {
		return fmt.Errorf("grammar %s: %w", checkGrammar, err)
	}
	rule := checkRule
	if rule == "" {
		rule = cfg.Compile.RootRule
	}
	if !g.Has(rule) {
		return fmt.Errorf("grammar %s has no rule %q", checkGrammar, rule)
	}
	if !g.Accepts(rule, string(input)) {
		fmt.Fprintln(cmd.OutOrStdout(), color.Red.Sprint("rejected"))
		return errRejected
	}
	fmt.Fprintln(cmd.OutOrStdout(), color.Green.Sprint("accepted"))
	return nil
}
