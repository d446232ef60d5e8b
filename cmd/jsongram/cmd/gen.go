package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/reoring/jsongram/internal/gen"
)

var (
	genDir   string
	genTypes string
	genOut   string
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate Decode methods for Go structs",
	Long: `Gen reads the struct declarations of a package directory and writes a
Decode method for each requested type, so the types can be compiled into
grammars and decoded with jsondec.

Keys follow jsongram:"name=..." and json tags. Pointer fields, omitempty
fields and jsongram:"optional" fields are optional.

Example:
  jsongram gen --dir ./model --type User,Address -o ./model/zz_jsongram.go`,
	RunE: runGen,
}

func init() {
	genCmd.Flags().StringVar(&genDir, "dir", ".", "Package directory")
	genCmd.Flags().StringVar(&genTypes, "type", "", "Comma-separated struct type names")
	genCmd.Flags().StringVarP(&genOut, "output", "o", "", "Output file (stdout when empty)")
	rootCmd.AddCommand(genCmd)
}

func runGen(cmd *cobra.Command, args []string) error {
	_, log, err := setup("gen")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	types := gen.SplitTypes(genTypes)
	if len(types) == 0 {
		return errors.New("--type is required")
	}
	code, err := gen.Generate(genDir, types)
	if err != nil {
		return err
	}
	log.Debugw("generated", "dir", genDir, "types", types)
	return writeOutput(cmd.OutOrStdout(), genOut, code)
}
