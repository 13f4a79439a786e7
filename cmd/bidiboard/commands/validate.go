package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/bidiboard/pkg/pipeline"
	"github.com/Sumatoshi-tech/bidiboard/pkg/schema"
	"github.com/Sumatoshi-tech/bidiboard/pkg/terminal"
)

const stdinArg = "-"

// ErrValidationFailed is returned when the document does not match the
// schema.
var ErrValidationFailed = errors.New("validation failed")

func newValidateCommand(g *globals) *cobra.Command {
	var colorize, nocolor bool

	cmd := &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Validate a history document against the data.json schema",
		Long: `Validate a history document against the embedded JSON Schema.
Without an argument the configured history document is checked.

Examples:
  bidiboard validate
  bidiboard validate site/data.json
  bidiboard validate - < data.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if nocolor {
				terminal.SetColor(false)
			} else if colorize {
				terminal.SetColor(true)
			}

			target := ""
			if len(args) == 1 {
				target = args[0]
			}

			return g.runValidate(cmd, target)
		},
	}

	cmd.Flags().BoolVar(&colorize, "color", false, "force colored output")
	cmd.Flags().BoolVar(&nocolor, "no-color", false, "disable colored output")

	return cmd
}

func (g *globals) runValidate(cmd *cobra.Command, target string) error {
	if target == "" {
		cfg, err := g.loadConfig()
		if err != nil {
			return err
		}

		target = pipeline.StorePath(cfg)
	}

	data, label, err := g.readTarget(cmd, target)
	if err != nil {
		return err
	}

	result, err := schema.Validate(data)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}

	msgs := make([]string, 0, len(result.Violations))
	for _, violation := range result.Violations {
		msgs = append(msgs, violation.String())
	}

	out := cmd.OutOrStdout()
	if g.quiet && result.Valid() {
		out = io.Discard
	}

	valid, err := terminal.WriteValidation(out, label, msgs)
	if err != nil {
		return err
	}

	if !valid {
		return fmt.Errorf("%w: %s", ErrValidationFailed, label)
	}

	return nil
}

func (g *globals) readTarget(cmd *cobra.Command, target string) (data []byte, label string, err error) {
	if target == stdinArg {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}

		return data, "stdin", nil
	}

	data, err = afero.ReadFile(g.fs, target)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", target, err)
	}

	return data, target, nil
}
