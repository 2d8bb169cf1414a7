package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/pcs/internal/cib"
	"github.com/papapumpkin/pcs/internal/ui"
)

var errValidationFailed = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the CIB can be read and has the sections pcs needs",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	src := cibSource(cfg, cmd.InOrStdin(), log)
	var checks []ui.Check

	if cfg.CIBFile == "" {
		err := cib.NewCibadmin(cfg.CibadminPath, log).Validate(cmd.Context())
		checks = append(checks, ui.Check{Name: "cibadmin available", Err: err})
		if err != nil {
			printer.ValidateResult(checks)
			return errValidationFailed
		}
	}

	checks = append(checks, validateDocument(cmd.Context(), src)...)
	if !printer.ValidateResult(checks) {
		return errValidationFailed
	}
	return nil
}

// validateDocument loads the CIB and checks for the sections relation
// queries read from.
func validateDocument(ctx context.Context, src cib.Source) []ui.Check {
	doc, err := cib.Load(ctx, src)
	checks := []ui.Check{{Name: "CIB loaded", Err: err}}
	if err != nil {
		return checks
	}
	_, err = doc.Resources()
	checks = append(checks, ui.Check{Name: "resources section", Err: err})
	_, err = doc.Constraints()
	checks = append(checks, ui.Check{Name: "constraints section", Err: err})
	return checks
}
