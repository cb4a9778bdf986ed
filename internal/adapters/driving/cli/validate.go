package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a compliance record",
	Long: `Check a record file for missing required fields, malformed values and
cross-field problems. Errors are listed by section.

Exits with an error when the record is not valid.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("json", false, "Print the validation report as JSON")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if validatorService == nil {
		return errNotConfigured("validator")
	}

	record, err := readRecord(args[0])
	if err != nil {
		return err
	}

	res := validatorService.Validate(record)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
	} else {
		printValidation(cmd, res)
	}

	if !res.IsValid {
		return fmt.Errorf("record has %d validation error(s)", res.ErrorCount)
	}
	return nil
}

func printValidation(cmd *cobra.Command, res domain.ValidationResult) {
	if res.IsValid {
		cmd.Println("Record is valid.")
		return
	}

	sections := make([]string, 0, len(res.SectionErrors))
	for s := range res.SectionErrors {
		sections = append(sections, s)
	}
	sort.Strings(sections)

	for _, section := range sections {
		cmd.Printf("[%s] %d error(s)\n", section, res.SectionErrors[section])
		for _, e := range res.ErrorsIn(section) {
			cmd.Printf("  %s: %s\n", e.Field, e.Message)
		}
	}
}
