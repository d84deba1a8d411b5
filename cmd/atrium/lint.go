package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"stencil-hq/atrium/pkg/cli"
	"stencil-hq/atrium/pkg/template"
	"stencil-hq/atrium/pkg/template/conditions"
	"stencil-hq/atrium/pkg/template/store"
)

var lintFlags struct {
	file   string
	dir    string
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate template files",
	Long: `Validate YAML template files for syntax and semantic errors.

The lint command parses template files and performs comprehensive validation:
  - YAML syntax validation
  - Template structure validation (ids, titles, statuses)
  - Condition validation (known kinds, valid operators, non-empty values)

Examples:
  # Lint single file
  atrium lint --file templates.yaml

  # Lint directory
  atrium lint --dir templates/

  # Strict mode (warnings as errors)
  atrium lint --file templates.yaml --strict

  # JSON output for CI/CD
  atrium lint --file templates.yaml --format json`,
	RunE: lintTemplates,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "template file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of template files")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// ValidationResult represents the validation result for a single template file.
type ValidationResult struct {
	File     string            `json:"file"`
	Valid    bool              `json:"valid"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []ValidationIssue `json:"warnings,omitempty"`
}

// ValidationIssue represents a single validation error or warning.
type ValidationIssue struct {
	Template string `json:"template,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

func lintTemplates(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	format, err := cli.ParseFormat(lintFlags.format)
	if err != nil {
		return err
	}

	var files []string

	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}

	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list template files: %w", err)
			}
			files = append(files, matches...)
		}
	}

	if len(files) == 0 {
		return fmt.Errorf("no template files found")
	}

	// Lint against the full catalog, storefront kinds included, so a file
	// written for a commerce deployment does not fail on a lint host.
	registry := conditions.NewRegistry(conditions.WithCommerce())

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateTemplateFile(file, registry))
	}

	if format == cli.FormatJSON {
		return cli.NewFormatter(format).FormatTo(os.Stdout, results)
	}
	return outputText(results, lintFlags.strict)
}

func validateTemplateFile(path string, registry *conditions.Registry) ValidationResult {
	result := ValidationResult{File: path, Valid: true}

	addError := func(tpl, msg string) {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationIssue{Template: tpl, Message: msg, Severity: "error"})
	}
	addWarning := func(tpl, msg string) {
		result.Warnings = append(result.Warnings, ValidationIssue{Template: tpl, Message: msg, Severity: "warning"})
	}

	templates, err := store.LoadFile(path)
	if err != nil {
		addError("", err.Error())
		return result
	}
	if len(templates) == 0 {
		addWarning("", "file contains no templates")
		return result
	}

	seen := make(map[template.ID]bool)
	for i, t := range templates {
		name := string(t.ID)
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}

		if t.ID == "" {
			addError(name, "template has no id")
		} else if seen[t.ID] {
			addError(name, "duplicate template id")
		}
		seen[t.ID] = true

		if t.Title == "" {
			addError(name, "template has no title")
		}
		if t.Status != "" && t.Status != template.StatusActive && t.Status != template.StatusInactive {
			addError(name, fmt.Sprintf("unknown status %q", t.Status))
		}
		if t.Category != "" && !t.Category.Valid() {
			addError(name, fmt.Sprintf("unknown category %q", t.Category))
		}

		if t.Active() && len(template.NormalizeConditions(t.Conditions)) == 0 {
			addWarning(name, "active template has no conditions and will never match")
		}

		for _, c := range t.Conditions {
			if c.Kind == "" {
				addWarning(name, "condition with empty kind is ignored")
				continue
			}
			if !registry.Known(c.Kind) && c.Kind != template.KindHeaderSlot && c.Kind != template.KindFooterSlot {
				addError(name, fmt.Sprintf("unknown condition kind %q", c.Kind))
			}
			if c.Operator != "" && c.Operator != template.OperatorInclude && c.Operator != template.OperatorExclude {
				addError(name, fmt.Sprintf("unknown condition operator %q", c.Operator))
			}
		}
	}

	return result
}

func outputText(results []ValidationResult, strict bool) error {
	totalErrors := 0
	totalWarnings := 0

	for _, result := range results {
		fmt.Printf("Validating %s...\n", result.File)

		if len(result.Errors) == 0 && len(result.Warnings) == 0 {
			fmt.Println("✓ Syntax valid")
			fmt.Println("✓ All templates have valid conditions")
		}

		for _, issue := range result.Errors {
			fmt.Printf("✗ Error: %s", issue.Message)
			if issue.Template != "" {
				fmt.Printf(" [%s]", issue.Template)
			}
			fmt.Println()
			totalErrors++
		}

		for _, issue := range result.Warnings {
			fmt.Printf("⚠  Warning: %s", issue.Message)
			if issue.Template != "" {
				fmt.Printf(" [%s]", issue.Template)
			}
			fmt.Println()
			totalWarnings++
		}

		fmt.Println()
	}

	fmt.Println("Summary:")
	fmt.Printf("  %d error(s), %d warning(s)\n", totalErrors, totalWarnings)

	if totalErrors > 0 {
		return fmt.Errorf("validation failed")
	}
	if strict && totalWarnings > 0 {
		fmt.Println("  Strict mode enabled: treating warnings as errors")
		return fmt.Errorf("validation failed")
	}
	return nil
}
