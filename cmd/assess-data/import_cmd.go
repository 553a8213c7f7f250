package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/formlane/assess/modules/assessment/importer"
	"github.com/formlane/assess/modules/assessment/infrastructure/persistence"
	"github.com/formlane/assess/modules/assessment/services"
	"github.com/formlane/assess/pkg/composables"
	"github.com/formlane/assess/pkg/eventbus"
	"github.com/formlane/assess/pkg/logging"
)

type importOptions struct {
	input       string
	name        string
	description string
	guidelines  string
	apply       bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a questionnaire from a CSV sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.input, "input", "", "Path to the CSV sheet (required)")
	cmd.Flags().StringVar(&opts.name, "name", "", "Questionnaire name (default: file name)")
	cmd.Flags().StringVar(&opts.description, "description", "", "Questionnaire description")
	cmd.Flags().StringVar(&opts.guidelines, "guidelines", "", "Questionnaire guidelines")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Persist the import (default is dry-run)")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

type importSummaryV1 struct {
	DryRun          bool     `json:"dry_run"`
	File            string   `json:"file"`
	QuestionnaireID string   `json:"questionnaire_id,omitempty"`
	Sections        int      `json:"sections"`
	Steps           int      `json:"steps"`
	Questions       int      `json:"questions"`
	RatingScales    int      `json:"rating_scales"`
	Associations    int      `json:"associations"`
	Errors          []string `json:"errors,omitempty"`
}

func runImport(ctx context.Context, opts importOptions) error {
	data, err := os.ReadFile(opts.input)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("read %s: %w", opts.input, err))
	}

	if !opts.apply {
		graph, err := importer.ImportGraph(data)
		if err != nil {
			return reportPipelineError(opts.input, err)
		}
		return writeJSONLine(importSummaryV1{
			DryRun:       true,
			File:         opts.input,
			Sections:     len(graph.Sections),
			Steps:        len(graph.Steps),
			Questions:    len(graph.Questions),
			RatingScales: len(graph.RatingScales),
			Associations: len(graph.Associations),
		})
	}

	pool, err := connectDB(ctx)
	if err != nil {
		return withCode(exitDB, err)
	}
	defer pool.Close()

	ctx = composables.WithPool(ctx, pool)
	svc := services.NewImportService(
		persistence.NewQuestionnaireRepository(),
		eventbus.NewEventPublisher(logging.ConsoleLogger(logrus.WarnLevel)),
	)

	result, err := svc.ImportCSV(ctx, services.ImportInput{
		Filename:    opts.input,
		Data:        data,
		Name:        opts.name,
		Description: opts.description,
		Guidelines:  opts.guidelines,
	})
	if err != nil {
		if isPipelineError(err) {
			return reportPipelineError(opts.input, err)
		}
		return withCode(exitDB, err)
	}

	return writeJSONLine(importSummaryV1{
		DryRun:          false,
		File:            opts.input,
		QuestionnaireID: result.QuestionnaireID.String(),
		Sections:        result.Sections,
		Steps:           result.Steps,
		Questions:       result.Questions,
		RatingScales:    result.RatingScales,
		Associations:    result.Associations,
	})
}

func isPipelineError(err error) bool {
	var (
		parseErr      *importer.ParseError
		missingErr    *importer.MissingHeadersError
		validationErr *importer.ValidationError
	)
	return errors.Is(err, importer.ErrNoFile) ||
		errors.Is(err, importer.ErrUnsupportedFileType) ||
		errors.As(err, &parseErr) ||
		errors.As(err, &missingErr) ||
		errors.As(err, &validationErr)
}

// reportPipelineError prints the full violation list on stdout as JSON
// before exiting, so one run is enough to see every problem in the sheet.
func reportPipelineError(file string, err error) error {
	summary := importSummaryV1{File: file, DryRun: true}

	var (
		missingErr    *importer.MissingHeadersError
		validationErr *importer.ValidationError
	)
	switch {
	case errors.As(err, &missingErr):
		summary.Errors = make([]string, 0, len(missingErr.Headers))
		for _, h := range missingErr.Headers {
			summary.Errors = append(summary.Errors, "missing required header: "+h)
		}
	case errors.As(err, &validationErr):
		summary.Errors = validationErr.Errors
	default:
		summary.Errors = []string{err.Error()}
	}

	if wErr := writeJSONLine(summary); wErr != nil {
		return wErr
	}
	return withCode(exitValidation, fmt.Errorf("%s: %d problem(s) found", file, len(summary.Errors)))
}
