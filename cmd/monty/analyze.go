package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/josephmathew0/Monty/internal/domain"
	"github.com/josephmathew0/Monty/internal/domain/geo"
	analysisuc "github.com/josephmathew0/Monty/internal/usecase/analysis"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <resume.pdf>",
	Short: "Analyze one resume and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var (
	analyzeRegion string
	analyzeOutput string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeRegion, "region", "r", "All",
		"Census region for the employment map: All, West, Midwest, South, Northeast")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "out", "o", "", "Write JSON to this file instead of stdout")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	region, err := geo.ParseRegion(analyzeRegion)
	if err != nil {
		return err //nolint:wrapcheck // already describes the flag value
	}

	data, err := os.ReadFile(filepath.Clean(args[0]))
	if err != nil {
		return fmt.Errorf("failed to read resume %s: %w", args[0], err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, resolveEnv())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, usage := domain.NewContextWithUsage(ctx)
	res, err := a.analysis.Analyze(ctx, data, region)
	if err != nil {
		return fmt.Errorf("failed to analyze resume: %w", err)
	}
	a.logger.Info("Resume analyzed",
		zap.String("file", filepath.Base(args[0])),
		zap.String("analysis_id", res.ID),
		zap.Int("embedding_tokens", usage.Tokens()),
	)

	if analyzeOutput == "" {
		return writeResult(cmd.OutOrStdout(), res)
	}

	f, err := os.Create(filepath.Clean(analyzeOutput))
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", analyzeOutput, err)
	}
	defer func() { _ = f.Close() }()
	return writeResult(f, res)
}

func writeResult(w io.Writer, res analysisuc.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
