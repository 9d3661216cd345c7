package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reviewd/internal/bootstrap/logging"
	"reviewd/internal/domain/review"
	"reviewd/internal/errs"
	reviewuc "reviewd/internal/usecase/review"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's code reviews as CSV or JSON",
	RunE: withApp(func(cmd *cobra.Command, svcs services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		username, _ := cmd.Flags().GetString("user")
		language, _ := cmd.Flags().GetString("language")
		status, _ := cmd.Flags().GetString("status")
		score, _ := cmd.Flags().GetInt("score")
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		format = strings.ToLower(strings.TrimSpace(format))
		if format == "" {
			format = "csv"
		}
		if format != "csv" && format != "json" {
			return fmt.Errorf("unsupported format %q (expected: csv or json)", format)
		}
		if score != 0 && (score < 1 || score > 10) {
			return fmt.Errorf("invalid --score value %d: expected 1 to 10", score)
		}

		u, err := svcs.Auth.FindUser(ctx, username)
		if err != nil {
			logging.Error(ctx, "resolve export user failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrapf(err, "find user %q", username)
		}

		reviews, err := svcs.Reviews.ListReviews(ctx, reviewuc.ListReviewsInput{
			UserID:   u.ID,
			Language: language,
			Status:   status,
			Score:    score,
		})
		if err != nil {
			logging.Error(ctx, "list reviews for export failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "list reviews")
		}

		payload, err := marshalReviewExport(reviews, format)
		if err != nil {
			return err
		}

		writer, closeFn, err := resolveReviewExportWriter(cmd, outPath)
		if err != nil {
			return err
		}

		if _, err := writer.Write(payload); err != nil {
			_ = closeFn()
			return errs.Wrap(err, "write export output")
		}
		if err := closeFn(); err != nil {
			return errs.Wrap(err, "close export output")
		}

		logging.Info(ctx, "export finished",
			slog.String("username", u.Username),
			slog.String("format", format),
			slog.Int("total_reviews", len(reviews)),
		)
		return nil
	}),
}

type reviewExportItem struct {
	ReviewID       string         `json:"review_id"`
	Language       string         `json:"language"`
	Status         string         `json:"status"`
	CodeSubmission string         `json:"code_submission"`
	CodeReview     *review.Result `json:"code_review"`
	CreatedAt      string         `json:"created_at"`
	UpdatedAt      string         `json:"updated_at"`
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("user", "", "Username whose reviews to export")
	exportCmd.Flags().String("language", "", "Filter by programming language (or 'all')")
	exportCmd.Flags().String("status", "", "Filter by status: pending|in_progress|completed|rejected (or 'all')")
	exportCmd.Flags().Int("score", 0, "Filter by overall score 1-10 (0: no filter)")
	exportCmd.Flags().String("format", "csv", "Output format: csv|json")
	exportCmd.Flags().String("out", "", "Output file path (default: stdout)")
	_ = exportCmd.MarkFlagRequired("user")
}

func marshalReviewExport(reviews []review.Review, format string) ([]byte, error) {
	switch format {
	case "csv":
		payload, err := reviewuc.ExportCSV(reviews)
		if err != nil {
			return nil, errs.Wrap(err, "encode reviews as csv")
		}
		return payload, nil
	case "json":
		normalized := make([]reviewExportItem, 0, len(reviews))
		for _, item := range reviews {
			normalized = append(normalized, reviewExportItem{
				ReviewID:       item.ID,
				Language:       item.Language,
				Status:         string(item.Status),
				CodeSubmission: item.CodeSubmission,
				CodeReview:     item.CodeReview,
				CreatedAt:      item.CreatedAt.UTC().Format(time.RFC3339Nano),
				UpdatedAt:      item.UpdatedAt.UTC().Format(time.RFC3339Nano),
			})
		}

		var buf bytes.Buffer
		encoder := json.NewEncoder(&buf)
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(normalized); err != nil {
			return nil, errs.Wrap(err, "encode reviews as json")
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func resolveReviewExportWriter(cmd *cobra.Command, outPath string) (io.Writer, func() error, error) {
	trimmed := strings.TrimSpace(outPath)
	if trimmed == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}

	f, err := os.Create(trimmed)
	if err != nil {
		return nil, nil, errs.Wrapf(err, "open output file %q", trimmed)
	}
	return f, f.Close, nil
}
