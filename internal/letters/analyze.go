package letters

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/esurat/internal/analysis"
	"github.com/starford/esurat/internal/apperr"
)

const (
	analysisHeader = "Analisis AI:"
	summaryLabel   = "Ringkasan: "
	categoryLabel  = "Kategori: "
	priorityLabel  = "Prioritas: "
)

// Analyze sends description to the analyzer and returns it with the result
// prepended. A leading block from an earlier analysis is replaced. When the
// analyzer is off or fails, description is returned unchanged.
func (s *Service) Analyze(ctx context.Context, description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", apperr.Invalid("Harap isi deskripsi surat untuk dianalisis.")
	}
	if s.analyzer == nil {
		return description, nil
	}
	res, err := s.analyzer.Analyze(ctx, description)
	if err != nil {
		s.logger.Warn("letter analysis failed", slog.String("error", err.Error()))
		return description, nil
	}
	if res == nil {
		return description, nil
	}
	return PrependAnalysis(*res, description), nil
}

// PrependAnalysis formats res above description. Each field is kept on one
// line so the block can be recognised and replaced later.
func PrependAnalysis(res analysis.Result, description string) string {
	return fmt.Sprintf("%s\n%s%s\n%s%s\n%s%s\n\n%s",
		analysisHeader,
		summaryLabel, oneLine(res.Summary),
		categoryLabel, oneLine(res.Category),
		priorityLabel, oneLine(res.Priority),
		stripAnalysis(description))
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripAnalysis removes a leading analysis block: the header line through the
// priority line and the blank line after it. Blocks whose summary spans
// several lines are removed whole.
func stripAnalysis(description string) string {
	if !strings.HasPrefix(description, analysisHeader+"\n") {
		return description
	}
	lines := strings.Split(description, "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[1], summaryLabel) {
		return description
	}
	for i := 2; i < len(lines); i++ {
		if !strings.HasPrefix(lines[i], priorityLabel) {
			continue
		}
		rest := lines[i+1:]
		if len(rest) > 0 && rest[0] == "" {
			rest = rest[1:]
		}
		return strings.Join(rest, "\n")
	}
	return description
}
