package cli

import (
	"fmt"
	"strings"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/analysis"
)

func (a *App) printRecord(rec analysis.Record) {
	fmt.Println("----------------------------------------")
	fmt.Println("Analysis", rec.ID)
	if rec.CreatedAt != "" {
		fmt.Println("Date:", rec.CreatedAt)
	}
	if rec.ResultText != "" {
		fmt.Println("\nResult:")
		fmt.Println(rec.ResultText)
	}
	if rec.RecommendationsText != "" {
		fmt.Println("\nRecommendations:")
		fmt.Println(rec.RecommendationsText)
	}
	if rec.RemediesText != "" {
		fmt.Println("\nRemedies:")
		fmt.Println(rec.RemediesText)
	}
	if rec.ImagePath != "" {
		fmt.Println("\nImage:", rec.ImagePath)
	}
	fmt.Println("----------------------------------------")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	const max = 60
	if len(s) > max {
		return s[:max] + "…"
	}
	return s
}
