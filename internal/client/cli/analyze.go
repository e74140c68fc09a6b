package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/client"
)

// analyze uploads an image for analysis and prints the resulting report.
func (a *App) analyze(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: analyze <image-path>")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("cannot open image: %w", err)
	}
	defer f.Close()

	symptoms, err := getSimpleText(a.reader, "Observed symptoms (optional)", os.Stdout)
	if err != nil {
		return err
	}
	additionalInfo, err := getSimpleText(a.reader, "Additional info (optional)", os.Stdout)
	if err != nil {
		return err
	}

	fmt.Println("Uploading image for analysis...")
	rec, err := a.analysis.Analyze(ctx, client.AnalyzeRequest{
		Image:          f,
		Filename:       filepath.Base(args[0]),
		Symptoms:       symptoms,
		AdditionalInfo: additionalInfo,
	})
	if err != nil {
		return err
	}

	a.printRecord(rec)
	return nil
}
