package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// history lists one page of past analyses, newest first.
func (a *App) history(ctx context.Context, args []string) error {
	page := 1
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 1 {
			return errors.New("usage: history [page]")
		}
		page = parsed
	}

	records, err := a.analysis.History(ctx, page, a.config.HistoryPageSize)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No analyses on this page.")
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%s  %s  %s\n", rec.ID, rec.CreatedAt, firstLine(rec.ResultText))
	}
	return nil
}

// show prints the full report for a single analysis.
func (a *App) show(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: show <id>")
	}

	rec, err := a.analysis.Get(ctx, args[0])
	if err != nil {
		return err
	}

	a.printRecord(rec)
	return nil
}
