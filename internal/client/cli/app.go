// Package cli is the interactive front-end: a small REPL over the session
// controller and the analysis service.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/analysis"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/client"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/config"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/credentials"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/session"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config    *config.Config
	session   *session.Controller
	analysis  *analysis.Service
	apiClient client.Client
	store     *credentials.Store
	log       logging.Logger
	reader    *bufio.Reader
}

func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	store, err := credentials.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	apiClient := client.NewHTTPClient(cfg.ServerBaseURL, cfg.RequestTimeout, store, log)

	return &App{
		config:    cfg,
		session:   session.NewController(apiClient, store, log),
		analysis:  analysis.NewService(apiClient, log),
		apiClient: apiClient,
		store:     store,
		log:       log,
		reader:    bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if _, err := a.session.Bootstrap(ctx); err != nil {
		a.log.Error(ctx, "bootstrap failed", "error", err)
	}

	a.Root(ctx)
}

func (a *App) Close() {
	_ = a.apiClient.Close()
	_ = a.store.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.State().Status == session.StatusAuthenticated
}
