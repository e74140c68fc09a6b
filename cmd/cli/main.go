package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/cli"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/client/config"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
