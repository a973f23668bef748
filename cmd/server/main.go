package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"warfish-archive/lib/configutil"
	"warfish-archive/lib/serviceutil"
	"warfish-archive/lib/telemetry"
	"warfish-archive/lib/warfish"
	"warfish-archive/services/archive"
	"warfish-archive/services/archive/db"
	"warfish-archive/services/archive/store"

	"github.com/gofiber/fiber/v2"

	_ "modernc.org/sqlite"
)

type Config struct {
	Port       int    `json:"port"`
	StorageDir string `json:"storage_dir"`
	Database   string `json:"database"`
	// SESSID cookie of an authenticated warfish session; optional, public
	// games scrape anonymously
	Sessid  string `json:"sessid"`
	BaseURL string `json:"base_url"`
}

func main() {
	ctx := serviceutil.SignalContext()

	config, err := configutil.ReadConfig[Config]("server.json5")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		serviceutil.Fatal("failed to read server.json5", err)
	}
	if config.Port == 0 {
		config.Port = 4000
	}
	if config.StorageDir == "" {
		config.StorageDir = "data"
	}
	if config.Database == "" {
		config.Database = "archive.db"
	}

	tel, err := telemetry.SetupFromEnv(ctx, "warfish-archive")
	if err != nil {
		slog.Warn("running without telemetry", "err", err)
	} else {
		defer tel.Shutdown(ctx)
		telemetry.InstrumentPerfStats(ctx)
	}

	database, err := sql.Open("sqlite", config.Database)
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}
	_, err = database.Exec(db.Schema)
	if err != nil {
		serviceutil.Fatal("failed to apply schema", err)
	}

	client := warfish.NewClient(config.BaseURL, warfish.WithSessionID(config.Sessid))
	service := archive.NewService(database, store.New(config.StorageDir), client)

	app := fiber.New(fiber.Config{
		AppName: "warfish-archive",
	})
	registerRoutes(app, service)

	go func() {
		<-ctx.Done()
		err := app.Shutdown()
		if err != nil {
			slog.Error("shutdown", "err", err)
		}
	}()

	slog.Info("listening", "port", config.Port)
	err = app.Listen(fmt.Sprintf(":%d", config.Port))
	if err != nil {
		serviceutil.Fatal("failed to listen", err)
	}
}
