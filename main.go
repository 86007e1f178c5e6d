// Command voltrace starts the VoltRace game server.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing the REST API, the
//     WebSocket gameplay channel, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server proxying a running HTTP server
//
// Flags control host/port, the energy pack content file, the database URL
// for persistent accounts, and debug logging.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/voltrace/voltrace/api"
	"github.com/voltrace/voltrace/game/adapters"
	"github.com/voltrace/voltrace/game/adapters/postgres"
	"github.com/voltrace/voltrace/game/catalog"
	"github.com/voltrace/voltrace/game/room"
	"github.com/voltrace/voltrace/transport/mcp"
	"github.com/voltrace/voltrace/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "VoltRace Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: loading .env: %v\n", err)
	}

	root := &cli.Command{
		Name:    "voltrace",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "packs",
				Usage:   "energy pack content file (name,cell,value per line)",
				Sources: cli.EnvVars("PACKS_FILE"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "PostgreSQL URL for persistent accounts (memory store when empty)",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server (default)",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "run an MCP stdio server against a running HTTP server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "base-url",
						Value: "http://localhost:8080",
						Usage: "base URL of the HTTP server to proxy",
					},
				},
				Action: runMCPStdio,
			},
		},
		// Bare invocation serves.
		Action: runServe,
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	log, err := newLogger(cmd.Bool("debug"))
	if err != nil {
		return err
	}
	defer log.Sync()

	packs := catalog.DefaultEnergyPacks()
	if path := cmd.String("packs"); path != "" {
		loaded, err := catalog.LoadEnergyPacks(path)
		if err != nil {
			log.Warn("pack file unreadable, using defaults", zap.String("path", path), zap.Error(err))
		} else {
			packs = loaded
		}
	}

	// Accounts persist in PostgreSQL when configured, otherwise in memory.
	var accounts adapters.AccountStore
	if dsn := cmd.String("database-url"); dsn != "" {
		pg, err := postgres.Open(ctx, dsn)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer pg.Close()
		accounts = pg
		log.Info("accounts backed by postgres")
	} else {
		accounts = adapters.NewMemoryAccounts()
		log.Info("accounts backed by memory store")
	}
	achievements := adapters.NewMemoryAchievements()
	presence := adapters.NewMemoryPresence()

	hub := websocket.NewHub(log)
	go hub.Run()

	registry := room.NewRegistry(room.Deps{
		Sink:         hub,
		Logger:       log,
		Accounts:     accounts,
		Achievements: achievements,
		Presence:     presence,
		Packs:        packs,
	})
	websocket.NewGateway(hub, registry, presence, achievements, log)

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go registry.RunSweeper(serveCtx)

	apiServer := api.NewServer(registry, hub, log)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)
		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening",
			zap.String("addr", addr),
			zap.String("rest", fmt.Sprintf("http://%s/api", addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return httpServer.Shutdown(shutdownCtx)
}

func runMCPStdio(ctx context.Context, cmd *cli.Command) error {
	client := mcp.NewClient(cmd.String("base-url"))
	return mcpserver.ServeStdio(client.GetMCPServer())
}
