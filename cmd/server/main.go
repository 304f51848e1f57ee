package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-session-guard/google"
	"github.com/jrsteele09/go-session-guard/google/flowstate"
	"github.com/jrsteele09/go-session-guard/internal/config"
	"github.com/jrsteele09/go-session-guard/server"
	"github.com/jrsteele09/go-session-guard/session"
	"github.com/jrsteele09/go-session-guard/session/storage"
	"github.com/jrsteele09/go-session-guard/session/storage/filerepo"
	"github.com/jrsteele09/go-session-guard/session/storage/sqliterepo"
	zl "github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()

	c, err := config.New()
	if err != nil {
		return err
	}
	displayAppname(c.GetAppName())

	repo, err := sessionStorage(c)
	if err != nil {
		return err
	}

	var controller *google.Controller
	store, err := session.New(repo,
		session.WithLogger(zl.Logger),
		session.WithRevoker(func(token string) {
			if controller != nil {
				controller.Revoke(token)
			}
		}),
	)
	if err != nil {
		return err
	}

	controller, err = google.NewController(store, flowstate.NewInMemoryRepo(), google.Config{
		ClientID:     c.GetClientID(),
		ClientSecret: c.GetClientSecret(),
		RedirectURL:  c.GetRedirectURL(),
		Scopes:       c.GetScopes(),
	}, google.WithLogger(zl.Logger))
	if err != nil {
		return err
	}

	// A missing client id or unreachable provider is not fatal: the app
	// still serves, and login attempts surface the failure via the store.
	if err := controller.Initialize(context.Background()); err != nil {
		zl.Warn().Err(err).Msg("Google OAuth not available")
	}

	store.Init()

	handler, err := server.New(c, store, controller)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func sessionStorage(c config.Config) (storage.Repo, error) {
	switch c.GetStorageBackend() {
	case "sqlite":
		return sqliterepo.Open(filepath.Join(c.GetDataFolder(), "session.db"))
	default:
		return filerepo.New(filepath.Join(c.GetDataFolder(), "session.json"))
	}
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
