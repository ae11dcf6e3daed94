package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tuvibe/go-admin/pkg/admin"
	"github.com/tuvibe/go-admin/pkg/config"
	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

// Globals are flags shared by every command.
type Globals struct {
	Config   string `short:"c" type:"path" env:"TUVIBE_CONFIG" help:"Path to the YAML configuration file."`
	LogLevel string `name:"log-level" help:"Log level (debug, info, warn, error)."`
	APIURL   string `name:"api-url" help:"Backend base URL, overriding configuration."`
	Token    string `help:"Bearer token for this invocation only."`
	Session  string `type:"path" help:"Session file path."`
}

// env is the process I/O handed to commands.
type env struct {
	out    io.Writer
	errOut io.Writer
	prompt prompter
	client *http.Client
}

func (g *Globals) settings() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.APIURL != "" {
		cfg.API.BaseURL = g.APIURL
	}
	if g.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(g.LogLevel)
	}
	return cfg, nil
}

func (g *Globals) logger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", raw)
	}
}

func (g *Globals) store(cfg *config.Config) (tuvibe.FileSessionStore, error) {
	path := g.Session
	if path == "" {
		path = cfg.Session.Path
	}
	if path == "" {
		var err error
		if path, err = tuvibe.DefaultSessionPath(); err != nil {
			return tuvibe.FileSessionStore{}, err
		}
	}
	return tuvibe.FileSessionStore{Path: path}, nil
}

// open assembles the console for one command.
func (g *Globals) open(e *env) (*admin.Admin, *slog.Logger, error) {
	cfg, err := g.settings()
	if err != nil {
		return nil, nil, err
	}
	logger, err := g.logger(cfg, e.errOut)
	if err != nil {
		return nil, nil, err
	}
	store, err := g.store(cfg)
	if err != nil {
		return nil, nil, err
	}
	a, err := admin.New(admin.Config{
		Settings:   cfg,
		Session:    tuvibe.Session{Token: g.Token},
		Store:      store,
		HTTPClient: e.client,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return a, logger, nil
}
