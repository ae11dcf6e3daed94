package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/tuvibe/go-admin/pkg/admin"
	"github.com/tuvibe/go-admin/pkg/tuvibe"
)

type loginCmd struct {
	Token  string `help:"Bearer token; prompted for when omitted."`
	Name   string `help:"Display name recorded with the session."`
	Email  string `help:"Email recorded with the session."`
	Verify bool   `default:"true" negatable:"" help:"Check the token against the backend before saving."`
}

func (cmd *loginCmd) Run(ctx context.Context, g *Globals, e *env) error {
	cfg, err := g.settings()
	if err != nil {
		return err
	}
	store, err := g.store(cfg)
	if err != nil {
		return err
	}
	token := cmd.Token
	if token == "" {
		if token, err = e.prompt.Secret("Token: "); err != nil {
			return fmt.Errorf("read token: %w", err)
		}
	}
	sess := tuvibe.Session{Token: token, User: tuvibe.Profile{Name: cmd.Name, Email: cmd.Email}}
	if !sess.Valid() {
		return tuvibe.ErrMissingCredential
	}
	if cmd.Verify {
		a, err := admin.New(admin.Config{Settings: cfg, Session: sess, HTTPClient: e.client})
		if err != nil {
			return err
		}
		defer a.Close()
		if _, err := a.Client().FetchDashboardStats(ctx, sess); err != nil {
			return fmt.Errorf("verify token: %s", tuvibe.Message(err))
		}
	}
	if err := store.Save(sess); err != nil {
		return err
	}
	fmt.Fprintln(e.out, successStyle.Render("Logged in. Session saved to "+store.Path))
	return nil
}

type logoutCmd struct{}

func (cmd *logoutCmd) Run(g *Globals, e *env) error {
	cfg, err := g.settings()
	if err != nil {
		return err
	}
	store, err := g.store(cfg)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(e.out, "Logged out.")
	return nil
}

type whoamiCmd struct{}

func (cmd *whoamiCmd) Run(g *Globals, e *env) error {
	cfg, err := g.settings()
	if err != nil {
		return err
	}
	store, err := g.store(cfg)
	if err != nil {
		return err
	}
	sess, err := admin.ResolveSession(cfg, store, tuvibe.Session{Token: g.Token})
	if err != nil {
		return err
	}
	if !sess.Valid() {
		return errors.New(tuvibe.Message(tuvibe.ErrMissingCredential))
	}
	name := sess.User.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Fprintf(e.out, "%s %s\n", titleStyle.Render(name), mutedStyle.Render(sess.User.Email))
	fmt.Fprintf(e.out, "token: %s\n", maskToken(sess.Token))
	return nil
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "…" + token[len(token)-4:]
}
