package cli

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/sundaykids/rollcall/internal/config"
	"github.com/sundaykids/rollcall/internal/oplog"
	"github.com/sundaykids/rollcall/internal/roster"
	"github.com/sundaykids/rollcall/internal/sheets"
)

const (
	googleTokenURL = "https://oauth2.googleapis.com/token"
	sheetsScope    = "https://www.googleapis.com/auth/spreadsheets"
)

// app bundles the components a command needs: configuration, the
// remote client, the offline log backing its queue, and the cached
// roster projection.
type app struct {
	cfg    config.Config
	client *sheets.Client
	queue  *oplog.Log
	cache  *roster.Cache
}

// newApp loads the configuration and wires the component graph. The
// projection is not loaded; commands call LoadAll themselves so a
// queue-only command like drain works without remote reads.
func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load configuration", err)
	}

	queue, err := oplog.Open(cfg.OfflineLogPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open offline log", err)
	}

	oc := &oauth2.Config{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: googleTokenURL},
		Scopes:       []string{sheetsScope},
	}
	tokens := oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.OAuth.RefreshToken})

	client := sheets.NewClient(cfg.Sheets.SpreadsheetID, tokens, sheets.WithQueue(queue))

	cache := roster.New(client, tables(cfg),
		roster.WithMaxAge(cfg.Cache.MaxAge.Std()),
		roster.WithRetention(roster.Retention{
			MaxEventAge: time.Duration(cfg.Cache.EventMaxDays) * 24 * time.Hour,
			MaxEvents:   cfg.Cache.EventMax,
		}))

	return &app{cfg: cfg, client: client, queue: queue, cache: cache}, nil
}

func (a *app) Close() error {
	return a.queue.Close()
}

func tables(cfg config.Config) roster.Tables {
	return roster.Tables{
		Guardians:  cfg.Sheets.Guardians,
		Children:   cfg.Sheets.Children,
		Events:     cfg.Sheets.Events,
		HeaderRows: cfg.Sheets.HeaderRows,
	}
}
