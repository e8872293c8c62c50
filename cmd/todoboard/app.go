package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashishacharya123/pkms-todos/internal/api"
	"github.com/ashishacharya123/pkms-todos/internal/config"
	"github.com/ashishacharya123/pkms-todos/internal/constants"
	"github.com/ashishacharya123/pkms-todos/internal/dto"
	"github.com/ashishacharya123/pkms-todos/internal/logging"
	"github.com/ashishacharya123/pkms-todos/internal/notify"
	"github.com/ashishacharya123/pkms-todos/internal/store"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// app holds what every subcommand needs, built once the flags are parsed.
type app struct {
	apiURL     string
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *log.Logger
	client *api.Client
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadFile(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("api") {
		cfg.APIURL = a.apiURL
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}

	a.cfg = cfg
	a.logger = logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel, "todoboard")
	a.client = api.NewClient(cfg.APIURL)
	return nil
}

// newStore builds a store that reports through n.
func (a *app) newStore(n notify.Notifier) *store.Store {
	return store.New(a.client,
		store.WithLogger(a.logger),
		store.WithNotifier(n),
		store.WithPageSize(a.cfg.PageSize),
	)
}

// loadAll loads every page matching filters into st.
func (a *app) loadAll(ctx context.Context, st *store.Store, filters store.Filters) error {
	if err := st.SetFilters(ctx, filters); err != nil {
		return err
	}
	for st.HasMore() {
		if err := st.LoadMore(ctx); err != nil {
			return err
		}
	}
	return nil
}

// resolve expands a unique uuid prefix to the full uuid.
func (a *app) resolve(ctx context.Context, ref string) (string, error) {
	if len(ref) == 36 {
		return ref, nil
	}
	todos, err := a.allTodos(ctx)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, t := range todos {
		if strings.HasPrefix(t.UUID, ref) {
			matches = append(matches, t.UUID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no todo matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%q matches %d todos", ref, len(matches))
	}
}

// allTodos lists every top-level todo and the subtasks the list carries for
// them, archived ones included.
func (a *app) allTodos(ctx context.Context) ([]dto.TodoDTO, error) {
	var all []dto.TodoDTO
	for page := 1; ; page++ {
		resp, err := a.client.ListTodos(ctx, api.ListParams{Page: page, Limit: constants.MaxPageSize})
		if err != nil {
			return nil, err
		}
		all = appendWithSubtasks(all, resp.Todos)
		if len(resp.Todos) < constants.MaxPageSize {
			return all, nil
		}
	}
}

func appendWithSubtasks(all, todos []dto.TodoDTO) []dto.TodoDTO {
	for _, t := range todos {
		all = append(all, t)
		all = appendWithSubtasks(all, t.Subtasks)
	}
	return all
}
