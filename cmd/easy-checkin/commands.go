package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"hrtime.service/internal/client"
	"hrtime.service/internal/config"
	"hrtime.service/internal/core/model"
	"hrtime.service/internal/dashboard"
	"hrtime.service/internal/dialog"
)

func newClient(cmd *cli.Command, cfg config.Config) (*client.HTTPClient, error) {
	user := strings.TrimSpace(cmd.String("user"))
	if user == "" {
		return nil, errors.New("no user given: set HR_TIME_USER or pass --user")
	}
	return client.NewHTTPClient(cmd.String("api"), user, cfg.APITimeout, client.WithUserHeader(cfg.UserHeader)), nil
}

func checkinCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "checkin",
		Usage: "open the check-in dialog",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := newClient(cmd, cfg)
			if err != nil {
				return err
			}
			term := newTerminal(bufio.NewReader(os.Stdin), os.Stdout)
			board := dashboard.New(c, term.printWidgets)
			d := dialog.Singleton(c, dialog.WithNotifier(term), dialog.WithRefresher(board))

			if err := runCheckin(ctx, d, term); err != nil {
				return err
			}
			d.Wait()
			return nil
		},
	}
}

func worklogCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "worklog",
		Usage: "manage today's worklogs",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "add a worklog without checking in or out",
				ArgsUsage: "<text>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					text := strings.Join(cmd.Args().Slice(), " ")
					if strings.TrimSpace(text) == "" {
						return errors.New("worklog text is required")
					}
					c, err := newClient(cmd, cfg)
					if err != nil {
						return err
					}
					term := newTerminal(nil, os.Stdout)
					d := dialog.New(c, dialog.WithNotifier(term))
					if err := d.Show(ctx); err != nil {
						return err
					}
					defer d.Close()
					if err := d.SetWorklogText(text); err != nil {
						return err
					}
					return d.AddWorklog(ctx)
				},
			},
		},
	}
}

func statusCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "show your check-in status and how many colleagues are present",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "keep refreshing until interrupted",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "refresh interval with --watch",
				Value: cfg.StatusRefreshInterval,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			interval := cmd.Duration("interval")
			if cmd.Bool("watch") && interval <= 0 {
				return fmt.Errorf("refresh interval must be positive, got %s", interval)
			}
			c, err := newClient(cmd, cfg)
			if err != nil {
				return err
			}
			term := newTerminal(nil, os.Stdout)
			board := dashboard.New(c, term.printWidgets)
			if !cmd.Bool("watch") {
				board.Refresh(ctx)
				return nil
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			board.Run(ctx, interval)
			return nil
		},
	}
}

func presentCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "present",
		Usage: "list employees that are working or on a break",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "status",
				Usage: "only list employees with this status (In or Break)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := newClient(cmd, cfg)
			if err != nil {
				return err
			}
			rows, err := c.EmployeesPresent(ctx, model.State(cmd.String("status")))
			if err != nil {
				return err
			}
			newTerminal(nil, os.Stdout).printPresent(rows)
			return nil
		},
	}
}

// runCheckin drives the dialog from terminal answers until a check-in was
// submitted or the user quits.
func runCheckin(ctx context.Context, d *dialog.Dialog, term *terminal) (err error) {
	if err := d.Show(ctx); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	for {
		view := d.View()
		term.printOptions(view)

		answer, err := term.ask("Action (number or name, empty keeps the selection, q quits)")
		if err != nil {
			return err
		}
		if strings.EqualFold(answer, "q") {
			d.Close()
			return nil
		}
		if answer != "" {
			action, ok := pickAction(view.Options, answer)
			if !ok {
				term.println("Unknown choice:", answer)
				continue
			}
			if err := d.Select(action); err != nil {
				return err
			}
		}

		if view = d.View(); view.ShowWorklogSection {
			term.printWorklogSection(view)
			text, err := term.ask("Worklog")
			if err != nil {
				return err
			}
			if err := d.SetWorklogText(text); err != nil {
				return err
			}
		}

		err = d.Submit(ctx)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, dialog.ErrUnknownAction):
			term.println("Pick an action first.")
		case errors.Is(err, dialog.ErrBlocked):
			// The warning was already shown.
		default:
			var statusErr *dialog.StatusError
			if !errors.As(err, &statusErr) {
				term.println(err.Error())
			}
		}
		if d.State() == dialog.StateClosed {
			return err
		}
	}
}

// pickAction resolves a 1-based index or an action name.
func pickAction(options []model.CheckinAction, answer string) (model.CheckinAction, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(options) {
			return "", false
		}
		return options[n-1], true
	}
	for _, o := range options {
		if strings.EqualFold(string(o), answer) {
			return o, true
		}
	}
	return "", false
}
