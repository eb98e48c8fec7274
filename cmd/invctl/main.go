package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"inventaris/internal/apiclient"
	"inventaris/internal/config"
	"inventaris/internal/i18n"
	"inventaris/internal/logging"
	"inventaris/internal/session"
)

// env общее окружение команд
type env struct {
	cfg    config.Config
	log    *slog.Logger
	client *apiclient.Client
	// onLogout вызывается, когда клиент сбросил сессию
	onLogout func()
}

func main() {
	_ = godotenv.Load()

	e := &env{}
	app := &cli.App{
		Name:  "invctl",
		Usage: "inventory and sales admin client",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file", EnvVars: []string{"INVENTARIS_CONFIG"}},
			&cli.StringFlag{Name: "api", Usage: "API base URL (overrides api.base_url)"},
			&cli.StringFlag{Name: "lang", Usage: "message language: id or en (overrides ui.lang)"},
		},
		Before: e.setup,
		Commands: []*cli.Command{
			e.loginCommand(),
			e.logoutCommand(),
			e.whoamiCommand(),
			e.registerCommand(),
			e.dashboardCommand(),
			e.suppliersCommand(),
			e.categoriesCommand(),
			e.customersCommand(),
			e.productsCommand(),
			e.transactionsCommand(),
			e.uiCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, e.message(err))
		os.Exit(1)
	}
}

func (e *env) setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if v := c.String("api"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := c.String("lang"); v != "" {
		cfg.UI.Lang = v
	}
	cfg.UI.Lang = i18n.Normalize(cfg.UI.Lang)
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg

	// stdout belongs to the UI, logs go to the file only
	e.log = logging.Init("invctl", logging.Options{File: cfg.Log.File, Level: cfg.Log.Level})

	client, err := apiclient.New(cfg.API.BaseURL, session.NewFileStore(cfg.Session.Path),
		apiclient.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		apiclient.WithLogger(logging.New("apiclient")),
		apiclient.WithLogoutHook(func() {
			if e.onLogout != nil {
				e.onLogout()
			}
		}),
	)
	if err != nil {
		return err
	}
	e.client = client
	return nil
}

// message текст ошибки для пользователя на выбранном языке
func (e *env) message(err error) string {
	if e.cfg.UI.Lang == "" {
		return err.Error()
	}
	return i18n.Error(e.cfg.UI.Lang, err)
}

func (e *env) ctx(c *cli.Context) (context.Context, context.CancelFunc) {
	if e.cfg.API.Timeout > 0 {
		return context.WithTimeout(c.Context, e.cfg.API.Timeout)
	}
	return context.WithCancel(c.Context)
}

func (e *env) say(c *cli.Context, code string, args ...any) {
	fmt.Fprintln(c.App.Writer, i18n.T(e.cfg.UI.Lang, code, args...))
}

// prompt читает строку из stdin, если значение не передано флагом
func prompt(c *cli.Context, label, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(c.App.Writer, "%s: ", label)
	line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

func (e *env) loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "obtain tokens and store the session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"INVENTARIS_PASSWORD"}},
			&cli.BoolFlag{Name: "remember", Usage: "remember the username for the next login"},
		},
		Action: func(c *cli.Context) error {
			user := c.String("username")
			if user == "" {
				user = e.client.Session().Username
			}
			user, err := prompt(c, "Username", user)
			if err != nil {
				return err
			}
			pass, err := prompt(c, "Password", c.String("password"))
			if err != nil {
				return err
			}
			ctx, cancel := e.ctx(c)
			defer cancel()
			if err := e.client.Login(ctx, user, pass, c.Bool("remember")); err != nil {
				if apiclient.IsStatus(err, http.StatusUnauthorized) {
					return fmt.Errorf("%s", i18n.T(e.cfg.UI.Lang, "login_failed"))
				}
				return err
			}
			e.say(c, "login_ok")
			return nil
		},
	}
}

func (e *env) logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "drop stored tokens (a remembered username is kept)",
		Action: func(c *cli.Context) error {
			return e.client.Logout()
		},
	}
}

func (e *env) whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the profile of the logged in user",
		Action: func(c *cli.Context) error {
			ctx, cancel := e.ctx(c)
			defer cancel()
			p, err := e.client.Profile(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\n", p.ID, p.Username, p.Email)
			return nil
		},
	}
}
