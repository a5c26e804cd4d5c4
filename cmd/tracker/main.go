// Command tracker is the terminal client of the shipment tracker: public
// lookups with a route map, shipment listings and the notification feed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/naijalogix/shipment-tracker/internal/client/api"
	"github.com/naijalogix/shipment-tracker/internal/client/session"
	"github.com/naijalogix/shipment-tracker/internal/pkg/config"
	"github.com/naijalogix/shipment-tracker/pkg/logger"
)

const usage = `usage: tracker <command> [flags]

commands:
  track <tracking-number>   look up a shipment and draw its route
  login                     print an access token for TOKEN
  list                      list shipments (TOKEN required)
  notifications             show notifications (TOKEN required)
`

type app struct {
	cfg    *config.Client
	client *api.Client
	sess   session.Session
	log    zerolog.Logger
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadClient(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  true,
		Output:  os.Stderr,
		Service: "tracker-cli",
	})

	a := &app{
		cfg:    cfg,
		client: api.New(cfg.APIURL, cfg.Timeout),
		sess:   session.Unauthenticated,
		log:    log,
	}
	if cfg.Token != "" {
		s, err := session.FromToken(cfg.Token, time.Now())
		if err != nil {
			log.Warn().Err(err).Msg("ignoring TOKEN")
		} else {
			a.sess = s
			a.client = a.client.WithToken(s.Token)
		}
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "track":
		err = a.track(ctx, args)
	case "login":
		err = a.login(ctx, args)
	case "list":
		err = a.list(ctx, args)
	case "notifications":
		err = a.notifications(ctx, args)
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) requireSession() error {
	if !a.sess.Authenticated() {
		return errors.New("not logged in: set TOKEN (see `tracker login`)")
	}
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return errors.New("login: -email and -password are required")
	}

	token, user, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return errors.New("login failed: check your credentials")
		}
		return err
	}
	a.log.Info().Str("user_id", user.ID).Msg("logged in")
	fmt.Println(token)
	return nil
}
