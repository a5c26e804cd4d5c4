package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/naijalogix/shipment-tracker/internal/client/notify"
	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

func (a *app) notifications(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("notifications", flag.ContinueOnError)
	follow := fs.Bool("follow", false, "stay connected and print new notifications as they arrive")
	read := fs.String("read", "", "mark the notification with this id as read")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	if *read != "" {
		return a.client.MarkRead(ctx, *read)
	}

	pushURL := a.cfg.PushURL
	if pushURL == "" {
		pushURL = notify.PushURLFromAPI(a.cfg.APIURL)
	}
	ch := notify.New(pushURL, a.client, a.log)
	defer ch.Close()

	if *follow {
		// Open before the full read so nothing sent in between is missed.
		if err := ch.Open(ctx, a.sess); err != nil {
			a.log.Warn().Err(err).Msg("live updates unavailable")
		}
	}
	if err := ch.Refresh(ctx); err != nil {
		return err
	}
	for _, n := range ch.Items() {
		printNotification(n)
	}
	fmt.Printf("%d unread\n", ch.Unread())

	if !*follow {
		return nil
	}

	seen := make(map[string]struct{})
	for _, n := range ch.Items() {
		seen[n.ID] = struct{}{}
	}
	ch.Subscribe(func(items []domain.Notification) {
		for i := len(items) - 1; i >= 0; i-- {
			if _, ok := seen[items[i].ID]; ok {
				continue
			}
			seen[items[i].ID] = struct{}{}
			printNotification(items[i])
		}
	})
	<-ctx.Done()
	return nil
}

func printNotification(n domain.Notification) {
	mark := " "
	if !n.Read {
		mark = "*"
	}
	fmt.Printf("%s %s  %s  [%s]\n", mark, n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Message, n.ID)
}
