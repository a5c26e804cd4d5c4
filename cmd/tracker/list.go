package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/naijalogix/shipment-tracker/internal/client/api"
	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/core/search"
)

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	all := fs.Bool("all", false, "list every shipment (admin only)")
	status := fs.String("status", search.StatusAll, "status filter: all|pending|in transit|delivered|cancelled")
	term := fs.String("search", "", "initial search term")
	interactive := fs.Bool("i", false, "read search terms from stdin, one per line")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireSession(); err != nil {
		return err
	}

	shipments, err := a.client.Shipments(ctx, api.ListOptions{Mine: !*all || !a.sess.IsAdmin()})
	if err != nil {
		return err
	}

	if !*interactive {
		printShipments(os.Stdout, search.FilterByStatus(search.Filter(shipments, *term), *status), len(shipments))
		return nil
	}

	ix := search.NewIndex(search.DefaultDelay, func(visible []domain.Shipment) {
		printShipments(os.Stdout, visible, len(shipments))
	})
	defer ix.Close()
	ix.SetStatus(*status)
	ix.SetItems(shipments)

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		ix.SetTerm(sc.Text())
	}
	return sc.Err()
}

func printShipments(w io.Writer, items []domain.Shipment, total int) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRACKING\tSTATUS\tRECEIVER\tPHONE\tDESTINATION")
	for _, s := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", s.TrackingNumber, s.Status.Presentation().Label, s.ReceiverName, s.ReceiverPhone, s.DeliveryAddress)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "%d of %d shipments\n", len(items), total)
}
