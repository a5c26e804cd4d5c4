package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/naijalogix/shipment-tracker/internal/client/mapprovider"
	"github.com/naijalogix/shipment-tracker/internal/client/trackview"
	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

func (a *app) track(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("track", flag.ContinueOnError)
	simplified := fs.Bool("simplified", false, "draw the simplified route diagram instead of the map")
	share := fs.Bool("share", false, "copy the tracking number to the terminal clipboard")
	marker := fs.String("marker", "", "open a marker popup: pickup|delivery")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("track: exactly one tracking number is required")
	}

	mode := trackview.Live
	if *simplified || a.cfg.MapsAPIKey == "" {
		mode = trackview.Fallback
	}
	view := trackview.New(a.client, mode)
	defer view.Close()

	if err := view.Track(ctx, fs.Arg(0)); err != nil {
		if msg := view.State().Message; msg != "" {
			return errors.New(msg)
		}
		return err
	}

	switch *marker {
	case "pickup":
		view.SelectMarker(trackview.MarkerPickup)
	case "delivery":
		view.SelectMarker(trackview.MarkerDelivery)
	}

	printShipment(view.State().Shipment)

	rendering, _ := view.Render()
	if live, ok := rendering.(trackview.LiveMap); ok {
		provider := mapprovider.NewStaticMap("", a.cfg.MapsAPIKey, a.cfg.Timeout)
		imageURL, err := provider.Load(ctx, live, view)
		if err == nil {
			if err := mapprovider.WriteLive(os.Stdout, live, imageURL); err != nil {
				return err
			}
		} else {
			a.log.Debug().Err(err).Msg("map unavailable, using simplified view")
			rendering, _ = view.Render()
		}
	}
	if d, ok := rendering.(trackview.FallbackDiagram); ok {
		if err := mapprovider.WriteDiagram(os.Stdout, d); err != nil {
			return err
		}
	}

	if *share {
		msg, err := view.Share(osc52Clipboard{w: os.Stdout})
		if err != nil {
			return err
		}
		fmt.Println(msg)
	}
	return nil
}

func printShipment(s *domain.Shipment) {
	p := s.Status.Presentation()
	fmt.Printf("Tracking number:    %s\n", s.TrackingNumber)
	fmt.Printf("Status:             %s (%s)\n", p.Label, p.Color)
	fmt.Printf("From:               %s\n", s.PickupAddress)
	fmt.Printf("To:                 %s\n", s.DeliveryAddress)
	fmt.Printf("Receiver:           %s\n", s.ReceiverName)
	fmt.Printf("Estimated delivery: %s\n\n", formatDate(s.EstimatedDelivery))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "Not available"
	}
	return t.Local().Format("Mon, Jan 2, 2006 03:04 PM")
}
