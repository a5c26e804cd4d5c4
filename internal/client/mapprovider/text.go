package mapprovider

import (
	"fmt"
	"io"
	"strings"

	"github.com/naijalogix/shipment-tracker/internal/client/trackview"
	"github.com/naijalogix/shipment-tracker/internal/core/tracking"
)

const lineWidth = 48

// WriteDiagram draws the simplified route diagram as text.
func WriteDiagram(w io.Writer, d trackview.FallbackDiagram) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Route Visualization%*s\n", lineWidth-len("Route Visualization"), "["+d.Badge+"]")
	fmt.Fprintf(&b, "%s\n\n", d.JourneyLabel)

	delivery := "(D)"
	if d.Delivery.Highlighted {
		delivery = "[D]"
	}
	track := lineWidth - 6
	if d.Transit != nil {
		half := (track - 3) / 2
		fmt.Fprintf(&b, "(P)%s(*)%s%s\n", strings.Repeat("=", half), strings.Repeat("-", track-3-half), delivery)
	} else {
		fill := "-"
		if d.Delivery.Highlighted {
			fill = "="
		}
		fmt.Fprintf(&b, "(P)%s%s\n", strings.Repeat(fill, track), delivery)
	}

	fmt.Fprintf(&b, "%-*s%s\n", lineWidth/2, "Pickup: "+d.Pickup.Short, "Delivery: "+d.Delivery.Short)
	if d.Transit != nil {
		fmt.Fprintf(&b, "Current: %s\n", d.Transit.Short)
	}
	writeStatus(&b, d.Status.Label, d.Steps)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteLive prints a live map as its image URL with the status summary.
func WriteLive(w io.Writer, m trackview.LiveMap, imageURL string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Map: %s\n", imageURL)
	if m.Popup != "" {
		fmt.Fprintf(&b, "%s\n", m.Popup)
	}
	writeStatus(&b, m.Status.Label, m.Steps)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeStatus(b *strings.Builder, label string, steps [4]tracking.Step) {
	fmt.Fprintf(b, "\nStatus: %s\n", label)
	for _, s := range steps {
		mark := "[ ]"
		if s.Active {
			mark = "[x]"
		}
		fmt.Fprintf(b, "  %s %s\n", mark, s.Label)
	}
}
