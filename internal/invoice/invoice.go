package invoice

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/phpdave11/gofpdf"
)

// Render builds an A4 PDF invoice for a fully loaded booking.
func Render(b *domain.Booking, issuedAt time.Time) ([]byte, error) {
	return render(b, issuedAt, true)
}

func render(b *domain.Booking, issuedAt time.Time, compress bool) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetTitle("Invoice "+b.BookingCode, true)
	pdf.AddPage()
	// core fonts are cp1252; names and titles arrive as UTF-8
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	line := func(s string) {
		pdf.Cell(0, 7, tr(s))
		pdf.Ln(7)
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	line("Booking code : "+b.BookingCode)
	line("Issued       : "+issuedAt.Format("2006-01-02 15:04"))
	line("Status       : "+string(b.Status))
	pdf.Ln(4)

	if b.Customer != nil {
		pdf.SetFont("Helvetica", "B", 12)
		line("Billed to:")
		pdf.SetFont("Helvetica", "", 12)
		line(b.Customer.Name)
		line(b.Customer.Email)
		if b.Customer.Phone != nil {
			line(*b.Customer.Phone)
		}
		pdf.Ln(4)
	}

	if d := b.Departure; d != nil {
		pdf.SetFont("Helvetica", "B", 12)
		line("Trip:")
		pdf.SetFont("Helvetica", "", 12)
		if d.Trip != nil {
			line(d.Trip.Title)
		}
		line(fmt.Sprintf("%s to %s", d.StartDate.Format("2006-01-02"), d.EndDate.Format("2006-01-02")))
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(110, 8, "Item", "B", 0, "", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(50, 8, "Amount", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, item := range Items(b) {
		pdf.CellFormat(110, 7, tr(item.Description), "", 0, "", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(50, 7, domain.FormatCents(item.AmountCents, b.Currency), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	line("Total     : "+domain.FormatCents(b.TotalCents, b.Currency))
	line("Paid      : "+domain.FormatCents(b.PaidCents, b.Currency))
	line("Remaining : "+domain.FormatCents(b.RemainingCents(), b.Currency))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return buf.Bytes(), nil
}

type Item struct {
	Description string
	Quantity    int
	AmountCents int64
}

// Items lists one line per passenger followed by the addon lines.
// Passenger amounts need the departure prices to be loaded.
func Items(b *domain.Booking) []Item {
	var items []Item
	for _, p := range b.Passengers {
		kind := "Adult"
		if p.IsChild {
			kind = "Child"
		}
		var amount int64
		if b.Departure != nil {
			amount = b.Departure.SeatPrice(p.IsChild)
		}
		items = append(items, Item{Description: fmt.Sprintf("%s: %s", kind, p.FullName), Quantity: 1, AmountCents: amount})
	}
	for _, a := range b.Addons {
		name := a.Name
		if name == "" {
			name = "Addon"
		}
		items = append(items, Item{Description: name, Quantity: a.Quantity, AmountCents: a.PriceCents * int64(a.Quantity)})
	}
	return items
}
