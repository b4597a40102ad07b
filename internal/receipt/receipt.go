// Package receipt renders a finalized bill as a printable PDF.
package receipt

import (
	"bytes"
	"context"
	"fmt"
	"io"

	billingdomain "github.com/dineops/dineops/internal/billing/domain"
	appconfig "github.com/dineops/dineops/internal/config"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/fx"
)

type Renderer interface {
	Render(ctx context.Context, bill *billingdomain.Bill) (io.Reader, error)
}

type renderer struct {
	restaurantName string
}

func NewRenderer(appName string) Renderer {
	return &renderer{restaurantName: appName}
}

func (r *renderer) Render(_ context.Context, bill *billingdomain.Bill) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(12, r.restaurantName, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Receipt: "+bill.ReceiptNumber, props.Text{Top: 0}),
			text.New("Table: "+bill.TableNumber, props.Text{Top: 4}),
			text.New("Date: "+bill.CreatedAt.Format("02 Jan 2006 15:04"), props.Text{Top: 8}),
		),
		col.New(6),
	)

	m.AddRow(10,
		text.NewCol(6, "Item", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Rate", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	for _, item := range bill.Items {
		m.AddRow(8,
			text.NewCol(6, item.ItemName, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, rupees(item.UnitPrice), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, rupees(item.LineTotal), props.Text{Size: 9, Align: align.Right}),
		)
	}

	r.totalRow(m, "Subtotal", bill.SubtotalAmount, false)
	if bill.DiscountAmount > 0 {
		r.totalRow(m, fmt.Sprintf("Discount (%.1f%%)", bill.DiscountPercentage), -bill.DiscountAmount, false)
	}
	r.totalRow(m, fmt.Sprintf("Service charge (%.1f%%)", bill.ServiceChargePercentage), bill.ServiceChargeAmount, false)
	if bill.Interstate {
		r.totalRow(m, fmt.Sprintf("IGST (%.1f%%)", bill.IGSTPercentage), bill.IGSTAmount, false)
	} else {
		r.totalRow(m, fmt.Sprintf("CGST (%.2f%%)", bill.CGSTPercentage), bill.CGSTAmount, false)
		r.totalRow(m, fmt.Sprintf("SGST (%.2f%%)", bill.SGSTPercentage), bill.SGSTAmount, false)
	}
	if bill.RoundOff != 0 {
		r.totalRow(m, "Round off", bill.RoundOff, false)
	}
	r.totalRow(m, "Grand total", bill.GrandTotal, true)

	if len(bill.Payments) > 0 {
		m.AddRow(10,
			text.NewCol(12, "Payments", props.Text{Style: fontstyle.Bold, Size: 9, Top: 2}),
		)
		for _, payment := range bill.Payments {
			m.AddRow(8,
				text.NewCol(6, string(payment.Method), props.Text{Size: 9}),
				col.New(4),
				text.NewCol(2, rupees(payment.Amount), props.Text{Size: 9, Align: align.Right}),
			)
		}
	}

	m.AddRow(15,
		text.NewCol(12, "Thank you, visit again!", props.Text{
			Size:  9,
			Align: align.Center,
			Top:   5,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

func (r *renderer) totalRow(m core.Maroto, label string, amount float64, bold bool) {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	m.AddRow(7,
		col.New(6),
		text.NewCol(4, label, props.Text{Size: 9, Style: style}),
		text.NewCol(2, rupees(amount), props.Text{Size: 9, Style: style, Align: align.Right}),
	)
}

func rupees(amount float64) string {
	return fmt.Sprintf("Rs %.2f", amount)
}

var Module = fx.Module("receipt",
	fx.Provide(func(cfg appconfig.Config) Renderer { return NewRenderer(cfg.AppName) }),
)
