// Package pdf renders quote documents with maroto/v2.
package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
)

var (
	colorPrimary   = &props.Color{Red: 17, Green: 24, Blue: 39}
	colorSecondary = &props.Color{Red: 107, Green: 114, Blue: 128}
	colorAccent    = &props.Color{Red: 37, Green: 99, Blue: 235}
	colorTableHead = &props.Color{Red: 241, Green: 245, Blue: 249}
	colorTableAlt  = &props.Color{Red: 249, Green: 250, Blue: 251}
	colorBorder    = &props.Color{Red: 226, Green: 232, Blue: 240}
)

// GenerateQuotePDF renders doc as an A4 PDF.
func GenerateQuotePDF(doc *entity.QuoteDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	m.AddRows(buildHeader(doc)...)
	m.AddRows(row.New(1).WithStyle(&props.Cell{
		BorderType:  border.Bottom,
		BorderColor: colorBorder,
	}))
	m.AddRows(row.New(6))

	m.AddRows(buildParties(doc)...)
	m.AddRows(row.New(6))

	m.AddRows(buildItemsTable(doc)...)
	m.AddRows(row.New(4))

	m.AddRows(buildTotals(doc)...)

	if doc.Notes != "" {
		m.AddRows(row.New(6))
		m.AddRows(buildNotes(doc.Notes)...)
	}

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate PDF: %w", err)
	}
	return out.GetBytes(), nil
}

func buildHeader(doc *entity.QuoteDocument) []core.Row {
	title := "QUOTE"
	if doc.Title != "" {
		title = doc.Title
	}
	return []core.Row{
		row.New(20).Add(
			col.New(6).Add(
				text.New(doc.Header.CompanyName, props.Text{
					Size:  14,
					Style: fontstyle.Bold,
					Color: colorPrimary,
					Top:   4,
				}),
			),
			col.New(6).Add(
				text.New(title, props.Text{
					Size:  18,
					Style: fontstyle.Bold,
					Align: align.Right,
					Color: colorAccent,
				}),
				text.New(doc.QuoteNumber, props.Text{
					Size:  11,
					Align: align.Right,
					Color: colorSecondary,
					Top:   10,
				}),
			),
		),
	}
}

func buildParties(doc *entity.QuoteDocument) []core.Row {
	label := props.Text{Size: 8, Style: fontstyle.Bold, Color: colorAccent}
	body := props.Text{Size: 9, Color: colorPrimary}
	right := props.Text{Size: 9, Color: colorPrimary, Align: align.Right}

	from := []string{doc.Header.Address, doc.Header.Email, doc.Header.Phone}
	if doc.Header.TaxID != "" {
		from = append(from, "Tax ID: "+doc.Header.TaxID)
	}
	to := []string{doc.Customer.Name, doc.Customer.CompanyName, doc.Customer.Address,
		joinNonEmpty(" ", doc.Customer.PostalCode, doc.Customer.City), doc.Customer.Email, doc.Customer.Phone}
	meta := []string{"Date: " + doc.IssueDate}
	if doc.ValidUntil != "" {
		meta = append(meta, "Valid until: "+doc.ValidUntil)
	}
	meta = append(meta, "Status: "+doc.Status)

	rows := []core.Row{
		row.New(6).Add(
			col.New(4).Add(text.New("FROM", label)),
			col.New(4).Add(text.New("TO", label)),
			col.New(4).Add(text.New("DETAILS", props.Text{Size: 8, Style: fontstyle.Bold, Color: colorAccent, Align: align.Right})),
		),
	}

	from, to = compact(from), compact(to)
	n := max(len(from), len(to), len(meta))
	for i := 0; i < n; i++ {
		rows = append(rows, row.New(5).Add(
			col.New(4).Add(text.New(at(from, i), body)),
			col.New(4).Add(text.New(at(to, i), body)),
			col.New(4).Add(text.New(at(meta, i), right)),
		))
	}
	return rows
}

func buildItemsTable(doc *entity.QuoteDocument) []core.Row {
	headerStyle := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorPrimary, Top: 1.5}
	headerStyleRight := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 1.5}

	rows := []core.Row{
		row.New(7).Add(
			col.New(5).Add(text.New("Description", headerStyle)),
			col.New(1).Add(text.New("Qty", headerStyleRight)),
			col.New(2).Add(text.New("Unit price", headerStyleRight)),
			col.New(1).Add(text.New("Disc.", headerStyleRight)),
			col.New(3).Add(text.New("Amount", headerStyleRight)),
		).WithStyle(&props.Cell{
			BackgroundColor: colorTableHead,
			BorderType:      border.Bottom,
			BorderColor:     colorBorder,
		}),
	}

	normal := props.Text{Size: 8, Color: colorPrimary, Top: 1}
	rightStyle := props.Text{Size: 8, Color: colorPrimary, Align: align.Right, Top: 1}

	for i, line := range doc.Lines {
		qty := fmt.Sprintf("%d %s", line.Quantity, line.Unit)
		r := row.New(7).Add(
			col.New(5).Add(text.New(line.Description, normal)),
			col.New(1).Add(text.New(qty, rightStyle)),
			col.New(2).Add(text.New(line.UnitPrice, rightStyle)),
			col.New(1).Add(text.New(line.Discount, rightStyle)),
			col.New(3).Add(text.New(line.Total, rightStyle)),
		)
		if i%2 == 0 {
			r.WithStyle(&props.Cell{BackgroundColor: colorTableAlt})
		}
		rows = append(rows, r)
	}
	return rows
}

func buildTotals(doc *entity.QuoteDocument) []core.Row {
	labelStyle := props.Text{Size: 9, Color: colorSecondary, Align: align.Right}
	valueStyle := props.Text{Size: 9, Color: colorPrimary, Align: align.Right}

	line := func(label, value string) core.Row {
		return row.New(6).Add(
			col.New(9).Add(text.New(label, labelStyle)),
			col.New(3).Add(text.New(value, valueStyle)),
		)
	}

	rows := []core.Row{
		row.New(1).WithStyle(&props.Cell{BorderType: border.Bottom, BorderColor: colorBorder}),
		row.New(3),
		line("Subtotal", doc.Subtotal),
	}
	if doc.DiscountAmount != "" {
		rows = append(rows, line(doc.DiscountLabel, "-"+doc.DiscountAmount))
	}
	rows = append(rows, line(doc.TaxLabel, doc.TaxAmount), row.New(2))

	total := props.Text{Size: 12, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 2}
	rows = append(rows, row.New(10).Add(
		col.New(9).Add(text.New("TOTAL "+doc.Currency, total)),
		col.New(3).Add(text.New(doc.Total, total)),
	).WithStyle(&props.Cell{
		BackgroundColor: colorTableHead,
		BorderType:      border.Top | border.Bottom,
		BorderColor:     colorBorder,
	}))
	return rows
}

func buildNotes(notes string) []core.Row {
	return []core.Row{
		row.New(5).Add(
			col.New(12).Add(text.New("NOTES", props.Text{
				Size:  8,
				Style: fontstyle.Bold,
				Color: colorAccent,
			})),
		),
		row.New(12).Add(
			col.New(12).Add(text.New(notes, props.Text{
				Size:  8,
				Color: colorSecondary,
				Top:   1,
			})),
		),
	}
}

func compact(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	parts = compact(parts)
	s := ""
	for i, p := range parts {
		if i > 0 {
			s += sep
		}
		s += p
	}
	return s
}

func at(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}
