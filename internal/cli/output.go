package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fastygo/rentals/domain"
)

// render writes v as indented JSON or lets table print it in columns.
func (a *App) render(v interface{}, table func(w io.Writer)) error {
	if a.format == "json" {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func propertyTable(items []domain.Property) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintln(w, "ID\tTITLE\tAVAILABLE\tPHOTO")
		for _, p := range items {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Title, yesNo(p.Available), photoLabel(p.Photo))
		}
	}
}

func contractTable(items []domain.Contract) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintln(w, "ID\tPROPERTY\tTENANT\tSTART\tEND\tDAY\tMONTHLY\tSTATUS")
		for _, c := range items {
			tenant := c.TenantName
			if tenant == "" {
				tenant = c.TenantID.String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
				c.ID, c.PropertyID, tenant, day(c.StartDate), day(c.EndDate),
				c.BillingDay, money(c.MonthlyAmount), c.Status)
		}
	}
}

func installmentTable(items []domain.Installment) func(io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintln(w, "ID\tCONTRACT\tPROPERTY\tNO\tDUE\tAMOUNT\tSTATUS\tPAID AT")
		for _, i := range items {
			paid := "-"
			if i.PaidAt != nil {
				paid = i.PaidAt.Format(time.RFC3339)
			}
			seq := "-"
			if i.Sequence > 0 {
				seq = fmt.Sprint(i.Sequence)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				i.ID, dash(i.ContractID.String()), i.PropertyID, seq, day(i.DueDate),
				money(i.Amount), i.Status, paid)
		}
	}
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(domain.DateLayout)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func photoLabel(p *domain.Photo) string {
	switch {
	case p == nil:
		return "-"
	case p.Local != nil:
		return "pending upload"
	case len(p.Remote) > 48:
		return p.Remote[:45] + "..."
	default:
		return p.Remote
	}
}

func printRows(w io.Writer, rows ...[2]string) {
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\n", r[0], r[1])
	}
}

func itoa(n int) string {
	return fmt.Sprint(n)
}

func positiveID(v int64) (domain.ID, error) {
	id := domain.NewID(v)
	if !id.IsSet() {
		return domain.NoID, fmt.Errorf("invalid id %d", v)
	}
	return id, nil
}
