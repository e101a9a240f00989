// Package finance computes the money side of a job: what the project costs in total,
// how much has to be collected up front and what remains due at completion.
package finance

import (
	"sort"

	"github.com/adampdxdotcom/subfloor-sub002/internal/models"
	"github.com/adampdxdotcom/subfloor-sub002/internal/money"
	"github.com/shopspring/decimal"
)

// QuoteLine is the per-quote breakdown of a summary.
type QuoteLine struct {
	QuoteID            uint                    `json:"quote_id"`
	InstallationType   models.InstallationType `json:"installation_type"`
	BaseTotal          decimal.Decimal         `json:"base_total"`
	ChangeOrdersTotal  decimal.Decimal         `json:"change_orders_total"`
	Subtotal           decimal.Decimal         `json:"subtotal"`
	DepositRate        decimal.Decimal         `json:"deposit_rate"`
	QuoteDeposit       decimal.Decimal         `json:"quote_deposit"`
	ChangeOrderDeposit decimal.Decimal         `json:"change_order_deposit"`
	Deposit            decimal.Decimal         `json:"deposit"`
}

// Summary is the financial reconciliation of a project.
type Summary struct {
	GrandTotal   decimal.Decimal `json:"grand_total"`
	TotalDeposit decimal.Decimal `json:"total_deposit"`
	BalanceDue   decimal.Decimal `json:"balance_due"`

	// UnassignedTotal sums change orders that count toward the total but not the deposit.
	// It includes OrphanedTotal.
	UnassignedTotal decimal.Decimal `json:"unassigned_total"`
	// OrphanedTotal sums change orders pointing at a quote that is no longer accepted.
	OrphanedTotal decimal.Decimal `json:"orphaned_total"`

	Lines []QuoteLine `json:"lines"`
}

// Summarize reconciles the accepted quotes of a project with its change orders.
// Quotes that are not accepted are ignored. The result does not depend on input order.
func Summarize(quotes []models.Quote, changeOrders []models.ChangeOrder) Summary {
	accepted := make(map[uint]bool, len(quotes))
	lines := make([]QuoteLine, 0, len(quotes))
	for i := range quotes {
		q := &quotes[i]
		if !q.IsAccepted() || accepted[q.ID] {
			continue
		}
		accepted[q.ID] = true
		lines = append(lines, quoteLine(q, changeOrders))
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].QuoteID < lines[j].QuoteID })

	s := Summary{
		GrandTotal:      money.Zero,
		TotalDeposit:    money.Zero,
		UnassignedTotal: money.Zero,
		OrphanedTotal:   money.Zero,
		Lines:           lines,
	}
	for _, l := range lines {
		s.GrandTotal = s.GrandTotal.Add(l.Subtotal)
		s.TotalDeposit = s.TotalDeposit.Add(l.Deposit)
	}
	for i := range changeOrders {
		co := &changeOrders[i]
		switch {
		case co.IsUnassigned():
			s.UnassignedTotal = s.UnassignedTotal.Add(money.ToMoney(co.Amount))
		case !accepted[*co.QuoteID]:
			amt := money.ToMoney(co.Amount)
			s.OrphanedTotal = s.OrphanedTotal.Add(amt)
			s.UnassignedTotal = s.UnassignedTotal.Add(amt)
		}
	}
	s.GrandTotal = s.GrandTotal.Add(s.UnassignedTotal)
	s.BalanceDue = s.GrandTotal.Sub(s.TotalDeposit)
	return s
}

func quoteLine(q *models.Quote, changeOrders []models.ChangeOrder) QuoteLine {
	materials := money.ToMoney(q.MaterialsAmount)
	labor := money.ToMoney(q.LaborAmount)
	rate := money.Zero
	if q.IsManaged() {
		rate = money.Percent(money.ToMoney(q.LaborDepositPercentage))
	}

	l := QuoteLine{
		QuoteID:            q.ID,
		InstallationType:   q.Type(),
		BaseTotal:          materials.Add(labor),
		ChangeOrdersTotal:  money.Zero,
		DepositRate:        rate,
		QuoteDeposit:       materials.Add(labor.Mul(rate)),
		ChangeOrderDeposit: money.Zero,
	}
	for i := range changeOrders {
		co := &changeOrders[i]
		if !co.BelongsTo(q.ID) {
			continue
		}
		amt := money.ToMoney(co.Amount)
		l.ChangeOrdersTotal = l.ChangeOrdersTotal.Add(amt)
		l.ChangeOrderDeposit = l.ChangeOrderDeposit.Add(changeOrderDeposit(co.Type, amt, rate))
	}
	l.Subtotal = l.BaseTotal.Add(l.ChangeOrdersTotal)
	l.Deposit = l.QuoteDeposit.Add(l.ChangeOrderDeposit)
	return l
}

// Materials are collected in full up front; labor only at the quote's deposit rate.
func changeOrderDeposit(t models.ChangeOrderType, amount, rate decimal.Decimal) decimal.Decimal {
	if t == models.ChangeOrderLabor {
		return amount.Mul(rate)
	}
	return amount
}

// Display is a summary rendered for people.
type Display struct {
	GrandTotal   string `json:"grand_total"`
	TotalDeposit string `json:"total_deposit"`
	BalanceDue   string `json:"balance_due"`
	Orphaned     string `json:"orphaned,omitempty"`
}

// Display renders the three headline amounts as dollar strings.
func (s Summary) Display() Display {
	d := Display{
		GrandTotal:   money.Format(s.GrandTotal),
		TotalDeposit: money.Format(s.TotalDeposit),
		BalanceDue:   money.Format(s.BalanceDue),
	}
	if !s.OrphanedTotal.IsZero() {
		d.Orphaned = money.Format(s.OrphanedTotal)
	}
	return d
}

// DepositAmount is the value persisted on the job, rounded to cents.
func (s Summary) DepositAmount() decimal.Decimal {
	return s.TotalDeposit.Round(2)
}
