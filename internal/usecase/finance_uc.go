package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/bicitaller/internal/domain"
)

// FinanceUC arma el libro de caja a partir de órdenes pagadas y comisiones.
// No persiste nada; cada lectura se recalcula.
type FinanceUC struct {
	Orders      domain.OrderRepo
	Commissions domain.CommissionRepo
	Mechanics   domain.MechanicRepo
	// Basis por defecto es IncomeByCreation: el ingreso cae en el período en
	// que se abrió la orden aunque se cobre después.
	Basis    domain.IncomeBasis
	Location *time.Location
}

func (uc *FinanceUC) basis() domain.IncomeBasis {
	if uc.Basis == domain.IncomeByPayment {
		return domain.IncomeByPayment
	}
	return domain.IncomeByCreation
}

func (uc *FinanceUC) location() *time.Location {
	if uc.Location == nil {
		return time.UTC
	}
	return uc.Location
}

// Ledger calcula el período que contiene a ref en la zona horaria del taller.
func (uc *FinanceUC) Ledger(ctx context.Context, s domain.Session, period domain.Period, ref time.Time) (*domain.Ledger, error) {
	if err := s.RequireManager(); err != nil {
		return nil, err
	}
	from, to, err := period.Range(ref.In(uc.location()))
	if err != nil {
		return nil, err
	}
	orders, err := uc.Orders.ListPaidInRange(ctx, s.TenantID, uc.basis(), from, to)
	if err != nil {
		return nil, err
	}
	commissions, err := uc.Commissions.List(ctx, s.TenantID, domain.CommissionFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	names := map[uuid.UUID]string{}
	if uc.Mechanics != nil {
		ms, err := uc.Mechanics.List(ctx, s.TenantID, true)
		if err != nil {
			return nil, err
		}
		for _, m := range ms {
			names[m.ID] = m.Name
		}
	}
	l := BuildLedger(orders, commissions, names, uc.basis(), uc.location())
	l.Period, l.From, l.To = period, from, to
	return l, nil
}

// BuildLedger proyecta una línea de ingreso por cada línea de orden pagada y
// un egreso por cada comisión, agrupados por día calendario en loc.
func BuildLedger(orders []domain.WorkOrder, commissions []domain.Commission, mechanics map[uuid.UUID]string, basis domain.IncomeBasis, loc *time.Location) *domain.Ledger {
	l := &domain.Ledger{
		Basis:         basis,
		Income:        []domain.LedgerEntry{},
		Expenses:      []domain.LedgerEntry{},
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		Days:          []domain.DaySummary{},
	}
	for _, o := range orders {
		at := o.CreatedAt
		if basis == domain.IncomeByPayment && o.PaidAt != nil {
			at = *o.PaidAt
		}
		for _, ln := range o.Lines {
			l.Income = append(l.Income, domain.LedgerEntry{
				Date:        at.In(loc),
				Kind:        domain.EntryIncome,
				Description: ln.Description,
				Amount:      ln.LineTotal,
				OrderID:     o.ID,
				SourceID:    ln.ID,
				MechanicID:  ln.MechanicID,
			})
			l.TotalIncome = l.TotalIncome.Add(ln.LineTotal)
		}
	}
	for _, c := range commissions {
		desc := "Comisión"
		if name := mechanics[c.MechanicID]; name != "" {
			desc += " " + name
		}
		mech := c.MechanicID
		l.Expenses = append(l.Expenses, domain.LedgerEntry{
			Date:        c.ComputedAt.In(loc),
			Kind:        domain.EntryExpense,
			Description: desc,
			Amount:      c.Amount,
			OrderID:     c.OrderID,
			SourceID:    c.ID,
			MechanicID:  &mech,
		})
		l.TotalExpenses = l.TotalExpenses.Add(c.Amount)
	}
	l.NetMargin = l.TotalIncome.Sub(l.TotalExpenses)

	byDay := map[string]*domain.DaySummary{}
	add := func(e domain.LedgerEntry) {
		k := e.Date.Format("2006-01-02")
		d := byDay[k]
		if d == nil {
			d = &domain.DaySummary{Day: k, Income: decimal.Zero, Expenses: decimal.Zero}
			byDay[k] = d
		}
		if e.Kind == domain.EntryIncome {
			d.Income = d.Income.Add(e.Amount)
		} else {
			d.Expenses = d.Expenses.Add(e.Amount)
		}
		d.Entries = append(d.Entries, e)
	}
	for _, e := range l.Income {
		add(e)
	}
	for _, e := range l.Expenses {
		add(e)
	}
	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d := byDay[k]
		d.Net = d.Income.Sub(d.Expenses)
		sort.SliceStable(d.Entries, func(i, j int) bool { return d.Entries[i].Date.Before(d.Entries[j].Date) })
		l.Days = append(l.Days, *d)
	}
	return l
}
