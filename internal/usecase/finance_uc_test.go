package usecase_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/bicitaller/internal/domain"
	"github.com/phenrril/bicitaller/internal/usecase"
)

func TestLedgerAfterPayment(t *testing.T) {
	w := newWorkshop(t)
	o, _, _, _ := tuneUp(t, w)
	w.tick(time.Hour)
	w.advance(o.ID, domain.StatusInProgress, domain.StatusReady, domain.StatusDelivered, domain.StatusPaid)

	l, err := w.finance.Ledger(w.ctx, w.admin, domain.PeriodMonth, w.now)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(l.Income) != 2 || len(l.Expenses) != 1 {
		t.Fatalf("expected 2 income / 1 expense got %d / %d", len(l.Income), len(l.Expenses))
	}
	if !l.TotalIncome.Equal(dec("34000")) || !l.TotalExpenses.Equal(dec("15000")) || !l.NetMargin.Equal(dec("19000")) {
		t.Fatalf("unexpected totals: %s %s %s", l.TotalIncome, l.TotalExpenses, l.NetMargin)
	}
	if l.Expenses[0].Description != "Comisión Juan Pérez" {
		t.Fatalf("unexpected expense description %q", l.Expenses[0].Description)
	}
	if len(l.Days) != 1 || l.Days[0].Day != "2026-10-17" || !l.Days[0].Net.Equal(dec("19000")) {
		t.Fatalf("unexpected day summary: %+v", l.Days)
	}
}

func TestLedgerIgnoresUnpaidOrders(t *testing.T) {
	w := newWorkshop(t)
	o, _, _, _ := tuneUp(t, w)
	w.advance(o.ID, domain.StatusInProgress, domain.StatusReady, domain.StatusDelivered)
	l, err := w.finance.Ledger(w.ctx, w.admin, domain.PeriodToday, w.now)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(l.Income) != 0 || !l.TotalIncome.IsZero() {
		t.Fatalf("delivered but unpaid order counted as income")
	}
}

// La orden se abre el 31/10 y se cobra el 2/11: el ingreso cae en octubre
// por fecha de creación y en noviembre por fecha de pago. La comisión siempre
// se imputa al momento del pago.
func TestLedgerIncomeBasis(t *testing.T) {
	w := newWorkshop(t)
	w.now = time.Date(2026, 10, 31, 18, 0, 0, 0, time.UTC)
	o, _, _, _ := tuneUp(t, w)
	w.now = time.Date(2026, 11, 2, 10, 0, 0, 0, time.UTC)
	w.advance(o.ID, domain.StatusInProgress, domain.StatusReady, domain.StatusDelivered, domain.StatusPaid)

	oct := time.Date(2026, 10, 31, 12, 0, 0, 0, time.UTC)
	nov := time.Date(2026, 11, 2, 12, 0, 0, 0, time.UTC)

	l, _ := w.finance.Ledger(w.ctx, w.admin, domain.PeriodMonth, oct)
	if !l.TotalIncome.Equal(dec("34000")) || !l.TotalExpenses.IsZero() {
		t.Fatalf("creation basis, october: %s / %s", l.TotalIncome, l.TotalExpenses)
	}
	l, _ = w.finance.Ledger(w.ctx, w.admin, domain.PeriodMonth, nov)
	if !l.TotalIncome.IsZero() || !l.TotalExpenses.Equal(dec("15000")) {
		t.Fatalf("creation basis, november: %s / %s", l.TotalIncome, l.TotalExpenses)
	}

	w.finance.Basis = domain.IncomeByPayment
	l, _ = w.finance.Ledger(w.ctx, w.admin, domain.PeriodMonth, nov)
	if !l.TotalIncome.Equal(dec("34000")) || !l.NetMargin.Equal(dec("19000")) {
		t.Fatalf("payment basis, november: %s / %s", l.TotalIncome, l.NetMargin)
	}
	l, _ = w.finance.Ledger(w.ctx, w.admin, domain.PeriodMonth, oct)
	if !l.TotalIncome.IsZero() {
		t.Fatalf("payment basis, october should be empty: %s", l.TotalIncome)
	}
}

func TestBuildLedgerGroupsByLocalDay(t *testing.T) {
	art := time.FixedZone("ART", -3*3600)
	mech := uuid.New()
	// 01:30 UTC del 18 es todavía el 17 en Argentina
	created := time.Date(2026, 10, 18, 1, 30, 0, 0, time.UTC)
	o := domain.WorkOrder{ID: uuid.New(), CreatedAt: created, ProcessStatus: domain.StatusPaid}
	o.Lines = []domain.OrderLine{domain.NewLine(domain.LineService, uuid.New(), "Service", dec("1"), dec("1000"), &mech)}
	c := domain.Commission{ID: uuid.New(), MechanicID: mech, OrderID: o.ID, Amount: dec("100"), ComputedAt: created.Add(24 * time.Hour)}

	l := usecase.BuildLedger([]domain.WorkOrder{o}, []domain.Commission{c}, map[uuid.UUID]string{mech: "Juan"}, domain.IncomeByCreation, art)
	if len(l.Days) != 2 {
		t.Fatalf("expected 2 days got %d", len(l.Days))
	}
	if l.Days[0].Day != "2026-10-17" || !l.Days[0].Income.Equal(dec("1000")) {
		t.Fatalf("unexpected first day: %+v", l.Days[0])
	}
	if l.Days[1].Day != "2026-10-18" || !l.Days[1].Expenses.Equal(dec("100")) || !l.Days[1].Net.Equal(dec("-100")) {
		t.Fatalf("unexpected second day: %+v", l.Days[1])
	}
	if !l.NetMargin.Equal(dec("900")) {
		t.Fatalf("expected net 900 got %s", l.NetMargin)
	}
}

func TestBuildLedgerEmpty(t *testing.T) {
	l := usecase.BuildLedger(nil, nil, nil, domain.IncomeByCreation, time.UTC)
	if !l.TotalIncome.IsZero() || !l.NetMargin.IsZero() || l.Income == nil || l.Days == nil {
		t.Fatalf("empty ledger should be zeroed with empty slices: %+v", l)
	}
}
