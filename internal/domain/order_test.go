package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestTransitions(t *testing.T) {
	cases := []struct {
		from, to ProcessStatus
		ok       bool
	}{
		{StatusOpen, StatusInProgress, true},
		{StatusOpen, StatusReady, false},
		{StatusInProgress, StatusReady, true},
		{StatusReady, StatusDelivered, true},
		{StatusDelivered, StatusPaid, true},
		{StatusReady, StatusPaid, false},
		{StatusDelivered, StatusCancelled, true},
		{StatusCancelled, StatusOpen, true},
		{StatusCancelled, StatusPaid, false},
		{StatusOpen, StatusOpen, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.ok {
			t.Fatalf("%s -> %s: expected %v got %v", c.from, c.to, c.ok, got)
		}
	}
}

func TestPaidIsTerminal(t *testing.T) {
	if !StatusPaid.Terminal() {
		t.Fatalf("paid must be terminal")
	}
	if n := StatusPaid.Next(); len(n) != 0 {
		t.Fatalf("paid has successors: %v", n)
	}
	for s := range transitions {
		if CanTransition(StatusPaid, s) {
			t.Fatalf("paid -> %s allowed", s)
		}
	}
}

func TestNextReturnsCopy(t *testing.T) {
	n := StatusOpen.Next()
	n[0] = StatusPaid
	if !CanTransition(StatusOpen, StatusInProgress) {
		t.Fatalf("mutating Next result changed the lifecycle")
	}
}

func TestLegacyStatus(t *testing.T) {
	if StatusOpen.LegacyStatus() != "pendiente" || StatusPaid.LegacyStatus() != "pagado" || StatusInProgress.LegacyStatus() != "en_proceso" {
		t.Fatalf("legacy mapping changed")
	}
}

func TestNewLineTotal(t *testing.T) {
	l := NewLine(LineProduct, uuid.New(), "Cable de freno", decimal.NewFromInt(2), decimal.NewFromInt(2000), nil)
	if !l.LineTotal.Equal(decimal.NewFromInt(4000)) {
		t.Fatalf("expected 4000 got %s", l.LineTotal)
	}
	l = NewLine(LineProduct, uuid.New(), "Grasa", decimal.RequireFromString("0.333"), decimal.RequireFromString("10"), nil)
	if l.LineTotal.String() != "3.33" {
		t.Fatalf("expected rounding to 3.33 got %s", l.LineTotal)
	}
	if l.ID == uuid.Nil {
		t.Fatalf("line without id")
	}
}

func TestCommissionsDue(t *testing.T) {
	mech := uuid.New()
	other := uuid.New()
	o := &WorkOrder{ID: uuid.New(), TenantID: uuid.New()}
	svc := NewLine(LineService, uuid.New(), "Service", decimal.NewFromInt(1), decimal.NewFromInt(30000), &mech)
	svc.CommissionAmount = decimal.NewFromInt(15000)
	prod := NewLine(LineProduct, uuid.New(), "Cable", decimal.NewFromInt(2), decimal.NewFromInt(2000), &mech)
	svc2 := NewLine(LineService, uuid.New(), "Centrado", decimal.NewFromInt(1), decimal.NewFromInt(8000), &other)
	svc2.CommissionAmount = decimal.NewFromInt(2000)
	orphan := NewLine(LineService, uuid.New(), "Sin mecánico", decimal.NewFromInt(1), decimal.NewFromInt(100), nil)
	orphan.CommissionAmount = decimal.NewFromInt(50)
	o.Lines = []OrderLine{svc, prod, svc2, orphan}

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	due := o.CommissionsDue(now)
	if len(due) != 2 {
		t.Fatalf("expected 2 commissions got %d", len(due))
	}
	if due[0].OrderLineID != svc.ID || !due[0].Amount.Equal(decimal.NewFromInt(15000)) || due[0].MechanicID != mech {
		t.Fatalf("unexpected first commission: %+v", due[0])
	}
	if due[1].MechanicID != other || due[1].Status != CommissionPending || !due[1].ComputedAt.Equal(now) {
		t.Fatalf("unexpected second commission: %+v", due[1])
	}
}

func TestAcceptsLines(t *testing.T) {
	for _, s := range []ProcessStatus{StatusOpen, StatusInProgress, StatusReady, StatusDelivered} {
		if !(&WorkOrder{ProcessStatus: s}).AcceptsLines() {
			t.Fatalf("%s should accept lines", s)
		}
	}
	for _, s := range []ProcessStatus{StatusPaid, StatusCancelled} {
		if (&WorkOrder{ProcessStatus: s}).AcceptsLines() {
			t.Fatalf("%s should not accept lines", s)
		}
	}
}

func TestOrderValidate(t *testing.T) {
	o := &WorkOrder{ClientID: uuid.New(), BikeID: uuid.New(), MechanicID: uuid.New(), Checklist: []byte(`{"frenos":true}`)}
	if err := o.Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	o.Checklist = []byte(`{frenos`)
	if err := o.Validate(); err == nil {
		t.Fatalf("invalid checklist accepted")
	}
	o = &WorkOrder{ClientID: uuid.New(), BikeID: uuid.New()}
	if err := o.Validate(); err == nil {
		t.Fatalf("missing mechanic accepted")
	}
}
