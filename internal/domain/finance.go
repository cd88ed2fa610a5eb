package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Period string

const (
	PeriodToday      Period = "today"
	PeriodWeek       Period = "week"
	PeriodLast15Days Period = "last15"
	PeriodMonth      Period = "month"
)

// Range devuelve el intervalo [from, to) del período que contiene a now, en
// la zona horaria de now. Las semanas empiezan el lunes.
func (p Period) Range(now time.Time) (time.Time, time.Time, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := day.AddDate(0, 0, 1)
	switch p {
	case PeriodToday:
		return day, tomorrow, nil
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset), tomorrow, nil
	case PeriodLast15Days:
		return day.AddDate(0, 0, -14), tomorrow, nil
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), tomorrow, nil
	}
	return time.Time{}, time.Time{}, Invalid("period", "debe ser today, week, last15 o month")
}

// IncomeBasis define qué fecha de la orden ubica un ingreso en el período.
type IncomeBasis string

const (
	IncomeByCreation IncomeBasis = "created"
	IncomeByPayment  IncomeBasis = "paid"
)

type EntryKind string

const (
	EntryIncome  EntryKind = "income"
	EntryExpense EntryKind = "expense"
)

type LedgerEntry struct {
	Date        time.Time       `json:"date"`
	Kind        EntryKind       `json:"kind"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	OrderID     uuid.UUID       `json:"order_id"`
	SourceID    uuid.UUID       `json:"source_id"`
	MechanicID  *uuid.UUID      `json:"mechanic_id,omitempty"`
}

type DaySummary struct {
	Day      string          `json:"day"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
	Entries  []LedgerEntry   `json:"entries"`
}

// Ledger es una proyección de lectura; no se persiste.
type Ledger struct {
	Period        Period          `json:"period"`
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Basis         IncomeBasis     `json:"basis"`
	Income        []LedgerEntry   `json:"income"`
	Expenses      []LedgerEntry   `json:"expenses"`
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetMargin     decimal.Decimal `json:"net_margin"`
	Days          []DaySummary    `json:"days"`
}
