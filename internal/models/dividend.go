package models

// ScheduleTemplate is the static dividend calendar: which tickers pay in
// which month. It is supplied as configuration, not derived.
type ScheduleTemplate struct {
	Months []ScheduleMonth `json:"schedule"`
}

// ScheduleMonth lists the template slots for one calendar month.
type ScheduleMonth struct {
	Month   int             `json:"month"`
	Label   string          `json:"label,omitempty"`
	Entries []ScheduleEntry `json:"entries"`
}

// ScheduleEntry is a template slot. Amount and Name in a stored template are
// ignored; both are recomputed from current holdings.
type ScheduleEntry struct {
	Ticker      string `json:"ticker"`
	Name        string `json:"name,omitempty"`
	ExDate      string `json:"ex_date,omitempty"`
	PaymentDate string `json:"payment_date,omitempty"`
	Note        string `json:"note,omitempty"`
}

// DividendPayment is a projected payout for a held ticker within a month.
type DividendPayment struct {
	Ticker      string `json:"ticker"`
	Name        string `json:"name"`
	Amount      int64  `json:"amount"`
	ExDate      string `json:"ex_date,omitempty"`
	PaymentDate string `json:"payment_date,omitempty"`
	Note        string `json:"note,omitempty"`
}

// MonthSchedule is the projected payouts of one month.
type MonthSchedule struct {
	Month   int               `json:"month"`
	Label   string            `json:"label"`
	Entries []DividendPayment `json:"entries"`
}

// DividendSchedule is the full projected calendar.
type DividendSchedule struct {
	Schedule    []MonthSchedule `json:"schedule"`
	AnnualTotal int64           `json:"annual_total"`
}
