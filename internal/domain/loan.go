package domain

import "time"

type LoanStatus string

const (
	LoanStatusPending LoanStatus = "PENDING"
	LoanStatusActive  LoanStatus = "ACTIVE"
	LoanStatusPaid    LoanStatus = "PAID"
)

type Loan struct {
	ID             int64      `json:"id"`
	GuildID        string     `json:"guild_id"`
	BorrowerID     string     `json:"borrower_id"`
	LoanAmount     int64      `json:"loan_amount"`
	InterestRate   string     `json:"interest_rate"` // annual percent, e.g. "5"
	TermMonths     int32      `json:"term_months"`
	MonthlyPayment int64      `json:"monthly_payment"`
	TotalToPay     int64      `json:"total_to_pay"`
	AmountPaid     int64      `json:"amount_paid"`
	PaymentsMade   int32      `json:"payments_made"`
	Purpose        string     `json:"purpose"`
	Status         LoanStatus `json:"status"`
	NextPaymentDue *time.Time `json:"next_payment_due,omitempty"`
	Version        int64      `json:"version"`
	CreatedOn      time.Time  `json:"created_on"`
	CompletedOn    *time.Time `json:"completed_on,omitempty"`
}

// Remaining is the outstanding balance until the loan closes.
func (l *Loan) Remaining() int64 {
	return l.TotalToPay - l.AmountPaid
}

type PaymentType string

const (
	PaymentTypeRegular PaymentType = "REGULAR"
	PaymentTypeFinal   PaymentType = "FINAL"
)

// LoanPayment is one repayment event. Rows are never updated.
type LoanPayment struct {
	ID            int64       `json:"id"`
	LoanID        int64       `json:"loan_id"`
	PaymentAmount int64       `json:"payment_amount"`
	PaymentType   PaymentType `json:"payment_type"`
	PaidBy        string      `json:"paid_by"`
	CreatedOn     time.Time   `json:"created_on"`
}
