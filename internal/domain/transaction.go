package domain

import "time"

type TransactionType string

const (
	TransactionTypeAdminAdd         TransactionType = "ADMIN_ADD"
	TransactionTypeAdminRemove      TransactionType = "ADMIN_REMOVE"
	TransactionTypePayrollCharge    TransactionType = "PAYROLL_CHARGE"
	TransactionTypePayrollSalary    TransactionType = "PAYROLL_SALARY"
	TransactionTypeLoanDisbursement TransactionType = "LOAN_DISBURSEMENT"
	TransactionTypeLoanPayment      TransactionType = "LOAN_PAYMENT"
	TransactionTypeDailyReward      TransactionType = "DAILY_REWARD"
	TransactionTypeRollback         TransactionType = "ROLLBACK"
	TransactionTypeCompensation     TransactionType = "COMPENSATION"
)

// CurrencyBucket selects which balance column of an account a movement hits.
type CurrencyBucket string

const (
	BucketCash CurrencyBucket = "cash"
	BucketBank CurrencyBucket = "bank"
)

type TransactionStatus string

const (
	TransactionStatusConfirmed TransactionStatus = "CONFIRMED"
	// Unconfirmed means the ledger call timed out: money may or may not have
	// moved. Reconciliation is manual.
	TransactionStatusUnconfirmed TransactionStatus = "UNCONFIRMED"
)

// TransactionRecord is the immutable audit row written after every ledger
// mutation. Only RolledBack may change after creation.
type TransactionRecord struct {
	ID              int64             `json:"id"`
	GuildID         string            `json:"guild_id"`
	UserID          string            `json:"user_id"`
	Type            TransactionType   `json:"type"`
	Amount          int64             `json:"amount"` // positive for credit, negative for debit
	Bucket          CurrencyBucket    `json:"bucket"`
	Reason          string            `json:"reason"`
	PreviousBalance int64             `json:"previous_balance"`
	NewBalance      int64             `json:"new_balance"`
	Status          TransactionStatus `json:"status"`
	RunID           *string           `json:"run_id,omitempty"` // payroll saga run this step belongs to
	CreatedBy       string            `json:"created_by"`
	CreatedOn       time.Time         `json:"created_on"`
	CanRollback     bool              `json:"can_rollback"`
	RolledBack      bool              `json:"rolled_back"`
}

// TransactionFilter narrows audit-log searches.
type TransactionFilter struct {
	GuildID     string
	UserID      string
	Type        TransactionType
	RunID       string
	CanRollback *bool
	Since       *time.Time
	Limit       int32
}
