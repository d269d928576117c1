package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	// ErrLedgerTimeout means the ledger call never confirmed: the movement is
	// indeterminate, not failed. Callers must not blindly retry.
	ErrLedgerTimeout           = errors.New("ledger call timed out, result unconfirmed")
	ErrDuplicateRequest        = errors.New("an approval request for this action is already pending")
	ErrApprovalExpired         = errors.New("approval request has expired")
	ErrApprovalRejected        = errors.New("approval request was rejected")
	ErrApprovalAlreadyResolved = errors.New("approval request already resolved")
	ErrLoanClosed              = errors.New("loan is already paid off")
	ErrLoanNotFound            = errors.New("loan not found")
	ErrLoanLimitReached        = errors.New("maximum number of active loans reached")
	ErrGroupNotFound           = errors.New("payroll group not found")
	ErrEmptyPayrollGroup       = errors.New("payroll group has no members")
	ErrVersionConflict         = errors.New("record was modified concurrently")
	ErrRollbackNotAllowed      = errors.New("transaction cannot be rolled back")
	ErrNotUnconfirmed          = errors.New("transaction is not awaiting confirmation")
)

// InsufficientFundsError reports the exact shortfall so the caller can tell
// the user which invariant failed instead of a blanket error.
type InsufficientFundsError struct {
	Bucket    CurrencyBucket
	Required  int64
	Available int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s funds: need %d, have %d (short %d)",
		e.Bucket, e.Required, e.Available, e.Required-e.Available)
}

func (e *InsufficientFundsError) Shortfall() int64 {
	return e.Required - e.Available
}

// OverpaymentError rejects a loan payment above the outstanding balance.
type OverpaymentError struct {
	LoanID    int64
	Requested int64
	Remaining int64
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment of %d exceeds remaining balance %d on loan %d",
		e.Requested, e.Remaining, e.LoanID)
}
