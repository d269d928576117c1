package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"economy-core/internal/domain"
	"economy-core/internal/logger"
	"economy-core/internal/repository"

	"github.com/shopspring/decimal"
)

type loanService struct {
	loanRepo   repository.LoanRepository
	orch       Orchestrator
	approvals  ApprovalService
	annualRate decimal.Decimal
	rateLabel  string
	maxActive  int32
}

func NewLoanService(loanRepo repository.LoanRepository, orch Orchestrator, approvals ApprovalService, annualRatePercent string, maxActive int) (LoanService, error) {
	rate, err := decimal.NewFromString(annualRatePercent)
	if err != nil {
		return nil, fmt.Errorf("invalid annual rate %q: %w", annualRatePercent, err)
	}
	s := &loanService{
		loanRepo:   loanRepo,
		orch:       orch,
		approvals:  approvals,
		annualRate: rate,
		rateLabel:  annualRatePercent,
		maxActive:  int32(maxActive),
	}
	if approvals != nil {
		approvals.RegisterExecutor(domain.ActionLoanDisbursement, s.replayDisbursement)
	}
	return s, nil
}

func (s *loanService) Quote(amount int64, termMonths int32) *LoanQuote {
	m := monthlyPayment(amount, s.annualRate, termMonths)
	total := m * int64(termMonths)
	return &LoanQuote{
		LoanAmount:     amount,
		TermMonths:     termMonths,
		AnnualRate:     s.rateLabel,
		MonthlyPayment: m,
		TotalToPay:     total,
		TotalInterest:  total - amount,
	}
}

// RequestLoan creates a pending loan awaiting disbursement approval.
func (s *loanService) RequestLoan(ctx context.Context, guildID, borrowerID string, amount int64, termMonths int32, purpose string) (*domain.Loan, error) {
	if amount <= 0 || termMonths <= 0 {
		return nil, fmt.Errorf("loan amount and term must be positive")
	}

	active, err := s.loanRepo.CountByStatus(ctx, guildID, borrowerID, domain.LoanStatusActive)
	if err != nil {
		return nil, fmt.Errorf("counting active loans: %w", err)
	}
	if active >= s.maxActive {
		return nil, domain.ErrLoanLimitReached
	}

	quote := s.Quote(amount, termMonths)
	due := time.Now().UTC().Add(30 * 24 * time.Hour)
	loan := &domain.Loan{
		GuildID:        guildID,
		BorrowerID:     borrowerID,
		LoanAmount:     amount,
		InterestRate:   s.rateLabel,
		TermMonths:     termMonths,
		MonthlyPayment: quote.MonthlyPayment,
		TotalToPay:     quote.TotalToPay,
		Purpose:        purpose,
		Status:         domain.LoanStatusPending,
		NextPaymentDue: &due,
	}
	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, fmt.Errorf("creating loan: %w", err)
	}
	logger.Info("loan requested", "loan_id", loan.ID, "borrower_id", borrowerID, "amount", amount, "term_months", termMonths)
	return loan, nil
}

// Disburse credits the borrower and activates a pending loan. A banker
// disbursing their own loan is intercepted and suspended for superior
// approval.
func (s *loanService) Disburse(ctx context.Context, loanID int64, bankerID string) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusPending {
		return nil, fmt.Errorf("loan %d is not pending disbursement", loanID)
	}

	if !s.approvals.Intercept(bankerID, loan.BorrowerID, false) {
		req, err := s.approvals.RequestApproval(ctx, ApprovalParams{
			GuildID:    loan.GuildID,
			ActionType: domain.ActionLoanDisbursement,
			ExecutorID: bankerID,
			TargetID:   loan.BorrowerID,
			Details:    fmt.Sprintf("disburse own loan #%d for %d over %d months", loanID, loan.LoanAmount, loan.TermMonths),
			Metadata:   map[string]string{"loan_id": strconv.FormatInt(loanID, 10)},
		})
		if err != nil {
			return nil, err
		}
		return nil, &PendingApprovalError{Request: req}
	}

	return s.disburse(ctx, loan, bankerID)
}

func (s *loanService) replayDisbursement(ctx context.Context, req *domain.ApprovalRequest) error {
	id, err := strconv.ParseInt(req.Metadata["loan_id"], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid loan_id in approval metadata: %w", err)
	}
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if loan.Status != domain.LoanStatusPending {
		return fmt.Errorf("loan %d is not pending disbursement", id)
	}
	_, err = s.disburse(ctx, loan, req.ExecutorID)
	return err
}

func (s *loanService) disburse(ctx context.Context, loan *domain.Loan, bankerID string) (*domain.Loan, error) {
	_, err := s.orch.Credit(ctx, MoneyOp{
		GuildID:     loan.GuildID,
		UserID:      loan.BorrowerID,
		Amount:      loan.LoanAmount,
		Bucket:      domain.BucketCash,
		Type:        domain.TransactionTypeLoanDisbursement,
		Reason:      fmt.Sprintf("loan #%d disbursement", loan.ID),
		ActorID:     bankerID,
		CanRollback: true,
	})
	if err != nil {
		return nil, fmt.Errorf("disbursing loan %d: %w", loan.ID, err)
	}

	loan.Status = domain.LoanStatusActive
	if err := s.loanRepo.Update(ctx, loan, loan.Version); err != nil {
		// The credit landed; the status update must not be lost silently.
		logger.Error("loan activation update failed after disbursement", "loan_id", loan.ID, "error", err)
		return nil, err
	}
	logger.Info("loan disbursed", "loan_id", loan.ID, "borrower_id", loan.BorrowerID, "amount", loan.LoanAmount)
	return loan, nil
}

// Pay debits the borrower's cash and applies the payment. amount == nil pays
// the full remaining balance. The loan row is untouched when the debit
// fails; a payment the loan can no longer absorb after the debit landed is
// refunded.
func (s *loanService) Pay(ctx context.Context, guildID, borrowerID string, loanID int64, amount *int64) (*LoanPaymentResult, error) {
	loan, err := s.loanRepo.GetForBorrower(ctx, loanID, guildID, borrowerID)
	if err != nil {
		return nil, err
	}
	payment, err := paymentAmount(loan, amount)
	if err != nil {
		return nil, err
	}

	if _, err := s.orch.Debit(ctx, MoneyOp{
		GuildID:     guildID,
		UserID:      borrowerID,
		Amount:      payment,
		Bucket:      domain.BucketCash,
		Type:        domain.TransactionTypeLoanPayment,
		Reason:      fmt.Sprintf("loan #%d payment", loanID),
		ActorID:     borrowerID,
		CanRollback: false,
	}); err != nil {
		return nil, err
	}

	result, err := s.applyPayment(ctx, loan, payment, borrowerID)
	if errors.Is(err, domain.ErrVersionConflict) {
		// A concurrent payment advanced the loan while the debit was in
		// flight. The money already moved, so only the bookkeeping is
		// retried against the re-read row.
		logger.Warn("loan payment version conflict, reapplying", "loan_id", loanID)
		fresh, rerr := s.loanRepo.GetForBorrower(ctx, loanID, guildID, borrowerID)
		if rerr != nil {
			err = rerr
		} else {
			result, err = s.applyPayment(ctx, fresh, payment, borrowerID)
		}
	}
	if err != nil {
		s.refundPayment(ctx, guildID, borrowerID, loanID, payment)
		return nil, err
	}
	return result, nil
}

// paymentAmount resolves and validates the payment against the loan's
// current state. amount == nil means the full remaining balance.
func paymentAmount(loan *domain.Loan, amount *int64) (int64, error) {
	if loan.Status == domain.LoanStatusPaid {
		return 0, domain.ErrLoanClosed
	}
	if loan.Status != domain.LoanStatusActive {
		return 0, fmt.Errorf("loan %d is not active", loan.ID)
	}

	remaining := loan.Remaining()
	payment := remaining
	if amount != nil {
		payment = *amount
	}
	if payment <= 0 {
		return 0, fmt.Errorf("payment amount must be positive")
	}
	if payment > remaining {
		return 0, &domain.OverpaymentError{LoanID: loan.ID, Requested: payment, Remaining: remaining}
	}
	return payment, nil
}

func (s *loanService) applyPayment(ctx context.Context, loan *domain.Loan, payment int64, borrowerID string) (*LoanPaymentResult, error) {
	// Re-validate against the row being applied to: a concurrent payment may
	// have closed the loan or shrunk the remaining balance below the debit.
	if _, err := paymentAmount(loan, &payment); err != nil {
		return nil, err
	}

	expectedVersion := loan.Version
	loan.AmountPaid += payment
	loan.PaymentsMade++
	paidOff := loan.AmountPaid >= loan.TotalToPay
	if paidOff {
		loan.Status = domain.LoanStatusPaid
		now := time.Now().UTC()
		loan.CompletedOn = &now
		loan.NextPaymentDue = nil
	} else {
		due := time.Now().UTC().Add(30 * 24 * time.Hour)
		loan.NextPaymentDue = &due
	}
	if err := s.loanRepo.Update(ctx, loan, expectedVersion); err != nil {
		return nil, err
	}

	paymentType := domain.PaymentTypeRegular
	if paidOff {
		paymentType = domain.PaymentTypeFinal
	}
	row := &domain.LoanPayment{
		LoanID:        loan.ID,
		PaymentAmount: payment,
		PaymentType:   paymentType,
		PaidBy:        borrowerID,
	}
	if err := s.loanRepo.CreatePayment(ctx, row); err != nil {
		logger.Error("failed to record loan payment row", "loan_id", loan.ID, "error", err)
	}

	logger.Info("loan payment applied", "loan_id", loan.ID, "amount", payment, "paid_off", paidOff)
	return &LoanPaymentResult{
		Loan:      loan,
		Payment:   row,
		PaidOff:   paidOff,
		Remaining: loan.Remaining(),
	}, nil
}

// refundPayment hands an already-debited payment back when it could not be
// applied to the loan.
func (s *loanService) refundPayment(ctx context.Context, guildID, borrowerID string, loanID int64, payment int64) {
	if _, err := s.orch.Credit(ctx, MoneyOp{
		GuildID:     guildID,
		UserID:      borrowerID,
		Amount:      payment,
		Bucket:      domain.BucketCash,
		Type:        domain.TransactionTypeCompensation,
		Reason:      fmt.Sprintf("loan #%d payment reversal", loanID),
		ActorID:     borrowerID,
		CanRollback: false,
	}); err != nil {
		logger.Error("loan payment refund failed", "loan_id", loanID, "amount", payment, "error", err)
	}
}

func (s *loanService) GetLoan(ctx context.Context, loanID int64) (*domain.Loan, error) {
	return s.loanRepo.GetByID(ctx, loanID)
}

func (s *loanService) ListLoans(ctx context.Context, guildID, borrowerID string, status domain.LoanStatus) ([]domain.Loan, error) {
	return s.loanRepo.ListByBorrower(ctx, guildID, borrowerID, status)
}
