package domain

import "time"

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
	ApprovalStatusExpired  ApprovalStatus = "EXPIRED"
)

type ApprovalActionType string

const (
	ActionMoneyAdd         ApprovalActionType = "MONEY_ADD"
	ActionMoneyRemove      ApprovalActionType = "MONEY_REMOVE"
	ActionLoanDisbursement ApprovalActionType = "LOAN_DISBURSEMENT"
)

// ApprovalRequest suspends a privileged self-targeting action until a
// superior resolves it. Terminal statuses are final.
type ApprovalRequest struct {
	ID         string             `json:"id"`
	GuildID    string             `json:"guild_id"`
	ActionType ApprovalActionType `json:"action_type"`
	ExecutorID string             `json:"executor_id"`
	TargetID   string             `json:"target_id"`
	Details    string             `json:"details"`
	Metadata   map[string]string  `json:"metadata"` // parameters needed to replay the action
	Status     ApprovalStatus     `json:"status"`
	ResolvedBy *string            `json:"resolved_by,omitempty"`
	CreatedOn  time.Time          `json:"created_on"`
	ExpiresOn  time.Time          `json:"expires_on"`
	ResolvedOn *time.Time         `json:"resolved_on,omitempty"`
}

func (r *ApprovalRequest) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresOn)
}
