package service

import (
	"context"
	"fmt"

	"economy-core/internal/domain"
	"economy-core/internal/logger"
	"economy-core/internal/repository"
)

type payrollService struct {
	payrollRepo repository.PayrollRepository
	orch        Orchestrator
}

func NewPayrollService(payrollRepo repository.PayrollRepository, orch Orchestrator) PayrollService {
	return &payrollService{payrollRepo: payrollRepo, orch: orch}
}

func (s *payrollService) CreateGroup(ctx context.Context, guildID, companyID, ownerID, name string) (*domain.PayrollGroup, error) {
	if name == "" {
		return nil, fmt.Errorf("group name is required")
	}
	group := &domain.PayrollGroup{
		GuildID:   guildID,
		CompanyID: companyID,
		OwnerID:   ownerID,
		Name:      name,
	}
	if err := s.payrollRepo.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("creating payroll group: %w", err)
	}
	logger.Info("payroll group created", "group_id", group.ID, "owner_id", ownerID, "name", name)
	return group, nil
}

func (s *payrollService) AddMember(ctx context.Context, groupID int64, ownerID, memberID string, salary int64) error {
	if salary <= 0 {
		return fmt.Errorf("salary must be positive")
	}
	group, err := s.payrollRepo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != ownerID {
		return fmt.Errorf("only the group owner can add members")
	}
	return s.payrollRepo.AddMember(ctx, &domain.PayrollMember{
		GroupID:  groupID,
		MemberID: memberID,
		Salary:   salary,
	})
}

func (s *payrollService) RemoveMember(ctx context.Context, groupID int64, ownerID, memberID string) error {
	group, err := s.payrollRepo.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.OwnerID != ownerID {
		return fmt.Errorf("only the group owner can remove members")
	}
	return s.payrollRepo.RemoveMember(ctx, groupID, memberID)
}

func (s *payrollService) ListGroups(ctx context.Context, guildID, ownerID string) ([]domain.PayrollGroup, error) {
	return s.payrollRepo.ListGroupsByOwner(ctx, guildID, ownerID)
}

func (s *payrollService) ListMembers(ctx context.Context, groupID int64) ([]domain.PayrollMember, error) {
	return s.payrollRepo.ListMembers(ctx, groupID)
}

// Run executes the group as one payroll run through the orchestrator. The
// group is a reusable template; members are re-read at run time so edits
// between runs always take effect.
func (s *payrollService) Run(ctx context.Context, groupID int64, actorID string, bucket domain.CurrencyBucket) (*PayrollRunResult, error) {
	group, err := s.payrollRepo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != actorID {
		return nil, fmt.Errorf("only the group owner can run payroll")
	}

	members, err := s.payrollRepo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing group members: %w", err)
	}
	if len(members) == 0 {
		return nil, domain.ErrEmptyPayrollGroup
	}

	return s.orch.PayrollRun(ctx, PayrollRunRequest{
		GuildID:   group.GuildID,
		CompanyID: group.CompanyID,
		ActorID:   actorID,
		Bucket:    bucket,
		Reason:    fmt.Sprintf("payroll for group %q", group.Name),
		Items:     members,
	})
}
