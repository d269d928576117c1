package postgres

import (
	"context"
	"database/sql"

	"economy-core/internal/domain"
	"economy-core/internal/repository"
)

type payrollRepository struct {
	db *sql.DB
}

func NewPayrollRepository(db *sql.DB) repository.PayrollRepository {
	return &payrollRepository{db: db}
}

func (r *payrollRepository) CreateGroup(ctx context.Context, group *domain.PayrollGroup) error {
	query := `INSERT INTO payroll_groups (guild_id, company_id, owner_id, name)
	          VALUES ($1, $2, $3, $4) RETURNING id, created_on`
	return r.db.QueryRowContext(ctx, query,
		group.GuildID, group.CompanyID, group.OwnerID, group.Name,
	).Scan(&group.ID, &group.CreatedOn)
}

func (r *payrollRepository) GetGroup(ctx context.Context, id int64) (*domain.PayrollGroup, error) {
	query := `SELECT id, guild_id, company_id, owner_id, name, created_on FROM payroll_groups WHERE id = $1`
	var g domain.PayrollGroup
	err := r.db.QueryRowContext(ctx, query, id).Scan(&g.ID, &g.GuildID, &g.CompanyID, &g.OwnerID, &g.Name, &g.CreatedOn)
	if err == sql.ErrNoRows {
		return nil, domain.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *payrollRepository) ListGroupsByOwner(ctx context.Context, guildID, ownerID string) ([]domain.PayrollGroup, error) {
	query := `SELECT id, guild_id, company_id, owner_id, name, created_on
	          FROM payroll_groups WHERE guild_id = $1 AND owner_id = $2 ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, query, guildID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.PayrollGroup
	for rows.Next() {
		var g domain.PayrollGroup
		if err := rows.Scan(&g.ID, &g.GuildID, &g.CompanyID, &g.OwnerID, &g.Name, &g.CreatedOn); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *payrollRepository) DeleteGroup(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM payroll_groups WHERE id = $1`, id)
	return err
}

func (r *payrollRepository) AddMember(ctx context.Context, member *domain.PayrollMember) error {
	query := `INSERT INTO payroll_members (group_id, member_id, salary)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (group_id, member_id) DO UPDATE SET salary = EXCLUDED.salary
	          RETURNING id`
	return r.db.QueryRowContext(ctx, query, member.GroupID, member.MemberID, member.Salary).Scan(&member.ID)
}

func (r *payrollRepository) RemoveMember(ctx context.Context, groupID int64, memberID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM payroll_members WHERE group_id = $1 AND member_id = $2`, groupID, memberID)
	return err
}

func (r *payrollRepository) ListMembers(ctx context.Context, groupID int64) ([]domain.PayrollMember, error) {
	query := `SELECT id, group_id, member_id, salary FROM payroll_members WHERE group_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.PayrollMember
	for rows.Next() {
		var m domain.PayrollMember
		if err := rows.Scan(&m.ID, &m.GroupID, &m.MemberID, &m.Salary); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
