package domain

import "time"

// PayrollGroup is a reusable template: the atomic unit is a run, not the group.
type PayrollGroup struct {
	ID        int64     `json:"id"`
	GuildID   string    `json:"guild_id"`
	CompanyID string    `json:"company_id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedOn time.Time `json:"created_on"`
}

type PayrollMember struct {
	ID       int64  `json:"id"`
	GroupID  int64  `json:"group_id"`
	MemberID string `json:"member_id"`
	Salary   int64  `json:"salary"`
}
