package models

import (
	"time"

	"gorm.io/gorm"
)

// MembershipRole is a member's privilege level within a community
type MembershipRole string

const (
	RoleMember MembershipRole = "MEMBER"
	RoleOwner  MembershipRole = "OWNER"
)

// MembershipStatus is the lifecycle state of a membership.
// APPROVED is the only state with outgoing transitions (to REMOVED);
// PENDING transitions to APPROVED or REJECTED via owner review.
type MembershipStatus string

const (
	StatusPending  MembershipStatus = "PENDING"
	StatusApproved MembershipStatus = "APPROVED"
	StatusRejected MembershipStatus = "REJECTED"
	StatusRemoved  MembershipStatus = "REMOVED"
)

// RemovalActor records who moved a membership into REMOVED
type RemovalActor string

const (
	RemovedByUser  RemovalActor = "USER"
	RemovedByOwner RemovalActor = "OWNER"
)

// Membership binds exactly one user to exactly one community. At most one
// record exists per (user, community) pair, enforced by the partial unique
// index created in database.Migrate.
type Membership struct {
	ID          string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID      string    `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CommunityID string    `gorm:"not null;index" json:"community_id"`
	Community   Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`

	Role   MembershipRole   `gorm:"not null" json:"role"`
	Status MembershipStatus `gorm:"not null;default:'PENDING'" json:"status"`

	RequestedAt time.Time     `json:"requested_at"`
	JoinedAt    *time.Time    `json:"joined_at"`
	RemovedBy   *RemovalActor `json:"removed_by"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the default table name
func (Membership) TableName() string {
	return "memberships"
}

// IsOwner reports whether the membership carries the OWNER role
func (m *Membership) IsOwner() bool {
	return m.Role == RoleOwner
}

// IsApproved reports whether the membership grants access right now
func (m *Membership) IsApproved() bool {
	return m.Status == StatusApproved
}
