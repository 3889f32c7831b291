package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles as resolved by the authentication layer.
const (
	RoleStudent = "student"
	RoleStaff   = "staff"
	RoleAdmin   = "admin"
)

// User is an already-authenticated platform member. Authentication itself
// happens outside this service; we only persist identity and role.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:16;not null;default:student" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when none was provided.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// ThesisGroup is a thesis team being defended and ranked.
type ThesisGroup struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Program   string     `gorm:"size:128" json:"program"`
	Term      string     `gorm:"size:64" json:"term"`
	AdviserID *uuid.UUID `gorm:"type:uuid" json:"adviser_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Schedules []DefenseSchedule `gorm:"constraint:OnDelete:CASCADE" json:"schedules,omitempty"`
}

// BeforeCreate assigns a UUID when none was provided.
func (g *ThesisGroup) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// GroupMember links a student to a thesis group. The composite key doubles
// as the uniqueness constraint for the pair.
type GroupMember struct {
	GroupID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"group_id"`
	StudentID uuid.UUID `gorm:"type:uuid;primaryKey" json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}

// DefenseSchedule is a single defense event for a group.
type DefenseSchedule struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID     uuid.UUID `gorm:"type:uuid;not null;index" json:"group_id"`
	ScheduledAt time.Time `gorm:"not null" json:"scheduled_at"`
	Room        string    `gorm:"size:64" json:"room"`
	Status      string    `gorm:"size:32;not null;default:scheduled" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when none was provided.
func (s *DefenseSchedule) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SchedulePanelist links a staff member to a defense schedule panel.
type SchedulePanelist struct {
	ScheduleID uuid.UUID `gorm:"type:uuid;primaryKey" json:"schedule_id"`
	StaffID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"staff_id"`
	CreatedAt  time.Time `json:"created_at"`
}
