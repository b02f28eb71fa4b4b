package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
	RoleParent  UserRole = "PARENT"
)

// ManageScope describes how far an actor's unit-management rights reach.
type ManageScope string

const (
	// ManageScopeAll grants management of every unit.
	ManageScopeAll ManageScope = "all"
	// ManageScopeLearningAreas restricts management to units in departments
	// where the actor holds a curriculum staff role.
	ManageScopeLearningAreas ManageScope = "learning_areas"
	// ManageScopeNone withholds unit management entirely.
	ManageScopeNone ManageScope = ""
)

// User represents an application user stored in the users table.
type User struct {
	ID            string      `db:"id" json:"id"`
	PersonID      string      `db:"person_id" json:"person_id"`
	Email         string      `db:"email" json:"email"`
	PasswordHash  string      `db:"password_hash" json:"-"`
	FullName      string      `db:"full_name" json:"full_name"`
	Role          UserRole    `db:"role" json:"role"`
	ManageScope   ManageScope `db:"manage_scope" json:"manage_scope"`
	Surname       string      `db:"surname" json:"surname"`
	PreferredName string      `db:"preferred_name" json:"preferred_name"`
	Website       string      `db:"website" json:"website"`
	Active        bool        `db:"active" json:"active"`
	LastLogin     *time.Time  `db:"last_login" json:"last_login,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
