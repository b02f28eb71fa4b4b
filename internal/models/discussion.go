package models

import "time"

// DiscussionEntry is one comment in a unit enrolment's discussion thread.
// Rows come either from the generic discussions table or are synthesised
// from the enrolment's own status comments.
type DiscussionEntry struct {
	Comment            *string    `db:"comment" json:"comment,omitempty"`
	Type               string     `db:"type" json:"type"`
	Tag                string     `db:"tag" json:"tag"`
	AttachmentType     *string    `db:"attachment_type" json:"attachment_type,omitempty"`
	AttachmentLocation *string    `db:"attachment_location" json:"attachment_location,omitempty"`
	PersonID           *string    `db:"person_id" json:"person_id,omitempty"`
	Title              *string    `db:"title" json:"title,omitempty"`
	Surname            *string    `db:"surname" json:"surname,omitempty"`
	PreferredName      *string    `db:"preferred_name" json:"preferred_name,omitempty"`
	Category           string     `db:"category" json:"category"`
	Timestamp          *time.Time `db:"timestamp" json:"timestamp,omitempty"`
}
