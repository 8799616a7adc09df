package models

import "time"

// Student is a pupil registered by a teacher. Students live in the remote
// document store and are scoped to the registering teacher.
type Student struct {
	ID        string
	OwnerID   string
	Name      string
	Group     string
	CreatedAt time.Time
}
