package workload

import "github.com/google/uuid"

// User identifies one serial execution unit of a Workload. Equality is
// structural over both Label and ID, so a Relabel copy keeps the ID but
// does not compare equal to the original.
type User struct {
	// Label is a caller-assigned non-negative identifier; -1 means
	// "unlabeled" (see Workload's relabeling pass, which assigns
	// unlabeled users the smallest unused non-negative integer).
	Label int
	// ID disambiguates anonymous users created independently, since two
	// unlabeled users must still compare unequal.
	ID uuid.UUID
}

// NewUser returns a labeled User.
func NewUser(label int) User {
	return User{Label: label, ID: uuid.New()}
}

// NewAnonymousUser returns an unlabeled User; Workload.All() assigns it
// a label at composition time.
func NewAnonymousUser() User {
	return User{Label: -1, ID: uuid.New()}
}

// IsLabeled reports whether this user already carries a caller-assigned label.
func (u User) IsLabeled() bool {
	return u.Label >= 0
}

// Relabel returns a copy of u with the given label, keeping its identity.
func (u User) Relabel(label int) User {
	return User{Label: label, ID: u.ID}
}
