// Package roster holds the in-progress team list of a group booking.
//
// A Roster never reports errors. Mutations outside its bounds are ignored,
// so callers can wire UI controls straight to it.
package roster

// DefaultMaxMembers applies when a program does not state a team size.
const DefaultMaxMembers = 4

type Field string

const (
	FieldName  Field = "name"
	FieldEmail Field = "email"
	FieldPhone Field = "phone"
)

// ParseField maps a client field name onto a roster field
func ParseField(s string) (Field, bool) {
	switch Field(s) {
	case FieldName, FieldEmail, FieldPhone:
		return Field(s), true
	}
	return "", false
}

// Member is one team member as typed by the student
type Member struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Roster is an ordered member list whose length stays in [1, Max()].
// It is not safe for concurrent use.
type Roster struct {
	max     int
	members []Member
}

// New returns a roster holding one blank member
func New(maxMembers int) *Roster {
	if maxMembers < 1 {
		maxMembers = DefaultMaxMembers
	}
	return &Roster{
		max:     maxMembers,
		members: []Member{{}},
	}
}

func (r *Roster) Len() int { return len(r.members) }

func (r *Roster) Max() int { return r.max }

// Members returns a copy of the current members
func (r *Roster) Members() []Member {
	out := make([]Member, len(r.members))
	copy(out, r.members)
	return out
}

// SetGroupSize clamps n to [1, Max()] and grows with blank members or
// truncates from the end until the roster has that length.
func (r *Roster) SetGroupSize(n int) {
	n = clamp(n, 1, r.max)
	switch {
	case n > len(r.members):
		for len(r.members) < n {
			r.members = append(r.members, Member{})
		}
	case n < len(r.members):
		r.members = r.members[:n:n]
	}
}

// AddMember appends a blank member unless the roster is full
func (r *Roster) AddMember() {
	if len(r.members) >= r.max {
		return
	}
	r.SetGroupSize(len(r.members) + 1)
}

// RemoveMember drops the member at index. The last remaining member is kept.
func (r *Roster) RemoveMember(index int) {
	if len(r.members) <= 1 || index < 0 || index >= len(r.members) {
		return
	}
	r.members = append(r.members[:index:index], r.members[index+1:]...)
}

// UpdateMember replaces one field of one member without validating it
func (r *Roster) UpdateMember(index int, field Field, value string) {
	if index < 0 || index >= len(r.members) {
		return
	}
	m := &r.members[index]
	switch field {
	case FieldName:
		m.Name = value
	case FieldEmail:
		m.Email = value
	case FieldPhone:
		m.Phone = value
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
