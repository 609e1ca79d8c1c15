package models

type Member struct {
	MemberID     int64  `json:"memberid" db:"member_id"`
	Email        string `json:"email" db:"email"`
	Verification int    `json:"verification" db:"verification"`
}

// Verified reports whether the member may be referenced in chat operations.
func (m *Member) Verified() bool {
	return m.Verification != 0
}

// Contact is a symmetric relation between two members. It must exist before
// a direct chat between them can be created.
type Contact struct {
	MemberIDA int64 `json:"memberid_a" db:"member_id_a"`
	MemberIDB int64 `json:"memberid_b" db:"member_id_b"`
}
