package models

// Role is a user's platform role
type Role string

const (
	RoleMentor  Role = "mentor"
	RoleLearner Role = "learner"
)

// IsValid reports whether the role is one of the defined platform roles
func (r Role) IsValid() bool {
	return r == RoleMentor || r == RoleLearner
}

// Principal is the authenticated identity attached to every operation.
// It is derived from a verified access token and trusted for all
// permission checks.
type Principal struct {
	UserID    string `json:"userId"`
	Role      Role   `json:"role"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	ExpiresAt int64  `json:"expiresAt"`
	IssuedAt  int64  `json:"issuedAt"`
}
