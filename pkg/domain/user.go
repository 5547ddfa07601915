package domain

// Role names as issued by the server.
const (
	RoleStudent = "ROLE_STUDENT"
	RoleTeacher = "ROLE_TEACHER"
)

// Role is a single authority granted to a user.
type Role struct {
	RoleName string `json:"roleName"`
}

// User represents a platform account. Courses is populated only for the
// authenticated user.
type User struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name,omitempty"`
	LastName string   `json:"lastName,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []Role   `json:"roles"`
	Courses  []Course `json:"courses,omitempty"`
}

// FullName joins the user's first and last name.
func (u User) FullName() string {
	if u.Name == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.Name
	}
	return u.Name + " " + u.LastName
}

// IsTeacher reports whether the user holds the teacher role. Teacher implies
// elevated actions even when the student role is also present.
func (u User) IsTeacher() bool {
	for _, r := range u.Roles {
		if r.RoleName == RoleTeacher {
			return true
		}
	}
	return false
}
