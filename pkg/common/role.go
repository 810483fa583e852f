package common

type Role string

const (
	Student Role = "student"
	Faculty Role = "faculty"
	Admin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case Student, Faculty, Admin:
		return true
	}
	return false
}

// CanManage reports whether the role may approve, issue and return requests
// and mutate inventory.
func (r Role) CanManage() bool {
	return r == Faculty || r == Admin
}

func (r Role) IsAdmin() bool {
	return r == Admin
}
