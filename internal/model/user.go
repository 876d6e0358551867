package model

type User struct {
	UserID         string   `json:"user_id"`
	Name           string   `json:"name"`
	Username       string   `json:"username,omitempty"`
	Email          string   `json:"email,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	IsActive       bool     `json:"is_active"`
	CreatedAt      string   `json:"created_at"`
	LastLogin      *string  `json:"last_login,omitempty"`
	TotalSessions  int      `json:"total_sessions"`
	TotalDownloads int      `json:"total_downloads"`
	UserType       UserType `json:"user_type,omitempty"`
}

type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// CreateUserResponse carries the generated login credentials of a new
// dashboard user. The password is only returned once.
type CreateUserResponse struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"created_at"`
	Message   string `json:"message"`
}

// UpdateUserRequest is type-aware on the backend: VR users only accept
// name, email and is_active.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type ListUsersParams struct {
	Skip            int
	Limit           int
	UserType        UserType
	IncludeInactive bool
}

// UserHistory is the per-user activity history returned to admins.
type UserHistory struct {
	UserID   string        `json:"user_id"`
	UserName string        `json:"user_name,omitempty"`
	Sessions []Session     `json:"sessions"`
	Activity []ActivityLog `json:"activity,omitempty"`
}

// UserList decodes either a bare JSON array or an object wrapping the
// array under "users".
type UserList []User

func (l *UserList) UnmarshalJSON(data []byte) error {
	users, err := unmarshalList[User](data, "users")
	if err != nil {
		return err
	}
	*l = users
	return nil
}
