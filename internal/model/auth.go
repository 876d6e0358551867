package model

// Credential is the persisted bearer token and the role it was issued for.
type Credential struct {
	Token string
	Role  Role
}

type VerifyCodeRequest struct {
	AccessCode string `json:"access_code"`
}

// AdminCredentials are the temporary admin credentials issued for a valid
// access code.
type AdminCredentials struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Message   string `json:"message"`
	ExpiresAt string `json:"expires_at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username,omitempty"`
	AdminID     string `json:"admin_id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Message     string `json:"message"`
}

// Identity returns the user snapshot carried by a login response.
func (r *LoginResponse) Identity() *User {
	id := r.UserID
	if id == "" {
		id = r.AdminID
	}
	name := r.Name
	if name == "" {
		name = r.Username
	}
	return &User{
		UserID:   id,
		Name:     name,
		Username: r.Username,
		IsActive: true,
	}
}
