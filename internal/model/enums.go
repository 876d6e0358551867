package model

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type UserType string

const (
	UserTypeVR        UserType = "vr"
	UserTypeDashboard UserType = "dashboard"
)

type SessionType string

const (
	SessionTypeWeb SessionType = "web"
	SessionTypeVR  SessionType = "vr"
)

// Session status values observed from the backend. The client displays
// them and never enforces transitions.
const (
	SessionStatusActive    = "active"
	SessionStatusAnalyzed  = "analyzed"
	SessionStatusCompleted = "completed"
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)
