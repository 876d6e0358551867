package config

import "time"

const (
	DefaultAPIURL    = "http://localhost:8000"
	AppDirName       = "therapy-dashboard"
	CredentialDBFile = "credentials.db"
)

// Credential database connection pool settings
const (
	DBMaxOpenConns    = 4
	DBMaxIdleConns    = 2
	DBConnMaxLifetime = 5 * time.Minute
)

// Mock backend server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 10 * time.Second
)

// How often the mock backend purges expired admin credentials
const MockCleanupInterval = 10 * time.Minute

// Database ping timeout when opening the credential store
const DBPingTimeout = 5 * time.Second

// List defaults used by the admin user listing
const (
	DefaultListSkip  = 0
	DefaultListLimit = 100
)

// API client timeouts when not configured
const (
	DefaultRequestTimeout  = 30 * time.Second
	DefaultDownloadTimeout = 30 * time.Second
)

// Upper bound on an error body read from the backend
const MaxErrorBodyBytes = 64 << 10
