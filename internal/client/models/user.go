// Package models holds the client-side domain records shared between the
// transport, session, and storage layers.
package models

// UserRecord is the cached view of the authenticated user. It is sourced
// either from the login response or from a profile fetch; it is a cache,
// not authoritative, and is always safe to refresh from the server.
type UserRecord struct {
	ID        int64  `json:"id,omitempty"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Location  string `json:"location,omitempty"`
	Website   string `json:"website,omitempty"`
}
