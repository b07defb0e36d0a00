package domain

// Roles known to the surrounding application. Only admins are privileged
// from this subsystem's point of view: they see every upload and the
// uploader's display name. Any other role (including roles added later)
// sees only its own uploads.
const (
	RoleVolunteer   = "volunteer"
	RoleCoordinator = "coordinator"
	RoleAdmin       = "admin"
)

// Principal is the authenticated caller, resolved from the session token by
// the auth middleware. Authentication itself is owned elsewhere; this is the
// narrow contract the ingest subsystem depends on.
type Principal struct {
	ID   int64
	Name string
	Role string
}

func (p Principal) IsPrivileged() bool { return p.Role == RoleAdmin }
