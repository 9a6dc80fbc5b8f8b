package authz

// Mode selects the decision rule applied to a request. The enumeration is
// closed: the dispatcher denies anything it does not recognize.
type Mode int

const (
	// ModeCurrentUserOnly gates nothing beyond valid claims; it exists to
	// expose the authenticated subject to the handler.
	ModeCurrentUserOnly Mode = iota

	// ModeAdminOnly allows only callers whose role resolves to "admin".
	ModeAdminOnly

	// ModeSelfOrAdmin allows the target user themself, or any admin.
	// Administrative privilege dominates: an admin acting on their own
	// record is still an elevated decision.
	ModeSelfOrAdmin

	// ModeResourceAccess allows the list's owner, its grantees, or any admin.
	ModeResourceAccess

	// ModeOwnerOnly allows the list's owner or any admin; grantees are not
	// enough.
	ModeOwnerOnly
)

func (m Mode) String() string {
	switch m {
	case ModeCurrentUserOnly:
		return "current_user_only"
	case ModeAdminOnly:
		return "admin_only"
	case ModeSelfOrAdmin:
		return "self_or_admin"
	case ModeResourceAccess:
		return "resource_access"
	case ModeOwnerOnly:
		return "owner_only"
	default:
		return "unknown"
	}
}
