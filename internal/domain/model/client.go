package model

// Roles carried by channel client tokens.
const (
	RolePopup   = "popup"
	RoleWatcher = "watcher"
)

// KindAllowed reports whether a client with role may send messages of kind.
func KindAllowed(role string, kind MessageKind) bool {
	switch role {
	case RolePopup:
		return true
	case RoleWatcher:
		return kind == KindSubmissionDetected
	}
	return false
}
