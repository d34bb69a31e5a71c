package globals

// Context keys
type ContextKey string

const ClaimsKey ContextKey = "claims"
const EmailKey ContextKey = "email"
const RoleKey ContextKey = "role"
const RequestIDKey ContextKey = "requestId"

// Collection names
const (
	UsersCollection    = "users"
	ClassesCollection  = "classes"
	CartCollection     = "cart"
	PaymentsCollection = "payments"
	EnrolledCollection = "enrolled"
	AppliedCollection  = "applied"
)
