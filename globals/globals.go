package globals

// ContextKey namespaces request-context values.
type ContextKey string

const UserIDKey ContextKey = "userId"
