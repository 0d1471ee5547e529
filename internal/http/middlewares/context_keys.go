package middlewares

const (
	// gin context key holding the resolved user.User
	ctxUserKey = "auth.user"
)
