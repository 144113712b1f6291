package domain

// AuthOp identifies which session operation an AuthError came from.
type AuthOp string

const (
	OpLogin          AuthOp = "login"
	OpRegister       AuthOp = "register"
	OpForgotPassword AuthOp = "forgot_password"
	OpResetPassword  AuthOp = "reset_password"
)

// AuthError is the single error shape surfaced by session operations that
// talk to the upstream auth endpoints. Message is always human-readable,
// extracted with the precedence: upstream "message" field, upstream "error"
// field, "HTTP <status>", transport failure description. Callers never see
// raw transport errors.
type AuthError struct {
	Op      AuthOp
	Status  int // upstream HTTP status, 0 on transport failure
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// NewAuthError builds an AuthError for op with an already-normalized message.
func NewAuthError(op AuthOp, status int, message string) *AuthError {
	return &AuthError{Op: op, Status: status, Message: message}
}
