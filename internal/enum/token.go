package enum

type AuthTokenType int

const (
	AuthTokenReset         AuthTokenType = 0
	AuthTokenLogin         AuthTokenType = 1
	AuthTokenVerification  AuthTokenType = 2
	AuthTokenAuthorization AuthTokenType = 3
)

var AuthTokenTypes = newSet(
	Choice[AuthTokenType]{AuthTokenReset, "PASSWORD RESET TOKEN"},
	Choice[AuthTokenType]{AuthTokenLogin, "LOGIN TOKEN"},
	Choice[AuthTokenType]{AuthTokenVerification, "VERIFICATION TOKEN"},
	Choice[AuthTokenType]{AuthTokenAuthorization, "AUTHORIZATION TOKEN"},
)

func (t AuthTokenType) String() string { return AuthTokenTypes.Label(t) }

type AuthTokenStatus int

const (
	AuthTokenPending AuthTokenStatus = 0
	AuthTokenUsed    AuthTokenStatus = 1
)

var AuthTokenStatuses = newSet(
	Choice[AuthTokenStatus]{AuthTokenPending, "PENDING"},
	Choice[AuthTokenStatus]{AuthTokenUsed, "USED"},
)

func (s AuthTokenStatus) String() string { return AuthTokenStatuses.Label(s) }
