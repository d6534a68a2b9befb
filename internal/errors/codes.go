package errors

// Error codes returned in the "error" field of API error responses, stable
// for frontend mapping.
const (
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthzForbidden         = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound      = "AUTHZ_ROLE_NOT_FOUND"

	ResourceNotFound = "RESOURCE_NOT_FOUND"
	RecordNotFound   = "RECORD_NOT_FOUND"

	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ConflictDuplicate      = "CONFLICT_DUPLICATE"
	InternalServerError    = "INTERNAL_SERVER_ERROR"
)
