package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// Clients may map these codes to their own messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // token expired
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // malformed or badly signed token
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // token logged out
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // duplicate email
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS"     // duplicate username
	AuthWrongPassword      = "AUTH_WRONG_PASSWORD"      // current password mismatch

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"  // access denied
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY" // author only

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationRequired      = "VALIDATION_REQUIRED"
	ValidationInvalidPage   = "VALIDATION_INVALID_PAGE"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Recipes (RECIPE_) ====================
	RecipeNotFound     = "RECIPE_NOT_FOUND"
	TagNotFound        = "TAG_NOT_FOUND"
	IngredientNotFound = "INGREDIENT_NOT_FOUND"
	UserNotFound       = "USER_NOT_FOUND"
	ShortLinkNotFound  = "SHORT_LINK_NOT_FOUND"

	// ==================== Relations (RELATION_) ====================
	RelationAlreadyExists = "RELATION_ALREADY_EXISTS" // favorite/cart/subscription already present
	RelationNotFound      = "RELATION_NOT_FOUND"      // nothing to remove
	RelationSelfSubscribe = "RELATION_SELF_SUBSCRIBE"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalStorageError  = "INTERNAL_STORAGE_ERROR"
)
