package dynamo

// DynamoDB attribute names used in key, condition and update expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldIdentity  = "identity"
	fieldCode      = "code"
	fieldExpiresAt = "expires_at"
	fieldAccountID = "account_id"
	fieldEmail     = "email"
	fieldLibraryID = "library_id"
	fieldIsDeleted = "is_deleted"
	fieldUpdatedAt = "updated_at"

	emailIndex = "email-index"
)
