package dynamo

// DynamoDB attribute and index names shared by the repos and Bootstrap.
const (
	fieldEmail     = "email"
	fieldUserID    = "user_id"
	fieldLogID     = "log_id"
	fieldUpdatedAt = "updated_at"

	indexUserID = "user_id-index"
)
