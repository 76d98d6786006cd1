package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jeeva2692001/mindkonnect/internal/domain"
)

// ActivityRepo stores the append-only activity log.
// PK: user_id, SK: log_id (ULID of the event time).
type ActivityRepo struct {
	client    API
	tableName string
}

func NewActivityRepo(client API, tableName string) *ActivityRepo {
	return &ActivityRepo{client: client, tableName: tableName}
}

// Append writes entry. Entries are never overwritten.
func (r *ActivityRepo) Append(ctx context.Context, entry *domain.ActivityLog) error {
	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("marshal activity log: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#sk)"),
		ExpressionAttributeNames: map[string]string{"#sk": fieldLogID},
	})
	if err != nil {
		return dependency("put activity log", err)
	}
	return nil
}

// ListByUser returns up to limit entries for userID, newest first.
func (r *ActivityRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.ActivityLog, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    aws.String("#pk = :uid"),
		ExpressionAttributeNames:  map[string]string{"#pk": fieldUserID},
		ExpressionAttributeValues: map[string]types.AttributeValue{":uid": &types.AttributeValueMemberS{Value: userID}},
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, dependency("query activity logs", err)
	}
	logs := make([]domain.ActivityLog, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &logs); err != nil {
		return nil, fmt.Errorf("unmarshal activity logs: %w", err)
	}
	return logs, nil
}
