package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/library-access-api/internal/domain"
)

// AccountRepo provides typed DynamoDB operations over the three account
// tables. PK: account_id; GSI email-index on email.
type AccountRepo struct {
	client API
	tables map[domain.Partition]string
}

func NewAccountRepo(client API, tables map[domain.Partition]string) *AccountRepo {
	return &AccountRepo{client: client, tables: tables}
}

func (r *AccountRepo) table(p domain.Partition) (string, error) {
	t, ok := r.tables[p]
	if !ok {
		return "", fmt.Errorf("no table for %q: %w", p, domain.ErrInvalidTarget)
	}
	return t, nil
}

func (r *AccountRepo) Put(ctx context.Context, p domain.Partition, a *domain.Account) error {
	table, err := r.table(p)
	if err != nil {
		return err
	}
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	})
	return err
}

// FindByEmail returns the first account in the partition's email index.
func (r *AccountRepo) FindByEmail(ctx context.Context, p domain.Partition, email string) (*domain.Account, error) {
	table, err := r.table(p)
	if err != nil {
		return nil, err
	}
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		IndexName:                 aws.String(emailIndex),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": fieldEmail},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("account not found in %s: %w", p, domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Items[0], &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// FindActiveByEmail pages through the email index and returns the first
// account not flagged is_deleted. The filter runs after Limit, so no Limit is
// set and pages are followed until a match or the end.
func (r *AccountRepo) FindActiveByEmail(ctx context.Context, p domain.Partition, email string) (*domain.Account, error) {
	table, err := r.table(p)
	if err != nil {
		return nil, err
	}
	in := &dynamodb.QueryInput{
		TableName:              aws.String(table),
		IndexName:              aws.String(emailIndex),
		KeyConditionExpression: aws.String("#a = :v"),
		FilterExpression:       aws.String("attribute_not_exists(#d) OR #d = :f"),
		ExpressionAttributeNames: map[string]string{
			"#a": fieldEmail,
			"#d": fieldIsDeleted,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: email},
			":f": &types.AttributeValueMemberBOOL{Value: false},
		},
	}
	for {
		out, err := r.client.Query(ctx, in)
		if err != nil {
			return nil, err
		}
		if len(out.Items) > 0 {
			var a domain.Account
			if err := attributevalue.UnmarshalMap(out.Items[0], &a); err != nil {
				return nil, err
			}
			return &a, nil
		}
		if len(out.LastEvaluatedKey) == 0 {
			return nil, fmt.Errorf("no active account in %s: %w", p, domain.ErrNotFound)
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// SoftDelete sets is_deleted in a single conditional update. The item must
// still exist and, when library is non-nil, still carry that library_id.
func (r *AccountRepo) SoftDelete(ctx context.Context, p domain.Partition, accountID string, library *string) error {
	table, err := r.table(p)
	if err != nil {
		return err
	}
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldIsDeleted: true,
		fieldUpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	cond := "attribute_exists(#pk)"
	ue.Names["#pk"] = fieldAccountID
	if library != nil {
		cond += " AND #lib = :lib"
		ue.Names["#lib"] = fieldLibraryID
		ue.Values[":lib"] = &types.AttributeValueMemberS{Value: *library}
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                           aws.String(table),
		Key:                                 strKey(fieldAccountID, accountID),
		UpdateExpression:                    aws.String(ue.Expr),
		ConditionExpression:                 aws.String(cond),
		ExpressionAttributeNames:            ue.Names,
		ExpressionAttributeValues:           ue.Values,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		return conditionErr(err)
	}
	return nil
}
