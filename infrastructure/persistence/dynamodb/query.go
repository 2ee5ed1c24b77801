package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// activeOnly matches items that have not been soft-deleted
func activeOnly() expression.ConditionBuilder {
	return expression.AttributeNotExists(expression.Name("Deleted"))
}

// queryBuilder provides a fluent interface for index queries
type queryBuilder struct {
	tableName    string
	indexName    *string
	keyCondition *expression.KeyConditionBuilder
	filter       *expression.ConditionBuilder
	scanForward  *bool
	limit        *int32
}

func newQuery(tableName, indexName string) *queryBuilder {
	return &queryBuilder{tableName: tableName, indexName: aws.String(indexName)}
}

// partition sets the index partition key condition
func (qb *queryBuilder) partition(attribute, value string) *queryBuilder {
	keyExpr := expression.Key(attribute).Equal(expression.Value(value))
	qb.keyCondition = &keyExpr
	return qb
}

func (qb *queryBuilder) where(condition expression.ConditionBuilder) *queryBuilder {
	if qb.filter == nil {
		qb.filter = &condition
	} else {
		combined := qb.filter.And(condition)
		qb.filter = &combined
	}
	return qb
}

func (qb *queryBuilder) whereEquals(attribute string, value interface{}) *queryBuilder {
	return qb.where(expression.Name(attribute).Equal(expression.Value(value)))
}

func (qb *queryBuilder) descending() *queryBuilder {
	qb.scanForward = aws.Bool(false)
	return qb
}

func (qb *queryBuilder) first() *queryBuilder {
	qb.limit = aws.Int32(1)
	return qb
}

func (qb *queryBuilder) build() (*dynamodb.QueryInput, error) {
	if qb.keyCondition == nil {
		return nil, fmt.Errorf("key condition is required for query")
	}

	builder := expression.NewBuilder().WithKeyCondition(*qb.keyCondition)
	if qb.filter != nil {
		builder = builder.WithFilter(*qb.filter)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(qb.tableName),
		IndexName:                 qb.indexName,
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          qb.scanForward,
	}
	// Limit applies before the filter, so a single-item lookup with a filter
	// could miss its match
	if qb.filter == nil {
		input.Limit = qb.limit
	}
	return input, nil
}

// queryAll follows LastEvaluatedKey until the result set is exhausted,
// stopping early once max items are collected when max > 0
func queryAll(ctx context.Context, client Client, qb *queryBuilder, max int) ([]item, error) {
	input, err := qb.build()
	if err != nil {
		return nil, err
	}

	var items []item
	for {
		out, err := client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		page := make([]item, 0, len(out.Items))
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal items: %w", err)
		}
		items = append(items, page...)

		if max > 0 && len(items) >= max {
			return items[:max], nil
		}
		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func primaryKey(pk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: metadataSK},
	}
}
