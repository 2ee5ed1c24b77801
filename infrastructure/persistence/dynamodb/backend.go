// Package dynamodb stores cruxes, dimensions and tags in a single DynamoDB
// table. Writes are applied immediately; units of work are pass-through.
package dynamodb

import (
	"context"

	"crux-backend/application/ports"
	"crux-backend/domain/core/valueobjects"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// Backend implements ports.Backend on DynamoDB
type Backend struct {
	client    Client
	tableName string
	logger    *zap.Logger
}

// NewBackend creates a new DynamoDB backend
func NewBackend(client Client, tableName string, logger *zap.Logger) *Backend {
	return &Backend{client: client, tableName: tableName, logger: logger}
}

func (b *Backend) Dimensions() ports.DimensionRepository {
	return &dimensionRepository{backend: b}
}

func (b *Backend) Tags() ports.TagRepository {
	return &tagRepository{backend: b}
}

func (b *Backend) Cruxes() ports.CruxRepository {
	return &cruxRepository{backend: b}
}

func (b *Backend) Resources() ports.ResourceResolver {
	return &resourceResolver{backend: b}
}

// Ping describes the table
func (b *Backend) Ping(ctx context.Context) error {
	if _, err := b.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(b.tableName)}); err != nil {
		return wrap("describe table", err)
	}
	return nil
}

// Begin returns a unit of work that writes through. Rollback cannot undo
// writes already made.
func (b *Backend) Begin(ctx context.Context) (ports.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return passthrough{Backend: b}, nil
}

type passthrough struct {
	*Backend
}

func (passthrough) Commit(context.Context) error { return nil }

func (p passthrough) Rollback() error {
	p.logger.Debug("Rollback requested on pass-through unit of work")
	return nil
}

// RegisterResource records an externally owned taggable resource
func (b *Backend) RegisterResource(ctx context.Context, resourceType valueobjects.ResourceType, id, key string) error {
	entity := externalEntity(resourceType)
	av, err := attributevalue.MarshalMap(item{
		PK:         entityPK(entity, id),
		SK:         metadataSK,
		EntityType: entity,
		LookupKey:  lookupKey(entity, key),
		ID:         id,
		EntityKey:  key,
	})
	if err != nil {
		return err
	}
	_, err = b.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(b.tableName),
		Item:      av,
	})
	if err != nil {
		return wrap("register resource", err)
	}
	return nil
}

// put writes a new item, failing if the primary key is taken
func (b *Backend) put(ctx context.Context, it item) error {
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return err
	}

	cond, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("PK"))).
		Build()
	if err != nil {
		return err
	}

	_, err = b.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(b.tableName),
		Item:                      av,
		ConditionExpression:       cond.Condition(),
		ExpressionAttributeNames:  cond.Names(),
		ExpressionAttributeValues: cond.Values(),
	})
	if err != nil {
		return wrap("put item", err)
	}
	return nil
}

// updateActive applies update to an item that exists and is not deleted.
// A failed condition is reported as ports.ErrNotFound.
func (b *Backend) updateActive(ctx context.Context, pk string, update expression.UpdateBuilder) error {
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name("PK")).And(activeOnly())).
		Build()
	if err != nil {
		return err
	}

	_, err = b.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(b.tableName),
		Key:                       primaryKey(pk),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if isConditionalCheckFailed(err) {
		return ports.ErrNotFound
	}
	if err != nil {
		return wrap("update item", err)
	}
	return nil
}

// getActive loads an item by primary key, ports.ErrNotFound when absent or
// deleted
func (b *Backend) getActive(ctx context.Context, pk string) (item, error) {
	out, err := b.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(b.tableName),
		Key:            primaryKey(pk),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return item{}, wrap("get item", err)
	}
	if len(out.Item) == 0 {
		return item{}, ports.ErrNotFound
	}

	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return item{}, err
	}
	if it.Deleted != nil {
		return item{}, ports.ErrNotFound
	}
	return it, nil
}

// findByLookupKey returns the first active item with the lookup key that
// also matches extra
func (b *Backend) findByLookupKey(ctx context.Context, key string, extra ...expression.ConditionBuilder) (item, error) {
	qb := newQuery(b.tableName, KeyIndex).partition("LookupKey", key).where(activeOnly())
	for _, cond := range extra {
		qb.where(cond)
	}
	items, err := queryAll(ctx, b.client, qb.first(), 1)
	if err != nil {
		return item{}, wrap("query "+KeyIndex, err)
	}
	if len(items) == 0 {
		return item{}, ports.ErrNotFound
	}
	return items[0], nil
}

var (
	_ ports.Backend    = (*Backend)(nil)
	_ ports.UnitOfWork = passthrough{}
)
