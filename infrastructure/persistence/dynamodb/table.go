package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

func stringAttribute(name string) types.AttributeDefinition {
	return types.AttributeDefinition{AttributeName: aws.String(name), AttributeType: types.ScalarAttributeTypeS}
}

func index(name, pk, sk string) types.GlobalSecondaryIndex {
	schema := []types.KeySchemaElement{{AttributeName: aws.String(pk), KeyType: types.KeyTypeHash}}
	if sk != "" {
		schema = append(schema, types.KeySchemaElement{AttributeName: aws.String(sk), KeyType: types.KeyTypeRange})
	}
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(name),
		KeySchema:  schema,
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

// TableDefinition describes the single table and its secondary indexes
func TableDefinition(tableName string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName:   aws.String(tableName),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			stringAttribute("PK"),
			stringAttribute("SK"),
			stringAttribute("LookupKey"),
			stringAttribute("SourcePK"),
			stringAttribute("SourceSK"),
			stringAttribute("TargetPK"),
			stringAttribute("TargetSK"),
			stringAttribute("ResourcePK"),
			stringAttribute("ResourceSK"),
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("PK"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("SK"), KeyType: types.KeyTypeRange},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			index(KeyIndex, "LookupKey", ""),
			index(SourceIndex, "SourcePK", "SourceSK"),
			index(TargetIndex, "TargetPK", "TargetSK"),
			index(ResourceIndex, "ResourcePK", "ResourceSK"),
		},
	}
}

// EnsureTable creates the table when it does not exist and waits for it to
// become active. It reports whether the table was created.
func EnsureTable(ctx context.Context, client Client, tableName string, logger *zap.Logger) (bool, error) {
	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tableName)})
	if err == nil {
		return false, nil
	}
	if !isTableMissing(err) {
		return false, wrap("describe table", err)
	}

	if _, err := client.CreateTable(ctx, TableDefinition(tableName)); err != nil {
		return false, wrap("create table", err)
	}
	logger.Info("Created DynamoDB table", zap.String("table", tableName))

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		out, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tableName)})
		if err != nil {
			return true, wrap("describe table", err)
		}
		if out.Table != nil && out.Table.TableStatus == types.TableStatusActive {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case <-ticker.C:
		}
	}
}
