package repository

import (
	"context"
	"errors"
	"time"

	"finance_webapp/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TableDefinition describes the transactions table: PK/SK plus one global
// secondary index per projection, all projecting the full record.
func TableDefinition(table string) *dynamodb.CreateTableInput {
	attrs := []types.AttributeDefinition{
		{AttributeName: aws.String(attrPK), AttributeType: types.ScalarAttributeTypeS},
		{AttributeName: aws.String(attrSK), AttributeType: types.ScalarAttributeTypeS},
	}
	var indexes []types.GlobalSecondaryIndex
	for _, p := range []Projection{ProjectionYearMonth, ProjectionDirection, ProjectionMode} {
		pk, sk := p.attributes()
		attrs = append(attrs,
			types.AttributeDefinition{AttributeName: aws.String(pk), AttributeType: types.ScalarAttributeTypeS},
			types.AttributeDefinition{AttributeName: aws.String(sk), AttributeType: types.ScalarAttributeTypeS},
		)
		indexes = append(indexes, types.GlobalSecondaryIndex{
			IndexName: aws.String(string(p)),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(pk), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String(sk), KeyType: types.KeyTypeRange},
			},
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}

	return &dynamodb.CreateTableInput{
		TableName:            aws.String(table),
		AttributeDefinitions: attrs,
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrPK), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(attrSK), KeyType: types.KeyTypeRange},
		},
		GlobalSecondaryIndexes: indexes,
		BillingMode:            types.BillingModePayPerRequest,
	}
}

// EnsureTable creates the table when it does not exist yet and waits until
// it is active. It reports whether the table was created.
func (r *DynamoTransactionRepository) EnsureTable(ctx context.Context, wait time.Duration) (bool, error) {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	if err == nil {
		return false, nil
	}
	var missing *types.ResourceNotFoundException
	if !errors.As(err, &missing) {
		return false, storeErr("describe table", err)
	}

	if _, err := r.client.CreateTable(ctx, TableDefinition(r.table)); err != nil {
		return false, storeErr("create table", err)
	}
	logger.Info("dynamodb table created", "table", r.table)

	waiter := dynamodb.NewTableExistsWaiter(r.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)}, wait); err != nil {
		return true, storeErr("wait for table", err)
	}
	return true, nil
}
