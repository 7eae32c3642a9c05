package repository

import (
	"context"
	"errors"

	"finance_webapp/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the part of *dynamodb.Client the repository needs.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

type DynamoTransactionRepository struct {
	client DynamoAPI
	table  string
}

func NewDynamoTransactionRepository(client DynamoAPI, table string) *DynamoTransactionRepository {
	return &DynamoTransactionRepository{client: client, table: table}
}

func (r *DynamoTransactionRepository) key(userID, sortKey string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: BuildPrimaryKey(userID)},
		attrSK: &types.AttributeValueMemberS{Value: sortKey},
	}
}

func (r *DynamoTransactionRepository) Get(ctx context.Context, userID, sortKey string) (*domain.Transaction, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       r.key(userID, sortKey),
	})
	if err != nil {
		return nil, storeErr("get item", err)
	}
	if len(out.Item) == 0 {
		return nil, domain.ErrNotFound
	}

	var tx domain.Transaction
	if err := attributevalue.UnmarshalMap(out.Item, &tx); err != nil {
		return nil, storeErr("decode item", err)
	}
	return &tx, nil
}

// Put refuses to overwrite an existing key; ids are unique so a collision
// means something upstream is broken.
func (r *DynamoTransactionRepository) Put(ctx context.Context, tx *domain.Transaction) error {
	item, err := attributevalue.MarshalMap(tx)
	if err != nil {
		return storeErr("encode item", err)
	}

	cond, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(attrSK))).
		Build()
	if err != nil {
		return storeErr("build condition", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.table),
		Item:                     item,
		ConditionExpression:      cond.Condition(),
		ExpressionAttributeNames: cond.Names(),
	})
	if err != nil {
		return storeErr("put item", err)
	}
	return nil
}

func (r *DynamoTransactionRepository) UpdateFields(ctx context.Context, userID, sortKey string, patch domain.TransactionPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	var update expression.UpdateBuilder
	if patch.Description != nil {
		update = update.Set(expression.Name("description"), expression.Value(*patch.Description))
	}
	if patch.Mode != nil {
		update = update.
			Set(expression.Name("mode"), expression.Value(string(*patch.Mode))).
			Set(expression.Name("GSI3PK"), expression.Value(ProjectionKey(ProjectionMode, userID, string(*patch.Mode))))
	}
	if patch.AmountCents != nil {
		update = update.Set(expression.Name("amountCents"), expression.Value(*patch.AmountCents))
	}
	if patch.Currency != nil {
		update = update.Set(expression.Name("currency"), expression.Value(*patch.Currency))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.AttributeExists(expression.Name(attrPK))).
		Build()
	if err != nil {
		return storeErr("build update", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       r.key(userID, sortKey),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return domain.ErrNotFound
		}
		return storeErr("update item", err)
	}
	return nil
}

func (r *DynamoTransactionRepository) Delete(ctx context.Context, userID, sortKey string) (bool, error) {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.table),
		Key:          r.key(userID, sortKey),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return false, storeErr("delete item", err)
	}
	return len(out.Attributes) > 0, nil
}

func (r *DynamoTransactionRepository) QueryByPrimary(ctx context.Context, userID string, opts QueryOptions) (domain.Page, error) {
	return r.query(ctx, "", attrPK, BuildPrimaryKey(userID), opts)
}

func (r *DynamoTransactionRepository) QueryByProjection(ctx context.Context, p Projection, projectionKey string, opts QueryOptions) (domain.Page, error) {
	pkAttr, _ := p.attributes()
	return r.query(ctx, p, pkAttr, projectionKey, opts)
}

func (r *DynamoTransactionRepository) query(ctx context.Context, p Projection, pkAttr, pkValue string, opts QueryOptions) (domain.Page, error) {
	start, err := decodeCursor(opts.Cursor, pkAttr, pkValue)
	if err != nil {
		return domain.Page{}, err
	}

	keyCond := expression.Key(pkAttr).Equal(expression.Value(pkValue))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return domain.Page{}, storeErr("build key condition", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(!opts.Descending),
	}
	if p != "" {
		input.IndexName = aws.String(string(p))
	}
	if opts.Limit > 0 {
		input.Limit = aws.Int32(int32(opts.Limit))
	}
	if start != nil {
		input.ExclusiveStartKey = make(map[string]types.AttributeValue, len(start))
		for k, v := range start {
			input.ExclusiveStartKey[k] = &types.AttributeValueMemberS{Value: v}
		}
	}

	out, err := r.client.Query(ctx, input)
	if err != nil {
		return domain.Page{}, storeErr("query", err)
	}

	page := domain.Page{Items: make([]*domain.Transaction, 0, len(out.Items))}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &page.Items); err != nil {
		return domain.Page{}, storeErr("decode items", err)
	}

	if len(out.LastEvaluatedKey) > 0 {
		last := make(map[string]string, len(out.LastEvaluatedKey))
		for k, v := range out.LastEvaluatedKey {
			if s, ok := v.(*types.AttributeValueMemberS); ok {
				last[k] = s.Value
			}
		}
		page.NextCursor = encodeCursor(last)
	}
	return page, nil
}

func (r *DynamoTransactionRepository) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	if err != nil {
		return storeErr("describe table", err)
	}
	return nil
}
