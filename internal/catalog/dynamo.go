package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"petfood/internal/domain"
)

// UpdateItemAPI is the slice of the DynamoDB client the store uses.
type UpdateItemAPI interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// DynamoStore updates items in a table keyed by "id".
type DynamoStore struct {
	api   UpdateItemAPI
	table string
}

// NewDynamoStore binds api to table.
func NewDynamoStore(api UpdateItemAPI, table string) (*DynamoStore, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, errors.New("catalog: table name is required")
	}
	if api == nil {
		return nil, errors.New("catalog: dynamodb client is required")
	}
	return &DynamoStore{api: api, table: table}, nil
}

// NewDynamoStoreFromConfig builds a DynamoStore from a loaded AWS config.
func NewDynamoStoreFromConfig(cfg aws.Config, table string) (*DynamoStore, error) {
	return NewDynamoStore(dynamodb.NewFromConfig(cfg), table)
}

// UpdateItem sets fields on an existing item. The attribute_exists condition
// keeps the update from creating a record.
func (s *DynamoStore) UpdateItem(ctx context.Context, id string, fields map[string]any) (map[string]any, error) {
	if len(fields) == 0 {
		return nil, errors.New("catalog: no fields to update")
	}
	key, err := attributevalue.MarshalMap(map[string]string{"id": id})
	if err != nil {
		return nil, fmt.Errorf("catalog: marshal key: %w", err)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	exprNames := map[string]string{"#id": "id"}
	exprValues := make(map[string]types.AttributeValue, len(fields))
	sets := make([]string, 0, len(fields))
	for i, name := range names {
		n, v := "#f"+strconv.Itoa(i), ":v"+strconv.Itoa(i)
		av, err := attributevalue.Marshal(fields[name])
		if err != nil {
			return nil, fmt.Errorf("catalog: marshal %s: %w", name, err)
		}
		exprNames[n] = name
		exprValues[v] = av
		sets = append(sets, n+" = "+v)
	}

	out, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       key,
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, fmt.Errorf("%w: item %s", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("catalog: update item %s: %w", id, err)
	}

	attrs := map[string]any{}
	if len(out.Attributes) > 0 {
		if err := attributevalue.UnmarshalMap(out.Attributes, &attrs); err != nil {
			return nil, fmt.Errorf("catalog: unmarshal attributes: %w", err)
		}
	}
	return attrs, nil
}

var _ Store = (*DynamoStore)(nil)
