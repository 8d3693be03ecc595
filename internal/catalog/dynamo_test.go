package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petfood/internal/domain"
)

type fakeDynamo struct {
	input *dynamodb.UpdateItemInput
	out   *dynamodb.UpdateItemOutput
	err   error
}

func (f *fakeDynamo) UpdateItem(_ context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	if f.out != nil {
		return f.out, nil
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func TestDynamoStoreUpdateItem(t *testing.T) {
	api := &fakeDynamo{out: &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{
		"image":      &types.AttributeValueMemberS{Value: "petfood/beef-kibble.jpg"},
		"updated_at": &types.AttributeValueMemberN{Value: "1700000000"},
	}}}
	store, err := NewDynamoStore(api, "foods")
	require.NoError(t, err)

	attrs, err := store.UpdateItem(context.Background(), "f-1", map[string]any{
		"image":      "petfood/beef-kibble.jpg",
		"updated_at": int64(1700000000),
	})
	require.NoError(t, err)
	assert.Equal(t, "petfood/beef-kibble.jpg", attrs["image"])
	assert.EqualValues(t, 1700000000, attrs["updated_at"])

	in := api.input
	require.NotNil(t, in)
	assert.Equal(t, "foods", aws.ToString(in.TableName))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "f-1"}, in.Key["id"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1", aws.ToString(in.UpdateExpression))
	assert.Equal(t, "attribute_exists(#id)", aws.ToString(in.ConditionExpression))
	assert.Equal(t, map[string]string{"#id": "id", "#f0": "image", "#f1": "updated_at"}, in.ExpressionAttributeNames)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "petfood/beef-kibble.jpg"}, in.ExpressionAttributeValues[":v0"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "1700000000"}, in.ExpressionAttributeValues[":v1"])
	assert.Equal(t, types.ReturnValueUpdatedNew, in.ReturnValues)
}

func TestDynamoStoreMissingItem(t *testing.T) {
	api := &fakeDynamo{err: &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}}
	store, err := NewDynamoStore(api, "foods")
	require.NoError(t, err)

	_, err = store.UpdateItem(context.Background(), "nope", map[string]any{"image": "k"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDynamoStoreOtherErrors(t *testing.T) {
	boom := errors.New("ProvisionedThroughputExceeded")
	store, err := NewDynamoStore(&fakeDynamo{err: boom}, "foods")
	require.NoError(t, err)

	_, err = store.UpdateItem(context.Background(), "f-1", map[string]any{"image": "k"})
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, domain.ErrNotFound))

	_, err = store.UpdateItem(context.Background(), "f-1", nil)
	assert.Error(t, err)
}

func TestNewDynamoStoreValidates(t *testing.T) {
	_, err := NewDynamoStore(&fakeDynamo{}, " ")
	assert.Error(t, err)
	_, err = NewDynamoStore(nil, "foods")
	assert.Error(t, err)
}
