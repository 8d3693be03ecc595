package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3StorePut(t *testing.T) {
	api := &fakeS3{}
	store, err := NewS3Store(api, "pet-assets")
	require.NoError(t, err)

	err = store.Put(context.Background(), "petfood/beef-kibble.jpg", []byte("img"), ContentType, map[string]string{"food_id": "f-1"})
	require.NoError(t, err)

	assert.Equal(t, "pet-assets", aws.ToString(api.input.Bucket))
	assert.Equal(t, "petfood/beef-kibble.jpg", aws.ToString(api.input.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(api.input.ContentType))
	assert.EqualValues(t, 3, aws.ToInt64(api.input.ContentLength))
	assert.Equal(t, map[string]string{"food_id": "f-1"}, api.input.Metadata)
	assert.Equal(t, []byte("img"), api.body)
}

func TestS3StorePutError(t *testing.T) {
	denied := errors.New("AccessDenied")
	store, err := NewS3Store(&fakeS3{err: denied}, "pet-assets")
	require.NoError(t, err)

	err = store.Put(context.Background(), "petfood/x.jpg", []byte("img"), ContentType, nil)
	assert.ErrorIs(t, err, denied)
	assert.Contains(t, err.Error(), "s3://pet-assets/petfood/x.jpg")
}

func TestNewS3StoreValidates(t *testing.T) {
	_, err := NewS3Store(&fakeS3{}, "")
	assert.Error(t, err)
	_, err = NewS3Store(nil, "bucket")
	assert.Error(t, err)
}
