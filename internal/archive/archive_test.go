package archive

import (
	"context"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockClient is a mock implementation of the minio client.
type mockClient struct {
	mock.Mock
}

func (m *mockClient) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *mockClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

var testConfig = Config{
	Endpoint:  "https://s3.example.com",
	Bucket:    "photos",
	AccessKey: "key",
	SecretKey: "secret",
	Prefix:    "/stamped/",
}

func TestPut(t *testing.T) {
	ctx := context.Background()
	client := new(mockClient)
	client.On("BucketExists", ctx, "photos").Return(true, nil)

	b, err := newBucket(ctx, client, testConfig)
	require.NoError(t, err)

	data := []byte{0xff, 0xd8, 0xff, 0xd9}
	meta := map[string]string{"latitude": "40.416800"}
	client.On("PutObject", ctx, "photos", "stamped/imagen_20240315_143045.jpg",
		mock.Anything, int64(len(data)),
		mock.MatchedBy(func(o minio.PutObjectOptions) bool {
			return o.ContentType == "image/jpeg" && o.UserMetadata["latitude"] == "40.416800"
		}),
	).Return(minio.UploadInfo{Size: int64(len(data)), ETag: "etag"}, nil)

	require.NoError(t, b.Put(ctx, "imagen_20240315_143045.jpg", data, meta))
	client.AssertExpectations(t)
}

func TestPutError(t *testing.T) {
	ctx := context.Background()
	client := new(mockClient)
	client.On("BucketExists", ctx, "photos").Return(true, nil)
	client.On("PutObject", ctx, "photos", "stamped/a.jpg", mock.Anything, int64(1), mock.Anything).
		Return(minio.UploadInfo{}, errors.New("connection reset"))

	b, err := newBucket(ctx, client, testConfig)
	require.NoError(t, err)

	err = b.Put(ctx, "a.jpg", []byte{1}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestMissingBucket(t *testing.T) {
	ctx := context.Background()
	client := new(mockClient)
	client.On("BucketExists", ctx, "photos").Return(false, nil)

	_, err := newBucket(ctx, client, testConfig)
	assert.Error(t, err)

	_, err = New(ctx, Config{Endpoint: "localhost:9000"})
	assert.Error(t, err)
	_, err = New(ctx, Config{Endpoint: "localhost:9000", Bucket: "photos"})
	assert.Error(t, err)
}

func TestObjectKey(t *testing.T) {
	b := &Bucket{}
	assert.Equal(t, "a.jpg", b.objectKey("/a.jpg"))
	b.config.Prefix = "x/y/"
	assert.Equal(t, "x/y/a.jpg", b.objectKey("a.jpg"))
	assert.False(t, Config{Endpoint: "e"}.Enabled())
	assert.True(t, testConfig.Enabled())
}
