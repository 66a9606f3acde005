package assets

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/prerender/internal/config"
)

type mockS3Client struct {
	mock.Mock
}

func (m *mockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func TestS3SourceRead(t *testing.T) {
	client := new(mockS3Client)
	client.On("GetObject", mock.Anything, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Bucket) == "assets" && aws.ToString(in.Key) == "web/stats.json"
	})).Return(&s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(`{"styles":{"main":"main.css"}}`)),
	}, nil)

	src := &S3Source{Client: client, Bucket: "assets", Key: "web/stats.json"}
	assert.Equal(t, "s3://assets/web/stats.json", src.String())

	tools := NewTools(src, "https://cdn.example.com/web/", nil)
	require.NoError(t, tools.Refresh(context.Background()))
	assert.Equal(t, []string{"https://cdn.example.com/web/main.css"}, tools.Assets().Stylesheets())
	client.AssertExpectations(t)
}

func TestS3SourceReadError(t *testing.T) {
	client := new(mockS3Client)
	boom := errors.New("access denied")
	client.On("GetObject", mock.Anything, mock.Anything).Return(nil, boom)

	src := &S3Source{Client: client, Bucket: "assets", Key: "stats.json"}
	_, err := src.Read(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "s3://assets/stats.json")
}

func TestNewSourceFile(t *testing.T) {
	cfg := config.New()
	src, err := NewSource(context.Background(), cfg)
	require.NoError(t, err)
	fs, ok := src.(FileSource)
	require.True(t, ok, "expected FileSource, got %T", src)
	assert.Equal(t, cfg.StatsPath(), fs.Path)
}
