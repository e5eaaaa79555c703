package sinks

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedUpload struct {
	bucket      string
	key         string
	body        string
	contentType string
	metadata    map[string]string
}

type fakeUploader struct {
	uploads []recordedUpload
	err     error
}

func (f *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(input.Body)
	upload := recordedUpload{
		bucket:   *input.Bucket,
		key:      *input.Key,
		body:     string(body),
		metadata: input.Metadata,
	}
	if input.ContentType != nil {
		upload.contentType = *input.ContentType
	}
	f.uploads = append(f.uploads, upload)
	return &manager.UploadOutput{}, nil
}

func TestS3Sink_Name(t *testing.T) {
	assert.Equal(t, "s3(mtg)", NewS3SinkWithUploader("mtg", "", &fakeUploader{}).Name())
	assert.Equal(t, "s3(mtg/exports/dmu)", NewS3SinkWithUploader("mtg", "/exports/dmu/", &fakeUploader{}).Name())
	assert.Equal(t, "s3", NewS3SinkWithUploader("mtg", "", &fakeUploader{}).Kind())
}

func TestS3Sink_Write(t *testing.T) {
	tests := []struct {
		name                string
		prefix              string
		path                string
		expectedKey         string
		expectedContentType string
	}{
		{name: "json at root", path: "colors.json", expectedKey: "colors.json", expectedContentType: "application/json"},
		{name: "csv under prefix", prefix: "exports/2024", path: "card_ratings.csv", expectedKey: "exports/2024/card_ratings.csv", expectedContentType: "text/csv; charset=utf-8"},
		{name: "text table", prefix: "p", path: "deck.txt", expectedKey: "p/deck.txt", expectedContentType: "text/plain; charset=utf-8"},
		{name: "archive", path: "job.tar.zst", expectedKey: "job.tar.zst", expectedContentType: "application/zstd"},
		{name: "unknown extension", path: "blob.bin", expectedKey: "blob.bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploader := &fakeUploader{}
			sink := NewS3SinkWithUploader("mtg", tt.prefix, uploader)

			require.NoError(t, sink.Write(t.Context(), tt.path, bytes.NewBufferString("payload")))

			require.Len(t, uploader.uploads, 1)
			upload := uploader.uploads[0]
			assert.Equal(t, "mtg", upload.bucket)
			assert.Equal(t, tt.expectedKey, upload.key)
			assert.Equal(t, "payload", upload.body)
			assert.Equal(t, tt.expectedContentType, upload.contentType)
			assert.Nil(t, upload.metadata)
		})
	}
}

func TestS3Sink_Metadata(t *testing.T) {
	uploader := &fakeUploader{}
	sink := NewS3SinkWithUploader("mtg", "", uploader)
	sink.metadata = map[string]string{"job": "dmu-ratings"}

	require.NoError(t, sink.Write(t.Context(), "a.json", bytes.NewBufferString("[]")))
	assert.Equal(t, map[string]string{"job": "dmu-ratings"}, uploader.uploads[0].metadata)
}

func TestS3Sink_UploadError(t *testing.T) {
	sink := NewS3SinkWithUploader("mtg", "out", &fakeUploader{err: errors.New("access denied")})

	err := sink.Write(t.Context(), "a.json", bytes.NewBufferString("[]"))
	assert.ErrorContains(t, err, "s3://mtg/out/a.json")
	assert.ErrorContains(t, err, "access denied")
}

func TestS3ClientOptions(t *testing.T) {
	t.Run("aws endpoint", func(t *testing.T) {
		assert.Empty(t, clientOptions(S3Config{Bucket: "drafts"}))
	})

	t.Run("compatible store", func(t *testing.T) {
		var o s3.Options
		for _, opt := range clientOptions(S3Config{Bucket: "drafts", Endpoint: "http://minio:9000"}) {
			opt(&o)
		}
		require.NotNil(t, o.BaseEndpoint)
		assert.Equal(t, "http://minio:9000", *o.BaseEndpoint)
		assert.True(t, o.UsePathStyle)
	})
}

func TestS3LoadOptions(t *testing.T) {
	assert.Empty(t, loadOptions(S3Config{}))
	assert.Len(t, loadOptions(S3Config{Region: "eu-west-1"}), 1)
	assert.Len(t, loadOptions(S3Config{Region: "eu-west-1", AccessKeyID: "id", SecretAccessKey: "secret"}), 2)
	assert.Len(t, loadOptions(S3Config{AccessKeyID: "id"}), 0, "a key without its secret is ignored")
}
