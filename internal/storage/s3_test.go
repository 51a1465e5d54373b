package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"venturelink/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	calls   []string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls = append(f.calls, "get "+aws.ToString(in.Key))
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.calls = append(f.calls, "put "+aws.ToString(in.Key)+" "+aws.ToString(in.ContentType))
	data, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Key)] = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) CopyObject(_ context.Context, in *s3.CopyObjectInput, _ ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	f.calls = append(f.calls, "copy "+aws.ToString(in.CopySource)+" "+aws.ToString(in.Key))
	return &s3.CopyObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.calls = append(f.calls, "delete "+aws.ToString(in.Key))
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Bucket_DownloadMissingMapsToNotFound(t *testing.T) {
	b := &S3Bucket{client: &fakeS3{objects: map[string]string{}}, bucket: "intake"}

	_, err := b.Download(context.Background(), "pitches/p1/a.pdf")
	assert.True(t, errors.Is(err, types.ErrObjectNotFound), "got %v", err)
}

func TestS3Bucket_UploadAndMove(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{}}
	b := &S3Bucket{client: fake, bucket: "intake"}
	ctx := context.Background()

	require.NoError(t, b.Upload(ctx, "pitches/p1/a.txt", []byte("hello"), "text/plain"))
	data, err := b.Download(ctx, "pitches/p1/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, b.Move(ctx, "pitches/p1/a.txt", "quarantine/pitches/p1/a.txt"))

	assert.Equal(t, []string{
		"put pitches/p1/a.txt text/plain",
		"get pitches/p1/a.txt",
		"copy intake%2Fpitches%2Fp1%2Fa.txt quarantine/pitches/p1/a.txt",
		"delete pitches/p1/a.txt",
	}, fake.calls)
}
