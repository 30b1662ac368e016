package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"

	"job-portal-backend/internal/domain"
	"job-portal-backend/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestS3Uploader_UploadResume(t *testing.T) {
	putter := &fakePutter{}
	u := NewS3Uploader(putter, S3Config{Provider: S3ProviderAWS, Region: "us-east-1", Bucket: "portal"}, logger.Discard())

	url, err := u.Upload(context.Background(), domain.FolderResumes, &domain.Asset{
		Filename:    "My CV (final).pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4 test"),
	})
	require.NoError(t, err)

	key := aws.ToString(putter.input.Key)
	assert.True(t, strings.HasPrefix(key, "resumes/"))
	assert.True(t, strings.HasSuffix(key, "_My_CV_final.pdf"))
	assert.Equal(t, "application/pdf", aws.ToString(putter.input.ContentType))
	assert.Equal(t, []byte("%PDF-1.4 test"), putter.body)
	assert.Equal(t, "https://portal.s3.us-east-1.amazonaws.com/"+key, url)
}

func TestS3Uploader_CompressesImages(t *testing.T) {
	putter := &fakePutter{}
	u := NewS3Uploader(putter, S3Config{
		Provider: S3ProviderWasabi,
		Region:   "eu-central-1",
		Bucket:   "portal",
		Image:    ImageOptions{MaxDimension: 100, Quality: 70},
	}, logger.Discard())

	url, err := u.Upload(context.Background(), domain.FolderProfilePhotos, &domain.Asset{
		Filename:    "avatar.png",
		ContentType: "image/png",
		Data:        pngBytes(t, 400, 200),
	})
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", aws.ToString(putter.input.ContentType))
	assert.True(t, strings.HasSuffix(aws.ToString(putter.input.Key), "_avatar.jpg"))
	assert.True(t, strings.HasPrefix(url, "https://s3.eu-central-1.wasabisys.com/portal/profile-photos/"))

	img, err := jpeg.Decode(bytes.NewReader(putter.body))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestS3Uploader_PublicBaseURL(t *testing.T) {
	putter := &fakePutter{}
	u := NewS3Uploader(putter, S3Config{Bucket: "portal", Region: "us-east-1", PublicBaseURL: "https://cdn.example.com"}, logger.Discard())

	url, err := u.Upload(context.Background(), domain.FolderResumes, &domain.Asset{Filename: "cv.pdf", ContentType: "application/pdf", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+aws.ToString(putter.input.Key), url)
}

func TestS3Uploader_PutFailure(t *testing.T) {
	u := NewS3Uploader(&fakePutter{err: errors.New("connection reset")}, S3Config{Bucket: "portal"}, logger.Discard())

	_, err := u.Upload(context.Background(), domain.FolderResumes, &domain.Asset{Filename: "cv.pdf", Data: []byte("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestPlaceholderUploader(t *testing.T) {
	p := PlaceholderUploader{URL: "https://example.com/placeholder.jpg"}

	url, err := p.Upload(context.Background(), domain.FolderProfilePhotos, &domain.Asset{})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/placeholder.jpg", url)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Upload(ctx, domain.FolderProfilePhotos, &domain.Asset{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFitWithin(t *testing.T) {
	w, h := fitWithin(800, 600, 1200)
	assert.Equal(t, []int{800, 600}, []int{w, h})

	w, h = fitWithin(600, 2400, 1200)
	assert.Equal(t, []int{300, 1200}, []int{w, h})
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "report_2024.pdf", sanitizeFilename("report 2024.PDF"))
	assert.Equal(t, "file.png", sanitizeFilename("../../ü.png"))
}
