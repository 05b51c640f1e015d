package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/devfeed/internal/common"
	sc "github.com/dmitrijs2005/devfeed/internal/server/config"
)

const (
	UploadURLExpiry = 15 * time.Minute
	// DownloadURLExpiry is the longest lifetime SigV4 allows. Download URLs
	// are stored in documents, so they should outlive the session.
	DownloadURLExpiry = 7 * 24 * time.Hour
)

var ErrInvalidKey = userError(common.ErrorValidation, "A storage key is required and must not contain '..'.")

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	storageNow = time.Now
)

// StorageService hands out presigned S3 URLs so clients move bytes
// directly to and from object storage.
type StorageService struct {
	config *sc.Config

	mu        sync.Mutex
	presigner *s3.PresignClient
}

func NewStorageService(cfg *sc.Config) *StorageService {
	return &StorageService{config: cfg}
}

func validKey(key string) bool {
	return key != "" && !strings.HasPrefix(key, "/") && !strings.Contains(key, "..")
}

// getPresignClient builds the client on first use and reuses it afterwards.
func (s *StorageService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.presigner != nil {
		return s.presigner, nil
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	s.presigner = newS3PresignClient(client)
	return s.presigner, nil
}

// PresignUpload returns a PUT URL for key and the moment it stops working.
func (s *StorageService) PresignUpload(ctx context.Context, key, contentType string) (string, time.Time, error) {
	if !validKey(key) {
		return "", time.Time{}, ErrInvalidKey
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return "", time.Time{}, err
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	expires := storageNow().Add(UploadURLExpiry)
	req, err := presignPutObject(pc, ctx, in, s3.WithPresignExpires(UploadURLExpiry))
	if err != nil {
		return "", time.Time{}, err
	}
	return req.URL, expires, nil
}

// DownloadURL returns a GET URL for key.
func (s *StorageService) DownloadURL(ctx context.Context, key string) (string, error) {
	if !validKey(key) {
		return "", ErrInvalidKey
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(DownloadURLExpiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
