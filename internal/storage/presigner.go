package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/inflowhq/inflow-backend/internal/config"
)

// Presigner hands out short-lived S3 PUT URLs for attachment uploads.
// Clients upload directly; the API only ever stores the resulting public URL.
type Presigner struct {
	client    *s3.PresignClient
	bucket    string
	publicURL string
}

func NewPresigner(cfg *config.Config) (*Presigner, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:               cfg.S3Endpoint,
			SigningRegion:     region,
			HostnameImmutable: true,
		}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(
		context.TODO(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	return &Presigner{
		client:    s3.NewPresignClient(client),
		bucket:    cfg.S3Bucket,
		publicURL: strings.TrimSuffix(cfg.S3PublicURL, "/"),
	}, nil
}

// PresignUpload returns the object key, a 15-minute PUT URL and the public
// URL the object will be served from after upload.
func (p *Presigner) PresignUpload(ctx context.Context, fileName, contentType string) (key, uploadURL, publicURL string, err error) {
	key = fmt.Sprintf("attachments/%s%s", uuid.New().String(), path.Ext(fileName))

	input := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	request, err := p.client.PresignPutObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = 15 * time.Minute
	})
	if err != nil {
		return "", "", "", err
	}

	return key, request.URL, p.publicURL + "/" + key, nil
}
