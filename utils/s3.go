package utils

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var archiveClient *s3.Client
var archiveBucket string

// InitSelfieArchive configures the optional S3-compatible archive for selfie
// images. When SELFIE_ARCHIVE_BUCKET is unset the archive is disabled and
// selfies live on local disk only.
func InitSelfieArchive() error {
	archiveBucket = os.Getenv("SELFIE_ARCHIVE_BUCKET")
	if archiveBucket == "" {
		log.Println("[ARCHIVE] SELFIE_ARCHIVE_BUCKET not set, selfie archive disabled")
		return nil
	}

	endpoint := os.Getenv("SELFIE_ARCHIVE_ENDPOINT")
	accessKeyID := os.Getenv("SELFIE_ARCHIVE_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("SELFIE_ARCHIVE_ACCESS_KEY_SECRET")
	region := os.Getenv("SELFIE_ARCHIVE_REGION")
	if region == "" {
		region = "auto"
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if accessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, ""),
		))
	}
	if endpoint != "" {
		opts = append(opts, config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{URL: endpoint}, nil
			}),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return fmt.Errorf("failed to load selfie archive config: %w", err)
	}

	archiveClient = s3.NewFromConfig(cfg)
	log.Printf("[ARCHIVE] selfie archive enabled, bucket %s", archiveBucket)
	return nil
}

// ArchiveEnabled reports whether selfies are mirrored to object storage.
func ArchiveEnabled() bool {
	return archiveClient != nil
}

// ArchiveSelfie uploads one selfie image under selfies/<filename>. The local
// file stays the source of truth; archive failures are the caller's to log,
// not to surface to the player.
func ArchiveSelfie(ctx context.Context, filename string, data []byte) error {
	if archiveClient == nil {
		return nil
	}
	key := "selfies/" + filename
	_, err := archiveClient.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(archiveBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return fmt.Errorf("failed to archive selfie %s: %w", filename, err)
	}
	return nil
}
