package s3

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/stackctl/stackctl/pkg/io/logging"
)

type S3Client struct {
	Config aws.Config
	client *s3.Client
	logger logging.LogManager
}

func NewClient(cfg aws.Config) *S3Client {
	return &S3Client{
		Config: cfg,
		client: s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.UsePathStyle = true
		}),
		logger: logging.GetLogManager(),
	}
}

// ListBucketNames returns all bucket names in the account, sorted.
func (sc *S3Client) ListBucketNames() ([]string, error) {
	output, err := sc.client.ListBuckets(context.TODO(), &s3.ListBucketsInput{})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(output.Buckets))
	for _, b := range output.Buckets {
		names = append(names, aws.ToString(b.Name))
	}
	sort.Strings(names)
	return names, nil
}

// Exists head-checks a bucket. A 404 means it does not exist; 403 means it
// exists under another account.
func (sc *S3Client) Exists(bucket string) (bool, error) {
	_, err := sc.client.HeadBucket(context.TODO(), &s3.HeadBucketInput{Bucket: &bucket})
	if err == nil {
		return true, nil
	}
	if logging.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// Create makes a bucket in the configured region. Outside us-east-1 the
// region must be passed as a location constraint. Already owning the bucket
// is not an error.
func (sc *S3Client) Create(bucket string) error {
	input := &s3.CreateBucketInput{Bucket: &bucket}
	if sc.Config.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(sc.Config.Region),
		}
	}

	_, err := sc.client.CreateBucket(context.TODO(), input)
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			sc.logger.Info("Bucket already owned, reusing it", "bucket", bucket)
			return nil
		}
		return err
	}
	return nil
}

func (sc *S3Client) EnableVersioning(bucket string) error {
	_, err := sc.client.PutBucketVersioning(context.TODO(), &s3.PutBucketVersioningInput{
		Bucket: &bucket,
		VersioningConfiguration: &types.VersioningConfiguration{
			Status: types.BucketVersioningStatusEnabled,
		},
	})
	return err
}

func (sc *S3Client) Tag(bucket string, tags map[string]string) error {
	tagSet := make([]types.Tag, 0, len(tags))
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		tagSet = append(tagSet, types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}

	_, err := sc.client.PutBucketTagging(context.TODO(), &s3.PutBucketTaggingInput{
		Bucket:  &bucket,
		Tagging: &types.Tagging{TagSet: tagSet},
	})
	return err
}

// Empty deletes every object version and delete marker in the bucket. A
// bucket that no longer exists counts as already empty.
func (sc *S3Client) Empty(bucket string) error {
	paginator := s3.NewListObjectVersionsPaginator(sc.client, &s3.ListObjectVersionsInput{
		Bucket: &bucket,
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.TODO())
		if err != nil {
			if isNoSuchBucket(err) {
				return nil
			}
			return err
		}

		var toDelete []types.ObjectIdentifier
		for _, version := range page.Versions {
			toDelete = append(toDelete, types.ObjectIdentifier{
				Key:       version.Key,
				VersionId: version.VersionId,
			})
		}
		for _, marker := range page.DeleteMarkers {
			toDelete = append(toDelete, types.ObjectIdentifier{
				Key:       marker.Key,
				VersionId: marker.VersionId,
			})
		}

		if len(toDelete) > 0 {
			_, err = sc.client.DeleteObjects(context.TODO(), &s3.DeleteObjectsInput{
				Bucket: &bucket,
				Delete: &types.Delete{Objects: toDelete},
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (sc *S3Client) Delete(bucket string) error {
	_, err := sc.client.DeleteBucket(context.TODO(), &s3.DeleteBucketInput{Bucket: &bucket})
	return err
}

func isNoSuchBucket(err error) bool {
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	var re *awshttp.ResponseError
	if errors.As(err, &re) && re.HTTPStatusCode() == 404 {
		return true
	}
	return strings.Contains(err.Error(), "NoSuchBucket")
}
