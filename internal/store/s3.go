package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"konntek-go/internal/bot"
)

// S3Store keeps the container tree as object keys:
//
//	<prefix>/<target>/<category>/[<subcategory>/]<name>
//
// Containers have no physical existence in S3, so EnsureTarget writes a
// ".keep" marker per container to make an empty tree enumerable.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

const keepMarker = ".keep"

// NewS3Store builds a store over the given bucket. Credentials come from
// the default AWS credential chain (env vars, shared config, IAM role).
func NewS3Store(ctx context.Context, bucket, prefix, region string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket name not set")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

func (s *S3Store) EnsureTarget(id string) (bool, error) {
	if err := validSegment(id); err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	existed, err := s.targetExists(ctx, id)
	if err != nil {
		return false, err
	}
	for _, folder := range bot.TargetFolders() {
		key := s.key(id, folder, keepMarker)
		if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(nil),
		}); err != nil {
			return false, fmt.Errorf("s3 put marker failed: %w", err)
		}
	}
	return !existed, nil
}

func (s *S3Store) ListTargets() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	prefix := ""
	if s.prefix != "" {
		prefix = s.prefix + "/"
	}

	var targets []string
	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	}
	for {
		out, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("s3 list failed: %w", err)
		}
		for _, p := range out.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(p.Prefix), prefix), "/")
			if bot.ValidateIdentifier(name) {
				targets = append(targets, name)
			}
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		input.ContinuationToken = out.NextContinuationToken
	}
	sort.Strings(targets)
	return targets, nil
}

func (s *S3Store) ListFiles(target, category, subcategory string) ([]string, error) {
	prefix, err := s.containerPrefix(target, category, subcategory)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var files []string
	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	}
	for {
		out, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("s3 list failed: %w", err)
		}
		for _, obj := range out.Contents {
			name := path.Base(aws.ToString(obj.Key))
			if name != keepMarker {
				files = append(files, name)
			}
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		input.ContinuationToken = out.NextContinuationToken
	}
	sort.Strings(files)
	return files, nil
}

func (s *S3Store) StoreFile(target, category, subcategory, name string, data []byte) error {
	key, err := s.fileKey(target, category, subcategory, name)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	uploader := manager.NewUploader(s.client)
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("s3 upload failed: %w", err)
	}
	return nil
}

func (s *S3Store) FetchFile(target, category, subcategory, name string) ([]byte, error) {
	key, err := s.fileKey(target, category, subcategory, name)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	return s.getObject(ctx, key)
}

// AppendActivity is a read-modify-write over the mirror object. S3 has no
// append, so concurrent writers can lose lines; the sqlite log remains the
// authoritative record.
func (s *S3Store) AppendActivity(target, line string) error {
	if err := validSegment(target); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	key := s.key(target, bot.LogsFolder, "activity.log")
	existing, err := s.getObject(ctx, key)
	if err != nil && !errors.Is(err, bot.ErrNotFound) {
		return err
	}

	body := append(existing, []byte(line+"\n")...)
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}); err != nil {
		return fmt.Errorf("s3 put failed: %w", err)
	}
	return nil
}

func (s *S3Store) DeleteTarget(id string) (bool, error) {
	if err := validSegment(id); err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	prefix := s.join(id) + "/"
	removed := false
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	}
	for {
		out, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return false, fmt.Errorf("s3 list failed: %w", err)
		}
		for _, obj := range out.Contents {
			if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			}); err != nil {
				return removed, fmt.Errorf("s3 delete failed: %w", err)
			}
			removed = true
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		input.ContinuationToken = out.NextContinuationToken
	}
	return removed, nil
}

func (s *S3Store) targetExists(ctx context.Context, id string) (bool, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.join(id) + "/"),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("s3 list failed: %w", err)
	}
	return len(out.Contents) > 0, nil
}

func (s *S3Store) getObject(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, bot.ErrNotFound
		}
		return nil, fmt.Errorf("s3 get failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func (s *S3Store) key(target, folder, name string) string {
	return s.join(target, folder, name)
}

// containerPrefix is the listing prefix for one container, target segment
// included so targets never share a keyspace.
func (s *S3Store) containerPrefix(target, category, subcategory string) (string, error) {
	key, err := containerKey(target, category, subcategory)
	if err != nil {
		return "", err
	}
	return s.join(target, key) + "/", nil
}

func (s *S3Store) fileKey(target, category, subcategory, name string) (string, error) {
	key, err := containerKey(target, category, subcategory)
	if err != nil {
		return "", err
	}
	if err := validSegment(name); err != nil {
		return "", err
	}
	return s.join(target, key, name), nil
}

func (s *S3Store) join(parts ...string) string {
	if s.prefix != "" {
		parts = append([]string{s.prefix}, parts...)
	}
	return path.Join(parts...)
}

var _ bot.Store = (*S3Store)(nil)
