// Package signer issues pre-authorized upload slots against an
// S3-compatible bucket and deletes objects behind public locators. It is the
// server-side peer of pkg/gateway: the gateway asks this service for a
// signed PUT target, pushes bytes to it directly, and later asks for
// deletion by durable locator.
package signer

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/uploadkit/uploadkit/pkg/mediakind"
)

// Config holds S3-compatible signer configuration.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string `yaml:"bucket"`

	// AccessKey is the AWS access key ID (required).
	AccessKey string `yaml:"access_key"`

	// SecretKey is the AWS secret access key (required).
	SecretKey string `yaml:"secret_key"`

	// Endpoint is a custom S3 endpoint URL (optional, for MinIO and friends).
	Endpoint string `yaml:"endpoint"`

	// Region is the AWS region (default: us-east-1).
	Region string `yaml:"region"`

	// PublicURL is the CDN or public URL prefix for uploaded objects
	// (optional). When set, durable locators use this prefix.
	PublicURL string `yaml:"public_url"`

	// KeyPrefix is prepended to every generated object key (optional).
	KeyPrefix string `yaml:"key_prefix"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `yaml:"path_style"`

	// SlotExpiry is how long an issued upload slot stays valid (default: 15m).
	SlotExpiry time.Duration `yaml:"slot_expiry"`
}

// Default configuration values.
const (
	DefaultRegion     = "us-east-1"
	DefaultSlotExpiry = 15 * time.Minute
)

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.SlotExpiry == 0 {
		c.SlotExpiry = DefaultSlotExpiry
	}
}

func (c *Config) validate() error {
	if c.Bucket == "" {
		return ErrInvalidConfig
	}
	if c.AccessKey == "" {
		return ErrInvalidConfig
	}
	if c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

// Service issues upload slots and deletes uploaded objects.
type Service struct {
	client    *s3.Client
	presigner *s3.PresignClient
	cfg       Config
}

// New creates a signer Service with the given configuration.
func New(cfg Config) (*Service, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)
		},
	}

	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	client := s3.New(s3.Options{}, opts...)

	return &Service{
		client:    client,
		presigner: s3.NewPresignClient(client),
		cfg:       cfg,
	}, nil
}

// CreateSlot issues a pre-signed PUT target for a new object. The object
// key is freshly generated per slot; name only contributes its extension
// when the declared media kind has no known one.
func (s *Service) CreateSlot(ctx context.Context, name, mediaKind string) (string, error) {
	key := s.buildKey(name, mediaKind)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}
	if mediaKind != "" {
		input.ContentType = aws.String(mediaKind)
	}

	result, err := s.presigner.PresignPutObject(ctx, input, func(po *s3.PresignOptions) {
		po.Expires = s.cfg.SlotExpiry
	})
	if err != nil {
		return "", wrapS3Error(err, ErrPresignFailed)
	}

	return result.URL, nil
}

// Delete removes the object behind a durable public locator.
func (s *Service) Delete(ctx context.Context, locator string) error {
	key, err := s.keyFromLocator(locator)
	if err != nil {
		return err
	}

	input := &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}

	if _, err := s.client.DeleteObject(ctx, input); err != nil {
		return wrapS3Error(err, ErrDeleteFailed)
	}

	return nil
}

// buildKey constructs a fresh object key: {prefix}/{uuid}{ext}.
func (s *Service) buildKey(name, mediaKind string) string {
	ext := mediakind.ExtFromKind(mediaKind)
	if ext == "" {
		if i := strings.LastIndex(name, "."); i >= 0 {
			ext = strings.ToLower(name[i:])
		} else {
			ext = ".bin"
		}
	}

	key := uuid.NewString() + ext
	if s.cfg.KeyPrefix != "" {
		key = strings.Trim(s.cfg.KeyPrefix, "/") + "/" + key
	}
	return key
}

// keyFromLocator resolves a public locator back to the bucket key it names.
// Locators pointing outside the configured bucket are rejected.
func (s *Service) keyFromLocator(locator string) (string, error) {
	if s.cfg.PublicURL != "" {
		prefix := strings.TrimSuffix(s.cfg.PublicURL, "/") + "/"
		if strings.HasPrefix(locator, prefix) {
			return strings.TrimPrefix(locator, prefix), nil
		}
	}

	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrForeignLocator, err)
	}

	path := strings.TrimPrefix(u.Path, "/")

	// Path-style URLs carry the bucket as the first segment.
	if s.cfg.PathStyle || strings.HasPrefix(path, s.cfg.Bucket+"/") {
		if after, ok := strings.CutPrefix(path, s.cfg.Bucket+"/"); ok {
			return after, nil
		}
		return "", fmt.Errorf("%w: %s", ErrForeignLocator, locator)
	}

	// Virtual-hosted style: host starts with the bucket name.
	if strings.HasPrefix(u.Host, s.cfg.Bucket+".") {
		if path == "" {
			return "", fmt.Errorf("%w: %s", ErrForeignLocator, locator)
		}
		return path, nil
	}

	return "", fmt.Errorf("%w: %s", ErrForeignLocator, locator)
}
