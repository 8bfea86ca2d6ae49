// Package storage archives processed sales to S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	apppos "github.com/erp/posgateway/internal/application/pos"
	"github.com/erp/posgateway/internal/domain/pos"
	"github.com/erp/posgateway/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ apppos.PayloadArchiver = (*S3SaleArchiver)(nil)

// S3SaleArchiver writes one JSON document per completed sale holding the
// submitted payload and the result returned to the terminal.
type S3SaleArchiver struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

type archivedSale struct {
	Payload *pos.SalePayload `json:"payload"`
	Result  *pos.SaleResult  `json:"result"`
}

// NewS3SaleArchiver builds a client for cfg. Without an access key the SDK
// default credential chain is used.
func NewS3SaleArchiver(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*S3SaleArchiver, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	var endpoint *string
	if cfg.Endpoint != "" {
		ep := cfg.Endpoint
		if !strings.HasPrefix(ep, "http://") && !strings.HasPrefix(ep, "https://") {
			ep = "http://" + ep
		}
		if _, err := url.Parse(ep); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
		endpoint = aws.String(ep)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != nil {
			o.BaseEndpoint = endpoint
		}
	})

	return &S3SaleArchiver{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: logger,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (a *S3SaleArchiver) EnsureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(a.bucket)})
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	a.logger.Info("Creating archive bucket", zap.String("bucket", a.bucket))
	if _, err := a.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(a.bucket)}); err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Archive stores payload and result under ObjectKey.
func (a *S3SaleArchiver) Archive(ctx context.Context, payload *pos.SalePayload, result *pos.SaleResult) error {
	if payload == nil || result == nil {
		return errors.New("payload and result are required")
	}
	body, err := json.Marshal(archivedSale{Payload: payload, Result: result})
	if err != nil {
		return fmt.Errorf("failed to encode archived sale: %w", err)
	}

	key := a.ObjectKey(payload, result)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/json"),
		Metadata: map[string]string{
			"terminal-id":    payload.TerminalID,
			"invoice-number": result.InvoiceNumber,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// ObjectKey is prefix/YYYY/MM/DD/<terminal>/<transaction>.json on the UTC
// result date. Both ids are path-escaped.
func (a *S3SaleArchiver) ObjectKey(payload *pos.SalePayload, result *pos.SaleResult) string {
	day := result.Timestamp.UTC().Format("2006/01/02")
	return path.Join(a.prefix, day,
		url.PathEscape(payload.RateLimitKey()),
		url.PathEscape(payload.TransactionID)+".json")
}
