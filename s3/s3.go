// Package s3 provides an opk.RawSource over objects in an S3 bucket,
// the cloud blob side of the source boundary. The csv and json
// decoders layer on top of it exactly as they do on local files.
package s3

import (
	"io"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	opk "github.com/iomega/opk"
	"github.com/pkg/errors"
)

// Option is a functional option for RawSource.
type Option func(rs *RawSource)

// OptBucket sets the S3 bucket to read from.
func OptBucket(bucket string) Option {
	return func(rs *RawSource) {
		rs.bucket = bucket
	}
}

// OptPrefix restricts the source to objects whose key matches prefix.
func OptPrefix(prefix string) Option {
	return func(rs *RawSource) {
		rs.prefix = prefix
	}
}

// OptRegion sets the AWS region.
func OptRegion(region string) Option {
	return func(rs *RawSource) {
		rs.region = region
	}
}

// RawSource hands out readers over the objects under a bucket/prefix.
// It is safe for concurrent use.
type RawSource struct {
	bucket string
	prefix string
	region string

	s3      *s3.S3
	sess    *session.Session
	objects []*s3.Object
	objIdx  *uint64
}

// NewRawSource lists the matching objects and returns a RawSource over
// them. Credentials come from the usual AWS environment.
func NewRawSource(opts ...Option) (*RawSource, error) {
	idx := uint64(0)
	rs := &RawSource{
		region: "us-east-1",
		objIdx: &idx,
	}
	for _, opt := range opts {
		opt(rs)
	}
	var err error
	rs.sess, err = session.NewSession(&aws.Config{
		Region: aws.String(rs.region),
	})
	if err != nil {
		return nil, errors.Wrapf(opk.ErrSourceUnavailable, "getting aws session: %v", err)
	}
	rs.s3 = s3.New(rs.sess)
	resp, err := rs.s3.ListObjects(&s3.ListObjectsInput{
		Bucket: aws.String(rs.bucket),
		Prefix: aws.String(rs.prefix),
	})
	if err != nil {
		return nil, errors.Wrapf(opk.ErrSourceUnavailable, "listing objects in %s/%s: %v", rs.bucket, rs.prefix, err)
	}
	rs.objects = resp.Contents
	return rs, nil
}

// NextReader implements opk.RawSource, fetching the next object.
func (rs *RawSource) NextReader() (opk.NamedReadCloser, error) {
	idx := atomic.AddUint64(rs.objIdx, 1) - 1
	if int(idx) >= len(rs.objects) {
		return nil, io.EOF
	}
	obj := rs.objects[idx]
	result, err := rs.s3.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(rs.bucket),
		Key:    aws.String(*obj.Key),
	})
	if err != nil {
		return nil, errors.Wrapf(opk.ErrSourceUnavailable, "fetching %v: %v", *obj.Key, err)
	}
	return &objReader{name: *obj.Key, bucket: rs.bucket, body: result.Body}, nil
}

type objReader struct {
	name   string
	bucket string
	body   io.ReadCloser
}

func (o *objReader) Read(buf []byte) (n int, err error) {
	return o.body.Read(buf)
}

func (o *objReader) Close() error {
	return o.body.Close()
}

func (o *objReader) Name() string {
	return o.name
}

func (o *objReader) Meta() map[string]interface{} {
	return map[string]interface{}{"bucket": o.bucket}
}

// ParseLocator splits an "s3://bucket/prefix" locator into its bucket
// and prefix. ok is false if the locator is not s3 shaped.
func ParseLocator(locator string) (bucket, prefix string, ok bool) {
	const scheme = "s3://"
	if !strings.HasPrefix(locator, scheme) {
		return "", "", false
	}
	rest := strings.TrimPrefix(locator, scheme)
	parts := strings.SplitN(rest, "/", 2)
	bucket = parts[0]
	if len(parts) == 2 {
		prefix = parts[1]
	}
	return bucket, prefix, bucket != ""
}
