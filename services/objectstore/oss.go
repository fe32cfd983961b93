package storesvc

import (
	"bytes"
	"context"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
)

// ossService stores objects in an Alibaba Cloud OSS bucket.
type ossService struct {
	bucket  *oss.Bucket
	baseURL string
}

var _ Service = (*ossService)(nil)

func NewOSSService(conf *core.Config) (*ossService, error) {
	client, err := oss.New(conf.ObjectStore.Endpoint, conf.ObjectStore.AccessKeyID, conf.ObjectStore.AccessKeySecret)
	if err != nil {
		return nil, errors.Wrap(err, "creating OSS client")
	}
	bucket, err := client.Bucket(conf.ObjectStore.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "opening OSS bucket")
	}
	return &ossService{
		bucket:  bucket,
		baseURL: strings.TrimRight(conf.ObjectStore.PublicBaseURL, "/"),
	}, nil
}

func (svc ossService) Put(_ context.Context, path string, data []byte, contentType string) (string, error) {
	path = strings.TrimLeft(path, "/")
	opts := []oss.Option{
		oss.ContentType(contentType),
		oss.CacheControl("public, max-age=86400"),
	}
	if err := svc.bucket.PutObject(path, bytes.NewReader(data), opts...); err != nil {
		return "", errors.Wrap(err, "uploading object")
	}
	return svc.baseURL + "/" + path, nil
}
