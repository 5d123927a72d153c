package adapter

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// Storage receives user data exports
type Storage interface {
	// Put returns a writer for the object at key. The object is committed on Close.
	Put(ctx context.Context, key string) (io.WriteCloser, error)
}

// storageClient implements Storage with Cloud Storage
type storageClient struct {
	bucketName string
	prefix     string
	client     *storage.Client
}

// NewStorage creates a Cloud Storage backed export target. Keys are placed under prefix.
func NewStorage(ctx context.Context, bucketName, prefix string) (Storage, error) {
	if bucketName == "" {
		return nil, goerr.New("storage bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &storageClient{
		bucketName: bucketName,
		prefix:     prefix,
		client:     client,
	}, nil
}

func (s *storageClient) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	obj := s.client.Bucket(s.bucketName).Object(s.prefix + key)
	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"
	return w, nil
}
