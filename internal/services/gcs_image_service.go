package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/campusfound/backend/internal/models"
)

// GCSImageService stores uploads in a Google Cloud Storage bucket. The
// owning user is recorded as object metadata so deletes can be authorized
// without a separate record store.
type GCSImageService struct {
	client *storage.Client
	bucket string
}

func NewGCSImageService(ctx context.Context, bucket string) (*GCSImageService, error) {
	if bucket == "" {
		return nil, ErrBadInput
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSImageService{client: client, bucket: bucket}, nil
}

func (s *GCSImageService) Close() error {
	return s.client.Close()
}

func (s *GCSImageService) objectName(imageID, ext string) string {
	return "items/" + imageID + ext
}

func (s *GCSImageService) Upload(userID string, filename string, file io.Reader) (*models.ImageUploadResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	imageID := uuid.New().String()
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	name := s.objectName(imageID, ext)

	obj := s.client.Bucket(s.bucket).Object(name)
	w := obj.NewWriter(ctx)
	w.Metadata = map[string]string{"userId": userID}

	if _, err := io.Copy(w, file); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize object: %w", err)
	}

	return &models.ImageUploadResponse{
		ID:       imageID + ext,
		URL:      fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, name),
		Filename: imageID + ext,
	}, nil
}

func (s *GCSImageService) Delete(userID, imageID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	obj := s.client.Bucket(s.bucket).Object("items/" + imageID)

	attrs, err := obj.Attrs(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return ErrImageNotFound
		}
		return err
	}
	if attrs.Metadata["userId"] != userID {
		return ErrUnauthorized
	}

	if err := obj.Delete(ctx); err != nil {
		if err == storage.ErrObjectNotExist {
			return ErrImageNotFound
		}
		return err
	}
	return nil
}
