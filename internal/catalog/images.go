package catalog

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// ImageStore conserve les photos produits ; les produits stockent la clé de l'objet.
type ImageStore interface {
	Upload(ctx context.Context, productID, filename string, r io.Reader, size int64, contentType string) (string, error)
	URL(ctx context.Context, key string) (string, error)
}

type MinIOImages struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
}

func NewMinIOImages(client *minio.Client, bucket string, ttl time.Duration) *MinIOImages {
	return &MinIOImages{client: client, bucket: bucket, ttl: ttl}
}

// ObjectKey range les images par produit et évite les collisions de noms.
func ObjectKey(productID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("products/%s/%s%s", productID, uuid.NewString(), ext)
}

func (m *MinIOImages) Upload(ctx context.Context, productID, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := ObjectKey(productID, filename)
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("envoi de l'image vers MinIO: %w", err)
	}
	return key, nil
}

// URL retourne une URL signée ; les URL absolues sont renvoyées telles quelles.
func (m *MinIOImages) URL(ctx context.Context, key string) (string, error) {
	if isAbsoluteURL(key) {
		return key, nil
	}
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.ttl, make(url.Values))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
