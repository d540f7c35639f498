// Package storage envia fotos de inspeção e logotipos para um bucket compatível com S3.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConfigured indica que não há bucket configurado.
	ErrNotConfigured = errors.New("storage: uploader não configurado")
	// ErrInvalidDataURL indica payload inline malformado.
	ErrInvalidDataURL = errors.New("storage: data URL inválida")
)

// Object é um arquivo a ser enviado.
type Object struct {
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
}

// Stored descreve o arquivo persistido.
type Stored struct {
	URL  string
	ETag string
}

// Uploader armazena blobs e devolve a URL pública.
type Uploader interface {
	Upload(ctx context.Context, obj Object) (*Stored, error)
}

// IsDataURL informa se o valor é um payload inline (data:...;base64,...).
func IsDataURL(value string) bool {
	return strings.HasPrefix(value, "data:")
}

// DecodeDataURL separa o tipo de conteúdo e decodifica o corpo base64.
func DecodeDataURL(value string) (contentType string, body []byte, err error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(value, "data:"), ",")
	if !ok || !IsDataURL(value) {
		return "", nil, ErrInvalidDataURL
	}
	if !strings.HasSuffix(header, ";base64") {
		return "", nil, ErrInvalidDataURL
	}
	contentType = strings.TrimSuffix(header, ";base64")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	body, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return contentType, body, nil
}

// PutDataURL envia um payload inline sob prefix/name e devolve a URL pública.
func PutDataURL(ctx context.Context, u Uploader, prefix, name, dataURL string) (string, error) {
	contentType, body, err := DecodeDataURL(dataURL)
	if err != nil {
		return "", err
	}
	key := strings.Trim(prefix, "/") + "/" + name + extensionFor(contentType)
	stored, err := u.Upload(ctx, Object{
		Key:          key,
		Body:         body,
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return "", err
	}
	return stored.URL, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	}
	return ""
}
