package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// S3Config descreve o bucket de fotos e logotipos.
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	PublicDomain string
	HTTPClient   *http.Client
}

// S3Uploader envia objetos com PUT assinado (SigV4).
type S3Uploader struct {
	cfg    S3Config
	client *http.Client
	signer sigV4
	now    func() time.Time
}

// NewS3Uploader valida a configuração e prepara o cliente HTTP.
func NewS3Uploader(cfg S3Config) (*S3Uploader, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	return &S3Uploader{
		cfg:    cfg,
		client: client,
		signer: sigV4{accessKey: cfg.AccessKey, secretKey: cfg.SecretKey, region: cfg.Region, service: "s3"},
		now:    time.Now,
	}, nil
}

// Upload grava o objeto e devolve a URL pública (domínio público quando configurado).
func (u *S3Uploader) Upload(ctx context.Context, obj Object) (*Stored, error) {
	key := strings.TrimLeft(strings.TrimSpace(obj.Key), "/")
	if key == "" {
		return nil, errors.New("storage: chave do objeto obrigatória")
	}
	if len(obj.Body) == 0 {
		return nil, errors.New("storage: corpo vazio")
	}

	contentType := strings.TrimSpace(obj.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	escapedKey := (&url.URL{Path: key}).EscapedPath()
	target := fmt.Sprintf("%s/%s/%s", strings.TrimRight(u.cfg.Endpoint, "/"), u.cfg.Bucket, escapedKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(obj.Body))
	if err != nil {
		return nil, err
	}
	req.ContentLength = int64(len(obj.Body))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Length", strconv.Itoa(len(obj.Body)))
	if cc := strings.TrimSpace(obj.CacheControl); cc != "" {
		req.Header.Set("Cache-Control", cc)
	}

	u.signer.sign(req, obj.Body, u.now().UTC())

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("storage: upload falhou (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	publicURL := target
	if domain := strings.TrimSpace(u.cfg.PublicDomain); domain != "" {
		publicURL = strings.TrimRight(domain, "/") + "/" + escapedKey
	}

	return &Stored{URL: publicURL, ETag: strings.Trim(resp.Header.Get("ETag"), `"`)}, nil
}

func (cfg S3Config) validate() error {
	required := []struct{ value, msg string }{
		{cfg.Endpoint, "storage: endpoint do S3 ausente"},
		{cfg.Region, "storage: região do S3 ausente"},
		{cfg.Bucket, "storage: bucket do S3 ausente"},
		{cfg.AccessKey, "storage: access key ausente"},
		{cfg.SecretKey, "storage: secret key ausente"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errors.New(r.msg)
		}
	}
	if !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
		return errors.New("storage: endpoint deve incluir protocolo http/https")
	}
	return nil
}
