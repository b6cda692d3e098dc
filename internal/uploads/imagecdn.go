// Package uploads pushes product images straight to the image CDN.
// The backend only hands out a short-lived signed authorization; the
// raw bytes never pass through it.
package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/alhaja/alhaja-admin/internal/gateway"
)

// maxImageSize bounds the accepted upload at 10MB, matching the CDN
// plan limit.
const maxImageSize = 10 << 20

// Uploader performs the signed direct upload.
type Uploader struct {
	Auth      *gateway.Client
	UploadURL string
	PublicKey string
	Client    *http.Client
}

type uploadResponse struct {
	URL string `json:"url"`
}

// Upload obtains a fresh authorization and posts the image. It returns
// the public URL to store on the product.
func (u *Uploader) Upload(ctx context.Context, filename string, content []byte) (string, error) {
	if u == nil || u.UploadURL == "" {
		return "", fmt.Errorf("image uploader not configured")
	}
	if len(content) == 0 {
		return "", fmt.Errorf("la imagen está vacía")
	}
	if len(content) > maxImageSize {
		return "", fmt.Errorf("la imagen supera el máximo de 10MB")
	}

	auth, err := u.Auth.GetUploadAuth(ctx)
	if err != nil {
		return "", err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(content); err != nil {
		return "", err
	}
	fields := map[string]string{
		"fileName":  filename,
		"publicKey": u.PublicKey,
		"token":     auth.Token,
		"expire":    strconv.FormatInt(auth.Expire, 10),
		"signature": auth.Signature,
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.UploadURL, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	client := u.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("image cdn rejected upload with status %d: %s", resp.StatusCode, payload)
	}

	var decoded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if decoded.URL == "" {
		return "", fmt.Errorf("image cdn returned no url")
	}
	return decoded.URL, nil
}
