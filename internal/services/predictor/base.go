package predictor

import (
    "bytes"
    "context"
    "fmt"
    "io"
    "mime/multipart"
    "time"

    "PowerCast/pkg/config"
    xhttp "PowerCast/pkg/http"
)

// HTTPServiceBase holds the HTTP client and base URL shared by the prediction calls.
type HTTPServiceBase struct {
    baseURL string
    client  *xhttp.Client
}

// NewHTTPServiceBase builds an HTTP client with timeout and base URL from config.
func NewHTTPServiceBase(cfg *config.Config, opts ...xhttp.ClientOption) *HTTPServiceBase {
    timeout := cfg.Predictor.Timeout
    if timeout <= 0 {
        timeout = 30 * time.Second
    }
    opts = append([]xhttp.ClientOption{xhttp.WithTimeout(timeout)}, opts...)
    return &HTTPServiceBase{
        baseURL: cfg.Predictor.BaseURL,
        client:  xhttp.NewClient(opts...),
    }
}

// GetRaw issues GET baseURL+path and returns the body of a 2xx response.
// Non-2xx responses come back as *xhttp.StatusError.
func (b *HTTPServiceBase) GetRaw(ctx context.Context, path string) ([]byte, error) {
    var body []byte
    err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
        Method:  xhttp.MethodGet,
        URL:     b.baseURL + path,
        Headers: map[string]string{"Accept": "application/json"},
    }, &body)
    if err != nil {
        return nil, fmt.Errorf("get %s: %w", path, err)
    }
    return body, nil
}

// PostFile uploads r as multipart field `field` and returns the body of a 2xx response.
func (b *HTTPServiceBase) PostFile(ctx context.Context, path string, query map[string][]string, field, filename string, r io.Reader) ([]byte, error) {
    var form bytes.Buffer
    mw := multipart.NewWriter(&form)
    part, err := mw.CreateFormFile(field, filename)
    if err != nil {
        return nil, fmt.Errorf("create form file: %w", err)
    }
    if _, err := io.Copy(part, r); err != nil {
        return nil, fmt.Errorf("copy upload: %w", err)
    }
    if err := mw.Close(); err != nil {
        return nil, fmt.Errorf("close form: %w", err)
    }

    var body []byte
    err = b.client.SendAndParse(ctx, &xhttp.RequestOptions{
        Method:      xhttp.MethodPost,
        URL:         b.baseURL + path,
        QueryParams: query,
        Headers: map[string]string{
            "Content-Type": mw.FormDataContentType(),
            "Accept":       "application/json",
        },
        Body: &form,
    }, &body)
    if err != nil {
        return nil, fmt.Errorf("post %s: %w", path, err)
    }
    return body, nil
}
