package client

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog/log"
)

// UploadProgress is one progress event emitted while an asset uploads.
// Total is -1 when the size is unknown.
type UploadProgress struct {
	Sent  int64
	Total int64
}

// progressReader counts bytes as they leave and reports each read. Events
// are dropped rather than block the upload when the receiver lags.
type progressReader struct {
	r      io.Reader
	total  int64
	sent   int64
	events chan<- UploadProgress
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.events != nil {
			select {
			case p.events <- UploadProgress{Sent: p.sent, Total: p.total}:
			default:
			}
		}
	}
	return n, err
}

// UploadCourseAsset streams a file to a course as multipart form data,
// emitting progress events as bytes go out. The caller owns the events
// channel and closes nothing; the last event carries Sent == Total on
// success. Cancelling ctx aborts the transfer.
//
// A 401 mid-upload triggers one token refresh and a single re-send, but
// only when src is seekable; a one-shot stream surfaces the 401 as-is.
func (c *Client) UploadCourseAsset(ctx context.Context, courseID int, name string, src io.Reader, size int64, events chan<- UploadProgress) (*AssetUploadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, Normalize(err)
	}
	if courseID <= 0 {
		return nil, fmt.Errorf("course id must be positive")
	}
	if name == "" {
		return nil, fmt.Errorf("asset name cannot be empty")
	}

	token, err := c.bearerToken(ctx, callOptions{})
	if err != nil {
		return nil, Normalize(err)
	}

	status, respBody, err := c.sendAsset(ctx, courseID, name, src, size, events, token)
	if err != nil {
		return nil, Normalize(err)
	}

	if status == http.StatusUnauthorized {
		seeker, seekable := src.(io.Seeker)
		_, hasRefresh := c.tokens.RefreshTokenValue()
		if seekable && hasRefresh {
			newToken, rerr := c.coord.Refresh(ctx)
			if rerr != nil {
				return nil, Normalize(rerr)
			}
			if _, err := seeker.Seek(0, io.SeekStart); err != nil {
				return nil, fmt.Errorf("failed to rewind asset for retry: %w", err)
			}
			log.Debug().Int("course_id", courseID).Str("asset", name).Msg("Retrying upload with refreshed token")
			status, respBody, err = c.sendAsset(ctx, courseID, name, src, size, events, newToken)
			if err != nil {
				return nil, Normalize(err)
			}
		}
	}

	if status < 200 || status >= 300 {
		return nil, newHTTPError(status, respBody)
	}

	c.cache.Invalidate(fmt.Sprintf("/instructor/courses/%d/", courseID))

	translated, err := fromWire(respBody)
	if err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	var result AssetUploadResult
	if err := unmarshalLoose(translated, &result); err != nil {
		return nil, fmt.Errorf("failed to parse upload response: %w", err)
	}
	return &result, nil
}

// sendAsset performs one multipart POST. The body is produced by a pipe
// so arbitrarily large files never sit in memory, and the request uses an
// uncapped client: a fixed timeout would kill any sizable upload, so the
// ceiling here is the caller's ctx.
func (c *Client) sendAsset(ctx context.Context, courseID int, name string, src io.Reader, size int64, events chan<- UploadProgress, token string) (int, []byte, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		counted := &progressReader{r: wrapWithUploadRateLimiter(src), total: size, events: events}
		if _, err := io.Copy(part, counted); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	url := fmt.Sprintf("%s/instructor/courses/%d/assets/", c.baseURL, courseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	uploadClient := &http.Client{}
	if c.http != nil && c.http.Transport != nil {
		uploadClient.Transport = c.http.Transport
	}
	resp, err := uploadClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer closeResponseBody(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read upload response: %w", err)
	}
	return resp.StatusCode, body, nil
}
