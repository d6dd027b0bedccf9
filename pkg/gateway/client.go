// Package gateway implements the HTTP client for the external
// WhatsApp-compatible messaging gateway. The client is stateless: every
// operation takes the full gateway configuration and validates it
// before any network I/O.
package gateway

import (
	"Prontu/pkg/core"
	"Prontu/pkg/logging"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Client issues requests to the gateway. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	logger     *logging.ComponentLogger
}

// NewClient creates a gateway client. timeout 0 leaves requests
// unbounded; callers cancel through the context instead.
func NewClient(timeout time.Duration) *Client {
	logger, err := logging.GetLogger("gateway", "client")
	if err != nil {
		fmt.Printf("gateway: WARNING - failed to initialize logger: %v\n", err)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Logf(format, args...)
	}
}

// GetStatus reads the instance connectivity state.
func (c *Client) GetStatus(ctx context.Context, cfg core.GatewayConfig) (InstanceState, error) {
	var out statusResponse
	err := c.getJSON(ctx, cfg, "status", "/instance/connectionState/"+cfg.InstanceName, &out)
	if err != nil {
		return InstanceState{}, err
	}
	return out.Instance, nil
}

// Connect asks the gateway to open the instance session. While the
// instance is unauthenticated the response carries a QR image.
func (c *Client) Connect(ctx context.Context, cfg core.GatewayConfig) (ConnectResult, error) {
	var out connectResponse
	err := c.getJSON(ctx, cfg, "connect", "/instance/connect/"+cfg.InstanceName, &out)
	if err != nil {
		return ConnectResult{}, err
	}
	result := ConnectResult{State: out.Instance.State}
	if out.Qrcode != nil {
		result.QRImage = out.Qrcode.Base64
	}
	return result, nil
}

// Disconnect logs the instance out. A 404 means the instance is already
// gone, which is the desired end state, so it is treated as success.
func (c *Client) Disconnect(ctx context.Context, cfg core.GatewayConfig) error {
	body, status, err := c.do(ctx, cfg, "disconnect", http.MethodDelete, "/instance/logout/"+cfg.InstanceName, nil, "")
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		c.logf("disconnect: instance %s already disconnected (404)", cfg.InstanceName)
		return nil
	}
	if status >= 300 {
		return &ProtocolError{Op: "disconnect", Status: status, Detail: extractErrorDetail(body)}
	}
	return nil
}

// SendText sends a plain text message to the given protocol address.
func (c *Client) SendText(ctx context.Context, cfg core.GatewayConfig, address, text string) (MessageAck, error) {
	payload, err := json.Marshal(sendTextRequest{Number: address, Text: text})
	if err != nil {
		return MessageAck{}, &DecodeError{Op: "sendText", Err: err}
	}

	body, status, err := c.do(ctx, cfg, "sendText", http.MethodPost,
		"/message/sendText/"+cfg.InstanceName, bytes.NewReader(payload), "application/json")
	if err != nil {
		return MessageAck{}, err
	}
	if status >= 300 {
		return MessageAck{}, &ProtocolError{Op: "sendText", Status: status, Detail: extractErrorDetail(body)}
	}

	var ack MessageAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return MessageAck{}, &DecodeError{Op: "sendText", Err: err}
	}
	return ack, nil
}

// SendMedia sends an image/video/audio attachment with an optional
// caption through the media endpoint family.
func (c *Client) SendMedia(ctx context.Context, cfg core.GatewayConfig, address string, att core.Attachment, caption string) (MessageAck, error) {
	fields := map[string]string{"number": address}
	if caption != "" {
		fields["caption"] = caption
	}
	return c.sendMultipart(ctx, cfg, "sendMedia",
		"/message/sendMedia/"+cfg.InstanceName, "media", att, fields)
}

// SendFile sends an arbitrary document through the file endpoint family.
func (c *Client) SendFile(ctx context.Context, cfg core.GatewayConfig, address string, att core.Attachment) (MessageAck, error) {
	return c.sendMultipart(ctx, cfg, "sendFile",
		"/message/sendFile/"+cfg.InstanceName, "file", att, map[string]string{"number": address})
}

// FetchHistory retrieves the conversation history for an address. The
// gateway's own ordering is not trusted: records are sorted ascending
// by timestamp before returning.
func (c *Client) FetchHistory(ctx context.Context, cfg core.GatewayConfig, address string) ([]RawMessage, error) {
	payload, err := json.Marshal(historyRequest{Where: historyWhere{Key: historyKey{RemoteJID: address}}})
	if err != nil {
		return nil, &DecodeError{Op: "fetchHistory", Err: err}
	}

	body, status, err := c.do(ctx, cfg, "fetchHistory", http.MethodPost,
		"/chat/findMessages/"+cfg.InstanceName, bytes.NewReader(payload), "application/json")
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, &ProtocolError{Op: "fetchHistory", Status: status, Detail: extractErrorDetail(body)}
	}

	// A records field that is not an array is a decode failure, never an
	// empty history.
	var out historyResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &DecodeError{Op: "fetchHistory", Err: err}
	}

	records := out.Messages.Records
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].MessageTimestamp < records[j].MessageTimestamp
	})
	c.logf("fetchHistory: %d records for %s", len(records), address)
	return records, nil
}

func (c *Client) getJSON(ctx context.Context, cfg core.GatewayConfig, op, path string, out interface{}) error {
	body, status, err := c.do(ctx, cfg, op, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	if status >= 300 {
		return &ProtocolError{Op: op, Status: status, Detail: extractErrorDetail(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}

func (c *Client) sendMultipart(ctx context.Context, cfg core.GatewayConfig, op, path, fileField string, att core.Attachment, fields map[string]string) (MessageAck, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return MessageAck{}, &TransportError{Op: op, Err: err}
		}
	}
	part, err := writer.CreateFormFile(fileField, att.FileName)
	if err != nil {
		return MessageAck{}, &TransportError{Op: op, Err: err}
	}
	if _, err := part.Write(att.Data); err != nil {
		return MessageAck{}, &TransportError{Op: op, Err: err}
	}
	if err := writer.Close(); err != nil {
		return MessageAck{}, &TransportError{Op: op, Err: err}
	}

	body, status, err := c.do(ctx, cfg, op, http.MethodPost, path, &buf, writer.FormDataContentType())
	if err != nil {
		return MessageAck{}, err
	}
	if status >= 300 {
		return MessageAck{}, &ProtocolError{Op: op, Status: status, Detail: extractErrorDetail(body)}
	}

	var ack MessageAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return MessageAck{}, &DecodeError{Op: op, Err: err}
	}
	return ack, nil
}

// do validates the config, issues the request and returns the raw body
// and status. Transport failures (no response) become TransportError;
// interpreting the status is left to the operation.
func (c *Client) do(ctx context.Context, cfg core.GatewayConfig, op, method, path string, body io.Reader, contentType string) ([]byte, int, error) {
	if !cfg.Complete() {
		c.logf("%s: rejected, gateway configuration incomplete", op)
		return nil, 0, &ConfigurationError{Reason: "baseUrl, apiKey and instanceName are all required"}
	}

	url := BaseURL(cfg.BaseURL) + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, 0, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("apikey", cfg.APIKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logf("%s: transport failure: %v", op, err)
		return nil, 0, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &TransportError{Op: op, Err: err}
	}
	c.logf("%s %s -> %d (%d bytes)", method, url, resp.StatusCode, len(data))
	return data, resp.StatusCode, nil
}

// BaseURL normalizes the configured base URL: https:// is assumed when
// no scheme is given, and a trailing slash is stripped before path
// concatenation.
func BaseURL(raw string) string {
	url := strings.TrimSpace(raw)
	if url != "" && !strings.Contains(url, "://") {
		url = "https://" + url
	}
	return strings.TrimRight(url, "/")
}
