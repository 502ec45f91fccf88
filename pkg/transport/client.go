package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/plcnet/pkg/tags"
)

// DefaultRequestTimeout bounds one tag read round trip.
const DefaultRequestTimeout = 2 * time.Second

// TagClient reads tags published by peer PLCs. Every Receive is exactly one
// network round trip on a fresh socket; values are never cached across
// iterations.
type TagClient struct {
	factory SocketFactory
	timeout time.Duration
}

// NewTagClient creates a client using the given factory. A non-positive
// timeout falls back to DefaultRequestTimeout.
func NewTagClient(factory SocketFactory, timeout time.Duration) *TagClient {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &TagClient{factory: factory, timeout: timeout}
}

// Receive reads one tag from the peer listening at addr.
//
// A reply that names the tag as unknown maps to ErrTagDoesNotExist; any
// transport failure comes back as-is for the caller's retry policy.
func (c *TagClient) Receive(ctx context.Context, tag tags.Tag, addr string) (float64, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < c.timeout {
			return c.receive(tag, addr, remaining)
		}
	}
	return c.receive(tag, addr, c.timeout)
}

func (c *TagClient) receive(tag tags.Tag, addr string, timeout time.Duration) (float64, error) {
	sock, err := c.factory.NewReqSocket()
	if err != nil {
		return 0, fmt.Errorf("failed to create REQ socket: %w", err)
	}
	defer sock.Close()

	if err := sock.SetSendDeadline(timeout); err != nil {
		return 0, err
	}
	if err := sock.SetRecvDeadline(timeout); err != nil {
		return 0, err
	}
	if err := sock.Dial(addr); err != nil {
		return 0, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	req := TagRequest{
		RequestID: uuid.NewString(),
		Tag:       tag.Name,
		Index:     tag.Index,
	}
	data, err := json.Marshal(req)
	if err != nil {
		return 0, err
	}
	if err := sock.Send(data); err != nil {
		return 0, fmt.Errorf("failed to send tag request to %s: %w", addr, err)
	}

	raw, err := sock.Recv()
	if err != nil {
		return 0, fmt.Errorf("no reply from %s: %w", addr, err)
	}

	var resp TagResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return 0, fmt.Errorf("malformed reply from %s: %w", addr, err)
	}
	if !resp.Found {
		if strings.Contains(resp.Error, tags.ErrTagDoesNotExist.Error()) {
			return 0, tags.NotFoundError("Receive", tag.Name, addr)
		}
		return 0, fmt.Errorf("peer %s refused tag %s: %s", addr, tag.Name, resp.Error)
	}
	return ParseValue(resp.Value)
}
