package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"net"

	"github.com/google/uuid"

	"walletbridge/channel"
)

// Client calls a running bridge over its unix socket. Each call uses a
// fresh connection.
type Client struct {
	sockPath string
}

// NewClient returns a client for the socket at sockPath.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Call invokes method on ch and returns its result. Transport failures are
// returned as errors; failed calls are error results.
func (c *Client) Call(ctx context.Context, ch, method string, args channel.Args) (channel.Result, error) {
	resp, err := c.send(ctx, Request{
		Type:      TypeCall,
		Channel:   ch,
		Method:    method,
		Arguments: args,
	})
	if err != nil {
		return channel.Result{}, err
	}
	return resp.CallResult(), nil
}

// Channels lists the channels registered on the bridge.
func (c *Client) Channels(ctx context.Context) ([]string, error) {
	resp, err := c.send(ctx, Request{Type: TypeChannels})
	if err != nil {
		return nil, err
	}
	if resp.Type != TypeChannels {
		return nil, Error.New("%s: %s", resp.Code, resp.Message)
	}
	return resp.Channels, nil
}

// send opens a connection, writes the request, reads one response and
// closes.
func (c *Client) send(ctx context.Context, req Request) (*Response, error) {
	req.ID = uuid.NewString()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.sockPath)
	if err != nil {
		return nil, Error.New("cannot connect to bridge at %s: %v (is walletbridge serve running?)", c.sockPath, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	data, err := json.Marshal(req)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, Error.New("write failed: %v", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)
	if !scanner.Scan() {
		if ctx.Err() != nil {
			return nil, Error.Wrap(ctx.Err())
		}
		if err := scanner.Err(); err != nil {
			return nil, Error.New("read failed: %v", err)
		}
		return nil, Error.New("bridge closed connection")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, Error.New("parse response failed: %v", err)
	}
	if resp.ID != req.ID {
		return nil, Error.New("response id %q does not match request %q", resp.ID, req.ID)
	}
	return &resp, nil
}
