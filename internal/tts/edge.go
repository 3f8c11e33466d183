// Package tts synthesizes speech through the Microsoft Edge read-aloud
// service, the same free neural-voice endpoint the Edge browser uses.
//
// The service speaks a small websocket protocol: the client sends a
// speech.config message describing the output format, then an SSML message
// tagged with a request ID. The server streams text frames (turn.start,
// audio.metadata, turn.end) and binary frames carrying the audio payload.
// One connection serves one synthesis request.
package tts

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/selimbr/askaloud/internal/logger"
)

const (
	wssEndpoint        = "wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"
	trustedClientToken = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"
	wssOrigin          = "chrome-extension://jdiccldimpdaibmpdkjnbmckianbfold"
	userAgent          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 Edg/122.0.0.0"
)

// Synthesizer renders text to audio bytes. Implemented by Client and by
// test fakes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Voice() string
}

// Option configures the Edge TTS client.
type Option func(*Client)

// WithVoice sets the neural voice.
func WithVoice(voice string) Option {
	return func(c *Client) {
		if voice != "" {
			c.voice = voice
		}
	}
}

// WithOutputFormat sets the audio output format requested from the service.
func WithOutputFormat(format string) Option {
	return func(c *Client) {
		c.format = format
	}
}

// WithTimeout bounds a single synthesis request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// Client synthesizes speech via the Edge read-aloud endpoint.
type Client struct {
	voice   string
	format  string
	timeout time.Duration
	dialer  *websocket.Dialer
	log     *logger.Logger
}

// NewClient creates an Edge TTS client.
func NewClient(log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		voice:   DefaultVoice,
		format:  DefaultOutputFormat,
		timeout: DefaultTimeout,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Voice returns the configured voice name.
func (c *Client) Voice() string { return c.voice }

// Synthesize renders text to audio bytes. It opens a fresh connection,
// performs one synthesis turn, and closes it. Any network or protocol
// failure is returned as-is; the caller decides whether it is fatal.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	connID := requestID()
	u := fmt.Sprintf("%s?TrustedClientToken=%s&ConnectionId=%s", wssEndpoint, trustedClientToken, connID)

	header := http.Header{}
	header.Set("Origin", wssOrigin)
	header.Set("User-Agent", userAgent)

	conn, resp, err := c.dialer.DialContext(ctx, u, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("tts connect failed (%s): %w", resp.Status, err)
		}
		return nil, fmt.Errorf("tts connect failed: %w", err)
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	conn.SetReadDeadline(deadline)
	conn.SetWriteDeadline(deadline)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(c.speechConfig())); err != nil {
		return nil, fmt.Errorf("sending speech config: %w", err)
	}

	reqID := requestID()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(c.ssmlRequest(reqID, text))); err != nil {
		return nil, fmt.Errorf("sending ssml: %w", err)
	}

	c.log.Debug("edge tts: request %s, %d chars, voice %s", reqID[:8], len(text), c.voice)

	var audio bytes.Buffer
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("reading tts response: %w", err)
		}

		switch msgType {
		case websocket.TextMessage:
			if messagePath(msg) == "turn.end" {
				if audio.Len() == 0 {
					return nil, errors.New("tts returned no audio")
				}
				c.log.Debug("edge tts: request %s done, %d bytes", reqID[:8], audio.Len())
				return audio.Bytes(), nil
			}
		case websocket.BinaryMessage:
			payload, ok := audioPayload(msg)
			if !ok {
				continue
			}
			audio.Write(payload)
		}
	}
}

// speechConfig builds the one-off configuration message sent right after
// connecting.
func (c *Client) speechConfig() string {
	config := `{"context":{"synthesis":{"audio":{"metadataoptions":` +
		`{"sentenceBoundaryEnabled":"false","wordBoundaryEnabled":"false"},` +
		`"outputFormat":"` + c.format + `"}}}}`

	return "X-Timestamp:" + timestamp() + "\r\n" +
		"Content-Type:application/json; charset=utf-8\r\n" +
		"Path:speech.config\r\n\r\n" +
		config
}

// ssmlRequest builds the synthesis request message for one piece of text.
func (c *Client) ssmlRequest(reqID, text string) string {
	return "X-RequestId:" + reqID + "\r\n" +
		"X-Timestamp:" + timestamp() + "\r\n" +
		"Content-Type:application/ssml+xml\r\n" +
		"Path:ssml\r\n\r\n" +
		buildSSML(c.voice, text)
}

var ssmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// buildSSML wraps text in the SSML envelope the service expects.
func buildSSML(voice, text string) string {
	return fmt.Sprintf(
		`<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-US'>`+
			`<voice name='%s'>%s</voice></speak>`,
		voice, ssmlEscaper.Replace(text),
	)
}

// messagePath extracts the Path header from a text frame. Text frames are
// CRLF-separated headers, a blank line, then an optional body.
func messagePath(msg []byte) string {
	head, _, _ := strings.Cut(string(msg), "\r\n\r\n")
	for _, line := range strings.Split(head, "\r\n") {
		if name, value, ok := strings.Cut(line, ":"); ok && strings.EqualFold(strings.TrimSpace(name), "Path") {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// audioPayload extracts the audio bytes from a binary frame. The frame is a
// big-endian uint16 header length, the header itself, then the payload.
// Frames whose header is not Path:audio carry no playable data.
func audioPayload(frame []byte) ([]byte, bool) {
	if len(frame) < 2 {
		return nil, false
	}
	headerLen := int(binary.BigEndian.Uint16(frame[:2]))
	if 2+headerLen > len(frame) {
		return nil, false
	}
	header := string(frame[2 : 2+headerLen])
	if !strings.Contains(header, "Path:audio") {
		return nil, false
	}
	return frame[2+headerLen:], true
}

// requestID returns a UUID with the dashes stripped, the format the service
// expects for ConnectionId and X-RequestId.
func requestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// timestamp renders the X-Timestamp header value.
func timestamp() string {
	return time.Now().UTC().Format("Mon Jan 2 2006 15:04:05") + " GMT+0000 (Coordinated Universal Time)"
}
