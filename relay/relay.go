package relay

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Relay forwards browser requests under the proxied prefix to the upstream
// tracking API. It is the sole holder of upstream session cookies: the
// browser never sees them, it only carries the relay's own opaque client
// cookie, which keys the credential store.
type Relay struct {
	upstreamBase string
	prefix       string
	creds        CredentialStore
	httpClient   *http.Client
	cookieName   string
	cookieMaxAge int
	log          *zap.Logger
}

// New creates a relay forwarding to upstreamBase. cookieMaxAge bounds the
// lifetime of the relay-issued client cookie, in seconds.
func New(upstreamBase, prefix string, creds CredentialStore, timeout time.Duration, cookieName string, cookieMaxAge int) *Relay {
	return &Relay{
		upstreamBase: strings.TrimRight(upstreamBase, "/"),
		prefix:       prefix,
		creds:        creds,
		httpClient:   &http.Client{Timeout: timeout},
		cookieName:   cookieName,
		cookieMaxAge: cookieMaxAge,
		log:          zap.L(),
	}
}

// Proxy is the gin handler bound to every method under the proxied prefix.
// Any transport error talking to upstream yields a terminal 500 with an
// error body; the relay never retries.
func (rl *Relay) Proxy(c *gin.Context) {
	clientID := rl.clientID(c)

	outURL := rl.upstreamBase + c.Request.URL.RequestURI()
	body, contentType, err := reconstructBody(c.Request)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, outURL, body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	req.Header.Set("Content-Type", contentType)
	if accept := c.GetHeader("Accept"); accept != "" {
		req.Header.Set("Accept", accept)
	}
	cookie, err := rl.creds.Get(c.Request.Context(), clientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	rl.log.Debug("forwarding",
		zap.String("method", c.Request.Method),
		zap.String("url", outURL),
		zap.Bool("credentialed", cookie != ""))

	resp, err := rl.httpClient.Do(req)
	if err != nil {
		rl.log.Warn("upstream transport error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Capture the upstream session cookie: the first semicolon-delimited
	// segment replaces this client's stored credential (last writer wins),
	// and the full header is re-emitted so the browser's store refreshes too.
	if setCookies := resp.Header.Values("Set-Cookie"); len(setCookies) > 0 {
		segment := strings.SplitN(setCookies[0], ";", 2)[0]
		if err := rl.creds.Set(c.Request.Context(), clientID, segment); err != nil {
			rl.log.Warn("storing upstream credential failed", zap.Error(err))
		}
		for _, sc := range setCookies {
			c.Writer.Header().Add("Set-Cookie", sc)
		}
	}

	for key, values := range resp.Header {
		switch key {
		case "Set-Cookie", "Content-Length", "Transfer-Encoding", "Connection":
			continue
		}
		for _, v := range values {
			c.Writer.Header().Add(key, v)
		}
	}
	c.Status(resp.StatusCode)
	_, _ = c.Writer.Write(respBody)

	// An explicit session delete is the one transition back to the
	// no-credential state for this client.
	if c.Request.Method == http.MethodDelete && c.Request.URL.Path == rl.prefix+"/session" {
		if err := rl.creds.Delete(c.Request.Context(), clientID); err != nil {
			rl.log.Warn("dropping upstream credential failed", zap.Error(err))
		}
	}
}

// clientID returns the opaque client-session identifier, issuing a fresh
// cookie when the browser does not present one yet.
func (rl *Relay) clientID(c *gin.Context) string {
	if id, err := c.Cookie(rl.cookieName); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetCookie(rl.cookieName, id, rl.cookieMaxAge, "/", "", false, true)
	return id
}

// reconstructBody rebuilds the outbound request body: form-encoded input is
// re-encoded as a URL-encoded string, everything else is forwarded verbatim
// (JSON passthrough).
func reconstructBody(r *http.Request) (io.Reader, string, error) {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return nil, contentTypeOrJSON(r), nil
	}
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return nil, "", err
		}
		return strings.NewReader(r.PostForm.Encode()), "application/x-www-form-urlencoded", nil
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(raw), contentTypeOrJSON(r), nil
}

func contentTypeOrJSON(r *http.Request) string {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/json"
}
