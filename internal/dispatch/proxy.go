package dispatch

// #region imports
import (
	"fmt"
	"net/url"
	"strings"
)

// #endregion

// #region proxy

// ParseProxy parses the stored tenant proxy string, formatted as
// "host:port" or "host:port@user:pass", into an HTTP proxy URL.
// An empty or blank string means no proxy and returns nil without
// error.
func ParseProxy(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var target string
	if hostPort, creds, ok := strings.Cut(raw, "@"); ok {
		target = fmt.Sprintf("http://%s@%s", creds, hostPort)
	} else {
		target = "http://" + raw
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse proxy %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse proxy %q: missing host", raw)
	}
	return u, nil
}

// #endregion proxy
