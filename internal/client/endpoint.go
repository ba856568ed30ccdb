package client

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// TelemetryPath is appended to the resolved base URL.
const TelemetryPath = "/telemetry"

// ResolveEndpoint returns the telemetry URL for base. An absolute base
// (scheme and host present) is used as-is; anything else is treated as a
// path on origin, e.g. "/api" + "http://host:8080" → "http://host:8080/api/telemetry".
func ResolveEndpoint(base, origin string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", errors.New("backend url is empty")
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse backend url %q: %w", base, err)
	}
	if u.Scheme != "" && u.Host != "" {
		return strings.TrimRight(base, "/") + TelemetryPath, nil
	}

	o, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return "", fmt.Errorf("parse origin %q: %w", origin, err)
	}
	if o.Scheme == "" || o.Host == "" {
		return "", fmt.Errorf("backend url %q is relative and origin %q is not absolute", base, origin)
	}

	host := o.Host
	path := strings.TrimRight(base, "/")
	if u.Host != "" {
		// Scheme-relative ("//host/api") keeps its own host.
		host = u.Host
		path = strings.TrimRight(u.Path, "/")
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return o.Scheme + "://" + host + path + TelemetryPath, nil
}
