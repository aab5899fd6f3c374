package common

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tunga-io/tunga/internal/conf"
)

// GetApiUrl is the public base URL of the service, taken from the config
// when set and from the request otherwise.
func GetApiUrl(r *http.Request) string {
	if conf.Conf != nil && conf.Conf.Scheme.SiteURL != "" {
		return strings.TrimSuffix(conf.Conf.Scheme.SiteURL, "/")
	}
	if r == nil {
		return ""
	}
	protocol := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		protocol = "https"
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return fmt.Sprintf("%s://%s", protocol, host)
}
