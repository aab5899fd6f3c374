package mobbr

import (
	"context"
	"net/http"
	"time"

	"github.com/OpenListTeam/go-cache"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/pkg/utils"
)

type Script = map[string]interface{}

// Mobbr looks up the participation script registered for a URL.
type Mobbr struct {
	Endpoint string
	TTL      time.Duration
	client   *resty.Client
	cache    cache.ICache[Script]
}

func New(c conf.Script) *Mobbr {
	return &Mobbr{
		Endpoint: c.Endpoint,
		TTL:      c.CacheTTL.Std(),
		client: resty.New().
			SetTimeout(c.Timeout.Std()).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", "tunga"),
		cache: cache.NewMemCache[Script](),
	}
}

// Script returns the script of url, nil when the URL is empty or has none.
func (d *Mobbr) Script(ctx context.Context, url string) (Script, error) {
	if url == "" {
		return nil, nil
	}
	if s, ok := d.cache.Get(url); ok {
		return s, nil
	}
	var resp InfoResp
	_, err := d.request(ctx, http.MethodGet, func(req *resty.Request) {
		req.SetQueryParam("url", url)
	}, &resp)
	if err != nil {
		return nil, err
	}
	script := resp.Result.Script
	if d.TTL > 0 {
		d.cache.Set(url, script, cache.WithEx[Script](d.TTL))
	}
	log.Debugf("[mobbr] script of %s has %d keys", url, len(script))
	return script, nil
}

func (d *Mobbr) request(ctx context.Context, method string, callback func(req *resty.Request), resp interface{}) ([]byte, error) {
	req := d.client.R().SetContext(ctx)
	if callback != nil {
		callback(req)
	}
	res, err := req.Execute(method, d.Endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "mobbr request")
	}
	if res.IsError() {
		return nil, errors.Errorf("mobbr: unexpected status %d", res.StatusCode())
	}
	if resp != nil {
		if err = utils.Json.Unmarshal(res.Body(), resp); err != nil {
			return nil, errors.Wrap(err, "mobbr: malformed response")
		}
	}
	return res.Body(), nil
}
