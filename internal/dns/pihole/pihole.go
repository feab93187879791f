package pihole

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-logr/logr"

	"github.com/yuriy-kovalchuk/tailsync/internal/dns"
)

func init() {
	dns.Register("pihole", func(log logr.Logger, settings map[string]string) (dns.Store, error) {
		return New(log, settings)
	})
}

// Store implements dns.Store for the Pi-hole v6 API.
type Store struct {
	baseURL  string
	apiToken string
	client   *http.Client
	log      logr.Logger
}

// New creates a Pi-hole store from the given settings map.
// Required settings: base_url, api_token.
// Optional settings: skip_tls_verify (default false).
func New(log logr.Logger, settings map[string]string) (*Store, error) {
	baseURL := settings["base_url"]
	if baseURL == "" {
		return nil, fmt.Errorf("pihole: missing required setting 'base_url'")
	}
	apiToken := settings["api_token"]
	if apiToken == "" {
		return nil, fmt.Errorf("pihole: missing required setting 'api_token'")
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if v := settings["skip_tls_verify"]; v == "true" {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Store{
		baseURL:  baseURL,
		apiToken: apiToken,
		client:   &http.Client{Transport: transport},
		log:      log,
	}, nil
}

// doRequest builds and executes an HTTP request against the Pi-hole API.
// sid, when non-empty, is sent as the session header.
func (s *Store) doRequest(ctx context.Context, method, path, sid string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("pihole: marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	url := strings.TrimRight(s.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("pihole: build request: %w", err)
	}

	if sid != "" {
		req.Header.Set("X-FTL-SID", sid)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pihole: %s %s: %w", method, path, err)
	}
	return resp, nil
}

// Connect authenticates with the API token and returns a session bound to
// the issued sid.
func (s *Store) Connect(ctx context.Context) (dns.Session, error) {
	body := map[string]string{"password": s.apiToken}
	resp, err := s.doRequest(ctx, http.MethodPost, "auth", "", body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dns.ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: auth returned status %d: %s", dns.ErrAuth, resp.StatusCode, string(respBody))
	}

	var result struct {
		Session struct {
			Valid bool   `json:"valid"`
			SID   string `json:"sid"`
		} `json:"session"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode auth response: %v", dns.ErrAuth, err)
	}
	if !result.Session.Valid || result.Session.SID == "" {
		return nil, fmt.Errorf("%w: credential rejected", dns.ErrAuth)
	}

	s.log.V(1).Info("authenticated", "url", s.baseURL)
	return &session{store: s, sid: result.Session.SID}, nil
}

// session is an authenticated handle to one Pi-hole instance.
type session struct {
	store *Store
	sid   string
}

// configBody is the nested shape the config endpoints exchange; only the
// dns.hosts field is touched.
type configBody struct {
	Config struct {
		DNS struct {
			Hosts []string `json:"hosts"`
		} `json:"dns"`
	} `json:"config"`
}

// ReadHosts fetches the current custom host table.
func (ss *session) ReadHosts(ctx context.Context) (dns.RecordSet, error) {
	resp, err := ss.store.doRequest(ctx, http.MethodGet, "config/dns/hosts", ss.sid, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dns.ErrRead, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: config read returned status %d", dns.ErrRead, resp.StatusCode)
	}

	var cfg configBody
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: decode config response: %v", dns.ErrRead, err)
	}

	records := dns.NewRecordSet()
	for _, line := range cfg.Config.DNS.Hosts {
		r, ok := dns.ParseHostLine(line)
		if !ok {
			ss.store.log.Info("skipping malformed hosts line", "line", line)
			continue
		}
		records.Add(r)
	}
	return records, nil
}

// WriteHosts replaces the entire custom host table with records.
func (ss *session) WriteHosts(ctx context.Context, records dns.RecordSet) error {
	var body configBody
	body.Config.DNS.Hosts = dns.FormatHosts(records)

	resp, err := ss.store.doRequest(ctx, http.MethodPatch, "config", ss.sid, body)
	if err != nil {
		return fmt.Errorf("%w: %v", dns.ErrWrite, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: config write returned status %d: %s", dns.ErrWrite, resp.StatusCode, string(respBody))
	}

	var echoed configBody
	if err := json.NewDecoder(resp.Body).Decode(&echoed); err != nil {
		return fmt.Errorf("%w: decode config write response: %v", dns.ErrWrite, err)
	}
	// The store accepted the payload; a count mismatch in the echoed
	// config is suspicious but not a failure.
	if got, want := len(echoed.Config.DNS.Hosts), len(body.Config.DNS.Hosts); got != want {
		ss.store.log.Info("store echoed unexpected host count", "sent", want, "echoed", got)
	}

	ss.store.log.V(1).Info("host table replaced", "records", records.Len())
	return nil
}

// Close tears down the session. Failures are returned for the caller to log.
func (ss *session) Close(ctx context.Context) error {
	resp, err := ss.store.doRequest(ctx, http.MethodDelete, "auth", ss.sid, nil)
	if err != nil {
		return fmt.Errorf("pihole: logout: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("pihole: logout returned status %d", resp.StatusCode)
	}
	return nil
}
