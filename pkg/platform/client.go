// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package platform

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	cicderrors "github.com/cicd-ai-toolkit/ci-changelog/pkg/errors"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/observability"
)

// DefaultTimeout bounds a single request to a CI server.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response is read into memory.
const maxBodySize = 32 << 20

// HTTPClient interface for HTTP operations (allows mocking in tests).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Auth holds the credentials attached to a request. Empty fields are skipped.
type Auth struct {
	Username     string
	Password     string
	PrivateToken string
}

// IsZero reports whether no credential is set.
func (a Auth) IsZero() bool {
	return a.Username == "" && a.Password == "" && a.PrivateToken == ""
}

func (a Auth) apply(req *http.Request) {
	if a.Username != "" || a.Password != "" {
		req.SetBasicAuth(a.Username, a.Password)
	}
	if a.PrivateToken != "" {
		req.Header.Set("PRIVATE-TOKEN", a.PrivateToken)
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client performs blocking GET requests against CI servers. It never retries;
// moving on to another build is the walker's job.
type Client struct {
	httpClient HTTPClient
	logger     observability.Logger
}

// NewClient creates a client with the given request timeout.
func NewClient(timeout time.Duration, logger observability.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewClientWithHTTP(&http.Client{Timeout: timeout}, logger)
}

// NewClientWithHTTP creates a client around an existing HTTP client.
func NewClientWithHTTP(httpClient HTTPClient, logger observability.Logger) *Client {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Client{httpClient: httpClient, logger: logger}
}

// Get issues one GET. Any status code is returned as a Response; only
// malformed URLs and transport failures produce an error, typed ErrTransport.
func (c *Client) Get(ctx context.Context, rawURL string, auth Auth) (*Response, error) {
	if err := validateBaseURL(rawURL); err != nil {
		return nil, cicderrors.TransportError("invalid request URL", err).WithContext("url", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, cicderrors.TransportError("failed to create request", errors.Wrap(ErrMalformedURL, err.Error()))
	}
	req.Header.Set("Accept", "application/json")
	auth.apply(req)

	c.logger.Debug("http request", observability.String("url", rawURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("http request failed", observability.String("url", rawURL), observability.Err(err))
		return nil, cicderrors.TransportError("request failed", errors.Wrapf(err, "GET %s", rawURL))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, cicderrors.TransportError("failed to read response", errors.Wrapf(err, "GET %s", rawURL))
	}

	c.logger.Debug("http response",
		observability.String("url", rawURL),
		observability.Int("status", resp.StatusCode))

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// GetOK is Get that also maps a non-200 status to ErrUpstreamStatus.
func (c *Client) GetOK(ctx context.Context, rawURL string, auth Auth) ([]byte, error) {
	resp, err := c.Get(ctx, rawURL, auth)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, cicderrors.UpstreamStatusError(resp.StatusCode, rawURL)
	}
	return resp.Body, nil
}
