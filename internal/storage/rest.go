// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxResponseBytes caps a REST response body.
const maxResponseBytes = 8 << 20

// RESTOption configures a [RESTBackend].
type RESTOption func(*RESTBackend)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) RESTOption {
	return func(r *RESTBackend) {
		r.client = client
	}
}

// RESTBackend talks to a PostgREST-compatible endpoint such as Supabase.
//
// Each call is a single HTTP round trip with no retries. Any transport
// failure, non-2xx status or undecodable body is a [*BackendError], except
// 409 which is reported as [ErrConflict].
type RESTBackend struct {
	baseURL string
	key     string
	client  *http.Client
}

// NewRESTBackend returns a backend for the datastore at baseURL
// authenticated with key. timeout bounds every round trip.
func NewRESTBackend(baseURL, key string, timeout time.Duration, options ...RESTOption) *RESTBackend {
	backend := &RESTBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		client:  &http.Client{Timeout: timeout},
	}
	for _, option := range options {
		option(backend)
	}
	return backend
}

// Query implements [Backend].
func (r *RESTBackend) Query(ctx context.Context, resource string, filter Filter) ([]Row, error) {
	params := filterParams(filter)
	params.Set("select", "*")
	if len(filter.Orders) > 0 {
		orders := make([]string, 0, len(filter.Orders))
		for _, order := range filter.Orders {
			direction := "asc"
			if order.Desc {
				direction = "desc"
			}
			orders = append(orders, order.Column+"."+direction)
		}
		params.Set("order", strings.Join(orders, ","))
	}
	if filter.Limit > 0 {
		params.Set("limit", strconv.Itoa(filter.Limit))
	}

	return r.do(ctx, http.MethodGet, resource, params, nil)
}

// Insert implements [Backend].
func (r *RESTBackend) Insert(ctx context.Context, resource string, record Row) (Row, error) {
	rows, err := r.do(ctx, http.MethodPost, resource, nil, record)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return record, nil
	}
	return rows[0], nil
}

// Update implements [Backend].
func (r *RESTBackend) Update(ctx context.Context, resource string, filter Filter, patch Row) error {
	if filter.IsEmpty() {
		return ErrUnfiltered
	}
	_, err := r.do(ctx, http.MethodPatch, resource, filterParams(filter), patch)
	return err
}

// Delete implements [Backend].
func (r *RESTBackend) Delete(ctx context.Context, resource string, filter Filter) error {
	if filter.IsEmpty() {
		return ErrUnfiltered
	}
	_, err := r.do(ctx, http.MethodDelete, resource, filterParams(filter), nil)
	return err
}

// Ping implements [Pinger] by requesting the API root.
func (r *RESTBackend) Ping(ctx context.Context) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/rest/v1/", nil)
	if err != nil {
		return err
	}
	r.authorize(request)

	response, err := r.client.Do(request)
	if err != nil {
		return &BackendError{Backend: "rest", Op: "ping", Err: err}
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return &BackendError{Backend: "rest", Op: "ping", Status: response.StatusCode, Err: errors.New(response.Status)}
	}
	return nil
}

func (r *RESTBackend) authorize(request *http.Request) {
	request.Header.Set("apikey", r.key)
	request.Header.Set("Authorization", "Bearer "+r.key)
}

func (r *RESTBackend) do(ctx context.Context, method, resource string, params url.Values, body Row) ([]Row, error) {
	fail := func(status int, err error) error {
		return &BackendError{Backend: "rest", Op: strings.ToLower(method), Resource: resource, Status: status, Err: err}
	}

	endpoint := r.baseURL + "/rest/v1/" + url.PathEscape(resource)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("storage_rest_encode_failed: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fail(0, err)
	}
	r.authorize(request)
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Prefer", "return=representation")

	response, err := r.client.Do(request)
	if err != nil {
		return nil, fail(0, err)
	}
	defer response.Body.Close()

	data, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fail(response.StatusCode, err)
	}

	if response.StatusCode == http.StatusConflict {
		return nil, fmt.Errorf("%w: %s: %s", ErrConflict, resource, strings.TrimSpace(string(data)))
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fail(response.StatusCode, errors.New(strings.TrimSpace(string(data))))
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	rows, err := decodeRows(data)
	if err != nil {
		return nil, fail(response.StatusCode, fmt.Errorf("malformed response: %w", err))
	}
	return rows, nil
}

// filterParams renders equality conditions as PostgREST "col=eq.value" params.
func filterParams(filter Filter) url.Values {
	params := url.Values{}
	for _, condition := range filter.Conditions {
		params.Add(condition.Column, "eq."+textOf(condition.Value))
	}
	return params
}
