// Package zotero talks to the Zotero Web API v3. The Client implements
// both the read-only store port and the live mutator port; DryRun is
// the mutator stand-in that never touches the network.
package zotero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"zotsync/internal/ports"
)

const (
	defaultBaseURL = "https://api.zotero.org"
	requestTimeout = 20 * time.Second
	searchLimit    = 25
	collectionScan = 100
)

// APIError is a non-2xx response. It keeps the status code and a body
// snippet so skip/failure reports carry enough context to diagnose.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Client is an authenticated Zotero API client for one user or group
// library.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// Ensure Client implements both remote ports
var (
	_ ports.RemoteStore   = (*Client)(nil)
	_ ports.RemoteMutator = (*Client)(nil)
)

// NewClient creates a client for the given library. userID is the user
// ID, or the group ID when useGroup is set.
func NewClient(apiKey, userID string, useGroup bool) *Client {
	prefix := "users"
	if useGroup {
		prefix = "groups"
	}
	return &Client{
		baseURL: fmt.Sprintf("%s/%s/%s", defaultBaseURL, prefix, userID),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// item is the wire shape of one Zotero item.
type item struct {
	Key     string          `json:"key"`
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// itemData is the typed subset of the data object the sync logic needs.
type itemData struct {
	Key         string    `json:"key"`
	Version     int       `json:"version"`
	Title       string    `json:"title"`
	Creators    []creator `json:"creators"`
	Collections []string  `json:"collections"`
}

type creator struct {
	CreatorType string `json:"creatorType"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
}

// toRecord flattens a wire item into a ports.RemoteRecord, keeping the
// raw data fields for update round-trips.
func toRecord(it item) ports.RemoteRecord {
	var data itemData
	var fields map[string]any
	if len(it.Data) > 0 {
		// Decode errors leave the typed fields zero; the record still
		// carries its key.
		_ = json.Unmarshal(it.Data, &data)
		_ = json.Unmarshal(it.Data, &fields)
	}

	key := it.Key
	if key == "" {
		key = data.Key
	}
	version := it.Version
	if version == 0 {
		version = data.Version
	}

	var lastNames []string
	for _, c := range data.Creators {
		if c.CreatorType == "author" && c.LastName != "" {
			lastNames = append(lastNames, c.LastName)
		}
	}

	return ports.RemoteRecord{
		Key:             key,
		Title:           data.Title,
		AuthorLastNames: strings.Join(lastNames, " "),
		Version:         version,
		Collections:     data.Collections,
		Fields:          fields,
	}
}

// SearchParents runs a fuzzy title-mode search restricted to books.
func (c *Client) SearchParents(ctx context.Context, query string) ([]ports.RemoteRecord, error) {
	params := url.Values{
		"q":        {query},
		"qmode":    {"title"},
		"itemType": {"book"},
		"limit":    {strconv.Itoa(searchLimit)},
	}
	resp, err := c.get(ctx, "/items", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("search items", resp)
	}
	return decodeRecords(resp.Body)
}

// GetParent fetches one item, including the raw fields and the version
// needed for a guarded update.
func (c *Client) GetParent(ctx context.Context, key string) (*ports.RemoteRecord, error) {
	resp, err := c.get(ctx, "/items/"+key, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("get item", resp)
	}

	var it item
	if err := json.NewDecoder(resp.Body).Decode(&it); err != nil {
		return nil, fmt.Errorf("decode item %s: %w", key, err)
	}
	rec := toRecord(it)
	if v := headerVersion(resp); v > 0 {
		rec.Version = v
	}
	return &rec, nil
}

// ListRecent lists recently modified items, newest first. A negative
// sinceVersion means no lower bound.
func (c *Client) ListRecent(ctx context.Context, sinceVersion int) ([]ports.RemoteRecord, error) {
	params := url.Values{
		"limit":     {strconv.Itoa(searchLimit)},
		"sort":      {"dateModified"},
		"direction": {"desc"},
	}
	if sinceVersion >= 0 {
		params.Set("since", strconv.Itoa(sinceVersion))
	}
	resp, err := c.get(ctx, "/items", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("list recent items", resp)
	}
	return decodeRecords(resp.Body)
}

// FindCollection returns the key of the named collection, or "" when
// no collection has exactly that name.
func (c *Client) FindCollection(ctx context.Context, name string) (string, error) {
	params := url.Values{
		"q":     {name},
		"limit": {strconv.Itoa(collectionScan)},
	}
	resp, err := c.get(ctx, "/collections", params)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError("search collections", resp)
	}

	var colls []struct {
		Key  string `json:"key"`
		Data struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&colls); err != nil {
		return "", fmt.Errorf("decode collections: %w", err)
	}
	for _, coll := range colls {
		if coll.Data.Name == name {
			return coll.Key, nil
		}
	}
	return "", nil
}

// CreateParent creates a book item.
func (c *Client) CreateParent(ctx context.Context, fields ports.ParentFields) (*ports.CreateResult, error) {
	data := map[string]any{
		"itemType": "book",
		"title":    fields.Title,
	}
	if fields.Author != "" {
		data["creators"] = []map[string]string{
			{"creatorType": "author", "firstName": "", "lastName": fields.Author},
		}
	} else {
		data["creators"] = []map[string]string{}
	}
	if fields.CollectionKey != "" {
		data["collections"] = []string{fields.CollectionKey}
	}
	return c.post(ctx, "create book", "/items", []any{data})
}

// CreateChild creates a note item attached to a parent.
func (c *Client) CreateChild(ctx context.Context, parentKey, noteHTML string) (*ports.CreateResult, error) {
	payload := []any{map[string]any{
		"itemType":   "note",
		"parentItem": parentKey,
		"note":       noteHTML,
	}}
	return c.post(ctx, "create note", "/items", payload)
}

// UpdateParent writes back an item's raw fields, guarded by the version
// the fields were read at.
func (c *Client) UpdateParent(ctx context.Context, key string, fields map[string]any, versionGuard int) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode item %s: %w", key, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/items/"+key, bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(req, true)
	if versionGuard > 0 {
		req.Header.Set("If-Unmodified-Since-Version", strconv.Itoa(versionGuard))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("update item %s: %w", key, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		return apiError("update item", resp)
	}
}

// CreateCollection creates a top-level collection.
func (c *Client) CreateCollection(ctx context.Context, name string) (*ports.CreateResult, error) {
	payload := []any{map[string]any{
		"name":             name,
		"parentCollection": false,
	}}
	return c.post(ctx, "create collection", "/collections", payload)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, false)
	return c.http.Do(req)
}

func (c *Client) post(ctx context.Context, op, path string, payload any) (*ports.CreateResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encode payload: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, true)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, apiError(op, resp)
	}
	return decodeCreateResult(resp)
}

func (c *Client) setHeaders(req *http.Request, withJSON bool) {
	req.Header.Set("Zotero-API-Key", c.apiKey)
	if withJSON {
		req.Header.Set("Content-Type", "application/json")
	}
}

// decodeRecords decodes a list-of-items response body.
func decodeRecords(r io.Reader) ([]ports.RemoteRecord, error) {
	var items []item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	records := make([]ports.RemoteRecord, 0, len(items))
	for _, it := range items {
		records = append(records, toRecord(it))
	}
	return records, nil
}

// decodeCreateResult decodes a creation response without assuming its
// shape: the body may be an object carrying a "successful" map, a list
// of created items, or neither, with the key possibly only in the
// Location header. Every variant is captured; none is an error.
func decodeCreateResult(resp *http.Response) (*ports.CreateResult, error) {
	res := &ports.CreateResult{
		StatusCode: resp.StatusCode,
		Location:   resp.Header.Get("Location"),
		Version:    headerVersion(resp),
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return res, nil
	}

	var objBody struct {
		Successful map[string]json.RawMessage `json:"successful"`
	}
	if err := json.Unmarshal(raw, &objBody); err == nil && len(objBody.Successful) > 0 {
		res.Successful = make(map[string]string, len(objBody.Successful))
		for idx, v := range objBody.Successful {
			res.Successful[idx] = successfulKey(v)
		}
		return res, nil
	}

	var listBody []item
	if err := json.Unmarshal(raw, &listBody); err == nil {
		for _, it := range listBody {
			res.Records = append(res.Records, toRecord(it))
		}
	}
	return res, nil
}

// successfulKey extracts a key from one "successful" map value, which
// is either a bare key string or an object with a key field.
func successfulKey(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Key
	}
	return ""
}

func headerVersion(resp *http.Response) int {
	v, err := strconv.Atoi(resp.Header.Get("Last-Modified-Version"))
	if err != nil {
		return 0
	}
	return v
}

func apiError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 600))
	return &APIError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(snippet)),
	}
}
