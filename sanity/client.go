package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/TechbroSam/jogiloran/models"
)

// Client talks to the Sanity content store over its HTTP query and mutate
// APIs. Reads go through GROQ queries; stock decrements go through the
// mutate endpoint as conditional patches.
type Client struct {
	baseURL    string
	dataset    string
	apiVersion string
	token      string
	httpClient *http.Client
}

// NewClient creates a content-store client for the given project.
func NewClient(projectID, dataset, apiVersion, token string) *Client {
	return &Client{
		baseURL:    fmt.Sprintf("https://%s.api.sanity.io", projectID),
		dataset:    dataset,
		apiVersion: apiVersion,
		token:      token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// NewClientWithBaseURL is like NewClient but targets an explicit base URL.
// Used by tests to point the client at a local server.
func NewClientWithBaseURL(baseURL, dataset, apiVersion, token string) *Client {
	c := NewClient("none", dataset, apiVersion, token)
	c.baseURL = baseURL
	return c
}

// ---- query API ----

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

// Query runs a GROQ query with the given parameters and decodes the result
// into out.
func (c *Client) Query(ctx context.Context, groq string, params map[string]interface{}, out interface{}) error {
	q := url.Values{}
	q.Set("query", groq)
	for name, val := range params {
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("encode query param %s: %w", name, err)
		}
		q.Set("$"+name, string(encoded))
	}

	path := fmt.Sprintf("/v%s/data/query/%s?%s", c.apiVersion, c.dataset, q.Encode())

	var resp queryResponse
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return err
	}
	if out == nil || resp.Result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("decode query result: %w", err)
	}
	return nil
}

// ---- mutate API ----

// PatchByQuery targets the documents matched by Query and decrements the
// fields named in Dec. The query carries the stock precondition, so the
// store applies the decrement atomically only while stock covers it.
type PatchByQuery struct {
	Query string         `json:"query"`
	Dec   map[string]int `json:"dec,omitempty"`
}

// Mutation is a single entry in a mutate request.
type Mutation struct {
	Patch  *PatchByQuery          `json:"patch,omitempty"`
	Create map[string]interface{} `json:"create,omitempty"`
}

type mutateRequest struct {
	Mutations []Mutation `json:"mutations"`
}

type mutateResponse struct {
	TransactionID string `json:"transactionId"`
	Results       []struct {
		ID        string `json:"id"`
		Operation string `json:"operation"`
	} `json:"results"`
}

// Mutate submits mutations as a single transaction.
func (c *Client) Mutate(ctx context.Context, mutations []Mutation) error {
	if len(mutations) == 0 {
		return nil
	}
	path := fmt.Sprintf("/v%s/data/mutate/%s", c.apiVersion, c.dataset)

	var resp mutateResponse
	if err := c.doRequest(ctx, http.MethodPost, path, mutateRequest{Mutations: mutations}, &resp); err != nil {
		return err
	}
	return nil
}

// ---- HTTP helper ----

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sanity API error (status %d): %s", resp.StatusCode, string(respBytes))
	}

	if out != nil {
		if err := json.Unmarshal(respBytes, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// ---- storefront operations ----

// FetchInventory returns the inventory records for the given product ids.
// Products unknown to the store are simply absent from the result.
func (c *Client) FetchInventory(ctx context.Context, productIDs []string) ([]models.Product, error) {
	const groq = `*[_type == "product" && _id in $productIds]{_id, name, stock, "sizes": sizes[]{size, stock}}`

	var products []models.Product
	if err := c.Query(ctx, groq, map[string]interface{}{"productIds": productIDs}, &products); err != nil {
		return nil, fmt.Errorf("fetch inventory: %w", err)
	}
	return products, nil
}

// GetSiteSettings returns the storefront settings singleton.
func (c *Client) GetSiteSettings(ctx context.Context) (*models.SiteSettings, error) {
	const groq = `*[_type == "siteSettings"][0]{discountPercentage, isBannerActive, "bannerMessage": pt::text(bannerMessage)}`

	var settings models.SiteSettings
	if err := c.Query(ctx, groq, nil, &settings); err != nil {
		return nil, fmt.Errorf("get site settings: %w", err)
	}
	return &settings, nil
}

// CreateReview creates a review document referencing the product.
func (c *Client) CreateReview(ctx context.Context, review models.Review) error {
	doc := map[string]interface{}{
		"_type":      "review",
		"authorName": review.AuthorName,
		"rating":     review.Rating,
		"reviewText": review.ReviewText,
		"product": map[string]interface{}{
			"_type": "reference",
			"_ref":  review.ProductID,
		},
	}

	if err := c.Mutate(ctx, []Mutation{{Create: doc}}); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// DecrementStock applies one conditional decrement per purchased line,
// routing sized lines to the matching variant's stock and unsized lines to
// the flat stock field. The stock >= quantity guard in each patch query keeps
// concurrent confirmations from driving stock negative.
func (c *Client) DecrementStock(ctx context.Context, items []models.OrderProduct) error {
	mutations := make([]Mutation, 0, len(items))
	for _, item := range items {
		if item.ProductID == "" {
			continue
		}
		mutations = append(mutations, Mutation{Patch: decrementPatch(item)})
	}

	if err := c.Mutate(ctx, mutations); err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	return nil
}

func decrementPatch(item models.OrderProduct) *PatchByQuery {
	if item.Size != "" {
		return &PatchByQuery{
			Query: fmt.Sprintf(`*[_id == %q && sizes[size == %q][0].stock >= %d]`, item.ProductID, item.Size, item.Quantity),
			Dec: map[string]int{
				fmt.Sprintf(`sizes[size==%q].stock`, item.Size): item.Quantity,
			},
		}
	}
	return &PatchByQuery{
		Query: fmt.Sprintf(`*[_id == %q && stock >= %d]`, item.ProductID, item.Quantity),
		Dec:   map[string]int{"stock": item.Quantity},
	}
}
