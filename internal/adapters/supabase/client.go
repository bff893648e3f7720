// Package supabase holds the auth provider's admin API client.
package supabase

import (
	"context"
	"fmt"
	"net/http"

	"lionshub/internal/domain"
)

type adminClient struct {
	client     *http.Client
	baseURL    string
	serviceKey string
}

// NewAdminClient returns an AuthAdmin that calls the Supabase GoTrue admin API.
func NewAdminClient(client *http.Client, baseURL, serviceKey string) domain.AuthAdmin {
	if client == nil {
		client = http.DefaultClient
	}
	return &adminClient{client: client, baseURL: baseURL, serviceKey: serviceKey}
}

func (c *adminClient) DeleteUser(ctx context.Context, authUserID string) error {
	url := fmt.Sprintf("%s/auth/v1/admin/users/%s", c.baseURL, authUserID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call auth admin api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("auth admin api returned status: %d", resp.StatusCode)
	}
	return nil
}
