// services/profile_service_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ProfileService is the external profile collaborator. Both calls run
// synchronously inside the invoking operation: a failure here aborts the
// whole operation.
type ProfileService interface {
	SetReputation(userID string, score int64) error
	AttachBadge(userID, badgeID string) error
}

type ProfileServiceClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewProfileServiceClient(baseURL, token string) *ProfileServiceClient {
	return &ProfileServiceClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetReputation stores the computed reputation score on the user's profile.
func (c *ProfileServiceClient) SetReputation(userID string, score int64) error {
	return c.post(fmt.Sprintf("%s/profiles/%s/reputation", c.BaseURL, userID), map[string]interface{}{
		"reputation_score": score,
	})
}

// AttachBadge attaches an achievement badge to the user's profile.
func (c *ProfileServiceClient) AttachBadge(userID, badgeID string) error {
	return c.post(fmt.Sprintf("%s/profiles/%s/badges", c.BaseURL, userID), map[string]interface{}{
		"badge_id": badgeID,
	})
}

func (c *ProfileServiceClient) post(url string, payload map[string]interface{}) error {
	jsonData, _ := json.Marshal(payload)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token) // service → profile service token

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("profile service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("ProfileService %s returned %d: %s", url, resp.StatusCode, string(body))
		return fmt.Errorf("profile service call failed: %d", resp.StatusCode)
	}
	return nil
}
