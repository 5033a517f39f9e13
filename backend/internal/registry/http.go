package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"digital-garden/backend/internal/constants"
)

// errStatus carries an unexpected HTTP status from a registry
type errStatus struct {
	URL    string
	Status int
}

func (e *errStatus) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Status)
}

// getJSON fetches url and decodes a JSON body into out. Non-200 responses
// return *errStatus.
func getJSON(ctx context.Context, hc *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constants.UserAgent)

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &errStatus{URL: url, Status: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}

func isStatus(err error, status int) bool {
	var se *errStatus
	return errors.As(err, &se) && se.Status == status
}
