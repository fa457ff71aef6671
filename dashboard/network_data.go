package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/airdiag/wifi-doctor/pkg/models"
)

// getAllPages walks a paginated list endpoint. Page 1 establishes the
// total count; the remaining pages are fetched concurrently under a
// semaphore and handed to accept in page order.
func (s *Service) getAllPages(ctx context.Context, path string, params url.Values, accept func(items json.RawMessage) error) error {
	perPage := s.Config.PerPage

	first, err := s.fetchPage(ctx, path, params, 1, perPage)
	if err != nil {
		return err
	}
	if err := accept(first.Items); err != nil {
		return err
	}

	totalPages := (first.TotalCount + perPage - 1) / perPage
	if totalPages <= 1 {
		return nil
	}
	logrus.Debugf("Listing %s: total count %d, pages needed %d", path, first.TotalCount, totalPages)

	maxConcurrent := s.Config.MaxConcurrentRequests
	remainingPages := totalPages - 1
	if remainingPages < maxConcurrent {
		maxConcurrent = remainingPages
	}

	type pageResult struct {
		page  int
		items json.RawMessage
		err   error
	}

	// Buffer every result so an early error return cannot strand senders.
	resultChan := make(chan pageResult, remainingPages)
	semaphore := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for page := 2; page <= totalPages; page++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			resp, err := s.fetchPage(ctx, path, params, p, perPage)
			if err != nil {
				resultChan <- pageResult{page: p, err: err}
				return
			}
			resultChan <- pageResult{page: p, items: resp.Items}
		}(page)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	pages := make(map[int]json.RawMessage)
	for result := range resultChan {
		if result.err != nil {
			return fmt.Errorf("failed to fetch page %d of %s: %v", result.page, path, result.err)
		}
		pages[result.page] = result.items
	}

	for page := 2; page <= totalPages; page++ {
		if items, exists := pages[page]; exists {
			if err := accept(items); err != nil {
				return err
			}
		}
	}

	return nil
}

// fetchPage requests a single page, leaving the caller's params untouched.
func (s *Service) fetchPage(ctx context.Context, path string, params url.Values, page, perPage int) (*pagedResponse, error) {
	pageParams := url.Values{}
	for key, values := range params {
		pageParams[key] = values
	}
	pageParams.Set("page", strconv.Itoa(page))
	pageParams.Set("perPage", strconv.Itoa(perPage))

	var resp pagedResponse
	if err := s.getJSON(ctx, path, pageParams, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOrganizations lists the organizations visible to the API key.
func (s *Service) GetOrganizations(ctx context.Context) ([]models.Organization, error) {
	var organizations []models.Organization
	err := s.getAllPages(ctx, "/organizations", nil, func(items json.RawMessage) error {
		var page []models.Organization
		if err := json.Unmarshal(items, &page); err != nil {
			return fmt.Errorf("failed to decode organizations page: %v", err)
		}
		organizations = append(organizations, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return organizations, nil
}

// GetOrganizationNetworks lists every network in the organization.
func (s *Service) GetOrganizationNetworks(ctx context.Context, organizationID string) ([]models.Network, error) {
	var networks []models.Network
	path := fmt.Sprintf("/organizations/%s/networks", organizationID)
	err := s.getAllPages(ctx, path, nil, func(items json.RawMessage) error {
		var page []models.Network
		if err := json.Unmarshal(items, &page); err != nil {
			return fmt.Errorf("failed to decode networks page: %v", err)
		}
		networks = append(networks, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return networks, nil
}

// OrganizationID returns the configured organization, or the first one
// visible to the API key when none is configured.
func (s *Service) OrganizationID(ctx context.Context) (string, error) {
	if s.Config.OrganizationID != "" {
		return s.Config.OrganizationID, nil
	}

	organizations, err := s.GetOrganizations(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to discover organization: %v", err)
	}
	if len(organizations) == 0 {
		return "", fmt.Errorf("no organizations visible to this API key")
	}
	if len(organizations) > 1 {
		logrus.Warnf("API key can access %d organizations, using %s; set dashboard organization_id to pick one explicitly",
			len(organizations), organizations[0].Name)
	}
	return organizations[0].ID, nil
}
