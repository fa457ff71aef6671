package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/go-querystring/query"

	"github.com/airdiag/wifi-doctor/pkg/models"
)

// GetNetworkDevices lists every device claimed into the network.
func (s *Service) GetNetworkDevices(ctx context.Context, networkID string) ([]models.Device, error) {
	var devices []models.Device
	path := fmt.Sprintf("/networks/%s/devices", networkID)
	err := s.getAllPages(ctx, path, nil, func(items json.RawMessage) error {
		var page []models.Device
		if err := json.Unmarshal(items, &page); err != nil {
			return fmt.Errorf("failed to decode devices page: %v", err)
		}
		devices = append(devices, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return devices, nil
}

// GetDeviceWirelessStatus reads the live radio state of one access point.
func (s *Service) GetDeviceWirelessStatus(ctx context.Context, serial string) (*models.WirelessStatus, error) {
	var status models.WirelessStatus
	path := fmt.Sprintf("/devices/%s/wireless/status", serial)
	if err := s.getJSON(ctx, path, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetNetworkClients lists the clients seen on the network in the
// dashboard's default lookback window.
func (s *Service) GetNetworkClients(ctx context.Context, networkID string) ([]models.WirelessClient, error) {
	var clients []models.WirelessClient
	path := fmt.Sprintf("/networks/%s/clients", networkID)
	err := s.getAllPages(ctx, path, nil, func(items json.RawMessage) error {
		var page []models.WirelessClient
		if err := json.Unmarshal(items, &page); err != nil {
			return fmt.Errorf("failed to decode clients page: %v", err)
		}
		clients = append(clients, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return clients, nil
}

// GetNetworkWirelessSSIDs lists the network's SSID slots. The dashboard
// returns the full fixed-size table in one response, disabled slots
// included, so this endpoint is not paginated.
func (s *Service) GetNetworkWirelessSSIDs(ctx context.Context, networkID string) ([]models.SSIDConfig, error) {
	var ssids []models.SSIDConfig
	path := fmt.Sprintf("/networks/%s/wireless/ssids", networkID)
	if err := s.getJSON(ctx, path, nil, &ssids); err != nil {
		return nil, err
	}
	return ssids, nil
}

// GetNetworkWirelessSSID reads the configuration of a single SSID slot.
func (s *Service) GetNetworkWirelessSSID(ctx context.Context, networkID string, number int) (*models.SSIDConfig, error) {
	var ssid models.SSIDConfig
	path := fmt.Sprintf("/networks/%s/wireless/ssids/%d", networkID, number)
	if err := s.getJSON(ctx, path, nil, &ssid); err != nil {
		return nil, err
	}
	return &ssid, nil
}

// GetNetworkWirelessFailedConnections lists failed client connection
// events, optionally narrowed by the filter.
func (s *Service) GetNetworkWirelessFailedConnections(ctx context.Context, networkID string, filter *models.FailedConnectionFilter) ([]models.FailedConnection, error) {
	params := url.Values{}
	if filter != nil {
		values, err := query.Values(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to encode failed connections filter: %v", err)
		}
		params = values
	}

	var failures []models.FailedConnection
	path := fmt.Sprintf("/networks/%s/wireless/failedConnections", networkID)
	err := s.getAllPages(ctx, path, params, func(items json.RawMessage) error {
		var page []models.FailedConnection
		if err := json.Unmarshal(items, &page); err != nil {
			return fmt.Errorf("failed to decode failed connections page: %v", err)
		}
		failures = append(failures, page...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return failures, nil
}
