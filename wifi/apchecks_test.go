package wifi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airdiag/wifi-doctor/pkg/models"
)

func TestCheckAPConfigurations(t *testing.T) {
	normalStatus := &models.WirelessStatus{Radios: []models.RadioStatus{{Band: "5", Status: "normal", ChannelUtilization: 20}}}

	tests := []struct {
		name         string
		accessor     *fakeAccessor
		ssid         *models.SSIDConfig
		wantSubtypes []string
	}{
		{
			name:     "listing failure yields nothing",
			accessor: &fakeAccessor{devicesErr: errors.New("api down")},
		},
		{
			name: "no wireless aps",
			accessor: &fakeAccessor{
				devices: []models.Device{{Serial: "Q2CD-0001", Model: "MS220-8P", Status: "online"}},
			},
			wantSubtypes: []string{"no_wireless_aps"},
		},
		{
			name: "offline aps",
			accessor: &fakeAccessor{
				devices: []models.Device{
					{Serial: "Q2AB-0001", Model: "MR46", Status: "offline"},
					{Serial: "Q2AB-0002", Model: "MR46", Status: "online"},
				},
				status: normalStatus,
			},
			wantSubtypes: []string{"offline_access_points"},
		},
		{
			name: "no aps carry the required tags",
			accessor: &fakeAccessor{
				devices: []models.Device{
					{Serial: "Q2AB-0001", Model: "MR46", Status: "online", Tags: []string{"floor1"}},
				},
				status: normalStatus,
			},
			ssid: &models.SSIDConfig{
				AvailabilityTags:  []string{"floor3"},
				AvailableOnAllAps: boolPtr(false),
			},
			wantSubtypes: []string{"no_aps_with_required_tags"},
		},
		{
			name: "degraded radio",
			accessor: &fakeAccessor{
				devices: []models.Device{{Serial: "Q2AB-0001", Model: "MR46", Status: "online"}},
				status:  &models.WirelessStatus{Radios: []models.RadioStatus{{Band: "2.4", Status: "degraded"}}},
			},
			wantSubtypes: []string{"radio_status_issue"},
		},
		{
			name: "high channel utilization",
			accessor: &fakeAccessor{
				devices: []models.Device{{Serial: "Q2AB-0001", Model: "MR46", Status: "online"}},
				status:  &models.WirelessStatus{Radios: []models.RadioStatus{{Band: "5", Status: "normal", ChannelUtilization: 88.5}}},
			},
			wantSubtypes: []string{"high_channel_utilization"},
		},
		{
			name: "radio status lookup failure keeps earlier findings",
			accessor: &fakeAccessor{
				devices: []models.Device{
					{Serial: "Q2AB-0001", Model: "MR46", Status: "alerting"},
				},
				statusErr: errors.New("api down"),
			},
			wantSubtypes: []string{"offline_access_points"},
		},
		{
			name: "healthy network",
			accessor: &fakeAccessor{
				devices: []models.Device{{Serial: "Q2AB-0001", Model: "MR46", Status: "online"}},
				status:  normalStatus,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTroubleshooter(&fakeKB{}, tt.accessor)
			issues := tr.checkAPConfigurations(context.Background(), "N_1", tt.ssid)
			if tt.wantSubtypes == nil {
				assert.Empty(t, issues)
			} else {
				assert.Equal(t, tt.wantSubtypes, subtypesOf(issues))
			}
		})
	}
}

func TestCheckAPConfigurationsPartialTagCoverage(t *testing.T) {
	accessor := &fakeAccessor{
		devices: []models.Device{
			{Serial: "Q2AB-0001", Name: "Lobby AP", Model: "MR46", Status: "online", Tags: []string{"floor1"}},
			{Serial: "Q2AB-0002", Name: "Cafe AP", Model: "MR46", Status: "online"},
		},
		status: &models.WirelessStatus{Radios: []models.RadioStatus{{Band: "5", Status: "normal"}}},
	}
	tr := NewTroubleshooter(&fakeKB{}, accessor)
	ssid := &models.SSIDConfig{
		AvailabilityTags:  []string{"floor1"},
		AvailableOnAllAps: boolPtr(false),
	}

	issues := tr.checkAPConfigurations(context.Background(), "N_1", ssid)

	require.Len(t, issues, 1)
	assert.Equal(t, "some_aps_missing_required_tags", issues[0].Subtype)
	assert.Equal(t, 75, issues[0].Severity)
	assert.Equal(t, []string{"Cafe AP"}, issues[0].Details["aps_without_tags"])
	assert.Equal(t, 1, issues[0].Details["aps_with_tags"])
	assert.Equal(t, 2, issues[0].Details["total_aps"])
}

func TestCheckAPConfigurationsOfflineDetails(t *testing.T) {
	accessor := &fakeAccessor{
		devices: []models.Device{
			{Serial: "Q2AB-0001", Name: "Lobby AP", Model: "MR46", Status: "offline"},
			{Serial: "Q2AB-0002", Model: "MR46", Status: "dormant"},
			{Serial: "Q2AB-0003", Model: "MR46", Status: "online"},
		},
		status: &models.WirelessStatus{Radios: []models.RadioStatus{{Band: "5", Status: "normal"}}},
	}
	tr := NewTroubleshooter(&fakeKB{}, accessor)

	issues := tr.checkAPConfigurations(context.Background(), "N_1", nil)

	require.Len(t, issues, 1)
	assert.Equal(t, 85, issues[0].Severity)
	assert.Equal(t, "2 access points are offline or in problematic state", issues[0].Description)
	assert.Equal(t, []string{"Lobby AP", "Q2AB-0002"}, issues[0].Details["offline_aps"])
}

func TestCheckConnectedClientsEmptyNetwork(t *testing.T) {
	accessor := &fakeAccessor{
		failedConnections: []models.FailedConnection{
			{ClientMAC: "aa:aa", FailureReason: "802.1X auth failed"},
			{ClientMAC: "bb:bb", FailureReason: "Auth timeout"},
			{ClientMAC: "cc:cc", FailureReason: "DHCP no lease"},
		},
	}
	tr := NewTroubleshooter(&fakeKB{}, accessor)

	issues := tr.checkConnectedClients(context.Background(), "N_1", &models.SSIDConfig{Name: "CorpNet"})

	require.Equal(t, []string{"no_connected_clients", "authentication_failures", "dhcp_failures"}, subtypesOf(issues))
	assert.Equal(t, "No clients are connected to the 'CorpNet' SSID", issues[0].Description)
	assert.Equal(t, "2 clients failed to authenticate to the network", issues[1].Description)
	assert.Equal(t, 2, issues[1].Details["count"])
	assert.Equal(t, 1, issues[2].Details["count"])
}

func TestCheckConnectedClientsEmptyNetworkUnnamedSSID(t *testing.T) {
	tr := NewTroubleshooter(&fakeKB{}, &fakeAccessor{})

	issues := tr.checkConnectedClients(context.Background(), "N_1", &models.SSIDConfig{})

	require.Len(t, issues, 1)
	assert.Equal(t, "No clients are connected to the 'Unknown SSID' SSID", issues[0].Description)
}

func TestCheckConnectedClientsNilSSID(t *testing.T) {
	tr := NewTroubleshooter(&fakeKB{}, &fakeAccessor{})

	issues := tr.checkConnectedClients(context.Background(), "N_1", nil)

	assert.Empty(t, issues)
}

func TestCheckConnectedClientsSignalLegacyAndSSIDOccupancy(t *testing.T) {
	guest := "Guest"
	accessor := &fakeAccessor{
		clients: []models.WirelessClient{
			{MAC: "aa:aa", SSID: &guest, Signal: float64Ptr(-78), Protocol: "802.11g"},
			{MAC: "bb:bb", SSID: &guest, Signal: float64Ptr(-45), Protocol: "802.11ax"},
			{MAC: "cc:cc", IP: "10.0.0.9"},
		},
	}
	tr := NewTroubleshooter(&fakeKB{}, accessor)

	issues := tr.checkConnectedClients(context.Background(), "N_1", &models.SSIDConfig{Name: "CorpNet"})

	require.Equal(t, []string{"poor_signal_strength", "legacy_clients", "no_clients_on_ssid"}, subtypesOf(issues))
	assert.Equal(t, 1, issues[0].Details["count"])
	assert.Equal(t, 1, issues[1].Details["count"])
	assert.Equal(t, "No clients are connected to the 'CorpNet' SSID specifically", issues[2].Description)
}

func TestCheckConnectedClientsFailedLookupError(t *testing.T) {
	accessor := &fakeAccessor{failedErr: errors.New("api down")}
	tr := NewTroubleshooter(&fakeKB{}, accessor)

	issues := tr.checkConnectedClients(context.Background(), "N_1", &models.SSIDConfig{Name: "CorpNet"})

	require.Len(t, issues, 1)
	assert.Equal(t, "no_connected_clients", issues[0].Subtype)
}

func TestCheckConnectedClientsListingError(t *testing.T) {
	accessor := &fakeAccessor{clientsErr: errors.New("api down")}
	tr := NewTroubleshooter(&fakeKB{}, accessor)

	issues := tr.checkConnectedClients(context.Background(), "N_1", &models.SSIDConfig{Name: "CorpNet"})

	assert.Empty(t, issues)
}
