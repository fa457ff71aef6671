package models

import "strings"

// Dashboard API response structures

type Organization struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Network struct {
	ID             string   `json:"id"`
	OrganizationID string   `json:"organizationId"`
	Name           string   `json:"name"`
	TimeZone       string   `json:"timeZone"`
	Tags           []string `json:"tags"`
	ProductTypes   []string `json:"productTypes"`
}

type Device struct {
	Serial    string   `json:"serial"`
	Name      string   `json:"name"`
	MAC       string   `json:"mac"`
	Model     string   `json:"model"`
	NetworkID string   `json:"networkId"`
	Status    string   `json:"status"`
	Tags      []string `json:"tags"`
	LanIP     string   `json:"lanIp"`
	Firmware  string   `json:"firmware"`
	Address   string   `json:"address"`
}

// IsWireless reports whether the device is a wireless access point
// (MR-series model prefix).
func (d Device) IsWireless() bool {
	return strings.HasPrefix(d.Model, "MR")
}

// DisplayName returns the device name, falling back to the serial when
// the device was never named in the dashboard.
func (d Device) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	if d.Serial != "" {
		return d.Serial
	}
	return "Unknown"
}

// HasAnyTag reports whether the device carries at least one of the given tags.
func (d Device) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range d.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// WirelessStatus is the live radio state of a single access point.
type WirelessStatus struct {
	Serial string        `json:"serial"`
	Radios []RadioStatus `json:"radios"`
}

type RadioStatus struct {
	Band               string  `json:"band"`
	Status             string  `json:"status"`
	Channel            int     `json:"channel"`
	ChannelWidth       int     `json:"channelWidth"`
	Power              int     `json:"power"`
	ChannelUtilization float64 `json:"channelUtilization"`
}

// WirelessClient is a client snapshot as reported by the dashboard. The
// same shape serves both the per-network client listing and the single
// client record attached to a troubleshooting request. SSID and Signal
// are pointers because the API omits them for wired clients.
type WirelessClient struct {
	ID            string   `json:"id,omitempty"`
	MAC           string   `json:"mac,omitempty"`
	Description   string   `json:"description,omitempty"`
	IP            string   `json:"ip,omitempty"`
	SSID          *string  `json:"ssid,omitempty"`
	Signal        *float64 `json:"signal,omitempty"`
	Protocol      string   `json:"protocol,omitempty"`
	Status        string   `json:"status,omitempty"`
	FailureReason string   `json:"failureReason,omitempty"`
	LastSeen      string   `json:"lastSeen,omitempty"`
}

// IsWirelessClient reports whether the client was associated over WiFi.
func (c WirelessClient) IsWirelessClient() bool {
	return c.SSID != nil
}

// SSIDConfig is an SSID configuration snapshot. Enabled, Broadcasting and
// AvailableOnAllAps are pointers because the dashboard treats an absent
// field as true; use the Is* helpers instead of reading them directly.
type SSIDConfig struct {
	Number            *int           `json:"number,omitempty"`
	Name              string         `json:"name,omitempty"`
	Enabled           *bool          `json:"enabled,omitempty"`
	Broadcasting      *bool          `json:"broadcasting,omitempty"`
	Hidden            bool           `json:"hidden,omitempty"`
	AuthMode          string         `json:"authMode,omitempty"`
	EncryptionMode    string         `json:"encryptionMode,omitempty"`
	WPAConfig         *WPAConfig     `json:"wpaConfig,omitempty"`
	Dot11w            *Dot11w        `json:"dot11w,omitempty"`
	AvailabilityTags  []string       `json:"availabilityTags,omitempty"`
	AvailableOnAllAps *bool          `json:"availableOnAllAps,omitempty"`
	RadiusServers     []RadiusServer `json:"radiusServers,omitempty"`
}

type WPAConfig struct {
	Encryption string `json:"encryption,omitempty"`
}

// Dot11w holds the Protected Management Frames settings of an SSID.
type Dot11w struct {
	Enabled  bool `json:"enabled"`
	Required bool `json:"required"`
}

type RadiusServer struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// IsEnabled reports the effective enabled state, absent meaning enabled.
func (s *SSIDConfig) IsEnabled() bool {
	if s == nil || s.Enabled == nil {
		return true
	}
	return *s.Enabled
}

// IsBroadcasting reports the effective broadcast state, absent meaning broadcasting.
func (s *SSIDConfig) IsBroadcasting() bool {
	if s == nil || s.Broadcasting == nil {
		return true
	}
	return *s.Broadcasting
}

// IsAvailableOnAllAps reports the effective availability, absent meaning all APs.
func (s *SSIDConfig) IsAvailableOnAllAps() bool {
	if s == nil || s.AvailableOnAllAps == nil {
		return true
	}
	return *s.AvailableOnAllAps
}

// PMFEnabled reports whether Protected Management Frames are enabled.
func (s *SSIDConfig) PMFEnabled() bool {
	return s != nil && s.Dot11w != nil && s.Dot11w.Enabled
}

// PMFRequired reports whether Protected Management Frames are required.
func (s *SSIDConfig) PMFRequired() bool {
	return s != nil && s.Dot11w != nil && s.Dot11w.Required
}

// Encryption returns the configured WPA encryption mode, empty when unset.
func (s *SSIDConfig) Encryption() string {
	if s == nil || s.WPAConfig == nil {
		return ""
	}
	return s.WPAConfig.Encryption
}

// FailedConnection is one failed association/authentication attempt as
// reported by the dashboard wireless failed-connections endpoint.
type FailedConnection struct {
	TS            string `json:"ts"`
	ClientMAC     string `json:"clientMac"`
	Serial        string `json:"serial"`
	SSIDNumber    int    `json:"ssidNumber"`
	VLAN          int    `json:"vlan"`
	FailureStep   string `json:"failureStep"`
	FailureReason string `json:"failureReason"`
}

// FailedConnectionFilter narrows a failed-connections listing. A nil
// filter means the dashboard default window.
type FailedConnectionFilter struct {
	Timespan int    `json:"timespan,omitempty" url:"timespan,omitempty"`
	Band     string `json:"band,omitempty" url:"band,omitempty"`
	SSID     *int   `json:"ssid,omitempty" url:"ssid,omitempty"`
	Serial   string `json:"serial,omitempty" url:"serial,omitempty"`
	VLAN     *int   `json:"vlan,omitempty" url:"vlan,omitempty"`
}
