package wifi

import (
	"context"

	"github.com/airdiag/wifi-doctor/pkg/models"
)

// DeviceDataAccessor is the live dashboard surface the troubleshooter
// reads through. Implementations are read-only; the pipeline never
// changes device or SSID state. Any call may fail with a transport
// error, which callers treat as non-fatal and degrade around.
type DeviceDataAccessor interface {
	GetNetworkDevices(ctx context.Context, networkID string) ([]models.Device, error)
	GetDeviceWirelessStatus(ctx context.Context, serial string) (*models.WirelessStatus, error)
	GetNetworkClients(ctx context.Context, networkID string) ([]models.WirelessClient, error)
	GetNetworkWirelessSSIDs(ctx context.Context, networkID string) ([]models.SSIDConfig, error)
	GetNetworkWirelessSSID(ctx context.Context, networkID string, number int) (*models.SSIDConfig, error)
	GetNetworkWirelessFailedConnections(ctx context.Context, networkID string, filter *models.FailedConnectionFilter) ([]models.FailedConnection, error)
}
