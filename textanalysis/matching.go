package textanalysis

import (
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/airdiag/wifi-doctor/pkg/models"
)

var (
	roomIdentifierPattern     = regexp.MustCompile(`^[a-z][0-9]+$`)
	buildingIdentifierPattern = regexp.MustCompile(`^(?:building|school|site)\s*([0-9]+)`)
)

// FindMatchingDevices returns the devices the extracted context points
// at, matched by AP identifier (name, serial or tag substring, with
// separator-variant fuzzing for room style identifiers like "w23") or by
// device type against the model family.
func FindMatchingDevices(context *Context, devices []models.Device) []models.Device {
	var matches []models.Device
	for _, device := range devices {
		if deviceMatchesAP(context.APIdentifiers, device) || deviceMatchesType(context.DeviceTypes, device) {
			matches = append(matches, device)
		}
	}
	return matches
}

func deviceMatchesAP(apIdentifiers []string, device models.Device) bool {
	if len(apIdentifiers) == 0 {
		return false
	}

	name := strings.ToLower(device.Name)
	serial := strings.ToLower(device.Serial)
	tags := lo.Map(device.Tags, func(tag string, _ int) string { return strings.ToLower(tag) })

	containsAnywhere := func(needle string) bool {
		if needle == "" {
			return false
		}
		if strings.Contains(name, needle) || strings.Contains(serial, needle) {
			return true
		}
		for _, tag := range tags {
			if strings.Contains(tag, needle) {
				return true
			}
		}
		return false
	}

	for _, apID := range apIdentifiers {
		needle := strings.ToLower(apID)
		if containsAnywhere(needle) {
			return true
		}

		// Room numbers like w23 commonly appear as w-23, w.23 or w_23
		// in device names.
		if roomIdentifierPattern.MatchString(needle) {
			letter, number := needle[:1], needle[1:]
			for _, separator := range []string{"-", ".", "_"} {
				if containsAnywhere(letter + separator + number) {
					return true
				}
			}
		}
	}
	return false
}

func deviceMatchesType(deviceTypes []string, device models.Device) bool {
	if len(deviceTypes) == 0 {
		return false
	}

	var wanted []string
	model := strings.ToLower(device.Model)
	switch {
	case strings.Contains(model, "mr"):
		wanted = []string{"ap", "access point", "wireless"}
	case strings.Contains(model, "ms"):
		wanted = []string{"switch", "switches"}
	case strings.Contains(model, "mx"):
		wanted = []string{"firewall", "gateway", "router"}
	default:
		return false
	}

	for _, deviceType := range deviceTypes {
		if lo.Contains(wanted, deviceType) {
			return true
		}
	}
	return false
}

// FindMatchingNetworks returns the networks the extracted context points
// at. Network and building identifiers both count; building identifiers
// like "building 5" additionally match abbreviated network names such as
// b5 or school-5.
func FindMatchingNetworks(context *Context, networks []models.Network) []models.Network {
	identifiers := append(append([]string(nil), context.NetworkIdentifiers...), context.BuildingIdentifiers...)
	if len(identifiers) == 0 {
		return nil
	}

	var matches []models.Network
	for _, network := range networks {
		if networkMatchesIdentifier(identifiers, network) {
			matches = append(matches, network)
		}
	}
	return matches
}

func networkMatchesIdentifier(identifiers []string, network models.Network) bool {
	name := strings.ToLower(network.Name)
	id := strings.ToLower(network.ID)
	tags := lo.Map(network.Tags, func(tag string, _ int) string { return strings.ToLower(tag) })

	containsAnywhere := func(needle string) bool {
		if needle == "" {
			return false
		}
		if strings.Contains(name, needle) || strings.Contains(id, needle) {
			return true
		}
		for _, tag := range tags {
			if strings.Contains(tag, needle) {
				return true
			}
		}
		return false
	}

	for _, identifier := range identifiers {
		needle := strings.ToLower(identifier)
		if containsAnywhere(needle) {
			return true
		}

		if match := buildingIdentifierPattern.FindStringSubmatch(needle); match != nil {
			number := match[1]
			variants := []string{
				"b" + number,
				"s" + number,
				"building" + number,
				"school" + number,
				"building-" + number,
				"school-" + number,
			}
			for _, variant := range variants {
				if containsAnywhere(variant) {
					return true
				}
			}
		}
	}
	return false
}
