package services

import (
	"strings"

	surfer "github.com/avct/uasurfer"
)

// Device classes used as metric labels
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
	DeviceOther   = "other"
)

// UserAgentInfo is the subset of a parsed User-Agent the backend cares about
type UserAgentInfo struct {
	Device  string
	Browser string
	OS      string
	IsBot   bool
}

// ParseUserAgent classifies a raw User-Agent header. An empty header is "other".
func ParseUserAgent(raw string) UserAgentInfo {
	if raw == "" {
		return UserAgentInfo{Device: DeviceOther}
	}
	ua := surfer.Parse(raw)

	info := UserAgentInfo{
		Browser: strings.TrimPrefix(ua.Browser.Name.String(), "Browser"),
		OS:      strings.TrimPrefix(ua.OS.Name.String(), "OS"),
		IsBot:   ua.IsBot(),
	}
	if info.IsBot {
		info.Device = DeviceBot
		return info
	}

	switch ua.DeviceType {
	case surfer.DeviceComputer:
		info.Device = DeviceDesktop
	case surfer.DeviceTablet:
		info.Device = DeviceTablet
	case surfer.DevicePhone, surfer.DeviceWearable:
		info.Device = DeviceMobile
	default:
		info.Device = DeviceOther
	}
	return info
}
