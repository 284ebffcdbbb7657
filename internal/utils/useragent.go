package utils

import (
	"strings"

	ua "github.com/mssola/user_agent"
)

// DeviceInfo holds the parsed pieces of a User-Agent string that the
// session tracker records
type DeviceInfo struct {
	DeviceType string `json:"deviceType"` // mobile, tablet, desktop, unknown
	OS         string `json:"os"`
	Browser    string `json:"browser"`
	IsBot      bool   `json:"isBot"`
}

// ParseUserAgent parses a User-Agent string into device information for
// session records. Empty or unparseable agents degrade to "unknown" values,
// never an error.
func ParseUserAgent(userAgent string) DeviceInfo {
	if userAgent == "" {
		return DeviceInfo{
			DeviceType: "unknown",
			OS:         "Unknown",
			Browser:    "Unknown",
		}
	}

	parser := ua.New(userAgent)

	info := DeviceInfo{
		DeviceType: deviceType(parser),
		OS:         osName(parser),
		IsBot:      parser.Bot(),
	}

	name, version := parser.Browser()
	if name == "" {
		name = "Unknown"
	} else if version != "" {
		name = name + " " + version
	}
	info.Browser = name

	return info
}

func deviceType(parser *ua.UserAgent) string {
	if !parser.Mobile() {
		return "desktop"
	}
	if isTablet(parser.UA()) {
		return "tablet"
	}
	return "mobile"
}

// isTablet applies substring heuristics on top of the parser, which reports
// tablets as generic mobile devices
func isTablet(userAgent string) bool {
	lower := strings.ToLower(userAgent)
	for _, indicator := range []string{"ipad", "tablet", "kindle", "sm-t", "nexus 7", "nexus 9", "nexus 10"} {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

func osName(parser *ua.UserAgent) string {
	info := parser.OSInfo()
	if info.Name == "" {
		return "Unknown"
	}
	if info.Version == "" {
		return info.Name
	}
	return info.Name + " " + info.Version
}
