package conditions

import "strings"

// User-agent family detection. Token checks are ordered so the more
// specific pattern wins: tablets are excluded from the generic mobile
// match, Edge is checked before the Chrome token it also carries, Safari
// must not match Chrome-derived agents, and Android agents never count as
// Linux desktops.

// mobileTokens mark handheld agents. A tablet agent also carries none of
// the tablet tokens checked separately.
var mobileTokens = []string{
	"mobile",
	"android",
	"iphone",
	"ipod",
	"blackberry",
	"opera mini",
	"opera mobi",
	"iemobile",
	"silk/",
	"kindle",
}

var tabletTokens = []string{"tablet", "ipad", "playbook", "silk"}

func containsAny(ua string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(ua, t) {
			return true
		}
	}
	return false
}

func isTablet(ua string) bool {
	return containsAny(ua, tabletTokens) && !strings.Contains(ua, "mobile")
}

func isMobile(ua string) bool {
	return containsAny(ua, mobileTokens)
}

func matchDevice(device, userAgent string) bool {
	ua := strings.ToLower(userAgent)
	switch device {
	case "mobile":
		return isMobile(ua) && !isTablet(ua)
	case "tablet":
		return isTablet(ua)
	case "desktop":
		return !isMobile(ua) && !isTablet(ua)
	default:
		return false
	}
}

func matchBrowser(browser, userAgent string) bool {
	ua := strings.ToLower(userAgent)
	switch browser {
	case "chrome":
		return strings.Contains(ua, "chrome") && !strings.Contains(ua, "edg")
	case "firefox":
		return strings.Contains(ua, "firefox")
	case "safari":
		return strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome")
	case "edge":
		return strings.Contains(ua, "edg")
	case "internet_explorer":
		return strings.Contains(ua, "msie") || strings.Contains(ua, "trident")
	default:
		return false
	}
}

func matchOS(os, userAgent string) bool {
	ua := strings.ToLower(userAgent)
	switch os {
	case "windows":
		return strings.Contains(ua, "windows")
	case "macos":
		return strings.Contains(ua, "mac os x")
	case "linux":
		return strings.Contains(ua, "linux") && !strings.Contains(ua, "android")
	case "android":
		return strings.Contains(ua, "android")
	case "ios":
		return containsAny(ua, []string{"iphone", "ipad", "ipod"})
	default:
		return false
	}
}
