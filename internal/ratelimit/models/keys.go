package models

import "strings"

const keyPrefix = "casetrack:rl"

// SanitizeKeySegment escapes the key delimiter so a caller-controlled
// segment cannot address another bucket.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// NewIPKey is the bucket key for one client IP on one endpoint class.
// IPv6 addresses contain ':' and are sanitized like any other segment.
func NewIPKey(class EndpointClass, ip string) string {
	return keyPrefix + ":" + string(class) + ":ip:" + SanitizeKeySegment(ip)
}
