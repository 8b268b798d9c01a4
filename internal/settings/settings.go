// Package settings holds the console's system settings form and the panel
// that checkpoints every saved edit.
package settings

import (
	"fmt"
	"sort"
)

// DefaultSiteName is the site name shown before any edit is saved.
const DefaultSiteName = "远程桌面管理系统"

// Values are the fields of the system settings form.
type Values struct {
	SiteName           string `json:"site_name"`
	EmailNotifications bool   `json:"email_notifications"`
	DarkMode           bool   `json:"dark_mode"`
}

// Defaults returns the form's initial values.
func Defaults() Values {
	return Values{
		SiteName:           DefaultSiteName,
		EmailNotifications: true,
		DarkMode:           false,
	}
}

// CanonicalValue implements canon.Marshaler.
func (v Values) CanonicalValue() any {
	return map[string]any{
		"site_name":           v.SiteName,
		"email_notifications": v.EmailNotifications,
		"dark_mode":           v.DarkMode,
	}
}

// Decode builds Values from loosely typed input such as a YAML mapping.
// Missing fields keep their defaults. Unknown fields and wrong types are
// errors.
func Decode(m map[string]any) (Values, error) {
	v := Defaults()

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		raw := m[k]
		switch k {
		case "site_name":
			s, ok := raw.(string)
			if !ok {
				return Values{}, fmt.Errorf("decode settings: %s: expected string, got %T", k, raw)
			}
			v.SiteName = s
		case "email_notifications":
			b, ok := raw.(bool)
			if !ok {
				return Values{}, fmt.Errorf("decode settings: %s: expected bool, got %T", k, raw)
			}
			v.EmailNotifications = b
		case "dark_mode":
			b, ok := raw.(bool)
			if !ok {
				return Values{}, fmt.Errorf("decode settings: %s: expected bool, got %T", k, raw)
			}
			v.DarkMode = b
		default:
			return Values{}, fmt.Errorf("decode settings: unknown field %q", k)
		}
	}
	return v, nil
}
