//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package soma

// PlatformConfigKey is the key of this implementation's own section in a
// platform config map. Foreign sections are ignored.
const PlatformConfigKey = "somadb"

// Section returns the named backend's sub-map, or nil.
func (pc PlatformConfig) Section(name string) map[string]interface{} {
	if pc == nil {
		return nil
	}
	section, _ := pc[name].(map[string]interface{})
	return section
}

// BoolOption reads a boolean option from the somadb section.
func (pc PlatformConfig) BoolOption(key string) bool {
	v, _ := pc.Section(PlatformConfigKey)[key].(bool)
	return v
}

// Int64Option reads an integer option from the somadb section; missing
// or mistyped values yield the fallback.
func (pc PlatformConfig) Int64Option(key string, fallback int64) int64 {
	section := pc.Section(PlatformConfigKey)
	if section == nil {
		return fallback
	}
	switch v := section[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return fallback
	}
}
