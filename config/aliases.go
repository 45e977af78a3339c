package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// LoadAliases reads the endpoint alias table from a TOML file:
//
//	[aliases]
//	materials = "https://plm.example.com/csi-requesthandler/api/v2/materials"
//
// Only string values that look like absolute URLs (http prefix) are kept.
// A missing file yields an empty table, not an error.
func LoadAliases(path string) (map[string]string, error) {
	aliases := map[string]string{}

	if path == "" {
		return aliases, nil
	}
	if _, err := os.Stat(path); err != nil {
		return aliases, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	for name, value := range v.GetStringMapString("aliases") {
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name != "" && strings.HasPrefix(value, "http") {
			aliases[name] = value
		}
	}

	return aliases, nil
}
