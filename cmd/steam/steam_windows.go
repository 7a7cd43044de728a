//go:build windows

package steam

import (
	"errors"

	"golang.org/x/sys/windows/registry"
)

var steamRegistryKeys = []string{
	`SOFTWARE\Wow6432Node\Valve\Steam`,
	`SOFTWARE\Valve\Steam`,
}

// FindSteamDir returns the Steam install path recorded in the registry.
func FindSteamDir() (string, error) {
	for _, path := range steamRegistryKeys {
		k, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.QUERY_VALUE)
		if errors.Is(err, registry.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		dir, _, err := k.GetStringValue("InstallPath")
		k.Close()
		if errors.Is(err, registry.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		return dir, nil
	}
	return "", ErrSteamNotFound
}
