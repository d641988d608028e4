package model

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// VendorProfile identifies the bundle a system preset was shipped with.
type VendorProfile struct {
	ID            string
	Name          string
	ConfigVersion *semver.Version
}

// NewVendorProfile validates the config version string.
func NewVendorProfile(id, name, version string) (*VendorProfile, error) {
	if id == "" {
		return nil, fmt.Errorf("vendor profile without id")
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("vendor %s: invalid config version %q: %w", id, version, err)
	}
	if name == "" {
		name = id
	}
	return &VendorProfile{ID: id, Name: name, ConfigVersion: v}, nil
}

// Version returns the config version as text, or "" when unset.
func (v *VendorProfile) Version() string {
	if v == nil || v.ConfigVersion == nil {
		return ""
	}
	return v.ConfigVersion.String()
}

// Newer reports whether v ships a newer config version than other.
func (v *VendorProfile) Newer(other *VendorProfile) bool {
	if other == nil || other.ConfigVersion == nil {
		return v.ConfigVersion != nil
	}
	if v.ConfigVersion == nil {
		return false
	}
	return v.ConfigVersion.GreaterThan(other.ConfigVersion)
}
