package encoding

// manifest.go reads YAML device manifests. A manifest declares the devices linked to the
// processor when the CLI assembles a run request from flags instead of a full JSON envelope:
//
//	devices:
//	  - name: m1
//	    type: message
//	  - name: c1
//	    type: memory
//	    capacity: 64

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is a parsed device manifest.
type Manifest struct {
	Devices []ManifestDevice `yaml:"devices"`
}

// ManifestDevice declares one device.
type ManifestDevice struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Capacity int    `yaml:"capacity,omitempty"`
}

// ParseManifest decodes and validates a manifest document.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest

	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("manifest: %w", err)
	}

	seen := make(map[string]bool, len(m.Devices))

	for i, dev := range m.Devices {
		if dev.Name == "" {
			return m, fmt.Errorf("manifest: device %d has no name", i)
		}

		if seen[dev.Name] {
			return m, fmt.Errorf("manifest: duplicate device %q", dev.Name)
		}

		seen[dev.Name] = true

		switch dev.Type {
		case "message":
			if dev.Capacity != 0 {
				return m, fmt.Errorf("manifest: device %q: message devices have no capacity", dev.Name)
			}
		case "memory":
			if dev.Capacity <= 0 {
				return m, fmt.Errorf("manifest: device %q: memory devices need a positive capacity", dev.Name)
			}
		default:
			return m, fmt.Errorf("manifest: device %q: unknown type %q", dev.Name, dev.Type)
		}
	}

	return m, nil
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest: %w", err)
	}

	return ParseManifest(data)
}

// Decls converts the manifest into envelope device declarations, preserving order.
func (m Manifest) Decls() []DeviceDecl {
	decls := make([]DeviceDecl, 0, len(m.Devices))

	for _, dev := range m.Devices {
		switch dev.Type {
		case "message":
			decls = append(decls, DeviceDecl{Name: dev.Name, Spec: DeviceSpec{Kind: Message}})
		case "memory":
			decls = append(decls, DeviceDecl{Name: dev.Name, Spec: DeviceSpec{Kind: Memory, Capacity: dev.Capacity}})
		}
	}

	return decls
}
