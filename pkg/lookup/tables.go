package lookup

import (
	"fmt"
	"os"
	"strings"

	"github.com/gNutty/vesselradar/pkg/models"
	"gopkg.in/yaml.v3"
)

// FallbackPosition is an approximate position served when the AIS provider
// cannot answer for a known vessel.
type FallbackPosition struct {
	Name      string   `yaml:"name"`
	Latitude  float64  `yaml:"latitude"`
	Longitude float64  `yaml:"longitude"`
	Speed     *float64 `yaml:"speed,omitempty"`
	Course    *float64 `yaml:"course,omitempty"`
}

type PortCoordinate struct {
	Key        string            `yaml:"key"`
	Coordinate models.Coordinate `yaml:",inline"`
}

// File is the YAML layout of a tables override file. Sections left out keep
// their compiled-in defaults.
type File struct {
	IdentityOverrides map[string]string           `yaml:"identity_overrides"`
	FallbackPositions map[string]FallbackPosition `yaml:"fallback_positions"`
	Ports             []PortCoordinate            `yaml:"ports"`
	DefaultCoordinate *models.Coordinate          `yaml:"default_coordinate"`
	CargoTypes        []string                    `yaml:"cargo_types"`
}

// Tables holds the static lookup data. It is built once and never mutated,
// so it is safe to share between goroutines.
type Tables struct {
	identityOverrides map[string]string
	fallbackPositions map[string]FallbackPosition
	ports             []PortCoordinate
	defaultCoordinate models.Coordinate
	cargoTypes        []string
}

// New builds tables from f, using defaults for every empty section.
func New(f File) *Tables {
	d := defaults()

	t := &Tables{
		identityOverrides: make(map[string]string),
		fallbackPositions: make(map[string]FallbackPosition),
		defaultCoordinate: d.defaultCoordinate,
	}

	overrides := f.IdentityOverrides
	if len(overrides) == 0 {
		overrides = d.identityOverrides
	}
	for name, id := range overrides {
		t.identityOverrides[NormalizeName(name)] = strings.TrimSpace(id)
	}

	fallbacks := f.FallbackPositions
	if len(fallbacks) == 0 {
		fallbacks = d.fallbackPositions
	}
	for id, pos := range fallbacks {
		t.fallbackPositions[strings.TrimSpace(id)] = pos
	}

	ports := f.Ports
	if len(ports) == 0 {
		ports = d.ports
	}
	t.ports = make([]PortCoordinate, 0, len(ports))
	for _, p := range ports {
		t.ports = append(t.ports, PortCoordinate{Key: strings.ToUpper(strings.TrimSpace(p.Key)), Coordinate: p.Coordinate})
	}

	if f.DefaultCoordinate != nil {
		t.defaultCoordinate = *f.DefaultCoordinate
	}

	cargo := f.CargoTypes
	if len(cargo) == 0 {
		cargo = d.cargoTypes
	}
	t.cargoTypes = make([]string, 0, len(cargo))
	for _, c := range cargo {
		t.cargoTypes = append(t.cargoTypes, strings.ToLower(strings.TrimSpace(c)))
	}

	return t
}

func Default() *Tables {
	return New(File{})
}

// Load reads a YAML override file. An empty path returns the defaults.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lookup tables: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse lookup tables %s: %w", path, err)
	}
	return New(f), nil
}

// NormalizeName is the canonical form of a vessel name used as a lookup key.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// IdentityOverride returns the pinned tracking id for a normalised vessel name.
func (t *Tables) IdentityOverride(normalizedName string) (string, bool) {
	id, ok := t.identityOverrides[normalizedName]
	return id, ok && id != ""
}

func (t *Tables) FallbackPosition(trackingID string) (FallbackPosition, bool) {
	pos, ok := t.fallbackPositions[trackingID]
	return pos, ok
}

// PortCoordinate returns the coordinate of the first port whose key is a
// case-insensitive substring of port, or the default coordinate.
func (t *Tables) PortCoordinate(port string) models.Coordinate {
	port = strings.ToUpper(strings.TrimSpace(port))
	if port == "" {
		return t.defaultCoordinate
	}
	for _, p := range t.ports {
		if p.Key != "" && strings.Contains(port, p.Key) {
			return p.Coordinate
		}
	}
	return t.defaultCoordinate
}

func (t *Tables) DefaultCoordinate() models.Coordinate {
	return t.defaultCoordinate
}

// CargoTypes returns the preferred vessel types in priority order, lower-cased.
func (t *Tables) CargoTypes() []string {
	out := make([]string, len(t.cargoTypes))
	copy(out, t.cargoTypes)
	return out
}
