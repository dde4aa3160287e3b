package gridfeed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Well-known request channel names. The upstream load API addresses channels
// by bare integer index; the channel map gives them stable names so callers
// never hard-code index arithmetic.
const (
	ChannelSystemGen = "sysgen"
	ChannelCentral   = "rcc1"
	ChannelNortheast = "rcc2"
	ChannelSouth     = "rcc3"
	ChannelNorth     = "rcc4"
	ChannelMetro     = "mcc"
	ChannelExportEDL = "exp_edl"
	ChannelExportTNP = "exp_tnp"

	ChannelVSPPMetro     = "vspp_mcc"
	ChannelVSPPCentral   = "vspp_rcc1"
	ChannelVSPPNortheast = "vspp_rcc2"
	ChannelVSPPSouth     = "vspp_rcc3"
	ChannelVSPPNorth     = "vspp_rcc4"
)

// Channel maps one named request channel to its upstream index.
type Channel struct {
	Name  string `yaml:"name"`
	Index int    `yaml:"index"`
	Note  string `yaml:"note,omitempty"`
}

// channelFile is the on-disk channel map layout.
type channelFile struct {
	Channels []Channel `yaml:"channels"`
}

// DefaultChannels returns the upstream index table as observed in production.
// Indexes 8-11 exist upstream but carry duplicate or stale aggregates, so
// they are mapped for completeness and never queried by the services.
func DefaultChannels() []Channel {
	return []Channel{
		{Name: ChannelSystemGen, Index: 0, Note: "system gen, estimate 20000-25000"},
		{Name: ChannelCentral, Index: 1, Note: "central region demand"},
		{Name: ChannelNortheast, Index: 2, Note: "northeast region demand"},
		{Name: ChannelSouth, Index: 3, Note: "south region demand"},
		{Name: ChannelNorth, Index: 4, Note: "north region demand"},
		{Name: ChannelMetro, Index: 5, Note: "metropolitan demand"},
		{Name: ChannelExportEDL, Index: 6, Note: "export to EDL"},
		{Name: ChannelExportTNP, Index: 7, Note: "export to TNB"},
		{Name: "vspp_profile", Index: 8, Note: "estimate 300-1000, unused"},
		{Name: "vspp_rtu", Index: 9, Note: "stuck at 54.4, unused"},
		{Name: "vspp_system", Index: 10, Note: "estimate 350-1000, unused"},
		{Name: "sysgen_3e", Index: 11, Note: "system gen alternate, unused"},
		{Name: ChannelVSPPMetro, Index: 12, Note: "vspp metropolitan"},
		{Name: ChannelVSPPCentral, Index: 13, Note: "vspp central"},
		{Name: ChannelVSPPNortheast, Index: 14, Note: "vspp northeast"},
		{Name: ChannelVSPPSouth, Index: 15, Note: "vspp south"},
		{Name: ChannelVSPPNorth, Index: 16, Note: "vspp north"},
	}
}

// ChannelMap resolves channel names to upstream indexes.
type ChannelMap struct {
	byName map[string]Channel
}

// NewChannelMap builds a map from a channel list, rejecting duplicate names.
func NewChannelMap(channels []Channel) (*ChannelMap, error) {
	byName := make(map[string]Channel, len(channels))
	for _, channel := range channels {
		if channel.Name == "" {
			return nil, fmt.Errorf("gridfeed: channel with index %d has no name", channel.Index)
		}
		if channel.Index < 0 {
			return nil, fmt.Errorf("gridfeed: channel %s has negative index", channel.Name)
		}
		if _, exists := byName[channel.Name]; exists {
			return nil, fmt.Errorf("gridfeed: duplicate channel name %s", channel.Name)
		}
		byName[channel.Name] = channel
	}
	return &ChannelMap{byName: byName}, nil
}

// DefaultChannelMap builds the map over the built-in index table.
func DefaultChannelMap() *ChannelMap {
	m, err := NewChannelMap(DefaultChannels())
	if err != nil {
		panic(err)
	}
	return m
}

// LoadChannelMap reads a channel map from a yaml file.
func LoadChannelMap(path string) (*ChannelMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gridfeed: read channel map: %w", err)
	}
	var file channelFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("gridfeed: parse channel map: %w", err)
	}
	if len(file.Channels) == 0 {
		return nil, fmt.Errorf("gridfeed: channel map %s has no channels", path)
	}
	return NewChannelMap(file.Channels)
}

// Index resolves a channel name to its upstream index.
func (m *ChannelMap) Index(name string) (int, error) {
	channel, ok := m.byName[name]
	if !ok {
		return 0, fmt.Errorf("gridfeed: unknown channel %s", name)
	}
	return channel.Index, nil
}
