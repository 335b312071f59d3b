package connmgr

import (
	"time"

	"github.com/dep2p/peerconnd/config"
)

// Config is the connection manager's own view of the unified config,
// read once at construction (§6 "configuration inputs consumed").
type Config struct {
	TCPPort               int
	TLSPort               int
	BindAddress           string
	SelfNick              string // local client identity seed for ADC's self CID
	DownConnPerSec        int
	CompressTransfers     bool
	AllowUntrustedClients bool
	EnableLastIP          bool
	GracePeriod           time.Duration

	PollTimeout time.Duration
	DialTimeout time.Duration

	Security config.SecurityConfig
}

// ConfigFromUnified projects the unified config.Config down to what
// the coordinator needs, mirroring the teacher's ConfigFromUnified
// pattern (resourcemgr, connmgr) of reading one sub-struct per concern.
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		d := config.NewConfig()
		return fromParts(d.ConnMgr, d.Security, d.Transport)
	}
	return fromParts(cfg.ConnMgr, cfg.Security, cfg.Transport)
}

func fromParts(cm config.ConnManagerConfig, sec config.SecurityConfig, tr config.TransportConfig) Config {
	return Config{
		TCPPort:               cm.TCPPort,
		TLSPort:               cm.TLSPort,
		BindAddress:           cm.BindAddress,
		SelfNick:              cm.SelfNick,
		DownConnPerSec:        cm.DownConnPerSec,
		CompressTransfers:     cm.CompressTransfers,
		AllowUntrustedClients: cm.AllowUntrustedClients,
		EnableLastIP:          cm.EnableLastIP,
		GracePeriod:           cm.GracePeriod.Duration(),
		PollTimeout:           tr.PollTimeout.Duration(),
		DialTimeout:           tr.DialTimeout.Duration(),
		Security:              sec,
	}
}

// Constants fixed by the wire protocol, not configurable (§4, §5).
const (
	floodAdd            = 2000 * time.Millisecond
	floodTrigger        = 20000 * time.Millisecond
	connectTimeout      = 50 * time.Second
	inactivityTimeout   = 180 * time.Second
	backoffUnit         = 60 * time.Second
	shutdownSpinCadence = 50 * time.Millisecond
	ipFloodMaxPerTarget = 5
)

var blacklistedPorts = map[int]bool{80: true, 2501: true}
