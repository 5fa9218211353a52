package driver

import (
	"fmt"

	"github.com/imamik/srxgate/internal/config"
	"github.com/imamik/srxgate/internal/platform/junos"
	"github.com/imamik/srxgate/internal/platform/ssh"
)

// NewDialer returns the dialer for the configured transport.
func NewDialer(cfg *config.Config) (junos.Dialer, error) {
	switch cfg.Appliance.Transport {
	case config.TransportTCP, "":
		return junos.TCPDialer{Address: cfg.Appliance.Endpoint(), Timeout: cfg.Timeouts.Dial}, nil
	case config.TransportSSH:
		hostKey, err := ssh.HostKeyCallback(cfg.Appliance.SSHHostKey)
		if err != nil {
			return nil, err
		}
		d, err := ssh.NewDialer(&ssh.Config{
			Host:            cfg.Appliance.Address,
			Port:            cfg.Appliance.Port,
			User:            cfg.Appliance.Username,
			Password:        cfg.Appliance.Password,
			DialTimeout:     cfg.Timeouts.Dial,
			HostKeyCallback: hostKey,
		})
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unsupported transport %q", cfg.Appliance.Transport)
	}
}
