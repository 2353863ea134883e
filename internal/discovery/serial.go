package discovery

import (
	"context"
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// SerialDiscovery implements Discovery by enumerating the host's serial ports
type SerialDiscovery struct {
	// IncludeNonUSB also lists built-in UARTs, which are rarely radios
	IncludeNonUSB bool

	list func() ([]*enumerator.PortDetails, error)
}

// NewSerialDiscovery creates a discovery service backed by the OS port enumerator
func NewSerialDiscovery() *SerialDiscovery {
	return &SerialDiscovery{list: enumerator.GetDetailedPortsList}
}

// FindEndpoints lists serial ports, USB devices first
func (s *SerialDiscovery) FindEndpoints(ctx context.Context) ([]Endpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	list := s.list
	if list == nil {
		list = enumerator.GetDetailedPortsList
	}
	ports, err := list()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}

	var usb, other []Endpoint
	for _, p := range ports {
		if p == nil || p.Name == "" {
			continue
		}
		if p.IsUSB {
			usb = append(usb, Endpoint{Name: p.Name, Description: describeUSB(p)})
			continue
		}
		if s.IncludeNonUSB {
			other = append(other, Endpoint{Name: p.Name, Description: "serial port"})
		}
	}
	return append(usb, other...), nil
}

func describeUSB(p *enumerator.PortDetails) string {
	parts := []string{fmt.Sprintf("USB %s:%s", strings.ToLower(p.VID), strings.ToLower(p.PID))}
	if p.Product != "" {
		parts = append(parts, p.Product)
	}
	if p.SerialNumber != "" {
		parts = append(parts, "s/n "+p.SerialNumber)
	}
	return strings.Join(parts, ", ")
}
