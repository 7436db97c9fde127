package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	DISCOVERY_SERVICE         = "_http._tcp"
	DISCOVERY_DOMAIN          = "local."
	DISCOVERY_DEFAULT_PREFIX  = "iot-api"
	DISCOVERY_DEFAULT_TIMEOUT = 5 * time.Second
)

// Server is an API instance announced over mDNS.
type Server struct {
	Instance string `json:"instance" yaml:"instance"`
	Hostname string `json:"hostname" yaml:"hostname"`
	IP       string `json:"ip" yaml:"ip"`
	Port     int    `json:"port" yaml:"port"`
	BaseURL  string `json:"base_url" yaml:"base_url"`
}

// Discover browses the local network for HTTP services whose instance or host
// name starts with prefix. It returns once timeout elapses or ctx ends.
func Discover(ctx context.Context, prefix string, timeout time.Duration, logger *slog.Logger) ([]Server, error) {
	if prefix == "" {
		prefix = DISCOVERY_DEFAULT_PREFIX
	}
	if timeout <= 0 {
		timeout = DISCOVERY_DEFAULT_TIMEOUT
	}

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize resolver: %w", err)
	}

	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(browseCtx, DISCOVERY_SERVICE, DISCOVERY_DOMAIN, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for API servers: %w", err)
	}

	seen := make(map[string]bool)
	var servers []Server

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return servers, nil
			}

			server, matched := serverFromEntry(entry, prefix)
			if !matched || seen[server.BaseURL] {
				continue
			}

			seen[server.BaseURL] = true
			servers = append(servers, server)

			if logger != nil {
				logger.Debug("API server discovered", "instance", server.Instance, "base_url", server.BaseURL)
			}
		case <-browseCtx.Done():
			return servers, nil
		}
	}
}

func serverFromEntry(entry *zeroconf.ServiceEntry, prefix string) (Server, bool) {
	if entry == nil {
		return Server{}, false
	}

	if !hasPrefixFold(entry.Instance, prefix) && !hasPrefixFold(entry.HostName, prefix) {
		return Server{}, false
	}

	if len(entry.AddrIPv4) == 0 || entry.Port <= 0 {
		return Server{}, false
	}

	ip := entry.AddrIPv4[0].String()
	return Server{
		Instance: entry.Instance,
		Hostname: strings.TrimSuffix(entry.HostName, "."),
		IP:       ip,
		Port:     entry.Port,
		BaseURL:  "http://" + net.JoinHostPort(ip, strconv.Itoa(entry.Port)),
	}, true
}

func hasPrefixFold(s string, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
