package transport

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Kind names one of the supported connection kinds.
type Kind int

const (
	KindTCPListen Kind = iota
	KindTCPConnect
	KindUDPListen
	KindUDPConnect
	KindUDPBroadcast
	KindSerial
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindTCPListen:
		return "tcpin"
	case KindTCPConnect:
		return "tcpout"
	case KindUDPListen:
		return "udpin"
	case KindUDPConnect:
		return "udpout"
	case KindUDPBroadcast:
		return "udpbcast"
	case KindSerial:
		return "serial"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// Spec is a parsed connection spec string.
type Spec struct {
	Kind   Kind
	Host   string
	Port   int
	Device string
	Baud   int
	Path   string
}

// Live reports whether the spec describes a live link. File playback has no
// send path and no timing semantics.
func (s Spec) Live() bool {
	return s.Kind != KindFile
}

func (s Spec) String() string {
	switch s.Kind {
	case KindSerial:
		return fmt.Sprintf("serial:%s:%d", s.Device, s.Baud)
	case KindFile:
		return fmt.Sprintf("file:%s", s.Path)
	default:
		return fmt.Sprintf("%s:%s:%d", s.Kind, s.Host, s.Port)
	}
}

func (s Spec) addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ParseSpec parses one of:
//
//	tcpin:<addr>:<port>    tcpout:<addr>:<port>
//	udpin:<addr>:<port>    udpout:<addr>:<port>   udpbcast:<addr>:<port>
//	serial:<device>:<baud>
//	file:<path>
func ParseSpec(raw string) (Spec, error) {
	scheme, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return Spec{}, fmt.Errorf("malformed connection spec %q", raw)
	}

	switch scheme {
	case "file":
		if rest == "" {
			return Spec{}, fmt.Errorf("connection spec %q: missing file path", raw)
		}
		return Spec{Kind: KindFile, Path: rest}, nil

	case "serial":
		idx := strings.LastIndex(rest, ":")
		if idx <= 0 || idx == len(rest)-1 {
			return Spec{}, fmt.Errorf("connection spec %q: want serial:<device>:<baud>", raw)
		}
		baud, err := strconv.Atoi(rest[idx+1:])
		if err != nil || baud <= 0 {
			return Spec{}, fmt.Errorf("connection spec %q: bad baud rate %q", raw, rest[idx+1:])
		}
		return Spec{Kind: KindSerial, Device: rest[:idx], Baud: baud}, nil

	case "tcpin", "tcpout", "udpin", "udpout", "udpbcast":
		host, portStr, err := net.SplitHostPort(rest)
		if err != nil {
			return Spec{}, fmt.Errorf("connection spec %q: %v", raw, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 0 || port > 65535 {
			return Spec{}, fmt.Errorf("connection spec %q: bad port %q", raw, portStr)
		}
		kinds := map[string]Kind{
			"tcpin":    KindTCPListen,
			"tcpout":   KindTCPConnect,
			"udpin":    KindUDPListen,
			"udpout":   KindUDPConnect,
			"udpbcast": KindUDPBroadcast,
		}
		return Spec{Kind: kinds[scheme], Host: host, Port: port}, nil

	default:
		return Spec{}, fmt.Errorf("unknown connection scheme %q", scheme)
	}
}
