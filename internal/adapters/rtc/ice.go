// Package rtc describes the ICE servers browsers use for peer-to-peer calls.
// Media never passes through this server.
package rtc

import (
	"errors"
	"fmt"

	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
)

var errNoURLs = errors.New("ice server: no urls")

// Server is one configured STUN or TURN entry.
type Server struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

func DefaultServers() []Server {
	return []Server{
		{URLs: []string{"stun:stun.l.google.com:19302"}},
	}
}

// ICEServers validates every URL and returns the entries in the shape the
// browser RTCPeerConnection expects.
func ICEServers(in []Server) ([]webrtc.ICEServer, error) {
	out := make([]webrtc.ICEServer, 0, len(in))
	for _, s := range in {
		if len(s.URLs) == 0 {
			return nil, errNoURLs
		}
		srv := webrtc.ICEServer{URLs: s.URLs}
		for _, raw := range s.URLs {
			uri, err := stun.ParseURI(raw)
			if err != nil {
				return nil, fmt.Errorf("ice server %q: %w", raw, err)
			}
			if uri.Scheme == stun.SchemeTypeTURN || uri.Scheme == stun.SchemeTypeTURNS {
				if s.Username == "" || s.Credential == "" {
					return nil, fmt.Errorf("ice server %q: %w", raw, webrtc.ErrNoTurnCredentials)
				}
			}
		}
		if s.Username != "" {
			srv.Username = s.Username
			srv.Credential = s.Credential
			srv.CredentialType = webrtc.ICECredentialTypePassword
		}
		out = append(out, srv)
	}
	return out, nil
}

// Configuration is the peer connection config matching servers.
func Configuration(servers []webrtc.ICEServer) webrtc.Configuration {
	return webrtc.Configuration{ICEServers: servers}
}

// ClientServer is the JSON entry served to browsers. It carries only the
// fields RTCPeerConnection reads, without pion's credential type.
type ClientServer struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

func ClientServers(servers []webrtc.ICEServer) []ClientServer {
	out := make([]ClientServer, 0, len(servers))
	for _, s := range servers {
		cs := ClientServer{URLs: s.URLs, Username: s.Username}
		if cred, ok := s.Credential.(string); ok {
			cs.Credential = cred
		}
		out = append(out, cs)
	}
	return out
}
