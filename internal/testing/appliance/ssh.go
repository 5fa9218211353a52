package appliance

import (
	"fmt"
	"net"

	"golang.org/x/crypto/ssh"

	"github.com/imamik/srxgate/internal/util/keygen"
)

// SSHListener serves junoscript over SSH exec channels.
type SSHListener struct {
	Addr string
	// HostKey is the server public key in authorized_keys format.
	HostKey string
}

// ListenSSH accepts SSH connections on addr. Clients authenticate with the
// server credentials and run the "junoscript" command.
func (s *Server) ListenSSH(addr string) (*SSHListener, error) {
	keys, err := keygen.GenerateEd25519KeyPair()
	if err != nil {
		return nil, err
	}
	signer, err := keys.Signer()
	if err != nil {
		return nil, err
	}

	cfg := &ssh.ServerConfig{
		PasswordCallback: func(meta ssh.ConnMetadata, password []byte) (*ssh.Permissions, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if meta.User() == s.username && string(password) == s.password {
				return nil, nil
			}
			return nil, fmt.Errorf("password rejected for %s", meta.User())
		},
	}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.listeners = append(s.listeners, ln)
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			nc, err := ln.Accept()
			if err != nil {
				return
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.serveSSH(nc, cfg)
			}()
		}
	}()

	return &SSHListener{Addr: ln.Addr().String(), HostKey: string(keys.PublicKey)}, nil
}

type execRequest struct {
	Command string
}

func (s *Server) serveSSH(nc net.Conn, cfg *ssh.ServerConfig) {
	sc, chans, reqs, err := ssh.NewServerConn(nc, cfg)
	if err != nil {
		_ = nc.Close()
		return
	}
	defer func() { _ = sc.Close() }()
	go ssh.DiscardRequests(reqs)

	for nch := range chans {
		if nch.ChannelType() != "session" {
			_ = nch.Reject(ssh.UnknownChannelType, "session channels only")
			continue
		}
		ch, chReqs, err := nch.Accept()
		if err != nil {
			return
		}
		go func() {
			for req := range chReqs {
				var exec execRequest
				ok := req.Type == "exec" && ssh.Unmarshal(req.Payload, &exec) == nil && exec.Command == "junoscript"
				_ = req.Reply(ok, nil)
				if ok {
					go s.Serve(ch)
				}
			}
		}()
	}
}
