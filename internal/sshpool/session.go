package sshpool

import (
	"sync"

	"golang.org/x/crypto/ssh"
)

// session wraps an *ssh.Client with the connect/disconnect lifecycle the
// pool drives; grounded on thyth-nosshtradamus/internal/sshproxy/proxy.go's
// ssh.Dial/ssh.ClientConfig idiom, adapted from a one-shot proxy dial into
// a reconnectable, poolable handle.
type session struct {
	mu     sync.RWMutex
	cfg    Config
	client *ssh.Client
}

func newSession(cfg Config) *session { return &session{cfg: cfg} }

func (s *session) connect() error {
	client, err := ssh.Dial("tcp", s.cfg.addr(), s.cfg.clientConfig())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
	return nil
}

func (s *session) disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		_ = s.client.Close()
		s.client = nil
	}
}

func (s *session) isConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil
}

// Client returns the underlying *ssh.Client for opening channels/sessions.
func (s *session) Client() *ssh.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// sendKeepalive issues an OpenSSH-compatible "keepalive@openssh.com"
// global request and waits for the peer's reply.
func (s *session) sendKeepalive() error {
	client := s.Client()
	if client == nil {
		return errNotConnected
	}
	_, _, err := client.SendRequest("keepalive@openssh.com", true, nil)
	return err
}
