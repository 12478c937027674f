// Package sshpool manages reusable SSH connections and their keepalive
// lifecycle for the SSH transport backend (spec.md §4.8).
package sshpool

import (
	"fmt"
	"time"

	"golang.org/x/crypto/ssh"
)

// Credentials selects how an SSH session authenticates.
type Credentials struct {
	Username string
	Password string
	Signer   ssh.Signer
}

// PasswordCredentials builds password-based credentials.
func PasswordCredentials(username, password string) Credentials {
	return Credentials{Username: username, Password: password}
}

// KeyCredentials builds public-key credentials from an already-parsed signer.
func KeyCredentials(username string, signer ssh.Signer) Credentials {
	return Credentials{Username: username, Signer: signer}
}

func (c Credentials) authMethods() []ssh.AuthMethod {
	var methods []ssh.AuthMethod
	if c.Signer != nil {
		methods = append(methods, ssh.PublicKeys(c.Signer))
	}
	if c.Password != "" {
		methods = append(methods, ssh.Password(c.Password))
	}
	return methods
}

// Config describes one SSH destination and how to authenticate to it.
type Config struct {
	Host            string
	Port            int
	Credentials     Credentials
	HostKeyCallback ssh.HostKeyCallback
	ConnectTimeout  time.Duration
}

func (c Config) key() string {
	return fmt.Sprintf("%s@%s:%d", c.Credentials.Username, c.Host, c.Port)
}

func (c Config) addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) clientConfig() *ssh.ClientConfig {
	cb := c.HostKeyCallback
	if cb == nil {
		cb = ssh.InsecureIgnoreHostKey()
	}
	timeout := c.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &ssh.ClientConfig{
		User:            c.Credentials.Username,
		Auth:            c.Credentials.authMethods(),
		HostKeyCallback: cb,
		Timeout:         timeout,
	}
}

// PoolConfig bounds pool size and connection lifetime (spec.md §4.8
// "ConnectionPool configuration").
type PoolConfig struct {
	MaxPerHost         int
	MaxTotal           int
	IdleTimeout        time.Duration
	ReuseConnections   bool
	ValidateOnCheckout bool
	MaxConnectionAge   time.Duration // zero means unbounded
}

// DefaultPoolConfig matches the distilled source's Default impl.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxPerHost:         5,
		MaxTotal:           20,
		IdleTimeout:        5 * time.Minute,
		ReuseConnections:   true,
		ValidateOnCheckout: true,
		MaxConnectionAge:   time.Hour,
	}
}
