// nearshare-receiver is a minimal reference host for the Near Share core:
// it accepts duplex byte-stream connections and serves each one through
// pkg/host, printing received URIs and writing received files to a local
// directory.
//
// The real deployment's transport is Bluetooth RFCOMM, whose discovery and
// socket acceptance are outside this module's scope (spec.md §1); this
// binary substitutes a plain TCP listener as a stand-in duplex transport so
// the core can be exercised end-to-end without a phone.
//
// Usage:
//
//	nearshare-receiver [options]
//
// Options:
//
//	-listen     address to accept stand-in transport connections on (default: "127.0.0.1:7319")
//	-downloads  directory received files are written into (default: "./downloads")
//	-device     this receiver's display name, logged on startup (default: "Go Near Share Receiver")
package main

import (
	"crypto/rand"
	"flag"
	"log"
	"net"
	"os"
	"path/filepath"

	"github.com/pion/logging"

	"github.com/cdpnear/nearshare/pkg/host"
	"github.com/cdpnear/nearshare/pkg/platform"
)

func main() {
	listenAddr := flag.String("listen", "127.0.0.1:7319", "address to accept stand-in transport connections on")
	downloadsDir := flag.String("downloads", "./downloads", "directory received files are written into")
	deviceName := flag.String("device", "Go Near Share Receiver", "this receiver's display name")
	flag.Parse()

	if err := os.MkdirAll(*downloadsDir, 0o755); err != nil {
		log.Fatalf("create downloads dir: %v", err)
	}

	cert, err := ephemeralCertificate()
	if err != nil {
		log.Fatalf("generate local certificate: %v", err)
	}

	loggerFactory := logging.NewDefaultLoggerFactory()
	handler := &consoleHandler{downloadsDir: *downloadsDir, log: loggerFactory.NewLogger("nearshare-receiver")}
	h := host.New(host.Config{
		LocalCertificate: cert,
		Handler:          handler,
		LoggerFactory:    loggerFactory,
	})

	ln, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		log.Fatalf("listen on %s: %v", *listenAddr, err)
	}
	defer ln.Close()

	log.Printf("%s listening on %s, saving files to %s", *deviceName, *listenAddr, *downloadsDir)

	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("accept: %v", err)
			continue
		}
		device := conn.RemoteAddr().String()
		go func() {
			defer conn.Close()
			if err := h.Serve(device, conn); err != nil {
				handler.log.Infof("connection from %s ended: %v", device, err)
			}
		}()
	}
}

// ephemeralCertificate stands in for a provisioned device certificate: the
// protocol only ever compares certificate bytes against an in-band
// thumbprint (spec.md §1 Non-goals: no TLS/PKI chain validation), so this
// demo just needs stable, distinguishable bytes rather than a real
// certificate chain. Persistent certificate storage is an external
// collaborator (spec.md §1).
func ephemeralCertificate() ([]byte, error) {
	cert := make([]byte, 32)
	_, err := rand.Read(cert)
	return cert, err
}

// consoleHandler is a platform.Handler that logs to stdout, records every
// received URI, and writes received files under downloadsDir.
type consoleHandler struct {
	downloadsDir string
	log          logging.LeveledLogger
}

func (c *consoleHandler) Log(level platform.Level, message string) {
	c.log.Infof("[%s] %s", level, message)
}

func (c *consoleHandler) OnReceivedUri(deviceName, uri string) {
	log.Printf("received URI from %s: %s", deviceName, uri)
}

func (c *consoleHandler) OnFileTransfer(token *platform.FileTransferToken) {
	path := filepath.Join(c.downloadsDir, filepath.Base(token.FileName))
	f, err := os.Create(path)
	if err != nil {
		log.Printf("refusing file %q from %s: %v", token.FileName, token.DeviceName, err)
		token.Cancel()
		return
	}

	log.Printf("accepting %s (%s) from %s -> %s", token.FileName, platform.FormatSize(token.BytesToSend), token.DeviceName, path)
	token.OnProgress(func(received uint64) {
		log.Printf("%s: %s / %s", token.FileName, platform.FormatSize(received), platform.FormatSize(token.BytesToSend))
		if received >= token.BytesToSend {
			f.Close()
		}
	})
	token.Accept(f)
}
