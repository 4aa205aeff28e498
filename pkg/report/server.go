// Package report exposes the probe over HTTP so a run can be triggered and
// inspected remotely: /probe re-executes the scenario and returns the JSON
// report, /qr.png renders a QR code pointing at the JSON so the result can
// be pulled up on a phone. The server is opt-in; the default invocation of
// the binary stays a plain linear script.
package report

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/acme/autocert"

	"nullbind-probe/pkg/database"
	"nullbind-probe/pkg/probe"
)

// Server wires probe runs to HTTP handlers. Every request runs the full
// scenario against the shared database handle; the scenario is sequential
// and short, so no pooling or queueing happens here.
type Server struct {
	DB       *database.Database
	WithCopy bool
}

// Routes registers the handlers on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/probe", s.probeHandler)
	mux.HandleFunc("/qr.png", s.qrHandler)
}

func (s *Server) probeHandler(w http.ResponseWriter, r *http.Request) {
	runner := &probe.Runner{DB: s.DB, WithCopy: s.WithCopy}
	rep, err := runner.Run(r.Context())
	if err != nil {
		// Schema preparation failed; nothing partial to report.
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rep)
}

// qrHandler renders a QR code for the report URL (or an explicit ?u=...)
// so the JSON can be opened from another device without retyping hosts.
func (s *Server) qrHandler(w http.ResponseWriter, r *http.Request) {
	u := r.URL.Query().Get("u")
	if u == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		u = scheme + "://" + r.Host + "/probe"
	}
	if len(u) > 4096 {
		u = u[:4096]
	}

	png, err := qrcode.Encode(u, qrcode.Medium, 512)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// Serve runs a plain HTTP listener on addr and blocks.
func (s *Server) Serve(addr string) error {
	mux := http.NewServeMux()
	s.Routes(mux)
	log.Printf("report server ➜ http://localhost%s/probe", addr)
	return (&http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}).ListenAndServe()
}

// ServeWithDomain runs the report server on :80/:443 with automatic
// Let's Encrypt certificates:
//
//	:80  serves ACME HTTP-01 challenges plus a 301 redirect to https
//	:443 serves HTTPS with certificates fetched and renewed by autocert
//
// It blocks until the HTTPS listener fails.
func (s *Server) ServeWithDomain(domain string) error {
	certMgr := &autocert.Manager{
		Prompt: autocert.AcceptTOS,
		Cache:  autocert.DirCache("certs"),
		HostPolicy: func(ctx context.Context, host string) error {
			// Allow the bare domain and www.<domain>.
			if host == domain || host == "www."+domain {
				return nil
			}
			// Raw IP access is tolerated but gets no certificate attempt.
			if net.ParseIP(host) != nil {
				return nil
			}
			return errors.New("acme/autocert: host not configured")
		},
	}

	mux := http.NewServeMux()
	s.Routes(mux)

	go func() {
		mux80 := http.NewServeMux()
		mux80.Handle("/.well-known/acme-challenge/", certMgr.HTTPHandler(nil))
		mux80.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			target := "https://" + domain + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusMovedPermanently)
		})

		log.Printf("HTTP  server (ACME+redirect) ➜ :80")
		if err := (&http.Server{
			Addr:              ":80",
			Handler:           mux80,
			ReadHeaderTimeout: 10 * time.Second,
		}).ListenAndServe(); err != nil {
			log.Printf("HTTP  server error: %v", err)
		}
	}()

	tlsCfg := certMgr.TLSConfig()
	tlsCfg.MinVersion = tls.VersionTLS12

	log.Printf("HTTPS server for %s ➜ :443", domain)
	return (&http.Server{
		Addr:              ":443",
		Handler:           mux,
		TLSConfig:         tlsCfg,
		ReadHeaderTimeout: 10 * time.Second,
	}).ListenAndServeTLS("", "")
}
