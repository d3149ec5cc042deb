//go:build integration

package integration

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Gradnos/dpAssignment2Api/pkg/config"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/service"
	"github.com/Gradnos/dpAssignment2Api/pkg/habit/storage"
	"github.com/Gradnos/dpAssignment2Api/pkg/server"
	"github.com/Gradnos/dpAssignment2Api/pkg/telemetry/health"
	"github.com/Gradnos/dpAssignment2Api/pkg/telemetry/metrics"
)

const tlsListenAddress = "127.0.0.1:18443"

// generateSelfSignedCert writes a throwaway self-signed certificate and key
// into dir and returns their paths.
func generateSelfSignedCert(t *testing.T, dir string) (certFile, keyFile string) {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "habitd-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}

	certFile = filepath.Join(dir, "cert.pem")
	keyFile = filepath.Join(dir, "key.pem")

	certOut, err := os.Create(certFile)
	if err != nil {
		t.Fatalf("failed to create cert file: %v", err)
	}
	if err := pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: der}); err != nil {
		t.Fatalf("failed to encode certificate: %v", err)
	}
	certOut.Close()

	keyDER, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}
	keyOut, err := os.OpenFile(keyFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		t.Fatalf("failed to create key file: %v", err)
	}
	if err := pem.Encode(keyOut, &pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}); err != nil {
		t.Fatalf("failed to encode key: %v", err)
	}
	keyOut.Close()

	return certFile, keyFile
}

// startTLSServer runs the full server stack with TLS enabled and returns a
// cancel function that triggers graceful shutdown.
func startTLSServer(t *testing.T, certFile, keyFile string) context.CancelFunc {
	t.Helper()

	cfg := config.NewDefault()
	cfg.Server.ListenAddress = tlsListenAddress
	cfg.Server.TLS.Enabled = true
	cfg.Server.TLS.CertFile = certFile
	cfg.Server.TLS.KeyFile = keyFile

	store := storage.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	svc := service.New(store)
	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
	checker.RegisterCheck("storage", store.Ping)
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	srv := server.NewServer(cfg, svc, checker, collector, server.BuildInfo{Version: "integration"})

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errChan:
			if err != nil {
				t.Errorf("server exited with error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("server did not stop within 5 seconds")
		}
	})

	return cancel
}

// insecureClient returns a client that accepts the test certificate.
func insecureClient(tlsConfig *tls.Config) *http.Client {
	if tlsConfig == nil {
		tlsConfig = &tls.Config{}
	}
	tlsConfig.InsecureSkipVerify = true

	return &http.Client{
		Timeout:   2 * time.Second,
		Transport: &http.Transport{TLSClientConfig: tlsConfig},
	}
}

// waitForTLS polls the health endpoint over HTTPS until it answers.
func waitForTLS(t *testing.T, client *http.Client, url string) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("TLS server did not become healthy")
}

// TestTLSServerIntegration serves the API over TLS 1.3 and checks both the
// handshake and a round trip through the habit endpoints.
func TestTLSServerIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	certFile, keyFile := generateSelfSignedCert(t, t.TempDir())
	startTLSServer(t, certFile, keyFile)

	client := insecureClient(nil)
	baseURL := "https://" + tlsListenAddress
	waitForTLS(t, client, baseURL+"/health")

	resp, err := client.Post(baseURL+"/habits", "application/json",
		bytes.NewReader([]byte(`{"name": "Encrypt Everything"}`)))
	if err != nil {
		t.Fatalf("HTTPS create failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("create status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if resp.TLS == nil {
		t.Fatal("response.TLS is nil, TLS not used")
	}
	if resp.TLS.Version < tls.VersionTLS13 {
		t.Errorf("TLS version = 0x%x, want at least TLS 1.3", resp.TLS.Version)
	}
}

// TestTLSRejectsOldVersions checks that clients capped below the configured
// minimum version cannot complete a handshake.
func TestTLSRejectsOldVersions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	certFile, keyFile := generateSelfSignedCert(t, t.TempDir())
	startTLSServer(t, certFile, keyFile)

	healthy := insecureClient(nil)
	waitForTLS(t, healthy, "https://"+tlsListenAddress+"/health")

	capped := insecureClient(&tls.Config{MaxVersion: tls.VersionTLS12})
	_, err := capped.Get("https://" + tlsListenAddress + "/health")
	if err == nil {
		t.Error("TLS 1.2 handshake should be rejected when the minimum is 1.3")
	}
}
