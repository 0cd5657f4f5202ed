/*
Package security groups the balancer's transport security. Its one
subpackage, tls, builds the server's TLS/mTLS configuration and reloads
certificates from disk; there is no secret-management or API-key
authentication package.

# TLS Configuration

Configure TLS for the proxy server:

	cfg := &tls.Config{
		Enabled:  true,
		CertFile: "/etc/balancer/certs/server.crt",
		KeyFile:  "/etc/balancer/certs/server.key",
		MinVersion: "1.3",
	}

	tlsConfig, err := cfg.ToTLSConfig()
	if err != nil {
		log.Fatal(err)
	}
*/
package security
