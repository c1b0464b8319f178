// Package security provides SSRF (server-side request forgery) protection
// for outbound URLs and a set of sentinel errors.
//
// # SSRF Protection
//
// SSRFProtection.ValidateURL checks a URL before a request is made:
//
//   - the scheme must be one of AllowedSchemes (http and https by default);
//   - the host must not be in BlockedDomains and, when AllowedDomains is not
//     empty, must be in it (exact, case-insensitive match);
//   - before resolution, the name localhost and the known cloud-metadata host
//     names are rejected when their category is blocked;
//   - an IP host, or every address a host name resolves to, is checked
//     against the loopback, private, link-local and cloud-metadata ranges the
//     config blocks.
//
// A host name that does not resolve passes once the name checks pass.
//
// # Basic Usage
//
//	protection := security.NewSSRFProtection() // DefaultSSRFConfig: every category blocked
//	if err := protection.ValidateURL("https://api.example.com/data"); err != nil {
//	    return fmt.Errorf("URL not allowed: %w", err)
//	}
//
//	cfg := security.DefaultSSRFConfig()
//	cfg.BlockLocalhost = false
//	protection = security.NewSSRFProtectionWithConfig(cfg)
//
// # Errors
//
// errors.go declares sentinel errors such as ErrURLNotAllowed and
// ErrPrivateIPBlocked. ValidateURL does not wrap them; it returns errors built
// with fmt.Errorf.
//
// # Thread Safety
//
// An SSRFProtection is not changed after construction, so ValidateURL can be
// called from several goroutines at once.
package security
