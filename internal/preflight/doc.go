// Package preflight provides readiness checks for the external services
// and filesystem paths that Usher depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and logs failures without refusing
//     to start; an agent whose service is down explains that in chat instead.
//   - The CLI "usher health" command probes every service live, adding the
//     FromConfig variants for integrations RunAll skipped as unconfigured.
//
// The daemon's /health endpoint deliberately does not use these live
// probes; it reports store and configuration state only.
//
// Optional integrations are gated on configuration presence -- a service
// with no credentials reports "Not configured" rather than failing.
package preflight
