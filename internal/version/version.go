// Package version holds build information set via ldflags.
package version

// Version is overridden at build time with -ldflags "-X github.com/pubzy/giveaways/internal/version.Version=...".
var Version = "dev"
