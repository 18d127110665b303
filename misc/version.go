// Package misc holds build time information about the program.
package misc

// Set at link time with -ldflags "-X pageflow/misc.version=... -X pageflow/misc.gitHash=...".
var (
	version = "dev"
	gitHash = "unknown"
)

const appName = "pageflow"

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}

func GetAppName() string {
	return appName
}
