package version

// Version is set at build time with -ldflags "-X github.com/gimlet-io/chatops/pkg/version.Version=..."
var Version = "idx"

func String() string {
	return Version
}
