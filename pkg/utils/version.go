package utils

// Build information, set with -ldflags -X by the dagger build.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
