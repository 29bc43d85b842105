package ports

// VCS exposes the host version-control system's commit-trailer
// manipulation facilities used by the trailer protocol (spec.md §4.6).
//
//go:generate mockgen -source=vcs.go -destination=mocks/mock_vcs.go -package=mocks
type VCS interface {
	// ReadTrailerHistory returns the Verified trailer value (the part
	// after "Verified: ") of each of the most recent maxDepth commits
	// that carries one, most recent first. An empty slice means none of
	// the inspected commits carried the trailer.
	ReadTrailerHistory(projectRoot string, maxDepth int) ([]string, error)

	// WriteTrailer inserts or replaces the "Verified: value" trailer in
	// the commit message file at commitMsgPath.
	WriteTrailer(commitMsgPath string, value string) error
}
