// Package platform provides CI detection and HTTP access to the CI servers.
package platform

// Kind identifies the CI provider the process runs under.
type Kind int

const (
	// KindNone means no supported CI environment was detected.
	KindNone Kind = iota
	// KindJenkins is a Jenkins build.
	KindJenkins
	// KindGitLab is a GitLab CI job.
	KindGitLab
)

// Display names published as the CI kind.
const (
	NameJenkins = "Jenkins"
	NameGitLab  = "Gitlab CI"
	NameUnknown = "Unknown"
)

// String returns the published display name.
func (k Kind) String() string {
	switch k {
	case KindJenkins:
		return NameJenkins
	case KindGitLab:
		return NameGitLab
	default:
		return NameUnknown
	}
}

// Environment variables that mark a CI provider.
const (
	EnvJenkinsURL  = "JENKINS_URL"
	EnvJenkinsHome = "JENKINS_HOME"
	EnvGitLabCI    = "GITLAB_CI"
)

// Detect classifies the CI provider from env. Jenkins is checked before GitLab.
func Detect(env Env) Kind {
	return DetectInfo(env).Kind
}

// PlatformInfo contains information about the detected platform
type PlatformInfo struct {
	Kind    Kind
	IsCI    bool
	VarName string // Name of the environment variable that was detected
}

// DetectInfo returns detailed platform detection information
func DetectInfo(env Env) *PlatformInfo {
	checks := []struct {
		kind Kind
		vars []string
	}{
		{KindJenkins, []string{EnvJenkinsURL, EnvJenkinsHome}},
		{KindGitLab, []string{EnvGitLabCI}},
	}

	for _, check := range checks {
		for _, name := range check.vars {
			if Has(env, name) {
				return &PlatformInfo{Kind: check.kind, IsCI: true, VarName: name}
			}
		}
	}

	return &PlatformInfo{Kind: KindNone}
}
