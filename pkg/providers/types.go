package providers

// Kind identifies the wire protocol a provider speaks.
type Kind string

const (
	KindAnthropic        Kind = "anthropic"
	KindOpenAICompatible Kind = "openai_compatible"
)

// AuthScheme identifies how outbound credentials are attached to a request.
type AuthScheme string

const (
	AuthAPIKey      AuthScheme = "api_key"
	AuthBearerToken AuthScheme = "bearer_token"
	AuthOAuth       AuthScheme = "oauth"
	AuthPassthrough AuthScheme = "passthrough"
)

// StreamingMode controls whether a provider's upstream bytes are forwarded
// verbatim or collected and re-emitted as translated Anthropic SSE.
type StreamingMode string

const (
	StreamingAuto        StreamingMode = "auto"
	StreamingPassThrough StreamingMode = "pass_through"
	StreamingCollected   StreamingMode = "collected"
)

// AuthConfig describes how a Provider's outbound credentials are sourced.
type AuthConfig struct {
	Scheme AuthScheme

	// Secret holds the static key or bearer token value for ApiKey/BearerToken
	// schemes. Unused for OAuth (see TokenSource) and Passthrough.
	Secret string
}

// Provider is an immutable descriptor for one configured upstream. A new
// Provider value is produced on every config reload; existing requests keep
// using the Provider snapshot they selected from.
type Provider struct {
	Name          string
	Kind          Kind
	BaseURL       string
	Auth          AuthConfig
	ProxyURL      string
	StreamingMode StreamingMode
	Enabled       bool
}

// EffectiveStreamingMode resolves StreamingAuto against the provider's Kind.
func (p *Provider) EffectiveStreamingMode() StreamingMode {
	if p.StreamingMode != StreamingAuto && p.StreamingMode != "" {
		return p.StreamingMode
	}
	if p.Kind == KindAnthropic {
		return StreamingPassThrough
	}
	return StreamingCollected
}

// ModelRoute binds a model pattern to one candidate provider/upstream-model
// pair. Several ModelRoutes can share a Pattern; Priority orders them.
type ModelRoute struct {
	Pattern       string
	ProviderName  string
	UpstreamModel string
	Priority      int
	Enabled       bool
}

// ResolveUpstreamModel substitutes the "passthrough" sentinel with the
// client-requested model name.
func (r ModelRoute) ResolveUpstreamModel(requested string) string {
	if r.UpstreamModel == "" || r.UpstreamModel == "passthrough" {
		return requested
	}
	return r.UpstreamModel
}

// MatchesPattern reports whether pattern matches model. Pattern is either an
// exact model name or a glob using '*' as a wildcard covering any substring
// (no path-segment semantics — this is a flat model-name glob, not a
// filepath glob).
func MatchesPattern(pattern, model string) bool {
	if pattern == model {
		return true
	}
	if !containsGlob(pattern) {
		return false
	}
	return globMatch(pattern, model)
}

func containsGlob(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '*' {
			return true
		}
	}
	return false
}

// globMatch implements '*' wildcard matching without backtracking blowups,
// using the classic two-pointer algorithm.
func globMatch(pattern, s string) bool {
	pi, si := 0, 0
	starIdx, matchIdx := -1, 0
	for si < len(s) {
		if pi < len(pattern) && (pattern[pi] == s[si]) {
			pi++
			si++
		} else if pi < len(pattern) && pattern[pi] == '*' {
			starIdx = pi
			matchIdx = si
			pi++
		} else if starIdx != -1 {
			pi = starIdx + 1
			matchIdx++
			si = matchIdx
		} else {
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}

// Candidate is one entry in a CandidateList: a provider paired with the
// upstream model name to send it.
type Candidate struct {
	Provider      *Provider
	UpstreamModel string
	RouteProvider string // provider name as named in the route, for logging
}

// CandidateList is the ephemeral, per-request ordered set of candidates
// produced by the route selector.
type CandidateList []Candidate

func (c CandidateList) Names() []string {
	names := make([]string, len(c))
	for i, cand := range c {
		names[i] = cand.Provider.Name
	}
	return names
}
