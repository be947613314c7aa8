// Copyright (c) The duochat authors. All rights reserved.

package duochat

// Feature identifies a protocol capability gated on the server version.
type Feature string

const (
	// FeaturePlatformOrigin means the aiAction mutation accepts a
	// platformOrigin tag identifying the submitting client.
	FeaturePlatformOrigin Feature = "platform_origin"

	// FeatureAdditionalContext means the aiAction mutation accepts an
	// additional-context list.
	FeatureAdditionalContext Feature = "additional_context"

	// FeatureConversationThreads means the server supports multi-threaded
	// conversations with conversation types and thread ids.
	FeatureConversationThreads Feature = "conversation_threads"
)

// featureGates maps each feature to the minimum server version that enables
// it, ordered least to most capable. Listed here once, declaratively, so the
// payload shape is never re-derived ad hoc at call sites.
var featureGates = []struct {
	feature Feature
	min     Version
}{
	{FeaturePlatformOrigin, NewVersion(17, 3, 0)},
	{FeatureAdditionalContext, NewVersion(17, 5, 0)},
	{FeatureConversationThreads, NewVersion(17, 10, 0)},
}

// Capabilities is the set of protocol features a server version enables.
// It is a pure function of the version (see [CapabilitiesFor]); fields of a
// higher tier are a strict superset of every lower tier's.
type Capabilities struct {
	PlatformOrigin      bool
	AdditionalContext   bool
	ConversationThreads bool
}

// CapabilitiesFor evaluates the feature gate table against a server version.
// The unknown version enables nothing.
func CapabilitiesFor(v Version) Capabilities {
	var caps Capabilities
	for _, gate := range featureGates {
		if !v.AtLeast(gate.min) {
			break
		}
		switch gate.feature {
		case FeaturePlatformOrigin:
			caps.PlatformOrigin = true
		case FeatureAdditionalContext:
			caps.AdditionalContext = true
		case FeatureConversationThreads:
			caps.ConversationThreads = true
		}
	}
	return caps
}

// Supports reports whether the given feature is enabled.
func (c Capabilities) Supports(f Feature) bool {
	switch f {
	case FeaturePlatformOrigin:
		return c.PlatformOrigin
	case FeatureAdditionalContext:
		return c.AdditionalContext
	case FeatureConversationThreads:
		return c.ConversationThreads
	}
	return false
}
