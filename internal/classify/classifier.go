// Package classify decides which upstream processor a staged envelope
// came from.
package classify

import "github.com/imrishuroy/go-dispute-reconciler/internal/envelope"

// Source identifies the upstream processor of a staged envelope.
type Source int

const (
	SourceUnrecognized Source = iota
	SourceGateway
	SourcePlatform
)

func (s Source) String() string {
	switch s {
	case SourceGateway:
		return "gateway"
	case SourcePlatform:
		return "platform"
	default:
		return "unrecognized"
	}
}

// Body marker / header carrying each source's signature.
const (
	gatewaySignatureKey = "bt_signature"
	platformSigHeader   = "Stripe-Signature"
)

// Classify inspects an envelope for source-identifying markers.
// The check is order-sensitive: the gateway body marker wins over the
// platform header. Missing body or headers never panic; anything without a
// marker is unrecognized.
func Classify(env *envelope.Envelope) Source {
	if env == nil {
		return SourceUnrecognized
	}
	if obj, ok := env.BodyObject(); ok {
		if _, present := obj[gatewaySignatureKey]; present {
			return SourceGateway
		}
	}
	if env.Header(platformSigHeader) != "" {
		return SourcePlatform
	}
	return SourceUnrecognized
}
