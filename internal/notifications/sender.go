package notifications

import (
	"context"

	"github.com/9ssi7/exponent"
)

// PushSender abstracts the push transport; in practice it is the Expo
// adapter below, but handlers only see this interface.
type PushSender interface {
	Publish(ctx context.Context, msgs []*exponent.Message) ([]*exponent.MessageResponse, error)
	PublishSingle(ctx context.Context, msg *exponent.Message) ([]*exponent.MessageResponse, error)
}
