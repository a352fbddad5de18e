package social

import (
	"context"
	"errors"

	"github.com/hyperifyio/dataminer/internal/fallback"
	"github.com/hyperifyio/dataminer/internal/result"
	"github.com/hyperifyio/dataminer/internal/source"
)

// ErrRestricted is returned by platforms that refuse unauthenticated access.
var ErrRestricted = errors.New("platform restricts unauthenticated access")

// Instagram makes no requests: public profile and hashtag pages require a
// login, so every call yields the restriction placeholder.
type Instagram struct{}

func (i *Instagram) Name() source.Platform { return source.PlatformInstagram }

func (i *Instagram) Collect(context.Context, *Env, source.Descriptor) (Batch, error) {
	return Batch{}, ErrRestricted
}

func (i *Instagram) Unavailable(d source.Descriptor, _ error) result.Result {
	return fallback.Instagram(d.Query).Result(result.ReasonRestricted)
}
