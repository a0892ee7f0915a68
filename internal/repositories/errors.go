package repositories

import "errors"

var (
	// ErrFeatureUnknown indicates the requested feature key has no stored row.
	ErrFeatureUnknown = errors.New("site feature repository: feature not found")
	// ErrContentBlockNotFound indicates no content block exists for the page/slug pair.
	ErrContentBlockNotFound = errors.New("content block repository: block not found")
)

// IsNotFound reports whether err categorises as a missing record.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrFeatureUnknown) || errors.Is(err, ErrContentBlockNotFound) {
		return true
	}
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

// IsUnavailable reports whether err categorises as a transient backend outage.
func IsUnavailable(err error) bool {
	var repoErr RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}
