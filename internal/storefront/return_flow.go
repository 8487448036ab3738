package storefront

import "net/url"

const (
	markerSuccess  = "success"
	markerCanceled = "canceled"
)

type returnOutcome int

const (
	returnNone returnOutcome = iota
	returnSuccess
	returnCanceled
)

// inspectReturn reads the checkout return markers from the location and
// strips them. The cleaned URL is a copy; the input is never mutated. When
// both markers are somehow present, success wins.
func inspectReturn(loc *url.URL) (returnOutcome, *url.URL, bool) {
	if loc == nil {
		return returnNone, nil, false
	}

	query := loc.Query()
	success := query.Get(markerSuccess) == "true"
	canceled := query.Get(markerCanceled) == "true"

	_, hadSuccess := query[markerSuccess]
	_, hadCanceled := query[markerCanceled]
	if !hadSuccess && !hadCanceled {
		return returnNone, loc, false
	}

	query.Del(markerSuccess)
	query.Del(markerCanceled)

	cleaned := *loc
	cleaned.RawQuery = query.Encode()

	switch {
	case success:
		return returnSuccess, &cleaned, true
	case canceled:
		return returnCanceled, &cleaned, true
	default:
		return returnNone, &cleaned, true
	}
}
